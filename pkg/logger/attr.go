package logger

import "log/slog"

// Error returns a standard attribute for error values.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.String("error", err.Error())
}

// UserID returns a standard attribute for user identifiers.
func UserID(id int64) slog.Attr {
	return slog.Int64("user_id", id)
}

// Component tags a record with the emitting component name.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Template tags a record with a notification template key.
func Template(key string) slog.Attr {
	return slog.String("template", key)
}
