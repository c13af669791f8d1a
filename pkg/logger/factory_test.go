package logger_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelterconnect/platform/pkg/logger"
)

func TestNewJSONOutput(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(
		logger.WithOutput(&buf),
		logger.WithFormat(logger.FormatJSON),
		logger.WithAttr(slog.String("service", "notify-api")),
	)

	log.Info("server started", logger.UserID(42))

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "server started", record["msg"])
	assert.Equal(t, "notify-api", record["service"])
	assert.EqualValues(t, 42, record["user_id"])
}

func TestNewLevelFiltering(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logger.New(
		logger.WithOutput(&buf),
		logger.WithLevel(slog.LevelWarn),
	)

	log.Info("ignored")
	assert.Zero(t, buf.Len())

	log.Warn("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestEnvironmentPresets(t *testing.T) {
	t.Parallel()

	var dev bytes.Buffer
	logger.New(
		logger.WithEnvironment("development", "notify-api"),
		logger.WithOutput(&dev),
	).Debug("debug visible in development")
	assert.Contains(t, dev.String(), "debug visible in development")

	var prod bytes.Buffer
	logger.New(
		logger.WithEnvironment("production", "notify-api"),
		logger.WithOutput(&prod),
	).Debug("debug hidden in production")
	assert.Zero(t, prod.Len())
}

func TestWithFormatPanicsOnUnknown(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		logger.New(logger.WithFormat(logger.Format("xml")))
	})
}

func TestAttrHelpers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "boom", logger.Error(errors.New("boom")).Value.String())
	assert.Equal(t, "", logger.Error(nil).Value.String())
	assert.Equal(t, "user_id", logger.UserID(1).Key)
	assert.Equal(t, slog.KindInt64, logger.UserID(1).Value.Kind())
	assert.Equal(t, "component", logger.Component("dispatcher").Key)
	assert.Equal(t, "template", logger.Template("emergency_alert").Key)
}
