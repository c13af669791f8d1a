// Package httpserver runs the HTTP listeners for the platform's API
// processes with graceful shutdown and lifecycle hooks.
//
// A Server is built with New or NewFromConfig and started with Run, which
// blocks until the context is cancelled, an interrupt or TERM signal
// arrives, or the listener fails. On shutdown the in-flight requests get a
// bounded drain window before the process exits.
//
//	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server stopped", logger.Error(err))
//	}
//
// Listen failures are wrapped with ErrStart and drain failures with
// ErrShutdown, so callers can tell the two apart with errors.Is.
//
// HealthCheckHandler serves the probe endpoint: it reports ALIVE until the
// supplied context is cancelled, and READY only while every registered
// dependency check passes.
package httpserver
