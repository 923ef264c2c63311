package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

// Start serves the auth API in the background. The returned channel closes
// once a termination signal arrives; the caller then runs Stop.
func (a *App) Start() <-chan struct{} {
	done := make(chan struct{})

	go func() {
		slog.Info("authflow api listening",
			"address", a.httpServer.Addr,
			"env", a.config.GetString("app.env"),
		)

		if err := a.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			slog.Error("authflow api stopped unexpectedly", "error", err)
			os.Exit(1)
		}
	}()

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
		defer signal.Stop(sig)

		received := <-sig
		slog.Info("termination signal received", "signal", received.String())

		// consumers stop pulling before the http server drains
		if a.cancel != nil {
			a.cancel()
		}
		close(done)
	}()

	return done
}

// Stop drains in-flight HTTP requests, waits for the notification consumers,
// then releases resources in the order they were registered. It returns the
// errors joined so callers can log a single line.
func (a *App) Stop(ctx context.Context) error {
	if a.cancel != nil {
		a.cancel()
	}

	var errs []error

	if err := a.httpServer.Shutdown(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to drain http requests", "error", err)
		errs = append(errs, err)
	}

	if a.goroutine != nil {
		if err := a.goroutine.Wait(); err != nil {
			slog.ErrorContext(ctx, "background consumer ended with error", "error", err)
			errs = append(errs, err)
		}
	}

	for _, closer := range a.closers {
		if err := closer.fn(ctx); err != nil {
			slog.ErrorContext(ctx, "failed to release resource", "resource", closer.name, "error", err)
			errs = append(errs, err)
			continue
		}
		slog.DebugContext(ctx, "resource released", "resource", closer.name)
	}

	slog.InfoContext(ctx, "authflow api stopped")
	return errors.Join(errs...)
}
