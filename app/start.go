package app

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// Start runs the HTTP server until the context is canceled, then shuts it
// down gracefully.
func (a *App) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.Cfg.HTTP.ListenAddress,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Observability.Logger.Info("http server listening", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	a.Observability.Logger.Info("http server stopped")
	return nil
}
