package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Serve runs the HTTP server until ctx is cancelled, then drains in-flight
// requests for up to 30 seconds.
func (a *App) Serve(ctx context.Context) error {
	// Generation can take as long as the request timeout, so the write
	// deadline sits past it.
	requestTimeout := time.Duration(a.Config.RequestTimeoutSeconds) * time.Second
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", a.Config.Port),
		Handler:      a.Handler(),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: requestTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()
	a.Log.Info(fmt.Sprintf("✓ LearnFlow Backend ready on http://localhost:%s", a.Config.Port))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.Log.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
