package app

import (
	"context"
	"net/http"
	"time"

	"github.com/pugetops/ferrytrack/api/predictions"
	"github.com/pugetops/ferrytrack/api/trips"
)

// serveAPI exposes the read-only HTTP API until the context is cancelled.
func (s *Service) serveAPI(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/api/trips", trips.NewHandler(s.store))
	mux.Handle("/api/predictions", predictions.NewHandler(s.store, s.Predictor))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Warnf("api server shutdown: %v", err)
		}
	}()

	s.log.Infof("serving api on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
