package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/custodia-labs/socrates/internal/logger"
)

// Server serves the HTTP API until its context is cancelled.
type Server struct {
	http *http.Server
}

// NewServer creates a server listening on addr.
func NewServer(addr string, svc *Services) *Server {
	return &Server{
		http: &http.Server{
			Addr:              addr,
			Handler:           SetupRoutes(svc),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Run blocks until ctx is cancelled or the listener fails. In-flight
// requests get a grace period to finish.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("http: listening on %s", s.http.Addr)
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	}
}
