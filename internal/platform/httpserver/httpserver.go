// Package httpserver owns the HTTP server lifecycle: construction with the
// project's timeout defaults and graceful drain on shutdown.
package httpserver

import (
	"context"
	"net/http"
	"time"
)

const (
	readHeaderTimeout = 5 * time.Second
	idleTimeout       = 2 * time.Minute
	shutdownTimeout   = 10 * time.Second
)

// New builds the HTTP server for the given address and handler. Request
// bodies are small JSON payloads, so no write timeout is set; slow-header
// and idle connections are bounded.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		IdleTimeout:       idleTimeout,
	}
}

// Drain shuts the server down gracefully once ctx is cancelled, bounded by
// the package shutdown timeout. It blocks until ctx is done, so it is meant
// to run as its own goroutine alongside ListenAndServe.
func Drain(ctx context.Context, srv *http.Server) error {
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
