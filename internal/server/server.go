package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"
)

const defaultPort = "8080"

// Timeouts for the underlying http.Server. Zero fields fall back to the defaults below.
type Timeouts struct {
	ReadHeader time.Duration
	Write      time.Duration
	Idle       time.Duration
}

const (
	maxHeaderBytes           = 1 << 20 // 1 MB
	defaultReadHeaderTimeout = 10 * time.Second
	// bcrypt at cost 12 plus a store round trip must fit comfortably
	defaultWriteTimeout = 15 * time.Second
	defaultIdleTimeout  = 60 * time.Second
)

// Server wraps an *http.Server to provide start/shutdown lifecycle.
type Server struct {
	mu         sync.Mutex
	httpServer *http.Server
	timeouts   Timeouts
}

func New(timeouts Timeouts) *Server {
	if timeouts.ReadHeader == 0 {
		timeouts.ReadHeader = defaultReadHeaderTimeout
	}
	if timeouts.Write == 0 {
		timeouts.Write = defaultWriteTimeout
	}
	if timeouts.Idle == 0 {
		timeouts.Idle = defaultIdleTimeout
	}
	return &Server{timeouts: timeouts}
}

// normalizeAddr accepts "8080" or ":8080" and defaults an empty port.
func normalizeAddr(port string) string {
	if port == "" {
		port = defaultPort
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

// Run starts the HTTP server and blocks until it stops. A graceful Shutdown is not an error.
func (s *Server) Run(port string, handler http.Handler) error {
	httpServer := &http.Server{
		Addr:              normalizeAddr(port),
		Handler:           handler,
		MaxHeaderBytes:    maxHeaderBytes,
		ReadHeaderTimeout: s.timeouts.ReadHeader,
		WriteTimeout:      s.timeouts.Write,
		IdleTimeout:       s.timeouts.Idle,
	}
	s.mu.Lock()
	s.httpServer = httpServer
	s.mu.Unlock()

	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server, allowing in-flight requests to complete.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	httpServer := s.httpServer
	s.mu.Unlock()
	if httpServer == nil {
		return nil
	}
	return httpServer.Shutdown(ctx)
}
