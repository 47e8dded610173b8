// Package server provides the HTTP server lifecycle shared by the Atlas
// proxy and gateway: route setup, middleware chain, TLS, and graceful
// shutdown on signal or context cancellation.
package server

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"mercator-hq/atlas/pkg/config"
	"mercator-hq/atlas/pkg/telemetry/logging"
)

// Options configures a Server.
type Options struct {
	// Name identifies the subsystem in logs ("proxy" or "gateway").
	Name string

	ListenAddress   string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	MaxHeaderBytes  int

	TLS config.TLSConfig

	// OnStop runs after the HTTP server has drained, before Start returns.
	OnStop func() error
}

// Server wraps http.Server with signal handling and graceful shutdown.
type Server struct {
	opts       Options
	handler    http.Handler
	logger     *logging.Logger
	httpServer *http.Server

	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// New creates a server for the given handler.
func New(handler http.Handler, opts Options, logger *logging.Logger) *Server {
	return &Server{
		opts:         opts,
		handler:      handler,
		logger:       logger,
		shutdownChan: make(chan struct{}),
	}
}

// Start starts the HTTP server and blocks until shutdown, triggered by
// context cancellation, SIGINT/SIGTERM, or Stop.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("%s server is already running", s.opts.Name)
	}
	s.isRunning = true
	s.mu.Unlock()

	s.httpServer = &http.Server{
		Addr:           s.opts.ListenAddress,
		Handler:        s.handler,
		ReadTimeout:    s.opts.ReadTimeout,
		WriteTimeout:   s.opts.WriteTimeout,
		IdleTimeout:    s.opts.IdleTimeout,
		MaxHeaderBytes: s.opts.MaxHeaderBytes,
	}

	if s.opts.TLS.Enabled {
		tlsConfig, err := s.configureTLS()
		if err != nil {
			return fmt.Errorf("configuring TLS: %w", err)
		}
		s.httpServer.TLSConfig = tlsConfig
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("starting server",
			"subsystem", s.opts.Name,
			"address", s.opts.ListenAddress,
			"tls_enabled", s.opts.TLS.Enabled,
		)

		var err error
		if s.opts.TLS.Enabled {
			err = s.httpServer.ListenAndServeTLS(s.opts.TLS.CertFile, s.opts.TLS.KeyFile)
		} else {
			err = s.httpServer.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("%s server error: %w", s.opts.Name, err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-ctx.Done():
		s.logger.Info("context cancelled, initiating shutdown", "subsystem", s.opts.Name)
		return s.Shutdown(context.Background())
	case sig := <-sigChan:
		s.logger.Info("received shutdown signal", "subsystem", s.opts.Name, "signal", sig.String())
		return s.Shutdown(context.Background())
	case err := <-errChan:
		return err
	case <-s.shutdownChan:
		return s.Shutdown(context.Background())
	}
}

// Stop requests shutdown from another goroutine.
func (s *Server) Stop() {
	close(s.shutdownChan)
}

// Shutdown drains in-flight requests and runs the OnStop hook.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		s.logger.Info("initiating graceful shutdown",
			"subsystem", s.opts.Name,
			"timeout", s.opts.ShutdownTimeout.String(),
		)

		shutdownCtx, cancel := context.WithTimeout(ctx, s.opts.ShutdownTimeout)
		defer cancel()

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				s.logger.Error("error during server shutdown", "subsystem", s.opts.Name, "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		if s.opts.OnStop != nil {
			if err := s.opts.OnStop(); err != nil && shutdownErr == nil {
				shutdownErr = fmt.Errorf("stop hook error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		s.logger.Info("server stopped", "subsystem", s.opts.Name)
	})

	return shutdownErr
}

// IsRunning reports whether the server is accepting requests.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// configureTLS builds the TLS settings from configuration.
func (s *Server) configureTLS() (*tls.Config, error) {
	if s.opts.TLS.CertFile == "" {
		return nil, fmt.Errorf("TLS cert file not specified")
	}
	if s.opts.TLS.KeyFile == "" {
		return nil, fmt.Errorf("TLS key file not specified")
	}
	if _, err := os.Stat(s.opts.TLS.CertFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("TLS cert file not found: %s", s.opts.TLS.CertFile)
	}
	if _, err := os.Stat(s.opts.TLS.KeyFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("TLS key file not found: %s", s.opts.TLS.KeyFile)
	}

	return &tls.Config{
		MinVersion: tls.VersionTLS13,
		CipherSuites: []uint16{
			tls.TLS_AES_128_GCM_SHA256,
			tls.TLS_AES_256_GCM_SHA384,
			tls.TLS_CHACHA20_POLY1305_SHA256,
		},
	}, nil
}
