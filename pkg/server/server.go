// Package server provides the Voygen gateway HTTP server.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"sync"

	"voygen/gateway/pkg/chatapp"
	"voygen/gateway/pkg/config"
	"voygen/gateway/pkg/proxy"
	"voygen/gateway/pkg/proxy/handlers"
	"voygen/gateway/pkg/proxy/middleware"
	"voygen/gateway/pkg/telemetry/health"
	"voygen/gateway/pkg/telemetry/logging"
	"voygen/gateway/pkg/telemetry/metrics"
)

// Dependencies are the components the server routes to. Forwarder and
// Extractor are required; the rest may be nil.
type Dependencies struct {
	// Forwarder calls the remote MCP services.
	Forwarder handlers.Forwarder

	// Extractor fetches and extracts pages for import-from-url.
	Extractor handlers.ContentExtractor

	// ChatProxy forwards the chat prefixes. Nil when chat is disabled.
	ChatProxy http.Handler

	// ChatProber backs GET /health/chat. Nil when chat is disabled.
	ChatProber handlers.ChatProber

	// Checker backs GET /ready.
	Checker *health.Checker

	// Metrics records request metrics and serves the metrics endpoint.
	Metrics *metrics.Collector

	// Version is reported by /health and the root info.
	Version string
}

// Server is the gateway's HTTP server.
type Server struct {
	config       *config.Config
	deps         Dependencies
	httpServer   *http.Server
	listener     net.Listener
	shutdownChan chan struct{}
	shutdownOnce sync.Once
	mu           sync.RWMutex
	isRunning    bool
}

// NewServer creates a new gateway server.
func NewServer(cfg *config.Config, deps Dependencies) *Server {
	return &Server{
		config:       cfg,
		deps:         deps,
		shutdownChan: make(chan struct{}),
	}
}

// Start listens on the configured address and serves until ctx is done,
// Stop is called, or serving fails. It shuts down gracefully before
// returning.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return fmt.Errorf("server is already running")
	}

	ln, err := net.Listen("tcp", s.config.Server.ListenAddress)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("failed to listen on %s: %w", s.config.Server.ListenAddress, err)
	}

	s.listener = ln
	s.httpServer = &http.Server{
		Handler:        s.setupRoutes(),
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		IdleTimeout:    s.config.Server.IdleTimeout,
		MaxHeaderBytes: s.config.Server.MaxHeaderBytes,
	}
	s.isRunning = true
	s.mu.Unlock()

	errChan := make(chan error, 1)
	go func() {
		slog.Info("starting gateway server",
			"address", ln.Addr().String(),
			"environment", s.config.Server.Environment,
			"chat_enabled", s.config.Chat.Enabled,
		)

		if err := s.httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("context cancelled, initiating shutdown")
		return s.Shutdown(context.Background())
	case err := <-errChan:
		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()
		return err
	case <-s.shutdownChan:
		slog.Info("shutdown requested")
		return s.Shutdown(context.Background())
	}
}

// Stop asks a running Start to shut down.
func (s *Server) Stop() {
	select {
	case <-s.shutdownChan:
	default:
		close(s.shutdownChan)
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.mu.Lock()
		if !s.isRunning {
			s.mu.Unlock()
			return
		}
		s.mu.Unlock()

		slog.Info("initiating graceful shutdown", "timeout", s.config.Server.ShutdownTimeout.String())

		shutdownCtx := ctx
		if s.config.Server.ShutdownTimeout > 0 {
			var cancel context.CancelFunc
			shutdownCtx, cancel = context.WithTimeout(ctx, s.config.Server.ShutdownTimeout)
			defer cancel()
		}

		if s.httpServer != nil {
			if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
				slog.Error("error during server shutdown", "error", err)
				shutdownErr = fmt.Errorf("server shutdown error: %w", err)
			}
		}

		s.mu.Lock()
		s.isRunning = false
		s.mu.Unlock()

		slog.Info("gateway server stopped")
	})

	return shutdownErr
}

// setupRoutes configures HTTP routes and the middleware chain.
func (s *Server) setupRoutes() http.Handler {
	mux := http.NewServeMux()
	cfg := s.config
	expose := cfg.Server.IsDevelopment()

	extract := handlers.NewExtractHandler(s.deps.Forwarder, expose)
	importURL := handlers.NewImportHandler(s.deps.Forwarder, s.deps.Extractor, expose)
	publish := handlers.NewPublishHandler(s.deps.Forwarder, expose)

	handle(mux, "GET /health", handlers.NewHealthHandler(s.deps.Version, cfg.Server.Environment, s.components()))
	if s.deps.Checker != nil {
		handle(mux, "GET /ready", s.deps.Checker.ReadinessHandler())
	}
	if cfg.Telemetry.Metrics.Enabled && s.deps.Metrics != nil {
		handle(mux, "GET "+cfg.Telemetry.Metrics.Path, s.deps.Metrics.Handler())
	}

	handle(mux, "POST /voygen/extract/hotels", http.HandlerFunc(extract.Hotels))
	handle(mux, "POST /voygen/extract/rooms", http.HandlerFunc(extract.Rooms))
	handle(mux, "GET /voygen/extract/status", extract.Status())

	handle(mux, "POST /voygen/import-from-url/content", http.HandlerFunc(importURL.Content))
	handle(mux, "POST /voygen/import-from-url/parse", http.HandlerFunc(importURL.Parse))
	handle(mux, "GET /voygen/import-from-url/status", importURL.Status())

	handle(mux, "POST /voygen/publish/proposal", http.HandlerFunc(publish.Proposal))
	handle(mux, "POST /voygen/publish/preview", http.HandlerFunc(publish.Preview))
	handle(mux, "GET /voygen/publish/templates", http.HandlerFunc(publish.Templates))
	handle(mux, "GET /voygen/publish/status", publish.Status())

	chatPrefixes := s.chatPrefixes()
	if s.deps.ChatProber != nil {
		handle(mux, "GET /health/chat", handlers.NewChatHealthHandler(s.deps.ChatProber))
	}
	if s.deps.ChatProxy != nil {
		for _, prefix := range chatPrefixes {
			mux.Handle(prefix, s.deps.ChatProxy)
			mux.Handle(prefix+"/", s.deps.ChatProxy)
		}
	}

	notFound := proxy.NotFoundHandler()
	if cfg.Chat.Enabled && cfg.Chat.StaticDir != "" {
		mux.Handle("/", chatapp.NewStaticHandler(cfg.Chat.StaticDir, s.apiPrefixes(), notFound))
	} else {
		handle(mux, "GET /{$}", handlers.NewRootHandler(s.deps.Version))
		mux.Handle("/", notFound)
	}

	var handler http.Handler = mux

	// Body limit middleware; proxied chat requests stream uploads untouched
	handler = middleware.BodyLimitMiddleware(cfg.Server.MaxBodyBytes, chatPrefixes)(handler)

	// CORS middleware
	handler = middleware.CORSMiddleware(middleware.NewCORSConfig(cfg.Server.CORS))(handler)

	// Metrics middleware
	handler = middleware.MetricsMiddleware(s.deps.Metrics)(handler)

	// Request ID middleware
	handler = middleware.RequestIDMiddleware(handler)

	// Logging middleware
	handler = middleware.LoggingMiddleware(handler)

	// Recovery middleware (outermost)
	handler = middleware.RecoveryMiddleware(expose)(handler)

	return handler
}

// handle registers h under pattern and tags requests with the pattern so
// logs and journal entries name the route.
func handle(mux *http.ServeMux, pattern string, h http.Handler) {
	mux.Handle(pattern, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeHTTP(w, r.WithContext(logging.WithRoute(r.Context(), pattern)))
	}))
}

// chatPrefixes returns the normalized chat proxy prefixes, or nil when chat
// is disabled.
func (s *Server) chatPrefixes() []string {
	if !s.config.Chat.Enabled {
		return nil
	}
	prefixes := make([]string, 0, len(s.config.Chat.ProxyPrefixes))
	for _, p := range s.config.Chat.ProxyPrefixes {
		p = "/" + strings.Trim(p, "/")
		if p != "/" {
			prefixes = append(prefixes, p)
		}
	}
	return prefixes
}

// apiPrefixes returns the paths answered with JSON, never with the chat
// client's index.html.
func (s *Server) apiPrefixes() []string {
	prefixes := append([]string{"/voygen", "/health", "/ready"}, s.chatPrefixes()...)
	if s.config.Telemetry.Metrics.Enabled {
		prefixes = append(prefixes, s.config.Telemetry.Metrics.Path)
	}
	return prefixes
}

// components describes how the chat layer is served for /health.
func (s *Server) components() map[string]string {
	if !s.config.Chat.Enabled {
		return nil
	}
	mode := "proxied"
	if s.config.Chat.IsLocal() {
		mode = "local"
	}
	return map[string]string{"api": "healthy", "librechat": mode}
}

// IsRunning returns true if the server is running.
func (s *Server) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// Addr returns the address the server listens on, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Handler returns the configured HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.setupRoutes()
}
