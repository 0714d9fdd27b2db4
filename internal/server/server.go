// Package server provides the HTTP API for the CV builder: PDF export, job suggestions, template listing,
// health and metrics.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/jonathan/cv-builder/internal/export"
	"github.com/jonathan/cv-builder/internal/server/middleware"
	"github.com/jonathan/cv-builder/internal/server/ratelimit"
	"github.com/jonathan/cv-builder/internal/suggestions"
)

// DefaultMaxBodyBytes bounds request bodies. A CV with a 5MB photo encodes to about 7MB of JSON.
const DefaultMaxBodyBytes = 10 << 20

const shutdownTimeout = 30 * time.Second

// Config holds server configuration
type Config struct {
	Port           int
	Exporter       *export.Exporter
	Suggestions    *suggestions.Service
	Logger         *zap.Logger
	RateLimit      *ratelimit.Config // nil uses ratelimit.LoadConfig
	AllowedOrigins []string
	MaxBodyBytes   int64
	AccessLog      bool
}

// Server represents the HTTP server
type Server struct {
	httpServer   *http.Server
	exporter     *export.Exporter
	suggestions  *suggestions.Service
	logger       *zap.Logger
	rateLimiter  *ratelimit.Limiter
	metrics      *metrics
	maxBodyBytes int64
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	if cfg.Port < 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", cfg.Port)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("server")

	s := &Server{
		exporter:     cfg.Exporter,
		suggestions:  cfg.Suggestions,
		logger:       logger,
		metrics:      newMetrics(),
		maxBodyBytes: cfg.MaxBodyBytes,
	}
	if s.exporter == nil {
		s.exporter = export.New(logger)
	}
	if s.suggestions == nil {
		s.suggestions = suggestions.NewService(nil, logger)
	}
	if s.maxBodyBytes <= 0 {
		s.maxBodyBytes = DefaultMaxBodyBytes
	}

	rl := cfg.RateLimit
	if rl == nil {
		loaded := ratelimit.LoadConfig()
		rl = &loaded
	}
	s.rateLimiter = ratelimit.NewLimiter(*rl)

	mux := http.NewServeMux()
	s.handle(mux, "POST /api/cv/export", s.handleExport)
	s.handle(mux, "POST /api/cv/export/stream", s.handleExportStream)
	s.handle(mux, "POST "+suggestions.SuggestionsPath, s.handleSuggestions)
	s.handle(mux, "GET /api/templates", s.handleTemplates)
	s.handle(mux, "GET /health", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.handler())

	handler := middleware.Chain(mux,
		middleware.RequestID,
		middleware.Recovery(logger),
		middleware.Logging(logger, cfg.AccessLog),
		middleware.CORS(cfg.AllowedOrigins),
		s.withRateLimit,
	)

	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return s, nil
}

func (s *Server) handle(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.Handle(pattern, s.metrics.instrument(pattern, h))
}

// Handler returns the root handler, middleware included.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Addr is the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer s.rateLimiter.Stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Server starting", zap.String("addr", ln.Addr().String()))
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("Server stopped")
	return nil
}

// withRateLimit rejects clients over their endpoint budget with 429.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		info := s.rateLimiter.Allow(clientID(r), r.Method, r.URL.Path)
		if info.Limit > 0 {
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(info.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime.Unix(), 10))
		}
		if info.Allowed {
			next.ServeHTTP(w, r)
			return
		}

		retry := int(info.RetryAfter.Seconds() + 0.999)
		if retry < 1 {
			retry = 1
		}
		w.Header().Set("Retry-After", strconv.Itoa(retry))
		s.metrics.rateLimited.Inc()
		s.logger.Warn("Rate limit exceeded",
			zap.String("request_id", middleware.GetRequestID(r.Context())),
			zap.String("client", clientID(r)),
			zap.String("path", r.URL.Path))
		s.jsonResponse(w, http.StatusTooManyRequests, ErrorBody{
			Error:     CodeRateLimited,
			Message:   MsgRateLimited,
			RequestID: middleware.GetRequestID(r.Context()),
		})
	})
}

// clientID is the remote IP without port.
func clientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}
