// Package httpbridge exposes the interview controller over HTTP so
// non-terminal clients (editors, web frontends, scripts) can drive the
// same guided interview the TUI does.
package httpbridge

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/kingrea/The-Briefing/internal/interview"
)

// ProtocolVersion identifies the bridge contract version exposed via /health.
const ProtocolVersion = "1.0.0"

// ServerStatus reports runtime lifecycle states for the HTTP server.
type ServerStatus string

const (
	StatusStarting ServerStatus = "starting"
	StatusReady    ServerStatus = "ready"
	StatusDraining ServerStatus = "draining"
)

var errServerDisabled = errors.New("httpbridge: server disabled")

// Logger records bridge status information. It matches logging.Logger's
// signature.
type Logger interface {
	Printf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// Server wraps the HTTP listener and handlers backing the interview bridge.
type Server struct {
	settings Settings
	ctrl     *interview.Controller
	logger   Logger
	clock    func() time.Time

	mu        sync.RWMutex
	server    *http.Server
	listener  net.Listener
	status    ServerStatus
	startTime time.Time
}

// Option customizes server construction.
type Option func(*Server)

// WithLogger overrides the default no-op logger.
func WithLogger(l Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock allows tests to control timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Server) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewServer prepares a bridge server over the given controller.
func NewServer(settings Settings, ctrl *interview.Controller, opts ...Option) *Server {
	s := &Server{
		settings: settings,
		ctrl:     ctrl,
		logger:   nopLogger{},
		clock:    func() time.Time { return time.Now().UTC() },
		status:   StatusStarting,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Start binds the TCP listener and begins serving HTTP traffic.
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("httpbridge: server is nil")
	}
	if s.ctrl == nil {
		return fmt.Errorf("httpbridge: controller is required")
	}
	if !s.settings.Enabled {
		return errServerDisabled
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return fmt.Errorf("httpbridge: server already started")
	}
	addr := s.settings.Address()
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("httpbridge: listen %s: %w", addr, err)
	}
	s.listener = listener
	s.startTime = s.clock()
	server := &http.Server{
		Handler:      s.routes(),
		ReadTimeout:  s.settings.ReadTimeout,
		WriteTimeout: s.settings.WriteTimeout,
		IdleTimeout:  s.settings.IdleTimeout,
	}
	if ctx != nil {
		server.BaseContext = func(net.Listener) context.Context { return ctx }
	}
	s.server = server
	s.status = StatusReady
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Printf("httpbridge: serve error: %v", err)
		}
	}()
	s.logger.Printf("httpbridge: listening on %s", listener.Addr().String())
	return nil
}

// Shutdown stops accepting new connections and waits for in-flight
// requests to exit.
func (s *Server) Shutdown(ctx context.Context) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil || s.server == nil {
		return nil
	}
	s.status = StatusDraining
	deadline := ctx
	if deadline == nil {
		var cancel context.CancelFunc
		deadline, cancel = context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
	}
	if err := s.server.Shutdown(deadline); err != nil {
		return err
	}
	s.listener = nil
	s.server = nil
	return nil
}

// Addr returns the bound TCP address once the server has started.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// BaseURL returns the HTTP base URL (scheme + host:port) for the running server.
func (s *Server) BaseURL() string {
	addr := s.Addr()
	if addr == "" {
		return s.settings.URL()
	}
	return "http://" + addr
}

// Status reports the server's lifecycle state.
func (s *Server) Status() ServerStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/health", s.handleHealth)
	r.Get("/session", s.handleSession)
	r.Get("/agents", s.handleAgents)
	r.Post("/vision", s.handleVision)
	r.Route("/team", func(r chi.Router) {
		r.Post("/{agentID}/toggle", s.handleToggle)
		r.Post("/confirm", s.handleConfirm)
	})
	r.Post("/answers", s.handleAnswer)
	r.Post("/skip", s.handleSkip)
	r.Get("/feedback", s.handleFeedback)
	r.Post("/feedback/continue", s.handleContinueFeedback)
	r.Post("/briefing", s.handleBriefing)
	return r
}

func (s *Server) uptimeSeconds() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.startTime.IsZero() {
		return 0
	}
	return int64(time.Since(s.startTime).Seconds())
}
