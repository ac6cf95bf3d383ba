package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/contactform/internal/contact"
	"github.com/vango-dev/contactform/pkg/form"
	"github.com/vango-dev/contactform/pkg/middleware"
	"github.com/vango-dev/contactform/pkg/session"
)

// Server is the HTTP/WebSocket server for the contact form.
type Server struct {
	config   *ServerConfig
	router   chi.Router
	upgrader websocket.Upgrader

	store    session.SessionStore
	ownStore bool

	metrics  *middleware.Metrics
	gatherer prometheus.Gatherer
	tracer   *middleware.Tracer
	logger   *slog.Logger

	httpServer *http.Server

	mu       sync.Mutex
	conns    map[*liveConn]struct{}
	closing  bool
	detached map[string]session.SessionData
	wg       sync.WaitGroup
}

// Option configures a Server.
type Option func(*Server)

// WithStore sets the session store. The caller keeps ownership and closes
// it after the server has shut down.
func WithStore(store session.SessionStore) Option {
	return func(s *Server) {
		s.store = store
	}
}

// WithMetrics records metrics and, when gatherer is not nil, exposes them
// at MetricsPath.
func WithMetrics(m *middleware.Metrics, gatherer prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = gatherer
	}
}

// WithTracer sets the tracer for request and live event spans.
func WithTracer(t *middleware.Tracer) Option {
	return func(s *Server) {
		s.tracer = t
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New creates a new Server with the given configuration.
func New(config *ServerConfig, opts ...Option) *Server {
	if config == nil {
		config = DefaultServerConfig()
	} else {
		config = config.Clone()
	}
	config.fillDefaults()

	s := &Server{
		config:   config,
		conns:    make(map[*liveConn]struct{}),
		detached: make(map[string]session.SessionData),
		logger:   slog.Default().With("component", "server"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = session.NewMemoryStore()
		s.ownStore = true
	}
	if s.tracer == nil {
		s.tracer = middleware.NewTracer()
	}

	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  config.ReadBufferSize,
		WriteBufferSize: config.WriteBufferSize,
		CheckOrigin:     config.CheckOrigin,
	}
	s.router = s.routes()
	return s
}

// routes builds the chi router.
func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(chimw.Recoverer)
	r.Use(s.tracer.Handler)
	r.Use(s.metrics.Handler)

	r.Get("/", s.handlePage)
	r.Post("/", s.handleSubmit)
	r.Get("/healthz", s.handleHealth)
	if s.config.LivePath != "" {
		r.Get(s.config.LivePath, s.handleLive)
	}
	if s.gatherer != nil {
		r.Handle(s.config.MetricsPath, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Config returns the server configuration.
func (s *Server) Config() *ServerConfig {
	return s.config
}

// Logger returns the server logger.
func (s *Server) Logger() *slog.Logger {
	return s.logger
}

// LiveConnections returns the number of open live connections.
func (s *Server) LiveConnections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// newForm creates a contact form whose outcomes feed the metrics and log.
func (s *Server) newForm(sessionID string) *contact.Form {
	log := s.logger.With("session_id", sessionID)
	return contact.New(contact.WithHooks(contact.Hooks{
		OnSubmit: func(sub contact.Submission) {
			s.metrics.RecordSubmission(true)
			log.Info("form submitted", "has_message", sub.HasMessage())
		},
		OnReject: func(errs []form.ValidationError) {
			s.metrics.RecordSubmission(false)
			for _, e := range errs {
				s.metrics.RecordValidationFailure(e.Field)
			}
			log.Debug("form rejected", "errors", len(errs))
		},
		OnFieldError: func(e form.ValidationError) {
			s.metrics.RecordValidationFailure(e.Field)
		},
	}))
}

// Run starts the server on the configured address and blocks until ctx is
// cancelled or the listener fails. Cancellation triggers a graceful
// shutdown bounded by ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.mu.Lock()
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
		ReadTimeout:       s.config.ReadTimeout,
		WriteTimeout:      s.config.WriteTimeout,
		IdleTimeout:       s.config.IdleTimeout,
	}
	httpServer := s.httpServer
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", ln.Addr().String())
		errCh <- httpServer.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err

	case <-ctx.Done():
		s.logger.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	}
}

// Shutdown closes live connections, saves their forms for resume, and
// shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closing = true
	for c := range s.conns {
		c.close(websocket.CloseGoingAway, "server shutting down")
	}
	httpServer := s.httpServer
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("live connections did not close in time")
	}

	s.mu.Lock()
	detached := s.detached
	s.detached = make(map[string]session.SessionData)
	s.mu.Unlock()
	if len(detached) > 0 {
		if err := s.store.SaveAll(ctx, detached); err != nil {
			s.logger.Error("saving sessions failed", "error", err, "sessions", len(detached))
		} else {
			s.logger.Info("sessions saved", "sessions", len(detached))
		}
	}

	var err error
	if httpServer != nil {
		if err = httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
		}
	}
	if s.ownStore {
		_ = s.store.Close()
	}

	s.logger.Info("server shutdown complete")
	return err
}

// expiry returns when a state saved now stops being resumable.
func (s *Server) expiry() time.Time {
	return time.Now().Add(s.config.ResumeWindow)
}
