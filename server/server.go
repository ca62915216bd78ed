// Package server hosts live layout sessions over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/TFMV/kolgraph/config"
	"github.com/TFMV/kolgraph/fixtures"
	"github.com/TFMV/kolgraph/logging"
	"github.com/TFMV/kolgraph/metrics"
	"github.com/TFMV/kolgraph/models"
	"github.com/TFMV/kolgraph/physics"
)

const (
	maxBodyBytes    = 1 << 20
	shutdownTimeout = 5 * time.Second
)

// Server owns the session table. Each session runs its own physics.Loop.
type Server struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.Registry
	source  models.NetworkSource
	limiter *rate.Limiter // nil when session creation is unthrottled

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	sessions map[string]*session
	closed   bool
	reaping  bool
	wg       sync.WaitGroup
}

type session struct {
	id        string
	network   *models.Network
	loop      *physics.Loop
	width     float64
	height    float64
	createdAt time.Time
	lastSeen  atomic.Int64 // unix nanoseconds of the last request naming the session
}

func (sess *session) touch(now time.Time) {
	sess.lastSeen.Store(now.UnixNano())
}

func (sess *session) idleSince(now time.Time) time.Duration {
	return now.Sub(time.Unix(0, sess.lastSeen.Load()))
}

// Option configures a Server
type Option func(*Server)

// WithSource replaces the fixture source used for {"fixture": ...} requests
func WithSource(src models.NetworkSource) Option {
	return func(s *Server) { s.source = src }
}

// New creates a server. A nil logger or registry falls back to a no-op
// logger and the default registry.
func New(cfg *config.Config, logger *zap.Logger, registry *metrics.Registry, opts ...Option) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	if registry == nil {
		registry = metrics.DefaultRegistry()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		cfg:      cfg,
		logger:   logging.OrNop(logger),
		metrics:  registry,
		source:   fixtures.Source{},
		ctx:      ctx,
		cancel:   cancel,
		sessions: make(map[string]*session),
	}
	if cfg.Server.CreateRate > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.Server.CreateRate), max(cfg.Server.CreateBurst, 1))
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler wrapped in logging and metrics
// middleware
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", s.metrics.Handler())

	mux.HandleFunc("GET /api/fixtures", s.handleFixtures)
	mux.HandleFunc("GET /api/sessions", s.handleListSessions)
	mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	mux.HandleFunc("DELETE /api/sessions/{id}", s.handleDeleteSession)
	mux.HandleFunc("GET /api/sessions/{id}/frame", s.handleFrame)
	mux.HandleFunc("GET /api/sessions/{id}/render", s.handleRender)
	mux.HandleFunc("GET /api/sessions/{id}/hover", s.handleHover)
	mux.HandleFunc("GET /api/sessions/{id}/nodes", s.handleNodes)
	mux.HandleFunc("GET /api/sessions/{id}/nodes/{node}", s.handleNode)
	mux.HandleFunc("PUT /api/sessions/{id}/pins/{node}", s.handlePin)
	mux.HandleFunc("DELETE /api/sessions/{id}/pins/{node}", s.handleUnpin)

	mux.HandleFunc("GET /view/{id}", s.handleView)

	return s.recoverMiddleware(s.metricsMiddleware(s.loggingMiddleware(mux)))
}

// Start serves until ctx is cancelled, then shuts down gracefully and tears
// down every session
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Server.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		s.Close()
		return err
	})
	return g.Wait()
}

// Close stops every session loop. New sessions are refused afterwards.
func (s *Server) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	live := make([]*session, 0, len(s.sessions))
	for id, sess := range s.sessions {
		live = append(live, sess)
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
	for _, sess := range live {
		sess.loop.Stop()
		s.metrics.SessionClosed("shutdown")
	}
	if len(live) > 0 {
		s.logger.Info("stopped sessions", zap.Int("count", len(live)))
	}
}

var (
	errTooManySessions = errors.New("session limit reached")
	errServerClosed    = errors.New("server is shutting down")
)

// add registers sess and starts its loop
func (s *Server) add(sess *session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errServerClosed
	}
	if len(s.sessions) >= s.cfg.Server.MaxSessions {
		return errTooManySessions
	}
	s.sessions[sess.id] = sess
	sess.loop.Start(s.ctx)
	if idle := s.cfg.Server.SessionIdle; idle > 0 && !s.reaping {
		s.reaping = true
		s.wg.Add(1)
		go s.reapLoop(idle)
	}
	return nil
}

// reapLoop stops sessions nobody has asked about for longer than idle
func (s *Server) reapLoop(idle time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(idle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case now := <-ticker.C:
			s.reap(now)
		}
	}
}

// reap removes every session idle at now and returns how many it stopped
func (s *Server) reap(now time.Time) int {
	idle := s.cfg.Server.SessionIdle
	if idle <= 0 {
		return 0
	}

	s.mu.Lock()
	var stale []*session
	for id, sess := range s.sessions {
		if sess.idleSince(now) > idle {
			stale = append(stale, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range stale {
		sess.loop.Stop()
		s.metrics.SessionClosed("idle")
		s.logger.Info("Session expired",
			zap.String("session", sess.id),
			zap.Duration("idle", sess.idleSince(now)))
	}
	return len(stale)
}

func (s *Server) get(id string) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

// remove unregisters and stops a session
func (s *Server) remove(id string) bool {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		return false
	}
	sess.loop.Stop()
	return true
}

// list returns live sessions, oldest first
func (s *Server) list() []*session {
	s.mu.Lock()
	out := make([]*session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].createdAt.Equal(out[j].createdAt) {
			return out[i].id < out[j].id
		}
		return out[i].createdAt.Before(out[j].createdAt)
	})
	return out
}

// SessionCount returns the number of live sessions
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (sess *session) response() SessionResponse {
	return SessionResponse{
		ID:        sess.id,
		Network:   sess.network.Name,
		Nodes:     len(sess.network.Nodes),
		Edges:     len(sess.network.Edges),
		Width:     sess.width,
		Height:    sess.height,
		ViewURL:   "/view/" + sess.id,
		CreatedAt: sess.createdAt,
	}
}
