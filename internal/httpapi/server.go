package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/rohmanhakim/webqa/internal/config"
	"github.com/rohmanhakim/webqa/internal/session"
)

/*
 Server exposes sessions over HTTP.

 - Every client creates its own session; nothing is shared between sessions.
 - Handlers only translate requests to session operations and results to JSON.
 - A run that finishes is saved to the run store when one is configured.
*/

const (
	linkPreviewLimit     = 20
	testCasePreviewLimit = 50
	shutdownTimeout      = 10 * time.Second
)

// SessionFactory creates a fresh session for a client.
type SessionFactory func() *session.Session

// RunSaver persists finished runs.
type RunSaver interface {
	SaveRun(ctx context.Context, snapshot session.Snapshot) (string, error)
}

type Server struct {
	cfg        config.Config
	logger     *slog.Logger
	newSession SessionFactory
	store      RunSaver
	now        func() time.Time

	mu       sync.RWMutex
	sessions map[string]*session.Session

	mux *http.ServeMux
}

type Option func(*Server)

func WithSessionFactory(factory SessionFactory) Option {
	return func(s *Server) {
		s.newSession = factory
	}
}

func WithRunStore(store RunSaver) Option {
	return func(s *Server) {
		s.store = store
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		s.now = now
	}
}

func NewServer(cfg config.Config, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
		sessions: make(map[string]*session.Session),
		mux:      http.NewServeMux(),
	}
	s.newSession = func() *session.Session {
		return session.NewSession(cfg, logger)
	}
	for _, opt := range opts {
		opt(s)
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("POST /sessions", s.handleCreateSession)
	s.mux.HandleFunc("DELETE /sessions/{id}", s.handleDeleteSession)
	s.mux.HandleFunc("POST /sessions/{id}/extract-links", s.withSession(s.handleExtractLinks))
	s.mux.HandleFunc("POST /sessions/{id}/urls", s.withSession(s.handleLoadURLs))
	s.mux.HandleFunc("POST /sessions/{id}/run", s.withSession(s.handleRun))
	s.mux.HandleFunc("GET /sessions/{id}/test-cases", s.withSession(s.handleTestCases))
	s.mux.HandleFunc("GET /sessions/{id}/report", s.withSession(s.handleReport))
	s.mux.HandleFunc("POST /sessions/{id}/clear", s.withSession(s.handleClear))
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe serves on the configured address until ctx is cancelled,
// then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.ListenAddr(),
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http api listening", "addr", s.cfg.ListenAddr())
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) addSession(sess *session.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID()] = sess
}

func (s *Server) session(id string) (*session.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *Server) removeSession(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *session.Session)

// withSession resolves {id} or answers 404.
func (s *Server) withSession(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.session(r.PathValue("id"))
		if !ok {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		next(w, r, sess)
	}
}
