// Package server hosts interactive sessions over websockets, a one-shot stats
// endpoint and the static frontend.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/psidex/chargraph/internal/graph"
	"github.com/psidex/chargraph/internal/lib"
	"github.com/psidex/chargraph/internal/session"
	"github.com/psidex/chargraph/internal/stats"
)

// maxPayload bounds a graph posted to the stats endpoint.
const maxPayload = 16 << 20

type Options struct {
	Addr string `toml:"addr" validate:"required"`
	// StaticDir is served at the root when set.
	StaticDir string `toml:"static_dir"`
	// MaxLifetime ends a session after this long; zero never does.
	MaxLifetime  lib.Duration `toml:"max_lifetime"`
	WriteTimeout lib.Duration `toml:"write_timeout"`
	// StatsRate is how many stats requests per second the server answers.
	StatsRate  float64        `toml:"stats_rate" validate:"gt=0"`
	StatsBurst int            `toml:"stats_burst" validate:"gt=0"`
	Session    session.Config `toml:"session"`
}

func DefaultOptions() Options {
	return Options{
		Addr:         "127.0.0.1:8080",
		StaticDir:    "public",
		WriteTimeout: lib.DurationFrom(10 * time.Second),
		StatsRate:    50,
		StatsBurst:   100,
		Session:      session.DefaultConfig(),
	}
}

type Server struct {
	opts         Options
	session      session.Options
	metrics      *Metrics
	statsLimiter *rate.Limiter
	upgrader     websocket.Upgrader
	logger       *slog.Logger
}

// New builds a server. so carries the layout, view, style and theme every
// session starts from; its Defaults, Observer and Logger are filled in here.
func New(o Options, so session.Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	so.Defaults = o.Session
	so.Logger = logger
	return &Server{
		opts:         o,
		session:      so,
		metrics:      NewMetrics(),
		statsLimiter: rate.NewLimiter(rate.Limit(o.StatsRate), o.StatsBurst),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

func (s *Server) Metrics() *Metrics {
	return s.metrics
}

func (s *Server) Handler() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)

	router.Get("/healthz", s.handleHealth)
	router.Handle("/metrics", s.metrics.Handler())
	router.Get("/ws", s.handleSession)
	router.Route("/api", func(r chi.Router) {
		r.Post("/stats", s.withRateLimit(s.statsLimiter, s.handleStats))
	})

	if s.opts.StaticDir != "" {
		router.Handle("/*", http.FileServer(http.Dir(s.opts.StaticDir)))
	}
	return router
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.opts.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	c, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("ws upgrade", "err", err)
		return
	}
	defer c.Close()

	ws := lib.NewThreadSafeWebSocket(c)
	ws.WriteTimeout = s.opts.WriteTimeout.Duration

	so := s.session
	so.Observer = sessionObserver{s.metrics}
	sess, err := session.Accept(uuid.New().String(), ws, so)
	if err != nil {
		s.logger.Info("session refused", "err", err, "request_id", chimiddleware.GetReqID(r.Context()))
		return
	}

	s.metrics.ActiveSessions.Inc()
	defer s.metrics.ActiveSessions.Dec()
	s.logger.Info("session started", "session", sess.ID(), "remote_addr", r.RemoteAddr)

	ctx := r.Context()
	if s.opts.MaxLifetime.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.MaxLifetime.Duration)
		defer cancel()
	}

	if err := sess.Run(ctx); err != nil {
		s.logger.Info("session ended", "session", sess.ID(), "err", err)
		return
	}
	s.logger.Info("session ended", "session", sess.ID())
	_ = ws.Close("session over")
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	g, err := graph.Decode(http.MaxBytesReader(w, r.Body, maxPayload))
	if err != nil {
		var verr *graph.ValidationError
		if errors.As(err, &verr) {
			s.metrics.PayloadsRejected.WithLabelValues("http").Inc()
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error":  graph.ErrInvalidData.Error(),
				"field":  verr.Field,
				"reason": verr.Reason,
			})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	res := stats.Derive(g)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"rows":        stats.Ranked(res.Rows),
		"dangling":    g.Resolve(),
		"fingerprint": fmt.Sprintf("%016x", g.Fingerprint()),
	})
}

// withRateLimit answers 429 once the limiter is exhausted. The limiter is per
// server, not per client.
func (s *Server) withRateLimit(limiter *rate.Limiter, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !limiter.Allow() {
			w.Header().Set("Retry-After", "1")
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
			s.logger.Warn("rate limit exceeded", "path", r.URL.Path, "remote_addr", r.RemoteAddr)
			return
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
