// Package httpapi serves the current feed state as JSON for headless use.
package httpapi

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rileyhilliard/envdash/internal/config"
	"github.com/rileyhilliard/envdash/internal/errors"
	"github.com/rileyhilliard/envdash/internal/feed"
	"github.com/rileyhilliard/envdash/internal/logger"
	"github.com/rileyhilliard/envdash/internal/threshold"
	"github.com/rs/cors"
)

const shutdownTimeout = 5 * time.Second

// Server exposes /healthz, /api/snapshot and /api/metrics/{metric}.
type Server struct {
	state   *feed.State
	log     logger.Logger
	addr    string
	router  *chi.Mux
	handler http.Handler
	started time.Time
}

// New builds the router. Nothing listens until ListenAndServe.
func New(state *feed.State, cfg config.ServeConfig, log logger.Logger) *Server {
	if log == nil {
		log = logger.Noop()
	}
	s := &Server{
		state:   state,
		log:     log,
		addr:    cfg.Addr,
		router:  chi.NewRouter(),
		started: time.Now(),
	}
	s.setupMiddleware()
	s.setupRoutes()

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	s.handler = c.Handler(s.router)
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.logRequests)
	s.router.Use(middleware.Recoverer)
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Get("/api/snapshot", s.handleSnapshot)
	s.router.Get("/api/metrics/{metric}", s.handleMetric)
	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, errors.ErrMissingElement, "no such endpoint")
	})
}

// Handler returns the CORS-wrapped router.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrServe,
			"Cannot listen on "+s.addr,
			"Pick another address with --addr or serve.addr in .envdash.yaml")
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("status API listening on %s", ln.Addr())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.WrapWithCode(err, errors.ErrServe, "Status API stopped", "")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.WrapWithCode(err, errors.ErrServe, "Status API did not shut down cleanly", "")
	}
	s.log.Info("status API stopped")
	return nil
}

// logRequests logs one line per request through the app logger.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("%s %s %d %s", r.Method, r.URL.Path, ww.Status(), time.Since(start).Round(time.Microsecond))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ok, failed := s.state.Counts()
	resp := healthResponse{
		Status:    "ok",
		Uptime:    time.Since(s.started).Round(time.Second).String(),
		Successes: ok,
		Failures:  failed,
	}
	if snap := s.state.Load(); snap != nil {
		at := snap.FetchedAt
		resp.LastFetch = &at
	}
	if err, at := s.state.LastError(); err != nil {
		resp.LastError = errors.Summary(err)
		resp.LastErrorAt = &at
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap := s.state.Load()
	latest, ok := snap.Latest()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, errors.ErrMissingElement, "no readings yet")
		return
	}

	resp := snapshotResponse{
		Channel:   channelInfo{ID: snap.Channel.ID, Name: snap.Channel.Name},
		FetchedAt: snap.FetchedAt,
		ReadingAt: latest.Time,
		EntryID:   latest.EntryID,
	}
	for _, m := range threshold.All {
		v := latest.Value(m)
		resp.Metrics = append(resp.Metrics, newMetricStatus(m, v))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMetric(w http.ResponseWriter, r *http.Request) {
	m, err := threshold.ParseMetric(chi.URLParam(r, "metric"))
	if err != nil {
		writeError(w, http.StatusNotFound, errors.ErrMissingElement, err.Error())
		return
	}

	snap := s.state.Load()
	st, err := snap.WindowStats(m, feed.WindowSize)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, errors.ErrMissingElement, "no readings yet")
		return
	}

	resp := metricDetail{
		metricStatus: newMetricStatus(m, st.Current),
		Min:          st.Min,
		Max:          st.Max,
		Mean:         st.Mean,
		Count:        st.Count,
	}
	for _, rd := range snap.Window(feed.WindowSize) {
		resp.Window = append(resp.Window, point{At: rd.Time, Value: rd.Value(m)})
	}
	writeJSON(w, http.StatusOK, resp)
}
