// Package server serves the interactive family tree over HTTP.
//
// The server keeps the runner's current snapshot in memory and renders pages
// and exports from it on demand; artifacts are cached by layout hash like
// the CLI's. Reload re-reads the repository and notifies every connected
// page over the /ws websocket so browsers refresh themselves. Watch and Poll
// trigger reloads from file changes or on a timer.
//
//	GET /                 interactive page
//	GET /tree.svg         static SVG
//	GET /tree.pdf         printable PDF
//	GET /tree.dot.svg     graphviz drawing
//	GET /api/layout       layout JSON
//	GET /api/search?q=    people whose name contains q
//	GET /api/timeline     births and deaths in date order
//	GET /api/people?q=    records, optionally filtered by name, id or profession
//	GET /api/people/{id}  one person record
//	GET /ws               reload notifications
//	GET /metrics          Prometheus metrics
//	GET /healthz          snapshot status
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/kinfolk/pkg/camera"
	kerrors "github.com/matzehuels/kinfolk/pkg/errors"
	"github.com/matzehuels/kinfolk/pkg/family"
	"github.com/matzehuels/kinfolk/pkg/layout"
	"github.com/matzehuels/kinfolk/pkg/pipeline"
)

// WebsocketPath is where pages listen for reload notifications.
const WebsocketPath = "/ws"

// shutdownTimeout bounds how long in-flight requests may finish on exit.
const shutdownTimeout = 5 * time.Second

// Server serves one runner's snapshots.
type Server struct {
	runner  *pipeline.Runner
	opts    pipeline.Options
	logger  *log.Logger
	hub     *Hub
	metrics http.Handler
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics exposes g at /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) { s.metrics = promhttp.HandlerFor(g, promhttp.HandlerOpts{}) }
}

// New creates a server rendering with opts. The runner's source and cache
// stay owned by the caller.
func New(runner *pipeline.Runner, opts pipeline.Options, logger *log.Logger, options ...Option) *Server {
	if logger == nil {
		logger = log.Default()
	}
	opts.LiveReload = WebsocketPath
	opts.Logger = logger
	s := &Server{
		runner: runner,
		opts:   opts,
		logger: logger,
		hub:    NewHub(logger),
	}
	for _, o := range options {
		o(s)
	}
	return s
}

// Hub returns the websocket hub.
func (s *Server) Hub() *Hub { return s.hub }

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/", s.artifact(pipeline.FormatHTML, "text/html; charset=utf-8"))
	r.Get("/tree.svg", s.artifact(pipeline.FormatSVG, "image/svg+xml"))
	r.Get("/tree.pdf", s.artifact(pipeline.FormatPDF, "application/pdf"))
	r.Get("/tree.dot.svg", s.artifact(pipeline.FormatGraphSVG, "image/svg+xml"))

	r.Route("/api", func(r chi.Router) {
		r.Get("/layout", s.handleLayout)
		r.Get("/search", s.handleSearch)
		r.Get("/timeline", s.handleTimeline)
		r.Get("/people", s.handlePeople)
		r.Get("/people/{id}", s.handlePerson)
	})

	r.Get(WebsocketPath, s.hub.ServeHTTP)
	r.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	return r
}

// Reload re-reads the repository. Connected pages are told to refresh when
// the layout changed.
func (s *Server) Reload(ctx context.Context) error {
	prev, hadPrev := s.runner.Current()
	snap, err := s.runner.Reload(ctx, s.opts)
	if err != nil {
		s.logger.Error("reload failed, keeping previous snapshot", "error", err)
		return err
	}
	if hadPrev && prev.LayoutHash == snap.LayoutHash {
		s.logger.Debug("snapshot unchanged", "records", len(snap.People))
		return nil
	}
	s.logger.Info("snapshot reloaded", "records", len(snap.People), "layout", short(snap.LayoutHash))
	s.hub.Broadcast(Event{Type: EventReload, LayoutHash: snap.LayoutHash, LoadedAt: snap.LoadedAt})
	return nil
}

// Run loads the first snapshot, then serves on addr until ctx is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	if err := s.Reload(ctx); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("serving family tree", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.hub.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) current() (*pipeline.Snapshot, error) {
	snap, ok := s.runner.Current()
	if !ok {
		return nil, kerrors.New(kerrors.ErrCodeSourceUnavailable, "family records not loaded yet")
	}
	return snap, nil
}

func (s *Server) artifact(format, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := s.current()
		if err != nil {
			s.writeError(w, err)
			return
		}
		opts := s.opts
		opts.Formats = []string{format}
		opts.Highlight = highlight(snap, r.URL.Query().Get("highlight"))
		artifacts, err := s.runner.Render(r.Context(), snap, opts)
		if err != nil {
			s.writeError(w, err)
			return
		}
		etag := short(snap.LayoutHash)
		if opts.Highlight != "" {
			etag += "-" + short(opts.Highlight)
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("ETag", `"`+etag+`"`)
		w.Write(artifacts[format])
	}
}

// highlight returns id when it names a laid-out person. Anything else renders
// without a highlight, so arbitrary query values never reach the cache.
func highlight(snap *pipeline.Snapshot, id string) string {
	if kerrors.ValidatePersonID(id) != nil {
		return ""
	}
	if _, ok := snap.Layout.Node(id); !ok {
		return ""
	}
	return id
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	snap, err := s.current()
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap.Layout)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if _, err := kerrors.ValidateSearchQuery(q, camera.MinSearchRunes); err != nil {
		s.writeError(w, err)
		return
	}
	snap, err := s.current()
	if err != nil {
		s.writeError(w, err)
		return
	}
	matches := camera.Search(snap.Layout.Nodes, q)
	if matches == nil {
		matches = []layout.Node{}
	}
	writeJSON(w, http.StatusOK, matches)
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	snap, err := s.current()
	if err != nil {
		s.writeError(w, err)
		return
	}
	events := family.Timeline(snap.People)
	if events == nil {
		events = []family.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// handlePeople lists records, filtered by ?q= over names, national id and
// profession when given.
func (s *Server) handlePeople(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q != "" {
		if _, err := kerrors.ValidateSearchQuery(q, family.MinQueryRunes); err != nil {
			s.writeError(w, err)
			return
		}
	}
	snap, err := s.current()
	if err != nil {
		s.writeError(w, err)
		return
	}
	people := snap.People
	if q != "" {
		people = family.Search(people, q)
	}
	if people == nil {
		people = []family.Person{}
	}
	writeJSON(w, http.StatusOK, people)
}

func (s *Server) handlePerson(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := kerrors.ValidatePersonID(id); err != nil {
		s.writeError(w, err)
		return
	}
	snap, err := s.current()
	if err != nil {
		s.writeError(w, err)
		return
	}
	for _, p := range snap.People {
		if p.ID == id {
			writeJSON(w, http.StatusOK, p)
			return
		}
	}
	s.writeError(w, kerrors.New(kerrors.ErrCodeNotFound, "no person with id %q", id))
}

type health struct {
	Status   string    `json:"status"`
	Source   string    `json:"source"`
	Records  int       `json:"records"`
	Warnings int       `json:"warnings"`
	LoadedAt time.Time `json:"loaded_at"`
	Clients  int       `json:"clients"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.runner.Current()
	if !ok {
		writeJSON(w, http.StatusServiceUnavailable, health{Status: "loading", Clients: s.hub.Len()})
		return
	}
	writeJSON(w, http.StatusOK, health{
		Status:   "ok",
		Source:   snap.Source,
		Records:  len(snap.People),
		Warnings: len(snap.Issues),
		LoadedAt: snap.LoadedAt,
		Clients:  s.hub.Len(),
	})
}

// =============================================================================
// Helpers
// =============================================================================

type errorBody struct {
	Error string       `json:"error"`
	Code  kerrors.Code `json:"code,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := kerrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, errorBody{Error: kerrors.UserMessage(err), Code: kerrors.GetCode(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).Round(time.Microsecond))
	})
}

func short(hash string) string {
	if len(hash) > 12 {
		return hash[:12]
	}
	return hash
}
