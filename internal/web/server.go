// Package web serves the voice search UI: server-rendered pages driven by the
// session store, with POST-redirect-GET form handling and a WebSocket stream
// for recording progress. Every mutation redirects back to the main page and
// the whole view is rebuilt from a state snapshot.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/Zeeshan138063/voice-rag-search-assistant/internal/health"
	"github.com/Zeeshan138063/voice-rag-search-assistant/internal/ingest"
	"github.com/Zeeshan138063/voice-rag-search-assistant/internal/observe"
	"github.com/Zeeshan138063/voice-rag-search-assistant/internal/pipeline"
	"github.com/Zeeshan138063/voice-rag-search-assistant/internal/search"
	"github.com/Zeeshan138063/voice-rag-search-assistant/internal/session"
	providersearch "github.com/Zeeshan138063/voice-rag-search-assistant/pkg/provider/search"
)

//go:embed templates
var templateFS embed.FS

const shutdownTimeout = 10 * time.Second

// Server renders the UI and routes form submissions into the pipeline.
type Server struct {
	store    *session.Store
	pipe     *pipeline.Pipeline
	orch     *search.Orchestrator
	events   *pipeline.Broadcaster
	health   *health.Handler
	metrics  *observe.Metrics
	logger   *slog.Logger
	pageTmpl *template.Template
	catTmpl  *template.Template

	// recordsPath is the catalog JSON file shown on /catalog; empty disables
	// the page content.
	recordsPath string
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMetrics sets the metrics sink. Defaults to observe.DefaultMetrics.
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithRecordsPath points the catalog page at a record file.
func WithRecordsPath(path string) Option {
	return func(s *Server) { s.recordsPath = path }
}

// New creates a Server over the given collaborators.
func New(store *session.Store, pipe *pipeline.Pipeline, orch *search.Orchestrator, events *pipeline.Broadcaster, h *health.Handler, opts ...Option) (*Server, error) {
	page, err := template.ParseFS(templateFS, "templates/layout.html", "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("web: parse index templates: %w", err)
	}
	cat, err := template.ParseFS(templateFS, "templates/layout.html", "templates/catalog.html")
	if err != nil {
		return nil, fmt.Errorf("web: parse catalog templates: %w", err)
	}

	s := &Server{
		store:    store,
		pipe:     pipe,
		orch:     orch,
		events:   events,
		health:   h,
		pageTmpl: page,
		catTmpl:  cat,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.metrics == nil {
		s.metrics = observe.DefaultMetrics()
	}
	return s, nil
}

// Handler returns the full route tree wrapped in the observability
// middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /record/start", s.handleRecordStart)
	mux.HandleFunc("POST /record/stop", s.handleRecordStop)
	mux.HandleFunc("POST /search", s.handleSearch)
	mux.HandleFunc("POST /settings", s.handleSettings)
	mux.HandleFunc("POST /reset", s.handleReset)
	mux.HandleFunc("POST /export", s.handleExport)
	mux.HandleFunc("GET /catalog", s.handleCatalog)
	mux.HandleFunc("GET /ws", s.handleWS)

	s.health.Register(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	return observe.Middleware(s.metrics)(mux)
}

// Run serves on addr until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("http server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("web: serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("web: shutdown: %w", err)
		}
		return nil
	})
	return g.Wait()
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	view := newIndexView(s.store.Snapshot(), s.store.DrainNotices())
	s.render(w, s.pageTmpl, view)
}

func (s *Server) handleRecordStart(w http.ResponseWriter, r *http.Request) {
	if err := s.pipe.StartRecording(r.Context()); err != nil {
		if errors.Is(err, session.ErrRecordingActive) {
			s.store.Notify("A recording is already in progress.")
		}
		// Device errors are written to the session by the pipeline.
	}
	redirectHome(w, r)
}

func (s *Server) handleRecordStop(w http.ResponseWriter, r *http.Request) {
	s.pipe.StopRecording()
	redirectHome(w, r)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	s.pipe.SubmitQuery(r.Context(), strings.TrimSpace(r.FormValue("query")))
	redirectHome(w, r)
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	if v := r.FormValue("duration"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			s.store.Notify("Recording duration must be a number of seconds.")
		} else if s.store.SetRecordDuration(time.Duration(secs) * time.Second) {
			s.store.Notify(fmt.Sprintf("Recording duration set to %ds.", int(s.store.Settings().RecordDuration.Seconds())))
		}
	}

	if v := r.FormValue("top_k"); v != "" {
		k, err := strconv.Atoi(v)
		if err != nil {
			s.store.Notify("Result count must be a number.")
		} else {
			s.orch.UpdateTopK(r.Context(), k)
		}
	}

	redirectHome(w, r)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.store.Reset()
	s.store.Notify("Ready for a new search.")
	redirectHome(w, r)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	if s.store.Snapshot().ResultStatus != session.ResultsReady {
		s.store.Notify("Nothing to export yet — run a search first.")
	} else {
		s.store.Notify("Export is not available yet.")
	}
	redirectHome(w, r)
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	view := CatalogView{
		Title:   "Catalog",
		Notices: s.store.DrainNotices(),
		Filter:  strings.TrimSpace(r.FormValue("q")),
	}

	switch {
	case s.recordsPath == "":
		view.LoadError = "No catalog file is configured."
	default:
		records, err := ingest.LoadRecords(s.recordsPath)
		if err != nil {
			s.logger.ErrorContext(r.Context(), "catalog load failed", "error", err)
			view.LoadError = "The catalog file could not be read."
		} else {
			view.Total = len(records)
			view.Records = filterRecords(records, view.Filter)
		}
	}

	s.render(w, s.catTmpl, view)
}

// filterRecords keeps records whose ID or text contains filter,
// case-insensitively. An empty filter keeps everything.
func filterRecords(records []providersearch.Record, filter string) []providersearch.Record {
	if filter == "" {
		return records
	}
	needle := strings.ToLower(filter)
	var out []providersearch.Record
	for _, rec := range records {
		if strings.Contains(strings.ToLower(rec.Text), needle) ||
			strings.Contains(strings.ToLower(rec.ID), needle) {
			out = append(out, rec)
		}
	}
	return out
}

func (s *Server) render(w http.ResponseWriter, tmpl *template.Template, view any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "layout", view); err != nil {
		s.logger.Error("template render failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func redirectHome(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
