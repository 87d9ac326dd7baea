// Package search coordinates query execution against the configured index
// and folds the outcome into the session state, keeping backend failures
// distinct from legitimately empty result sets. It also renders transcript
// highlights for the result view.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Zeeshan138063/voice-rag-search-assistant/internal/observe"
	"github.com/Zeeshan138063/voice-rag-search-assistant/internal/session"
	"github.com/Zeeshan138063/voice-rag-search-assistant/pkg/provider/search"
)

// searchTimeout bounds a single round trip to the search backend.
const searchTimeout = 30 * time.Second

// Orchestrator runs searches on behalf of the UI and records their outcome
// in the session store.
type Orchestrator struct {
	index   search.Index
	store   *session.Store
	metrics *observe.Metrics
	logger  *slog.Logger

	// backend names the index implementation in metrics and logs.
	backend string
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithMetrics sets the metrics sink. Defaults to observe.DefaultMetrics.
func WithMetrics(m *observe.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithBackendName sets the backend label used in metrics ("pinecone",
// "pgvector"). Defaults to "index".
func WithBackendName(name string) Option {
	return func(o *Orchestrator) { o.backend = name }
}

// NewOrchestrator creates an Orchestrator over the given index and store.
func NewOrchestrator(index search.Index, store *session.Store, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		index:   index,
		store:   store,
		backend: "index",
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.metrics == nil {
		o.metrics = observe.DefaultMetrics()
	}
	return o
}

// Search executes query against the index using the session's current TopK
// setting and stores the outcome. A blank query never reaches the backend: it
// is recorded as an empty result set with a notice. Backend errors are stored
// as a failed status, never as zero results.
func (o *Orchestrator) Search(ctx context.Context, query string) {
	query = strings.TrimSpace(query)
	if query == "" {
		o.store.SetResults(query, nil)
		o.store.Notify("Nothing to search for — the transcript is empty.")
		return
	}

	topK := o.store.Settings().TopK

	ctx, span := observe.StartSpan(ctx, "search.query")
	defer span.End()
	ctx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	start := time.Now()
	hits, err := o.index.Search(ctx, search.Query{Text: query, TopK: topK})
	elapsed := time.Since(start)

	o.metrics.SearchDuration.Record(ctx, elapsed.Seconds(),
		metric.WithAttributes(attribute.String("backend", o.backend)))

	if err != nil {
		o.metrics.RecordProviderRequest(ctx, o.backend, "search", "error")
		o.logger.ErrorContext(ctx, "search failed",
			"backend", o.backend,
			"query", query,
			"error", err)
		o.store.SetSearchFailure(query, "Search failed: "+err.Error())
		return
	}
	o.metrics.RecordProviderRequest(ctx, o.backend, "search", "ok")

	o.store.SetResults(query, hits)
	if len(hits) == 0 {
		o.store.Notify("No results found. Try rephrasing your query.")
	} else {
		o.store.Notify(fmt.Sprintf("Found %d results.", len(hits)))
	}

	o.logger.InfoContext(ctx, "search completed",
		"backend", o.backend,
		"query", query,
		"top_k", topK,
		"hits", len(hits),
		"duration", elapsed)
}

// UpdateTopK applies a new result count. When the value actually changes and
// a transcript is already present, the search is re-issued immediately so the
// visible result set always matches the setting.
func (o *Orchestrator) UpdateTopK(ctx context.Context, k int) {
	changed, research := o.store.SetTopK(k)
	if !changed {
		return
	}
	if research {
		o.Search(ctx, o.store.Transcript())
	}
}
