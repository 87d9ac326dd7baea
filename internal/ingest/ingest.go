// Package ingest loads catalog records from JSON and upserts them into a
// search index in fixed-size batches.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/Zeeshan138063/voice-rag-search-assistant/internal/observe"
	"github.com/Zeeshan138063/voice-rag-search-assistant/pkg/provider/search"
)

// DefaultBatchSize is the number of records sent per upsert request.
const DefaultBatchSize = 50

// ParseRecords decodes a JSON array of records and validates each one. A
// single invalid record fails the whole parse; partial catalogs are worse
// than loud failures.
func ParseRecords(r io.Reader) ([]search.Record, error) {
	var records []search.Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("ingest: parse records: %w", err)
	}
	for i, rec := range records {
		if err := search.ValidateRecord(rec); err != nil {
			return nil, fmt.Errorf("ingest: record %d (%q): %w", i, rec.ID, err)
		}
	}
	return records, nil
}

// LoadRecords reads and parses the record file at path.
func LoadRecords(path string) ([]search.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: open records file: %w", err)
	}
	defer f.Close()
	return ParseRecords(f)
}

// Runner upserts record batches into an index.
type Runner struct {
	index     search.Index
	batchSize int
	metrics   *observe.Metrics
	logger    *slog.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithBatchSize overrides DefaultBatchSize. Values below 1 are ignored.
func WithBatchSize(n int) Option {
	return func(r *Runner) {
		if n >= 1 {
			r.batchSize = n
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithMetrics sets the metrics sink. Defaults to observe.DefaultMetrics.
func WithMetrics(m *observe.Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// NewRunner creates a Runner over the given index.
func NewRunner(index search.Index, opts ...Option) *Runner {
	r := &Runner{
		index:     index,
		batchSize: DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.metrics == nil {
		r.metrics = observe.DefaultMetrics()
	}
	return r
}

// Run upserts records in order, batchSize at a time. It stops at the first
// failing batch, reporting which batch failed; earlier batches stay written.
func (r *Runner) Run(ctx context.Context, records []search.Record) error {
	total := (len(records) + r.batchSize - 1) / r.batchSize

	for i := 0; i < len(records); i += r.batchSize {
		end := min(i+r.batchSize, len(records))
		batch := records[i:end]
		num := i/r.batchSize + 1

		start := time.Now()
		err := r.index.Upsert(ctx, batch)
		elapsed := time.Since(start)

		r.metrics.IngestBatchDuration.Record(ctx, elapsed.Seconds())
		if err != nil {
			return fmt.Errorf("ingest: batch %d/%d (%d records): %w", num, total, len(batch), err)
		}

		r.logger.InfoContext(ctx, "batch upserted",
			"batch", num,
			"of", total,
			"records", len(batch),
			"duration", elapsed)
	}

	r.logger.InfoContext(ctx, "ingestion complete", "records", len(records))
	return nil
}
