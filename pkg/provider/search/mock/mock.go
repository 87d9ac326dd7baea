// Package mock provides a configurable in-memory search.Index for tests.
package mock

import (
	"context"
	"sync"

	"github.com/Zeeshan138063/voice-rag-search-assistant/pkg/provider/search"
)

var _ search.Index = (*Index)(nil)

// Index is a test double for search.Index. Configure the function fields to
// control behaviour; unset fields succeed with zero results. All methods are
// safe for concurrent use and record their calls.
type Index struct {
	SearchFunc func(ctx context.Context, q search.Query) ([]search.Hit, error)
	UpsertFunc func(ctx context.Context, records []search.Record) error
	PingFunc   func(ctx context.Context) error

	mu       sync.Mutex
	queries  []search.Query
	upserted [][]search.Record
}

// Search implements search.Index.
func (m *Index) Search(ctx context.Context, q search.Query) ([]search.Hit, error) {
	m.mu.Lock()
	m.queries = append(m.queries, q)
	m.mu.Unlock()

	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, q)
	}
	return nil, nil
}

// Upsert implements search.Index.
func (m *Index) Upsert(ctx context.Context, records []search.Record) error {
	m.mu.Lock()
	cp := make([]search.Record, len(records))
	copy(cp, records)
	m.upserted = append(m.upserted, cp)
	m.mu.Unlock()

	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, records)
	}
	return nil
}

// Ping implements search.Index.
func (m *Index) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}

// Queries returns a copy of every query passed to Search, in order.
func (m *Index) Queries() []search.Query {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]search.Query, len(m.queries))
	copy(out, m.queries)
	return out
}

// UpsertBatches returns a copy of every batch passed to Upsert, in order.
func (m *Index) UpsertBatches() [][]search.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]search.Record, len(m.upserted))
	copy(out, m.upserted)
	return out
}
