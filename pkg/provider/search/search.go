// Package search defines the Index interface for vector search backends.
//
// An Index wraps a service that stores text records and answers free-text
// queries with ranked hits (e.g., a managed Pinecone index with integrated
// embedding, or a self-hosted PostgreSQL/pgvector table). All similarity
// ranking happens inside the backend; callers pass raw query text and receive
// hits in the order the backend returned them.
//
// Implementations must be safe for concurrent use.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedResponse is returned (wrapped) when a backend reply is missing
// required fields. Backends must fail loudly rather than default missing
// identifiers or text to zero values.
var ErrMalformedResponse = errors.New("search: malformed backend response")

// Query is a single search request against an Index.
type Query struct {
	// Text is the raw query text. The backend performs embedding and
	// similarity ranking internally; Text is passed through verbatim.
	Text string

	// TopK is the maximum number of hits to return. Backends may return
	// fewer, never more.
	TopK int
}

// Hit is one ranked search result. Immutable once received.
type Hit struct {
	// ID is the backend identifier of the matched record.
	ID string

	// Score is the relevance score in [0, 1], higher is more relevant.
	Score float64

	// Text is the stored text snippet of the matched record.
	Text string
}

// Record is a single text record for ingestion into an Index.
type Record struct {
	ID   string `json:"_id"`
	Text string `json:"chunk_text"`
}

// Index is the abstraction over any vector search backend.
//
// Implementations must be safe for concurrent use.
type Index interface {
	// Search returns up to q.TopK hits for q.Text, ordered as ranked by the
	// backend (descending relevance). A nil/empty slice with a nil error is a
	// legitimate zero-match outcome and must be distinguished from an error
	// by callers.
	Search(ctx context.Context, q Query) ([]Hit, error)

	// Upsert writes records into the backend, replacing records that share an
	// ID. Used by the batch ingestion utility.
	Upsert(ctx context.Context, records []Record) error

	// Ping verifies that the backend is reachable. Used by readiness checks.
	Ping(ctx context.Context) error
}

// ValidateHit checks that a hit assembled from a backend response carries the
// required fields and a sane score. Backends call this before returning hits
// so that malformed replies surface as errors instead of blank result cards.
func ValidateHit(h Hit) error {
	if strings.TrimSpace(h.ID) == "" {
		return fmt.Errorf("%w: hit has no identifier", ErrMalformedResponse)
	}
	if h.Score < 0 || h.Score > 1 {
		return fmt.Errorf("%w: hit %q has score %v outside [0, 1]", ErrMalformedResponse, h.ID, h.Score)
	}
	return nil
}

// ValidateRecord checks that a record parsed from an ingestion file has both
// an identifier and text.
func ValidateRecord(r Record) error {
	if strings.TrimSpace(r.ID) == "" {
		return errors.New("search: record has no _id")
	}
	if strings.TrimSpace(r.Text) == "" {
		return fmt.Errorf("search: record %q has no chunk_text", r.ID)
	}
	return nil
}
