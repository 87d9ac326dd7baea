package search

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/Zeeshan138063/voice-rag-search-assistant/internal/session"
	providersearch "github.com/Zeeshan138063/voice-rag-search-assistant/pkg/provider/search"
	"github.com/Zeeshan138063/voice-rag-search-assistant/pkg/provider/search/mock"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestSearch_StoresHits(t *testing.T) {
	idx := &mock.Index{
		SearchFunc: func(_ context.Context, _ providersearch.Query) ([]providersearch.Hit, error) {
			return []providersearch.Hit{
				{ID: "p1", Score: 0.92, Text: "organic shampoo"},
				{ID: "p2", Score: 0.55, Text: "conditioner"},
			}, nil
		},
	}
	store := session.NewStore()
	o := NewOrchestrator(idx, store, WithLogger(quietLogger()))

	o.Search(context.Background(), "shampoo")

	st := store.Snapshot()
	if st.ResultStatus != session.ResultsReady {
		t.Fatalf("status = %q, want %q", st.ResultStatus, session.ResultsReady)
	}
	if len(st.Results) != 2 {
		t.Fatalf("results = %d, want 2", len(st.Results))
	}
	if st.Query != "shampoo" {
		t.Errorf("query = %q, want %q", st.Query, "shampoo")
	}

	notices := store.DrainNotices()
	if len(notices) != 1 || notices[0] != "Found 2 results." {
		t.Errorf("notices = %v, want [Found 2 results.]", notices)
	}
}

func TestSearch_UsesSessionTopK(t *testing.T) {
	idx := &mock.Index{}
	store := session.NewStore()
	store.SetTopK(25)
	o := NewOrchestrator(idx, store, WithLogger(quietLogger()))

	o.Search(context.Background(), "tea")

	queries := idx.Queries()
	if len(queries) != 1 {
		t.Fatalf("backend queries = %d, want 1", len(queries))
	}
	if queries[0].TopK != 25 {
		t.Errorf("TopK = %d, want 25", queries[0].TopK)
	}
	if queries[0].Text != "tea" {
		t.Errorf("query text = %q, want %q", queries[0].Text, "tea")
	}
}

func TestSearch_EmptyQueryNeverReachesBackend(t *testing.T) {
	idx := &mock.Index{}
	store := session.NewStore()
	o := NewOrchestrator(idx, store, WithLogger(quietLogger()))

	o.Search(context.Background(), "   ")

	if n := len(idx.Queries()); n != 0 {
		t.Fatalf("backend queries = %d, want 0", n)
	}
	st := store.Snapshot()
	if st.ResultStatus != session.ResultsEmpty {
		t.Errorf("status = %q, want %q", st.ResultStatus, session.ResultsEmpty)
	}
	if len(store.DrainNotices()) != 1 {
		t.Error("want a notice explaining the empty transcript")
	}
}

func TestSearch_ZeroHitsIsEmptyNotFailed(t *testing.T) {
	idx := &mock.Index{
		SearchFunc: func(_ context.Context, _ providersearch.Query) ([]providersearch.Hit, error) {
			return nil, nil
		},
	}
	store := session.NewStore()
	o := NewOrchestrator(idx, store, WithLogger(quietLogger()))

	o.Search(context.Background(), "unobtainium")

	st := store.Snapshot()
	if st.ResultStatus != session.ResultsEmpty {
		t.Fatalf("status = %q, want %q", st.ResultStatus, session.ResultsEmpty)
	}
	if st.LastError != "" {
		t.Errorf("LastError = %q, want empty", st.LastError)
	}
}

func TestSearch_BackendErrorIsFailedNotEmpty(t *testing.T) {
	idx := &mock.Index{
		SearchFunc: func(_ context.Context, _ providersearch.Query) ([]providersearch.Hit, error) {
			return nil, errors.New("upstream 503")
		},
	}
	store := session.NewStore()
	o := NewOrchestrator(idx, store, WithLogger(quietLogger()))

	o.Search(context.Background(), "shampoo")

	st := store.Snapshot()
	if st.ResultStatus != session.ResultsFailed {
		t.Fatalf("status = %q, want %q", st.ResultStatus, session.ResultsFailed)
	}
	if st.ResultStatus == session.ResultsEmpty {
		t.Fatal("a backend error must not present as zero results")
	}
	if !strings.Contains(st.LastError, "upstream 503") {
		t.Errorf("LastError = %q, want backend error included", st.LastError)
	}
	if len(st.Results) != 0 {
		t.Errorf("results = %d, want none", len(st.Results))
	}
}

func TestUpdateTopK_ResearchesWithTranscript(t *testing.T) {
	idx := &mock.Index{}
	store := session.NewStore()
	store.SetTranscript("shampoo")
	o := NewOrchestrator(idx, store, WithLogger(quietLogger()))

	o.UpdateTopK(context.Background(), 5)

	queries := idx.Queries()
	if len(queries) != 1 {
		t.Fatalf("backend queries = %d, want re-search", len(queries))
	}
	if queries[0].TopK != 5 {
		t.Errorf("TopK = %d, want 5", queries[0].TopK)
	}
}

func TestUpdateTopK_NoTranscriptNoSearch(t *testing.T) {
	idx := &mock.Index{}
	store := session.NewStore()
	o := NewOrchestrator(idx, store, WithLogger(quietLogger()))

	o.UpdateTopK(context.Background(), 5)

	if n := len(idx.Queries()); n != 0 {
		t.Fatalf("backend queries = %d, want 0", n)
	}
	if store.Settings().TopK != 5 {
		t.Errorf("TopK = %d, want 5 stored", store.Settings().TopK)
	}
}

func TestUpdateTopK_UnchangedValueNoSearch(t *testing.T) {
	idx := &mock.Index{}
	store := session.NewStore()
	store.SetTranscript("shampoo")
	o := NewOrchestrator(idx, store, WithLogger(quietLogger()))

	o.UpdateTopK(context.Background(), session.DefaultTopK)

	if n := len(idx.Queries()); n != 0 {
		t.Fatalf("backend queries = %d, want 0 for unchanged value", n)
	}
}
