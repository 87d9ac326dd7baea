package ingest

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"testing"

	"github.com/Zeeshan138063/voice-rag-search-assistant/pkg/provider/search"
	"github.com/Zeeshan138063/voice-rag-search-assistant/pkg/provider/search/mock"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestParseRecords_ValidArray(t *testing.T) {
	in := `[
		{"_id": "p1", "chunk_text": "organic shampoo for dry hair"},
		{"_id": "p2", "chunk_text": "green tea, loose leaf"}
	]`

	records, err := ParseRecords(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ParseRecords: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2", len(records))
	}
	if records[0].ID != "p1" || records[0].Text != "organic shampoo for dry hair" {
		t.Errorf("record 0 = %+v", records[0])
	}
}

func TestParseRecords_ExtraFieldsIgnored(t *testing.T) {
	in := `[{"_id": "p1", "chunk_text": "soap", "category": "bath", "price": 3.5}]`

	records, err := ParseRecords(strings.NewReader(in))
	if err != nil {
		t.Fatalf("ParseRecords: %v", err)
	}
	if len(records) != 1 || records[0].ID != "p1" {
		t.Errorf("records = %+v", records)
	}
}

func TestParseRecords_InvalidRecordFailsWhole(t *testing.T) {
	in := `[
		{"_id": "p1", "chunk_text": "soap"},
		{"_id": "", "chunk_text": "orphan"}
	]`

	_, err := ParseRecords(strings.NewReader(in))
	if err == nil {
		t.Fatal("want error for record with blank id")
	}
	if !errors.Is(err, search.ErrMalformedResponse) && !strings.Contains(err.Error(), "record 1") {
		t.Errorf("err = %v, want record index named", err)
	}
}

func TestParseRecords_MalformedJSON(t *testing.T) {
	_, err := ParseRecords(strings.NewReader(`{"not": "an array"`))
	if err == nil {
		t.Fatal("want parse error")
	}
}

func TestRun_BatchesOfFifty(t *testing.T) {
	records := make([]search.Record, 120)
	for i := range records {
		records[i] = search.Record{ID: "p" + strconv.Itoa(i), Text: "item"}
	}

	idx := &mock.Index{}
	r := NewRunner(idx, WithLogger(quietLogger()))

	if err := r.Run(context.Background(), records); err != nil {
		t.Fatalf("Run: %v", err)
	}

	batches := idx.UpsertBatches()
	if len(batches) != 3 {
		t.Fatalf("batches = %d, want 3", len(batches))
	}
	for i, want := range []int{50, 50, 20} {
		if len(batches[i]) != want {
			t.Errorf("batch %d size = %d, want %d", i, len(batches[i]), want)
		}
	}
	if batches[0][0].ID != records[0].ID {
		t.Errorf("batch order not preserved")
	}
}

func TestRun_CustomBatchSize(t *testing.T) {
	records := make([]search.Record, 5)
	for i := range records {
		records[i] = search.Record{ID: strconv.Itoa(i), Text: "item"}
	}

	idx := &mock.Index{}
	r := NewRunner(idx, WithBatchSize(2), WithLogger(quietLogger()))

	if err := r.Run(context.Background(), records); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := len(idx.UpsertBatches()); got != 3 {
		t.Errorf("batches = %d, want 3", got)
	}
}

func TestRun_StopsAtFirstFailingBatch(t *testing.T) {
	records := make([]search.Record, 6)
	for i := range records {
		records[i] = search.Record{ID: strconv.Itoa(i), Text: "item"}
	}

	calls := 0
	idx := &mock.Index{
		UpsertFunc: func(_ context.Context, _ []search.Record) error {
			calls++
			if calls == 2 {
				return errors.New("quota exceeded")
			}
			return nil
		},
	}
	r := NewRunner(idx, WithBatchSize(2), WithLogger(quietLogger()))

	err := r.Run(context.Background(), records)
	if err == nil {
		t.Fatal("want error from failing batch")
	}
	if !strings.Contains(err.Error(), "batch 2/3") {
		t.Errorf("err = %v, want failing batch named", err)
	}
	if calls != 2 {
		t.Errorf("upsert calls = %d, want 2 (no batches after the failure)", calls)
	}
}
