package web

import (
	"testing"

	"github.com/Zeeshan138063/voice-rag-search-assistant/internal/session"
	providersearch "github.com/Zeeshan138063/voice-rag-search-assistant/pkg/provider/search"
)

func TestTierClass_Boundaries(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0.95, "high"},
		{0.71, "high"},
		{0.7, "medium"}, // cutoff itself is not high
		{0.41, "medium"},
		{0.4, "low"},
		{0.1, "low"},
		{0, "low"},
	}
	for _, tc := range tests {
		if got := tierClass(tc.score); got != tc.want {
			t.Errorf("tierClass(%v) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestNewIndexView_RanksFromOne(t *testing.T) {
	st := session.State{
		Phase:        session.PhaseIdle,
		Query:        "tea",
		ResultStatus: session.ResultsReady,
		Results: []providersearch.Hit{
			{ID: "p1", Score: 0.9, Text: "green tea"},
			{ID: "p2", Score: 0.5, Text: "black tea"},
		},
		Settings: session.Settings{
			RecordDuration: session.DefaultRecordDuration,
			TopK:           session.DefaultTopK,
		},
	}

	v := newIndexView(st, nil)
	if len(v.Results) != 2 {
		t.Fatalf("results = %d, want 2", len(v.Results))
	}
	if v.Results[0].Rank != 1 || v.Results[1].Rank != 2 {
		t.Errorf("ranks = %d, %d, want 1, 2", v.Results[0].Rank, v.Results[1].Rank)
	}
	if v.Results[0].ScorePct != 90 {
		t.Errorf("ScorePct = %d, want 90", v.Results[0].ScorePct)
	}
}
