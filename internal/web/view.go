package web

import (
	"html/template"
	"math"

	"github.com/Zeeshan138063/voice-rag-search-assistant/internal/search"
	"github.com/Zeeshan138063/voice-rag-search-assistant/internal/session"
	providersearch "github.com/Zeeshan138063/voice-rag-search-assistant/pkg/provider/search"
)

// Relevance tier cutoffs, as fractions of a perfect score.
const (
	tierHighCutoff   = 0.7
	tierMediumCutoff = 0.4
)

// ResultView is one rendered search hit.
type ResultView struct {
	Rank     int
	ID       string
	ScorePct int
	Tier     string // badge class: "high", "medium", "low"
	Snippet  template.HTML
}

// IndexView is the template model for the main page.
type IndexView struct {
	Title   string
	Notices []string

	Recording  bool
	Processing bool
	Transcript string
	Query      string
	Status     session.ResultStatus
	LastError  string
	Results    []ResultView

	DurationSeconds    int
	MinDurationSeconds int
	MaxDurationSeconds int
	TopK               int
	MinTopK            int
	MaxTopK            int
}

// CatalogView is the template model for the catalog page.
type CatalogView struct {
	Title   string
	Notices []string

	Filter    string
	Records   []providersearch.Record
	Total     int
	LoadError string
}

func tierClass(score float64) string {
	switch {
	case score > tierHighCutoff:
		return "high"
	case score > tierMediumCutoff:
		return "medium"
	default:
		return "low"
	}
}

// newIndexView builds the main page model from a session snapshot. Snippets
// are highlighted against the query the results belong to.
func newIndexView(st session.State, notices []string) IndexView {
	v := IndexView{
		Title:   "Search",
		Notices: notices,

		Recording:  st.Phase == session.PhaseRecording,
		Processing: st.Phase == session.PhaseProcessing,
		Transcript: st.Transcript,
		Query:      st.Query,
		Status:     st.ResultStatus,
		LastError:  st.LastError,

		DurationSeconds:    int(st.Settings.RecordDuration.Seconds()),
		MinDurationSeconds: int(session.MinRecordDuration.Seconds()),
		MaxDurationSeconds: int(session.MaxRecordDuration.Seconds()),
		TopK:               st.Settings.TopK,
		MinTopK:            session.MinTopK,
		MaxTopK:            session.MaxTopK,
	}

	for i, hit := range st.Results {
		v.Results = append(v.Results, ResultView{
			Rank:     i + 1,
			ID:       hit.ID,
			ScorePct: int(math.Round(hit.Score * 100)),
			Tier:     tierClass(hit.Score),
			Snippet:  search.Highlight(hit.Text, st.Query),
		})
	}
	return v
}
