// Package session holds the per-process session state for the voice search
// UI: the current transcript, the last result set with its outcome status,
// user-tunable settings, and one-shot notices.
//
// The original reactive-UI design kept this state in ambient globals mutated
// from anywhere; here it is a single mutex-guarded Store passed explicitly
// into the pipeline, the orchestrator, and the renderer. Renderers work from
// value snapshots and never hold the lock across I/O.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/Zeeshan138063/voice-rag-search-assistant/pkg/provider/search"
)

// ErrRecordingActive is returned by BeginRecording while a previous capture
// attempt is still in flight. At most one recording session exists at a time.
var ErrRecordingActive = errors.New("session: a recording is already active")

// Phase is the capture pipeline phase shown to the user.
type Phase string

const (
	// PhaseIdle means no capture activity.
	PhaseIdle Phase = "idle"

	// PhaseRecording means the microphone buffer is being filled.
	PhaseRecording Phase = "recording"

	// PhaseProcessing means the clip is being transcribed and searched.
	PhaseProcessing Phase = "processing"
)

// ResultStatus distinguishes the four observable outcomes of the last search.
// Failure and empty-success are deliberately separate states: an error from
// the backend must never masquerade as "no matches".
type ResultStatus string

const (
	// ResultsNone: no search has been issued since the last reset.
	ResultsNone ResultStatus = "none"

	// ResultsReady: the last search succeeded and returned at least one hit.
	ResultsReady ResultStatus = "ready"

	// ResultsEmpty: the last search succeeded with zero matches (or the
	// query was empty and rejected before reaching the backend).
	ResultsEmpty ResultStatus = "empty"

	// ResultsFailed: the last search errored; the hit list is empty but that
	// emptiness carries no meaning.
	ResultsFailed ResultStatus = "failed"
)

// Settings bounds and defaults, mirroring the UI slider ranges.
const (
	MinRecordDuration     = 5 * time.Second
	MaxRecordDuration     = 60 * time.Second
	DefaultRecordDuration = 15 * time.Second

	MinTopK     = 1
	MaxTopK     = 100
	DefaultTopK = 10
)

// Settings are the user-tunable knobs. They live for the process lifetime
// and are not persisted.
type Settings struct {
	// RecordDuration is how long a recording runs unless stopped early.
	RecordDuration time.Duration

	// TopK is the maximum number of hits requested per search.
	TopK int
}

// State is a point-in-time snapshot of the session.
type State struct {
	Phase        Phase
	Transcript   string
	Query        string // the query text the current result set answers
	Results      []search.Hit
	ResultStatus ResultStatus
	LastError    string // inline error message, empty when none
	Settings     Settings
}

// Store is the mutex-guarded session state. The zero value is not usable;
// call NewStore.
type Store struct {
	mu      sync.Mutex
	state   State
	notices []string
}

// NewStore returns a Store with default settings and an idle, empty state.
func NewStore() *Store {
	return &Store{
		state: State{
			Phase:        PhaseIdle,
			ResultStatus: ResultsNone,
			Settings: Settings{
				RecordDuration: DefaultRecordDuration,
				TopK:           DefaultTopK,
			},
		},
	}
}

// Snapshot returns a copy of the current state. The Results slice is copied
// so renderers can iterate without racing later mutations.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.state
	if st.Results != nil {
		st.Results = make([]search.Hit, len(s.state.Results))
		copy(st.Results, s.state.Results)
	}
	return st
}

// Settings returns the current settings.
func (s *Store) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Settings
}

// Transcript returns the current transcript text.
func (s *Store) Transcript() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Transcript
}

// BeginRecording transitions to PhaseRecording, clearing the transcript, the
// result set, and any stale error — a new recording always starts a fresh
// search. Returns ErrRecordingActive unless the session was idle.
func (s *Store) BeginRecording() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.Phase != PhaseIdle {
		return ErrRecordingActive
	}
	s.state.Phase = PhaseRecording
	s.state.Transcript = ""
	s.state.Query = ""
	s.state.Results = nil
	s.state.ResultStatus = ResultsNone
	s.state.LastError = ""
	return nil
}

// BeginProcessing transitions from recording to processing.
func (s *Store) BeginProcessing() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Phase = PhaseProcessing
}

// EndAttempt returns the session to idle, whatever the outcome.
func (s *Store) EndAttempt() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Phase = PhaseIdle
}

// SetTranscript replaces the transcript text.
func (s *Store) SetTranscript(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Transcript = text
}

// SetResults installs a successful search outcome for query. Zero hits are a
// legitimate result and map to ResultsEmpty.
func (s *Store) SetResults(query string, hits []search.Hit) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Query = query
	s.state.Results = hits
	s.state.LastError = ""
	if len(hits) == 0 {
		s.state.ResultStatus = ResultsEmpty
	} else {
		s.state.ResultStatus = ResultsReady
	}
}

// SetSearchFailure records a failed search for query. The result list is
// cleared and the status marked failed so the UI renders an error state, not
// an empty state.
func (s *Store) SetSearchFailure(query, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Query = query
	s.state.Results = nil
	s.state.ResultStatus = ResultsFailed
	s.state.LastError = msg
}

// SetError records an inline error outside the search path (capture or
// transcription failures).
func (s *Store) SetError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.LastError = msg
}

// Reset clears the transcript, results, and errors for a new search.
// Settings are kept.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Transcript = ""
	s.state.Query = ""
	s.state.Results = nil
	s.state.ResultStatus = ResultsNone
	s.state.LastError = ""
}

// SetRecordDuration updates the recording duration, clamped to
// [MinRecordDuration, MaxRecordDuration]. Reports whether the value changed.
func (s *Store) SetRecordDuration(d time.Duration) bool {
	d = min(max(d, MinRecordDuration), MaxRecordDuration)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Settings.RecordDuration == d {
		return false
	}
	s.state.Settings.RecordDuration = d
	return true
}

// SetTopK updates the result count, clamped to [MinTopK, MaxTopK]. It
// reports whether the value changed and whether a transcript is present —
// when both hold, the caller must re-issue the search with the new count.
func (s *Store) SetTopK(k int) (changed, research bool) {
	k = min(max(k, MinTopK), MaxTopK)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Settings.TopK == k {
		return false, false
	}
	s.state.Settings.TopK = k
	return true, s.state.Transcript != ""
}

// Notify queues a one-shot notice shown on the next render.
func (s *Store) Notify(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = append(s.notices, msg)
}

// DrainNotices returns the queued notices and clears the queue.
func (s *Store) DrainNotices() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.notices
	s.notices = nil
	return out
}
