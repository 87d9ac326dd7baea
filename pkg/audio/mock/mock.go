// Package mock provides a scriptable audio.Recorder for pipeline tests.
package mock

import (
	"context"
	"sync"
	"time"

	"github.com/Zeeshan138063/voice-rag-search-assistant/pkg/audio"
)

var _ audio.Recorder = (*Recorder)(nil)

// Recorder is a test double for audio.Recorder. Clip is returned by Stop;
// StartErr, when set, makes Start fail (simulating an unavailable device).
type Recorder struct {
	Clip     audio.Clip
	StartErr error

	mu     sync.Mutex
	active bool
	starts int
}

// Start implements audio.Recorder.
func (r *Recorder) Start(_ context.Context, _ time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.StartErr != nil {
		return r.StartErr
	}
	if r.active {
		return audio.ErrAlreadyRecording
	}
	r.active = true
	r.starts++
	return nil
}

// Stop implements audio.Recorder.
func (r *Recorder) Stop() (audio.Clip, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.active {
		return audio.Clip{}, audio.ErrNotRecording
	}
	r.active = false
	return r.Clip, nil
}

// Starts returns how many recordings have been started successfully.
func (r *Recorder) Starts() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.starts
}
