package audio

import (
	"context"
	"errors"
	"time"
)

// ErrAlreadyRecording is returned by Start when a capture is in progress.
// At most one recording is active at a time.
var ErrAlreadyRecording = errors.New("audio: recording already in progress")

// ErrNotRecording is returned by Stop when no capture is in progress.
var ErrNotRecording = errors.New("audio: no recording in progress")

// Recorder captures microphone audio into an in-memory buffer.
//
// Start begins filling a buffer sized for the given duration; capture ends on
// its own once the buffer is full. Stop halts capture early and returns
// whatever was filled so far. A Recorder is not required to be safe for
// concurrent Start calls — the pipeline serialises access — but Stop may be
// called from a different goroutine than Start.
type Recorder interface {
	// Start begins capturing up to d seconds of audio at [SampleRate], mono,
	// 16-bit. Returns ErrAlreadyRecording if a capture is active, or a
	// device error when the capture hardware is unavailable; device errors
	// are fatal for the attempt and are never retried internally.
	Start(ctx context.Context, d time.Duration) error

	// Stop halts the capture and returns the clip recorded so far. When the
	// buffer already filled to its sized duration, Stop simply returns it.
	Stop() (Clip, error)
}
