// Package stt defines the Provider interface for one-shot speech-to-text
// backends.
//
// The voice search pipeline records a complete utterance first and submits it
// as a single WAV file, so the interface is deliberately batch-shaped: one
// audio file in, one transcript out. A transcription failure is distinct from
// an empty-but-successful transcript; callers must branch on the error, not
// on the string.
//
// Implementations must be safe for concurrent use.
package stt

import (
	"context"
	"io"
)

// Provider is the abstraction over any batch transcription backend.
// An empty transcript with a nil error means the service heard nothing;
// only a non-nil error means the attempt failed.
type Provider interface {
	// Transcribe submits a complete WAV recording (16 kHz mono 16-bit PCM)
	// and returns the transcript text. The call blocks until the service
	// answers or ctx is cancelled; there are no retries.
	Transcribe(ctx context.Context, audio io.Reader) (string, error)
}
