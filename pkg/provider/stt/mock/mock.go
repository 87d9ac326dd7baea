// Package mock provides a configurable stt.Provider for tests.
package mock

import (
	"context"
	"io"
	"sync"

	"github.com/Zeeshan138063/voice-rag-search-assistant/pkg/provider/stt"
)

var _ stt.Provider = (*Provider)(nil)

// Provider is a test double for stt.Provider. When TranscribeFunc is unset it
// returns Text with a nil error. It records every call and is safe for
// concurrent use.
type Provider struct {
	TranscribeFunc func(ctx context.Context, audio io.Reader) (string, error)
	Text           string

	mu    sync.Mutex
	calls int
}

// Transcribe implements stt.Provider. The audio reader is drained so tests
// exercise the same streaming path as real providers.
func (m *Provider) Transcribe(ctx context.Context, audio io.Reader) (string, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, audio)
	}
	_, _ = io.Copy(io.Discard, audio)
	return m.Text, nil
}

// Calls returns how many times Transcribe has been invoked.
func (m *Provider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
