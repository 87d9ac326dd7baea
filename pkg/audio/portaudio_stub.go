//go:build !portaudio

package audio

import (
	"context"
	"errors"
	"time"
)

var _ Recorder = (*DeviceRecorder)(nil)

// DeviceRecorder stub compiled when the portaudio tag is absent. Every Start
// fails with a device-unavailable error, which the UI surfaces inline.
type DeviceRecorder struct{}

// NewDeviceRecorder returns the stub recorder.
func NewDeviceRecorder() *DeviceRecorder {
	return &DeviceRecorder{}
}

// Start implements [Recorder].
func (r *DeviceRecorder) Start(_ context.Context, _ time.Duration) error {
	return errors.New("audio: capture device not available: rebuild with -tags portaudio")
}

// Stop implements [Recorder].
func (r *DeviceRecorder) Stop() (Clip, error) {
	return Clip{}, ErrNotRecording
}
