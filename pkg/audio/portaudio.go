//go:build portaudio

package audio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gordonklaus/portaudio"
)

const framesPerBuffer = 1024

var _ Recorder = (*DeviceRecorder)(nil)

// DeviceRecorder captures from the default input device via PortAudio.
// Build with -tags portaudio; without the tag a stub that reports the device
// as unavailable is compiled instead.
type DeviceRecorder struct {
	mu      sync.Mutex
	stream  *portaudio.Stream
	samples []int16
	max     int
	done    chan struct{}
	active  bool
}

// NewDeviceRecorder returns an idle [DeviceRecorder]. PortAudio is
// initialised lazily on the first Start so that constructing the recorder
// never touches the hardware.
func NewDeviceRecorder() *DeviceRecorder {
	return &DeviceRecorder{}
}

// Start implements [Recorder]. It opens the default input stream at
// [SampleRate] mono and fills the buffer from a background goroutine until
// the buffer holds d seconds of audio or Stop is called.
func (r *DeviceRecorder) Start(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active {
		return ErrAlreadyRecording
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("audio: initialise portaudio: %w", err)
	}

	frame := make([]int16, framesPerBuffer)
	stream, err := portaudio.OpenDefaultStream(channels, 0, float64(SampleRate), framesPerBuffer, frame)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("audio: open input stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("audio: start input stream: %w", err)
	}

	r.stream = stream
	r.max = int(d.Seconds() * SampleRate)
	r.samples = make([]int16, 0, r.max)
	r.done = make(chan struct{})
	r.active = true

	go r.capture(ctx, frame)
	return nil
}

// capture reads frames until the buffer is full, ctx is cancelled, or Stop
// closes the stream underneath it.
func (r *DeviceRecorder) capture(ctx context.Context, frame []int16) {
	defer close(r.done)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := r.stream.Read(); err != nil {
			// Stream torn down by Stop, or a device fault: either way the
			// samples gathered so far are all we get.
			return
		}

		r.mu.Lock()
		room := r.max - len(r.samples)
		if room <= 0 {
			r.mu.Unlock()
			return
		}
		if room > len(frame) {
			room = len(frame)
		}
		r.samples = append(r.samples, frame[:room]...)
		full := len(r.samples) >= r.max
		r.mu.Unlock()

		if full {
			return
		}
	}
}

// Stop implements [Recorder]. It tears down the stream, waits for the capture
// goroutine, and returns the clip recorded so far.
func (r *DeviceRecorder) Stop() (Clip, error) {
	r.mu.Lock()
	if !r.active {
		r.mu.Unlock()
		return Clip{}, ErrNotRecording
	}
	stream := r.stream
	done := r.done
	r.mu.Unlock()

	stream.Stop()
	stream.Close()
	<-done
	portaudio.Terminate()

	r.mu.Lock()
	defer r.mu.Unlock()
	clip := Clip{Samples: r.samples}
	r.samples = nil
	r.stream = nil
	r.active = false
	return clip, nil
}
