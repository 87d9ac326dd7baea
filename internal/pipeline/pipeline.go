// Package pipeline drives one voice search attempt end to end: microphone
// capture, normalization, transcription, and the follow-up search. A single
// attempt runs at a time; progress is pushed to subscribers through a
// [Broadcaster] instead of blocking the request that started it.
package pipeline

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Zeeshan138063/voice-rag-search-assistant/internal/observe"
	"github.com/Zeeshan138063/voice-rag-search-assistant/internal/search"
	"github.com/Zeeshan138063/voice-rag-search-assistant/internal/session"
	"github.com/Zeeshan138063/voice-rag-search-assistant/pkg/audio"
	"github.com/Zeeshan138063/voice-rag-search-assistant/pkg/provider/stt"
)

const (
	// normalizeTarget is the peak amplitude clips are scaled to before
	// transcription, as a fraction of full scale.
	normalizeTarget = 0.9

	// progressInterval is how often capture progress events are published.
	progressInterval = 500 * time.Millisecond
)

// Pipeline coordinates the capture, transcription, and search stages.
type Pipeline struct {
	recorder audio.Recorder
	speech   stt.Provider
	orch     *search.Orchestrator
	store    *session.Store
	events   *Broadcaster
	metrics  *observe.Metrics
	logger   *slog.Logger
	tempDir  string

	mu   sync.Mutex
	stop context.CancelFunc // cancels the active attempt's capture wait
	done chan struct{}      // closed when the active attempt finishes
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithMetrics sets the metrics sink. Defaults to observe.DefaultMetrics.
func WithMetrics(m *observe.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithTempDir sets the directory for temporary WAV files. Defaults to the
// system temp directory.
func WithTempDir(dir string) Option {
	return func(p *Pipeline) { p.tempDir = dir }
}

// New creates a Pipeline over the given stages.
func New(recorder audio.Recorder, speech stt.Provider, orch *search.Orchestrator, store *session.Store, events *Broadcaster, opts ...Option) *Pipeline {
	p := &Pipeline{
		recorder: recorder,
		speech:   speech,
		orch:     orch,
		store:    store,
		events:   events,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.metrics == nil {
		p.metrics = observe.DefaultMetrics()
	}
	return p
}

// StartRecording begins a capture attempt using the session's configured
// duration. It returns immediately once capture is running; the rest of the
// attempt proceeds in the background and finishes on its own when the
// duration elapses, or earlier via StopRecording. Returns
// session.ErrRecordingActive while a previous attempt is still in flight.
func (p *Pipeline) StartRecording(ctx context.Context) error {
	if err := p.store.BeginRecording(); err != nil {
		return err
	}

	d := p.store.Settings().RecordDuration

	// The attempt must outlive the HTTP request that started it.
	ctx = context.WithoutCancel(ctx)
	ctx, cancel := context.WithCancel(ctx)

	if err := p.recorder.Start(ctx, d); err != nil {
		cancel()
		p.metrics.RecordRecording(ctx, "capture_error")
		p.store.SetError("Could not start recording: " + err.Error())
		p.store.EndAttempt()
		return err
	}

	done := make(chan struct{})
	p.mu.Lock()
	p.stop = cancel
	p.done = done
	p.mu.Unlock()

	p.metrics.ActiveRecordings.Add(ctx, 1)
	p.logger.InfoContext(ctx, "recording started", "duration", d)

	go p.run(ctx, d, done)
	return nil
}

// StopRecording ends the active capture early and waits for the attempt to
// finish processing. It is a no-op when nothing is recording.
func (p *Pipeline) StopRecording() {
	p.mu.Lock()
	stop, done := p.stop, p.done
	p.mu.Unlock()

	if stop == nil {
		return
	}
	stop()
	<-done
}

// SubmitQuery runs a search for manually entered text, bypassing capture and
// transcription. The text becomes the session transcript.
func (p *Pipeline) SubmitQuery(ctx context.Context, text string) {
	p.store.SetTranscript(text)
	p.orch.Search(ctx, text)
}

// run waits out the capture window, publishing progress ticks, then hands
// off to finish. Cancelling ctx (StopRecording) cuts the window short.
func (p *Pipeline) run(ctx context.Context, d time.Duration, done chan struct{}) {
	defer close(done)
	defer func() {
		p.mu.Lock()
		p.stop, p.done = nil, nil
		p.mu.Unlock()
	}()

	start := time.Now()
	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()
	deadline := time.NewTimer(d)
	defer deadline.Stop()

	for {
		select {
		case <-ticker.C:
			p.events.Publish(Event{
				Phase:          string(session.PhaseRecording),
				ElapsedSeconds: time.Since(start).Seconds(),
				TotalSeconds:   d.Seconds(),
			})
		case <-deadline.C:
			p.finish(ctx)
			return
		case <-ctx.Done():
			// Early stop; detach from the cancelled context so the
			// remaining stages still run.
			p.finish(context.WithoutCancel(ctx))
			return
		}
	}
}

// finish drains the recorder and runs transcription and search over the
// captured clip. It always returns the session to idle.
func (p *Pipeline) finish(ctx context.Context) {
	p.store.BeginProcessing()
	p.events.Publish(Event{Phase: string(session.PhaseProcessing)})

	defer func() {
		p.metrics.ActiveRecordings.Add(ctx, -1)
		p.store.EndAttempt()
		p.events.Publish(Event{Phase: string(session.PhaseIdle)})
	}()

	clip, err := p.recorder.Stop()
	if err != nil {
		p.metrics.RecordRecording(ctx, "capture_error")
		p.logger.ErrorContext(ctx, "capture failed", "error", err)
		p.store.SetError("Recording failed: " + err.Error())
		return
	}
	p.metrics.CaptureDuration.Record(ctx, clip.Duration().Seconds())

	clip = clip.Normalized(normalizeTarget)

	path, cleanup, err := audio.WriteTemp(p.tempDir, clip)
	if err != nil {
		p.metrics.RecordRecording(ctx, "capture_error")
		p.logger.ErrorContext(ctx, "temp WAV write failed", "error", err)
		p.store.SetError("Recording failed: " + err.Error())
		return
	}
	defer cleanup()

	f, err := os.Open(path)
	if err != nil {
		p.metrics.RecordRecording(ctx, "capture_error")
		p.store.SetError("Recording failed: " + err.Error())
		return
	}
	defer f.Close()

	ctx, span := observe.StartSpan(ctx, "pipeline.transcribe")
	start := time.Now()
	text, err := p.speech.Transcribe(ctx, f)
	elapsed := time.Since(start)
	span.End()

	p.metrics.TranscriptionDuration.Record(ctx, elapsed.Seconds(),
		metric.WithAttributes(attribute.Bool("empty", text == "")))

	if err != nil {
		p.metrics.RecordRecording(ctx, "stt_error")
		p.logger.ErrorContext(ctx, "transcription failed", "error", err)
		p.store.SetError("Transcription failed: " + err.Error())
		return
	}

	p.store.SetTranscript(text)
	if text == "" {
		p.metrics.RecordRecording(ctx, "empty")
		p.store.Notify("No speech detected. Try again closer to the microphone.")
		return
	}
	p.metrics.RecordRecording(ctx, "transcribed")
	p.logger.InfoContext(ctx, "transcription completed",
		"chars", len(text),
		"duration", elapsed)

	p.orch.Search(ctx, text)
}
