// Package openai provides an stt.Provider backed by the OpenAI audio
// transcription API (whisper-1).
package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"

	"github.com/Zeeshan138063/voice-rag-search-assistant/pkg/provider/stt"
)

// DefaultModel is used when no model is configured.
const DefaultModel = oai.AudioModelWhisper1

var _ stt.Provider = (*Provider)(nil)

// Option is a functional option for configuring a Provider.
type Option func(*Provider)

// WithModel overrides the transcription model (e.g. "whisper-1").
func WithModel(model string) Option {
	return func(p *Provider) { p.model = model }
}

// WithLanguage sets the ISO-639-1 language hint sent with every request.
// Empty lets the service auto-detect.
func WithLanguage(lang string) Option {
	return func(p *Provider) { p.language = lang }
}

// WithBaseURL overrides the OpenAI API base URL.
func WithBaseURL(url string) Option {
	return func(p *Provider) { p.baseURL = url }
}

// WithTimeout sets a per-request HTTP timeout. Defaults to 60s; whole-file
// transcription of a one-minute recording can take a while.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) { p.timeout = d }
}

// Provider implements stt.Provider using the OpenAI API.
type Provider struct {
	client   oai.Client
	model    string
	language string
	baseURL  string
	timeout  time.Duration
}

// New constructs an OpenAI transcription Provider. apiKey must not be empty.
func New(apiKey string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("openai stt: apiKey must not be empty")
	}

	p := &Provider{model: DefaultModel, timeout: 60 * time.Second}
	for _, o := range opts {
		o(p)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(&http.Client{Timeout: p.timeout}),
	}
	if p.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(p.baseURL))
	}
	p.client = oai.NewClient(reqOpts...)
	return p, nil
}

// Transcribe implements stt.Provider. The audio reader must supply a complete
// WAV file; it is streamed into the multipart upload as-is.
func (p *Provider) Transcribe(ctx context.Context, audio io.Reader) (string, error) {
	params := oai.AudioTranscriptionNewParams{
		Model: p.model,
		File:  audio,
	}
	if p.language != "" {
		params.Language = param.NewOpt(p.language)
	}

	resp, err := p.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai stt: transcribe: %w", err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		// The service answered but heard nothing. Callers treat this as a
		// successful empty transcript, not a failure.
		return "", nil
	}
	return text, nil
}
