package openai

import (
	"testing"
	"time"
)

func TestNew_EmptyAPIKey_ReturnsError(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Fatal("expected error for empty apiKey, got nil")
	}
}

func TestNew_DefaultModel(t *testing.T) {
	p, err := New("sk-test")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.model != DefaultModel {
		t.Errorf("model = %q, want %q", p.model, DefaultModel)
	}
}

func TestNew_Options(t *testing.T) {
	p, err := New("sk-test",
		WithModel("whisper-1"),
		WithLanguage("en"),
		WithTimeout(5*time.Second),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.model != "whisper-1" {
		t.Errorf("model = %q, want whisper-1", p.model)
	}
	if p.language != "en" {
		t.Errorf("language = %q, want en", p.language)
	}
	if p.timeout != 5*time.Second {
		t.Errorf("timeout = %v, want 5s", p.timeout)
	}
}
