package config

import (
	"errors"
	"testing"

	"github.com/Zeeshan138063/voice-rag-search-assistant/pkg/provider/search"
	searchmock "github.com/Zeeshan138063/voice-rag-search-assistant/pkg/provider/search/mock"
	"github.com/Zeeshan138063/voice-rag-search-assistant/pkg/provider/stt"
	sttmock "github.com/Zeeshan138063/voice-rag-search-assistant/pkg/provider/stt/mock"
)

func TestRegistry_CreateSTT(t *testing.T) {
	r := NewRegistry()
	r.RegisterSTT("mock", func(_ ProviderEntry) (stt.Provider, error) {
		return &sttmock.Provider{Text: "hello"}, nil
	})

	p, err := r.CreateSTT(ProviderEntry{Name: "mock"})
	if err != nil {
		t.Fatalf("CreateSTT: %v", err)
	}
	if p == nil {
		t.Fatal("CreateSTT returned nil provider")
	}
}

func TestRegistry_CreateIndexPassesEntry(t *testing.T) {
	r := NewRegistry()
	var got ProviderEntry
	r.RegisterIndex("mock", func(e ProviderEntry) (search.Index, error) {
		got = e
		return &searchmock.Index{}, nil
	})

	entry := ProviderEntry{Name: "mock", APIKey: "key", Model: "m"}
	if _, err := r.CreateIndex(entry); err != nil {
		t.Fatalf("CreateIndex: %v", err)
	}
	if got.APIKey != "key" || got.Model != "m" {
		t.Errorf("factory entry = %+v, want fields forwarded", got)
	}
}

func TestRegistry_UnregisteredName(t *testing.T) {
	r := NewRegistry()

	_, err := r.CreateSTT(ProviderEntry{Name: "nope"})
	if !errors.Is(err, ErrProviderNotRegistered) {
		t.Errorf("err = %v, want ErrProviderNotRegistered", err)
	}

	_, err = r.CreateIndex(ProviderEntry{Name: "nope"})
	if !errors.Is(err, ErrProviderNotRegistered) {
		t.Errorf("err = %v, want ErrProviderNotRegistered", err)
	}

	_, err = r.CreateEmbeddings(ProviderEntry{Name: "nope"})
	if !errors.Is(err, ErrProviderNotRegistered) {
		t.Errorf("err = %v, want ErrProviderNotRegistered", err)
	}
}

func TestRegistry_OverwriteRegistration(t *testing.T) {
	r := NewRegistry()
	r.RegisterSTT("mock", func(_ ProviderEntry) (stt.Provider, error) {
		return &sttmock.Provider{Text: "first"}, nil
	})
	r.RegisterSTT("mock", func(_ ProviderEntry) (stt.Provider, error) {
		return &sttmock.Provider{Text: "second"}, nil
	})

	p, err := r.CreateSTT(ProviderEntry{Name: "mock"})
	if err != nil {
		t.Fatalf("CreateSTT: %v", err)
	}
	if mp, ok := p.(*sttmock.Provider); !ok || mp.Text != "second" {
		t.Errorf("provider = %+v, want the later registration", p)
	}
}
