package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/Zeeshan138063/voice-rag-search-assistant/internal/session"
)

// ValidProviderNames lists known provider names per provider kind.
// Used by [Validate] to warn about unrecognised provider names.
var ValidProviderNames = map[string][]string{
	"stt":        {"openai", "whisper"},
	"index":      {"pinecone", "pgvector"},
	"embeddings": {"openai"},
}

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, applies environment secret
// overrides, and validates the result. Useful in tests where configs are
// constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}

	secrets, err := LoadSecrets()
	if err != nil {
		return nil, err
	}
	ApplySecrets(cfg, secrets)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	// Capture
	if d := cfg.Capture.DefaultDuration; d != 0 {
		if d < session.MinRecordDuration || d > session.MaxRecordDuration {
			errs = append(errs, fmt.Errorf("capture.default_duration %s is out of range [%s, %s]",
				d, session.MinRecordDuration, session.MaxRecordDuration))
		}
	}

	// Search
	if k := cfg.Search.DefaultTopK; k != 0 {
		if k < session.MinTopK || k > session.MaxTopK {
			errs = append(errs, fmt.Errorf("search.default_top_k %d is out of range [%d, %d]",
				k, session.MinTopK, session.MaxTopK))
		}
	}

	// Provider name validation — warn for unknown provider names.
	validateProviderName("stt", cfg.Providers.STT.Name)
	validateProviderName("index", cfg.Providers.Index.Name)
	validateProviderName("embeddings", cfg.Providers.Embeddings.Name)

	if cfg.Providers.STT.Name == "" {
		errs = append(errs, errors.New("providers.stt.name is required; voice queries cannot be transcribed without it"))
	}
	if cfg.Providers.Index.Name == "" {
		errs = append(errs, errors.New("providers.index.name is required; there is nothing to search without it"))
	}

	// The self-hosted index embeds query text itself and needs both an
	// embeddings provider and a database.
	if cfg.Providers.Index.Name == "pgvector" {
		if cfg.Providers.Embeddings.Name == "" {
			errs = append(errs, errors.New("providers.index pgvector requires providers.embeddings to be configured"))
		}
		if cfg.Providers.Index.StringOption("dsn") == "" {
			errs = append(errs, errors.New(`providers.index pgvector requires options.dsn (or the POSTGRES_DSN environment variable)`))
		}
	}

	return errors.Join(errs...)
}

// validateProviderName logs a warning if name is non-empty and not found in
// the [ValidProviderNames] list for the given kind.
func validateProviderName(kind, name string) {
	if name == "" {
		return
	}
	known, ok := ValidProviderNames[kind]
	if !ok {
		return
	}
	if slices.Contains(known, name) {
		return
	}
	slog.Warn("unknown provider name — may be a typo or third-party provider",
		"kind", kind,
		"name", name,
		"known", known,
	)
}
