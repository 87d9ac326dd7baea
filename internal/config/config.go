// Package config provides the configuration schema, loader, secret overrides,
// and provider registry for the voice search server.
package config

import "time"

// LogLevel controls log verbosity for the server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure, typically loaded from a YAML
// file using [Load] or [LoadFromReader].
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Capture   CaptureConfig   `yaml:"capture"`
	Search    SearchConfig    `yaml:"search"`
	Providers ProvidersConfig `yaml:"providers"`
}

// ServerConfig holds network and logging settings.
type ServerConfig struct {
	// ListenAddr is the TCP address the server listens on (e.g., ":8080").
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// CaptureConfig holds microphone capture settings.
type CaptureConfig struct {
	// DefaultDuration is the initial recording length. The UI can change it
	// within [5s, 60s] at runtime. Zero means 15 seconds.
	DefaultDuration time.Duration `yaml:"default_duration"`

	// TempDir is where temporary WAV files are written. Empty means the
	// system temp directory.
	TempDir string `yaml:"temp_dir"`
}

// SearchConfig holds index-level search settings.
type SearchConfig struct {
	// Namespace scopes all reads and writes within the index.
	Namespace string `yaml:"namespace"`

	// DefaultTopK is the initial result count. The UI can change it within
	// [1, 100] at runtime. Zero means 10.
	DefaultTopK int `yaml:"default_top_k"`

	// RecordsFile is the JSON catalog shown on the catalog page and ingested
	// by the ingest tool. Optional.
	RecordsFile string `yaml:"records_file"`
}

// ProvidersConfig declares which provider implementation to use for each
// external service. Each field selects a named provider registered in the
// [Registry].
type ProvidersConfig struct {
	STT        ProviderEntry `yaml:"stt"`
	Index      ProviderEntry `yaml:"index"`
	Embeddings ProviderEntry `yaml:"embeddings"`
}

// ProviderEntry is the common configuration block shared by all provider
// types. The Name field is used to look up the constructor in the [Registry].
type ProviderEntry struct {
	// Name selects the registered provider implementation
	// (e.g., "openai", "pinecone").
	Name string `yaml:"name"`

	// APIKey is the authentication key for the provider's API if any.
	// Usually left empty in the file and supplied via environment variables.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default API endpoint.
	// Leave empty to use the provider's built-in default.
	BaseURL string `yaml:"base_url"`

	// Model selects a specific model within the provider
	// (e.g., "whisper-1", "llama-text-embed-v2").
	Model string `yaml:"model"`

	// Options holds provider-specific configuration values not covered by
	// the standard fields above ("index", "region", "dsn", "language", ...).
	Options map[string]any `yaml:"options"`
}

// StringOption returns the option under key as a string, or "" when absent
// or not a string.
func (e ProviderEntry) StringOption(key string) string {
	s, _ := e.Options[key].(string)
	return s
}

// SetOption stores an option value, allocating the map on first use.
func (e *ProviderEntry) SetOption(key string, value any) {
	if e.Options == nil {
		e.Options = make(map[string]any)
	}
	e.Options[key] = value
}
