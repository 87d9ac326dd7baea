package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Secrets are credentials read from the environment. They take effect only
// where the config file leaves the corresponding field empty, so a file value
// always wins over the environment.
type Secrets struct {
	OpenAIAPIKey   string `envconfig:"OPENAI_API_KEY"`
	PineconeAPIKey string `envconfig:"PINECONE_API_KEY"`
	PostgresDSN    string `envconfig:"POSTGRES_DSN"`
}

// LoadSecrets reads [Secrets] from the process environment.
func LoadSecrets() (Secrets, error) {
	var s Secrets
	if err := envconfig.Process("", &s); err != nil {
		return Secrets{}, fmt.Errorf("config: read environment: %w", err)
	}
	return s, nil
}

// ApplySecrets fills empty credential fields in cfg from s, based on each
// provider entry's name.
func ApplySecrets(cfg *Config, s Secrets) {
	applyKey := func(e *ProviderEntry) {
		if e.APIKey != "" {
			return
		}
		switch e.Name {
		case "openai", "whisper":
			e.APIKey = s.OpenAIAPIKey
		case "pinecone":
			e.APIKey = s.PineconeAPIKey
		}
	}
	applyKey(&cfg.Providers.STT)
	applyKey(&cfg.Providers.Index)
	applyKey(&cfg.Providers.Embeddings)

	if cfg.Providers.Index.Name == "pgvector" &&
		cfg.Providers.Index.StringOption("dsn") == "" && s.PostgresDSN != "" {
		cfg.Providers.Index.SetOption("dsn", s.PostgresDSN)
	}
}
