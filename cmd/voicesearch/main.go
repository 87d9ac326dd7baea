// Command voicesearch is the voice-driven search server: it records
// microphone audio, transcribes it through a hosted speech-to-text API,
// queries a vector search index with the transcript, and serves the results
// as a web UI.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Zeeshan138063/voice-rag-search-assistant/internal/config"
	"github.com/Zeeshan138063/voice-rag-search-assistant/internal/health"
	"github.com/Zeeshan138063/voice-rag-search-assistant/internal/observe"
	"github.com/Zeeshan138063/voice-rag-search-assistant/internal/pipeline"
	"github.com/Zeeshan138063/voice-rag-search-assistant/internal/search"
	"github.com/Zeeshan138063/voice-rag-search-assistant/internal/session"
	"github.com/Zeeshan138063/voice-rag-search-assistant/internal/web"
	"github.com/Zeeshan138063/voice-rag-search-assistant/pkg/audio"
	"github.com/Zeeshan138063/voice-rag-search-assistant/pkg/provider/embeddings"
	oaembed "github.com/Zeeshan138063/voice-rag-search-assistant/pkg/provider/embeddings/openai"
	providersearch "github.com/Zeeshan138063/voice-rag-search-assistant/pkg/provider/search"
	"github.com/Zeeshan138063/voice-rag-search-assistant/pkg/provider/search/pgvector"
	"github.com/Zeeshan138063/voice-rag-search-assistant/pkg/provider/search/pinecone"
	"github.com/Zeeshan138063/voice-rag-search-assistant/pkg/provider/stt"
	oaistt "github.com/Zeeshan138063/voice-rag-search-assistant/pkg/provider/stt/openai"
	"github.com/Zeeshan138063/voice-rag-search-assistant/pkg/provider/stt/whisper"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// A missing .env file is fine; secrets may come from the real environment.
	_ = godotenv.Load()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "voicesearch: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "voicesearch: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	slog.Info("voicesearch starting",
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Observability ─────────────────────────────────────────────────────────
	shutdownObserve, err := observe.InitProvider(ctx, observe.ProviderConfig{ServiceName: "voicesearch"})
	if err != nil {
		slog.Error("failed to initialise observability", "err", err)
		return 1
	}
	defer func() {
		if err := shutdownObserve(context.Background()); err != nil {
			slog.Warn("observability shutdown error", "err", err)
		}
	}()
	metrics := observe.DefaultMetrics()

	// ── Provider registry ─────────────────────────────────────────────────────
	reg := config.NewRegistry()
	registerBuiltinProviders(ctx, reg, cfg)

	speech, err := reg.CreateSTT(cfg.Providers.STT)
	if err != nil {
		slog.Error("failed to build STT provider", "err", err)
		return 1
	}
	index, err := reg.CreateIndex(cfg.Providers.Index)
	if err != nil {
		slog.Error("failed to build search index", "err", err)
		return 1
	}

	// ── Session + pipeline ────────────────────────────────────────────────────
	store := session.NewStore()
	if d := cfg.Capture.DefaultDuration; d != 0 {
		store.SetRecordDuration(d)
	}
	if k := cfg.Search.DefaultTopK; k != 0 {
		store.SetTopK(k)
	}

	orch := search.NewOrchestrator(index, store,
		search.WithBackendName(cfg.Providers.Index.Name),
		search.WithMetrics(metrics))

	events := pipeline.NewBroadcaster()
	pipe := pipeline.New(audio.NewDeviceRecorder(), speech, orch, store, events,
		pipeline.WithMetrics(metrics),
		pipeline.WithTempDir(cfg.Capture.TempDir))

	// ── Web server ────────────────────────────────────────────────────────────
	checks := health.New(health.IndexChecker(index), health.STTChecker(speech))
	server, err := web.New(store, pipe, orch, events, checks,
		web.WithMetrics(metrics),
		web.WithRecordsPath(cfg.Search.RecordsFile))
	if err != nil {
		slog.Error("failed to initialise web server", "err", err)
		return 1
	}

	addr := cfg.Server.ListenAddr
	if addr == "" {
		addr = ":8080"
	}
	slog.Info("server ready — press Ctrl+C to shut down")

	if err := server.Run(ctx, addr); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("run error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// ── Provider wiring ───────────────────────────────────────────────────────────

// registerBuiltinProviders wires all built-in provider factories into reg.
// Each factory receives a config.ProviderEntry and constructs the appropriate
// provider from the real implementation packages.
func registerBuiltinProviders(ctx context.Context, reg *config.Registry, cfg *config.Config) {
	// ── STT ───────────────────────────────────────────────────────────────────

	reg.RegisterSTT("openai", func(entry config.ProviderEntry) (stt.Provider, error) {
		var opts []oaistt.Option
		if entry.Model != "" {
			opts = append(opts, oaistt.WithModel(entry.Model))
		}
		if entry.BaseURL != "" {
			opts = append(opts, oaistt.WithBaseURL(entry.BaseURL))
		}
		if lang := entry.StringOption("language"); lang != "" {
			opts = append(opts, oaistt.WithLanguage(lang))
		}
		return oaistt.New(entry.APIKey, opts...)
	})

	reg.RegisterSTT("whisper", func(entry config.ProviderEntry) (stt.Provider, error) {
		var opts []whisper.Option
		if entry.Model != "" {
			opts = append(opts, whisper.WithModel(entry.Model))
		}
		if lang := entry.StringOption("language"); lang != "" {
			opts = append(opts, whisper.WithLanguage(lang))
		}
		return whisper.New(entry.BaseURL, opts...)
	})

	// ── Search index ──────────────────────────────────────────────────────────

	reg.RegisterIndex("pinecone", func(entry config.ProviderEntry) (providersearch.Index, error) {
		var opts []pinecone.Option
		if name := entry.StringOption("index"); name != "" {
			opts = append(opts, pinecone.WithIndexName(name))
		}
		if region := entry.StringOption("region"); region != "" {
			opts = append(opts, pinecone.WithRegion(region))
		}
		if entry.Model != "" {
			opts = append(opts, pinecone.WithEmbedModel(entry.Model))
		}
		if cfg.Search.Namespace != "" {
			opts = append(opts, pinecone.WithNamespace(cfg.Search.Namespace))
		}
		return pinecone.New(entry.APIKey, opts...)
	})

	reg.RegisterIndex("pgvector", func(entry config.ProviderEntry) (providersearch.Index, error) {
		embed, err := reg.CreateEmbeddings(cfg.Providers.Embeddings)
		if err != nil {
			return nil, err
		}
		return pgvector.New(ctx, entry.StringOption("dsn"), embed)
	})

	// ── Embeddings ────────────────────────────────────────────────────────────

	reg.RegisterEmbeddings("openai", func(entry config.ProviderEntry) (embeddings.Provider, error) {
		var opts []oaembed.Option
		if entry.BaseURL != "" {
			opts = append(opts, oaembed.WithBaseURL(entry.BaseURL))
		}
		return oaembed.New(entry.APIKey, entry.Model, opts...)
	})
}

// newLogger builds a slog text logger at the configured level.
func newLogger(level config.LogLevel) *slog.Logger {
	var l slog.Level
	switch level {
	case config.LogDebug:
		l = slog.LevelDebug
	case config.LogWarn:
		l = slog.LevelWarn
	case config.LogError:
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}
