// Command ingest loads a JSON catalog of records and upserts them into the
// configured search index in fixed-size batches.
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
	"github.com/Zeeshan138063/voice-rag-search-assistant/internal/ingest"
	"github.com/Zeeshan138063/voice-rag-search-assistant/pkg/provider/embeddings"
	oaembed "github.com/Zeeshan138063/voice-rag-search-assistant/pkg/provider/embeddings/openai"
	providersearch "github.com/Zeeshan138063/voice-rag-search-assistant/pkg/provider/search"
	"github.com/Zeeshan138063/voice-rag-search-assistant/pkg/provider/search/pgvector"
	"github.com/Zeeshan138063/voice-rag-search-assistant/pkg/provider/search/pinecone"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	recordsPath := flag.String("records", "", "path to the JSON record file (default: search.records_file from the config)")
	batchSize := flag.Int("batch", ingest.DefaultBatchSize, "records per upsert batch")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ingest: %v\n", err)
		return 1
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	path := *recordsPath
	if path == "" {
		path = cfg.Search.RecordsFile
	}
	if path == "" {
		fmt.Fprintln(os.Stderr, "ingest: no record file given; pass -records or set search.records_file")
		return 1
	}

	records, err := ingest.LoadRecords(path)
	if err != nil {
		slog.Error("failed to load records", "path", path, "err", err)
		return 1
	}
	slog.Info("records loaded", "path", path, "count", len(records))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	index, err := buildIndex(ctx, cfg)
	if err != nil {
		slog.Error("failed to build search index", "err", err)
		return 1
	}

	runner := ingest.NewRunner(index,
		ingest.WithBatchSize(*batchSize),
		ingest.WithLogger(logger))
	if err := runner.Run(ctx, records); err != nil {
		if errors.Is(err, context.Canceled) {
			slog.Warn("ingestion interrupted")
		} else {
			slog.Error("ingestion failed", "err", err)
		}
		return 1
	}
	return 0
}

// buildIndex constructs the configured index backend directly; the ingest
// tool only ever needs the one named in the config.
func buildIndex(ctx context.Context, cfg *config.Config) (providersearch.Index, error) {
	entry := cfg.Providers.Index
	switch entry.Name {
	case "pinecone":
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
	case "pgvector":
		embed, err := buildEmbeddings(cfg.Providers.Embeddings)
		if err != nil {
			return nil, err
		}
		return pgvector.New(ctx, entry.StringOption("dsn"), embed)
	default:
		return nil, fmt.Errorf("ingest: unknown index provider %q", entry.Name)
	}
}

func buildEmbeddings(entry config.ProviderEntry) (embeddings.Provider, error) {
	switch entry.Name {
	case "openai":
		var opts []oaembed.Option
		if entry.BaseURL != "" {
			opts = append(opts, oaembed.WithBaseURL(entry.BaseURL))
		}
		return oaembed.New(entry.APIKey, entry.Model, opts...)
	default:
		return nil, fmt.Errorf("ingest: unknown embeddings provider %q", entry.Name)
	}
}
