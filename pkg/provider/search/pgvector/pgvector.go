// Package pgvector implements search.Index on a self-hosted PostgreSQL table
// with a pgvector HNSW index.
//
// Unlike the managed Pinecone backend, PostgreSQL cannot embed text itself,
// so this backend pairs the table with an [embeddings.Provider]: records are
// embedded on upsert and queries are embedded before the nearest-neighbour
// scan. Hits are ranked by cosine distance and reported as similarity scores
// clamped to [0, 1].
package pgvector

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgvec "github.com/pgvector/pgvector-go"
	pgxvec "github.com/pgvector/pgvector-go/pgx"

	"github.com/Zeeshan138063/voice-rag-search-assistant/pkg/provider/embeddings"
	"github.com/Zeeshan138063/voice-rag-search-assistant/pkg/provider/search"
)

var _ search.Index = (*Index)(nil)

// Index implements search.Index backed by a records table in PostgreSQL.
// All methods are safe for concurrent use.
type Index struct {
	pool  *pgxpool.Pool
	embed embeddings.Provider
}

// New connects to the PostgreSQL database at dsn, registers pgvector types on
// every connection, and runs the schema migration sized for the provider's
// embedding dimensions.
func New(ctx context.Context, dsn string, embed embeddings.Provider) (*Index, error) {
	if embed == nil {
		return nil, errors.New("pgvector: embeddings provider is required")
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pgvector: parse dsn: %w", err)
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pgvector: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pgvector: ping: %w", err)
	}
	if err := migrate(ctx, pool, embed.Dimensions()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pgvector: migrate: %w", err)
	}

	return &Index{pool: pool, embed: embed}, nil
}

// migrate installs the vector extension and creates the records table with an
// HNSW cosine index. Changing the embedding dimensions after the first run
// requires a manual schema change.
func migrate(ctx context.Context, pool *pgxpool.Pool, dimensions int) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS records (
			id         TEXT        PRIMARY KEY,
			chunk_text TEXT        NOT NULL,
			embedding  vector(%d)  NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`, dimensions),
		`CREATE INDEX IF NOT EXISTS idx_records_embedding
			ON records USING hnsw (embedding vector_cosine_ops)`,
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Search implements [search.Index]. The query text is embedded first, then
// the topK nearest records by cosine distance are returned, most similar
// first.
func (i *Index) Search(ctx context.Context, q search.Query) ([]search.Hit, error) {
	vec, err := i.embed.Embed(ctx, q.Text)
	if err != nil {
		return nil, fmt.Errorf("pgvector: embed query: %w", err)
	}

	const query = `
		SELECT id, chunk_text, embedding <=> $1 AS distance
		FROM   records
		ORDER  BY distance
		LIMIT  $2`

	rows, err := i.pool.Query(ctx, query, pgvec.NewVector(vec), q.TopK)
	if err != nil {
		return nil, fmt.Errorf("pgvector: search: %w", err)
	}

	hits, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (search.Hit, error) {
		var (
			h        search.Hit
			distance float64
		)
		if err := row.Scan(&h.ID, &h.Text, &distance); err != nil {
			return search.Hit{}, err
		}
		// Cosine distance is in [0, 2]; fold it into a [0, 1] similarity so
		// hits from either backend render on the same relevance scale.
		h.Score = min(max(1-distance, 0), 1)
		return h, nil
	})
	if err != nil {
		return nil, fmt.Errorf("pgvector: scan rows: %w", err)
	}

	for _, h := range hits {
		if err := search.ValidateHit(h); err != nil {
			return nil, err
		}
	}
	return hits, nil
}

// Upsert implements [search.Index]. Records are embedded in one batch call
// and written with ON CONFLICT replacement, so re-running ingestion is
// idempotent per record ID.
func (i *Index) Upsert(ctx context.Context, records []search.Record) error {
	if len(records) == 0 {
		return nil
	}

	texts := make([]string, len(records))
	for n, r := range records {
		if err := search.ValidateRecord(r); err != nil {
			return err
		}
		texts[n] = r.Text
	}

	vecs, err := i.embed.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("pgvector: embed batch: %w", err)
	}

	const stmt = `
		INSERT INTO records (id, chunk_text, embedding, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (id) DO UPDATE SET
			chunk_text = EXCLUDED.chunk_text,
			embedding  = EXCLUDED.embedding,
			updated_at = now()`

	batch := &pgx.Batch{}
	for n, r := range records {
		batch.Queue(stmt, r.ID, r.Text, pgvec.NewVector(vecs[n]))
	}
	if err := i.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("pgvector: upsert %d records: %w", len(records), err)
	}
	return nil
}

// Ping implements [search.Index].
func (i *Index) Ping(ctx context.Context) error {
	if err := i.pool.Ping(ctx); err != nil {
		return fmt.Errorf("pgvector: ping: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (i *Index) Close() {
	i.pool.Close()
}
