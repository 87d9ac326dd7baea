// Package embeddings defines the Provider interface for hosted text-embedding
// services.
//
// The voice search pipeline itself never computes embeddings; this interface
// exists solely for the pgvector index backend, which needs query and record
// vectors produced by an external model. The Pinecone backend embeds server
// side and does not use it.
//
// Implementations must be safe for concurrent use.
package embeddings

import "context"

// Provider maps text to dense float32 vectors via an external service.
//
// Every vector from one Provider instance has length Dimensions(); vectors
// from different instances must not be mixed in the same index.
type Provider interface {
	// Embed returns the embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch embeds texts in one provider call. The returned slice has the
	// same length and order as texts; on error no partial results are returned.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions is the fixed vector length produced by this provider.
	Dimensions() int
}
