// Package pinecone implements search.Index backed by a managed Pinecone
// index with integrated embedding.
//
// The index is created on first use when it does not exist yet, bound to the
// embedding model configured via [WithEmbedModel] (default
// "llama-text-embed-v2") with the record text stored under the "chunk_text"
// field. Queries send raw text; Pinecone embeds and ranks server side.
package pinecone

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/pinecone-io/go-pinecone/v4/pinecone"

	"github.com/Zeeshan138063/voice-rag-search-assistant/pkg/provider/search"
)

const (
	defaultIndexName  = "dense-index"
	defaultEmbedModel = "llama-text-embed-v2"
	defaultCloud      = pinecone.Aws
	defaultRegion     = "us-east-1"

	// textField is the record field holding the searchable text. It is also
	// the target of the index's embedding field map.
	textField = "chunk_text"
)

// Compile-time assertion that Index implements search.Index.
var _ search.Index = (*Index)(nil)

// Option is a functional option for configuring an Index.
type Option func(*Index)

// WithIndexName overrides the Pinecone index name. Defaults to "dense-index".
func WithIndexName(name string) Option {
	return func(i *Index) { i.indexName = name }
}

// WithNamespace sets the namespace records are written to and queried from.
// Defaults to the default namespace ("").
func WithNamespace(ns string) Option {
	return func(i *Index) { i.namespace = ns }
}

// WithEmbedModel sets the integrated embedding model used when the index has
// to be created. Existing indexes keep whatever model they were created with.
func WithEmbedModel(model string) Option {
	return func(i *Index) { i.embedModel = model }
}

// WithRegion sets the serverless cloud region used when the index has to be
// created. Defaults to AWS us-east-1.
func WithRegion(region string) Option {
	return func(i *Index) { i.region = region }
}

// Index implements search.Index on top of the Pinecone SDK. The index
// connection is established lazily on first use and reused afterwards; the
// lazy init is serialized so concurrent callers share one connection.
type Index struct {
	client    *pinecone.Client
	indexName string
	namespace string
	embedModel string
	region    string

	mu   sync.Mutex
	conn *pinecone.IndexConnection
}

// New creates a Pinecone-backed Index. apiKey must not be empty. The remote
// index is not touched until the first call that needs it.
func New(apiKey string, opts ...Option) (*Index, error) {
	if apiKey == "" {
		return nil, errors.New("pinecone: apiKey must not be empty")
	}
	client, err := pinecone.NewClient(pinecone.NewClientParams{ApiKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("pinecone: create client: %w", err)
	}
	i := &Index{
		client:     client,
		indexName:  defaultIndexName,
		embedModel: defaultEmbedModel,
		region:     defaultRegion,
	}
	for _, o := range opts {
		o(i)
	}
	return i, nil
}

// connect describes (or creates) the index and opens a data-plane connection.
// Subsequent calls return the cached connection. The mutex keeps two
// concurrent first calls from opening duplicate connections.
func (i *Index) connect(ctx context.Context) (*pinecone.IndexConnection, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.conn != nil {
		return i.conn, nil
	}

	idx, err := i.client.DescribeIndex(ctx, i.indexName)
	if err != nil {
		idx, err = i.client.CreateIndexForModel(ctx, &pinecone.CreateIndexForModelRequest{
			Name:   i.indexName,
			Cloud:  defaultCloud,
			Region: i.region,
			Embed: pinecone.CreateIndexForModelEmbed{
				Model:    i.embedModel,
				FieldMap: map[string]interface{}{"text": textField},
			},
		})
		if err != nil {
			return nil, fmt.Errorf("pinecone: create index %q: %w", i.indexName, err)
		}
	}

	conn, err := i.client.Index(pinecone.NewIndexConnParams{
		Host:      idx.Host,
		Namespace: i.namespace,
	})
	if err != nil {
		return nil, fmt.Errorf("pinecone: connect to index %q: %w", i.indexName, err)
	}
	i.conn = conn
	return conn, nil
}

// Search implements [search.Index]. It sends the raw query text to Pinecone's
// integrated-embedding search endpoint and converts the hits, validating each
// one at the boundary.
func (i *Index) Search(ctx context.Context, q search.Query) ([]search.Hit, error) {
	conn, err := i.connect(ctx)
	if err != nil {
		return nil, err
	}

	topK := int32(q.TopK)
	res, err := conn.SearchRecords(ctx, &pinecone.SearchRecordsRequest{
		Query: pinecone.SearchRecordsQuery{
			TopK:   topK,
			Inputs: &map[string]interface{}{"text": q.Text},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("pinecone: search: %w", err)
	}

	hits := make([]search.Hit, 0, len(res.Result.Hits))
	for _, h := range res.Result.Hits {
		hit := search.Hit{
			ID:    h.Id,
			Score: float64(h.Score),
			Text:  fieldText(h.Fields),
		}
		if err := search.ValidateHit(hit); err != nil {
			return nil, err
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// Upsert implements [search.Index]. Records are written with integrated
// embedding; Pinecone embeds the chunk_text field server side.
func (i *Index) Upsert(ctx context.Context, records []search.Record) error {
	if len(records) == 0 {
		return nil
	}
	conn, err := i.connect(ctx)
	if err != nil {
		return err
	}

	batch := make([]*pinecone.IntegratedRecord, 0, len(records))
	for _, r := range records {
		if err := search.ValidateRecord(r); err != nil {
			return err
		}
		batch = append(batch, &pinecone.IntegratedRecord{
			"_id":     r.ID,
			textField: r.Text,
		})
	}
	if err := conn.UpsertRecords(ctx, batch); err != nil {
		return fmt.Errorf("pinecone: upsert %d records: %w", len(batch), err)
	}
	return nil
}

// Ping implements [search.Index] by describing the index on the control plane.
func (i *Index) Ping(ctx context.Context) error {
	if _, err := i.client.DescribeIndex(ctx, i.indexName); err != nil {
		return fmt.Errorf("pinecone: describe index %q: %w", i.indexName, err)
	}
	return nil
}

// fieldText extracts the chunk_text field from a hit's field map. An empty
// string is returned when the field is absent or not a string; ValidateHit
// tolerates empty text because some records legitimately index metadata only.
func fieldText(fields map[string]interface{}) string {
	if fields == nil {
		return ""
	}
	v, ok := fields[textField]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}
