package pinecone

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/pinecone-io/go-pinecone/v4/pinecone"
)

func TestNew_RequiresAPIKey(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Error("New(\"\") = nil error, want error")
	}
}

func TestNew_AppliesOptions(t *testing.T) {
	idx, err := New("test-key",
		WithIndexName("catalog"),
		WithNamespace("products"),
		WithEmbedModel("llama-text-embed-v2"),
		WithRegion("eu-west-1"),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if idx.indexName != "catalog" {
		t.Errorf("indexName = %q, want %q", idx.indexName, "catalog")
	}
	if idx.namespace != "products" {
		t.Errorf("namespace = %q, want %q", idx.namespace, "products")
	}
	if idx.region != "eu-west-1" {
		t.Errorf("region = %q, want %q", idx.region, "eu-west-1")
	}
}

// newStubIndex returns an Index whose control plane is an httptest server
// that answers DescribeIndex and counts how often it is asked.
func newStubIndex(t *testing.T, describes *atomic.Int32) *Index {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && r.URL.Path == "/indexes/"+defaultIndexName {
			describes.Add(1)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"name": "dense-index",
				"metric": "cosine",
				"host": "localhost:5081",
				"spec": {"serverless": {"cloud": "aws", "region": "us-east-1"}},
				"status": {"ready": true, "state": "Ready"}
			}`))
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := pinecone.NewClient(pinecone.NewClientParams{
		ApiKey: "test-key",
		Host:   srv.URL,
	})
	if err != nil {
		t.Fatalf("create client: %v", err)
	}
	return &Index{
		client:     client,
		indexName:  defaultIndexName,
		embedModel: defaultEmbedModel,
		region:     defaultRegion,
	}
}

func TestConnect_ConcurrentCallsShareOneConnection(t *testing.T) {
	var describes atomic.Int32
	idx := newStubIndex(t, &describes)

	const workers = 8
	conns := make([]*pinecone.IndexConnection, workers)
	var wg sync.WaitGroup
	for n := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conn, err := idx.connect(context.Background())
			if err != nil {
				t.Errorf("connect: %v", err)
				return
			}
			conns[n] = conn
		}()
	}
	wg.Wait()

	if got := describes.Load(); got != 1 {
		t.Errorf("control plane described %d times, want 1", got)
	}
	if conns[0] == nil {
		t.Fatal("connect returned nil connection")
	}
	for n := 1; n < workers; n++ {
		if conns[n] != conns[0] {
			t.Errorf("worker %d got a different connection", n)
		}
	}
}

func TestConnect_ReusesCachedConnection(t *testing.T) {
	var describes atomic.Int32
	idx := newStubIndex(t, &describes)

	first, err := idx.connect(context.Background())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	second, err := idx.connect(context.Background())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if first != second {
		t.Error("second connect did not reuse the cached connection")
	}
	if got := describes.Load(); got != 1 {
		t.Errorf("control plane described %d times, want 1", got)
	}
}

func TestFieldText(t *testing.T) {
	cases := []struct {
		name   string
		fields map[string]interface{}
		want   string
	}{
		{"nil map", nil, ""},
		{"missing field", map[string]interface{}{"other": "x"}, ""},
		{"non-string field", map[string]interface{}{textField: 42}, ""},
		{"trims whitespace", map[string]interface{}{textField: "  organic tea  "}, "organic tea"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := fieldText(tc.fields); got != tc.want {
				t.Errorf("fieldText = %q, want %q", got, tc.want)
			}
		})
	}
}
