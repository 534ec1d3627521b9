// Package vectordb is the orchestrator's client for the external vector
// index: ANN search over stored chunk embeddings. The wire format modeled
// here (REST collection endpoints, point upsert, cosine search) follows
// the example stack's Qdrant-style HTTP client; any ANN backend that
// speaks a compatible collection/points API can sit behind this Client.
package vectordb

import "context"

// Config controls the vector index client.
type Config struct {
	URL            string
	APIKey         string
	CollectionName string
	Dim            int // fixed at 512 per spec, kept configurable for tests
	Timeout        int // seconds
}

// Point is a single stored vector plus its payload.
type Point struct {
	ID      string                 `json:"id"`
	Vector  []float32              `json:"vector"`
	Payload map[string]interface{} `json:"payload"`
}

// SearchResult is a single ANN hit.
type SearchResult struct {
	ID      string                 `json:"id"`
	Score   float64                `json:"score"`
	Payload map[string]interface{} `json:"payload"`
}

// Index is the contract the Knowledge DAO depends on so it can be
// exercised against a fake in tests without a live ANN service.
type Index interface {
	Upsert(ctx context.Context, points []Point) error
	Search(ctx context.Context, vector []float32, topN int, scoreCutoff float64) ([]SearchResult, error)
	Reset(ctx context.Context) error
}
