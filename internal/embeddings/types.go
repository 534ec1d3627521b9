package embeddings

import (
	"context"
	"time"
)

// Provider is the external embedding provider: it maps a text input onto a
// fixed-dimension vector. Its concrete transport (HTTP call to a hosted
// model, a local ONNX runtime, whatever) is outside this module's scope --
// the orchestrator depends only on this interface.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Cache is the two-tier (local + KV store) caching contract the Service
// uses in front of a Provider.
type Cache interface {
	Get(ctx context.Context, key string) ([]float32, bool)
	Set(ctx context.Context, key string, v []float32, ttl time.Duration)
}
