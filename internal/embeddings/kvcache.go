package embeddings

import (
	"context"
	"encoding/binary"
	"math"
	"time"

	"github.com/front-desk-ai/rag-orchestrator/internal/kvstore"
)

// KVCache adapts a kvstore.Store into the embeddings Cache contract,
// serializing float32 vectors as little-endian 4-byte chunks.
type KVCache struct {
	store kvstore.Store
}

func NewKVCache(store kvstore.Store) *KVCache {
	return &KVCache{store: store}
}

func (c *KVCache) Get(ctx context.Context, key string) ([]float32, bool) {
	b, ok := c.store.Get(ctx, key)
	if !ok || len(b)%4 != 0 {
		return nil, false
	}
	out := make([]float32, len(b)/4)
	for i := range out {
		u := binary.LittleEndian.Uint32(b[i*4:])
		out[i] = math.Float32frombits(u)
	}
	return out, true
}

func (c *KVCache) Set(ctx context.Context, key string, v []float32, ttl time.Duration) {
	b := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(f))
	}
	c.store.SetAsync(key, b, ttl)
}
