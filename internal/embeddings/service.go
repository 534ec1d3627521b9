package embeddings

import (
	"context"
	"time"
)

// CacheTTL is the emb: namespace TTL fixed by §4.6.
const CacheTTL = 3600 * time.Second

// localTTL is how long a freshly embedded vector stays in the in-process
// LRU, independent of (and shorter than) the KV store TTL.
const localTTL = 30 * time.Minute

// Service wraps a Provider with the two-tier cache described in §4.6: a
// local LRU in front of the shared KV store. Every embedding request,
// whether for a query or a sentence, goes through here.
type Service struct {
	provider Provider
	kv       Cache
	lru      *LocalLRU
}

// NewService builds a caching embedding service. kv may be nil, in which
// case only the local LRU is used (useful for tests).
func NewService(provider Provider, kv Cache, lruCapacity int) *Service {
	return &Service{provider: provider, kv: kv, lru: NewLocalLRU(lruCapacity)}
}

// Embed returns the embedding for text, consulting the local LRU then the
// KV store before calling the provider. A provider failure is returned
// to the caller unchanged; callers in the retrieval path treat it as a
// degraded-but-valid condition (dense branch returns empty, per §4.1).
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	key := CacheKey(text)

	if v, ok := s.lru.Get(ctx, key); ok {
		return v, nil
	}
	if s.kv != nil {
		if v, ok := s.kv.Get(ctx, key); ok {
			s.lru.Set(ctx, key, v, localTTL)
			return v, nil
		}
	}

	v, err := s.provider.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	s.lru.Set(ctx, key, v, localTTL)
	if s.kv != nil {
		s.kv.Set(ctx, key, v, CacheTTL)
	}
	return v, nil
}

// EmbedBatch embeds each text concurrently, used by the answer extractor
// to issue the query embedding and every sentence embedding as one
// concurrent batch (§5). Errors are returned per-index; a nil entry in
// the returned slice marks that text's embed call failed.
func (s *Service) EmbedBatch(ctx context.Context, texts []string) ([][]float32, []error) {
	out := make([][]float32, len(texts))
	errs := make([]error, len(texts))

	type result struct {
		idx int
		v   []float32
		err error
	}
	ch := make(chan result, len(texts))
	for i, t := range texts {
		go func(idx int, text string) {
			v, err := s.Embed(ctx, text)
			ch <- result{idx: idx, v: v, err: err}
		}(i, t)
	}
	for range texts {
		r := <-ch
		out[r.idx] = r.v
		errs[r.idx] = r.err
	}
	return out, errs
}
