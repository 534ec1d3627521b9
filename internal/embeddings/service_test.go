package embeddings

import (
	"context"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	calls int32
	err   error
}

func (p *stubProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	atomic.AddInt32(&p.calls, 1)
	if p.err != nil {
		return nil, p.err
	}
	// deterministic toy embedding: four dims, each summing rune codes (mod 7)
	// by position, so identical text always produces an identical vector
	// without real model calls.
	v := make([]float32, 4)
	for i, r := range text {
		v[i%4] += float32(r % 7)
	}
	return v, nil
}

func TestServiceEmbedCachesAcrossCalls(t *testing.T) {
	p := &stubProvider{}
	svc := NewService(p, nil, 16)

	v1, err := svc.Embed(context.Background(), "what is the late policy?")
	require.NoError(t, err)
	v2, err := svc.Embed(context.Background(), "what is the late policy?")
	require.NoError(t, err)

	assert.Equal(t, v1, v2)
	assert.EqualValues(t, 1, p.calls, "second call should hit the LRU, not the provider")
}

func TestServiceEmbedPropagatesProviderError(t *testing.T) {
	p := &stubProvider{err: assertErr{}}
	svc := NewService(p, nil, 16)

	_, err := svc.Embed(context.Background(), "anything")
	require.Error(t, err)
}

func TestServiceEmbedBatchConcurrent(t *testing.T) {
	p := &stubProvider{}
	svc := NewService(p, nil, 16)

	texts := []string{"alpha", "beta", "gamma", "alpha"}
	out, errs := svc.EmbedBatch(context.Background(), texts)

	for _, e := range errs {
		require.NoError(t, e)
	}
	require.Len(t, out, 4)
	assert.Equal(t, out[0], out[3], "duplicate text should embed identically")
}

func TestCacheKeyTruncatesAt100Chars(t *testing.T) {
	short := CacheKey("hi")
	assert.True(t, strings.HasPrefix(short, "emb:"))
	assert.LessOrEqual(t, len(short)-len("emb:"), 100)

	long := CacheKey(strings.Repeat("x", 10000))
	assert.Equal(t, 100, len(long)-len("emb:"))
}

type assertErr struct{}

func (assertErr) Error() string { return "embedding provider unavailable" }
