package embeddings

import "github.com/front-desk-ai/rag-orchestrator/internal/cachekey"

// CacheKey derives the emb: namespace key for a piece of text: the
// first 100 characters of its base64 encoding, namespaced. Truncating
// intentionally collapses very long near-duplicate inputs into the
// same cache entry -- see §9 of the spec ("base64-truncation key
// collision"). Preserve this width exactly; widening it silently
// invalidates a warm cache.
func CacheKey(text string) string {
	return cachekey.Truncated("emb:", text)
}
