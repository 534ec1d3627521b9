// Package cachekey derives the shared truncated-base64 cache key used
// by every namespace in §4.6 that truncates (emb: and knowledge:).
// Factored out of embeddings.CacheKey so the orchestrator's knowledge:
// namespace key derivation can't drift from the embedding cache's,
// since both must preserve the exact 100-char truncation width noted
// in §9 for warm-cache compatibility.
package cachekey

import "encoding/base64"

// MaxChars is the base64-prefix length every truncating namespace uses.
const MaxChars = 100

// Truncated returns prefix + the first MaxChars characters of text's
// base64 encoding.
func Truncated(prefix, text string) string {
	encoded := base64.StdEncoding.EncodeToString([]byte(text))
	if len(encoded) > MaxChars {
		encoded = encoded[:MaxChars]
	}
	return prefix + encoded
}
