// Package kvstore is the orchestrator's view of the external KV store: a
// keyed byte store with per-key TTL and a handful of set primitives. Per
// invariant I2, every cache entry here is a pure performance optimization
// -- a read failure degrades to a miss and a write failure is logged and
// swallowed, never surfaced to the caller.
package kvstore

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/front-desk-ai/rag-orchestrator/internal/circuitbreaker"
)

// Store is the KV store contract every caching layer in this repository
// depends on.
type Store interface {
	// Get returns the stored bytes and true on a hit. Any error (miss,
	// connection failure, breaker open) is folded into a false ok.
	Get(ctx context.Context, key string) ([]byte, bool)
	// Set writes best-effort: callers never learn whether it succeeded.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	// SetAsync schedules a Set on a background goroutine so a slow or
	// failing write never adds latency to the calling turn.
	SetAsync(key string, value []byte, ttl time.Duration)
	Del(ctx context.Context, key string)
	Expire(ctx context.Context, key string, ttl time.Duration)
	SAdd(ctx context.Context, key string, members ...string)
	SRem(ctx context.Context, key string, members ...string)
	SMembers(ctx context.Context, key string) []string
	Close() error
}
