package kvstore

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/front-desk-ai/rag-orchestrator/internal/circuitbreaker"
)

// RedisStore is the production Store backed by Redis (or anything
// wire-compatible with it), wrapped in a circuit breaker.
type RedisStore struct {
	client *circuitbreaker.RedisWrapper
	logger *zap.Logger
}

// NewRedisStore dials addr and returns a ready Store, pinging once to fail
// fast on misconfiguration.
func NewRedisStore(addr, password string, logger *zap.Logger) (*RedisStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	rc := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	wrapped := circuitbreaker.NewRedisWrapper(rc, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := wrapped.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to kv store: %w", err)
	}

	return &RedisStore{client: wrapped, logger: logger}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	b, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return b, true
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		s.logger.Debug("kv store write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *RedisStore) SetAsync(key string, value []byte, ttl time.Duration) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		s.Set(ctx, key, value, ttl)
	}()
}

func (s *RedisStore) Del(ctx context.Context, key string) {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		s.logger.Debug("kv store delete failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *RedisStore) Expire(ctx context.Context, key string, ttl time.Duration) {
	if err := s.client.Expire(ctx, key, ttl).Err(); err != nil {
		s.logger.Debug("kv store expire failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *RedisStore) SAdd(ctx context.Context, key string, members ...string) {
	args := make([]interface{}, len(members))
	for i, m := range members {
		args[i] = m
	}
	if err := s.client.SAdd(ctx, key, args...).Err(); err != nil {
		s.logger.Debug("kv store sadd failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *RedisStore) SRem(ctx context.Context, key string, members ...string) {
	args := make([]interface{}, len(members))
	for i, m := range members {
		args[i] = m
	}
	if err := s.client.SRem(ctx, key, args...).Err(); err != nil {
		s.logger.Debug("kv store srem failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *RedisStore) SMembers(ctx context.Context, key string) []string {
	members, err := s.client.SMembers(ctx, key).Result()
	if err != nil {
		return nil
	}
	return members
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
