package resolution

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKey = "customspay:resolutions"

// RedisClient is the slice of go-redis the cache uses. *redis.Client
// satisfies it; tests substitute a fake.
type RedisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// CachedStore is a read-through cache over a Store. Every search session
// start reloads the full resolution list; caching it keeps that off the
// database. Appends invalidate. Cache failures degrade to the inner store,
// never to an error.
type CachedStore struct {
	inner  Store
	client RedisClient
	ttl    time.Duration
	logger *slog.Logger
}

var _ Store = (*CachedStore)(nil)

func NewCachedStore(inner Store, client RedisClient, ttl time.Duration, logger *slog.Logger) *CachedStore {
	return &CachedStore{inner: inner, client: client, ttl: ttl, logger: logger}
}

func (s *CachedStore) List(ctx context.Context) ([]Record, error) {
	raw, err := s.client.Get(ctx, cacheKey).Result()
	if err == nil {
		var cached []Record
		if err := json.Unmarshal([]byte(raw), &cached); err == nil {
			return cached, nil
		}
		// Unreadable payload: fall through and rebuild.
	} else if !errors.Is(err, redis.Nil) {
		s.logger.Warn("resolution cache read failed", slog.String("error", err.Error()))
	}

	records, err := s.inner.List(ctx)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(records); err == nil {
		if err := s.client.Set(ctx, cacheKey, payload, s.ttl).Err(); err != nil {
			s.logger.Warn("resolution cache write failed", slog.String("error", err.Error()))
		}
	}
	return records, nil
}

func (s *CachedStore) Append(ctx context.Context, rec Record) (Record, error) {
	stored, err := s.inner.Append(ctx, rec)
	if err != nil {
		return Record{}, err
	}
	if err := s.client.Del(ctx, cacheKey).Err(); err != nil {
		s.logger.Warn("resolution cache invalidation failed", slog.String("error", err.Error()))
	}
	return stored, nil
}
