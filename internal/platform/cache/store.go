package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Store is a read-through JSON cache over Redis. Concurrent misses for the
// same key are collapsed into a single build.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
}

// NewStore returns a Store. A nil client disables caching and every read
// falls through to the builder.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// GetJSON loads key into dest, invoking build on a cache miss and storing
// the result best effort. Cache failures degrade to a direct build.
func (s *Store) GetJSON(ctx context.Context, key string, dest any, build func(context.Context) (any, error)) error {
	if s == nil || s.client == nil {
		return s.buildInto(ctx, dest, build)
	}

	raw, err := s.client.Get(ctx, key).Bytes()
	if err == nil {
		if jsonErr := json.Unmarshal(raw, dest); jsonErr == nil {
			return nil
		}
		// Corrupt entry, drop it and rebuild.
		_ = s.client.Del(ctx, key).Err()
	}

	resultChan := s.group.DoChan(key, func() (any, error) {
		value, buildErr := build(ctx)
		if buildErr != nil {
			return nil, buildErr
		}
		if encoded, encErr := json.Marshal(value); encErr == nil {
			_ = s.client.Set(ctx, key, encoded, s.ttl).Err()
		}
		return value, nil
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-resultChan:
		if res.Err != nil {
			return res.Err
		}
		encoded, err := json.Marshal(res.Val)
		if err != nil {
			return err
		}
		return json.Unmarshal(encoded, dest)
	}
}

// Invalidate removes keys; failures are ignored since the entries expire.
func (s *Store) Invalidate(ctx context.Context, keys ...string) {
	if s == nil || s.client == nil || len(keys) == 0 {
		return
	}
	_ = s.client.Del(ctx, keys...).Err()
}

func (s *Store) buildInto(ctx context.Context, dest any, build func(context.Context) (any, error)) error {
	value, err := build(ctx)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(encoded, dest)
}
