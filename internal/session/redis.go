package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"session_auth/internal/models"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "session:"

// RedisStore keeps sessions as JSON values whose Redis TTL matches ExpiresAt.
type RedisStore struct {
	client redis.UniversalClient
	now    func() time.Time
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

func redisKey(id string) string { return redisKeyPrefix + id }

func (r *RedisStore) Get(ctx context.Context, id string) (*models.Session, error) {
	raw, err := r.client.Get(ctx, redisKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get session: %w", err)
	}
	var s models.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if s.Expired(r.now()) {
		return nil, nil
	}
	return &s, nil
}

func (r *RedisStore) Set(ctx context.Context, s models.Session) error {
	var ttl time.Duration
	if !s.ExpiresAt.IsZero() {
		ttl = s.ExpiresAt.Sub(r.now())
		if ttl <= 0 {
			return r.Destroy(ctx, s.ID)
		}
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.client.Set(ctx, redisKey(s.ID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

func (r *RedisStore) Destroy(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, redisKey(id)).Err(); err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}
