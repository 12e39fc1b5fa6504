package session

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Runs against a real Redis when REDIS_ADDR is set, e.g. REDIS_ADDR=127.0.0.1:6379.
func newTestRedisStore(t *testing.T) *RedisStore {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis not reachable at %s: %v", addr, err)
	}
	return NewRedisStore(client)
}

func TestRedisStore_SetGetDestroy(t *testing.T) {
	ctx := context.Background()
	r := newTestRedisStore(t)
	id := uuid.NewString()

	if err := r.Set(ctx, newSession(id, time.Now().Add(time.Minute))); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := r.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || got.User.Username != "sue" || got.User.PasswordHash != "" {
		t.Fatalf("unexpected session: %+v", got)
	}

	ttl, err := r.client.TTL(ctx, redisKey(id)).Result()
	if err != nil || ttl <= 0 || ttl > time.Minute {
		t.Fatalf("unexpected ttl %v (err %v)", ttl, err)
	}

	if err := r.Destroy(ctx, id); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if got, err := r.Get(ctx, id); err != nil || got != nil {
		t.Fatalf("expected (nil, nil) after destroy, got (%+v, %v)", got, err)
	}
}

func TestRedisStore_SetExpiredDeletes(t *testing.T) {
	ctx := context.Background()
	r := newTestRedisStore(t)
	id := uuid.NewString()

	_ = r.Set(ctx, newSession(id, time.Now().Add(time.Minute)))
	if err := r.Set(ctx, newSession(id, time.Now().Add(-time.Second))); err != nil {
		t.Fatalf("Set expired: %v", err)
	}
	if got, _ := r.Get(ctx, id); got != nil {
		t.Fatalf("expected expired session to be removed")
	}
}
