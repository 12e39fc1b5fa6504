package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// fakeRedis implements the subset of redis.UniversalClient RedisStore uses.
// Any other method panics through the nil embedded interface.
type fakeRedis struct {
	redis.UniversalClient

	mu     sync.Mutex
	data   map[string]string
	ttls   map[string]time.Duration
	getErr error
	setErr error
	dels   []string
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, k := range keys {
		f.dels = append(f.dels, k)
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			delete(f.ttls, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func newFakeRedisStore(now time.Time) (*RedisStore, *fakeRedis) {
	client := newFakeRedis()
	r := NewRedisStore(client)
	r.now = func() time.Time { return now }
	return r, client
}

func TestRedisStore_GetUnknownIsNil(t *testing.T) {
	r, _ := newFakeRedisStore(time.Now())

	got, err := r.Get(context.Background(), "missing")
	if err != nil || got != nil {
		t.Fatalf("expected (nil, nil), got (%+v, %v)", got, err)
	}
}

func TestRedisStore_SetStoresWithRemainingTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	r, client := newFakeRedisStore(now)

	if err := r.Set(ctx, newSession("abc", now.Add(30*time.Minute))); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if ttl := client.ttls[redisKey("abc")]; ttl != 30*time.Minute {
		t.Fatalf("ttl=%v, want 30m", ttl)
	}

	got, err := r.Get(ctx, "abc")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || got.ID != "abc" || got.User.Username != "sue" || got.User.PasswordHash != "" {
		t.Fatalf("unexpected session: %+v", got)
	}
}

func TestRedisStore_SetExpiredDeletesKey(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	r, client := newFakeRedisStore(now)

	if err := r.Set(ctx, newSession("abc", now.Add(time.Minute))); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := r.Set(ctx, newSession("abc", now.Add(-time.Second))); err != nil {
		t.Fatalf("Set expired: %v", err)
	}
	if _, ok := client.data[redisKey("abc")]; ok {
		t.Fatalf("expired session must not stay in redis")
	}
	if len(client.dels) != 1 || client.dels[0] != redisKey("abc") {
		t.Fatalf("expected a single delete of %q, got %v", redisKey("abc"), client.dels)
	}
}

func TestRedisStore_GetHidesExpiredPayload(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	r, _ := newFakeRedisStore(now)

	if err := r.Set(ctx, newSession("abc", now.Add(time.Minute))); err != nil {
		t.Fatalf("Set: %v", err)
	}
	// key outlives ExpiresAt when redis has not evicted it yet
	r.now = func() time.Time { return now.Add(2 * time.Minute) }

	if got, err := r.Get(ctx, "abc"); err != nil || got != nil {
		t.Fatalf("expected (nil, nil) for expired session, got (%+v, %v)", got, err)
	}
}

func TestRedisStore_Errors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("connection refused")

	t.Run("get error", func(t *testing.T) {
		r, client := newFakeRedisStore(time.Now())
		client.getErr = boom
		if _, err := r.Get(ctx, "abc"); !errors.Is(err, boom) {
			t.Fatalf("expected wrapped get error, got %v", err)
		}
	})

	t.Run("set error", func(t *testing.T) {
		r, client := newFakeRedisStore(time.Now())
		client.setErr = boom
		if err := r.Set(ctx, newSession("abc", time.Now().Add(time.Minute))); !errors.Is(err, boom) {
			t.Fatalf("expected wrapped set error, got %v", err)
		}
	})

	t.Run("corrupt payload", func(t *testing.T) {
		r, client := newFakeRedisStore(time.Now())
		client.data[redisKey("abc")] = "{not json"
		if got, err := r.Get(ctx, "abc"); err == nil || got != nil {
			t.Fatalf("expected decode error, got (%+v, %v)", got, err)
		}
	})
}
