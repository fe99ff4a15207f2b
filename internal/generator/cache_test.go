package generator

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute), mr, client
}

func waitForVersion(t *testing.T, cache *Cache, want int64) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		ver, err := cache.Version(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ver == want {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("version never reached %d, still at %d", want, ver)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestCacheVersionInitialisesToOne(t *testing.T) {
	cache, _, _ := newTestCache(t)
	ctx := context.Background()

	ver, err := cache.Version(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ver != 1 {
		t.Fatalf("expected initial version 1, got %d", ver)
	}

	// The initial version is persisted, not re-derived per call.
	again, err := cache.Version(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again != 1 {
		t.Fatalf("expected stable version 1, got %d", again)
	}
}

func TestCacheBuildKeyCarriesVersion(t *testing.T) {
	cache, _, _ := newTestCache(t)
	ctx := context.Background()

	key, err := cache.BuildKey(ctx, "metrics", "deposits")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "metrics:deposits:1" {
		t.Fatalf("unexpected key: %s", key)
	}

	if err := cache.Bump(ctx); err != nil {
		t.Fatalf("bump failed: %v", err)
	}

	key, err = cache.BuildKey(ctx, "metrics", "deposits")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "metrics:deposits:2" {
		t.Fatalf("expected bumped key, got %s", key)
	}
}

func TestCacheNilIsUsable(t *testing.T) {
	var cache *Cache
	ctx := context.Background()

	if cache.Enabled() {
		t.Fatal("nil cache reported enabled")
	}
	if ver, err := cache.Version(ctx); err != nil || ver != 0 {
		t.Fatalf("expected zero version, got %d err %v", ver, err)
	}
	key, err := cache.BuildKey(ctx, "metrics", "gains")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if key != "metrics:gains" {
		t.Fatalf("expected unversioned key, got %s", key)
	}

	calls := 0
	v, err := cache.FetchValue(ctx, key, func(context.Context) (float64, error) {
		calls++
		return 3.5, nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 3.5 || calls != 1 {
		t.Fatalf("expected loader passthrough, got v=%v calls=%d", v, calls)
	}
	if err := cache.Bump(ctx); err != nil {
		t.Fatalf("bump on nil cache must be a no-op: %v", err)
	}
	if err := cache.ListenForInvalidation(ctx, ""); err != nil {
		t.Fatalf("listen on nil cache must be a no-op: %v", err)
	}
}

func TestCacheFetchValuePopulatesAndExpires(t *testing.T) {
	cache, mr, _ := newTestCache(t)
	ctx := context.Background()

	calls := 0
	loader := func(context.Context) (float64, error) {
		calls++
		return 10.25, nil
	}

	v, err := cache.FetchValue(ctx, "metrics:test:1", loader)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 10.25 || calls != 1 {
		t.Fatalf("expected miss then load, got v=%v calls=%d", v, calls)
	}

	if _, err := cache.FetchValue(ctx, "metrics:test:1", loader); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected cached hit, loaded %d times", calls)
	}

	mr.FastForward(2 * time.Minute)
	if _, err := cache.FetchValue(ctx, "metrics:test:1", loader); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected reload after expiry, loaded %d times", calls)
	}
}

func TestCacheFetchValueRequiresLoader(t *testing.T) {
	cache, _, _ := newTestCache(t)
	if _, err := cache.FetchValue(context.Background(), "k", nil); err == nil {
		t.Fatal("expected error for nil loader")
	}
}

func TestCacheListenAppliesPublishedVersion(t *testing.T) {
	cache, mr, _ := newTestCache(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := cache.Version(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := cache.ListenForInvalidation(ctx, ""); err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	// Publish returns the receiver count, so looping until it is
	// non-zero both waits for the subscription and delivers the event.
	deadline := time.Now().Add(2 * time.Second)
	for mr.Publish("metrics.bump", "7") == 0 {
		if time.Now().After(deadline) {
			t.Fatal("subscriber never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}
	waitForVersion(t, cache, 7)

	// A garbage payload still invalidates, by bumping locally.
	if mr.Publish("metrics.bump", "not-a-number") == 0 {
		t.Fatal("subscriber dropped")
	}
	waitForVersion(t, cache, 8)
}
