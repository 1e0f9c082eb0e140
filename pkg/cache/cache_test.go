package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	if _, hit, _ := c.Get(ctx, "route:a"); hit {
		t.Error("empty cache reported a hit")
	}

	if err := c.Set(ctx, "route:a", []byte(`{"source":1}`), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "route:a")
	if err != nil || !hit {
		t.Fatalf("Get = %v, %v", hit, err)
	}
	if string(data) != `{"source":1}` {
		t.Errorf("Get data = %s", data)
	}

	if err := c.Delete(ctx, "route:a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "route:a"); hit {
		t.Error("hit after Delete")
	}
	if err := c.Delete(ctx, "route:a"); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(2 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry returned")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, _ := NewFileCache(dir)
	fc := c.(*FileCache)

	path := fc.path("k")
	_ = os.MkdirAll(filepath.Dir(path), 0755)
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry = %v, %v, want miss", hit, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry not removed")
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	c, _ := NewFileCache(dir)
	for _, k := range []string{"a", "b", "c"} {
		_ = c.Set(ctx, k, []byte(k), 0)
	}

	n, err := c.(Clearer).Clear(ctx)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear removed %d, want 3", n)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("cache dir not empty: %d entries", len(entries))
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// SHA-256 produces 64 hex chars
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}

	m1, _ := HashJSON([][]int{{0, 1}, {1, 0}})
	m2, _ := HashJSON([][]int{{0, 2}, {2, 0}})
	if m1 == m2 {
		t.Error("different matrices share a fingerprint")
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	base := k.RouteKey("abc", "centralized", 1)
	if !strings.HasPrefix(base, "route:") {
		t.Errorf("RouteKey unexpected: %s", base)
	}
	if base != k.RouteKey("abc", "centralized", 1) {
		t.Error("RouteKey should be deterministic")
	}

	for _, other := range []string{
		k.RouteKey("abd", "centralized", 1),
		k.RouteKey("abc", "decentralized", 1),
		k.RouteKey("abc", "centralized", 2),
	} {
		if other == base {
			t.Errorf("key collision: %s", other)
		}
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(NewDefaultKeyer(), "topology:lab:")
	key := scoped.RouteKey("abc", "centralized", 0)
	if !strings.HasPrefix(key, "topology:lab:route:") {
		t.Errorf("ScopedKeyer RouteKey should be prefixed: %s", key)
	}

	// Should use DefaultKeyer when inner is nil
	nilInner := NewScopedKeyer(nil, "p:")
	if got, want := nilInner.RouteKey("abc", "centralized", 0), "p:"+NewDefaultKeyer().RouteKey("abc", "centralized", 0); got != want {
		t.Errorf("nil inner key = %s, want %s", got, want)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	c, err := Open(ctx, Options{Backend: BackendNone})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.(*NullCache); !ok {
		t.Errorf("Open(none) = %T", c)
	}

	c, err = Open(ctx, Options{Dir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.(*FileCache); !ok {
		t.Errorf("Open(default) = %T", c)
	}

	if _, err := Open(ctx, Options{Backend: "memcached"}); err == nil {
		t.Error("unknown backend accepted")
	}
	if _, err := Open(ctx, Options{Backend: BackendFile}); err == nil {
		t.Error("file backend without dir accepted")
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}

	err := Retryable(ErrUnavailable)
	if err == nil {
		t.Fatal("Retryable should return wrapped error")
	}
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Error("wrapped error should unwrap to ErrUnavailable")
	}
	if err.Error() != ErrUnavailable.Error() {
		t.Errorf("Error message should be preserved: %s", err.Error())
	}

	if IsRetryable(errors.New("boom")) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()
	retryDelay = time.Millisecond
	t.Cleanup(func() { retryDelay = 200 * time.Millisecond })

	calls := 0
	err := RetryWithBackoff(ctx, func() error {
		calls++
		return nil
	})
	if err != nil || calls != 1 {
		t.Errorf("success: err=%v calls=%d", err, calls)
	}

	// Non-retryable error stops immediately
	fatal := errors.New("bad request")
	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		return fatal
	})
	if err != fatal || calls != 1 {
		t.Errorf("non-retryable: err=%v calls=%d", err, calls)
	}

	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		if calls < 2 {
			return Retryable(ErrUnavailable)
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("retry: err=%v calls=%d", err, calls)
	}

	calls = 0
	err = RetryWithBackoff(ctx, func() error {
		calls++
		return Retryable(ErrUnavailable)
	})
	if !errors.Is(err, ErrUnavailable) || calls != 3 {
		t.Errorf("exhausted: err=%v calls=%d", err, calls)
	}
}

func TestRetryWithBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RetryWithBackoff(ctx, func() error {
		return Retryable(ErrUnavailable)
	})
	if err != context.Canceled {
		t.Errorf("Should return context error: %v", err)
	}
}
