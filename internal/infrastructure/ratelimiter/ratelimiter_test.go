package ratelimiter

import (
	"errors"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAllowConsumesBurst(t *testing.T) {
	rl := New(Options{MaxRatePerSecond: 1, MaxBurst: 3})

	for i := 0; i < 3; i++ {
		if !rl.Allow("client") {
			t.Fatalf("request %d within burst should be allowed", i+1)
		}
	}
	if rl.Allow("client") {
		t.Error("request beyond burst should be denied")
	}
}

func TestAllowTracksSourcesIndependently(t *testing.T) {
	rl := New(Options{MaxRatePerSecond: 1, MaxBurst: 1})

	if !rl.Allow("a") {
		t.Error("first request from a should pass")
	}
	if rl.Allow("a") {
		t.Error("second request from a should be denied")
	}
	if !rl.Allow("b") {
		t.Error("b has its own bucket and should pass")
	}
}

func TestTokensRefillOverTime(t *testing.T) {
	rl := New(Options{MaxRatePerSecond: 1000, MaxBurst: 1})

	if !rl.Allow("client") {
		t.Fatal("first request should pass")
	}
	if rl.Allow("client") {
		t.Fatal("bucket should be empty")
	}

	// 1000/s refills one token within a few milliseconds.
	time.Sleep(5 * time.Millisecond)
	if !rl.Allow("client") {
		t.Error("bucket should have refilled")
	}
}

func TestRemainingNeverNegative(t *testing.T) {
	rl := New(Options{MaxRatePerSecond: 1, MaxBurst: 2})

	rl.Allow("client")
	rl.Allow("client")
	rl.Allow("client")

	if got := rl.Remaining("client"); got < 0 {
		t.Errorf("remaining should not go negative, got %d", got)
	}
}

func TestGetSourceKeyPrefersHeader(t *testing.T) {
	rl := New(Options{MaxRatePerSecond: 1, SourceHeaderKey: "X-Forwarded-For"})

	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	if key := rl.GetSourceKey(r); key != "10.0.0.1:1234" {
		t.Errorf("expected fallback to remote addr, got %q", key)
	}

	r.Header.Set("X-Forwarded-For", "203.0.113.7")
	if key := rl.GetSourceKey(r); key != "203.0.113.7" {
		t.Errorf("expected header value, got %q", key)
	}
}

// failingStore always errors, to exercise the fail-open path.
type failingStore struct{}

func (failingStore) Get(string) (bucketState, error) {
	return bucketState{}, errors.New("backend down")
}

func (failingStore) Set(string, bucketState, time.Duration) error {
	return errors.New("backend down")
}

func (failingStore) Close() error { return nil }

func TestFailsOpenOnCacheError(t *testing.T) {
	rl := New(Options{MaxRatePerSecond: 1, MaxBurst: 1, Cache: failingStore{}})

	// Every call sees a fresh full bucket; traffic passes rather than being
	// rejected because the limiter's own backend is unhealthy.
	for i := 0; i < 5; i++ {
		if !rl.Allow("client") {
			t.Fatalf("request %d should fail open", i+1)
		}
	}
}

func TestInMemoryExpiry(t *testing.T) {
	store := NewInMemory()
	defer store.Close()

	if err := store.Set("k", bucketState{tokens: 2}, 10*time.Millisecond); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get("k"); err != nil {
		t.Fatalf("entry should be live: %v", err)
	}

	time.Sleep(20 * time.Millisecond)
	if _, err := store.Get("k"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected cache miss after expiry, got %v", err)
	}
}
