package visitor

import (
	"strconv"
	"sync"
	"testing"
	"time"
)

func TestRegistry_LastWriterWins(t *testing.T) {
	r := NewRegistry()

	r.Register("v1", 100)
	r.Register("v1", 200)

	key, ok := r.Lookup("v1")
	if !ok || key != 200 {
		t.Fatalf("expected instance 200, got %d (ok=%v)", key, ok)
	}
}

func TestRegistry_UnregisterSeversCorrelation(t *testing.T) {
	r := NewRegistry()

	r.Register("v1", 100)
	r.Unregister("v1")

	if _, ok := r.Lookup("v1"); ok {
		t.Fatal("expected lookup to miss after unregister")
	}
	if r.Exists("v1") {
		t.Fatal("expected exists to report false")
	}
	// Absent unregister is a no-op.
	r.Unregister("v1")
}

func TestRegistry_ConcurrentDistinctVisitors(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := "v" + strconv.Itoa(n)
			r.Register(id, int64(n))
			if key, ok := r.Lookup(id); !ok || key != int64(n) {
				t.Errorf("visitor %s: got %d (ok=%v)", id, key, ok)
			}
			r.Unregister(id)
		}(i)
	}
	wg.Wait()

	if r.Len() != 0 {
		t.Fatalf("expected empty registry, got %d entries", r.Len())
	}
}

func TestRegistry_EvictExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	r := NewRegistry(WithTTL(time.Minute), WithClock(clock))

	r.Register("old", 1)
	now = now.Add(2 * time.Minute)
	r.Register("fresh", 2)

	if evicted := r.EvictExpired(); evicted != 1 {
		t.Fatalf("expected 1 eviction, got %d", evicted)
	}
	if r.Exists("old") {
		t.Error("expected old correlation to be evicted")
	}
	if !r.Exists("fresh") {
		t.Error("expected fresh correlation to survive")
	}
}

func TestRegistry_NoTTLNeverEvicts(t *testing.T) {
	r := NewRegistry()
	r.Register("v1", 1)
	if evicted := r.EvictExpired(); evicted != 0 {
		t.Fatalf("expected no evictions without TTL, got %d", evicted)
	}
	if !r.Exists("v1") {
		t.Fatal("expected entry to survive")
	}
}
