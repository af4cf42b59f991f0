// Package visitor tracks which process-engine instance is currently serving
// each visitor. The registry is the correlation store between ephemeral
// visitor sessions and long-running engine instances; it is explicitly owned
// and injected, never a hidden singleton.
package visitor

import (
	"context"
	"sync"
	"time"

	"certflow/metrics"
)

type entry struct {
	instanceKey  int64
	registeredAt time.Time
}

// Registry is a concurrent visitorId -> instanceKey mapping. Operations on
// distinct visitors never contend beyond the map lock; operations on the same
// visitor are individually atomic but carry no cross-call ordering guarantee.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// Option configures a Registry.
type Option func(*Registry)

// WithTTL enables time-based eviction: correlations older than ttl are
// removed by RunEviction sweeps. Zero keeps entries until unregistered.
func WithTTL(ttl time.Duration) Option {
	return func(r *Registry) { r.ttl = ttl }
}

// WithClock overrides the time source for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		entries: make(map[string]entry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register maps the visitor to an engine instance. Unconditional upsert:
// registering over an existing correlation overwrites it (last writer wins).
func (r *Registry) Register(visitorID string, instanceKey int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[visitorID] = entry{instanceKey: instanceKey, registeredAt: r.now()}
}

// Lookup returns the live instance key for the visitor, if any.
func (r *Registry) Lookup(visitorID string) (int64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[visitorID]
	return e.instanceKey, ok
}

// Unregister severs the correlation. No-op when absent. It does not cancel
// in-flight engine activity; it only removes what the next Lookup would find.
func (r *Registry) Unregister(visitorID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, visitorID)
}

// Exists reports whether a correlation is live for the visitor.
func (r *Registry) Exists(visitorID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[visitorID]
	return ok
}

// Len returns the number of live correlations.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// EvictExpired removes correlations older than the configured TTL and returns
// how many were removed. No-op when no TTL is set.
func (r *Registry) EvictExpired() int {
	if r.ttl <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.ttl)
	r.mu.Lock()
	defer r.mu.Unlock()
	evicted := 0
	for id, e := range r.entries {
		if e.registeredAt.Before(cutoff) {
			delete(r.entries, id)
			evicted++
		}
	}
	if evicted > 0 {
		metrics.RegistryEvictions.Add(float64(evicted))
	}
	return evicted
}

// RunEviction sweeps expired correlations at the given interval until ctx is
// canceled. Callers with a TTL configured run it in its own goroutine for the
// process lifetime.
func (r *Registry) RunEviction(ctx context.Context, interval time.Duration) {
	if r.ttl <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.EvictExpired()
		}
	}
}
