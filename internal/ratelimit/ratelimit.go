// Package ratelimit implements sliding-window admission control keyed by an
// anonymized client identifier. Two window stores exist: an in-process map
// (per-instance, the default) and a Redis sorted set (shared across
// instances). Rate limiting is abuse mitigation, not a correctness
// guarantee, so the shared store fails open when it degrades.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter decides whether a request from the given client key is admitted
// into the current window.
type Limiter interface {
	Admit(ctx context.Context, key string) bool
}

// SlidingWindow is an in-memory fixed-size sliding window. Bursts are
// bounded strictly by maxRequests inside any trailing window-wide interval;
// this is not a token bucket.
type SlidingWindow struct {
	maxRequests int
	window      time.Duration

	mu      sync.Mutex
	entries map[string][]time.Time

	nowFn func() time.Time
}

// NewSlidingWindow creates an isolated limiter instance.
func NewSlidingWindow(maxRequests int, window time.Duration) *SlidingWindow {
	return &SlidingWindow{
		maxRequests: maxRequests,
		window:      window,
		entries:     make(map[string][]time.Time),
		nowFn:       time.Now,
	}
}

// Admit reports whether the request is inside the limit and, if so, records
// it. Rejected attempts are not recorded. The prune/count/append sequence
// runs under one lock so concurrent requests cannot both take the last slot.
func (s *SlidingWindow) Admit(_ context.Context, key string) bool {
	now := s.nowFn()
	windowStart := now.Add(-s.window)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(windowStart)

	if len(s.entries[key]) >= s.maxRequests {
		return false
	}
	s.entries[key] = append(s.entries[key], now)
	return true
}

// pruneLocked drops every timestamp at or before windowStart and
// garbage-collects keys whose window emptied. A timestamp exactly one
// window old is expired; only strictly newer ones count.
func (s *SlidingWindow) pruneLocked(windowStart time.Time) {
	for key, stamps := range s.entries {
		kept := stamps[:0]
		for _, ts := range stamps {
			if ts.After(windowStart) {
				kept = append(kept, ts)
			}
		}
		if len(kept) == 0 {
			delete(s.entries, key)
			continue
		}
		s.entries[key] = kept
	}
}

// TrackedKeys reports how many client keys currently hold a non-empty
// window. Used by tests and the health endpoint.
func (s *SlidingWindow) TrackedKeys() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
