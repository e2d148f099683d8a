package middleware

import (
	"sync"
	"time"
)

// RateLimiter is an in-memory sliding-window rate limiter keyed by an
// arbitrary string (here: the caller's identity subject).
type RateLimiter struct {
	mu      sync.Mutex
	events  map[string][]time.Time
	window  time.Duration
	maxReqs int
}

// NewRateLimiter creates a limiter allowing maxReqs events per window per key.
func NewRateLimiter(window time.Duration, maxReqs int) *RateLimiter {
	rl := &RateLimiter{
		events:  make(map[string][]time.Time),
		window:  window,
		maxReqs: maxReqs,
	}
	go rl.cleanup()
	return rl
}

// Allow records an event for the key and reports whether it is within the
// limit.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	recent := pruneBefore(rl.events[key], now.Add(-rl.window))
	if len(recent) >= rl.maxReqs {
		rl.events[key] = recent
		return false
	}

	rl.events[key] = append(recent, now)
	return true
}

// cleanup drops idle keys so the map does not grow without bound.
func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		cutoff := time.Now().Add(-2 * rl.window)
		for key, events := range rl.events {
			if recent := pruneBefore(events, cutoff); len(recent) == 0 {
				delete(rl.events, key)
			} else {
				rl.events[key] = recent
			}
		}
		rl.mu.Unlock()
	}
}

func pruneBefore(events []time.Time, cutoff time.Time) []time.Time {
	kept := events[:0]
	for _, t := range events {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}
