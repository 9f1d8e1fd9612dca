// Package ratelimit implements a per-key cooldown suitable for throttling chat
// turns by session id. State is process-local, which is acceptable for a
// single-instance deployment; a multi-instance deployment needs to move this
// into shared storage.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

type Limiter struct {
	mu       sync.Mutex
	last     map[string]time.Time
	cooldown time.Duration
	now      func() time.Time
}

func NewLimiter(cooldown time.Duration) *Limiter {
	return &Limiter{
		last:     make(map[string]time.Time),
		cooldown: cooldown,
		now:      time.Now,
	}
}

// Allow reports whether a turn for the given key may proceed. When it may, the
// key's timestamp is consumed immediately so a concurrent caller gets the
// cooldown. When it may not, retryAfter says how long to wait.
func (l *Limiter) Allow(key string) (retryAfter time.Duration, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if last, exists := l.last[key]; exists {
		elapsed := now.Sub(last)
		if elapsed < l.cooldown {
			return l.cooldown - elapsed, false
		}
	}
	l.last[key] = now
	return 0, true
}

// Forget drops a key, e.g. when its session is deleted.
func (l *Limiter) Forget(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.last, key)
}

// StartSweeping evicts keys that have been idle for several cooldowns so the
// map does not grow with every session ever seen.
func (l *Limiter) StartSweeping(ctx context.Context) {
	interval := 10 * l.cooldown
	if minimum := time.Minute; interval < minimum {
		interval = minimum
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.sweep(interval)
		}
	}
}

func (l *Limiter) sweep(idle time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := l.now().Add(-idle)
	for key, last := range l.last {
		if last.Before(cutoff) {
			delete(l.last, key)
		}
	}
}
