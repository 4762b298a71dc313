// Package ratelimiter throttles repeated actions per key.
package ratelimiter

import (
	"sync"
	"time"
)

// Limiter allows one action per key per interval and is safe for
// concurrent use. The zero interval allows everything.
type Limiter struct {
	mu       sync.Mutex
	interval time.Duration
	last     map[string]time.Time
	now      func() time.Time
}

// New creates a new rate limiter with the specified interval.
func New(interval time.Duration) *Limiter {
	return &Limiter{
		interval: interval,
		last:     make(map[string]time.Time),
		now:      time.Now,
	}
}

// Allow reports whether an action for key may run now. An allowed call
// starts a new interval for that key; a refused call also returns the
// remaining wait.
func (l *Limiter) Allow(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	last, seen := l.last[key]
	if !seen || now.Sub(last) >= l.interval {
		l.last[key] = now
		return true, 0
	}
	return false, l.interval - now.Sub(last)
}

// Reset forgets key so its next action is allowed immediately.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	delete(l.last, key)
	l.mu.Unlock()
}

// Interval returns the configured rate limit interval.
func (l *Limiter) Interval() time.Duration {
	return l.interval
}
