package server

import (
	"sync"
	"time"
)

// loginRateLimiter tracks failed login attempts per key (username plus
// remote address) and blocks further attempts after too many failures
// inside the window.
type loginRateLimiter struct {
	mu          sync.Mutex
	entries     map[string]*loginAttempts
	maxFailures int
	window      time.Duration
	blockedFor  time.Duration
	lastCleanup time.Time
}

type loginAttempts struct {
	failures     []time.Time
	blockedUntil time.Time
}

func newLoginRateLimiter(maxFailures int, window, blockedFor time.Duration) *loginRateLimiter {
	return &loginRateLimiter{
		entries:     make(map[string]*loginAttempts),
		maxFailures: maxFailures,
		window:      window,
		blockedFor:  blockedFor,
	}
}

// Allow reports whether a login attempt for key may proceed.
func (l *loginRateLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	l.maybeCleanupLocked(now)

	entry, ok := l.entries[key]
	if !ok {
		return true
	}
	return now.After(entry.blockedUntil)
}

// RegisterFailure records a failed attempt and starts a block once the
// failure count inside the window reaches the limit.
func (l *loginRateLimiter) RegisterFailure(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	entry, ok := l.entries[key]
	if !ok {
		entry = &loginAttempts{}
		l.entries[key] = entry
	}

	cutoff := now.Add(-l.window)
	recent := entry.failures[:0]
	for _, t := range entry.failures {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}
	entry.failures = append(recent, now)

	if len(entry.failures) >= l.maxFailures {
		entry.blockedUntil = now.Add(l.blockedFor)
		entry.failures = entry.failures[:0]
	}
}

// Reset clears failure state for key after a successful login.
func (l *loginRateLimiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, key)
}

func (l *loginRateLimiter) maybeCleanupLocked(now time.Time) {
	if now.Sub(l.lastCleanup) < l.window {
		return
	}
	l.lastCleanup = now

	cutoff := now.Add(-l.window)
	for key, entry := range l.entries {
		if entry.blockedUntil.Before(now) && (len(entry.failures) == 0 || entry.failures[len(entry.failures)-1].Before(cutoff)) {
			delete(l.entries, key)
		}
	}
}
