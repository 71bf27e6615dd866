package auth

import (
	"sync"
	"time"
)

const (
	DefaultMaxAttempts   = 5
	DefaultAttemptWindow = time.Minute
)

// AttemptLimiter tracks failed login attempts per email over a trailing
// window. It is the only shared mutable in-process state in the system, so
// every operation takes the lock: concurrent logins for the same email must
// never under- or over-count.
type AttemptLimiter struct {
	mu       sync.Mutex
	max      int
	window   time.Duration
	failures map[string][]time.Time

	now func() time.Time
}

func NewAttemptLimiter(max int, window time.Duration) *AttemptLimiter {
	return &AttemptLimiter{
		max:      max,
		window:   window,
		failures: make(map[string][]time.Time),
		now:      time.Now,
	}
}

// TooManyAttempts reports whether the email has exhausted its attempts
// within the trailing window.
func (l *AttemptLimiter) TooManyAttempts(email string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.prune(email)) >= l.max
}

// RecordFailure counts one failed attempt for the email.
func (l *AttemptLimiter) RecordFailure(email string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.failures[email] = append(l.prune(email), l.now())
}

// Clear resets the counter after a successful login.
func (l *AttemptLimiter) Clear(email string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.failures, email)
}

// prune drops attempts that fell out of the window. Caller must hold the lock.
func (l *AttemptLimiter) prune(email string) []time.Time {
	cutoff := l.now().Add(-l.window)

	kept := l.failures[email][:0]
	for _, t := range l.failures[email] {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}

	if len(kept) == 0 {
		delete(l.failures, email)
		return nil
	}
	l.failures[email] = kept
	return kept
}
