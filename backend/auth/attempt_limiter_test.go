package auth

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAttemptLimiter(t *testing.T) {
	limiter := NewAttemptLimiter(3, time.Minute)

	assert.False(t, limiter.TooManyAttempts("a@mail.com"))

	for i := 0; i < 3; i++ {
		limiter.RecordFailure("a@mail.com")
	}
	assert.True(t, limiter.TooManyAttempts("a@mail.com"))

	// Other accounts are unaffected.
	assert.False(t, limiter.TooManyAttempts("b@mail.com"))

	limiter.Clear("a@mail.com")
	assert.False(t, limiter.TooManyAttempts("a@mail.com"))
}

func TestAttemptLimiterWindowExpiry(t *testing.T) {
	now := time.Now()
	limiter := NewAttemptLimiter(2, time.Minute)
	limiter.now = func() time.Time { return now }

	limiter.RecordFailure("a@mail.com")
	limiter.RecordFailure("a@mail.com")
	assert.True(t, limiter.TooManyAttempts("a@mail.com"))

	// Old failures fall out of the trailing window.
	now = now.Add(61 * time.Second)
	assert.False(t, limiter.TooManyAttempts("a@mail.com"))

	// A fresh failure counts against an otherwise clean window.
	limiter.RecordFailure("a@mail.com")
	assert.False(t, limiter.TooManyAttempts("a@mail.com"))
	limiter.RecordFailure("a@mail.com")
	assert.True(t, limiter.TooManyAttempts("a@mail.com"))
}

func TestAttemptLimiterConcurrentAccess(t *testing.T) {
	limiter := NewAttemptLimiter(100, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				limiter.RecordFailure("a@mail.com")
			}
		}()
	}
	wg.Wait()

	assert.True(t, limiter.TooManyAttempts("a@mail.com"))
}
