package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	defer rl.Stop()

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("10.0.0.1"), "request %d within the limit", i+1)
	}
	assert.False(t, rl.Allow("10.0.0.1"), "fourth request exceeds the limit")

	// Other keys have their own bucket.
	assert.True(t, rl.Allow("10.0.0.2"))
}

func TestRateLimiterWindowExpiry(t *testing.T) {
	rl := NewRateLimiter(1, 20*time.Millisecond)
	defer rl.Stop()

	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))

	time.Sleep(30 * time.Millisecond)
	assert.True(t, rl.Allow("10.0.0.1"), "window expired")
}

func TestRateLimiterStop(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)

	rl.Stop()
	rl.Stop()

	// Allow still works after Stop; only the background sweep ends.
	assert.True(t, rl.Allow("10.0.0.1"))
}
