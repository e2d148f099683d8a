package middleware

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_AllowsUpToLimit(t *testing.T) {
	rl := NewRateLimiter(time.Minute, 3)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("subject:user_1"), "request %d should be allowed", i+1)
	}
	assert.False(t, rl.Allow("subject:user_1"), "request over the limit must be denied")
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	rl := NewRateLimiter(time.Minute, 1)

	assert.True(t, rl.Allow("subject:user_1"))
	assert.False(t, rl.Allow("subject:user_1"))
	assert.True(t, rl.Allow("subject:user_2"))
}

func TestRateLimiter_WindowExpires(t *testing.T) {
	rl := NewRateLimiter(50*time.Millisecond, 1)

	assert.True(t, rl.Allow("subject:user_1"))
	assert.False(t, rl.Allow("subject:user_1"))

	time.Sleep(60 * time.Millisecond)
	assert.True(t, rl.Allow("subject:user_1"), "event outside the window must not count")
}
