package webserver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterAllow(t *testing.T) {
	rl := NewRateLimiter(2, 100*time.Millisecond)

	assert.True(t, rl.Allow("client"))
	assert.True(t, rl.Allow("client"))
	assert.False(t, rl.Allow("client"), "third request inside the window is rejected")

	assert.True(t, rl.Allow("other"), "keys are limited independently")

	time.Sleep(120 * time.Millisecond)
	assert.True(t, rl.Allow("client"), "the window frees up over time")
}
