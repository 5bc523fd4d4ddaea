package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAllowSlidingWindow(t *testing.T) {
	l := NewLimiter(2, time.Minute)
	defer l.Stop()

	now := time.Now()
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"))
	assert.True(t, l.Allow(""))

	now = now.Add(61 * time.Second)
	assert.True(t, l.Allow("10.0.0.1"))
}

func TestEvictDropsStaleBuckets(t *testing.T) {
	l := NewLimiter(1, time.Minute)
	defer l.Stop()

	l.Allow("a")
	l.evict(time.Now().Add(time.Second))
	assert.True(t, l.Allow("a"))

	l.Stop()
}
