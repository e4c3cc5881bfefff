package middleware

import (
	"testing"
	"time"

	"github.com/akolanti/GoIndex/pkg/logger_i"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestIsValidBearerToken(t *testing.T) {
	log := logger_i.NewLogger("tests")

	assert.True(t, IsValidBearerToken("Bearer abc", "abc", false, log))
	assert.False(t, IsValidBearerToken("Bearer abd", "abc", false, log))
	assert.False(t, IsValidBearerToken("abc", "abc", false, log))
	assert.False(t, IsValidBearerToken("", "abc", false, log))
	assert.False(t, IsValidBearerToken("Bearer ", "", false, log), "an unset token never matches")
	assert.True(t, IsValidBearerToken("", "abc", true, log))
}

func TestIPRateLimiter_PerIPAndEviction(t *testing.T) {
	clock := time.Unix(1_700_000_000, 0)
	l := NewIPRateLimiter(rate.Limit(1), 1)
	l.now = func() time.Time { return clock }

	assert.True(t, l.Allow("10.0.0.1"))
	assert.False(t, l.Allow("10.0.0.1"))
	assert.True(t, l.Allow("10.0.0.2"), "buckets are per IP")
	assert.Equal(t, 2, l.tracked())

	clock = clock.Add(limiterIdleTTL + time.Minute)
	assert.True(t, l.Allow("10.0.0.3"))
	assert.Equal(t, 1, l.tracked(), "idle buckets are dropped")
}
