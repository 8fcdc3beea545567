package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestThrottle(cooldown time.Duration, maxAttempts int) (*ResendThrottle, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	th := NewResendThrottle(NewMemoryAttemptStore(), cooldown, maxAttempts)
	th.now = clock.Now
	return th, clock
}

func TestThrottleAllowsFirstAttempt(t *testing.T) {
	th, _ := newTestThrottle(time.Minute, 3)
	assert.NoError(t, th.Allow("ann@example.com"))
}

func TestThrottleCooldown(t *testing.T) {
	th, clock := newTestThrottle(time.Minute, 3)

	require.NoError(t, th.Allow("ann@example.com"))

	err := th.Allow("ann@example.com")
	var limited *RateLimitError
	require.ErrorAs(t, err, &limited)
	assert.False(t, limited.MaxAttemptsReached)
	assert.Equal(t, 60, limited.RetryAfter)

	// partway through, the remaining wait is rounded up
	clock.Advance(45*time.Second + 500*time.Millisecond)
	err = th.Allow("ann@example.com")
	require.ErrorAs(t, err, &limited)
	assert.Equal(t, 15, limited.RetryAfter)

	clock.Advance(time.Minute)
	assert.NoError(t, th.Allow("ann@example.com"))
}

func TestThrottleAttemptCap(t *testing.T) {
	th, clock := newTestThrottle(time.Minute, 3)

	for i := 0; i < 3; i++ {
		require.NoError(t, th.Allow("ann@example.com"), "attempt %d", i+1)
		clock.Advance(2 * time.Minute)
	}

	err := th.Allow("ann@example.com")
	var limited *RateLimitError
	require.ErrorAs(t, err, &limited)
	assert.True(t, limited.MaxAttemptsReached)
	assert.Equal(t, "maximum resend attempts reached", limited.Error())

	// waiting longer does not help once the budget is spent
	clock.Advance(time.Hour)
	err = th.Allow("ann@example.com")
	require.ErrorAs(t, err, &limited)
	assert.True(t, limited.MaxAttemptsReached)
}

func TestThrottleCooldownCheckedBeforeCap(t *testing.T) {
	th, clock := newTestThrottle(time.Minute, 1)

	require.NoError(t, th.Allow("ann@example.com"))
	clock.Advance(10 * time.Second)

	// inside the cooldown the caller learns the wait time, not the cap
	err := th.Allow("ann@example.com")
	var limited *RateLimitError
	require.ErrorAs(t, err, &limited)
	assert.False(t, limited.MaxAttemptsReached)
	assert.Equal(t, 50, limited.RetryAfter)
}

func TestThrottleResetRestoresBudget(t *testing.T) {
	th, clock := newTestThrottle(time.Minute, 1)

	require.NoError(t, th.Allow("ann@example.com"))
	clock.Advance(2 * time.Minute)

	err := th.Allow("ann@example.com")
	require.Error(t, err)

	th.Reset("ann@example.com")
	assert.NoError(t, th.Allow("ann@example.com"))
}

func TestThrottleKeysAreIndependent(t *testing.T) {
	th, _ := newTestThrottle(time.Minute, 3)

	require.NoError(t, th.Allow("ann@example.com"))
	assert.NoError(t, th.Allow("bob@example.com"))

	err := th.Allow("ann@example.com")
	assert.True(t, errors.As(err, new(*RateLimitError)))
}
