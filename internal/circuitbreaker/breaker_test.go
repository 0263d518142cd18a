package circuitbreaker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestBreaker(threshold int) (*Breaker, *fakeClock, *[]string) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	var transitions []string

	b := New("test", Config{
		FailureThreshold: threshold,
		OpenTimeout:      10 * time.Second,
		OnStateChange: func(name string, from, to State) {
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})
	b.now = clock.now
	return b, clock, &transitions
}

func TestTripsAfterConsecutiveFailures(t *testing.T) {
	b, _, transitions := newTestBreaker(3)

	for i := 0; i < 2; i++ {
		require.NoError(t, b.Allow())
		b.Done(false)
	}
	assert.Equal(t, StateClosed, b.State())

	// A success resets the streak
	require.NoError(t, b.Allow())
	b.Done(true)

	for i := 0; i < 3; i++ {
		require.NoError(t, b.Allow())
		b.Done(false)
	}
	assert.Equal(t, StateOpen, b.State())
	assert.ErrorIs(t, b.Allow(), ErrOpen)
	assert.Equal(t, []string{"closed->open"}, *transitions)
}

func TestHalfOpenTrialCall(t *testing.T) {
	b, clock, transitions := newTestBreaker(1)

	require.NoError(t, b.Allow())
	b.Done(false)
	require.Equal(t, StateOpen, b.State())

	clock.t = clock.t.Add(5 * time.Second)
	assert.ErrorIs(t, b.Allow(), ErrOpen)

	clock.t = clock.t.Add(6 * time.Second)
	require.NoError(t, b.Allow())
	assert.Equal(t, StateHalfOpen, b.State())

	// Only one trial call at a time
	assert.ErrorIs(t, b.Allow(), ErrOpen)

	b.Done(true)
	assert.Equal(t, StateClosed, b.State())
	assert.NoError(t, b.Allow())
	assert.Equal(t, []string{"closed->open", "open->half-open", "half-open->closed"}, *transitions)
}

func TestFailedTrialCallReopens(t *testing.T) {
	b, clock, _ := newTestBreaker(1)

	require.NoError(t, b.Allow())
	b.Done(false)

	clock.t = clock.t.Add(11 * time.Second)
	require.NoError(t, b.Allow())
	b.Done(false)

	assert.Equal(t, StateOpen, b.State())
	assert.ErrorIs(t, b.Allow(), ErrOpen)
}

func TestDefaults(t *testing.T) {
	b := New("cache", Config{})
	assert.Equal(t, 5, b.threshold)
	assert.Equal(t, 30*time.Second, b.openTimeout)
	assert.Equal(t, "cache", b.Name())
	assert.Equal(t, "unknown", State(9).String())
}
