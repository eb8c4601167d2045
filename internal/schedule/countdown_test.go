package schedule

import (
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newCountdown(t *testing.T) *Countdown {
	t.Helper()
	c, err := New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Shutdown() })
	return c
}

func TestCountdown_FiresOnce(t *testing.T) {
	c := newCountdown(t)
	var fired atomic.Int32

	require.NoError(t, c.Start(PurposeAutoAdvance, 30*time.Millisecond, func() {
		fired.Add(1)
	}))

	require.Eventually(t, func() bool { return fired.Load() == 1 }, 3*time.Second, 10*time.Millisecond)

	// No second firing, and the slot is released.
	time.Sleep(100 * time.Millisecond)
	require.EqualValues(t, 1, fired.Load())
	require.False(t, c.Active(PurposeAutoAdvance))
}

func TestCountdown_Cancel(t *testing.T) {
	c := newCountdown(t)
	var fired atomic.Int32

	require.NoError(t, c.Start(PurposeAutoPresent, 50*time.Millisecond, func() {
		fired.Add(1)
	}))
	c.Cancel(PurposeAutoPresent)

	time.Sleep(200 * time.Millisecond)
	require.EqualValues(t, 0, fired.Load())
	require.False(t, c.Active(PurposeAutoPresent))
}

// Starting a second countdown before the first expires results in
// exactly one eventual call, from the second countdown.
func TestCountdown_Supersession(t *testing.T) {
	c := newCountdown(t)
	var first, second atomic.Int32

	require.NoError(t, c.Start(PurposeAutoAdvance, 60*time.Millisecond, func() {
		first.Add(1)
	}))
	require.NoError(t, c.Start(PurposeAutoAdvance, 30*time.Millisecond, func() {
		second.Add(1)
	}))

	require.Eventually(t, func() bool { return second.Load() == 1 }, 3*time.Second, 10*time.Millisecond)

	// Give the superseded countdown's original deadline time to pass.
	time.Sleep(150 * time.Millisecond)
	require.EqualValues(t, 0, first.Load(), "superseded countdown must never fire")
	require.EqualValues(t, 1, second.Load())
}

func TestCountdown_PurposesAreIndependent(t *testing.T) {
	c := newCountdown(t)
	var present, advance atomic.Int32

	require.NoError(t, c.Start(PurposeAutoPresent, 30*time.Millisecond, func() {
		present.Add(1)
	}))
	require.NoError(t, c.Start(PurposeAutoAdvance, 30*time.Millisecond, func() {
		advance.Add(1)
	}))

	require.Eventually(t, func() bool {
		return present.Load() == 1 && advance.Load() == 1
	}, 3*time.Second, 10*time.Millisecond)
}

func TestCountdown_Remaining(t *testing.T) {
	c := newCountdown(t)

	require.NoError(t, c.Start(PurposeAutoPresent, time.Minute, func() {}))

	left, ok := c.Remaining(PurposeAutoPresent)
	require.True(t, ok)
	require.Greater(t, left, 50*time.Second)
	require.LessOrEqual(t, left, time.Minute)

	_, ok = c.Remaining(PurposeAutoAdvance)
	require.False(t, ok)
}
