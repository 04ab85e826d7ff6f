package timekeeper

import (
	"testing"
	"time"

	"gamertimer/internal/core/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClock(duration time.Duration) *Clock {
	return NewClock(model.Timer{ID: "timer-test", Name: "Test", Duration: duration, FlashOnComplete: true})
}

func TestClockCountsDownToCompletion(t *testing.T) {
	clock := newTestClock(3 * time.Second)
	assert.Equal(t, StateIdle, clock.State())

	require.True(t, clock.Start())
	assert.False(t, clock.Start(), "already running")
	assert.Equal(t, StateRunning, clock.State())

	assert.False(t, clock.Tick())
	assert.False(t, clock.Tick())
	assert.Equal(t, time.Second, clock.Remaining())

	assert.True(t, clock.Tick())
	assert.Equal(t, StateCompleted, clock.State())
	assert.Equal(t, time.Duration(0), clock.Remaining())
	assert.False(t, clock.Running())

	assert.False(t, clock.Tick(), "stopped clocks ignore ticks")
}

func TestClockRemainingNeverNegative(t *testing.T) {
	clock := newTestClock(1500 * time.Millisecond)
	require.True(t, clock.Start())

	assert.False(t, clock.Tick())
	assert.Equal(t, 500*time.Millisecond, clock.Remaining())
	assert.True(t, clock.Tick())
	assert.Equal(t, time.Duration(0), clock.Snapshot().Remaining)
}

func TestClockPauseAndResume(t *testing.T) {
	clock := newTestClock(10 * time.Second)

	assert.False(t, clock.Pause(), "idle clock is not running")

	require.True(t, clock.Start())
	clock.Tick()
	require.True(t, clock.Pause())
	assert.Equal(t, StatePaused, clock.State())
	assert.Equal(t, 9*time.Second, clock.Remaining())

	clock.Tick()
	assert.Equal(t, 9*time.Second, clock.Remaining())

	require.True(t, clock.Start())
	clock.Tick()
	assert.Equal(t, 8*time.Second, clock.Remaining())
}

func TestClockStartAfterCompletionRestarts(t *testing.T) {
	clock := newTestClock(time.Second)
	require.True(t, clock.Start())
	require.True(t, clock.Tick())

	require.True(t, clock.Start())
	assert.Equal(t, time.Second, clock.Remaining())
	assert.Equal(t, StateRunning, clock.State())
}

func TestClockReset(t *testing.T) {
	clock := newTestClock(5 * time.Second)
	require.True(t, clock.Start())
	clock.Tick()
	clock.Tick()

	clock.Reset()
	assert.Equal(t, StateIdle, clock.State())
	assert.Equal(t, 5*time.Second, clock.Remaining())
	assert.False(t, clock.Running())
}

func TestClockSnapshots(t *testing.T) {
	clock := newTestClock(2 * time.Second)

	snapshot := clock.Snapshot()
	assert.Equal(t, "timer-test", snapshot.TimerID)
	assert.False(t, snapshot.Initial)
	assert.Empty(t, snapshot.Name)

	initial := clock.InitialSnapshot()
	assert.True(t, initial.Initial)
	assert.Equal(t, "Test", initial.Name)
	assert.True(t, initial.FlashOnComplete)
	assert.Equal(t, 2*time.Second, initial.Remaining)
}
