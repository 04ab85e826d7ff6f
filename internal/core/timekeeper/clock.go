package timekeeper

import (
	"time"

	"gamertimer/internal/core/model"
	"gamertimer/internal/core/protocol"
)

// TickStep is the amount removed from a running clock on every tick.
const TickStep = time.Second

// Clock holds the countdown state of one timer. It is not safe for concurrent
// use; the Registry serializes access.
type Clock struct {
	timer     model.Timer
	remaining time.Duration
	running   bool
	completed bool
}

// NewClock returns an idle clock for the timer.
func NewClock(timer model.Timer) *Clock {
	return &Clock{
		timer:     timer,
		remaining: timer.Duration,
	}
}

// Timer returns the definition the clock counts down.
func (clock *Clock) Timer() model.Timer {
	return clock.timer
}

// State derives the current state.
func (clock *Clock) State() State {
	switch {
	case clock.running:
		return StateRunning
	case clock.completed:
		return StateCompleted
	case clock.remaining == clock.timer.Duration:
		return StateIdle
	default:
		return StatePaused
	}
}

// Running reports whether the clock is counting down.
func (clock *Clock) Running() bool {
	return clock.running
}

// Remaining returns the displayable remaining time, never below zero.
func (clock *Clock) Remaining() time.Duration {
	if clock.remaining < 0 {
		return 0
	}
	if clock.remaining > clock.timer.Duration {
		return clock.timer.Duration
	}
	return clock.remaining
}

// Start begins counting down. A completed or exhausted clock restarts from the
// full duration. It returns false when the clock was already running.
func (clock *Clock) Start() bool {
	if clock.running {
		return false
	}
	if clock.remaining <= 0 {
		clock.remaining = clock.timer.Duration
	}
	clock.completed = false
	clock.running = true
	return true
}

// Tick removes one TickStep. It returns true when this tick completed the
// countdown. Ticks on a stopped clock are ignored.
func (clock *Clock) Tick() bool {
	if !clock.running {
		return false
	}
	clock.remaining -= TickStep
	if clock.remaining > 0 {
		return false
	}
	clock.running = false
	clock.completed = true
	return true
}

// Pause stops counting down. It returns false when the clock was not running.
func (clock *Clock) Pause() bool {
	if !clock.running {
		return false
	}
	clock.running = false
	return true
}

// Reset restores the full duration and clears completion.
func (clock *Clock) Reset() {
	clock.running = false
	clock.completed = false
	clock.remaining = clock.timer.Duration
}

// Snapshot returns the observable state.
func (clock *Clock) Snapshot() protocol.Snapshot {
	return protocol.Snapshot{
		TimerID:   clock.timer.ID,
		Remaining: clock.Remaining(),
		Running:   clock.running,
	}
}

// InitialSnapshot is Snapshot plus the fields sent once to a new surface.
func (clock *Clock) InitialSnapshot() protocol.Snapshot {
	snapshot := clock.Snapshot()
	snapshot.Initial = true
	snapshot.Name = clock.timer.Name
	snapshot.FlashOnComplete = clock.timer.FlashOnComplete
	return snapshot
}
