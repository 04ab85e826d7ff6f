// Package protocol defines the messages exchanged between the owner of a timer
// and its detached overlay, and the queues that carry them.
//
// Owner to overlay: Update values (Snapshot, Opacity).
// Overlay to owner: Command values.
//
// Delivery is ordered per queue and fire-and-forget: a full or closed queue
// drops the message and the next snapshot corrects the display.
package protocol

import "time"

// Update is a message sent from the owning side to a detached surface.
type Update interface {
	TargetID() string
	update()
}

// Snapshot carries the observable state of one timer.
type Snapshot struct {
	TimerID   string
	Remaining time.Duration
	Running   bool

	// Initial marks the first delivery to a surface; only then are Name and
	// FlashOnComplete populated.
	Initial         bool
	Name            string
	FlashOnComplete bool
}

// TargetID returns the timer the snapshot belongs to.
func (snapshot Snapshot) TargetID() string { return snapshot.TimerID }

func (Snapshot) update() {}

// Opacity asks a surface to change its opacity. It is cosmetic only.
type Opacity struct {
	TimerID string
	Value   float64
}

// TargetID returns the timer whose surface should change.
func (opacity Opacity) TargetID() string { return opacity.TimerID }

func (Opacity) update() {}

// CommandKind enumerates requests that can be sent to the owning side.
type CommandKind string

const (
	CommandStart      CommandKind = "start"
	CommandPause      CommandKind = "pause"
	CommandReset      CommandKind = "reset"
	CommandToggle     CommandKind = "toggle"
	CommandSetOpacity CommandKind = "set_opacity"
	CommandClose      CommandKind = "close"
	CommandActivate   CommandKind = "activate"
)

// AffectsClock reports whether the command mutates timer state.
func (kind CommandKind) AffectsClock() bool {
	switch kind {
	case CommandStart, CommandPause, CommandReset, CommandToggle:
		return true
	default:
		return false
	}
}

// Command is a request from a detached surface (or another process) to the owner.
type Command struct {
	Kind    CommandKind
	TimerID string
	Value   float64
}
