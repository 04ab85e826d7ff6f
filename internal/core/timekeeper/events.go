package timekeeper

import (
	"time"

	"gamertimer/internal/core/protocol"
)

// State represents the current mode of a timer clock.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StatePaused    State = "paused"
	StateCompleted State = "completed"
)

// EventType defines the type of registry event.
type EventType string

const (
	EventSnapshot  EventType = "snapshot"
	EventCreated   EventType = "created"
	EventDeleted   EventType = "deleted"
	EventCompleted EventType = "completed"
)

// Event represents a registry update for observers of the owning side.
type Event struct {
	Type     EventType
	TimerID  string
	State    State
	Snapshot protocol.Snapshot
	At       time.Time
}
