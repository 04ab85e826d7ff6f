// Package link keeps the zero-or-one detached surface of every timer in sync
// with the registry that owns it.
package link

import (
	"sync"

	"gamertimer/internal/core/model"
	"gamertimer/internal/core/protocol"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	DefaultOpacity = 0.8
	MinOpacity     = 0.2
	MaxOpacity     = 1.0
)

var (
	ErrUnknownTimer = errors.New("unknown timer")
	ErrClosed       = errors.New("link manager closed")
)

// Inbox accepts commands from a surface. Post never blocks.
type Inbox interface {
	Post(command protocol.Command) bool
}

// Surface is a detached view of one timer.
type Surface interface {
	Deliver(update protocol.Update)
	Focus()
	Close()
}

// SurfaceFactory builds surfaces. Commands from the new surface go to inbox.
type SurfaceFactory interface {
	Create(timerID string, inbox Inbox) (Surface, error)
}

// Source is the owning side of the timers.
type Source interface {
	Get(timerID string) (model.Timer, bool)
	Resync(timerID string, initial bool) bool
	ApplyCommand(timerID string, kind protocol.CommandKind)
}

// Config contains runtime options for the Manager.
type Config struct {
	DefaultOpacity float64
	QueueSize      int
}

type link struct {
	surface Surface
	updates *protocol.Queue[protocol.Update]
	opacity float64
}

// Manager tracks open surfaces. It never calls the Source while holding its lock.
type Manager struct {
	mu         sync.Mutex
	config     Config
	factory    SurfaceFactory
	source     Source
	inbox      *protocol.Queue[protocol.Command]
	links      map[string]*link
	log        zerolog.Logger
	onActivate func()
	closed     bool
}

// NewManager starts a manager and its command inbox.
func NewManager(factory SurfaceFactory, source Source, config Config) *Manager {
	if config.QueueSize <= 0 {
		config.QueueSize = protocol.DefaultQueueSize
	}
	config.DefaultOpacity = ClampOpacity(config.DefaultOpacity)

	manager := &Manager{
		config:  config,
		factory: factory,
		source:  source,
		links:   map[string]*link{},
		log:     zerolog.Nop(),
	}
	manager.inbox = protocol.NewQueue(config.QueueSize, manager.HandleCommand)
	return manager
}

// ClampOpacity limits value to the supported range. Zero selects the default.
func ClampOpacity(value float64) float64 {
	switch {
	case value == 0:
		return DefaultOpacity
	case value < MinOpacity:
		return MinOpacity
	case value > MaxOpacity:
		return MaxOpacity
	default:
		return value
	}
}

// SetLogger replaces the logger.
func (manager *Manager) SetLogger(log zerolog.Logger) {
	manager.mu.Lock()
	defer manager.mu.Unlock()
	manager.log = log.With().Str("module", "link").Logger()
}

// SetDefaultOpacity changes the opacity of surfaces opened from now on.
func (manager *Manager) SetDefaultOpacity(value float64) {
	manager.mu.Lock()
	defer manager.mu.Unlock()
	manager.config.DefaultOpacity = ClampOpacity(value)
}

// SetActivateHandler registers the callback for activate commands without a timer.
func (manager *Manager) SetActivateHandler(handler func()) {
	manager.mu.Lock()
	defer manager.mu.Unlock()
	manager.onActivate = handler
}

// Inbox returns the queue surfaces and remote peers post commands to.
func (manager *Manager) Inbox() Inbox {
	return manager.inbox
}

// Open shows the surface of a timer, creating it when needed, and pushes the
// current state to it.
func (manager *Manager) Open(timerID string) error {
	if _, found := manager.source.Get(timerID); !found {
		return errors.Wrap(ErrUnknownTimer, timerID)
	}

	manager.mu.Lock()
	if manager.closed {
		manager.mu.Unlock()
		return errors.WithStack(ErrClosed)
	}

	if existing, found := manager.links[timerID]; found {
		surface := existing.surface
		manager.mu.Unlock()

		surface.Focus()
		manager.resync(timerID)
		return nil
	}

	surface, err := manager.factory.Create(timerID, manager.inbox)
	if err != nil {
		manager.mu.Unlock()
		return errors.Wrapf(err, "create surface for %s", timerID)
	}

	current := &link{
		surface: surface,
		updates: protocol.NewQueue(manager.config.QueueSize, surface.Deliver),
		opacity: manager.config.DefaultOpacity,
	}
	manager.links[timerID] = current
	manager.log.Debug().Str("timer", timerID).Msg("surface opened")
	manager.mu.Unlock()

	manager.resync(timerID)
	manager.post(timerID, protocol.Opacity{TimerID: timerID, Value: current.opacity})
	return nil
}

// IsOpen reports whether a timer has a surface.
func (manager *Manager) IsOpen(timerID string) bool {
	manager.mu.Lock()
	defer manager.mu.Unlock()

	_, found := manager.links[timerID]
	return found
}

// Opacity returns the current opacity of an open surface.
func (manager *Manager) Opacity(timerID string) (float64, bool) {
	manager.mu.Lock()
	defer manager.mu.Unlock()

	current, found := manager.links[timerID]
	if !found {
		return 0, false
	}
	return current.opacity, true
}

// Count returns the number of open surfaces.
func (manager *Manager) Count() int {
	manager.mu.Lock()
	defer manager.mu.Unlock()
	return len(manager.links)
}

// Close tears down the surface of a timer. Unknown ids are ignored.
func (manager *Manager) Close(timerID string) {
	manager.mu.Lock()
	current, found := manager.links[timerID]
	if found {
		delete(manager.links, timerID)
	}
	manager.mu.Unlock()

	if !found {
		return
	}
	current.updates.Close()
	current.surface.Close()
	manager.log.Debug().Str("timer", timerID).Msg("surface closed")
}

// CloseAll tears down every surface.
func (manager *Manager) CloseAll() {
	manager.mu.Lock()
	links := manager.links
	manager.links = map[string]*link{}
	manager.mu.Unlock()

	for _, current := range links {
		current.updates.Close()
		current.surface.Close()
	}
}

// Forward posts a snapshot to the surface of its timer, if any.
func (manager *Manager) Forward(snapshot protocol.Snapshot) {
	manager.post(snapshot.TimerID, snapshot)
}

// SetOpacity clamps and applies the opacity of an open surface. The value is
// not persisted.
func (manager *Manager) SetOpacity(timerID string, value float64) {
	value = ClampOpacity(value)

	manager.mu.Lock()
	current, found := manager.links[timerID]
	if found {
		current.opacity = value
	}
	manager.mu.Unlock()

	if found {
		manager.post(timerID, protocol.Opacity{TimerID: timerID, Value: value})
	}
}

// HandleCommand applies a request from a surface or another process. Commands
// for unknown timers are ignored.
func (manager *Manager) HandleCommand(command protocol.Command) {
	switch {
	case command.Kind.AffectsClock():
		manager.source.ApplyCommand(command.TimerID, command.Kind)
	case command.Kind == protocol.CommandSetOpacity:
		manager.SetOpacity(command.TimerID, command.Value)
	case command.Kind == protocol.CommandClose:
		manager.Close(command.TimerID)
	case command.Kind == protocol.CommandActivate && command.TimerID != "":
		if err := manager.Open(command.TimerID); err != nil {
			log := manager.logger()
			log.Debug().Err(err).Msg("activate ignored")
		}
	case command.Kind == protocol.CommandActivate:
		manager.mu.Lock()
		handler := manager.onActivate
		manager.mu.Unlock()
		if handler != nil {
			handler()
		}
	default:
		log := manager.logger()
		log.Debug().Str("command", string(command.Kind)).Msg("unknown command")
	}
}

// Shutdown closes every surface and stops the inbox.
func (manager *Manager) Shutdown() {
	manager.mu.Lock()
	if manager.closed {
		manager.mu.Unlock()
		return
	}
	manager.closed = true
	manager.mu.Unlock()

	manager.CloseAll()
	manager.inbox.Close()
	manager.inbox.Wait()
}

func (manager *Manager) resync(timerID string) {
	if !manager.source.Resync(timerID, true) {
		manager.Close(timerID)
	}
}

func (manager *Manager) post(timerID string, update protocol.Update) {
	manager.mu.Lock()
	defer manager.mu.Unlock()

	current, found := manager.links[timerID]
	if !found {
		return
	}
	if !current.updates.Post(update) {
		manager.log.Debug().Str("timer", timerID).Msg("update dropped")
	}
}

func (manager *Manager) logger() zerolog.Logger {
	manager.mu.Lock()
	defer manager.mu.Unlock()
	return manager.log
}
