package timekeeper

import (
	"sort"
	"sync"
	"time"

	"gamertimer/internal/core/model"
	"gamertimer/internal/core/protocol"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// DefaultAutoResetDelay is the pause between completion and the automatic restart.
const DefaultAutoResetDelay = 3 * time.Second

// ErrClosed is returned by Create after Close.
var ErrClosed = errors.New("registry closed")

// Store loads and replaces the persisted set of timer definitions.
type Store interface {
	LoadAll() (map[string]model.Timer, error)
	SaveAll(timers map[string]model.Timer) error
}

// Forwarder delivers snapshots to detached surfaces and tears them down.
// It is called with the registry lock held and must not call back into the registry.
type Forwarder interface {
	Forward(snapshot protocol.Snapshot)
	Close(timerID string)
	CloseAll()
}

// Effects renders completion side effects. OnComplete must not block.
type Effects interface {
	OnComplete(completion model.Completion)
}

// Config contains runtime options for the Registry.
type Config struct {
	TickInterval   time.Duration
	AutoResetDelay time.Duration
}

type entry struct {
	clock       *Clock
	stopTick    Cancel
	tickGen     uint64
	stopRestart Cancel
	restartGen  uint64
}

// Registry owns every timer clock and is the only place timer state changes.
type Registry struct {
	mu        sync.Mutex
	config    Config
	store     Store
	scheduler Scheduler
	forwarder Forwarder
	effects   Effects
	log       zerolog.Logger
	onWarning func(error)
	warnOnce  sync.Once
	entries   map[string]*entry
	order     []string
	events    []chan Event
	closed    bool
	newID     func() string
	now       func() time.Time
}

// New creates a Registry persisting through store and ticking through scheduler.
func New(store Store, scheduler Scheduler, config Config) *Registry {
	return &Registry{
		config:    config.normalize(),
		store:     store,
		scheduler: scheduler,
		log:       zerolog.Nop(),
		entries:   map[string]*entry{},
		newID:     model.NewTimerID,
		now:       time.Now,
	}
}

func (config Config) normalize() Config {
	if config.TickInterval <= 0 {
		config.TickInterval = time.Second
	}
	if config.AutoResetDelay <= 0 {
		config.AutoResetDelay = DefaultAutoResetDelay
	}
	return config
}

// SetConfig applies new options. Running ticks and pending restarts keep the
// values they were scheduled with.
func (registry *Registry) SetConfig(config Config) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.config = config.normalize()
}

// SetForwarder injects the link manager.
func (registry *Registry) SetForwarder(forwarder Forwarder) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.forwarder = forwarder
}

// SetEffects injects the completion effect renderer.
func (registry *Registry) SetEffects(effects Effects) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.effects = effects
}

// SetLogger replaces the logger.
func (registry *Registry) SetLogger(log zerolog.Logger) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.log = log.With().Str("module", "registry").Logger()
}

// SetWarningHandler registers the callback that surfaces the first persistence
// failure of the session to the user.
func (registry *Registry) SetWarningHandler(handler func(error)) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.onWarning = handler
}

// Subscribe registers a new observer channel.
func (registry *Registry) Subscribe(buffer int) <-chan Event {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)
	registry.mu.Lock()
	registry.events = append(registry.events, ch)
	registry.mu.Unlock()
	return ch
}

// Load reads the persisted timers once at startup. On failure the registry
// stays usable and empty.
func (registry *Registry) Load() error {
	if registry.store == nil {
		return nil
	}

	timers, err := registry.store.LoadAll()
	if err != nil {
		err = errors.Wrap(err, "load timers")
		registry.reportPersistFailure(err)
		return err
	}

	loaded := make([]model.Timer, 0, len(timers))
	for id, timer := range timers {
		timer.ID = id
		if err := timer.Validate(); err != nil {
			registry.log.Warn().Str("timer", id).Err(err).Msg("skipping stored timer")
			continue
		}
		loaded = append(loaded, timer)
	}
	sort.Slice(loaded, func(i, j int) bool {
		if !loaded[i].CreatedAt.Equal(loaded[j].CreatedAt) {
			return loaded[i].CreatedAt.Before(loaded[j].CreatedAt)
		}
		return loaded[i].ID < loaded[j].ID
	})

	registry.mu.Lock()
	defer registry.mu.Unlock()

	for _, timer := range loaded {
		if _, exists := registry.entries[timer.ID]; exists {
			continue
		}
		current := &entry{clock: NewClock(timer)}
		registry.entries[timer.ID] = current
		registry.order = append(registry.order, timer.ID)
		registry.emitLocked(EventCreated, timer.ID, current)
	}
	registry.log.Info().Int("count", len(loaded)).Msg("timers loaded")
	return nil
}

// Create validates and registers a new timer and returns its id.
func (registry *Registry) Create(timer model.Timer) (string, error) {
	if err := timer.Validate(); err != nil {
		return "", err
	}

	registry.mu.Lock()
	if registry.closed {
		registry.mu.Unlock()
		return "", errors.WithStack(ErrClosed)
	}

	timer.ID = registry.newID()
	timer.CreatedAt = registry.now()
	current := &entry{clock: NewClock(timer)}
	registry.entries[timer.ID] = current
	registry.order = append(registry.order, timer.ID)
	registry.emitLocked(EventCreated, timer.ID, current)
	saveErr := registry.saveLocked()
	registry.log.Debug().Str("timer", timer.ID).Dur("duration", timer.Duration).Msg("timer created")
	registry.mu.Unlock()

	if saveErr != nil {
		registry.reportPersistFailure(saveErr)
	}
	return timer.ID, nil
}

// Delete stops and removes a timer and closes its overlay. Unknown ids are ignored.
func (registry *Registry) Delete(timerID string) {
	registry.mu.Lock()
	current, ok := registry.entries[timerID]
	if !ok {
		registry.mu.Unlock()
		return
	}

	registry.stopTickLocked(current)
	registry.cancelRestartLocked(current)
	delete(registry.entries, timerID)
	for i, id := range registry.order {
		if id == timerID {
			registry.order = append(registry.order[:i], registry.order[i+1:]...)
			break
		}
	}
	registry.emitLocked(EventDeleted, timerID, current)
	saveErr := registry.saveLocked()
	forwarder := registry.forwarder
	registry.log.Debug().Str("timer", timerID).Msg("timer deleted")
	registry.mu.Unlock()

	if forwarder != nil {
		forwarder.Close(timerID)
	}
	if saveErr != nil {
		registry.reportPersistFailure(saveErr)
	}
}

// Get returns the definition of a timer.
func (registry *Registry) Get(timerID string) (model.Timer, bool) {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	current, ok := registry.entries[timerID]
	if !ok {
		return model.Timer{}, false
	}
	return current.clock.Timer(), true
}

// All returns every timer in creation order.
func (registry *Registry) All() []model.Timer {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	timers := make([]model.Timer, 0, len(registry.order))
	for _, id := range registry.order {
		timers = append(timers, registry.entries[id].clock.Timer())
	}
	return timers
}

// Snapshot returns the current observable state of a timer.
func (registry *Registry) Snapshot(timerID string) (protocol.Snapshot, bool) {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	current, ok := registry.entries[timerID]
	if !ok {
		return protocol.Snapshot{}, false
	}
	return current.clock.Snapshot(), true
}

// State returns the clock state of a timer.
func (registry *Registry) State(timerID string) (State, bool) {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	current, ok := registry.entries[timerID]
	if !ok {
		return "", false
	}
	return current.clock.State(), true
}

// RunningCount returns how many clocks are counting down.
func (registry *Registry) RunningCount() int {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	var count int
	for _, current := range registry.entries {
		if current.clock.Running() {
			count++
		}
	}
	return count
}

// ApplyCommand is the single entry point for state changes requested by the
// main view, overlays and other processes. Unknown ids and non-clock commands
// are ignored.
func (registry *Registry) ApplyCommand(timerID string, kind protocol.CommandKind) {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	current, ok := registry.entries[timerID]
	if !ok || registry.closed {
		registry.log.Debug().Str("timer", timerID).Str("command", string(kind)).Msg("command for unknown timer ignored")
		return
	}

	switch kind {
	case protocol.CommandStart:
		registry.startLocked(timerID, current)
	case protocol.CommandPause:
		registry.pauseLocked(timerID, current)
	case protocol.CommandReset:
		registry.resetLocked(timerID, current)
	case protocol.CommandToggle:
		if current.clock.Running() {
			registry.pauseLocked(timerID, current)
		} else {
			registry.startLocked(timerID, current)
		}
	default:
		registry.log.Debug().Str("timer", timerID).Str("command", string(kind)).Msg("command does not affect clock")
	}
}

// Start begins or resumes a countdown.
func (registry *Registry) Start(timerID string) {
	registry.ApplyCommand(timerID, protocol.CommandStart)
}

// Pause freezes a countdown.
func (registry *Registry) Pause(timerID string) {
	registry.ApplyCommand(timerID, protocol.CommandPause)
}

// Reset restores the full duration and stops the countdown.
func (registry *Registry) Reset(timerID string) {
	registry.ApplyCommand(timerID, protocol.CommandReset)
}

// Toggle pauses a running timer and starts any other.
func (registry *Registry) Toggle(timerID string) {
	registry.ApplyCommand(timerID, protocol.CommandToggle)
}

// PauseAll pauses every running timer.
func (registry *Registry) PauseAll() {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	for _, id := range registry.order {
		registry.pauseLocked(id, registry.entries[id])
	}
}

// Resync re-sends the current state of a timer to its surface. With initial
// set the snapshot carries the fields a new surface needs. It returns false
// for unknown timers.
func (registry *Registry) Resync(timerID string, initial bool) bool {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	current, ok := registry.entries[timerID]
	if !ok {
		return false
	}
	if registry.forwarder == nil {
		return true
	}

	if initial {
		registry.forwarder.Forward(current.clock.InitialSnapshot())
	} else {
		registry.forwarder.Forward(current.clock.Snapshot())
	}
	return true
}

// Close stops every tick source and deferred restart, closes every overlay and
// closes observer channels.
func (registry *Registry) Close() {
	registry.mu.Lock()
	if registry.closed {
		registry.mu.Unlock()
		return
	}
	registry.closed = true
	for _, current := range registry.entries {
		registry.stopTickLocked(current)
		registry.cancelRestartLocked(current)
	}
	events := registry.events
	registry.events = nil
	forwarder := registry.forwarder
	registry.mu.Unlock()

	for _, ch := range events {
		close(ch)
	}
	if forwarder != nil {
		forwarder.CloseAll()
	}
}

func (registry *Registry) startLocked(timerID string, current *entry) {
	registry.cancelRestartLocked(current)
	if !current.clock.Start() {
		return
	}

	current.tickGen++
	generation := current.tickGen
	current.stopTick = registry.scheduler.Every(registry.config.TickInterval, func() {
		registry.tick(timerID, generation)
	})
	registry.emitLocked(EventSnapshot, timerID, current)
}

func (registry *Registry) pauseLocked(timerID string, current *entry) {
	if !current.clock.Pause() {
		return
	}
	registry.stopTickLocked(current)
	registry.emitLocked(EventSnapshot, timerID, current)
}

func (registry *Registry) resetLocked(timerID string, current *entry) {
	registry.stopTickLocked(current)
	registry.cancelRestartLocked(current)
	current.clock.Reset()
	registry.emitLocked(EventSnapshot, timerID, current)
}

func (registry *Registry) tick(timerID string, generation uint64) {
	registry.mu.Lock()
	current, ok := registry.entries[timerID]
	if !ok || registry.closed || current.tickGen != generation {
		registry.mu.Unlock()
		return
	}

	completed := current.clock.Tick()
	registry.emitLocked(EventSnapshot, timerID, current)
	if !completed {
		registry.mu.Unlock()
		return
	}

	registry.stopTickLocked(current)
	registry.emitLocked(EventCompleted, timerID, current)
	timer := current.clock.Timer()
	if timer.AutoReset {
		registry.scheduleRestartLocked(timerID, current)
	}
	effects := registry.effects
	registry.log.Info().Str("timer", timerID).Str("name", timer.Name).Bool("auto_reset", timer.AutoReset).Msg("timer completed")
	registry.mu.Unlock()

	if effects != nil {
		effects.OnComplete(model.Completion{
			TimerID: timerID,
			Name:    timer.Name,
			Flash:   timer.FlashOnComplete,
			Sound:   timer.SoundOnComplete,
		})
	}
}

func (registry *Registry) scheduleRestartLocked(timerID string, current *entry) {
	registry.cancelRestartLocked(current)
	generation := current.restartGen
	current.stopRestart = registry.scheduler.After(registry.config.AutoResetDelay, func() {
		registry.autoRestart(timerID, generation)
	})
}

func (registry *Registry) autoRestart(timerID string, generation uint64) {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	current, ok := registry.entries[timerID]
	if !ok || registry.closed || current.restartGen != generation {
		return
	}
	current.stopRestart = nil
	registry.resetLocked(timerID, current)
	registry.startLocked(timerID, current)
}

func (registry *Registry) stopTickLocked(current *entry) {
	if current.stopTick != nil {
		current.stopTick()
		current.stopTick = nil
	}
	current.tickGen++
}

func (registry *Registry) cancelRestartLocked(current *entry) {
	if current.stopRestart != nil {
		current.stopRestart()
		current.stopRestart = nil
	}
	current.restartGen++
}

func (registry *Registry) emitLocked(eventType EventType, timerID string, current *entry) {
	snapshot := current.clock.Snapshot()
	if eventType == EventSnapshot && registry.forwarder != nil {
		registry.forwarder.Forward(snapshot)
	}

	event := Event{
		Type:     eventType,
		TimerID:  timerID,
		State:    current.clock.State(),
		Snapshot: snapshot,
		At:       registry.now(),
	}
	for _, ch := range registry.events {
		select {
		case ch <- event:
		default:
		}
	}
}

func (registry *Registry) saveLocked() error {
	if registry.store == nil {
		return nil
	}
	timers := make(map[string]model.Timer, len(registry.entries))
	for id, current := range registry.entries {
		timers[id] = current.clock.Timer()
	}
	if err := registry.store.SaveAll(timers); err != nil {
		return errors.Wrap(err, "save timers")
	}
	return nil
}

func (registry *Registry) reportPersistFailure(err error) {
	registry.mu.Lock()
	log := registry.log
	handler := registry.onWarning
	registry.mu.Unlock()

	log.Error().Err(err).Msg("timer store unavailable; changes are kept in memory only")
	if handler == nil {
		return
	}
	registry.warnOnce.Do(func() {
		handler(err)
	})
}
