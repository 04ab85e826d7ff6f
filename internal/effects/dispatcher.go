// Package effects renders timer completion side effects off the owner's lock.
package effects

import (
	"sync"

	"gamertimer/internal/core/model"
	"gamertimer/internal/core/protocol"

	"github.com/rs/zerolog"
)

// Sounder plays the completion sound.
type Sounder interface {
	Play() error
}

// Notifier shows a desktop notification.
type Notifier interface {
	Notify(title, body string) error
}

// Options toggles effect kinds at runtime.
type Options struct {
	Sound         bool
	Notifications bool
}

// Dispatcher queues completions and renders them on its own goroutine.
type Dispatcher struct {
	mu       sync.Mutex
	sounder  Sounder
	notifier Notifier
	options  Options
	jobs     *protocol.Queue[model.Completion]
	log      zerolog.Logger
}

// NewDispatcher starts a dispatcher. Either collaborator may be nil.
func NewDispatcher(sounder Sounder, notifier Notifier, options Options, log zerolog.Logger) *Dispatcher {
	dispatcher := &Dispatcher{
		sounder:  sounder,
		notifier: notifier,
		options:  options,
		log:      log.With().Str("module", "effects").Logger(),
	}
	dispatcher.jobs = protocol.NewQueue(protocol.DefaultQueueSize, dispatcher.render)
	return dispatcher
}

// OnComplete queues a completion. It never blocks.
func (dispatcher *Dispatcher) OnComplete(completion model.Completion) {
	if !dispatcher.jobs.Post(completion) {
		dispatcher.log.Debug().Str("timer", completion.TimerID).Msg("completion effect dropped")
	}
}

// SetOptions applies new toggles, typically after a settings reload.
func (dispatcher *Dispatcher) SetOptions(options Options) {
	dispatcher.mu.Lock()
	defer dispatcher.mu.Unlock()
	dispatcher.options = options
}

// SetSounder replaces the sound source.
func (dispatcher *Dispatcher) SetSounder(sounder Sounder) {
	dispatcher.mu.Lock()
	defer dispatcher.mu.Unlock()
	dispatcher.sounder = sounder
}

// Close stops rendering and waits for the worker.
func (dispatcher *Dispatcher) Close() {
	dispatcher.jobs.Close()
	dispatcher.jobs.Wait()
}

func (dispatcher *Dispatcher) render(completion model.Completion) {
	dispatcher.mu.Lock()
	options := dispatcher.options
	sounder := dispatcher.sounder
	notifier := dispatcher.notifier
	dispatcher.mu.Unlock()

	if completion.Sound && options.Sound && sounder != nil {
		if err := sounder.Play(); err != nil {
			dispatcher.log.Warn().Err(err).Str("timer", completion.TimerID).Msg("failed to play sound")
		}
	}

	if options.Notifications && notifier != nil {
		if err := notifier.Notify("Timer finished", completion.Name+" is done"); err != nil {
			dispatcher.log.Warn().Err(err).Str("timer", completion.TimerID).Msg("failed to notify")
		}
	}
}
