// Package animation drives the completion flash of timer views.
package animation

import (
	"context"
	"sync"
	"time"
)

// Config contains flash timing values.
type Config struct {
	On  time.Duration
	Off time.Duration
}

// DefaultConfig returns a one-second flash cycle.
func DefaultConfig() Config {
	return Config{
		On:  500 * time.Millisecond,
		Off: 500 * time.Millisecond,
	}
}

// Engine toggles a highlight on and off until stopped. The apply callback is
// invoked from the engine goroutine; callers marshal it onto the UI thread.
type Engine struct {
	mu     sync.Mutex
	config Config
	apply  func(on bool)
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a new flash engine.
func New(config Config, apply func(on bool)) *Engine {
	if config.On <= 0 || config.Off <= 0 {
		config = DefaultConfig()
	}
	return &Engine{
		config: config,
		apply:  apply,
	}
}

// Start begins flashing. Starting a running engine is a no-op.
func (engine *Engine) Start(ctx context.Context) {
	engine.mu.Lock()
	defer engine.mu.Unlock()

	if engine.cancel != nil {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	engine.cancel = cancel
	engine.done = done

	go func() {
		defer close(done)
		engine.run(runCtx)
	}()
}

// Stop ends flashing, waits for the goroutine and leaves the highlight off.
func (engine *Engine) Stop() {
	engine.mu.Lock()
	cancel := engine.cancel
	done := engine.done
	engine.cancel = nil
	engine.done = nil
	engine.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	engine.apply(false)
}

// Running reports whether the engine is flashing.
func (engine *Engine) Running() bool {
	engine.mu.Lock()
	defer engine.mu.Unlock()
	return engine.cancel != nil
}

// SetRunning starts or stops the engine.
func (engine *Engine) SetRunning(running bool) {
	if running {
		engine.Start(context.Background())
		return
	}
	engine.Stop()
}

func (engine *Engine) run(ctx context.Context) {
	for {
		engine.apply(true)
		if !sleepWithContext(ctx, engine.config.On) {
			return
		}
		engine.apply(false)
		if !sleepWithContext(ctx, engine.config.Off) {
			return
		}
	}
}

func sleepWithContext(ctx context.Context, duration time.Duration) bool {
	timer := time.NewTimer(duration)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
