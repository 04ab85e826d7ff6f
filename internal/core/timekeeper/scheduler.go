package timekeeper

import (
	"sync"
	"time"
)

// Cancel stops a scheduled task. Calling it more than once is safe.
type Cancel func()

// Scheduler runs periodic and deferred callbacks for the registry.
type Scheduler interface {
	Every(interval time.Duration, fn func()) Cancel
	After(delay time.Duration, fn func()) Cancel
}

// TickerScheduler runs tasks on wall-clock time, one goroutine per periodic task.
type TickerScheduler struct {
	wg sync.WaitGroup
}

// NewTickerScheduler returns a wall-clock scheduler.
func NewTickerScheduler() *TickerScheduler {
	return &TickerScheduler{}
}

// Every calls fn once per interval until cancelled.
func (scheduler *TickerScheduler) Every(interval time.Duration, fn func()) Cancel {
	if interval <= 0 {
		interval = time.Second
	}
	stopCh := make(chan struct{})
	var once sync.Once

	scheduler.wg.Add(1)
	go func() {
		defer scheduler.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-stopCh:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()

	return func() {
		once.Do(func() {
			close(stopCh)
		})
	}
}

// After calls fn once after delay unless cancelled first.
func (scheduler *TickerScheduler) After(delay time.Duration, fn func()) Cancel {
	timer := time.AfterFunc(delay, fn)
	return func() {
		timer.Stop()
	}
}

// Wait blocks until every periodic task goroutine has exited.
func (scheduler *TickerScheduler) Wait() {
	scheduler.wg.Wait()
}

// ManualScheduler is a virtual clock: tasks run only when Advance moves time
// past their due time.
type ManualScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	seq   uint64
	tasks []*manualTask
}

type manualTask struct {
	due       time.Duration
	every     time.Duration
	fn        func()
	seq       uint64
	cancelled bool
}

// NewManualScheduler returns a virtual clock starting at zero.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// Every schedules fn at every interval from now.
func (scheduler *ManualScheduler) Every(interval time.Duration, fn func()) Cancel {
	if interval <= 0 {
		interval = time.Second
	}
	return scheduler.add(interval, interval, fn)
}

// After schedules fn once, delay from now.
func (scheduler *ManualScheduler) After(delay time.Duration, fn func()) Cancel {
	return scheduler.add(delay, 0, fn)
}

// Advance moves the virtual clock forward, running due tasks in due order.
// Tasks scheduled by callbacks run in the same call when they fall due.
func (scheduler *ManualScheduler) Advance(delta time.Duration) {
	scheduler.mu.Lock()
	target := scheduler.now + delta

	for {
		task := scheduler.nextDueLocked(target)
		if task == nil {
			break
		}
		scheduler.now = task.due
		if task.every > 0 {
			task.due += task.every
		} else {
			task.cancelled = true
		}

		scheduler.mu.Unlock()
		task.fn()
		scheduler.mu.Lock()
	}

	scheduler.now = target
	scheduler.pruneLocked()
	scheduler.mu.Unlock()
}

// Pending returns the number of live periodic and deferred tasks.
func (scheduler *ManualScheduler) Pending() int {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()

	scheduler.pruneLocked()
	return len(scheduler.tasks)
}

// Now returns the virtual time elapsed since creation.
func (scheduler *ManualScheduler) Now() time.Duration {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()
	return scheduler.now
}

func (scheduler *ManualScheduler) add(delay, every time.Duration, fn func()) Cancel {
	scheduler.mu.Lock()
	defer scheduler.mu.Unlock()

	scheduler.seq++
	task := &manualTask{
		due:   scheduler.now + delay,
		every: every,
		fn:    fn,
		seq:   scheduler.seq,
	}
	scheduler.tasks = append(scheduler.tasks, task)

	return func() {
		scheduler.mu.Lock()
		task.cancelled = true
		scheduler.mu.Unlock()
	}
}

func (scheduler *ManualScheduler) nextDueLocked(target time.Duration) *manualTask {
	var next *manualTask
	for _, task := range scheduler.tasks {
		if task.cancelled || task.due > target {
			continue
		}
		if next == nil || task.due < next.due || (task.due == next.due && task.seq < next.seq) {
			next = task
		}
	}
	return next
}

func (scheduler *ManualScheduler) pruneLocked() {
	live := scheduler.tasks[:0]
	for _, task := range scheduler.tasks {
		if !task.cancelled {
			live = append(live, task)
		}
	}
	scheduler.tasks = live
}
