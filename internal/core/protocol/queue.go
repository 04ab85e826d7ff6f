package protocol

import "sync"

// DefaultQueueSize is the buffer used by surfaces and the owner's inbox.
const DefaultQueueSize = 64

// Queue delivers values to a handler on a dedicated goroutine in the order they
// were posted. Post never blocks.
type Queue[T any] struct {
	items   chan T
	done    chan struct{}
	deliver func(T)
	once    sync.Once
	wg      sync.WaitGroup
}

// NewQueue starts a queue that hands every posted value to deliver.
func NewQueue[T any](size int, deliver func(T)) *Queue[T] {
	if size <= 0 {
		size = 1
	}
	queue := &Queue[T]{
		items:   make(chan T, size),
		done:    make(chan struct{}),
		deliver: deliver,
	}
	queue.wg.Add(1)
	go queue.run()
	return queue
}

// Post enqueues a value. It returns false when the value was dropped because
// the queue is full or closed.
func (queue *Queue[T]) Post(item T) bool {
	select {
	case <-queue.done:
		return false
	default:
	}

	select {
	case queue.items <- item:
		return true
	default:
		return false
	}
}

// Close stops delivery; values still buffered are dropped. It does not wait for
// an in-flight delivery, so it is safe to call from the handler itself.
func (queue *Queue[T]) Close() {
	queue.once.Do(func() {
		close(queue.done)
	})
}

// Wait blocks until the delivery goroutine has exited.
func (queue *Queue[T]) Wait() {
	queue.wg.Wait()
}

func (queue *Queue[T]) run() {
	defer queue.wg.Done()

	for {
		select {
		case <-queue.done:
			return
		case item := <-queue.items:
			select {
			case <-queue.done:
				return
			default:
			}
			queue.deliver(item)
		}
	}
}
