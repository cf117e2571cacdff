package dispatch

import (
	"errors"
	"sync"
)

// ErrQueueClosed is returned by [Queue.Push] once the queue has been closed.
var ErrQueueClosed = errors.New("command queue closed")

// Queue is an unbounded FIFO of [Command] values.
//
// Any number of goroutines may push; exactly one goroutine pops. Push never
// blocks on the consumer.
type Queue struct {
	mu     sync.Mutex
	items  []Command
	closed bool

	// ready holds at most one wakeup for the consumer
	ready chan struct{}
}

// NewQueue creates an empty open [Queue].
func NewQueue() *Queue {
	return &Queue{
		ready: make(chan struct{}, 1),
	}
}

// Push appends cmd to the queue.
func (q *Queue) Push(cmd Command) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	q.items = append(q.items, cmd)
	q.mu.Unlock()

	q.wake()
	return nil
}

// Pop removes and returns the oldest command, blocking while the queue is
// empty. It returns false once the queue is closed; commands still queued at
// that point are dropped.
func (q *Queue) Pop() (Command, bool) {
	for {
		q.mu.Lock()
		if q.closed {
			q.mu.Unlock()
			return nil, false
		}
		if len(q.items) > 0 {
			cmd := q.items[0]
			q.items[0] = nil
			q.items = q.items[1:]
			q.mu.Unlock()
			return cmd, true
		}
		q.mu.Unlock()

		<-q.ready
	}
}

// Len returns the number of queued commands.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close closes the queue and discards pending commands.
// Safe to call multiple times.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.items = nil
	q.mu.Unlock()

	q.wake()
}

func (q *Queue) wake() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}
