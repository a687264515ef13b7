// Package pipeline drives the expansion of a whole inclusion graph: a FIFO
// work queue of file paths, a lazily started worker pool, the per-file
// processor and the driver that detects when all work is done.
package pipeline

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// WorkQueue is a FIFO of file paths shared by the driver and the workers.
//
// Paths are not deduplicated. Every successful dequeue counts as in flight
// until the consumer calls Done, so Idle never reports an empty queue
// while a popped path is still waiting to be marked busy.
type WorkQueue struct {
	mu    sync.Mutex
	items []string
	// notify carries at most one pending wakeup.
	notify chan struct{}

	dequeueEnabled atomic.Bool
	inFlight       atomic.Int64

	onEnqueue func(pending int)
}

// NewWorkQueue creates an empty queue with dequeueing enabled. onEnqueue,
// if not nil, is called after every Enqueue with the number of pending
// paths, outside the queue lock.
func NewWorkQueue(onEnqueue func(pending int)) *WorkQueue {
	q := &WorkQueue{
		notify:    make(chan struct{}, 1),
		onEnqueue: onEnqueue,
	}
	q.dequeueEnabled.Store(true)
	return q
}

// Enqueue appends path and wakes one waiting consumer. It never blocks.
func (q *WorkQueue) Enqueue(path string) {
	q.mu.Lock()
	q.items = append(q.items, path)
	pending := len(q.items)
	q.mu.Unlock()

	q.signal()

	if q.onEnqueue != nil {
		q.onEnqueue(pending)
	}
}

// Dequeue waits up to timeout for a path. It returns false on timeout, on
// cancellation, or immediately after waiting out the timeout when
// dequeueing is disabled.
func (q *WorkQueue) Dequeue(ctx context.Context, timeout time.Duration) (string, bool) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	if !q.dequeueEnabled.Load() {
		select {
		case <-timer.C:
		case <-ctx.Done():
		}
		return "", false
	}

	for {
		if path, ok := q.TryDequeue(); ok {
			return path, true
		}

		select {
		case <-q.notify:
		case <-timer.C:
			return "", false
		case <-ctx.Done():
			return "", false
		}
	}
}

// TryDequeue pops a path without waiting.
func (q *WorkQueue) TryDequeue() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.dequeueEnabled.Load() || len(q.items) == 0 {
		return "", false
	}

	path := q.items[0]
	q.items[0] = ""
	q.items = q.items[1:]
	q.inFlight.Add(1)

	// Pass the wakeup on to the next waiter.
	if len(q.items) > 0 {
		q.signal()
	}
	return path, true
}

// Done marks one dequeued path as finished.
func (q *WorkQueue) Done() {
	q.inFlight.Add(-1)
}

// SetDequeueEnabled switches dequeueing on or off.
func (q *WorkQueue) SetDequeueEnabled(enabled bool) {
	q.mu.Lock()
	q.dequeueEnabled.Store(enabled)
	q.mu.Unlock()

	if enabled {
		q.signal()
	}
}

// Len returns the number of pending paths.
func (q *WorkQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Empty reports whether no path is pending.
func (q *WorkQueue) Empty() bool {
	return q.Len() == 0
}

// InFlight returns the number of dequeued paths not yet marked Done.
func (q *WorkQueue) InFlight() int64 {
	return q.inFlight.Load()
}

// Idle reports whether nothing is pending and nothing is in flight.
func (q *WorkQueue) Idle() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) == 0 && q.inFlight.Load() == 0
}

func (q *WorkQueue) signal() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}
