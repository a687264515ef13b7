package pipeline

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// ProcessFunc handles one dequeued path.
type ProcessFunc func(ctx context.Context, path string)

// Worker pulls paths from the queue until told to exit or until a fatal
// error has been recorded.
type Worker struct {
	id   int
	exit atomic.Bool
	busy atomic.Bool
}

// ID returns the worker's index within its pool.
func (w *Worker) ID() int { return w.id }

// Busy reports whether the worker is processing a path.
func (w *Worker) Busy() bool { return w.busy.Load() }

// BeginExit asks the worker to stop once its current path is done.
func (w *Worker) BeginExit() { w.exit.Store(true) }

func (w *Worker) run(ctx context.Context, q *WorkQueue, poll time.Duration, failed func() bool, process ProcessFunc) {
	for !w.exit.Load() && !failed() {
		path, ok := q.Dequeue(ctx, poll)
		if !ok {
			if ctx.Err() != nil {
				return
			}
			continue
		}

		w.busy.Store(true)
		process(ctx, path)
		w.busy.Store(false)
		q.Done()
	}
}

// DefaultPoolSize returns max(2, NumCPU).
func DefaultPoolSize() int {
	return max(2, runtime.NumCPU())
}

// Pool is a fixed set of workers started at most once.
type Pool struct {
	size    int
	workers []*Worker
	wg      sync.WaitGroup
	mu      sync.Mutex
	started atomic.Bool
}

// NewPool creates a pool of size workers. A size of zero or less selects
// DefaultPoolSize.
func NewPool(size int) *Pool {
	if size <= 0 {
		size = DefaultPoolSize()
	}
	return &Pool{size: size}
}

// Size returns the number of workers the pool runs once started.
func (p *Pool) Size() int { return p.size }

// Started reports whether Start has launched the workers.
func (p *Pool) Started() bool { return p.started.Load() }

// Start launches the workers. Only the first call has any effect; it
// reports whether this call started them.
func (p *Pool) Start(ctx context.Context, q *WorkQueue, poll time.Duration, failed func() bool, process ProcessFunc) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started.Load() {
		return false
	}

	p.workers = make([]*Worker, p.size)
	for i := range p.workers {
		w := &Worker{id: i}
		p.workers[i] = w

		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			w.run(ctx, q, poll, failed, process)
		}()
	}

	p.started.Store(true)
	return true
}

// Busy reports whether any worker is processing a path.
func (p *Pool) Busy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, w := range p.workers {
		if w.Busy() {
			return true
		}
	}
	return false
}

// Stop tells every worker to exit after its current path.
func (p *Pool) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, w := range p.workers {
		w.BeginExit()
	}
}

// Join waits for every worker to return.
func (p *Pool) Join() {
	p.wg.Wait()
}
