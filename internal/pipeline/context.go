package pipeline

import (
	"sync"
	"sync/atomic"

	"github.com/conneroisu/semtex/internal/errors"
)

// ProcessingContext is the state shared by every file processed in one run.
type ProcessingContext struct {
	Verbose   bool
	Dedup     bool
	Queue     *WorkQueue
	Collector *errors.ErrorCollector

	failed    atomic.Bool
	processed atomic.Int64

	// mu guards generated and seen.
	mu        sync.Mutex
	generated []string
	seen      map[string]struct{}
}

// NewProcessingContext creates the shared state for a run over queue.
func NewProcessingContext(queue *WorkQueue, verbose, dedup bool) *ProcessingContext {
	return &ProcessingContext{
		Verbose:   verbose,
		Dedup:     dedup,
		Queue:     queue,
		Collector: errors.NewErrorCollector(),
		seen:      make(map[string]struct{}),
	}
}

// Fail records a fatal error. Workers stop pulling work once any error has
// been recorded.
func (pc *ProcessingContext) Fail(err error) {
	pc.Collector.AddError(err)
	pc.failed.Store(true)
}

// Failed reports whether a fatal error has been recorded.
func (pc *ProcessingContext) Failed() bool {
	return pc.failed.Load()
}

// Processed returns the number of files fully processed.
func (pc *ProcessingContext) Processed() int {
	return int(pc.processed.Load())
}

func (pc *ProcessingContext) markProcessed() {
	pc.processed.Add(1)
}

// RegisterOutput records an output path so it can be removed on failure.
func (pc *ProcessingContext) RegisterOutput(path string) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	pc.generated = append(pc.generated, path)
}

// GeneratedFiles returns a copy of the registered output paths in
// registration order.
func (pc *ProcessingContext) GeneratedFiles() []string {
	var out []string
	pc.WithGenerated(func(paths []string) {
		out = make([]string, len(paths))
		copy(out, paths)
	})
	return out
}

// WithGenerated calls fn with the output registry while holding its lock.
// fn must not retain paths.
func (pc *ProcessingContext) WithGenerated(fn func(paths []string)) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	fn(pc.generated)
}

// MarkSeen records path and reports whether it was new. Without Dedup
// every path is new.
func (pc *ProcessingContext) MarkSeen(path string) bool {
	if !pc.Dedup {
		return true
	}

	pc.mu.Lock()
	defer pc.mu.Unlock()

	if _, ok := pc.seen[path]; ok {
		return false
	}
	pc.seen[path] = struct{}{}
	return true
}
