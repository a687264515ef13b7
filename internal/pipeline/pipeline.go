package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/conneroisu/semtex/internal/errors"
	"github.com/conneroisu/semtex/internal/expand"
	"github.com/conneroisu/semtex/internal/logging"
)

// DefaultPollInterval is how long an idle worker waits for a path, and how
// often the driver checks for termination.
const DefaultPollInterval = 500 * time.Millisecond

// Config controls a pipeline run.
type Config struct {
	// Workers is the pool size. Zero selects DefaultPoolSize.
	Workers      int
	PollInterval time.Duration
	Dedup        bool
	Verbose      bool
	Extensions   Extensions
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() Config {
	return Config{
		PollInterval: DefaultPollInterval,
		Extensions:   DefaultExtensions(),
	}
}

// Report summarizes a run. It is returned even when the run fails so the
// caller can clean up the generated files.
type Report struct {
	RunID     string
	Root      string
	Generated []string
	Processed int
	Warnings  []errors.Diagnostic
	// Workers is the pool size, or zero when every file was processed
	// inline.
	Workers  int
	Duration time.Duration
}

// RemoveGenerated deletes every generated output file. Files that are
// already gone are ignored.
func (r *Report) RemoveGenerated() error {
	var failed []string
	for _, path := range r.Generated {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			failed = append(failed, path)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("failed to remove %d generated files: %v", len(failed), failed)
	}
	return nil
}

// Pipeline expands a root file and everything it includes.
type Pipeline struct {
	engine *expand.Engine
	config Config
	logger logging.Logger
}

// New creates a pipeline.
func New(engine *expand.Engine, config Config, logger logging.Logger) *Pipeline {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultPollInterval
	}
	if len(config.Extensions.Source) == 0 && config.Extensions.Passthrough == "" {
		config.Extensions = DefaultExtensions()
	}
	return &Pipeline{
		engine: engine,
		config: config,
		logger: logger.WithComponent("pipeline"),
	}
}

// Run processes root inline, following inclusions. The worker pool is only
// started once more than one path is pending at the same time.
func (p *Pipeline) Run(ctx context.Context, root string) (*Report, error) {
	start := time.Now()
	runID := uuid.New().String()
	logger := p.logger.With("run_id", runID)

	pool := NewPool(p.config.Workers)
	queue := NewWorkQueue(nil)
	pc := NewProcessingContext(queue, p.config.Verbose, p.config.Dedup)
	proc := NewProcessor(p.engine, p.config.Extensions, filepath.Dir(root), logger)

	process := func(ctx context.Context, path string) {
		if err := proc.Process(ctx, pc, path); err != nil {
			logging.LogError(logger, ctx, err, "processing failed", "file", path)
			pc.Fail(err)
		}
	}

	queue.onEnqueue = func(pending int) {
		if pending <= 1 {
			return
		}
		if pool.Start(ctx, queue, p.config.PollInterval, pc.Failed, process) {
			logger.Debug(ctx, "processing multiple files, starting workers", "workers", pool.Size())
		}
	}

	pc.MarkSeen(root)
	process(ctx, root)

	for !pool.Started() && !pc.Failed() && ctx.Err() == nil {
		path, ok := queue.TryDequeue()
		if !ok {
			break
		}
		process(ctx, path)
		queue.Done()
	}

	workers := 0
	if pool.Started() {
		workers = pool.Size()
		p.await(ctx, pool, queue, pc)
		pool.Stop()
		pool.Join()
	}

	report := &Report{
		RunID:     runID,
		Root:      root,
		Generated: pc.GeneratedFiles(),
		Processed: pc.Processed(),
		Warnings:  pc.Collector.Diagnostics(),
		Workers:   workers,
		Duration:  time.Since(start),
	}

	err := pc.Collector.Err()
	if err == nil {
		err = ctx.Err()
	}
	if err == nil {
		logger.Debug(ctx, "run complete",
			"processed", report.Processed,
			"generated", len(report.Generated),
			"duration", report.Duration.String())
	}
	return report, err
}

// await blocks until no path is pending or in flight and no worker is busy,
// or until the run has failed and nothing is in flight. Dequeueing is
// switched off while the state is inspected.
func (p *Pipeline) await(ctx context.Context, pool *Pool, queue *WorkQueue, pc *ProcessingContext) {
	for {
		queue.SetDequeueEnabled(false)
		done := !pool.Busy() && queue.Idle()
		if pc.Failed() && queue.InFlight() == 0 {
			done = true
		}
		queue.SetDequeueEnabled(true)

		if done {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(p.config.PollInterval):
		}
	}
}
