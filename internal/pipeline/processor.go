package pipeline

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/conneroisu/semtex/internal/errors"
	"github.com/conneroisu/semtex/internal/expand"
	"github.com/conneroisu/semtex/internal/logging"
)

// FileKind tells the processor what to do with a file.
type FileKind int

const (
	// KindSource files are rewritten to an output file.
	KindSource FileKind = iota
	// KindPassthrough files are only scanned for inclusion directives.
	KindPassthrough
	// KindUnknown files are treated like passthrough files.
	KindUnknown
)

// String returns the string representation of the file kind
func (k FileKind) String() string {
	switch k {
	case KindSource:
		return "source"
	case KindPassthrough:
		return "passthrough"
	default:
		return "unknown"
	}
}

// Extensions lists the file extensions the processor recognizes.
type Extensions struct {
	Source      []string
	Passthrough string
}

// DefaultExtensions returns .stex and .sex as sources and .tex as
// passthrough.
func DefaultExtensions() Extensions {
	return Extensions{
		Source:      []string{".stex", ".sex"},
		Passthrough: ".tex",
	}
}

// Classify returns the kind of path by its extension.
func (e Extensions) Classify(path string) FileKind {
	for _, ext := range e.Source {
		if strings.HasSuffix(path, ext) {
			return KindSource
		}
	}
	if strings.HasSuffix(path, e.Passthrough) {
		return KindPassthrough
	}
	return KindUnknown
}

// OutputPath returns the path a source file is written to. Paths without a
// source extension are returned unchanged.
func (e Extensions) OutputPath(path string) string {
	for _, ext := range e.Source {
		if strings.HasSuffix(path, ext) {
			return strings.TrimSuffix(path, ext) + e.Passthrough
		}
	}
	return path
}

// All returns the source extensions followed by the passthrough one.
func (e Extensions) All() []string {
	all := make([]string, 0, len(e.Source)+1)
	all = append(all, e.Source...)
	return append(all, e.Passthrough)
}

// Processor expands one file and enqueues the files it includes.
type Processor struct {
	engine  *expand.Engine
	exts    Extensions
	baseDir string
	logger  logging.Logger
}

// NewProcessor creates a processor. Inclusion names are resolved relative
// to baseDir.
func NewProcessor(engine *expand.Engine, exts Extensions, baseDir string, logger logging.Logger) *Processor {
	return &Processor{
		engine:  engine,
		exts:    exts,
		baseDir: baseDir,
		logger:  logger,
	}
}

// Process reads path, expands it and, for source files, writes the output
// file unless the run has already failed.
func (p *Processor) Process(ctx context.Context, pc *ProcessingContext, path string) error {
	kind := p.exts.Classify(path)
	p.progress(ctx, pc, "processing", "file", path, "kind", kind.String())

	buf, err := os.ReadFile(path)
	if err != nil {
		return errors.NewIOError(errors.ErrCodeRead, "could not open "+path, err).
			WithLocation(path, 0)
	}

	res, err := p.engine.Expand(path, buf, expand.Options{
		Rewrite: kind == KindSource,
		OnInclude: func(directive, name string, line int) error {
			p.include(ctx, pc, name, line)
			return nil
		},
	})
	if err != nil {
		return err
	}

	for _, w := range res.Warnings {
		pc.Collector.Add(w)
		logging.LogDiagnostic(p.logger, ctx, w)
	}

	if kind == KindSource && !pc.Failed() {
		if err := p.write(ctx, pc, path, buf, res); err != nil {
			return err
		}
	}

	pc.markProcessed()
	return nil
}

func (p *Processor) write(ctx context.Context, pc *ProcessingContext, path string, buf []byte, res *expand.Result) error {
	out := p.exts.OutputPath(path)
	p.progress(ctx, pc, "writing output", "file", out, "substitutions", len(res.Substitutions), "lines", res.Tally.Total())

	f, err := os.Create(out)
	if err != nil {
		return errors.NewIOError(errors.ErrCodeWrite, "could not create "+out, err).
			WithLocation(path, 0)
	}
	pc.RegisterOutput(out)

	w := bufio.NewWriter(f)
	if _, err := expand.WriteTo(w, buf, res.Substitutions, res.Style()); err != nil {
		f.Close()
		return errors.NewIOError(errors.ErrCodeWrite, "could not write "+out, err).
			WithLocation(path, 0)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return errors.NewIOError(errors.ErrCodeWrite, "could not write "+out, err).
			WithLocation(path, 0)
	}
	if err := f.Close(); err != nil {
		return errors.NewIOError(errors.ErrCodeWrite, "could not close "+out, err).
			WithLocation(path, 0)
	}
	return nil
}

// include enqueues every existing file named name plus one of the
// recognized extensions.
func (p *Processor) include(ctx context.Context, pc *ProcessingContext, name string, line int) {
	base := name
	if !filepath.IsAbs(base) {
		base = filepath.Join(p.baseDir, base)
	}

	var found []string
	for _, ext := range p.exts.All() {
		candidate := base + ext
		if _, err := os.Lstat(candidate); err == nil {
			found = append(found, candidate)
		}
	}

	if len(found) == 0 {
		p.logger.Debug(ctx, fmt.Sprintf("no file found for %q", name), "line", line)
		return
	}

	for _, candidate := range found {
		if !pc.MarkSeen(candidate) {
			p.logger.Debug(ctx, "already queued", "file", candidate)
			continue
		}
		p.progress(ctx, pc, "adding to queue", "file", candidate, "line", line)
		pc.Queue.Enqueue(candidate)
	}
}

func (p *Processor) progress(ctx context.Context, pc *ProcessingContext, msg string, fields ...interface{}) {
	if pc.Verbose {
		p.logger.Info(ctx, msg, fields...)
		return
	}
	p.logger.Debug(ctx, msg, fields...)
}
