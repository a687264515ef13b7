// Package expand runs the SemTeX scanning state machine over a buffer,
// producing the ordered substitutions for one pass, and assembles the
// rewritten output.
package expand

import (
	stderrors "errors"
	"fmt"

	"github.com/conneroisu/semtex/internal/errors"
	"github.com/conneroisu/semtex/internal/replacer"
	"github.com/conneroisu/semtex/internal/scan"
)

// DefaultMaxDepth bounds how deeply replacement text is re-expanded.
const DefaultMaxDepth = 64

// Inclusion directives.
const (
	DirectiveInclude = `\include`
	DirectiveInput   = `\input`
)

// State is a state of the scanning machine.
type State int

const (
	StateScanning State = iota
	StateMatching
	StateRecursing
	StateDone
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateScanning:
		return "scanning"
	case StateMatching:
		return "matching"
	case StateRecursing:
		return "recursing"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// IncludeHandler is called for every inclusion directive found, with the
// directive, its single argument and the line it appeared on.
type IncludeHandler func(directive, name string, line int) error

// Options controls a single expansion.
type Options struct {
	// Rewrite enables command dispatch. Without it a buffer is only
	// scanned for inclusion directives.
	Rewrite bool
	// OnInclude receives inclusion directives. May be nil.
	OnInclude IncludeHandler
}

// Result is the outcome of a top-level pass.
type Result struct {
	Substitutions []scan.Substitution
	Tally         scan.Tally
	Warnings      []errors.Diagnostic
}

// Style returns the newline convention replacement text is written in.
func (r *Result) Style() scan.NewlineStyle {
	return r.Tally.Dominant()
}

// Assemble produces the rewritten form of buf, the buffer the result was
// computed over.
func (r *Result) Assemble(buf []byte) []byte {
	return Assemble(buf, r.Substitutions, r.Style())
}

// Engine expands buffers against a fixed registry. It holds no per-run
// state and may be shared between goroutines.
type Engine struct {
	registry *replacer.Registry
	maxDepth int
}

// New creates an engine. A maxDepth of zero or less selects
// DefaultMaxDepth.
func New(registry *replacer.Registry, maxDepth int) *Engine {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Engine{registry: registry, maxDepth: maxDepth}
}

// MaxDepth returns the recursion limit.
func (e *Engine) MaxDepth() int { return e.maxDepth }

// Expand runs a top-level pass over buf. name is used in diagnostics.
func (e *Engine) Expand(name string, buf []byte, opts Options) (*Result, error) {
	p := &pass{
		engine: e,
		cursor: scan.NewCursor(name, buf, 1),
		opts:   opts,
	}
	if err := p.run(); err != nil {
		return nil, err
	}

	return &Result{
		Substitutions: p.subs,
		Tally:         p.cursor.Tally(),
		Warnings:      p.cursor.Warnings(),
	}, nil
}

// pass is one run of the state machine over one buffer.
type pass struct {
	engine *Engine
	cursor *scan.Cursor
	opts   Options
	depth  int

	state State
	match replacer.Match
	subs  []scan.Substitution
}

func (p *pass) run() error {
	p.state = StateScanning
	for p.state != StateDone {
		var err error
		switch p.state {
		case StateScanning:
			err = p.scan()
		case StateMatching:
			err = p.apply()
		case StateRecursing:
			err = p.recurse()
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *pass) scan() error {
	c := p.cursor
	b, ok := c.Peek()
	if !ok {
		p.state = StateDone
		return nil
	}

	switch {
	case b == '%' && !p.escaped():
		c.SkipLine()

	case isGraphic(b):
		if directive, ok := p.directive(); ok {
			return p.include(directive)
		}
		if p.opts.Rewrite {
			if m, ok := p.engine.registry.Match(c.Buffer(), c.Pos()); ok {
				p.match = m
				p.state = StateMatching
				return nil
			}
		}
		c.Advance(1)

	case scan.IsSpace(b):
		start := c.Pos()
		for c.ReadNewline() {
		}
		c.SkipBlanks()
		if c.Pos() == start {
			c.Advance(1)
		}

	default:
		c.Advance(1)
	}
	return nil
}

// escaped reports whether the byte under the cursor follows a backslash.
func (p *pass) escaped() bool {
	prev, ok := p.cursor.Prev()
	return ok && prev == '\\'
}

func (p *pass) directive() (string, bool) {
	for _, d := range []string{DirectiveInclude, DirectiveInput} {
		if !p.cursor.HasPrefix(d) {
			continue
		}
		next, ok := p.cursor.PeekAt(len(d))
		if ok && (next == '{' || scan.IsSpace(next)) {
			return d, true
		}
	}
	return "", false
}

func (p *pass) include(directive string) error {
	c := p.cursor
	line := c.Line()
	c.Advance(len(directive))

	args, err := scan.ParseArgs(c)
	if err != nil {
		var se *errors.SemtexError
		if stderrors.As(err, &se) {
			se.Message += ` for \include or \input`
		}
		return err
	}
	if len(args) != 1 {
		return c.Errorf(errors.ErrCodeInclude, `\include and \input only take a single, unnamed argument`)
	}

	if p.opts.OnInclude == nil {
		return nil
	}
	return p.opts.OnInclude(directive, args[0], line)
}

func (p *pass) apply() error {
	sub, err := p.match.Replacer.Apply(p.match.Key, p.cursor)
	if err != nil {
		return err
	}
	p.subs = append(p.subs, sub)

	if p.match.Replacer.Recurse() {
		p.state = StateRecursing
	} else {
		p.state = StateScanning
	}
	return nil
}

// recurse expands the text of the substitution just recorded and splices
// the result back into it.
func (p *pass) recurse() error {
	sub := &p.subs[len(p.subs)-1]
	key := p.match.Key
	name := p.cursor.Name()

	if p.depth+1 > p.engine.maxDepth {
		err := errors.NewParseError(errors.ErrCodeDepth, name, sub.Line,
			fmt.Sprintf("Maximum expansion depth of %d exceeded", p.engine.maxDepth))
		return errors.InCommand(err, key)
	}

	text := []byte(sub.Text)
	child := &pass{
		engine: p.engine,
		cursor: scan.NewCursor(name, text, sub.Line),
		opts:   p.opts,
		depth:  p.depth + 1,
	}
	if err := child.run(); err != nil {
		return errors.InCommand(err, key)
	}

	p.cursor.AddWarnings(child.cursor.Warnings())
	if len(child.subs) > 0 {
		sub.Text = string(Splice(text, child.subs))
	}

	p.state = StateScanning
	return nil
}

func isGraphic(b byte) bool {
	return b > ' ' && b < 0x7f
}
