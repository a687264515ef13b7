// Package replacer implements the built-in SemTeX command families and the
// registry that dispatches a position in a buffer to one of them.
package replacer

import (
	"sort"

	"github.com/conneroisu/semtex/internal/errors"
	"github.com/conneroisu/semtex/internal/scan"
)

// Kind identifies a command family.
type Kind int

const (
	KindDirect Kind = iota
	KindArrow
	KindUnit
	KindIntegral
	KindSummation
	KindDerivative
	KindPiecewise
)

// String returns the string representation of the kind
func (k Kind) String() string {
	switch k {
	case KindDirect:
		return "direct"
	case KindArrow:
		return "arrow"
	case KindUnit:
		return "unit"
	case KindIntegral:
		return "integral"
	case KindSummation:
		return "summation"
	case KindDerivative:
		return "derivative"
	case KindPiecewise:
		return "piecewise"
	default:
		return "unknown"
	}
}

// Description is a one-line summary used in command listings.
func (k Kind) Description() string {
	switch k {
	case KindDirect:
		return "literal symbol shorthands"
	case KindArrow:
		return "arrow glyphs"
	case KindUnit:
		return "upright unit annotation"
	case KindIntegral:
		return "integral with optional bounds and variable"
	case KindSummation:
		return "summation with optional index and bounds"
	case KindDerivative:
		return "differential quotient"
	case KindPiecewise:
		return "piecewise case definition"
	default:
		return ""
	}
}

// Replacer turns one matched command invocation into replacement text.
// The set of families is closed; Apply dispatches on the kind.
type Replacer struct {
	kind  Kind
	keys  []string
	table map[string]string
}

func newReplacer(kind Kind, keys ...string) *Replacer {
	r := &Replacer{kind: kind, keys: keys}
	sortKeys(r.keys)
	return r
}

func newTableReplacer(kind Kind, table map[string]string) *Replacer {
	keys := make([]string, 0, len(table))
	for k := range table {
		keys = append(keys, k)
	}
	sortKeys(keys)
	return &Replacer{kind: kind, keys: keys, table: table}
}

// sortKeys orders keys longest first, then lexically.
func sortKeys(keys []string) {
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
}

// Kind returns the command family.
func (r *Replacer) Kind() Kind { return r.kind }

// Keys returns the trigger keys, longest first.
func (r *Replacer) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

// Replacement returns the fixed text for key in table-driven families.
func (r *Replacer) Replacement(key string) (string, bool) {
	text, ok := r.table[key]
	return text, ok
}

// Recurse reports whether the replacement text is expanded again.
func (r *Replacer) Recurse() bool {
	switch r.kind {
	case KindUnit, KindIntegral, KindSummation, KindPiecewise:
		return true
	default:
		return false
	}
}

// Apply consumes the invocation of key at the cursor, which must be
// positioned on key, and returns the span it covers with its replacement.
func (r *Replacer) Apply(key string, c *scan.Cursor) (scan.Substitution, error) {
	start, line := c.Pos(), c.Line()
	c.Advance(len(key))

	var (
		text string
		err  error
	)
	switch r.kind {
	case KindDirect, KindArrow:
		var ok bool
		if text, ok = r.table[key]; !ok {
			err = errors.NewInternalError(errors.ErrCodeInternalError, "no replacement registered for "+key, nil)
		}
	case KindUnit:
		text, err = applyUnit(key, c)
	case KindIntegral:
		text, err = applyIntegral(key, c)
	case KindSummation:
		text, err = applySummation(key, c)
	case KindDerivative:
		text, err = applyDerivative(key, c)
	case KindPiecewise:
		text, err = applyPiecewise(key, c)
	default:
		err = errors.NewInternalError(errors.ErrCodeInternalError, "unknown replacer kind "+r.kind.String(), nil)
	}
	if err != nil {
		return scan.Substitution{}, err
	}

	return scan.Substitution{Start: start, End: c.Pos(), Text: text, Line: line}, nil
}

// parse reads the option and argument lists of an invocation, tagging
// grammar errors with the command.
func parse(key string, c *scan.Cursor) (*scan.MacroOptions, []string, error) {
	opts, args, err := scan.ParseInvocation(c)
	if err != nil {
		return nil, nil, errors.InCommand(err, key)
	}
	return opts, args, nil
}
