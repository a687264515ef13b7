package replacer

import (
	"bytes"
	"sort"

	"github.com/conneroisu/semtex/internal/scan"
)

// Match is the result of a successful dispatch.
type Match struct {
	Key      string
	Replacer *Replacer
}

type entry struct {
	key   string
	r     *Replacer
	order int
}

// Registry holds every registered trigger key, indexed by first byte and
// ordered longest first. It is built once and is safe for concurrent reads.
type Registry struct {
	replacers []*Replacer
	index     [256][]entry
	size      int
}

// NewRegistry builds a registry. When two replacers register the same key
// the one registered first wins.
func NewRegistry(replacers ...*Replacer) *Registry {
	reg := &Registry{replacers: replacers}

	order := 0
	for _, r := range replacers {
		for _, k := range r.keys {
			if k == "" {
				continue
			}
			reg.index[k[0]] = append(reg.index[k[0]], entry{key: k, r: r, order: order})
			order++
			reg.size++
		}
	}

	for i := range reg.index {
		bucket := reg.index[i]
		sort.SliceStable(bucket, func(a, b int) bool {
			if len(bucket[a].key) != len(bucket[b].key) {
				return len(bucket[a].key) > len(bucket[b].key)
			}
			return bucket[a].order < bucket[b].order
		})
	}

	return reg
}

// Default builds the registry of built-in families. extra symbols are
// merged into the Direct table.
func Default(extra map[string]string) *Registry {
	return NewRegistry(
		NewDirect(extra),
		NewArrow(),
		NewUnit(),
		NewIntegral(),
		NewSummation(),
		NewDerivative(),
		NewPiecewise(),
	)
}

// Replacers returns the registered replacers in registration order.
func (reg *Registry) Replacers() []*Replacer {
	out := make([]*Replacer, len(reg.replacers))
	copy(out, reg.replacers)
	return out
}

// Len returns the number of registered keys.
func (reg *Registry) Len() int { return reg.size }

// Match finds the longest key that occurs at buf[pos:] and satisfies the
// boundary rule.
func (reg *Registry) Match(buf []byte, pos int) (Match, bool) {
	if pos < 0 || pos >= len(buf) {
		return Match{}, false
	}

	rest := buf[pos:]
	for _, e := range reg.index[buf[pos]] {
		if !bytes.HasPrefix(rest, []byte(e.key)) {
			continue
		}
		if Boundary(buf, pos+len(e.key), e.key) {
			return Match{Key: e.key, Replacer: e.r}, true
		}
	}
	return Match{}, false
}

// Boundary reports whether a key ending at end is not the prefix of a
// longer token. The following byte must be '{', '[' or whitespace, or the
// end of the buffer. A key that starts with '\' and ends in a letter may
// also be followed by any non-letter.
func Boundary(buf []byte, end int, key string) bool {
	if end >= len(buf) {
		return true
	}

	b := buf[end]
	if b == '{' || b == '[' || scan.IsSpace(b) {
		return true
	}
	if len(key) > 1 && key[0] == '\\' && scan.IsLetter(key[len(key)-1]) {
		return !scan.IsLetter(b)
	}
	return false
}
