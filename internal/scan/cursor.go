// Package scan provides the low-level reading primitives for SemTeX sources:
// an advance-only Cursor over an immutable byte buffer, newline accounting,
// and the grammar for bracketed option lists and braced argument lists.
//
// Nothing in this package copies the source buffer. Positions are plain
// offsets into the buffer the Cursor was created over, and a Substitution
// is only meaningful together with that buffer.
package scan

import (
	"fmt"

	"github.com/conneroisu/semtex/internal/errors"
)

// NewlineStyle identifies a line break convention.
type NewlineStyle int

const (
	NewlineUnix NewlineStyle = iota
	NewlineWindows
	NewlineMac
)

// String returns the string representation of the style
func (s NewlineStyle) String() string {
	switch s {
	case NewlineUnix:
		return "unix"
	case NewlineWindows:
		return "windows"
	case NewlineMac:
		return "mac"
	default:
		return "unknown"
	}
}

// Sequence returns the bytes written for a line break in this style.
func (s NewlineStyle) Sequence() string {
	switch s {
	case NewlineWindows:
		return "\r\n"
	case NewlineMac:
		return "\r"
	default:
		return "\n"
	}
}

// Tally counts the line breaks seen per convention.
type Tally struct {
	Unix    int
	Windows int
	Mac     int
}

// Dominant returns the most used convention. Unix wins every tie.
func (t Tally) Dominant() NewlineStyle {
	switch {
	case t.Windows > t.Unix && t.Windows >= t.Mac:
		return NewlineWindows
	case t.Mac > t.Unix && t.Mac > t.Windows:
		return NewlineMac
	default:
		return NewlineUnix
	}
}

// Total returns the number of line breaks counted.
func (t Tally) Total() int {
	return t.Unix + t.Windows + t.Mac
}

// Cursor is a forward-only reading position within an immutable buffer.
type Cursor struct {
	name  string
	buf   []byte
	pos   int
	line  int
	tally Tally
	warns []errors.Diagnostic
}

// Mark is a saved Cursor state used for bounded lookahead.
type Mark struct {
	pos   int
	line  int
	tally Tally
}

// NewCursor creates a cursor at the start of buf. line is the line number
// reported for the first byte; nested passes inherit it from their origin.
func NewCursor(name string, buf []byte, line int) *Cursor {
	if line < 1 {
		line = 1
	}
	return &Cursor{name: name, buf: buf, line: line}
}

// Name returns the file name used in diagnostics.
func (c *Cursor) Name() string { return c.name }

// Buffer returns the underlying buffer. Callers must not modify it.
func (c *Cursor) Buffer() []byte { return c.buf }

// Pos returns the current offset.
func (c *Cursor) Pos() int { return c.pos }

// Len returns the buffer length.
func (c *Cursor) Len() int { return len(c.buf) }

// Line returns the current line number.
func (c *Cursor) Line() int { return c.line }

// Tally returns the newline counts seen so far.
func (c *Cursor) Tally() Tally { return c.tally }

// EOF reports whether the cursor has reached the end of the buffer.
func (c *Cursor) EOF() bool { return c.pos >= len(c.buf) }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int { return len(c.buf) - c.pos }

// Peek returns the byte at the cursor.
func (c *Cursor) Peek() (byte, bool) {
	if c.pos >= len(c.buf) {
		return 0, false
	}
	return c.buf[c.pos], true
}

// PeekAt returns the byte n bytes past the cursor.
func (c *Cursor) PeekAt(n int) (byte, bool) {
	i := c.pos + n
	if i < 0 || i >= len(c.buf) {
		return 0, false
	}
	return c.buf[i], true
}

// Prev returns the byte just before the cursor.
func (c *Cursor) Prev() (byte, bool) {
	return c.PeekAt(-1)
}

// HasPrefix reports whether the unread bytes start with s.
func (c *Cursor) HasPrefix(s string) bool {
	if len(s) > c.Remaining() {
		return false
	}
	return string(c.buf[c.pos:c.pos+len(s)]) == s
}

// Advance moves the cursor n bytes forward without line accounting.
// Callers only advance over bytes they know are not line breaks.
func (c *Cursor) Advance(n int) {
	c.pos += n
	if c.pos > len(c.buf) {
		c.pos = len(c.buf)
	}
}

// Text returns a copy of buf[start:end].
func (c *Cursor) Text(start, end int) string {
	return string(c.buf[start:end])
}

// Mark saves the cursor state.
func (c *Cursor) Mark() Mark {
	return Mark{pos: c.pos, line: c.line, tally: c.tally}
}

// Reset restores a state saved by Mark during the current grammar call.
// A mark never lies before a Substitution already recorded by the pass,
// so the span ordering of the pass is unaffected.
func (c *Cursor) Reset(m Mark) {
	c.pos = m.pos
	c.line = m.line
	c.tally = m.tally
}

// SkipBlanks consumes spaces and tabs.
func (c *Cursor) SkipBlanks() {
	for c.pos < len(c.buf) && isBlank(c.buf[c.pos]) {
		c.pos++
	}
}

// ReadNewline consumes one line break if the cursor is on one.
// "\r\n" and "\n\r" count as Windows, a lone '\r' as Mac and a lone '\n'
// as Unix.
func (c *Cursor) ReadNewline() bool {
	if c.pos >= len(c.buf) {
		return false
	}

	b := c.buf[c.pos]
	if b != '\n' && b != '\r' {
		return false
	}

	next, hasNext := c.PeekAt(1)
	switch {
	case b == '\r' && hasNext && next == '\n':
		c.tally.Windows++
		c.pos += 2
	case b == '\n' && hasNext && next == '\r':
		c.tally.Windows++
		c.pos += 2
	case b == '\r':
		c.tally.Mac++
		c.pos++
	default:
		c.tally.Unix++
		c.pos++
	}
	c.line++
	return true
}

// SkipToNextToken skips blanks, at most one line break and more blanks.
// It reports whether a line break was consumed.
func (c *Cursor) SkipToNextToken() bool {
	c.SkipBlanks()
	if c.ReadNewline() {
		c.SkipBlanks()
		return true
	}
	return false
}

// SkipLine consumes everything up to and including the next line break.
func (c *Cursor) SkipLine() {
	for c.pos < len(c.buf) && c.buf[c.pos] != '\n' && c.buf[c.pos] != '\r' {
		c.pos++
	}
	c.ReadNewline()
}

// Errorf builds a parse error located at the current line.
func (c *Cursor) Errorf(code, format string, args ...interface{}) *errors.SemtexError {
	return errors.NewParseError(code, c.name, c.line, fmt.Sprintf(format, args...))
}

// Warnf records a non-fatal diagnostic at the current line.
func (c *Cursor) Warnf(format string, args ...interface{}) {
	c.warns = append(c.warns, errors.NewWarning(c.name, c.line, fmt.Sprintf(format, args...)))
}

// Warnings returns the diagnostics recorded through Warnf.
func (c *Cursor) Warnings() []errors.Diagnostic {
	return c.warns
}

// AddWarnings appends diagnostics gathered elsewhere, such as from a
// nested pass over generated text.
func (c *Cursor) AddWarnings(ds []errors.Diagnostic) {
	c.warns = append(c.warns, ds...)
}

func isBlank(b byte) bool {
	return b == ' ' || b == '\t'
}

// IsSpace reports whether b is ASCII whitespace, line breaks included.
func IsSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

// IsLetter reports whether b is an ASCII letter.
func IsLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
