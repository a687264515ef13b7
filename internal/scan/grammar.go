package scan

import (
	"sort"
	"strings"

	"github.com/conneroisu/semtex/internal/errors"
)

// MacroOptions holds the contents of an optional [ ... ] list following a
// command name.
type MacroOptions struct {
	Flags map[string]struct{}
	Named map[string]string

	flagOrder []string
}

// NewMacroOptions returns an empty option set.
func NewMacroOptions() *MacroOptions {
	return &MacroOptions{
		Flags: make(map[string]struct{}),
		Named: make(map[string]string),
	}
}

// Empty reports whether no flag and no named option was given.
func (o *MacroOptions) Empty() bool {
	return len(o.Flags) == 0 && len(o.Named) == 0
}

// HasFlag reports whether flag was given.
func (o *MacroOptions) HasFlag(flag string) bool {
	_, ok := o.Flags[flag]
	return ok
}

// FlagList returns the flags in the order they were written.
func (o *MacroOptions) FlagList() []string {
	out := make([]string, len(o.flagOrder))
	copy(out, o.flagOrder)
	return out
}

// Keys returns the named option keys, sorted.
func (o *MacroOptions) Keys() []string {
	keys := make([]string, 0, len(o.Named))
	for k := range o.Named {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (o *MacroOptions) addFlag(c *Cursor, flag string) error {
	if o.HasFlag(flag) {
		return c.Errorf(errors.ErrCodeDuplicate, "Duplicate flag %q", flag)
	}
	o.Flags[flag] = struct{}{}
	o.flagOrder = append(o.flagOrder, flag)
	return nil
}

func (o *MacroOptions) addNamed(c *Cursor, key, value string) error {
	if _, ok := o.Named[key]; ok {
		return c.Errorf(errors.ErrCodeDuplicate, "Duplicate option %q", key)
	}
	o.Named[key] = value
	return nil
}

type optionState int

const (
	optionStart optionState = iota
	optionAfterEntry
	optionAfterComma
)

// ParseOptions parses an optional option list. When the next token is not
// '[' the cursor is left where it was and an empty set is returned.
//
// Entries are separated by commas and may be quoted flags ("text"), bare
// flags, or key=value pairs whose value is quoted or bare. A single line
// break may separate entries; a blank line may not.
func ParseOptions(c *Cursor) (*MacroOptions, error) {
	opts := NewMacroOptions()

	m := c.Mark()
	c.SkipToNextToken()
	if b, ok := c.Peek(); !ok || b != '[' {
		c.Reset(m)
		return opts, nil
	}
	c.Advance(1)

	state := optionStart
	for {
		if c.SkipToNextToken() && c.ReadNewline() {
			return nil, c.Errorf(errors.ErrCodeParagraph,
				"A new paragraph was found in the middle of the options list")
		}

		b, ok := c.Peek()
		if !ok {
			return nil, c.Errorf(errors.ErrCodeUnterminated,
				"End of file reached before finding end of options")
		}

		switch {
		case b == ']':
			if state == optionAfterComma {
				return nil, c.Errorf(errors.ErrCodeInvalidOption, "Missing option after trailing comma")
			}
			c.Advance(1)
			return opts, nil

		case b == ',':
			switch state {
			case optionAfterComma:
				return nil, c.Errorf(errors.ErrCodeInvalidOption, "Missing option (double commas)")
			case optionStart:
				return nil, c.Errorf(errors.ErrCodeInvalidOption, "Missing option before comma")
			}
			c.Advance(1)
			state = optionAfterComma

		default:
			if state == optionAfterEntry {
				return nil, c.Errorf(errors.ErrCodeInvalidOption, "Invalid option")
			}
			if err := parseEntry(c, opts); err != nil {
				return nil, err
			}
			state = optionAfterEntry
		}
	}
}

func parseEntry(c *Cursor, opts *MacroOptions) error {
	if b, _ := c.Peek(); b == '"' {
		flag, err := readQuoted(c)
		if err != nil {
			return err
		}
		return opts.addFlag(c, flag)
	}

	start := c.Pos()
	readBare(c)
	token := strings.TrimSpace(c.Text(start, c.Pos()))

	b, _ := c.Peek()
	switch b {
	case '"':
		return c.Errorf(errors.ErrCodeInvalidOption, "Invalid option")
	case '=':
		if !isKey(token) {
			return c.Errorf(errors.ErrCodeInvalidOption, "Invalid option name %q", token)
		}
		c.Advance(1)
		c.SkipBlanks()
		value, err := readValue(c)
		if err != nil {
			return err
		}
		return opts.addNamed(c, token, value)
	}

	if token == "" {
		return c.Errorf(errors.ErrCodeInvalidOption, "Invalid option")
	}
	return opts.addFlag(c, token)
}

func readValue(c *Cursor) (string, error) {
	if b, _ := c.Peek(); b == '"' {
		return readQuoted(c)
	}

	start := c.Pos()
	readBare(c)
	value := strings.TrimSpace(c.Text(start, c.Pos()))
	if b, _ := c.Peek(); value == "" || b == '"' || b == '=' {
		return "", c.Errorf(errors.ErrCodeInvalidOption, "Invalid option")
	}
	return value, nil
}

// readQuoted reads a non-empty "..." token that does not span lines.
func readQuoted(c *Cursor) (string, error) {
	c.Advance(1)
	start := c.Pos()
	for {
		b, ok := c.Peek()
		if !ok || b == '\n' || b == '\r' {
			return "", c.Errorf(errors.ErrCodeInvalidOption, "Unterminated quoted option")
		}
		if b == '"' {
			break
		}
		c.Advance(1)
	}
	text := c.Text(start, c.Pos())
	c.Advance(1)
	if text == "" {
		return "", c.Errorf(errors.ErrCodeInvalidOption, "Empty quoted option")
	}
	c.SkipBlanks()
	return text, nil
}

// readBare advances over an unquoted token on the current line.
func readBare(c *Cursor) {
	for {
		b, ok := c.Peek()
		if !ok {
			return
		}
		switch b {
		case '"', '=', ',', ']', '\n', '\r':
			return
		}
		c.Advance(1)
	}
}

func isKey(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !IsLetter(s[i]) {
			return false
		}
	}
	return true
}

// ParseArgs parses zero or more brace groups. Each group may start on the
// line following the previous one. Braces preceded by '\' do not count
// toward nesting. The captured text is the raw span between the outer
// braces. On return the cursor sits just past the last group, or where it
// started when there was none.
func ParseArgs(c *Cursor) ([]string, error) {
	var args []string

	end := c.Mark()
	for {
		c.SkipToNextToken()
		if b, ok := c.Peek(); !ok || b != '{' {
			break
		}
		c.Advance(1)

		start := c.Pos()
		depth := 1
		for depth > 0 {
			b, ok := c.Peek()
			if !ok {
				return nil, c.Errorf(errors.ErrCodeUnterminated,
					"End of file reached before finding end of argument")
			}
			if b == '\n' || b == '\r' {
				c.ReadNewline()
				continue
			}

			prev, _ := c.Prev()
			if prev != '\\' {
				switch b {
				case '{':
					depth++
				case '}':
					depth--
				}
			}
			c.Advance(1)
		}

		args = append(args, c.Text(start, c.Pos()-1))
		end = c.Mark()
	}

	c.Reset(end)
	return args, nil
}

// ParseInvocation parses an option list followed by an argument list.
func ParseInvocation(c *Cursor) (*MacroOptions, []string, error) {
	opts, err := ParseOptions(c)
	if err != nil {
		return nil, nil, err
	}
	args, err := ParseArgs(c)
	if err != nil {
		return nil, nil, err
	}
	return opts, args, nil
}
