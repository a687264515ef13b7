package scan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/semtex/internal/errors"
)

func TestParseOptions(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantFlags []string
		wantNamed map[string]string
		wantRest  string
	}{
		{
			name:     "no list",
			input:    "{x}",
			wantRest: "{x}",
		},
		{
			name:     "no list leaves whitespace alone",
			input:    "  \n{x}",
			wantRest: "  \n{x}",
		},
		{
			name:     "empty list",
			input:    "[]{x}",
			wantRest: "{x}",
		},
		{
			name:      "bare flag",
			input:     "[inf]{f(x)}",
			wantFlags: []string{"inf"},
			wantRest:  "{f(x)}",
		},
		{
			name:      "quoted flag keeps separators",
			input:     `["a, b]"]`,
			wantFlags: []string{"a, b]"},
		},
		{
			name:      "mixed entries",
			input:     `[ limits , wrt = x, lower="0, 1" ,mirror ]`,
			wantFlags: []string{"limits", "mirror"},
			wantNamed: map[string]string{"wrt": "x", "lower": "0, 1"},
		},
		{
			name:      "bare flag with inner space",
			input:     "[big flag]",
			wantFlags: []string{"big flag"},
		},
		{
			name:      "entries on following lines",
			input:     "[inf,\n  limits\n  , u=kg]",
			wantFlags: []string{"inf", "limits"},
			wantNamed: map[string]string{"u": "kg"},
		},
		{
			name:      "list on next line",
			input:     " \n [inf]",
			wantFlags: []string{"inf"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCursor("t.stex", []byte(tt.input), 1)
			opts, err := ParseOptions(c)
			require.NoError(t, err)

			if tt.wantFlags == nil {
				assert.Empty(t, opts.FlagList())
			} else {
				assert.Equal(t, tt.wantFlags, opts.FlagList())
			}
			if tt.wantNamed == nil {
				assert.Empty(t, opts.Named)
			} else {
				assert.Equal(t, tt.wantNamed, opts.Named)
			}
			assert.Equal(t, tt.wantRest, string(c.Buffer()[c.Pos():]))
		})
	}
}

func TestParseOptionsErrors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantCode string
		wantLine int
	}{
		{name: "double comma", input: "[a,,b]", wantCode: errors.ErrCodeInvalidOption, wantLine: 1},
		{name: "spaced double comma", input: "[a, ,b]", wantCode: errors.ErrCodeInvalidOption, wantLine: 1},
		{name: "leading comma", input: "[,a]", wantCode: errors.ErrCodeInvalidOption, wantLine: 1},
		{name: "trailing comma", input: "[a,]", wantCode: errors.ErrCodeInvalidOption, wantLine: 1},
		{name: "missing comma", input: `["a" "b"]`, wantCode: errors.ErrCodeInvalidOption, wantLine: 1},
		{name: "duplicate flag", input: "[inf, inf]", wantCode: errors.ErrCodeDuplicate, wantLine: 1},
		{name: "duplicate key", input: "[u=m,\nu=s]", wantCode: errors.ErrCodeDuplicate, wantLine: 2},
		{name: "blank line", input: "[a,\n\nb]", wantCode: errors.ErrCodeParagraph, wantLine: 3},
		{name: "blank line with indent", input: "[a,\n  \t\nb]", wantCode: errors.ErrCodeParagraph, wantLine: 3},
		{name: "unterminated", input: "[a, b", wantCode: errors.ErrCodeUnterminated, wantLine: 1},
		{name: "bad key", input: "[x1=2]", wantCode: errors.ErrCodeInvalidOption, wantLine: 1},
		{name: "missing value", input: "[u=]", wantCode: errors.ErrCodeInvalidOption, wantLine: 1},
		{name: "unterminated quote", input: "[\"abc\n]", wantCode: errors.ErrCodeInvalidOption, wantLine: 1},
		{name: "empty quote", input: `[""]`, wantCode: errors.ErrCodeInvalidOption, wantLine: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCursor("t.stex", []byte(tt.input), 1)
			_, err := ParseOptions(c)
			require.Error(t, err)

			var se *errors.SemtexError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.wantCode, se.Code)
			assert.Equal(t, tt.wantLine, se.Line)
			assert.Equal(t, "t.stex", se.FilePath)
		})
	}
}

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		want     []string
		wantRest string
		wantLine int
	}{
		{name: "none", input: " x", want: nil, wantRest: " x", wantLine: 1},
		{name: "single", input: "{kg} rest", want: []string{"kg"}, wantRest: " rest", wantLine: 1},
		{name: "several", input: "{x^2}{x}{0}{1}.", want: []string{"x^2", "x", "0", "1"}, wantRest: ".", wantLine: 1},
		{name: "nested", input: "{a{b{c}}d}", want: []string{"a{b{c}}d"}, wantRest: "", wantLine: 1},
		{name: "escaped braces", input: `{\{a\}}`, want: []string{`\{a\}`}, wantRest: "", wantLine: 1},
		{name: "group on next line", input: "{a}\n  {b}", want: []string{"a", "b"}, wantRest: "", wantLine: 2},
		{name: "blank line ends list", input: "{a}\n\n{b}", want: []string{"a"}, wantRest: "\n\n{b}", wantLine: 1},
		{name: "newline inside group", input: "{a\r\nb}", want: []string{"a\r\nb"}, wantRest: "", wantLine: 2},
		{name: "empty group", input: "{}", want: []string{""}, wantRest: "", wantLine: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCursor("t.stex", []byte(tt.input), 1)
			args, err := ParseArgs(c)
			require.NoError(t, err)
			assert.Equal(t, tt.want, args)
			assert.Equal(t, tt.wantRest, string(c.Buffer()[c.Pos():]))
			assert.Equal(t, tt.wantLine, c.Line())
		})
	}
}

func TestParseArgsUnterminated(t *testing.T) {
	c := NewCursor("doc.stex", []byte("{a\n{b}"), 7)
	_, err := ParseArgs(c)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeUnterminated, errors.Code(err))
	assert.Contains(t, err.Error(), "doc.stex:8:")
}

func TestParseInvocation(t *testing.T) {
	c := NewCursor("t.stex", []byte("[inf, wrt=t]\n{f(t)}"), 1)
	opts, args, err := ParseInvocation(c)
	require.NoError(t, err)
	assert.True(t, opts.HasFlag("inf"))
	assert.Equal(t, []string{"wrt"}, opts.Keys())
	assert.Equal(t, []string{"f(t)"}, args)
	assert.True(t, c.EOF())
}

func TestTruthValue(t *testing.T) {
	for _, s := range []string{"true", "True", "TRUE", "t", "T", "y", "Y", "yes", "Yes", "1"} {
		v, ok := TruthValue(s)
		assert.True(t, ok, s)
		assert.True(t, v, s)
	}
	for _, s := range []string{"false", "False", "FALSE", "f", "F", "n", "N", "no", "No", "0"} {
		v, ok := TruthValue(s)
		assert.True(t, ok, s)
		assert.False(t, v, s)
	}

	_, ok := TruthValue("YES")
	assert.False(t, ok)

	c := NewCursor("t.stex", nil, 5)
	_, err := ParseBool(c, "inf", "maybe")
	assert.Equal(t, errors.ErrCodeBoolean, errors.Code(err))
}

func TestOrdered(t *testing.T) {
	assert.True(t, Ordered(nil))
	assert.True(t, Ordered([]Substitution{{Start: 0, End: 2}, {Start: 2, End: 5}}))
	assert.False(t, Ordered([]Substitution{{Start: 0, End: 3}, {Start: 2, End: 5}}))
	assert.False(t, Ordered([]Substitution{{Start: 4, End: 5}, {Start: 0, End: 1}}))
}
