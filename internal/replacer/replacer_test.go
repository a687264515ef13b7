package replacer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/semtex/internal/errors"
	"github.com/conneroisu/semtex/internal/scan"
)

// apply runs r on input, which must start with key.
func apply(t *testing.T, r *Replacer, key, input string) (scan.Substitution, *scan.Cursor, error) {
	t.Helper()
	c := scan.NewCursor("doc.stex", []byte(input), 1)
	sub, err := r.Apply(key, c)
	return sub, c, err
}

func TestApplyScenarios(t *testing.T) {
	tests := []struct {
		name  string
		r     *Replacer
		key   string
		input string
		want  string
	}{
		{
			name:  "unit",
			r:     NewUnit(),
			key:   `\unit`,
			input: `\unit{kg}`,
			want:  `\,\mathrm{kg}`,
		},
		{
			name:  "integral with all bounds",
			r:     NewIntegral(),
			key:   `\integral`,
			input: `\integral{x^2}{x}{0}{1}`,
			want:  `\int_{0}^{1} x^2\,\mathrm{d}x`,
		},
		{
			name:  "integral over the real line",
			r:     NewIntegral(),
			key:   `\integral`,
			input: `\integral[inf]{f(x)}`,
			want:  `\int_{-\infty}^{\infty} f(x)`,
		},
		{
			name:  "arrow",
			r:     NewArrow(),
			key:   "<->",
			input: "<-> b",
			want:  `\leftrightarrow`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub, _, err := apply(t, tt.r, tt.key, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sub.Text)
			assert.Equal(t, 0, sub.Start)
		})
	}
}

func TestApplySpan(t *testing.T) {
	sub, c, err := apply(t, NewUnit(), `\unit`, "\\unit\n  {m/s} and more")
	require.NoError(t, err)
	assert.Equal(t, 0, sub.Start)
	assert.Equal(t, len("\\unit\n  {m/s}"), sub.End)
	assert.Equal(t, 1, sub.Line)
	assert.Equal(t, 2, c.Line())
	assert.Equal(t, sub.End, c.Pos())
}

func TestUnit(t *testing.T) {
	sub, _, err := apply(t, NewUnit(), `\unit`, `\unit[u=N\cdot m]`)
	require.NoError(t, err)
	assert.Equal(t, `\,\mathrm{N\cdot m}`, sub.Text)

	sub, _, err = apply(t, NewUnit(), `\unit`, `\unit{\unit{m}}`)
	require.NoError(t, err)
	assert.Equal(t, `\,\mathrm{\unit{m}}`, sub.Text, "nested commands are left for the recursive pass")

	for _, input := range []string{`\unit{a}{b}`, `\unit`, `\unit[u=m]{m}`, `\unit[v=m]`, `\unit[si]{m}`} {
		_, _, err := apply(t, NewUnit(), `\unit`, input)
		require.Error(t, err, input)
		assert.Equal(t, errors.ErrCodeArity, errors.Code(err), input)
		assert.Contains(t, err.Error(), "doc.stex:1:", input)
	}
}

func TestUnitGrammarErrorNamesCommand(t *testing.T) {
	_, _, err := apply(t, NewUnit(), `\unit`, `\unit{kg`)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeUnterminated, errors.Code(err))
	assert.Contains(t, err.Error(), `in \unit`)
}

func TestIntegral(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "expression only", input: `\integral{f}`, want: `\int f`},
		{name: "with variable", input: `\integral{f}{t}`, want: `\int f\,\mathrm{d}t`},
		{name: "lower only with inf", input: `\integral[inf]{f}{t}{0}`, want: `\int_{0}^{\infty} f\,\mathrm{d}t`},
		{name: "named arguments", input: `\integral[expr=g(s), wrt=s, lower=a, upper=b]`, want: `\int_{a}^{b} g(s)\,\mathrm{d}s`},
		{name: "from and to aliases", input: `\integral[from=a, to=b]{g}`, want: `\int_{a}^{b} g`},
		{name: "inf as named boolean", input: `\integral[inf=yes]{f}`, want: `\int_{-\infty}^{\infty} f`},
		{name: "inf false", input: `\integral[inf=0]{f}`, want: `\int f`},
		{name: "limits", input: `\integral[limits]{f}{x}{0}{1}`, want: `\int\limits_{0}^{1} f\,\mathrm{d}x`},
		{name: "mirror", input: `\integral[mirror]{f}{x}{C}`, want: `\int_{C}^{C} f\,\mathrm{d}x`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub, c, err := apply(t, NewIntegral(), `\integral`, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sub.Text)
			assert.Empty(t, c.Warnings())
		})
	}
}

func TestBoundsWarnings(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		warn  string
	}{
		{
			name:  "inf with both bounds",
			input: `\integral[inf]{f}{x}{0}{1}`,
			want:  `\int_{0}^{1} f\,\mathrm{d}x`,
			warn:  `"inf" ignored`,
		},
		{
			name:  "mirror with inf",
			input: `\integral[inf, mirror]{f}`,
			want:  `\int_{-\infty}^{\infty} f`,
			warn:  `"mirror" ignored`,
		},
		{
			name:  "mirror with upper bound",
			input: `\integral[mirror]{f}{x}{0}{1}`,
			want:  `\int_{0}^{1} f\,\mathrm{d}x`,
			warn:  "upper bound",
		},
		{
			name:  "mirror without lower bound",
			input: `\integral[mirror]{f}`,
			want:  `\int f`,
			warn:  "no lower bound",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub, c, err := apply(t, NewIntegral(), `\integral`, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sub.Text)
			require.Len(t, c.Warnings(), 1)
			assert.Contains(t, c.Warnings()[0].Message, tt.warn)
		})
	}
}

func TestBoundsErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  string
	}{
		{name: "too many", input: `\integral{a}{b}{c}{d}{e}`, code: errors.ErrCodeArity},
		{name: "missing expression", input: `\integral[wrt=x]`, code: errors.ErrCodeMissing},
		{name: "duplicate expression", input: `\integral[expr=g]{f}`, code: errors.ErrCodeDuplicate},
		{name: "duplicate lower alias", input: `\integral[lower=0, from=1]{f}`, code: errors.ErrCodeDuplicate},
		{name: "duplicate inf", input: `\integral[inf, inf=true]{f}`, code: errors.ErrCodeDuplicate},
		{name: "unknown option", input: `\integral[over=x]{f}`, code: errors.ErrCodeInvalidOption},
		{name: "unknown flag", input: `\integral[wide]{f}`, code: errors.ErrCodeInvalidOption},
		{name: "bad boolean", input: `\integral[inf=maybe]{f}`, code: errors.ErrCodeBoolean},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := apply(t, NewIntegral(), `\integral`, tt.input)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.Code(err))
			assert.True(t, errors.IsParseError(err))
		})
	}
}

func TestSummation(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "full", input: `\summ{a_n}{n}{0}{N}`, want: `\sum_{n=0}^{N} a_n`},
		{name: "index only", input: `\summ{a_n}{n}`, want: `\sum_{n} a_n`},
		{name: "expression only", input: `\summ{a_n}`, want: `\sum a_n`},
		{name: "named", input: `\summ[wrt=k, from=1, to=\infty]{1/k^2}`, want: `\sum_{k=1}^{\infty} 1/k^2`},
		{name: "inf", input: `\summ[inf]{a_n}{n}`, want: `\sum_{n=-\infty}^{\infty} a_n`},
		{name: "inf without index", input: `\summ[inf]{a_n}`, want: `\sum_{-\infty}^{\infty} a_n`},
		{name: "limits", input: `\summ[limits]{a_n}{n}{1}{N}`, want: `\sum\limits_{n=1}^{N} a_n`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub, _, err := apply(t, NewSummation(), `\summ`, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sub.Text)
		})
	}

	_, _, err := apply(t, NewSummation(), `\summ`, `\summ[wrt=n]{a}{k}`)
	assert.Equal(t, errors.ErrCodeDuplicate, errors.Code(err))
}

func TestDerivative(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "variable only", input: `\deriv{x}`, want: `\frac{\mathrm{d}}{\mathrm{d}x}`},
		{name: "expression and variable", input: `\deriv{f}{x}`, want: `\frac{\mathrm{d}f}{\mathrm{d}x}`},
		{name: "with order", input: `\deriv{y}{t}{2}`, want: `\frac{\mathrm{d}^{2}y}{\mathrm{d}t^{2}}`},
		{name: "named", input: `\deriv[of=y, wrt=t, n=3]`, want: `\frac{\mathrm{d}^{3}y}{\mathrm{d}t^{3}}`},
		{name: "partial", input: `\deriv[partial]{u}{x}`, want: `\frac{\partial u}{\partial x}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub, _, err := apply(t, NewDerivative(), `\deriv`, tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sub.Text)
		})
	}

	errorCases := map[string]string{
		`\deriv`:                errors.ErrCodeMissing,
		`\deriv[of=f]`:          errors.ErrCodeMissing,
		`\deriv{a}{b}{c}{d}`:    errors.ErrCodeArity,
		`\deriv[wrt=x]{t}`:      errors.ErrCodeDuplicate,
		`\deriv[by=x]{t}`:       errors.ErrCodeInvalidOption,
		`\deriv[total]{f}{x}`:   errors.ErrCodeInvalidOption,
		`\deriv[n=2]{f}{x}{3}`:  errors.ErrCodeDuplicate,
		`\deriv[of=g]{f}{x}`:    errors.ErrCodeDuplicate,
		`\deriv[of=g, of=h]{x}`: errors.ErrCodeDuplicate,
	}
	for input, code := range errorCases {
		_, _, err := apply(t, NewDerivative(), `\deriv`, input)
		require.Error(t, err, input)
		assert.Equal(t, code, errors.Code(err), input)
	}
}

func TestPiecewise(t *testing.T) {
	input := "\\begin{piecewise}{f(x)}\n" +
		"  \\piece{0}{x < 0}\n" +
		"\n" +
		"  % positive half\n" +
		"  \\piece{x}{x \\geq 0}\n" +
		"  \\rightbrace\n" +
		"\\end{piecewise} tail"

	sub, c, err := apply(t, NewPiecewise(), `\begin{piecewise}`, input)
	require.NoError(t, err)
	assert.Equal(t,
		"f(x) = \\left\\{\\begin{array}{l l}\n"+
			"\t0, & x < 0 \\\\\n"+
			"\tx, & x \\geq 0 \\\\\n"+
			"\\end{array}\\right\\}",
		sub.Text)
	assert.Equal(t, " tail", string(c.Buffer()[c.Pos():]))
	assert.Equal(t, 7, c.Line())

	sub, _, err = apply(t, NewPiecewise(), `\begin{piecewise}`,
		"\\begin{piecewise}\n\\piece{1}\n\\end{piecewise}")
	require.NoError(t, err)
	assert.Equal(t, "\\left\\{\\begin{array}{l l}\n\t1, & \\\\\n\\end{array}\\right.", sub.Text)
}

func TestPiecewiseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  string
	}{
		{name: "unterminated", input: "\\begin{piecewise}\n\\piece{1}{x}\n", code: errors.ErrCodeUnterminated},
		{name: "right brace twice", input: "\\begin{piecewise}\n\\rightbrace\\rightbrace\n\\end{piecewise}", code: errors.ErrCodeDuplicate},
		{name: "stray text", input: "\\begin{piecewise}\nx\n\\end{piecewise}", code: errors.ErrCodeMissing},
		{name: "piece without arguments", input: "\\begin{piecewise}\n\\piece\n\\end{piecewise}", code: errors.ErrCodeArity},
		{name: "piece with three arguments", input: "\\begin{piecewise}\n\\piece{a}{b}{c}\n\\end{piecewise}", code: errors.ErrCodeArity},
		{name: "piece with options", input: "\\begin{piecewise}\n\\piece[k=v]{a}\n\\end{piecewise}", code: errors.ErrCodeInvalidOption},
		{name: "block with flags", input: "\\begin{piecewise}[big]\n\\end{piecewise}", code: errors.ErrCodeInvalidOption},
		{name: "two names", input: "\\begin{piecewise}{f}{g}\n\\end{piecewise}", code: errors.ErrCodeArity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := apply(t, NewPiecewise(), `\begin{piecewise}`, tt.input)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.Code(err))
		})
	}
}

func TestDirect(t *testing.T) {
	r := NewDirect(nil)
	for key, want := range map[string]string{
		"'a":    `\alpha`,
		"'W":    `\Omega`,
		"!=":    `\neq`,
		"<==>":  `\Leftrightarrow`,
		`\sinc`: `\mathrm{sinc}`,
	} {
		sub, c, err := apply(t, r, key, key+" ")
		require.NoError(t, err)
		assert.Equal(t, want, sub.Text)
		assert.Equal(t, len(key), c.Pos())
	}
}
