package replacer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryLongestMatch(t *testing.T) {
	reg := Default(nil)

	tests := []struct {
		name    string
		input   string
		pos     int
		wantKey string
		wantOK  bool
	}{
		{name: "three byte arrow beats two byte", input: "a <-> b", pos: 2, wantKey: "<->", wantOK: true},
		{name: "two byte arrow", input: "a <- b", pos: 2, wantKey: "<-", wantOK: true},
		{name: "long direct arrow", input: "x <--> y", pos: 2, wantKey: "<-->", wantOK: true},
		{name: "direct wins shared key", input: "x <= y", pos: 2, wantKey: "<=", wantOK: true},
		{name: "double arrow", input: "x <=> y", pos: 2, wantKey: "<=>", wantOK: true},
		{name: "no boundary", input: "x <-y", pos: 2, wantOK: false},
		{name: "command followed by brace", input: `\unit{kg}`, pos: 0, wantKey: `\unit`, wantOK: true},
		{name: "command followed by bracket", input: `\integral[inf]{f}`, pos: 0, wantKey: `\integral`, wantOK: true},
		{name: "command prefix of longer name", input: `\units{kg}`, pos: 0, wantOK: false},
		{name: "summation is not integral", input: `\summation`, pos: 0, wantOK: false},
		{name: "command followed by symbol", input: `\sinc(x)`, pos: 0, wantKey: `\sinc`, wantOK: true},
		{name: "command at end of buffer", input: `f = \sinc`, pos: 4, wantKey: `\sinc`, wantOK: true},
		{name: "greek", input: "'a b", pos: 0, wantKey: "'a", wantOK: true},
		{name: "greek needs boundary", input: "'ab", pos: 0, wantOK: false},
		{name: "piecewise block", input: "\\begin{piecewise}\n", pos: 0, wantKey: `\begin{piecewise}`, wantOK: true},
		{name: "out of range", input: "abc", pos: 3, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := reg.Match([]byte(tt.input), tt.pos)
			require.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantKey, m.Key)
			}
		})
	}
}

func TestRegistrySharedKeyResolution(t *testing.T) {
	reg := Default(nil)
	m, ok := reg.Match([]byte("a <= b"), 2)
	require.True(t, ok)
	assert.Equal(t, KindDirect, m.Replacer.Kind())

	text, ok := m.Replacer.Replacement("<=")
	require.True(t, ok)
	assert.Equal(t, `\leq`, text)

	// Registered first wins regardless of family.
	shadow := NewDirect(map[string]string{"->": `\to`})
	m, ok = NewRegistry(shadow, NewArrow()).Match([]byte("a -> b"), 2)
	require.True(t, ok)
	assert.Equal(t, KindDirect, m.Replacer.Kind())

	m, ok = NewRegistry(NewArrow(), shadow).Match([]byte("a -> b"), 2)
	require.True(t, ok)
	assert.Equal(t, KindArrow, m.Replacer.Kind())
}

func TestDefaultRegistryFamilies(t *testing.T) {
	reg := Default(map[string]string{`\R`: `\mathbb{R}`, "'a": `\upalpha`})

	var kinds []Kind
	for _, r := range reg.Replacers() {
		kinds = append(kinds, r.Kind())
	}
	assert.Equal(t, []Kind{
		KindDirect, KindArrow, KindUnit, KindIntegral, KindSummation, KindDerivative, KindPiecewise,
	}, kinds)

	direct := reg.Replacers()[0]
	text, ok := direct.Replacement(`\R`)
	require.True(t, ok)
	assert.Equal(t, `\mathbb{R}`, text)
	text, _ = direct.Replacement("'a")
	assert.Equal(t, `\upalpha`, text)

	m, ok := reg.Match([]byte(`\R^n`), 0)
	require.True(t, ok)
	assert.Equal(t, `\R`, m.Key)
}

func TestReplacerKeysOrdered(t *testing.T) {
	keys := NewArrow().Keys()
	for i := 1; i < len(keys); i++ {
		assert.GreaterOrEqual(t, len(keys[i-1]), len(keys[i]))
	}
}

func TestRecurse(t *testing.T) {
	assert.False(t, NewDirect(nil).Recurse())
	assert.False(t, NewArrow().Recurse())
	assert.True(t, NewUnit().Recurse())
	assert.True(t, NewIntegral().Recurse())
	assert.True(t, NewSummation().Recurse())
	assert.False(t, NewDerivative().Recurse())
	assert.True(t, NewPiecewise().Recurse())
}

func TestBoundary(t *testing.T) {
	buf := []byte(`\unit_x`)
	assert.True(t, Boundary(buf, 5, `\unit`))
	assert.False(t, Boundary([]byte("->x"), 2, "->"))
	assert.True(t, Boundary([]byte("->\tx"), 2, "->"))
	assert.True(t, Boundary([]byte("->"), 2, "->"))
}

func TestKindStrings(t *testing.T) {
	assert.Equal(t, "summation", KindSummation.String())
	assert.Equal(t, "unknown", Kind(42).String())
	assert.NotEmpty(t, KindPiecewise.Description())
}
