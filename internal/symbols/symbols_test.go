package symbols

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/semtex/internal/errors"
)

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatTOML, DetectFormat("symbols.toml"))
	assert.Equal(t, FormatYAML, DetectFormat("symbols.yaml"))
	assert.Equal(t, FormatYAML, DetectFormat("dir/Symbols.YML"))
	assert.Equal(t, FormatTOML, DetectFormat("symbols"))
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		format  Format
		want    map[string]string
		wantErr bool
	}{
		{
			name: "toml",
			content: `[symbols]
"'z" = '\zeta'
"\\R" = '\mathbb{R}'
`,
			format: FormatTOML,
			want:   map[string]string{"'z": `\zeta`, `\R`: `\mathbb{R}`},
		},
		{
			name: "yaml",
			content: `symbols:
  "'z": '\zeta'
  "~=": '\approx'
`,
			format: FormatYAML,
			want:   map[string]string{"'z": `\zeta`, "~=": `\approx`},
		},
		{
			name:    "empty document",
			content: "",
			format:  FormatTOML,
			want:    map[string]string{},
		},
		{
			name:    "malformed toml",
			content: "[symbols\n",
			format:  FormatTOML,
			wantErr: true,
		},
		{
			name:    "malformed yaml",
			content: "symbols: [unclosed\n",
			format:  FormatYAML,
			wantErr: true,
		},
		{
			name: "reserved key",
			content: `[symbols]
"\\include" = "x"
`,
			format:  FormatTOML,
			wantErr: true,
		},
		{
			name: "key with whitespace",
			content: `[symbols]
"a b" = "x"
`,
			format:  FormatTOML,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.content), tt.format)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, errors.ErrCodeConfigInvalid, errors.Code(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateKey(t *testing.T) {
	valid := []string{"'z", `\R`, "~=", "+-"}
	for _, key := range valid {
		assert.NoError(t, ValidateKey(key), key)
	}

	invalid := []string{"", " a", "a\tb", "%x", "{x", "[x", `\input`, "\x7f"}
	for _, key := range invalid {
		assert.Error(t, ValidateKey(key), key)
	}
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.toml")
	override := filepath.Join(dir, "override.yaml")

	require.NoError(t, os.WriteFile(base, []byte("[symbols]\n\"'z\" = 'zeta'\n\"+-\" = '\\pm'\n"), 0o644))
	require.NoError(t, os.WriteFile(override, []byte("symbols:\n  \"'z\": '\\zeta'\n"), 0o644))

	got, err := LoadFiles([]string{base, override})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"'z": `\zeta`, "+-": `\pm`}, got)
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFile(filepath.Join(dir, "missing.toml"))
	require.Error(t, err)
	assert.True(t, errors.IsIOError(err))

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[symbols]\n\"%\" = 'x'\n"), 0o644))

	_, err = LoadFile(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), bad)
}
