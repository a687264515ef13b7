// Package symbols loads user symbol tables: extra trigger keys and the text
// that replaces them, merged into the built-in direct replacements.
package symbols

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/semtex/internal/errors"
)

// Format is the encoding of a symbol table file.
type Format int

const (
	FormatAuto Format = iota
	FormatTOML
	FormatYAML
)

// String returns the string representation of the format
func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	default:
		return "auto"
	}
}

// file is the document layout shared by both encodings:
//
//	[symbols]
//	"'z" = '\zeta'
type file struct {
	Symbols map[string]string `toml:"symbols" yaml:"symbols"`
}

// reserved keys cannot be redefined.
var reserved = []string{`\include`, `\input`}

// DetectFormat determines the format from the file extension. Unknown
// extensions are read as TOML.
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// Parse decodes a symbol table and validates its keys.
func Parse(content []byte, format Format) (map[string]string, error) {
	var f file

	switch format {
	case FormatAuto, FormatTOML:
		if err := toml.Unmarshal(content, &f); err != nil {
			return nil, parseError("TOML", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(content, &f); err != nil {
			return nil, parseError("YAML", err)
		}
	default:
		return nil, errors.NewConfigError(errors.ErrCodeConfigInvalid,
			fmt.Sprintf("unsupported symbol table format: %s", format))
	}

	keys := make([]string, 0, len(f.Symbols))
	for key := range f.Symbols {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if err := ValidateKey(key); err != nil {
			return nil, errors.NewConfigError(errors.ErrCodeConfigInvalid,
				fmt.Sprintf("invalid symbol %q: %v", key, err))
		}
	}

	if f.Symbols == nil {
		f.Symbols = make(map[string]string)
	}
	return f.Symbols, nil
}

// LoadFile reads and parses one symbol table.
func LoadFile(path string) (map[string]string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeRead, "could not read symbol table "+path, err)
	}

	table, err := Parse(content, DetectFormat(path))
	if err != nil {
		var se *errors.SemtexError
		if stderrors.As(err, &se) {
			se.FilePath = path
		}
		return nil, err
	}
	return table, nil
}

// LoadFiles merges the tables in order. A key defined in a later file
// overrides an earlier definition.
func LoadFiles(paths []string) (map[string]string, error) {
	merged := make(map[string]string)
	for _, path := range paths {
		table, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		for key, text := range table {
			merged[key] = text
		}
	}
	return merged, nil
}

// ValidateKey checks that key can be matched by the dispatcher: non-empty,
// free of whitespace, and not starting with a comment or group character.
func ValidateKey(key string) error {
	if key == "" {
		return fmt.Errorf("empty key")
	}
	if strings.ContainsAny(key, " \t\r\n") {
		return fmt.Errorf("key contains whitespace")
	}
	switch key[0] {
	case '%', '{', '}', '[', ']':
		return fmt.Errorf("key cannot start with %q", key[0])
	}
	if key[0] < 0x21 || key[0] > 0x7e {
		return fmt.Errorf("key must start with a printable ASCII character")
	}
	for _, r := range reserved {
		if key == r {
			return fmt.Errorf("%s is reserved for inclusion", r)
		}
	}
	return nil
}

func parseError(format string, err error) error {
	e := errors.NewConfigError(errors.ErrCodeConfigInvalid, format+" parse error")
	e.Cause = err
	return e
}
