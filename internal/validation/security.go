// Package validation guards the external commands SemTeX runs and the files
// it is configured to read.
package validation

import (
	"fmt"
	"path/filepath"
	"strings"
)

// shellMetacharacters may never appear in a compiler argument. The
// backslash is included so arguments cannot smuggle TeX control sequences
// such as \write18 onto the command line.
const shellMetacharacters = ";&|$`()<>\\\"'"

// systemBinDirs are the only absolute locations an argument may name.
var systemBinDirs = []string{"/usr/bin/", "/bin/", "/usr/local/bin/"}

// ValidateArgument rejects arguments carrying shell metacharacters, parent
// directory references or absolute paths outside the system binary
// directories.
func ValidateArgument(arg string) error {
	if i := strings.IndexAny(arg, shellMetacharacters); i >= 0 {
		return fmt.Errorf("contains dangerous character: %c", arg[i])
	}

	if strings.Contains(arg, "..") {
		return fmt.Errorf("contains path traversal: %s", arg)
	}

	if filepath.IsAbs(arg) && !hasAnyPrefix(arg, systemBinDirs) {
		return fmt.Errorf("absolute path not allowed: %s", arg)
	}

	return nil
}

// ValidateArguments applies ValidateArgument to each of args and reports
// the first offending position.
func ValidateArguments(args []string) error {
	for i, arg := range args {
		if err := ValidateArgument(arg); err != nil {
			return fmt.Errorf("argument %d (%q): %w", i, arg, err)
		}
	}
	return nil
}

// ValidateCommand validates a command name against an allowlist
func ValidateCommand(command string, allowedCommands map[string]bool) error {
	switch {
	case command == "":
		return fmt.Errorf("command cannot be empty")
	case !allowedCommands[command]:
		return fmt.Errorf("command '%s' is not allowed", command)
	}

	if err := ValidateArgument(command); err != nil {
		return fmt.Errorf("invalid command '%s': %w", command, err)
	}
	return nil
}

// ValidateFileExtension checks filename's extension, case-insensitively,
// against allowedExtensions.
func ValidateFileExtension(filename string, allowedExtensions []string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	ext := filepath.Ext(filename)
	if ext == "" {
		return fmt.Errorf("file must have an extension")
	}

	for _, allowed := range allowedExtensions {
		if strings.EqualFold(ext, allowed) {
			return nil
		}
	}
	return fmt.Errorf("file extension '%s' is not allowed", strings.ToLower(ext))
}

// SanitizeInput drops NUL and other control characters except tab, line
// feed and carriage return. Compiler transcripts pass through it before
// they are logged.
func SanitizeInput(input string) string {
	return strings.Map(func(r rune) rune {
		if r >= 32 || r == '\t' || r == '\n' || r == '\r' {
			return r
		}
		return -1
	}, input)
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
