// Package compiler runs the external typesetting compiler over a generated
// document.
package compiler

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"

	"github.com/conneroisu/semtex/internal/errors"
	"github.com/conneroisu/semtex/internal/validation"
)

// AllowedCommands is the allowlist of compilers that may be run.
var AllowedCommands = map[string]bool{
	"pdflatex": true,
	"xelatex":  true,
	"lualatex": true,
	"latex":    true,
	"latexmk":  true,
}

// LaTeXCompiler runs a TeX engine on a single document
type LaTeXCompiler struct {
	command string
	args    []string
}

// New creates a compiler that runs command with args followed by the
// document name.
func New(command string, args []string) *LaTeXCompiler {
	return &LaTeXCompiler{
		command: command,
		args:    append([]string(nil), args...),
	}
}

// Command returns the compiler executable name.
func (c *LaTeXCompiler) Command() string { return c.command }

// Compile runs the compiler on file from the file's directory, so auxiliary
// output lands next to the document. The combined output is returned.
func (c *LaTeXCompiler) Compile(ctx context.Context, file string) ([]byte, error) {
	dir, name := filepath.Split(file)
	if dir == "" {
		dir = "."
	}

	// Validate command and arguments to prevent command injection
	if err := c.validate(name); err != nil {
		return nil, errors.NewSecurityError(errors.ErrCodeCommandInvalid,
			fmt.Sprintf("command validation failed: %v", err))
	}

	args := append(append([]string(nil), c.args...), name)
	cmd := exec.CommandContext(ctx, c.command, args...)
	cmd.Dir = dir

	output, err := cmd.CombinedOutput()
	if err != nil {
		// Check if error is due to context cancellation (timeout)
		if ctx.Err() != nil {
			return output, fmt.Errorf("%s timed out: %w", c.command, ctx.Err())
		}
		return output, fmt.Errorf("%s failed: %w\nOutput: %s", c.command, err, output)
	}

	return output, nil
}

// validate validates the command and arguments to prevent command injection
func (c *LaTeXCompiler) validate(name string) error {
	if err := validation.ValidateCommand(c.command, AllowedCommands); err != nil {
		return err
	}

	if err := validation.ValidateArguments(c.args); err != nil {
		return err
	}
	if err := validation.ValidateArgument(name); err != nil {
		return fmt.Errorf("invalid document name '%s': %w", name, err)
	}
	return nil
}
