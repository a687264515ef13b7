package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/conneroisu/semtex/internal/errors"
	"github.com/conneroisu/semtex/internal/expand"
	"github.com/conneroisu/semtex/internal/logging"
)

var expandCmd = &cobra.Command{
	Use:     "expand [file]",
	Aliases: []string{"e"},
	Short:   "Expand a single buffer to stdout",
	Long: `Expand one file, or standard input when no file or "-" is given, and
write the result to standard output. Inclusion directives are left as they
are and never followed.

Examples:
  semtex expand notes.stex            # Print the expanded file
  echo '5\unit{m}' | semtex expand   # Expand standard input`,
	Args: cobra.MaximumNArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return BindFlags(cmd, expandFlagKeys)
	},
	RunE: runExpand,
}

var expandFlagKeys = map[string]string{
	"max-depth": "build.max_depth",
	"symbols":   "symbols.files",
}

var (
	expandMaxDepth int
	expandSymbols  []string
)

func init() {
	rootCmd.AddCommand(expandCmd)

	expandCmd.Flags().IntVar(&expandMaxDepth, "max-depth", 64, "Maximum recursion depth inside command arguments")
	expandCmd.Flags().StringSliceVarP(&expandSymbols, "symbols", "s", nil, "Symbol table files (TOML or YAML)")
	AddFlagValidation(expandCmd, "max-depth", ValidatePositive)
}

func runExpand(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	logger := newLogger(cfg, cmd.ErrOrStderr()).WithComponent("expand")
	ctx := commandContext(cmd)

	name := "<stdin>"
	var buf []byte
	if len(args) == 1 && args[0] != "-" {
		name = args[0]
		buf, err = os.ReadFile(name)
		if err != nil {
			return errors.NewIOError(errors.ErrCodeRead, "failed to read "+name, err).WithLocation(name, 0)
		}
	} else {
		buf, err = io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return errors.NewIOError(errors.ErrCodeRead, "failed to read standard input", err)
		}
	}

	engine, err := newEngine(cfg)
	if err != nil {
		return err
	}

	result, err := engine.Expand(name, buf, expand.Options{Rewrite: true})
	if err != nil {
		return err
	}
	for _, d := range result.Warnings {
		logging.LogDiagnostic(logger, ctx, d)
	}

	w := bufio.NewWriter(cmd.OutOrStdout())
	if _, err := expand.WriteTo(w, buf, result.Substitutions, result.Style()); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return w.Flush()
}
