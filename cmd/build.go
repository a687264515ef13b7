package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/conneroisu/semtex/internal/compiler"
	"github.com/conneroisu/semtex/internal/config"
	"github.com/conneroisu/semtex/internal/expand"
	"github.com/conneroisu/semtex/internal/logging"
	"github.com/conneroisu/semtex/internal/pipeline"
	"github.com/conneroisu/semtex/internal/replacer"
	"github.com/conneroisu/semtex/internal/symbols"
	"github.com/conneroisu/semtex/internal/validation"
)

var buildCmd = &cobra.Command{
	Use:     "build <file>",
	Aliases: []string{"b"},
	Short:   "Expand a document and every file it includes",
	Long: `Expand a root document and every file reached from it through \include
or \input. Each .stex or .sex file is written next to its source with a .tex
extension; .tex files are only scanned for further inclusions.

When any file fails, no further output is written and the files generated
so far are removed (unless compiler.clean_on_error is false).

Examples:
  semtex build paper.stex             # Expand paper.stex and its inclusions
  semtex build paper.stex -j 8        # Use eight workers
  semtex build paper.stex -s my.toml  # Add the symbols defined in my.toml
  semtex build paper.stex --compile   # Run pdflatex on paper.tex afterwards`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return BindFlags(cmd, buildFlagKeys)
	},
	RunE: runBuild,
}

var buildFlags *BuildFlags

func init() {
	rootCmd.AddCommand(buildCmd)

	buildFlags = AddBuildFlags(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	logger := newLogger(cfg, cmd.ErrOrStderr())
	report, err := buildDocument(commandContext(cmd), cfg, logger, args[0])
	if report != nil {
		printReport(cmd.OutOrStdout(), report, err)
	}
	return err
}

// buildDocument runs the pipeline over root and, when enabled, the compiler
// over the root output. On failure the generated files are removed if the
// configuration asks for it.
func buildDocument(ctx context.Context, cfg *config.Config, logger logging.Logger, root string) (*pipeline.Report, error) {
	engine, err := newEngine(cfg)
	if err != nil {
		return nil, err
	}

	pcfg := pipelineConfig(cfg)
	report, err := pipeline.New(engine, pcfg, logger).Run(ctx, root)
	if err == nil && cfg.Compiler.Enabled {
		err = compileOutput(ctx, cfg, logger, pcfg.Extensions, root)
	}

	if err != nil && cfg.Compiler.CleanOnError && report != nil {
		if rmErr := report.RemoveGenerated(); rmErr != nil {
			logger.Warn(ctx, rmErr, "failed to remove generated files")
		} else if len(report.Generated) > 0 {
			logger.Info(ctx, "removed generated files", "count", len(report.Generated))
		}
	}

	return report, err
}

// newEngine builds the expansion engine, merging the configured symbol
// tables into the built-in direct table.
func newEngine(cfg *config.Config) (*expand.Engine, error) {
	extra, err := symbols.LoadFiles(cfg.Symbols.Files)
	if err != nil {
		return nil, err
	}
	return expand.New(replacer.Default(extra), cfg.Build.MaxDepth), nil
}

func pipelineConfig(cfg *config.Config) pipeline.Config {
	return pipeline.Config{
		Workers:      cfg.Build.Workers,
		PollInterval: cfg.Build.PollInterval,
		Dedup:        cfg.Build.Dedup,
		Verbose:      cfg.Build.Verbose,
		Extensions: pipeline.Extensions{
			Source:      cfg.Build.SourceExtensions,
			Passthrough: cfg.Build.PassthroughExtension,
		},
	}
}

func compileOutput(ctx context.Context, cfg *config.Config, logger logging.Logger, exts pipeline.Extensions, root string) error {
	if exts.Classify(root) == pipeline.KindUnknown {
		logger.Warn(ctx, nil, "root has no recognized extension, skipping compile", "file", root)
		return nil
	}
	target := exts.OutputPath(root)

	c := compiler.New(cfg.Compiler.Command, cfg.Compiler.Args)
	op := logging.StartOperation(logger, "compile")
	output, err := c.Compile(ctx, target)
	if err != nil {
		op.EndWithError(ctx, err)
		if len(output) > 0 {
			logger.Info(ctx, "compiler output", "output", validation.SanitizeInput(string(output)))
		}
		return err
	}
	op.End(ctx, "compiler", c.Command(), "file", target)
	return nil
}

func printReport(w io.Writer, report *pipeline.Report, err error) {
	if err != nil {
		fmt.Fprintf(w, "❌ Build failed after %d files\n", report.Processed)
		return
	}

	fmt.Fprintf(w, "✅ Processed %d files, wrote %d", report.Processed, len(report.Generated))
	if report.Workers > 0 {
		fmt.Fprintf(w, " using %d workers", report.Workers)
	}
	fmt.Fprintf(w, " in %s\n", report.Duration.Round(time.Millisecond))
	for _, path := range report.Generated {
		fmt.Fprintf(w, "  • %s\n", path)
	}
	if n := len(report.Warnings); n > 0 {
		fmt.Fprintf(w, "⚠️  %d warnings\n", n)
	}
}
