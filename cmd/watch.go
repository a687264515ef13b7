package cmd

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/conneroisu/semtex/internal/config"
	"github.com/conneroisu/semtex/internal/logging"
	"github.com/conneroisu/semtex/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:     "watch <file>",
	Aliases: []string{"w"},
	Short:   "Rebuild a document whenever one of its sources changes",
	Long: `Build a root document, then watch its directory tree and rebuild whenever a
file with a recognized extension changes. Changes to the files the build
itself writes are ignored.

Examples:
  semtex watch paper.stex             # Rebuild paper.stex on change
  semtex watch paper.stex --compile   # Also run the compiler after each build
  semtex watch paper.stex -v          # Log every processed file`,
	Args: cobra.ExactArgs(1),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return BindFlags(cmd, buildFlagKeys)
	},
	RunE: runWatch,
}

var watchFlags *BuildFlags

func init() {
	rootCmd.AddCommand(watchCmd)

	watchFlags = AddBuildFlags(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	logger := newLogger(cfg, cmd.ErrOrStderr())

	ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "🔍 Setting up file watching...")

	fileWatcher, err := newDocumentWatcher(ctx, cfg, logger, args[0], out)
	if err != nil {
		return err
	}
	defer fileWatcher.Stop()

	for _, dir := range fileWatcher.WatchList() {
		fmt.Fprintf(out, "   - Watching: %s\n", dir)
	}
	fmt.Fprintln(out, "👀 Watching for changes... (Press Ctrl+C to stop)")

	<-ctx.Done()
	fmt.Fprintln(out, "\n🛑 Stopping file watcher...")
	return nil
}

// newDocumentWatcher runs an initial build of root and returns a started
// watcher that rebuilds it on every debounced batch of changes.
func newDocumentWatcher(ctx context.Context, cfg *config.Config, logger logging.Logger, root string, out io.Writer) (*watcher.FileWatcher, error) {
	fileWatcher, err := watcher.NewFileWatcher(cfg.Watch.Debounce, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	outputs := &generatedSet{}
	exts := pipelineConfig(cfg).Extensions.All()

	fileWatcher.AddFilter(watcher.ExtensionFilter(exts...))
	fileWatcher.AddFilter(watcher.NoEditorTempFilter)
	fileWatcher.AddFilter(watcher.NoGitFilter)
	fileWatcher.AddFilter(outputs.excludes)

	rebuild := func(ctx context.Context) {
		report, err := buildDocument(ctx, cfg, logger, root)
		if report == nil {
			fmt.Fprintf(out, "❌ Build failed: %v\n", err)
			return
		}
		outputs.replace(report.Generated)
		printReport(out, report, err)
	}

	fileWatcher.AddHandler(func(ctx context.Context, events []watcher.ChangeEvent) error {
		fmt.Fprintf(out, "📁 %d file(s) changed\n", len(events))
		for _, event := range events {
			logger.Debug(ctx, "change detected", "file", event.Path, "type", event.Type.String())
		}
		rebuild(ctx)
		return nil
	})

	dir := filepath.Dir(root)
	if err := fileWatcher.AddRecursive(dir); err != nil {
		_ = fileWatcher.Stop()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	rebuild(ctx)

	if err := fileWatcher.Start(ctx); err != nil {
		_ = fileWatcher.Stop()
		return nil, fmt.Errorf("failed to start file watcher: %w", err)
	}
	return fileWatcher, nil
}

// generatedSet holds the absolute paths written by the latest build.
type generatedSet struct {
	mu    sync.RWMutex
	paths map[string]bool
}

func (g *generatedSet) replace(paths []string) {
	set := make(map[string]bool, len(paths))
	for _, p := range paths {
		set[absPath(p)] = true
	}
	g.mu.Lock()
	g.paths = set
	g.mu.Unlock()
}

// excludes is a watcher.FileFilter rejecting generated paths.
func (g *generatedSet) excludes(path string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return !g.paths[absPath(path)]
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}
