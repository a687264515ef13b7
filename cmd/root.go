// Package cmd provides the command-line interface for SemTeX.
//
// Configuration System:
//
//	Settings are read from several sources with clear precedence:
//	1. Command-line flags (--config, --workers, etc.) - highest priority
//	2. SEMTEX_CONFIG_FILE environment variable - custom config file path
//	3. Individual environment variables (SEMTEX_BUILD_WORKERS, etc.)
//	4. Configuration files (.semtex.yml) - lowest priority
//
// Environment Variables:
//
//	SEMTEX_CONFIG_FILE: Path to custom configuration file
//	SEMTEX_BUILD_WORKERS: Override the worker pool size
//	SEMTEX_COMPILER_ENABLED: Run the typesetting compiler after a build
//	And the rest following the SEMTEX_<SECTION>_<OPTION> pattern
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/semtex/internal/config"
	"github.com/conneroisu/semtex/internal/logging"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "semtex",
	Short: "A macro-expansion preprocessor for LaTeX",
	Long: `SemTeX rewrites shorthand commands in .stex and .sex files into plain
LaTeX and writes the result next to the source as a .tex file.

Files pulled in with \include or \input are processed too, in parallel once
more than one is waiting.

Quick Start:
  semtex build paper.stex         Expand a document and everything it includes
  semtex expand < notes.stex      Expand one buffer to stdout
  semtex commands                 List the recognized commands
  semtex watch paper.stex         Rebuild whenever a source changes

Command Aliases (for faster typing):
  build (b), expand (e), commands (c), watch (w)`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default is .semtex.yml, can also use SEMTEX_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
}

// initConfig points viper at the configuration file.
//
// Configuration Loading Priority (highest to lowest):
//  1. --config flag
//  2. SEMTEX_CONFIG_FILE environment variable
//  3. .semtex.yml in the current directory
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("SEMTEX_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".semtex")
	}

	if err := config.BindEnv(viper.GetViper()); err != nil {
		fmt.Fprintln(os.Stderr, "Warning:", err)
	}

	// A missing file is fine; defaults apply
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig reads the merged configuration and records the positional
// arguments as target files.
func loadConfig(args []string) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg.TargetFiles = args
	return cfg, nil
}

// newLogger builds the command logger. --verbose lowers the level to debug.
func newLogger(cfg *config.Config, out io.Writer) logging.Logger {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = logging.LevelInfo
	}
	if cfg.Build.Verbose {
		level = logging.LevelDebug
	}
	return logging.NewLogger(&logging.LoggerConfig{
		Level:     level,
		Format:    cfg.Log.Format,
		Output:    out,
		Component: "semtex",
	})
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
