package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// BuildFlags are the pipeline flags shared by build and watch.
type BuildFlags struct {
	Workers      int
	PollInterval time.Duration
	MaxDepth     int
	Dedup        bool
	Verbose      bool
	Symbols      []string
	Compile      bool
}

// buildFlagKeys maps each build flag to the configuration key it overrides.
var buildFlagKeys = map[string]string{
	"workers":       "build.workers",
	"poll-interval": "build.poll_interval",
	"max-depth":     "build.max_depth",
	"dedup":         "build.dedup",
	"verbose":       "build.verbose",
	"symbols":       "symbols.files",
	"compile":       "compiler.enabled",
}

// AddBuildFlags registers the pipeline flags on cmd.
func AddBuildFlags(cmd *cobra.Command) *BuildFlags {
	flags := &BuildFlags{}

	cmd.Flags().IntVarP(&flags.Workers, "workers", "j", 0, "Worker pool size (0 sizes the pool from the CPU count)")
	cmd.Flags().DurationVar(&flags.PollInterval, "poll-interval", 500*time.Millisecond, "How long idle workers wait for a file")
	cmd.Flags().IntVar(&flags.MaxDepth, "max-depth", 64, "Maximum recursion depth inside command arguments")
	cmd.Flags().BoolVar(&flags.Dedup, "dedup", false, "Process each included file once")
	cmd.Flags().BoolVarP(&flags.Verbose, "verbose", "v", false, "Log every file as it is processed")
	cmd.Flags().StringSliceVarP(&flags.Symbols, "symbols", "s", nil, "Symbol table files (TOML or YAML)")
	cmd.Flags().BoolVarP(&flags.Compile, "compile", "c", false, "Run the typesetting compiler on the root output")

	AddFlagValidation(cmd, "workers", ValidateNonNegative)
	AddFlagValidation(cmd, "max-depth", ValidatePositive)

	return flags
}

// BindFlags binds the flags of cmd named in bindings to their viper keys.
// Flags that do not exist on cmd are skipped.
func BindFlags(cmd *cobra.Command, bindings map[string]string) error {
	names := make([]string, 0, len(bindings))
	for name := range bindings {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			continue
		}
		if err := viper.BindPFlag(bindings[name], flag); err != nil {
			return fmt.Errorf("binding --%s: %w", name, err)
		}
	}
	return nil
}

// AddFlagValidation adds validation for a specific flag
func AddFlagValidation(cmd *cobra.Command, flagName string, validator func(string) error) {
	flag := cmd.Flags().Lookup(flagName)
	if flag == nil {
		return
	}

	flag.Value = &validatingValue{
		Value:     flag.Value,
		validator: validator,
	}
}

type validatingValue struct {
	pflag.Value
	validator func(string) error
}

func (v *validatingValue) Set(val string) error {
	if v.validator != nil {
		if err := v.validator(val); err != nil {
			return err
		}
	}
	return v.Value.Set(val)
}

// ValidateNonNegative accepts integers of zero or more.
func ValidateNonNegative(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid number: %s", s)
	}
	if n < 0 {
		return fmt.Errorf("must not be negative, got %d", n)
	}
	return nil
}

// ValidatePositive accepts integers of one or more.
func ValidatePositive(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid number: %s", s)
	}
	if n < 1 {
		return fmt.Errorf("must be positive, got %d", n)
	}
	return nil
}

// ValidateFormat checks format against valid, suggesting the closest match
// by prefix.
func ValidateFormat(format string, valid []string) error {
	lower := strings.ToLower(format)
	for _, v := range valid {
		if lower == v {
			return nil
		}
	}
	for _, v := range valid {
		if lower != "" && strings.HasPrefix(v, lower) {
			return fmt.Errorf("invalid format %q, did you mean %q?", format, v)
		}
	}
	return fmt.Errorf("invalid format %q, must be one of: %s", format, strings.Join(valid, ", "))
}
