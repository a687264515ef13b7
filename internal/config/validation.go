package config

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/conneroisu/semtex/internal/compiler"
	"github.com/conneroisu/semtex/internal/logging"
	"github.com/conneroisu/semtex/internal/validation"
)

// ValidationError represents a configuration validation error with suggestions
type ValidationError struct {
	Field       string
	Value       interface{}
	Message     string
	Suggestions []string
}

func (ve *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", ve.Field, ve.Message)
}

// ValidationResult holds the result of configuration validation
type ValidationResult struct {
	Valid    bool
	Errors   []ValidationError
	Warnings []ValidationError
}

// HasErrors returns true if there are any validation errors
func (vr *ValidationResult) HasErrors() bool {
	return len(vr.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings
func (vr *ValidationResult) HasWarnings() bool {
	return len(vr.Warnings) > 0
}

// String returns a formatted string of all validation issues
func (vr *ValidationResult) String() string {
	var builder strings.Builder

	if len(vr.Errors) > 0 {
		builder.WriteString("❌ Validation Errors:\n")
		for _, err := range vr.Errors {
			builder.WriteString(fmt.Sprintf("  • %s: %s\n", err.Field, err.Message))
			for _, suggestion := range err.Suggestions {
				builder.WriteString(fmt.Sprintf("    💡 %s\n", suggestion))
			}
		}
		builder.WriteString("\n")
	}

	if len(vr.Warnings) > 0 {
		builder.WriteString("⚠️  Validation Warnings:\n")
		for _, warning := range vr.Warnings {
			builder.WriteString(fmt.Sprintf("  • %s: %s\n", warning.Field, warning.Message))
			for _, suggestion := range warning.Suggestions {
				builder.WriteString(fmt.Sprintf("    💡 %s\n", suggestion))
			}
		}
	}

	return builder.String()
}

func (vr *ValidationResult) addError(field string, value interface{}, msg string, suggestions ...string) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, ValidationError{
		Field:       field,
		Value:       value,
		Message:     msg,
		Suggestions: suggestions,
	})
}

func (vr *ValidationResult) addWarning(field string, value interface{}, msg string, suggestions ...string) {
	vr.Warnings = append(vr.Warnings, ValidationError{
		Field:       field,
		Value:       value,
		Message:     msg,
		Suggestions: suggestions,
	})
}

// ValidateConfigWithDetails performs comprehensive validation with detailed feedback
func ValidateConfigWithDetails(config *Config) *ValidationResult {
	result := &ValidationResult{
		Valid:    true,
		Errors:   []ValidationError{},
		Warnings: []ValidationError{},
	}

	validateBuildConfigDetails(&config.Build, result)
	validateCompilerConfigDetails(&config.Compiler, result)
	validateSymbolsConfigDetails(&config.Symbols, result)
	validateWatchConfigDetails(&config.Watch, result)
	validateLogConfigDetails(&config.Log, result)

	return result
}

func validateBuildConfigDetails(config *BuildConfig, result *ValidationResult) {
	switch {
	case config.Workers < 0:
		result.addError("build.workers", config.Workers, "worker count cannot be negative",
			"Use 0 to size the pool from the number of CPUs")
	case config.Workers > 4*runtime.NumCPU():
		result.addWarning("build.workers", config.Workers,
			fmt.Sprintf("%d workers is far more than the %d available CPUs", config.Workers, runtime.NumCPU()),
			"Use 0 to size the pool from the number of CPUs")
	}

	switch {
	case config.PollInterval <= 0:
		result.addError("build.poll_interval", config.PollInterval, "poll interval must be positive",
			"The default is "+DefaultPollInterval.String())
	case config.PollInterval < 10*time.Millisecond:
		result.addWarning("build.poll_interval", config.PollInterval,
			"very short poll intervals keep idle workers waking up")
	}

	switch {
	case config.MaxDepth <= 0:
		result.addError("build.max_depth", config.MaxDepth, "recursion depth must be positive",
			fmt.Sprintf("The default is %d", DefaultMaxDepth))
	case config.MaxDepth > 1024:
		result.addWarning("build.max_depth", config.MaxDepth,
			"a very deep recursion limit delays reporting self-referential expansions")
	}

	if len(config.SourceExtensions) == 0 {
		result.addWarning("build.source_extensions", nil, "no source extensions; nothing will be rewritten",
			"Add .stex or .sex")
	}
	for _, ext := range config.SourceExtensions {
		if err := validateExtension(ext); err != nil {
			result.addError("build.source_extensions", ext, err.Error())
		}
		if ext == config.PassthroughExtension {
			result.addError("build.source_extensions", ext,
				"an extension cannot be both a source and the passthrough extension")
		}
	}
	if err := validateExtension(config.PassthroughExtension); err != nil {
		result.addError("build.passthrough_extension", config.PassthroughExtension, err.Error())
	}
}

func validateCompilerConfigDetails(config *CompilerConfig, result *ValidationResult) {
	if err := validation.ValidateCommand(config.Command, compiler.AllowedCommands); err != nil {
		result.addError("compiler.command", config.Command, err.Error(),
			"Allowed compilers: "+strings.Join(allowedCompilers(), ", "))
	} else if config.Enabled {
		if _, err := exec.LookPath(config.Command); err != nil {
			result.addWarning("compiler.command", config.Command,
				fmt.Sprintf("%s was not found in PATH", config.Command),
				"Install a TeX distribution or disable the compile step")
		}
	}

	for _, arg := range config.Args {
		if err := validation.ValidateArgument(arg); err != nil {
			result.addError("compiler.args", arg, err.Error())
		}
	}
}

func validateSymbolsConfigDetails(config *SymbolsConfig, result *ValidationResult) {
	for _, path := range config.Files {
		if err := validatePath(path); err != nil {
			result.addError("symbols.files", path, err.Error())
			continue
		}
		if err := validation.ValidateFileExtension(path, SymbolFileExtensions); err != nil {
			result.addError("symbols.files", path, err.Error(),
				"Symbol tables are read from TOML or YAML files")
			continue
		}
		if !pathExists(path) {
			result.addWarning("symbols.files", path, "symbol file does not exist")
		}
	}
}

func validateWatchConfigDetails(config *WatchConfig, result *ValidationResult) {
	switch {
	case config.Debounce <= 0:
		result.addError("watch.debounce", config.Debounce, "debounce must be positive",
			"The default is "+DefaultDebounce.String())
	case config.Debounce < 50*time.Millisecond:
		result.addWarning("watch.debounce", config.Debounce,
			"editors often write a file several times; short debounces trigger redundant rebuilds")
	}
}

func validateLogConfigDetails(config *LogConfig, result *ValidationResult) {
	if _, err := logging.ParseLevel(config.Level); err != nil {
		result.addError("log.level", config.Level, err.Error(),
			"Use one of debug, info, warn, error")
	}
	if config.Format != "text" && config.Format != "json" {
		result.addError("log.format", config.Format, "unknown log format",
			"Use text or json")
	}
}

func allowedCompilers() []string {
	names := make([]string, 0, len(compiler.AllowedCommands))
	for name := range compiler.AllowedCommands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
