// Package config provides configuration management for SemTeX using Viper
// for flexible configuration loading from files, environment variables, and
// command-line flags.
//
// The configuration system supports YAML files, environment variable overrides
// with the SEMTEX_ prefix, and validation. It manages the expansion pipeline
// (workers, recursion depth, recognized extensions), the optional typesetting
// compiler step, user symbol tables, watch mode and logging.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/conneroisu/semtex/internal/compiler"
	"github.com/conneroisu/semtex/internal/logging"
	"github.com/conneroisu/semtex/internal/validation"
)

// Defaults applied by Load when a value is not set.
const (
	DefaultPollInterval = 500 * time.Millisecond
	DefaultMaxDepth     = 64
	DefaultDebounce     = 300 * time.Millisecond
	DefaultCompiler     = "pdflatex"
	DefaultPassthrough  = ".tex"
)

// EnvPrefix is the prefix of environment variable overrides such as
// SEMTEX_BUILD_WORKERS.
const EnvPrefix = "SEMTEX"

var envReplacer = strings.NewReplacer(".", "_", "-", "_")

// Keys lists every configuration key that can be overridden from the
// environment.
var Keys = []string{
	"build.workers",
	"build.poll_interval",
	"build.max_depth",
	"build.dedup",
	"build.verbose",
	"build.source_extensions",
	"build.passthrough_extension",
	"compiler.command",
	"compiler.args",
	"compiler.enabled",
	"compiler.clean_on_error",
	"symbols.files",
	"watch.debounce",
	"log.level",
	"log.format",
}

// DefaultSourceExtensions are the extensions rewritten by default.
var DefaultSourceExtensions = []string{".stex", ".sex"}

// SymbolFileExtensions are the formats a symbol table may be written in.
var SymbolFileExtensions = []string{".toml", ".yaml", ".yml"}

type Config struct {
	Build       BuildConfig    `yaml:"build" json:"build" mapstructure:"build"`
	Compiler    CompilerConfig `yaml:"compiler" json:"compiler" mapstructure:"compiler"`
	Symbols     SymbolsConfig  `yaml:"symbols" json:"symbols" mapstructure:"symbols"`
	Watch       WatchConfig    `yaml:"watch" json:"watch" mapstructure:"watch"`
	Log         LogConfig      `yaml:"log" json:"log" mapstructure:"log"`
	TargetFiles []string       `yaml:"-" json:"-" mapstructure:"-"` // CLI arguments, not from config file
}

type BuildConfig struct {
	Workers              int           `yaml:"workers" json:"workers" mapstructure:"workers"`
	PollInterval         time.Duration `yaml:"poll_interval" json:"poll_interval" mapstructure:"poll_interval"`
	MaxDepth             int           `yaml:"max_depth" json:"max_depth" mapstructure:"max_depth"`
	Dedup                bool          `yaml:"dedup" json:"dedup" mapstructure:"dedup"`
	Verbose              bool          `yaml:"verbose" json:"verbose" mapstructure:"verbose"`
	SourceExtensions     []string      `yaml:"source_extensions" json:"source_extensions" mapstructure:"source_extensions"`
	PassthroughExtension string        `yaml:"passthrough_extension" json:"passthrough_extension" mapstructure:"passthrough_extension"`
}

type CompilerConfig struct {
	Command      string   `yaml:"command" json:"command" mapstructure:"command"`
	Args         []string `yaml:"args" json:"args" mapstructure:"args"`
	Enabled      bool     `yaml:"enabled" json:"enabled" mapstructure:"enabled"`
	CleanOnError bool     `yaml:"clean_on_error" json:"clean_on_error" mapstructure:"clean_on_error"`
}

type SymbolsConfig struct {
	Files []string `yaml:"files" json:"files" mapstructure:"files"`
}

type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce" json:"debounce" mapstructure:"debounce"`
}

type LogConfig struct {
	Level  string `yaml:"level" json:"level" mapstructure:"level"`
	Format string `yaml:"format" json:"format" mapstructure:"format"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Build: BuildConfig{
			PollInterval:         DefaultPollInterval,
			MaxDepth:             DefaultMaxDepth,
			SourceExtensions:     append([]string(nil), DefaultSourceExtensions...),
			PassthroughExtension: DefaultPassthrough,
		},
		Compiler: CompilerConfig{
			Command:      DefaultCompiler,
			CleanOnError: true,
		},
		Watch: WatchConfig{Debounce: DefaultDebounce},
		Log:   LogConfig{Level: "info", Format: "text"},
	}
}

// BindEnv makes v read SEMTEX_<SECTION>_<KEY> environment variables for
// every key in Keys.
func BindEnv(v *viper.Viper) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(envReplacer)
	v.AutomaticEnv()

	for _, key := range Keys {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("binding %s: %w", key, err)
		}
	}
	return nil
}

// Load reads the global viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads the configuration held by v, applies defaults and
// validates the result.
func LoadFrom(v *viper.Viper) (*Config, error) {
	config, err := Decode(v)
	if err != nil {
		return nil, err
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Decode reads the configuration held by v and applies defaults without
// validating it. ValidateConfigWithDetails reports on the result.
func Decode(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Handle slices set via env vars or flags (workaround for viper slice handling)
	if v.IsSet("build.source_extensions") && len(config.Build.SourceExtensions) == 0 {
		config.Build.SourceExtensions = v.GetStringSlice("build.source_extensions")
	}
	if v.IsSet("symbols.files") && len(config.Symbols.Files) == 0 {
		config.Symbols.Files = v.GetStringSlice("symbols.files")
	}
	if v.IsSet("compiler.args") && len(config.Compiler.Args) == 0 {
		config.Compiler.Args = v.GetStringSlice("compiler.args")
	}

	// Apply default values for BuildConfig if not set
	if !v.IsSet("build.poll_interval") {
		config.Build.PollInterval = DefaultPollInterval
	}
	if !v.IsSet("build.max_depth") {
		config.Build.MaxDepth = DefaultMaxDepth
	}
	if len(config.Build.SourceExtensions) == 0 {
		config.Build.SourceExtensions = append([]string(nil), DefaultSourceExtensions...)
	}
	if config.Build.PassthroughExtension == "" {
		config.Build.PassthroughExtension = DefaultPassthrough
	}

	// Apply default values for CompilerConfig if not set
	if config.Compiler.Command == "" {
		config.Compiler.Command = DefaultCompiler
	}
	if !v.IsSet("compiler.clean_on_error") {
		config.Compiler.CleanOnError = true
	}

	if !v.IsSet("watch.debounce") {
		config.Watch.Debounce = DefaultDebounce
	}

	// The root command binds --log-level to the top-level key
	if config.Log.Level == "" {
		config.Log.Level = v.GetString("log-level")
	}
	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
	if config.Log.Format == "" {
		config.Log.Format = "text"
	}

	return &config, nil
}

// validateConfig validates configuration values for correctness
func validateConfig(config *Config) error {
	if err := validateBuildConfig(&config.Build); err != nil {
		return fmt.Errorf("build config: %w", err)
	}

	if err := validateCompilerConfig(&config.Compiler); err != nil {
		return fmt.Errorf("compiler config: %w", err)
	}

	if err := validateSymbolsConfig(&config.Symbols); err != nil {
		return fmt.Errorf("symbols config: %w", err)
	}

	if config.Watch.Debounce <= 0 {
		return fmt.Errorf("watch config: debounce must be positive, got %s", config.Watch.Debounce)
	}

	if err := validateLogConfig(&config.Log); err != nil {
		return fmt.Errorf("log config: %w", err)
	}

	return nil
}

// validateBuildConfig validates build configuration values
func validateBuildConfig(config *BuildConfig) error {
	if config.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", config.Workers)
	}
	if config.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %s", config.PollInterval)
	}
	if config.MaxDepth <= 0 {
		return fmt.Errorf("max_depth must be positive, got %d", config.MaxDepth)
	}

	for _, ext := range config.SourceExtensions {
		if err := validateExtension(ext); err != nil {
			return fmt.Errorf("source extension: %w", err)
		}
		if ext == config.PassthroughExtension {
			return fmt.Errorf("extension %s cannot be both a source and the passthrough extension", ext)
		}
	}

	if err := validateExtension(config.PassthroughExtension); err != nil {
		return fmt.Errorf("passthrough extension: %w", err)
	}

	return nil
}

// validateCompilerConfig checks the compiler against the allowlist and its
// arguments for shell metacharacters.
func validateCompilerConfig(config *CompilerConfig) error {
	if err := validation.ValidateCommand(config.Command, compiler.AllowedCommands); err != nil {
		return err
	}
	return validation.ValidateArguments(config.Args)
}

func validateSymbolsConfig(config *SymbolsConfig) error {
	for _, path := range config.Files {
		if err := validatePath(path); err != nil {
			return fmt.Errorf("invalid symbol file '%s': %w", path, err)
		}
		if err := validation.ValidateFileExtension(path, SymbolFileExtensions); err != nil {
			return fmt.Errorf("invalid symbol file '%s': %w", path, err)
		}
	}
	return nil
}

func validateLogConfig(config *LogConfig) error {
	if _, err := logging.ParseLevel(config.Level); err != nil {
		return err
	}
	if config.Format != "text" && config.Format != "json" {
		return fmt.Errorf("format must be text or json, got %q", config.Format)
	}
	return nil
}

// validateExtension requires a leading dot followed by letters or digits.
func validateExtension(ext string) error {
	if len(ext) < 2 || ext[0] != '.' {
		return fmt.Errorf("extension %q must start with a dot", ext)
	}
	for _, r := range ext[1:] {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return fmt.Errorf("extension %q contains invalid character %q", ext, r)
		}
	}
	return nil
}

// validatePath validates a file path for security
func validatePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}

	// Clean the path
	cleanPath := filepath.Clean(path)

	// Reject dangerous characters
	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'"}
	for _, char := range dangerousChars {
		if strings.Contains(cleanPath, char) {
			return fmt.Errorf("path contains dangerous character: %s", char)
		}
	}

	return nil
}
