package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/semtex/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect SemTeX configuration",
	Long: `Inspect SemTeX configuration files and settings.

Examples:
  semtex config validate                     # Validate the active configuration
  semtex config validate --file ci.yml       # Validate a specific file
  semtex config show --format json           # Show the resolved configuration`,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate a SemTeX configuration for correctness.

This command checks for:
- Worker counts, intervals and recursion depth
- Source and passthrough extensions
- The compiler command and its arguments
- Symbol table paths and formats

Examples:
  semtex config validate                     # Validate .semtex.yml
  semtex config validate --file config.yml   # Validate a specific file
  semtex config validate --strict            # Treat warnings as errors`,
	RunE: runConfigValidate,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Display the configuration after loading the file, applying environment
overrides and filling in defaults.

Examples:
  semtex config show                  # Show as YAML
  semtex config show --format json    # Show as JSON`,
	RunE: runConfigShow,
}

var (
	configFile   string
	configFormat string
	configStrict bool
)

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configShowCmd)

	configValidateCmd.Flags().
		StringVarP(&configFile, "file", "f", "", "Configuration file to validate (default: .semtex.yml)")
	configValidateCmd.Flags().BoolVar(&configStrict, "strict", false, "Treat warnings as errors")

	configShowCmd.Flags().StringVar(&configFormat, "format", "yaml", "Output format (yaml, json)")
	AddFlagValidation(configShowCmd, "format", func(format string) error {
		return ValidateFormat(format, []string{"yaml", "json"})
	})
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	v := viper.GetViper()
	if configFile != "" {
		v = viper.New()
		v.SetConfigFile(configFile)
		if err := config.BindEnv(v); err != nil {
			return err
		}
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read %s: %w", configFile, err)
		}
	}

	cfg, err := config.Decode(v)
	if err != nil {
		return fmt.Errorf("failed to decode configuration: %w", err)
	}

	out := cmd.OutOrStdout()
	result := config.ValidateConfigWithDetails(cfg)
	if result.HasErrors() || result.HasWarnings() {
		fmt.Fprint(out, result.String())
	}

	switch {
	case result.HasErrors():
		return fmt.Errorf("configuration has %d errors", len(result.Errors))
	case configStrict && result.HasWarnings():
		return fmt.Errorf("configuration has %d warnings (strict mode)", len(result.Warnings))
	}

	fmt.Fprintln(out, "✅ Configuration is valid")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(nil)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch strings.ToLower(configFormat) {
	case "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(cfg)
	case "yaml":
		encoder := yaml.NewEncoder(out)
		defer encoder.Close()
		return encoder.Encode(cfg)
	default:
		return fmt.Errorf("unsupported format: %s", configFormat)
	}
}
