package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/semtex/internal/replacer"
	"github.com/conneroisu/semtex/internal/symbols"
)

var commandsCmd = &cobra.Command{
	Use:     "commands",
	Aliases: []string{"c"},
	Short:   "List the recognized command families and their triggers",
	Long: `List every command family in dispatch order with the keys that trigger it.
Symbols loaded from symbol tables are listed under the direct family.

Examples:
  semtex commands                     # Table of families and keys
  semtex commands -r                  # Include the replacement of each symbol
  semtex commands -f json             # Output as JSON
  semtex commands -s my.toml -f yaml  # Include user symbols, output as YAML`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return BindFlags(cmd, map[string]string{"symbols": "symbols.files"})
	},
	RunE: runCommands,
}

var (
	commandsFormat       string
	commandsReplacements bool
	commandsSymbols      []string
)

func init() {
	rootCmd.AddCommand(commandsCmd)

	commandsCmd.Flags().StringVarP(&commandsFormat, "format", "f", "table", "Output format (table, json, yaml)")
	commandsCmd.Flags().BoolVarP(&commandsReplacements, "replacements", "r", false, "Include the replacement text of table symbols")
	commandsCmd.Flags().StringSliceVarP(&commandsSymbols, "symbols", "s", nil, "Symbol table files (TOML or YAML)")

	AddFlagValidation(commandsCmd, "format", func(format string) error {
		return ValidateFormat(format, []string{"table", "json", "yaml"})
	})
}

// commandFamily is the listing form of a registered replacer.
type commandFamily struct {
	Name         string            `json:"name" yaml:"name"`
	Description  string            `json:"description" yaml:"description"`
	Keys         []string          `json:"keys" yaml:"keys"`
	Replacements map[string]string `json:"replacements,omitempty" yaml:"replacements,omitempty"`
}

func runCommands(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	extra, err := symbols.LoadFiles(cfg.Symbols.Files)
	if err != nil {
		return err
	}

	families := describeRegistry(replacer.Default(extra), commandsReplacements)
	out := cmd.OutOrStdout()

	switch strings.ToLower(commandsFormat) {
	case "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(families)
	case "yaml":
		encoder := yaml.NewEncoder(out)
		defer encoder.Close()
		return encoder.Encode(families)
	case "table":
		return outputCommandsTable(out, families)
	default:
		return fmt.Errorf("unsupported format: %s", commandsFormat)
	}
}

func describeRegistry(reg *replacer.Registry, withReplacements bool) []commandFamily {
	replacers := reg.Replacers()
	families := make([]commandFamily, 0, len(replacers))

	for _, r := range replacers {
		family := commandFamily{
			Name:        r.Kind().String(),
			Description: r.Kind().Description(),
			Keys:        r.Keys(),
		}
		if withReplacements {
			for _, key := range family.Keys {
				value, ok := r.Replacement(key)
				if !ok {
					continue
				}
				if family.Replacements == nil {
					family.Replacements = make(map[string]string, len(family.Keys))
				}
				family.Replacements[key] = value
			}
		}
		families = append(families, family)
	}
	return families
}

func outputCommandsTable(out io.Writer, families []commandFamily) error {
	title := cases.Title(language.English)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "FAMILY\tKEYS\tDESCRIPTION")
	fmt.Fprintln(w, "------\t----\t-----------")

	total := 0
	for _, family := range families {
		keys := family.Keys
		if family.Replacements != nil {
			keys = make([]string, len(family.Keys))
			for i, key := range family.Keys {
				keys[i] = key + " → " + family.Replacements[key]
			}
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", title.String(family.Name), strings.Join(keys, " "), family.Description)
		total += len(family.Keys)
	}

	fmt.Fprintf(w, "\nTotal: %d families, %d keys\n", len(families), total)
	return w.Flush()
}
