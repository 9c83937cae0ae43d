package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/cmdhl/internal/presentation"
	"github.com/zjrosen/cmdhl/internal/rules"
)

var rulesJSON bool

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect highlight rules",
}

var rulesCheckCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Validate a rules file",
	Long: `Load and validate a rules file against the configured theme.

Without an argument the configured rules_file is checked, or the built-in
rules when none is configured. Exits non-zero on the first error.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRulesCheck,
}

var rulesDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print the built-in rules as YAML",
	Long: `Print the built-in rules as YAML, a starting point for a custom rules file:

  cmdhl rules dump > ~/.config/cmdhl/rules.yaml`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := cmd.OutOrStdout().Write(rules.DefaultRules())
		return err
	},
}

func init() {
	rulesCheckCmd.Flags().BoolVar(&rulesJSON, "json", false, "print the summary as JSON")
	rulesCmd.AddCommand(rulesCheckCmd, rulesDumpCmd)
	rootCmd.AddCommand(rulesCmd)
}

func runRulesCheck(cmd *cobra.Command, args []string) error {
	reg, err := cfg.Theme.Registry()
	if err != nil {
		return err
	}

	source := "built-in"
	var set *rules.Set
	switch {
	case len(args) == 1:
		source = args[0]
		set, err = rules.LoadFile(source, reg)
	case cfg.RulesPath() != "":
		source = cfg.RulesPath()
		set, err = rules.LoadFile(source, reg)
	default:
		set, err = rules.Default(reg)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", source, err)
	}

	summary := presentation.FromRuleSet(source, set)
	formatter := presentation.NewFormatter(cmd.OutOrStdout())
	if rulesJSON {
		return formatter.FormatJSON(summary)
	}
	return formatter.FormatRuleSet(summary)
}
