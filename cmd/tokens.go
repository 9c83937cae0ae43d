package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/cmdhl/internal/presentation"
	"github.com/zjrosen/cmdhl/internal/shparse"
)

var tokensJSON bool

var tokensCmd = &cobra.Command{
	Use:   "tokens [command line...]",
	Short: "Print the token tree of a command line",
	Long: `Print the token tree the highlight rules are matched against.

Useful when writing rules: every line shows a token kind, its byte range and
its text, indented by nesting depth. Unlabelled tokens show as "-".`,
	RunE: runTokens,
}

func init() {
	tokensCmd.Flags().BoolVar(&tokensJSON, "json", false, "print the tree as JSON")
	rootCmd.AddCommand(tokensCmd)
}

func runTokens(cmd *cobra.Command, args []string) error {
	src, err := readSource(cmd, args)
	if err != nil {
		return err
	}
	complete, tree := shparse.Parse(src, shparse.Options{Comments: cfg.Parser.Comments})
	dtos := presentation.FromTree(tree, src)

	formatter := presentation.NewFormatter(cmd.OutOrStdout())
	if tokensJSON {
		return formatter.FormatJSON(struct {
			Complete bool                    `json:"complete"`
			Tokens   []presentation.TokenDTO `json:"tokens"`
		}{complete, dtos})
	}
	if err := formatter.FormatTokens(dtos); err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "complete: %t\n", complete)
	return err
}
