package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"

	"github.com/zjrosen/cmdhl/internal/presentation"
)

var (
	highlightJSON  bool
	highlightSpans bool
	highlightPlain bool
)

var highlightCmd = &cobra.Command{
	Use:   "highlight [command line...]",
	Short: "Highlight a command line once and print it",
	Long: `Highlight a command line and print the result.

The command line is taken from the arguments, joined by spaces, or read from
stdin when no arguments are given or the only argument is "-".

Examples:
  # Paint a command
  cmdhl highlight 'git commit -m "fix"'

  # Machine readable spans
  cmdhl highlight --json 'ls $HOME' | jq '.spans[].style'

  # Multi-line input from a file
  cmdhl highlight - < script.sh`,
	RunE: runHighlight,
}

func init() {
	highlightCmd.Flags().BoolVar(&highlightJSON, "json", false, "print the spans as JSON")
	highlightCmd.Flags().BoolVar(&highlightSpans, "spans", false, "print one line per span instead of painting")
	highlightCmd.Flags().BoolVar(&highlightPlain, "plain", false, "strip escape sequences from the painted output")
	rootCmd.AddCommand(highlightCmd)
}

func runHighlight(cmd *cobra.Command, args []string) error {
	src, err := readSource(cmd, args)
	if err != nil {
		return err
	}

	provider, shutdown, err := startTracing(cfg)
	if err != nil {
		return err
	}
	defer shutdown()

	h, err := newHighlighter(cfg, provider.Tracer())
	if err != nil {
		return err
	}
	if _, err := h.engine.Update(context.Background(), src); err != nil {
		return fmt.Errorf("highlighting: %w", err)
	}
	res, _ := h.engine.Last()

	formatter := presentation.NewFormatter(cmd.OutOrStdout())
	switch {
	case highlightJSON:
		return formatter.FormatJSON(presentation.FromResult(src, res))
	case highlightSpans:
		return formatter.FormatSpans(presentation.FromSpans(res.Spans, src))
	}

	out := h.buffer.Paint(src)
	if highlightPlain {
		out = ansi.Strip(out)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
	return err
}

// readSource returns the command line from args or stdin. A single trailing
// newline from stdin is dropped.
func readSource(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 && !(len(args) == 1 && args[0] == "-") {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return strings.TrimSuffix(string(data), "\n"), nil
}
