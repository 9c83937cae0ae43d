package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// Formatter writes command output.
type Formatter struct {
	writer io.Writer
}

// NewFormatter creates a new formatter
func NewFormatter(writer io.Writer) *Formatter {
	return &Formatter{
		writer: writer,
	}
}

// FormatJSON writes v as indented JSON.
func (f *Formatter) FormatJSON(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// FormatSpans writes one line per span: range, style, priority and text.
func (f *Formatter) FormatSpans(spans []SpanDTO) error {
	for _, s := range spans {
		if _, err := fmt.Fprintf(f.writer, "%d-%d\t%s\t%d\t%q\n", s.Start, s.Finish, s.Style, s.Priority, s.Text); err != nil {
			return err
		}
	}
	return nil
}

// FormatTokens writes the tree indented by depth, one token per line.
func (f *Formatter) FormatTokens(tokens []TokenDTO) error {
	var b strings.Builder
	writeTokens(&b, tokens, 0)
	_, err := io.WriteString(f.writer, b.String())
	return err
}

func writeTokens(b *strings.Builder, tokens []TokenDTO, depth int) {
	for _, t := range tokens {
		kind := t.Kind
		if kind == "" {
			kind = "-"
		}
		fmt.Fprintf(b, "%s%s [%d,%d) %q\n", strings.Repeat("  ", depth), kind, t.Start, t.Finish, t.Text)
		writeTokens(b, t.Nested, depth+1)
	}
}

// FormatRuleSet writes a one-line-per-rule summary.
func (f *Formatter) FormatRuleSet(set RuleSetDTO) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d rules, %d styles\n", set.Source, len(set.Rules), len(set.Styles))
	for _, r := range set.Rules {
		fmt.Fprintf(&b, "  %-28s priority %-4d matchers %d\n", r.Name, r.Priority, r.Matchers)
	}
	_, err := io.WriteString(f.writer, b.String())
	return err
}
