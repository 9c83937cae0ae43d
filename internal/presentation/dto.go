package presentation

import (
	"strconv"

	"github.com/zjrosen/cmdhl/internal/highlight"
	"github.com/zjrosen/cmdhl/internal/rules"
	"github.com/zjrosen/cmdhl/internal/token"
)

// HighlightDTO is the machine readable result of highlighting one buffer.
type HighlightDTO struct {
	Text     string    `json:"text"`
	Complete bool      `json:"complete"`
	Spans    []SpanDTO `json:"spans"`
}

// SpanDTO is a painted range with the text it covers.
type SpanDTO struct {
	Start    int    `json:"start"`
	Finish   int    `json:"finish"`
	Style    string `json:"style"`
	Priority int    `json:"priority"`
	Text     string `json:"text"`
}

// TokenDTO mirrors a token with its text resolved.
type TokenDTO struct {
	Start  int        `json:"start"`
	Finish int        `json:"finish"`
	Kind   string     `json:"kind"`
	Text   string     `json:"text"`
	Nested []TokenDTO `json:"nested,omitempty"`
}

// RuleSetDTO summarises a validated rule set.
type RuleSetDTO struct {
	Source string    `json:"source"`
	Rules  []RuleDTO `json:"rules"`
	Styles []string  `json:"styles"`
}

// RuleDTO summarises one rule.
type RuleDTO struct {
	Name     string `json:"name"`
	Priority int    `json:"priority"`
	Matchers int    `json:"matchers"`
}

// FromSpans converts spans, resolving each one's text in src. Out of range
// spans get empty text.
func FromSpans(spans []highlight.Span, src string) []SpanDTO {
	out := make([]SpanDTO, 0, len(spans))
	for _, s := range spans {
		dto := SpanDTO{Start: s.Start, Finish: s.Finish, Style: s.Style, Priority: s.Priority}
		if s.Start >= 0 && s.Start <= s.Finish && s.Finish <= len(src) {
			dto.Text = src[s.Start:s.Finish]
		}
		out = append(out, dto)
	}
	return out
}

// FromResult converts an engine result for src.
func FromResult(src string, res highlight.Result) HighlightDTO {
	return HighlightDTO{
		Text:     src,
		Complete: res.Complete,
		Spans:    FromSpans(res.Spans, src),
	}
}

// FromTree converts a token tree for src.
func FromTree(tree token.Tree, src string) []TokenDTO {
	return fromTokens(tree, src)
}

func fromTokens(list []token.Token, src string) []TokenDTO {
	out := make([]TokenDTO, 0, len(list))
	for i := range list {
		tok := &list[i]
		dto := TokenDTO{Start: tok.Start, Finish: tok.Finish, Kind: tok.Kind, Text: tok.Text(src)}
		if tok.HasNested() {
			dto.Nested = fromTokens(tok.Nested, src)
		}
		out = append(out, dto)
	}
	return out
}

// FromRuleSet summarises set, loaded from source.
func FromRuleSet(source string, set *rules.Set) RuleSetDTO {
	dto := RuleSetDTO{Source: source, Rules: make([]RuleDTO, 0, set.Len())}
	for i, r := range set.Rules {
		name := r.Name
		if name == "" {
			name = "#" + strconv.Itoa(i)
		}
		dto.Rules = append(dto.Rules, RuleDTO{Name: name, Priority: r.Priority, Matchers: countMatchers(r.Sequence)})
	}
	if set.Styles != nil {
		dto.Styles = set.Styles.Names()
	}
	return dto
}

// countMatchers counts matchers including nested contains sequences. The
// end anchor closing every compiled contains sequence is not counted.
func countMatchers(seq rules.Sequence) int {
	n := len(seq)
	for _, m := range seq {
		if m.HasContains() {
			n += countMatchers(m.Contains[:len(m.Contains)-1])
		}
	}
	return n
}
