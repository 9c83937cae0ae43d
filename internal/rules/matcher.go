// Package rules defines highlight rules: ordered sequences of token matchers
// with quantifiers, compiled ahead of time from declarative YAML.
package rules

import (
	"regexp"

	"github.com/zjrosen/cmdhl/internal/styles"
)

// Matcher is one compiled element of a rule. Every regex is compiled when the
// rule set is loaded; matchers are never mutated afterwards.
type Matcher struct {
	// Kind and NotKind are full-matched against the token kind.
	Kind    *regexp.Regexp
	NotKind *regexp.Regexp

	// Regex and NotRegex are searched for in the token text.
	Regex    *regexp.Regexp
	NotRegex *regexp.Regexp

	// Contains must consume every nested child of the token. It ends with an
	// implicit end anchor.
	Contains Sequence

	// Hl names the style applied to the matched token.
	Hl string

	// HlRegex narrows Hl to each match (or first capture) inside the token.
	HlRegex *regexp.Regexp

	Mod Modifier

	// Source is the declarative form, kept for error messages and dumps.
	Source MatcherSpec
}

// Sequence is an ordered list of matchers.
type Sequence []*Matcher

// HasContains reports whether the matcher descends into nested tokens.
func (m *Matcher) HasContains() bool {
	return m.Contains != nil
}

// Rule is a named sequence with a paint priority.
type Rule struct {
	Name     string
	Priority int
	Sequence Sequence
}

// Set is a loaded, validated rule set together with the styles it refers to.
type Set struct {
	Rules  []*Rule
	Styles *styles.Registry
}

// Len returns the number of rules.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Rules)
}

// endAnchor terminates every compiled Contains sequence.
var endAnchor = &Matcher{Mod: ModEnd, Source: MatcherSpec{Mod: "$"}}
