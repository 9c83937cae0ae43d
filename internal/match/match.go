// Package match evaluates compiled rules against token sibling lists.
//
// Evaluation is pure: every function returns the hits it produced and never
// mutates the rules or the tree. Quantifiers follow regex-style greedy/lazy
// backtracking, but over tokens instead of characters.
package match

import (
	"github.com/zjrosen/cmdhl/internal/rules"
	"github.com/zjrosen/cmdhl/internal/token"
)

// Hit records that a matcher accepted a token.
type Hit struct {
	Matcher *rules.Matcher
	Token   *token.Token
}

// Evaluate tests a single matcher against a single token. On success it
// returns the token's own hit followed by the hits of the nested contains
// match, in that order. Anchor matchers carry no predicate and always pass;
// MatchAt handles their position checks.
func Evaluate(m *rules.Matcher, tok *token.Token, src string) ([]Hit, bool) {
	if m.Kind != nil && !m.Kind.MatchString(tok.Kind) {
		return nil, false
	}
	if m.NotKind != nil && m.NotKind.MatchString(tok.Kind) {
		return nil, false
	}

	if m.Regex != nil || m.NotRegex != nil {
		text := tok.Text(src)
		if m.Regex != nil && !m.Regex.MatchString(text) {
			return nil, false
		}
		if m.NotRegex != nil && m.NotRegex.MatchString(text) {
			return nil, false
		}
	}

	if !m.HasContains() {
		return []Hit{{Matcher: m, Token: tok}}, true
	}

	if len(tok.Nested) == 0 {
		return nil, false
	}
	end, inner, ok := MatchAt(m.Contains, 0, tok.Nested, 0, src)
	if !ok || end != len(tok.Nested) {
		return nil, false
	}
	hits := make([]Hit, 0, len(inner)+1)
	hits = append(hits, Hit{Matcher: m, Token: tok})
	return append(hits, inner...), true
}

// candidate is a complete alternative match kept while a greedy quantifier
// tries to consume more.
type candidate struct {
	end  int
	hits []Hit
}

// MatchAt aligns seq[si:] against siblings[ti:]. It returns the index of the
// first sibling after the match and the hits in match order.
//
// A quantified element first tries to match the rest of the sequence without
// consuming anything. Lazy quantifiers return that immediately; greedy ones
// keep it as a fallback and go on consuming. When a mandatory element or an
// anchor fails later, the most recent fallback is returned instead.
func MatchAt(seq rules.Sequence, si int, siblings []token.Token, ti int, src string) (int, []Hit, bool) {
	var (
		hits     []Hit
		fallback *candidate
		mod      rules.Modifier
		loaded   bool
	)

	fail := func() (int, []Hit, bool) {
		if fallback != nil {
			return fallback.end, fallback.hits, true
		}
		return ti, nil, false
	}

	for si < len(seq) {
		m := seq[si]
		if !loaded {
			mod = m.Mod
			loaded = true
		}

		switch mod {
		case rules.ModStart:
			if ti != 0 {
				return fail()
			}
			si++
			loaded = false
			continue
		case rules.ModEnd:
			if ti != len(siblings) {
				return fail()
			}
			si++
			loaded = false
			continue
		}

		if mod.Skippable() {
			if end, rest, ok := MatchAt(seq, si+1, siblings, ti, src); ok {
				c := &candidate{end: end, hits: join(hits, rest)}
				if mod.Lazy() {
					return c.end, c.hits, true
				}
				fallback = c
			}
		}

		if ti >= len(siblings) {
			return fail()
		}
		got, ok := Evaluate(m, &siblings[ti], src)
		if !ok {
			return fail()
		}
		hits = append(hits, got...)
		ti++

		if mod.Repeats() {
			mod = mod.AfterOne()
			continue
		}
		si++
		loaded = false
	}
	return ti, hits, true
}

// join returns a new slice holding a followed by b.
func join(a, b []Hit) []Hit {
	out := make([]Hit, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}

// Scan runs seq over siblings from index 0 and calls fn with the hits of each
// match. After a match that consumed tokens scanning resumes at its end;
// otherwise it advances by one token. Matches never overlap.
func Scan(seq rules.Sequence, siblings []token.Token, src string, fn func(hits []Hit)) {
	for ti := 0; ti < len(siblings); {
		end, hits, ok := MatchAt(seq, 0, siblings, ti, src)
		if ok && end > ti {
			fn(hits)
			ti = end
			continue
		}
		ti++
	}
}

// ScanAll is Scan collecting every hit into one slice.
func ScanAll(seq rules.Sequence, siblings []token.Token, src string) []Hit {
	var all []Hit
	Scan(seq, siblings, src, func(hits []Hit) {
		all = append(all, hits...)
	})
	return all
}
