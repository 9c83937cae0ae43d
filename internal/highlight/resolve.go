package highlight

import (
	"sort"

	"github.com/zjrosen/cmdhl/internal/rules"
	"github.com/zjrosen/cmdhl/internal/token"
)

// Span is a styled byte range of the buffer.
type Span struct {
	Start    int    `json:"start"`
	Finish   int    `json:"finish"`
	Style    string `json:"style"`
	Priority int    `json:"priority"`
	// Order is the emission index, the tie-break between equal priorities.
	Order int `json:"order"`
}

// Len returns the byte length of the span.
func (s Span) Len() int {
	return s.Finish - s.Start
}

// Resolve turns hits into spans sorted by priority, then emission order.
// Hits whose matcher has no style produce nothing. With an hlregex, each
// match inside the token text (or its first capture group) becomes a span;
// empty matches and captures that did not participate are skipped.
func Resolve(hits []Hit, src string) []Span {
	var spans []Span
	for i := range hits {
		h := &hits[i]
		m := h.Matcher
		if m.Hl == "" {
			continue
		}
		tok := h.Token
		if m.HlRegex == nil {
			spans = append(spans, Span{
				Start:    tok.Start,
				Finish:   tok.Finish,
				Style:    m.Hl,
				Priority: h.Priority,
				Order:    len(spans),
			})
			continue
		}

		group := 0
		if m.HlRegex.NumSubexp() > 0 {
			group = 1
		}
		for _, loc := range m.HlRegex.FindAllStringSubmatchIndex(tok.Text(src), -1) {
			lo, hi := loc[2*group], loc[2*group+1]
			if lo < 0 || hi <= lo {
				continue
			}
			spans = append(spans, Span{
				Start:    tok.Start + lo,
				Finish:   tok.Start + hi,
				Style:    m.Hl,
				Priority: h.Priority,
				Order:    len(spans),
			})
		}
	}

	sort.SliceStable(spans, func(i, j int) bool {
		return spans[i].Priority < spans[j].Priority
	})
	return spans
}

// Run applies the rule set to the tree and resolves the hits.
func Run(set *rules.Set, tree token.Tree, src string, opts ApplyOptions) []Span {
	return Resolve(Apply(set, tree, src, opts), src)
}
