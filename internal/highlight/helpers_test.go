package highlight

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/cmdhl/internal/rules"
	"github.com/zjrosen/cmdhl/internal/styles"
	"github.com/zjrosen/cmdhl/internal/token"
)

func loadRules(t *testing.T, doc string) *rules.Set {
	t.Helper()
	reg, err := styles.FromPreset("plain")
	require.NoError(t, err)
	set, err := rules.Load([]byte(doc), reg)
	require.NoError(t, err)
	return set
}

// echoTree is what a shell parser produces for `echo "a$(ls)b"`.
func echoTree() (string, token.Tree) {
	src := `echo "a$(ls)b"`
	return src, token.Tree{
		{Start: 0, Finish: 4, Kind: "command"},
		{Start: 5, Finish: 14, Kind: "STRING", Nested: []token.Token{
			{Start: 5, Finish: 6, Kind: "Dnull"},
			{Start: 6, Finish: 7, Kind: ""},
			{Start: 7, Finish: 12, Kind: "substitution", Nested: []token.Token{
				{Start: 7, Finish: 8, Kind: "Qstring"},
				{Start: 8, Finish: 9, Kind: "Inpar"},
				{Start: 9, Finish: 11, Kind: "command"},
				{Start: 11, Finish: 12, Kind: "Outpar"},
			}},
			{Start: 12, Finish: 13, Kind: ""},
			{Start: 13, Finish: 14, Kind: "Dnull"},
		}},
	}
}

// fakeParser returns canned trees and counts calls.
type fakeParser struct {
	trees    map[string]token.Tree
	complete map[string]bool
	calls    int
	onParse  func()
}

func newFakeParser() *fakeParser {
	return &fakeParser{trees: map[string]token.Tree{}, complete: map[string]bool{}}
}

func (p *fakeParser) add(text string, complete bool, tree token.Tree) {
	p.trees[text] = tree
	p.complete[text] = complete
}

func (p *fakeParser) Parse(text string) (bool, token.Tree) {
	p.calls++
	if p.onParse != nil {
		p.onParse()
	}
	return p.complete[text], p.trees[text]
}

type renderCall struct {
	op   string
	ns   int
	span Span
}

// recorder is a Renderer that logs every call.
type recorder struct {
	calls []renderCall
}

func (r *recorder) ClearNamespace(ns int) {
	r.calls = append(r.calls, renderCall{op: "clear", ns: ns})
}

func (r *recorder) AddHighlight(span Span, ns int) {
	r.calls = append(r.calls, renderCall{op: "add", ns: ns, span: span})
}

func (r *recorder) RequestRedraw() {
	r.calls = append(r.calls, renderCall{op: "redraw"})
}

func (r *recorder) reset() {
	r.calls = nil
}

func cancelledContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}
