// Package highlight turns a token tree into styled spans.
//
// Apply runs every rule over every sibling list of the tree and records raw
// hits. Resolve converts those hits into spans ordered for last-write-wins
// painting. Engine ties both to a parser and a renderer and re-runs them as
// the buffer changes.
package highlight

import (
	"fmt"

	"github.com/zjrosen/cmdhl/internal/match"
	"github.com/zjrosen/cmdhl/internal/rules"
	"github.com/zjrosen/cmdhl/internal/token"
)

// DepthScale separates declared priorities so that no nesting depth can lift
// a span above a rule with a higher declared priority.
const DepthScale = 1000

// NestedPriority decides whether deeper tokens paint over their parents or
// the other way round when declared priorities tie.
type NestedPriority string

const (
	// NestedInner lets content override outer context.
	NestedInner NestedPriority = "inner"
	// NestedOuter lets outer context override content.
	NestedOuter NestedPriority = "outer"
)

// ParseNestedPriority validates a config value. Empty means inner.
func ParseNestedPriority(s string) (NestedPriority, error) {
	switch NestedPriority(s) {
	case NestedInner, "":
		return NestedInner, nil
	case NestedOuter:
		return NestedOuter, nil
	}
	return NestedInner, fmt.Errorf("invalid nested priority %q (must be inner or outer)", s)
}

func (p NestedPriority) bias() int {
	if p == NestedOuter {
		return -1
	}
	return 1
}

// ApplyOptions tunes priority composition.
type ApplyOptions struct {
	NestedPriority NestedPriority
}

// Hit is a matcher hit annotated with where it was found.
type Hit struct {
	match.Hit
	// Depth is the nesting level of the sibling list the rule ran on. Hits
	// from a contains match keep the depth of the outer token.
	Depth int
	// Rule is the index of the rule in the set.
	Rule int
	// Priority is the effective priority used for ordering.
	Priority int
}

// Priority combines a rule's declared priority with the nesting depth of the
// sibling list it matched on:
//
//	declared*DepthScale + bias*min(depth, DepthScale-1)
//
// where bias is +1 for NestedInner and -1 for NestedOuter.
func Priority(declared, depth int, np NestedPriority) int {
	if depth > DepthScale-1 {
		depth = DepthScale - 1
	}
	return declared*DepthScale + np.bias()*depth
}

// Apply runs every rule against the root sibling list and then, depth first,
// against every token's nested list. A nested list is visited whether or not
// any rule matched its parent. Hits are returned in emission order: walk
// order, then rule order, then match order.
func Apply(set *rules.Set, tree token.Tree, src string, opts ApplyOptions) []Hit {
	if set.Len() == 0 || len(tree) == 0 {
		return nil
	}
	var hits []Hit
	applyList(set, tree, src, 0, opts, &hits)
	return hits
}

func applyList(set *rules.Set, list []token.Token, src string, depth int, opts ApplyOptions, out *[]Hit) {
	for ri, rule := range set.Rules {
		prio := Priority(rule.Priority, depth, opts.NestedPriority)
		match.Scan(rule.Sequence, list, src, func(found []match.Hit) {
			for _, h := range found {
				*out = append(*out, Hit{Hit: h, Depth: depth, Rule: ri, Priority: prio})
			}
		})
	}
	for i := range list {
		if len(list[i].Nested) > 0 {
			applyList(set, list[i].Nested, src, depth+1, opts, out)
		}
	}
}
