// Package token defines the token tree that the highlighter walks.
//
// A tree is produced once per parse of the command buffer and is read-only
// afterwards. Every token covers a half-open byte range of the buffer and may
// carry nested child tokens (quotes inside words, substitutions inside
// strings, heredoc bodies).
package token

import "fmt"

// Token is a labelled byte range of the command buffer.
type Token struct {
	// Start is the first byte of the token (inclusive).
	Start int
	// Finish is one past the last byte of the token, like a Go slice bound.
	Finish int
	// Kind is the parser's label for the token. Empty when unlabelled.
	Kind string
	// Nested holds child tokens ordered by Start, or nil.
	Nested []Token
}

// Tree is the root sibling list produced by a parse.
type Tree []Token

// Len returns the byte length of the token.
func (t *Token) Len() int {
	return t.Finish - t.Start
}

// Text returns the source text covered by the token.
func (t *Token) Text(src string) string {
	return src[t.Start:t.Finish]
}

// HasNested reports whether the token has at least one child.
func (t *Token) HasNested() bool {
	return len(t.Nested) > 0
}

// Validate checks the structural invariants of a tree built over a buffer of
// length size and returns the first violation found.
func Validate(tree Tree, size int) error {
	return validate(tree, 0, size, "")
}

func validate(list []Token, lo, hi int, path string) error {
	prev := lo
	for i := range list {
		tok := &list[i]
		where := fmt.Sprintf("%s%d", path, i)
		if tok.Finish < tok.Start {
			return fmt.Errorf("token %s (%s): finish %d before start %d", where, tok.Kind, tok.Finish, tok.Start)
		}
		if tok.Start < lo || tok.Finish > hi {
			return fmt.Errorf("token %s (%s): range [%d,%d) outside [%d,%d)", where, tok.Kind, tok.Start, tok.Finish, lo, hi)
		}
		if tok.Start < prev {
			return fmt.Errorf("token %s (%s): starts at %d before previous sibling start %d", where, tok.Kind, tok.Start, prev)
		}
		prev = tok.Start
		if tok.Nested != nil {
			if err := validate(tok.Nested, tok.Start, tok.Finish, where+"."); err != nil {
				return err
			}
		}
	}
	return nil
}

// Walk visits every token depth-first in pre-order. The root siblings are at
// depth 0. Returning false from fn skips the token's children.
func Walk(tree Tree, fn func(depth int, tok *Token) bool) {
	walk(tree, 0, fn)
}

func walk(list []Token, depth int, fn func(int, *Token) bool) {
	for i := range list {
		tok := &list[i]
		if fn(depth, tok) && tok.Nested != nil {
			walk(tok.Nested, depth+1, fn)
		}
	}
}

// Count returns the total number of tokens in the tree at every depth.
func Count(tree Tree) int {
	n := 0
	Walk(tree, func(int, *Token) bool {
		n++
		return true
	})
	return n
}
