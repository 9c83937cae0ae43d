// Package shparse is a small shell tokenizer that produces the token trees
// the highlighter walks.
//
// It is not a shell parser: it recognises enough structure to label words,
// operators, redirections, quotes, substitutions, and heredocs, and to tell
// whether the buffer is a complete command line. Kind names follow zsh's
// lexer so rule files are portable between the two.
package shparse

import (
	"strings"

	"github.com/zjrosen/cmdhl/internal/token"
)

// Options tunes the tokenizer.
type Options struct {
	// Comments treats an unquoted # at the start of a word as a comment
	// running to the end of the line, like zsh's INTERACTIVE_COMMENTS.
	Comments bool
}

// Parser tokenizes command buffers. It is stateless between calls and safe
// for concurrent use.
type Parser struct {
	opts Options
}

// New creates a parser with the given options.
func New(opts Options) *Parser {
	return &Parser{opts: opts}
}

// Parse tokenizes text and reports whether it is a complete command line.
func (p *Parser) Parse(text string) (bool, token.Tree) {
	return Parse(text, p.opts)
}

// Parse tokenizes text with opts. A blank buffer yields no tokens and is
// never complete.
func Parse(text string, opts Options) (bool, token.Tree) {
	if strings.TrimSpace(text) == "" {
		return false, nil
	}
	l := &lexer{src: text, end: len(text), opts: opts}
	toks, st := l.parseTop()
	if len(toks) == 0 {
		return false, nil
	}
	complete := !l.incomplete && len(l.pending) == 0 && len(st.openers) == 0
	if complete {
		switch lastSignificant(toks) {
		case KindBar, KindDbar, KindDamper, KindBang:
			complete = false
		}
	}
	return complete, token.Tree(toks)
}

// lastSignificant returns the kind of the last token that is not a
// separator or comment.
func lastSignificant(toks []token.Token) string {
	for i := len(toks) - 1; i >= 0; i-- {
		switch toks[i].Kind {
		case KindSeper, KindComment, KindHeredocBody, KindHeredocClose:
			continue
		}
		return toks[i].Kind
	}
	return ""
}
