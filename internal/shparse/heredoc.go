package shparse

import (
	"strings"

	"github.com/zjrosen/cmdhl/internal/token"
)

// heredoc is a here-document whose body starts after the next newline.
type heredoc struct {
	tag       string
	stripTabs bool
	expand    bool
}

// scanRedirect scans a redirection: an optional file descriptor, the
// operator, and its target word. Heredoc operators queue a body.
func (l *lexer) scanRedirect() token.Token {
	start := l.pos
	for l.pos < l.end && isDigit(l.src[l.pos]) {
		l.pos++
	}
	kind := KindLexErr
	for _, r := range redirOps {
		if strings.HasPrefix(l.src[l.pos:l.end], r.op) {
			kind = r.kind
			l.pos += len(r.op)
			break
		}
	}
	op := token.Token{Start: start, Finish: l.pos, Kind: kind}
	if kind == KindLexErr {
		l.pos++
		op.Finish = l.pos
		return op
	}

	for l.pos < l.end && (l.src[l.pos] == ' ' || l.src[l.pos] == '\t') {
		l.pos++
	}
	if l.pos >= l.end {
		l.incomplete = true
		return token.Token{Start: start, Finish: op.Finish, Kind: KindRedirect, Nested: []token.Token{op}}
	}
	if c := l.src[l.pos]; wordBreak(c) && !((c == '<' || c == '>') && l.peek(1) == '(') {
		op.Kind = KindLexErr
		return op
	}

	target := l.scanWord()
	target.Kind = KindString
	if kind == KindDinang || kind == KindDinangDash {
		target.Kind = KindHeredocOpen
		tag, quoted := heredocTag(target.Text(l.src))
		l.pending = append(l.pending, heredoc{
			tag:       tag,
			stripTabs: kind == KindDinangDash,
			expand:    !quoted,
		})
	}
	return token.Token{
		Start:  start,
		Finish: target.Finish,
		Kind:   KindRedirect,
		Nested: []token.Token{op, target},
	}
}

// heredocTag removes quoting from a heredoc delimiter word and reports
// whether any was present.
func heredocTag(word string) (string, bool) {
	if !strings.ContainsAny(word, `'"\`) {
		return word, false
	}
	var b strings.Builder
	for i := 0; i < len(word); i++ {
		switch c := word[i]; c {
		case '\'', '"':
		case '\\':
			if i+1 < len(word) {
				i++
				b.WriteByte(word[i])
			}
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), true
}

// readHeredocs reads the bodies of every queued heredoc, starting at pos
// just after a newline. Each body is followed by its delimiter line. The
// newline ending the last delimiter is left for the caller.
func (l *lexer) readHeredocs() []token.Token {
	if len(l.pending) == 0 {
		return nil
	}
	docs := l.pending
	l.pending = nil

	var out []token.Token
	for i, h := range docs {
		bodyStart := l.pos
		closeStart, closeEnd, found := l.findDelimiter(h)
		if !found {
			l.incomplete = true
			if l.end > bodyStart {
				out = append(out, l.heredocBody(h, bodyStart, l.end))
			}
			l.pos = l.end
			return out
		}
		if closeStart > bodyStart {
			out = append(out, l.heredocBody(h, bodyStart, closeStart))
		}
		out = append(out, token.Token{Start: closeStart, Finish: closeEnd, Kind: KindHeredocClose})
		l.pos = closeEnd
		if i < len(docs)-1 && l.pos < l.end && l.src[l.pos] == '\n' {
			l.pos++
		}
	}
	return out
}

// findDelimiter finds the line that ends heredoc h. closeStart is the start
// of the delimiter itself, after any stripped tabs.
func (l *lexer) findDelimiter(h heredoc) (closeStart, closeEnd int, found bool) {
	lineStart := l.pos
	for lineStart <= l.end {
		lineEnd := l.end
		if nl := strings.IndexByte(l.src[lineStart:l.end], '\n'); nl >= 0 {
			lineEnd = lineStart + nl
		}
		line := l.src[lineStart:lineEnd]
		cmp := line
		if h.stripTabs {
			cmp = strings.TrimLeft(line, "\t")
		}
		if cmp == h.tag {
			return lineEnd - len(cmp), lineEnd, true
		}
		if lineEnd == l.end {
			break
		}
		lineStart = lineEnd + 1
	}
	return 0, 0, false
}

// heredocBody builds the body token. Unquoted delimiters allow expansions,
// which become nested tokens.
func (l *lexer) heredocBody(h heredoc, start, finish int) token.Token {
	body := token.Token{Start: start, Finish: finish, Kind: KindHeredocBody}
	if !h.expand {
		return body
	}
	savedPos, savedEnd, savedIncomplete, savedPending := l.pos, l.end, l.incomplete, l.pending
	l.pos, l.end = start, finish
	marks, _ := l.scanQuoted(nil, 0)
	l.pos, l.end, l.incomplete, l.pending = savedPos, savedEnd, savedIncomplete, savedPending
	if len(marks) > 0 {
		body.Nested = fillGaps(start, finish, marks)
	}
	return body
}
