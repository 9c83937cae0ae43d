package shparse

import (
	"strings"

	"github.com/zjrosen/cmdhl/internal/token"
)

// wordBreak reports whether c ends an unquoted word.
func wordBreak(c byte) bool {
	switch c {
	case ' ', '\t', '\n', ';', '&', '|', '(', ')', '<', '>':
		return true
	}
	return false
}

// scanWord scans one word starting at pos. The returned token has no kind;
// its Nested list holds the quoting and expansion marks with the plain text
// between them, or is nil when the word is plain text.
func (l *lexer) scanWord() token.Token {
	start := l.pos
	var marks []token.Token
	for l.pos < l.end {
		c := l.src[l.pos]
		if (c == '<' || c == '>') && l.peek(1) == '(' {
			marks = append(marks, l.scanProcSubst())
			continue
		}
		if wordBreak(c) {
			break
		}
		switch c {
		case '`':
			if l.tickDepth > 0 {
				return word(start, l.pos, marks)
			}
			marks = append(marks, l.scanTick(InnerTick))
		case '\\':
			marks = append(marks, l.scanEscape())
		case '\'':
			marks = l.scanSingle(marks)
		case '"':
			marks = l.scanDouble(marks)
		case '$':
			marks = append(marks, l.scanDollar(false)...)
		case '~':
			if l.pos == start {
				marks = append(marks, mark(l.pos, 1, InnerTilde))
			}
			l.pos++
		case '*':
			marks = append(marks, mark(l.pos, 1, InnerStar))
			l.pos++
		case '?':
			marks = append(marks, mark(l.pos, 1, InnerQuest))
			l.pos++
		case '{':
			marks = append(marks, mark(l.pos, 1, InnerInbrace))
			l.pos++
		case '}':
			marks = append(marks, mark(l.pos, 1, InnerOutbrace))
			l.pos++
		default:
			l.pos++
		}
	}
	return word(start, l.pos, marks)
}

// word builds a word token over [start, finish), filling the gaps between
// marks with plain text tokens.
func word(start, finish int, marks []token.Token) token.Token {
	w := token.Token{Start: start, Finish: finish}
	if len(marks) == 0 {
		return w
	}
	w.Nested = fillGaps(start, finish, marks)
	return w
}

func fillGaps(start, finish int, marks []token.Token) []token.Token {
	out := make([]token.Token, 0, 2*len(marks)+1)
	at := start
	for _, m := range marks {
		if m.Start > at {
			out = append(out, token.Token{Start: at, Finish: m.Start, Kind: InnerText})
		}
		out = append(out, m)
		at = m.Finish
	}
	if finish > at {
		out = append(out, token.Token{Start: at, Finish: finish, Kind: InnerText})
	}
	return out
}

// scanEscape scans a backslash. The escaped character stays plain text.
func (l *lexer) scanEscape() token.Token {
	m := mark(l.pos, 1, InnerBnull)
	l.pos++
	if l.pos >= l.end {
		l.incomplete = true
		return m
	}
	l.pos++
	return m
}

// scanSingle scans a single-quoted string. Nothing is special inside.
func (l *lexer) scanSingle(marks []token.Token) []token.Token {
	marks = append(marks, mark(l.pos, 1, InnerSnull))
	l.pos++
	i := strings.IndexByte(l.src[l.pos:l.end], '\'')
	if i < 0 {
		l.incomplete = true
		l.pos = l.end
		return marks
	}
	l.pos += i
	marks = append(marks, mark(l.pos, 1, InnerSnull))
	l.pos++
	return marks
}

// scanDouble scans a double-quoted string.
func (l *lexer) scanDouble(marks []token.Token) []token.Token {
	marks = append(marks, mark(l.pos, 1, InnerDnull))
	l.pos++
	marks, closed := l.scanQuoted(marks, '"')
	if !closed {
		l.incomplete = true
	}
	return marks
}

// scanQuoted scans text where only $, backtick, and backslash are special,
// up to and including stop. A zero stop scans to the end of the range, as
// in a heredoc body.
func (l *lexer) scanQuoted(marks []token.Token, stop byte) ([]token.Token, bool) {
	for l.pos < l.end {
		c := l.src[l.pos]
		switch {
		case stop != 0 && c == stop:
			marks = append(marks, mark(l.pos, 1, InnerDnull))
			l.pos++
			return marks, true
		case c == '\\':
			if strings.IndexByte("$`\"\\\n", l.peek(1)) >= 0 && l.peek(1) != 0 {
				marks = append(marks, mark(l.pos, 1, InnerBnull))
				l.pos += 2
				continue
			}
			if l.pos+1 >= l.end && stop != 0 {
				l.incomplete = true
			}
			l.pos++
		case c == '$':
			marks = append(marks, l.scanDollar(true)...)
		case c == '`':
			if l.tickDepth > 0 {
				return marks, false
			}
			marks = append(marks, l.scanTick(InnerQtick))
		default:
			l.pos++
		}
	}
	return marks, stop == 0
}

func isNameByte(c byte) bool {
	return c == '_' || isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// scanDollar scans a $ expansion. Parameter names stay plain text after the
// String mark; $( ) becomes a substitution and ${ } a braced parameter.
func (l *lexer) scanDollar(quoted bool) []token.Token {
	kind := InnerString
	if quoted {
		kind = InnerQstring
	}
	start := l.pos
	next := l.peek(1)
	switch {
	case next == '(':
		return []token.Token{l.scanParenSubst(mark(start, 1, kind))}

	case next == '{':
		out := []token.Token{mark(start, 1, kind), mark(start+1, 1, InnerInbrace)}
		l.pos += 2
		depth := 1
		for l.pos < l.end {
			switch l.src[l.pos] {
			case '{':
				depth++
			case '}':
				depth--
			}
			if depth == 0 {
				break
			}
			l.pos++
		}
		if l.pos >= l.end {
			l.incomplete = true
			return out
		}
		out = append(out, mark(l.pos, 1, InnerOutbrace))
		l.pos++
		return out

	case next == '\'' && !quoted:
		// $'...' honours backslash escapes inside the quotes.
		out := []token.Token{mark(start, 1, kind), mark(start+1, 1, InnerSnull)}
		l.pos += 2
		for l.pos < l.end && l.src[l.pos] != '\'' {
			if l.src[l.pos] == '\\' && l.pos+1 < l.end {
				l.pos++
			}
			l.pos++
		}
		if l.pos >= l.end {
			l.incomplete = true
			return out
		}
		out = append(out, mark(l.pos, 1, InnerSnull))
		l.pos++
		return out

	case isNameByte(next) || strings.IndexByte("?#$!@*-", next) >= 0 && next != 0:
		l.pos++
		return []token.Token{mark(start, 1, kind)}
	}
	l.pos++
	return nil
}

// scanParenSubst scans $( ) or the ( ) of a process substitution. lead is
// the mark for the introducing character, which sits just before the
// opening parenthesis at pos+1.
func (l *lexer) scanParenSubst(lead token.Token) token.Token {
	start := l.pos
	l.pos += 2
	nested := []token.Token{lead, mark(start+1, 1, InnerInpar)}
	inner, closed := l.parseSeq(')', &seqState{cmdPos: true})
	nested = append(nested, inner...)
	if closed {
		nested = append(nested, mark(l.pos-1, 1, InnerOutpar))
	} else {
		l.incomplete = true
	}
	return token.Token{Start: start, Finish: l.pos, Kind: KindSubstitution, Nested: nested}
}

// scanProcSubst scans <( ) or >( ).
func (l *lexer) scanProcSubst() token.Token {
	kind := InnerInangProc
	if l.src[l.pos] == '>' {
		kind = InnerOutangProc
	}
	return l.scanParenSubst(mark(l.pos, 1, kind))
}

// scanTick scans a backtick command substitution.
func (l *lexer) scanTick(kind string) token.Token {
	start := l.pos
	l.pos++
	nested := []token.Token{mark(start, 1, kind)}
	l.tickDepth++
	inner, closed := l.parseSeq('`', &seqState{cmdPos: true})
	l.tickDepth--
	nested = append(nested, inner...)
	if closed {
		nested = append(nested, mark(l.pos-1, 1, kind))
	} else {
		l.incomplete = true
	}
	return token.Token{Start: start, Finish: l.pos, Kind: KindSubstitution, Nested: nested}
}
