package shparse

import (
	"regexp"
	"strings"

	"github.com/zjrosen/cmdhl/internal/token"
)

// assignRe matches the name part of a parameter assignment.
var assignRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\[[^\]]*\])?\+?=`)

// lexer holds the scan position shared by every nesting level.
type lexer struct {
	src  string
	pos  int
	end  int
	opts Options

	incomplete bool
	pending    []heredoc
	tickDepth  int
}

// seqState is the per-level state of a command sequence.
type seqState struct {
	cmdPos   bool
	openers  []string
	pattern  bool
	expectIn bool
	funcName bool
	prevKind string
}

func (s *seqState) top() string {
	if len(s.openers) == 0 {
		return ""
	}
	return s.openers[len(s.openers)-1]
}

func (s *seqState) push(o string) {
	s.openers = append(s.openers, o)
}

// pop removes the innermost opener if it is one of want.
func (s *seqState) pop(want ...string) bool {
	top := s.top()
	for _, w := range want {
		if top == w {
			s.openers = s.openers[:len(s.openers)-1]
			return true
		}
	}
	return false
}

func (l *lexer) parseTop() ([]token.Token, *seqState) {
	st := &seqState{cmdPos: true}
	toks, _ := l.parseSeq(0, st)
	return toks, st
}

// parseSeq scans a command sequence until term (')' or '`') or the end of
// input. It reports whether the terminator was found and consumed; a
// top-level sequence (term 0) always reports true.
func (l *lexer) parseSeq(term byte, st *seqState) ([]token.Token, bool) {
	var toks []token.Token
	emit := func(t token.Token) {
		toks = append(toks, t)
		st.prevKind = t.Kind
	}
	op := func(n int, kind string) {
		emit(token.Token{Start: l.pos, Finish: l.pos + n, Kind: kind})
		l.pos += n
	}
	// joiner emits a pipeline or list operator, which is an error where a
	// command is expected.
	joiner := func(n int, kind string) {
		if st.cmdPos && !st.pattern {
			kind = KindLexErr
		}
		op(n, kind)
		st.cmdPos = true
	}

	for {
		l.skipBlanks()
		if l.pos >= l.end {
			return toks, term == 0
		}
		c := l.src[l.pos]
		switch {
		case term == '`' && c == '`':
			l.pos++
			return toks, true

		case c == '\n':
			op(1, KindSeper)
			st.cmdPos = true
			st.funcName = false
			for _, t := range l.readHeredocs() {
				emit(t)
			}
			continue

		case c == '#' && l.opts.Comments:
			nl := strings.IndexByte(l.src[l.pos:l.end], '\n')
			n := l.end - l.pos
			if nl >= 0 {
				n = nl
			}
			op(n, KindComment)
			continue

		case c == ';':
			if l.peek(1) == ';' {
				op(2, KindDsemi)
				st.pattern = st.top() == "case"
				st.cmdPos = true
				continue
			}
			op(1, KindSeper)
			st.cmdPos = true
			continue

		case c == '&':
			switch l.peek(1) {
			case '&':
				joiner(2, KindDamper)
				continue
			case '>':
				emit(l.scanRedirect())
				continue
			}
			joiner(1, KindAmper)
			continue

		case c == '|':
			switch l.peek(1) {
			case '|':
				joiner(2, KindDbar)
			case '&':
				joiner(2, KindBar)
			default:
				joiner(1, KindBar)
			}
			continue

		case c == '(':
			if !st.pattern {
				st.push("(")
			}
			op(1, KindInpar)
			st.cmdPos = true
			continue

		case c == ')':
			switch {
			case st.pattern:
				op(1, KindOutpar)
				st.pattern = false
				st.cmdPos = true
			case st.pop("("):
				op(1, KindOutpar)
				st.cmdPos = false
			case term == ')':
				l.pos++
				return toks, true
			default:
				op(1, KindLexErr)
			}
			continue

		case (c == '<' || c == '>') && l.peek(1) != '(':
			emit(l.scanRedirect())
			continue

		case isDigit(c) && l.fdRedirect():
			emit(l.scanRedirect())
			continue
		}

		start := l.pos
		w := l.scanWord()
		if w.Finish == start {
			if l.tickDepth > 0 && c == '`' {
				return toks, false
			}
			op(1, KindLexErr)
			continue
		}
		l.classify(&w, st)
		emit(w)
	}
}

// skipBlanks skips spaces, tabs, and backslash-newline continuations.
func (l *lexer) skipBlanks() {
	for l.pos < l.end {
		switch l.src[l.pos] {
		case ' ', '\t':
			l.pos++
		case '\\':
			if l.peek(1) != '\n' {
				return
			}
			l.pos += 2
			if l.pos >= l.end {
				l.incomplete = true
			}
		default:
			return
		}
	}
}

func (l *lexer) peek(n int) byte {
	if l.pos+n >= l.end {
		return 0
	}
	return l.src[l.pos+n]
}

// fdRedirect reports whether the digits at pos are a file descriptor prefix
// of a redirection operator.
func (l *lexer) fdRedirect() bool {
	i := l.pos
	for i < l.end && isDigit(l.src[i]) {
		i++
	}
	return i < l.end && (l.src[i] == '<' || l.src[i] == '>') &&
		(i+1 >= l.end || l.src[i+1] != '(')
}

// classify assigns a kind to a scanned word from its position in the
// command and updates the sequence state.
func (l *lexer) classify(w *token.Token, st *seqState) {
	text := w.Text(l.src)
	switch {
	case st.pattern:
		if text == "esac" {
			w.Kind, w.Nested = KindEsac, nil
			st.pattern = false
			st.pop("case")
			st.cmdPos = false
			return
		}
		w.Kind = KindString
		return

	case st.expectIn:
		w.Kind = KindString
		if text == "in" {
			st.expectIn = false
			st.pattern = true
		}
		return

	case st.funcName:
		w.Kind = KindString
		st.funcName = false
		st.cmdPos = true
		return

	case st.cmdPos:
		if kw, ok := reserved[text]; ok {
			w.Kind, w.Nested = kw, nil
			l.keyword(w, st)
			return
		}
		if assignRe.MatchString(text) {
			w.Kind = KindEnv
			if strings.HasSuffix(text, "=") && l.pos < l.end && l.src[l.pos] == '(' {
				l.scanArray(w)
			}
			return
		}
		w.Kind = KindCommand
		st.cmdPos = false
		return

	case text == "{" && st.prevKind == KindOutpar:
		w.Kind, w.Nested = KindInbrace, nil
		st.push("{")
		st.cmdPos = true
		return
	}
	w.Kind = KindString
}

// keyword applies the effect of a reserved word.
func (l *lexer) keyword(w *token.Token, st *seqState) {
	st.cmdPos = true
	switch w.Kind {
	case KindIf:
		st.push("if")
	case KindFi:
		if !st.pop("if") {
			w.Kind = KindLexErr
		}
		st.cmdPos = false
	case KindWhile, KindUntil:
		st.push("loop")
	case KindFor:
		st.push("loop")
		st.cmdPos = false
	case KindDo:
		st.pop("loop")
		st.push("do")
	case KindDone:
		if !st.pop("do") {
			w.Kind = KindLexErr
		}
		st.cmdPos = false
	case KindCase:
		st.push("case")
		st.expectIn = true
		st.cmdPos = false
	case KindEsac:
		if !st.pop("case") {
			w.Kind = KindLexErr
		}
		st.cmdPos = false
	case KindInbrace:
		st.push("{")
	case KindOutbrace:
		if !st.pop("{") {
			w.Kind = KindLexErr
		}
		st.cmdPos = false
	case KindFunc:
		st.funcName = true
		st.cmdPos = false
	}
}

// scanArray extends an assignment word over a parenthesised array value.
func (l *lexer) scanArray(w *token.Token) {
	w.Kind = KindEnvArray
	var nested []token.Token
	if w.Finish > w.Start {
		nested = append(nested, token.Token{Start: w.Start, Finish: w.Finish, Kind: InnerText})
	}
	nested = append(nested, mark(l.pos, 1, InnerInpar))
	l.pos++
	for {
		for l.pos < l.end && isBlank(l.src[l.pos]) {
			l.pos++
		}
		if l.pos >= l.end {
			l.incomplete = true
			break
		}
		if l.src[l.pos] == ')' {
			nested = append(nested, mark(l.pos, 1, InnerOutpar))
			l.pos++
			break
		}
		start := l.pos
		el := l.scanWord()
		if el.Finish == start {
			// An operator inside the parentheses ends the array.
			l.incomplete = true
			break
		}
		el.Kind = KindString
		nested = append(nested, el)
	}
	w.Finish = l.pos
	w.Nested = nested
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n'
}

func mark(pos, n int, kind string) token.Token {
	return token.Token{Start: pos, Finish: pos + n, Kind: kind}
}
