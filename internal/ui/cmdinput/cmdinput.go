// Package cmdinput provides a command line input whose buffer is highlighted
// by the rule engine on every edit.
package cmdinput

import (
	"context"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"

	"github.com/zjrosen/cmdhl/internal/highlight"
	"github.com/zjrosen/cmdhl/internal/keys"
	"github.com/zjrosen/cmdhl/internal/log"
	"github.com/zjrosen/cmdhl/internal/render"
	"github.com/zjrosen/cmdhl/internal/styles"
)

// cursorStyle is patched over whatever the engine painted under the cursor.
var cursorStyle = styles.Style{Reverse: styles.Bool(true)}

// Model is a multi-line capable text input. The cursor is a byte offset
// that always sits on a grapheme cluster boundary.
type Model struct {
	value       string
	cursor      int
	focused     bool
	width       int
	placeholder string
	keys        keys.InputKeyMap

	engine *highlight.Engine
	buffer *render.Buffer

	placeholderStyle lipgloss.Style
}

// New creates an input that highlights through engine, which must draw into
// buffer.
func New(engine *highlight.Engine, buffer *render.Buffer) Model {
	return Model{
		width:            40,
		keys:             keys.Input,
		engine:           engine,
		buffer:           buffer,
		placeholderStyle: lipgloss.NewStyle().Faint(true),
	}
}

// Value returns the current text value.
func (m Model) Value() string {
	return m.value
}

// SetValue replaces the text, clamps the cursor and re-highlights.
func (m *Model) SetValue(v string) {
	m.value = v
	m.SetCursor(m.cursor)
	m.highlight()
}

// Cursor returns the current cursor position.
func (m Model) Cursor() int {
	return m.cursor
}

// SetCursor moves the cursor, clamped to the buffer and snapped back to the
// start of the grapheme cluster it falls in.
func (m *Model) SetCursor(pos int) {
	if pos < 0 {
		pos = 0
	}
	if pos > len(m.value) {
		pos = len(m.value)
	}
	m.cursor = snap(m.value, pos)
}

// Focused returns whether the input is focused.
func (m Model) Focused() bool {
	return m.focused
}

// Focus focuses the input.
func (m *Model) Focus() {
	m.focused = true
}

// Blur removes focus from the input.
func (m *Model) Blur() {
	m.focused = false
}

// SetWidth sets the display width.
func (m *Model) SetWidth(w int) {
	if w < 1 {
		w = 1
	}
	m.width = w
}

// Width returns the display width.
func (m Model) Width() int {
	return m.width
}

// Height returns the number of display lines needed for the current content.
func (m Model) Height() int {
	return len(m.lines())
}

// SetPlaceholder sets the placeholder text.
func (m *Model) SetPlaceholder(p string) {
	m.placeholder = p
}

// KeyMap returns the editing keybindings.
func (m Model) KeyMap() keys.InputKeyMap {
	return m.keys
}

// Engine returns the highlight engine.
func (m Model) Engine() *highlight.Engine {
	return m.engine
}

// Buffer returns the highlight buffer the input paints from.
func (m Model) Buffer() *render.Buffer {
	return m.buffer
}

// highlight runs the engine over the current value.
func (m *Model) highlight() {
	if m.engine == nil {
		return
	}
	if _, err := m.engine.Update(context.Background(), m.value); err != nil {
		log.ErrorErr(log.CatUI, "Highlight update failed", err, "len", len(m.value))
	}
}

// Update handles key messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	before := m.value
	k := m.keys
	switch {
	case key.Matches(keyMsg, k.WordLeft):
		m.cursor = prevWordStart(m.value, m.cursor)
	case key.Matches(keyMsg, k.WordRight):
		m.cursor = nextWordEnd(m.value, m.cursor)
	case key.Matches(keyMsg, k.Left):
		m.cursor = prevBoundary(m.value, m.cursor)
	case key.Matches(keyMsg, k.Right):
		m.cursor = nextBoundary(m.value, m.cursor)
	case key.Matches(keyMsg, k.Home):
		m.cursor = 0
	case key.Matches(keyMsg, k.End):
		m.cursor = len(m.value)

	case key.Matches(keyMsg, k.DeleteWordBack):
		start := prevWordStart(m.value, m.cursor)
		m.value = m.value[:start] + m.value[m.cursor:]
		m.cursor = start
	case key.Matches(keyMsg, k.Backspace):
		start := prevBoundary(m.value, m.cursor)
		m.value = m.value[:start] + m.value[m.cursor:]
		m.cursor = start
	case key.Matches(keyMsg, k.Delete):
		end := nextBoundary(m.value, m.cursor)
		m.value = m.value[:m.cursor] + m.value[end:]
	case key.Matches(keyMsg, k.KillToEnd):
		m.value = m.value[:m.cursor]
	case key.Matches(keyMsg, k.KillToStart):
		m.value = m.value[m.cursor:]
		m.cursor = 0

	case key.Matches(keyMsg, k.Newline):
		m.insert("\n")
	case keyMsg.Type == tea.KeySpace:
		m.insert(" ")
	case keyMsg.Type == tea.KeyTab:
		m.insert("\t")
	case keyMsg.Type == tea.KeyRunes && !keyMsg.Alt:
		m.insert(strings.ReplaceAll(string(keyMsg.Runes), "\r\n", "\n"))
	}

	if m.value != before {
		m.highlight()
	}
	return m, nil
}

func (m *Model) insert(s string) {
	m.value = m.value[:m.cursor] + s + m.value[m.cursor:]
	m.cursor += len(s)
}

// View renders the highlighted buffer, wrapped to the configured width.
func (m Model) View() string {
	return strings.Join(m.lines(), "\n")
}

// lines paints the buffer grapheme by grapheme so that wrapping and the
// cursor never split a cluster or an escape sequence.
func (m Model) lines() []string {
	if m.value == "" {
		switch {
		case m.focused:
			return []string{render.PaintSegment(render.Segment{Text: " ", Style: cursorStyle})}
		case m.placeholder != "":
			return []string{m.placeholderStyle.Render(m.placeholder)}
		}
		return []string{""}
	}

	var (
		lines    []string
		line     strings.Builder
		width    int
		run      strings.Builder
		runStyle styles.Style
	)
	flush := func() {
		if run.Len() > 0 {
			line.WriteString(render.PaintSegment(render.Segment{Text: run.String(), Style: runStyle}))
			run.Reset()
		}
	}
	breakLine := func() {
		flush()
		lines = append(lines, line.String())
		line.Reset()
		width = 0
	}
	put := func(text string, st styles.Style, w int) {
		if width > 0 && width+w > m.width {
			breakLine()
		}
		if run.Len() > 0 && !st.Equal(runStyle) {
			flush()
		}
		runStyle = st
		run.WriteString(text)
		width += w
	}

	pos := 0
	for _, seg := range m.segments() {
		rest := seg.Text
		state := -1
		for rest != "" {
			var cluster string
			cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
			st := seg.Style
			if m.focused && pos == m.cursor {
				st = st.Patch(cursorStyle)
			}
			if cluster == "\n" || cluster == "\r\n" {
				if m.focused && pos == m.cursor {
					put(" ", st, 1)
				}
				breakLine()
			} else {
				put(cluster, st, runewidth.StringWidth(cluster))
			}
			pos += len(cluster)
		}
	}
	if m.focused && m.cursor >= len(m.value) {
		put(" ", cursorStyle, 1)
	}
	breakLine()
	return lines
}

// segments returns the painted runs of the value, or one unstyled run when
// there is no buffer.
func (m Model) segments() []render.Segment {
	if m.buffer == nil {
		return []render.Segment{{Text: m.value}}
	}
	return m.buffer.Segments(m.value)
}

// snap returns the start of the grapheme cluster containing pos.
func snap(s string, pos int) int {
	at := 0
	state := -1
	rest := s
	for rest != "" {
		var cluster string
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		if at+len(cluster) > pos {
			return at
		}
		at += len(cluster)
	}
	return at
}

// prevBoundary returns the start of the grapheme cluster before pos.
func prevBoundary(s string, pos int) int {
	if pos <= 0 {
		return 0
	}
	return snap(s, pos-1)
}

// nextBoundary returns the end of the grapheme cluster at pos.
func nextBoundary(s string, pos int) int {
	if pos >= len(s) {
		return len(s)
	}
	cluster, _, _, _ := uniseg.FirstGraphemeClusterInString(s[pos:], -1)
	return pos + len(cluster)
}

// nextWordEnd finds the position after the next word from pos.
// Skips non-word characters first, then skips word characters.
func nextWordEnd(s string, pos int) int {
	n := len(s)
	for pos < n {
		r, size := utf8.DecodeRuneInString(s[pos:])
		if isWordChar(r) {
			break
		}
		pos += size
	}
	for pos < n {
		r, size := utf8.DecodeRuneInString(s[pos:])
		if !isWordChar(r) {
			break
		}
		pos += size
	}
	return pos
}

// prevWordStart finds the position at the start of the previous word from pos.
// Skips non-word characters backward first, then skips word characters backward.
func prevWordStart(s string, pos int) int {
	for pos > 0 {
		r, size := utf8.DecodeLastRuneInString(s[:pos])
		if isWordChar(r) {
			break
		}
		pos -= size
	}
	for pos > 0 {
		r, size := utf8.DecodeLastRuneInString(s[:pos])
		if !isWordChar(r) {
			break
		}
		pos -= size
	}
	return pos
}

// isWordChar returns true for letters, digits, combining marks and underscore.
func isWordChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) || r == '_'
}
