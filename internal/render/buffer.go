// Package render keeps the highlight spans for a buffer, grouped by
// namespace, and paints them over the text as ANSI.
package render

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/zjrosen/cmdhl/internal/highlight"
	"github.com/zjrosen/cmdhl/internal/log"
	"github.com/zjrosen/cmdhl/internal/styles"
)

// Buffer is a highlight surface. Each owner of highlights (the syntax
// engine, a search overlay) draws into its own namespace so that clearing one
// leaves the others alone. Namespaces paint in ascending id order and spans
// within a namespace in insertion order; later paints win.
//
// Buffer is not safe for concurrent use.
type Buffer struct {
	registry   *styles.Registry
	namespaces map[int][]highlight.Span
	nextNS     int
	redraws    int
	onRedraw   func()
}

// NewBuffer creates a buffer that resolves style names through reg.
func NewBuffer(reg *styles.Registry) *Buffer {
	return &Buffer{
		registry:   reg,
		namespaces: make(map[int][]highlight.Span),
	}
}

// NewNamespace allocates a fresh namespace id.
func (b *Buffer) NewNamespace() int {
	b.nextNS++
	return b.nextNS
}

// SetStyles swaps the style registry, e.g. after a rules reload.
func (b *Buffer) SetStyles(reg *styles.Registry) {
	b.registry = reg
}

// OnRedraw registers fn to run on every RequestRedraw.
func (b *Buffer) OnRedraw(fn func()) {
	b.onRedraw = fn
}

// ClearNamespace implements highlight.Renderer.
func (b *Buffer) ClearNamespace(ns int) {
	delete(b.namespaces, ns)
}

// AddHighlight implements highlight.Renderer.
func (b *Buffer) AddHighlight(span highlight.Span, ns int) {
	b.namespaces[ns] = append(b.namespaces[ns], span)
}

// RequestRedraw implements highlight.Renderer.
func (b *Buffer) RequestRedraw() {
	b.redraws++
	if b.onRedraw != nil {
		b.onRedraw()
	}
}

// Redraws returns how many redraws were requested.
func (b *Buffer) Redraws() int {
	return b.redraws
}

// Spans returns the spans in ns in paint order.
func (b *Buffer) Spans(ns int) []highlight.Span {
	return b.namespaces[ns]
}

// Segment is a run of text painted with a single style.
type Segment struct {
	Text  string
	Style styles.Style
}

// Segments splits src into runs of equal style after painting every
// namespace over it. Spans outside src are clipped; spans naming an unknown
// style are skipped. Runs never split a UTF-8 sequence.
func (b *Buffer) Segments(src string) []Segment {
	if src == "" {
		return nil
	}
	painted := make([]styles.Style, len(src))
	for _, ns := range b.order() {
		for _, span := range b.namespaces[ns] {
			st, ok := b.registry.Get(span.Style)
			if !ok {
				log.Warn(log.CatRender, "Unknown style", "style", span.Style, "namespace", ns)
				continue
			}
			lo, hi := clip(span.Start, 0, len(src)), clip(span.Finish, 0, len(src))
			for i := lo; i < hi; i++ {
				painted[i] = painted[i].Patch(st)
			}
		}
	}

	var segs []Segment
	start := 0
	for i := 0; i < len(src); {
		_, size := utf8.DecodeRuneInString(src[i:])
		if i > start && !painted[i].Equal(painted[start]) {
			segs = append(segs, Segment{Text: src[start:i], Style: painted[start]})
			start = i
		}
		i += size
	}
	return append(segs, Segment{Text: src[start:], Style: painted[start]})
}

// Paint renders src with every namespace applied.
func (b *Buffer) Paint(src string) string {
	var out strings.Builder
	for _, seg := range b.Segments(src) {
		out.WriteString(PaintSegment(seg))
	}
	return out.String()
}

// PaintSegment renders one segment. Newlines are written raw so that lipgloss
// never pads the lines of a multi-line segment to a common width.
func PaintSegment(seg Segment) string {
	if seg.Style.IsZero() {
		return seg.Text
	}
	st := seg.Style.Lipgloss()
	lines := strings.Split(seg.Text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = st.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}

func (b *Buffer) order() []int {
	ids := make([]int, 0, len(b.namespaces))
	for ns := range b.namespaces {
		ids = append(ids, ns)
	}
	sort.Ints(ids)
	return ids
}

func clip(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
