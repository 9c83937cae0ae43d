// Package styles holds the named terminal styles that highlight rules refer to.
//
// A Style is a partial set of terminal attributes. Unset attributes inherit
// whatever is painted underneath, attributes set to false (or a colour set to
// "reset") explicitly return to the terminal default.
package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ResetColor is the colour sentinel that restores the terminal default.
const ResetColor = "reset"

// Style is a named record of terminal text attributes.
type Style struct {
	Fg            string `yaml:"fg,omitempty" mapstructure:"fg"`
	Bg            string `yaml:"bg,omitempty" mapstructure:"bg"`
	Bold          *bool  `yaml:"bold,omitempty" mapstructure:"bold"`
	Dim           *bool  `yaml:"dim,omitempty" mapstructure:"dim"`
	Italic        *bool  `yaml:"italic,omitempty" mapstructure:"italic"`
	Underline     *bool  `yaml:"underline,omitempty" mapstructure:"underline"`
	Strikethrough *bool  `yaml:"strikethrough,omitempty" mapstructure:"strikethrough"`
	Reverse       *bool  `yaml:"reverse,omitempty" mapstructure:"reverse"`
	Blink         *bool  `yaml:"blink,omitempty" mapstructure:"blink"`

	// NoBlend discards everything painted underneath instead of patching it.
	NoBlend bool `yaml:"no_blend,omitempty" mapstructure:"no_blend"`
}

// Bool returns a pointer to v, for building styles in code.
func Bool(v bool) *bool {
	return &v
}

// Patch layers over on top of s. Attributes set in over win, unset ones are
// inherited from s. A NoBlend style replaces s entirely.
func (s Style) Patch(over Style) Style {
	if over.NoBlend {
		over.NoBlend = false
		return over
	}
	out := s
	if over.Fg != "" {
		out.Fg = over.Fg
	}
	if over.Bg != "" {
		out.Bg = over.Bg
	}
	out.Bold = patchBool(out.Bold, over.Bold)
	out.Dim = patchBool(out.Dim, over.Dim)
	out.Italic = patchBool(out.Italic, over.Italic)
	out.Underline = patchBool(out.Underline, over.Underline)
	out.Strikethrough = patchBool(out.Strikethrough, over.Strikethrough)
	out.Reverse = patchBool(out.Reverse, over.Reverse)
	out.Blink = patchBool(out.Blink, over.Blink)
	return out
}

func patchBool(under, over *bool) *bool {
	if over != nil {
		return over
	}
	return under
}

// IsZero reports whether the style sets nothing at all.
func (s Style) IsZero() bool {
	return s.Fg == "" && s.Bg == "" && s.Bold == nil && s.Dim == nil &&
		s.Italic == nil && s.Underline == nil && s.Strikethrough == nil &&
		s.Reverse == nil && s.Blink == nil && !s.NoBlend
}

// Equal reports whether two styles resolve to the same attributes.
func (s Style) Equal(o Style) bool {
	return s.Fg == o.Fg && s.Bg == o.Bg && s.NoBlend == o.NoBlend &&
		boolEq(s.Bold, o.Bold) && boolEq(s.Dim, o.Dim) && boolEq(s.Italic, o.Italic) &&
		boolEq(s.Underline, o.Underline) && boolEq(s.Strikethrough, o.Strikethrough) &&
		boolEq(s.Reverse, o.Reverse) && boolEq(s.Blink, o.Blink)
}

func boolEq(a, b *bool) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Lipgloss converts the style into a lipgloss style for rendering.
func (s Style) Lipgloss() lipgloss.Style {
	st := lipgloss.NewStyle().TabWidth(lipgloss.NoTabConversion)
	if c, ok := Color(s.Fg); ok {
		st = st.Foreground(c)
	}
	if c, ok := Color(s.Bg); ok {
		st = st.Background(c)
	}
	if s.Bold != nil {
		st = st.Bold(*s.Bold)
	}
	if s.Dim != nil {
		st = st.Faint(*s.Dim)
	}
	if s.Italic != nil {
		st = st.Italic(*s.Italic)
	}
	if s.Underline != nil {
		st = st.Underline(*s.Underline)
	}
	if s.Strikethrough != nil {
		st = st.Strikethrough(*s.Strikethrough)
	}
	if s.Reverse != nil {
		st = st.Reverse(*s.Reverse)
	}
	if s.Blink != nil {
		st = st.Blink(*s.Blink)
	}
	return st
}

// namedColors maps the basic terminal colour names to ANSI indexes.
var namedColors = map[string]string{
	"black":          "0",
	"red":            "1",
	"green":          "2",
	"yellow":         "3",
	"blue":           "4",
	"magenta":        "5",
	"cyan":           "6",
	"white":          "7",
	"gray":           "8",
	"grey":           "8",
	"bright_black":   "8",
	"bright_red":     "9",
	"bright_green":   "10",
	"bright_yellow":  "11",
	"bright_blue":    "12",
	"bright_magenta": "13",
	"bright_cyan":    "14",
	"bright_white":   "15",
}

// Color resolves a colour string: a basic colour name, an ANSI index, a
// "#rrggbb" hex value, or "reset". The empty string resolves to nothing.
func Color(v string) (lipgloss.TerminalColor, bool) {
	v = strings.ToLower(strings.TrimSpace(v))
	switch {
	case v == "":
		return nil, false
	case v == ResetColor:
		return lipgloss.NoColor{}, true
	}
	if idx, ok := namedColors[v]; ok {
		return lipgloss.Color(idx), true
	}
	return lipgloss.Color(v), true
}

// ValidColor reports whether v is a colour Color understands.
func ValidColor(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" || v == ResetColor {
		return true
	}
	if _, ok := namedColors[v]; ok {
		return true
	}
	if strings.HasPrefix(v, "#") {
		if len(v) != 4 && len(v) != 7 {
			return false
		}
		for _, c := range v[1:] {
			if !strings.ContainsRune("0123456789abcdef", c) {
				return false
			}
		}
		return true
	}
	n := 0
	for _, c := range v {
		if c < '0' || c > '9' {
			return false
		}
		n = n*10 + int(c-'0')
		if n > 255 {
			return false
		}
	}
	return true
}
