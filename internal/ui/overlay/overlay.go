// Package overlay draws a box on top of an already rendered view without
// clearing what lies outside it.
package overlay

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Position specifies where to place the overlay content.
type Position int

const (
	// Center places the overlay in the middle of the screen.
	Center Position = iota
	// Top places the overlay at the top center.
	Top
	// Bottom places the overlay at the bottom center.
	Bottom
	// BottomRight places the overlay in the bottom right corner.
	BottomRight
)

// Config controls overlay rendering behavior.
type Config struct {
	Width    int
	Height   int
	Position Position
	// PadX keeps the box away from the side edge (BottomRight only).
	PadX int
	// PadY keeps the box away from the top or bottom edge.
	PadY int
}

// Place renders fg on top of bg. Both may contain ANSI sequences; the
// background left and right of each foreground line keeps its styling.
func Place(cfg Config, fg, bg string) string {
	fgLines := strings.Split(fg, "\n")
	bgLines := strings.Split(bg, "\n")

	for len(bgLines) < cfg.Height {
		bgLines = append(bgLines, "")
	}

	x, y := position(cfg, lipgloss.Width(fg), len(fgLines))

	for i, fgLine := range fgLines {
		row := y + i
		if row >= len(bgLines) {
			break
		}
		bgLine := bgLines[row]

		left := ansi.Truncate(bgLine, x, "")
		if w := ansi.StringWidth(left); w < x {
			left += strings.Repeat(" ", x-w)
		}

		var right string
		if end := x + ansi.StringWidth(fgLine); end < ansi.StringWidth(bgLine) {
			right = ansi.TruncateLeft(bgLine, end, "")
		}
		bgLines[row] = left + fgLine + right
	}

	return strings.Join(bgLines, "\n")
}

// position returns the top left cell of the box, never negative.
func position(cfg Config, w, h int) (x, y int) {
	x = (cfg.Width - w) / 2
	switch cfg.Position {
	case Top:
		y = cfg.PadY
	case Bottom:
		y = cfg.Height - h - cfg.PadY
	case BottomRight:
		x = cfg.Width - w - cfg.PadX
		y = cfg.Height - h - cfg.PadY
	default:
		y = (cfg.Height - h) / 2
	}
	return max(x, 0), max(y, 0)
}
