// Package toaster shows short-lived notifications over the editor, such as
// the outcome of a rules reload or a theme change.
package toaster

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/zjrosen/cmdhl/internal/ui/overlay"
	"github.com/zjrosen/cmdhl/internal/ui/styles"
)

// Style determines the visual appearance of the toast.
type Style int

const (
	StyleSuccess Style = iota
	StyleError
	StyleInfo
	StyleWarn
)

// DefaultDuration is how long a toast stays up.
const DefaultDuration = 3 * time.Second

// maxTextWidth wraps long messages such as rule load errors.
const maxTextWidth = 48

// Model holds the toaster state. Each Show bumps the generation so a dismiss
// scheduled for an older toast does not hide a newer one.
type Model struct {
	message string
	style   Style
	visible bool
	gen     int
}

// New creates a hidden toaster.
func New() Model {
	return Model{}
}

// Show displays message and returns a command that dismisses it after d.
func (m Model) Show(message string, style Style, d time.Duration) (Model, tea.Cmd) {
	m.message = message
	m.style = style
	m.visible = true
	m.gen++
	gen := m.gen
	return m, tea.Tick(d, func(time.Time) tea.Msg {
		return DismissMsg{gen: gen}
	})
}

// Dismiss hides the toast if msg belongs to the one showing.
func (m Model) Dismiss(msg DismissMsg) Model {
	if msg.gen != m.gen {
		return m
	}
	m.visible = false
	m.message = ""
	return m
}

// Visible returns whether a toast is showing.
func (m Model) Visible() bool {
	return m.visible
}

// Message returns the text of the showing toast.
func (m Model) Message() string {
	return m.message
}

// View renders the toast box.
func (m Model) View() string {
	if !m.visible || m.message == "" {
		return ""
	}

	style := lipgloss.NewStyle().
		Padding(0, 1).
		Border(lipgloss.RoundedBorder())

	var icon string
	switch m.style {
	case StyleError:
		style = style.BorderForeground(styles.ToastBorderErrorColor)
		icon = "✗"
	case StyleInfo:
		style = style.BorderForeground(styles.ToastBorderInfoColor)
		icon = "i"
	case StyleWarn:
		style = style.BorderForeground(styles.ToastBorderWarnColor)
		icon = "!"
	default:
		style = style.BorderForeground(styles.ToastBorderSuccessColor)
		icon = "✓"
	}

	return style.Render(wordwrap.String(icon+" "+m.message, maxTextWidth))
}

// Overlay renders the toast in the bottom right corner of bg.
func (m Model) Overlay(bg string, width, height int) string {
	if !m.visible || m.message == "" {
		return bg
	}
	return overlay.Place(overlay.Config{
		Width:    width,
		Height:   height,
		Position: overlay.BottomRight,
		PadX:     1,
		PadY:     1,
	}, m.View(), bg)
}

// DismissMsg hides the toast it was scheduled for.
type DismissMsg struct {
	gen int
}
