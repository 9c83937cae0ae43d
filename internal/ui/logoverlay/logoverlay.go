// Package logoverlay shows the most recent debug log lines on top of the
// editor, so rule reloads and engine decisions can be followed live.
package logoverlay

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/zjrosen/cmdhl/internal/log"
	"github.com/zjrosen/cmdhl/internal/ui/overlay"
	"github.com/zjrosen/cmdhl/internal/ui/styles"
)

const (
	maxEntries        = 500
	viewportMaxHeight = 20
	viewportMinHeight = 3
	boxMaxWidth       = 140
	boxMinWidth       = 30
)

// CloseMsg is sent when the overlay closes itself.
type CloseMsg struct{}

// Model is the log overlay state. Entries arrive through Append, normally
// fed from log.LogEvent messages.
type Model struct {
	visible  bool
	minLevel log.Level
	entries  []string
	width    int
	height   int
	viewport viewport.Model
}

// New creates a hidden overlay showing every level.
func New() Model {
	return Model{minLevel: log.LevelDebug}
}

// Append records a formatted log line, dropping the oldest past the limit.
func (m *Model) Append(entry string) {
	entry = strings.TrimRight(entry, "\n")
	if entry == "" {
		return
	}
	m.entries = append(m.entries, entry)
	if over := len(m.entries) - maxEntries; over > 0 {
		m.entries = append([]string(nil), m.entries[over:]...)
	}
	if m.visible {
		m.refreshViewport()
		m.viewport.GotoBottom()
	}
}

// Len returns the number of retained entries.
func (m Model) Len() int {
	return len(m.entries)
}

// Update handles keys while the overlay is visible.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.visible {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "c":
			m.entries = nil
			m.refreshViewport()
		case "d":
			m.setLevel(log.LevelDebug)
		case "i":
			m.setLevel(log.LevelInfo)
		case "w":
			m.setLevel(log.LevelWarn)
		case "e":
			m.setLevel(log.LevelError)
		case "j", "down":
			m.viewport.ScrollDown(1)
		case "k", "up":
			m.viewport.ScrollUp(1)
		case "g":
			m.viewport.GotoTop()
		case "G":
			m.viewport.GotoBottom()
		case "ctrl+c":
			return m, tea.Quit
		case "ctrl+x", "esc":
			m.visible = false
			return m, func() tea.Msg { return CloseMsg{} }
		}

	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
	}

	return m, nil
}

func (m *Model) setLevel(l log.Level) {
	m.minLevel = l
	m.refreshViewport()
}

// View renders the bordered log box, or nothing when hidden.
func (m Model) View() string {
	if !m.visible {
		return ""
	}

	width := m.boxWidth()
	divider := lipgloss.NewStyle().
		Foreground(styles.OverlayBorderColor).
		Render(strings.Repeat("─", width))
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(styles.OverlayTitleColor).
		PaddingLeft(1).
		Render("Logs")

	body := strings.Join([]string{
		title,
		divider,
		m.viewport.View(),
		divider,
		m.filterHint(),
	}, "\n")

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.OverlayBorderColor).
		Width(width).
		Render(body)
}

// Overlay renders the box centered over bg.
func (m Model) Overlay(bg string) string {
	if !m.visible {
		return bg
	}
	return overlay.Place(overlay.Config{
		Width:    m.width,
		Height:   m.height,
		Position: overlay.Center,
	}, m.View(), bg)
}

// Visible returns whether the overlay is showing.
func (m Model) Visible() bool {
	return m.visible
}

// Toggle flips visibility.
func (m *Model) Toggle() {
	m.visible = !m.visible
	if m.visible {
		m.refreshViewport()
		m.viewport.GotoBottom()
	}
}

// Hide makes the overlay invisible.
func (m *Model) Hide() {
	m.visible = false
}

// SetSize updates the screen size the box is laid out in.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.refreshViewport()
}

func (m *Model) refreshViewport() {
	if m.width == 0 || m.height == 0 {
		return
	}
	// Title, two dividers, hint and the border take six rows.
	h := max(min(viewportMaxHeight, m.height-6), viewportMinHeight)
	m.viewport = viewport.New(m.contentWidth(), h)
	m.viewport.SetContent(m.content())
}

func (m Model) content() string {
	var lines []string
	for _, entry := range m.entries {
		if m.matchesLevel(entry) {
			lines = append(lines, m.colorize(entry, m.contentWidth()))
		}
	}
	if len(lines) == 0 {
		return lipgloss.NewStyle().
			Foreground(styles.TextMutedColor).
			Italic(true).
			Render("No logs to display")
	}
	return strings.Join(lines, "\n")
}

func (m Model) boxWidth() int {
	return max(min(m.width-4, boxMaxWidth), boxMinWidth)
}

func (m Model) contentWidth() int {
	return m.boxWidth() - 2
}

// entryLevel reads the level out of a formatted line. ok is false for lines
// that are not in log.Format's layout.
func entryLevel(entry string) (log.Level, bool) {
	name, _, ok := log.ParseEntry(entry)
	if !ok {
		return log.LevelDebug, false
	}
	lvl, err := log.ParseLevel(name)
	if err != nil {
		return log.LevelDebug, false
	}
	return lvl, true
}

// matchesLevel reports whether entry passes the filter. Lines with no
// recognisable level are always shown.
func (m Model) matchesLevel(entry string) bool {
	lvl, ok := entryLevel(entry)
	return !ok || lvl >= m.minLevel
}

func (m Model) colorize(entry string, maxWidth int) string {
	if ansi.StringWidth(entry) > maxWidth {
		entry = ansi.Truncate(entry, maxWidth, "...")
	}

	color := styles.TextPrimaryColor
	if lvl, ok := entryLevel(entry); ok {
		switch lvl {
		case log.LevelError:
			color = styles.StatusErrorColor
		case log.LevelWarn:
			color = styles.StatusWarningColor
		case log.LevelInfo:
			color = styles.ToastBorderInfoColor
		default:
			color = styles.TextMutedColor
		}
	}
	return lipgloss.NewStyle().Foreground(color).Render(entry)
}

func (m Model) filterHint() string {
	hint := lipgloss.NewStyle().Foreground(styles.TextMutedColor)
	active := lipgloss.NewStyle().Foreground(styles.TextPrimaryColor).Bold(true)

	parts := []string{hint.Render("[c] Clear")}
	for _, opt := range []struct {
		level log.Level
		label string
	}{
		{log.LevelDebug, "[d] Debug"},
		{log.LevelInfo, "[i] Info"},
		{log.LevelWarn, "[w] Warn"},
		{log.LevelError, "[e] Error"},
	} {
		if opt.level == m.minLevel {
			parts = append(parts, active.Render(opt.label))
		} else {
			parts = append(parts, hint.Render(opt.label))
		}
	}
	return strings.Join(parts, "  ")
}
