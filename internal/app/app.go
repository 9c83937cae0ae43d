// Package app contains the root model of the interactive editor.
package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"

	"github.com/zjrosen/cmdhl/internal/config"
	"github.com/zjrosen/cmdhl/internal/highlight"
	"github.com/zjrosen/cmdhl/internal/keys"
	"github.com/zjrosen/cmdhl/internal/log"
	"github.com/zjrosen/cmdhl/internal/pubsub"
	"github.com/zjrosen/cmdhl/internal/reload"
	"github.com/zjrosen/cmdhl/internal/render"
	"github.com/zjrosen/cmdhl/internal/rules"
	"github.com/zjrosen/cmdhl/internal/styles"
	"github.com/zjrosen/cmdhl/internal/ui/cmdinput"
	"github.com/zjrosen/cmdhl/internal/ui/logoverlay"
	uistyles "github.com/zjrosen/cmdhl/internal/ui/styles"
	"github.com/zjrosen/cmdhl/internal/ui/toaster"
)

const (
	prompt       = "❯ "
	continuation = "  "
	maxSpanRows  = 12
)

// RulesLoader compiles the active rules against a style registry. The editor
// calls it when the theme changes so that rule-file styles stay layered on
// top of the new preset.
type RulesLoader func(base *styles.Registry) (*rules.Set, error)

// Options wires the editor to an engine and its surroundings.
type Options struct {
	Config config.Config
	// ConfigPath is where theme changes are saved. Empty disables saving.
	ConfigPath string

	Engine *highlight.Engine
	Buffer *render.Buffer
	Rules  RulesLoader

	// Reloader publishes rules file changes. Nil when no rules file is
	// configured.
	Reloader *reload.Reloader

	// Debug enables the log overlay.
	Debug bool

	// Initial is the starting buffer content.
	Initial string
}

// Model is the root editor state.
type Model struct {
	cfg        config.Config
	configPath string
	engine     *highlight.Engine
	buffer     *render.Buffer
	loadRules  RulesLoader
	reloader   *reload.Reloader

	input     cmdinput.Model
	keys      keys.EditorKeyMap
	help      help.Model
	showHelp  bool
	showSpans bool
	toaster   toaster.Model

	debug bool
	logs  logoverlay.Model

	ctx            context.Context
	cancel         context.CancelFunc
	reloadListener *pubsub.ContinuousListener[reload.Result]
	logListener    *log.LogListener

	width    int
	height   int
	accepted bool
}

// New creates the editor model.
func New(opts Options) Model {
	ctx, cancel := context.WithCancel(context.Background())

	input := cmdinput.New(opts.Engine, opts.Buffer)
	input.SetPlaceholder("type a command")
	input.Focus()
	if opts.Initial != "" {
		input.SetValue(opts.Initial)
		input.SetCursor(len(opts.Initial))
	}

	loadRules := opts.Rules
	if loadRules == nil {
		loadRules = rules.Default
	}

	m := Model{
		cfg:        opts.Config,
		configPath: opts.ConfigPath,
		engine:     opts.Engine,
		buffer:     opts.Buffer,
		loadRules:  loadRules,
		reloader:   opts.Reloader,
		input:      input,
		keys:       keys.Editor,
		help:       help.New(),
		toaster:    toaster.New(),
		debug:      opts.Debug,
		logs:       logoverlay.New(),
		ctx:        ctx,
		cancel:     cancel,
		width:      80,
	}
	if opts.Reloader != nil {
		m.reloadListener = pubsub.NewContinuousListener(ctx, opts.Reloader.Broker())
	}
	if opts.Debug {
		m.logListener = log.NewListener(ctx)
	}
	m.resize()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.reloadListener.Listen(), m.logListener.Listen())
}

// Value returns the buffer content.
func (m Model) Value() string {
	return m.input.Value()
}

// Accepted reports whether the user accepted the buffer with enter.
func (m Model) Accepted() bool {
	return m.accepted
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case log.LogEvent:
		m.logs.Append(msg.Payload)
		return m, m.logListener.Listen()

	case pubsub.Event[reload.Result]:
		cmd := m.handleReload(msg)
		return m, tea.Batch(cmd, m.reloadListener.Listen())

	case toaster.DismissMsg:
		m.toaster = m.toaster.Dismiss(msg)
		return m, nil

	case logoverlay.CloseMsg:
		m.logs.Hide()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.debug && msg.String() == "ctrl+x" {
		m.logs.Toggle()
		return m, nil
	}
	if m.logs.Visible() {
		var cmd tea.Cmd
		m.logs, cmd = m.logs.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		log.Debug(log.CatUI, "Editor quit", "session", m.engine.Session())
		return m, tea.Quit

	case key.Matches(msg, m.keys.Accept):
		return m.accept()

	case key.Matches(msg, m.keys.ReloadRules):
		return m.reloadRules()

	case key.Matches(msg, m.keys.CycleTheme):
		return m.cycleTheme()

	case key.Matches(msg, m.keys.ToggleSpans):
		m.showSpans = !m.showSpans
		return m, nil

	case key.Matches(msg, m.keys.Help):
		m.showHelp = !m.showHelp
		m.help.ShowAll = m.showHelp
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// accept finishes the session when the buffer is a complete command and
// otherwise continues it on a new line.
func (m Model) accept() (tea.Model, tea.Cmd) {
	if m.input.Value() == "" {
		return m, nil
	}
	last, ok := m.engine.Last()
	if !ok || !last.Complete {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(tea.KeyMsg{Type: tea.KeyEnter, Alt: true})
		return m, cmd
	}
	m.accepted = true
	log.Info(log.CatUI, "Buffer accepted", "session", m.engine.Session(), "len", len(m.input.Value()))
	return m, tea.Quit
}

// reloadRules compiles the rules file off the update loop. The result comes
// back through the reload listener.
func (m Model) reloadRules() (tea.Model, tea.Cmd) {
	if m.reloader == nil {
		var cmd tea.Cmd
		m.toaster, cmd = m.toaster.Show("No rules file configured, using built-in rules", toaster.StyleInfo, toaster.DefaultDuration)
		return m, cmd
	}
	r, ctx := m.reloader, m.ctx
	return m, func() tea.Msg {
		r.Reload(ctx)
		return nil
	}
}

// handleReload applies a ReloadedEvent and reports a FailedEvent. A failed
// reload leaves the active rules in place.
func (m *Model) handleReload(ev pubsub.Event[reload.Result]) tea.Cmd {
	var cmd tea.Cmd
	switch ev.Type {
	case pubsub.ReloadedEvent:
		m.applyRules(ev.Payload.Set)
		m.toaster, cmd = m.toaster.Show(
			fmt.Sprintf("Rules reloaded (%d rules)", ev.Payload.Set.Len()),
			toaster.StyleSuccess, toaster.DefaultDuration)
	case pubsub.FailedEvent:
		m.toaster, cmd = m.toaster.Show(
			fmt.Sprintf("Rules rejected: %v", ev.Payload.Err),
			toaster.StyleError, toaster.DefaultDuration)
	}
	return cmd
}

func (m *Model) applyRules(set *rules.Set) {
	m.engine.SetRules(m.ctx, set)
	m.buffer.SetStyles(set.Styles)
	if _, err := m.engine.Refresh(m.ctx); err != nil {
		log.ErrorErr(log.CatUI, "Refresh after rules change failed", err)
	}
}

// cycleTheme switches to the next preset, recompiles the rules against it
// and saves the choice.
func (m Model) cycleTheme() (tea.Model, tea.Cmd) {
	names := styles.PresetNames()
	next := names[0]
	for i, name := range names {
		if name == m.cfg.Theme.Preset {
			next = names[(i+1)%len(names)]
			break
		}
	}

	theme := m.cfg.Theme
	theme.Preset = next
	var cmd tea.Cmd
	reg, err := theme.Registry()
	if err != nil {
		m.toaster, cmd = m.toaster.Show(err.Error(), toaster.StyleError, toaster.DefaultDuration)
		return m, cmd
	}
	set, err := m.loadRules(reg)
	if err != nil {
		m.toaster, cmd = m.toaster.Show(fmt.Sprintf("Theme %s: %v", next, err), toaster.StyleError, toaster.DefaultDuration)
		return m, cmd
	}

	m.cfg.Theme = theme
	m.applyRules(set)
	if m.reloader != nil {
		m.reloader.SetBase(reg)
	}
	log.Info(log.CatUI, "Theme changed", "preset", next)

	if m.configPath != "" {
		if err := config.SaveThemePreset(m.configPath, next); err != nil {
			log.ErrorErr(log.CatConfig, "Saving theme failed", err, "path", m.configPath)
			m.toaster, cmd = m.toaster.Show("Theme "+next+" (not saved)", toaster.StyleWarn, toaster.DefaultDuration)
			return m, cmd
		}
	}
	m.toaster, cmd = m.toaster.Show("Theme "+next, toaster.StyleSuccess, toaster.DefaultDuration)
	return m, cmd
}

func (m *Model) resize() {
	m.input.SetWidth(m.width - lipgloss.Width(prompt))
	m.help.Width = m.width
	m.logs.SetSize(m.width, m.height)
}

// View implements tea.Model.
func (m Model) View() string {
	var sections []string

	for i, line := range strings.Split(m.input.View(), "\n") {
		if i == 0 {
			sections = append(sections, uistyles.PromptStyle.Render(prompt)+line)
		} else {
			sections = append(sections, continuation+line)
		}
	}
	if m.showSpans {
		sections = append(sections, m.spanTable())
	}
	sections = append(sections, m.statusLine(), m.help.View(helpKeys{m.keys, m.input.KeyMap()}))

	view := strings.Join(sections, "\n")
	height := max(m.height, lipgloss.Height(view))
	view = m.toaster.Overlay(view, m.width, height)
	if m.debug && m.logs.Visible() {
		view = m.logs.Overlay(view)
	}
	return view
}

// statusLine summarises the last evaluation. It is cut to the screen width
// rather than wrapped.
func (m Model) statusLine() string {
	state := uistyles.StatusIncompleteStyle.Render("incomplete")
	if last, ok := m.engine.Last(); ok && last.Complete {
		state = uistyles.StatusCompleteStyle.Render("complete")
	}
	stats := m.engine.Stats()
	info := fmt.Sprintf(" · %d rules · theme %s · updates %d parses %d reused %d cached %d",
		m.engine.Rules().Len(), m.cfg.Theme.Preset,
		stats.Updates, stats.Parses, stats.Reused, stats.CacheHits)
	line := state + uistyles.StatusBarStyle.Render(info)
	return truncate.StringWithTail(line, uint(max(m.width, 1)), "…")
}

// spanTable lists the spans painted for the current buffer.
func (m Model) spanTable() string {
	last, ok := m.engine.Last()
	if !ok || len(last.Spans) == 0 {
		return uistyles.SpanRowStyle.Render("  no spans")
	}

	value := m.input.Value()
	rows := []string{uistyles.SpanHeaderStyle.Render(fmt.Sprintf("  %-9s %-14s %8s  %s", "range", "style", "priority", "text"))}
	for i, s := range last.Spans {
		if i == maxSpanRows {
			rows = append(rows, uistyles.SpanRowStyle.Render(fmt.Sprintf("  … %d more", len(last.Spans)-maxSpanRows)))
			break
		}
		text := ""
		if s.Start >= 0 && s.Finish <= len(value) && s.Start <= s.Finish {
			text = fmt.Sprintf("%q", value[s.Start:s.Finish])
		}
		row := fmt.Sprintf("  %-9s %-14s %8d  %s", fmt.Sprintf("%d-%d", s.Start, s.Finish), s.Style, s.Priority, text)
		rows = append(rows, uistyles.SpanRowStyle.Render(truncate.StringWithTail(row, uint(max(m.width, 1)), "…")))
	}
	return strings.Join(rows, "\n")
}

// Close stops the listeners.
func (m *Model) Close() {
	m.cancel()
}

// helpKeys merges the editor and input keymaps for the help view.
type helpKeys struct {
	editor keys.EditorKeyMap
	input  keys.InputKeyMap
}

func (h helpKeys) ShortHelp() []key.Binding {
	return h.editor.ShortHelp()
}

func (h helpKeys) FullHelp() [][]key.Binding {
	return append(h.editor.FullHelp(), h.input.FullHelp()...)
}
