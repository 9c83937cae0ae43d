package app

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/x/exp/teatest"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/cmdhl/internal/config"
	"github.com/zjrosen/cmdhl/internal/highlight"
	"github.com/zjrosen/cmdhl/internal/log"
	"github.com/zjrosen/cmdhl/internal/pubsub"
	"github.com/zjrosen/cmdhl/internal/reload"
	"github.com/zjrosen/cmdhl/internal/render"
	"github.com/zjrosen/cmdhl/internal/rules"
	"github.com/zjrosen/cmdhl/internal/shparse"
	"github.com/zjrosen/cmdhl/internal/styles"
	"github.com/zjrosen/cmdhl/internal/ui/toaster"
)

func init() {
	lipgloss.SetColorProfile(termenv.ANSI256)
}

func newModel(t *testing.T, mutate func(*Options)) Model {
	t.Helper()
	cfg := config.Defaults()
	reg, err := cfg.Theme.Registry()
	require.NoError(t, err)
	set, err := rules.Default(reg)
	require.NoError(t, err)

	buf := render.NewBuffer(set.Styles)
	engine := highlight.NewEngine(shparse.New(shparse.Options{}), buf, set, highlight.EngineConfig{
		Namespace: buf.NewNamespace(),
	})
	opts := Options{Config: cfg, Engine: engine, Buffer: buf}
	if mutate != nil {
		mutate(&opts)
	}
	m := New(opts)
	t.Cleanup(m.Close)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return updated.(Model)
}

func send(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestNew_InitialBuffer(t *testing.T) {
	m := newModel(t, func(o *Options) { o.Initial = "git status" })

	require.Equal(t, "git status", m.Value())
	last, ok := m.engine.Last()
	require.True(t, ok)
	require.True(t, last.Complete)
}

func TestAccept_CompleteCommandQuits(t *testing.T) {
	m := typeText(t, newModel(t, nil), "ls -la")

	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, m.Accepted())
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
}

func TestAccept_IncompleteCommandContinues(t *testing.T) {
	m := typeText(t, newModel(t, nil), "echo 'a")

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.False(t, m.Accepted())
	require.Equal(t, "echo 'a\n", m.Value())
}

func TestAccept_EmptyBufferIgnored(t *testing.T) {
	m, cmd := send(t, newModel(t, nil), tea.KeyMsg{Type: tea.KeyEnter})
	require.False(t, m.Accepted())
	require.Nil(t, cmd)
	require.Equal(t, "", m.Value())
}

func TestQuit(t *testing.T) {
	m, cmd := send(t, newModel(t, nil), tea.KeyMsg{Type: tea.KeyEsc})
	require.False(t, m.Accepted())
	require.IsType(t, tea.QuitMsg{}, cmd())
}

func TestReloadEvent_SwapsRules(t *testing.T) {
	m := typeText(t, newModel(t, nil), "ls")

	set, err := rules.Load([]byte("rules:\n  - match:\n      - kind: command\n        hl: error\n"), m.engine.Rules().Styles)
	require.NoError(t, err)

	m, cmd := send(t, m, pubsub.Event[reload.Result]{
		Type:    pubsub.ReloadedEvent,
		Payload: reload.Result{Path: "rules.yaml", Set: set},
	})
	require.NotNil(t, cmd)
	require.Same(t, set, m.engine.Rules())
	require.True(t, m.toaster.Visible())
	require.Contains(t, m.toaster.Message(), "Rules reloaded (1 rules)")

	last, ok := m.engine.Last()
	require.True(t, ok)
	require.Len(t, last.Spans, 1)
	require.Equal(t, styles.NameError, last.Spans[0].Style)
}

func TestReloadEvent_FailureKeepsRules(t *testing.T) {
	m := newModel(t, nil)
	before := m.engine.Rules()

	m, _ = send(t, m, pubsub.Event[reload.Result]{
		Type:    pubsub.FailedEvent,
		Payload: reload.Result{Path: "rules.yaml", Err: errors.New("rule 0: no matchers")},
	})
	require.Same(t, before, m.engine.Rules())
	require.Contains(t, m.toaster.Message(), "Rules rejected: rule 0: no matchers")
}

func TestReloadKey_WithoutRulesFile(t *testing.T) {
	m, cmd := send(t, newModel(t, nil), tea.KeyMsg{Type: tea.KeyCtrlR})
	require.NotNil(t, cmd)
	require.Contains(t, m.toaster.Message(), "No rules file configured")
}

func TestReloadKey_PublishesThroughReloader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, rules.DefaultRules(), 0o644))
	base, err := styles.FromPreset("default")
	require.NoError(t, err)
	r, err := reload.New(reload.Config{Path: path, Base: base})
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Stop() })

	m := newModel(t, func(o *Options) { o.Reloader = r })
	_, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyCtrlR})
	require.NotNil(t, cmd)

	listen := m.reloadListener.Listen()
	require.Nil(t, cmd())

	ev, ok := listen().(pubsub.Event[reload.Result])
	require.True(t, ok)
	require.Equal(t, pubsub.ReloadedEvent, ev.Type)
	require.Equal(t, path, ev.Payload.Path)
}

func TestCycleTheme_SavesPreset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, config.WriteDefaultConfig(path))

	m := newModel(t, func(o *Options) { o.ConfigPath = path })
	m, cmd := send(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
	require.NotNil(t, cmd)
	require.Equal(t, "high-contrast", m.cfg.Theme.Preset)
	require.Equal(t, "Theme high-contrast", m.toaster.Message())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "preset: high-contrast")
	require.Contains(t, string(data), "# cmdhl configuration")

	want, err := styles.FromPreset("high-contrast")
	require.NoError(t, err)
	got, ok := m.engine.Rules().Styles.Get(styles.NameCommand)
	require.True(t, ok)
	wantCmd, _ := want.Get(styles.NameCommand)
	require.True(t, wantCmd.Equal(got))
}

func TestCycleTheme_WrapsAround(t *testing.T) {
	m := newModel(t, nil)
	m.cfg.Theme.Preset = "plain"

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
	require.Equal(t, "catppuccin-mocha", m.cfg.Theme.Preset)
}

func TestCycleTheme_RulesErrorKeepsTheme(t *testing.T) {
	m := newModel(t, func(o *Options) {
		o.Rules = func(*styles.Registry) (*rules.Set, error) {
			return nil, errors.New("boom")
		}
	})
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
	require.Equal(t, "default", m.cfg.Theme.Preset)
	require.Contains(t, m.toaster.Message(), "boom")
}

func TestToggleSpans(t *testing.T) {
	m := typeText(t, newModel(t, nil), "ls")
	require.NotContains(t, ansi.Strip(m.View()), "priority")

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlS})
	view := ansi.Strip(m.View())
	require.Contains(t, view, "priority")
	require.Contains(t, view, `0-2       command`)
	require.Contains(t, view, `"ls"`)
}

func TestHelpToggle(t *testing.T) {
	m := newModel(t, nil)
	require.NotContains(t, ansi.Strip(m.View()), "reload rules")

	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyF1})
	require.Contains(t, ansi.Strip(m.View()), "reload rules")
}

func TestView_PromptAndStatus(t *testing.T) {
	m := typeText(t, newModel(t, nil), "echo 'a")
	lines := splitView(m)

	require.Equal(t, "❯ echo 'a ", lines[0])
	require.Contains(t, lines[1], "incomplete")
	require.Contains(t, lines[1], "theme default")
}

func TestView_ContinuationLines(t *testing.T) {
	m := newModel(t, func(o *Options) { o.Initial = "cat <<EOF\nhi\nEOF" })
	lines := splitView(m)

	require.Equal(t, "❯ cat <<EOF", lines[0])
	require.Equal(t, "  hi", lines[1])
	require.Equal(t, "  EOF ", lines[2])
	require.Contains(t, lines[3], "complete")
}

func TestLogOverlay_DebugOnly(t *testing.T) {
	m := newModel(t, nil)
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlX})
	require.False(t, m.logs.Visible())

	m = newModel(t, func(o *Options) { o.Debug = true })
	entry := log.Format(time.Now(), log.LevelInfo, log.CatRules, "Rules reloaded") + "\n"
	m, _ = send(t, m, log.LogEvent{Type: pubsub.CreatedEvent, Payload: entry})
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyCtrlX})
	require.True(t, m.logs.Visible())
	require.Contains(t, ansi.Strip(m.View()), "Rules reloaded")

	// Keys go to the overlay while it is open.
	m, _ = send(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}})
	require.Equal(t, "", m.Value())
}

func TestToastDismiss(t *testing.T) {
	m, cmd := send(t, newModel(t, nil), tea.KeyMsg{Type: tea.KeyCtrlR})
	require.True(t, m.toaster.Visible())

	m, _ = send(t, m, cmd().(toaster.DismissMsg))
	require.False(t, m.toaster.Visible())
}

func TestProgram_TypeAndAccept(t *testing.T) {
	m := newModel(t, nil)
	tm := teatest.NewTestModel(t, m, teatest.WithInitialTermSize(80, 24))

	tm.Type("echo hi")
	tm.Send(tea.KeyMsg{Type: tea.KeyEnter})

	final, ok := tm.FinalModel(t, teatest.WithFinalTimeout(3*time.Second)).(Model)
	require.True(t, ok)
	require.True(t, final.Accepted())
	require.Equal(t, "echo hi", final.Value())
}

func splitView(m Model) []string {
	return strings.Split(ansi.Strip(m.View()), "\n")
}
