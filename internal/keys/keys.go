// Package keys contains keybinding definitions.
package keys

import "github.com/charmbracelet/bubbles/key"

// InputKeyMap defines the line editing keybindings of the command input.
type InputKeyMap struct {
	// Cursor motion
	Left      key.Binding
	Right     key.Binding
	WordLeft  key.Binding
	WordRight key.Binding
	Home      key.Binding
	End       key.Binding

	// Deletion
	Backspace      key.Binding
	Delete         key.Binding
	DeleteWordBack key.Binding
	KillToEnd      key.Binding
	KillToStart    key.Binding

	// Newline inserts a line break instead of accepting the buffer, for
	// heredocs and multi-line commands.
	Newline key.Binding
}

// DefaultInputKeyMap returns the emacs-style line editing keybindings.
func DefaultInputKeyMap() InputKeyMap {
	return InputKeyMap{
		Left: key.NewBinding(
			key.WithKeys("left", "ctrl+b"),
			key.WithHelp("←/ctrl+b", "back one character"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "ctrl+f"),
			key.WithHelp("→/ctrl+f", "forward one character"),
		),
		WordLeft: key.NewBinding(
			key.WithKeys("alt+left", "ctrl+left", "alt+b"),
			key.WithHelp("alt+b", "back one word"),
		),
		WordRight: key.NewBinding(
			key.WithKeys("alt+right", "ctrl+right", "alt+f"),
			key.WithHelp("alt+f", "forward one word"),
		),
		Home: key.NewBinding(
			key.WithKeys("home", "ctrl+a"),
			key.WithHelp("ctrl+a", "start of buffer"),
		),
		End: key.NewBinding(
			key.WithKeys("end", "ctrl+e"),
			key.WithHelp("ctrl+e", "end of buffer"),
		),

		Backspace: key.NewBinding(
			key.WithKeys("backspace", "ctrl+h"),
			key.WithHelp("backspace", "delete back"),
		),
		Delete: key.NewBinding(
			key.WithKeys("delete", "ctrl+d"),
			key.WithHelp("ctrl+d", "delete forward"),
		),
		DeleteWordBack: key.NewBinding(
			key.WithKeys("ctrl+w", "alt+backspace"),
			key.WithHelp("ctrl+w", "delete word back"),
		),
		KillToEnd: key.NewBinding(
			key.WithKeys("ctrl+k"),
			key.WithHelp("ctrl+k", "delete to end"),
		),
		KillToStart: key.NewBinding(
			key.WithKeys("ctrl+u"),
			key.WithHelp("ctrl+u", "delete to start"),
		),

		Newline: key.NewBinding(
			key.WithKeys("alt+enter", "ctrl+j"),
			key.WithHelp("alt+enter", "insert newline"),
		),
	}
}

// ShortHelp returns keybindings for the short help view.
func (k InputKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Home, k.End, k.Newline}
}

// FullHelp returns keybindings for the full help view.
func (k InputKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.WordLeft, k.WordRight, k.Home, k.End},           // Motion
		{k.Backspace, k.Delete, k.DeleteWordBack, k.KillToEnd, k.KillToStart}, // Deletion
		{k.Newline},
	}
}

// EditorKeyMap defines the keybindings of the edit program around the input.
type EditorKeyMap struct {
	Accept      key.Binding
	ReloadRules key.Binding
	CycleTheme  key.Binding
	ToggleSpans key.Binding
	Help        key.Binding
	Quit        key.Binding
}

// DefaultEditorKeyMap returns the default edit program keybindings.
func DefaultEditorKeyMap() EditorKeyMap {
	return EditorKeyMap{
		Accept: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "accept"),
		),
		ReloadRules: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "reload rules"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "next theme"),
		),
		ToggleSpans: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "show spans"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1", "ctrl+_"),
			key.WithHelp("f1", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "esc"),
			key.WithHelp("esc", "quit"),
		),
	}
}

// ShortHelp returns keybindings for the short help view.
func (k EditorKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Accept, k.Help, k.Quit}
}

// FullHelp returns keybindings for the full help view.
func (k EditorKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Accept, k.ReloadRules, k.CycleTheme, k.ToggleSpans}, // Actions
		{k.Help, k.Quit}, // General
	}
}

// Input and Editor are the keymaps used by the edit program.
var (
	Input  = DefaultInputKeyMap()
	Editor = DefaultEditorKeyMap()
)
