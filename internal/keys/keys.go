// Package keys contains keybinding definitions and maps key presses to
// editor actions.
package keys

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/scribe/internal/action"
)

// Binding ties a key binding to the action it produces.
type Binding struct {
	Key    key.Binding
	Action action.Action
}

// KeyMap is an ordered list of bindings; the first match wins.
type KeyMap struct {
	Bindings []Binding
}

func bind(a action.Action, help string, keys ...string) Binding {
	return Binding{
		Key:    key.NewBinding(key.WithKeys(keys...), key.WithHelp(keys[0], help)),
		Action: a,
	}
}

func motion(k action.Kind, help string, plain, selecting []string) []Binding {
	return []Binding{
		bind(action.Of(k), help, plain...),
		bind(action.Selecting(k), "select "+help, selecting...),
	}
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	var b []Binding
	// Navigation
	b = append(b, motion(action.MoveLeft, "left", []string{"left"}, []string{"shift+left"})...)
	b = append(b, motion(action.MoveRight, "right", []string{"right"}, []string{"shift+right"})...)
	b = append(b, motion(action.MoveUp, "up", []string{"up"}, []string{"shift+up"})...)
	b = append(b, motion(action.MoveDown, "down", []string{"down"}, []string{"shift+down"})...)
	b = append(b, motion(action.MoveWordLeft, "word left", []string{"ctrl+left", "alt+b"}, []string{"ctrl+shift+left"})...)
	b = append(b, motion(action.MoveWordRight, "word right", []string{"ctrl+right", "alt+f"}, []string{"ctrl+shift+right"})...)
	b = append(b, motion(action.MoveHome, "line start", []string{"home", "ctrl+a"}, []string{"shift+home"})...)
	b = append(b, motion(action.MoveEnd, "line end", []string{"end", "ctrl+e"}, []string{"shift+end"})...)
	b = append(b, motion(action.PageUp, "page up", []string{"pgup"}, []string{"shift+pgup"})...)
	b = append(b, motion(action.PageDown, "page down", []string{"pgdown"}, []string{"shift+pgdown"})...)
	b = append(b, motion(action.MoveToStart, "document start", []string{"ctrl+home"}, []string{"ctrl+shift+home"})...)
	b = append(b, motion(action.MoveToEnd, "document end", []string{"ctrl+end"}, []string{"ctrl+shift+end"})...)

	b = append(b,
		// Cursors
		bind(action.Of(action.SelectAll), "select all", "alt+a"),
		bind(action.Of(action.AddCursorAbove), "add cursor above", "alt+up"),
		bind(action.Of(action.AddCursorBelow), "add cursor below", "alt+down"),
		bind(action.Of(action.AddCursorAtNextOccurrence), "select next occurrence", "ctrl+d"),
		bind(action.Of(action.Escape), "collapse cursors", "esc"),

		// Editing
		bind(action.Of(action.Enter), "newline", "enter"),
		bind(action.Of(action.Indent), "indent", "tab"),
		bind(action.Of(action.Unindent), "unindent", "shift+tab"),
		bind(action.Of(action.DeleteBackward), "delete backward", "backspace"),
		bind(action.Of(action.DeleteForward), "delete forward", "delete"),
		bind(action.Of(action.DeleteWordBackward), "delete word backward", "alt+backspace", "ctrl+h"),
		bind(action.Of(action.DeleteWordForward), "delete word forward", "alt+delete", "alt+d"),
		bind(action.Of(action.DeleteLines), "delete lines", "ctrl+k"),
		bind(action.Of(action.ToggleComments), "toggle comments", "ctrl+_", "ctrl+/"),
		bind(action.Of(action.Copy), "copy", "ctrl+c"),
		bind(action.Of(action.Cut), "cut", "ctrl+x"),
		bind(action.Of(action.Paste), "paste", "ctrl+v"),
		bind(action.Of(action.Undo), "undo", "ctrl+z"),
		bind(action.Of(action.Redo), "redo", "ctrl+y"),
		bind(action.Of(action.UndoCursor), "jump back", "alt+left"),
		bind(action.Of(action.RedoCursor), "jump forward", "alt+right"),

		// Search
		bind(action.Of(action.Find), "find", "ctrl+f"),
		bind(action.Of(action.FindNext), "find next", "f3", "ctrl+g"),
		bind(action.Of(action.FindPrevious), "find previous", "shift+f3", "alt+g"),
		bind(action.Of(action.FindInFiles), "find in files", "alt+F"),
		bind(action.Of(action.OpenAllFiles), "open file", "ctrl+p"),
		bind(action.Of(action.OpenExplorer), "explorer", "ctrl+o"),

		// Tabs and panes
		bind(action.Of(action.Save), "save", "ctrl+s"),
		bind(action.Of(action.SaveAs), "save as", "alt+s"),
		bind(action.Of(action.NewTab), "new tab", "ctrl+n"),
		bind(action.Of(action.CloseTab), "close tab", "ctrl+w"),
		bind(action.Of(action.NextTab), "next tab", "ctrl+pgdown", "alt+]"),
		bind(action.Of(action.PreviousTab), "previous tab", "ctrl+pgup", "alt+["),
		bind(action.Of(action.SplitPane), "split pane", "ctrl+\\"),
		bind(action.Of(action.ClosePane), "close pane", "alt+w"),
		bind(action.Of(action.FocusNextPane), "next pane", "alt+o"),
		bind(action.Of(action.ToggleTerminal), "terminal", "ctrl+t"),
		bind(action.Of(action.Recenter), "recenter", "ctrl+l"),

		// Language server
		bind(action.Of(action.Hover), "hover", "alt+h"),
		bind(action.Of(action.Rename), "rename", "f2"),
		bind(action.Of(action.Format), "format", "alt+shift+f", "alt+l"),

		// General
		bind(action.Of(action.Quit), "quit", "ctrl+q"),
	)
	return KeyMap{Bindings: b}
}

// Resolve returns the action bound to msg.
func (k KeyMap) Resolve(msg tea.KeyMsg) (action.Action, bool) {
	for _, b := range k.Bindings {
		if key.Matches(msg, b.Key) {
			return b.Action, true
		}
	}
	return action.Action{}, false
}

// Lookup returns the binding that produces a.
func (k KeyMap) Lookup(a action.Action) (key.Binding, bool) {
	for _, b := range k.Bindings {
		if b.Action == a {
			return b.Key, true
		}
	}
	return key.Binding{}, false
}

// ShortHelp returns the bindings shown in the status line.
func (k KeyMap) ShortHelp() []key.Binding {
	var out []key.Binding
	for _, a := range []action.Kind{action.Save, action.Find, action.OpenAllFiles, action.ToggleTerminal, action.Quit} {
		if b, ok := k.Lookup(action.Of(a)); ok {
			out = append(out, b)
		}
	}
	return out
}

// FullHelp returns every binding, one group per line of help.
func (k KeyMap) FullHelp() [][]key.Binding {
	const perRow = 8
	var rows [][]key.Binding
	for i := 0; i < len(k.Bindings); i += perRow {
		end := min(i+perRow, len(k.Bindings))
		row := make([]key.Binding, 0, perRow)
		for _, b := range k.Bindings[i:end] {
			row = append(row, b.Key)
		}
		rows = append(rows, row)
	}
	return rows
}
