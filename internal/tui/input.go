package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zjrosen/scribe/internal/action"
	"github.com/zjrosen/scribe/internal/keys"
)

// wheelLines is how far one wheel notch scrolls.
const wheelLines = 3

// terminalReserved are the bindings that keep working while the terminal
// panel has focus. Every other control chord goes to the shell.
var terminalReserved = map[action.Kind]bool{
	action.ToggleTerminal: true,
	action.Quit:           true,
	action.Paste:          true,
	action.FocusNextPane:  true,
	action.NextTab:        true,
	action.PreviousTab:    true,
	action.SplitPane:      true,
}

// ctrlLetter returns the letter of a ctrl+letter chord. Tab and enter share
// codes with ctrl+i and ctrl+m and are not chords.
func ctrlLetter(msg tea.KeyMsg) (rune, bool) {
	if msg.Type < tea.KeyCtrlA || msg.Type > tea.KeyCtrlZ {
		return 0, false
	}
	if msg.Type == tea.KeyTab || msg.Type == tea.KeyEnter {
		return 0, false
	}
	return 'a' + rune(msg.Type-tea.KeyCtrlA), true
}

// keyInput is what a key press turns into.
type keyInput struct {
	act  action.Action
	text string
	// ctrl is a chord forwarded raw to the terminal.
	ctrl rune

	hasAct bool
}

// translateKey resolves msg against km. When terminal is set, unreserved
// control chords become raw control bytes.
func translateKey(km keys.KeyMap, msg tea.KeyMsg, terminal bool) (keyInput, bool) {
	if msg.Paste {
		return keyInput{text: string(msg.Runes)}, len(msg.Runes) > 0
	}
	a, bound := km.Resolve(msg)
	if terminal {
		if r, ok := ctrlLetter(msg); ok && (!bound || !terminalReserved[a.Kind]) {
			return keyInput{ctrl: r}, true
		}
	}
	if bound {
		return keyInput{act: a, hasAct: true}, true
	}
	switch msg.Type {
	case tea.KeySpace:
		return keyInput{text: " "}, true
	case tea.KeyRunes:
		if msg.Alt {
			return keyInput{}, false
		}
		return keyInput{text: string(msg.Runes)}, len(msg.Runes) > 0
	}
	return keyInput{}, false
}

// translateMouse converts a cell-addressed mouse message into view units.
// The pointer sits in the middle of its row.
func translateMouse(msg tea.MouseMsg) (action.MouseEvent, bool) {
	ev := action.MouseEvent{
		X:     float64(msg.X),
		Y:     float64(msg.Y) + 0.5,
		Shift: msg.Shift,
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		ev.Kind, ev.DY = action.MouseWheel, -wheelLines
		return ev, true
	case tea.MouseButtonWheelDown:
		ev.Kind, ev.DY = action.MouseWheel, wheelLines
		return ev, true
	case tea.MouseButtonWheelLeft:
		ev.Kind, ev.DX = action.MouseWheel, -wheelLines
		return ev, true
	case tea.MouseButtonWheelRight:
		ev.Kind, ev.DX = action.MouseWheel, wheelLines
		return ev, true
	}
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return ev, false
		}
		ev.Kind = action.MousePress
	case tea.MouseActionMotion:
		if msg.Button != tea.MouseButtonLeft {
			return ev, false
		}
		ev.Kind = action.MouseDrag
	case tea.MouseActionRelease:
		ev.Kind = action.MouseRelease
	default:
		return ev, false
	}
	return ev, true
}
