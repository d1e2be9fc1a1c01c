package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/zjrosen/scribe/internal/action"
	"github.com/zjrosen/scribe/internal/keys"
)

func TestTranslateKey(t *testing.T) {
	km := keys.DefaultKeyMap()
	tests := []struct {
		name     string
		msg      tea.KeyMsg
		terminal bool
		want     keyInput
		ok       bool
	}{
		{
			name: "bound key",
			msg:  tea.KeyMsg{Type: tea.KeyCtrlS},
			want: keyInput{act: action.Of(action.Save), hasAct: true},
			ok:   true,
		},
		{
			name: "selecting motion",
			msg:  tea.KeyMsg{Type: tea.KeyShiftLeft},
			want: keyInput{act: action.Selecting(action.MoveLeft), hasAct: true},
			ok:   true,
		},
		{
			name: "runes",
			msg:  tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("é")},
			want: keyInput{text: "é"},
			ok:   true,
		},
		{
			name: "space",
			msg:  tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")},
			want: keyInput{text: " "},
			ok:   true,
		},
		{
			name: "paste",
			msg:  tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("a\nb"), Paste: true},
			want: keyInput{text: "a\nb"},
			ok:   true,
		},
		{
			name: "unbound alt rune",
			msg:  tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("z"), Alt: true},
			ok:   false,
		},
		{
			name:     "ctrl chord goes to the shell",
			msg:      tea.KeyMsg{Type: tea.KeyCtrlC},
			terminal: true,
			want:     keyInput{ctrl: 'c'},
			ok:       true,
		},
		{
			name:     "unbound ctrl chord goes to the shell",
			msg:      tea.KeyMsg{Type: tea.KeyCtrlR},
			terminal: true,
			want:     keyInput{ctrl: 'r'},
			ok:       true,
		},
		{
			name:     "reserved chord stays with the editor",
			msg:      tea.KeyMsg{Type: tea.KeyCtrlT},
			terminal: true,
			want:     keyInput{act: action.Of(action.ToggleTerminal), hasAct: true},
			ok:       true,
		},
		{
			name:     "tab is not a chord",
			msg:      tea.KeyMsg{Type: tea.KeyTab},
			terminal: true,
			want:     keyInput{act: action.Of(action.Indent), hasAct: true},
			ok:       true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := translateKey(km, tt.msg, tt.terminal)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestTranslateMouse(t *testing.T) {
	ev, ok := translateMouse(tea.MouseMsg{X: 3, Y: 2, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft, Shift: true})
	assert.True(t, ok)
	assert.Equal(t, action.MouseEvent{Kind: action.MousePress, X: 3, Y: 2.5, Shift: true}, ev)

	ev, ok = translateMouse(tea.MouseMsg{X: 1, Y: 1, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft})
	assert.True(t, ok)
	assert.Equal(t, action.MouseDrag, ev.Kind)

	ev, ok = translateMouse(tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelDown})
	assert.True(t, ok)
	assert.Equal(t, action.MouseWheel, ev.Kind)
	assert.Equal(t, float64(wheelLines), ev.DY)

	_, ok = translateMouse(tea.MouseMsg{Action: tea.MouseActionMotion, Button: tea.MouseButtonNone})
	assert.False(t, ok, "hover motion is ignored")

	_, ok = translateMouse(tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonRight})
	assert.False(t, ok)
}
