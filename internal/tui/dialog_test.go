package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/scribe/internal/config"
	"github.com/zjrosen/scribe/internal/platform"
)

func init() {
	zone.NewGlobal()
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestDialogConfirmKeys(t *testing.T) {
	tests := []struct {
		key  tea.KeyMsg
		want platform.DialogResult
	}{
		{key: runes("y"), want: platform.Yes},
		{key: runes("N"), want: platform.No},
		{key: tea.KeyMsg{Type: tea.KeyEsc}, want: platform.Cancel},
		{key: tea.KeyMsg{Type: tea.KeyEnter}, want: platform.Yes},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			var d Dialog
			var got []platform.DialogResult
			d.Confirm("Unsaved changes", "Save a.txt?", func(r platform.DialogResult) { got = append(got, r) })
			require.True(t, d.Active())

			d.HandleKey(runes("x"))
			assert.True(t, d.Active(), "other keys are ignored")

			d.HandleKey(tt.key)
			assert.False(t, d.Active())
			assert.Equal(t, []platform.DialogResult{tt.want}, got)
		})
	}
}

func TestDialogQueuesInOrder(t *testing.T) {
	var d Dialog
	var order []string
	d.Confirm("first", "", func(platform.DialogResult) { order = append(order, "first") })
	d.Error("Open failed", "permission denied")
	d.Confirm("second", "", func(platform.DialogResult) { order = append(order, "second") })

	d.HandleKey(runes("n"))
	assert.Contains(t, d.View(config.DefaultTheme(), 80), "permission denied")
	d.HandleKey(tea.KeyMsg{Type: tea.KeyEnter})
	d.HandleKey(runes("y"))

	assert.Equal(t, []string{"first", "second"}, order)
	assert.False(t, d.Active())
	assert.Empty(t, d.View(config.DefaultTheme(), 80))
}

func TestDialogView(t *testing.T) {
	var d Dialog
	d.Confirm("Unsaved changes", "Save a.txt before closing?", func(platform.DialogResult) {})
	view := zone.Scan(d.View(config.DefaultTheme(), 80))
	assert.Contains(t, view, "Unsaved changes")
	assert.Contains(t, view, "Save a.txt before closing?")
	assert.Contains(t, view, "Yes (y)")
	assert.Contains(t, view, "Cancel (esc)")
}

func TestPlaceAt(t *testing.T) {
	bg := "abcdef\nghijkl\nmnopqr"
	assert.Equal(t, "abcdef\ngXYjkl\nmnopqr", placeAt(1, 1, "XY", bg))
	assert.Equal(t, "abcdef\nghijkl\nmnopqrXY", placeAt(6, 2, "XY\nZZ", bg), "rows past the bottom are dropped")
	assert.Equal(t, "ab  XY\nghijkl", placeAt(4, 0, "XY", "ab\nghijkl"))
}

func TestPlaceNearFlipsAbove(t *testing.T) {
	bg := "......\n......\n......\n......"
	// The cursor is on the last row, so the popup goes above it.
	got := placeNear(5, 4, 6, 4, "AB", bg)
	assert.Equal(t, "......\n......\n....AB\n......", got)
}
