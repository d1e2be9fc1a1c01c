package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	zone "github.com/lrstanley/bubblezone"

	"github.com/zjrosen/scribe/internal/config"
	"github.com/zjrosen/scribe/internal/log"
	"github.com/zjrosen/scribe/internal/platform"
)

const (
	zoneYes    = "dialog-yes"
	zoneNo     = "dialog-no"
	zoneCancel = "dialog-cancel"
	zoneOK     = "dialog-ok"

	dialogMaxWidth = 60
)

type dialogKind int

const (
	confirmDialog dialogKind = iota
	errorDialog
)

type pendingDialog struct {
	kind    dialogKind
	title   string
	message string
	answer  func(platform.DialogResult)
}

// Dialog is a platform.Dialog drawn as a modal box over the editor. Dialogs
// queue up and are shown one at a time.
type Dialog struct {
	queue []pendingDialog
}

// Confirm asks a yes/no/cancel question.
func (d *Dialog) Confirm(title, message string, answer func(platform.DialogResult)) {
	d.queue = append(d.queue, pendingDialog{kind: confirmDialog, title: title, message: message, answer: answer})
}

// Error shows message until it is dismissed.
func (d *Dialog) Error(title, message string) {
	log.Error(log.CatUI, title, "message", message)
	d.queue = append(d.queue, pendingDialog{kind: errorDialog, title: title, message: message})
}

// Active reports whether a dialog is showing.
func (d *Dialog) Active() bool { return len(d.queue) > 0 }

func (d *Dialog) resolve(r platform.DialogResult) {
	if len(d.queue) == 0 {
		return
	}
	top := d.queue[0]
	d.queue = d.queue[1:]
	if top.answer != nil {
		top.answer(r)
	}
}

// HandleKey answers the active dialog from a key press.
func (d *Dialog) HandleKey(msg tea.KeyMsg) {
	if len(d.queue) == 0 {
		return
	}
	if d.queue[0].kind == errorDialog {
		switch msg.String() {
		case "enter", "esc", " ", "q":
			d.resolve(platform.Cancel)
		}
		return
	}
	switch strings.ToLower(msg.String()) {
	case "y", "enter":
		d.resolve(platform.Yes)
	case "n":
		d.resolve(platform.No)
	case "c", "esc", "ctrl+c":
		d.resolve(platform.Cancel)
	}
}

// HandleMouse answers the active dialog when a button is clicked.
func (d *Dialog) HandleMouse(msg tea.MouseMsg) {
	if len(d.queue) == 0 || msg.Action != tea.MouseActionRelease {
		return
	}
	buttons := map[string]platform.DialogResult{
		zoneYes:    platform.Yes,
		zoneNo:     platform.No,
		zoneCancel: platform.Cancel,
		zoneOK:     platform.Cancel,
	}
	for id, result := range buttons {
		if z := zone.Get(id); z != nil && z.InBounds(msg) {
			d.resolve(result)
			return
		}
	}
}

// View renders the active dialog box, or "" when none is showing.
func (d *Dialog) View(th config.Theme, width int) string {
	if len(d.queue) == 0 {
		return ""
	}
	top := d.queue[0]
	boxWidth := min(dialogMaxWidth, max(width-4, 20))

	accent := th.Keyword
	if top.kind == errorDialog {
		accent = th.Error
	}
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(accent.Hex())).
		Render(top.title)
	body := lipgloss.NewStyle().
		Width(boxWidth - 4).
		Foreground(lipgloss.Color(th.Normal.Hex())).
		Render(top.message)

	button := lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(lipgloss.Color(th.Background.Hex())).
		Background(lipgloss.Color(th.Subtle.Hex()))
	var buttons string
	if top.kind == errorDialog {
		buttons = zone.Mark(zoneOK, button.Render("OK"))
	} else {
		buttons = lipgloss.JoinHorizontal(lipgloss.Top,
			zone.Mark(zoneYes, button.Render("Yes (y)")), " ",
			zone.Mark(zoneNo, button.Render("No (n)")), " ",
			zone.Mark(zoneCancel, button.Render("Cancel (esc)")),
		)
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(th.Border.Hex())).
		Background(lipgloss.Color(th.Background.Hex())).
		Padding(0, 1).
		Width(boxWidth).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, "", body, "", buttons))
}
