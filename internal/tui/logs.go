package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/zjrosen/scribe/internal/config"
)

const logCapacity = 200

// logPanel keeps the most recent log lines for the debug overlay.
type logPanel struct {
	lines   []string
	visible bool
}

func (p *logPanel) add(line string) {
	p.lines = append(p.lines, strings.TrimRight(line, "\n"))
	if over := len(p.lines) - logCapacity; over > 0 {
		p.lines = p.lines[over:]
	}
}

// View renders the newest lines that fit a box of the given size.
func (p *logPanel) View(th config.Theme, width, height int) string {
	if !p.visible {
		return ""
	}
	boxW := max(width-4, 20)
	rows := max(height/2-2, 3)
	start := max(len(p.lines)-rows, 0)
	shown := make([]string, 0, rows)
	for _, l := range p.lines[start:] {
		shown = append(shown, ansi.Truncate(l, boxW-2, "…"))
	}
	if len(shown) == 0 {
		shown = append(shown, "no log entries")
	}
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(th.Keyword.Hex())).
		Render("log (f12 to close)")
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(th.Border.Hex())).
		Foreground(lipgloss.Color(th.Subtle.Hex())).
		Width(boxW).
		Render(title + "\n" + strings.Join(shown, "\n"))
}
