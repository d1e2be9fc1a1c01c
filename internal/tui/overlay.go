package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// placeAt draws fg over bg with its top-left corner at (x, y). Both may
// carry ANSI styling; the background outside the overlay is preserved.
func placeAt(x, y int, fg, bg string) string {
	bgLines := strings.Split(bg, "\n")
	for i, fgLine := range strings.Split(fg, "\n") {
		row := y + i
		if row < 0 {
			continue
		}
		if row >= len(bgLines) {
			break
		}
		line := bgLines[row]
		left := ansi.Truncate(line, x, "")
		if w := ansi.StringWidth(left); w < x {
			left += strings.Repeat(" ", x-w)
		}
		var right string
		if end := x + ansi.StringWidth(fgLine); end < ansi.StringWidth(line) {
			right = ansi.TruncateLeft(line, end, "")
		}
		bgLines[row] = left + fgLine + right
	}
	return strings.Join(bgLines, "\n")
}

// placeCenter draws fg centered over a width by height background.
func placeCenter(width, height int, fg, bg string) string {
	x := max((width-lipgloss.Width(fg))/2, 0)
	y := max((height-lipgloss.Height(fg))/2, 0)
	return placeAt(x, y, fg, bg)
}

// placeNear draws fg at (x, y), shifted so it stays on screen. When it does
// not fit below y it is drawn above the row before y.
func placeNear(x, y, width, height int, fg, bg string) string {
	w, h := lipgloss.Width(fg), lipgloss.Height(fg)
	if y+h > height && y-1-h >= 0 {
		y = y - 1 - h
	}
	x = max(min(x, width-w), 0)
	return placeAt(x, max(y, 0), fg, bg)
}
