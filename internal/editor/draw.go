package editor

import (
	"fmt"
	"math"
	"strings"

	"github.com/zjrosen/scribe/internal/config"
	"github.com/zjrosen/scribe/internal/document"
	"github.com/zjrosen/scribe/internal/grapheme"
	"github.com/zjrosen/scribe/internal/platform"
	"github.com/zjrosen/scribe/internal/syntax"
	"github.com/zjrosen/scribe/internal/terminal"
)

// lineWriter batches adjacent cells of one style into AddText calls and
// drops cells outside the visible columns [from, to).
type lineWriter struct {
	gfx      platform.Gfx
	x, y     float64
	glyphW   float64
	from, to int

	run   strings.Builder
	start int
	next  int
	style platform.TextStyle
	open  bool
}

func (w *lineWriter) put(col, width int, text string, st platform.TextStyle) {
	if col+width <= w.from || col >= w.to {
		return
	}
	if col < w.from {
		// A wide glyph cut by the left edge shows as blanks.
		text = strings.Repeat(" ", col+width-w.from)
		width = col + width - w.from
		col = w.from
	}
	if !w.open || st != w.style || col != w.next {
		w.flush()
		w.open, w.start, w.style = true, col, st
	}
	w.run.WriteString(text)
	w.next = col + width
}

func (w *lineWriter) flush() {
	if w.open && w.run.Len() > 0 {
		w.gfx.AddText(w.x+float64(w.start-w.from)*w.glyphW, w.y, w.run.String(), w.style)
	}
	w.run.Reset()
	w.open = false
}

// Draw emits the frame's draw commands. Only rows inside a view are
// highlighted.
func (e *Editor) Draw(gfx platform.Gfx) {
	th := e.cfg.Palette
	g := e.geo
	gfx.AddRect(platform.Rect{W: g.width, H: g.height}, th.Background)
	for _, pv := range g.panes {
		e.drawPane(gfx, pv)
	}
	if e.term != nil && e.term.visible {
		e.drawTerminal(gfx)
	}
	if e.prompt != nil {
		e.drawPrompt(gfx)
	}
	e.drawStatus(gfx)
}

func (e *Editor) paneFocused(id int) bool {
	return id == e.layout.Focused() && !e.termFocused && e.prompt == nil
}

func (e *Editor) drawPane(gfx platform.Gfx, pv paneView) {
	th := e.cfg.Palette
	pane := e.layout.Pane(pv.id)
	if pane == nil {
		return
	}
	focused := e.paneFocused(pv.id)
	gfx.AddBorderedRect(pv.bounds, th.Background, th.Border)

	x := pv.tabs.X
	for i, tab := range pane.Tabs {
		label := e.tabLabel(tab)
		st := platform.TextStyle{FG: th.Subtle}
		if i == pane.Active {
			st = platform.TextStyle{FG: th.Normal, BG: th.Selection, Bold: focused}
		}
		gfx.AddText(x, pv.tabs.Y, label, st)
		x += e.tabLabelWidth(tab)
	}

	tab := pane.Current()
	if tab == nil {
		return
	}
	buf, ok := e.docs.Get(tab.Doc)
	if !ok {
		return
	}
	d := buf.Doc
	g := e.geo
	cam := tab.Camera.Position()
	first, last := visibleRows(cam.Y, pv.text.H, g.lineH, d.LineCount())
	fromCol := int(math.Floor(cam.X / g.glyphW))
	toCol := fromCol + int(math.Ceil(pv.text.W/g.glyphW))
	offsetX := pv.text.X - (cam.X - float64(fromCol)*g.glyphW)
	mainRow := d.MainCursor().Position.Row
	cols := gutterColumns(d.LineCount())

	for row := first; row < last; row++ {
		y := pv.text.Y + float64(row)*g.lineH - cam.Y
		if y < pv.text.Y-g.lineH/2 || y > pv.text.Y+pv.text.H-g.lineH/2 {
			continue
		}
		num := platform.TextStyle{FG: th.LineNumber}
		if row == mainRow {
			num.FG = th.Normal
		}
		if ds := d.DiagnosticsOnRow(row); len(ds) > 0 {
			num.FG = severityColor(th, worst(ds))
		}
		gfx.AddText(pv.gutter.X, y, fmt.Sprintf("%*d ", cols-1, row+1), num)

		e.drawSelections(gfx, d, row, offsetX, y, fromCol, toCol)
		w := &lineWriter{gfx: gfx, x: offsetX, y: y, glyphW: g.glyphW, from: fromCol, to: toCol}
		e.drawLine(w, buf, row)
		if focused {
			e.drawCursors(w, d, row)
		}
	}
}

func worst(ds []document.Diagnostic) document.Severity {
	s := document.SeverityHint
	for _, d := range ds {
		s = min(s, d.Severity)
	}
	return s
}

func severityColor(th config.Theme, s document.Severity) config.Color {
	switch s {
	case document.SeverityError:
		return th.Error
	case document.SeverityWarning:
		return th.Warning
	}
	return th.Comment
}

// drawLine writes one document row, styled by the highlighter and with
// diagnostic ranges underlined.
func (e *Editor) drawLine(w *lineWriter, buf *Buffer, row int) {
	th := e.cfg.Palette
	d := buf.Doc
	line := d.Line(row)
	var tokens []syntax.Token
	if buf.Highlighter != nil {
		tokens = buf.Highlighter.Line(row)
	}
	diags := d.DiagnosticsOnRow(row)
	tw := d.TabWidth()
	ti, vx := 0, 0
	it := grapheme.NewIterator(line)
	for it.Next() {
		off, g := it.Offset(), it.Cluster()
		for ti < len(tokens) && tokens[ti].End <= off {
			ti++
		}
		st := platform.TextStyle{FG: th.Normal}
		if ti < len(tokens) && tokens[ti].Start <= off {
			st.FG = th.Syntax(tokens[ti].Style)
		}
		for _, dg := range diags {
			if inDiagnostic(dg, row, off) {
				st.Underline = true
				st.FG = severityColor(th, dg.Severity)
			}
		}
		width := grapheme.VisualWidth(g, vx, tw)
		if g == "\t" {
			g = strings.Repeat(" ", width)
		}
		w.put(vx, width, g, st)
		vx += width
	}
	w.flush()
}

func inDiagnostic(dg document.Diagnostic, row, col int) bool {
	p := document.Pos(col, row)
	if dg.Start == dg.End {
		return p == dg.Start
	}
	return !p.Less(dg.Start) && p.Less(dg.End)
}

func (e *Editor) drawSelections(gfx platform.Gfx, d *document.Document, row int, x0, y float64, from, to int) {
	th := e.cfg.Palette
	line := d.Line(row)
	tw := d.TabWidth()
	for _, c := range d.Cursors() {
		if !c.HasSelection() {
			continue
		}
		sel := c.Selection()
		if row < sel.Start.Row || row > sel.End.Row {
			continue
		}
		start, end := 0, grapheme.Width(line, tw)+1
		if row == sel.Start.Row {
			start = grapheme.ColumnToVisual(line, sel.Start.Col, tw)
		}
		if row == sel.End.Row {
			end = grapheme.ColumnToVisual(line, sel.End.Col, tw)
		}
		start, end = max(start, from), min(end, to)
		if end <= start {
			continue
		}
		gfx.AddRect(platform.Rect{
			X: x0 + float64(start-from)*e.geo.glyphW,
			Y: y,
			W: float64(end-start) * e.geo.glyphW,
			H: e.geo.lineH,
		}, th.Selection)
	}
}

// drawCursors redraws the grapheme under each cursor on row inverted.
func (e *Editor) drawCursors(w *lineWriter, d *document.Document, row int) {
	th := e.cfg.Palette
	line := d.Line(row)
	tw := d.TabWidth()
	for _, c := range d.Cursors() {
		if c.Position.Row != row {
			continue
		}
		g, ok := grapheme.At(line, c.Position.Col)
		vx := grapheme.ColumnToVisual(line, c.Position.Col, tw)
		if !ok || g == "\t" {
			g = " "
		}
		w.put(vx, grapheme.VisualWidth(g, vx, tw), g, platform.TextStyle{FG: th.Background, BG: th.Normal})
		w.flush()
	}
}

// terminalColor maps a cell color to the theme. fallback is used for the
// default color.
func terminalColor(th config.Theme, c terminal.Color, fallback config.Color) config.Color {
	switch c.Mode {
	case terminal.ColorIndexed:
		return indexedColor(th, c.Index)
	case terminal.ColorRGB:
		return config.RGB(c.R, c.G, c.B)
	}
	return fallback
}

// indexedColor resolves the 256-color palette: the 16 themed ANSI colors, a
// 6x6x6 cube and a gray ramp.
func indexedColor(th config.Theme, i uint8) config.Color {
	switch {
	case i < 16:
		return th.Terminal[i]
	case i < 232:
		n := int(i) - 16
		level := func(v int) uint8 {
			if v == 0 {
				return 0
			}
			return uint8(55 + v*40)
		}
		return config.RGB(level(n/36), level(n/6%6), level(n%6))
	default:
		v := uint8(8 + (int(i)-232)*10)
		return config.RGB(v, v, v)
	}
}

func (e *Editor) cellStyle(st terminal.Style) platform.TextStyle {
	th := e.cfg.Palette
	fg := terminalColor(th, st.FG, th.Terminal[16])
	var bg config.Color
	if st.BG.Mode != terminal.ColorDefault {
		bg = terminalColor(th, st.BG, th.Terminal[17])
	}
	if st.Attr&terminal.Inverse != 0 {
		if bg.A == 0 {
			bg = th.Terminal[17]
		}
		fg, bg = bg, fg
	}
	return platform.TextStyle{
		FG:        fg,
		BG:        bg,
		Bold:      st.Attr&terminal.Bold != 0,
		Italic:    st.Attr&terminal.Italic != 0,
		Underline: st.Attr&terminal.Underline != 0,
	}
}

func (e *Editor) drawTerminal(gfx platform.Gfx) {
	th := e.cfg.Palette
	g := e.geo
	r := g.terminal
	gfx.AddBorderedRect(r, th.Terminal[17], th.Border)
	emu := e.term.emu
	s := emu.Screen()
	cam := e.term.camera.Position()
	first, last := visibleRows(cam.Y, r.H, g.lineH, s.Document().LineCount())
	cols := int(r.W / g.glyphW)
	ccol, crow := emu.Cursor()
	for row := first; row < last; row++ {
		y := r.Y + float64(row)*g.lineH - cam.Y
		if y < r.Y-g.lineH/2 || y > r.Y+r.H-g.lineH/2 {
			continue
		}
		w := &lineWriter{gfx: gfx, x: r.X, y: y, glyphW: g.glyphW, from: 0, to: cols}
		for col, cell := range s.Cells(row) {
			if cell.Text == "" {
				continue
			}
			w.put(col, grapheme.VisualWidth(cell.Text, col, 1), cell.Text, e.cellStyle(cell.Style))
		}
		w.flush()
		if row == s.Base()+crow && emu.CursorVisible() && e.TerminalFocused() {
			text := " "
			if cells := s.Cells(row); ccol < len(cells) && cells[ccol].Text != "" {
				text = cells[ccol].Text
			}
			w.put(ccol, 1, text, platform.TextStyle{FG: th.Terminal[17], BG: th.Terminal[16]})
			w.flush()
		}
	}
}

func (e *Editor) drawPrompt(gfx platform.Gfx) {
	th := e.cfg.Palette
	g := e.geo
	label, text, rows, selected, _ := e.PromptLines()
	if len(rows) > 0 {
		gfx.AddBorderedRect(g.picker, th.Background, th.Border)
		for i, row := range rows {
			st := platform.TextStyle{FG: th.Normal}
			if i == selected {
				st.BG = th.Selection
			}
			gfx.AddText(g.picker.X, g.picker.Y+float64(i)*g.lineH, row, st)
		}
	}
	gfx.AddRect(g.prompt, th.Background)
	gfx.AddText(g.prompt.X, g.prompt.Y, label, platform.TextStyle{FG: th.Keyword})
	x := g.prompt.X + gfx.MeasureText(label)
	gfx.AddText(x, g.prompt.Y, text, platform.TextStyle{FG: th.Normal})
	p := e.prompt.doc.MainCursor().Position
	cx := x + gfx.MeasureText(text[:min(p.Col, len(text))])
	cursor := " "
	if c, ok := grapheme.At(text, p.Col); ok {
		cursor = c
	}
	gfx.AddText(cx, g.prompt.Y, cursor, platform.TextStyle{FG: th.Background, BG: th.Normal})
}

// StatusLine returns the left and right parts of the status bar.
func (e *Editor) StatusLine() (left, right string) {
	if e.TerminalFocused() {
		left = "terminal"
		if t := e.term.emu.Title(); t != "" {
			left += ": " + t
		}
		return left, e.status
	}
	_, buf := e.Focused()
	if buf == nil {
		return "", e.status
	}
	d := buf.Doc
	p := d.MainCursor().Position
	left = buf.Name()
	if d.Dirty() {
		left += " [+]"
	}
	left += fmt.Sprintf("  %d:%d", p.Row+1, d.VisualColumn(p)+1)
	if n := d.CursorCount(); n > 1 {
		left += fmt.Sprintf(" (%d cursors)", n)
	}
	if buf.Syntax != nil {
		left += "  " + buf.Syntax.Name
	}
	right = e.status
	if ds := d.DiagnosticsAt(p); len(ds) > 0 {
		right = ds[0].Message
	}
	return left, right
}

func (e *Editor) drawStatus(gfx platform.Gfx) {
	th := e.cfg.Palette
	r := e.geo.status
	gfx.AddRect(r, th.Selection)
	left, right := e.StatusLine()
	gfx.AddText(r.X, r.Y, left, platform.TextStyle{FG: th.Normal})
	if right != "" {
		w := gfx.MeasureText(right)
		gfx.AddText(math.Max(r.X+r.W-w, r.X+gfx.MeasureText(left)+e.geo.glyphW), r.Y, right, platform.TextStyle{FG: th.Subtle})
	}
}

// HoverAnchor returns where a hover popup for the focused document should
// be placed: just below the main cursor.
func (e *Editor) HoverAnchor() (x, y float64, ok bool) {
	tab, buf := e.Focused()
	if tab == nil || buf.Doc.Hover() == "" {
		return 0, 0, false
	}
	pv, found := e.geo.pane(e.layout.Focused())
	if !found {
		return 0, 0, false
	}
	cam := tab.Camera.Position()
	pt := e.cursorPoint(buf.Doc, buf.Doc.MainCursor().Position)
	return pv.text.X + pt.X - cam.X, pv.text.Y + pt.Y - cam.Y + e.geo.lineH, true
}
