package editor

import (
	"math"
	"strconv"

	"github.com/zjrosen/scribe/internal/camera"
	"github.com/zjrosen/scribe/internal/document"
	"github.com/zjrosen/scribe/internal/grapheme"
	"github.com/zjrosen/scribe/internal/platform"
)

// pickerRows is how many picker results are listed above the prompt.
const pickerRows = 10

type paneView struct {
	id     int
	bounds platform.Rect
	tabs   platform.Rect
	gutter platform.Rect
	text   platform.Rect
}

// geometry is the frame's layout in view units.
type geometry struct {
	width, height float64
	glyphW, lineH float64
	panes         []paneView
	terminal      platform.Rect
	prompt        platform.Rect
	picker        platform.Rect
	status        platform.Rect
}

func (g geometry) pane(id int) (paneView, bool) {
	for _, pv := range g.panes {
		if pv.id == id {
			return pv, true
		}
	}
	return paneView{}, false
}

func gutterColumns(lines int) int {
	return len(strconv.Itoa(lines)) + 2
}

func (e *Editor) layoutGeometry(w, h float64, m Metrics) {
	g := geometry{width: w, height: h, glyphW: m.GlyphWidth(), lineH: m.LineHeight()}
	if g.glyphW <= 0 {
		g.glyphW = 1
	}
	if g.lineH <= 0 {
		g.lineH = 1
	}
	g.status = platform.Rect{X: 0, Y: h - g.lineH, W: w, H: g.lineH}
	bottom := h - g.lineH
	if e.prompt != nil {
		g.prompt = platform.Rect{X: 0, Y: bottom - g.lineH, W: w, H: g.lineH}
		bottom -= g.lineH
		if e.prompt.picker() {
			n := min(len(e.prompt.shown), pickerRows)
			g.picker = platform.Rect{X: 0, Y: bottom - float64(n)*g.lineH, W: w, H: float64(n) * g.lineH}
		}
	}
	if e.term != nil && e.term.visible {
		th := math.Min(e.cfg.TerminalHeight*g.lineH, bottom/2)
		th = math.Max(th, g.lineH)
		g.terminal = platform.Rect{X: 0, Y: bottom - th, W: w, H: th}
		bottom -= th
	}
	order := e.layout.Order()
	pw := w / float64(len(order))
	for i, id := range order {
		x := float64(i) * pw
		pv := paneView{
			id:     id,
			bounds: platform.Rect{X: x, Y: 0, W: pw, H: bottom},
			tabs:   platform.Rect{X: x, Y: 0, W: pw, H: g.lineH},
		}
		cols := 0
		if tab := e.layout.Pane(id).Current(); tab != nil {
			if buf, ok := e.docs.Get(tab.Doc); ok {
				cols = gutterColumns(buf.Doc.LineCount())
			}
		}
		gw := math.Min(float64(cols)*g.glyphW, pw)
		body := math.Max(bottom-g.lineH, 0)
		pv.gutter = platform.Rect{X: x, Y: g.lineH, W: gw, H: body}
		pv.text = platform.Rect{X: x + gw, Y: g.lineH, W: pw - gw, H: body}
		g.panes = append(g.panes, pv)
	}
	e.geo = g
}

// cursorPoint is the top-left of p in document view units.
func (e *Editor) cursorPoint(d *document.Document, p document.Position) camera.Point {
	return camera.Point{
		X: float64(d.VisualColumn(p)) * e.geo.glyphW,
		Y: float64(p.Row) * e.geo.lineH,
	}
}

// positionAt maps a point inside a pane's text area to a document position.
func (e *Editor) positionAt(pv paneView, tab *Tab, d *document.Document, x, y float64) document.Position {
	cam := tab.Camera.Position()
	row := int(math.Floor((y - pv.text.Y + cam.Y) / e.geo.lineH))
	row = max(0, min(row, d.LineCount()-1))
	vx := int(math.Round((x - pv.text.X + cam.X) / e.geo.glyphW))
	col := grapheme.VisualToColumn(d.Line(row), max(vx, 0), d.TabWidth())
	return document.Pos(col, row)
}

func (e *Editor) followCursor(dt float64, tab *Tab, buf *Buffer, text platform.Rect) {
	g := e.geo
	d := buf.Doc
	target := e.cursorPoint(d, d.MainCursor().Position)
	view := camera.Point{X: math.Max(text.W-g.glyphW, 0), Y: math.Max(text.H-g.lineH, 0)}
	border := camera.Point{X: e.cfg.ScrollBorder * g.glyphW, Y: e.cfg.ScrollBorder * g.lineH}
	tab.Camera.SetMax(float64(buf.Width())*g.glyphW-view.X, float64(d.LineCount()-1)*g.lineH)
	tab.Camera.Update(dt, target, view, border)
}

// updateCameras advances every visible camera and reports whether one is
// still moving.
func (e *Editor) updateCameras(dt float64) bool {
	moving := false
	for _, pv := range e.geo.panes {
		pane := e.layout.Pane(pv.id)
		if pane == nil {
			continue
		}
		tab := pane.Current()
		if tab == nil {
			continue
		}
		buf, ok := e.docs.Get(tab.Doc)
		if !ok {
			continue
		}
		e.followCursor(dt, tab, buf, pv.text)
		moving = moving || tab.Camera.IsMoving()
	}
	if e.term != nil && e.term.visible {
		e.term.follow(dt, e.geo)
		moving = moving || e.term.camera.IsMoving()
	}
	return moving
}

// visibleRows returns the first and one-past-last document rows inside a
// view of height h scrolled to y.
func visibleRows(y, h, lineH float64, lines int) (int, int) {
	first := max(int(math.Floor(y/lineH)), 0)
	last := min(int(math.Ceil((y+h)/lineH)), lines)
	return first, max(first, last)
}
