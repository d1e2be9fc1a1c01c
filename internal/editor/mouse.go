package editor

import (
	"github.com/zjrosen/scribe/internal/action"
)

func (e *Editor) mouse(ev action.MouseEvent) {
	switch ev.Kind {
	case action.MouseWheel:
		e.wheel(ev)
	case action.MousePress:
		e.press(ev)
	case action.MouseDrag:
		if e.dragging {
			e.drag(ev)
		}
	case action.MouseRelease:
		e.dragging = false
	}
}

// wheel scrolls whatever is under the pointer without moving its cursor.
func (e *Editor) wheel(ev action.MouseEvent) {
	dx := ev.DX * wheelLines * e.geo.glyphW
	dy := ev.DY * wheelLines * e.geo.lineH
	if e.term != nil && e.term.visible && e.geo.terminal.Contains(ev.X, ev.Y) {
		e.term.camera.ScrollBy(0, dy)
		return
	}
	for _, pv := range e.geo.panes {
		if !pv.bounds.Contains(ev.X, ev.Y) {
			continue
		}
		if pane := e.layout.Pane(pv.id); pane != nil {
			if tab := pane.Current(); tab != nil {
				tab.Camera.ScrollBy(dx, dy)
			}
		}
		return
	}
}

func (e *Editor) press(ev action.MouseEvent) {
	if e.prompt != nil && e.prompt.picker() && e.geo.picker.Contains(ev.X, ev.Y) {
		row := int((ev.Y - e.geo.picker.Y) / e.geo.lineH)
		e.prompt.selected = e.prompt.first() + row
		e.acceptPrompt()
		return
	}
	if e.term != nil && e.term.visible && e.geo.terminal.Contains(ev.X, ev.Y) {
		e.termFocused = true
		return
	}
	for _, pv := range e.geo.panes {
		if !pv.bounds.Contains(ev.X, ev.Y) {
			continue
		}
		pane := e.layout.Pane(pv.id)
		if pane == nil {
			return
		}
		e.termFocused = false
		e.layout.Focus(pv.id)
		if pv.tabs.Contains(ev.X, ev.Y) {
			if i := e.tabAt(pv, ev.X); i >= 0 {
				pane.Active = i
			}
			return
		}
		tab := pane.Current()
		if tab == nil {
			return
		}
		buf, ok := e.docs.Get(tab.Doc)
		if !ok {
			return
		}
		buf.Doc.SetHover("")
		p := e.positionAt(pv, tab, buf.Doc, ev.X, ev.Y)
		buf.Doc.JumpCursors(p, ev.Shift)
		e.dragging = true
		return
	}
}

func (e *Editor) drag(ev action.MouseEvent) {
	pv, ok := e.geo.pane(e.layout.Focused())
	if !ok {
		return
	}
	tab, buf := e.Focused()
	if tab == nil {
		return
	}
	buf.Doc.JumpCursors(e.positionAt(pv, tab, buf.Doc, ev.X, ev.Y), true)
}

// tabAt returns the index of the tab label under x, or -1.
func (e *Editor) tabAt(pv paneView, x float64) int {
	pane := e.layout.Pane(pv.id)
	if pane == nil {
		return -1
	}
	at := pv.tabs.X
	for i, tab := range pane.Tabs {
		w := e.tabLabelWidth(tab)
		if x >= at && x < at+w {
			return i
		}
		at += w
	}
	return -1
}

func (e *Editor) tabLabel(tab *Tab) string {
	buf, ok := e.docs.Get(tab.Doc)
	if !ok {
		return ""
	}
	label := " " + buf.Name()
	if buf.Doc.Dirty() {
		label += "*"
	}
	return label + " "
}

func (e *Editor) tabLabelWidth(tab *Tab) float64 {
	return float64(len([]rune(e.tabLabel(tab)))) * e.geo.glyphW
}
