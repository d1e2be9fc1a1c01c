package editor

import (
	"slices"

	"github.com/zjrosen/scribe/internal/camera"
)

// Tab is a view of one document slot.
type Tab struct {
	Doc    int
	Camera camera.Camera
}

// Pane holds an ordered list of tabs, one of which is active.
type Pane struct {
	Tabs   []*Tab
	Active int
}

// Current returns the active tab, or nil when the pane is empty.
func (p *Pane) Current() *Tab {
	if p.Active < 0 || p.Active >= len(p.Tabs) {
		return nil
	}
	return p.Tabs[p.Active]
}

// Add inserts t after the active tab and activates it.
func (p *Pane) Add(t *Tab) {
	at := min(p.Active+1, len(p.Tabs))
	p.Tabs = slices.Insert(p.Tabs, at, t)
	p.Active = at
}

// Remove takes tab i out and activates its left neighbour.
func (p *Pane) Remove(i int) *Tab {
	if i < 0 || i >= len(p.Tabs) {
		return nil
	}
	t := p.Tabs[i]
	p.Tabs = slices.Delete(p.Tabs, i, i+1)
	if p.Active >= i {
		p.Active = max(p.Active-1, 0)
	}
	if len(p.Tabs) == 0 {
		p.Active = 0
	}
	return t
}

// Cycle moves the active tab by dir, wrapping.
func (p *Pane) Cycle(dir int) {
	if n := len(p.Tabs); n > 0 {
		p.Active = ((p.Active+dir)%n + n) % n
	}
}

// Find returns the index of the first tab on doc, or -1.
func (p *Pane) Find(doc int) int {
	return slices.IndexFunc(p.Tabs, func(t *Tab) bool { return t.Doc == doc })
}

// Layout is the arena of panes, laid out left to right. Panes are addressed
// by id; focus is tracked by id rather than by reference.
type Layout struct {
	panes       SlotTable[*Pane]
	order       []int
	focused     int
	lastFocused int
}

// NewLayout creates a layout with one empty pane.
func NewLayout() *Layout {
	l := &Layout{}
	id := l.panes.Insert(&Pane{})
	l.order = []int{id}
	l.focused, l.lastFocused = id, id
	return l
}

// Pane returns the pane with id, or nil.
func (l *Layout) Pane(id int) *Pane {
	p, _ := l.panes.Get(id)
	return p
}

// Order returns pane ids left to right.
func (l *Layout) Order() []int { return l.order }

// Focused returns the focused pane id.
func (l *Layout) Focused() int { return l.focused }

// LastFocused returns the pane focused before the current one.
func (l *Layout) LastFocused() int { return l.lastFocused }

// FocusedPane returns the focused pane.
func (l *Layout) FocusedPane() *Pane { return l.Pane(l.focused) }

// Focus moves focus to id.
func (l *Layout) Focus(id int) {
	if l.Pane(id) == nil || id == l.focused {
		return
	}
	l.lastFocused, l.focused = l.focused, id
}

// FocusNext focuses the pane right of the current one, wrapping.
func (l *Layout) FocusNext() {
	i := slices.Index(l.order, l.focused)
	l.Focus(l.order[(i+1)%len(l.order)])
}

// Split opens an empty pane right of the focused one and focuses it.
func (l *Layout) Split() int {
	id := l.panes.Insert(&Pane{})
	i := slices.Index(l.order, l.focused)
	l.order = slices.Insert(l.order, i+1, id)
	l.Focus(id)
	return id
}

// Close removes pane id and returns its tabs. The last pane cannot be
// closed.
func (l *Layout) Close(id int) ([]*Tab, bool) {
	if len(l.order) == 1 {
		return nil, false
	}
	p, ok := l.panes.Release(id)
	if !ok {
		return nil, false
	}
	i := slices.Index(l.order, id)
	l.order = slices.Delete(l.order, i, i+1)
	if l.lastFocused == id || l.Pane(l.lastFocused) == nil {
		l.lastFocused = l.order[max(i-1, 0)]
	}
	if l.focused == id {
		l.focused = l.lastFocused
	}
	return p.Tabs, true
}

// Each yields every pane left to right.
func (l *Layout) Each(fn func(id int, p *Pane)) {
	for _, id := range l.order {
		fn(id, l.Pane(id))
	}
}
