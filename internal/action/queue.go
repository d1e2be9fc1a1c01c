package action

import "github.com/zjrosen/scribe/internal/grapheme"

// MouseKind distinguishes mouse events.
type MouseKind int

const (
	MousePress MouseKind = iota
	MouseRelease
	MouseDrag
	MouseWheel
)

// MouseEvent is a pointer event in view units.
type MouseEvent struct {
	Kind   MouseKind
	X, Y   float64
	DX, DY float64
	Button int
	Shift  bool
}

// Queue collects one frame of input in arrival order per stream. The driver
// drains actions first, then graphemes.
type Queue struct {
	actions   []Action
	graphemes []string
	mouse     []MouseEvent
}

// PushAction appends a.
func (q *Queue) PushAction(a Action) { q.actions = append(q.actions, a) }

// PushText splits text into grapheme clusters and appends them.
func (q *Queue) PushText(text string) {
	it := grapheme.NewIterator(text)
	for it.Next() {
		q.graphemes = append(q.graphemes, it.Cluster())
	}
}

// PushMouse appends e.
func (q *Queue) PushMouse(e MouseEvent) { q.mouse = append(q.mouse, e) }

// Actions returns and clears the pending actions.
func (q *Queue) Actions() []Action {
	out := q.actions
	q.actions = nil
	return out
}

// Graphemes returns and clears the pending graphemes.
func (q *Queue) Graphemes() []string {
	out := q.graphemes
	q.graphemes = nil
	return out
}

// Mouse returns and clears the pending mouse events.
func (q *Queue) Mouse() []MouseEvent {
	out := q.mouse
	q.mouse = nil
	return out
}

// Empty reports whether nothing is pending.
func (q *Queue) Empty() bool {
	return len(q.actions) == 0 && len(q.graphemes) == 0 && len(q.mouse) == 0
}
