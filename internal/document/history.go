package document

import "time"

// CombineActionTime is the window within which consecutive transactions
// undo together.
const CombineActionTime = 300 * time.Millisecond

type actionKind int

const (
	actInsert actionKind = iota
	actDelete
	actSetCursors
)

type timedAction struct {
	kind actionKind

	// actInsert: the inserted range. actDelete: start only.
	start Position
	end   Position

	// actDelete: removed text lives in the owning stack's buffer.
	textStart int
	textEnd   int

	// actSetCursors
	cursors []Cursor
	main    int

	at time.Time
	// txnStart marks the first action of a transaction.
	txnStart bool
	// boundary stops coalescing with the previous transaction.
	boundary bool
}

type actionStack struct {
	actions []timedAction
	text    []byte
}

func (s *actionStack) push(a timedAction) {
	s.actions = append(s.actions, a)
}

func (s *actionStack) pushDelete(a timedAction, removed string) {
	a.kind = actDelete
	a.textStart = len(s.text)
	s.text = append(s.text, removed...)
	a.textEnd = len(s.text)
	s.push(a)
}

func (s *actionStack) pop() (timedAction, string) {
	a := s.actions[len(s.actions)-1]
	s.actions = s.actions[:len(s.actions)-1]
	var text string
	if a.kind == actDelete {
		text = string(s.text[a.textStart:a.textEnd])
		s.text = s.text[:a.textStart]
	}
	return a, text
}

func (s *actionStack) top() *timedAction {
	if len(s.actions) == 0 {
		return nil
	}
	return &s.actions[len(s.actions)-1]
}

func (s *actionStack) clear() {
	s.actions = s.actions[:0]
	s.text = s.text[:0]
}

type history struct {
	undo actionStack
	redo actionStack

	depth   int
	changed bool
	sealed  bool

	before     []Cursor
	beforeMain int

	// replaying is set while undo/redo apply actions themselves.
	replaying bool
}

// beginEdit opens a transaction. Transactions nest; only the outermost one
// pushes cursor snapshots.
func (d *Document) beginEdit() {
	h := &d.history
	if h.depth == 0 {
		h.changed = false
		h.before = cloneCursors(d.cursors)
		h.beforeMain = d.main
	}
	h.depth++
}

func (d *Document) endEdit() {
	h := &d.history
	h.depth--
	if h.depth > 0 {
		return
	}
	d.normalizeCursors()
	if h.changed && !h.replaying && d.recordsHistory() {
		h.undo.push(timedAction{kind: actSetCursors, cursors: cloneCursors(d.cursors), main: d.main, at: d.now()})
	}
	h.changed = false
	h.before = nil
}

func (d *Document) recordsHistory() bool {
	return !d.flags.Has(Terminal)
}

// startChange pushes the pre-edit cursor snapshot on the first change of a
// transaction.
func (d *Document) startChange() {
	h := &d.history
	if h.changed {
		return
	}
	h.changed = true
	if h.replaying || !d.recordsHistory() {
		return
	}
	h.redo.clear()
	before, main := h.before, h.beforeMain
	if before == nil {
		before, main = cloneCursors(d.cursors), d.main
	}
	h.undo.push(timedAction{
		kind:     actSetCursors,
		cursors:  before,
		main:     main,
		at:       d.now(),
		txnStart: true,
		boundary: h.sealed,
	})
	h.sealed = false
}

func (d *Document) record(a timedAction) {
	d.startChange()
	if d.history.replaying || !d.recordsHistory() {
		return
	}
	a.at = d.now()
	d.history.undo.push(a)
}

func (d *Document) recordDelete(start Position, removed string) {
	d.startChange()
	if d.history.replaying || !d.recordsHistory() {
		return
	}
	d.history.undo.pushDelete(timedAction{start: start, at: d.now()}, removed)
}

// SealHistory prevents the next edit from coalescing with the previous one.
func (d *Document) SealHistory() {
	d.history.sealed = true
}

// CanUndo reports whether Undo has anything to do.
func (d *Document) CanUndo() bool { return len(d.history.undo.actions) > 0 }

// CanRedo reports whether Redo has anything to do.
func (d *Document) CanRedo() bool { return len(d.history.redo.actions) > 0 }

// Undo reverts the most recent group of transactions. Transactions started
// within CombineActionTime of their predecessor belong to the same group.
func (d *Document) Undo() bool {
	h := &d.history
	if len(h.undo.actions) == 0 {
		return false
	}
	h.replaying = true
	d.beginEdit()
	first := true
	for len(h.undo.actions) > 0 {
		a, text := h.undo.pop()
		d.apply(a, text, &h.redo)
		if first {
			// The redo group ends with the last action it replays.
			h.redo.top().txnStart = true
			first = false
		}
		if !a.txnStart {
			continue
		}
		prev := h.undo.top()
		if a.boundary || prev == nil || a.at.Sub(prev.at) > CombineActionTime {
			break
		}
	}
	d.endEdit()
	h.replaying = false
	h.sealed = true
	return true
}

// Redo reapplies the most recently undone group.
func (d *Document) Redo() bool {
	h := &d.history
	if len(h.redo.actions) == 0 {
		return false
	}
	h.replaying = true
	d.beginEdit()
	first := true
	for len(h.redo.actions) > 0 {
		a, text := h.redo.pop()
		d.apply(a, text, &h.undo)
		if first {
			t := h.undo.top()
			t.txnStart = true
			t.boundary = true
			first = false
		}
		if a.txnStart {
			break
		}
	}
	d.endEdit()
	h.replaying = false
	h.sealed = true
	return true
}

// apply performs the inverse of a and pushes the inverse's inverse onto dst.
func (d *Document) apply(a timedAction, text string, dst *actionStack) {
	now := d.now()
	switch a.kind {
	case actInsert:
		removed := d.delete(a.start, a.end)
		dst.pushDelete(timedAction{start: a.start, at: now}, removed)
	case actDelete:
		end := d.insert(a.start, text)
		dst.push(timedAction{kind: actInsert, start: a.start, end: end, at: now})
	default:
		dst.push(timedAction{kind: actSetCursors, cursors: cloneCursors(d.cursors), main: d.main, at: now})
		d.cursors = cloneCursors(a.cursors)
		d.main = a.main
		for i := range d.cursors {
			d.cursors[i].Position = d.Clamp(d.cursors[i].Position)
			if d.cursors[i].Anchor != nil {
				p := d.Clamp(*d.cursors[i].Anchor)
				d.cursors[i].Anchor = &p
			}
		}
		if d.main >= len(d.cursors) {
			d.main = 0
		}
	}
}
