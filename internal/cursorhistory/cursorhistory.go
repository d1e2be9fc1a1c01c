// Package cursorhistory keeps a jump list of main-cursor locations across
// documents.
package cursorhistory

import "github.com/zjrosen/scribe/internal/document"

const (
	// RowThreshold is the row distance that counts as a jump.
	RowThreshold = 10
	// DefaultLimit caps the number of remembered locations.
	DefaultLimit = 256
)

// Entry is a remembered location. Doc is a document slot id.
type Entry struct {
	Doc      int
	Position document.Position
}

// History is a pair of stacks. The top of the undo stack is the most
// recently recorded location.
type History struct {
	undo  []Entry
	redo  []Entry
	limit int
}

// New returns an empty history capped at limit entries; limit <= 0 uses
// DefaultLimit.
func New(limit int) *History {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &History{limit: limit}
}

func (h *History) isJump(e Entry) bool {
	if len(h.undo) == 0 {
		return true
	}
	top := h.undo[len(h.undo)-1]
	if top.Doc != e.Doc {
		return true
	}
	d := top.Position.Row - e.Position.Row
	if d < 0 {
		d = -d
	}
	return d >= RowThreshold
}

// Record remembers e when it is far enough from the last location and reports
// whether it did. Recording drops the redo stack.
func (h *History) Record(e Entry) bool {
	if !h.isJump(e) {
		return false
	}
	h.undo = append(h.undo, e)
	if len(h.undo) > h.limit {
		h.undo = append(h.undo[:0], h.undo[len(h.undo)-h.limit:]...)
	}
	h.redo = h.redo[:0]
	return true
}

// Undo moves the top location to the redo stack and returns the location to
// jump back to.
func (h *History) Undo() (Entry, bool) {
	if len(h.undo) < 2 {
		return Entry{}, false
	}
	top := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = append(h.redo, top)
	return h.undo[len(h.undo)-1], true
}

// Redo reverses the last Undo.
func (h *History) Redo() (Entry, bool) {
	if len(h.redo) == 0 {
		return Entry{}, false
	}
	e := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = append(h.undo, e)
	return e, true
}

// Forget removes every entry for doc, used when its slot is released.
func (h *History) Forget(doc int) {
	h.undo = without(h.undo, doc)
	h.redo = without(h.redo, doc)
}

func without(es []Entry, doc int) []Entry {
	out := es[:0]
	for _, e := range es {
		if e.Doc != doc {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the depth of the undo and redo stacks.
func (h *History) Len() (undo, redo int) { return len(h.undo), len(h.redo) }
