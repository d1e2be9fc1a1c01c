package document

import (
	"strings"

	"github.com/zjrosen/scribe/internal/grapheme"
)

// Offset converts p to a byte offset into String().
func (d *Document) Offset(p Position) int {
	p = d.Clamp(p)
	off := 0
	for row := 0; row < p.Row; row++ {
		off += d.lines[row].Len() + 1
	}
	return off + p.Col
}

// PositionAt converts a byte offset into String() back to a position.
func (d *Document) PositionAt(off int) Position {
	if off < 0 {
		return Position{}
	}
	for row, l := range d.lines {
		if off <= l.Len() {
			return Position{Col: off, Row: row}
		}
		off -= l.Len() + 1
	}
	return d.End()
}

func (d *Document) onBoundary(p Position) bool {
	return grapheme.IsBoundary(d.lines[p.Row].String(), p.Col)
}

func (d *Document) validMatch(off int, needle string) bool {
	return d.onBoundary(d.PositionAt(off)) && d.onBoundary(d.PositionAt(off+len(needle)))
}

// SearchForward returns the first match of needle starting at or after from,
// without wrapping.
func (d *Document) SearchForward(needle string, from Position) (Position, bool) {
	if needle == "" {
		return Position{}, false
	}
	text := d.String()
	off, ok := d.indexFrom(text, needle, d.Offset(from), len(text))
	if !ok {
		return Position{}, false
	}
	return d.PositionAt(off), true
}

// SearchBackward returns the last match of needle starting strictly before
// from, without wrapping.
func (d *Document) SearchBackward(needle string, from Position) (Position, bool) {
	if needle == "" {
		return Position{}, false
	}
	text := d.String()
	off, ok := d.lastIndexBefore(text, needle, d.Offset(from))
	if !ok {
		return Position{}, false
	}
	return d.PositionAt(off), true
}

// Search is the wrapping variant of SearchForward and SearchBackward.
// Matching is case-sensitive and only accepts matches whose edges are
// grapheme boundaries.
func (d *Document) Search(needle string, from Position, reverse bool) (Position, bool) {
	if needle == "" {
		return Position{}, false
	}
	text := d.String()
	at := d.Offset(from)
	if reverse {
		if off, ok := d.lastIndexBefore(text, needle, at); ok {
			return d.PositionAt(off), true
		}
		if off, ok := d.lastIndexBefore(text, needle, len(text)+1); ok {
			return d.PositionAt(off), true
		}
		return Position{}, false
	}
	if off, ok := d.indexFrom(text, needle, at, len(text)); ok {
		return d.PositionAt(off), true
	}
	if off, ok := d.indexFrom(text, needle, 0, at); ok {
		return d.PositionAt(off), true
	}
	return Position{}, false
}

// indexFrom finds the first valid match starting in [from, limit).
func (d *Document) indexFrom(text, needle string, from, limit int) (int, bool) {
	for from < limit && from <= len(text) {
		i := strings.Index(text[from:], needle)
		if i < 0 || from+i >= limit {
			return 0, false
		}
		off := from + i
		if d.validMatch(off, needle) {
			return off, true
		}
		from = off + 1
	}
	return 0, false
}

// lastIndexBefore finds the last valid match starting before before.
func (d *Document) lastIndexBefore(text, needle string, before int) (int, bool) {
	limit := before - 1 + len(needle)
	if limit > len(text) {
		limit = len(text)
	}
	for limit >= len(needle) {
		i := strings.LastIndex(text[:limit], needle)
		if i < 0 {
			return 0, false
		}
		if d.validMatch(i, needle) {
			return i, true
		}
		limit = i + len(needle) - 1
	}
	return 0, false
}

// FindAll returns the start of every non-overlapping match in order.
func (d *Document) FindAll(needle string) []Position {
	if needle == "" {
		return nil
	}
	text := d.String()
	var out []Position
	for from := 0; from <= len(text); {
		off, ok := d.indexFrom(text, needle, from, len(text))
		if !ok {
			break
		}
		out = append(out, d.PositionAt(off))
		from = off + len(needle)
	}
	return out
}
