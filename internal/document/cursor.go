package document

import "sort"

// Cursor is one insertion point. When Anchor is set the cursor also owns the
// selection between Anchor and Position.
type Cursor struct {
	Position Position
	Anchor   *Position
	// DesiredVisualX is the visual column vertical motion tries to return to.
	DesiredVisualX int
}

// HasSelection reports whether the cursor selects a non-empty range.
func (c Cursor) HasSelection() bool {
	return c.Anchor != nil && *c.Anchor != c.Position
}

// Selection returns the selected range, which is empty without an anchor.
func (c Cursor) Selection() Range {
	if c.Anchor == nil {
		return Range{Start: c.Position, End: c.Position}
	}
	return NewRange(*c.Anchor, c.Position)
}

func (c Cursor) clone() Cursor {
	if c.Anchor != nil {
		a := *c.Anchor
		c.Anchor = &a
	}
	return c
}

func anchorAt(p Position) *Position { return &p }

func cloneCursors(cs []Cursor) []Cursor {
	out := make([]Cursor, len(cs))
	for i, c := range cs {
		out[i] = c.clone()
	}
	return out
}

// Cursors returns a copy of all cursors in position order.
func (d *Document) Cursors() []Cursor {
	return cloneCursors(d.cursors)
}

// CursorCount returns the number of cursors.
func (d *Document) CursorCount() int { return len(d.cursors) }

// Cursor returns a copy of cursor i.
func (d *Document) Cursor(i int) Cursor {
	return d.cursors[d.clampCursorIndex(i)].clone()
}

// MainCursorIndex returns the index of the main cursor.
func (d *Document) MainCursorIndex() int { return d.main }

// MainCursor returns a copy of the main cursor.
func (d *Document) MainCursor() Cursor { return d.cursors[d.main].clone() }

func (d *Document) clampCursorIndex(i int) int {
	if i < 0 {
		return 0
	}
	if i >= len(d.cursors) {
		return len(d.cursors) - 1
	}
	return i
}

// SetCursors replaces every cursor. The main cursor becomes main (clamped).
// Positions are clamped and desired columns reset; the set is then sorted
// and merged.
func (d *Document) SetCursors(cs []Cursor, main int) {
	if len(cs) == 0 {
		cs = []Cursor{{}}
	}
	if d.flags.Has(Terminal) && len(cs) > 1 {
		if main < 0 || main >= len(cs) {
			main = 0
		}
		cs = cs[main : main+1]
		main = 0
	}
	d.cursors = cloneCursors(cs)
	for i := range d.cursors {
		d.cursors[i].Position = d.Clamp(d.cursors[i].Position)
		if d.cursors[i].Anchor != nil {
			a := d.Clamp(*d.cursors[i].Anchor)
			d.cursors[i].Anchor = &a
		}
		d.syncDesiredX(i)
	}
	d.main = main
	if d.main < 0 || d.main >= len(d.cursors) {
		d.main = 0
	}
	d.normalizeCursors()
}

// normalizeCursors sorts cursors by selection start and merges overlapping
// selections and coincident carets. The main cursor follows whichever cursor
// it was merged into.
func (d *Document) normalizeCursors() {
	if len(d.cursors) == 1 {
		d.main = 0
		return
	}

	type tagged struct {
		c    Cursor
		main bool
	}
	ts := make([]tagged, len(d.cursors))
	for i, c := range d.cursors {
		ts[i] = tagged{c: c, main: i == d.main}
	}
	sort.SliceStable(ts, func(i, j int) bool {
		return ts[i].c.Selection().Start.Less(ts[j].c.Selection().Start)
	})

	merged := ts[:1]
	for _, t := range ts[1:] {
		last := &merged[len(merged)-1]
		a, b := last.c.Selection(), t.c.Selection()
		overlap := b.Start.Less(a.End) ||
			(b.Start == a.End && (a.IsEmpty() || b.IsEmpty()))
		if !overlap {
			merged = append(merged, t)
			continue
		}
		last.c = mergeCursors(last.c, t.c)
		last.main = last.main || t.main
	}

	d.cursors = d.cursors[:0]
	d.main = 0
	for i, t := range merged {
		d.cursors = append(d.cursors, t.c)
		if t.main {
			d.main = i
		}
	}
}

func mergeCursors(a, b Cursor) Cursor {
	ra, rb := a.Selection(), b.Selection()
	start, end := ra.Start, ra.End
	if rb.Start.Less(start) {
		start = rb.Start
	}
	if end.Less(rb.End) {
		end = rb.End
	}
	if start == end {
		return Cursor{Position: start, DesiredVisualX: a.DesiredVisualX}
	}
	// Keep the caret on the side the later cursor had it.
	forward := b.Anchor == nil || !b.Position.Less(*b.Anchor)
	if forward {
		return Cursor{Position: end, Anchor: anchorAt(start), DesiredVisualX: b.DesiredVisualX}
	}
	return Cursor{Position: start, Anchor: anchorAt(end), DesiredVisualX: b.DesiredVisualX}
}

// adjustForInsert moves p as if text spanning [at, end) was inserted at at.
func adjustForInsert(p, at, end Position) Position {
	if p.Less(at) {
		return p
	}
	if p.Row == at.Row {
		return Position{Col: end.Col + (p.Col - at.Col), Row: end.Row}
	}
	return Position{Col: p.Col, Row: p.Row + (end.Row - at.Row)}
}

// adjustForDelete moves p as if [start, end) was removed.
func adjustForDelete(p, start, end Position) Position {
	if !start.Less(p) {
		return p
	}
	if !end.Less(p) {
		return start
	}
	if p.Row == end.Row {
		return Position{Col: start.Col + (p.Col - end.Col), Row: start.Row}
	}
	return Position{Col: p.Col, Row: p.Row - (end.Row - start.Row)}
}

func (d *Document) shiftPositions(f func(Position) Position) {
	for i := range d.cursors {
		c := &d.cursors[i]
		c.Position = f(c.Position)
		if c.Anchor != nil {
			a := f(*c.Anchor)
			c.Anchor = &a
		}
	}
	for i := range d.diagnostics {
		d.diagnostics[i].Start = f(d.diagnostics[i].Start)
		d.diagnostics[i].End = f(d.diagnostics[i].End)
	}
}
