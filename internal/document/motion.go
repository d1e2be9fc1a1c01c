package document

import "github.com/zjrosen/scribe/internal/grapheme"

func (d *Document) previousPosition(p Position) (Position, bool) {
	if p.Col > 0 {
		col, _ := grapheme.Previous(d.lines[p.Row].String(), p.Col)
		return Position{Col: col, Row: p.Row}, true
	}
	if p.Row == 0 {
		return p, false
	}
	return Position{Col: d.lines[p.Row-1].Len(), Row: p.Row - 1}, true
}

func (d *Document) nextPosition(p Position) (Position, bool) {
	if p.Col < d.lines[p.Row].Len() {
		col, _ := grapheme.Next(d.lines[p.Row].String(), p.Col)
		return Position{Col: col, Row: p.Row}, true
	}
	if p.Row == len(d.lines)-1 {
		return p, false
	}
	return Position{Row: p.Row + 1}, true
}

func (d *Document) categoryAt(p Position) grapheme.Category {
	g, ok := grapheme.At(d.lines[p.Row].String(), p.Col)
	if !ok {
		return grapheme.Newline
	}
	return grapheme.CategoryOf(g)
}

// wordBoundary walks from p in direction dir (+1 or -1) over any spaces and
// then over one run of graphemes sharing a category. A row edge counts as a
// single step.
func (d *Document) wordBoundary(p Position, dir int) Position {
	if dir < 0 {
		if p.Col == 0 {
			q, _ := d.previousPosition(p)
			return q
		}
		for p.Col > 0 {
			q, _ := d.previousPosition(p)
			if d.categoryAt(q) != grapheme.Space {
				break
			}
			p = q
		}
		if p.Col == 0 {
			return p
		}
		q, _ := d.previousPosition(p)
		cat := d.categoryAt(q)
		for p.Col > 0 {
			q, _ := d.previousPosition(p)
			if d.categoryAt(q) != cat {
				break
			}
			p = q
		}
		return p
	}

	end := d.lines[p.Row].Len()
	if p.Col == end {
		q, _ := d.nextPosition(p)
		return q
	}
	for p.Col < end && d.categoryAt(p) == grapheme.Space {
		p, _ = d.nextPosition(p)
	}
	if p.Col == end {
		return p
	}
	cat := d.categoryAt(p)
	for p.Col < end && d.categoryAt(p) == cat {
		p, _ = d.nextPosition(p)
	}
	return p
}

func (d *Document) beginMotion(i int, sel bool) *Cursor {
	d.SealHistory()
	c := &d.cursors[i]
	if sel {
		if c.Anchor == nil {
			c.Anchor = anchorAt(c.Position)
		}
	} else {
		c.Anchor = nil
	}
	return c
}

// MoveCursor moves cursor i by dx graphemes and dy rows. Horizontal motion
// wraps across rows and resets the desired visual column; vertical motion
// keeps it.
func (d *Document) MoveCursor(i int, dx, dy int, sel bool) {
	d.moveCursor(d.clampCursorIndex(i), dx, dy, sel)
	d.normalizeCursors()
}

func (d *Document) moveCursor(i int, dx, dy int, sel bool) {
	c := d.cursors[i]
	if !sel && c.HasSelection() && dy == 0 && dx != 0 {
		r := c.Selection()
		d.cursors[i].Anchor = nil
		if dx < 0 {
			d.cursors[i].Position = r.Start
		} else {
			d.cursors[i].Position = r.End
		}
		d.syncDesiredX(i)
		d.SealHistory()
		return
	}

	cur := d.beginMotion(i, sel)
	horizontal := dx != 0
	for ; dx < 0; dx++ {
		cur.Position, _ = d.previousPosition(cur.Position)
	}
	for ; dx > 0; dx-- {
		cur.Position, _ = d.nextPosition(cur.Position)
	}
	if horizontal {
		cur.DesiredVisualX = d.VisualColumn(cur.Position)
	}
	if dy != 0 {
		row := cur.Position.Row + dy
		switch {
		case row < 0:
			cur.Position = Position{}
		case row >= len(d.lines):
			cur.Position = d.End()
		default:
			line := d.lines[row].String()
			cur.Position = Position{Col: grapheme.VisualToColumn(line, cur.DesiredVisualX, d.tabWidth), Row: row}
		}
	}
}

// MoveCursors moves every cursor and merges any that meet.
func (d *Document) MoveCursors(dx, dy int, sel bool) {
	for i := range d.cursors {
		d.moveCursor(i, dx, dy, sel)
	}
	d.normalizeCursors()
}

// MoveCursorsWord moves every cursor to the previous (dir < 0) or next word
// boundary.
func (d *Document) MoveCursorsWord(dir int, sel bool) {
	for i := range d.cursors {
		c := d.beginMotion(i, sel)
		c.Position = d.wordBoundary(c.Position, dir)
		d.syncDesiredX(i)
	}
	d.normalizeCursors()
}

// MoveCursorsHome toggles each cursor between the first non-blank column and
// column 0.
func (d *Document) MoveCursorsHome(sel bool) {
	for i := range d.cursors {
		c := d.beginMotion(i, sel)
		first := d.lines[c.Position.Row].FirstNonWhitespaceColumn()
		if c.Position.Col == first {
			first = 0
		}
		c.Position.Col = first
		d.syncDesiredX(i)
	}
	d.normalizeCursors()
}

// MoveCursorsEnd moves every cursor to the end of its row.
func (d *Document) MoveCursorsEnd(sel bool) {
	for i := range d.cursors {
		c := d.beginMotion(i, sel)
		c.Position.Col = d.lines[c.Position.Row].Len()
		d.syncDesiredX(i)
	}
	d.normalizeCursors()
}

// MoveCursorsToStart jumps to the first position of the document.
func (d *Document) MoveCursorsToStart(sel bool) { d.JumpCursors(Position{}, sel) }

// MoveCursorsToEnd jumps to the last position of the document.
func (d *Document) MoveCursorsToEnd(sel bool) { d.JumpCursors(d.End(), sel) }

// JumpCursors collapses to the main cursor and moves it to p. With sel the
// main cursor's anchor is kept (or set at its old position).
func (d *Document) JumpCursors(p Position, sel bool) {
	m := d.cursors[d.main].clone()
	d.cursors = []Cursor{m}
	d.main = 0
	c := d.beginMotion(0, sel)
	c.Position = d.Clamp(p)
	d.syncDesiredX(0)
}

// SetSelection makes a single cursor selecting [anchor, pos).
func (d *Document) SetSelection(anchor, pos Position) {
	d.SealHistory()
	anchor, pos = d.Clamp(anchor), d.Clamp(pos)
	d.cursors = []Cursor{{Position: pos, Anchor: anchorAt(anchor)}}
	d.main = 0
	d.syncDesiredX(0)
}

// AddCursorAbove and AddCursorBelow add a cursor one row past the outermost
// cursor, at the main cursor's desired visual column. The new cursor becomes
// main.
func (d *Document) AddCursorAbove() { d.addCursorVertical(-1) }

// AddCursorBelow adds a cursor below the last one.
func (d *Document) AddCursorBelow() { d.addCursorVertical(1) }

func (d *Document) addCursorVertical(dir int) {
	if d.flags.Has(Terminal) {
		return
	}
	edge := d.cursors[0]
	if dir > 0 {
		edge = d.cursors[len(d.cursors)-1]
	}
	row := edge.Position.Row + dir
	if row < 0 || row >= len(d.lines) {
		return
	}
	x := d.cursors[d.main].DesiredVisualX
	col := grapheme.VisualToColumn(d.lines[row].String(), x, d.tabWidth)
	d.SealHistory()
	d.cursors = append(d.cursors, Cursor{Position: Position{Col: col, Row: row}, DesiredVisualX: x})
	d.main = len(d.cursors) - 1
	d.normalizeCursors()
}

// AddCursorAtNextOccurrence selects the word under the main cursor when it
// has no selection, otherwise adds a cursor selecting the next occurrence of
// the main selection after the last cursor.
func (d *Document) AddCursorAtNextOccurrence() bool {
	if d.flags.Has(Terminal) {
		return false
	}
	m := d.cursors[d.main]
	if !m.HasSelection() {
		start, end := d.WordAt(m.Position)
		if start == end {
			return false
		}
		d.SealHistory()
		d.cursors[d.main].Anchor = anchorAt(start)
		d.cursors[d.main].Position = end
		d.syncDesiredX(d.main)
		d.normalizeCursors()
		return true
	}
	sel := m.Selection()
	needle := d.TextRange(sel.Start, sel.End)
	from := d.cursors[len(d.cursors)-1].Selection().End
	start, ok := d.Search(needle, from, false)
	if !ok {
		return false
	}
	for _, c := range d.cursors {
		if c.Selection().Start == start {
			return false
		}
	}
	end := endOf(start, needle)
	d.SealHistory()
	d.cursors = append(d.cursors, Cursor{Position: end, Anchor: anchorAt(start)})
	d.main = len(d.cursors) - 1
	d.syncDesiredX(d.main)
	d.normalizeCursors()
	return true
}

// WordAt returns the bounds of the identifier run touching p.
func (d *Document) WordAt(p Position) (Position, Position) {
	p = d.Clamp(p)
	line := d.lines[p.Row].String()
	start, end := p.Col, p.Col
	for start > 0 {
		prev, _ := grapheme.Previous(line, start)
		g, _ := grapheme.At(line, prev)
		if grapheme.CategoryOf(g) != grapheme.Identifier {
			break
		}
		start = prev
	}
	for end < len(line) {
		g, _ := grapheme.At(line, end)
		if grapheme.CategoryOf(g) != grapheme.Identifier {
			break
		}
		end += len(g)
	}
	return Position{Col: start, Row: p.Row}, Position{Col: end, Row: p.Row}
}

// CollapseCursors keeps only the main cursor and clears its selection.
// It reports whether anything changed.
func (d *Document) CollapseCursors() bool {
	m := d.cursors[d.main]
	changed := len(d.cursors) > 1 || m.Anchor != nil
	m.Anchor = nil
	d.cursors = []Cursor{m}
	d.main = 0
	return changed
}
