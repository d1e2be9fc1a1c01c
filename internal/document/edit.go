package document

import (
	"strings"

	"github.com/zjrosen/scribe/internal/grapheme"
)

var pairs = map[string]string{
	"(": ")",
	"[": "]",
	"{": "}",
	`"`: `"`,
	"'": "'",
}

var closers = map[string]bool{")": true, "]": true, "}": true, `"`: true, "'": true}

func (d *Document) pairMatching() bool {
	return !d.flags.Has(SingleLine) && !d.flags.Has(Terminal)
}

// InsertAtCursor replaces cursor i's selection with text and leaves the
// cursor after it.
func (d *Document) InsertAtCursor(i int, text string) {
	d.beginEdit()
	defer d.endEdit()
	d.insertAtCursor(d.clampCursorIndex(i), text)
}

// InsertAtCursors runs InsertAtCursor for every cursor as one transaction.
func (d *Document) InsertAtCursors(text string) {
	d.beginEdit()
	defer d.endEdit()
	for i := range d.cursors {
		d.insertAtCursor(i, text)
	}
}

// InsertLinesAtCursors inserts texts[i] at cursor i. When the counts differ
// every cursor receives the joined text.
func (d *Document) InsertLinesAtCursors(texts []string) {
	if len(texts) != len(d.cursors) {
		d.InsertAtCursors(strings.Join(texts, "\n"))
		return
	}
	d.beginEdit()
	defer d.endEdit()
	for i := range d.cursors {
		d.insertAtCursor(i, texts[i])
	}
}

func (d *Document) insertAtCursor(i int, text string) {
	d.deleteSelection(i)
	c := &d.cursors[i]
	c.Position = d.insert(c.Position, text)
	c.Anchor = nil
	d.syncDesiredX(i)
}

func (d *Document) syncDesiredX(i int) {
	d.cursors[i].DesiredVisualX = d.VisualColumn(d.cursors[i].Position)
}

// TypeText inserts typed text at every cursor, applying pair matching when
// the text is a single delimiter.
func (d *Document) TypeText(text string) {
	d.beginEdit()
	defer d.endEdit()
	for i := range d.cursors {
		d.typeAt(i, text)
	}
}

func (d *Document) typeAt(i int, text string) {
	if !d.pairMatching() {
		d.insertAtCursor(i, text)
		return
	}
	c := d.cursors[i]
	closer, opens := pairs[text]

	if c.HasSelection() && opens {
		d.surround(i, text, closer)
		return
	}
	if !c.HasSelection() && closers[text] {
		line := d.lines[c.Position.Row].String()
		if next, ok := grapheme.At(line, c.Position.Col); ok && next == text {
			d.cursors[i].Position.Col += len(text)
			d.syncDesiredX(i)
			return
		}
	}
	if !c.HasSelection() && opens && d.opensPair(c.Position, text) {
		d.insertAtCursor(i, text)
		pos := d.cursors[i].Position
		d.insert(pos, closer)
		d.cursors[i].Position = pos
		d.syncDesiredX(i)
		return
	}
	d.insertAtCursor(i, text)
}

func (d *Document) opensPair(p Position, open string) bool {
	line := d.lines[p.Row].String()
	if next, ok := grapheme.At(line, p.Col); ok && grapheme.CategoryOf(next) == grapheme.Identifier {
		return false
	}
	if open != `"` && open != "'" {
		return true
	}
	prevIdx, ok := grapheme.Previous(line, p.Col)
	if !ok {
		return true
	}
	prev, _ := grapheme.At(line, prevIdx)
	if grapheme.CategoryOf(prev) == grapheme.Identifier {
		return false
	}
	if open == "'" && (prev == "<" || prev == "&") {
		return false
	}
	return true
}

// surround wraps cursor i's selection in open/close, keeping the original
// text selected.
func (d *Document) surround(i int, open, close string) {
	c := d.cursors[i]
	sel := c.Selection()
	forward := !c.Position.Less(*c.Anchor)

	d.insert(sel.End, close)
	d.insert(sel.Start, open)

	start := Position{Col: sel.Start.Col + len(open), Row: sel.Start.Row}
	end := sel.End
	if end.Row == sel.Start.Row {
		end.Col += len(open)
	}
	if forward {
		d.cursors[i].Position, d.cursors[i].Anchor = end, anchorAt(start)
	} else {
		d.cursors[i].Position, d.cursors[i].Anchor = start, anchorAt(end)
	}
	d.syncDesiredX(i)
}

// DeleteSelection removes every cursor's selection.
func (d *Document) DeleteSelection() {
	d.beginEdit()
	defer d.endEdit()
	for i := range d.cursors {
		d.deleteSelection(i)
	}
}

func (d *Document) deleteSelection(i int) bool {
	c := d.cursors[i]
	if !c.HasSelection() {
		d.cursors[i].Anchor = nil
		return false
	}
	sel := c.Selection()
	d.delete(sel.Start, sel.End)
	d.cursors[i].Position = sel.Start
	d.cursors[i].Anchor = nil
	d.syncDesiredX(i)
	return true
}

// DeleteBackward removes the selection or the grapheme before each cursor.
// At column 0 the row is joined onto the previous one. An empty pair around
// the cursor is removed together.
func (d *Document) DeleteBackward() {
	d.beginEdit()
	defer d.endEdit()
	for i := range d.cursors {
		if d.deleteSelection(i) {
			continue
		}
		p := d.cursors[i].Position
		start, ok := d.previousPosition(p)
		if !ok {
			continue
		}
		end := p
		if d.pairMatching() && start.Row == p.Row {
			line := d.lines[p.Row].String()
			open, _ := grapheme.At(line, start.Col)
			next, ok := grapheme.At(line, p.Col)
			if ok && pairs[open] != "" && pairs[open] == next {
				end.Col += len(next)
			}
		}
		d.delete(start, end)
		d.syncDesiredX(i)
	}
}

// DeleteForward removes the selection or the grapheme after each cursor.
func (d *Document) DeleteForward() {
	d.beginEdit()
	defer d.endEdit()
	for i := range d.cursors {
		if d.deleteSelection(i) {
			continue
		}
		p := d.cursors[i].Position
		end, ok := d.nextPosition(p)
		if !ok {
			continue
		}
		d.delete(p, end)
		d.syncDesiredX(i)
	}
}

// DeleteWordBackward removes from each cursor back to the previous word
// start.
func (d *Document) DeleteWordBackward() {
	d.beginEdit()
	defer d.endEdit()
	for i := range d.cursors {
		if d.deleteSelection(i) {
			continue
		}
		p := d.cursors[i].Position
		start := d.wordBoundary(p, -1)
		if start == p {
			continue
		}
		d.delete(start, p)
		d.syncDesiredX(i)
	}
}

// DeleteWordForward removes from each cursor to the next word end.
func (d *Document) DeleteWordForward() {
	d.beginEdit()
	defer d.endEdit()
	for i := range d.cursors {
		if d.deleteSelection(i) {
			continue
		}
		p := d.cursors[i].Position
		end := d.wordBoundary(p, 1)
		if end == p {
			continue
		}
		d.delete(p, end)
		d.syncDesiredX(i)
	}
}

// DeleteLines removes every row touched by a cursor or its selection.
func (d *Document) DeleteLines() {
	rows := d.cursorRows()
	d.beginEdit()
	defer d.endEdit()
	for k := len(rows) - 1; k >= 0; {
		last := rows[k]
		for k > 0 && rows[k-1] == rows[k]-1 {
			k--
		}
		first := rows[k]
		k--
		switch {
		case last < len(d.lines)-1:
			d.delete(Position{Row: first}, Position{Row: last + 1})
		case first > 0:
			d.delete(Position{Col: d.lines[first-1].Len(), Row: first - 1}, Position{Col: d.lines[last].Len(), Row: last})
		default:
			d.delete(Position{}, Position{Col: d.lines[last].Len(), Row: last})
		}
	}
	for i := range d.cursors {
		d.cursors[i].Anchor = nil
		d.cursors[i].Position = Position{Row: d.cursors[i].Position.Row}
		d.syncDesiredX(i)
	}
}

// SelectAll collapses to a single cursor selecting the whole document.
func (d *Document) SelectAll() {
	end := d.End()
	d.SealHistory()
	d.cursors = []Cursor{{Position: end, Anchor: anchorAt(Position{})}}
	d.main = 0
	d.syncDesiredX(0)
}

// SelectedText returns each cursor's selected text in cursor order.
func (d *Document) SelectedText() []string {
	out := make([]string, len(d.cursors))
	for i, c := range d.cursors {
		sel := c.Selection()
		out[i] = d.TextRange(sel.Start, sel.End)
	}
	return out
}

// SelectionOrLines returns the selected text per cursor, falling back to the
// cursor's whole row plus newline when nothing is selected.
func (d *Document) SelectionOrLines() []string {
	out := make([]string, len(d.cursors))
	for i, c := range d.cursors {
		if c.HasSelection() {
			sel := c.Selection()
			out[i] = d.TextRange(sel.Start, sel.End)
			continue
		}
		out[i] = d.lines[c.Position.Row].String() + "\n"
	}
	return out
}

// TrimTrailingWhitespace strips whitespace at the end of every row as one
// transaction.
func (d *Document) TrimTrailingWhitespace() {
	d.beginEdit()
	defer d.endEdit()
	for row, l := range d.lines {
		start := l.TrailingWhitespaceColumn()
		if start < l.Len() {
			d.delete(Position{Col: start, Row: row}, Position{Col: l.Len(), Row: row})
		}
	}
}

// Indent inserts unit at the start of every row touched by a cursor.
func (d *Document) Indent(unit string) {
	d.beginEdit()
	defer d.endEdit()
	for _, row := range d.cursorRows() {
		d.insert(Position{Row: row}, unit)
	}
}

// Unindent removes up to one unit of leading whitespace from every row
// touched by a cursor. width is the visual width of one unit.
func (d *Document) Unindent(width int) {
	d.beginEdit()
	defer d.endEdit()
	for _, row := range d.cursorRows() {
		line := d.lines[row].String()
		n, visual := 0, 0
	scan:
		for n < len(line) && visual < width {
			switch line[n] {
			case ' ':
				visual++
			case '\t':
				visual = width
			default:
				break scan
			}
			n++
		}
		if n > 0 {
			d.delete(Position{Row: row}, Position{Col: n, Row: row})
		}
	}
}

// ToggleComments comments every row touched by a cursor with prefix, or
// uncomments them when all non-blank rows already carry it.
func (d *Document) ToggleComments(prefix string) {
	if prefix == "" {
		return
	}
	rows := d.cursorRows()
	commented, indent := true, -1
	for _, row := range rows {
		l := d.lines[row]
		col := l.FirstNonWhitespaceColumn()
		if col == l.Len() {
			continue
		}
		if indent < 0 || col < indent {
			indent = col
		}
		if !strings.HasPrefix(l.String()[col:], prefix) {
			commented = false
		}
	}
	if indent < 0 {
		return
	}
	d.beginEdit()
	defer d.endEdit()
	for _, row := range rows {
		l := d.lines[row]
		col := l.FirstNonWhitespaceColumn()
		if col == l.Len() {
			continue
		}
		if !commented {
			d.insert(Position{Col: indent, Row: row}, prefix+" ")
			continue
		}
		n := len(prefix)
		if strings.HasPrefix(l.String()[col+n:], " ") {
			n++
		}
		d.delete(Position{Col: col, Row: row}, Position{Col: col + n, Row: row})
	}
}

// cursorRows lists each row covered by a cursor once, ascending.
func (d *Document) cursorRows() []int {
	var rows []int
	last := -1
	for _, c := range d.cursors {
		sel := c.Selection()
		end := sel.End.Row
		if end > sel.Start.Row && sel.End.Col == 0 {
			end--
		}
		for row := sel.Start.Row; row <= end; row++ {
			if row > last {
				rows = append(rows, row)
				last = row
			}
		}
	}
	return rows
}

// IndentationAt returns the leading whitespace of row.
func (d *Document) IndentationAt(row int) string {
	l := d.lines[d.clampRow(row)]
	return l.String()[:l.FirstNonWhitespaceColumn()]
}

// Newline breaks the row at every cursor and carries the row's indentation
// onto the new row. After an opening bracket one more unit is added, and a
// closer right after the cursor moves to a row of its own.
func (d *Document) Newline(unit string) {
	if d.flags.Has(SingleLine) {
		return
	}
	d.beginEdit()
	defer d.endEdit()
	for i := range d.cursors {
		d.deleteSelection(i)
		p := d.cursors[i].Position
		l := d.lines[p.Row]
		line := l.String()
		indent := line[:min(l.FirstNonWhitespaceColumn(), p.Col)]
		if d.flags.Has(Terminal) {
			d.insertAtCursor(i, "\n")
			continue
		}

		before := strings.TrimRight(line[:p.Col], " \t")
		closer := ""
		if before != "" {
			closer = pairs[before[len(before)-1:]]
		}
		opens := closer != "" && closer != `"` && closer != "'"
		text := "\n" + indent
		if opens {
			text += unit
		}
		d.insertAtCursor(i, text)
		if opens && strings.HasPrefix(line[p.Col:], closer) {
			pos := d.cursors[i].Position
			d.insert(pos, "\n"+indent)
			d.cursors[i].Position = pos
			d.syncDesiredX(i)
		}
	}
}
