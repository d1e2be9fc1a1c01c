package terminal

import (
	"strings"

	"github.com/zjrosen/scribe/internal/document"
)

// Cell is one grid cell. A wide grapheme is followed by a continuation cell
// whose Text is empty.
type Cell struct {
	Text  string
	Style Style
}

func blank(st Style) Cell { return Cell{Text: " ", Style: Style{BG: st.BG}} }

type row struct {
	cells []Cell
	dirty bool
}

func (r *row) text() string {
	var b strings.Builder
	for _, c := range r.cells {
		b.WriteString(c.Text)
	}
	return b.String()
}

type savedCursor struct {
	row, col int
	style    Style
	valid    bool
}

// Screen is one terminal buffer. The grid is canonical; every row is
// mirrored into a terminal-flagged document, and the last Rows() rows of the
// document are the visible screen. Rows above them are scrollback.
type Screen struct {
	doc        *document.Document
	lines      []*row
	rows, cols int
	top        int
	bottom     int
	scrollback int
	saved      savedCursor
	dirty      bool
}

func newScreen(cols, rows, scrollback int, pool *document.Pool) *Screen {
	s := &Screen{
		doc:        document.NewWithPool(document.Terminal, pool),
		lines:      []*row{{}},
		cols:       cols,
		rows:       1,
		scrollback: scrollback,
	}
	s.grow(rows - 1)
	s.resetRegion()
	return s
}

// Document returns the mirrored document.
func (s *Screen) Document() *document.Document { return s.doc }

// Rows returns the visible height.
func (s *Screen) Rows() int { return s.rows }

// Cols returns the visible width.
func (s *Screen) Cols() int { return s.cols }

// Base returns the document row of screen row 0.
func (s *Screen) Base() int { return len(s.lines) - s.rows }

// Cells returns the cells of document row r.
func (s *Screen) Cells(r int) []Cell {
	if r < 0 || r >= len(s.lines) {
		return nil
	}
	return s.lines[r].cells
}

func (s *Screen) resetRegion() {
	s.top, s.bottom = 0, s.rows-1
}

func (s *Screen) line(r int) *row { return s.lines[s.Base()+r] }

func (s *Screen) touch(r *row) {
	r.dirty = true
	s.dirty = true
}

// ensure pads screen row r with blanks to at least n cells.
func (s *Screen) ensure(r, n int) *row {
	ln := s.line(r)
	for len(ln.cells) < n {
		ln.cells = append(ln.cells, blank(Style{}))
	}
	return ln
}

// put writes g, which is w cells wide, at (r, col).
func (s *Screen) put(r, col int, g string, w int, st Style) {
	ln := s.ensure(r, col+w)
	cells := ln.cells
	if cells[col].Text == "" && col > 0 {
		cells[col-1] = blank(cells[col-1].Style)
	}
	if end := col + w; end < len(cells) && cells[end].Text == "" {
		cells[end] = blank(cells[end].Style)
	}
	cells[col] = Cell{Text: g, Style: st}
	if w == 2 {
		cells[col+1] = Cell{Style: st}
	}
	s.touch(ln)
}

// appendToCell joins a zero-width grapheme onto the cell left of col.
func (s *Screen) appendToCell(r, col int, g string) {
	ln := s.line(r)
	for col--; col >= 0 && col < len(ln.cells); col-- {
		if ln.cells[col].Text != "" {
			ln.cells[col].Text += g
			s.touch(ln)
			return
		}
	}
}

// erase blanks cells [from, to) of screen row r. Erasing to the end of the row
// truncates it.
func (s *Screen) erase(r, from, to int, st Style) {
	ln := s.line(r)
	from = max(from, 0)
	if from >= len(ln.cells) {
		return
	}
	if to >= len(ln.cells) && st.BG == (Color{}) {
		ln.cells = ln.cells[:from]
		s.fixEdges(ln, from)
		s.touch(ln)
		return
	}
	to = min(to, len(ln.cells))
	for i := from; i < to; i++ {
		ln.cells[i] = blank(st)
	}
	s.fixEdges(ln, from)
	s.fixEdges(ln, to)
	s.touch(ln)
}

// fixEdges blanks a wide grapheme that an operation split at col.
func (s *Screen) fixEdges(ln *row, col int) {
	if col <= 0 || col > len(ln.cells) {
		return
	}
	if col < len(ln.cells) && ln.cells[col].Text == "" {
		ln.cells[col] = blank(ln.cells[col].Style)
	}
	if w := ln.cells[col-1]; w.Text != "" && cellWidth(w.Text) == 2 && (col == len(ln.cells) || ln.cells[col].Text != "") {
		ln.cells[col-1] = blank(w.Style)
	}
}

// insertCells shifts cells at col right by n blanks; cells past the right
// margin are lost.
func (s *Screen) insertCells(r, col, n int, st Style) {
	ln := s.line(r)
	if col >= len(ln.cells) {
		return
	}
	ins := make([]Cell, n)
	for i := range ins {
		ins[i] = blank(st)
	}
	ln.cells = append(ln.cells[:col], append(ins, ln.cells[col:]...)...)
	if len(ln.cells) > s.cols {
		ln.cells = ln.cells[:s.cols]
	}
	s.fixEdges(ln, col)
	s.fixEdges(ln, col+n)
	s.fixEdges(ln, len(ln.cells))
	s.touch(ln)
}

// deleteCells removes n cells at col, pulling the rest of the row left.
func (s *Screen) deleteCells(r, col, n int) {
	ln := s.line(r)
	if col >= len(ln.cells) {
		return
	}
	end := min(col+n, len(ln.cells))
	ln.cells = append(ln.cells[:col], ln.cells[end:]...)
	s.fixEdges(ln, col)
	s.touch(ln)
}

// clearRow empties screen row r.
func (s *Screen) clearRow(r int) {
	ln := s.line(r)
	ln.cells = ln.cells[:0]
	s.touch(ln)
}

// insertDocRow inserts an empty row at document row at.
func (s *Screen) insertDocRow(at int) {
	if at >= s.doc.LineCount() {
		s.doc.Insert(s.doc.End(), "\n")
	} else {
		s.doc.Insert(document.Pos(0, at), "\n")
	}
	s.lines = append(s.lines, nil)
	copy(s.lines[at+1:], s.lines[at:])
	s.lines[at] = &row{}
}

// deleteDocRow removes document row at.
func (s *Screen) deleteDocRow(at int) {
	switch {
	case s.doc.LineCount() == 1:
		s.doc.Delete(document.Pos(0, 0), s.doc.End())
		s.lines[0] = &row{}
		return
	case at < s.doc.LineCount()-1:
		s.doc.Delete(document.Pos(0, at), document.Pos(0, at+1))
	default:
		s.doc.Delete(document.Pos(s.doc.LineLen(at-1), at-1), document.Pos(s.doc.LineLen(at), at))
	}
	s.lines = append(s.lines[:at], s.lines[at+1:]...)
}

// grow appends n rows to the bottom of the screen.
func (s *Screen) grow(n int) {
	for i := 0; i < n; i++ {
		s.insertDocRow(len(s.lines))
		s.rows++
	}
}

// scrollUp moves the region up by n rows. With a full-screen region on a
// screen that keeps scrollback, rows leaving the top are kept.
func (s *Screen) scrollUp(n int) {
	n = min(n, s.bottom-s.top+1)
	if s.scrollback > 0 && s.top == 0 && s.bottom == s.rows-1 {
		for i := 0; i < n; i++ {
			s.insertDocRow(len(s.lines))
		}
		s.trimScrollback()
		return
	}
	s.deleteRows(s.top, n)
}

// scrollDown moves the region down by n rows.
func (s *Screen) scrollDown(n int) {
	s.insertRows(s.top, n)
}

// insertRows inserts n blank rows at screen row at, pushing rows below it
// off the bottom of the region.
func (s *Screen) insertRows(at, n int) {
	if at < s.top || at > s.bottom {
		return
	}
	n = min(n, s.bottom-at+1)
	base := s.Base()
	for i := 0; i < n; i++ {
		s.insertDocRow(base + at)
		s.deleteDocRow(base + s.bottom + 1)
	}
}

// deleteRows removes n rows at screen row at, pulling blank rows in at the
// bottom of the region.
func (s *Screen) deleteRows(at, n int) {
	if at < s.top || at > s.bottom {
		return
	}
	n = min(n, s.bottom-at+1)
	base := s.Base()
	for i := 0; i < n; i++ {
		s.insertDocRow(base + s.bottom + 1)
		s.deleteDocRow(base + at)
	}
}

func (s *Screen) trimScrollback() {
	extra := s.Base() - s.scrollback
	if extra <= 0 {
		return
	}
	s.doc.Delete(document.Pos(0, 0), document.Pos(0, extra))
	s.lines = append(s.lines[:0], s.lines[extra:]...)
}

// clearScrollback drops every row above the screen.
func (s *Screen) clearScrollback() {
	if base := s.Base(); base > 0 {
		s.doc.Delete(document.Pos(0, 0), document.Pos(0, base))
		s.lines = append(s.lines[:0], s.lines[base:]...)
	}
}

// resize changes the visible size and returns how many rows the cursor
// must move up to stay on the same content.
func (s *Screen) resize(cols, rows, cursorRow int) int {
	shift := 0
	if rows > s.rows {
		s.grow(rows - s.rows)
	}
	for s.rows > rows {
		last := len(s.lines) - 1
		if s.rows-1 > cursorRow && len(s.lines[last].cells) == 0 {
			s.deleteDocRow(last)
		} else if s.scrollback > 0 {
			shift++
			cursorRow--
		} else {
			s.deleteDocRow(s.Base())
			shift++
			cursorRow--
		}
		s.rows--
	}
	if cols < s.cols {
		for r := 0; r < s.rows; r++ {
			ln := s.line(r)
			if len(ln.cells) > cols {
				ln.cells = ln.cells[:cols]
				s.fixEdges(ln, cols)
				s.touch(ln)
			}
		}
	}
	s.cols = cols
	s.trimScrollback()
	s.resetRegion()
	return shift
}

// flush mirrors dirty rows into the document.
func (s *Screen) flush() {
	if !s.dirty {
		return
	}
	for i, ln := range s.lines {
		if !ln.dirty {
			continue
		}
		ln.dirty = false
		text := ln.text()
		if s.doc.Line(i) == text {
			continue
		}
		s.doc.Delete(document.Pos(0, i), document.Pos(s.doc.LineLen(i), i))
		s.doc.Insert(document.Pos(0, i), text)
	}
	s.dirty = false
}

// reset clears the whole buffer including scrollback.
func (s *Screen) reset() {
	s.clearScrollback()
	for r := 0; r < s.rows; r++ {
		s.clearRow(r)
	}
	s.saved = savedCursor{}
	s.resetRegion()
}

// byteColumn converts a cell column of document row r to a byte column.
func (s *Screen) byteColumn(r, col int) int {
	n := 0
	for i, c := range s.Cells(r) {
		if i >= col {
			break
		}
		n += len(c.Text)
	}
	return n
}
