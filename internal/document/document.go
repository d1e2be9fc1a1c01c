package document

import (
	"strings"
	"time"

	"github.com/zjrosen/scribe/internal/grapheme"
)

// DefaultTabWidth is used until the editor applies configuration.
const DefaultTabWidth = 4

// Change describes one low-level mutation in pre-edit coordinates: the text
// between Start and End (Removed) was replaced by Text.
type Change struct {
	Start   Position
	End     Position
	Text    string
	Removed string
	Version uint64
}

// InsertedEnd returns the post-edit position just past Text.
func (c Change) InsertedEnd() Position {
	return endOf(c.Start, c.Text)
}

// ChangeListener is notified after every mutation.
type ChangeListener interface {
	DocumentChanged(d *Document, c Change)
}

// Document is an ordered, non-empty list of lines with cursors and history.
type Document struct {
	lines []*Line
	pool  *Pool

	cursors []Cursor
	main    int

	flags      Flags
	lineEnding LineEnding
	path       string
	pathKind   PathKind
	dirty      bool
	version    uint64
	tabWidth   int

	history   history
	listeners []ChangeListener

	diagnostics []Diagnostic
	hover       string

	now func() time.Time
}

// New creates an empty document with one empty row and one cursor.
func New(flags Flags) *Document {
	return NewWithPool(flags, NewPool())
}

// NewWithPool creates an empty document drawing line buffers from pool.
func NewWithPool(flags Flags, pool *Pool) *Document {
	if flags == 0 {
		flags = MultiLine
	}
	d := &Document{
		pool:     pool,
		flags:    flags,
		tabWidth: DefaultTabWidth,
		now:      time.Now,
	}
	d.lines = []*Line{newLine(pool, "")}
	d.cursors = []Cursor{{}}
	return d
}

// FromString creates a document holding text. No history is recorded.
func FromString(text string, flags Flags) *Document {
	d := New(flags)
	d.setText(text)
	return d
}

func (d *Document) setText(text string) {
	text = normalizeNewlines(text)
	if d.flags.Has(SingleLine) {
		text = strings.ReplaceAll(text, "\n", " ")
	}
	for _, l := range d.lines {
		l.release(d.pool)
	}
	parts := strings.Split(text, "\n")
	d.lines = make([]*Line, len(parts))
	for i, p := range parts {
		d.lines[i] = newLine(d.pool, p)
	}
	d.cursors = []Cursor{{}}
	d.main = 0
	d.version++
}

// Close returns every line buffer to the pool. The document must not be used
// afterwards.
func (d *Document) Close() {
	for _, l := range d.lines {
		l.release(d.pool)
	}
	d.lines = nil
	d.listeners = nil
}

// Flags returns the document's flags.
func (d *Document) Flags() Flags { return d.flags }

// Version increases on every mutation.
func (d *Document) Version() uint64 { return d.version }

// Dirty reports unsaved changes.
func (d *Document) Dirty() bool { return d.dirty }

// Path returns the backing file path, possibly empty.
func (d *Document) Path() string { return d.path }

// PathKind reports how Path relates to the file system.
func (d *Document) PathKind() PathKind { return d.pathKind }

// SetTentativePath names an unsaved document.
func (d *Document) SetTentativePath(path string) {
	d.path = path
	d.pathKind = PathTentative
}

// LineEnding returns the ending used on save.
func (d *Document) LineEnding() LineEnding { return d.lineEnding }

// SetLineEnding changes the ending used on save.
func (d *Document) SetLineEnding(e LineEnding) { d.lineEnding = e }

// TabWidth returns the width used for visual columns.
func (d *Document) TabWidth() int { return d.tabWidth }

// SetTabWidth sets the width used for visual columns.
func (d *Document) SetTabWidth(w int) {
	if w < 1 {
		w = 1
	}
	d.tabWidth = w
}

// SetClock replaces the time source used for history coalescing.
func (d *Document) SetClock(now func() time.Time) { d.now = now }

// AddListener registers l for change notifications.
func (d *Document) AddListener(l ChangeListener) {
	d.listeners = append(d.listeners, l)
}

// RemoveListener unregisters l.
func (d *Document) RemoveListener(l ChangeListener) {
	for i, x := range d.listeners {
		if x == l {
			d.listeners = append(d.listeners[:i], d.listeners[i+1:]...)
			return
		}
	}
}

// LineCount returns the number of rows (at least 1).
func (d *Document) LineCount() int { return len(d.lines) }

// Line returns row's text. Out-of-range rows yield "".
func (d *Document) Line(row int) string {
	if row < 0 || row >= len(d.lines) {
		return ""
	}
	return d.lines[row].String()
}

// LineStore returns the Line for row (clamped).
func (d *Document) LineStore(row int) *Line {
	return d.lines[d.clampRow(row)]
}

// LineLen returns row's length in bytes.
func (d *Document) LineLen(row int) int {
	if row < 0 || row >= len(d.lines) {
		return 0
	}
	return d.lines[row].Len()
}

// End returns the position after the last byte.
func (d *Document) End() Position {
	last := len(d.lines) - 1
	return Position{Col: d.lines[last].Len(), Row: last}
}

func (d *Document) clampRow(row int) int {
	if row < 0 {
		return 0
	}
	if row >= len(d.lines) {
		return len(d.lines) - 1
	}
	return row
}

// Clamp returns the nearest valid position on a grapheme boundary.
func (d *Document) Clamp(p Position) Position {
	p.Row = d.clampRow(p.Row)
	line := d.lines[p.Row].String()
	p.Col = grapheme.Floor(line, p.Col)
	return p
}

// TextRange returns the text in [start, end).
func (d *Document) TextRange(start, end Position) string {
	r := NewRange(d.Clamp(start), d.Clamp(end))
	if r.Start.Row == r.End.Row {
		return d.lines[r.Start.Row].String()[r.Start.Col:r.End.Col]
	}
	var b strings.Builder
	b.WriteString(d.lines[r.Start.Row].String()[r.Start.Col:])
	for row := r.Start.Row + 1; row < r.End.Row; row++ {
		b.WriteByte('\n')
		b.WriteString(d.lines[row].String())
	}
	b.WriteByte('\n')
	b.WriteString(d.lines[r.End.Row].String()[:r.End.Col])
	return b.String()
}

// String joins all rows with "\n".
func (d *Document) String() string {
	var b strings.Builder
	for i, l := range d.lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(l.String())
	}
	return b.String()
}

// Lines returns a copy of every row's text.
func (d *Document) Lines() []string {
	out := make([]string, len(d.lines))
	for i, l := range d.lines {
		out[i] = l.String()
	}
	return out
}

// VisualColumn returns the visual column of p.
func (d *Document) VisualColumn(p Position) int {
	p = d.Clamp(p)
	return grapheme.ColumnToVisual(d.lines[p.Row].String(), p.Col, d.tabWidth)
}

func normalizeNewlines(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "")
}

// endOf returns where text ends if inserted at start.
func endOf(start Position, text string) Position {
	nl := strings.Count(text, "\n")
	if nl == 0 {
		return Position{Col: start.Col + len(text), Row: start.Row}
	}
	return Position{Col: len(text) - strings.LastIndexByte(text, '\n') - 1, Row: start.Row + nl}
}

// Insert places text at pos and returns the position just after it.
// SINGLE_LINE documents get spaces in place of newlines.
func (d *Document) Insert(pos Position, text string) Position {
	d.beginEdit()
	defer d.endEdit()
	return d.insert(pos, text)
}

// Delete removes [start, end) and returns the removed text.
func (d *Document) Delete(start, end Position) string {
	d.beginEdit()
	defer d.endEdit()
	return d.delete(start, end)
}

func (d *Document) insert(pos Position, text string) Position {
	pos = d.Clamp(pos)
	text = normalizeNewlines(text)
	if d.flags.Has(SingleLine) {
		text = strings.ReplaceAll(text, "\n", " ")
	}
	if text == "" {
		return pos
	}

	parts := strings.Split(text, "\n")
	first := d.lines[pos.Row]
	if len(parts) == 1 {
		first.insertBytes(pos.Col, text)
	} else {
		tail := first.removeBytes(pos.Col, first.Len())
		first.insertBytes(pos.Col, parts[0])
		fresh := make([]*Line, 0, len(parts)-1)
		for _, p := range parts[1 : len(parts)-1] {
			fresh = append(fresh, newLine(d.pool, p))
		}
		fresh = append(fresh, newLine(d.pool, parts[len(parts)-1]+tail))
		d.lines = append(d.lines[:pos.Row+1], append(fresh, d.lines[pos.Row+1:]...)...)
	}

	end := endOf(pos, text)
	d.shiftPositions(func(p Position) Position { return adjustForInsert(p, pos, end) })
	d.record(timedAction{kind: actInsert, start: pos, end: end})
	d.changed(Change{Start: pos, End: pos, Text: text})
	return end
}

func (d *Document) delete(start, end Position) string {
	r := NewRange(d.Clamp(start), d.Clamp(end))
	if r.IsEmpty() {
		return ""
	}
	removed := d.TextRange(r.Start, r.End)

	first := d.lines[r.Start.Row]
	if r.Start.Row == r.End.Row {
		first.removeBytes(r.Start.Col, r.End.Col)
	} else {
		last := d.lines[r.End.Row]
		tail := last.String()[r.End.Col:]
		first.removeBytes(r.Start.Col, first.Len())
		first.insertBytes(r.Start.Col, tail)
		for _, l := range d.lines[r.Start.Row+1 : r.End.Row+1] {
			l.release(d.pool)
		}
		d.lines = append(d.lines[:r.Start.Row+1], d.lines[r.End.Row+1:]...)
	}

	d.shiftPositions(func(p Position) Position { return adjustForDelete(p, r.Start, r.End) })
	d.recordDelete(r.Start, removed)
	d.changed(Change{Start: r.Start, End: r.End, Removed: removed})
	return removed
}

func (d *Document) changed(c Change) {
	d.version++
	d.dirty = true
	c.Version = d.version
	for _, l := range d.listeners {
		l.DocumentChanged(d, c)
	}
}
