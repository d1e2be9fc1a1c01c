package document

import "fmt"

// Position addresses a byte column inside a row.
type Position struct {
	Col int
	Row int
}

// Pos is shorthand for Position{Col: col, Row: row}.
func Pos(col, row int) Position {
	return Position{Col: col, Row: row}
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Col, p.Row)
}

// Compare orders positions row-major. It returns -1, 0 or 1.
func (p Position) Compare(o Position) int {
	switch {
	case p.Row < o.Row:
		return -1
	case p.Row > o.Row:
		return 1
	case p.Col < o.Col:
		return -1
	case p.Col > o.Col:
		return 1
	default:
		return 0
	}
}

// Less reports p < o.
func (p Position) Less(o Position) bool { return p.Compare(o) < 0 }

// Range is a half-open span [Start, End) with Start <= End.
type Range struct {
	Start Position
	End   Position
}

// NewRange orders a and b into a Range.
func NewRange(a, b Position) Range {
	if b.Less(a) {
		a, b = b, a
	}
	return Range{Start: a, End: b}
}

// IsEmpty reports whether the range covers nothing.
func (r Range) IsEmpty() bool { return r.Start == r.End }

// Contains reports Start <= p < End.
func (r Range) Contains(p Position) bool {
	return !p.Less(r.Start) && p.Less(r.End)
}

// Flags constrain what edits a document accepts.
type Flags uint8

const (
	// MultiLine is the normal source-file mode.
	MultiLine Flags = 1 << iota
	// SingleLine forbids newlines; inserted "\n" becomes a space.
	SingleLine
	// Terminal disables pair matching, multiple cursors and undo history.
	Terminal
)

// Has reports whether all bits of f2 are set.
func (f Flags) Has(f2 Flags) bool { return f&f2 == f2 }

// LineEnding is applied when a document is written out.
type LineEnding int

const (
	LF LineEnding = iota
	CRLF
)

func (e LineEnding) String() string {
	if e == CRLF {
		return "CRLF"
	}
	return "LF"
}

// Bytes returns the on-disk separator.
func (e LineEnding) Bytes() string {
	if e == CRLF {
		return "\r\n"
	}
	return "\n"
}

// PathKind tracks whether the document is backed by a file.
type PathKind int

const (
	// PathUnset means the document has never been named.
	PathUnset PathKind = iota
	// PathTentative means a path was chosen but nothing is on disk yet.
	PathTentative
	// PathOnDisk means the document was loaded from or saved to its path.
	PathOnDisk
)
