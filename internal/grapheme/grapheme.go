// Package grapheme converts between the three units the editor deals in:
// bytes (storage), extended grapheme clusters (user motion) and visual cells
// (layout).
//
// Every function takes a single line without its trailing newline. Byte
// offsets passed in are clamped to the line; none of these functions panic.
package grapheme

import (
	"unicode"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// Category classifies a grapheme for word-wise motion and double-click
// selection.
type Category int

const (
	Identifier Category = iota
	Symbol
	Space
	Newline
)

func (c Category) String() string {
	switch c {
	case Identifier:
		return "identifier"
	case Symbol:
		return "symbol"
	case Space:
		return "space"
	case Newline:
		return "newline"
	default:
		return "unknown"
	}
}

// CategoryOf classifies g: "\n" is Newline, all-whitespace is Space, "_" or
// all-alphanumeric is Identifier, anything else is Symbol.
func CategoryOf(g string) Category {
	if g == "\n" || g == "\r\n" {
		return Newline
	}
	if g == "" {
		return Space
	}
	allSpace, allWord := true, true
	for _, r := range g {
		if !unicode.IsSpace(r) {
			allSpace = false
		}
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.Is(unicode.Mn, r) {
			allWord = false
		}
	}
	switch {
	case allSpace:
		return Space
	case allWord:
		return Identifier
	default:
		return Symbol
	}
}

// clamp keeps i within [0, len(line)].
func clamp(line string, i int) int {
	if i < 0 {
		return 0
	}
	if i > len(line) {
		return len(line)
	}
	return i
}

// IsBoundary reports whether byteIndex starts a grapheme cluster (or is the
// end of the line).
func IsBoundary(line string, byteIndex int) bool {
	if byteIndex < 0 || byteIndex > len(line) {
		return false
	}
	if byteIndex == 0 || byteIndex == len(line) {
		return true
	}
	pos := 0
	state := -1
	rest := line
	for len(rest) > 0 && pos < byteIndex {
		var cluster string
		cluster, rest, _, state = uniseg.StepString(rest, state)
		pos += len(cluster)
	}
	return pos == byteIndex
}

// At returns the extended grapheme cluster starting at byteIndex. ok is false
// when byteIndex is not a boundary or is the end of the line.
func At(line string, byteIndex int) (cluster string, ok bool) {
	if byteIndex < 0 || byteIndex >= len(line) || !IsBoundary(line, byteIndex) {
		return "", false
	}
	cluster, _, _, _ = uniseg.StepString(line[byteIndex:], -1)
	return cluster, true
}

// Next returns the byte index of the boundary after byteIndex.
// ok is false at the end of the line.
func Next(line string, byteIndex int) (int, bool) {
	byteIndex = clamp(line, byteIndex)
	if byteIndex >= len(line) {
		return len(line), false
	}
	pos := 0
	state := -1
	rest := line
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.StepString(rest, state)
		pos += len(cluster)
		if pos > byteIndex {
			return pos, true
		}
	}
	return len(line), false
}

// Previous returns the byte index of the boundary before byteIndex.
// ok is false at the start of the line.
func Previous(line string, byteIndex int) (int, bool) {
	byteIndex = clamp(line, byteIndex)
	if byteIndex == 0 {
		return 0, false
	}
	prev := 0
	pos := 0
	state := -1
	rest := line
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.StepString(rest, state)
		if pos+len(cluster) >= byteIndex {
			return pos, true
		}
		pos += len(cluster)
		prev = pos
	}
	return prev, true
}

// Floor snaps byteIndex down to the nearest boundary.
func Floor(line string, byteIndex int) int {
	byteIndex = clamp(line, byteIndex)
	if IsBoundary(line, byteIndex) {
		return byteIndex
	}
	p, _ := Previous(line, byteIndex)
	return p
}

// Count returns the number of grapheme clusters in s.
func Count(s string) int {
	return uniseg.GraphemeClusterCount(s)
}

// ByteOffset converts a grapheme index into a byte offset, clamped to len(s).
func ByteOffset(s string, graphemeIndex int) int {
	if graphemeIndex <= 0 {
		return 0
	}
	idx := 0
	pos := 0
	state := -1
	rest := s
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.StepString(rest, state)
		pos += len(cluster)
		idx++
		if idx == graphemeIndex {
			return pos
		}
	}
	return len(s)
}

// Index converts a byte offset into the index of the grapheme containing it.
func Index(s string, byteOffset int) int {
	if byteOffset <= 0 {
		return 0
	}
	idx := 0
	pos := 0
	state := -1
	rest := s
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.StepString(rest, state)
		if byteOffset < pos+len(cluster) {
			return idx
		}
		pos += len(cluster)
		idx++
	}
	return idx
}

// VisualWidth returns the number of cells g occupies when drawn at visual
// column column. A tab advances to the next multiple of tabWidth.
func VisualWidth(g string, column, tabWidth int) int {
	if g == "\t" {
		if tabWidth <= 0 {
			tabWidth = 1
		}
		return tabWidth - column%tabWidth
	}
	if g == "" {
		return 0
	}
	w := runewidth.StringWidth(g)
	if w == 0 {
		// Control characters and lone combining marks still take a cell so
		// the cursor never disappears.
		w = 1
	}
	return w
}

// ColumnToVisual returns the visual column at which byteCol starts.
func ColumnToVisual(line string, byteCol, tabWidth int) int {
	byteCol = clamp(line, byteCol)
	visual := 0
	pos := 0
	state := -1
	rest := line
	for len(rest) > 0 && pos < byteCol {
		var cluster string
		cluster, rest, _, state = uniseg.StepString(rest, state)
		visual += VisualWidth(cluster, visual, tabWidth)
		pos += len(cluster)
	}
	return visual
}

// VisualToColumn returns the byte column whose grapheme covers visualX,
// rounding to the nearer edge. Positions past the end map to len(line).
func VisualToColumn(line string, visualX, tabWidth int) int {
	if visualX <= 0 {
		return 0
	}
	visual := 0
	pos := 0
	state := -1
	rest := line
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.StepString(rest, state)
		w := VisualWidth(cluster, visual, tabWidth)
		if visualX < visual+w {
			if visualX-visual > w/2 {
				return pos + len(cluster)
			}
			return pos
		}
		visual += w
		pos += len(cluster)
	}
	return len(line)
}

// Width returns the visual width of the whole line.
func Width(line string, tabWidth int) int {
	return ColumnToVisual(line, len(line), tabWidth)
}

// Iterator walks the clusters of a string front to back.
//
//	it := grapheme.NewIterator(line)
//	for it.Next() {
//		use(it.Cluster(), it.Offset())
//	}
type Iterator struct {
	rest    string
	state   int
	cluster string
	offset  int
	next    int
}

// NewIterator starts an iterator over s.
func NewIterator(s string) *Iterator {
	return &Iterator{rest: s, state: -1}
}

// Next advances to the next cluster.
func (it *Iterator) Next() bool {
	if len(it.rest) == 0 {
		return false
	}
	it.offset = it.next
	it.cluster, it.rest, _, it.state = uniseg.StepString(it.rest, it.state)
	it.next += len(it.cluster)
	return true
}

// Cluster returns the current cluster.
func (it *Iterator) Cluster() string { return it.cluster }

// Offset returns the byte offset of the current cluster.
func (it *Iterator) Offset() int { return it.offset }

// End returns the byte offset just past the current cluster.
func (it *Iterator) End() int { return it.next }
