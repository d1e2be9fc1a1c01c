package lsp

import (
	"unicode/utf16"
	"unicode/utf8"

	"github.com/zjrosen/scribe/internal/document"
)

// Encoding is the unit language-server character offsets are counted in.
type Encoding string

const (
	UTF8  Encoding = "utf-8"
	UTF16 Encoding = "utf-16"
	UTF32 Encoding = "utf-32"
)

// units returns how many code units r takes in e.
func (e Encoding) units(r rune) int {
	switch e {
	case UTF8:
		return utf8.RuneLen(r)
	case UTF32:
		return 1
	default:
		if utf16.IsSurrogate(r) || r > 0xffff {
			return 2
		}
		return 1
	}
}

// Encode converts a byte column of line to a character offset.
func (e Encoding) Encode(line string, byteCol int) int {
	byteCol = min(max(byteCol, 0), len(line))
	if e == UTF8 {
		return byteCol
	}
	n := 0
	for _, r := range line[:byteCol] {
		n += e.units(r)
	}
	return n
}

// EncodeString returns the length of s in e.
func (e Encoding) EncodeString(s string) int { return e.Encode(s, len(s)) }

// Decode converts a character offset into a byte column of line. Offsets
// inside a rune or past the end are clamped.
func (e Encoding) Decode(line string, char int) int {
	if char <= 0 {
		return 0
	}
	n := 0
	for i, r := range line {
		u := e.units(r)
		if n+u > char {
			return i
		}
		n += u
	}
	return len(line)
}

// ToLSP converts a document position.
func (e Encoding) ToLSP(d *document.Document, p document.Position) Position {
	p = d.Clamp(p)
	return Position{Line: p.Row, Character: e.Encode(d.Line(p.Row), p.Col)}
}

// FromLSP converts a server position into a clamped document position.
func (e Encoding) FromLSP(d *document.Document, p Position) document.Position {
	row := min(max(p.Line, 0), d.LineCount()-1)
	if p.Line >= d.LineCount() {
		return d.End()
	}
	return d.Clamp(document.Pos(e.Decode(d.Line(row), p.Character), row))
}
