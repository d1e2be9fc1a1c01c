package document

import (
	"strings"
	"sync"
	"unicode"

	"github.com/zjrosen/scribe/internal/grapheme"
)

const defaultLineCapacity = 64

// Pool hands out cleared byte buffers for line storage and takes them back
// when lines are destroyed.
type Pool struct {
	pool sync.Pool
}

// NewPool creates an empty pool.
func NewPool() *Pool {
	p := &Pool{}
	p.pool.New = func() any {
		b := make([]byte, 0, defaultLineCapacity)
		return &b
	}
	return p
}

// Acquire returns an empty buffer.
func (p *Pool) Acquire() []byte {
	b := p.pool.Get().(*[]byte)
	return (*b)[:0]
}

// Release gives buf back to the pool. buf must not be used afterwards.
func (p *Pool) Release(buf []byte) {
	if buf == nil || cap(buf) > 64*1024 {
		return
	}
	buf = buf[:0]
	p.pool.Put(&buf)
}

// Line owns one row's UTF-8 bytes, without the newline.
type Line struct {
	buf       []byte
	text      string
	graphemes int
}

func newLine(pool *Pool, text string) *Line {
	l := &Line{buf: pool.Acquire()}
	l.buf = append(l.buf, text...)
	l.touch()
	return l
}

func (l *Line) touch() {
	l.text = string(l.buf)
	l.graphemes = grapheme.Count(l.text)
}

// String returns the line's text.
func (l *Line) String() string { return l.text }

// Len returns the length in bytes.
func (l *Line) Len() int { return len(l.buf) }

// GraphemeCount returns the cached cluster count.
func (l *Line) GraphemeCount() int { return l.graphemes }

func (l *Line) insertBytes(col int, text string) {
	if col < 0 {
		col = 0
	}
	if col > len(l.buf) {
		col = len(l.buf)
	}
	l.buf = append(l.buf, text...)
	copy(l.buf[col+len(text):], l.buf[col:len(l.buf)-len(text)])
	copy(l.buf[col:], text)
	l.touch()
}

func (l *Line) removeBytes(start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(l.buf) {
		end = len(l.buf)
	}
	if start >= end {
		return ""
	}
	removed := string(l.buf[start:end])
	l.buf = append(l.buf[:start], l.buf[end:]...)
	l.touch()
	return removed
}

// Insert places text before grapheme index g.
func (l *Line) Insert(g int, text string) {
	l.insertBytes(grapheme.ByteOffset(l.String(), g), text)
}

// RemoveRange deletes graphemes [start, end) and returns them.
func (l *Line) RemoveRange(start, end int) string {
	s := l.String()
	return l.removeBytes(grapheme.ByteOffset(s, start), grapheme.ByteOffset(s, end))
}

// Truncate drops everything from grapheme index g and returns the tail.
func (l *Line) Truncate(g int) string {
	return l.removeBytes(grapheme.ByteOffset(l.String(), g), len(l.buf))
}

// Slice returns graphemes [start, end).
func (l *Line) Slice(start, end int) string {
	s := l.String()
	if end < start {
		return ""
	}
	return s[grapheme.ByteOffset(s, start):grapheme.ByteOffset(s, end)]
}

// FirstNonWhitespaceColumn returns the byte column of the first
// non-whitespace character, or Len() for a blank line.
func (l *Line) FirstNonWhitespaceColumn() int {
	s := l.String()
	i := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsSpace(r) })
	if i < 0 {
		return len(s)
	}
	return i
}

// TrailingWhitespaceColumn returns the byte column where trailing
// whitespace starts, or Len() when there is none.
func (l *Line) TrailingWhitespaceColumn() int {
	s := l.String()
	return len(strings.TrimRightFunc(s, unicode.IsSpace))
}

func (l *Line) release(pool *Pool) {
	pool.Release(l.buf)
	l.buf = nil
	l.text = ""
	l.graphemes = 0
}
