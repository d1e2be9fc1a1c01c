package syntax

import (
	"strings"

	"github.com/zjrosen/scribe/internal/document"
	"github.com/zjrosen/scribe/internal/log"
)

// LineSource is the part of a document the highlighter reads.
type LineSource interface {
	LineCount() int
	Line(row int) string
	Version() uint64
}

type lineState struct {
	tokens  []Token
	openIn  int
	openOut int
	valid   bool
}

// Highlighter caches per-line tokens for one document. It is pull-based:
// rows are highlighted when asked for, and an edit only invalidates the rows
// it touched. Rows below an edit are re-highlighted when the range open at
// their start changed.
type Highlighter struct {
	syn     *Syntax
	src     LineSource
	lines   []lineState
	clean   int // rows before clean are up to date
	version uint64
}

// NewHighlighter creates a highlighter over src. Attach it to the document
// with AddListener so edits invalidate only what they touch.
func NewHighlighter(syn *Syntax, src LineSource) *Highlighter {
	h := &Highlighter{syn: syn, src: src}
	h.reset()
	return h
}

// Syntax returns the language in use.
func (h *Highlighter) Syntax() *Syntax { return h.syn }

// SetSyntax switches language and invalidates everything.
func (h *Highlighter) SetSyntax(syn *Syntax) {
	h.syn = syn
	h.reset()
}

func (h *Highlighter) reset() {
	h.lines = make([]lineState, h.src.LineCount())
	h.clean = 0
	h.version = h.src.Version()
}

// DocumentChanged implements document.ChangeListener.
func (h *Highlighter) DocumentChanged(_ *document.Document, c document.Change) {
	first := c.Start.Row
	removed := c.End.Row - c.Start.Row
	added := strings.Count(c.Text, "\n")
	if first >= len(h.lines) || h.version+1 != c.Version {
		h.reset()
		h.version = c.Version
		return
	}

	end := first + 1 + removed
	if end > len(h.lines) {
		end = len(h.lines)
	}
	fresh := make([]lineState, 1+added)
	h.lines = append(h.lines[:first], append(fresh, h.lines[end:]...)...)
	if first < h.clean {
		h.clean = first
	}
	h.version = c.Version
}

func (h *Highlighter) sync() {
	if h.version != h.src.Version() || len(h.lines) != h.src.LineCount() {
		log.Debug(log.CatSyntax, "highlighter out of sync, rebuilding", "version", h.src.Version())
		h.reset()
	}
}

// Line returns the tokens of row, highlighting any stale rows above it.
func (h *Highlighter) Line(row int) []Token {
	h.sync()
	if row < 0 || row >= len(h.lines) || h.syn == nil {
		return nil
	}
	for h.clean <= row {
		r := h.clean
		in := NoRange
		if r > 0 {
			in = h.lines[r-1].openOut
		}
		st := &h.lines[r]
		if !st.valid || st.openIn != in {
			st.tokens, st.openOut = h.syn.HighlightLine(h.src.Line(r), in)
			st.openIn = in
			st.valid = true
		}
		h.clean++
	}
	return h.lines[row].tokens
}

// OpenRangeAt returns the range open at the end of row.
func (h *Highlighter) OpenRangeAt(row int) int {
	if h.syn == nil || row < 0 || row >= h.src.LineCount() {
		return NoRange
	}
	h.Line(row)
	return h.lines[row].openOut
}
