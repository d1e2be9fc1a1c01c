// Package terminal emulates a VT/xterm-style terminal on top of
// terminal-flagged documents and drives a child process through a PTY.
package terminal

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/zjrosen/scribe/internal/document"
	"github.com/zjrosen/scribe/internal/grapheme"
	"github.com/zjrosen/scribe/internal/log"
)

const (
	// DefaultScrollback is the number of rows kept above the screen.
	DefaultScrollback = 10000
	tabStop           = 8
)

// Process is the child program on the other end of the terminal.
type Process interface {
	// Output drains the bytes the process wrote since the last call.
	Output() []byte
	Write(p []byte) (int, error)
	Resize(cols, rows int) error
}

// Option configures an Emulator.
type Option func(*Emulator)

// WithScrollback sets how many rows scroll off the normal screen before they
// are dropped.
func WithScrollback(n int) Option {
	return func(e *Emulator) { e.scrollback = n }
}

// WithProcess attaches the child process.
func WithProcess(p Process) Option {
	return func(e *Emulator) { e.proc = p }
}

// WithPool shares a line buffer pool with other documents.
func WithPool(p *document.Pool) Option {
	return func(e *Emulator) { e.pool = p }
}

// Emulator interprets terminal output into a normal and an alternate screen.
// It is not safe for concurrent use; the process reader only fills the
// process's own buffer.
type Emulator struct {
	normal *Screen
	alt    *Screen
	active *Screen
	parser *Parser
	proc   Process
	pool   *document.Pool

	scrollback int

	row, col    int
	wrapPending bool
	style       Style
	last        string

	cursorVisible  bool
	autowrap       bool
	appCursor      bool
	bracketedPaste bool

	title string
	bell  bool
}

// New creates a cols×rows terminal.
func New(cols, rows int, opts ...Option) *Emulator {
	e := &Emulator{scrollback: DefaultScrollback}
	for _, o := range opts {
		o(e)
	}
	if e.pool == nil {
		e.pool = document.NewPool()
	}
	cols, rows = max(cols, 1), max(rows, 1)
	e.normal = newScreen(cols, rows, e.scrollback, e.pool)
	e.alt = newScreen(cols, rows, 0, e.pool)
	e.active = e.normal
	e.parser = newParser(e)
	e.resetModes()
	return e
}

func (e *Emulator) resetModes() {
	e.cursorVisible = true
	e.autowrap = true
	e.appCursor = false
	e.bracketedPaste = false
}

// Screen returns the screen being displayed.
func (e *Emulator) Screen() *Screen { return e.active }

// Document returns the document of the screen being displayed.
func (e *Emulator) Document() *document.Document { return e.active.doc }

// AlternateActive reports whether a full-screen program switched to the
// alternate buffer.
func (e *Emulator) AlternateActive() bool { return e.active == e.alt }

// Cursor returns the grid cursor as (col, row) on the screen.
func (e *Emulator) Cursor() (col, row int) { return e.col, e.row }

// CursorVisible reports DECTCEM.
func (e *Emulator) CursorVisible() bool { return e.cursorVisible }

// Style returns the rendition applied to new text.
func (e *Emulator) Style() Style { return e.style }

// Title returns the last title set with OSC 0 or 2.
func (e *Emulator) Title() string { return e.title }

// TakeBell reports and clears a pending BEL.
func (e *Emulator) TakeBell() bool {
	b := e.bell
	e.bell = false
	return b
}

// Size returns the grid size.
func (e *Emulator) Size() (cols, rows int) { return e.active.cols, e.active.rows }

// Parser exposes the parser state, mostly for diagnostics.
func (e *Emulator) Parser() *Parser { return e.parser }

// Update drains the attached process and reports whether anything changed.
func (e *Emulator) Update() bool {
	if e.proc == nil {
		return false
	}
	out := e.proc.Output()
	if len(out) == 0 {
		return false
	}
	e.Feed(out)
	return true
}

// Feed interprets data and mirrors the result into the documents.
func (e *Emulator) Feed(data []byte) {
	e.parser.Feed(data)
	e.normal.flush()
	e.alt.flush()
	e.syncCursor()
}

func (e *Emulator) syncCursor() {
	s := e.active
	r := s.Base() + e.row
	p := document.Pos(s.byteColumn(r, e.col), r)
	s.doc.SetCursors([]document.Cursor{{Position: p}}, 0)
}

// Resize changes the grid size of both screens and informs the process.
func (e *Emulator) Resize(cols, rows int) {
	cols, rows = max(cols, 1), max(rows, 1)
	if cols == e.active.cols && rows == e.active.rows {
		return
	}
	for _, s := range []*Screen{e.normal, e.alt} {
		cursor := s.saved.row
		if s == e.active {
			cursor = e.row
		}
		shift := s.resize(cols, rows, cursor)
		if s == e.active {
			e.row -= shift
		}
		s.flush()
	}
	e.row = clampInt(e.row, 0, rows-1)
	e.col = clampInt(e.col, 0, cols-1)
	e.wrapPending = false
	if e.proc != nil {
		if err := e.proc.Resize(cols, rows); err != nil {
			log.ErrorErr(log.CatTerm, "resize failed", err, "cols", cols, "rows", rows)
		}
	}
	e.syncCursor()
}

func (e *Emulator) respond(s string) {
	if e.proc == nil {
		return
	}
	if _, err := e.proc.Write([]byte(s)); err != nil {
		log.ErrorErr(log.CatTerm, "writing response failed", err)
	}
}

func cellWidth(g string) int {
	return runewidth.StringWidth(g)
}

func (e *Emulator) print(text string) {
	it := grapheme.NewIterator(text)
	for it.Next() {
		e.printGrapheme(it.Cluster())
	}
}

func (e *Emulator) printGrapheme(g string) {
	s := e.active
	w := cellWidth(g)
	if w == 0 {
		col := e.col
		if e.wrapPending {
			col++
		}
		s.appendToCell(e.row, col, g)
		return
	}
	w = min(w, 2)
	if e.wrapPending || e.col+w > s.cols {
		if e.autowrap {
			e.col = 0
			e.lineFeed()
		} else {
			e.col = max(s.cols-w, 0)
		}
	}
	e.wrapPending = false
	if w > s.cols {
		return
	}
	s.put(e.row, e.col, g, w, e.style)
	e.last = g
	e.col += w
	if e.col >= s.cols {
		e.col = s.cols - 1
		e.wrapPending = e.autowrap
	}
}

func (e *Emulator) execute(b byte) {
	switch b {
	case 0x07:
		e.bell = true
	case '\b':
		if e.col > 0 {
			e.col--
		}
		e.wrapPending = false
	case '\t':
		e.col = min((e.col/tabStop+1)*tabStop, e.active.cols-1)
		e.wrapPending = false
	case '\n', 0x0b, 0x0c:
		e.lineFeed()
	case '\r':
		e.col = 0
		e.wrapPending = false
	}
}

// lineFeed moves down a row, scrolling when the cursor is on the bottom
// margin.
func (e *Emulator) lineFeed() {
	s := e.active
	e.wrapPending = false
	switch {
	case e.row == s.bottom:
		s.scrollUp(1)
	case e.row < s.rows-1:
		e.row++
	}
}

func (e *Emulator) reverseIndex() {
	s := e.active
	e.wrapPending = false
	switch {
	case e.row == s.top:
		s.scrollDown(1)
	case e.row > 0:
		e.row--
	}
}

func (e *Emulator) saveCursor() {
	e.active.saved = savedCursor{row: e.row, col: e.col, style: e.style, valid: true}
}

func (e *Emulator) restoreCursor() {
	sc := e.active.saved
	if !sc.valid {
		e.row, e.col, e.style = 0, 0, Style{}
	} else {
		e.row = clampInt(sc.row, 0, e.active.rows-1)
		e.col = clampInt(sc.col, 0, e.active.cols-1)
		e.style = sc.style
	}
	e.wrapPending = false
}

func (e *Emulator) escDispatch(inter, final byte) {
	if inter != 0 {
		// Character set designation and DEC line attributes.
		return
	}
	switch final {
	case '7':
		e.saveCursor()
	case '8':
		e.restoreCursor()
	case 'D':
		e.lineFeed()
	case 'E':
		e.col = 0
		e.lineFeed()
	case 'M':
		e.reverseIndex()
	case 'c':
		e.fullReset()
	case '=', '>':
	default:
		log.Debug(log.CatTerm, "dropped escape sequence", "final", string(final))
	}
}

func (e *Emulator) fullReset() {
	e.normal.reset()
	e.alt.reset()
	e.active = e.normal
	e.row, e.col = 0, 0
	e.wrapPending = false
	e.style = Style{}
	e.title = ""
	e.resetModes()
}

func (e *Emulator) oscDispatch(data string) {
	code, rest, _ := strings.Cut(data, ";")
	switch code {
	case "0", "2":
		e.title = rest
	default:
		log.Debug(log.CatTerm, "ignored OSC", "code", code)
	}
}

// switchScreen selects the alternate or normal buffer.
func (e *Emulator) switchScreen(alternate, clear bool) {
	target := e.normal
	if alternate {
		target = e.alt
	}
	if clear && alternate {
		e.alt.reset()
	}
	e.active = target
	e.wrapPending = false
}

func (e *Emulator) setPrivateMode(params []int, on bool) {
	for _, p := range params {
		switch p {
		case 1:
			e.appCursor = on
		case 7:
			e.autowrap = on
		case 25:
			e.cursorVisible = on
		case 47:
			e.switchScreen(on, false)
		case 1047:
			if !on {
				e.alt.reset()
			}
			e.switchScreen(on, false)
		case 1048:
			if on {
				e.saveCursor()
			} else {
				e.restoreCursor()
			}
		case 1049:
			if on {
				if e.active != e.alt {
					e.saveCursor()
					e.switchScreen(true, true)
				}
			} else if e.active == e.alt {
				e.switchScreen(false, false)
				e.restoreCursor()
			}
		case 2004:
			e.bracketedPaste = on
		default:
			log.Debug(log.CatTerm, "ignored private mode", "mode", p, "on", on)
		}
	}
}

func (e *Emulator) reportCursor() {
	e.respond(fmt.Sprintf("\x1b[%d;%dR", e.row+1, e.col+1))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
