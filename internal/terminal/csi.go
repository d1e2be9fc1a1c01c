package terminal

import "github.com/zjrosen/scribe/internal/log"

const eraseAll = 1 << 30

func (e *Emulator) csiDispatch(c csiSeq) {
	s := e.active
	n := c.param(0, 1)

	if c.private == '?' {
		switch c.final {
		case 'h':
			e.setPrivateMode(c.params, true)
		case 'l':
			e.setPrivateMode(c.params, false)
		default:
			log.Debug(log.CatTerm, "dropped private CSI", "final", string(c.final))
		}
		return
	}
	if c.private != 0 || c.inter != 0 {
		log.Debug(log.CatTerm, "dropped CSI", "final", string(c.final), "private", string(c.private), "inter", string(c.inter))
		return
	}

	// Attribute changes and reports keep a pending wrap.
	switch c.final {
	case 'm', 'n', 'c', 's':
	default:
		e.wrapPending = false
	}
	switch c.final {
	case 'A':
		e.cursorUp(n)
	case 'B', 'e':
		e.cursorDown(n)
	case 'C', 'a':
		e.col = min(e.col+n, s.cols-1)
	case 'D':
		e.col = max(e.col-n, 0)
	case 'E':
		e.cursorDown(n)
		e.col = 0
	case 'F':
		e.cursorUp(n)
		e.col = 0
	case 'G', '`':
		e.col = clampInt(n-1, 0, s.cols-1)
	case 'd':
		e.row = clampInt(n-1, 0, s.rows-1)
	case 'H', 'f':
		e.row = clampInt(c.param(0, 1)-1, 0, s.rows-1)
		e.col = clampInt(c.param(1, 1)-1, 0, s.cols-1)
	case 'I':
		for i := 0; i < n; i++ {
			e.col = min((e.col/tabStop+1)*tabStop, s.cols-1)
		}
	case 'Z':
		for i := 0; i < n && e.col > 0; i++ {
			e.col = (e.col - 1) / tabStop * tabStop
		}
	case 'J':
		e.eraseDisplay(c.param(0, 0))
	case 'K':
		e.eraseLine(c.param(0, 0))
	case '@':
		s.insertCells(e.row, e.col, n, e.style)
	case 'P':
		s.deleteCells(e.row, e.col, n)
	case 'X':
		s.erase(e.row, e.col, e.col+n, e.style)
	case 'L':
		if e.row >= s.top && e.row <= s.bottom {
			s.insertRows(e.row, n)
			e.col = 0
		}
	case 'M':
		if e.row >= s.top && e.row <= s.bottom {
			s.deleteRows(e.row, n)
			e.col = 0
		}
	case 'S':
		s.scrollUp(n)
	case 'T':
		s.scrollDown(n)
	case 'b':
		if e.last != "" {
			for i := 0; i < n; i++ {
				e.printGrapheme(e.last)
			}
		}
	case 'r':
		top := c.param(0, 1) - 1
		bottom := min(c.param(1, s.rows), s.rows) - 1
		if top < bottom {
			s.top, s.bottom = top, bottom
			e.row, e.col = 0, 0
		}
	case 'm':
		e.style.applySGR(c.params)
	case 's':
		e.saveCursor()
	case 'u':
		e.restoreCursor()
	case 'n':
		switch c.param(0, 0) {
		case 5:
			e.respond("\x1b[0n")
		case 6:
			e.reportCursor()
		}
	case 'c':
		if c.param(0, 0) == 0 {
			e.respond("\x1b[?1;2c")
		}
	default:
		log.Debug(log.CatTerm, "dropped CSI", "final", string(c.final))
	}
}

func (e *Emulator) cursorUp(n int) {
	top := 0
	if e.row >= e.active.top {
		top = e.active.top
	}
	e.row = max(e.row-n, top)
}

func (e *Emulator) cursorDown(n int) {
	bottom := e.active.rows - 1
	if e.row <= e.active.bottom {
		bottom = e.active.bottom
	}
	e.row = min(e.row+n, bottom)
}

func (e *Emulator) eraseDisplay(mode int) {
	s := e.active
	switch mode {
	case 0:
		s.erase(e.row, e.col, eraseAll, e.style)
		for r := e.row + 1; r < s.rows; r++ {
			s.clearRow(r)
		}
	case 1:
		for r := 0; r < e.row; r++ {
			s.clearRow(r)
		}
		s.erase(e.row, 0, e.col+1, e.style)
	case 2:
		for r := 0; r < s.rows; r++ {
			s.clearRow(r)
		}
	case 3:
		s.clearScrollback()
	}
}

func (e *Emulator) eraseLine(mode int) {
	s := e.active
	switch mode {
	case 0:
		s.erase(e.row, e.col, eraseAll, e.style)
	case 1:
		s.erase(e.row, 0, e.col+1, e.style)
	case 2:
		s.erase(e.row, 0, eraseAll, e.style)
	}
}
