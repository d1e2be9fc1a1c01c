package editor

import (
	"io"
	"math"

	"github.com/zjrosen/scribe/internal/action"
	"github.com/zjrosen/scribe/internal/camera"
	"github.com/zjrosen/scribe/internal/log"
	"github.com/zjrosen/scribe/internal/terminal"
)

// terminalPanel is the shell docked under the panes.
type terminalPanel struct {
	emu     *terminal.Emulator
	proc    terminal.Process
	visible bool
	camera  camera.Camera
}

// follow keeps the bottom row of the screen in view.
func (t *terminalPanel) follow(dt float64, g geometry) {
	s := t.emu.Screen()
	view := camera.Point{X: g.terminal.W, Y: math.Max(g.terminal.H-g.lineH, 0)}
	target := camera.Point{Y: float64(s.Base()+s.Rows()-1) * g.lineH}
	t.camera.SetMax(0, float64(s.Document().LineCount())*g.lineH-g.terminal.H)
	t.camera.Update(dt, target, view, camera.Point{})
}

// Terminal returns the panel's emulator, or nil when none is running.
func (e *Editor) Terminal() *terminal.Emulator {
	if e.term == nil {
		return nil
	}
	return e.term.emu
}

// TerminalFocused reports whether input goes to the terminal panel.
func (e *Editor) TerminalFocused() bool { return e.termFocused && e.term != nil }

// SendTerminalCtrl forwards a control chord the key bindings would otherwise
// claim, such as ctrl+c.
func (e *Editor) SendTerminalCtrl(r rune) {
	if !e.TerminalFocused() {
		return
	}
	if err := e.term.emu.SendCtrl(r); err != nil {
		log.ErrorErr(log.CatTerm, "send failed", err)
	}
}

// toggleTerminal starts the shell on first use, then cycles between
// focusing the panel and hiding it.
func (e *Editor) toggleTerminal() {
	switch {
	case e.term == nil:
		if !e.startTerminal() {
			return
		}
		e.term.visible, e.termFocused = true, true
	case e.term.visible && e.termFocused:
		e.term.visible, e.termFocused = false, false
	default:
		e.term.visible, e.termFocused = true, true
	}
}

func (e *Editor) terminalSize() (cols, rows int) {
	g := e.geo
	if g.width <= 0 {
		return 80, max(int(e.cfg.TerminalHeight), 1)
	}
	h := math.Min(e.cfg.TerminalHeight*g.lineH, (g.height-g.lineH)/2)
	return max(int(g.width/g.glyphW), 1), max(int(h/g.lineH), 1)
}

func (e *Editor) startTerminal() bool {
	if e.opts.Spawn == nil {
		e.setStatus("no shell configured")
		return false
	}
	cols, rows := e.terminalSize()
	proc, err := e.opts.Spawn(e.ctx, e.opts.Root, cols, rows)
	if err != nil {
		log.ErrorErr(log.CatTerm, "starting shell failed", err)
		e.showError("Cannot start terminal", err.Error())
		return false
	}
	emu := terminal.New(cols, rows,
		terminal.WithScrollback(e.cfg.Scrollback),
		terminal.WithProcess(proc),
		terminal.WithPool(e.pool))
	e.term = &terminalPanel{emu: emu, proc: proc}
	log.Info(log.CatTerm, "terminal started", "cols", cols, "rows", rows)
	return true
}

// updateTerminal feeds the shell's output to the emulator and keeps the
// grid sized to the panel. A shell that exited closes the panel.
func (e *Editor) updateTerminal() bool {
	t := e.term
	if t == nil {
		return false
	}
	changed := t.emu.Update()
	if t.visible && e.geo.terminal.W > 0 {
		t.emu.Resize(max(int(e.geo.terminal.W/e.geo.glyphW), 1), max(int(e.geo.terminal.H/e.geo.lineH), 1))
	}
	if t.emu.TakeBell() {
		changed = true
	}
	if p, ok := t.proc.(interface{ Done() <-chan struct{} }); ok {
		select {
		case <-p.Done():
			t.emu.Update()
			e.closeTerminal()
			e.setStatus("terminal exited")
			return true
		default:
		}
	}
	return changed
}

func (e *Editor) closeTerminal() {
	if e.term == nil {
		return
	}
	if c, ok := e.term.proc.(io.Closer); ok {
		if err := c.Close(); err != nil {
			log.Debug(log.CatTerm, "closing shell", "error", err)
		}
	}
	e.term = nil
	e.termFocused = false
}

var terminalKeys = map[action.Kind]terminal.Key{
	action.MoveLeft:       terminal.KeyLeft,
	action.MoveRight:      terminal.KeyRight,
	action.MoveUp:         terminal.KeyUp,
	action.MoveDown:       terminal.KeyDown,
	action.MoveHome:       terminal.KeyHome,
	action.MoveEnd:        terminal.KeyEnd,
	action.PageUp:         terminal.KeyPageUp,
	action.PageDown:       terminal.KeyPageDown,
	action.Enter:          terminal.KeyEnter,
	action.Indent:         terminal.KeyTab,
	action.DeleteBackward: terminal.KeyBackspace,
	action.DeleteForward:  terminal.KeyDelete,
	action.Escape:         terminal.KeyEscape,
}

// terminalAction translates an editor command into the keys a shell
// expects.
func (e *Editor) terminalAction(a action.Action) {
	t := e.term
	var err error
	if k, ok := terminalKeys[a.Kind]; ok {
		var mods terminal.Modifiers
		if a.Select {
			mods = terminal.ModShift
		}
		err = t.emu.SendKey(k, mods)
	} else {
		switch a.Kind {
		case action.Unindent:
			err = t.emu.SendKey(terminal.KeyTab, terminal.ModShift)
		case action.MoveWordLeft:
			err = t.emu.SendAlt("b")
		case action.MoveWordRight:
			err = t.emu.SendAlt("f")
		case action.DeleteWordBackward:
			err = t.emu.SendCtrl('w')
		case action.DeleteWordForward:
			err = t.emu.SendAlt("d")
		case action.MoveToStart:
			t.camera.ScrollTo(camera.Point{})
		case action.MoveToEnd:
			t.camera.ScrollTo(camera.Point{Y: t.camera.Y.Max})
		case action.Copy:
			e.copy(t.emu.Document())
		case action.Paste:
			var text string
			if text, err = e.clip.Get(); err == nil {
				err = t.emu.Paste(text)
			}
		case action.CloseTab:
			e.closeTerminal()
		}
	}
	if err != nil {
		log.ErrorErr(log.CatTerm, "terminal input failed", err, "action", a.Kind.String())
	}
}
