package editor

import (
	"strings"

	"github.com/zjrosen/scribe/internal/action"
	"github.com/zjrosen/scribe/internal/document"
	"github.com/zjrosen/scribe/internal/log"
	"github.com/zjrosen/scribe/internal/syntax"
)

// wheelLines is how far one wheel notch scrolls.
const wheelLines = 3

// dispatch routes one action: global commands first, then the prompt, the
// focused terminal or the focused document.
func (e *Editor) dispatch(a action.Action) {
	if e.global(a) {
		return
	}
	switch {
	case e.prompt != nil:
		e.promptAction(a)
	case e.termFocused && e.term != nil:
		e.terminalAction(a)
	default:
		tab, buf := e.Focused()
		if tab == nil {
			return
		}
		if a.Kind != action.Hover {
			buf.Doc.SetHover("")
		}
		if !e.documentAction(buf.Doc, buf.Syntax, a) {
			e.bufferAction(tab, buf, a)
		}
	}
}

// global handles the commands that work regardless of focus.
func (e *Editor) global(a action.Action) bool {
	switch a.Kind {
	case action.Quit:
		e.Quit()
	case action.ToggleTerminal:
		e.toggleTerminal()
	case action.SplitPane:
		e.SplitPane()
	case action.ClosePane:
		e.ClosePane()
	case action.FocusNextPane:
		e.termFocused = false
		e.layout.FocusNext()
	case action.NewTab:
		e.closePrompt()
		e.termFocused = false
		e.NewDocument()
	case action.NextTab, action.PreviousTab:
		dir := 1
		if a.Kind == action.PreviousTab {
			dir = -1
		}
		e.layout.FocusedPane().Cycle(dir)
	case action.CloseTab:
		if e.termFocused {
			return false
		}
		e.CloseTab()
	case action.OpenAllFiles:
		e.openFilePicker()
	case action.OpenExplorer:
		e.openExplorer(e.explorerStart())
	case action.FindInFiles:
		e.openFindInFiles()
	case action.UndoCursor:
		e.stepCursorHistory(true)
	case action.RedoCursor:
		e.stepCursorHistory(false)
	default:
		return false
	}
	return true
}

func (e *Editor) typeGrapheme(g string) {
	switch {
	case e.prompt != nil:
		before := e.prompt.doc.String()
		e.prompt.doc.TypeText(g)
		e.promptEdited(before)
	case e.termFocused && e.term != nil:
		if err := e.term.emu.SendText(g); err != nil {
			log.ErrorErr(log.CatTerm, "send failed", err)
		}
	default:
		if _, buf := e.Focused(); buf != nil {
			buf.Doc.SetHover("")
			buf.Doc.TypeText(g)
		}
	}
}

// documentAction applies the actions that only need a document. The prompt
// line shares it with buffers. It reports whether a was handled.
func (e *Editor) documentAction(d *document.Document, syn *syntax.Syntax, a action.Action) bool {
	sel := a.Select
	switch a.Kind {
	case action.MoveLeft:
		d.MoveCursors(-1, 0, sel)
	case action.MoveRight:
		d.MoveCursors(1, 0, sel)
	case action.MoveUp:
		d.MoveCursors(0, -1, sel)
	case action.MoveDown:
		d.MoveCursors(0, 1, sel)
	case action.MoveWordLeft:
		d.MoveCursorsWord(-1, sel)
	case action.MoveWordRight:
		d.MoveCursorsWord(1, sel)
	case action.MoveHome:
		d.MoveCursorsHome(sel)
	case action.MoveEnd:
		d.MoveCursorsEnd(sel)
	case action.MoveToStart:
		d.MoveCursorsToStart(sel)
	case action.MoveToEnd:
		d.MoveCursorsToEnd(sel)
	case action.SelectAll:
		d.SelectAll()
	case action.AddCursorAbove:
		d.AddCursorAbove()
	case action.AddCursorBelow:
		d.AddCursorBelow()
	case action.AddCursorAtNextOccurrence:
		d.AddCursorAtNextOccurrence()
	case action.Enter:
		d.Newline(e.cfg.IndentUnit())
	case action.Indent:
		if hasSelection(d) {
			d.Indent(e.cfg.IndentUnit())
		} else {
			d.InsertAtCursors(e.cfg.IndentUnit())
		}
	case action.Unindent:
		d.Unindent(e.cfg.TabWidth)
	case action.DeleteBackward:
		d.DeleteBackward()
	case action.DeleteForward:
		d.DeleteForward()
	case action.DeleteWordBackward:
		d.DeleteWordBackward()
	case action.DeleteWordForward:
		d.DeleteWordForward()
	case action.DeleteLines:
		d.DeleteLines()
	case action.ToggleComments:
		if syn != nil {
			d.ToggleComments(syn.Comment)
		}
	case action.Copy:
		e.copy(d)
	case action.Cut:
		e.cut(d)
	case action.Paste:
		e.paste(d)
	case action.Undo:
		d.Undo()
	case action.Redo:
		d.Redo()
	default:
		return false
	}
	return true
}

// bufferAction handles the commands that need the tab or its buffer.
func (e *Editor) bufferAction(tab *Tab, buf *Buffer, a action.Action) {
	d := buf.Doc
	switch a.Kind {
	case action.PageUp, action.PageDown:
		rows := e.pageRows()
		if a.Kind == action.PageUp {
			rows = -rows
		}
		d.MoveCursors(0, rows, a.Select)
		tab.Camera.ScrollBy(0, float64(rows)*e.geo.lineH)
	case action.Escape:
		if !d.CollapseCursors() {
			d.SetHover("")
		}
	case action.Recenter:
		tab.Camera.Recenter()
	case action.Find:
		e.openFind(d)
	case action.FindNext, action.FindPrevious:
		needle := a.Text
		if needle == "" {
			needle = e.needle
		}
		e.findStep(d, needle, a.Kind == action.FindPrevious)
	case action.Save:
		e.Save(buf, nil)
	case action.SaveAs:
		e.openSaveAs(tab.Doc)
	case action.Hover:
		e.hover(buf)
	case action.Rename:
		if a.Text != "" {
			e.rename(buf, a.Text)
		} else {
			e.openRename(buf)
		}
	case action.Format:
		e.format(buf, nil)
	}
}

func hasSelection(d *document.Document) bool {
	for _, c := range d.Cursors() {
		if c.HasSelection() {
			return true
		}
	}
	return false
}

func (e *Editor) pageRows() int {
	if len(e.geo.panes) == 0 {
		return 1
	}
	return max(int(e.geo.panes[0].text.H/e.geo.lineH)-1, 1)
}

func (e *Editor) copy(d *document.Document) {
	texts := d.SelectionOrLines()
	if err := e.clip.Set(strings.Join(texts, "\n")); err != nil {
		log.ErrorErr(log.CatEditor, "clipboard write failed", err)
		e.setStatus("clipboard: %v", err)
		return
	}
	e.lastCopy = texts
}

func (e *Editor) cut(d *document.Document) {
	selected := hasSelection(d)
	e.copy(d)
	if selected {
		d.DeleteSelection()
	} else {
		d.DeleteLines()
	}
}

// paste inserts the clipboard. Text copied from as many cursors as there are
// now goes back one piece per cursor.
func (e *Editor) paste(d *document.Document) {
	text, err := e.clip.Get()
	if err != nil {
		log.ErrorErr(log.CatEditor, "clipboard read failed", err)
		e.setStatus("clipboard: %v", err)
		return
	}
	if text == "" {
		return
	}
	if n := len(e.lastCopy); n > 1 && n == d.CursorCount() && text == strings.Join(e.lastCopy, "\n") {
		d.InsertLinesAtCursors(e.lastCopy)
		return
	}
	d.InsertAtCursors(text)
}

// findStep selects the next match of needle after the main selection, or the
// previous one before it, wrapping.
func (e *Editor) findStep(d *document.Document, needle string, reverse bool) bool {
	if needle == "" {
		return false
	}
	e.needle = needle
	sel := d.MainCursor().Selection()
	from := sel.End
	if reverse {
		from = sel.Start
	}
	start, ok := d.Search(needle, from, reverse)
	if !ok {
		e.setStatus("%q not found", needle)
		return false
	}
	d.SetSelection(start, d.PositionAt(d.Offset(start)+len(needle)))
	return true
}
