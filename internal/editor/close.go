package editor

import (
	"errors"
	"fmt"
	"slices"

	"github.com/zjrosen/scribe/internal/document"
	"github.com/zjrosen/scribe/internal/log"
	"github.com/zjrosen/scribe/internal/platform"
)

// Save writes buf. Trailing whitespace is trimmed and the language server
// formats the document first when configured; then runs after a successful
// write. An unnamed document asks for a path instead.
func (e *Editor) Save(buf *Buffer, then func()) {
	if buf.Doc.PathKind() == document.PathUnset {
		if id, ok := e.slotOf(buf); ok {
			e.openSaveAs(id)
		}
		return
	}
	e.saveAs(buf, "", then)
}

func (e *Editor) slotOf(buf *Buffer) (int, bool) {
	for id, b := range e.docs.All() {
		if b == buf {
			return id, true
		}
	}
	return 0, false
}

// saveAs reports whether the write waits on a formatting response.
func (e *Editor) saveAs(buf *Buffer, path string, then func()) bool {
	if e.cfg.TrimTrailingWhitespace {
		buf.Doc.TrimTrailingWhitespace()
	}
	write := func() { e.write(buf, path, then) }
	if e.cfg.FormatOnSave && e.format(buf, write) {
		return true
	}
	write()
	return false
}

func (e *Editor) write(buf *Buffer, path string, then func()) {
	old := buf.Doc.Path()
	if err := buf.Doc.Save(path); err != nil {
		log.ErrorErr(log.CatDoc, "save failed", err, "path", old)
		e.showError("Save failed", err.Error())
		return
	}
	if now := buf.Doc.Path(); now != old {
		e.detachServer(buf)
		e.unwatch(old)
		e.watch(now)
		e.setSyntax(buf, e.detect(buf.Doc))
		e.attachServer(buf)
	}
	e.didSave(buf)
	e.setStatus("saved %s", buf.Name())
	log.Info(log.CatDoc, "document saved", "path", buf.Doc.Path())
	if then != nil {
		then()
	}
}

// CloseTab closes the active tab of the focused pane.
func (e *Editor) CloseTab() {
	pane := e.layout.FocusedPane()
	if tab := pane.Current(); tab != nil {
		e.closeTab(pane, tab)
	}
}

// closeTab removes tab from pane, asking first when it holds the last
// reference to a document with unsaved changes.
func (e *Editor) closeTab(pane *Pane, tab *Tab) {
	buf, ok := e.docs.Get(tab.Doc)
	if !ok || e.docs.Refs(tab.Doc) > 1 || !buf.Doc.Dirty() {
		e.removeTab(pane, tab)
		return
	}
	e.confirmDiscard(tab.Doc, func(proceed bool) {
		if proceed {
			e.removeTab(pane, tab)
		}
	})
}

func (e *Editor) removeTab(pane *Pane, tab *Tab) {
	i := slices.Index(pane.Tabs, tab)
	if i < 0 {
		return
	}
	pane.Remove(i)
	e.release(tab.Doc)
}

// release drops one reference to slot id and tears the buffer down when it
// was the last.
func (e *Editor) release(id int) {
	buf, freed := e.docs.Release(id)
	if !freed {
		return
	}
	e.detachServer(buf)
	e.unwatch(buf.Doc.Path())
	e.history.Forget(id)
	e.setSyntax(buf, nil)
	buf.Doc.Close()
	log.Debug(log.CatEditor, "document closed", "slot", id)
}

// confirmDiscard asks whether to save slot id before it goes away. done
// receives whether the caller may proceed: after a successful save or when
// the user declines to save. Cancel, a failed save or an unnamed document
// (which opens the save-as prompt instead) stop the caller.
func (e *Editor) confirmDiscard(id int, done func(proceed bool)) {
	buf, ok := e.docs.Get(id)
	if !ok {
		done(true)
		return
	}
	if e.opts.Dialog == nil {
		e.setStatus("%s has unsaved changes", buf.Name())
		done(false)
		return
	}
	e.modal = true
	msg := fmt.Sprintf("Save changes to %s?", buf.Name())
	e.opts.Dialog.Confirm("Unsaved changes", msg, func(r platform.DialogResult) {
		e.modal = false
		log.Debug(log.CatEditor, "unsaved changes answered", "answer", r.String())
		switch r {
		case platform.Yes:
			if buf.Doc.PathKind() == document.PathUnset {
				e.openSaveAs(id)
				done(false)
				return
			}
			saved := false
			pending := e.saveAs(buf, "", func() {
				saved = true
				done(true)
			})
			if !saved && !pending {
				done(false)
			}
		case platform.No:
			done(true)
		default:
			done(false)
		}
	})
}

// confirmAll runs confirmDiscard over ids in order and calls then when
// every answer allowed it.
func (e *Editor) confirmAll(ids []int, then func()) {
	if len(ids) == 0 {
		then()
		return
	}
	e.confirmDiscard(ids[0], func(proceed bool) {
		if proceed {
			e.confirmAll(ids[1:], then)
		}
	})
}

// SplitPane opens a pane right of the focused one showing the same
// document.
func (e *Editor) SplitPane() {
	from := e.layout.FocusedPane().Current()
	id := e.layout.Split()
	e.termFocused = false
	if from == nil {
		return
	}
	e.docs.Retain(from.Doc)
	e.layout.Pane(id).Add(&Tab{Doc: from.Doc, Camera: from.Camera})
}

// ClosePane closes the focused pane and its tabs. The last pane stays.
func (e *Editor) ClosePane() {
	id := e.layout.Focused()
	if len(e.layout.Order()) == 1 {
		e.setStatus("cannot close the last pane")
		return
	}
	pane := e.layout.Pane(id)
	e.confirmAll(e.dirtyOnlyIn(pane.Tabs), func() {
		tabs, ok := e.layout.Close(id)
		if !ok {
			return
		}
		for _, tab := range tabs {
			e.release(tab.Doc)
		}
	})
}

// dirtyOnlyIn returns the unsaved documents that tabs hold every reference
// to.
func (e *Editor) dirtyOnlyIn(tabs []*Tab) []int {
	held := make(map[int]int)
	var order []int
	for _, tab := range tabs {
		if held[tab.Doc] == 0 {
			order = append(order, tab.Doc)
		}
		held[tab.Doc]++
	}
	var ids []int
	for _, id := range order {
		buf, ok := e.docs.Get(id)
		if ok && buf.Doc.Dirty() && e.docs.Refs(id) == held[id] {
			ids = append(ids, id)
		}
	}
	return ids
}

// Quit asks about every unsaved document and quits when none objects.
func (e *Editor) Quit() {
	var ids []int
	for id, buf := range e.docs.All() {
		if buf.Doc.Dirty() {
			ids = append(ids, id)
		}
	}
	e.confirmAll(ids, func() { e.quit = true })
}

// FileChanged reloads a clean buffer whose file changed on disk. Unsaved
// edits are never overwritten.
func (e *Editor) FileChanged(path string, removed bool) {
	id, ok := e.findPath(absPath(path))
	if !ok {
		return
	}
	buf, _ := e.docs.Get(id)
	if removed {
		e.setStatus("%s was removed from disk", buf.Name())
		return
	}
	err := buf.Doc.ReloadFile()
	switch {
	case errors.Is(err, document.ErrUnsaved):
		e.setStatus("%s changed on disk; keeping unsaved edits", buf.Name())
	case err != nil:
		log.ErrorErr(log.CatDoc, "reload failed", err, "path", path)
		e.setStatus("reload failed: %v", err)
	default:
		log.Debug(log.CatDoc, "reloaded from disk", "path", path)
	}
}
