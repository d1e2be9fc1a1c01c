// Package editor drives the editing core. It owns the open documents, the
// panes and tabs viewing them, the terminal panel and the language servers,
// and turns one frame of input into document changes and draw commands.
package editor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/zjrosen/scribe/internal/config"
	"github.com/zjrosen/scribe/internal/cursorhistory"
	"github.com/zjrosen/scribe/internal/document"
	"github.com/zjrosen/scribe/internal/grapheme"
	"github.com/zjrosen/scribe/internal/log"
	"github.com/zjrosen/scribe/internal/lsp"
	"github.com/zjrosen/scribe/internal/platform"
	"github.com/zjrosen/scribe/internal/syntax"
	"github.com/zjrosen/scribe/internal/terminal"
)

// detectSample is how much of a file language detection looks at.
const detectSample = 4096

// Buffer is an open document with the language state attached to it.
type Buffer struct {
	Doc         *document.Document
	Syntax      *syntax.Syntax
	Highlighter *syntax.Highlighter

	measured     bool
	widthVersion uint64
	width        int
}

// Name is the label shown on tabs.
func (b *Buffer) Name() string {
	if p := b.Doc.Path(); p != "" {
		return filepath.Base(p)
	}
	return "untitled"
}

// Width returns the widest line in columns. It is cached per version.
func (b *Buffer) Width() int {
	if b.measured && b.widthVersion == b.Doc.Version() {
		return b.width
	}
	w := 0
	for row := range b.Doc.LineCount() {
		w = max(w, grapheme.Width(b.Doc.Line(row), b.Doc.TabWidth()))
	}
	b.width, b.widthVersion, b.measured = w, b.Doc.Version(), true
	return w
}

// Spawner starts the child process of the terminal panel.
type Spawner func(ctx context.Context, dir string, cols, rows int) (terminal.Process, error)

// ServerStarter starts a language server for a workspace.
type ServerStarter func(ctx context.Context, dir string, command []string) (lsp.Transport, error)

// FileWatcher is told which files are open so changes on disk come back
// through FileChanged.
type FileWatcher interface {
	Add(path string) error
	Remove(path string) error
}

// Metrics are the font measurements layout depends on.
type Metrics interface {
	GlyphWidth() float64
	LineHeight() float64
}

// Options wires the editor to its collaborators. Every field is optional.
type Options struct {
	// Root is the workspace directory; it defaults to the working directory.
	Root        string
	Dialog      platform.Dialog
	Spawn       Spawner
	StartServer ServerStarter
	Watcher     FileWatcher
	// Now is the clock used for search budgets.
	Now func() time.Time
}

// Editor is the editing core. It is single threaded: every method must be
// called from the frame loop.
type Editor struct {
	ctx      context.Context
	cfg      config.Config
	registry *syntax.Registry
	opts     Options
	now      func() time.Time

	pool    *document.Pool
	docs    SlotTable[*Buffer]
	layout  *Layout
	history *cursorhistory.History

	clip     platform.Clipboard
	lastCopy []string

	prompt      *prompt
	needle      string
	term        *terminalPanel
	termFocused bool
	servers     map[string]*server

	geo        geometry
	dragging   bool
	modal      bool
	themeDirty bool
	status     string
	quit       bool
}

// New creates an editor with one empty pane. Languages that fail to compile
// are skipped and reported through the dialog.
func New(ctx context.Context, cfg config.Config, opts Options) *Editor {
	if opts.Root == "" {
		opts.Root = "."
	}
	if abs, err := filepath.Abs(opts.Root); err == nil {
		opts.Root = abs
	}
	e := &Editor{
		ctx:        ctx,
		opts:       opts,
		now:        opts.Now,
		pool:       document.NewPool(),
		layout:     NewLayout(),
		history:    cursorhistory.New(cursorhistory.DefaultLimit),
		clip:       &platform.MemoryClipboard{},
		servers:    make(map[string]*server),
		themeDirty: true,
	}
	if e.now == nil {
		e.now = time.Now
	}
	e.applyConfig(cfg)
	return e
}

// SetConfig switches to a reloaded configuration. Open buffers pick up the
// new languages and tab width.
func (e *Editor) SetConfig(cfg config.Config) {
	e.applyConfig(cfg)
	for _, buf := range e.docs.All() {
		buf.Doc.SetTabWidth(cfg.TabWidth)
		e.setSyntax(buf, e.detect(buf.Doc))
	}
	log.Info(log.CatConfig, "config applied", "languages", len(e.registry.Languages()))
}

func (e *Editor) applyConfig(cfg config.Config) {
	e.cfg = cfg
	reg, errs := cfg.Registry()
	e.registry = reg
	if len(errs) > 0 {
		err := errors.Join(errs...)
		log.ErrorErr(log.CatConfig, "languages skipped", err)
		e.showError("Config error", err.Error())
	}
	e.themeDirty = true
}

// Config returns the configuration in use.
func (e *Editor) Config() config.Config { return e.cfg }

// Root returns the workspace directory.
func (e *Editor) Root() string { return e.opts.Root }

// Layout returns the pane arena.
func (e *Editor) Layout() *Layout { return e.layout }

// Buffer returns the buffer in slot id.
func (e *Editor) Buffer(id int) (*Buffer, bool) { return e.docs.Get(id) }

// BufferCount returns the number of open documents.
func (e *Editor) BufferCount() int { return e.docs.Len() }

// Status returns the last status message.
func (e *Editor) Status() string { return e.status }

// ShouldQuit reports whether the user asked to quit and nothing is unsaved.
func (e *Editor) ShouldQuit() bool { return e.quit }

// Modal reports whether a dialog is waiting for an answer.
func (e *Editor) Modal() bool { return e.modal }

// Focused returns the active tab of the focused pane and its buffer. Both
// are nil when the pane is empty.
func (e *Editor) Focused() (*Tab, *Buffer) {
	tab := e.layout.FocusedPane().Current()
	if tab == nil {
		return nil, nil
	}
	buf, ok := e.docs.Get(tab.Doc)
	if !ok {
		return nil, nil
	}
	return tab, buf
}

// HoverText returns the hover text of the focused document.
func (e *Editor) HoverText() string {
	if _, buf := e.Focused(); buf != nil {
		return buf.Doc.Hover()
	}
	return ""
}

func (e *Editor) setStatus(format string, args ...any) {
	e.status = fmt.Sprintf(format, args...)
}

func (e *Editor) showError(title, msg string) {
	e.status = msg
	if e.opts.Dialog != nil {
		e.opts.Dialog.Error(title, msg)
	}
}

func (e *Editor) detect(d *document.Document) *syntax.Syntax {
	if e.registry == nil || d.Path() == "" {
		return nil
	}
	text := d.String()
	if len(text) > detectSample {
		text = text[:detectSample]
	}
	return e.registry.ForPath(d.Path(), []byte(text))
}

func (e *Editor) setSyntax(buf *Buffer, syn *syntax.Syntax) {
	if buf.Highlighter != nil {
		buf.Doc.RemoveListener(buf.Highlighter)
		buf.Highlighter = nil
	}
	buf.Syntax = syn
	if syn != nil {
		buf.Highlighter = syntax.NewHighlighter(syn, buf.Doc)
		buf.Doc.AddListener(buf.Highlighter)
	}
}

// addBuffer puts d in a new slot with a reference count of one.
func (e *Editor) addBuffer(d *document.Document) int {
	d.SetTabWidth(e.cfg.TabWidth)
	buf := &Buffer{Doc: d}
	e.setSyntax(buf, e.detect(d))
	id := e.docs.Insert(buf)
	e.watch(d.Path())
	e.attachServer(buf)
	return id
}

func (e *Editor) watch(path string) {
	if path == "" || e.opts.Watcher == nil {
		return
	}
	if err := e.opts.Watcher.Add(path); err != nil {
		log.Warn(log.CatWatcher, "cannot watch file", "path", path, "error", err)
	}
}

func (e *Editor) unwatch(path string) {
	if path == "" || e.opts.Watcher == nil {
		return
	}
	if err := e.opts.Watcher.Remove(path); err != nil {
		log.Debug(log.CatWatcher, "unwatch failed", "path", path, "error", err)
	}
}

// findPath returns the slot of the document saved at path.
func (e *Editor) findPath(path string) (int, bool) {
	for id, buf := range e.docs.All() {
		if buf.Doc.Path() == path {
			return id, true
		}
	}
	return 0, false
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// Open shows path in the focused pane. A document already open is shared
// rather than loaded again; a missing file opens as an empty document that
// is created on save.
func (e *Editor) Open(path string) error {
	_, err := e.openIn(e.layout.Focused(), path)
	return err
}

func (e *Editor) openIn(paneID int, path string) (int, error) {
	path = absPath(path)
	pane := e.layout.Pane(paneID)
	if id, ok := e.findPath(path); ok {
		if i := pane.Find(id); i >= 0 {
			pane.Active = i
			return id, nil
		}
		e.docs.Retain(id)
		pane.Add(&Tab{Doc: id})
		return id, nil
	}
	id, err := e.load(path)
	if err != nil {
		return 0, err
	}
	pane.Add(&Tab{Doc: id})
	return id, nil
}

// load reads path into a new slot.
func (e *Editor) load(path string) (int, error) {
	d, res, err := document.LoadFileWithPool(path, document.MultiLine, e.pool)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		d = document.NewWithPool(document.MultiLine, e.pool)
		d.SetTentativePath(path)
		e.setStatus("new file %s", filepath.Base(path))
	case err != nil:
		e.showError("Cannot open file", err.Error())
		return 0, err
	case res.Malformed:
		log.Warn(log.CatDoc, "invalid UTF-8 replaced", "path", path)
		e.setStatus("%s: invalid UTF-8 was replaced", filepath.Base(path))
	}
	log.Debug(log.CatEditor, "document opened", "path", path)
	return e.addBuffer(d), nil
}

// openForEdit resolves a path named by a language server edit, opening the
// file in a background tab when needed.
func (e *Editor) openForEdit(path string) (*document.Document, error) {
	path = absPath(path)
	if id, ok := e.findPath(path); ok {
		buf, _ := e.docs.Get(id)
		return buf.Doc, nil
	}
	pane := e.layout.FocusedPane()
	active := pane.Active
	id, err := e.openIn(e.layout.Focused(), path)
	if err != nil {
		return nil, err
	}
	pane.Active = active
	buf, _ := e.docs.Get(id)
	return buf.Doc, nil
}

// NewDocument opens an empty untitled document in the focused pane.
func (e *Editor) NewDocument() {
	d := document.NewWithPool(document.MultiLine, e.pool)
	id := e.addBuffer(d)
	e.layout.FocusedPane().Add(&Tab{Doc: id})
}

// jumpTo focuses doc at p, reusing a tab in the focused pane when there is
// one.
func (e *Editor) jumpTo(doc int, p document.Position) {
	buf, ok := e.docs.Get(doc)
	if !ok {
		return
	}
	pane := e.layout.FocusedPane()
	if i := pane.Find(doc); i >= 0 {
		pane.Active = i
	} else {
		e.docs.Retain(doc)
		pane.Add(&Tab{Doc: doc})
	}
	e.termFocused = false
	buf.Doc.JumpCursors(p, false)
}

// recordCursor adds the focused main cursor to the jump history.
func (e *Editor) recordCursor() {
	tab, buf := e.Focused()
	if tab == nil || e.termFocused {
		return
	}
	e.history.Record(cursorhistory.Entry{Doc: tab.Doc, Position: buf.Doc.MainCursor().Position})
}

func (e *Editor) stepCursorHistory(back bool) {
	var (
		entry cursorhistory.Entry
		ok    bool
	)
	if back {
		entry, ok = e.history.Undo()
	} else {
		entry, ok = e.history.Redo()
	}
	if ok {
		e.jumpTo(entry.Doc, entry.Position)
	}
}

// Update runs one frame. It lays out the window, applies the queued input in
// order (actions, then graphemes, then mouse events) and advances the
// terminal, the language servers, background searches and the cameras. It
// reports whether anything changed that needs a redraw.
func (e *Editor) Update(dt float64, win platform.Window, m Metrics) bool {
	if c := win.Clipboard(); c != nil {
		e.clip = c
	}
	if e.themeDirty {
		win.SetTheme(e.cfg.Palette)
		e.themeDirty = false
	}
	w, h := win.Size()
	e.layoutGeometry(w, h, m)

	q := win.Input()
	changed := win.WasShown() || !q.Empty()
	acts, gs, mouse := q.Actions(), q.Graphemes(), q.Mouse()
	if !e.modal {
		for _, a := range acts {
			e.dispatch(a)
		}
		for _, g := range gs {
			e.typeGrapheme(g)
		}
		for _, ev := range mouse {
			e.mouse(ev)
		}
		// Actions may have split or closed panes.
		e.layoutGeometry(w, h, m)
	}

	if e.updateTerminal() {
		changed = true
	}
	if e.updateServers() {
		changed = true
	}
	if e.updatePrompt() {
		changed = true
	}
	e.recordCursor()
	if e.updateCameras(dt) {
		changed = true
	}
	win.SetTitle(e.title())
	return changed
}

func (e *Editor) title() string {
	_, buf := e.Focused()
	if buf == nil {
		return "scribe"
	}
	mark := ""
	if buf.Doc.Dirty() {
		mark = "* "
	}
	return mark + buf.Name() + " - scribe"
}

// Close shuts down the terminal and the language servers.
func (e *Editor) Close() {
	e.closeTerminal()
	e.closeServers()
	for _, buf := range e.docs.All() {
		e.unwatch(buf.Doc.Path())
	}
}
