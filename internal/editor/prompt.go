package editor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/zjrosen/scribe/internal/action"
	"github.com/zjrosen/scribe/internal/document"
	"github.com/zjrosen/scribe/internal/log"
)

type promptKind int

const (
	promptFind promptKind = iota
	promptFindInFiles
	promptFiles
	promptExplorer
	promptSaveAs
	promptRename
)

var promptLabels = map[promptKind]string{
	promptFind:        "find: ",
	promptFindInFiles: "find in files: ",
	promptFiles:       "open: ",
	promptExplorer:    "",
	promptSaveAs:      "save as: ",
	promptRename:      "rename to: ",
}

// prompt is the single-line input shown above the status line. Pickers list
// items filtered by what was typed.
type prompt struct {
	kind     promptKind
	doc      *document.Document
	items    []string
	matches  []Match
	shown    []int
	selected int

	dir    string
	walker *FileWalker
	search *FileSearch

	target     int
	origin     []document.Cursor
	originMain int
}

func newPrompt(kind promptKind, text string) *prompt {
	d := document.New(document.SingleLine)
	if text != "" {
		d.Insert(document.Pos(0, 0), text)
		d.SelectAll()
	}
	return &prompt{kind: kind, doc: d}
}

func (p *prompt) text() string { return p.doc.String() }

func (p *prompt) label() string {
	if p.kind == promptExplorer {
		return p.dir + string(filepath.Separator)
	}
	return promptLabels[p.kind]
}

func (p *prompt) picker() bool {
	return p.kind == promptFindInFiles || p.kind == promptFiles || p.kind == promptExplorer
}

// first is the index in shown of the first listed row.
func (p *prompt) first() int {
	return max(0, p.selected-pickerRows+1)
}

// filter narrows items to those fuzzily matching the typed text, best
// first. Find-in-files results are already filtered by the search.
func (p *prompt) filter() {
	q := p.text()
	p.shown = p.shown[:0]
	if q == "" || p.kind == promptFindInFiles {
		for i := range p.items {
			p.shown = append(p.shown, i)
		}
	} else {
		for _, m := range fuzzy.Find(q, p.items) {
			p.shown = append(p.shown, m.Index)
		}
	}
	p.selected = max(0, min(p.selected, len(p.shown)-1))
}

func (p *prompt) current() (int, bool) {
	if p.selected < 0 || p.selected >= len(p.shown) {
		return 0, false
	}
	return p.shown[p.selected], true
}

func (e *Editor) closePrompt() { e.prompt = nil }

func (e *Editor) openFind(d *document.Document) {
	text := e.needle
	if sel := d.SelectedText(); len(sel) == 1 && sel[0] != "" && !strings.Contains(sel[0], "\n") {
		text = sel[0]
	}
	p := newPrompt(promptFind, text)
	p.target = e.layout.FocusedPane().Current().Doc
	p.origin, p.originMain = d.Cursors(), d.MainCursorIndex()
	e.prompt = p
}

func (e *Editor) openFindInFiles() {
	e.prompt = newPrompt(promptFindInFiles, e.needle)
	e.restartSearch()
}

func (e *Editor) restartSearch() {
	p := e.prompt
	p.items, p.matches, p.selected = nil, nil, 0
	p.search = nil
	if needle := p.text(); needle != "" {
		p.search = NewFileSearch(e.opts.Root, needle, e.cfg.IgnoredDirs)
	}
	p.filter()
}

func (e *Editor) openFilePicker() {
	p := newPrompt(promptFiles, "")
	p.walker = NewFileWalker(e.opts.Root, e.cfg.IgnoredDirs)
	e.prompt = p
}

func (e *Editor) explorerStart() string {
	if _, buf := e.Focused(); buf != nil && buf.Doc.Path() != "" {
		return filepath.Dir(buf.Doc.Path())
	}
	return e.opts.Root
}

// Explore opens the file explorer at dir.
func (e *Editor) Explore(dir string) { e.openExplorer(absPath(dir)) }

func (e *Editor) openExplorer(dir string) {
	p := newPrompt(promptExplorer, "")
	e.prompt = p
	e.listDir(dir)
}

// listDir fills the explorer with the entries of dir, directories first.
func (e *Editor) listDir(dir string) {
	p := e.prompt
	entries, err := os.ReadDir(dir)
	if err != nil {
		e.showError("Cannot open directory", err.Error())
		return
	}
	p.dir = dir
	var dirs, files []string
	for _, ent := range entries {
		if ent.IsDir() {
			dirs = append(dirs, ent.Name()+"/")
		} else {
			files = append(files, ent.Name())
		}
	}
	p.items = append([]string{"../"}, append(dirs, files...)...)
	p.selected = 0
	if p.doc.LineLen(0) > 0 {
		p.doc.SelectAll()
		p.doc.DeleteSelection()
	}
	p.filter()
}

func (e *Editor) openSaveAs(id int) {
	buf, ok := e.docs.Get(id)
	if !ok {
		return
	}
	text := buf.Doc.Path()
	if text == "" {
		text = e.opts.Root + string(filepath.Separator)
	}
	p := newPrompt(promptSaveAs, text)
	p.target = id
	e.prompt = p
}

func (e *Editor) openRename(buf *Buffer) {
	start, end := buf.Doc.WordAt(buf.Doc.MainCursor().Position)
	p := newPrompt(promptRename, buf.Doc.TextRange(start, end))
	p.target = e.layout.FocusedPane().Current().Doc
	e.prompt = p
}

func (e *Editor) promptAction(a action.Action) {
	p := e.prompt
	switch {
	case a.Kind == action.Escape:
		e.cancelPrompt()
	case a.Kind == action.Enter:
		e.acceptPrompt()
	case p.picker() && a.Kind == action.MoveUp:
		p.moveSelection(-1)
	case p.picker() && a.Kind == action.MoveDown:
		p.moveSelection(1)
	case p.picker() && a.Kind == action.PageUp:
		p.moveSelection(-pickerRows)
	case p.picker() && a.Kind == action.PageDown:
		p.moveSelection(pickerRows)
	case p.kind == promptFind && (a.Kind == action.Find || a.Kind == action.FindNext || a.Kind == action.FindPrevious):
		if buf, ok := e.docs.Get(p.target); ok {
			e.findStep(buf.Doc, p.text(), a.Kind == action.FindPrevious)
		}
	default:
		before := p.text()
		e.documentAction(p.doc, nil, a)
		e.promptEdited(before)
	}
}

func (p *prompt) moveSelection(delta int) {
	if len(p.shown) == 0 {
		return
	}
	p.selected = max(0, min(p.selected+delta, len(p.shown)-1))
}

// promptEdited reacts to the prompt text changing.
func (e *Editor) promptEdited(before string) {
	p := e.prompt
	if p == nil || p.text() == before {
		return
	}
	switch p.kind {
	case promptFind:
		e.incrementalFind()
	case promptFindInFiles:
		e.restartSearch()
	case promptFiles, promptExplorer:
		p.filter()
	}
}

// incrementalFind selects the first match at or after where the search
// started.
func (e *Editor) incrementalFind() {
	p := e.prompt
	buf, ok := e.docs.Get(p.target)
	if !ok {
		return
	}
	d := buf.Doc
	needle := p.text()
	if needle == "" {
		d.SetCursors(p.origin, p.originMain)
		return
	}
	from := p.origin[p.originMain].Selection().Start
	start, ok := d.Search(needle, from, false)
	if !ok {
		e.setStatus("%q not found", needle)
		return
	}
	d.SetSelection(start, d.PositionAt(d.Offset(start)+len(needle)))
}

func (e *Editor) cancelPrompt() {
	p := e.prompt
	e.closePrompt()
	if p.kind != promptFind {
		return
	}
	if buf, ok := e.docs.Get(p.target); ok {
		buf.Doc.SetCursors(p.origin, p.originMain)
	}
}

func (e *Editor) acceptPrompt() {
	p := e.prompt
	text := p.text()
	switch p.kind {
	case promptFind:
		if text != "" {
			e.needle = text
		}
		e.closePrompt()
	case promptFindInFiles:
		i, ok := p.current()
		if !ok {
			return
		}
		e.needle = text
		e.closePrompt()
		m := p.matches[i]
		if id, err := e.openIn(e.layout.Focused(), filepath.Join(e.opts.Root, m.Path)); err == nil {
			e.jumpTo(id, m.Pos)
		}
	case promptFiles:
		i, ok := p.current()
		if !ok {
			return
		}
		e.closePrompt()
		e.termFocused = false
		_ = e.Open(filepath.Join(e.opts.Root, p.items[i]))
	case promptExplorer:
		e.acceptExplorer(p, text)
	case promptSaveAs:
		e.closePrompt()
		if text == "" {
			return
		}
		if !filepath.IsAbs(text) {
			text = filepath.Join(e.opts.Root, text)
		}
		if buf, ok := e.docs.Get(p.target); ok {
			e.saveAs(buf, text, nil)
		}
	case promptRename:
		e.closePrompt()
		if buf, ok := e.docs.Get(p.target); ok && text != "" {
			e.rename(buf, text)
		}
	}
}

// acceptExplorer enters a directory or opens a file. A typed name that
// matches nothing opens a new file of that name.
func (e *Editor) acceptExplorer(p *prompt, text string) {
	name := ""
	if i, ok := p.current(); ok {
		name = p.items[i]
	} else if text != "" {
		name = text
	}
	if name == "" {
		return
	}
	if strings.HasSuffix(name, "/") {
		e.listDir(filepath.Clean(filepath.Join(p.dir, name)))
		return
	}
	e.closePrompt()
	e.termFocused = false
	_ = e.Open(filepath.Join(p.dir, name))
}

// updatePrompt advances a running walk or search by one frame budget.
func (e *Editor) updatePrompt() bool {
	p := e.prompt
	if p == nil {
		return false
	}
	switch {
	case p.walker != nil && !p.walker.Done():
		found := p.walker.Step(WalkBudget, e.now)
		if len(found) == 0 {
			return false
		}
		p.items = append(p.items, found...)
		p.filter()
		log.Debug(log.CatEditor, "files listed", "count", len(p.items))
		return true
	case p.search != nil && !p.search.Done():
		ms := p.search.Step(SearchBudget, SearchFrameCap, e.now)
		if len(ms) == 0 {
			return p.search.Done()
		}
		for _, m := range ms {
			p.matches = append(p.matches, m)
			p.items = append(p.items, fmt.Sprintf("%s:%d: %s", m.Path, m.Pos.Row+1, strings.TrimSpace(m.Line)))
		}
		p.filter()
		return true
	}
	return false
}

// PromptLines returns the prompt label and text, and the listed picker rows
// with the index of the selected one. ok is false when no prompt is open.
func (e *Editor) PromptLines() (label, text string, rows []string, selected int, ok bool) {
	p := e.prompt
	if p == nil {
		return "", "", nil, 0, false
	}
	first := p.first()
	for i := first; i < len(p.shown) && i < first+pickerRows; i++ {
		rows = append(rows, p.items[p.shown[i]])
	}
	return p.label(), p.text(), rows, p.selected - first, true
}
