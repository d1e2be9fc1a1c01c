package editor

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/scribe/internal/action"
	"github.com/zjrosen/scribe/internal/config"
	"github.com/zjrosen/scribe/internal/document"
	"github.com/zjrosen/scribe/internal/platform"
	"github.com/zjrosen/scribe/internal/syntax"
)

type fakeWindow struct {
	queue  action.Queue
	w, h   float64
	shown  bool
	title  string
	themed int
	clip   platform.MemoryClipboard
}

func (w *fakeWindow) Input() *action.Queue { return &w.queue }
func (w *fakeWindow) Size() (float64, float64) { return w.w, w.h }
func (w *fakeWindow) WasShown() bool { return w.shown }
func (w *fakeWindow) SetTitle(title string) { w.title = title }
func (w *fakeWindow) SetTheme(config.Theme) { w.themed++ }
func (w *fakeWindow) Clipboard() platform.Clipboard { return &w.clip }

// cellMetrics lays the editor out in character cells.
type cellMetrics struct{}

func (cellMetrics) GlyphWidth() float64 { return 1 }
func (cellMetrics) LineHeight() float64 { return 1 }

type fakeDialog struct {
	confirms []string
	errors   []string
	pending  func(platform.DialogResult)
}

func (d *fakeDialog) Confirm(_, message string, answer func(platform.DialogResult)) {
	d.confirms = append(d.confirms, message)
	d.pending = answer
}

func (d *fakeDialog) Error(_, message string) { d.errors = append(d.errors, message) }

func (d *fakeDialog) answer(t *testing.T, r platform.DialogResult) {
	t.Helper()
	require.NotNil(t, d.pending, "no confirmation pending")
	cb := d.pending
	d.pending = nil
	cb(r)
}

func fixedClock() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }

func newTestEditor(t *testing.T, cfg config.Config, opts Options) (*Editor, *fakeWindow) {
	t.Helper()
	if opts.Root == "" {
		opts.Root = t.TempDir()
	}
	if opts.Now == nil {
		opts.Now = fixedClock
	}
	e := New(context.Background(), cfg, opts)
	t.Cleanup(e.Close)
	return e, &fakeWindow{w: 40, h: 12}
}

func frame(e *Editor, win *fakeWindow) bool {
	return e.Update(1.0/60, win, cellMetrics{})
}

func writeFile(t *testing.T, path, text string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func focusedDoc(t *testing.T, e *Editor) *document.Document {
	t.Helper()
	_, buf := e.Focused()
	require.NotNil(t, buf, "no focused buffer")
	return buf.Doc
}

func TestActionsRunBeforeGraphemes(t *testing.T) {
	e, win := newTestEditor(t, config.Defaults(), Options{})
	e.NewDocument()

	win.queue.PushText("ab")
	win.queue.PushAction(action.Of(action.Enter))
	assert.True(t, frame(e, win))

	assert.Equal(t, "\nab", focusedDoc(t, e).String())
	assert.Equal(t, "* untitled - scribe", win.title)
	assert.Equal(t, 1, win.themed, "theme is pushed once")
	frame(e, win)
	assert.Equal(t, 1, win.themed)
}

func TestIndentFollowsConfig(t *testing.T) {
	tests := []struct {
		name string
		tabs bool
		want string
	}{
		{name: "spaces", want: "    x"},
		{name: "tabs", tabs: true, want: "\tx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Defaults()
			cfg.IndentWithTabs = tt.tabs
			e, win := newTestEditor(t, cfg, Options{})
			e.NewDocument()
			win.queue.PushAction(action.Of(action.Indent))
			win.queue.PushText("x")
			frame(e, win)
			assert.Equal(t, tt.want, focusedDoc(t, e).String())
		})
	}
}

func TestToggleCommentsUsesLanguagePrefix(t *testing.T) {
	e, win := newTestEditor(t, config.Defaults(), Options{})
	path := writeFile(t, filepath.Join(e.Root(), "main.go"), "a\nb")
	require.NoError(t, e.Open(path))

	_, buf := e.Focused()
	require.NotNil(t, buf.Syntax)
	assert.Equal(t, "Go", buf.Syntax.Name)

	win.queue.PushAction(action.Of(action.SelectAll))
	win.queue.PushAction(action.Of(action.ToggleComments))
	frame(e, win)
	assert.Equal(t, "// a\n// b", buf.Doc.String())

	left, _ := e.StatusLine()
	assert.Contains(t, left, "main.go [+]")
	assert.Contains(t, left, "Go")
}

func TestCopyPaste(t *testing.T) {
	e, win := newTestEditor(t, config.Defaults(), Options{})
	e.NewDocument()
	win.queue.PushText("hello")
	frame(e, win)

	win.queue.PushAction(action.Of(action.SelectAll))
	win.queue.PushAction(action.Of(action.Copy))
	win.queue.PushAction(action.Of(action.MoveToEnd))
	win.queue.PushAction(action.Of(action.Paste))
	frame(e, win)

	assert.Equal(t, "hellohello", focusedDoc(t, e).String())
	got, err := win.clip.Get()
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
}

func TestCutWithoutSelectionTakesLine(t *testing.T) {
	e, win := newTestEditor(t, config.Defaults(), Options{})
	path := writeFile(t, filepath.Join(e.Root(), "lines.txt"), "a\nb")
	require.NoError(t, e.Open(path))

	win.queue.PushAction(action.Of(action.Cut))
	frame(e, win)

	assert.Equal(t, "b", focusedDoc(t, e).String())
	got, _ := win.clip.Get()
	assert.Equal(t, "a\n", got)
}

func TestPasteSplitsAcrossMatchingCursors(t *testing.T) {
	e, win := newTestEditor(t, config.Defaults(), Options{})
	path := writeFile(t, filepath.Join(e.Root(), "two.txt"), "x\ny")
	require.NoError(t, e.Open(path))
	d := focusedDoc(t, e)
	d.SetCursors([]document.Cursor{{Position: document.Pos(0, 0)}, {Position: document.Pos(0, 1)}}, 0)

	win.queue.PushAction(action.Of(action.Copy))
	win.queue.PushAction(action.Of(action.Paste))
	frame(e, win)

	assert.Equal(t, "x\nx\ny\ny", d.String(), "each cursor gets its own line back")
}

func TestOpenSharesDocuments(t *testing.T) {
	e, win := newTestEditor(t, config.Defaults(), Options{})
	path := writeFile(t, filepath.Join(e.Root(), "shared.txt"), "text")
	require.NoError(t, e.Open(path))
	require.NoError(t, e.Open(path))
	assert.Equal(t, 1, e.BufferCount())
	assert.Len(t, e.Layout().FocusedPane().Tabs, 1, "an open tab is focused, not duplicated")

	win.queue.PushAction(action.Of(action.SplitPane))
	frame(e, win)
	require.Len(t, e.Layout().Order(), 2)
	tab, _ := e.Focused()
	require.NotNil(t, tab)
	assert.Equal(t, 2, e.docs.Refs(tab.Doc))

	win.queue.PushText("z")
	frame(e, win)
	assert.Equal(t, "ztext", focusedDoc(t, e).String())

	win.queue.PushAction(action.Of(action.ClosePane))
	frame(e, win)
	assert.Len(t, e.Layout().Order(), 1)
	assert.Equal(t, 1, e.BufferCount(), "the other pane still shows the document")
}

func TestOpenMissingFileIsTentative(t *testing.T) {
	e, _ := newTestEditor(t, config.Defaults(), Options{})
	path := filepath.Join(e.Root(), "later.txt")
	require.NoError(t, e.Open(path))

	d := focusedDoc(t, e)
	assert.Equal(t, document.PathTentative, d.PathKind())
	assert.Equal(t, path, d.Path())
	assert.Contains(t, e.Status(), "new file")
	_, err := os.Stat(path)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCloseDirtyTabAsks(t *testing.T) {
	tests := []struct {
		name     string
		answer   platform.DialogResult
		wantOpen bool
		wantDisk string
	}{
		{name: "cancel keeps the tab", answer: platform.Cancel, wantOpen: true, wantDisk: "text"},
		{name: "no discards", answer: platform.No, wantDisk: "text"},
		{name: "yes saves", answer: platform.Yes, wantDisk: "ztext"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dlg := &fakeDialog{}
			e, win := newTestEditor(t, config.Defaults(), Options{Dialog: dlg})
			path := writeFile(t, filepath.Join(e.Root(), "notes.txt"), "text")
			require.NoError(t, e.Open(path))
			win.queue.PushText("z")
			frame(e, win)

			win.queue.PushAction(action.Of(action.CloseTab))
			frame(e, win)
			require.Len(t, dlg.confirms, 1)
			assert.Equal(t, "Save changes to notes.txt?", dlg.confirms[0])
			assert.True(t, e.Modal())

			win.queue.PushAction(action.Of(action.NewTab))
			frame(e, win)
			assert.Equal(t, 1, e.BufferCount(), "input is dropped while a dialog is open")

			dlg.answer(t, tt.answer)
			assert.False(t, e.Modal())
			if tt.wantOpen {
				assert.Equal(t, 1, e.BufferCount())
				assert.Len(t, e.Layout().FocusedPane().Tabs, 1)
			} else {
				assert.Equal(t, 0, e.BufferCount())
				assert.Empty(t, e.Layout().FocusedPane().Tabs)
			}
			assert.Equal(t, tt.wantDisk, readFile(t, path))
		})
	}
}

func TestCloseCleanTabDoesNotAsk(t *testing.T) {
	dlg := &fakeDialog{}
	e, win := newTestEditor(t, config.Defaults(), Options{Dialog: dlg})
	path := writeFile(t, filepath.Join(e.Root(), "clean.txt"), "text")
	require.NoError(t, e.Open(path))

	win.queue.PushAction(action.Of(action.CloseTab))
	frame(e, win)
	assert.Empty(t, dlg.confirms)
	assert.Equal(t, 0, e.BufferCount())
}

func TestQuitAsksForEachDirtyDocument(t *testing.T) {
	dlg := &fakeDialog{}
	e, win := newTestEditor(t, config.Defaults(), Options{Dialog: dlg})
	for _, name := range []string{"a.txt", "b.txt"} {
		require.NoError(t, e.Open(writeFile(t, filepath.Join(e.Root(), name), name)))
		win.queue.PushText("!")
		frame(e, win)
	}

	win.queue.PushAction(action.Of(action.Quit))
	frame(e, win)
	require.Len(t, dlg.confirms, 1)
	assert.Contains(t, dlg.confirms[0], "a.txt")
	dlg.answer(t, platform.No)
	assert.False(t, e.ShouldQuit())

	require.Len(t, dlg.confirms, 2)
	assert.Contains(t, dlg.confirms[1], "b.txt")
	dlg.answer(t, platform.No)
	assert.True(t, e.ShouldQuit())
}

func TestQuitCancelled(t *testing.T) {
	dlg := &fakeDialog{}
	e, win := newTestEditor(t, config.Defaults(), Options{Dialog: dlg})
	e.NewDocument()
	win.queue.PushText("x")
	frame(e, win)
	win.queue.PushAction(action.Of(action.Quit))
	frame(e, win)

	dlg.answer(t, platform.Cancel)
	assert.False(t, e.ShouldQuit())
	assert.Len(t, dlg.confirms, 1)
}

func TestQuitWithoutChanges(t *testing.T) {
	e, win := newTestEditor(t, config.Defaults(), Options{})
	e.NewDocument()
	win.queue.PushAction(action.Of(action.Quit))
	frame(e, win)
	assert.True(t, e.ShouldQuit())
}

func TestSaveUntitledAsksForPath(t *testing.T) {
	e, win := newTestEditor(t, config.Defaults(), Options{})
	win.queue.PushAction(action.Of(action.NewTab))
	win.queue.PushText("x")
	frame(e, win)

	win.queue.PushAction(action.Of(action.Save))
	frame(e, win)
	label, text, _, _, ok := e.PromptLines()
	require.True(t, ok)
	assert.Equal(t, "save as: ", label)
	assert.Equal(t, e.Root()+string(filepath.Separator), text)

	win.queue.PushText("out.txt")
	frame(e, win)
	win.queue.PushAction(action.Of(action.Enter))
	frame(e, win)

	_, _, _, _, ok = e.PromptLines()
	assert.False(t, ok)
	path := filepath.Join(e.Root(), "out.txt")
	assert.Equal(t, "x", readFile(t, path))
	d := focusedDoc(t, e)
	assert.Equal(t, path, d.Path())
	assert.False(t, d.Dirty())
	assert.Equal(t, "saved out.txt", e.Status())
}

func TestSaveTrimsTrailingWhitespace(t *testing.T) {
	e, win := newTestEditor(t, config.Defaults(), Options{})
	path := writeFile(t, filepath.Join(e.Root(), "trim.txt"), "a")
	require.NoError(t, e.Open(path))
	win.queue.PushAction(action.Of(action.MoveEnd))
	win.queue.PushText("  ")
	win.queue.PushAction(action.Of(action.Save))
	frame(e, win)
	// Actions run before text, so the spaces arrive after the save.
	assert.Equal(t, "a", readFile(t, path))

	win.queue.PushAction(action.Of(action.Save))
	frame(e, win)
	assert.Equal(t, "a", readFile(t, path))
	assert.Equal(t, "a", focusedDoc(t, e).String())
}

func TestFileChanged(t *testing.T) {
	e, win := newTestEditor(t, config.Defaults(), Options{})
	path := writeFile(t, filepath.Join(e.Root(), "watched.txt"), "one")
	require.NoError(t, e.Open(path))
	d := focusedDoc(t, e)

	writeFile(t, path, "two")
	e.FileChanged(path, false)
	assert.Equal(t, "two", d.String())
	assert.False(t, d.Dirty())

	win.queue.PushText("x")
	frame(e, win)
	writeFile(t, path, "three")
	e.FileChanged(path, false)
	assert.Equal(t, "xtwo", d.String(), "unsaved edits win")
	assert.Contains(t, e.Status(), "keeping unsaved edits")

	e.FileChanged(path, true)
	assert.Contains(t, e.Status(), "removed")
}

func TestCursorHistory(t *testing.T) {
	e, win := newTestEditor(t, config.Defaults(), Options{})
	text := ""
	for i := range 50 {
		if i > 0 {
			text += "\n"
		}
		text += "line"
	}
	require.NoError(t, e.Open(writeFile(t, filepath.Join(e.Root(), "long.txt"), text)))
	d := focusedDoc(t, e)
	frame(e, win)

	win.queue.PushAction(action.Of(action.MoveToEnd))
	frame(e, win)
	assert.Equal(t, 49, d.MainCursor().Position.Row)

	win.queue.PushAction(action.Of(action.UndoCursor))
	frame(e, win)
	assert.Equal(t, document.Pos(0, 0), d.MainCursor().Position)

	win.queue.PushAction(action.Of(action.RedoCursor))
	frame(e, win)
	assert.Equal(t, 49, d.MainCursor().Position.Row)
}

func TestSetConfigRedetectsLanguages(t *testing.T) {
	e, _ := newTestEditor(t, config.Defaults(), Options{})
	require.NoError(t, e.Open(writeFile(t, filepath.Join(e.Root(), "x.go"), "package x")))
	_, buf := e.Focused()
	require.NotNil(t, buf.Syntax)

	cfg := config.Defaults()
	cfg.TabWidth = 8
	cfg.Languages = []syntax.Definition{{Name: "Go", Extensions: []string{"go"}, Comment: "#"}}
	e.SetConfig(cfg)

	assert.Equal(t, 8, buf.Doc.TabWidth())
	require.NotNil(t, buf.Syntax)
	assert.Equal(t, "#", buf.Syntax.Comment)
}
