package editor

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/scribe/internal/action"
	"github.com/zjrosen/scribe/internal/config"
	"github.com/zjrosen/scribe/internal/document"
	"github.com/zjrosen/scribe/internal/platform"
)

type drawnText struct {
	x, y  float64
	text  string
	style platform.TextStyle
}

type recordGfx struct {
	texts []drawnText
	rects []platform.Rect
}

func (g *recordGfx) GlyphWidth() float64 { return 1 }
func (g *recordGfx) LineHeight() float64 { return 1 }

func (g *recordGfx) MeasureText(s string) float64 { return float64(utf8.RuneCountInString(s)) }

func (g *recordGfx) AddText(x, y float64, text string, style platform.TextStyle) {
	g.texts = append(g.texts, drawnText{x: x, y: y, text: text, style: style})
}

func (g *recordGfx) AddRect(r platform.Rect, _ config.Color) { g.rects = append(g.rects, r) }

func (g *recordGfx) AddBorderedRect(r platform.Rect, _, _ config.Color) {
	g.rects = append(g.rects, r)
}

// at returns the texts drawn on row y, left to right as emitted.
func (g *recordGfx) at(y float64) []string {
	var out []string
	for _, t := range g.texts {
		if t.y == y {
			out = append(out, t.text)
		}
	}
	return out
}

func numberedLines(n int) string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %d", i+1)
	}
	return strings.Join(lines, "\n")
}

func TestDrawOnlyVisibleRows(t *testing.T) {
	e, win := newTestEditor(t, config.Defaults(), Options{})
	require.NoError(t, e.Open(writeFile(t, filepath.Join(e.Root(), "long.txt"), numberedLines(100))))
	frame(e, win)

	gfx := &recordGfx{}
	e.Draw(gfx)

	var gutter []string
	for _, txt := range gfx.texts {
		if txt.x == 0 && txt.y >= 1 && txt.y < 11 {
			gutter = append(gutter, strings.TrimSpace(txt.text))
		}
	}
	assert.Equal(t, []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10"}, gutter)
	for _, txt := range gfx.texts {
		assert.NotContains(t, txt.text, "line 11", "rows below the view are not drawn")
	}
	assert.Contains(t, strings.Join(gfx.at(1), ""), "line 1")
	assert.Contains(t, gfx.at(0), " long.txt ")

	status := strings.Join(gfx.at(11), "|")
	assert.Contains(t, status, "long.txt  1:1")
}

func TestDrawClipsLongLines(t *testing.T) {
	e, win := newTestEditor(t, config.Defaults(), Options{})
	require.NoError(t, e.Open(writeFile(t, filepath.Join(e.Root(), "wide.txt"), strings.Repeat("x", 100))))
	frame(e, win)

	gfx := &recordGfx{}
	e.Draw(gfx)
	_, buf := e.Focused()
	width := 40 - float64(gutterColumns(buf.Doc.LineCount()))
	for _, txt := range gfx.texts {
		if txt.y == 1 && txt.x >= 3 {
			assert.LessOrEqual(t, float64(utf8.RuneCountInString(txt.text)), width)
		}
	}
}

func TestDrawPrompt(t *testing.T) {
	e, win := newTestEditor(t, config.Defaults(), Options{})
	e.NewDocument()
	win.queue.PushAction(action.Of(action.Find))
	win.queue.PushText("abc")
	frame(e, win)
	frame(e, win)

	gfx := &recordGfx{}
	e.Draw(gfx)
	row := gfx.at(10)
	require.NotEmpty(t, row)
	assert.Equal(t, "find: ", row[0])
	assert.Contains(t, row, "abc")
}

func TestDrawDiagnosticsColorGutter(t *testing.T) {
	e, win := newTestEditor(t, config.Defaults(), Options{})
	require.NoError(t, e.Open(writeFile(t, filepath.Join(e.Root(), "diag.txt"), "ok\nbad")))
	d := focusedDoc(t, e)
	d.SetDiagnostics([]document.Diagnostic{{
		Start:    document.Pos(0, 1),
		End:      document.Pos(3, 1),
		Severity: document.SeverityError,
		Message:  "broken",
	}})
	frame(e, win)

	gfx := &recordGfx{}
	e.Draw(gfx)
	th := e.Config().Palette
	for _, txt := range gfx.texts {
		if txt.x == 0 && txt.y == 2 {
			assert.Equal(t, th.Error, txt.style.FG)
		}
	}
	var underlined bool
	for _, txt := range gfx.texts {
		if txt.y == 2 && txt.style.Underline {
			underlined = true
		}
	}
	assert.True(t, underlined)

	d.JumpCursors(document.Pos(1, 1), false)
	_, right := e.StatusLine()
	assert.Equal(t, "broken", right)
}

func TestMouseClickAndDrag(t *testing.T) {
	e, win := newTestEditor(t, config.Defaults(), Options{})
	require.NoError(t, e.Open(writeFile(t, filepath.Join(e.Root(), "m.txt"), "hello\nworld")))
	frame(e, win)
	d := focusedDoc(t, e)
	text := e.geo.panes[0].text

	win.queue.PushMouse(action.MouseEvent{Kind: action.MousePress, X: text.X + 2, Y: text.Y + 1.5})
	frame(e, win)
	assert.Equal(t, document.Pos(2, 1), d.MainCursor().Position)

	win.queue.PushMouse(action.MouseEvent{Kind: action.MouseDrag, X: text.X + 4, Y: text.Y + 0.2})
	win.queue.PushMouse(action.MouseEvent{Kind: action.MouseRelease})
	frame(e, win)
	assert.Equal(t, document.Range{Start: document.Pos(4, 0), End: document.Pos(2, 1)}, selection(d))

	win.queue.PushMouse(action.MouseEvent{Kind: action.MouseDrag, X: text.X, Y: text.Y})
	frame(e, win)
	assert.Equal(t, document.Pos(4, 0), d.MainCursor().Position, "drags after release are ignored")

	win.queue.PushMouse(action.MouseEvent{Kind: action.MousePress, X: text.X + 5, Y: text.Y + 1, Shift: true})
	frame(e, win)
	assert.Equal(t, document.Range{Start: document.Pos(2, 1), End: document.Pos(5, 1)}, selection(d), "shift extends from the anchor")
}

func TestClickTabLabel(t *testing.T) {
	e, win := newTestEditor(t, config.Defaults(), Options{})
	require.NoError(t, e.Open(writeFile(t, filepath.Join(e.Root(), "a.txt"), "a")))
	require.NoError(t, e.Open(writeFile(t, filepath.Join(e.Root(), "b.txt"), "b")))
	frame(e, win)
	assert.Equal(t, "b", focusedDoc(t, e).String())

	// " a.txt " spans columns 0 to 6.
	win.queue.PushMouse(action.MouseEvent{Kind: action.MousePress, X: 3, Y: 0.5})
	frame(e, win)
	assert.Equal(t, "a", focusedDoc(t, e).String())
}

func TestWheelScrollsWithoutMovingCursor(t *testing.T) {
	e, win := newTestEditor(t, config.Defaults(), Options{})
	require.NoError(t, e.Open(writeFile(t, filepath.Join(e.Root(), "long.txt"), numberedLines(100))))
	frame(e, win)
	tab, buf := e.Focused()

	win.queue.PushMouse(action.MouseEvent{Kind: action.MouseWheel, X: 10, Y: 5, DY: 3})
	for range 120 {
		frame(e, win)
	}
	assert.Greater(t, tab.Camera.Position().Y, 3.0)
	assert.Equal(t, document.Pos(0, 0), buf.Doc.MainCursor().Position)
}

func TestSplitPanesDrawSideBySide(t *testing.T) {
	e, win := newTestEditor(t, config.Defaults(), Options{})
	require.NoError(t, e.Open(writeFile(t, filepath.Join(e.Root(), "a.txt"), "a")))
	win.queue.PushAction(action.Of(action.SplitPane))
	frame(e, win)
	frame(e, win)

	require.Len(t, e.geo.panes, 2)
	assert.Equal(t, 20.0, e.geo.panes[0].bounds.W)
	assert.Equal(t, 20.0, e.geo.panes[1].bounds.X)

	win.queue.PushMouse(action.MouseEvent{Kind: action.MousePress, X: 5, Y: 3})
	frame(e, win)
	assert.Equal(t, e.Layout().Order()[0], e.Layout().Focused())
}

func TestClosePaneKeepsFrameAlive(t *testing.T) {
	e, win := newTestEditor(t, config.Defaults(), Options{})
	require.NoError(t, e.Open(writeFile(t, filepath.Join(e.Root(), "a.txt"), "a")))
	win.queue.PushAction(action.Of(action.SplitPane))
	frame(e, win)
	require.Len(t, e.geo.panes, 2)

	win.queue.PushAction(action.Of(action.ClosePane))
	win.queue.PushMouse(action.MouseEvent{Kind: action.MouseWheel, X: 25, Y: 3, DY: 1})
	win.queue.PushMouse(action.MouseEvent{Kind: action.MousePress, X: 25, Y: 3})
	assert.NotPanics(t, func() { frame(e, win) })
	assert.Len(t, e.Layout().Order(), 1)
	require.Len(t, e.geo.panes, 1, "geometry follows the closed pane")
	assert.NotPanics(t, func() { e.Draw(&recordGfx{}) })
}

func TestClosePaneFromDialogBeforeDraw(t *testing.T) {
	dlg := &fakeDialog{}
	e, win := newTestEditor(t, config.Defaults(), Options{Dialog: dlg})
	require.NoError(t, e.Open(writeFile(t, filepath.Join(e.Root(), "a.txt"), "a")))
	win.queue.PushAction(action.Of(action.SplitPane))
	frame(e, win)
	require.NoError(t, e.Open(writeFile(t, filepath.Join(e.Root(), "b.txt"), "b")))
	win.queue.PushText("z")
	frame(e, win)
	win.queue.PushAction(action.Of(action.ClosePane))
	frame(e, win)
	require.Len(t, dlg.confirms, 1)

	dlg.answer(t, platform.No)
	assert.Len(t, e.Layout().Order(), 1)
	assert.NotPanics(t, func() { e.Draw(&recordGfx{}) }, "the stale pane is skipped")
	assert.NotPanics(t, func() { frame(e, win) })
}
