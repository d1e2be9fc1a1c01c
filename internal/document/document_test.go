package document

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClockedDoc(text string, flags Flags) (*Document, *fakeClock) {
	d, _ := LoadString(text, flags)
	clk := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	d.SetClock(clk.now)
	return d, clk
}

func placeCursor(d *Document, col, row int) {
	d.SetCursors([]Cursor{{Position: Pos(col, row)}}, 0)
}

type recordingListener struct{ changes []Change }

func (r *recordingListener) DocumentChanged(_ *Document, c Change) {
	r.changes = append(r.changes, c)
}

func TestNewDocumentHasOneEmptyRow(t *testing.T) {
	d := New(MultiLine)
	require.Equal(t, 1, d.LineCount())
	require.Equal(t, "", d.Line(0))
	require.Equal(t, 1, d.CursorCount())
	require.Equal(t, Pos(0, 0), d.MainCursor().Position)
}

func TestInsertSplitsRows(t *testing.T) {
	d := FromString("hello world", MultiLine)
	end := d.Insert(Pos(5, 0), ",\nbig\n")
	assert.Equal(t, Pos(0, 2), end)
	assert.Equal(t, []string{"hello,", "big", " world"}, d.Lines())
	assert.True(t, d.Dirty())
}

func TestInsertNormalizesCarriageReturns(t *testing.T) {
	d := New(MultiLine)
	d.Insert(Pos(0, 0), "a\r\nb\rc")
	assert.Equal(t, []string{"a", "bc"}, d.Lines())
}

func TestInsertSingleLineReplacesNewlines(t *testing.T) {
	d := New(SingleLine)
	d.Insert(Pos(0, 0), "a\nb")
	assert.Equal(t, []string{"a b"}, d.Lines())
}

func TestDeleteAcrossRows(t *testing.T) {
	d := FromString("one\ntwo\nthree", MultiLine)
	removed := d.Delete(Pos(1, 0), Pos(2, 2))
	assert.Equal(t, "ne\ntwo\nth", removed)
	assert.Equal(t, []string{"oree"}, d.Lines())
}

func TestOutOfRangePositionsAreClamped(t *testing.T) {
	d := FromString("abc\nde", MultiLine)
	assert.Equal(t, Pos(2, 1), d.Clamp(Pos(99, 99)))
	assert.Equal(t, Pos(0, 0), d.Clamp(Pos(-4, -1)))
	// Inside a combining sequence floors to the cluster start.
	d2 := FromString("e\u0301x", MultiLine)
	assert.Equal(t, Pos(0, 0), d2.Clamp(Pos(1, 0)))
	assert.NotPanics(t, func() { d.Delete(Pos(50, 50), Pos(-3, 0)) })
}

func TestListenersSeeChanges(t *testing.T) {
	d := FromString("ab", MultiLine)
	l := &recordingListener{}
	d.AddListener(l)
	d.Insert(Pos(1, 0), "X")
	d.Delete(Pos(0, 0), Pos(1, 0))
	require.Len(t, l.changes, 2)
	assert.Equal(t, "X", l.changes[0].Text)
	assert.Equal(t, "a", l.changes[1].Removed)
	assert.Equal(t, d.Version(), l.changes[1].Version)

	d.RemoveListener(l)
	d.Insert(Pos(0, 0), "z")
	assert.Len(t, l.changes, 2)
}

func TestBackspaceAcrossNewline(t *testing.T) {
	d, _ := LoadString("hello world\ngoodbye world", MultiLine)
	placeCursor(d, 0, 1)
	d.DeleteBackward()
	assert.Equal(t, Pos(11, 0), d.MainCursor().Position)
	assert.Equal(t, []string{"hello worldgoodbye world"}, d.Lines())
}

func TestBackspaceRemovesEmptyPair(t *testing.T) {
	d, _ := LoadString("f()", MultiLine)
	placeCursor(d, 2, 0)
	d.DeleteBackward()
	assert.Equal(t, "f", d.String())
}

func TestPairMatchInMultiLineDocument(t *testing.T) {
	d, _ := LoadString("run_app", MultiLine)
	placeCursor(d, 7, 0)
	d.TypeText("(")
	assert.Equal(t, "run_app()", d.String())
	assert.Equal(t, Pos(8, 0), d.MainCursor().Position)

	d.TypeText(")")
	assert.Equal(t, "run_app()", d.String(), "typing the closer steps over it")
	assert.Equal(t, Pos(9, 0), d.MainCursor().Position)
}

func TestNoPairInSingleLineDocument(t *testing.T) {
	d, _ := LoadString("run_app", SingleLine)
	placeCursor(d, 7, 0)
	d.TypeText("(")
	assert.Equal(t, "run_app(", d.String())
}

func TestLifetimeApostropheDoesNotClose(t *testing.T) {
	d, _ := LoadString("hello<", MultiLine)
	placeCursor(d, 6, 0)
	d.TypeText("'")
	assert.Equal(t, "hello<'", d.String())
}

func TestQuoteAfterIdentifierDoesNotClose(t *testing.T) {
	d, _ := LoadString("don", MultiLine)
	placeCursor(d, 3, 0)
	d.TypeText("'")
	assert.Equal(t, "don'", d.String())
}

func TestSurroundSelection(t *testing.T) {
	d, _ := LoadString("hi there", MultiLine)
	d.SelectAll()
	for _, s := range []string{"[", "{", "(", "'", `"`} {
		d.TypeText(s)
	}
	assert.Equal(t, `[{('"hi there"')}]`, d.String())
	assert.Equal(t, []string{"hi there"}, d.SelectedText())
}

func TestInsertAtCursorReplacesSelection(t *testing.T) {
	d, _ := LoadString("hello world", MultiLine)
	d.SetSelection(Pos(6, 0), Pos(11, 0))
	d.InsertAtCursor(0, "there")
	assert.Equal(t, "hello there", d.String())
	c := d.MainCursor()
	assert.Equal(t, Pos(11, 0), c.Position)
	assert.Nil(t, c.Anchor)
}

func TestMultiCursorTyping(t *testing.T) {
	d, _ := LoadString("a\nb\nc", MultiLine)
	d.SetCursors([]Cursor{{Position: Pos(1, 0)}, {Position: Pos(1, 1)}, {Position: Pos(1, 2)}}, 1)
	d.InsertAtCursors("!")
	assert.Equal(t, []string{"a!", "b!", "c!"}, d.Lines())
	assert.Equal(t, 3, d.CursorCount())
	assert.Equal(t, 1, d.MainCursorIndex())
}

func TestOverlappingCursorsMerge(t *testing.T) {
	d, _ := LoadString("abcdef", MultiLine)
	d.SetCursors([]Cursor{
		{Position: Pos(4, 0), Anchor: anchorAt(Pos(1, 0))},
		{Position: Pos(5, 0), Anchor: anchorAt(Pos(3, 0))},
		{Position: Pos(6, 0)},
	}, 1)
	require.Equal(t, 2, d.CursorCount())
	assert.Equal(t, NewRange(Pos(1, 0), Pos(5, 0)), d.Cursor(0).Selection())
	assert.Equal(t, 0, d.MainCursorIndex(), "main follows the cursor it merged into")
}

func TestCoincidentCaretsMergeAfterDelete(t *testing.T) {
	d, _ := LoadString("ab", MultiLine)
	d.SetCursors([]Cursor{{Position: Pos(1, 0)}, {Position: Pos(2, 0)}}, 0)
	d.DeleteBackward()
	assert.Equal(t, "", d.String())
	assert.Equal(t, 1, d.CursorCount())
}

func TestTerminalKeepsSingleCursor(t *testing.T) {
	d, _ := LoadString("ab\ncd", Terminal)
	d.SetCursors([]Cursor{{Position: Pos(0, 0)}, {Position: Pos(0, 1)}}, 1)
	require.Equal(t, 1, d.CursorCount())
	assert.Equal(t, Pos(0, 1), d.MainCursor().Position)
	d.AddCursorBelow()
	assert.Equal(t, 1, d.CursorCount())
}

func TestMoveCursorHorizontalAndVertical(t *testing.T) {
	d, _ := LoadString("abcdef\nxy\nlonger line", MultiLine)
	placeCursor(d, 5, 0)
	d.MoveCursor(0, 0, 1, false)
	assert.Equal(t, Pos(2, 1), d.MainCursor().Position, "clamped to row end")
	d.MoveCursor(0, 0, 1, false)
	assert.Equal(t, Pos(5, 2), d.MainCursor().Position, "desired column restored")

	d.MoveCursor(0, -6, 0, false)
	assert.Equal(t, Pos(2, 1), d.MainCursor().Position, "moves wrap across rows")

	d.MoveCursor(0, 0, -5, false)
	assert.Equal(t, Pos(0, 0), d.MainCursor().Position)
	d.MoveCursor(0, 0, 10, false)
	assert.Equal(t, d.End(), d.MainCursor().Position)
}

func TestMoveCursorSelecting(t *testing.T) {
	d, _ := LoadString("hello", MultiLine)
	placeCursor(d, 1, 0)
	d.MoveCursor(0, 3, 0, true)
	assert.Equal(t, []string{"ell"}, d.SelectedText())
	d.MoveCursor(0, 1, 0, false)
	c := d.MainCursor()
	assert.Nil(t, c.Anchor)
	assert.Equal(t, Pos(4, 0), c.Position, "collapses to the selection edge")
}

func TestMoveByGraphemes(t *testing.T) {
	d, _ := LoadString("e\u0301x", MultiLine)
	d.MoveCursor(0, 1, 0, false)
	assert.Equal(t, Pos(3, 0), d.MainCursor().Position)
}

func TestMoveCursorsWordAndHome(t *testing.T) {
	d, _ := LoadString("    foo.bar baz", MultiLine)
	placeCursor(d, 15, 0)
	d.MoveCursorsWord(-1, false)
	assert.Equal(t, Pos(12, 0), d.MainCursor().Position)
	d.MoveCursorsWord(-1, false)
	assert.Equal(t, Pos(8, 0), d.MainCursor().Position)
	d.MoveCursorsWord(-1, false)
	assert.Equal(t, Pos(7, 0), d.MainCursor().Position)

	d.MoveCursorsHome(false)
	assert.Equal(t, Pos(4, 0), d.MainCursor().Position)
	d.MoveCursorsHome(false)
	assert.Equal(t, Pos(0, 0), d.MainCursor().Position)
	d.MoveCursorsEnd(false)
	assert.Equal(t, Pos(15, 0), d.MainCursor().Position)
}

func TestJumpCursorsCollapses(t *testing.T) {
	d, _ := LoadString("a\nb\nc", MultiLine)
	d.SetCursors([]Cursor{{Position: Pos(0, 0)}, {Position: Pos(0, 2)}}, 1)
	d.JumpCursors(Pos(1, 1), true)
	require.Equal(t, 1, d.CursorCount())
	assert.Equal(t, []string{"\n"}, d.SelectedText())
	c := d.MainCursor()
	assert.Equal(t, Pos(1, 1), c.Position)
	require.NotNil(t, c.Anchor)
	assert.Equal(t, Pos(0, 2), *c.Anchor)
}

func TestAddCursorAtNextOccurrence(t *testing.T) {
	d, _ := LoadString("foo bar foo baz foo", MultiLine)
	placeCursor(d, 1, 0)
	require.True(t, d.AddCursorAtNextOccurrence())
	assert.Equal(t, []string{"foo"}, d.SelectedText())
	require.True(t, d.AddCursorAtNextOccurrence())
	require.True(t, d.AddCursorAtNextOccurrence())
	assert.Equal(t, 3, d.CursorCount())
	assert.False(t, d.AddCursorAtNextOccurrence(), "wrapped onto an existing cursor")

	d.InsertAtCursors("x")
	assert.Equal(t, "x bar x baz x", d.String())
}

func TestAddCursorBelowUsesDesiredColumn(t *testing.T) {
	d, _ := LoadString("abcd\nab\nabcd", MultiLine)
	placeCursor(d, 3, 0)
	d.AddCursorBelow()
	d.AddCursorBelow()
	require.Equal(t, 3, d.CursorCount())
	assert.Equal(t, Pos(2, 1), d.Cursor(1).Position)
	assert.Equal(t, Pos(3, 2), d.Cursor(2).Position)
	assert.Equal(t, 2, d.MainCursorIndex())
	assert.True(t, d.CollapseCursors())
	assert.Equal(t, Pos(3, 2), d.MainCursor().Position)
}

func TestDeleteWordBackward(t *testing.T) {
	d, _ := LoadString("let value = 10", MultiLine)
	placeCursor(d, 9, 0)
	d.DeleteWordBackward()
	assert.Equal(t, "let  = 10", d.String())
}

func TestDeleteLines(t *testing.T) {
	d, _ := LoadString("a\nb\nc\nd", MultiLine)
	d.SetCursors([]Cursor{{Position: Pos(0, 1)}, {Position: Pos(0, 2)}}, 0)
	d.DeleteLines()
	assert.Equal(t, []string{"a", "d"}, d.Lines())
	assert.Equal(t, 1, d.CursorCount())
	assert.Equal(t, Pos(0, 1), d.MainCursor().Position)
}

func TestTrimTrailingWhitespaceIsOneTransaction(t *testing.T) {
	d, _ := LoadString("a  \nb\t\nc", MultiLine)
	d.TrimTrailingWhitespace()
	assert.Equal(t, "a\nb\nc", d.String())
	require.True(t, d.Undo())
	assert.Equal(t, "a  \nb\t\nc", d.String())
	assert.False(t, d.CanUndo())
}

func TestIndentUnindentAndComments(t *testing.T) {
	d, _ := LoadString("a\n  b\nc", MultiLine)
	d.SetSelection(Pos(0, 0), Pos(1, 1))
	d.Indent("\t")
	assert.Equal(t, []string{"\ta", "\t  b", "c"}, d.Lines())
	d.Unindent(4)
	assert.Equal(t, []string{"a", "  b", "c"}, d.Lines())
	d.Unindent(4)
	assert.Equal(t, []string{"a", "b", "c"}, d.Lines())

	d.SetSelection(Pos(0, 0), Pos(1, 1))
	d.ToggleComments("//")
	assert.Equal(t, []string{"// a", "// b", "c"}, d.Lines())
	d.ToggleComments("//")
	assert.Equal(t, []string{"a", "b", "c"}, d.Lines())
}

func TestUndoRedoRestoresCursors(t *testing.T) {
	d, _ := newClockedDoc("abc", MultiLine)
	d.SetCursors([]Cursor{{Position: Pos(1, 0)}, {Position: Pos(3, 0)}}, 0)
	d.InsertAtCursors("-")
	assert.Equal(t, "a-bc-", d.String())

	require.True(t, d.Undo())
	assert.Equal(t, "abc", d.String())
	cs := d.Cursors()
	require.Len(t, cs, 2)
	assert.Equal(t, Pos(1, 0), cs[0].Position)
	assert.Equal(t, Pos(3, 0), cs[1].Position)

	require.True(t, d.Redo())
	assert.Equal(t, "a-bc-", d.String())
	assert.Equal(t, Pos(5, 0), d.Cursor(1).Position)
	assert.False(t, d.Redo())
}

func TestUndoCoalescesWithinCombineTime(t *testing.T) {
	d, clk := newClockedDoc("", MultiLine)
	d.TypeText("a")
	clk.advance(100 * time.Millisecond)
	d.TypeText("b")
	clk.advance(time.Second)
	d.TypeText("c")

	require.True(t, d.Undo())
	assert.Equal(t, "ab", d.String())
	require.True(t, d.Undo())
	assert.Equal(t, "", d.String())
	require.True(t, d.Redo())
	assert.Equal(t, "ab", d.String())
}

func TestCursorMotionSealsHistory(t *testing.T) {
	d, _ := newClockedDoc("", MultiLine)
	d.TypeText("a")
	d.MoveCursor(0, -1, 0, false)
	d.TypeText("b")
	require.True(t, d.Undo())
	assert.Equal(t, "a", d.String())
}

func TestNewEditClearsRedo(t *testing.T) {
	d, _ := newClockedDoc("x", MultiLine)
	d.MoveCursorsEnd(false)
	d.TypeText("y")
	d.Undo()
	require.True(t, d.CanRedo())
	d.TypeText("z")
	assert.False(t, d.CanRedo())
}

func TestTerminalRecordsNoHistory(t *testing.T) {
	d := New(Terminal)
	d.Insert(Pos(0, 0), "abc")
	assert.False(t, d.CanUndo())
	assert.False(t, d.Undo())
}

func TestSearch(t *testing.T) {
	d, _ := LoadString("ab x\ncd x\nx", MultiLine)
	p, ok := d.Search("x", Pos(0, 0), false)
	require.True(t, ok)
	assert.Equal(t, Pos(3, 0), p)

	p, ok = d.Search("x", Pos(1, 2), false)
	require.True(t, ok)
	assert.Equal(t, Pos(3, 0), p, "wraps to the first match")

	p, ok = d.Search("x", Pos(3, 1), true)
	require.True(t, ok)
	assert.Equal(t, Pos(3, 0), p)

	p, ok = d.Search("x", Pos(0, 0), true)
	require.True(t, ok)
	assert.Equal(t, Pos(0, 2), p, "reverse wraps to the last match")

	_, ok = d.SearchForward("x", Pos(1, 2))
	assert.False(t, ok)
	_, ok = d.SearchBackward("x", Pos(3, 0))
	assert.False(t, ok)

	p, ok = d.Search("x\ncd", Pos(0, 0), false)
	require.True(t, ok)
	assert.Equal(t, Pos(3, 0), p)
}

func TestSearchSkipsPartialGraphemes(t *testing.T) {
	d, _ := LoadString("e\u0301 e", MultiLine)
	p, ok := d.Search("e", Pos(0, 0), false)
	require.True(t, ok)
	assert.Equal(t, Pos(4, 0), p)
}

func TestFindAll(t *testing.T) {
	d, _ := LoadString("aaaa", MultiLine)
	assert.Equal(t, []Position{Pos(0, 0), Pos(2, 0)}, d.FindAll("aa"))
}

func TestLineEndingOnLoad(t *testing.T) {
	assert.Equal(t, CRLF, InferLineEnding("a\r\nb\nc"))
	assert.Equal(t, LF, InferLineEnding("a\nb"))

	d, _ := LoadString("a\r\nb", MultiLine)
	assert.Equal(t, CRLF, d.LineEnding())
	assert.Equal(t, []string{"a", "b"}, d.Lines())
	assert.Equal(t, "a\r\nb", string(d.Encode()))
}

func TestLoadMalformedUTF8(t *testing.T) {
	d, res, err := Load(strings.NewReader("ok\xffok"), MultiLine)
	require.NoError(t, err)
	assert.True(t, res.Malformed)
	assert.Equal(t, "ok�ok", d.String())
}

func TestDiagnosticsFollowEdits(t *testing.T) {
	d, _ := LoadString("foo bar\nbaz", MultiLine)
	d.SetDiagnostics([]Diagnostic{
		{Start: Pos(4, 0), End: Pos(7, 0), Severity: SeverityError, Message: "bad"},
		{Start: Pos(0, 1), End: Pos(3, 1), Severity: SeverityHint, Message: "meh"},
	})
	d.Insert(Pos(0, 0), "xx")
	ds := d.Diagnostics()
	require.Len(t, ds, 2)
	assert.Equal(t, Pos(6, 0), ds[0].Start)
	assert.Equal(t, Pos(9, 0), ds[0].End)
	assert.Len(t, d.DiagnosticsAt(Pos(7, 0)), 1)
	assert.Len(t, d.DiagnosticsOnRow(1), 1)
	assert.Equal(t, "error", ds[0].Severity.String())
}

func TestReloadAppliesMinimalEdits(t *testing.T) {
	d, _ := LoadString("one\ntwo\nthree", MultiLine)
	placeCursor(d, 2, 0)
	d.Reload("one\n2\nthree\nfour")
	assert.Equal(t, []string{"one", "2", "three", "four"}, d.Lines())
	assert.Equal(t, Pos(2, 0), d.MainCursor().Position, "untouched rows keep their cursors")
	assert.False(t, d.Dirty())

	require.True(t, d.Undo())
	assert.Equal(t, "one\ntwo\nthree", d.String())
}

func TestApplyEditsIsOneUndoStep(t *testing.T) {
	d, _ := newClockedDoc("alpha beta\ngamma", MultiLine)
	d.ApplyEdits([]Edit{
		{Start: Pos(0, 0), End: Pos(5, 0), Text: "one"},
		{Start: Pos(0, 1), End: Pos(5, 1), Text: "three"},
		{Start: Pos(6, 0), End: Pos(10, 0), Text: "two"},
		{Start: Pos(2, 0), End: Pos(7, 0), Text: "overlap"},
	})
	assert.Equal(t, "one two\nthree", d.String())

	require.True(t, d.Undo())
	assert.Equal(t, "alpha beta\ngamma", d.String())
	assert.False(t, d.CanUndo())
}

func TestNewlineCarriesIndentation(t *testing.T) {
	d, _ := LoadString("  x := 1", MultiLine)
	placeCursor(d, 8, 0)
	d.Newline("\t")
	assert.Equal(t, []string{"  x := 1", "  "}, d.Lines())
	assert.Equal(t, Pos(2, 1), d.MainCursor().Position)

	d, _ = LoadString("func main() {}", MultiLine)
	placeCursor(d, 13, 0)
	d.Newline("\t")
	assert.Equal(t, []string{"func main() {", "\t", "}"}, d.Lines())
	assert.Equal(t, Pos(1, 1), d.MainCursor().Position)

	require.True(t, d.Undo())
	assert.Equal(t, "func main() {}", d.String(), "one undo step")

	single := New(SingleLine)
	single.Newline("\t")
	assert.Equal(t, 1, single.LineCount())
}
