package document

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/scribe/internal/grapheme"
)

var fragments = []string{"a", "b", "Z", " ", "\t", "\n", "\u00e9", "e\u0301", "\u6f22", "()", "x\ny"}

func textGen() *rapid.Generator[string] {
	return rapid.Custom(func(t *rapid.T) string {
		parts := rapid.SliceOfN(rapid.SampledFrom(fragments), 0, 12).Draw(t, "parts")
		return strings.Join(parts, "")
	})
}

func posGen(d *Document, label string) func(t *rapid.T) Position {
	return func(t *rapid.T) Position {
		row := rapid.IntRange(-1, d.LineCount()).Draw(t, label+"Row")
		col := rapid.IntRange(-1, 40).Draw(t, label+"Col")
		return Pos(col, row)
	}
}

func mutate(t *rapid.T, d *Document) {
	switch rapid.IntRange(0, 5).Draw(t, "op") {
	case 0:
		d.Insert(posGen(d, "at")(t), textGen().Draw(t, "text"))
	case 1:
		d.Delete(posGen(d, "from")(t), posGen(d, "to")(t))
	case 2:
		d.InsertAtCursors(textGen().Draw(t, "typed"))
	case 3:
		d.DeleteBackward()
	case 4:
		d.TypeText(rapid.SampledFrom([]string{"(", "'", `"`, "]", "q"}).Draw(t, "key"))
	case 5:
		d.AddCursorBelow()
	}
}

func checkCursors(t *rapid.T, d *Document) {
	cs := d.Cursors()
	for i, c := range cs {
		line := d.Line(c.Position.Row)
		if !grapheme.IsBoundary(line, c.Position.Col) {
			t.Fatalf("cursor %d at %v is not on a grapheme boundary of %q", i, c.Position, line)
		}
		if i == 0 {
			continue
		}
		prev, cur := cs[i-1].Selection(), c.Selection()
		if cur.Start.Less(prev.End) || (cur.Start == prev.End && (cur.IsEmpty() || prev.IsEmpty())) {
			t.Fatalf("cursors %d and %d overlap: %v %v", i-1, i, prev, cur)
		}
		if cur.Start.Less(prev.Start) {
			t.Fatalf("cursors not sorted: %v before %v", prev, cur)
		}
	}
}

func TestCursorsStayOnBoundariesAndSorted(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		d := FromString(textGen().Draw(t, "initial"), MultiLine)
		n := rapid.IntRange(1, 20).Draw(t, "steps")
		for i := 0; i < n; i++ {
			mutate(t, d)
			checkCursors(t, d)
			require.GreaterOrEqual(t, d.LineCount(), 1)
		}
	})
}

func TestUndoRedoRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		d := FromString(textGen().Draw(t, "initial"), MultiLine)
		initial := d.String()
		n := rapid.IntRange(1, 10).Draw(t, "steps")
		for i := 0; i < n; i++ {
			d.SealHistory()
			mutate(t, d)
		}
		final := d.String()

		for d.CanUndo() {
			d.Undo()
		}
		require.Equal(t, initial, d.String())
		for d.CanRedo() {
			d.Redo()
		}
		require.Equal(t, final, d.String())

		// One step back and forth is also the identity.
		if d.Undo() {
			d.Redo()
		}
		require.Equal(t, final, d.String())
	})
}

func TestSearchAdvancesUntilWrap(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		d := FromString(textGen().Draw(t, "text"), MultiLine)
		needle := rapid.SampledFrom([]string{"a", "b", " ", "\u00e9"}).Draw(t, "needle")
		p, ok := d.Search(needle, Pos(0, 0), false)
		if !ok {
			return
		}
		prev := d.Offset(p)
		for i := 0; i < 100; i++ {
			next, ok := d.Search(needle, d.PositionAt(prev+len(needle)), false)
			require.True(t, ok)
			off := d.Offset(next)
			if off <= prev {
				return // wrapped
			}
			prev = off
		}
	})
}

func TestSaveLoadRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		d := FromString(textGen().Draw(t, "text"), MultiLine)
		d.SetLineEnding(rapid.SampledFrom([]LineEnding{LF, CRLF}).Draw(t, "ending"))

		plain, _ := LoadString(d.String(), MultiLine)
		require.Equal(t, d.Lines(), plain.Lines())
		require.Equal(t, LF, plain.LineEnding())

		encoded, _ := LoadString(string(d.Encode()), MultiLine)
		require.Equal(t, d.Lines(), encoded.Lines())
		if d.LineCount() > 1 {
			require.Equal(t, d.LineEnding(), encoded.LineEnding())
		}
	})
}
