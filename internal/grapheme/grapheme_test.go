package grapheme

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const family = "👨‍👩‍👧‍👦"

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		in   string
		want Category
	}{
		{"\n", Newline},
		{" ", Space},
		{"\t", Space},
		{"_", Identifier},
		{"a", Identifier},
		{"7", Identifier},
		{"\u00e9", Identifier},
		{"e\u0301", Identifier},
		{"(", Symbol},
		{"'", Symbol},
		{family, Symbol},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CategoryOf(tt.in), "%q", tt.in)
	}
}

func TestAt(t *testing.T) {
	line := "a" + family + "b"

	g, ok := At(line, 1)
	require.True(t, ok)
	assert.Equal(t, family, g)

	_, ok = At(line, 2)
	assert.False(t, ok, "inside a cluster")

	_, ok = At(line, len(line))
	assert.False(t, ok, "end of line has no cluster")
}

func TestNextPrevious(t *testing.T) {
	line := "x" + family + "y"
	famEnd := 1 + len(family)

	n, ok := Next(line, 1)
	require.True(t, ok)
	assert.Equal(t, famEnd, n)

	_, ok = Next(line, len(line))
	assert.False(t, ok)

	p, ok := Previous(line, famEnd)
	require.True(t, ok)
	assert.Equal(t, 1, p)

	p, ok = Previous(line, 1)
	require.True(t, ok)
	assert.Equal(t, 0, p)

	_, ok = Previous(line, 0)
	assert.False(t, ok)
}

func TestIsBoundaryAndFloor(t *testing.T) {
	line := "e\u0301x"
	assert.True(t, IsBoundary(line, 0))
	assert.False(t, IsBoundary(line, 1))
	assert.True(t, IsBoundary(line, 3))
	assert.True(t, IsBoundary(line, 4))
	assert.False(t, IsBoundary(line, 5))
	assert.Equal(t, 0, Floor(line, 2))
	assert.Equal(t, 4, Floor(line, 99))
}

func TestByteOffsetIndex(t *testing.T) {
	s := "h😀llo"
	assert.Equal(t, 5, Count(s))
	assert.Equal(t, 5, ByteOffset(s, 2))
	assert.Equal(t, len(s), ByteOffset(s, 99))
	assert.Equal(t, 1, Index(s, 3))
	assert.Equal(t, 2, Index(s, 5))
	assert.Equal(t, 5, Index(s, 99))
}

func TestVisualWidth(t *testing.T) {
	assert.Equal(t, 4, VisualWidth("\t", 0, 4))
	assert.Equal(t, 1, VisualWidth("\t", 3, 4))
	assert.Equal(t, 4, VisualWidth("\t", 4, 4))
	assert.Equal(t, 1, VisualWidth("a", 0, 4))
	assert.Equal(t, 2, VisualWidth("中", 0, 4))
	assert.Equal(t, 2, VisualWidth("😀", 0, 4))
}

func TestColumnVisualRoundTrip(t *testing.T) {
	line := "\tab中c"
	assert.Equal(t, 0, ColumnToVisual(line, 0, 4))
	assert.Equal(t, 4, ColumnToVisual(line, 1, 4))
	assert.Equal(t, 6, ColumnToVisual(line, 3, 4))
	assert.Equal(t, 8, ColumnToVisual(line, 6, 4))
	assert.Equal(t, 9, Width(line, 4))

	for _, col := range []int{0, 1, 2, 3, 6, 7} {
		assert.Equal(t, col, VisualToColumn(line, ColumnToVisual(line, col, 4), 4), "col %d", col)
	}
	assert.Equal(t, len(line), VisualToColumn(line, 100, 4))
}

func TestIterator(t *testing.T) {
	it := NewIterator("a" + family)
	var clusters []string
	var offsets []int
	for it.Next() {
		clusters = append(clusters, it.Cluster())
		offsets = append(offsets, it.Offset())
	}
	assert.Equal(t, []string{"a", family}, clusters)
	assert.Equal(t, []int{0, 1}, offsets)
	assert.Equal(t, 1+len(family), it.End())
}
