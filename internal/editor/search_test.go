package editor

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/scribe/internal/config"
	"github.com/zjrosen/scribe/internal/document"
)

// tickingClock advances by step on every reading.
type tickingClock struct {
	t    time.Time
	step time.Duration
}

func (c *tickingClock) now() time.Time {
	c.t = c.t.Add(c.step)
	return c.t
}

func TestFileWalkerSkipsIgnoredDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "a")
	writeFile(t, filepath.Join(root, "sub", "b.txt"), "b")
	writeFile(t, filepath.Join(root, "node_modules", "c.js"), "c")
	writeFile(t, filepath.Join(root, ".git", "config"), "c")

	w := NewFileWalker(root, config.DefaultIgnoredDirs())
	got := w.Step(WalkBudget, fixedClock)
	assert.Equal(t, []string{"a.txt", filepath.Join("sub", "b.txt")}, got)
	assert.True(t, w.Done())
	assert.Nil(t, w.Step(WalkBudget, fixedClock))
}

func TestFileWalkerResumesAcrossSteps(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "a")
	writeFile(t, filepath.Join(root, "sub", "b.txt"), "b")

	clock := &tickingClock{t: fixedClock(), step: 10 * time.Millisecond}
	w := NewFileWalker(root, nil)

	assert.Equal(t, []string{"a.txt"}, w.Step(WalkBudget, clock.now), "one directory per exhausted budget")
	assert.False(t, w.Done())
	assert.Equal(t, []string{filepath.Join("sub", "b.txt")}, w.Step(WalkBudget, clock.now))
	assert.True(t, w.Done())
}

func TestFileSearchCapsMatchesPerStep(t *testing.T) {
	root := t.TempDir()
	var b strings.Builder
	for i := range 150 {
		fmt.Fprintf(&b, "line %d needle\n", i)
	}
	writeFile(t, filepath.Join(root, "big.txt"), b.String())

	s := NewFileSearch(root, "needle", nil)
	first := s.Step(SearchBudget, SearchFrameCap, fixedClock)
	require.Len(t, first, SearchFrameCap)
	assert.False(t, s.Done())
	assert.Equal(t, Match{Path: "big.txt", Pos: document.Pos(7, 0), Line: "line 0 needle"}, first[0])

	rest := s.Step(SearchBudget, SearchFrameCap, fixedClock)
	require.Len(t, rest, 50)
	assert.Equal(t, 100, rest[0].Pos.Row, "the search resumes inside the file")
	assert.True(t, s.Done())
}

func TestFileSearchSkipsBinaryFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "bin.dat"), "needle\x00")
	writeFile(t, filepath.Join(root, "text.txt"), "a needle\r\n")

	s := NewFileSearch(root, "needle", nil)
	got := s.Step(SearchBudget, SearchFrameCap, fixedClock)
	assert.Equal(t, []Match{{Path: "text.txt", Pos: document.Pos(2, 0), Line: "a needle"}}, got)
	assert.True(t, s.Done())
}

func TestFileSearchStopsAtBudget(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.txt"), "needle\nneedle\nneedle")

	clock := &tickingClock{t: fixedClock(), step: 60 * time.Millisecond}
	s := NewFileSearch(root, "needle", nil)
	got := s.Step(SearchBudget, SearchFrameCap, clock.now)
	assert.Less(t, len(got), 3)
	assert.False(t, s.Done())

	total := len(got)
	for !s.Done() {
		total += len(s.Step(SearchBudget, SearchFrameCap, clock.now))
	}
	assert.Equal(t, 3, total)
}

func TestEmptyNeedleFinishesImmediately(t *testing.T) {
	s := NewFileSearch(t.TempDir(), "", nil)
	assert.Empty(t, s.Step(SearchBudget, SearchFrameCap, fixedClock))
	assert.True(t, s.Done())
}
