package editor

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/zjrosen/scribe/internal/document"
	"github.com/zjrosen/scribe/internal/log"
)

const (
	// WalkBudget is the per-frame time a directory walk may take.
	WalkBudget = 5 * time.Millisecond
	// SearchBudget is the per-frame time a find-in-files search may take.
	SearchBudget = 100 * time.Millisecond
	// SearchFrameCap is how many matches a search reports per frame.
	SearchFrameCap = 100

	binarySniff = 8000
	maxFileSize = 8 << 20
)

// FileWalker lists regular files under a root breadth first. It is
// resumable: each Step continues where the previous one stopped.
type FileWalker struct {
	root    string
	ignored map[string]bool
	queue   []string
	done    bool
}

// NewFileWalker walks root, skipping directories whose name is in ignored.
func NewFileWalker(root string, ignored []string) *FileWalker {
	w := &FileWalker{root: root, ignored: make(map[string]bool, len(ignored)), queue: []string{root}}
	for _, name := range ignored {
		w.ignored[name] = true
	}
	return w
}

// Done reports whether every directory was read.
func (w *FileWalker) Done() bool { return w.done }

// Step reads directories until budget has elapsed and returns the files
// found, relative to the root. At least one directory is read per call.
func (w *FileWalker) Step(budget time.Duration, now func() time.Time) []string {
	if w.done {
		return nil
	}
	deadline := now().Add(budget)
	var found []string
	for len(w.queue) > 0 {
		dir := w.queue[0]
		w.queue = w.queue[1:]
		entries, err := os.ReadDir(dir)
		if err != nil {
			log.Warn(log.CatEditor, "cannot read directory", "dir", dir, "error", err)
		}
		for _, ent := range entries {
			path := filepath.Join(dir, ent.Name())
			switch {
			case ent.IsDir():
				if !w.ignored[ent.Name()] {
					w.queue = append(w.queue, path)
				}
			case ent.Type().IsRegular():
				if rel, err := filepath.Rel(w.root, path); err == nil {
					found = append(found, rel)
				}
			}
		}
		if !now().Before(deadline) {
			break
		}
	}
	w.done = len(w.queue) == 0
	slices.Sort(found)
	return found
}

// Match is one find-in-files hit. Col is a byte column.
type Match struct {
	Path string
	Pos  document.Position
	Line string
}

// FileSearch looks for a literal needle in every file a FileWalker yields.
// It keeps its place inside the current file so a frame budget can stop it
// anywhere.
type FileSearch struct {
	needle string
	walker *FileWalker
	files  []string

	path string
	data []byte
	off  int
	row  int
	done bool
}

// NewFileSearch searches for needle under root.
func NewFileSearch(root, needle string, ignored []string) *FileSearch {
	return &FileSearch{needle: needle, walker: NewFileWalker(root, ignored)}
}

// Needle returns what is searched for.
func (s *FileSearch) Needle() string { return s.needle }

// Done reports whether every file was searched.
func (s *FileSearch) Done() bool { return s.done }

// Step searches until budget elapses or limit matches were found this call.
func (s *FileSearch) Step(budget time.Duration, limit int, now func() time.Time) []Match {
	if s.done || s.needle == "" {
		s.done = true
		return nil
	}
	deadline := now().Add(budget)
	var out []Match
	for len(out) < limit && now().Before(deadline) {
		if s.data == nil && !s.nextFile(budget, now) {
			s.done = true
			break
		}
		m, ok := s.scanLine()
		if ok {
			out = append(out, m)
		}
	}
	return out
}

// nextFile loads the next searchable file, walking more directories when
// the queue is empty.
func (s *FileSearch) nextFile(budget time.Duration, now func() time.Time) bool {
	for {
		if len(s.files) == 0 {
			if s.walker.Done() {
				return false
			}
			s.files = append(s.files, s.walker.Step(budget, now)...)
			continue
		}
		rel := s.files[0]
		s.files = s.files[1:]
		path := filepath.Join(s.walker.root, rel)
		info, err := os.Stat(path)
		if err != nil || info.Size() > maxFileSize {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			log.Debug(log.CatEditor, "skipping unreadable file", "path", path, "error", err)
			continue
		}
		if bytes.IndexByte(data[:min(len(data), binarySniff)], 0) >= 0 {
			continue
		}
		s.path, s.data, s.off, s.row = rel, data, 0, 0
		return true
	}
}

// scanLine consumes one line of the current file.
func (s *FileSearch) scanLine() (Match, bool) {
	rest := s.data[s.off:]
	end := bytes.IndexByte(rest, '\n')
	next := s.off + end + 1
	if end < 0 {
		end = len(rest)
		next = -1
	}
	line := strings.TrimSuffix(string(rest[:end]), "\r")
	row := s.row
	if next < 0 || next >= len(s.data) {
		s.data = nil
	} else {
		s.off, s.row = next, s.row+1
	}
	col := strings.Index(line, s.needle)
	if col < 0 {
		return Match{}, false
	}
	return Match{Path: s.path, Pos: document.Pos(col, row), Line: line}, true
}
