package document

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// LoadResult reports recoverable problems found while loading.
type LoadResult struct {
	// Malformed is set when invalid UTF-8 was replaced with U+FFFD.
	Malformed bool
}

// InferLineEnding picks CRLF when text contains any "\r\n", else LF.
func InferLineEnding(text string) LineEnding {
	if strings.Contains(text, "\r\n") {
		return CRLF
	}
	return LF
}

// Load reads a document from r.
func Load(r io.Reader, flags Flags) (*Document, LoadResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, LoadResult{}, err
	}
	d, res := LoadString(string(data), flags)
	return d, res, nil
}

// LoadString builds a document from text, inferring its line ending.
func LoadString(text string, flags Flags) (*Document, LoadResult) {
	return loadString(text, flags, NewPool())
}

func loadString(text string, flags Flags, pool *Pool) (*Document, LoadResult) {
	var res LoadResult
	if !utf8.ValidString(text) {
		res.Malformed = true
		text = strings.ToValidUTF8(text, "�")
	}
	d := NewWithPool(flags, pool)
	d.lineEnding = InferLineEnding(text)
	d.setText(text)
	return d, res
}

// LoadFile reads the file at path. The document remembers path as on disk.
func LoadFile(path string, flags Flags) (*Document, LoadResult, error) {
	return LoadFileWithPool(path, flags, NewPool())
}

// LoadFileWithPool is LoadFile drawing line buffers from pool.
func LoadFileWithPool(path string, flags Flags, pool *Pool) (*Document, LoadResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, LoadResult{}, &IOError{Op: "read", Path: path, Err: err}
	}
	d, res := loadString(string(data), flags, pool)
	d.path = path
	d.pathKind = PathOnDisk
	return d, res, nil
}

// Encode returns the document text using its line ending.
func (d *Document) Encode() []byte {
	sep := d.lineEnding.Bytes()
	var b strings.Builder
	for i, l := range d.lines {
		if i > 0 {
			b.WriteString(sep)
		}
		b.WriteString(l.String())
	}
	return []byte(b.String())
}

// Save writes the document to path, or to its own path when path is empty.
// The write goes through a temporary file so a failure leaves the old
// contents intact.
func (d *Document) Save(path string) error {
	if path == "" {
		path = d.path
	}
	if path == "" {
		return ErrNoPath
	}
	if err := writeFileAtomic(path, d.Encode()); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	d.path = path
	d.pathKind = PathOnDisk
	d.dirty = false
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return err
	}
	if err := os.Chmod(name, mode); err != nil {
		_ = os.Remove(name)
		return err
	}
	return os.Rename(name, path)
}

// Reload replaces the content with text using the smallest set of edits
// found by a diff, as one undoable transaction. Cursors keep their place
// where the surrounding text survives. The dirty bit is cleared.
func (d *Document) Reload(text string) {
	text = strings.ToValidUTF8(normalizeNewlines(text), "�")
	current := d.String()
	if current == text {
		d.dirty = false
		return
	}
	// Diffing whole lines keeps every edit on a grapheme boundary.
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(current, text)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	d.beginEdit()
	off := 0
	for _, df := range diffs {
		switch df.Type {
		case diffmatchpatch.DiffEqual:
			off += len(df.Text)
		case diffmatchpatch.DiffDelete:
			start := d.PositionAt(off)
			d.delete(start, d.PositionAt(off+len(df.Text)))
		case diffmatchpatch.DiffInsert:
			d.insert(d.PositionAt(off), df.Text)
			off += len(df.Text)
		}
	}
	d.endEdit()
	d.dirty = false
}

// ReloadFile re-reads the document's own file.
func (d *Document) ReloadFile() error {
	if d.path == "" {
		return ErrNoPath
	}
	if d.dirty {
		return ErrUnsaved
	}
	data, err := os.ReadFile(d.path)
	if err != nil {
		return &IOError{Op: "read", Path: d.path, Err: err}
	}
	d.Reload(string(data))
	return nil
}
