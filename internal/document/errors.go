package document

import (
	"errors"
	"fmt"
)

// ErrNoPath is returned when saving a document that has never been named.
var ErrNoPath = errors.New("document has no path")

// ErrUnsaved is returned when an operation would discard unsaved changes.
var ErrUnsaved = errors.New("document has unsaved changes")

// IOError wraps a file system failure with the operation and path involved.
type IOError struct {
	Op   string
	Path string
	Err  error
}

// Error implements the error interface.
func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *IOError) Unwrap() error { return e.Err }
