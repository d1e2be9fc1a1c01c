// Package document implements the editor's text model.
//
// A Document is a non-empty ordered list of Lines plus one or more cursors, an
// undo/redo history and a monotonically increasing version. Positions are
// (byte column, row) pairs and always sit on grapheme boundaries; every
// user-visible motion goes through package grapheme.
//
// Out-of-range positions are clamped, never reported as errors.
package document
