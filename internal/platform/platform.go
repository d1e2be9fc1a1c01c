// Package platform declares the collaborators the editor core draws and
// reads input through. Frontends implement them.
package platform

import (
	"github.com/zjrosen/scribe/internal/action"
	"github.com/zjrosen/scribe/internal/config"
)

// Window delivers one frame of input and owns window-level state.
type Window interface {
	// Input returns the queue of actions, graphemes and mouse events typed
	// since the last frame.
	Input() *action.Queue
	// Size is the drawable area in view units.
	Size() (width, height float64)
	// WasShown reports whether the window became visible since the last
	// frame.
	WasShown() bool
	SetTitle(title string)
	SetTheme(theme config.Theme)
	Clipboard() Clipboard
}

// Rect is an axis-aligned rectangle in view units.
type Rect struct {
	X, Y, W, H float64
}

// Contains reports whether (x, y) lies inside r.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// TextStyle decorates drawn text.
type TextStyle struct {
	FG        config.Color
	BG        config.Color
	Bold      bool
	Italic    bool
	Underline bool
}

// Gfx answers metric queries and collects draw commands for one frame.
type Gfx interface {
	GlyphWidth() float64
	LineHeight() float64
	// MeasureText returns the advance of s.
	MeasureText(s string) float64

	AddText(x, y float64, text string, style TextStyle)
	AddRect(r Rect, color config.Color)
	AddBorderedRect(r Rect, fill, border config.Color)
}

// Clipboard is the system clipboard.
type Clipboard interface {
	Get() (string, error)
	Set(text string) error
}

// MemoryClipboard is a process-local Clipboard.
type MemoryClipboard struct {
	text string
}

func (c *MemoryClipboard) Get() (string, error) { return c.text, nil }

func (c *MemoryClipboard) Set(text string) error {
	c.text = text
	return nil
}

// DialogResult is the answer to a confirmation.
type DialogResult int

const (
	Yes DialogResult = iota
	No
	Cancel
)

func (r DialogResult) String() string {
	switch r {
	case Yes:
		return "yes"
	case No:
		return "no"
	default:
		return "cancel"
	}
}

// Dialog shows modal prompts. Answers arrive later through the callback so
// the frame loop never blocks.
type Dialog interface {
	Confirm(title, message string, answer func(DialogResult))
	Error(title, message string)
}
