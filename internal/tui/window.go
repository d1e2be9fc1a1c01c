package tui

import (
	"fmt"

	"github.com/atotto/clipboard"

	"github.com/zjrosen/scribe/internal/action"
	"github.com/zjrosen/scribe/internal/config"
	"github.com/zjrosen/scribe/internal/log"
	"github.com/zjrosen/scribe/internal/platform"
)

// window is the platform.Window the editor sees. The bubbletea model fills
// its queue between frames.
type window struct {
	queue  action.Queue
	width  int
	height int
	shown  bool
	title  string
	theme  config.Theme
	themed bool
	clip   platform.Clipboard
}

func (w *window) Input() *action.Queue { return &w.queue }

func (w *window) Size() (float64, float64) { return float64(w.width), float64(w.height) }

// WasShown reports a resize or first show once.
func (w *window) WasShown() bool {
	shown := w.shown
	w.shown = false
	return shown
}

func (w *window) SetTitle(title string) { w.title = title }

func (w *window) SetTheme(theme config.Theme) {
	w.theme = theme
	w.themed = true
}

func (w *window) Clipboard() platform.Clipboard { return w.clip }

// SystemClipboard is the OS clipboard. When no clipboard utility is
// available it keeps the text in memory so copy and paste still work inside
// the editor.
type SystemClipboard struct {
	fallback platform.MemoryClipboard
}

func (c *SystemClipboard) Get() (string, error) {
	if clipboard.Unsupported {
		return c.fallback.Get()
	}
	text, err := clipboard.ReadAll()
	if err != nil {
		log.Warn(log.CatUI, "clipboard read failed, using local copy", "error", err)
		return c.fallback.Get()
	}
	return text, nil
}

func (c *SystemClipboard) Set(text string) error {
	_ = c.fallback.Set(text)
	if clipboard.Unsupported {
		return nil
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("writing clipboard: %w", err)
	}
	return nil
}
