package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/scribe/internal/cachemanager"
	"github.com/zjrosen/scribe/internal/config"
)

const (
	hoverMaxWidth  = 80
	hoverMaxHeight = 16
)

// noMarginStyle removes glamour's document margins so the popup hugs its
// border.
const noMarginStyle = `{
	"document": {
		"margin": 0,
		"block_prefix": "",
		"block_suffix": ""
	}
}`

// hoverRenderer turns language server hover markdown into a bordered popup.
// Rendered output is cached per width and text since the same hover is
// redrawn every frame.
type hoverRenderer struct {
	renderers map[int]*glamour.TermRenderer
	rendered  *cachemanager.InMemoryCacheManager[string, string]
}

func newHoverRenderer() *hoverRenderer {
	return &hoverRenderer{
		renderers: make(map[int]*glamour.TermRenderer),
		rendered:  cachemanager.NewInMemoryCacheManager[string, string]("hover", time.Minute, cachemanager.DefaultCleanupInterval),
	}
}

// renderer builds a glamour renderer for width. The dark style is named
// explicitly; auto style detection queries the terminal and the reply
// leaks into the input stream.
func (h *hoverRenderer) renderer(width int) (*glamour.TermRenderer, error) {
	if r, ok := h.renderers[width]; ok {
		return r, nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithStylesFromJSONBytes([]byte(noMarginStyle)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	h.renderers[width] = r
	return r, nil
}

// View renders text as a popup no wider than screenWidth.
func (h *hoverRenderer) View(text string, th config.Theme, screenWidth int) string {
	width := max(min(hoverMaxWidth, screenWidth-4), 10)
	key := fmt.Sprintf("%d:%s:%s", width, th.Border.Hex(), text)
	if out, ok := h.rendered.Get(key); ok {
		return out
	}

	body := text
	if r, err := h.renderer(width); err == nil {
		if md, err := r.Render(text); err == nil {
			body = strings.Trim(md, "\n")
		}
	}
	lines := strings.Split(body, "\n")
	if len(lines) > hoverMaxHeight {
		lines = append(lines[:hoverMaxHeight-1], "…")
	}

	out := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(th.Border.Hex())).
		MaxWidth(width + 2).
		Render(strings.Join(lines, "\n"))
	h.rendered.Set(key, out, 0)
	return out
}
