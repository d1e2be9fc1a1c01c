package tui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zjrosen/scribe/internal/config"
	"github.com/zjrosen/scribe/internal/platform"
)

func TestCanvasAddText(t *testing.T) {
	c := NewCanvas(10, 2)
	c.AddText(1, 0, "hi", platform.TextStyle{})
	c.AddText(0, 1.7, "a\tb", platform.TextStyle{})
	assert.Equal(t, " hi\na   b", c.Plain())
}

func TestCanvasClipsAtEdges(t *testing.T) {
	c := NewCanvas(4, 1)
	c.AddText(-2, 0, "abcdefgh", platform.TextStyle{})
	c.AddText(0, 5, "zz", platform.TextStyle{})
	assert.Equal(t, "cdef", c.Plain())
}

func TestCanvasWideClusters(t *testing.T) {
	c := NewCanvas(6, 1)
	c.AddText(0, 0, "日本x", platform.TextStyle{})
	assert.Equal(t, "日本x", c.Plain())
	assert.Equal(t, float64(5), c.MeasureText("日本x"))
}

func TestCanvasTextKeepsBackground(t *testing.T) {
	c := NewCanvas(4, 1)
	sel := config.RGB(1, 2, 3)
	c.AddRect(platform.Rect{X: 0, Y: 0, W: 2, H: 1}, sel)
	c.AddText(0, 0, "ab", platform.TextStyle{FG: config.RGB(9, 9, 9)})
	assert.Equal(t, sel, c.at(0, 0).style.BG)
	assert.Equal(t, sel, c.at(1, 0).style.BG)
	assert.NotEqual(t, sel, c.at(2, 0).style.BG)
}

func TestCanvasBorderedRect(t *testing.T) {
	c := NewCanvas(4, 3)
	c.AddBorderedRect(platform.Rect{X: 0, Y: 0, W: 4, H: 3}, config.RGB(0, 0, 0), config.RGB(255, 255, 255))
	lines := strings.Split(c.Plain(), "\n")
	assert.Equal(t, []string{"╭──╮", "│  │", "╰──╯"}, lines)
}

func TestCanvasRenderKeepsText(t *testing.T) {
	c := NewCanvas(5, 1)
	c.AddText(0, 0, "hello", platform.TextStyle{Bold: true})
	assert.Contains(t, c.Render(), "hello")
}
