package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/zjrosen/scribe/internal/config"
	"github.com/zjrosen/scribe/internal/grapheme"
	"github.com/zjrosen/scribe/internal/platform"
)

// cell is one terminal cell. A wide cluster occupies its first cell; the
// cells it covers hold cont.
type cell struct {
	text  string
	style platform.TextStyle
	cont  bool
}

// Canvas is a platform.Gfx that rasterises draw commands onto a grid of
// terminal cells. One view unit is one cell.
type Canvas struct {
	width, height int
	cells         []cell
	base          platform.TextStyle
	tabWidth      int
}

// NewCanvas creates an empty canvas.
func NewCanvas(width, height int) *Canvas {
	c := &Canvas{tabWidth: 4}
	c.Reset(width, height, config.DefaultTheme())
	return c
}

// Reset clears the canvas to the theme background.
func (c *Canvas) Reset(width, height int, th config.Theme) {
	c.width, c.height = max(width, 0), max(height, 0)
	c.base = platform.TextStyle{FG: th.Normal, BG: th.Background}
	n := c.width * c.height
	if cap(c.cells) < n {
		c.cells = make([]cell, n)
	}
	c.cells = c.cells[:n]
	for i := range c.cells {
		c.cells[i] = cell{text: " ", style: c.base}
	}
}

// Size returns the grid dimensions.
func (c *Canvas) Size() (width, height int) { return c.width, c.height }

func (c *Canvas) GlyphWidth() float64 { return 1 }
func (c *Canvas) LineHeight() float64 { return 1 }

func (c *Canvas) MeasureText(s string) float64 {
	return float64(grapheme.Width(s, c.tabWidth))
}

func (c *Canvas) at(x, y int) *cell {
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return nil
	}
	return &c.cells[y*c.width+x]
}

// AddText writes text starting at (x, y). A zero background keeps what is
// already painted underneath.
func (c *Canvas) AddText(x, y float64, text string, style platform.TextStyle) {
	col, row := int(math.Floor(x)), int(math.Floor(y))
	if row < 0 || row >= c.height {
		return
	}
	visual := 0
	it := grapheme.NewIterator(text)
	for it.Next() {
		g := it.Cluster()
		w := grapheme.VisualWidth(g, visual, c.tabWidth)
		if g == "\t" {
			for i := range w {
				c.put(col+visual+i, row, " ", style)
			}
		} else if w > 0 {
			c.put(col+visual, row, g, style)
			for i := 1; i < w; i++ {
				if dst := c.at(col+visual+i, row); dst != nil {
					dst.cont = true
				}
			}
		}
		visual += w
	}
}

func (c *Canvas) put(x, y int, g string, style platform.TextStyle) {
	dst := c.at(x, y)
	if dst == nil {
		return
	}
	if style.BG.A == 0 {
		style.BG = dst.style.BG
	}
	*dst = cell{text: g, style: style}
}

// AddRect fills r with color.
func (c *Canvas) AddRect(r platform.Rect, color config.Color) {
	c.fill(r, func(dst *cell) {
		*dst = cell{text: " ", style: platform.TextStyle{FG: c.base.FG, BG: color}}
	})
}

// AddBorderedRect fills r and draws a box border along its edge.
func (c *Canvas) AddBorderedRect(r platform.Rect, fill, border config.Color) {
	c.AddRect(r, fill)
	x0, y0 := int(math.Floor(r.X)), int(math.Floor(r.Y))
	x1, y1 := int(math.Ceil(r.X+r.W))-1, int(math.Ceil(r.Y+r.H))-1
	if x1 <= x0 || y1 <= y0 {
		return
	}
	b := lipgloss.RoundedBorder()
	style := platform.TextStyle{FG: border, BG: fill}
	for x := x0 + 1; x < x1; x++ {
		c.put(x, y0, b.Top, style)
		c.put(x, y1, b.Bottom, style)
	}
	for y := y0 + 1; y < y1; y++ {
		c.put(x0, y, b.Left, style)
		c.put(x1, y, b.Right, style)
	}
	c.put(x0, y0, b.TopLeft, style)
	c.put(x1, y0, b.TopRight, style)
	c.put(x0, y1, b.BottomLeft, style)
	c.put(x1, y1, b.BottomRight, style)
}

func (c *Canvas) fill(r platform.Rect, paint func(*cell)) {
	x0 := max(int(math.Floor(r.X)), 0)
	y0 := max(int(math.Floor(r.Y)), 0)
	x1 := min(int(math.Ceil(r.X+r.W)), c.width)
	y1 := min(int(math.Ceil(r.Y+r.H)), c.height)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			paint(&c.cells[y*c.width+x])
		}
	}
}

// Plain returns the canvas text without styling, one line per row with
// trailing spaces trimmed.
func (c *Canvas) Plain() string {
	lines := make([]string, c.height)
	for y := range c.height {
		var b strings.Builder
		for x := range c.width {
			if cl := c.cells[y*c.width+x]; !cl.cont {
				b.WriteString(cl.text)
			}
		}
		lines[y] = strings.TrimRight(b.String(), " ")
	}
	return strings.Join(lines, "\n")
}

// Render returns the canvas as styled terminal output. Runs of cells that
// share a style are rendered together.
func (c *Canvas) Render() string {
	lines := make([]string, c.height)
	for y := range c.height {
		var (
			b   strings.Builder
			run strings.Builder
			cur platform.TextStyle
		)
		flush := func() {
			if run.Len() > 0 {
				b.WriteString(lipglossStyle(cur).Render(run.String()))
				run.Reset()
			}
		}
		for x := range c.width {
			cl := c.cells[y*c.width+x]
			if cl.cont {
				continue
			}
			if cl.style != cur {
				flush()
				cur = cl.style
			}
			run.WriteString(cl.text)
		}
		flush()
		lines[y] = b.String()
	}
	return strings.Join(lines, "\n")
}

func lipglossStyle(s platform.TextStyle) lipgloss.Style {
	st := lipgloss.NewStyle().
		Bold(s.Bold).
		Italic(s.Italic).
		Underline(s.Underline)
	if s.FG.A != 0 {
		st = st.Foreground(lipgloss.Color(s.FG.Hex()))
	}
	if s.BG.A != 0 {
		st = st.Background(lipgloss.Color(s.BG.Hex()))
	}
	return st
}
