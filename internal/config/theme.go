package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/spf13/viper"

	"github.com/zjrosen/scribe/internal/log"
	"github.com/zjrosen/scribe/internal/syntax"
)

// Color is an RGBA color.
type Color struct {
	R, G, B, A uint8
}

// RGB returns an opaque color.
func RGB(r, g, b uint8) Color { return Color{R: r, G: g, B: b, A: 0xff} }

// ParseColor reads RRGGBB or RRGGBBAA, with an optional leading '#'.
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return Color{}, fmt.Errorf("color %q: want RRGGBB or RRGGBBAA", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("color %q: %w", s, err)
	}
	if len(hex) == 6 {
		v = v<<8 | 0xff
	}
	return Color{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}

// FromUint32 converts a 0xRRGGBBAA value.
func FromUint32(v uint32) Color {
	return Color{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}
}

// Hex returns "#rrggbb", dropping alpha.
func (c Color) Hex() string { return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B) }

// Theme is the resolved palette.
type Theme struct {
	Normal     Color
	Comment    Color
	Keyword    Color
	Function   Color
	Number     Color
	Symbol     Color
	String     Color
	Meta       Color
	Selection  Color
	LineNumber Color
	Border     Color
	Background Color
	Subtle     Color
	Error      Color
	Warning    Color

	// Terminal holds the 16 ANSI colors followed by foreground and
	// background.
	Terminal [18]Color
}

// ansiNames index Theme.Terminal.
var ansiNames = [18]string{
	"black", "red", "green", "yellow", "blue", "magenta", "cyan", "white",
	"bright_black", "bright_red", "bright_green", "bright_yellow",
	"bright_blue", "bright_magenta", "bright_cyan", "bright_white",
	"foreground", "background",
}

// slot maps a color key to its field.
func (t *Theme) slot(key string) *Color {
	switch key {
	case "normal":
		return &t.Normal
	case "comment":
		return &t.Comment
	case "keyword":
		return &t.Keyword
	case "function":
		return &t.Function
	case "number":
		return &t.Number
	case "symbol":
		return &t.Symbol
	case "string":
		return &t.String
	case "meta":
		return &t.Meta
	case "selection":
		return &t.Selection
	case "line_number":
		return &t.LineNumber
	case "border":
		return &t.Border
	case "background":
		return &t.Background
	case "subtle":
		return &t.Subtle
	case "error":
		return &t.Error
	case "warning":
		return &t.Warning
	}
	if name, ok := strings.CutPrefix(key, "terminal."); ok {
		for i, n := range ansiNames {
			if n == name {
				return &t.Terminal[i]
			}
		}
	}
	return nil
}

// Apply overrides colors by key. Unknown keys and malformed colors are
// returned as one joined error; the valid keys still apply.
func (t *Theme) Apply(colors map[string]string) error {
	keys := make([]string, 0, len(colors))
	for k := range colors {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var errs []error
	for _, k := range keys {
		dst := t.slot(k)
		if dst == nil {
			errs = append(errs, &ValidationError{Field: "theme." + k, Message: "unknown color"})
			continue
		}
		c, err := ParseColor(colors[k])
		if err != nil {
			errs = append(errs, &ValidationError{Field: "theme." + k, Message: err.Error()})
			continue
		}
		*dst = c
	}
	return errors.Join(errs...)
}

// Syntax returns the color for a highlight style.
func (t Theme) Syntax(s syntax.Style) Color {
	switch s.Kind {
	case syntax.Comment:
		return t.Comment
	case syntax.Keyword:
		return t.Keyword
	case syntax.Function:
		return t.Function
	case syntax.Number:
		return t.Number
	case syntax.Symbol:
		return t.Symbol
	case syntax.String:
		return t.String
	case syntax.Meta:
		return t.Meta
	case syntax.Custom:
		return FromUint32(s.Color)
	}
	return t.Normal
}

// DefaultTheme is the built-in dark palette.
func DefaultTheme() Theme {
	return Theme{
		Normal:     RGB(0xd4, 0xd4, 0xd4),
		Comment:    RGB(0x6a, 0x99, 0x55),
		Keyword:    RGB(0xc5, 0x86, 0xc0),
		Function:   RGB(0xdc, 0xdc, 0xaa),
		Number:     RGB(0xb5, 0xce, 0xa8),
		Symbol:     RGB(0xd4, 0xd4, 0xd4),
		String:     RGB(0xce, 0x91, 0x78),
		Meta:       RGB(0x56, 0x9c, 0xd6),
		Selection:  RGB(0x26, 0x4f, 0x78),
		LineNumber: RGB(0x85, 0x85, 0x85),
		Border:     RGB(0x44, 0x44, 0x44),
		Background: RGB(0x1e, 0x1e, 0x1e),
		Subtle:     RGB(0x30, 0x30, 0x30),
		Error:      RGB(0xf4, 0x47, 0x47),
		Warning:    RGB(0xcc, 0xa7, 0x00),
		Terminal: [18]Color{
			RGB(0x00, 0x00, 0x00), RGB(0xcd, 0x31, 0x31), RGB(0x0d, 0xbc, 0x79), RGB(0xe5, 0xe5, 0x10),
			RGB(0x24, 0x72, 0xc8), RGB(0xbc, 0x3f, 0xbc), RGB(0x11, 0xa8, 0xcd), RGB(0xe5, 0xe5, 0xe5),
			RGB(0x66, 0x66, 0x66), RGB(0xf1, 0x4c, 0x4c), RGB(0x23, 0xd1, 0x8b), RGB(0xf5, 0xf5, 0x43),
			RGB(0x3b, 0x8e, 0xea), RGB(0xd6, 0x70, 0xd6), RGB(0x29, 0xb8, 0xdb), RGB(0xe5, 0xe5, 0xe5),
			RGB(0xd4, 0xd4, 0xd4), RGB(0x1e, 0x1e, 0x1e),
		},
	}
}

func fromChroma(c chroma.Colour, fallback Color) Color {
	if !c.IsSet() {
		return fallback
	}
	return RGB(c.Red(), c.Green(), c.Blue())
}

// ChromaTheme seeds a palette from a chroma style. The second result is
// false when no style has that name.
func ChromaTheme(name string) (Theme, bool) {
	style, ok := styles.Registry[strings.ToLower(name)]
	if !ok {
		return Theme{}, false
	}
	t := DefaultTheme()
	text := style.Get(chroma.Text)
	bg := style.Get(chroma.Background)
	t.Normal = fromChroma(text.Colour, t.Normal)
	t.Background = fromChroma(bg.Background, t.Background)
	t.Comment = fromChroma(style.Get(chroma.Comment).Colour, t.Comment)
	t.Keyword = fromChroma(style.Get(chroma.Keyword).Colour, t.Keyword)
	t.Function = fromChroma(style.Get(chroma.NameFunction).Colour, t.Function)
	t.Number = fromChroma(style.Get(chroma.LiteralNumber).Colour, t.Number)
	t.Symbol = fromChroma(style.Get(chroma.Operator).Colour, t.Normal)
	t.String = fromChroma(style.Get(chroma.LiteralString).Colour, t.String)
	t.Meta = fromChroma(style.Get(chroma.CommentPreproc).Colour, t.Meta)
	t.LineNumber = fromChroma(style.Get(chroma.LineNumbers).Colour, t.LineNumber)
	t.Selection = fromChroma(style.Get(chroma.LineHighlight).Background, t.Selection)
	t.Error = fromChroma(style.Get(chroma.Error).Colour, t.Error)
	t.Terminal[16] = t.Normal
	t.Terminal[17] = t.Background
	return t, true
}

// themeFile returns the colors of dir/themes/<name>.toml.
func themeFile(dir, name string) (map[string]string, error) {
	path := filepath.Join(dir, "themes", name+".toml")
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	v := viper.New()
	v.SetConfigType("toml")
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading theme %s: %w", path, err)
	}
	colors := make(map[string]string)
	flattenColors("", v.AllSettings(), colors)
	return colors, nil
}

// ResolveTheme builds the palette for tc. A named theme is looked up as a
// file beside the config first, then as a chroma style; explicit colors
// override either.
func ResolveTheme(tc ThemeConfig, dir string) (Theme, error) {
	t := DefaultTheme()
	if tc.Name != "" {
		colors, err := themeFile(dir, tc.Name)
		switch {
		case err == nil:
			if err := t.Apply(colors); err != nil {
				return Theme{}, fmt.Errorf("theme %s: %w", tc.Name, err)
			}
		case errors.Is(err, os.ErrNotExist):
			ct, ok := ChromaTheme(tc.Name)
			if !ok {
				return Theme{}, &ValidationError{Field: "theme", Message: fmt.Sprintf("unknown theme %q", tc.Name)}
			}
			t = ct
		default:
			return Theme{}, err
		}
		log.Debug(log.CatConfig, "resolved theme", "name", tc.Name)
	}
	if err := t.Apply(tc.FlattenedColors()); err != nil {
		return Theme{}, err
	}
	return t, nil
}
