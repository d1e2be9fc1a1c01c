package terminal

// ColorMode says how a Color is encoded.
type ColorMode uint8

const (
	ColorDefault ColorMode = iota
	// ColorIndexed is one of the 256 palette entries; 0-15 are the ANSI colors.
	ColorIndexed
	ColorRGB
)

// Color is a cell foreground or background.
type Color struct {
	Mode    ColorMode
	Index   uint8
	R, G, B uint8
}

// Indexed returns palette color i.
func Indexed(i uint8) Color { return Color{Mode: ColorIndexed, Index: i} }

// RGB returns a true color.
func RGB(r, g, b uint8) Color { return Color{Mode: ColorRGB, R: r, G: g, B: b} }

// Attr is a set of text attributes.
type Attr uint8

const (
	Bold Attr = 1 << iota
	Italic
	Underline
	Inverse
)

// Style is the graphic rendition of a cell.
type Style struct {
	FG   Color
	BG   Color
	Attr Attr
}

// IsDefault reports whether s is the reset rendition.
func (s Style) IsDefault() bool { return s == Style{} }

// applySGR updates s from the parameters of a CSI m sequence.
func (s *Style) applySGR(params []int) {
	if len(params) == 0 {
		params = []int{0}
	}
	for i := 0; i < len(params); i++ {
		p := params[i]
		switch {
		case p == 0:
			*s = Style{}
		case p == 1:
			s.Attr |= Bold
		case p == 3:
			s.Attr |= Italic
		case p == 4:
			s.Attr |= Underline
		case p == 7:
			s.Attr |= Inverse
		case p == 22:
			s.Attr &^= Bold
		case p == 23:
			s.Attr &^= Italic
		case p == 24:
			s.Attr &^= Underline
		case p == 27:
			s.Attr &^= Inverse
		case p >= 30 && p <= 37:
			s.FG = Indexed(uint8(p - 30))
		case p == 38:
			c, n, ok := extendedColor(params[i+1:])
			if ok {
				s.FG = c
			}
			i += n
		case p == 39:
			s.FG = Color{}
		case p >= 40 && p <= 47:
			s.BG = Indexed(uint8(p - 40))
		case p == 48:
			c, n, ok := extendedColor(params[i+1:])
			if ok {
				s.BG = c
			}
			i += n
		case p == 49:
			s.BG = Color{}
		case p >= 90 && p <= 97:
			s.FG = Indexed(uint8(p - 90 + 8))
		case p >= 100 && p <= 107:
			s.BG = Indexed(uint8(p - 100 + 8))
		}
	}
}

// extendedColor decodes "5;n" or "2;r;g;b" and returns how many parameters
// it consumed. ok is false when a component is outside 0-255; the
// parameters are still consumed.
func extendedColor(params []int) (c Color, n int, ok bool) {
	if len(params) >= 2 && params[0] == 5 {
		if !inByte(params[1]) {
			return Color{}, 2, false
		}
		return Indexed(uint8(params[1])), 2, true
	}
	if len(params) >= 4 && params[0] == 2 {
		if !inByte(params[1]) || !inByte(params[2]) || !inByte(params[3]) {
			return Color{}, 4, false
		}
		return RGB(uint8(params[1]), uint8(params[2]), uint8(params[3])), 4, true
	}
	return Color{}, 0, false
}

func inByte(v int) bool { return v >= 0 && v <= 255 }
