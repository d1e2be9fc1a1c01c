package terminal

import (
	"strings"
	"unicode/utf8"
)

// State is the parser's position inside an escape sequence.
type State uint8

const (
	Ground State = iota
	Escape
	Csi
	Osc
	DcsIgnore
)

func (s State) String() string {
	switch s {
	case Ground:
		return "ground"
	case Escape:
		return "escape"
	case Csi:
		return "csi"
	case Osc:
		return "osc"
	case DcsIgnore:
		return "dcs"
	default:
		return "unknown"
	}
}

const (
	maxParams = 32
	maxParam  = 65535
	maxOsc    = 4096
)

// csiSeq is a complete control sequence. A zero parameter means "default".
type csiSeq struct {
	params  []int
	private byte
	inter   byte
	final   byte
}

func (c csiSeq) param(i, def int) int {
	if i < len(c.params) && c.params[i] != 0 {
		return c.params[i]
	}
	return def
}

// performer receives what the parser recognises.
type performer interface {
	print(text string)
	execute(b byte)
	escDispatch(inter, final byte)
	csiDispatch(seq csiSeq)
	oscDispatch(data string)
}

// Parser turns a byte stream into performer calls. Its state survives
// between Feed calls so sequences split across reads are handled.
type Parser struct {
	state State
	perf  performer

	text []byte

	params  []int
	cur     int
	private byte
	inter   byte

	osc       []byte
	sawEscape bool
}

var transitions = [...]func(*Parser, byte){
	Ground:    (*Parser).ground,
	Escape:    (*Parser).escape,
	Csi:       (*Parser).csi,
	Osc:       (*Parser).oscString,
	DcsIgnore: (*Parser).dcs,
}

func newParser(perf performer) *Parser {
	return &Parser{perf: perf, params: make([]int, 0, maxParams)}
}

// State returns the current parser state.
func (p *Parser) State() State { return p.state }

// Feed consumes data. An incomplete UTF-8 sequence at the end is held until
// the next call.
func (p *Parser) Feed(data []byte) {
	for _, b := range data {
		transitions[p.state](p, b)
	}
	p.flushText(false)
}

func (p *Parser) ground(b byte) {
	if b >= 0x20 && b != 0x7f {
		p.text = append(p.text, b)
		return
	}
	p.flushText(true)
	switch b {
	case 0x1b:
		p.enter(Escape)
	case 0x7f:
	default:
		p.perf.execute(b)
	}
}

// flushText prints buffered text. Unless complete is set, a trailing partial
// rune stays buffered.
func (p *Parser) flushText(complete bool) {
	if len(p.text) == 0 {
		return
	}
	cut := len(p.text)
	if !complete {
		cut -= partialSuffix(p.text)
	}
	if cut > 0 {
		p.perf.print(strings.ToValidUTF8(string(p.text[:cut]), "�"))
	}
	p.text = append(p.text[:0], p.text[cut:]...)
}

func partialSuffix(b []byte) int {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if utf8.RuneStart(b[i]) {
			if utf8.FullRune(b[i:]) {
				return 0
			}
			return len(b) - i
		}
	}
	return 0
}

func (p *Parser) enter(s State) {
	p.state = s
	switch s {
	case Escape:
		p.inter = 0
	case Csi:
		p.params = p.params[:0]
		p.cur = 0
		p.private = 0
		p.inter = 0
	case Osc:
		p.osc = p.osc[:0]
		p.sawEscape = false
	case DcsIgnore:
		p.sawEscape = false
	}
}

func (p *Parser) escape(b byte) {
	switch {
	case b == 0x1b:
		p.enter(Escape)
	case b == 0x18 || b == 0x1a:
		p.enter(Ground)
	case b < 0x20:
		p.perf.execute(b)
	case b <= 0x2f:
		p.inter = b
	case b == '[' && p.inter == 0:
		p.enter(Csi)
	case b == ']' && p.inter == 0:
		p.enter(Osc)
	case (b == 'P' || b == 'X' || b == '^' || b == '_') && p.inter == 0:
		p.enter(DcsIgnore)
	case b < 0x7f:
		p.perf.escDispatch(p.inter, b)
		p.enter(Ground)
	}
}

func (p *Parser) pushParam() {
	if len(p.params) < maxParams {
		p.params = append(p.params, p.cur)
	}
	p.cur = 0
}

func (p *Parser) csi(b byte) {
	switch {
	case b >= '0' && b <= '9':
		p.cur = min(p.cur*10+int(b-'0'), maxParam)
	case b == ';' || b == ':':
		p.pushParam()
	case b >= '<' && b <= '?':
		p.private = b
	case b >= 0x20 && b <= 0x2f:
		p.inter = b
	case b >= 0x40 && b <= 0x7e:
		p.pushParam()
		p.perf.csiDispatch(csiSeq{params: p.params, private: p.private, inter: p.inter, final: b})
		p.enter(Ground)
	case b == 0x1b:
		p.enter(Escape)
	case b == 0x18 || b == 0x1a:
		p.enter(Ground)
	case b < 0x20:
		p.perf.execute(b)
	}
}

func (p *Parser) oscString(b byte) {
	if p.sawEscape {
		p.perf.oscDispatch(string(p.osc))
		p.enter(Ground)
		if b != '\\' {
			p.enter(Escape)
			p.escape(b)
		}
		return
	}
	switch b {
	case 0x07:
		p.perf.oscDispatch(string(p.osc))
		p.enter(Ground)
	case 0x1b:
		p.sawEscape = true
	case 0x18, 0x1a:
		p.enter(Ground)
	default:
		if len(p.osc) < maxOsc {
			p.osc = append(p.osc, b)
		}
	}
}

func (p *Parser) dcs(b byte) {
	switch {
	case p.sawEscape && b == '\\':
		p.enter(Ground)
	case b == 0x1b:
		p.sawEscape = true
	case b == 0x18 || b == 0x1a:
		p.enter(Ground)
	default:
		p.sawEscape = false
	}
}
