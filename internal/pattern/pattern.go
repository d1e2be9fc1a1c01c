// Package pattern implements the small Lua-style pattern language used by
// syntax definitions.
//
// Supported syntax:
//
//	%a %d %x %s %w %u %l %p %c   letter, digit, hex, space, alnum, upper, lower, punct, control
//	%A ... %C                    negated classes
//	%.                           any character
//	%<other>                     the literal <other>
//	[set] [^set]                 sets with ranges (a-z) and classes
//	+ * ? -                      greedy one-or-more, zero-or-more, optional, lazy zero-or-more
//	( )                          capture; the match reports the first capture when present
//	^ $                          anchors at the start or end of the pattern
//
// Matching works on runes and reports byte offsets.
package pattern

import (
	"errors"
	"fmt"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/zjrosen/scribe/internal/cachemanager"
)

// ErrorKind classifies compile failures.
type ErrorKind int

const (
	InvalidClass ErrorKind = iota
	UnterminatedClass
	TrailingEscape
	UnbalancedCapture
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidClass:
		return "invalid class"
	case UnterminatedClass:
		return "unterminated class"
	case TrailingEscape:
		return "trailing escape"
	case UnbalancedCapture:
		return "unbalanced capture"
	default:
		return "unknown"
	}
}

// Error reports where a pattern failed to compile.
type Error struct {
	Kind    ErrorKind
	Pattern string
	Offset  int
}

func (e *Error) Error() string {
	return fmt.Sprintf("pattern %q: %s at offset %d", e.Pattern, e.Kind, e.Offset)
}

type quantifier byte

const (
	once     quantifier = 0
	plus     quantifier = '+'
	star     quantifier = '*'
	optional quantifier = '?'
	lazy     quantifier = '-'
)

type itemKind int

const (
	itemSingle itemKind = iota
	itemOpen
	itemClose
)

type item struct {
	kind  itemKind
	match func(rune) bool
	quant quantifier
	// capture index for itemOpen and itemClose
	capture int
}

// Pattern is a compiled pattern. It is safe for concurrent use.
type Pattern struct {
	source    string
	items     []item
	anchored  bool
	endAnchor bool
	captures  int
}

// String returns the source text.
func (p *Pattern) String() string { return p.source }

var compiled = cachemanager.NewReadThroughCache[string, *Pattern](
	cachemanager.NewInMemoryCacheManager[string, *Pattern]("patterns", time.Hour, cachemanager.DefaultCleanupInterval),
	0,
	compile,
)

// Compile parses src, reusing a cached result when the same source was
// compiled recently.
func Compile(src string) (*Pattern, error) {
	return compiled.Get(src)
}

// MustCompile is Compile that panics on error.
func MustCompile(src string) *Pattern {
	p, err := Compile(src)
	if err != nil {
		panic(err)
	}
	return p
}

func compile(src string) (*Pattern, error) {
	p := &Pattern{source: src}
	s := src
	off := 0
	if len(s) > 0 && s[0] == '^' {
		p.anchored = true
		s, off = s[1:], 1
	}
	var open []int
	for len(s) > 0 {
		switch {
		case s[0] == '(':
			p.items = append(p.items, item{kind: itemOpen, capture: p.captures})
			open = append(open, p.captures)
			p.captures++
			s, off = s[1:], off+1
			continue
		case s[0] == ')':
			if len(open) == 0 {
				return nil, &Error{Kind: UnbalancedCapture, Pattern: src, Offset: off}
			}
			p.items = append(p.items, item{kind: itemClose, capture: open[len(open)-1]})
			open = open[:len(open)-1]
			s, off = s[1:], off+1
			continue
		case s[0] == '$' && len(s) == 1:
			p.endAnchor = true
			s, off = s[1:], off+1
			continue
		}

		m, n, err := parseSingle(src, s, off)
		if err != nil {
			return nil, err
		}
		s, off = s[n:], off+n
		it := item{kind: itemSingle, match: m}
		if len(s) > 0 {
			switch q := quantifier(s[0]); q {
			case plus, star, optional, lazy:
				it.quant = q
				s, off = s[1:], off+1
			}
		}
		p.items = append(p.items, it)
	}
	if len(open) != 0 {
		return nil, &Error{Kind: UnbalancedCapture, Pattern: src, Offset: off}
	}
	return p, nil
}

// parseSingle parses one single-character matcher at the start of s and
// returns it with the number of bytes consumed.
func parseSingle(src, s string, off int) (func(rune) bool, int, error) {
	switch s[0] {
	case '%':
		if len(s) == 1 {
			return nil, 0, &Error{Kind: TrailingEscape, Pattern: src, Offset: off}
		}
		r, size := utf8.DecodeRuneInString(s[1:])
		m, err := escapeMatcher(r)
		if err != nil {
			return nil, 0, &Error{Kind: InvalidClass, Pattern: src, Offset: off}
		}
		return m, 1 + size, nil
	case '[':
		return parseSet(src, s, off)
	default:
		r, size := utf8.DecodeRuneInString(s)
		return func(c rune) bool { return c == r }, size, nil
	}
}

var errUnknownClass = errors.New("unknown class")

func classMatcher(r rune) (func(rune) bool, bool) {
	var f func(rune) bool
	switch unicode.ToLower(r) {
	case 'a':
		f = unicode.IsLetter
	case 'd':
		f = func(c rune) bool { return c >= '0' && c <= '9' }
	case 'x':
		f = func(c rune) bool {
			return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
		}
	case 's':
		f = unicode.IsSpace
	case 'w':
		f = func(c rune) bool { return unicode.IsLetter(c) || unicode.IsDigit(c) }
	case 'u':
		f = unicode.IsUpper
	case 'l':
		f = unicode.IsLower
	case 'p':
		f = func(c rune) bool { return unicode.IsPunct(c) || unicode.IsSymbol(c) }
	case 'c':
		f = unicode.IsControl
	default:
		return nil, false
	}
	if unicode.IsUpper(r) {
		return func(c rune) bool { return !f(c) }, true
	}
	return f, true
}

func escapeMatcher(r rune) (func(rune) bool, error) {
	if r == '.' {
		return func(rune) bool { return true }, nil
	}
	if m, ok := classMatcher(r); ok {
		return m, nil
	}
	if unicode.IsLetter(r) || unicode.IsDigit(r) {
		return nil, errUnknownClass
	}
	return func(c rune) bool { return c == r }, nil
}

type setRange struct{ lo, hi rune }

func parseSet(src, s string, off int) (func(rune) bool, int, error) {
	i := 1
	negate := false
	if i < len(s) && s[i] == '^' {
		negate = true
		i++
	}
	var ranges []setRange
	var classes []func(rune) bool
	first := true
	for {
		if i >= len(s) {
			return nil, 0, &Error{Kind: UnterminatedClass, Pattern: src, Offset: off}
		}
		if s[i] == ']' && !first {
			i++
			break
		}
		first = false
		if s[i] == '%' {
			if i+1 >= len(s) {
				return nil, 0, &Error{Kind: UnterminatedClass, Pattern: src, Offset: off}
			}
			r, size := utf8.DecodeRuneInString(s[i+1:])
			m, err := escapeMatcher(r)
			if err != nil {
				return nil, 0, &Error{Kind: InvalidClass, Pattern: src, Offset: off + i}
			}
			classes = append(classes, m)
			i += 1 + size
			continue
		}
		lo, size := utf8.DecodeRuneInString(s[i:])
		i += size
		hi := lo
		if i+1 < len(s) && s[i] == '-' && s[i+1] != ']' {
			r, size := utf8.DecodeRuneInString(s[i+1:])
			hi = r
			i += 1 + size
		}
		ranges = append(ranges, setRange{lo: lo, hi: hi})
	}
	m := func(c rune) bool {
		for _, r := range ranges {
			if c >= r.lo && c <= r.hi {
				return !negate
			}
		}
		for _, f := range classes {
			if f(c) {
				return !negate
			}
		}
		return negate
	}
	return m, i, nil
}
