package pattern

import "unicode/utf8"

type span struct{ start, end int }

type matcher struct {
	p    *Pattern
	text string
	caps []span
}

func (m *matcher) run(pos, idx int) (int, bool) {
	if idx == len(m.p.items) {
		if m.p.endAnchor && pos != len(m.text) {
			return 0, false
		}
		return pos, true
	}
	it := m.p.items[idx]
	switch it.kind {
	case itemOpen:
		old := m.caps[it.capture]
		m.caps[it.capture] = span{start: pos, end: -1}
		if e, ok := m.run(pos, idx+1); ok {
			return e, true
		}
		m.caps[it.capture] = old
		return 0, false
	case itemClose:
		old := m.caps[it.capture].end
		m.caps[it.capture].end = pos
		if e, ok := m.run(pos, idx+1); ok {
			return e, true
		}
		m.caps[it.capture].end = old
		return 0, false
	}

	switch it.quant {
	case optional:
		if n := m.single(it, pos); n > 0 {
			if e, ok := m.run(pos+n, idx+1); ok {
				return e, true
			}
		}
		return m.run(pos, idx+1)
	case star, plus:
		stops := []int{pos}
		for p := pos; ; {
			n := m.single(it, p)
			if n == 0 {
				break
			}
			p += n
			stops = append(stops, p)
		}
		least := 0
		if it.quant == plus {
			least = 1
		}
		for k := len(stops) - 1; k >= least; k-- {
			if e, ok := m.run(stops[k], idx+1); ok {
				return e, true
			}
		}
		return 0, false
	case lazy:
		for p := pos; ; {
			if e, ok := m.run(p, idx+1); ok {
				return e, true
			}
			n := m.single(it, p)
			if n == 0 {
				return 0, false
			}
			p += n
		}
	default:
		if n := m.single(it, pos); n > 0 {
			return m.run(pos+n, idx+1)
		}
		return 0, false
	}
}

// single returns the byte length of the rune at pos when it matches, else 0.
func (m *matcher) single(it item, pos int) int {
	if pos >= len(m.text) {
		return 0
	}
	r, size := utf8.DecodeRuneInString(m.text[pos:])
	if !it.match(r) {
		return 0
	}
	return size
}

func (p *Pattern) newMatcher(text string) *matcher {
	return &matcher{p: p, text: text, caps: make([]span, p.captures)}
}

func (m *matcher) result(start, end int) (int, int) {
	if len(m.caps) > 0 && m.caps[0].end >= 0 {
		return m.caps[0].start, m.caps[0].end
	}
	return start, end
}

// Match finds the leftmost match in text at or after byte offset start. It
// returns the bounds of the first capture when the pattern has one, else the
// bounds of the whole match. A pattern starting with ^ only matches at start.
func (p *Pattern) Match(text string, start int) (int, int, bool) {
	if start < 0 {
		start = 0
	}
	if start > len(text) {
		return 0, 0, false
	}
	m := p.newMatcher(text)
	for s := start; s <= len(text); {
		for i := range m.caps {
			m.caps[i] = span{start: -1, end: -1}
		}
		if e, ok := m.run(s, 0); ok {
			cs, ce := m.result(s, e)
			return cs, ce, true
		}
		if p.anchored || s == len(text) {
			break
		}
		_, size := utf8.DecodeRuneInString(text[s:])
		s += size
	}
	return 0, 0, false
}

// MatchAt reports whether the pattern matches starting exactly at at, and
// where the whole match ends.
func (p *Pattern) MatchAt(text string, at int) (int, bool) {
	if at < 0 || at > len(text) {
		return 0, false
	}
	m := p.newMatcher(text)
	for i := range m.caps {
		m.caps[i] = span{start: -1, end: -1}
	}
	return m.run(at, 0)
}

// MatchString reports whether text contains a match.
func (p *Pattern) MatchString(text string) bool {
	_, _, ok := p.Match(text, 0)
	return ok
}
