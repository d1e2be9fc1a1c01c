package syntax

import (
	"strings"

	"github.com/zjrosen/scribe/internal/grapheme"
)

// NoRange is the open-range value of a line that ends outside any range.
const NoRange = -1

// HighlightLine tokenizes line. open is the index of the range left open by
// the previous line, or NoRange. It returns the tokens, which are sorted and
// non-overlapping, and the range left open at the end of this line.
func (s *Syntax) HighlightLine(line string, open int) ([]Token, int) {
	var tokens []Token
	emit := func(start, end int, st Style) {
		if end > start {
			tokens = append(tokens, Token{Start: start, End: end, Style: st})
		}
	}

	pos := 0
	if open >= 0 && open < len(s.Ranges) {
		r := s.Ranges[open]
		end, closed := r.scanEnd(line, 0)
		emit(0, end, r.Style)
		if !closed {
			return tokens, open
		}
		pos = end
	}

scan:
	for pos < len(line) {
		for i, r := range s.Ranges {
			e, ok := r.Start.MatchAt(line, pos)
			if !ok || e <= pos {
				continue
			}
			end, closed := r.scanEnd(line, e)
			emit(pos, end, r.Style)
			if !closed {
				return tokens, i
			}
			pos = end
			continue scan
		}
		for _, t := range s.Tokens {
			if e, ok := t.Pattern.MatchAt(line, pos); ok && e > pos {
				emit(pos, e, t.Style)
				pos = e
				continue scan
			}
		}
		g, _ := grapheme.At(line, pos)
		if grapheme.CategoryOf(g) == grapheme.Identifier {
			end := identifierEnd(line, pos)
			word := line[pos:end]
			switch {
			case s.IsKeyword(word):
				emit(pos, end, Style{Kind: Keyword})
			case strings.HasPrefix(strings.TrimLeft(line[end:], " \t"), "("):
				emit(pos, end, Style{Kind: Function})
			}
			pos = end
			continue
		}
		next, ok := grapheme.Next(line, pos)
		if !ok {
			break
		}
		pos = next
	}
	return tokens, NoRange
}

func identifierEnd(line string, pos int) int {
	for pos < len(line) {
		g, ok := grapheme.At(line, pos)
		if !ok || grapheme.CategoryOf(g) != grapheme.Identifier {
			break
		}
		pos += len(g)
	}
	return pos
}

// scanEnd looks for the range's end pattern from from. It returns the end of
// the closing match, or len(line) when the range stays open.
func (r RangeRule) scanEnd(line string, from int) (int, bool) {
	p := from
	for p <= len(line) {
		if r.Escape != "" && strings.HasPrefix(line[p:], r.Escape) {
			p += len(r.Escape)
			if next, ok := grapheme.Next(line, p); ok {
				p = next
			}
			continue
		}
		if e, ok := r.End.MatchAt(line, p); ok {
			return e, true
		}
		next, ok := grapheme.Next(line, p)
		if !ok {
			break
		}
		p = next
	}
	return len(line), false
}
