// Package syntax compiles language definitions and highlights lines with
// them, either one line at a time or incrementally for a whole document.
package syntax

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zjrosen/scribe/internal/pattern"
)

// Kind is the highlight class of a token.
type Kind uint8

const (
	Normal Kind = iota
	Comment
	Keyword
	Function
	Number
	Symbol
	String
	Meta
	// Custom tokens carry their own color.
	Custom
)

var kindNames = map[string]Kind{
	"normal":   Normal,
	"comment":  Comment,
	"keyword":  Keyword,
	"function": Function,
	"number":   Number,
	"symbol":   Symbol,
	"string":   String,
	"meta":     Meta,
}

func (k Kind) String() string {
	for name, v := range kindNames {
		if v == k {
			return name
		}
	}
	if k == Custom {
		return "custom"
	}
	return "unknown"
}

// Style pairs a Kind with the color used when the Kind is Custom.
type Style struct {
	Kind  Kind
	Color uint32 // 0xRRGGBBAA
}

// ParseStyle reads a kind name or a "#RRGGBB[AA]" custom color.
func ParseStyle(s string) (Style, error) {
	s = strings.TrimSpace(s)
	if k, ok := kindNames[strings.ToLower(s)]; ok {
		return Style{Kind: k}, nil
	}
	hex := strings.TrimPrefix(s, "#")
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) == 8 {
		if v, err := strconv.ParseUint(hex, 16, 32); err == nil {
			return Style{Kind: Custom, Color: uint32(v)}, nil
		}
	}
	return Style{}, fmt.Errorf("unknown token kind %q", s)
}

// Token is a highlighted byte range [Start, End) of one line.
type Token struct {
	Start int
	End   int
	Style Style
}

// TokenDef is the configured form of a token rule.
type TokenDef struct {
	Pattern string `mapstructure:"pattern" toml:"pattern"`
	Kind    string `mapstructure:"kind" toml:"kind"`
}

// RangeDef is the configured form of a range rule. Escape, when set, is a
// literal that makes the following grapheme part of the range.
type RangeDef struct {
	Start  string `mapstructure:"start" toml:"start"`
	End    string `mapstructure:"end" toml:"end"`
	Escape string `mapstructure:"escape" toml:"escape,omitempty"`
	Kind   string `mapstructure:"kind" toml:"kind"`
}

// Definition is one [[languages]] entry of the configuration.
type Definition struct {
	Name                  string     `mapstructure:"name" toml:"name"`
	Extensions            []string   `mapstructure:"extensions" toml:"extensions"`
	Comment               string     `mapstructure:"comment" toml:"comment,omitempty"`
	Indent                string     `mapstructure:"indent" toml:"indent,omitempty"`
	Keywords              []string   `mapstructure:"keywords" toml:"keywords,omitempty"`
	Tokens                []TokenDef `mapstructure:"tokens" toml:"tokens,omitempty"`
	Ranges                []RangeDef `mapstructure:"ranges" toml:"ranges,omitempty"`
	LanguageServerCommand []string   `mapstructure:"language_server_command" toml:"language_server_command,omitempty"`
}

// TokenRule is a compiled token pattern.
type TokenRule struct {
	Pattern *pattern.Pattern
	Style   Style
}

// RangeRule is a compiled range that may span lines.
type RangeRule struct {
	Start  *pattern.Pattern
	End    *pattern.Pattern
	Escape string
	Style  Style
}

// Syntax is a compiled language definition.
type Syntax struct {
	Name           string
	Extensions     []string
	Comment        string
	Indent         string
	Keywords       map[string]struct{}
	Tokens         []TokenRule
	Ranges         []RangeRule
	LanguageServer []string
}

// InvalidPatternError reports a definition whose pattern or kind does not
// compile. The language is skipped.
type InvalidPatternError struct {
	Language string
	Pattern  string
	Err      error
}

func (e *InvalidPatternError) Error() string {
	return fmt.Sprintf("language %s: pattern %q: %v", e.Language, e.Pattern, e.Err)
}

func (e *InvalidPatternError) Unwrap() error { return e.Err }

// Compile turns a definition into a Syntax.
func Compile(def Definition) (*Syntax, error) {
	s := &Syntax{
		Name:           def.Name,
		Extensions:     def.Extensions,
		Comment:        def.Comment,
		Indent:         def.Indent,
		Keywords:       make(map[string]struct{}, len(def.Keywords)),
		LanguageServer: def.LanguageServerCommand,
	}
	for _, k := range def.Keywords {
		s.Keywords[k] = struct{}{}
	}
	fail := func(pat string, err error) (*Syntax, error) {
		return nil, &InvalidPatternError{Language: def.Name, Pattern: pat, Err: err}
	}
	for _, t := range def.Tokens {
		p, err := pattern.Compile(t.Pattern)
		if err != nil {
			return fail(t.Pattern, err)
		}
		st, err := ParseStyle(t.Kind)
		if err != nil {
			return fail(t.Pattern, err)
		}
		s.Tokens = append(s.Tokens, TokenRule{Pattern: p, Style: st})
	}
	for _, r := range def.Ranges {
		start, err := pattern.Compile(r.Start)
		if err != nil {
			return fail(r.Start, err)
		}
		end, err := pattern.Compile(r.End)
		if err != nil {
			return fail(r.End, err)
		}
		st, err := ParseStyle(r.Kind)
		if err != nil {
			return fail(r.Start, err)
		}
		s.Ranges = append(s.Ranges, RangeRule{Start: start, End: end, Escape: r.Escape, Style: st})
	}
	return s, nil
}

// IsKeyword reports whether word is in the keyword set.
func (s *Syntax) IsKeyword(word string) bool {
	_, ok := s.Keywords[word]
	return ok
}
