package syntax

var cStyleRanges = []RangeDef{
	{Start: `/%*`, End: `%*/`, Kind: "comment"},
	{Start: `"`, End: `"`, Escape: `\`, Kind: "string"},
}

var commonTokens = []TokenDef{
	{Pattern: `0[xX]%x+`, Kind: "number"},
	{Pattern: `%d+.?%d*`, Kind: "number"},
	{Pattern: `[-+*/%%=<>!&|^~:;,.?]+`, Kind: "symbol"},
	{Pattern: `[%(%)%[%]{}]`, Kind: "symbol"},
}

// Builtin returns the languages available without configuration.
func Builtin() []Definition {
	return []Definition{
		{
			Name:       "Go",
			Extensions: []string{"go"},
			Comment:    "//",
			Indent:     "\t",
			Keywords: []string{
				"break", "case", "chan", "const", "continue", "default", "defer", "else",
				"fallthrough", "for", "func", "go", "goto", "if", "import", "interface",
				"map", "package", "range", "return", "select", "struct", "switch", "type",
				"var", "nil", "true", "false", "iota",
			},
			Tokens: append([]TokenDef{{Pattern: `//%.*`, Kind: "comment"}}, commonTokens...),
			Ranges: append([]RangeDef{
				{Start: "`", End: "`", Kind: "string"},
				{Start: `'`, End: `'`, Escape: `\`, Kind: "string"},
			}, cStyleRanges...),
			LanguageServerCommand: []string{"gopls"},
		},
		{
			Name:       "Rust",
			Extensions: []string{"rs"},
			Comment:    "//",
			Indent:     "    ",
			Keywords: []string{
				"as", "break", "const", "continue", "crate", "else", "enum", "extern",
				"false", "fn", "for", "if", "impl", "in", "let", "loop", "match", "mod",
				"move", "mut", "pub", "ref", "return", "self", "Self", "static", "struct",
				"super", "trait", "true", "type", "unsafe", "use", "where", "while",
			},
			Tokens: append([]TokenDef{
				{Pattern: `//%.*`, Kind: "comment"},
				{Pattern: `#!?%[[^%]]*%]`, Kind: "meta"},
			}, commonTokens...),
			Ranges:                cStyleRanges,
			LanguageServerCommand: []string{"rust-analyzer"},
		},
		{
			Name:       "Python",
			Extensions: []string{"py"},
			Comment:    "#",
			Indent:     "    ",
			Keywords: []string{
				"and", "as", "assert", "break", "class", "continue", "def", "del", "elif",
				"else", "except", "False", "finally", "for", "from", "global", "if",
				"import", "in", "is", "lambda", "None", "not", "or", "pass", "raise",
				"return", "True", "try", "while", "with", "yield",
			},
			Tokens: append([]TokenDef{
				{Pattern: `#%.*`, Kind: "comment"},
				{Pattern: `@%w+`, Kind: "meta"},
			}, commonTokens...),
			Ranges: []RangeDef{
				{Start: `"""`, End: `"""`, Kind: "string"},
				{Start: `"`, End: `"`, Escape: `\`, Kind: "string"},
				{Start: `'`, End: `'`, Escape: `\`, Kind: "string"},
			},
		},
		{
			Name:       "Shell",
			Extensions: []string{"sh", "bash", "zsh"},
			Comment:    "#",
			Indent:     "  ",
			Keywords: []string{
				"if", "then", "else", "elif", "fi", "for", "in", "do", "done", "while",
				"case", "esac", "function", "return", "local", "export",
			},
			Tokens: []TokenDef{
				{Pattern: `#%.*`, Kind: "comment"},
				{Pattern: `%$[%w_{}@#?]+`, Kind: "meta"},
			},
			Ranges: []RangeDef{
				{Start: `"`, End: `"`, Escape: `\`, Kind: "string"},
				{Start: `'`, End: `'`, Kind: "string"},
			},
		},
		{
			Name:       "TOML",
			Extensions: []string{"toml"},
			Comment:    "#",
			Indent:     "  ",
			Keywords:   []string{"true", "false"},
			Tokens: []TokenDef{
				{Pattern: `#%.*`, Kind: "comment"},
				{Pattern: `^%[+[^%]]+%]+`, Kind: "meta"},
				{Pattern: `%d+.?%d*`, Kind: "number"},
				{Pattern: `=`, Kind: "symbol"},
			},
			Ranges: []RangeDef{
				{Start: `"`, End: `"`, Escape: `\`, Kind: "string"},
				{Start: `'`, End: `'`, Kind: "string"},
			},
		},
	}
}
