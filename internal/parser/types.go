package parser

type TokenType int

const (
	// Special tokens
	ILLEGAL TokenType = iota
	EOF

	// Identifiers + literals
	IDENTIFIER
	LITERAL

	// %name and the %% section separator
	DIRECTIVE
	SECTION

	// Raw { ... } action text
	ACTION

	// Rule punctuation
	COLON
	PIPE
	SEMICOLON
	QUESTION
	STAR
	PLUS

	// Brackets
	LEFT_PAREN
	RIGHT_PAREN
	LEFT_BRACKET
	RIGHT_BRACKET
)

var tokenTypeNames = [...]string{
	ILLEGAL:       "ILLEGAL",
	EOF:           "EOF",
	IDENTIFIER:    "IDENTIFIER",
	LITERAL:       "LITERAL",
	DIRECTIVE:     "DIRECTIVE",
	SECTION:       "SECTION",
	ACTION:        "ACTION",
	COLON:         "COLON",
	PIPE:          "PIPE",
	SEMICOLON:     "SEMICOLON",
	QUESTION:      "QUESTION",
	STAR:          "STAR",
	PLUS:          "PLUS",
	LEFT_PAREN:    "LEFT_PAREN",
	RIGHT_PAREN:   "RIGHT_PAREN",
	LEFT_BRACKET:  "LEFT_BRACKET",
	RIGHT_BRACKET: "RIGHT_BRACKET",
}

func (t TokenType) String() string {
	if t >= 0 && int(t) < len(tokenTypeNames) {
		return tokenTypeNames[t]
	}
	return "TokenType(?)"
}

type Position struct {
	Line   int // 1-based
	Column int // 1-based
	Offset int // 0-based absolute index in input
}

// Directives lists the % keywords understood in the first two sections.
var Directives = map[string]bool{
	"token":      true,
	"left":       true,
	"right":      true,
	"nonassoc":   true,
	"precedence": true,
	"start":      true,
	"option":     true,
	"x":          true,
	"s":          true,
	"captures":   true,
}
