package grammar

import (
	"github.com/alecthomas/participle/v2/lexer"
)

var ScriptLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		// Comments
		{"Comment", `//[^\n]*|/\*([^*]|\*+[^*/])*\*+/`, nil},

		// Symbol references ($1, $2, ...) must come before integers
		{"Ref", `\$[0-9]+`, nil},

		// Quoted text, either quote style
		{"String", `'(\\.|[^'\\])*'|"(\\.|[^"\\])*"`, nil},

		// Keywords and function names
		{"Ident", `[a-zA-Z_][a-zA-Z0-9_]*`, nil},

		{"Int", `[0-9]+`, nil},

		{"Operator", `\+=|=`, nil},

		{"Punctuation", `[(),;.]`, nil},

		{"Whitespace", `[ \t\r\n]+`, nil},
	},
})
