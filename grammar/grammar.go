package grammar

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Script is the body of one { ... } action block.
type Script struct {
	Pos      lexer.Position
	Commands []*Command `@@*`
}

type Command struct {
	Pos        lexer.Position
	Match      *MatchCmd      `  @@`
	Erase      *EraseCmd      `| @@`
	Insert     *InsertCmd     `| @@`
	ReplaceAll *ReplaceAllCmd `| @@`
	Replace    *ReplaceCmd    `| @@`
	Print      *PrintCmd      `| @@`
	Exec       *ExecCmd       `| @@`
}

// MatchCmd is `match = EXPR;` or `match += EXPR;`.
type MatchCmd struct {
	Pos   lexer.Position
	Op    string `"match" @( "+=" | "=" )`
	Value *Expr  `@@ ";"`
}

type EraseCmd struct {
	Pos  lexer.Position
	From *Ref `"erase" "(" @@`
	To   *Ref `( "," @@ )? ")" ";"`
}

type InsertCmd struct {
	Pos  lexer.Position
	At   *Ref  `"insert" "(" @@ ","`
	Text *Expr `@@ ")" ";"`
}

type ReplaceCmd struct {
	Pos  lexer.Position
	From *Ref  `"replace" "(" @@ ","`
	To   *Ref  `( @@ "," )?`
	Text *Expr `@@ ")" ";"`
}

type ReplaceAllCmd struct {
	Pos     lexer.Position
	Target  *Ref   `"replace_all" "(" @@ ","`
	Pattern string `@String ","`
	Text    *Expr  `@@ ")" ";"`
}

type PrintCmd struct {
	Pos   lexer.Position
	Value *Expr `"print" "(" @@ ")" ";"`
}

type ExecCmd struct {
	Pos   lexer.Position
	Value *Expr `"exec" "(" @@ ")" ";"`
}

// Ref is $n, $n.first or $n.second.
type Ref struct {
	Pos   lexer.Position
	Index string `@Ref`
	Side  string `( "." @( "first" | "second" ) )?`
}

// Number returns n of $n.
func (r *Ref) Number() int {
	n, _ := strconv.Atoi(strings.TrimPrefix(r.Index, "$"))
	return n
}

type Expr struct {
	Pos    lexer.Position
	Substr *Substr `  @@`
	Call   *Call   `| @@`
	Ref    *Ref    `| @@`
	Text   *string `| @String`
}

type Substr struct {
	Pos   lexer.Position
	Ref   *Ref `"substr" "(" @@ ","`
	Front int  `@Int ","`
	Back  int  `@Int ")"`
}

type Call struct {
	Pos  lexer.Position
	Func string  `@( "format" | "exec" | "toupper" | "tolower" | "capitalise" )`
	Args []*Expr `"(" ( @@ ( "," @@ )* )? ")"`
}

// Unquote strips the quotes of a String token and resolves its escapes.
func Unquote(s string) string {
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		s = s[1 : len(s)-1]
	}
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
