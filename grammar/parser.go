package grammar

import (
	"errors"
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var scriptParser = buildParser()

func buildParser() *participle.Parser[Script] {
	p, err := participle.Build[Script](
		participle.Lexer(ScriptLexer),
		participle.Elide("Whitespace", "Comment"),
		participle.UseLookahead(4),
	)
	if err != nil {
		panic(fmt.Errorf("failed to build action parser: %w", err))
	}
	return p
}

// ParseScript parses the text between the braces of an action block.
func ParseScript(filename, source string) (*Script, error) {
	return scriptParser.ParseString(filename, source)
}

// ErrorPosition extracts the position and bare message of a parse error.
func ErrorPosition(err error) (lexer.Position, string, bool) {
	var pe participle.Error
	if !errors.As(err, &pe) {
		return lexer.Position{}, "", false
	}
	return pe.Position(), pe.Message(), true
}
