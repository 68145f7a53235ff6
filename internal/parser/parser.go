package parser

import (
	"fmt"

	"gramgrep/internal/ast"
)

type Parser struct {
	filename string
	source   string
	tokens   []Token
	current  int
	errors   []ParseError
}

type ParseError struct {
	Message  string
	Position Position
	Length   int
}

func NewParser(filename, source string, tokens []Token) *Parser {
	return &Parser{
		filename: filename,
		source:   source,
		tokens:   tokens,
	}
}

func (p *Parser) Errors() []ParseError {
	return p.errors
}

// ParseConfig parses the token stream of the first two sections and then
// the line oriented macro and rule sections starting at restOffset.
func (p *Parser) ParseConfig(restOffset, restLine int) *ast.Config {
	cfg := &ast.Config{Pos: ast.Position{Filename: p.filename, Line: 1, Column: 1}}

	p.parseDirectives(cfg)
	if p.match(SECTION) {
		p.parseRules(cfg)
		if p.match(SECTION) {
			p.parseRegexSections(cfg, restOffset, restLine)
		}
	}
	if !p.isAtEnd() {
		p.errorAtCurrent(fmt.Sprintf("unexpected %s", describe(p.peek())))
	}

	cfg.EndPos = p.makePos(p.tokens[len(p.tokens)-1])
	return cfg
}

func (p *Parser) parseDirectives(cfg *ast.Config) {
	for !p.isAtEnd() && !p.check(SECTION) {
		if !p.check(DIRECTIVE) {
			p.errorAtCurrent(fmt.Sprintf("expected directive, found %s", describe(p.peek())))
			p.skipUntil(DIRECTIVE, SECTION)
			continue
		}

		tok := p.advance()
		if !Directives[tok.Lexeme] {
			p.errorAt(tok, fmt.Sprintf("unknown directive '%%%s'", tok.Lexeme))
		}

		d := &ast.Directive{
			Pos:  p.makePos(tok),
			Name: tok.Lexeme,
		}
		for p.check(IDENTIFIER) || p.check(LITERAL) {
			d.Args = append(d.Args, p.makeSymbol(p.advance()))
		}
		d.EndPos = p.makeEndPos(p.previous())
		cfg.Directives = append(cfg.Directives, d)
	}
}
