package parser

import (
	"fmt"

	"gramgrep/internal/ast"
)

func (p *Parser) advance() Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) check(tt TokenType) bool {
	if p.isAtEnd() {
		return false
	}
	return p.peek().Type == tt
}

func (p *Parser) checkDirective(name string) bool {
	return p.check(DIRECTIVE) && p.peek().Lexeme == name
}

func (p *Parser) match(types ...TokenType) bool {
	for _, tt := range types {
		if p.check(tt) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) consume(tt TokenType, message string) (Token, bool) {
	if p.check(tt) {
		return p.advance(), true
	}
	p.errorAtCurrent(message)
	return Token{Type: ILLEGAL, Position: p.peek().Position}, false
}

func (p *Parser) peek() Token {
	return p.tokens[p.current]
}

func (p *Parser) previous() Token {
	if p.current == 0 {
		return p.tokens[0]
	}
	return p.tokens[p.current-1]
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Type == EOF
}

func (p *Parser) errorAtCurrent(message string) {
	p.errorAt(p.peek(), message)
}

func (p *Parser) errorAt(tok Token, message string) {
	p.errors = append(p.errors, ParseError{
		Message:  message,
		Position: tok.Position,
		Length:   max(1, len(tok.Lexeme)),
	})
}

// skipUntil discards tokens up to, not including, the first of types.
func (p *Parser) skipUntil(types ...TokenType) {
	for !p.isAtEnd() {
		for _, tt := range types {
			if p.check(tt) {
				return
			}
		}
		p.advance()
	}
}

func (p *Parser) makePos(tok Token) ast.Position {
	return ast.Position{
		Filename: p.filename,
		Offset:   tok.Position.Offset,
		Line:     tok.Position.Line,
		Column:   tok.Position.Column,
	}
}

func (p *Parser) makeEndPos(tok Token) ast.Position {
	return ast.Position{
		Filename: p.filename,
		Offset:   tok.Position.Offset + len(tok.Lexeme),
		Line:     tok.Position.Line,
		Column:   tok.Position.Column + len(tok.Lexeme),
	}
}

func (p *Parser) makeSymbol(tok Token) *ast.Symbol {
	return &ast.Symbol{
		Pos:     p.makePos(tok),
		EndPos:  p.makeEndPos(tok),
		Name:    tok.Lexeme,
		Literal: tok.Type == LITERAL,
	}
}

func describe(tok Token) string {
	switch tok.Type {
	case EOF:
		return "end of file"
	case DIRECTIVE:
		return fmt.Sprintf("'%%%s'", tok.Lexeme)
	case ACTION:
		return "action block"
	case LITERAL:
		return fmt.Sprintf("literal %q", tok.Lexeme)
	}
	return fmt.Sprintf("'%s'", tok.Lexeme)
}
