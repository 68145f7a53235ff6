package parser

import (
	"fmt"

	"gramgrep/internal/ast"
)

func (p *Parser) parseRules(cfg *ast.Config) {
	for !p.isAtEnd() && !p.check(SECTION) {
		if !p.check(IDENTIFIER) {
			p.errorAtCurrent(fmt.Sprintf("expected rule name, found %s", describe(p.peek())))
			p.synchronize()
			continue
		}
		if rule := p.parseRule(); rule != nil {
			cfg.Rules = append(cfg.Rules, rule)
		}
	}
}

// parseRule parses `lhs : alt | alt ;`
func (p *Parser) parseRule() *ast.Rule {
	lhs := p.makeSymbol(p.advance())
	if _, ok := p.consume(COLON, fmt.Sprintf("expected ':' after rule name '%s'", lhs.Name)); !ok {
		p.synchronize()
		return nil
	}

	alts := p.parseAlternatives(true)

	end, ok := p.consume(SEMICOLON, fmt.Sprintf("expected ';' to end rule '%s'", lhs.Name))
	if !ok {
		p.synchronize()
		return nil
	}

	return &ast.Rule{
		Pos:          lhs.Pos,
		EndPos:       p.makeEndPos(end),
		LHS:          lhs,
		Alternatives: alts,
	}
}

func (p *Parser) parseAlternatives(top bool) []*ast.Alternative {
	alts := []*ast.Alternative{p.parseAlternative(top)}
	for p.match(PIPE) {
		alts = append(alts, p.parseAlternative(top))
	}
	return alts
}

// parseAlternative parses a sequence of items with an optional %empty,
// %prec and trailing action. The last two are only allowed at rule level.
func (p *Parser) parseAlternative(top bool) *ast.Alternative {
	alt := &ast.Alternative{Pos: p.makePos(p.peek())}

	for {
		switch {
		case p.check(IDENTIFIER), p.check(LITERAL):
			tok := p.advance()
			alt.Items = append(alt.Items, &ast.SymbolItem{
				Pos:    p.makePos(tok),
				Symbol: p.makeSymbol(tok),
				Repeat: p.parseRepeat(),
				EndPos: p.makeEndPos(p.previous()),
			})

		case p.check(LEFT_PAREN), p.check(LEFT_BRACKET):
			alt.Items = append(alt.Items, p.parseGroup())

		case p.checkDirective("empty"):
			p.advance()
			alt.Empty = true

		case p.checkDirective("prec"):
			tok := p.advance()
			if !top {
				p.errorAt(tok, "%prec is not allowed inside a group")
			}
			if !p.check(IDENTIFIER) && !p.check(LITERAL) {
				p.errorAtCurrent("expected token after %prec")
				continue
			}
			alt.Prec = p.makeSymbol(p.advance())

		case p.check(ACTION):
			tok := p.advance()
			if !top {
				p.errorAt(tok, "actions are not allowed inside a group")
			}
			alt.Action = &ast.ActionBlock{
				Pos:    p.makePos(tok),
				EndPos: p.makeEndPos(tok),
				Body: ast.Position{
					Filename: p.filename,
					Offset:   tok.Position.Offset + 1,
					Line:     tok.Position.Line,
					Column:   tok.Position.Column + 1,
				},
				Text: tok.Lexeme,
			}
			alt.EndPos = p.makeEndPos(tok)
			if !p.check(PIPE) && !p.check(SEMICOLON) && !p.check(RIGHT_PAREN) && !p.check(RIGHT_BRACKET) {
				p.errorAtCurrent("an action must end its alternative")
			}
			return alt

		default:
			alt.EndPos = p.makeEndPos(p.previous())
			return alt
		}
	}
}

func (p *Parser) parseGroup() *ast.GroupItem {
	open := p.advance()
	bracket := open.Type == LEFT_BRACKET

	group := &ast.GroupItem{
		Pos:          p.makePos(open),
		Alternatives: p.parseAlternatives(false),
		Bracket:      bracket,
	}

	if bracket {
		p.consume(RIGHT_BRACKET, "expected ']' to close optional group")
		group.Repeat = ast.RepeatOptional
	} else {
		p.consume(RIGHT_PAREN, "expected ')' to close group")
		group.Repeat = p.parseRepeat()
	}
	group.EndPos = p.makeEndPos(p.previous())
	return group
}

func (p *Parser) parseRepeat() ast.Repeat {
	switch {
	case p.match(QUESTION):
		return ast.RepeatOptional
	case p.match(STAR):
		return ast.RepeatStar
	case p.match(PLUS):
		return ast.RepeatPlus
	}
	return ast.RepeatOnce
}

// synchronize skips past the next ';' or up to the next section.
func (p *Parser) synchronize() {
	for !p.isAtEnd() {
		if p.check(SECTION) {
			return
		}
		if p.advance().Type == SEMICOLON {
			return
		}
	}
}
