package parser

import (
	"strings"

	"gramgrep/internal/ast"
	"gramgrep/internal/lexgen"
)

// parseRegexSections reads the macro section and the rule section, one
// definition per line, up to the next %% line or end of file.
func (p *Parser) parseRegexSections(cfg *ast.Config, offset, line int) {
	section := 0
	for offset < len(p.source) && section < 2 {
		end := strings.IndexByte(p.source[offset:], '\n')
		next := len(p.source)
		if end >= 0 {
			next = offset + end + 1
		} else {
			end = len(p.source) - offset
		}
		text := strings.TrimRight(p.source[offset:offset+end], "\r")
		trimmed := strings.TrimSpace(text)

		switch {
		case trimmed == "%%":
			section++
		case trimmed == "", strings.HasPrefix(trimmed, "//"):
		case section == 0:
			if m := p.parseMacro(text, line, offset); m != nil {
				cfg.Macros = append(cfg.Macros, m)
			}
		default:
			if r := p.parseLexRule(text, line, offset); r != nil {
				cfg.LexRules = append(cfg.LexRules, r)
			}
		}

		offset = next
		line++
	}
}

func (p *Parser) linePos(line, offset, col int) ast.Position {
	return ast.Position{Filename: p.filename, Offset: offset + col, Line: line, Column: col + 1}
}

func (p *Parser) lineError(line, offset, col int, length int, message string) {
	p.errors = append(p.errors, ParseError{
		Message:  message,
		Position: Position{Line: line, Column: col + 1, Offset: offset + col},
		Length:   max(1, length),
	})
}

// parseMacro parses `name regex`.
func (p *Parser) parseMacro(text string, line, offset int) *ast.Macro {
	i := skipSpace(text, 0)
	start := i
	for i < len(text) && (isAlpha(text[i]) || isDigit(text[i])) {
		i++
	}
	if i == start {
		p.lineError(line, offset, start, 1, "expected macro name")
		return nil
	}
	name := text[start:i]

	j := skipSpace(text, i)
	if j == i || j == len(text) {
		p.lineError(line, offset, i, 1, "expected regular expression after macro name '"+name+"'")
		return nil
	}

	return &ast.Macro{
		Pos:     p.linePos(line, offset, start),
		EndPos:  p.linePos(line, offset, len(text)),
		Name:    name,
		Pattern: strings.TrimRight(text[j:], " \t"),
	}
}

// parseLexRule parses `[<S1,S2>]regex [<NEXT>](Name|'literal'|skip())`.
func (p *Parser) parseLexRule(text string, line, offset int) *ast.LexRule {
	i := skipSpace(text, 0)
	rule := &ast.LexRule{Pos: p.linePos(line, offset, i)}

	if i < len(text) && text[i] == '<' {
		names, end, ok := readAngle(text, i)
		if !ok || len(names) == 0 {
			p.lineError(line, offset, i, len(text)-i, "malformed start condition list")
			return nil
		}
		rule.States = names
		i = end
	}

	end := scanPattern(text, i)
	if end == i {
		p.lineError(line, offset, i, 1, "expected regular expression")
		return nil
	}
	rule.Pattern = text[i:end]
	rule.PatternPos = p.linePos(line, offset, i)

	i = skipSpace(text, end)
	if i == end || i == len(text) {
		p.lineError(line, offset, i, 1, "expected token name, quoted literal or skip() after regular expression")
		return nil
	}

	if text[i] == '<' {
		names, end, ok := readAngle(text, i)
		if !ok || len(names) != 1 {
			p.lineError(line, offset, i, len(text)-i, "malformed next start condition")
			return nil
		}
		rule.Next = names[0]
		i = end
	}

	action := strings.TrimRight(text[i:], " \t")
	switch {
	case action == "skip()":
		rule.Skip = true
	case strings.HasPrefix(action, "'") || strings.HasPrefix(action, `"`):
		q := action[0]
		closed := -1
		for k := 1; k < len(action); k++ {
			if action[k] == '\\' {
				k++
				continue
			}
			if action[k] == q {
				closed = k
				break
			}
		}
		if closed < 0 || closed != len(action)-1 || closed == 1 {
			p.lineError(line, offset, i, len(action), "malformed literal token")
			return nil
		}
		rule.Token = &ast.Symbol{
			Pos:     p.linePos(line, offset, i),
			EndPos:  p.linePos(line, offset, i+len(action)),
			Name:    lexgen.Unescape(action[1:closed]),
			Literal: true,
		}
	default:
		k := 0
		for k < len(action) && (isAlpha(action[k]) || isDigit(action[k])) {
			k++
		}
		if k == 0 || k != len(action) || isDigit(action[0]) {
			p.lineError(line, offset, i, len(action), "expected token name, quoted literal or skip()")
			return nil
		}
		rule.Token = &ast.Symbol{
			Pos:    p.linePos(line, offset, i),
			EndPos: p.linePos(line, offset, i+k),
			Name:   action,
		}
	}

	rule.EndPos = p.linePos(line, offset, len(text))
	return rule
}

func skipSpace(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return i
}

// readAngle reads `<a,b>` starting at s[i] == '<'.
func readAngle(s string, i int) ([]string, int, bool) {
	close := strings.IndexByte(s[i:], '>')
	if close < 0 {
		return nil, i, false
	}
	var names []string
	for _, n := range strings.Split(s[i+1:i+close], ",") {
		n = strings.TrimSpace(n)
		if n == "" {
			return nil, i, false
		}
		names = append(names, n)
	}
	return names, i + close + 1, true
}

// scanPattern returns the end of the regex starting at s[i]: the first
// blank outside quotes, brackets and escapes. When a quote is left open the
// line is rescanned with '"' as an ordinary character.
func scanPattern(s string, i int) int {
	if end, ok := scanPatternQuoted(s, i, true); ok {
		return end
	}
	end, _ := scanPatternQuoted(s, i, false)
	return end
}

func scanPatternQuoted(s string, i int, quotes bool) (int, bool) {
	for i < len(s) {
		switch s[i] {
		case ' ', '\t':
			return i, true
		case '\\':
			i += 2
		case '"':
			if !quotes {
				i++
				continue
			}
			i++
			for i < len(s) && s[i] != '"' {
				if s[i] == '\\' {
					i++
				}
				i++
			}
			if i >= len(s) {
				return len(s), false
			}
			i++
		case '[':
			i = skipClass(s, i)
		default:
			i++
		}
	}
	return min(i, len(s)), true
}

func skipClass(s string, i int) int {
	i++
	if i < len(s) && s[i] == '^' {
		i++
	}
	if i < len(s) && s[i] == ']' {
		i++
	}
	for i < len(s) {
		switch {
		case strings.HasPrefix(s[i:], "[:"):
			if end := strings.Index(s[i+2:], ":]"); end >= 0 {
				i += end + 4
				continue
			}
			i++
		case s[i] == '\\':
			i += 2
		case s[i] == ']':
			return i + 1
		default:
			i++
		}
	}
	return i
}
