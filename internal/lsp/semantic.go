package lsp

import (
	"sort"

	"gramgrep/internal/ast"
)

// SemanticToken is one LSP semantic token entry. Line and StartChar are
// 0-based; TokenType indexes SemanticTokenTypes and TokenModifiers is a
// bitmask over SemanticTokenModifiers.
type SemanticToken struct {
	Line           uint32
	StartChar      uint32
	Length         uint32
	TokenType      int
	TokenModifiers int
}

func collectSemanticTokens(cfg *ast.Config) []SemanticToken {
	var tokens []SemanticToken
	if cfg == nil {
		return tokens
	}

	nonterminals := map[string]bool{}
	for _, r := range cfg.Rules {
		if r.LHS != nil {
			nonterminals[r.LHS.Name] = true
		}
	}

	for _, d := range cfg.Directives {
		tokens = append(tokens, makeToken(d.Pos, ast.Position{}, "%"+d.Name, "keyword", 0)...)
		decl := 0
		if d.Name == "token" {
			decl = 1
		}
		for _, arg := range d.Args {
			tokens = append(tokens, symbolToken(arg, nonterminals, decl)...)
		}
	}

	for _, r := range cfg.Rules {
		if r.LHS != nil {
			tokens = append(tokens, makeToken(r.LHS.Pos, r.LHS.EndPos, r.LHS.Name, "function", 1)...)
		}
		for _, alt := range r.Alternatives {
			tokens = append(tokens, walkAlternative(alt, nonterminals)...)
		}
	}

	for _, m := range cfg.Macros {
		tokens = append(tokens, makeToken(m.Pos, ast.Position{}, m.Name, "variable", 1)...)
	}

	for _, lr := range cfg.LexRules {
		tokens = append(tokens, makeToken(lr.PatternPos, ast.Position{}, lr.Pattern, "regexp", 0)...)
		if lr.Token != nil {
			tokens = append(tokens, symbolToken(lr.Token, nonterminals, 0)...)
		}
	}

	// The wire encoding is relative to the previous token.
	sort.SliceStable(tokens, func(i, j int) bool {
		if tokens[i].Line != tokens[j].Line {
			return tokens[i].Line < tokens[j].Line
		}
		return tokens[i].StartChar < tokens[j].StartChar
	})
	return tokens
}

func walkAlternative(alt *ast.Alternative, nonterminals map[string]bool) []SemanticToken {
	var tokens []SemanticToken
	for _, it := range alt.Items {
		switch v := it.(type) {
		case *ast.SymbolItem:
			tokens = append(tokens, symbolToken(v.Symbol, nonterminals, 0)...)
		case *ast.GroupItem:
			for _, inner := range v.Alternatives {
				tokens = append(tokens, walkAlternative(inner, nonterminals)...)
			}
		}
	}
	if alt.Prec != nil {
		tokens = append(tokens, symbolToken(alt.Prec, nonterminals, 0)...)
	}
	return tokens
}

func symbolToken(s *ast.Symbol, nonterminals map[string]bool, decl int) []SemanticToken {
	if s == nil {
		return nil
	}
	switch {
	case s.Literal:
		return makeToken(s.Pos, s.EndPos, s.String(), "string", 0)
	case nonterminals[s.Name]:
		return makeToken(s.Pos, s.EndPos, s.Name, "function", decl)
	default:
		return makeToken(s.Pos, s.EndPos, s.Name, "type", decl)
	}
}

func makeToken(pos, endPos ast.Position, value, tokenType string, declModifier int) []SemanticToken {
	if value == "" || pos.Line == 0 {
		return nil
	}

	length := endPos.Column - pos.Column
	if endPos.Line != pos.Line || length <= 0 {
		length = len(value)
	}

	return []SemanticToken{{
		Line:           uint32(pos.Line - 1),
		StartChar:      uint32(pos.Column - 1),
		Length:         uint32(length),
		TokenType:      indexOf(tokenType, SemanticTokenTypes),
		TokenModifiers: declModifier << indexOf("declaration", SemanticTokenModifiers),
	}}
}

// indexOf returns the index of target in list, or 0 if it is missing.
func indexOf(target string, list []string) int {
	for i, v := range list {
		if v == target {
			return i
		}
	}
	return 0
}

// encodeTokens packs tokens in the delta-line, delta-start wire format.
func encodeTokens(tokens []SemanticToken) []uint32 {
	var data []uint32
	var prevLine, prevStart uint32
	for _, token := range tokens {
		deltaLine := token.Line - prevLine
		deltaStart := token.StartChar
		if deltaLine == 0 {
			deltaStart = token.StartChar - prevStart
		}
		data = append(data, deltaLine, deltaStart, token.Length, uint32(token.TokenType), uint32(token.TokenModifiers))
		prevLine = token.Line
		prevStart = token.StartChar
	}
	return data
}
