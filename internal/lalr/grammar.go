// Package lalr builds LALR(1) parse tables from BNF productions with yacc-style
// precedence declarations, and matches token streams against them.
package lalr

import (
	"fmt"
	"strings"
)

// Assoc is the associativity of a precedence level.
type Assoc int

const (
	AssocNone Assoc = iota
	AssocLeft
	AssocRight
	AssocNonAssoc
	// AssocPrecedence orders tokens without an associativity (%precedence).
	AssocPrecedence
)

func (a Assoc) String() string {
	switch a {
	case AssocLeft:
		return "%left"
	case AssocRight:
		return "%right"
	case AssocNonAssoc:
		return "%nonassoc"
	case AssocPrecedence:
		return "%precedence"
	default:
		return ""
	}
}

// Terminal is a grammar terminal. Prec 0 means no precedence.
type Terminal struct {
	Name  string
	Prec  int
	Assoc Assoc
}

// Production is LHS -> RHS. LHS indexes Grammar.Nonterminals; RHS holds
// symbols, where values below len(Terminals) are terminals and the rest are
// nonterminals offset by len(Terminals). PrecTerminal, when >= 0, overrides
// the precedence taken from the last terminal of RHS (%prec).
type Production struct {
	LHS          int
	RHS          []int
	PrecTerminal int
	Line         int
}

// Grammar is the input to Build. Terminal 0 must be the end-of-input marker.
type Grammar struct {
	Terminals    []Terminal
	Nonterminals []string
	Productions  []Production
	Start        int
}

// EndMarker is the conventional name of terminal 0.
const EndMarker = "$end"

// NumTerminals returns the number of terminals including the end marker.
func (g *Grammar) NumTerminals() int {
	return len(g.Terminals)
}

// IsTerminal reports whether sym is a terminal.
func (g *Grammar) IsTerminal(sym int) bool {
	return sym < len(g.Terminals)
}

// Nonterminal converts a nonterminal index into a symbol.
func (g *Grammar) Nonterminal(nt int) int {
	return nt + len(g.Terminals)
}

// SymbolName returns the printable name of sym.
func (g *Grammar) SymbolName(sym int) string {
	if g.IsTerminal(sym) {
		return g.Terminals[sym].Name
	}
	return g.Nonterminals[sym-len(g.Terminals)]
}

// ProductionString renders production p as "lhs: a b c".
func (g *Grammar) ProductionString(p int) string {
	prod := g.Productions[p]
	var b strings.Builder
	b.WriteString(g.Nonterminals[prod.LHS])
	b.WriteString(":")
	if len(prod.RHS) == 0 {
		b.WriteString(" %empty")
	}
	for _, sym := range prod.RHS {
		b.WriteString(" ")
		b.WriteString(g.SymbolName(sym))
	}
	return b.String()
}

func (g *Grammar) validate() error {
	if len(g.Terminals) == 0 || g.Terminals[0].Name != EndMarker {
		return fmt.Errorf("terminal 0 must be %s", EndMarker)
	}
	if g.Start < 0 || g.Start >= len(g.Nonterminals) {
		return fmt.Errorf("start symbol out of range")
	}
	limit := len(g.Terminals) + len(g.Nonterminals)
	defined := make([]bool, len(g.Nonterminals))
	for i, p := range g.Productions {
		if p.LHS < 0 || p.LHS >= len(g.Nonterminals) {
			return fmt.Errorf("production %d: lhs out of range", i)
		}
		defined[p.LHS] = true
		for _, sym := range p.RHS {
			if sym <= 0 || sym >= limit {
				return fmt.Errorf("production %d: symbol %d out of range", i, sym)
			}
		}
	}
	for nt, ok := range defined {
		if !ok {
			return fmt.Errorf("nonterminal %s has no productions", g.Nonterminals[nt])
		}
	}
	return nil
}

// precedence returns the precedence level and associativity of production p.
func (g *Grammar) precedence(p int) (int, Assoc) {
	prod := g.Productions[p]
	if prod.PrecTerminal >= 0 {
		t := g.Terminals[prod.PrecTerminal]
		return t.Prec, t.Assoc
	}
	for i := len(prod.RHS) - 1; i >= 0; i-- {
		if sym := prod.RHS[i]; g.IsTerminal(sym) {
			t := g.Terminals[sym]
			return t.Prec, t.Assoc
		}
	}
	return 0, AssocNone
}
