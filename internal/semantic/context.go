package semantic

import (
	"gramgrep/grammar"
	"gramgrep/internal/ast"
	"gramgrep/internal/lalr"
	"gramgrep/internal/lexgen"
)

// Symbol is a grammar terminal. Literal terminals were written quoted.
type Symbol struct {
	Name    string
	Literal bool
	Pos     ast.Position
}

// Key distinguishes the literal 'A' from the token name A.
func (s Symbol) Key() string {
	return SymbolKey(s.Name, s.Literal)
}

func SymbolKey(name string, literal bool) string {
	if literal {
		return "'" + name
	}
	return name
}

func (s Symbol) String() string {
	if s.Literal {
		return "'" + s.Name + "'"
	}
	return s.Name
}

type Precedence struct {
	Level int
	Assoc lalr.Assoc
}

// Context is everything the analyzer learned about a configuration. It
// is only meaningful when the analyzer reported no errors.
type Context struct {
	Config *ast.Config

	Terminals    []Symbol
	terminalIdx  map[string]int
	Nonterminals []string
	Rules        map[string][]*ast.Alternative
	Declared     map[string]ast.Position
	Prec         map[string]Precedence
	Start        string

	Caseless bool
	Captures bool
	States   []lexgen.StateDecl

	Scripts map[*ast.ActionBlock]*grammar.Script
}

func newContext(cfg *ast.Config) *Context {
	return &Context{
		Config:      cfg,
		terminalIdx: make(map[string]int),
		Rules:       make(map[string][]*ast.Alternative),
		Declared:    make(map[string]ast.Position),
		Prec:        make(map[string]Precedence),
		Scripts:     make(map[*ast.ActionBlock]*grammar.Script),
	}
}

// HasGrammar reports whether the grammar section defines any rule.
func (c *Context) HasGrammar() bool {
	return len(c.Config.Rules) > 0
}

// TerminalIndex returns the position of a terminal in Terminals.
func (c *Context) TerminalIndex(key string) (int, bool) {
	i, ok := c.terminalIdx[key]
	return i, ok
}

func (c *Context) IsNonterminal(name string) bool {
	_, ok := c.Rules[name]
	return ok
}

func (c *Context) addTerminal(sym Symbol) {
	if _, ok := c.terminalIdx[sym.Key()]; ok {
		return
	}
	c.terminalIdx[sym.Key()] = len(c.Terminals)
	c.Terminals = append(c.Terminals, sym)
}
