package ir

import (
	"fmt"
	"strings"

	"github.com/dlclark/regexp2"
	"github.com/tliron/commonlog"
	"gramgrep/grammar"
	"gramgrep/internal/ast"
	"gramgrep/internal/errors"
	"gramgrep/internal/lalr"
	"gramgrep/internal/lexgen"
	"gramgrep/internal/semantic"
	"gramgrep/token"
)

var log = commonlog.GetLogger("gramgrep.ir")

// Builder turns an analysed configuration into a matcher.
type Builder struct {
	ctx      *semantic.Context
	name     string
	flags    Flags
	errors   []errors.CompilerError
	warnings []errors.CompilerError

	g       *lalr.Grammar
	helpers map[string]int
	groups  map[int]int
	actions map[int][]Command
	reduce  map[int]bool
}

func NewBuilder(ctx *semantic.Context, name string, flags Flags) *Builder {
	return &Builder{ctx: ctx, name: name, flags: flags}
}

func (b *Builder) Errors() []errors.CompilerError {
	return b.errors
}

func (b *Builder) Warnings() []errors.CompilerError {
	return b.warnings
}

// Build returns a *TokenMatcher when the configuration has no grammar
// rules and a *GrammarMatcher otherwise. It returns nil after an error.
func (b *Builder) Build() Matcher {
	if b.ctx.Caseless {
		b.flags.Caseless = true
	}
	if !b.ctx.HasGrammar() {
		return b.buildTokens()
	}
	return b.buildGrammar()
}

func (b *Builder) fail(code, message string, pos ast.Position) {
	b.errors = append(b.errors, errors.NewError(code, message, pos).Build())
}

func (b *Builder) lexSpec() lexgen.Spec {
	spec := lexgen.Spec{
		States:   b.ctx.States,
		Caseless: b.flags.Caseless,
		Unicode:  b.flags.Unicode,
	}
	for _, m := range b.ctx.Config.Macros {
		spec.Macros = append(spec.Macros, lexgen.Macro{Name: m.Name, Pattern: m.Pattern, Line: m.Pos.Line})
	}
	return spec
}

func lexRule(r *ast.LexRule, id token.ID) lexgen.Rule {
	rule := lexgen.Rule{States: r.States, Pattern: r.Pattern, ID: id, Next: r.Next, Line: r.Pos.Line}
	if r.Token != nil {
		rule.Name = r.Token.String()
	}
	return rule
}

func (b *Builder) compileLexer(spec lexgen.Spec) *lexgen.Lexer {
	lx, err := lexgen.Compile(spec)
	if err != nil {
		pos := b.ctx.Config.Pos
		if pe, ok := err.(*lexgen.PatternError); ok {
			pos.Line, pos.Column = pe.Line, 1
		}
		b.fail(errors.ErrorBadPattern, err.Error(), pos)
		return nil
	}
	return lx
}

func (b *Builder) buildTokens() Matcher {
	spec := b.lexSpec()
	names := []string{lalr.EndMarker}
	ids := map[string]token.ID{}
	for _, r := range b.ctx.Config.LexRules {
		id := token.Skip
		if r.Token != nil {
			key := semantic.SymbolKey(r.Token.Name, r.Token.Literal)
			var ok bool
			if id, ok = ids[key]; !ok {
				id = token.ID(len(names))
				ids[key] = id
				names = append(names, r.Token.String())
			}
		}
		spec.Rules = append(spec.Rules, lexRule(r, id))
	}
	spec.Rules = append(spec.Rules, lexgen.Rule{States: []string{lexgen.AnyState}, Pattern: `[^\r\n]`, ID: token.Skip})

	lx := b.compileLexer(spec)
	if lx == nil {
		return nil
	}
	log.Debugf("%s: token matcher with %d rules", b.name, lx.NumRules())
	return &TokenMatcher{Flags: b.flags, Name: b.name, Lexer: lx, Tokens: names}
}

func (b *Builder) buildGrammar() Matcher {
	b.g = &lalr.Grammar{Terminals: []lalr.Terminal{{Name: lalr.EndMarker}}}
	b.helpers = map[string]int{}
	b.groups = map[int]int{}
	b.actions = map[int][]Command{}
	b.reduce = map[int]bool{}

	for _, t := range b.ctx.Terminals {
		term := lalr.Terminal{Name: t.String()}
		if p, ok := b.ctx.Prec[t.Key()]; ok {
			term.Prec, term.Assoc = p.Level, p.Assoc
		}
		b.g.Terminals = append(b.g.Terminals, term)
	}
	nt := map[string]int{}
	for i, name := range b.ctx.Nonterminals {
		nt[name] = i
		b.g.Nonterminals = append(b.g.Nonterminals, name)
	}
	b.g.Start = nt[b.ctx.Start]

	for _, r := range b.ctx.Config.Rules {
		lhs := nt[r.LHS.Name]
		for _, alt := range r.Alternatives {
			prod := b.addProduction(lhs, r.LHS.Name, alt)
			if alt.Action == nil {
				continue
			}
			b.reduce[prod] = true
			if cmds := b.compileScript(alt.Action); len(cmds) > 0 {
				b.actions[prod] = cmds
			}
		}
	}
	if len(b.errors) > 0 {
		return nil
	}

	table, conflicts, err := lalr.Build(b.g)
	if err != nil {
		b.fail(errors.ErrorInvalidGrammar, err.Error(), b.ctx.Config.Rules[0].Pos)
		return nil
	}
	for _, c := range conflicts {
		pos := b.ctx.Config.Rules[0].Pos
		if len(c.Prods) > 0 {
			pos = ast.Position{Filename: pos.Filename, Line: b.g.Productions[c.Prods[0]].Line, Column: 1}
		}
		b.warnings = append(b.warnings, errors.NewWarning(errors.WarningConflict, c.Describe(b.g), pos).Build())
	}

	spec := b.lexSpec()
	produced := map[string]bool{}
	unused := token.ID(len(b.g.Terminals))
	for _, r := range b.ctx.Config.LexRules {
		id := token.Skip
		if r.Token != nil {
			key := semantic.SymbolKey(r.Token.Name, r.Token.Literal)
			produced[key] = true
			if i, ok := b.ctx.TerminalIndex(key); ok {
				id = token.ID(i + 1)
			} else {
				id = unused
				unused++
			}
		}
		spec.Rules = append(spec.Rules, lexRule(r, id))
	}
	for i, t := range b.ctx.Terminals {
		if !t.Literal || produced[t.Key()] {
			continue
		}
		spec.Rules = append(spec.Rules, lexgen.Rule{
			Pattern: literalPattern(t.Name),
			ID:      token.ID(i + 1),
			Name:    t.String(),
			Line:    t.Pos.Line,
		})
	}
	lx := b.compileLexer(spec)
	if lx == nil {
		return nil
	}

	m := &GrammarMatcher{
		Flags:     b.flags,
		Name:      b.name,
		Lexer:     lx,
		Grammar:   b.g,
		Table:     table,
		Captures:  b.ctx.Captures,
		ReduceSet: b.reduce,
		Actions:   b.actions,
	}
	if m.Captures {
		m.Groups = b.groups
		m.NumSlots = len(b.groups) + 1
	}
	log.Debugf("%s: %d productions, %d states, %d conflicts", b.name, len(b.g.Productions), table.NumStates(), len(conflicts))
	return m
}

// literalPattern quotes text for the flex "..." syntax.
func literalPattern(text string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(text) + `"`
}

func (b *Builder) addProduction(lhs int, lhsName string, alt *ast.Alternative) int {
	prod := lalr.Production{LHS: lhs, PrecTerminal: -1, Line: alt.Pos.Line}
	for _, item := range alt.Items {
		prod.RHS = append(prod.RHS, b.lowerItem(lhsName, item))
	}
	if alt.Prec != nil {
		if i, ok := b.ctx.TerminalIndex(semantic.SymbolKey(alt.Prec.Name, alt.Prec.Literal)); ok {
			prod.PrecTerminal = i + 1
		}
	}
	b.g.Productions = append(b.g.Productions, prod)
	return len(b.g.Productions) - 1
}

func (b *Builder) symbol(sym *ast.Symbol) int {
	key := semantic.SymbolKey(sym.Name, sym.Literal)
	if i, ok := b.ctx.TerminalIndex(key); ok {
		return i + 1
	}
	for i, name := range b.g.Nonterminals {
		if !sym.Literal && name == sym.Name {
			return b.g.Nonterminal(i)
		}
	}
	b.fail(errors.ErrorInvalidGrammar, fmt.Sprintf("unknown symbol %s", sym.String()), sym.Pos)
	return 1
}

// newHelper adds a nonterminal named lhs#n.
func (b *Builder) newHelper(lhsName string) int {
	b.helpers[lhsName]++
	b.g.Nonterminals = append(b.g.Nonterminals, fmt.Sprintf("%s#%d", lhsName, b.helpers[lhsName]))
	return len(b.g.Nonterminals) - 1
}

func (b *Builder) helperProduction(lhs, line int, rhs ...int) {
	b.g.Productions = append(b.g.Productions, lalr.Production{LHS: lhs, RHS: rhs, PrecTerminal: -1, Line: line})
}

// lowerItem returns the single symbol that stands for item in its
// alternative, adding helper nonterminals for groups and repeats.
func (b *Builder) lowerItem(lhsName string, item ast.Item) int {
	var sym int
	var repeat ast.Repeat
	line := item.NodePos().Line

	switch it := item.(type) {
	case *ast.SymbolItem:
		sym, repeat = b.symbol(it.Symbol), it.Repeat
	case *ast.GroupItem:
		group := b.newHelper(lhsName)
		if it.Bracket {
			b.helperProduction(group, line)
		} else if b.ctx.Captures {
			b.groups[group] = len(b.groups) + 1
		}
		for _, alt := range it.Alternatives {
			var rhs []int
			for _, inner := range alt.Items {
				rhs = append(rhs, b.lowerItem(lhsName, inner))
			}
			b.helperProduction(group, alt.Pos.Line, rhs...)
		}
		sym, repeat = b.g.Nonterminal(group), it.Repeat
	}

	if repeat == ast.RepeatOnce {
		return sym
	}
	h := b.newHelper(lhsName)
	self := b.g.Nonterminal(h)
	switch repeat {
	case ast.RepeatOptional:
		b.helperProduction(h, line)
		b.helperProduction(h, line, sym)
	case ast.RepeatStar:
		b.helperProduction(h, line)
		b.helperProduction(h, line, self, sym)
	case ast.RepeatPlus:
		b.helperProduction(h, line, sym)
		b.helperProduction(h, line, self, sym)
	}
	return self
}

func (b *Builder) compileScript(block *ast.ActionBlock) []Command {
	script := b.ctx.Scripts[block]
	if script == nil {
		return nil
	}
	var cmds []Command
	for _, c := range script.Commands {
		if cmd := b.compileCommand(block.Body, c); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return cmds
}

func endpoint(r *grammar.Ref) Endpoint {
	e := Endpoint{Index: r.Number()}
	switch r.Side {
	case "first":
		e.Side = First
	case "second":
		e.Side = Second
	}
	return e
}

func (b *Builder) compileCommand(body ast.Position, c *grammar.Command) Command {
	pos := semantic.BlockPosition(body, c.Pos)
	switch {
	case c.Match != nil:
		if c.Match.Op == "+=" {
			return &AppendCmd{Pos: pos, Value: compileExpr(c.Match.Value)}
		}
		return &AssignCmd{Pos: pos, Value: compileExpr(c.Match.Value)}
	case c.Erase != nil:
		cmd := &EraseCmd{Pos: pos, From: endpoint(c.Erase.From)}
		if c.Erase.To != nil {
			cmd.To, cmd.Range = endpoint(c.Erase.To), true
		}
		return cmd
	case c.Insert != nil:
		return &InsertCmd{Pos: pos, At: endpoint(c.Insert.At), Text: compileExpr(c.Insert.Text)}
	case c.Replace != nil:
		cmd := &ReplaceCmd{Pos: pos, From: endpoint(c.Replace.From), Text: compileExpr(c.Replace.Text)}
		if c.Replace.To != nil {
			cmd.To, cmd.Range = endpoint(c.Replace.To), true
		}
		return cmd
	case c.ReplaceAll != nil:
		source := grammar.Unquote(c.ReplaceAll.Pattern)
		re, err := regexp2.Compile(source, regexp2.None)
		if err != nil {
			b.errors = append(b.errors, errors.BadPattern(errors.ErrorBadReplacePattern, source, err, pos))
			return nil
		}
		return &ReplaceAllCmd{
			Pos:     pos,
			Target:  endpoint(c.ReplaceAll.Target),
			Source:  source,
			Pattern: re,
			Text:    compileExpr(c.ReplaceAll.Text),
		}
	case c.Print != nil:
		return &PrintCmd{Pos: pos, Value: compileExpr(c.Print.Value)}
	case c.Exec != nil:
		return &ExecCmd{Pos: pos, Value: compileExpr(c.Exec.Value)}
	}
	return nil
}

// compileExpr flattens e into postfix order.
func compileExpr(e *grammar.Expr) []Op {
	switch {
	case e.Ref != nil:
		return []Op{RefOp{Index: e.Ref.Number()}}
	case e.Substr != nil:
		return []Op{RefOp{Index: e.Substr.Ref.Number(), Trim: true, Front: e.Substr.Front, Back: e.Substr.Back}}
	case e.Text != nil:
		return []Op{TextOp{Text: grammar.Unquote(*e.Text)}}
	case e.Call != nil:
		var ops []Op
		for _, arg := range e.Call.Args {
			ops = append(ops, compileExpr(arg)...)
		}
		switch e.Call.Func {
		case "format":
			return append(ops, FormatOp{Args: len(e.Call.Args) - 1})
		case "exec":
			return append(ops, ExecOp{})
		case "toupper":
			return append(ops, CaseOp{Mode: Upper})
		case "tolower":
			return append(ops, CaseOp{Mode: Lower})
		case "capitalise":
			return append(ops, CaseOp{Mode: Capitalise})
		}
	}
	return nil
}
