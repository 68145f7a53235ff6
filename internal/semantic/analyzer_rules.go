package semantic

import (
	"fmt"

	"gramgrep/internal/ast"
	"gramgrep/internal/errors"
)

// collectSymbols splits grammar symbols into nonterminals (every rule's
// left-hand side) and terminals (everything else, declared tokens first).
func (a *Analyzer) collectSymbols() {
	for _, r := range a.config.Rules {
		if _, seen := a.ctx.Rules[r.LHS.Name]; !seen {
			a.ctx.Nonterminals = append(a.ctx.Nonterminals, r.LHS.Name)
		}
		a.ctx.Rules[r.LHS.Name] = append(a.ctx.Rules[r.LHS.Name], r.Alternatives...)
	}

	for _, d := range a.config.Directives {
		switch d.Name {
		case "token", "left", "right", "nonassoc", "precedence":
		default:
			continue
		}
		for _, arg := range d.Args {
			if !arg.Literal && a.ctx.IsNonterminal(arg.Name) {
				a.addCompilerError(errors.NewError(errors.ErrorDuplicateDeclaration,
					fmt.Sprintf("'%s' is declared as a token but defined by a rule", arg.Name), arg.Pos).
					WithLength(len(arg.Name)).Build())
				continue
			}
			a.ctx.addTerminal(Symbol{Name: arg.Name, Literal: arg.Literal, Pos: arg.Pos})
		}
	}

	for _, r := range a.config.Rules {
		for _, alt := range r.Alternatives {
			a.collectAlternative(alt)
		}
	}
}

func (a *Analyzer) collectAlternative(alt *ast.Alternative) {
	for _, item := range alt.Items {
		switch it := item.(type) {
		case *ast.SymbolItem:
			if it.Symbol.Literal || !a.ctx.IsNonterminal(it.Symbol.Name) {
				a.ctx.addTerminal(Symbol{Name: it.Symbol.Name, Literal: it.Symbol.Literal, Pos: it.Symbol.Pos})
			}
		case *ast.GroupItem:
			for _, inner := range it.Alternatives {
				a.collectAlternative(inner)
			}
		}
	}
}

func (a *Analyzer) analyzeRules() {
	if !a.ctx.HasGrammar() {
		if a.ctx.Start != "" {
			a.addCompilerError(errors.UndefinedName(errors.ErrorUndefinedStart, "start symbol", a.ctx.Start,
				a.startPos(), nil))
		}
		return
	}

	if a.ctx.Start == "" {
		a.ctx.Start = a.config.Rules[0].LHS.Name
	} else if !a.ctx.IsNonterminal(a.ctx.Start) {
		a.addCompilerError(errors.UndefinedName(errors.ErrorUndefinedStart, "start symbol", a.ctx.Start,
			a.startPos(), a.ruleNames()))
	}

	for _, r := range a.config.Rules {
		for _, alt := range r.Alternatives {
			if alt.Empty && len(alt.Items) > 0 {
				a.addCompilerError(errors.Syntax("%empty alternative cannot contain symbols", alt.Pos, 1))
			}
			if alt.Prec != nil {
				key := SymbolKey(alt.Prec.Name, alt.Prec.Literal)
				if _, ok := a.ctx.Prec[key]; !ok {
					a.addCompilerError(errors.UndefinedName(errors.ErrorUndefinedPrecToken, "precedence token",
						alt.Prec.Name, alt.Prec.Pos, a.precNames()))
				}
			}
			if alt.Action != nil {
				a.analyzeAction(alt)
			}
		}
	}
}

func (a *Analyzer) startPos() ast.Position {
	for _, d := range a.config.Directives {
		if d.Name == "start" && len(d.Args) == 1 {
			return d.Args[0].Pos
		}
	}
	return a.config.Pos
}

// crossCheck emits the non-fatal terminal usage warnings.
func (a *Analyzer) crossCheck() {
	produced := map[string]bool{}
	for _, lr := range a.config.LexRules {
		if lr.Token != nil {
			produced[SymbolKey(lr.Token.Name, lr.Token.Literal)] = true
		}
	}

	if !a.ctx.HasGrammar() {
		return
	}

	for _, t := range a.ctx.Terminals {
		if !t.Literal && !produced[t.Key()] {
			a.addWarning(errors.WarningTokenWithoutRule,
				fmt.Sprintf("token '%s' has no lexical rule", t.Name), t.Pos, len(t.Name))
		}
	}

	for _, lr := range a.config.LexRules {
		if lr.Token == nil {
			continue
		}
		if _, ok := a.ctx.TerminalIndex(SymbolKey(lr.Token.Name, lr.Token.Literal)); !ok {
			a.addWarning(errors.WarningUnusedToken,
				fmt.Sprintf("token %s is not used in the grammar", lr.Token.String()), lr.Token.Pos, len(lr.Token.Name))
		}
	}

	reached := map[string]bool{a.ctx.Start: true}
	queue := []string{a.ctx.Start}
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		for _, alt := range a.ctx.Rules[name] {
			walkSymbols(alt, func(sym *ast.Symbol) {
				if !sym.Literal && a.ctx.IsNonterminal(sym.Name) && !reached[sym.Name] {
					reached[sym.Name] = true
					queue = append(queue, sym.Name)
				}
			})
		}
	}
	for _, r := range a.config.Rules {
		if !reached[r.LHS.Name] {
			reached[r.LHS.Name] = true
			a.addWarning(errors.WarningUnreachableRule,
				fmt.Sprintf("rule '%s' is unreachable from '%s'", r.LHS.Name, a.ctx.Start), r.LHS.Pos, len(r.LHS.Name))
		}
	}
}

func walkSymbols(alt *ast.Alternative, fn func(*ast.Symbol)) {
	for _, item := range alt.Items {
		switch it := item.(type) {
		case *ast.SymbolItem:
			fn(it.Symbol)
		case *ast.GroupItem:
			for _, inner := range it.Alternatives {
				walkSymbols(inner, fn)
			}
		}
	}
}
