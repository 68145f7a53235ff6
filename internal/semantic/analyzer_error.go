package semantic

import (
	"sort"

	"gramgrep/internal/ast"
	"gramgrep/internal/errors"
)

func (a *Analyzer) addCompilerError(err errors.CompilerError) {
	a.errors = append(a.errors, err)
}

func (a *Analyzer) addWarning(code, message string, pos ast.Position, length int) {
	a.warnings = append(a.warnings, errors.NewWarning(code, message, pos).WithLength(length).Build())
}

func (a *Analyzer) ruleNames() []string {
	return append([]string(nil), a.ctx.Nonterminals...)
}

func (a *Analyzer) precNames() []string {
	names := make([]string, 0, len(a.ctx.Prec))
	for k := range a.ctx.Prec {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func (a *Analyzer) stateNames() []string {
	names := []string{"INITIAL"}
	for _, s := range a.ctx.States {
		names = append(names, s.Name)
	}
	return names
}
