package semantic

import (
	"fmt"
	"strings"

	"gramgrep/internal/ast"
	"gramgrep/internal/errors"
	"gramgrep/internal/lexgen"
)

// analyzeLexical checks macros and lexical rules in file order, so a macro
// may only use the macros defined above it.
func (a *Analyzer) analyzeLexical() {
	macros := map[string]string{}
	var names []string

	for _, m := range a.config.Macros {
		if _, dup := macros[m.Name]; dup {
			a.addCompilerError(errors.NewError(errors.ErrorDuplicateDeclaration,
				fmt.Sprintf("macro '%s' is already defined", m.Name), m.Pos).WithLength(len(m.Name)).Build())
			continue
		}
		if !a.checkMacroRefs(m.Pattern, m.Pos, macros, names) {
			macros[m.Name] = ""
			names = append(names, m.Name)
			continue
		}
		re, bol, err := lexgen.Resolve(m.Pattern, macros)
		if err == nil && bol {
			err = fmt.Errorf("'^' is not allowed in a macro")
		}
		if err != nil {
			a.addCompilerError(errors.BadPattern(errors.ErrorBadPattern, m.Pattern, err, m.Pos))
		}
		macros[m.Name] = re
		names = append(names, m.Name)
	}

	known := map[string]bool{lexgen.Initial: true}
	for _, s := range a.ctx.States {
		known[s.Name] = true
	}

	for _, r := range a.config.LexRules {
		for _, s := range r.States {
			if s == lexgen.AnyState || known[s] {
				continue
			}
			a.addCompilerError(errors.UndefinedName(errors.ErrorUnknownStartCondition, "start condition", s,
				r.Pos, a.stateNames()))
		}
		if r.Next != "" && r.Next != lexgen.StayState && !known[r.Next] {
			a.addCompilerError(errors.UndefinedName(errors.ErrorUnknownStartCondition, "start condition", r.Next,
				r.Pos, a.stateNames()))
		}
		if !a.checkMacroRefs(r.Pattern, r.PatternPos, macros, names) {
			continue
		}
		if _, _, err := lexgen.Resolve(r.Pattern, macros); err != nil {
			a.addCompilerError(errors.BadPattern(errors.ErrorBadPattern, r.Pattern, err, r.PatternPos))
		}
	}
}

func (a *Analyzer) checkMacroRefs(pattern string, pos ast.Position, defined map[string]string, names []string) bool {
	ok := true
	for _, ref := range macroRefs(pattern) {
		if _, found := defined[ref.name]; found {
			continue
		}
		at := pos
		at.Column += ref.offset
		at.Offset += ref.offset
		a.addCompilerError(errors.UndefinedName(errors.ErrorUndefinedMacro, "macro", ref.name, at, names))
		ok = false
	}
	return ok
}

type macroRef struct {
	name   string
	offset int
}

// macroRefs lists the {name} references of a pattern, ignoring braces
// inside quotes, bracket expressions and escapes and repeat counts.
func macroRefs(pattern string) []macroRef {
	var refs []macroRef
	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '\\':
			i++
		case '"':
			for i++; i < len(pattern) && pattern[i] != '"'; i++ {
				if pattern[i] == '\\' {
					i++
				}
			}
		case '[':
			for i++; i < len(pattern) && pattern[i] != ']'; i++ {
				if pattern[i] == '\\' {
					i++
				}
			}
		case '{':
			end := strings.IndexByte(pattern[i:], '}')
			if end < 0 {
				return refs
			}
			body := pattern[i+1 : i+end]
			if body != "" && body[0] != ',' && (body[0] < '0' || body[0] > '9') {
				refs = append(refs, macroRef{name: body, offset: i})
			}
			i += end
		}
	}
	return refs
}
