// Package semantic validates a parsed configuration and collects the symbol
// information the matcher builder needs.
package semantic

import (
	"github.com/tliron/commonlog"
	"gramgrep/internal/ast"
	"gramgrep/internal/errors"
	"gramgrep/internal/lalr"
	"gramgrep/internal/lexgen"
)

var log = commonlog.GetLogger("gramgrep.semantic")

type Analyzer struct {
	config   *ast.Config
	ctx      *Context
	errors   []errors.CompilerError
	warnings []errors.CompilerError
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze checks cfg. Errors are reported in source order per section;
// callers treat the first one as fatal.
func (a *Analyzer) Analyze(cfg *ast.Config) *Context {
	a.config = cfg
	a.ctx = newContext(cfg)
	a.errors = nil
	a.warnings = nil

	a.analyzeDirectives()
	a.collectSymbols()
	a.analyzeRules()
	a.analyzeLexical()
	if len(a.errors) == 0 {
		a.crossCheck()
	}

	log.Debugf("analyzed %d rules, %d terminals, %d lexical rules: %d errors, %d warnings",
		len(cfg.Rules), len(a.ctx.Terminals), len(cfg.LexRules), len(a.errors), len(a.warnings))
	return a.ctx
}

func (a *Analyzer) Errors() []errors.CompilerError {
	return a.errors
}

func (a *Analyzer) Warnings() []errors.CompilerError {
	return a.warnings
}

func (a *Analyzer) analyzeDirectives() {
	level := 0
	states := map[string]bool{lexgen.Initial: true}

	for _, d := range a.config.Directives {
		switch d.Name {
		case "token":
			for _, arg := range d.Args {
				a.declare(arg)
			}

		case "left", "right", "nonassoc", "precedence":
			level++
			assoc := map[string]lalr.Assoc{
				"left":       lalr.AssocLeft,
				"right":      lalr.AssocRight,
				"nonassoc":   lalr.AssocNonAssoc,
				"precedence": lalr.AssocPrecedence,
			}[d.Name]
			for _, arg := range d.Args {
				a.declare(arg)
				a.ctx.Prec[SymbolKey(arg.Name, arg.Literal)] = Precedence{Level: level, Assoc: assoc}
			}

		case "start":
			if len(d.Args) != 1 || d.Args[0].Literal {
				a.addCompilerError(errors.Syntax("%start takes exactly one rule name", d.Pos, len(d.Name)+1))
				continue
			}
			a.ctx.Start = d.Args[0].Name

		case "option":
			for _, arg := range d.Args {
				switch arg.Name {
				case "caseless", "case-insensitive":
					a.ctx.Caseless = true
				default:
					a.addCompilerError(errors.UndefinedName(errors.ErrorUnknownDirective, "option", arg.Name, arg.Pos, []string{"caseless"}))
				}
			}

		case "x", "s":
			for _, arg := range d.Args {
				if states[arg.Name] {
					a.addCompilerError(errors.NewError(errors.ErrorDuplicateDeclaration,
						"start condition '"+arg.Name+"' declared twice", arg.Pos).WithLength(len(arg.Name)).Build())
					continue
				}
				states[arg.Name] = true
				a.ctx.States = append(a.ctx.States, lexgen.StateDecl{Name: arg.Name, Exclusive: d.Name == "x"})
			}

		case "captures":
			a.ctx.Captures = true

		default:
			a.addCompilerError(errors.NewError(errors.ErrorUnknownDirective,
				"unknown directive '%"+d.Name+"'", d.Pos).WithLength(len(d.Name)+1).Build())
		}
	}
}

func (a *Analyzer) declare(sym *ast.Symbol) {
	key := SymbolKey(sym.Name, sym.Literal)
	if _, ok := a.ctx.Declared[key]; !ok {
		a.ctx.Declared[key] = sym.Pos
	}
}
