// Package compiler turns configuration text into a matcher.
package compiler

import (
	"os"

	"github.com/tliron/commonlog"
	"gramgrep/internal/ast"
	"gramgrep/internal/errors"
	"gramgrep/internal/ir"
	"gramgrep/internal/parser"
	"gramgrep/internal/semantic"
)

var log = commonlog.GetLogger("gramgrep.compiler")

type Result struct {
	Matcher  ir.Matcher
	Warnings []errors.CompilerError
	Reporter *errors.ErrorReporter
}

// Context holds the state of one compilation.
type Context struct {
	Name   string
	Source string
	Flags  ir.Flags

	warnings []errors.CompilerError
}

// Compile compiles source, naming it name in diagnostics. The first error
// is returned as an *errors.CompileError.
func Compile(name, source string, flags ir.Flags) (*Result, error) {
	c := &Context{Name: name, Source: source, Flags: flags}
	return c.Compile()
}

// CompileFile reads and compiles the configuration at path.
func CompileFile(path string, flags ir.Flags) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &errors.IOError{Op: "read", Path: path, Err: err}
	}
	return Compile(path, string(data), flags)
}

func (c *Context) Compile() (*Result, error) {
	cfg, parseErrors, scanErrors := parser.ParseSource(c.Name, c.Source)
	if len(scanErrors) > 0 {
		e := scanErrors[0]
		return nil, c.fail(errors.NewError(errors.ErrorSyntax, e.Message, c.position(e.Position)).
			WithLength(e.Length).Build())
	}
	if len(parseErrors) > 0 {
		e := parseErrors[0]
		return nil, c.fail(errors.NewError(errors.ErrorSyntax, e.Message, c.position(e.Position)).
			WithLength(e.Length).Build())
	}

	analyzer := semantic.NewAnalyzer()
	ctx := analyzer.Analyze(cfg)
	if errs := analyzer.Errors(); len(errs) > 0 {
		return nil, c.fail(errs[0])
	}
	c.warnings = append(c.warnings, analyzer.Warnings()...)

	builder := ir.NewBuilder(ctx, c.Name, c.Flags)
	m := builder.Build()
	if errs := builder.Errors(); len(errs) > 0 {
		return nil, c.fail(errs[0])
	}
	c.warnings = append(c.warnings, builder.Warnings()...)

	log.Infof("compiled %s: %s (%d warnings)", c.Name, m.Describe(), len(c.warnings))
	return &Result{
		Matcher:  m,
		Warnings: c.warnings,
		Reporter: errors.NewErrorReporter(c.Name, c.Source),
	}, nil
}

func (c *Context) position(p parser.Position) ast.Position {
	return ast.Position{Filename: c.Name, Offset: p.Offset, Line: p.Line, Column: p.Column}
}

func (c *Context) fail(diag errors.CompilerError) error {
	return &errors.CompileError{Path: c.Name, Diag: diag}
}
