package errors

import (
	stderrors "errors"
	"io/fs"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"gramgrep/internal/ast"
)

func init() {
	color.NoColor = true
}

func TestErrorReporter(t *testing.T) {
	source := "%token Name\n%%\nlist: Name\n    | list ',' Name { erase($4); }\n    ;\n"

	reporter := NewErrorReporter("list.g", source)
	err := SymbolIndexOutOfRange(4, 3, ast.Position{Line: 4, Column: 32})

	assert.Equal(t, "list.g(4:32): error[E0201]: $4 is out of range", reporter.Header(err))

	formatted := reporter.FormatError(err)
	assert.Contains(t, formatted, "list.g(4:32): error[E0201]: $4 is out of range")
	assert.Contains(t, formatted, "list ',' Name { erase($4); }")
	assert.Contains(t, formatted, "^^")
	assert.Contains(t, formatted, "valid indices are $1 to $3")
}

func TestMarkerKeepsTabs(t *testing.T) {
	reporter := NewErrorReporter("t.g", "\tx y")
	marker := reporter.createMarker("\tx y", 4, 1, Error)
	assert.Equal(t, "\t  ^", marker)
}

func TestUndefinedNameSuggestions(t *testing.T) {
	pos := ast.Position{Line: 1, Column: 8}

	err := UndefinedName(ErrorUndefinedMacro, "macro", "digt", pos, []string{"digit", "alpha"})
	assert.Equal(t, ErrorUndefinedMacro, err.Code)
	assert.Contains(t, err.Message, "digt")
	assert.Len(t, err.Suggestions, 1)
	assert.Contains(t, err.Suggestions[0].Message, "did you mean 'digit'")

	err = UndefinedName(ErrorUndefinedStart, "start symbol", "xyz", pos, []string{"program"})
	assert.Empty(t, err.Suggestions)
}

func TestWarningFormatting(t *testing.T) {
	reporter := NewErrorReporter("t.g", "%token A\n")
	w := NewWarning(WarningTokenWithoutRule, "token 'A' has no lexical rule", ast.Position{Line: 1, Column: 8}).Build()

	assert.True(t, IsWarning(w.Code))
	assert.Contains(t, reporter.FormatError(w), "warning[E0802]")
}

func TestErrorCategories(t *testing.T) {
	assert.Equal(t, "Syntax", GetErrorCategory(ErrorSyntax))
	assert.Equal(t, "Semantic", GetErrorCategory(ErrorEndpointOrder))
	assert.Equal(t, "Regex", GetErrorCategory(ErrorBadPattern))
	assert.Equal(t, "Warning", GetErrorCategory(WarningConflict))
	assert.False(t, IsWarning(ErrorUndefinedMacro))
	assert.NotEqual(t, "Unknown error code", GetErrorDescription(ErrorCapturesWithActions))
}

func TestLevenshteinDistance(t *testing.T) {
	assert.Equal(t, 0, levenshteinDistance("same", "same"))
	assert.Equal(t, 1, levenshteinDistance("digit", "digt"))
	assert.Equal(t, 3, levenshteinDistance("", "abc"))
	assert.Equal(t, 3, levenshteinDistance("kitten", "sitting"))
}

func TestRuntimeErrors(t *testing.T) {
	ce := &CompileError{Path: "c.g", Diag: CompilerError{Message: "boom", Position: ast.Position{Line: 2, Column: 5}}}
	assert.Equal(t, "c.g(2:5): boom", ce.Error())

	ae := &ActionError{Path: "a.txt", Line: 7, Production: 3, Err: stderrors.New("substr out of range")}
	assert.Equal(t, "a.txt(7): action for production 3: substr out of range", ae.Error())

	ioe := &IOError{Op: "write", Path: "x", Err: fs.ErrPermission}
	assert.ErrorIs(t, ioe, fs.ErrPermission)

	ee := &ExternalCommandError{Command: "false", Stderr: "nope\n", Err: stderrors.New("exit status 1")}
	assert.Equal(t, `command "false" failed: exit status 1: nope`, ee.Error())
}
