package compiler

import (
	goerrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gramgrep/internal/errors"
	"gramgrep/internal/ir"
)

func TestCompileScenarioConfig(t *testing.T) {
	src := "%%\nlist: String { match = substr($1, 1, 1); };\n%%\n%%\n\"([^\"\\\\]|\\\\.)*\" String\n%%\n"
	res, err := Compile("str.g", src, ir.Flags{})
	require.NoError(t, err)
	gm, ok := res.Matcher.(*ir.GrammarMatcher)
	require.True(t, ok)
	assert.Len(t, gm.Actions, 1)
	assert.Empty(t, res.Warnings)
}

func TestCompileEmptyGrammar(t *testing.T) {
	res, err := Compile("empty.g", "%%\n%%\n%%\n%%\n", ir.Flags{})
	require.NoError(t, err)
	tm, ok := res.Matcher.(*ir.TokenMatcher)
	require.True(t, ok)
	assert.Equal(t, 1, tm.Lexer.NumRules())
}

func TestCompileErrorPosition(t *testing.T) {
	_, err := Compile("bad.g", "%%\ns: 'a' 'b' { erase($2, $1); };\n%%\n%%\n%%\n", ir.Flags{})
	require.Error(t, err)

	var ce *errors.CompileError
	require.True(t, goerrors.As(err, &ce))
	assert.Equal(t, errors.ErrorEndpointOrder, ce.Diag.Code)
	assert.Equal(t, "bad.g(2:20): ", err.Error()[:len("bad.g(2:20): ")])
}

func TestCompileSyntaxError(t *testing.T) {
	_, err := Compile("bad.g", "%%\ns: 'a'\n%%\n%%\n%%\n", ir.Flags{})
	require.Error(t, err)
	var ce *errors.CompileError
	require.True(t, goerrors.As(err, &ce))
	assert.Equal(t, errors.ErrorSyntax, ce.Diag.Code)
}

func TestCompileWarnings(t *testing.T) {
	res, err := Compile("warn.g", "%%\ne: e '+' e | 'n';\n%%\n%%\n%%\n", ir.Flags{})
	require.NoError(t, err)
	require.NotEmpty(t, res.Warnings)
	assert.Equal(t, errors.WarningConflict, res.Warnings[0].Code)
	assert.Contains(t, res.Reporter.Header(res.Warnings[0]), "warn.g(2:1): warning[E0801]")
}

func TestCompileFile(t *testing.T) {
	_, err := CompileFile(filepath.Join(t.TempDir(), "missing.g"), ir.Flags{})
	var ioErr *errors.IOError
	require.True(t, goerrors.As(err, &ioErr))

	path := filepath.Join(t.TempDir(), "tokens.g")
	require.NoError(t, os.WriteFile(path, []byte("%%\n%%\n%%\n[0-9]+ Num\n%%\n"), 0o644))
	res, err := CompileFile(path, ir.Flags{Caseless: true})
	require.NoError(t, err)
	assert.True(t, res.Matcher.MatcherFlags().Caseless)
}
