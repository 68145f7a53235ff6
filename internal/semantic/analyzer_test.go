package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gramgrep/internal/errors"
	"gramgrep/internal/parser"
)

func analyze(t *testing.T, source string) (*Context, *Analyzer) {
	t.Helper()
	cfg, parseErrors, scanErrors := parser.ParseSource("test.g", source)
	require.Empty(t, scanErrors)
	require.Empty(t, parseErrors)
	a := NewAnalyzer()
	return a.Analyze(cfg), a
}

func codes(errs []errors.CompilerError) []string {
	var out []string
	for _, e := range errs {
		out = append(out, e.Code)
	}
	return out
}

const exprConfig = `%token Num
%left '+' '-'
%left '*'
%%
expr: expr '+' expr { print($1); }
    | expr '*' expr
    | '(' expr ')'
    | Num
    ;
%%
digit [0-9]
%%
{digit}+  Num
"+"       '+'
"*"       '*'
[ \t]+    skip()
%%
`

func TestAnalyzeSymbols(t *testing.T) {
	ctx, a := analyze(t, exprConfig)
	require.Empty(t, a.Errors())

	assert.Equal(t, "expr", ctx.Start)
	assert.Equal(t, []string{"expr"}, ctx.Nonterminals)

	var keys []string
	for _, s := range ctx.Terminals {
		keys = append(keys, s.Key())
	}
	assert.Equal(t, []string{"Num", "'+", "'-", "'*", "'(", "')"}, keys)

	assert.Equal(t, 1, ctx.Prec["'+"].Level)
	assert.Equal(t, 2, ctx.Prec["'*"].Level)
	assert.Len(t, ctx.Rules["expr"], 4)
	assert.Len(t, ctx.Scripts, 1)
}

func TestAnalyzeWarnings(t *testing.T) {
	_, a := analyze(t, `%token Unused
%%
s: 'a' t;
t: 'b';
orphan: 'c';
%%
%%
a   'a'
b   'b'
z   Zed
%%
`)
	require.Empty(t, a.Errors())
	assert.Equal(t, []string{
		errors.WarningTokenWithoutRule,
		errors.WarningUnusedToken,
		errors.WarningUnreachableRule,
	}, codes(a.Warnings()))
}

func TestAnalyzeTokenOnlyConfig(t *testing.T) {
	ctx, a := analyze(t, "%%\n%%\n%%\n[0-9]+ Num\n%%\n")
	require.Empty(t, a.Errors())
	assert.False(t, ctx.HasGrammar())
	assert.Empty(t, a.Warnings())
}

func TestAnalyzeErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		code   string
	}{
		{"unknown start", "%start nope\n%%\ns: 'a';\n%%\n%%\n%%\n", errors.ErrorUndefinedStart},
		{"token defined by rule", "%token s\n%%\ns: 'a';\n%%\n%%\n%%\n", errors.ErrorDuplicateDeclaration},
		{"undefined prec token", "%%\ns: 'a' %prec '+';\n%%\n%%\n%%\n", errors.ErrorUndefinedPrecToken},
		{"unknown option", "%option fast\n%%\n%%\n%%\n%%\n", errors.ErrorUnknownDirective},
		{"duplicate state", "%x A\n%s A\n%%\n%%\n%%\n%%\n", errors.ErrorDuplicateDeclaration},
		{"symbol index", "%%\ns: 'a' { erase($2); };\n%%\n%%\n%%\n", errors.ErrorSymbolIndex},
		{"dollar zero", "%%\ns: 'a' { print($0); };\n%%\n%%\n%%\n", errors.ErrorSymbolIndex},
		{"endpoint order", "%%\ns: 'a' 'b' { erase($2, $1); };\n%%\n%%\n%%\n", errors.ErrorEndpointOrder},
		{"same symbol sides", "%%\ns: 'a' { erase($1.second, $1.first); };\n%%\n%%\n%%\n", errors.ErrorEndpointOrder},
		{"side in value", "%%\ns: 'a' { print($1.first); };\n%%\n%%\n%%\n", errors.ErrorEndpointInValue},
		{"argument count", "%%\ns: 'a' { print(toupper($1, $1)); };\n%%\n%%\n%%\n", errors.ErrorArgumentCount},
		{"empty format", "%%\ns: 'a' { print(format()); };\n%%\n%%\n%%\n", errors.ErrorArgumentCount},
		{"bad replace pattern", "%%\ns: 'a' { replace_all($1, '(', 'x'); };\n%%\n%%\n%%\n", errors.ErrorBadReplacePattern},
		{"action syntax", "%%\ns: 'a' { erase $1; };\n%%\n%%\n%%\n", errors.ErrorActionSyntax},
		{"captures with actions", "%captures\n%%\ns: ('a') { print($1); };\n%%\n%%\n%%\n", errors.ErrorCapturesWithActions},
		{"undefined macro", "%%\n%%\n%%\n{digit}+ Num\n%%\n", errors.ErrorUndefinedMacro},
		{"duplicate macro", "%%\n%%\nd [0-9]\nd [a-z]\n%%\n%%\n", errors.ErrorDuplicateDeclaration},
		{"unknown state", "%%\n%%\n%%\n<STR>[a-z]+ Word\n%%\n", errors.ErrorUnknownStartCondition},
		{"unknown next state", "%%\n%%\n%%\n\"/*\" <COMMENT>skip()\n%%\n", errors.ErrorUnknownStartCondition},
		{"bad pattern", "%%\n%%\n%%\na(b Word\n%%\n", errors.ErrorBadPattern},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, a := analyze(t, tt.source)
			require.NotEmpty(t, a.Errors())
			assert.Equal(t, tt.code, a.Errors()[0].Code)
		})
	}
}

func TestActionErrorPosition(t *testing.T) {
	_, a := analyze(t, "%%\ns: 'a' {\n  print($1);\n  erase($3);\n};\n%%\n%%\n%%\n")
	require.Len(t, a.Errors(), 1)
	err := a.Errors()[0]
	assert.Equal(t, errors.ErrorSymbolIndex, err.Code)
	assert.Equal(t, 4, err.Position.Line)
	assert.Equal(t, 9, err.Position.Column)
}

func TestEmptyActionAllowedWithCaptures(t *testing.T) {
	_, a := analyze(t, "%captures\n%%\ns: ('a') 'b' {};\n%%\n%%\n%%\n")
	assert.Empty(t, a.Errors())
}

func TestScenarioConfig(t *testing.T) {
	ctx, a := analyze(t, "%%\nlist: String { match = substr($1, 1, 1); };\n%%\n%%\n\"([^\"\\\\]|\\\\.)*\" String\n%%\n")
	require.Empty(t, a.Errors())
	assert.Equal(t, "list", ctx.Start)
	require.Len(t, ctx.Terminals, 1)
	assert.Equal(t, "String", ctx.Terminals[0].Name)
}
