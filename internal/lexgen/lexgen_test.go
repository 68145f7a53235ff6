package lexgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gramgrep/token"
)

func scanAll(t *testing.T, l *Lexer, input string) []string {
	t.Helper()
	src := []byte(input)
	var out []string
	c := Cursor{}
	for {
		tok, next, ok := l.Next(src, c, len(src))
		if !ok {
			return out
		}
		require.Greater(t, next.Pos, c.Pos, "scanner must make progress")
		if tok.ID == token.Invalid {
			out = append(out, "!"+string(tok.Text(src)))
		} else {
			out = append(out, string(tok.Text(src)))
		}
		c = next
	}
}

func TestTranslate(t *testing.T) {
	macros := map[string]string{"digit": "[0-9]"}
	tests := []struct {
		in   string
		want string
		bol  bool
	}{
		{`"a+b"`, `(?:a\+b)`, false},
		{`{digit}+`, `(?:[0-9])+`, false},
		{`x{2,3}`, `x{2,3}`, false},
		{`^#include`, `#include`, true},
		{`[[:alpha:]_]`, `[[:alpha:]_]`, false},
		{`\b`, `\x08`, false},
		{`[^"\\]`, `[^"\\]`, false},
		{`a\/b`, `a/b`, false},
	}
	for _, tt := range tests {
		got, bol, err := Translate(tt.in, macros)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.bol, bol, tt.in)
	}

	_, _, err := Translate(`{nope}`, macros)
	assert.Error(t, err)
	_, _, err = Translate(`"open`, macros)
	assert.Error(t, err)
	_, _, err = Translate(`a/b`, macros)
	assert.Error(t, err)
}

func TestResolveFallsBackToLiteralQuotes(t *testing.T) {
	re, _, err := Resolve(`"([^"\\]|\\.)*"`, nil)
	require.NoError(t, err)
	assert.Equal(t, `"([^"\\]|\\.)*"`, re)

	re, _, err = Resolve(`"a+"b`, nil)
	require.NoError(t, err)
	assert.Equal(t, `(?:a\+)b`, re)

	_, _, err = Resolve(`(a`, nil)
	assert.Error(t, err)
}

func TestLongestMatchAndPriority(t *testing.T) {
	l, err := Compile(Spec{
		Rules: []Rule{
			{Pattern: `if`, ID: 1},
			{Pattern: `[a-z]+`, ID: 2},
			{Pattern: `"=="`, ID: 3},
			{Pattern: `=`, ID: 4},
			{Pattern: `[ \t\n]+`, ID: token.Skip},
		},
	})
	require.NoError(t, err)

	src := []byte("if iffy == x")
	var ids []token.ID
	c := Cursor{}
	for {
		tok, next, ok := l.Next(src, c, len(src))
		if !ok {
			break
		}
		ids = append(ids, tok.ID)
		c = next
	}
	assert.Equal(t, []token.ID{1, 2, 3, 2}, ids)
}

func TestInvalidInputIsGrouped(t *testing.T) {
	l, err := Compile(Spec{Rules: []Rule{{Pattern: `[0-9]+`, ID: 1}}})
	require.NoError(t, err)
	assert.Equal(t, []string{"!ab ", "12", "!-", "3"}, scanAll(t, l, "ab 12-3"))
}

func TestInvalidInputStepsByRune(t *testing.T) {
	// U+FFFD also matches a stray continuation byte.
	rules := []Rule{{Pattern: "\uFFFD", ID: 2}, {Pattern: `[0-9]+`, ID: 1}}
	tests := []struct {
		unicode bool
		want    []string
	}{
		{false, []string{"!\xc3", "\xa9", "1"}},
		{true, []string{"!é", "1"}},
	}
	for _, tt := range tests {
		l, err := Compile(Spec{Rules: rules, Unicode: tt.unicode})
		require.NoError(t, err)
		assert.Equal(t, tt.want, scanAll(t, l, "é1"), "unicode=%v", tt.unicode)
	}
}

func TestStartConditions(t *testing.T) {
	l, err := Compile(Spec{
		States: []StateDecl{{Name: "COMMENT", Exclusive: true}},
		Rules: []Rule{
			{Pattern: `"/*"`, ID: token.Skip, Next: "COMMENT"},
			{States: []string{"COMMENT"}, Pattern: `"*/"`, ID: token.Skip, Next: Initial},
			{States: []string{"COMMENT"}, Pattern: `(?s:.)`, ID: token.Skip},
			{Pattern: `[a-z]+`, ID: 1},
			{Pattern: `\s+`, ID: token.Skip},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "d"}, scanAll(t, l, "a /* b c */ d"))
}

func TestBeginningOfLineRule(t *testing.T) {
	l, err := Compile(Spec{Rules: []Rule{
		{Pattern: `^#[a-z]+`, ID: 1},
		{Pattern: `#`, ID: 2},
		{Pattern: `[a-z\n ]`, ID: token.Skip},
	}})
	require.NoError(t, err)
	src := []byte("#if x #y\n#end")
	var ids []token.ID
	c := Cursor{}
	for {
		tok, next, ok := l.Next(src, c, len(src))
		if !ok {
			break
		}
		ids = append(ids, tok.ID)
		c = next
	}
	assert.Equal(t, []token.ID{1, 2, 1}, ids)
}

func TestCaselessAndMacros(t *testing.T) {
	l, err := Compile(Spec{
		Caseless: true,
		Macros:   []Macro{{Name: "kw", Pattern: `select|from`}},
		Rules: []Rule{
			{Pattern: `{kw}`, ID: 1},
			{Pattern: `\s+`, ID: token.Skip},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"SELECT", "From"}, scanAll(t, l, "SELECT From"))
}

func TestCompileErrorsCarryLine(t *testing.T) {
	_, err := Compile(Spec{Rules: []Rule{{Pattern: `[a-`, ID: 1, Line: 7}}})
	require.Error(t, err)
	var pe *PatternError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 7, pe.Line)

	_, err = Compile(Spec{Rules: []Rule{{Pattern: `a`, ID: 1, Next: "NOPE"}}})
	assert.Error(t, err)
}
