package engine

import (
	"bytes"
	"context"
	goerrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gramgrep/internal/compiler"
	"gramgrep/internal/errors"
	"gramgrep/internal/ir"
	"gramgrep/internal/replace"
)

func text(t *testing.T, pattern string, flags ir.Flags) ir.Matcher {
	t.Helper()
	m, err := ir.NewTextMatcher(pattern, flags)
	require.NoError(t, err)
	return m
}

func regex(t *testing.T, pattern string, flags ir.Flags) ir.Matcher {
	t.Helper()
	m, err := ir.NewRegexMatcher(pattern, flags)
	require.NoError(t, err)
	return m
}

func config(t *testing.T, source string, flags ir.Flags) ir.Matcher {
	t.Helper()
	res, err := compiler.Compile("test.g", source, flags)
	require.NoError(t, err)
	return res.Matcher
}

func search(t *testing.T, subject string, opts Options, stages ...ir.Matcher) *Result {
	t.Helper()
	p := ir.Pipeline{Stages: stages}
	require.NoError(t, p.Validate())
	res, err := New(p, opts).Search(context.Background(), "subject.txt", []byte(subject))
	require.NoError(t, err)
	return res
}

func texts(hits []Hit) []string {
	out := []string{}
	for _, h := range hits {
		out = append(out, h.Text)
	}
	return out
}

func TestSingleTextHit(t *testing.T) {
	res := search(t, "alpha\nbeta foo gamma\ndelta\n", Options{}, text(t, "foo", ir.Flags{}))
	require.Len(t, res.Hits, 1)
	assert.Equal(t, Hit{Line: 2, LineText: "beta foo gamma", Start: 11, End: 14, Text: "foo"}, res.Hits[0])
	assert.Equal(t, 0, res.Edits.Len())
}

func TestNegate(t *testing.T) {
	res := search(t, "a foo b", Options{}, text(t, "foo", ir.Flags{Negate: true}))
	assert.Equal(t, []string{"a ", " b"}, texts(res.Hits))

	res = search(t, "foofoo", Options{}, text(t, "foo", ir.Flags{Negate: true}))
	assert.Empty(t, res.Hits)
}

func TestNegateAll(t *testing.T) {
	res := search(t, "keep me\ndrop this\n", Options{},
		regex(t, `[^\n]+`, ir.Flags{}),
		text(t, "drop", ir.Flags{NegateAll: true}))
	assert.Equal(t, []string{"keep me"}, texts(res.Hits))
}

func TestWholeWord(t *testing.T) {
	res := search(t, "foobar foo", Options{}, text(t, "foo", ir.Flags{WholeWord: true}))
	require.Len(t, res.Hits, 1)
	assert.Equal(t, 7, res.Hits[0].Start)
}

func TestCaseless(t *testing.T) {
	res := search(t, "Foo fOO bar", Options{}, text(t, "foo", ir.Flags{Caseless: true}))
	assert.Equal(t, []string{"Foo", "fOO"}, texts(res.Hits))
}

func TestPipelineNarrows(t *testing.T) {
	res := search(t, "int x = 1;\nfloat y = 2;\n", Options{},
		regex(t, `[a-z]+ [a-z]+ =`, ir.Flags{}),
		text(t, "y", ir.Flags{}))
	require.Len(t, res.Hits, 1)
	assert.Equal(t, 2, res.Hits[0].Line)
	assert.Equal(t, "float y = 2;", res.Hits[0].LineText)
}

func TestExtendSearch(t *testing.T) {
	res := search(t, "12 key 34 56", Options{},
		text(t, "key", ir.Flags{ExtendSearch: true}),
		regex(t, `[0-9]+`, ir.Flags{}))
	assert.Equal(t, []string{"34", "56"}, texts(res.Hits))
}

func TestRegexLineStart(t *testing.T) {
	res := search(t, "ab\nbc", Options{}, regex(t, `^b`, ir.Flags{}))
	require.Len(t, res.Hits, 1)
	assert.Equal(t, 2, res.Hits[0].Line)
}

func TestEmptyMatchesAdvance(t *testing.T) {
	res := search(t, "xax", Options{}, regex(t, `a*`, ir.Flags{}))
	assert.Equal(t, []string{"", "a", ""}, texts(res.Hits))
}

func TestQuotedStringScenario(t *testing.T) {
	m := config(t, "%%\nlist: String { match = substr($1, 1, 1); };\n%%\n%%\n\"([^\"\\\\]|\\\\.)*\" String\n%%\n", ir.Flags{})
	res := search(t, `say "hi" now`, Options{}, m)
	require.Len(t, res.Hits, 1)
	assert.Equal(t, "hi", res.Hits[0].Text)
	assert.Equal(t, 5, res.Hits[0].Start)
	assert.Empty(t, res.Errors)
}

func TestEraseInsertScenario(t *testing.T) {
	m := config(t, "%%\na: Word Num { erase($2); insert($2.second, 'X'); };\n%%\n%%\n[a-z]+ Word\n[0-9]+ Num\n[ ]+ skip()\n%%\n", ir.Flags{})
	subject := "abcd 567 ijk"
	res := search(t, subject, Options{Modify: true}, m)
	assert.Equal(t, []string{"abcd 567"}, texts(res.Hits))

	assert.Equal(t, []replace.Edit{
		{Offset: 8, Length: 0, Text: "X"},
		{Offset: 5, Length: 3, Text: ""},
	}, res.Edits.Sorted())
	out, err := replace.Apply([]byte(subject), res.Edits)
	require.NoError(t, err)
	assert.Equal(t, "abcd X ijk", string(out))

	res = search(t, subject, Options{}, m)
	assert.Equal(t, 0, res.Edits.Len(), "edits need Modify")
}

func TestGrammarEditsMergeOncePerMatch(t *testing.T) {
	m := config(t, "%%\nw: Word { insert($1.second, '!'); };\n%%\n%%\n[a-z]+ Word\n[ ]+ skip()\n%%\n", ir.Flags{})
	subject := "banana x"
	res := search(t, subject, Options{Modify: true}, m, text(t, "a", ir.Flags{}))
	assert.Equal(t, []string{"a", "a", "a"}, texts(res.Hits))

	assert.Equal(t, []replace.Edit{{Offset: 6, Length: 0, Text: "!"}}, res.Edits.Sorted())
	out, err := replace.Apply([]byte(subject), res.Edits)
	require.NoError(t, err)
	assert.Equal(t, "banana! x", string(out))
}

func TestUnicodeStages(t *testing.T) {
	starts := func(hits []Hit) []int {
		out := []int{}
		for _, h := range hits {
			out = append(out, h.Start)
		}
		return out
	}
	tests := []struct {
		name    string
		subject string
		stage   func(flags ir.Flags) ir.Matcher
		ascii   []int
		unicode []int
	}{
		{
			name:    "whole word after a letter outside ASCII",
			subject: "éfoo foo",
			stage:   func(f ir.Flags) ir.Matcher { f.WholeWord = true; return text(t, "foo", f) },
			ascii:   []int{2, 6},
			unicode: []int{6},
		},
		{
			name:    "empty match advances one character",
			subject: "éa",
			stage:   func(f ir.Flags) ir.Matcher { return regex(t, `x*`, f) },
			ascii:   []int{0, 1, 2},
			unicode: []int{0, 2},
		},
		{
			name:    "whole word regex",
			subject: "naïve ve",
			stage:   func(f ir.Flags) ir.Matcher { f.WholeWord = true; return regex(t, `ve`, f) },
			ascii:   []int{4, 7},
			unicode: []int{7},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := search(t, tt.subject, Options{}, tt.stage(ir.Flags{}))
			assert.Equal(t, tt.ascii, starts(res.Hits), "ascii")
			res = search(t, tt.subject, Options{}, tt.stage(ir.Flags{Unicode: true}))
			assert.Equal(t, tt.unicode, starts(res.Hits), "utf8")
		})
	}
}

func TestTokenMatcher(t *testing.T) {
	m := config(t, "%%\n%%\n%%\n[0-9]+ Num\n%%\n", ir.Flags{})
	res := search(t, "a 12 b 3", Options{}, m)
	assert.Equal(t, []string{"12", "3"}, texts(res.Hits))
}

func TestSyntheticMatchFeedsNextStage(t *testing.T) {
	m := config(t, "%%\nnum: Num { match = format('<{}>', $1); };\n%%\n%%\n[0-9]+ Num\n%%\n", ir.Flags{})
	res := search(t, "a 12 b", Options{}, m, text(t, "<", ir.Flags{}))
	require.Len(t, res.Hits, 1)
	assert.Equal(t, Hit{Line: 1, LineText: "a 12 b", Start: 2, End: 4, Text: "<"}, res.Hits[0])
}

func TestActionErrorsAreCollected(t *testing.T) {
	m := config(t, "%%\nw: Word { match = substr($1, 3, 0); };\n%%\n%%\n[a-z]+ Word\n[ ]+ skip()\n%%\n", ir.Flags{})
	res := search(t, "ab abcd", Options{}, m)
	assert.Equal(t, []string{"d"}, texts(res.Hits))
	require.Len(t, res.Errors, 1)

	var ae *errors.ActionError
	require.True(t, goerrors.As(res.Errors[0], &ae))
	assert.Equal(t, "subject.txt", ae.Path)
	assert.Equal(t, 1, ae.Line)
}

func TestPrintAction(t *testing.T) {
	var out bytes.Buffer
	m := config(t, "%%\nw: Word { print(format('[{}]', $1)); };\n%%\n%%\n[a-z]+ Word\n%%\n", ir.Flags{})
	search(t, "ab, cd", Options{Stdout: &out}, m)
	assert.Equal(t, "[ab][cd]", out.String())
}

func TestCapturesAndReplace(t *testing.T) {
	m := config(t, "%captures\n%%\npair: (Word) '=' (Word);\n%%\n%%\n[a-z]+ Word\n%%\n", ir.Flags{})
	res := search(t, "x a=b y", Options{Replace: "$2=$1", HasReplace: true}, m)
	require.Len(t, res.Hits, 1)
	text, ok := res.Edits.Lookup(2, 3)
	require.True(t, ok)
	assert.Equal(t, "b=a", text)
}

func TestGlobalReplace(t *testing.T) {
	res := search(t, "a foo b foo", Options{Replace: "[$0]", HasReplace: true}, text(t, "foo", ir.Flags{}))
	out, err := replace.Apply([]byte("a foo b foo"), res.Edits)
	require.NoError(t, err)
	assert.Equal(t, "a [foo] b [foo]", string(out))
}

func TestSearchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e := New(ir.Pipeline{Stages: []ir.Matcher{text(t, "a", ir.Flags{})}}, Options{})
	_, err := e.Search(ctx, "x", []byte("aaa"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExpand(t *testing.T) {
	assert.Equal(t, "b-a $5 $", expand("$1-$0 $5 $", []string{"a", "b"}))
}

func TestLineIndex(t *testing.T) {
	l := lineIndex{buf: []byte("one\r\ntwo\nthree")}
	n, text := l.lookup(6)
	assert.Equal(t, 2, n)
	assert.Equal(t, "two", text)
	n, text = l.lookup(12)
	assert.Equal(t, 3, n)
	assert.Equal(t, "three", text)
	n, text = l.lookup(0)
	assert.Equal(t, 1, n)
	assert.Equal(t, "one", text)
}
