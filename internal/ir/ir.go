// Package ir holds compiled matcher definitions: the stages of a search
// pipeline and the action commands attached to grammar productions.
package ir

import (
	"fmt"
	"regexp"
	"strings"

	"gramgrep/internal/lalr"
	"gramgrep/internal/lexgen"
)

// Flags are the per-stage search modifiers.
type Flags struct {
	Negate       bool
	NegateAll    bool
	WholeWord    bool
	ExtendSearch bool
	Caseless     bool
	Unicode      bool
}

func (f Flags) String() string {
	var parts []string
	add := func(on bool, name string) {
		if on {
			parts = append(parts, name)
		}
	}
	add(f.Negate, "negate")
	add(f.NegateAll, "negate-all")
	add(f.WholeWord, "whole-word")
	add(f.ExtendSearch, "extend-search")
	add(f.Caseless, "caseless")
	add(f.Unicode, "utf8")
	return strings.Join(parts, ",")
}

// Matcher is one pipeline stage. The set of implementations is closed:
// *TextMatcher, *RegexMatcher, *TokenMatcher and *GrammarMatcher.
type Matcher interface {
	MatcherFlags() Flags
	Describe() string
	matcher()
}

// TextMatcher finds a literal string. Fold is set for caseless searches.
type TextMatcher struct {
	Flags   Flags
	Pattern string
	Fold    *regexp.Regexp
}

// RegexMatcher finds a flex-syntax regular expression. Regexp reports
// leftmost-longest matches; BOL restricts matches to line starts.
type RegexMatcher struct {
	Flags   Flags
	Pattern string
	Regexp  *regexp.Regexp
	BOL     bool
}

// TokenMatcher reports every token its lexer produces. Tokens maps token
// ids to names.
type TokenMatcher struct {
	Flags  Flags
	Name   string
	Lexer  *lexgen.Lexer
	Tokens []string
}

// GrammarMatcher recognises sentences of a grammar anywhere in the token
// stream. Lexer token ids are grammar terminal indices.
type GrammarMatcher struct {
	Flags   Flags
	Name    string
	Lexer   *lexgen.Lexer
	Grammar *lalr.Grammar
	Table   *lalr.Table

	// Captures mode: Groups maps the helper nonterminal of each ( ) group to
	// its capture slot. Slot 0 is the whole match.
	Captures bool
	Groups   map[int]int
	NumSlots int

	// ReduceSet holds productions with an action block; when non-empty a
	// match must reduce at least one of them.
	ReduceSet map[int]bool
	Actions   map[int][]Command
}

func (m *TextMatcher) MatcherFlags() Flags    { return m.Flags }
func (m *RegexMatcher) MatcherFlags() Flags   { return m.Flags }
func (m *TokenMatcher) MatcherFlags() Flags   { return m.Flags }
func (m *GrammarMatcher) MatcherFlags() Flags { return m.Flags }

func (m *TextMatcher) Describe() string    { return fmt.Sprintf("text %q", m.Pattern) }
func (m *RegexMatcher) Describe() string   { return fmt.Sprintf("regex %q", m.Pattern) }
func (m *TokenMatcher) Describe() string   { return fmt.Sprintf("tokens %s", m.Name) }
func (m *GrammarMatcher) Describe() string { return fmt.Sprintf("grammar %s", m.Name) }

func (*TextMatcher) matcher()    {}
func (*RegexMatcher) matcher()   {}
func (*TokenMatcher) matcher()   {}
func (*GrammarMatcher) matcher() {}

// NewTextMatcher builds a literal stage.
func NewTextMatcher(pattern string, flags Flags) (*TextMatcher, error) {
	if pattern == "" {
		return nil, fmt.Errorf("empty search text")
	}
	m := &TextMatcher{Flags: flags, Pattern: pattern}
	if flags.Caseless {
		m.Fold = regexp.MustCompile("(?i)" + regexp.QuoteMeta(pattern))
	}
	return m, nil
}

// NewRegexMatcher translates and compiles a flex-syntax pattern.
func NewRegexMatcher(pattern string, flags Flags) (*RegexMatcher, error) {
	re, bol, err := lexgen.Resolve(pattern, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid regular expression %q: %w", pattern, err)
	}
	prefix := "(?m)"
	if flags.Caseless {
		prefix = "(?mi)"
	}
	if bol {
		re = "^(?:" + re + ")"
	}
	compiled, err := regexp.Compile(prefix + re)
	if err != nil {
		return nil, fmt.Errorf("invalid regular expression %q: %w", pattern, err)
	}
	compiled.Longest()
	return &RegexMatcher{Flags: flags, Pattern: pattern, Regexp: compiled, BOL: bol}, nil
}

// Pipeline is the ordered list of stages; stage i searches the range left
// by stage i-1.
type Pipeline struct {
	Stages []Matcher
}

// Validate rejects flag combinations no stage can honour.
func (p Pipeline) Validate() error {
	if len(p.Stages) == 0 {
		return fmt.Errorf("no search stages given")
	}
	for i, s := range p.Stages {
		f := s.MatcherFlags()
		if f.NegateAll && f.ExtendSearch {
			return fmt.Errorf("stage %d (%s): --invert-all cannot be combined with --extend-search", i+1, s.Describe())
		}
		if f.NegateAll && f.Negate {
			return fmt.Errorf("stage %d (%s): --invert and --invert-all are exclusive", i+1, s.Describe())
		}
	}
	return nil
}
