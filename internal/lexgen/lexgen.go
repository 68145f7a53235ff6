// Package lexgen compiles flex-like lexical rules into a scanner that can be
// asked for the next token from any position of a buffer.
package lexgen

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"gramgrep/token"
)

const (
	// Initial is the name of the default start condition.
	Initial = "INITIAL"

	// StayState keeps the current start condition after a rule fires.
	StayState = "."

	// AnyState scopes a rule to every start condition.
	AnyState = "*"
)

// Macro is a named regex referenced from rules as {Name}.
type Macro struct {
	Name    string
	Pattern string
	Line    int
}

// Rule is one lexical rule. States lists the start conditions the rule is
// active in (empty means INITIAL plus every inclusive condition).
type Rule struct {
	States  []string
	Pattern string
	ID      token.ID
	Name    string
	Next    string
	Line    int
}

// StateDecl declares a start condition (%x exclusive, %s inclusive).
type StateDecl struct {
	Name      string
	Exclusive bool
}

// Spec is a complete rule set.
type Spec struct {
	Macros   []Macro
	Rules    []Rule
	States   []StateDecl
	Caseless bool
	Unicode  bool
}

// PatternError reports a rule or macro that failed to compile.
type PatternError struct {
	Line    int
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %v", e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

type compiledRule struct {
	re   *regexp.Regexp
	bol  bool
	id   token.ID
	next int // -1 keeps the current state
	rule Rule
}

type state struct {
	name  string
	rules []int
	// any is the unanchored union of the state's rules, used to jump over
	// input no rule recognises.
	any *regexp.Regexp
}

// Lexer is an immutable compiled rule set.
type Lexer struct {
	rules   []compiledRule
	states  []state
	index   map[string]int
	unicode bool
}

// Compile translates and compiles every macro and rule.
func Compile(spec Spec) (*Lexer, error) {
	l := &Lexer{
		index:   map[string]int{Initial: 0},
		states:  []state{{name: Initial}},
		unicode: spec.Unicode,
	}
	exclusive := map[string]bool{}
	for _, decl := range spec.States {
		if _, dup := l.index[decl.Name]; dup {
			return nil, fmt.Errorf("start condition %s declared twice", decl.Name)
		}
		l.index[decl.Name] = len(l.states)
		l.states = append(l.states, state{name: decl.Name})
		exclusive[decl.Name] = decl.Exclusive
	}

	macros := make(map[string]string, len(spec.Macros))
	for _, m := range spec.Macros {
		re, bol, err := Resolve(m.Pattern, macros)
		if err == nil && bol {
			err = fmt.Errorf("'^' is not allowed in a macro")
		}
		if err != nil {
			return nil, &PatternError{Line: m.Line, Pattern: m.Pattern, Err: err}
		}
		macros[m.Name] = re
	}

	flags := "(?m)"
	if spec.Caseless {
		flags = "(?mi)"
	}
	unions := make([][]string, len(l.states))
	for _, r := range spec.Rules {
		re, bol, err := Resolve(r.Pattern, macros)
		if err != nil {
			return nil, &PatternError{Line: r.Line, Pattern: r.Pattern, Err: err}
		}
		compiled, err := regexp.Compile(flags + `\A(?:` + re + `)`)
		if err != nil {
			return nil, &PatternError{Line: r.Line, Pattern: r.Pattern, Err: err}
		}
		compiled.Longest()

		next := -1
		if r.Next != "" && r.Next != StayState {
			n, ok := l.index[r.Next]
			if !ok {
				return nil, &PatternError{Line: r.Line, Pattern: r.Pattern, Err: fmt.Errorf("unknown start condition <%s>", r.Next)}
			}
			next = n
		}

		idx := len(l.rules)
		l.rules = append(l.rules, compiledRule{re: compiled, bol: bol, id: r.ID, next: next, rule: r})

		active, err := l.activeStates(r, exclusive)
		if err != nil {
			return nil, &PatternError{Line: r.Line, Pattern: r.Pattern, Err: err}
		}
		for _, s := range active {
			l.states[s].rules = append(l.states[s].rules, idx)
			unions[s] = append(unions[s], "(?:"+re+")")
		}
	}

	for i := range l.states {
		if len(unions[i]) == 0 {
			continue
		}
		any, err := regexp.Compile(flags + strings.Join(unions[i], "|"))
		if err != nil {
			return nil, fmt.Errorf("start condition %s: %w", l.states[i].name, err)
		}
		l.states[i].any = any
	}
	return l, nil
}

func (l *Lexer) activeStates(r Rule, exclusive map[string]bool) ([]int, error) {
	if len(r.States) == 0 {
		active := []int{0}
		for i := 1; i < len(l.states); i++ {
			if !exclusive[l.states[i].name] {
				active = append(active, i)
			}
		}
		return active, nil
	}
	var active []int
	for _, name := range r.States {
		if name == AnyState {
			active = active[:0]
			for i := range l.states {
				active = append(active, i)
			}
			return active, nil
		}
		s, ok := l.index[name]
		if !ok {
			return nil, fmt.Errorf("unknown start condition <%s>", name)
		}
		active = append(active, s)
	}
	return active, nil
}

// NumRules returns the number of compiled rules.
func (l *Lexer) NumRules() int {
	return len(l.rules)
}

// Rule returns the source of rule i.
func (l *Lexer) Rule(i int) Rule {
	return l.rules[i].rule
}

// StateName returns the name of start condition s.
func (l *Lexer) StateName(s int) string {
	return l.states[s].name
}

// Cursor is the resumable position of a scan.
type Cursor struct {
	Pos   int
	State int
}

// Next returns the next non-skipped token in src[c.Pos:end] and the cursor
// following it. Input that no rule recognises is returned as a single
// token.Invalid token spanning up to the next position where some rule could
// start. ok is false at end of input.
func (l *Lexer) Next(src []byte, c Cursor, end int) (tok token.Token, next Cursor, ok bool) {
	for c.Pos < end {
		st := &l.states[c.State]
		best, bestLen := -1, 0
		atBOL := c.Pos == 0 || src[c.Pos-1] == '\n'
		for _, ri := range st.rules {
			r := &l.rules[ri]
			if r.bol && !atBOL {
				continue
			}
			loc := r.re.FindIndex(src[c.Pos:end])
			if loc != nil && loc[1] > bestLen {
				best, bestLen = ri, loc[1]
			}
		}

		if best < 0 {
			stop := l.skipInvalid(src, c, end)
			return token.Token{ID: token.Invalid, Start: c.Pos, End: stop}, Cursor{Pos: stop, State: c.State}, true
		}

		r := &l.rules[best]
		tok = token.Token{ID: r.id, Start: c.Pos, End: c.Pos + bestLen}
		c.Pos += bestLen
		if r.next >= 0 {
			c.State = r.next
		}
		if r.id == token.Skip {
			continue
		}
		return tok, c, true
	}
	return token.Token{ID: token.EOF, Start: end, End: end}, c, false
}

// skipInvalid finds the end of a run of unrecognised input starting at c.Pos.
func (l *Lexer) skipInvalid(src []byte, c Cursor, end int) int {
	step := 1
	if l.unicode {
		_, step = utf8.DecodeRune(src[c.Pos:end])
	}
	from := c.Pos + step
	any := l.states[c.State].any
	if any == nil || from >= end {
		return min(from, end)
	}
	loc := any.FindIndex(src[from:end])
	if loc == nil {
		return end
	}
	return from + loc[0]
}
