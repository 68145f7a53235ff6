package engine

import (
	"gramgrep/internal/action"
	"gramgrep/internal/ir"
	"gramgrep/internal/lalr"
	"gramgrep/internal/replace"
	"gramgrep/token"
)

type tokenSlice []token.Token

func (s tokenSlice) Token(i int) (token.Token, bool) {
	if i >= len(s) {
		return token.Token{}, false
	}
	return s[i], true
}

// searchGrammar tries a parse at every token from from onwards and
// returns the first that the grammar accepts and whose actions succeed.
func (r *run) searchGrammar(f *frame, m *ir.GrammarMatcher, from int) (occurrence, bool) {
	toks := r.tokens(f, m.Lexer)
	accept := reduceFilter(m)
	for i := firstToken(toks, from); i < len(toks); i++ {
		if toks[i].ID <= 0 {
			continue
		}
		res, ok := m.Table.Match(tokenSlice(toks[i:]), accept)
		if !ok {
			continue
		}
		occ, err := r.runActions(f, m, res)
		if err != nil {
			r.actionError(err, r.line(f, res.Span.Start))
			continue
		}
		return occ, true
	}
	return occurrence{}, false
}

// reduceFilter accepts a parse only if it reduced a production of the
// reduce set, when there is one.
func reduceFilter(m *ir.GrammarMatcher) func([]lalr.Reduction) bool {
	if len(m.ReduceSet) == 0 {
		return nil
	}
	return func(trace []lalr.Reduction) bool {
		for _, red := range trace {
			if m.ReduceSet[red.Prod] {
				return true
			}
		}
		return false
	}
}

// runActions executes the commands of every reduction in parse order and
// builds the occurrence from the running match they leave.
func (r *run) runActions(f *frame, m *ir.GrammarMatcher, res lalr.Result) (occurrence, error) {
	src := r.subject(f)
	running := &action.Match{}
	edits := replace.NewMap()
	line := r.line(f, res.Span.Start)

	for _, red := range res.Trace {
		cmds := m.Actions[red.Prod]
		if len(cmds) == 0 {
			continue
		}
		af := &action.Frame{
			Subject:    src,
			FileBacked: f.src < 0,
			Items:      red.Items,
			Span:       red.Span,
			Match:      running,
			Edits:      edits,
			Line:       line,
		}
		if err := r.e.runtime.Execute(r.ctx, af, red.Prod, cmds); err != nil {
			return occurrence{}, err
		}
	}

	occ := occurrence{start: res.Span.Start, end: res.Span.End, next: res.Span, edits: edits}
	switch {
	case running.Set && running.Synthetic:
		occ.synthetic, occ.text = true, running.Text
	case running.Set:
		occ.next = running.Span
	}

	text := func(s lalr.Span) string { return string(src[s.Start:s.End]) }
	if m.Captures {
		occ.captures = make([]string, m.NumSlots)
		occ.captures[0] = text(res.Span)
		for _, red := range res.Trace {
			if slot, ok := m.Groups[m.Grammar.Productions[red.Prod].LHS]; ok {
				occ.captures[slot] = text(red.Span)
			}
		}
	} else if running.Set {
		occ.captures = []string{running.Current(src)}
	} else {
		occ.captures = []string{text(res.Span)}
	}
	return occ, nil
}
