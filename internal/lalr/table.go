package lalr

import (
	"gramgrep/token"
)

// ActionKind is the kind of a parse table entry.
type ActionKind uint8

const (
	Error ActionKind = iota
	Shift
	Reduce
	Accept
)

// Action is one ACTION table cell. Arg is the target state for Shift and the
// production for Reduce. An Error cell with Arg 1 was made an error by a
// %nonassoc declaration.
type Action struct {
	Kind ActionKind
	Arg  int32
}

type prodInfo struct {
	lhs    int
	length int
}

// Table is an immutable LALR(1) parse table.
type Table struct {
	numTerminals int
	action       [][]Action
	gotos        [][]int32
	prods        []prodInfo
}

// NumStates returns the number of parser states.
func (t *Table) NumStates() int {
	return len(t.action)
}

// Action returns the ACTION entry for state s on terminal a.
func (t *Table) Action(s, a int) Action {
	return t.action[s][a]
}

// Span is a half-open byte range.
type Span struct {
	Start int
	End   int
}

func (s Span) Len() int {
	return s.End - s.Start
}

// Reduction records one reduce step: the production, the span of its LHS and
// the spans of its right-hand-side symbols.
type Reduction struct {
	Prod  int
	Span  Span
	Items []Span
}

// Result is a successful match.
type Result struct {
	Span   Span
	Tokens int
	Trace  []Reduction
}

// TokenSource yields the token stream starting at a candidate match start.
// Token returns false once no token is left.
type TokenSource interface {
	Token(i int) (token.Token, bool)
}

type entry struct {
	state int
	span  Span
}

// Match parses the longest prefix of src that reduces to the start symbol.
// A prefix counts only if it consumes at least one token and, when accept is
// non-nil, accept approves its reduction trace.
func (t *Table) Match(src TokenSource, accept func([]Reduction) bool) (Result, bool) {
	first, ok := src.Token(0)
	if !ok || first.ID < 0 {
		return Result{}, false
	}
	stack := []entry{{state: 0, span: Span{Start: first.Start, End: first.Start}}}
	var trace []Reduction
	var best Result
	found := false

	for i := 0; ; {
		tok, more := src.Token(i)
		if i > 0 {
			if res, ok := t.acceptAtEnd(stack, trace); ok && (accept == nil || accept(res.Trace)) {
				res.Span = Span{Start: first.Start, End: stack[len(stack)-1].span.End}
				res.Tokens = i
				best, found = res, true
			}
		}
		if !more || tok.ID < 0 || int(tok.ID) >= t.numTerminals {
			break
		}

		shifted := false
		for !shifted {
			act := t.action[stack[len(stack)-1].state][tok.ID]
			switch act.Kind {
			case Shift:
				stack = append(stack, entry{state: int(act.Arg), span: Span{Start: tok.Start, End: tok.End}})
				shifted = true
			case Reduce:
				var red Reduction
				var ok bool
				stack, red, ok = t.reduce(stack, int(act.Arg))
				if !ok {
					return best, found
				}
				trace = append(trace, red)
			default:
				return best, found
			}
		}
		i++
	}
	return best, found
}

// acceptAtEnd reports whether the parse would accept if input ended here,
// returning the trace extended with the reductions that requires.
func (t *Table) acceptAtEnd(stack []entry, trace []Reduction) (Result, bool) {
	sim := append([]entry(nil), stack...)
	ext := trace[:len(trace):len(trace)]
	for {
		act := t.action[sim[len(sim)-1].state][token.EOF]
		switch act.Kind {
		case Accept:
			return Result{Trace: ext}, true
		case Reduce:
			var red Reduction
			var ok bool
			sim, red, ok = t.reduce(sim, int(act.Arg))
			if !ok {
				return Result{}, false
			}
			ext = append(ext, red)
		default:
			return Result{}, false
		}
	}
}

func (t *Table) reduce(stack []entry, prod int) ([]entry, Reduction, bool) {
	info := t.prods[prod]
	n := info.length
	top := stack[len(stack)-1].span
	red := Reduction{Prod: prod, Span: Span{Start: top.End, End: top.End}}
	if n > 0 {
		red.Items = make([]Span, n)
		for k := 0; k < n; k++ {
			red.Items[k] = stack[len(stack)-n+k].span
		}
		red.Span = Span{Start: red.Items[0].Start, End: red.Items[n-1].End}
	}
	stack = stack[:len(stack)-n]
	g := t.gotos[stack[len(stack)-1].state][info.lhs]
	if g < 0 {
		return stack, red, false
	}
	return append(stack, entry{state: int(g), span: red.Span}), red, true
}
