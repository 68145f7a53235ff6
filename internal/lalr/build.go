package lalr

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Conflict is a parse table conflict that precedence could not resolve.
// Shift/reduce conflicts keep the shift; reduce/reduce conflicts keep the
// production declared first.
type Conflict struct {
	State    int
	Terminal int
	Shift    bool
	Prods    []int
}

func (c Conflict) Describe(g *Grammar) string {
	kind := "reduce/reduce"
	if c.Shift {
		kind = "shift/reduce"
	}
	prods := make([]string, len(c.Prods))
	for i, p := range c.Prods {
		prods[i] = g.ProductionString(p)
	}
	return fmt.Sprintf("%s conflict in state %d on %s (%s)", kind, c.State, g.SymbolName(c.Terminal), strings.Join(prods, " / "))
}

type item struct {
	prod int
	dot  int
}

type lrState struct {
	kernel  []item
	index   map[item]int
	la      []bitset
	gotos   map[int]int
	symbols []int // goto symbols in discovery order
}

type builder struct {
	g        *Grammar
	prods    []Production
	aug      int
	nT, nN   int
	nullable []bool
	first    []bitset
	byLHS    [][]int
	states   []*lrState
	keys     map[string]int
}

// Build constructs the LALR(1) table of g.
func Build(g *Grammar) (*Table, []Conflict, error) {
	if err := g.validate(); err != nil {
		return nil, nil, err
	}
	b := &builder{
		g:    g,
		nT:   len(g.Terminals),
		nN:   len(g.Nonterminals) + 1,
		keys: map[string]int{},
	}
	b.aug = len(g.Productions)
	b.prods = append(append([]Production(nil), g.Productions...), Production{
		LHS:          len(g.Nonterminals),
		RHS:          []int{g.Nonterminal(g.Start)},
		PrecTerminal: -1,
	})
	b.byLHS = make([][]int, b.nN)
	for i, p := range b.prods {
		b.byLHS[p.LHS] = append(b.byLHS[p.LHS], i)
	}

	b.computeFirst()
	b.buildLR0()
	b.propagateLookaheads()
	table, conflicts := b.buildTable()
	return table, conflicts, nil
}

func (b *builder) rhs(prod int) []int {
	return b.prods[prod].RHS
}

func (b *builder) isTerminal(sym int) bool {
	return sym < b.nT
}

func (b *builder) computeFirst() {
	b.nullable = make([]bool, b.nN)
	b.first = make([]bitset, b.nN)
	for i := range b.first {
		b.first[i] = newBitset(b.nT + 1)
	}
	for changed := true; changed; {
		changed = false
		for _, p := range b.prods {
			allNullable := true
			for _, sym := range p.RHS {
				if b.isTerminal(sym) {
					changed = b.first[p.LHS].set(sym) || changed
					allNullable = false
					break
				}
				nt := sym - b.nT
				changed = b.first[p.LHS].union(b.first[nt]) || changed
				if !b.nullable[nt] {
					allNullable = false
					break
				}
			}
			if allNullable && !b.nullable[p.LHS] {
				b.nullable[p.LHS] = true
				changed = true
			}
		}
	}
}

// firstOf returns FIRST(seq la).
func (b *builder) firstOf(seq []int, la bitset) bitset {
	out := newBitset(b.nT + 1)
	for _, sym := range seq {
		if b.isTerminal(sym) {
			out.set(sym)
			return out
		}
		nt := sym - b.nT
		out.union(b.first[nt])
		if !b.nullable[nt] {
			return out
		}
	}
	out.union(la)
	return out
}

// closure computes the LR(1) closure of kernel items carrying lookahead sets.
func (b *builder) closure(kernel []item, las []bitset) ([]item, []bitset) {
	items := append([]item(nil), kernel...)
	sets := make([]bitset, len(las))
	idx := make(map[item]int, len(kernel))
	work := make([]int, 0, len(kernel))
	for i, la := range las {
		sets[i] = la.clone()
		idx[kernel[i]] = i
		work = append(work, i)
	}
	for len(work) > 0 {
		i := work[len(work)-1]
		work = work[:len(work)-1]
		it := items[i]
		rhs := b.rhs(it.prod)
		if it.dot >= len(rhs) || b.isTerminal(rhs[it.dot]) {
			continue
		}
		la := b.firstOf(rhs[it.dot+1:], sets[i])
		for _, p := range b.byLHS[rhs[it.dot]-b.nT] {
			ni := item{prod: p}
			if j, ok := idx[ni]; ok {
				if sets[j].union(la) {
					work = append(work, j)
				}
				continue
			}
			idx[ni] = len(items)
			items = append(items, ni)
			sets = append(sets, la.clone())
			work = append(work, len(items)-1)
		}
	}
	return items, sets
}

func (b *builder) closure0(kernel []item) []item {
	items := append([]item(nil), kernel...)
	seen := make(map[item]bool, len(kernel))
	for _, it := range kernel {
		seen[it] = true
	}
	for i := 0; i < len(items); i++ {
		rhs := b.rhs(items[i].prod)
		if items[i].dot >= len(rhs) || b.isTerminal(rhs[items[i].dot]) {
			continue
		}
		for _, p := range b.byLHS[rhs[items[i].dot]-b.nT] {
			ni := item{prod: p}
			if !seen[ni] {
				seen[ni] = true
				items = append(items, ni)
			}
		}
	}
	return items
}

func kernelKey(kernel []item) string {
	var sb strings.Builder
	for _, it := range kernel {
		sb.WriteString(strconv.Itoa(it.prod))
		sb.WriteByte('.')
		sb.WriteString(strconv.Itoa(it.dot))
		sb.WriteByte(' ')
	}
	return sb.String()
}

func (b *builder) addState(kernel []item) int {
	sort.Slice(kernel, func(i, j int) bool {
		if kernel[i].prod != kernel[j].prod {
			return kernel[i].prod < kernel[j].prod
		}
		return kernel[i].dot < kernel[j].dot
	})
	key := kernelKey(kernel)
	if s, ok := b.keys[key]; ok {
		return s
	}
	st := &lrState{kernel: kernel, index: make(map[item]int, len(kernel)), gotos: map[int]int{}}
	for i, it := range kernel {
		st.index[it] = i
	}
	b.keys[key] = len(b.states)
	b.states = append(b.states, st)
	return len(b.states) - 1
}

func (b *builder) buildLR0() {
	b.addState([]item{{prod: b.aug}})
	for s := 0; s < len(b.states); s++ {
		next := map[int][]item{}
		var order []int
		for _, it := range b.closure0(b.states[s].kernel) {
			rhs := b.rhs(it.prod)
			if it.dot >= len(rhs) {
				continue
			}
			x := rhs[it.dot]
			if _, ok := next[x]; !ok {
				order = append(order, x)
			}
			next[x] = append(next[x], item{prod: it.prod, dot: it.dot + 1})
		}
		for _, x := range order {
			t := b.addState(next[x])
			b.states[s].gotos[x] = t
			b.states[s].symbols = append(b.states[s].symbols, x)
		}
	}
}

type propagation struct {
	state, kernel int
}

// propagateLookaheads determines LALR(1) lookaheads of every kernel item by
// spontaneous generation and propagation.
func (b *builder) propagateLookaheads() {
	for _, st := range b.states {
		st.la = make([]bitset, len(st.kernel))
		for i := range st.la {
			st.la[i] = newBitset(b.nT + 1)
		}
	}
	b.states[0].la[0].set(0)

	marker := b.nT
	edges := make([][][]propagation, len(b.states))
	for s, st := range b.states {
		edges[s] = make([][]propagation, len(st.kernel))
		for k, kit := range st.kernel {
			probe := newBitset(b.nT + 1)
			probe.set(marker)
			items, sets := b.closure([]item{kit}, []bitset{probe})
			for i, it := range items {
				rhs := b.rhs(it.prod)
				if it.dot >= len(rhs) {
					continue
				}
				t := st.gotos[rhs[it.dot]]
				tk := b.states[t].index[item{prod: it.prod, dot: it.dot + 1}]
				sets[i].each(func(a int) {
					if a == marker {
						edges[s][k] = append(edges[s][k], propagation{state: t, kernel: tk})
					} else {
						b.states[t].la[tk].set(a)
					}
				})
			}
		}
	}

	for changed := true; changed; {
		changed = false
		for s, st := range b.states {
			for k := range st.kernel {
				for _, e := range edges[s][k] {
					if b.states[e.state].la[e.kernel].union(st.la[k]) {
						changed = true
					}
				}
			}
		}
	}
}

func (b *builder) buildTable() (*Table, []Conflict) {
	t := &Table{
		numTerminals: b.nT,
		action:       make([][]Action, len(b.states)),
		gotos:        make([][]int32, len(b.states)),
		prods:        make([]prodInfo, len(b.g.Productions)),
	}
	for i, p := range b.g.Productions {
		t.prods[i] = prodInfo{lhs: p.LHS, length: len(p.RHS)}
	}

	var conflicts []Conflict
	for s, st := range b.states {
		row := make([]Action, b.nT)
		gotos := make([]int32, b.nN-1)
		for i := range gotos {
			gotos[i] = -1
		}
		for _, x := range st.symbols {
			if b.isTerminal(x) {
				row[x] = Action{Kind: Shift, Arg: int32(st.gotos[x])}
			} else if x-b.nT < len(gotos) {
				gotos[x-b.nT] = int32(st.gotos[x])
			}
		}

		items, sets := b.closure(st.kernel, st.la)
		for i, it := range items {
			if it.dot < len(b.rhs(it.prod)) {
				continue
			}
			if it.prod == b.aug {
				if sets[i].has(0) {
					row[0] = Action{Kind: Accept}
				}
				continue
			}
			prod := it.prod
			sets[i].each(func(a int) {
				if a >= b.nT {
					return
				}
				if c, ok := b.resolve(row, s, a, prod); !ok {
					conflicts = append(conflicts, c)
				}
			})
		}
		t.action[s] = row
		t.gotos[s] = gotos
	}
	return t, conflicts
}

// resolve installs "reduce prod on a" into row, applying precedence rules.
func (b *builder) resolve(row []Action, state, a, prod int) (Conflict, bool) {
	cur := row[a]
	reduce := Action{Kind: Reduce, Arg: int32(prod)}
	switch cur.Kind {
	case Error:
		if cur.Arg == 0 {
			row[a] = reduce
		}
		return Conflict{}, true
	case Shift:
		pp, _ := b.g.precedence(prod)
		tp, assoc := b.g.Terminals[a].Prec, b.g.Terminals[a].Assoc
		if pp == 0 || tp == 0 {
			return Conflict{State: state, Terminal: a, Shift: true, Prods: []int{prod}}, false
		}
		switch {
		case pp > tp:
			row[a] = reduce
		case pp < tp:
		case assoc == AssocLeft:
			row[a] = reduce
		case assoc == AssocRight:
		default:
			row[a] = Action{Kind: Error, Arg: 1}
		}
		return Conflict{}, true
	case Reduce:
		other := int(cur.Arg)
		if prod < other {
			row[a] = reduce
		}
		return Conflict{State: state, Terminal: a, Prods: []int{min(prod, other), max(prod, other)}}, false
	default:
		return Conflict{State: state, Terminal: a, Prods: []int{prod}}, false
	}
}
