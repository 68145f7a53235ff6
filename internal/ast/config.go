package ast

type Position struct {
	Filename string
	Offset   int
	Line     int
	Column   int
}

// Config is a parsed configuration file:
//
//	directives %% grammar rules %% regex macros %% regex rules %%
type Config struct {
	Pos        Position
	EndPos     Position
	Directives []*Directive
	Rules      []*Rule
	Macros     []*Macro
	LexRules   []*LexRule
}

// Directive is one `%name args...` line of the first section.
// Name is stored without the leading '%'.
type Directive struct {
	Pos    Position
	EndPos Position
	Name   string
	Args   []*Symbol
}

// Symbol is a grammar symbol reference. Literal symbols were written
// quoted ('x' or "x"); Name then holds the unescaped text.
type Symbol struct {
	Pos     Position
	EndPos  Position
	Name    string
	Literal bool
}

// Rule is `lhs : alt | alt ;`.
type Rule struct {
	Pos          Position
	EndPos       Position
	LHS          *Symbol
	Alternatives []*Alternative
}

type Alternative struct {
	Pos    Position
	EndPos Position
	Items  []Item
	Empty  bool // written as %empty
	Prec   *Symbol
	Action *ActionBlock
}

// Item is one addressable element of an alternative ($1, $2, ...).
type Item interface {
	Node
	itemNode()
}

type SymbolItem struct {
	Pos    Position
	EndPos Position
	Symbol *Symbol
	Repeat Repeat
}

// GroupItem is `( alts )` or, with Bracket set, `[ alts ]`.
type GroupItem struct {
	Pos          Position
	EndPos       Position
	Alternatives []*Alternative
	Repeat       Repeat
	Bracket      bool
}

func (*SymbolItem) itemNode() {}
func (*GroupItem) itemNode()  {}

// ActionBlock holds the raw command text between braces. Body is the
// position of the first character after '{'.
type ActionBlock struct {
	Pos    Position
	EndPos Position
	Body   Position
	Text   string
}

type Macro struct {
	Pos     Position
	EndPos  Position
	Name    string
	Pattern string
}

// LexRule is `[<states>]regex [<next>]action`. States is nil for rules
// without a start condition prefix; Next is "" when the state does not
// change. Token is nil for skip() rules.
type LexRule struct {
	Pos        Position
	EndPos     Position
	States     []string
	Pattern    string
	PatternPos Position
	Next       string
	Token      *Symbol
	Skip       bool
}
