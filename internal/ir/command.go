package ir

import (
	"fmt"

	"github.com/dlclark/regexp2"
	"gramgrep/internal/ast"
)

// Side selects part of a symbol's span.
type Side int

const (
	Whole Side = iota
	First
	Second
)

func (s Side) String() string {
	switch s {
	case First:
		return "first"
	case Second:
		return "second"
	}
	return ""
}

// Endpoint is $Index, $Index.first or $Index.second. Index is 1-based.
type Endpoint struct {
	Index int
	Side  Side
}

func (e Endpoint) String() string {
	if e.Side == Whole {
		return fmt.Sprintf("$%d", e.Index)
	}
	return fmt.Sprintf("$%d.%s", e.Index, e.Side)
}

// Command is one action statement. Implementations: *AssignCmd,
// *AppendCmd, *EraseCmd, *InsertCmd, *ReplaceCmd, *ReplaceAllCmd,
// *PrintCmd and *ExecCmd.
type Command interface {
	Position() ast.Position
	command()
}

// AssignCmd is `match = value;`.
type AssignCmd struct {
	Pos   ast.Position
	Value []Op
}

// AppendCmd is `match += value;`.
type AppendCmd struct {
	Pos   ast.Position
	Value []Op
}

// EraseCmd removes one symbol or, when Range is set, From through To.
type EraseCmd struct {
	Pos      ast.Position
	From, To Endpoint
	Range    bool
}

type InsertCmd struct {
	Pos  ast.Position
	At   Endpoint
	Text []Op
}

type ReplaceCmd struct {
	Pos      ast.Position
	From, To Endpoint
	Range    bool
	Text     []Op
}

// ReplaceAllCmd substitutes every match of Pattern in the text of Target.
type ReplaceAllCmd struct {
	Pos     ast.Position
	Target  Endpoint
	Source  string
	Pattern *regexp2.Regexp
	Text    []Op
}

type PrintCmd struct {
	Pos   ast.Position
	Value []Op
}

type ExecCmd struct {
	Pos   ast.Position
	Value []Op
}

func (c *AssignCmd) Position() ast.Position     { return c.Pos }
func (c *AppendCmd) Position() ast.Position     { return c.Pos }
func (c *EraseCmd) Position() ast.Position      { return c.Pos }
func (c *InsertCmd) Position() ast.Position     { return c.Pos }
func (c *ReplaceCmd) Position() ast.Position    { return c.Pos }
func (c *ReplaceAllCmd) Position() ast.Position { return c.Pos }
func (c *PrintCmd) Position() ast.Position      { return c.Pos }
func (c *ExecCmd) Position() ast.Position       { return c.Pos }

func (*AssignCmd) command()     {}
func (*AppendCmd) command()     {}
func (*EraseCmd) command()      {}
func (*InsertCmd) command()     {}
func (*ReplaceCmd) command()    {}
func (*ReplaceAllCmd) command() {}
func (*PrintCmd) command()      {}
func (*ExecCmd) command()       {}

// Op is one step of a postfix value program run on an argument stack.
// Implementations: RefOp, TextOp, FormatOp, ExecOp and CaseOp.
type Op interface {
	op()
}

// RefOp pushes the text of $Index. With Trim set, Front bytes are dropped
// from the start and Back bytes from the end (substr).
type RefOp struct {
	Index int
	Trim  bool
	Front int
	Back  int
}

// TextOp pushes literal text; $n inside it is expanded when run.
type TextOp struct {
	Text string
}

// FormatOp pops Args values and a template and pushes the template with
// each {} replaced by the next value.
type FormatOp struct {
	Args int
}

// ExecOp pops a command line and pushes its standard output.
type ExecOp struct{}

type CaseMode int

const (
	Upper CaseMode = iota
	Lower
	Capitalise
)

func (m CaseMode) String() string {
	switch m {
	case Upper:
		return "toupper"
	case Lower:
		return "tolower"
	}
	return "capitalise"
}

// CaseOp rewrites the case of the value on top of the stack.
type CaseOp struct {
	Mode CaseMode
}

func (RefOp) op()    {}
func (TextOp) op()   {}
func (FormatOp) op() {}
func (ExecOp) op()   {}
func (CaseOp) op()   {}

// IsSpan reports whether ops only copy (a trimmed part of) one symbol, so
// the result can still refer to the subject buffer.
func IsSpan(ops []Op) (RefOp, bool) {
	if len(ops) != 1 {
		return RefOp{}, false
	}
	ref, ok := ops[0].(RefOp)
	return ref, ok
}
