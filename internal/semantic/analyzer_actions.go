package semantic

import (
	"fmt"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/dlclark/regexp2"
	"gramgrep/grammar"
	"gramgrep/internal/ast"
	"gramgrep/internal/errors"
)

// BlockPosition converts a position inside an action block into a
// position in the configuration file.
func BlockPosition(body ast.Position, p lexer.Position) ast.Position {
	pos := ast.Position{Filename: body.Filename, Offset: body.Offset + p.Offset}
	if p.Line <= 1 {
		pos.Line = body.Line
		pos.Column = body.Column + max(p.Column, 1) - 1
	} else {
		pos.Line = body.Line + p.Line - 1
		pos.Column = p.Column
	}
	return pos
}

func (a *Analyzer) analyzeAction(alt *ast.Alternative) {
	block := alt.Action
	script, err := grammar.ParseScript(block.Body.Filename, block.Text)
	if err != nil {
		pos, msg, ok := grammar.ErrorPosition(err)
		at := block.Body
		if ok {
			at = BlockPosition(block.Body, pos)
		} else {
			msg = err.Error()
		}
		a.addCompilerError(errors.NewError(errors.ErrorActionSyntax, msg, at).Build())
		return
	}

	if a.ctx.Captures && len(script.Commands) > 0 {
		a.addCompilerError(errors.CapturesWithActions(block.Pos))
		return
	}

	check := &actionChecker{a: a, body: block.Body, count: len(alt.Items)}
	for _, cmd := range script.Commands {
		check.command(cmd)
	}
	a.ctx.Scripts[block] = script
}

type actionChecker struct {
	a     *Analyzer
	body  ast.Position
	count int
}

func (c *actionChecker) pos(p lexer.Position) ast.Position {
	return BlockPosition(c.body, p)
}

func (c *actionChecker) command(cmd *grammar.Command) {
	switch {
	case cmd.Match != nil:
		c.expr(cmd.Match.Value)
	case cmd.Erase != nil:
		c.span(cmd.Erase.From, cmd.Erase.To)
	case cmd.Insert != nil:
		c.ref(cmd.Insert.At, true)
		c.expr(cmd.Insert.Text)
	case cmd.Replace != nil:
		c.span(cmd.Replace.From, cmd.Replace.To)
		c.expr(cmd.Replace.Text)
	case cmd.ReplaceAll != nil:
		c.ref(cmd.ReplaceAll.Target, false)
		pattern := grammar.Unquote(cmd.ReplaceAll.Pattern)
		if _, err := regexp2.Compile(pattern, regexp2.None); err != nil {
			c.a.addCompilerError(errors.BadPattern(errors.ErrorBadReplacePattern, pattern, err, c.pos(cmd.ReplaceAll.Pos)))
		}
		c.expr(cmd.ReplaceAll.Text)
	case cmd.Print != nil:
		c.expr(cmd.Print.Value)
	case cmd.Exec != nil:
		c.expr(cmd.Exec.Value)
	}
}

// span checks a one or two endpoint range.
func (c *actionChecker) span(from, to *grammar.Ref) {
	okFrom := c.ref(from, true)
	if to == nil {
		return
	}
	if !c.ref(to, true) || !okFrom {
		return
	}
	a, b := from.Number(), to.Number()
	if a > b || (a == b && from.Side == "second" && to.Side == "first") {
		c.a.addCompilerError(errors.EndpointsOutOfOrder(from.String(), to.String(), c.pos(from.Pos)))
	}
}

func (c *actionChecker) ref(r *grammar.Ref, sides bool) bool {
	n := r.Number()
	if n < 1 || n > c.count {
		c.a.addCompilerError(errors.SymbolIndexOutOfRange(n, c.count, c.pos(r.Pos)))
		return false
	}
	if !sides && r.Side != "" {
		c.a.addCompilerError(errors.NewError(errors.ErrorEndpointInValue,
			fmt.Sprintf("%s names a position, not text", r.String()), c.pos(r.Pos)).
			WithSuggestion("use "+r.Index+" instead").Build())
		return false
	}
	return true
}

func (c *actionChecker) expr(e *grammar.Expr) {
	switch {
	case e.Ref != nil:
		c.ref(e.Ref, false)
	case e.Substr != nil:
		c.ref(e.Substr.Ref, false)
	case e.Call != nil:
		want := 1
		if e.Call.Func == "format" {
			if len(e.Call.Args) == 0 {
				c.argCount(e.Call, "at least 1")
			}
			want = len(e.Call.Args)
		}
		if len(e.Call.Args) != want {
			c.argCount(e.Call, "1")
		}
		for _, arg := range e.Call.Args {
			c.expr(arg)
		}
	}
}

func (c *actionChecker) argCount(call *grammar.Call, want string) {
	c.a.addCompilerError(errors.NewError(errors.ErrorArgumentCount,
		fmt.Sprintf("%s expects %s argument(s), got %d", call.Func, want, len(call.Args)), c.pos(call.Pos)).
		WithLength(len(call.Func)).Build())
}
