// Package action runs the commands attached to grammar productions.
package action

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/tliron/commonlog"
	"gramgrep/internal/errors"
	"gramgrep/internal/ir"
	"gramgrep/internal/lalr"
	"gramgrep/internal/replace"
)

var log = commonlog.GetLogger("gramgrep.action")

// Executor runs an external command and returns its standard output.
type Executor interface {
	Output(ctx context.Context, command string) (string, error)
}

type Options struct {
	// Modify enables erase, insert, replace and replace_all. Without it
	// those commands do nothing.
	Modify bool
	Stdout io.Writer
	Exec   Executor
}

type Runtime struct {
	opts Options
}

func New(opts Options) *Runtime {
	if opts.Stdout == nil {
		opts.Stdout = io.Discard
	}
	return &Runtime{opts: opts}
}

// Match is the running match of a grammar stage. It either refers to
// Span of the subject or, once built from other text, holds Text.
type Match struct {
	Set       bool
	Synthetic bool
	Span      lalr.Span
	Text      string
}

// Frame is what the commands of one reduction see. Items are the spans
// of the production's symbols and Span the whole production, all offsets
// into Subject. Subject is the file buffer when FileBacked is set.
type Frame struct {
	Subject    []byte
	FileBacked bool
	Items      []lalr.Span
	Span       lalr.Span
	Match      *Match
	Edits      *replace.Map
	Line       int
}

func (f *Frame) text(s lalr.Span) string {
	return string(f.Subject[s.Start:s.End])
}

// item returns the span of $n; $0 is the whole production.
func (f *Frame) item(n int) (lalr.Span, error) {
	if n == 0 {
		return f.Span, nil
	}
	if n < 1 || n > len(f.Items) {
		return lalr.Span{}, fmt.Errorf("$%d is out of range (production has %d symbols)", n, len(f.Items))
	}
	return f.Items[n-1], nil
}

// Current returns the text of the running match.
func (m *Match) Current(subject []byte) string {
	if m.Synthetic {
		return m.Text
	}
	return string(subject[m.Span.Start:m.Span.End])
}

// Execute runs cmds for production prod. The first failing command stops
// the run and is returned as an *errors.ActionError.
func (r *Runtime) Execute(ctx context.Context, f *Frame, prod int, cmds []ir.Command) error {
	for _, cmd := range cmds {
		if err := r.execute(ctx, f, cmd); err != nil {
			return &errors.ActionError{
				Line:       f.Line,
				Production: prod,
				Err:        fmt.Errorf("command at config line %d: %w", cmd.Position().Line, err),
			}
		}
	}
	return nil
}

func (r *Runtime) execute(ctx context.Context, f *Frame, cmd ir.Command) error {
	switch c := cmd.(type) {
	case *ir.AssignCmd:
		return r.assign(ctx, f, c.Value, false)
	case *ir.AppendCmd:
		return r.assign(ctx, f, c.Value, true)
	case *ir.EraseCmd:
		return r.edit(ctx, f, c.From, c.To, c.Range, nil)
	case *ir.ReplaceCmd:
		return r.edit(ctx, f, c.From, c.To, c.Range, c.Text)
	case *ir.InsertCmd:
		if !r.opts.Modify {
			return nil
		}
		if !f.FileBacked {
			return fmt.Errorf("cannot edit text produced by an earlier match command")
		}
		s, err := f.item(c.At.Index)
		if err != nil {
			return err
		}
		at := s.Start
		if c.At.Side == ir.Second {
			at = s.End
		}
		text, err := r.eval(ctx, f, c.Text)
		if err != nil {
			return err
		}
		f.Edits.Stage(at, 0, text)
	case *ir.ReplaceAllCmd:
		return r.replaceAll(ctx, f, c)
	case *ir.PrintCmd:
		text, err := r.eval(ctx, f, c.Value)
		if err != nil {
			return err
		}
		_, err = io.WriteString(r.opts.Stdout, text)
		return err
	case *ir.ExecCmd:
		line, err := r.eval(ctx, f, c.Value)
		if err != nil {
			return err
		}
		out, err := r.run(ctx, line)
		if err != nil {
			return err
		}
		_, err = io.WriteString(r.opts.Stdout, out)
		return err
	default:
		return fmt.Errorf("unknown command %T", cmd)
	}
	return nil
}

func (r *Runtime) assign(ctx context.Context, f *Frame, ops []ir.Op, appending bool) error {
	if ref, ok := ir.IsSpan(ops); ok && f.FileBacked {
		s, err := f.slice(ref)
		if err != nil {
			return err
		}
		switch {
		case !appending || !f.Match.Set:
			*f.Match = Match{Set: true, Span: s}
			return nil
		case !f.Match.Synthetic && f.Match.Span.End == s.Start:
			f.Match.Span.End = s.End
			return nil
		}
	}

	text, err := r.eval(ctx, f, ops)
	if err != nil {
		return err
	}
	if appending && f.Match.Set {
		text = f.Match.Current(f.Subject) + text
	}
	*f.Match = Match{Set: true, Synthetic: true, Text: text}
	return nil
}

// slice resolves $n or substr($n, front, back) to a span.
func (f *Frame) slice(ref ir.RefOp) (lalr.Span, error) {
	s, err := f.item(ref.Index)
	if err != nil || !ref.Trim {
		return s, err
	}
	n := s.Len()
	if ref.Front >= n || ref.Front+ref.Back > n {
		return lalr.Span{}, fmt.Errorf("substring out of range: substr($%d, %d, %d) of %d bytes", ref.Index, ref.Front, ref.Back, n)
	}
	return lalr.Span{Start: s.Start + ref.Front, End: s.End - ref.Back}, nil
}

// bounds returns the byte range named by one endpoint or a pair.
func (f *Frame) bounds(from, to ir.Endpoint, isRange bool) (int, int, error) {
	a, err := f.item(from.Index)
	if err != nil {
		return 0, 0, err
	}
	if !isRange {
		switch from.Side {
		case ir.First:
			return a.Start, a.Start, nil
		case ir.Second:
			return a.End, a.End, nil
		}
		return a.Start, a.End, nil
	}
	b, err := f.item(to.Index)
	if err != nil {
		return 0, 0, err
	}
	start, end := a.Start, b.End
	if from.Side == ir.Second {
		start = a.End
	}
	if to.Side == ir.First {
		end = b.Start
	}
	if end < start {
		return 0, 0, fmt.Errorf("%s ends before %s starts", to, from)
	}
	return start, end, nil
}

func (r *Runtime) edit(ctx context.Context, f *Frame, from, to ir.Endpoint, isRange bool, textOps []ir.Op) error {
	if !r.opts.Modify {
		return nil
	}
	if !f.FileBacked {
		return fmt.Errorf("cannot edit text produced by an earlier match command")
	}
	start, end, err := f.bounds(from, to, isRange)
	if err != nil {
		return err
	}
	text := ""
	if textOps != nil {
		if text, err = r.eval(ctx, f, textOps); err != nil {
			return err
		}
	}
	f.Edits.Stage(start, end-start, text)
	return nil
}

// replaceAll rewrites the text of the target symbol, starting from an
// edit already staged for the same bytes when there is one.
func (r *Runtime) replaceAll(ctx context.Context, f *Frame, c *ir.ReplaceAllCmd) error {
	if !r.opts.Modify {
		return nil
	}
	if !f.FileBacked {
		return fmt.Errorf("cannot edit text produced by an earlier match command")
	}
	s, err := f.item(c.Target.Index)
	if err != nil {
		return err
	}
	source, staged := f.Edits.Lookup(s.Start, s.Len())
	if !staged {
		source = f.text(s)
	}
	repl, err := r.evalRaw(ctx, f, c.Text)
	if err != nil {
		return err
	}
	out, err := c.Pattern.Replace(source, repl, -1, -1)
	if err != nil {
		return fmt.Errorf("replace_all %q: %w", c.Source, err)
	}
	f.Edits.Stage(s.Start, s.Len(), out)
	return nil
}

func (r *Runtime) run(ctx context.Context, line string) (string, error) {
	if r.opts.Exec == nil {
		return "", fmt.Errorf("exec(%q): external commands are disabled", line)
	}
	log.Debugf("exec %q", line)
	return r.opts.Exec.Output(ctx, line)
}

// eval runs a postfix value program and returns the single value it
// leaves. $n references inside literal text are expanded.
func (r *Runtime) eval(ctx context.Context, f *Frame, ops []ir.Op) (string, error) {
	return r.evalOps(ctx, f, ops, true)
}

// evalRaw is eval without $n expansion of literal text, for replace_all
// where $n names a regex group.
func (r *Runtime) evalRaw(ctx context.Context, f *Frame, ops []ir.Op) (string, error) {
	return r.evalOps(ctx, f, ops, false)
}

func (r *Runtime) evalOps(ctx context.Context, f *Frame, ops []ir.Op, expand bool) (string, error) {
	var stack []string
	for _, op := range ops {
		switch o := op.(type) {
		case ir.RefOp:
			s, err := f.slice(o)
			if err != nil {
				return "", err
			}
			stack = append(stack, f.text(s))
		case ir.TextOp:
			text := o.Text
			if expand {
				text = f.expand(text)
			}
			stack = append(stack, text)
		case ir.FormatOp:
			if len(stack) < o.Args+1 {
				return "", fmt.Errorf("format: missing arguments")
			}
			args := stack[len(stack)-o.Args:]
			tmpl := stack[len(stack)-o.Args-1]
			stack = append(stack[:len(stack)-o.Args-1], format(tmpl, args))
		case ir.ExecOp:
			if len(stack) == 0 {
				return "", fmt.Errorf("exec: missing command")
			}
			out, err := r.run(ctx, stack[len(stack)-1])
			if err != nil {
				return "", err
			}
			stack[len(stack)-1] = out
		case ir.CaseOp:
			if len(stack) == 0 {
				return "", fmt.Errorf("%s: missing argument", o.Mode)
			}
			stack[len(stack)-1] = changeCase(stack[len(stack)-1], o.Mode)
		default:
			return "", fmt.Errorf("unknown operation %T", op)
		}
	}
	if len(stack) != 1 {
		return "", fmt.Errorf("value program left %d values", len(stack))
	}
	return stack[0], nil
}

// expand replaces $n with the text of symbol n. References past the last
// symbol are kept as written.
func (f *Frame) expand(text string) string {
	if !strings.ContainsRune(text, '$') {
		return text
	}
	var b strings.Builder
	for i := 0; i < len(text); i++ {
		if text[i] != '$' {
			b.WriteByte(text[i])
			continue
		}
		j := i + 1
		for j < len(text) && text[j] >= '0' && text[j] <= '9' {
			j++
		}
		if j == i+1 {
			b.WriteByte('$')
			continue
		}
		n, err := strconv.Atoi(text[i+1 : j])
		var s lalr.Span
		if err == nil {
			s, err = f.item(n)
		}
		if err != nil {
			b.WriteString(text[i:j])
		} else {
			b.WriteString(f.text(s))
		}
		i = j - 1
	}
	return b.String()
}

// format substitutes each {} of tmpl with the next argument. Unused
// placeholders stay in the output.
func format(tmpl string, args []string) string {
	var b strings.Builder
	for len(tmpl) > 0 {
		i := strings.Index(tmpl, "{}")
		if i < 0 || len(args) == 0 {
			b.WriteString(tmpl)
			break
		}
		b.WriteString(tmpl[:i])
		b.WriteString(args[0])
		args = args[1:]
		tmpl = tmpl[i+2:]
	}
	return b.String()
}

func changeCase(s string, mode ir.CaseMode) string {
	switch mode {
	case ir.Upper:
		return strings.ToUpper(s)
	case ir.Lower:
		return strings.ToLower(s)
	}
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
