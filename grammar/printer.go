package grammar

import (
	"fmt"
	"strings"
)

func (s *Script) String() string {
	var b strings.Builder
	for i, c := range s.Commands {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(c.String())
	}
	return b.String()
}

func (c *Command) String() string {
	switch {
	case c.Match != nil:
		return c.Match.String()
	case c.Erase != nil:
		return c.Erase.String()
	case c.Insert != nil:
		return c.Insert.String()
	case c.ReplaceAll != nil:
		return c.ReplaceAll.String()
	case c.Replace != nil:
		return c.Replace.String()
	case c.Print != nil:
		return fmt.Sprintf("print(%s);", c.Print.Value)
	case c.Exec != nil:
		return fmt.Sprintf("exec(%s);", c.Exec.Value)
	}
	return ""
}

func (m *MatchCmd) String() string {
	return fmt.Sprintf("match %s %s;", m.Op, m.Value)
}

func (e *EraseCmd) String() string {
	if e.To != nil {
		return fmt.Sprintf("erase(%s, %s);", e.From, e.To)
	}
	return fmt.Sprintf("erase(%s);", e.From)
}

func (i *InsertCmd) String() string {
	return fmt.Sprintf("insert(%s, %s);", i.At, i.Text)
}

func (r *ReplaceCmd) String() string {
	if r.To != nil {
		return fmt.Sprintf("replace(%s, %s, %s);", r.From, r.To, r.Text)
	}
	return fmt.Sprintf("replace(%s, %s);", r.From, r.Text)
}

func (r *ReplaceAllCmd) String() string {
	return fmt.Sprintf("replace_all(%s, %s, %s);", r.Target, r.Pattern, r.Text)
}

func (r *Ref) String() string {
	if r.Side != "" {
		return r.Index + "." + r.Side
	}
	return r.Index
}

func (e *Expr) String() string {
	switch {
	case e.Substr != nil:
		return fmt.Sprintf("substr(%s, %d, %d)", e.Substr.Ref, e.Substr.Front, e.Substr.Back)
	case e.Call != nil:
		return e.Call.String()
	case e.Ref != nil:
		return e.Ref.String()
	case e.Text != nil:
		return *e.Text
	}
	return ""
}

func (c *Call) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", c.Func, strings.Join(args, ", "))
}
