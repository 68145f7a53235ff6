package ast

import (
	"fmt"
	"strconv"
	"strings"
)

func (c *Config) String() string {
	var b strings.Builder
	for _, d := range c.Directives {
		b.WriteString(d.String() + "\n")
	}
	b.WriteString("%%\n")
	for _, r := range c.Rules {
		b.WriteString(r.String() + "\n")
	}
	b.WriteString("%%\n")
	for _, m := range c.Macros {
		b.WriteString(m.String() + "\n")
	}
	b.WriteString("%%\n")
	for _, lr := range c.LexRules {
		b.WriteString(lr.String() + "\n")
	}
	b.WriteString("%%\n")
	return b.String()
}

func (d *Directive) String() string {
	parts := []string{"%" + d.Name}
	for _, a := range d.Args {
		parts = append(parts, a.String())
	}
	return strings.Join(parts, " ")
}

func (s *Symbol) String() string {
	if s.Literal {
		return quote(s.Name)
	}
	return s.Name
}

func (r *Rule) String() string {
	alts := make([]string, len(r.Alternatives))
	for i, a := range r.Alternatives {
		alts[i] = a.String()
	}
	return fmt.Sprintf("%s: %s;", r.LHS.Name, strings.Join(alts, " | "))
}

func (a *Alternative) String() string {
	var parts []string
	for _, it := range a.Items {
		parts = append(parts, it.String())
	}
	if a.Empty {
		parts = append(parts, "%empty")
	}
	if a.Prec != nil {
		parts = append(parts, "%prec "+a.Prec.String())
	}
	if a.Action != nil {
		parts = append(parts, a.Action.String())
	}
	return strings.Join(parts, " ")
}

func (si *SymbolItem) String() string {
	return si.Symbol.String() + si.Repeat.String()
}

func (gi *GroupItem) String() string {
	alts := make([]string, len(gi.Alternatives))
	for i, a := range gi.Alternatives {
		alts[i] = a.String()
	}
	if gi.Bracket {
		return "[" + strings.Join(alts, " | ") + "]"
	}
	return "(" + strings.Join(alts, " | ") + ")" + gi.Repeat.String()
}

func (ab *ActionBlock) String() string {
	return "{" + ab.Text + "}"
}

func (m *Macro) String() string {
	return m.Name + " " + m.Pattern
}

func (lr *LexRule) String() string {
	var b strings.Builder
	if lr.States != nil {
		b.WriteString("<" + strings.Join(lr.States, ",") + ">")
	}
	b.WriteString(lr.Pattern + " ")
	if lr.Next != "" {
		b.WriteString("<" + lr.Next + ">")
	}
	switch {
	case lr.Skip:
		b.WriteString("skip()")
	case lr.Token != nil:
		b.WriteString(lr.Token.String())
	}
	return b.String()
}

func quote(s string) string {
	q := strconv.Quote(s)
	return "'" + strings.ReplaceAll(q[1:len(q)-1], "'", `\'`) + "'"
}
