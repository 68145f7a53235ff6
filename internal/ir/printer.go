package ir

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Dump writes a readable listing of m: productions with their actions
// and the lexical rules.
func Dump(w io.Writer, m Matcher) {
	fmt.Fprintf(w, "%s", m.Describe())
	if f := m.MatcherFlags().String(); f != "" {
		fmt.Fprintf(w, " [%s]", f)
	}
	fmt.Fprintln(w)

	switch m := m.(type) {
	case *TokenMatcher:
		for i := 0; i < m.Lexer.NumRules(); i++ {
			dumpRule(w, m.Lexer.Rule(i).States, m.Lexer.Rule(i).Pattern, m.Lexer.Rule(i).Name)
		}
	case *GrammarMatcher:
		fmt.Fprintf(w, "start: %s\n", m.Grammar.Nonterminals[m.Grammar.Start])
		for p := range m.Grammar.Productions {
			marker := " "
			if m.ReduceSet[p] {
				marker = "*"
			}
			fmt.Fprintf(w, "%s%4d  %s\n", marker, p, m.Grammar.ProductionString(p))
			for _, cmd := range m.Actions[p] {
				fmt.Fprintf(w, "        %s\n", CommandString(cmd))
			}
		}
		if m.Captures {
			slots := make([]int, 0, len(m.Groups))
			for nt := range m.Groups {
				slots = append(slots, nt)
			}
			sort.Ints(slots)
			for _, nt := range slots {
				fmt.Fprintf(w, "capture $%d: %s\n", m.Groups[nt], m.Grammar.Nonterminals[nt])
			}
		}
		fmt.Fprintf(w, "%d states\n", m.Table.NumStates())
		for i := 0; i < m.Lexer.NumRules(); i++ {
			r := m.Lexer.Rule(i)
			dumpRule(w, r.States, r.Pattern, r.Name)
		}
	}
}

func dumpRule(w io.Writer, states []string, pattern, name string) {
	if name == "" {
		name = "skip()"
	}
	prefix := ""
	if len(states) > 0 {
		prefix = "<" + strings.Join(states, ",") + ">"
	}
	fmt.Fprintf(w, "  %s%s  %s\n", prefix, pattern, name)
}

// CommandString renders cmd in action script syntax.
func CommandString(cmd Command) string {
	switch c := cmd.(type) {
	case *AssignCmd:
		return "match = " + OpsString(c.Value) + ";"
	case *AppendCmd:
		return "match += " + OpsString(c.Value) + ";"
	case *EraseCmd:
		if c.Range {
			return fmt.Sprintf("erase(%s, %s);", c.From, c.To)
		}
		return fmt.Sprintf("erase(%s);", c.From)
	case *InsertCmd:
		return fmt.Sprintf("insert(%s, %s);", c.At, OpsString(c.Text))
	case *ReplaceCmd:
		if c.Range {
			return fmt.Sprintf("replace(%s, %s, %s);", c.From, c.To, OpsString(c.Text))
		}
		return fmt.Sprintf("replace(%s, %s);", c.From, OpsString(c.Text))
	case *ReplaceAllCmd:
		return fmt.Sprintf("replace_all(%s, %q, %s);", c.Target, c.Source, OpsString(c.Text))
	case *PrintCmd:
		return "print(" + OpsString(c.Value) + ");"
	case *ExecCmd:
		return "exec(" + OpsString(c.Value) + ");"
	}
	return ""
}

// OpsString renders a postfix value program back into call syntax.
func OpsString(ops []Op) string {
	var stack []string
	pop := func(n int) []string {
		if n > len(stack) {
			n = len(stack)
		}
		args := append([]string(nil), stack[len(stack)-n:]...)
		stack = stack[:len(stack)-n]
		return args
	}
	for _, op := range ops {
		switch o := op.(type) {
		case RefOp:
			if o.Trim {
				stack = append(stack, fmt.Sprintf("substr($%d, %d, %d)", o.Index, o.Front, o.Back))
			} else {
				stack = append(stack, fmt.Sprintf("$%d", o.Index))
			}
		case TextOp:
			stack = append(stack, fmt.Sprintf("%q", o.Text))
		case FormatOp:
			stack = append(stack, "format("+strings.Join(pop(o.Args+1), ", ")+")")
		case ExecOp:
			stack = append(stack, "exec("+strings.Join(pop(1), "")+")")
		case CaseOp:
			stack = append(stack, o.Mode.String()+"("+strings.Join(pop(1), "")+")")
		}
	}
	return strings.Join(stack, " ")
}
