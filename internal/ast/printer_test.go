package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRuleString(t *testing.T) {
	rule := &Rule{
		LHS: &Symbol{Name: "call"},
		Alternatives: []*Alternative{
			{
				Items: []Item{
					&SymbolItem{Symbol: &Symbol{Name: "Name"}},
					&SymbolItem{Symbol: &Symbol{Name: "(", Literal: true}},
					&GroupItem{
						Alternatives: []*Alternative{
							{Items: []Item{&SymbolItem{Symbol: &Symbol{Name: "arg"}, Repeat: RepeatPlus}}},
						},
						Bracket: true,
					},
					&SymbolItem{Symbol: &Symbol{Name: ")", Literal: true}},
				},
				Action: &ActionBlock{Text: " erase($1); "},
			},
			{Empty: true},
		},
	}

	assert.Equal(t, "call: Name '(' [arg+] ')' { erase($1); } | %empty;", rule.String())
}

func TestLexRuleString(t *testing.T) {
	rules := []*LexRule{
		{Pattern: `[a-z]+`, Token: &Symbol{Name: "Name"}},
		{States: []string{"COMMENT"}, Pattern: `"*/"`, Next: "INITIAL", Skip: true},
		{States: []string{"*"}, Pattern: `\n`, Next: ".", Token: &Symbol{Name: "\n", Literal: true}},
	}

	assert.Equal(t, "[a-z]+ Name", rules[0].String())
	assert.Equal(t, `<COMMENT>"*/" <INITIAL>skip()`, rules[1].String())
	assert.Equal(t, `<*>\n <.>'\n'`, rules[2].String())
}

func TestDirectiveString(t *testing.T) {
	d := &Directive{
		Name: "left",
		Args: []*Symbol{{Name: "+", Literal: true}, {Name: "MINUS"}},
	}
	assert.Equal(t, "%left '+' MINUS", d.String())
}

func TestNodeTypeString(t *testing.T) {
	assert.Equal(t, "LEX_RULE", (&LexRule{}).NodeType().String())
	assert.Equal(t, "GROUP_ITEM", (&GroupItem{}).NodeType().String())
}
