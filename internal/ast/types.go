package ast

type NodeType int

const (
	// Special / error
	ILLEGAL NodeType = iota

	// Sections
	CONFIG
	DIRECTIVE
	SYMBOL

	// Grammar rules
	RULE
	ALTERNATIVE
	SYMBOL_ITEM
	GROUP_ITEM
	ACTION_BLOCK

	// Lexical section
	MACRO
	LEX_RULE
)

var nodeTypeNames = [...]string{
	ILLEGAL:      "ILLEGAL",
	CONFIG:       "CONFIG",
	DIRECTIVE:    "DIRECTIVE",
	SYMBOL:       "SYMBOL",
	RULE:         "RULE",
	ALTERNATIVE:  "ALTERNATIVE",
	SYMBOL_ITEM:  "SYMBOL_ITEM",
	GROUP_ITEM:   "GROUP_ITEM",
	ACTION_BLOCK: "ACTION_BLOCK",
	MACRO:        "MACRO",
	LEX_RULE:     "LEX_RULE",
}

func (t NodeType) String() string {
	if t >= 0 && int(t) < len(nodeTypeNames) {
		return nodeTypeNames[t]
	}
	return "NodeType(?)"
}

// Repeat is the EBNF suffix attached to an item.
type Repeat int

const (
	RepeatOnce     Repeat = iota
	RepeatOptional        // ?
	RepeatStar            // *
	RepeatPlus            // +
)

func (r Repeat) String() string {
	switch r {
	case RepeatOptional:
		return "?"
	case RepeatStar:
		return "*"
	case RepeatPlus:
		return "+"
	}
	return ""
}
