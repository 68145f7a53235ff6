package ast

type Node interface {
	NodePos() Position
	NodeEndPos() Position
	NodeType() NodeType
	String() string
}

func (c *Config) NodePos() Position    { return c.Pos }
func (c *Config) NodeEndPos() Position { return c.EndPos }
func (*Config) NodeType() NodeType     { return CONFIG }

func (d *Directive) NodePos() Position    { return d.Pos }
func (d *Directive) NodeEndPos() Position { return d.EndPos }
func (*Directive) NodeType() NodeType     { return DIRECTIVE }

func (s *Symbol) NodePos() Position    { return s.Pos }
func (s *Symbol) NodeEndPos() Position { return s.EndPos }
func (*Symbol) NodeType() NodeType     { return SYMBOL }

func (r *Rule) NodePos() Position    { return r.Pos }
func (r *Rule) NodeEndPos() Position { return r.EndPos }
func (*Rule) NodeType() NodeType     { return RULE }

func (a *Alternative) NodePos() Position    { return a.Pos }
func (a *Alternative) NodeEndPos() Position { return a.EndPos }
func (*Alternative) NodeType() NodeType     { return ALTERNATIVE }

func (si *SymbolItem) NodePos() Position    { return si.Pos }
func (si *SymbolItem) NodeEndPos() Position { return si.EndPos }
func (*SymbolItem) NodeType() NodeType      { return SYMBOL_ITEM }

func (gi *GroupItem) NodePos() Position    { return gi.Pos }
func (gi *GroupItem) NodeEndPos() Position { return gi.EndPos }
func (*GroupItem) NodeType() NodeType      { return GROUP_ITEM }

func (ab *ActionBlock) NodePos() Position    { return ab.Pos }
func (ab *ActionBlock) NodeEndPos() Position { return ab.EndPos }
func (*ActionBlock) NodeType() NodeType      { return ACTION_BLOCK }

func (m *Macro) NodePos() Position    { return m.Pos }
func (m *Macro) NodeEndPos() Position { return m.EndPos }
func (*Macro) NodeType() NodeType     { return MACRO }

func (lr *LexRule) NodePos() Position    { return lr.Pos }
func (lr *LexRule) NodeEndPos() Position { return lr.EndPos }
func (*LexRule) NodeType() NodeType      { return LEX_RULE }
