package ast

type Node interface {
	NodePos() Position
	NodeEndPos() Position
	NodeType() NodeType
	String() string
}

type NodeType int

const (
	ILLEGAL NodeType = iota
	BAD_EXPR
	BAD_STMT

	SOURCE_UNIT
	CONTRACT
	BASE_SPEC
	ANNOTATION
	STRUCT
	VARIABLE
	FUNCTION
	OVERRIDE_SPEC
	PARAM
	TYPE
	IDENT

	BLOCK
	VAR_DECL_STMT
	EXPR_STMT
	ASSIGN_STMT
	RETURN_STMT
	IF_STMT
	WHILE_STMT
	FOR_STMT

	IDENT_EXPR
	NUMBER_LIT
	STRING_LIT
	BOOL_LIT
	ARRAY_LIT
	MEMBER_EXPR
	INDEX_EXPR
	CALL_OPTION
	CALL_EXPR
	NEW_EXPR
	BINARY_EXPR
	UNARY_EXPR
)

func (i *Ident) NodePos() Position    { return i.Pos }
func (i *Ident) NodeEndPos() Position { return i.EndPos }
func (*Ident) NodeType() NodeType     { return IDENT }

func (su *SourceUnit) NodePos() Position    { return su.Pos }
func (su *SourceUnit) NodeEndPos() Position { return su.EndPos }
func (*SourceUnit) NodeType() NodeType      { return SOURCE_UNIT }

func (c *Contract) NodePos() Position    { return c.Pos }
func (c *Contract) NodeEndPos() Position { return c.EndPos }
func (*Contract) NodeType() NodeType     { return CONTRACT }

func (b *BaseSpec) NodePos() Position    { return b.Pos }
func (b *BaseSpec) NodeEndPos() Position { return b.EndPos }
func (*BaseSpec) NodeType() NodeType     { return BASE_SPEC }

func (a *Annotation) NodePos() Position    { return a.Pos }
func (a *Annotation) NodeEndPos() Position { return a.EndPos }
func (*Annotation) NodeType() NodeType     { return ANNOTATION }

func (s *Struct) NodePos() Position    { return s.Pos }
func (s *Struct) NodeEndPos() Position { return s.EndPos }
func (*Struct) NodeType() NodeType     { return STRUCT }

func (v *Variable) NodePos() Position    { return v.Pos }
func (v *Variable) NodeEndPos() Position { return v.EndPos }
func (*Variable) NodeType() NodeType     { return VARIABLE }

func (f *Function) NodePos() Position    { return f.Pos }
func (f *Function) NodeEndPos() Position { return f.EndPos }
func (*Function) NodeType() NodeType     { return FUNCTION }

func (o *OverrideSpec) NodePos() Position    { return o.Pos }
func (o *OverrideSpec) NodeEndPos() Position { return o.EndPos }
func (*OverrideSpec) NodeType() NodeType     { return OVERRIDE_SPEC }

func (p *Param) NodePos() Position    { return p.Pos }
func (p *Param) NodeEndPos() Position { return p.EndPos }
func (*Param) NodeType() NodeType     { return PARAM }

func (t *TypeExpr) NodePos() Position    { return t.Pos }
func (t *TypeExpr) NodeEndPos() Position { return t.EndPos }
func (*TypeExpr) NodeType() NodeType     { return TYPE }

func (b *Block) NodePos() Position    { return b.Pos }
func (b *Block) NodeEndPos() Position { return b.EndPos }
func (*Block) NodeType() NodeType     { return BLOCK }

func (v *VarDeclStmt) NodePos() Position    { return v.Pos }
func (v *VarDeclStmt) NodeEndPos() Position { return v.EndPos }
func (*VarDeclStmt) NodeType() NodeType     { return VAR_DECL_STMT }

func (e *ExprStmt) NodePos() Position    { return e.Pos }
func (e *ExprStmt) NodeEndPos() Position { return e.EndPos }
func (*ExprStmt) NodeType() NodeType     { return EXPR_STMT }

func (a *AssignStmt) NodePos() Position    { return a.Pos }
func (a *AssignStmt) NodeEndPos() Position { return a.EndPos }
func (*AssignStmt) NodeType() NodeType     { return ASSIGN_STMT }

func (r *ReturnStmt) NodePos() Position    { return r.Pos }
func (r *ReturnStmt) NodeEndPos() Position { return r.EndPos }
func (*ReturnStmt) NodeType() NodeType     { return RETURN_STMT }

func (i *IfStmt) NodePos() Position    { return i.Pos }
func (i *IfStmt) NodeEndPos() Position { return i.EndPos }
func (*IfStmt) NodeType() NodeType     { return IF_STMT }

func (w *WhileStmt) NodePos() Position    { return w.Pos }
func (w *WhileStmt) NodeEndPos() Position { return w.EndPos }
func (*WhileStmt) NodeType() NodeType     { return WHILE_STMT }

func (f *ForStmt) NodePos() Position    { return f.Pos }
func (f *ForStmt) NodeEndPos() Position { return f.EndPos }
func (*ForStmt) NodeType() NodeType     { return FOR_STMT }

func (b *BadStmt) NodePos() Position    { return b.Pos }
func (b *BadStmt) NodeEndPos() Position { return b.EndPos }
func (*BadStmt) NodeType() NodeType     { return BAD_STMT }

func (b *BadExpr) NodePos() Position    { return b.Pos }
func (b *BadExpr) NodeEndPos() Position { return b.EndPos }
func (*BadExpr) NodeType() NodeType     { return BAD_EXPR }

func (i *IdentExpr) NodePos() Position    { return i.Name.Pos }
func (i *IdentExpr) NodeEndPos() Position { return i.Name.EndPos }
func (*IdentExpr) NodeType() NodeType     { return IDENT_EXPR }

func (n *NumberLit) NodePos() Position    { return n.Pos }
func (n *NumberLit) NodeEndPos() Position { return n.EndPos }
func (*NumberLit) NodeType() NodeType     { return NUMBER_LIT }

func (s *StringLit) NodePos() Position    { return s.Pos }
func (s *StringLit) NodeEndPos() Position { return s.EndPos }
func (*StringLit) NodeType() NodeType     { return STRING_LIT }

func (b *BoolLit) NodePos() Position    { return b.Pos }
func (b *BoolLit) NodeEndPos() Position { return b.EndPos }
func (*BoolLit) NodeType() NodeType     { return BOOL_LIT }

func (a *ArrayLit) NodePos() Position    { return a.Pos }
func (a *ArrayLit) NodeEndPos() Position { return a.EndPos }
func (*ArrayLit) NodeType() NodeType     { return ARRAY_LIT }

func (m *MemberExpr) NodePos() Position    { return m.Pos }
func (m *MemberExpr) NodeEndPos() Position { return m.EndPos }
func (*MemberExpr) NodeType() NodeType     { return MEMBER_EXPR }

func (i *IndexExpr) NodePos() Position    { return i.Pos }
func (i *IndexExpr) NodeEndPos() Position { return i.EndPos }
func (*IndexExpr) NodeType() NodeType     { return INDEX_EXPR }

func (c *CallOption) NodePos() Position    { return c.Pos }
func (c *CallOption) NodeEndPos() Position { return c.EndPos }
func (*CallOption) NodeType() NodeType     { return CALL_OPTION }

func (c *CallExpr) NodePos() Position    { return c.Pos }
func (c *CallExpr) NodeEndPos() Position { return c.EndPos }
func (*CallExpr) NodeType() NodeType     { return CALL_EXPR }

func (n *NewExpr) NodePos() Position    { return n.Pos }
func (n *NewExpr) NodeEndPos() Position { return n.EndPos }
func (*NewExpr) NodeType() NodeType     { return NEW_EXPR }

func (b *BinaryExpr) NodePos() Position    { return b.Pos }
func (b *BinaryExpr) NodeEndPos() Position { return b.EndPos }
func (*BinaryExpr) NodeType() NodeType     { return BINARY_EXPR }

func (u *UnaryExpr) NodePos() Position    { return u.Pos }
func (u *UnaryExpr) NodeEndPos() Position { return u.EndPos }
func (*UnaryExpr) NodeType() NodeType     { return UNARY_EXPR }
