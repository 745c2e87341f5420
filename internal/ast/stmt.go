package ast

// Block is a braced statement list
type Block struct {
	Pos    Position
	EndPos Position
	Stmts  []Stmt
}

// VarDeclStmt declares a local variable
// Example: "uint64 x = 1;"
type VarDeclStmt struct {
	Pos    Position
	EndPos Position
	Type   *TypeExpr
	Name   Ident
	Init   Expr
}

// ExprStmt is an expression evaluated for its side effects
// Example: "foo();"
type ExprStmt struct {
	Pos    Position
	EndPos Position
	X      Expr
}

// AssignStmt is an assignment or compound assignment
// Example: "x = 1;", "total += amount;"
type AssignStmt struct {
	Pos    Position
	EndPos Position
	Target Expr
	Op     string
	Value  Expr
}

// ReturnStmt returns zero or more values
// Example: "return (a, b);"
type ReturnStmt struct {
	Pos    Position
	EndPos Position
	Values []Expr
}

// IfStmt is a conditional with optional else branch
type IfStmt struct {
	Pos    Position
	EndPos Position
	Cond   Expr
	Then   Stmt
	Else   Stmt
}

// WhileStmt is a while loop
type WhileStmt struct {
	Pos    Position
	EndPos Position
	Cond   Expr
	Body   Stmt
}

// ForStmt is a C style for loop; every clause is optional
type ForStmt struct {
	Pos    Position
	EndPos Position
	Init   Stmt
	Cond   Expr
	Post   Stmt
	Body   Stmt
}

// BadStmt represents parse errors in statements
type BadStmt struct {
	Pos     Position
	EndPos  Position
	Message string
}

func (*Block) stmtNode()       {}
func (*VarDeclStmt) stmtNode() {}
func (*ExprStmt) stmtNode()    {}
func (*AssignStmt) stmtNode()  {}
func (*ReturnStmt) stmtNode()  {}
func (*IfStmt) stmtNode()      {}
func (*WhileStmt) stmtNode()   {}
func (*ForStmt) stmtNode()     {}
func (*BadStmt) stmtNode()     {}
