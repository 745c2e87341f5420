package ast

import "math/big"

// Expr is any expression node
type Expr interface {
	Node
	exprNode()
}

// Stmt is any statement node
type Stmt interface {
	Node
	stmtNode()
}

// BadExpr represents parse errors in expressions
type BadExpr struct {
	Pos     Position
	EndPos  Position
	Message string
}

// IdentExpr is a bare name used as an expression
// Example: "balance", "Base"
type IdentExpr struct {
	Name Ident
}

// NumberLit is a decimal or hexadecimal integer literal
// Example: "100", "0xff"
type NumberLit struct {
	Pos    Position
	EndPos Position
	Raw    string
	Value  *big.Int
}

// StringLit is a double quoted string literal
// Example: "\"hello\""
type StringLit struct {
	Pos    Position
	EndPos Position
	Value  string
}

// BoolLit is 'true' or 'false'
type BoolLit struct {
	Pos    Position
	EndPos Position
	Value  bool
}

// ArrayLit is a bracketed list of expressions
// Example: "[1, 2, 3, 4]"
type ArrayLit struct {
	Pos    Position
	EndPos Position
	Elems  []Expr
}

// MemberExpr is field or member access
// Example: "block.timestamp", "Base1.foo"
type MemberExpr struct {
	Pos    Position
	EndPos Position
	Target Expr
	Name   Ident
}

// IndexExpr is array or mapping indexing
// Example: "balances[owner]"
type IndexExpr struct {
	Pos    Position
	EndPos Position
	Target Expr
	Index  Expr
}

// CallOption is one entry of a '{name: value}' call option block
// Example: "accounts: metas", "program_id: pid"
type CallOption struct {
	Pos    Position
	EndPos Position
	Name   Ident
	Value  Expr
}

// CallExpr is a function call, type cast, or external call
// Example: "foo(1)", "Other.bar{accounts: metas}(x)", "uint64(x)"
type CallExpr struct {
	Pos     Position
	EndPos  Position
	Callee  Expr
	Options []*CallOption
	Args    []Expr
}

// NewExpr creates a contract instance
// Example: "new Child{program_id: pid}(1)"
type NewExpr struct {
	Pos      Position
	EndPos   Position
	Contract Ident
	Options  []*CallOption
	Args     []Expr
}

// BinaryExpr is a binary operation
// Example: "a + b", "x == y"
type BinaryExpr struct {
	Pos    Position
	EndPos Position
	Op     string
	Left   Expr
	Right  Expr
}

// UnaryExpr is a prefix operation
// Example: "!ok", "-x"
type UnaryExpr struct {
	Pos    Position
	EndPos Position
	Op     string
	X      Expr
}

func (*BadExpr) exprNode()    {}
func (*IdentExpr) exprNode()  {}
func (*NumberLit) exprNode()  {}
func (*StringLit) exprNode()  {}
func (*BoolLit) exprNode()    {}
func (*ArrayLit) exprNode()   {}
func (*MemberExpr) exprNode() {}
func (*IndexExpr) exprNode()  {}
func (*CallExpr) exprNode()   {}
func (*NewExpr) exprNode()    {}
func (*BinaryExpr) exprNode() {}
func (*UnaryExpr) exprNode()  {}
