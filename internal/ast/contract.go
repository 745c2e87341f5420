package ast

// Position tracks location information for error reporting and tooling
type Position struct {
	Filename string
	Offset   int
	Line     int
	Column   int
}

// Before reports whether p comes strictly before other in the same file
func (p Position) Before(other Position) bool {
	if p.Filename != other.Filename {
		return p.Filename < other.Filename
	}
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Column < other.Column
}

// Ident represents any identifier like contract names, function names, variables
// Example: "Token", "balanceOf", "owner"
type Ident struct {
	Pos    Position
	EndPos Position
	Value  string
}

// SourceUnit is the parsed content of one source file
type SourceUnit struct {
	Pos       Position
	EndPos    Position
	Path      string
	Contracts []*Contract
}

// ContractKind distinguishes the four contract flavours
type ContractKind int

const (
	KindContract ContractKind = iota
	KindAbstract
	KindInterface
	KindLibrary
)

func (k ContractKind) String() string {
	switch k {
	case KindAbstract:
		return "abstract contract"
	case KindInterface:
		return "interface"
	case KindLibrary:
		return "library"
	default:
		return "contract"
	}
}

// Contract represents a contract, abstract contract, interface or library declaration
// Example: "@program_id(\"...\") contract Token is Base(1), Other { ... }"
type Contract struct {
	Pos         Position
	EndPos      Position
	Kind        ContractKind
	Name        Ident
	Bases       []*BaseSpec
	Annotations []*Annotation
	Structs     []*Struct
	Variables   []*Variable
	Functions   []*Function
}

// BaseSpec is one entry of an inheritance list or a constructor base call
// Example: "Base(1, 2)" in "contract C is Base(1, 2)"
type BaseSpec struct {
	Pos     Position
	EndPos  Position
	Name    Ident
	Args    []Expr
	HasArgs bool
}

// Annotation is an '@name(args)' marker on a contract, function or parameter
// Example: "@payer(payer)", "@space(100)", "@seed"
type Annotation struct {
	Pos    Position
	EndPos Position
	Name   Ident
	Args   []Expr
}

// Struct is a user defined struct type
// Example: "struct Point { uint64 x; uint64 y; }"
type Struct struct {
	Pos    Position
	EndPos Position
	Name   Ident
	Fields []*Param
}

// Visibility of a function or state variable
type Visibility int

const (
	VisDefault Visibility = iota
	Public
	External
	Internal
	Private
)

func (v Visibility) String() string {
	switch v {
	case Public:
		return "public"
	case External:
		return "external"
	case Internal:
		return "internal"
	case Private:
		return "private"
	default:
		return ""
	}
}

// Mutability of a function
type Mutability int

const (
	Nonpayable Mutability = iota
	Payable
	View
	Pure
)

func (m Mutability) String() string {
	switch m {
	case Payable:
		return "payable"
	case View:
		return "view"
	case Pure:
		return "pure"
	default:
		return "nonpayable"
	}
}

// Variable is a contract level state variable or constant
// Example: "uint64 public counter = 1;"
type Variable struct {
	Pos        Position
	EndPos     Position
	Type       *TypeExpr
	Name       Ident
	Visibility Visibility
	Constant   bool
	Immutable  bool
	Init       Expr
}

// FunctionKind distinguishes ordinary functions from constructors
type FunctionKind int

const (
	FuncFunction FunctionKind = iota
	FuncConstructor
)

func (k FunctionKind) String() string {
	if k == FuncConstructor {
		return "constructor"
	}
	return "function"
}

// OverrideSpec is the 'override' attribute with its optional base list
// Example: "override(Base1, Base2)"
type OverrideSpec struct {
	Pos    Position
	EndPos Position
	Bases  []Ident
}

// Function represents a function or constructor declaration
// Example: "function transfer(address to, uint64 amount) public virtual returns (bool) { ... }"
type Function struct {
	Pos           Position
	EndPos        Position
	ProtoPos      Position // start of the 'function' or 'constructor' keyword
	ProtoEnd      Position // end of the prototype, before the body
	Kind          FunctionKind
	Name          Ident
	Params        []*Param
	Returns       []*Param
	Visibility    Visibility
	VisibilityPos Position
	Mutability    Mutability
	MutabilityPos Position
	Virtual       bool
	Override      *OverrideSpec
	Annotations   []*Annotation
	BaseCalls     []*BaseSpec // constructor only: "constructor() Base(1)"
	Body          *Block
}

// Param is a function parameter, return value or struct field
// Example: "@seed bytes seed", "uint64 amount"
type Param struct {
	Pos        Position
	EndPos     Position
	Type       *TypeExpr
	Name       *Ident
	Annotation *Annotation
}

// TypeExpr is a type as written in the source
// Example: "uint64", "address[]", "mapping(address => uint64)", "Point[4]"
type TypeExpr struct {
	Pos    Position
	EndPos Position
	Name   Ident // elementary type or user defined name; empty for mappings
	Key    *TypeExpr
	Value  *TypeExpr
	Dims   []ArrayDim
}

// ArrayDim is one array suffix; Fixed is false for "[]"
type ArrayDim struct {
	Fixed bool
	Size  uint64
}

// IsMapping reports whether the type expression is a mapping
func (t *TypeExpr) IsMapping() bool {
	return t.Key != nil
}
