package semantic

import (
	"fmt"
	"strings"

	"contractc/internal/ast"
	"contractc/internal/errors"
	"contractc/internal/target"
	"contractc/internal/types"
)

// Namespace is the resolved form of a source unit. Contracts and functions
// live in flat tables and refer to each other by index, so the base graph
// can be walked without owning links.
type Namespace struct {
	Config      target.Config
	Contracts   []*Contract
	Functions   []*Function
	Structs     []*types.StructDef
	Diagnostics *errors.Sink

	contractIndex map[string]int
}

// NewNamespace creates an empty namespace for the given target
func NewNamespace(cfg target.Config, sink *errors.Sink) *Namespace {
	if sink == nil {
		sink = errors.NewSink()
	}
	return &Namespace{
		Config:        cfg,
		Diagnostics:   sink,
		contractIndex: make(map[string]int),
	}
}

// Contract is a resolved contract, abstract contract, interface or library
type Contract struct {
	No   int
	Name string
	Kind ast.ContractKind
	Decl *ast.Contract

	// Bases in declaration order
	Bases []*BaseRef
	// Linearized lists every contract this one derives from, most basic
	// first, ending with the contract itself
	Linearized []int
	// Broken is set when the base graph of this contract is cyclic
	Broken bool

	// Functions declared directly in this contract
	Functions []int
	// Variables declared directly in this contract
	Variables []*Variable
	// Structs declared in this contract
	Structs []*types.StructDef

	// VirtualFunctions maps a signature to every function with that
	// signature visible in this contract, most derived last
	VirtualFunctions map[string][]int

	// ProgramID is the decoded @program_id, nil when absent
	ProgramID     []byte
	ProgramIDText string

	// Layout lists every non-constant state variable, inherited ones first,
	// with its location in this contract's storage
	Layout        []Placement
	FixedSize     uint64 // bytes of state after the account header
	RequiredSpace uint64 // header plus fixed size
	SlotCount     uint64

	// Selector identifies the contract on targets that need one
	Selector []byte

	// Types records the type of every expression in variable initializers
	// and base arguments
	Types map[ast.Expr]*types.Type
	// Creates lists the contracts instantiated with 'new' in this contract
	Creates []int

	level int
}

// BaseRef is one entry of a contract's 'is' list, or a base constructor call
// on a constructor
type BaseRef struct {
	Contract int
	Decl     *ast.BaseSpec
	// Args are nil when the arguments are supplied elsewhere
	Args []ast.Expr
	// Constructor is the base constructor the arguments select, -1 when the
	// base declares none or the arguments did not resolve
	Constructor int
}

// Variable is a contract level state variable or constant
type Variable struct {
	Name       string
	Type       *types.Type
	Visibility ast.Visibility
	Constant   bool
	Immutable  bool
	Decl       *ast.Variable
	Contract   int

	// Exactly one of these is meaningful after layout; see Contract.FixedSize
	Slot    uint64
	Offset  uint64
	Length  uint64
	LaidOut bool

	Read     bool
	Assigned bool
}

// Placement is the location of one state variable in a contract's storage.
// A base variable may sit at a different place in each derived contract.
type Placement struct {
	Var    *Variable
	Slot   uint64
	Offset uint64
	Length uint64
}

// Location describes where a variable lives once laid out
func (v *Variable) Location(policy target.LayoutPolicy) string {
	if !v.LaidOut {
		return "constant"
	}
	if policy == target.SlotAddressed {
		return fmt.Sprintf("slot %d", v.Slot)
	}
	return fmt.Sprintf("offset %d length %d", v.Offset, v.Length)
}

// Param is a resolved function parameter or return value
type Param struct {
	Name       string
	Type       *types.Type
	Decl       *ast.Param
	Annotation *ast.Annotation
}

// Function is a resolved function or constructor
type Function struct {
	No       int
	Contract int
	Name     string
	Kind     ast.FunctionKind
	Decl     *ast.Function

	Params     []*Param
	Returns    []*Param
	Visibility ast.Visibility
	Mutability ast.Mutability
	Virtual    bool
	// IsOverride is set when the override attribute is present
	IsOverride bool
	// Overrides lists the contracts named in override(...)
	Overrides []int
	HasBody   bool

	// Signature is name(type,...) with external type names
	Signature string
	// MangledName disambiguates overloads in interface descriptions
	MangledName string
	Selector    []byte
	// SelectorDecl is the @selector annotation, if any
	SelectorDecl *ast.Annotation

	Constructor ConstructorAnnotations
	Accounts    *AccountSet

	// BaseCalls are the constructor's own base calls, "constructor() B(1)"
	BaseCalls []*BaseRef

	Calls []*CallSite
	Types map[ast.Expr]*types.Type

	// Accesses lists every state access of the body in source order
	Accesses []StateAccess
	// DataAccount records how the function touches contract storage
	DataAccount DataAccountUsage
	// UsesClock is set when the body reads the block time or number
	UsesClock bool
	// UsesSystem is set when the body calls a builtin served by the system
	// program
	UsesSystem bool
}

// Access is the level of state access an expression needs
type Access int

const (
	AccessNone Access = iota
	AccessRead
	AccessWrite
	AccessValue
)

// StateAccess is one expression that reads, writes or receives value
type StateAccess struct {
	Node  ast.Node
	Level Access
}

// IsPublic reports whether the function is externally callable
func (f *Function) IsPublic() bool {
	return f.Visibility == ast.Public || f.Visibility == ast.External
}

// IsConstructor reports whether the function is a constructor
func (f *Function) IsConstructor() bool {
	return f.Kind == ast.FuncConstructor
}

// KindName is the word used for the function in diagnostics
func (f *Function) KindName() string {
	return f.Kind.String()
}

// ParamTypes returns the resolved parameter types
func (f *Function) ParamTypes() []*types.Type {
	ts := make([]*types.Type, len(f.Params))
	for i, p := range f.Params {
		ts[i] = p.Type
	}
	return ts
}

// ReturnTypes returns the resolved return types
func (f *Function) ReturnTypes() []*types.Type {
	ts := make([]*types.Type, len(f.Returns))
	for i, p := range f.Returns {
		ts[i] = p.Type
	}
	return ts
}

// Prototype is the node spanning the function header, used for notes
func (f *Function) Prototype() ast.Node {
	return &ast.Ident{Pos: f.Decl.ProtoPos, EndPos: f.Decl.ProtoEnd, Value: f.Name}
}

// ConstructorAnnotations are the resolved @payer, @seed, @bump and @space
// annotations of a constructor
type ConstructorAnnotations struct {
	Payer     string
	PayerDecl *ast.Annotation
	Seeds     []ast.Expr
	Bump      ast.Expr
	Space     ast.Expr
	// SpaceValue is set when @space is a literal
	SpaceValue *uint64
}

// HasPayer reports whether a @payer annotation was given
func (c ConstructorAnnotations) HasPayer() bool { return c.PayerDecl != nil }

// HasSeed reports whether any seed was given
func (c ConstructorAnnotations) HasSeed() bool { return len(c.Seeds) > 0 }

// DataAccountUsage is a bit set of reads and writes to contract storage
type DataAccountUsage uint8

const (
	DataAccountNone  DataAccountUsage = 0
	DataAccountRead  DataAccountUsage = 1
	DataAccountWrite DataAccountUsage = 2
)

// CallKind classifies a call site
type CallKind int

const (
	InternalCall CallKind = iota
	ExternalCall
	ConstructorCall
	LibraryCall
)

func (k CallKind) String() string {
	switch k {
	case InternalCall:
		return "internal"
	case ExternalCall:
		return "external"
	case ConstructorCall:
		return "constructor"
	default:
		return "library"
	}
}

// CallSite is a resolved call to a contract function or constructor
type CallSite struct {
	Node     ast.Expr
	Caller   int
	Contract int
	// Function is the statically resolved callee, -1 for an implicit
	// constructor
	Function int
	Kind     CallKind
	// Virtual calls dispatch to the most derived override at runtime
	Virtual bool

	// ImplicitProgramID is set when the callee address comes from its
	// @program_id rather than from the call
	ImplicitProgramID bool
	// ExplicitAccounts is set when the caller supplied {accounts: ...}
	ExplicitAccounts bool
	AccountsOption   *ast.CallOption
	ProgramIDOption  *ast.CallOption
	SeedsOption      *ast.CallOption
}

// Inferred reports whether the account list must be derived by the compiler
func (c *CallSite) Inferred() bool {
	return !c.ExplicitAccounts
}

// LookupContract finds a contract by name
func (ns *Namespace) LookupContract(name string) (*Contract, bool) {
	no, ok := ns.contractIndex[name]
	if !ok {
		return nil, false
	}
	return ns.Contracts[no], true
}

// IsBase reports whether base appears in the linearization of derived
func (ns *Namespace) IsBase(derived, base int) bool {
	if derived == base {
		return true
	}
	for _, no := range ns.Contracts[derived].Linearized {
		if no == base {
			return true
		}
	}
	return false
}

// ResolveVirtual returns the function a virtual call to fn dispatches to
// when the runtime contract is contractNo
func (ns *Namespace) ResolveVirtual(contractNo, fn int) int {
	f := ns.Functions[fn]
	candidates := ns.Contracts[contractNo].VirtualFunctions[f.Signature]
	if len(candidates) == 0 {
		return fn
	}
	return candidates[len(candidates)-1]
}

// AllFunctions lists the functions visible in a contract, one per
// signature, choosing the most derived implementation
func (ns *Namespace) AllFunctions(contractNo int) []int {
	c := ns.Contracts[contractNo]
	var out []int
	seen := make(map[string]bool)
	for i := len(c.Linearized) - 1; i >= 0; i-- {
		for _, fn := range ns.Contracts[c.Linearized[i]].Functions {
			f := ns.Functions[fn]
			key := f.Signature
			if f.IsConstructor() {
				if c.Linearized[i] != contractNo {
					continue
				}
				key = "constructor:" + key
			}
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, ns.ResolveVirtual(contractNo, fn))
		}
	}
	return out
}

// Constructors returns the constructors declared directly in a contract
func (ns *Namespace) Constructors(contractNo int) []int {
	var out []int
	for _, fn := range ns.Contracts[contractNo].Functions {
		if ns.Functions[fn].IsConstructor() {
			out = append(out, fn)
		}
	}
	return out
}

// AllVariables lists a contract's state variables including inherited ones,
// most basic contract first
func (ns *Namespace) AllVariables(contractNo int) []*Variable {
	var out []*Variable
	for _, no := range ns.Contracts[contractNo].Linearized {
		out = append(out, ns.Contracts[no].Variables...)
	}
	return out
}

// ContractNames renders contract numbers as a comma separated list
func (ns *Namespace) ContractNames(nos []int) string {
	names := make([]string, len(nos))
	for i, no := range nos {
		names[i] = ns.Contracts[no].Name
	}
	return strings.Join(names, ",")
}

func (ns *Namespace) addError(err errors.CompilerError) {
	ns.Diagnostics.Add(err)
}
