package semantic

import (
	"contractc/internal/ast"
	"contractc/internal/types"
)

type SymbolKind int

const (
	SymbolContract SymbolKind = iota
	SymbolFunction
	SymbolStruct
	SymbolVariable
	SymbolParameter
	SymbolLocal
)

// describe is the phrase used in "x is already defined as ..." diagnostics
func (k SymbolKind) describe() string {
	switch k {
	case SymbolContract:
		return "a contract name"
	case SymbolFunction:
		return "a function"
	case SymbolStruct:
		return "a struct"
	case SymbolVariable:
		return "a contract variable"
	default:
		return "a variable"
	}
}

type Symbol struct {
	Name     string
	Kind     SymbolKind
	Node     ast.Node
	Position ast.Position
	Type     *types.Type

	// Functions holds every overload when Kind is SymbolFunction
	Functions []int
	// Variable is set for contract variables
	Variable *Variable
	// Contract is the contract number for SymbolContract
	Contract int
	// Struct is set for SymbolStruct
	Struct *types.StructDef

	Read     bool
	Assigned bool
}

type SymbolTable struct {
	symbols map[string]*Symbol
	order   []string
	parent  *SymbolTable
}

func NewSymbolTable(parent *SymbolTable) *SymbolTable {
	return &SymbolTable{
		symbols: make(map[string]*Symbol),
		parent:  parent,
	}
}

func (st *SymbolTable) Define(name string, kind SymbolKind, node ast.Node, pos ast.Position) *Symbol {
	symbol := &Symbol{
		Name:     name,
		Kind:     kind,
		Node:     node,
		Position: pos,
	}
	if _, exists := st.symbols[name]; !exists {
		st.order = append(st.order, name)
	}
	st.symbols[name] = symbol
	return symbol
}

// DefineWithType defines a symbol carrying its resolved type
func (st *SymbolTable) DefineWithType(name string, kind SymbolKind, node ast.Node, pos ast.Position, ty *types.Type) *Symbol {
	symbol := st.Define(name, kind, node, pos)
	symbol.Type = ty
	return symbol
}

func (st *SymbolTable) Lookup(name string) *Symbol {
	if symbol, exists := st.symbols[name]; exists {
		return symbol
	}
	if st.parent != nil {
		return st.parent.Lookup(name)
	}
	return nil
}

func (st *SymbolTable) LookupLocal(name string) *Symbol {
	if symbol, exists := st.symbols[name]; exists {
		return symbol
	}
	return nil
}

// Names lists every name visible from this scope, innermost first
func (st *SymbolTable) Names() []string {
	var names []string
	seen := make(map[string]bool)
	for scope := st; scope != nil; scope = scope.parent {
		for _, name := range scope.order {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}

// Locals returns the symbols declared directly in this scope in order
func (st *SymbolTable) Locals() []*Symbol {
	out := make([]*Symbol, 0, len(st.order))
	for _, name := range st.order {
		out = append(out, st.symbols[name])
	}
	return out
}
