package semantic

import (
	"fmt"

	"contractc/internal/ast"
	"contractc/internal/builtins"
	"contractc/internal/errors"
	"contractc/internal/types"
)

// declareContracts creates one Contract per declaration and registers the
// names in the global scope
func (a *Analyzer) declareContracts() {
	for _, decl := range a.unit.Contracts {
		name := decl.Name.Value
		if prev := a.global.LookupLocal(name); prev != nil {
			a.addError(errors.At(errors.ErrorDuplicateDeclaration,
				fmt.Sprintf("%s is already defined as %s", name, prev.Kind.describe()), &decl.Name).
				WithNote("location of previous definition", prev.Position, prev.Node.NodeEndPos()).
				Build())
			// the duplicate still gets a contract number so its body is checked,
			// but it cannot be referred to by name
		}

		no := len(a.ns.Contracts)
		c := &Contract{
			No:               no,
			Name:             name,
			Kind:             decl.Kind,
			Decl:             decl,
			VirtualFunctions: make(map[string][]int),
			Types:            make(map[ast.Expr]*types.Type),
		}
		a.ns.Contracts = append(a.ns.Contracts, c)
		a.scopes = append(a.scopes, NewSymbolTable(a.global))

		if a.global.LookupLocal(name) == nil {
			sym := a.global.DefineWithType(name, SymbolContract, &decl.Name, decl.Name.Pos, types.ContractType(no, name))
			sym.Contract = no
			a.ns.contractIndex[name] = no
		}
		if _, ok := builtins.LookupType(name); ok {
			a.addError(errors.WarnAt(errors.WarningShadowedType,
				fmt.Sprintf("'%s' shadows name of a builtin", name), &decl.Name).Build())
		}
	}
}

// resolveBases resolves the 'is' list of every contract. Edges that would
// close a cycle are reported and dropped, so the graph stays acyclic.
func (a *Analyzer) resolveBases() {
	for _, c := range a.ns.Contracts {
		for _, spec := range c.Decl.Bases {
			if c.Kind == ast.KindLibrary {
				a.errorAt(errors.ErrorInvalidBase,
					fmt.Sprintf("library '%s' cannot have a base contract", c.Name), spec)
				continue
			}

			name := spec.Name.Value
			base, ok := a.ns.LookupContract(name)
			if !ok {
				a.addError(errors.UndefinedName(name, &spec.Name, a.ns.contractNames()))
				continue
			}

			switch {
			case base.No == c.No:
				a.errorAt(errors.ErrorCyclicBase,
					fmt.Sprintf("contract '%s' cannot have itself as a base contract", name), &spec.Name)
			case c.hasBase(base.No):
				a.errorAt(errors.ErrorInvalidBase,
					fmt.Sprintf("contract '%s' duplicate base '%s'", c.Name, name), &spec.Name)
			case a.derivesFrom(base.No, c.No):
				a.errorAt(errors.ErrorCyclicBase,
					fmt.Sprintf("base '%s' from contract '%s' is cyclic", name, c.Name), &spec.Name)
				c.Broken = true
			case c.Kind == ast.KindInterface && base.Kind != ast.KindInterface:
				a.errorAt(errors.ErrorInvalidBase,
					fmt.Sprintf("interface '%s' cannot have %s '%s' as a base", c.Name, base.Kind, name), &spec.Name)
			case base.Kind == ast.KindLibrary:
				a.errorAt(errors.ErrorInvalidBase,
					fmt.Sprintf("library '%s' cannot be used as base contract for %s '%s'", name, c.Kind, c.Name), &spec.Name)
			default:
				ref := &BaseRef{Contract: base.No, Decl: spec, Constructor: -1}
				if spec.HasArgs {
					ref.Args = spec.Args
				}
				c.Bases = append(c.Bases, ref)
			}
		}
	}

	// a contract deriving from a broken one cannot be checked either
	for _, c := range a.ns.Contracts {
		if !c.Broken {
			for no := range a.ns.Contracts {
				if no != c.No && a.ns.Contracts[no].Broken && a.derivesFrom(c.No, no) {
					c.Broken = true
					break
				}
			}
		}
	}
}

func (c *Contract) hasBase(no int) bool {
	for _, b := range c.Bases {
		if b.Contract == no {
			return true
		}
	}
	return false
}

// derivesFrom reports whether base is reachable from derived over the edges
// added so far
func (a *Analyzer) derivesFrom(derived, base int) bool {
	visited := make(map[int]bool)
	stack := []int{derived}
	for len(stack) > 0 {
		no := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[no] {
			continue
		}
		visited[no] = true
		for _, b := range a.ns.Contracts[no].Bases {
			if b.Contract == base {
				return true
			}
			stack = append(stack, b.Contract)
		}
	}
	return false
}

// linearize computes the base order of every contract. Bases listed later
// are more derived, so the right-most base is visited first; each contract
// appears once even when it is reachable over several paths.
func (a *Analyzer) linearize() {
	for _, c := range a.ns.Contracts {
		var order []int
		seen := make(map[int]bool)
		var visit func(no int)
		visit = func(no int) {
			bases := a.ns.Contracts[no].Bases
			for i := len(bases) - 1; i >= 0; i-- {
				visit(bases[i].Contract)
			}
			if !seen[no] {
				seen[no] = true
				order = append(order, no)
			}
		}
		visit(c.No)
		c.Linearized = order
	}

	// the level of a contract is one more than the highest level of its bases
	for _, c := range a.ns.Contracts {
		for _, no := range c.Linearized {
			level := 0
			for _, b := range a.ns.Contracts[no].Bases {
				level = max(level, a.ns.Contracts[b.Contract].level+1)
			}
			a.ns.Contracts[no].level = level
		}
	}
}

func (ns *Namespace) contractNames() []string {
	names := make([]string, len(ns.Contracts))
	for i, c := range ns.Contracts {
		names[i] = c.Name
	}
	return names
}
