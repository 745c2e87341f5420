package semantic

import (
	"fmt"

	"contractc/internal/ast"
	"contractc/internal/errors"
)

// checkBaseArgs verifies that every base constructor needing arguments gets
// them exactly once, for each constructor of a concrete contract
func (a *Analyzer) checkBaseArgs(no int) {
	c := a.ns.Contracts[no]
	if c.Kind != ast.KindContract || c.Broken {
		return
	}

	ctors := a.ns.Constructors(no)
	if len(ctors) == 0 {
		a.checkBaseArgsFor(c, -1)
		return
	}
	for _, ctor := range ctors {
		a.checkBaseArgsFor(c, ctor)
	}
}

func (a *Analyzer) checkBaseArgsFor(c *Contract, ctor int) {
	given := make(map[int]*BaseRef)
	a.collectBaseArgs(c.No, ctor, given)

	for _, base := range c.Linearized {
		if base == c.No || !a.needsBaseArgs(base) {
			continue
		}
		if _, ok := given[base]; !ok {
			name := a.ns.Contracts[base].Name
			b := errors.At(errors.ErrorMissingBaseArgument,
				fmt.Sprintf("missing arguments to base contract '%s' constructor", name), &c.Decl.Name)
			if ctors := a.ns.Constructors(base); len(ctors) > 0 {
				b = b.WithNoteAt(fmt.Sprintf("constructor of base contract '%s' requires arguments", name),
					a.ns.Functions[ctors[0]].Decl)
			}
			a.addError(b.Build())
		}
	}
}

// collectBaseArgs gathers the base arguments reachable from a contract when
// it is built with constructor ctor: the constructor's own base calls, the
// arguments in the 'is' list, and recursively those of the selected base
// constructors
func (a *Analyzer) collectBaseArgs(contractNo, ctor int, given map[int]*BaseRef) {
	add := func(ref *BaseRef) {
		if prev, ok := given[ref.Contract]; ok {
			name := a.ns.Contracts[ref.Contract].Name
			a.addError(errors.At(errors.ErrorDuplicateBaseArgument,
				fmt.Sprintf("duplicate argument for base contract '%s'", name), ref.Decl).
				WithNoteAt(fmt.Sprintf("previous argument for base contract '%s'", name), prev.Decl).
				Build())
			return
		}
		given[ref.Contract] = ref
		a.collectBaseArgs(ref.Contract, ref.Constructor, given)
	}

	if ctor >= 0 {
		for _, ref := range a.ns.Functions[ctor].BaseCalls {
			add(ref)
		}
	}
	for _, ref := range a.ns.Contracts[contractNo].Bases {
		if ref.Args != nil {
			add(ref)
		} else {
			a.collectBaseArgs(ref.Contract, a.noArgsConstructor(ref.Contract), given)
		}
	}
}

// noArgsConstructor returns the constructor of a contract taking no
// arguments, or -1
func (a *Analyzer) noArgsConstructor(no int) int {
	for _, ctor := range a.ns.Constructors(no) {
		if len(a.ns.Functions[ctor].Params) == 0 {
			return ctor
		}
	}
	return -1
}

// needsBaseArgs reports whether a contract declares constructors and none
// of them takes zero arguments
func (a *Analyzer) needsBaseArgs(no int) bool {
	ctors := a.ns.Constructors(no)
	if len(ctors) == 0 {
		return false
	}
	for _, ctor := range ctors {
		if len(a.ns.Functions[ctor].Params) == 0 {
			return false
		}
	}
	return true
}
