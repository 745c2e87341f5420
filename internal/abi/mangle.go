package abi

import (
	"fmt"
	"strings"

	"contractc/internal/ast"
	"contractc/internal/errors"
	"contractc/internal/semantic"
	"contractc/internal/target"
)

// MangledName turns a signature such as "f(uint64[],bool)" into a name
// that is a valid identifier in generated interface descriptions
func MangledName(signature string) string {
	return strings.NewReplacer(
		"(", "_",
		")", "",
		",", "_",
		"[]", "Array",
		"[", "Array",
		"]", "",
	).Replace(signature)
}

// callable lists the public functions and constructors a contract exposes,
// inherited ones included
func callable(ns *semantic.Namespace, contractNo int) []int {
	var out []int
	for _, no := range ns.AllFunctions(contractNo) {
		if ns.Functions[no].IsPublic() {
			out = append(out, no)
		}
	}
	return out
}

// mangle returns the functions of a contract whose external name must be
// mangled because another callable function shares their name. Overrides
// keep the name of the function they replace.
func (e *encoder) mangle(contractNo int) map[int]bool {
	mangled := make(map[int]bool)
	seen := make(map[string]int)
	for _, no := range callable(e.ns, contractNo) {
		f := e.ns.Functions[no]
		if f.IsOverride {
			continue
		}
		if prev, ok := seen[f.Name]; ok {
			mangled[prev] = true
			mangled[no] = true
			continue
		}
		seen[f.Name] = no
	}
	return mangled
}

// checkMangledNames reports mangled names that collide with the plain name
// of another callable function
func (e *encoder) checkMangledNames(contractNo int) {
	fns := callable(e.ns, contractNo)
	for _, no := range fns {
		f := e.ns.Functions[no]
		for _, other := range fns {
			o := e.ns.Functions[other]
			if f.MangledName != o.Name {
				continue
			}
			e.add(errors.At(errors.ErrorMangledCollision,
				fmt.Sprintf("mangling the symbol of overloaded function '%s' with signature '%s' results in a new symbol '%s' but this symbol already exists",
					f.Name, f.Signature, f.MangledName), f.Prototype()).
				WithNoteAt("this function declaration conflicts with mangled name", o.Prototype()).
				Build())
			break
		}
	}
}

// checkUniqueNames requires the functions and constructors declared in a
// contract to have distinct mangled names
func (e *encoder) checkUniqueNames(contractNo int) {
	names := make(map[string]int)
	for _, no := range e.ns.Contracts[contractNo].Functions {
		f := e.ns.Functions[no]
		if !f.IsPublic() {
			continue
		}
		prev, ok := names[f.MangledName]
		if !ok {
			names[f.MangledName] = no
			continue
		}
		p := e.ns.Functions[prev]
		e.add(errors.At(errors.ErrorNonUniqueName,
			fmt.Sprintf("Non unique function or constructor name '%s'", f.Name), f.Prototype()).
			WithNoteAt(fmt.Sprintf("previous declaration of '%s'", p.Name), p.Prototype()).
			Build())
	}
}

// checkPublicSurface rejects concrete contracts the contracts pallet could
// never call into
func (e *encoder) checkPublicSurface(c *semantic.Contract) {
	if c.Kind != ast.KindContract || e.ns.Config.Target != target.Polkadot {
		return
	}
	for _, no := range callable(e.ns, c.No) {
		if !e.ns.Functions[no].IsConstructor() {
			return
		}
	}
	for _, v := range e.ns.AllVariables(c.No) {
		if v.Visibility == ast.Public {
			return
		}
	}
	e.add(errors.At(errors.ErrorInvalidDeclaration,
		fmt.Sprintf("contracts without public storage or functions are not allowed on Polkadot. Consider declaring this contract abstract: 'abstract contract %s'",
			c.Name), &c.Decl.Name).Build())
}
