package semantic

import (
	"fmt"
	"slices"

	"contractc/internal/ast"
	"contractc/internal/errors"
)

// baseEntry is a function a derived declaration still has to override,
// together with the contract it was inherited from
type baseEntry struct {
	contract int
	function int
}

// checkInheritance runs the override rules for every contract. Each worker
// only writes the VirtualFunctions table of its own contract.
func (a *Analyzer) checkInheritance() {
	err := a.forEachLevel(func(c *Contract) {
		if c.Broken {
			return
		}
		a.checkContractInheritance(c)
	})
	if err != nil {
		log.Errorf("inheritance check: %s", err)
	}
}

func (a *Analyzer) checkContractInheritance(c *Contract) {
	ns := a.ns
	functionSyms := make(map[string]*Symbol)
	variableSyms := make(map[string]*Symbol)
	overrideNeeded := make(map[string][]baseEntry)
	var neededOrder []string
	var all []int

	// queue records that sig must be overridden further down; prev is only
	// added when the signature is not pending yet
	queue := func(sig string, prev *baseEntry, cur baseEntry) {
		entry, ok := overrideNeeded[sig]
		if !ok {
			neededOrder = append(neededOrder, sig)
			if prev != nil {
				entry = append(entry, *prev)
			}
		}
		if !slices.Contains(entry, cur) {
			entry = append(entry, cur)
		}
		overrideNeeded[sig] = entry
	}

	for _, baseNo := range c.Linearized {
		for _, sym := range a.scopes[baseNo].Locals() {
			name := sym.Name
			if sym.Kind == SymbolFunction {
				if _, ok := functionSyms[name]; ok {
					continue
				}
			}
			prev := variableSyms[name]
			if prev == nil {
				prev = functionSyms[name]
			}
			if prev != nil {
				a.addError(errors.At(errors.ErrorInheritedClash,
					fmt.Sprintf("already defined '%s'", name), a.symbolNode(sym)).
					WithNoteAt(fmt.Sprintf("previous definition of '%s'", name), a.symbolNode(prev)).
					Build())
			}
			if sym.Kind == SymbolVariable && sym.Variable.Visibility == ast.Private {
				continue
			}
			if sym.Kind == SymbolFunction {
				functionSyms[name] = sym
			} else {
				variableSyms[name] = sym
			}
		}

		for _, fnNo := range ns.Contracts[baseNo].Functions {
			cur := ns.Functions[fnNo]
			if cur.IsConstructor() {
				continue
			}
			sig := cur.Signature

			if entry, ok := overrideNeeded[sig]; ok {
				if a.checkOverrideNeeded(cur, entry) {
					delete(overrideNeeded, sig)
				}
			} else {
				var previous []int
				for _, no := range all {
					if ns.Functions[no].Signature == sig {
						previous = append(previous, no)
					}
				}

				if len(previous) == 0 && cur.IsOverride {
					a.errorAt(errors.ErrorInvalidOverride,
						fmt.Sprintf("'%s' does not override anything", cur.Name), cur.Prototype())
					continue
				}

				// a function without body must be implemented by a concrete contract
				if len(previous) == 0 && !cur.HasBody && c.Kind == ast.KindContract {
					queue(sig, nil, baseEntry{contract: baseNo, function: fnNo})
					continue
				}

				for _, prevNo := range previous {
					a.checkOverride(baseNo, cur, ns.Functions[prevNo], queue)
				}
			}

			if cur.IsOverride || cur.Virtual {
				c.VirtualFunctions[sig] = append(c.VirtualFunctions[sig], fnNo)
			}
			all = append(all, fnNo)
		}
	}

	for _, sig := range neededOrder {
		list, ok := overrideNeeded[sig]
		if !ok {
			continue
		}
		fn := ns.Functions[list[0].function]

		// interfaces and abstract contracts may leave virtual functions open
		if fn.Virtual && c.Kind != ast.KindContract {
			continue
		}

		if len(list) == 1 {
			a.addError(errors.At(errors.ErrorMissingImplementation,
				fmt.Sprintf("contract '%s' missing override for function '%s'", c.Name, fn.Name), &c.Decl.Name).
				WithNoteAt(fmt.Sprintf("declaration of function '%s'", fn.Name), fn.Prototype()).
				Build())
			continue
		}

		builder := errors.At(errors.ErrorMissingOverride,
			fmt.Sprintf("function '%s' with this signature already defined", fn.Name), fn.Prototype())
		for _, e := range list[1:] {
			other := ns.Functions[e.function]
			builder.WithNoteAt(fmt.Sprintf("previous definition of function '%s'", other.Name), other.Prototype())
		}
		a.addError(builder.Build())
	}
}

// checkOverrideNeeded handles a function whose signature is pending, either
// because a base left it unimplemented or because two bases both define it.
// It reports whether cur settles the signature.
func (a *Analyzer) checkOverrideNeeded(cur *Function, entry []baseEntry) bool {
	ns := a.ns

	var notVirtual []*Function
	for _, e := range entry {
		if f := ns.Functions[e.function]; !f.Virtual {
			notVirtual = append(notVirtual, f)
		}
	}
	if len(notVirtual) > 0 {
		builder := errors.At(errors.ErrorNotVirtual,
			fmt.Sprintf("function '%s' overrides functions which are not 'virtual'", cur.Name), cur.Prototype())
		for _, f := range notVirtual {
			builder.WithNoteAt(fmt.Sprintf("function '%s' is not specified 'virtual'", f.Name), f.Prototype())
		}
		a.addError(builder.Build())
	}

	needed := make([]int, 0, len(entry))
	for _, e := range entry {
		if !slices.Contains(needed, e.contract) {
			needed = append(needed, e.contract)
		}
	}
	sourceOverride := ns.ContractNames(entryContracts(entry))

	switch {
	case cur.IsOverride:
		if len(cur.Overrides) == 0 && len(entry) > 1 {
			a.errorAt(errors.ErrorMissingOverride,
				fmt.Sprintf("function '%s' should specify override list 'override(%s)'", cur.Name, sourceOverride),
				cur.Decl.Override)
		} else {
			var missing, extra []int
			for _, no := range needed {
				if !slices.Contains(cur.Overrides, no) {
					missing = append(missing, no)
				}
			}
			for _, no := range cur.Overrides {
				if !slices.Contains(needed, no) {
					extra = append(extra, no)
				}
			}
			if len(missing) > 0 && len(needed) >= 2 {
				a.errorAt(errors.ErrorMissingOverride,
					fmt.Sprintf("function '%s' missing overrides '%s', specify 'override(%s)'",
						cur.Name, ns.ContractNames(missing), sourceOverride),
					cur.Decl.Override)
			}
			if len(extra) > 0 {
				a.errorAt(errors.ErrorInvalidOverride,
					fmt.Sprintf("function '%s' includes extraneous overrides '%s', specify 'override(%s)'",
						cur.Name, ns.ContractNames(extra), sourceOverride),
					cur.Decl.Override)
			}
		}
		for _, e := range entry {
			a.baseFunctionCompatible(ns.Functions[e.function], cur)
		}

	case len(entry) == 1:
		base := ns.Functions[entry[0].function]
		// implementing an interface function does not need 'override'
		if ns.Contracts[entry[0].contract].Kind != ast.KindInterface {
			a.errorAt(errors.ErrorMissingOverride,
				fmt.Sprintf("function '%s' should specify 'override'", cur.Name), cur.Prototype())
		}
		a.baseFunctionCompatible(base, cur)

	default:
		a.errorAt(errors.ErrorMissingOverride,
			fmt.Sprintf("function '%s' should specify override list 'override(%s)'", cur.Name, sourceOverride),
			cur.Prototype())
		return false
	}
	return true
}

// checkOverride compares cur against an earlier function with the same
// signature. A body without 'override' is queued, since a later contract
// may still resolve the clash.
func (a *Analyzer) checkOverride(baseNo int, cur, prev *Function, queue func(string, *baseEntry, baseEntry)) {
	prevNote := func(b *errors.SemanticErrorBuilder, message string) {
		a.addError(b.WithNoteAt(message, prev.Prototype()).Build())
	}
	previousDef := fmt.Sprintf("previous definition of '%s'", prev.Name)

	switch {
	case prev.Contract == baseNo:
		prevNote(errors.At(errors.ErrorOverrideSameContract,
			fmt.Sprintf("function '%s' overrides function in same contract", cur.Name), cur.Prototype()), previousDef)
		return
	case !paramTypesEqual(prev.Params, cur.Params):
		prevNote(errors.At(errors.ErrorOverrideSignature,
			fmt.Sprintf("function '%s' overrides function with different argument types", cur.Name), cur.Prototype()), previousDef)
		return
	case !paramTypesEqual(prev.Returns, cur.Returns):
		prevNote(errors.At(errors.ErrorOverrideSignature,
			fmt.Sprintf("function '%s' overrides function with different return types", cur.Name), cur.Prototype()), previousDef)
		return
	}

	a.baseFunctionCompatible(prev, cur)

	if cur.IsOverride {
		if !prev.Virtual {
			prevNote(errors.At(errors.ErrorNotVirtual,
				fmt.Sprintf("function '%s' overrides function which is not virtual", cur.Name), cur.Prototype()),
				fmt.Sprintf("previous definition of function '%s'", prev.Name))
			return
		}
		if len(cur.Overrides) > 0 && !slices.Contains(cur.Overrides, prev.Contract) {
			prevNote(errors.At(errors.ErrorInvalidOverride,
				fmt.Sprintf("function '%s' override list does not contain '%s'", cur.Name, a.ns.Contracts[prev.Contract].Name),
				cur.Decl.Override),
				fmt.Sprintf("previous definition of function '%s'", prev.Name))
		}
		return
	}

	if cur.HasBody {
		queue(cur.Signature,
			&baseEntry{contract: prev.Contract, function: prev.No},
			baseEntry{contract: baseNo, function: cur.No})
	}
}

// baseFunctionCompatible reports attributes of an overriding function that
// do not agree with the function it overrides
func (a *Analyzer) baseFunctionCompatible(base, fn *Function) {
	if !compatibleMutability(fn.Mutability, base.Mutability) {
		a.addError(errors.At(errors.ErrorIncompatibleMutability,
			fmt.Sprintf("mutability '%s' of function '%s' is not compatible with mutability '%s'",
				fn.Mutability, fn.Name, base.Mutability), fn.Prototype()).
			WithNoteAt("location of base function", base.Prototype()).
			Build())
	}

	if !compatibleVisibility(fn.Visibility, base.Visibility) {
		a.addError(errors.At(errors.ErrorIncompatibleVisibility,
			fmt.Sprintf("visibility '%s' of function '%s' is not compatible with visibility '%s'",
				fn.Visibility, fn.Name, base.Visibility), fn.Prototype()).
			WithNoteAt("location of base function", base.Prototype()).
			Build())
	}

	switch {
	case fn.SelectorDecl == nil && base.SelectorDecl == nil:
	case fn.SelectorDecl != nil && base.SelectorDecl != nil:
		if !slices.Equal(fn.Selector, base.Selector) {
			a.addError(errors.At(errors.ErrorSelectorMismatch,
				fmt.Sprintf("selector of function '%s' different from base selector", fn.Name), fn.SelectorDecl).
				WithNoteAt("location of base function", base.SelectorDecl).
				Build())
		}
	case base.SelectorDecl != nil:
		a.addError(errors.At(errors.ErrorSelectorMismatch,
			fmt.Sprintf("selector of function '%s' must match base selector", fn.Name), fn.Prototype()).
			WithNoteAt("location of base function", base.SelectorDecl).
			Build())
	default:
		a.addError(errors.At(errors.ErrorSelectorMismatch,
			fmt.Sprintf("base function needs same selector as selector of function '%s'", fn.Name), fn.SelectorDecl).
			WithNoteAt("location of base function", base.Prototype()).
			Build())
	}

	a.overrideAccountsCompatible(base, fn)
}

type flagMismatch struct {
	at, other ast.Node
	name      string
}

// overrideAccountsCompatible requires both functions to declare the same
// accounts with the same flags in the same order
func (a *Analyzer) overrideAccountsCompatible(base, fn *Function) {
	var missing []AccountRequirement
	var mismatched []flagMismatch

	ordered1, fnSpan := compareAccounts(base.Accounts, fn.Accounts, &missing, &mismatched, false)
	ordered2, baseSpan := compareAccounts(fn.Accounts, base.Accounts, &missing, &mismatched, true)

	if len(missing) > 0 {
		builder := errors.At(errors.ErrorOverrideAccounts,
			"functions must have the same declared accounts for correct overriding", fn.Prototype())
		for _, acc := range missing {
			builder.WithNoteAt(fmt.Sprintf("corresponding account '%s' is missing", acc.Name), acc.Decl)
		}
		a.addError(builder.Build())
	}

	seen := make(map[string]bool)
	for _, m := range mismatched {
		if seen[m.name] {
			continue
		}
		seen[m.name] = true
		a.addError(errors.At(errors.ErrorOverrideAccounts,
			fmt.Sprintf("account '%s' must be declared with the same annotation for overriding", m.name), m.at).
			WithNoteAt("location of other declaration", m.other).
			Build())
	}

	if !(ordered1 && ordered2) && fnSpan != nil && baseSpan != nil {
		a.addError(errors.At(errors.ErrorOverrideAccounts,
			"accounts must be declared in the same order for overriding", fnSpan).
			WithNoteAt("location of base function accounts", baseSpan).
			Build())
	}
}

// compareAccounts walks other and looks each account up in accounts. It
// reports whether the relative order agrees and returns the span covering
// every declaration in other.
func compareAccounts(accounts, other *AccountSet, missing *[]AccountRequirement, mismatched *[]flagMismatch, reverse bool) (bool, ast.Node) {
	ordered := true
	var span *ast.Ident
	names := accounts.Names()

	for i, acc := range other.List() {
		if acc.Decl == nil {
			continue
		}
		if span == nil {
			span = &ast.Ident{Pos: acc.Decl.NodePos(), EndPos: acc.Decl.NodeEndPos()}
		} else {
			span.EndPos = acc.Decl.NodeEndPos()
		}

		counterpart, ok := accounts.Get(acc.Name)
		if !ok {
			*missing = append(*missing, acc)
			continue
		}
		if counterpart.Signer != acc.Signer || counterpart.Writable != acc.Writable {
			m := flagMismatch{at: acc.Decl, other: counterpart.Decl, name: acc.Name}
			if reverse {
				m.at, m.other = m.other, m.at
			}
			*mismatched = append(*mismatched, m)
		} else if slices.Index(names, acc.Name) != i {
			ordered = false
		}
	}
	if span == nil {
		return ordered, nil
	}
	return ordered, span
}

// compatibleMutability reports whether a function declared left may
// override one declared right
func compatibleMutability(left, right ast.Mutability) bool {
	switch left {
	case ast.Payable:
		return right == ast.Payable
	case ast.Nonpayable:
		return right == ast.Nonpayable || right == ast.Payable
	case ast.View:
		return right != ast.Pure
	default:
		return true
	}
}

// compatibleVisibility treats public and external as interchangeable
func compatibleVisibility(left, right ast.Visibility) bool {
	isPublic := func(v ast.Visibility) bool { return v == ast.Public || v == ast.External }
	if isPublic(left) || isPublic(right) {
		return isPublic(left) && isPublic(right)
	}
	return left == right
}

func paramTypesEqual(a, b []*Param) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Type.Equal(b[i].Type) {
			return false
		}
	}
	return true
}

func entryContracts(entry []baseEntry) []int {
	out := make([]int, len(entry))
	for i, e := range entry {
		out[i] = e.contract
	}
	return out
}

// symbolNode is the node diagnostics about a symbol point at
func (a *Analyzer) symbolNode(sym *Symbol) ast.Node {
	if sym.Kind == SymbolFunction && len(sym.Functions) > 0 {
		return a.ns.Functions[sym.Functions[0]].Prototype()
	}
	if v, ok := sym.Node.(*ast.Variable); ok {
		return &v.Name
	}
	if s, ok := sym.Node.(*ast.Struct); ok {
		return &s.Name
	}
	return sym.Node
}
