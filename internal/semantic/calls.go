package semantic

import (
	"fmt"

	"contractc/internal/ast"
	"contractc/internal/builtins"
	"contractc/internal/errors"
	"contractc/internal/types"
)

// call resolves a function call, a type conversion or a struct literal
func (a *Analyzer) call(ctx *exprContext, e *ast.CallExpr) *types.Type {
	switch callee := e.Callee.(type) {
	case *ast.IdentExpr:
		name := callee.Name.Value
		if ctx.scope != nil && ctx.scope.Lookup(name) != nil {
			a.exprs(ctx, e.Args)
			a.errorAt(errors.ErrorInvalidOperation,
				fmt.Sprintf("'%s' is not a function", name), callee)
			return types.UnresolvedType()
		}
		if t, ok := types.Lookup(name); ok {
			a.noOptions(e.Options)
			return a.cast(ctx, e, t)
		}
		if name == "payable" {
			a.noOptions(e.Options)
			return a.cast(ctx, e, types.AddressType())
		}

		sym := a.lookup(ctx.contract, name)
		if sym == nil {
			if fn, ok := builtins.LookupFunction(name); ok {
				a.noOptions(e.Options)
				return a.builtinCall(ctx, e, fn)
			}
			a.exprs(ctx, e.Args)
			a.addError(errors.UndefinedName(name, &callee.Name, a.scopes[ctx.contract].Names()))
			return types.UnresolvedType()
		}

		switch sym.Kind {
		case SymbolStruct:
			a.noOptions(e.Options)
			return a.structLiteral(ctx, e, sym.Struct)
		case SymbolContract:
			a.noOptions(e.Options)
			return a.cast(ctx, e, sym.Type)
		case SymbolFunction:
			candidates := a.visibleFunctions(ctx.contract, name)
			return a.internalCall(ctx, e, name, candidates, true)
		}
		a.exprs(ctx, e.Args)
		a.errorAt(errors.ErrorInvalidOperation, fmt.Sprintf("'%s' is not a function", name), callee)
		return types.UnresolvedType()

	case *ast.MemberExpr:
		name := callee.Name.Value
		if id, ok := callee.Target.(*ast.IdentExpr); ok && !a.isValueName(ctx, id.Name.Value) {
			if c, ok := a.ns.LookupContract(id.Name.Value); ok {
				return a.contractCall(ctx, e, c, name)
			}
		}

		t := a.expr(ctx, callee.Target)
		switch t.Kind {
		case types.Unresolved:
			a.exprs(ctx, e.Args)
			return t
		case types.Contract:
			c := a.ns.Contracts[t.Contract.No]
			return a.externalCall(ctx, e, c, name, false)
		case types.Array:
			if !t.Fixed && (name == "push" || name == "pop") {
				a.noOptions(e.Options)
				return a.arrayMethod(ctx, e, t, name)
			}
		}
		a.exprs(ctx, e.Args)
		a.errorAt(errors.ErrorFieldNotFound,
			fmt.Sprintf("method '%s' does not exist on type '%s'", name, t), &callee.Name)
		return types.UnresolvedType()
	}

	a.expr(ctx, e.Callee)
	a.exprs(ctx, e.Args)
	a.errorAt(errors.ErrorInvalidOperation, "expression is not callable", e.Callee)
	return types.UnresolvedType()
}

func (a *Analyzer) exprs(ctx *exprContext, args []ast.Expr) []*types.Type {
	out := make([]*types.Type, len(args))
	for i, arg := range args {
		out[i] = a.expr(ctx, arg)
	}
	return out
}

func (a *Analyzer) noOptions(options []*ast.CallOption) {
	if len(options) > 0 {
		a.errorAt(errors.ErrorInvalidCallOption, "call arguments not allowed on internal calls", options[0])
	}
}

func (a *Analyzer) cast(ctx *exprContext, e *ast.CallExpr, to *types.Type) *types.Type {
	if len(e.Args) != 1 {
		a.exprs(ctx, e.Args)
		a.addError(errors.InvalidArguments("type conversion", 1, len(e.Args), e))
		return to
	}
	from := a.expr(ctx, e.Args[0])
	if from.Kind != types.Unresolved && !types.CanCast(from, to, a.ns.Config.AddressLength) {
		a.errorAt(errors.ErrorTypeMismatch,
			fmt.Sprintf("conversion from %s to %s not possible", from, to), e)
	}
	return to
}

func (a *Analyzer) structLiteral(ctx *exprContext, e *ast.CallExpr, def *types.StructDef) *types.Type {
	if len(e.Args) != len(def.Fields) {
		a.exprs(ctx, e.Args)
		a.addError(errors.InvalidArguments(fmt.Sprintf("struct '%s'", def.Name), len(def.Fields), len(e.Args), e))
		return types.StructType(def)
	}
	for i, arg := range e.Args {
		a.exprTo(ctx, arg, def.Fields[i].Type)
	}
	return types.StructType(def)
}

func (a *Analyzer) builtinCall(ctx *exprContext, e *ast.CallExpr, fn builtins.Function) *types.Type {
	if len(e.Args) < fn.MinArgs || len(e.Args) > len(fn.Params) {
		a.exprs(ctx, e.Args)
		expected := len(fn.Params)
		if len(e.Args) < fn.MinArgs {
			expected = fn.MinArgs
		}
		a.addError(errors.InvalidArguments(fmt.Sprintf("builtin function '%s'", fn.Name), expected, len(e.Args), e))
	} else {
		for i, arg := range e.Args {
			want, _ := types.Lookup(fn.Params[i])
			a.exprTo(ctx, arg, want)
		}
	}

	if (fn.Name == "keccak256" || fn.Name == "sha256") && ctx.fn != nil && a.ns.Config.IsSolana() {
		ctx.fn.UsesSystem = true
	}
	if fn.Returns == "" {
		return types.VoidType()
	}
	t, _ := types.Lookup(fn.Returns)
	return t
}

func (a *Analyzer) arrayMethod(ctx *exprContext, e *ast.CallExpr, t *types.Type, name string) *types.Type {
	ctx.access(e, AccessWrite)
	ctx.useData(DataAccountWrite)
	if name == "pop" {
		if len(e.Args) != 0 {
			a.exprs(ctx, e.Args)
			a.addError(errors.InvalidArguments("method 'pop()'", 0, len(e.Args), e))
		}
		return t.Elem
	}
	switch len(e.Args) {
	case 0:
		return t.Elem
	case 1:
		a.exprTo(ctx, e.Args[0], t.Elem)
	default:
		a.exprs(ctx, e.Args)
		a.addError(errors.InvalidArguments("method 'push()'", 1, len(e.Args), e))
	}
	return types.VoidType()
}

// visibleFunctions lists the functions called name that an unqualified call
// inside contractNo can reach. The most derived declaration of a signature
// hides the others, and private functions of bases are not inherited.
func (a *Analyzer) visibleFunctions(contractNo int, name string) []int {
	var out []int
	seen := make(map[string]bool)
	lin := a.ns.Contracts[contractNo].Linearized
	for i := len(lin) - 1; i >= 0; i-- {
		sym := a.scopes[lin[i]].LookupLocal(name)
		if sym == nil || sym.Kind != SymbolFunction {
			continue
		}
		for _, no := range sym.Functions {
			f := a.ns.Functions[no]
			if lin[i] != contractNo && f.Visibility == ast.Private {
				continue
			}
			if seen[f.Signature] {
				continue
			}
			seen[f.Signature] = true
			out = append(out, no)
		}
	}
	return out
}

// publicFunctions lists the externally callable functions called name of a
// contract, including inherited ones
func (a *Analyzer) publicFunctions(contractNo int, name string) []int {
	var out []int
	for _, no := range a.ns.AllFunctions(contractNo) {
		f := a.ns.Functions[no]
		if f.Name == name && f.IsPublic() && !f.IsConstructor() {
			out = append(out, no)
		}
	}
	return out
}

// internalCall resolves a call within the contract hierarchy. Unqualified
// calls dispatch virtually; calls through a base contract name do not.
func (a *Analyzer) internalCall(ctx *exprContext, e *ast.CallExpr, name string, candidates []int, virtual bool) *types.Type {
	a.noOptions(e.Options)
	argTypes := a.exprs(ctx, e.Args)
	if len(candidates) == 0 {
		a.addError(errors.UndefinedName(name, e.Callee, nil))
		return types.UnresolvedType()
	}

	no := a.overload(e, fmt.Sprintf("function '%s'", name), candidates, e.Args, argTypes)
	if no < 0 {
		return types.UnresolvedType()
	}
	f := a.ns.Functions[no]

	if f.Visibility == ast.External {
		a.errorAt(errors.ErrorInvalidQualifiedCall,
			"functions declared external cannot be called via an internal function call", e)
		return returnType(f)
	}
	if ctx.constant {
		a.errorAt(errors.ErrorInvalidOperation, "cannot call function in constant expression", e)
	}

	kind := InternalCall
	if a.ns.Contracts[f.Contract].Kind == ast.KindLibrary && f.Contract != ctx.contract {
		kind = LibraryCall
		virtual = false
	}
	a.callAccess(ctx, e, f.Mutability)
	a.addCallSite(ctx, &CallSite{
		Node:     e,
		Contract: f.Contract,
		Function: no,
		Kind:     kind,
		Virtual:  virtual && f.Virtual,
	})
	return returnType(f)
}

// contractCall resolves 'C.f(...)': a non-virtual call to a base, a library
// call, or on solana an external call addressed by C's program id
func (a *Analyzer) contractCall(ctx *exprContext, e *ast.CallExpr, c *Contract, name string) *types.Type {
	switch {
	case c.Kind == ast.KindLibrary:
		var candidates []int
		if sym := a.scopes[c.No].LookupLocal(name); sym != nil && sym.Kind == SymbolFunction {
			for _, no := range sym.Functions {
				if f := a.ns.Functions[no]; f.Visibility != ast.Private || c.No == ctx.contract {
					candidates = append(candidates, no)
				}
			}
		}
		return a.internalCall(ctx, e, c.Name+"."+name, candidates, false)

	case a.ns.IsBase(ctx.contract, c.No):
		return a.internalCall(ctx, e, c.Name+"."+name, a.visibleFunctions(c.No, name), false)

	case a.ns.Config.IsSolana():
		return a.externalCall(ctx, e, c, name, true)
	}

	a.exprs(ctx, e.Args)
	a.errorAt(errors.ErrorInvalidQualifiedCall,
		"function calls via contract name are only valid for base contracts", e.Callee)
	return types.UnresolvedType()
}

// externalCall resolves a call to another contract. byName is set for
// 'C.f()' where the address must come from a program id.
func (a *Analyzer) externalCall(ctx *exprContext, e *ast.CallExpr, c *Contract, name string, byName bool) *types.Type {
	argTypes := a.exprs(ctx, e.Args)
	candidates := a.publicFunctions(c.No, name)
	if len(candidates) == 0 {
		a.errorAt(errors.ErrorUndefinedFunction,
			fmt.Sprintf("%s '%s' does not have a public function called '%s'", c.Kind, c.Name, name), e.Callee)
		return types.UnresolvedType()
	}

	no := a.overload(e, fmt.Sprintf("function '%s'", name), candidates, e.Args, argTypes)
	if no < 0 {
		return types.UnresolvedType()
	}
	f := a.ns.Functions[no]

	site := &CallSite{Node: e, Contract: c.No, Function: no, Kind: ExternalCall}
	if !a.callOptions(ctx, e, site, e.Options, f, byName) {
		return returnType(f)
	}
	if ctx.constant {
		a.errorAt(errors.ErrorInvalidOperation, "cannot call function in constant expression", e)
	}

	a.callAccess(ctx, e, f.Mutability)
	a.addCallSite(ctx, site)
	return returnType(f)
}

// newContract resolves 'new C{...}(...)'
func (a *Analyzer) newContract(ctx *exprContext, e *ast.NewExpr) *types.Type {
	argTypes := a.exprs(ctx, e.Args)

	c, ok := a.ns.LookupContract(e.Contract.Value)
	if !ok {
		a.addError(errors.UndefinedName(e.Contract.Value, &e.Contract, a.ns.contractNames()))
		return types.UnresolvedType()
	}
	result := types.ContractType(c.No, c.Name)

	if c.Kind != ast.KindContract {
		a.errorAt(errors.ErrorInvalidConstructor,
			fmt.Sprintf("cannot construct '%s' of type '%s'", c.Name, c.Kind), e)
		return result
	}
	if a.ns.Config.IsSolana() && c.ProgramID == nil {
		a.errorAt(errors.ErrorMissingProgramID,
			fmt.Sprintf("in order to instantiate contract '%s', a @program_id is required on contract '%s'", c.Name, c.Name), e)
	}
	if a.createsCircular(c.No, ctx.contract) {
		a.errorAt(errors.ErrorInvalidConstructor,
			fmt.Sprintf("circular reference creating contract '%s'", c.Name), e)
		return result
	}
	creator := a.ns.Contracts[ctx.contract]
	if !containsInt(creator.Creates, c.No) {
		creator.Creates = append(creator.Creates, c.No)
	}

	no := -1
	if ctors := a.ns.Constructors(c.No); len(ctors) > 0 {
		if no = a.overload(e, "constructor", ctors, e.Args, argTypes); no < 0 {
			return result
		}
	} else if len(e.Args) > 0 {
		a.errorAt(errors.ErrorInvalidArguments, "default constructor does not take arguments", e)
		return result
	}

	site := &CallSite{Node: e, Contract: c.No, Function: no, Kind: ConstructorCall}
	var ctor *Function
	if no >= 0 {
		ctor = a.ns.Functions[no]
	}
	if !a.callOptions(ctx, e, site, e.Options, ctor, false) {
		return result
	}
	site.ImplicitProgramID = site.ProgramIDOption == nil
	if ctx.constant {
		a.errorAt(errors.ErrorInvalidOperation, "cannot create contract in constant expression", e)
	}

	ctx.access(e, AccessWrite)
	a.addCallSite(ctx, site)
	return result
}

// createsCircular reports whether creating contract no from contract from
// would create from again, directly or through the contracts no creates
func (a *Analyzer) createsCircular(no, from int) bool {
	visited := make(map[int]bool)
	var walk func(n int) bool
	walk = func(n int) bool {
		if n == from {
			return true
		}
		if visited[n] {
			return false
		}
		visited[n] = true
		for _, created := range a.ns.Contracts[n].Creates {
			if walk(created) {
				return true
			}
		}
		return false
	}
	return walk(no)
}

// callOptions checks the '{name: value}' block of an external call or
// contract creation and records the options on site
func (a *Analyzer) callOptions(ctx *exprContext, node ast.Expr, site *CallSite, options []*ast.CallOption, callee *Function, byName bool) bool {
	seen := make(map[string]*ast.CallOption)
	for _, opt := range options {
		if prev, ok := seen[opt.Name.Value]; ok {
			a.addError(errors.At(errors.ErrorInvalidCallOption,
				fmt.Sprintf("'%s' specified multiple times", opt.Name.Value), opt).
				WithNoteAt(fmt.Sprintf("location of previous declaration of '%s'", opt.Name.Value), prev).
				Build())
			return false
		}
		seen[opt.Name.Value] = opt
	}

	target := a.ns.Config.Target
	solana := a.ns.Config.IsSolana()
	notPermitted := func(opt *ast.CallOption) {
		a.errorAt(errors.ErrorInvalidCallOption,
			fmt.Sprintf("'%s' not permitted for external calls or constructors on %s", opt.Name.Value, target), opt)
	}

	ok := true
	for _, opt := range options {
		switch opt.Name.Value {
		case "value":
			if solana {
				a.expr(ctx, opt.Value)
				a.errorAt(errors.ErrorInvalidCallOption,
					"Solana Cross Program Invocation (CPI) cannot transfer native value", opt)
				ok = false
				continue
			}
			a.exprTo(ctx, opt.Value, types.UintType(a.ns.Config.ValueLength*8))
			if callee != nil && callee.Mutability != ast.Payable {
				a.errorAt(errors.ErrorInvalidCallOption,
					fmt.Sprintf("sending value to function '%s' which is not payable", callee.Name), opt)
				ok = false
			}

		case "gas":
			if solana {
				notPermitted(opt)
				ok = false
				continue
			}
			a.exprTo(ctx, opt.Value, types.UintType(64))

		case "accounts":
			if !solana {
				notPermitted(opt)
				ok = false
				continue
			}
			site.AccountsOption = opt
			site.ExplicitAccounts = true
			if lit, isLit := opt.Value.(*ast.ArrayLit); isLit && len(lit.Elems) == 0 {
				continue
			}
			t := a.expr(ctx, opt.Value)
			if t.Kind == types.Unresolved {
				continue
			}
			if t.Kind != types.Array || t.Elem.Kind != types.Struct || t.Elem.Struct.Name != AccountMetaName {
				a.errorAt(errors.ErrorInvalidCallOption,
					fmt.Sprintf("'accounts' takes array of AccountMeta, not '%s'", t), opt)
				ok = false
			} else if !t.Fixed {
				a.errorAt(errors.ErrorInvalidCallOption,
					"dynamic array is not supported for the 'accounts' argument", opt)
			}

		case "seeds":
			if !solana {
				notPermitted(opt)
				ok = false
				continue
			}
			site.SeedsOption = opt
			if t := a.expr(ctx, opt.Value); t.Kind != types.Array && t.Kind != types.Unresolved {
				a.errorAt(errors.ErrorInvalidCallOption,
					fmt.Sprintf("'seeds' takes an array of seeds, not '%s'", t), opt)
				ok = false
			}

		case "program_id":
			if !solana {
				notPermitted(opt)
				ok = false
				continue
			}
			site.ProgramIDOption = opt
			a.exprTo(ctx, opt.Value, types.AddressType())

		default:
			a.expr(ctx, opt.Value)
			a.errorAt(errors.ErrorInvalidCallOption,
				fmt.Sprintf("'%s' not a valid call parameter", opt.Name.Value), opt)
			ok = false
		}
	}
	if !ok || !solana {
		return ok
	}

	if !site.ExplicitAccounts && ctx.fn != nil && ctx.fn.Visibility != ast.External && !ctx.fn.IsConstructor() {
		a.errorAt(errors.ErrorAmbiguousAccounts,
			"accounts are required for calling a contract. You can either provide the accounts with the {accounts: ...} call argument or change this function's visibility to external",
			node)
		return false
	}

	if site.Kind == ExternalCall && byName {
		if site.ProgramIDOption == nil && a.ns.Contracts[site.Contract].ProgramID == nil {
			a.errorAt(errors.ErrorMissingProgramID,
				"a contract needs a program id to be called. Either a '@program_id' must be declared above a contract or the {program_id: ...} call argument must be present",
				node)
			return false
		}
		site.ImplicitProgramID = site.ProgramIDOption == nil
	}
	return true
}

// overload picks the candidate whose parameters the arguments convert to
// with the lowest total cost. It returns -1 after reporting when no single
// candidate is best.
func (a *Analyzer) overload(node ast.Node, what string, candidates []int, args []ast.Expr, argTypes []*types.Type) int {
	var best []int
	bestCost := -1

	for _, no := range candidates {
		f := a.ns.Functions[no]
		if len(f.Params) != len(args) {
			continue
		}
		cost, ok := 0, true
		for i, p := range f.Params {
			c, fits := types.ImplicitCost(argTypes[i], p.Type, a.ns.IsBase)
			if !fits {
				ok = false
				break
			}
			cost += c
		}
		if !ok {
			continue
		}
		switch {
		case bestCost < 0 || cost < bestCost:
			best, bestCost = []int{no}, cost
		case cost == bestCost:
			best = append(best, no)
		}
	}

	switch len(best) {
	case 1:
		return best[0]
	case 0:
		if len(candidates) == 1 {
			f := a.ns.Functions[candidates[0]]
			if len(f.Params) != len(args) {
				a.addError(errors.InvalidArguments(what, len(f.Params), len(args), node))
			} else {
				for i, p := range f.Params {
					a.convert(argTypes[i], p.Type, args[i])
				}
			}
			return -1
		}
		kind := "function"
		if a.ns.Functions[candidates[0]].IsConstructor() {
			kind = "constructor"
		}
		builder := errors.At(errors.ErrorNoMatchingOverload,
			fmt.Sprintf("cannot find overloaded %s which matches signature", kind), node)
		for _, no := range candidates {
			builder.WithNoteAt("candidate function", a.ns.Functions[no].Prototype())
		}
		a.addError(builder.Build())
	default:
		builder := errors.At(errors.ErrorAmbiguousCall, "function call can be resolved to multiple functions", node)
		for _, no := range best {
			builder.WithNoteAt("candidate function", a.ns.Functions[no].Prototype())
		}
		a.addError(builder.Build())
	}
	return -1
}

// callAccess records the state access implied by calling a function of the
// given mutability
func (a *Analyzer) callAccess(ctx *exprContext, node ast.Node, m ast.Mutability) {
	switch m {
	case ast.Nonpayable, ast.Payable:
		ctx.access(node, AccessWrite)
	case ast.View:
		ctx.access(node, AccessRead)
	}
}

func (a *Analyzer) addCallSite(ctx *exprContext, site *CallSite) {
	if ctx.fn == nil {
		return
	}
	site.Caller = ctx.fn.No
	ctx.fn.Calls = append(ctx.fn.Calls, site)
}

func returnType(f *Function) *types.Type {
	switch len(f.Returns) {
	case 0:
		return types.VoidType()
	case 1:
		return f.Returns[0].Type
	default:
		// multiple values are only used as statements or returned as is
		return types.UnresolvedType()
	}
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
