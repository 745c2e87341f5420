package semantic

import (
	"fmt"

	"contractc/internal/ast"
	"contractc/internal/errors"
	"contractc/internal/types"
)

// resolveBodies resolves state variable initializers, base constructor
// arguments and function bodies. Contracts are walked in declaration order:
// 'new' records which contracts each one creates and the circular creation
// check reads those lists across contracts.
func (a *Analyzer) resolveBodies() {
	before := len(a.ns.Diagnostics.Errors())

	for _, c := range a.ns.Contracts {
		for _, v := range c.Variables {
			if v.Decl.Init == nil {
				continue
			}
			ctx := &exprContext{contract: c.No, types: c.Types, constant: v.Constant}
			a.exprTo(ctx, v.Decl.Init, v.Type)
		}

		for _, base := range c.Bases {
			if base.Args == nil {
				continue
			}
			ctx := &exprContext{contract: c.No, types: c.Types}
			base.Constructor = a.baseConstructor(ctx, base.Contract, base.Args, base.Decl)
		}

		for _, no := range c.Functions {
			fn := a.ns.Functions[no]
			if fn.IsConstructor() {
				a.constructorBaseCalls(c, fn)
			}
			if fn.HasBody {
				a.resolveBody(fn)
			}
		}
	}

	a.bodyErrors = len(a.ns.Diagnostics.Errors()) > before
}

// baseConstructor resolves the arguments given to a base contract and
// returns the constructor they select, or -1
func (a *Analyzer) baseConstructor(ctx *exprContext, baseNo int, args []ast.Expr, node ast.Node) int {
	argTypes := a.exprs(ctx, args)
	ctors := a.ns.Constructors(baseNo)
	if len(ctors) == 0 {
		if len(args) > 0 {
			a.errorAt(errors.ErrorInvalidArguments, "default constructor does not take arguments", node)
		}
		return -1
	}
	return a.overload(node, "constructor", ctors, args, argTypes)
}

// constructorBaseCalls resolves "constructor() Base(1)" calls. The
// arguments may refer to the constructor's parameters.
func (a *Analyzer) constructorBaseCalls(c *Contract, fn *Function) {
	if len(fn.Decl.BaseCalls) == 0 {
		return
	}
	ctx := &exprContext{contract: c.No, fn: fn, types: fn.Types, scope: a.paramScope(fn)}

	seen := make(map[int]*ast.BaseSpec)
	for _, spec := range fn.Decl.BaseCalls {
		base, ok := a.ns.LookupContract(spec.Name.Value)
		if !ok {
			a.exprs(ctx, spec.Args)
			a.addError(errors.UndefinedName(spec.Name.Value, &spec.Name, a.ns.contractNames()))
			continue
		}
		if base.No == c.No || !a.ns.IsBase(c.No, base.No) {
			a.exprs(ctx, spec.Args)
			a.errorAt(errors.ErrorInvalidBase,
				fmt.Sprintf("contract '%s' is not a base contract of '%s'", base.Name, c.Name), &spec.Name)
			continue
		}
		if prev, ok := seen[base.No]; ok {
			a.exprs(ctx, spec.Args)
			a.addError(errors.At(errors.ErrorDuplicateBaseArgument,
				fmt.Sprintf("duplicate base contract '%s'", base.Name), spec).
				WithNoteAt(fmt.Sprintf("previous base contract '%s'", base.Name), prev).
				Build())
			continue
		}
		seen[base.No] = spec

		ref := &BaseRef{Contract: base.No, Decl: spec, Args: spec.Args, Constructor: -1}
		ref.Constructor = a.baseConstructor(ctx, base.No, spec.Args, spec)
		fn.BaseCalls = append(fn.BaseCalls, ref)
	}
}

// paramScope returns a scope holding the named parameters and return values
// of fn
func (a *Analyzer) paramScope(fn *Function) *SymbolTable {
	scope := NewSymbolTable(nil)
	define := func(params []*Param, kind SymbolKind) {
		for _, p := range params {
			if p.Name == "" {
				continue
			}
			if prev := scope.LookupLocal(p.Name); prev != nil {
				a.addError(errors.DuplicateDeclaration(
					fmt.Sprintf("'%s' is already declared", p.Name), p.Decl.Name, prev.Node))
				continue
			}
			scope.DefineWithType(p.Name, kind, p.Decl.Name, p.Decl.Name.Pos, p.Type)
		}
	}
	define(fn.Params, SymbolParameter)
	define(fn.Returns, SymbolLocal)
	return scope
}

func (a *Analyzer) resolveBody(fn *Function) {
	ctx := &exprContext{
		contract: fn.Contract,
		fn:       fn,
		types:    fn.Types,
		scope:    a.paramScope(fn),
	}
	a.block(ctx, fn.Decl.Body)

	if len(fn.Returns) > 0 && !terminates(fn.Decl.Body) && !allNamed(fn.Returns) {
		a.errorAt(errors.ErrorInvalidDeclaration, "missing return statement", fn.Prototype())
	}
}

func (a *Analyzer) block(ctx *exprContext, b *ast.Block) {
	outer := ctx.scope
	ctx.scope = NewSymbolTable(outer)
	for _, s := range b.Stmts {
		a.stmt(ctx, s)
	}
	ctx.scope = outer
}

func (a *Analyzer) stmt(ctx *exprContext, s ast.Stmt) {
	switch s := s.(type) {
	case *ast.Block:
		a.block(ctx, s)

	case *ast.VarDeclStmt:
		t := a.resolveType(ctx.contract, s.Type)
		if t.ContainsMapping() {
			a.errorAt(errors.ErrorInvalidType,
				fmt.Sprintf("variable '%s' of type '%s' must be a contract variable", s.Name.Value, t), s.Type)
		}
		if s.Init != nil {
			a.exprTo(ctx, s.Init, t)
		}
		if prev := ctx.scope.LookupLocal(s.Name.Value); prev != nil {
			a.addError(errors.DuplicateDeclaration(
				fmt.Sprintf("'%s' is already declared", s.Name.Value), &s.Name, prev.Node))
			return
		}
		sym := ctx.scope.DefineWithType(s.Name.Value, SymbolLocal, &s.Name, s.Name.Pos, t)
		sym.Assigned = s.Init != nil

	case *ast.ExprStmt:
		a.expr(ctx, s.X)

	case *ast.AssignStmt:
		a.assign(ctx, s)

	case *ast.ReturnStmt:
		a.returnStmt(ctx, s)

	case *ast.IfStmt:
		a.exprTo(ctx, s.Cond, types.BoolType())
		a.scoped(ctx, s.Then)
		if s.Else != nil {
			a.scoped(ctx, s.Else)
		}

	case *ast.WhileStmt:
		a.exprTo(ctx, s.Cond, types.BoolType())
		a.scoped(ctx, s.Body)

	case *ast.ForStmt:
		outer := ctx.scope
		ctx.scope = NewSymbolTable(outer)
		if s.Init != nil {
			a.stmt(ctx, s.Init)
		}
		if s.Cond != nil {
			a.exprTo(ctx, s.Cond, types.BoolType())
		}
		if s.Post != nil {
			a.stmt(ctx, s.Post)
		}
		a.scoped(ctx, s.Body)
		ctx.scope = outer

	case *ast.BadStmt:
	}
}

// scoped resolves a branch or loop body in its own scope
func (a *Analyzer) scoped(ctx *exprContext, s ast.Stmt) {
	outer := ctx.scope
	ctx.scope = NewSymbolTable(outer)
	a.stmt(ctx, s)
	ctx.scope = outer
}

func (a *Analyzer) assign(ctx *exprContext, s *ast.AssignStmt) {
	switch s.Target.(type) {
	case *ast.IdentExpr, *ast.IndexExpr, *ast.MemberExpr:
	default:
		a.expr(ctx, s.Target)
		a.expr(ctx, s.Value)
		a.errorAt(errors.ErrorInvalidAssignment, "expression is not assignable", s.Target)
		return
	}

	ctx.lvalue, ctx.root = true, nil
	t := a.expr(ctx, s.Target)
	root := ctx.root
	ctx.lvalue, ctx.root = false, nil

	if root != nil {
		if s.Op != "=" {
			ctx.access(s.Target, AccessRead)
			ctx.useData(DataAccountRead)
		}
		ctx.access(s.Target, AccessWrite)
		ctx.useData(DataAccountWrite)
	}

	if s.Op == "=" {
		a.exprTo(ctx, s.Value, t)
		return
	}
	vt := a.expr(ctx, s.Value)
	if !t.IsInteger() && t.Kind != types.Unresolved {
		a.errorAt(errors.ErrorInvalidOperation,
			fmt.Sprintf("operator '%s' not supported on '%s'", s.Op, t), s)
		return
	}
	a.convert(vt, t, s.Value)
}

func (a *Analyzer) returnStmt(ctx *exprContext, s *ast.ReturnStmt) {
	returns := ctx.fn.Returns
	switch {
	case len(s.Values) == 0 && len(returns) > 0:
		if !allNamed(returns) {
			a.errorAt(errors.ErrorInvalidArguments,
				fmt.Sprintf("missing return value, %d return values expected", len(returns)), s)
		}
		return
	case len(s.Values) != len(returns):
		a.exprs(ctx, s.Values)
		if len(returns) == 0 {
			a.errorAt(errors.ErrorInvalidArguments, "function has no return values", s)
			return
		}
		a.errorAt(errors.ErrorInvalidArguments,
			fmt.Sprintf("incorrect number of return values, expected %d but got %d", len(returns), len(s.Values)), s)
		return
	}
	for i, v := range s.Values {
		a.exprTo(ctx, v, returns[i].Type)
	}
}

// terminates reports whether control never falls off the end of s
func terminates(s ast.Stmt) bool {
	switch s := s.(type) {
	case *ast.Block:
		for _, st := range s.Stmts {
			if terminates(st) {
				return true
			}
		}
	case *ast.ReturnStmt:
		return true
	case *ast.IfStmt:
		return s.Else != nil && terminates(s.Then) && terminates(s.Else)
	case *ast.ExprStmt:
		if call, ok := s.X.(*ast.CallExpr); ok {
			if id, ok := call.Callee.(*ast.IdentExpr); ok {
				return id.Name.Value == "revert"
			}
		}
	}
	return false
}

func allNamed(params []*Param) bool {
	for _, p := range params {
		if p.Name == "" {
			return false
		}
	}
	return true
}
