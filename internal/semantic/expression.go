package semantic

import (
	"fmt"
	"math/big"

	"contractc/internal/ast"
	"contractc/internal/builtins"
	"contractc/internal/errors"
	"contractc/internal/types"
)

// exprContext is the environment an expression is resolved in
type exprContext struct {
	contract int
	// fn is nil for state variable initializers and base arguments
	fn    *Function
	types map[ast.Expr]*types.Type
	// scope holds parameters and locals; nil outside function bodies
	scope *SymbolTable
	// constant is set while resolving the initializer of a constant
	constant bool

	// lvalue is set while resolving the target of an assignment
	lvalue bool
	// root is the storage variable an assignment target is rooted at
	root *Variable
}

// access records a state access of the enclosing function
func (ctx *exprContext) access(node ast.Node, level Access) {
	if ctx.fn == nil {
		return
	}
	ctx.fn.Accesses = append(ctx.fn.Accesses, StateAccess{Node: node, Level: level})
}

func (ctx *exprContext) useData(usage DataAccountUsage) {
	if ctx.fn != nil {
		ctx.fn.DataAccount |= usage
	}
}

func (a *Analyzer) record(ctx *exprContext, e ast.Expr, t *types.Type) *types.Type {
	ctx.types[e] = t
	return t
}

// expr resolves an expression and returns its type. Errors are recorded and
// yield the unresolved type, which is compatible with anything, so that one
// mistake does not cascade.
func (a *Analyzer) expr(ctx *exprContext, e ast.Expr) *types.Type {
	switch e := e.(type) {
	case *ast.NumberLit:
		return a.record(ctx, e, types.RationalType(e.Value))
	case *ast.StringLit:
		return a.record(ctx, e, types.StringLiteralType(e.Value))
	case *ast.BoolLit:
		return a.record(ctx, e, types.BoolType())
	case *ast.IdentExpr:
		return a.record(ctx, e, a.identifier(ctx, e))
	case *ast.ArrayLit:
		return a.record(ctx, e, a.arrayLiteral(ctx, e))
	case *ast.MemberExpr:
		return a.record(ctx, e, a.member(ctx, e))
	case *ast.IndexExpr:
		return a.record(ctx, e, a.index(ctx, e))
	case *ast.CallExpr:
		return a.record(ctx, e, a.call(ctx, e))
	case *ast.NewExpr:
		return a.record(ctx, e, a.newContract(ctx, e))
	case *ast.BinaryExpr:
		return a.record(ctx, e, a.binary(ctx, e))
	case *ast.UnaryExpr:
		return a.record(ctx, e, a.unary(ctx, e))
	case *ast.BadExpr:
		return types.UnresolvedType()
	}
	return types.UnresolvedType()
}

// exprTo resolves e and checks that it converts implicitly to want
func (a *Analyzer) exprTo(ctx *exprContext, e ast.Expr, want *types.Type) *types.Type {
	t := a.expr(ctx, e)
	a.convert(t, want, e)
	return want
}

// convert reports a failed implicit conversion
func (a *Analyzer) convert(from, to *types.Type, node ast.Node) bool {
	if types.CanConvert(from, to, a.ns.IsBase) {
		return true
	}
	if from.Kind == types.Rational && to.IsInteger() {
		a.errorAt(errors.ErrorTypeMismatch,
			fmt.Sprintf("value %s does not fit into type %s.", from.Value, to), node)
		return false
	}
	a.addError(errors.TypeMismatch(to.String(), from.String(), node))
	return false
}

func (a *Analyzer) identifier(ctx *exprContext, e *ast.IdentExpr) *types.Type {
	name := e.Name.Value

	if ctx.scope != nil {
		if sym := ctx.scope.Lookup(name); sym != nil {
			if ctx.lvalue {
				sym.Assigned = true
			} else {
				sym.Read = true
			}
			return sym.Type
		}
	}

	sym := a.lookup(ctx.contract, name)
	if sym == nil {
		candidates := a.scopes[ctx.contract].Names()
		if ctx.scope != nil {
			candidates = append(ctx.scope.Names(), candidates...)
		}
		a.addError(errors.UndefinedName(name, &e.Name, candidates))
		return types.UnresolvedType()
	}

	switch sym.Kind {
	case SymbolVariable:
		return a.stateVariable(ctx, e, sym.Variable)
	case SymbolFunction:
		a.errorAt(errors.ErrorInvalidOperation,
			fmt.Sprintf("function '%s' must be called", name), e)
	case SymbolContract:
		a.errorAt(errors.ErrorInvalidOperation,
			fmt.Sprintf("contract name '%s' cannot be used as a value", name), e)
	case SymbolStruct:
		a.errorAt(errors.ErrorInvalidOperation,
			fmt.Sprintf("struct '%s' cannot be used as a value", name), e)
	}
	return types.UnresolvedType()
}

func (a *Analyzer) stateVariable(ctx *exprContext, e *ast.IdentExpr, v *Variable) *types.Type {
	if v.Constant {
		if ctx.lvalue {
			a.errorAt(errors.ErrorInvalidAssignment,
				fmt.Sprintf("cannot assign to constant '%s'", v.Name), e)
		}
		v.Read = true
		return v.Type
	}

	if ctx.constant {
		a.errorAt(errors.ErrorInvalidOperation,
			fmt.Sprintf("cannot read contract variable '%s' in constant expression", v.Name), e)
		return v.Type
	}
	if ctx.lvalue {
		if v.Immutable && (ctx.fn == nil || !ctx.fn.IsConstructor()) {
			a.errorAt(errors.ErrorInvalidAssignment,
				fmt.Sprintf("cannot assign to immutable '%s' outside of constructor", v.Name), e)
		}
		if ctx.root == nil {
			ctx.root = v
		}
		v.Assigned = true
		return v.Type
	}

	v.Read = true
	ctx.access(e, AccessRead)
	ctx.useData(DataAccountRead)
	return v.Type
}

func (a *Analyzer) arrayLiteral(ctx *exprContext, e *ast.ArrayLit) *types.Type {
	if len(e.Elems) == 0 {
		a.errorAt(errors.ErrorInvalidType, "array requires at least one element", e)
		return types.UnresolvedType()
	}

	var elem *types.Type
	for _, x := range e.Elems {
		t := a.expr(ctx, x)
		if elem == nil {
			elem = t
			continue
		}
		common := types.Common(elem, t)
		if common == nil {
			a.addError(errors.TypeMismatch(elem.String(), t.String(), x))
			return types.UnresolvedType()
		}
		elem = common
	}

	switch elem.Kind {
	case types.Rational:
		elem = types.SmallestFitting(elem.Value)
	case types.StringLiteral:
		elem = types.StringType()
	}
	return types.ArrayType(elem, true, uint64(len(e.Elems)))
}

func (a *Analyzer) member(ctx *exprContext, e *ast.MemberExpr) *types.Type {
	name := e.Name.Value

	if id, ok := e.Target.(*ast.IdentExpr); ok && !a.isValueName(ctx, id.Name.Value) {
		object := id.Name.Value
		if builtins.IsBuiltinObject(object) {
			return a.builtinMember(ctx, e, object)
		}
		if c, ok := a.ns.LookupContract(object); ok {
			if name == "program_id" {
				if c.ProgramID == nil {
					a.errorAt(errors.ErrorMissingProgramID,
						fmt.Sprintf("%s '%s' has no declared program_id", c.Kind, c.Name), e)
				}
				return types.AddressType()
			}
			a.errorAt(errors.ErrorInvalidOperation,
				fmt.Sprintf("function '%s.%s' must be called", c.Name, name), e)
			return types.UnresolvedType()
		}
	}

	t := a.expr(ctx, e.Target)
	switch t.Kind {
	case types.Unresolved:
		return t
	case types.Struct:
		for _, f := range t.Struct.Fields {
			if f.Name == name {
				return f.Type
			}
		}
		a.errorAt(errors.ErrorFieldNotFound,
			fmt.Sprintf("struct '%s' does not have a field called '%s'", t.Struct.Name, name), &e.Name)
		return types.UnresolvedType()
	case types.Array, types.DynamicBytes:
		if name == "length" && !ctx.lvalue {
			return types.UintType(32)
		}
	case types.Address:
		if name == "balance" && !ctx.lvalue {
			ctx.access(e, AccessRead)
			return types.UintType(a.ns.Config.ValueLength * 8)
		}
	case types.Contract:
		a.errorAt(errors.ErrorInvalidOperation,
			fmt.Sprintf("function '%s' must be called", name), e)
		return types.UnresolvedType()
	}

	a.errorAt(errors.ErrorFieldNotFound,
		fmt.Sprintf("'%s' not found on type '%s'", name, t), &e.Name)
	return types.UnresolvedType()
}

// isValueName reports whether a name resolves to a local, a parameter or a
// state variable, which hide contract names and builtin objects
func (a *Analyzer) isValueName(ctx *exprContext, name string) bool {
	if ctx.scope != nil && ctx.scope.Lookup(name) != nil {
		return true
	}
	sym := a.lookup(ctx.contract, name)
	return sym != nil && sym.Kind == SymbolVariable
}

func (a *Analyzer) builtinMember(ctx *exprContext, e *ast.MemberExpr, object string) *types.Type {
	solana := a.ns.Config.IsSolana()
	m, ok := builtins.LookupMember(object, e.Name.Value, solana)
	if !ok {
		if _, other := builtins.LookupMember(object, e.Name.Value, !solana); other {
			a.errorAt(errors.ErrorFieldNotFound,
				fmt.Sprintf("builtin '%s.%s' not available on %s", object, e.Name.Value, a.ns.Config.Target), e)
		} else {
			a.errorAt(errors.ErrorFieldNotFound,
				fmt.Sprintf("builtin '%s.%s' does not exist", object, e.Name.Value), e)
		}
		return types.UnresolvedType()
	}
	if ctx.lvalue {
		a.errorAt(errors.ErrorInvalidAssignment,
			fmt.Sprintf("cannot assign to builtin '%s.%s'", object, e.Name.Value), e)
		return types.UnresolvedType()
	}
	if ctx.constant {
		a.errorAt(errors.ErrorInvalidOperation,
			fmt.Sprintf("cannot read '%s.%s' in constant expression", object, e.Name.Value), e)
	}

	if object == "msg" && e.Name.Value == "value" && ctx.fn != nil && ctx.fn.IsPublic() {
		ctx.access(e, AccessValue)
	} else {
		ctx.access(e, AccessRead)
	}
	if m.Clock && ctx.fn != nil {
		ctx.fn.UsesClock = true
	}

	if m.Type == "value" {
		return types.UintType(a.ns.Config.ValueLength * 8)
	}
	t, _ := types.Lookup(m.Type)
	return t
}

func (a *Analyzer) index(ctx *exprContext, e *ast.IndexExpr) *types.Type {
	t := a.expr(ctx, e.Target)

	lvalue := ctx.lvalue
	ctx.lvalue = false
	defer func() { ctx.lvalue = lvalue }()

	switch t.Kind {
	case types.Unresolved:
		a.expr(ctx, e.Index)
		return t
	case types.Mapping:
		a.exprTo(ctx, e.Index, t.Key)
		return t.Elem
	case types.Array:
		it := a.expr(ctx, e.Index)
		if !it.IsNumeric() && it.Kind != types.Unresolved {
			a.errorAt(errors.ErrorTypeMismatch,
				fmt.Sprintf("array subscript must be an unsigned integer, not '%s'", it), e.Index)
		} else if it.Kind == types.Rational && t.Fixed && (it.Value.Sign() < 0 || it.Value.Cmp(new(big.Int).SetUint64(t.Len)) >= 0) {
			a.errorAt(errors.ErrorInvalidOperation,
				fmt.Sprintf("index %s out of range for array of length %d", it.Value, t.Len), e.Index)
		}
		return t.Elem
	case types.DynamicBytes, types.FixedBytes:
		a.exprTo(ctx, e.Index, types.UintType(32))
		return types.FixedBytesType(1)
	}

	a.expr(ctx, e.Index)
	a.errorAt(errors.ErrorInvalidOperation,
		fmt.Sprintf("expression of type '%s' cannot be subscripted", t), e.Target)
	return types.UnresolvedType()
}

var arithmetic = map[string]bool{
	"+": true, "-": true, "*": true, "/": true, "%": true, "**": true,
	"&": true, "|": true, "^": true, "<<": true, ">>": true,
}

var comparison = map[string]bool{
	"==": true, "!=": true, "<": true, ">": true, "<=": true, ">=": true,
}

func (a *Analyzer) binary(ctx *exprContext, e *ast.BinaryExpr) *types.Type {
	left := a.expr(ctx, e.Left)
	right := a.expr(ctx, e.Right)

	switch {
	case e.Op == "&&" || e.Op == "||":
		a.convert(left, types.BoolType(), e.Left)
		a.convert(right, types.BoolType(), e.Right)
		return types.BoolType()

	case comparison[e.Op]:
		if common := types.Common(left, right); common == nil {
			a.errorAt(errors.ErrorTypeMismatch,
				fmt.Sprintf("cannot compare '%s' with '%s'", left, right), e)
		} else if e.Op != "==" && e.Op != "!=" && !common.IsNumeric() && common.Kind != types.FixedBytes && common.Kind != types.Unresolved {
			a.errorAt(errors.ErrorInvalidOperation,
				fmt.Sprintf("operator '%s' not supported on '%s'", e.Op, common), e)
		}
		return types.BoolType()

	case arithmetic[e.Op]:
		if left.Kind == types.Rational && right.Kind == types.Rational {
			if v, ok := foldRational(e.Op, left.Value, right.Value); ok {
				return types.RationalType(v)
			}
		}
		if e.Op == "<<" || e.Op == ">>" || e.Op == "**" {
			// the shift amount or exponent does not widen the result
			if !right.IsNumeric() && right.Kind != types.Unresolved {
				a.errorAt(errors.ErrorTypeMismatch,
					fmt.Sprintf("operator '%s' requires an integer, not '%s'", e.Op, right), e.Right)
			}
			if left.Kind == types.Rational {
				return types.SmallestFitting(left.Value)
			}
			return left
		}
		common := types.Common(left, right)
		if common == nil {
			a.errorAt(errors.ErrorTypeMismatch,
				fmt.Sprintf("operator '%s' not possible on '%s' and '%s'", e.Op, left, right), e)
			return types.UnresolvedType()
		}
		if !common.IsNumeric() && common.Kind != types.Unresolved &&
			!(common.Kind == types.FixedBytes && (e.Op == "&" || e.Op == "|" || e.Op == "^")) {
			a.errorAt(errors.ErrorInvalidOperation,
				fmt.Sprintf("operator '%s' not supported on '%s'", e.Op, common), e)
			return types.UnresolvedType()
		}
		return common
	}

	a.errorAt(errors.ErrorInvalidOperation, fmt.Sprintf("unknown operator '%s'", e.Op), e)
	return types.UnresolvedType()
}

// foldRational evaluates an operator on two literals; division by zero and
// operators that do not fold exactly are left to the typed path
func foldRational(op string, x, y *big.Int) (*big.Int, bool) {
	switch op {
	case "+":
		return new(big.Int).Add(x, y), true
	case "-":
		return new(big.Int).Sub(x, y), true
	case "*":
		return new(big.Int).Mul(x, y), true
	case "/":
		if y.Sign() == 0 {
			return nil, false
		}
		return new(big.Int).Quo(x, y), true
	case "%":
		if y.Sign() == 0 {
			return nil, false
		}
		return new(big.Int).Rem(x, y), true
	case "**":
		if y.Sign() < 0 || y.BitLen() > 16 {
			return nil, false
		}
		return new(big.Int).Exp(x, y, nil), true
	case "<<":
		if y.Sign() < 0 || y.BitLen() > 16 {
			return nil, false
		}
		return new(big.Int).Lsh(x, uint(y.Uint64())), true
	}
	return nil, false
}

func (a *Analyzer) unary(ctx *exprContext, e *ast.UnaryExpr) *types.Type {
	t := a.expr(ctx, e.X)
	switch e.Op {
	case "!":
		a.convert(t, types.BoolType(), e.X)
		return types.BoolType()
	case "-":
		switch {
		case t.Kind == types.Rational:
			return types.RationalType(new(big.Int).Neg(t.Value))
		case t.Kind == types.Uint:
			a.errorAt(errors.ErrorInvalidOperation,
				fmt.Sprintf("negate not allowed on unsigned type '%s'", t), e)
			return t
		case t.IsInteger() || t.Kind == types.Unresolved:
			return t
		}
	case "~":
		if t.IsInteger() || t.Kind == types.FixedBytes || t.Kind == types.Unresolved {
			return t
		}
		if t.Kind == types.Rational {
			return types.SmallestFitting(t.Value)
		}
	}
	a.errorAt(errors.ErrorInvalidOperation,
		fmt.Sprintf("operator '%s' not supported on '%s'", e.Op, t), e)
	return types.UnresolvedType()
}
