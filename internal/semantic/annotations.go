package semantic

import (
	"fmt"
	"math/big"

	"github.com/btcsuite/btcutil/base58"

	"contractc/internal/ast"
	"contractc/internal/errors"
	"contractc/internal/target"
	"contractc/internal/types"
)

// annotationTarget is the kind of declaration an annotation is written on
type annotationTarget int

const (
	onContract annotationTarget = iota
	onConstructor
	onFunction
	onParameter
)

// annotationRule describes where an annotation name is accepted
type annotationRule struct {
	solanaOnly bool
	// bodyless annotations are also accepted on functions without a body
	bodyless bool
}

var annotationRules = map[annotationTarget]map[string]annotationRule{
	onContract: {
		"program_id": {solanaOnly: true},
	},
	onConstructor: {
		"selector": {bodyless: true},
		"payer":    {solanaOnly: true},
		"seed":     {solanaOnly: true},
		"bump":     {solanaOnly: true},
		"space":    {solanaOnly: true},
	},
	onFunction: {
		"selector":       {bodyless: true},
		"account":        {solanaOnly: true, bodyless: true},
		"signer":         {solanaOnly: true, bodyless: true},
		"mutableAccount": {solanaOnly: true, bodyless: true},
		"mutableSigner":  {solanaOnly: true, bodyless: true},
	},
	onParameter: {
		"seed":  {solanaOnly: true},
		"bump":  {solanaOnly: true},
		"space": {solanaOnly: true},
	},
}

// lookupRule reports whether name is known for the target kind on the
// active target
func (a *Analyzer) lookupRule(on annotationTarget, name string) (annotationRule, bool) {
	rule, ok := annotationRules[on][name]
	if !ok || (rule.solanaOnly && !a.ns.Config.IsSolana()) {
		return annotationRule{}, false
	}
	return rule, true
}

// accountFlags maps function level account annotations to signer and
// writable flags
var accountFlags = map[string][2]bool{
	"account":        {false, false},
	"signer":         {true, false},
	"mutableAccount": {false, true},
	"mutableSigner":  {true, true},
}

func (a *Analyzer) contractAnnotations(c *Contract) {
	var programID *ast.Annotation
	for _, ann := range c.Decl.Annotations {
		name := ann.Name.Value
		if _, ok := a.lookupRule(onContract, name); !ok {
			a.errorAt(errors.ErrorUnknownAnnotation,
				fmt.Sprintf("unknown annotation %s for %s", name, c.Kind), ann)
			continue
		}

		if programID != nil {
			a.addError(errors.At(errors.ErrorDuplicateAnnotation,
				fmt.Sprintf("duplicate @%s annotation for %s", name, c.Kind), ann).
				WithNoteAt(fmt.Sprintf("previous @%s", name), programID).
				Build())
			continue
		}
		programID = ann

		lit, ok := singleArg(ann).(*ast.StringLit)
		if !ok {
			a.errorAt(errors.ErrorInvalidAnnotation,
				"annotation '@program_id' requires one string literal argument", ann)
			continue
		}
		id := base58.Decode(lit.Value)
		switch {
		case len(id) == 0:
			a.errorAt(errors.ErrorInvalidAnnotation,
				fmt.Sprintf("address literal %s invalid character", lit.Value), lit)
		case len(id) != a.ns.Config.AddressLength:
			a.errorAt(errors.ErrorInvalidAnnotation,
				fmt.Sprintf("address literal %s incorrect length of %d", lit.Value, len(id)), lit)
		default:
			c.ProgramID = id
			c.ProgramIDText = lit.Value
		}
	}
}

// prototypeAnnotations resolves the annotations written above a function or
// constructor and on its parameters
func (a *Analyzer) prototypeAnnotations(c *Contract, fn *Function) {
	on := onFunction
	if fn.IsConstructor() {
		on = onConstructor
	}

	var body []*ast.Annotation
	for _, ann := range fn.Decl.Annotations {
		name := ann.Name.Value
		rule, known := a.lookupRule(on, name)

		switch {
		case name == "selector":
			a.selectorAnnotation(fn, ann)
		case !fn.HasBody && !rule.bodyless:
			a.errorAt(errors.ErrorAnnotationNoBody,
				fmt.Sprintf("annotation '@%s' not allowed on %s with no body", name, fn.KindName()), ann)
		case !known:
			a.errorAt(errors.ErrorUnknownAnnotation,
				fmt.Sprintf("unknown annotation %s for %s", name, fn.KindName()), ann)
		case on == onFunction:
			a.accountAnnotation(fn, ann)
		default:
			body = append(body, ann)
		}
	}

	if !fn.IsConstructor() {
		for _, p := range fn.Params {
			if p.Annotation != nil {
				a.errorAt(errors.ErrorUnknownAnnotation, "unexpected parameter annotation", p.Annotation)
			}
		}
		return
	}
	a.constructorAnnotations(fn, body)
}

func (a *Analyzer) selectorAnnotation(fn *Function, ann *ast.Annotation) {
	if fn.IsConstructor() && a.ns.Config.Target != target.Polkadot {
		a.errorAt(errors.ErrorInvalidAnnotation,
			fmt.Sprintf("overriding selector not permitted on %s", fn.KindName()), ann)
		return
	}
	if !fn.IsPublic() {
		a.errorAt(errors.ErrorInvalidAnnotation,
			fmt.Sprintf("overriding selector only permitted on 'public' or 'external' function, not '%s'", fn.Visibility), ann)
		return
	}
	if fn.SelectorDecl != nil {
		a.addError(errors.At(errors.ErrorDuplicateAnnotation,
			fmt.Sprintf("duplicate @selector annotation for %s", fn.KindName()), ann).
			WithNoteAt("previous @selector", fn.SelectorDecl).
			Build())
		return
	}

	list, ok := singleArg(ann).(*ast.ArrayLit)
	if !ok {
		node := ast.Node(ann)
		if arg := singleArg(ann); arg != nil {
			node = arg
		}
		a.errorAt(errors.ErrorInvalidAnnotation, "expression must be an array literal", node)
		return
	}

	selector := make([]byte, 0, len(list.Elems))
	valid := true
	for _, elem := range list.Elems {
		num, ok := elem.(*ast.NumberLit)
		if !ok {
			a.errorAt(errors.ErrorInvalidAnnotation, "literal number expected", elem)
			valid = false
			continue
		}
		if !types.Fits(num.Value, types.UintType(8)) {
			a.errorAt(errors.ErrorInvalidAnnotation,
				fmt.Sprintf("value %s does not fit into type uint8.", num.Value), num)
			valid = false
			continue
		}
		selector = append(selector, byte(num.Value.Uint64()))
	}
	if valid {
		fn.Selector = selector
		fn.SelectorDecl = ann
	}
}

// accountAnnotation declares an account the function expects, for example
// '@mutableSigner(owner)'
func (a *Analyzer) accountAnnotation(fn *Function, ann *ast.Annotation) {
	if fn.Visibility != ast.External {
		a.errorAt(errors.ErrorInvalidAnnotation,
			"account declarations are only valid in functions declared as external", ann)
		return
	}
	id, ok := singleArg(ann).(*ast.IdentExpr)
	if !ok {
		a.errorAt(errors.ErrorInvalidAnnotation, "invalid parameter for annotation", ann)
		return
	}
	a.declareAccount(fn, id, ann, accountFlags[ann.Name.Value])
}

// declareAccount inserts an author declared account, rejecting reserved and
// duplicate names
func (a *Analyzer) declareAccount(fn *Function, id *ast.IdentExpr, ann *ast.Annotation, flags [2]bool) bool {
	name := id.Name.Value
	if IsBuiltinAccount(name) {
		a.errorAt(errors.ErrorReservedAccount, fmt.Sprintf("'%s' is a reserved account name", name), id)
		return false
	}
	if prev, exists := fn.Accounts.Get(name); exists {
		builder := errors.At(errors.ErrorDuplicateAnnotation, fmt.Sprintf("account '%s' already defined", name), id)
		if prev.Decl != nil {
			builder.WithNoteAt("previous definition", prev.Decl)
		}
		a.addError(builder.Build())
		return false
	}
	fn.Accounts.Insert(AccountRequirement{
		Name:     name,
		Signer:   flags[0],
		Writable: flags[1],
		Source:   AccountDeclared,
		Decl:     ann,
	})
	return true
}

// constructorAnnotations resolves @payer, @seed, @bump and @space on a
// constructor and its parameters
func (a *Analyzer) constructorAnnotations(fn *Function, body []*ast.Annotation) {
	before := a.ns.Diagnostics.Len()
	resolved := 0
	var bump, space ast.Node
	ca := &fn.Constructor

	for _, ann := range body {
		name := ann.Name.Value
		if name == "payer" {
			id, ok := singleArg(ann).(*ast.IdentExpr)
			if !ok {
				a.errorAt(errors.ErrorInvalidAnnotation, "invalid parameter for annotation", ann)
				continue
			}
			if IsBuiltinAccount(id.Name.Value) {
				a.errorAt(errors.ErrorReservedAccount,
					fmt.Sprintf("'%s' is a reserved account name", id.Name.Value), id)
				continue
			}
			if prev, exists := fn.Accounts.Get(id.Name.Value); exists {
				a.addError(errors.At(errors.ErrorDuplicateAnnotation,
					fmt.Sprintf("account '%s' already defined", id.Name.Value), id).
					WithNoteAt("previous definition", prev.Decl).
					Build())
				continue
			}
			if ca.PayerDecl != nil {
				a.duplicateAnnotation(name, ann, ca.PayerDecl)
				continue
			}
			ca.Payer = id.Name.Value
			ca.PayerDecl = ann
			fn.Accounts.Insert(AccountRequirement{
				Name:     id.Name.Value,
				Signer:   true,
				Writable: true,
				Source:   AccountDeclared,
				Decl:     ann,
			})
			resolved++
			continue
		}

		value := singleArg(ann)
		if value == nil {
			a.errorAt(errors.ErrorInvalidAnnotation,
				fmt.Sprintf("'@%s' annotation requires a value", name), ann)
			continue
		}
		if !isLiteral(value) {
			a.errorAt(errors.ErrorInvalidAnnotation,
				fmt.Sprintf("'@%s' annotation on top of a constructor only accepts literals", name), value)
			continue
		}
		if !a.checkAnnotationValue(name, literalType(value), value) {
			continue
		}

		switch name {
		case "seed":
			ca.Seeds = append(ca.Seeds, value)
		case "bump":
			if bump != nil {
				a.duplicateAnnotation(name, value, bump)
				continue
			}
			bump = ann
			ca.Bump = value
		case "space":
			if space != nil {
				a.duplicateAnnotation(name, value, space)
				continue
			}
			space = ann
			ca.Space = value
			if num, ok := value.(*ast.NumberLit); ok {
				v := num.Value.Uint64()
				ca.SpaceValue = &v
			}
		}
		resolved++
	}

	for _, p := range fn.Params {
		ann := p.Annotation
		if ann == nil {
			continue
		}
		name := ann.Name.Value
		if name == "payer" {
			a.errorAt(errors.ErrorInvalidAnnotation, "@payer annotation not allowed next to a parameter", ann)
			continue
		}
		if _, ok := a.lookupRule(onParameter, name); !ok {
			a.errorAt(errors.ErrorUnknownAnnotation,
				fmt.Sprintf("unknown annotation %s for %s", name, fn.KindName()), ann)
			continue
		}
		if p.Decl.Name == nil {
			a.errorAt(errors.ErrorInvalidAnnotation,
				fmt.Sprintf("'@%s' annotation requires a named parameter", name), ann)
			continue
		}

		switch {
		case name == "bump" && bump != nil:
			a.duplicateAnnotation(name, ann, bump)
			continue
		case name == "space" && space != nil:
			a.duplicateAnnotation(name, ann, space)
			continue
		}

		ref := &ast.IdentExpr{Name: *p.Decl.Name}
		if !a.checkAnnotationValue(name, p.Type, ann) {
			continue
		}
		switch name {
		case "seed":
			ca.Seeds = append(ca.Seeds, ref)
		case "bump":
			bump = ann
			ca.Bump = ref
		case "space":
			space = ann
			ca.Space = ref
		}
		resolved++
	}

	if resolved > 0 && a.ns.Diagnostics.Len() == before && ca.PayerDecl == nil {
		a.errorAt(errors.ErrorInvalidAnnotation, "@payer annotation required for constructor", fn.Decl)
	}
}

// checkAnnotationValue verifies that a value of type from can be used for
// the named constructor annotation
func (a *Analyzer) checkAnnotationValue(name string, from *types.Type, node ast.Node) bool {
	var to *types.Type
	switch name {
	case "seed":
		to = types.DynamicBytesType()
		if from.Kind == types.String || from.Kind == types.FixedBytes {
			return true
		}
	case "bump":
		to = types.FixedBytesType(1)
		if from.Kind == types.Rational && from.Value.Sign() >= 0 && from.Value.BitLen() <= 8 {
			return true
		}
	default:
		to = types.UintType(64)
	}
	if !types.CanConvert(from, to, nil) {
		a.addError(errors.TypeMismatch(to.String(), from.String(), node))
		return false
	}
	return true
}

func (a *Analyzer) duplicateAnnotation(name string, node, prev ast.Node) {
	a.addError(errors.At(errors.ErrorDuplicateAnnotation,
		fmt.Sprintf("duplicate @%s annotation for constructor", name), node).
		WithNoteAt(fmt.Sprintf("previous @%s", name), prev).
		Build())
}

// singleArg returns the only argument of an annotation, nil otherwise
func singleArg(ann *ast.Annotation) ast.Expr {
	if len(ann.Args) != 1 {
		return nil
	}
	return ann.Args[0]
}

func isLiteral(e ast.Expr) bool {
	switch e := e.(type) {
	case *ast.NumberLit, *ast.StringLit, *ast.BoolLit:
		return true
	case *ast.ArrayLit:
		for _, elem := range e.Elems {
			if !isLiteral(elem) {
				return false
			}
		}
		return true
	case *ast.UnaryExpr:
		return e.Op == "-" && isLiteral(e.X)
	}
	return false
}

// literalType is the type of a literal expression before any conversion
func literalType(e ast.Expr) *types.Type {
	switch e := e.(type) {
	case *ast.NumberLit:
		return types.RationalType(e.Value)
	case *ast.StringLit:
		return types.StringLiteralType(e.Value)
	case *ast.BoolLit:
		return types.BoolType()
	case *ast.UnaryExpr:
		if inner := literalType(e.X); inner.Kind == types.Rational {
			return types.RationalType(new(big.Int).Neg(inner.Value))
		}
	}
	return types.UnresolvedType()
}
