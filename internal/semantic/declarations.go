package semantic

import (
	"fmt"
	"strings"

	"contractc/internal/ast"
	"contractc/internal/builtins"
	"contractc/internal/errors"
	"contractc/internal/target"
	"contractc/internal/types"
)

// AccountMetaName is the built-in struct passed in the 'accounts' call option
const AccountMetaName = "AccountMeta"

// declareSymbol adds a contract level name. Functions may be overloaded;
// any other redeclaration in the same contract is an error, while shadowing
// a contract name is a warning. Clashes with inherited names are checked
// with the inheritance rules.
func (a *Analyzer) declareSymbol(contractNo int, name *ast.Ident, kind SymbolKind, node ast.Node) *Symbol {
	scope := a.scopes[contractNo]

	if prev := scope.LookupLocal(name.Value); prev != nil {
		if prev.Kind == SymbolFunction && kind == SymbolFunction {
			return prev
		}
		builder := errors.At(errors.ErrorDuplicateDeclaration,
			fmt.Sprintf("%s is already defined as %s", name.Value, prev.Kind.describe()), name)
		if prev.Kind == SymbolFunction {
			for _, fn := range prev.Functions {
				builder.WithNoteAt("location of previous definition", a.ns.Functions[fn].Prototype())
			}
		} else {
			builder.WithNote("location of previous definition", prev.Position, prev.Node.NodeEndPos())
		}
		a.addError(builder.Build())
		return nil
	}

	if prev := a.global.LookupLocal(name.Value); prev != nil {
		a.addError(errors.WarnAt(errors.WarningShadowedType,
			fmt.Sprintf("%s is already defined as %s", name.Value, prev.Kind.describe()), name).
			WithNote("location of previous definition", prev.Position, prev.Node.NodeEndPos()).
			Build())
	}
	if _, ok := builtins.LookupFunction(name.Value); ok || builtins.IsBuiltinObject(name.Value) {
		a.addError(errors.WarnAt(errors.WarningShadowedType,
			fmt.Sprintf("'%s' shadows name of a builtin", name.Value), name).Build())
	}

	return scope.Define(name.Value, kind, node, name.Pos)
}

// inheritedSymbol looks a name up in the bases of a contract, most derived
// first. Private variables and functions are not inherited.
func (a *Analyzer) inheritedSymbol(contractNo int, name string) *Symbol {
	lin := a.ns.Contracts[contractNo].Linearized
	for i := len(lin) - 1; i >= 0; i-- {
		if lin[i] == contractNo {
			continue
		}
		sym := a.scopes[lin[i]].LookupLocal(name)
		if sym == nil {
			continue
		}
		if sym.Kind == SymbolVariable && sym.Variable.Visibility == ast.Private {
			continue
		}
		return sym
	}
	return nil
}

// lookup resolves a name from inside a contract: own declarations first,
// then inherited ones, then contract names
func (a *Analyzer) lookup(contractNo int, name string) *Symbol {
	if sym := a.scopes[contractNo].LookupLocal(name); sym != nil {
		return sym
	}
	if sym := a.inheritedSymbol(contractNo, name); sym != nil {
		return sym
	}
	return a.global.LookupLocal(name)
}

// resolveStructs declares every struct before resolving any field, so that
// structs may refer to structs declared later
func (a *Analyzer) resolveStructs() {
	if a.ns.Config.IsSolana() {
		def := &types.StructDef{
			No:   len(a.ns.Structs),
			Name: AccountMetaName,
			Fields: []types.Field{
				{Name: "pubkey", Type: types.AddressType()},
				{Name: "is_writable", Type: types.BoolType()},
				{Name: "is_signer", Type: types.BoolType()},
			},
		}
		a.ns.Structs = append(a.ns.Structs, def)
		sym := a.global.DefineWithType(AccountMetaName, SymbolStruct, &ast.Ident{Value: AccountMetaName}, ast.Position{}, types.StructType(def))
		sym.Struct = def
	}

	type pending struct {
		contract int
		decl     *ast.Struct
		def      *types.StructDef
	}
	var all []pending

	for _, c := range a.ns.Contracts {
		for _, decl := range c.Decl.Structs {
			sym := a.declareSymbol(c.No, &decl.Name, SymbolStruct, decl)
			if sym == nil {
				continue
			}
			def := &types.StructDef{No: len(a.ns.Structs), Name: decl.Name.Value}
			a.ns.Structs = append(a.ns.Structs, def)
			c.Structs = append(c.Structs, def)
			sym.Struct = def
			sym.Type = types.StructType(def)
			all = append(all, pending{contract: c.No, decl: decl, def: def})
		}
	}

	for _, p := range all {
		seen := make(map[string]*ast.Param)
		for _, field := range p.decl.Fields {
			if field.Name == nil {
				a.errorAt(errors.ErrorInvalidDeclaration, "struct field has no name", field)
				continue
			}
			if prev, ok := seen[field.Name.Value]; ok {
				a.addError(errors.DuplicateDeclaration(
					fmt.Sprintf("struct '%s' has duplicate struct field '%s'", p.def.Name, field.Name.Value),
					field.Name, prev.Name))
				continue
			}
			seen[field.Name.Value] = field
			p.def.Fields = append(p.def.Fields, types.Field{
				Name: field.Name.Value,
				Type: a.resolveType(p.contract, field.Type),
			})
		}
		if len(p.def.Fields) == 0 && len(p.decl.Fields) == 0 {
			a.errorAt(errors.ErrorInvalidDeclaration,
				fmt.Sprintf("struct definition for '%s' has no fields", p.def.Name), &p.decl.Name)
		}
	}

	// a struct that contains itself has no finite layout; break the cycle
	// so that size computations terminate
	for _, p := range all {
		for i, field := range p.def.Fields {
			if structReaches(field.Type, p.def, make(map[int]bool)) {
				a.errorAt(errors.ErrorInvalidType,
					fmt.Sprintf("struct '%s' has infinite size", p.def.Name), p.decl.Fields[i])
				p.def.Fields[i].Type = types.UnresolvedType()
			}
		}
	}
}

func structReaches(t *types.Type, target *types.StructDef, visited map[int]bool) bool {
	switch t.Kind {
	case types.Struct:
		if t.Struct == target {
			return true
		}
		if visited[t.Struct.No] {
			return false
		}
		visited[t.Struct.No] = true
		for _, f := range t.Struct.Fields {
			if structReaches(f.Type, target, visited) {
				return true
			}
		}
	case types.Array, types.Mapping:
		return structReaches(t.Elem, target, visited)
	}
	return false
}

// resolveType converts a type expression. Failures are reported and yield
// the unresolved placeholder, which converts to and from anything.
func (a *Analyzer) resolveType(contractNo int, te *ast.TypeExpr) *types.Type {
	if te == nil {
		return types.UnresolvedType()
	}

	var ty *types.Type
	if te.IsMapping() {
		key := a.resolveType(contractNo, te.Key)
		value := a.resolveType(contractNo, te.Value)
		if key.IsReference() {
			a.errorAt(errors.ErrorInvalidType,
				fmt.Sprintf("key of mapping cannot be reference type '%s'", key), te.Key)
			key = types.UnresolvedType()
		}
		ty = types.MappingType(key, value)
	} else {
		name := te.Name.Value
		if elem, ok := types.Lookup(name); ok {
			ty = elem
		} else if sym := a.lookup(contractNo, name); sym != nil && (sym.Kind == SymbolStruct || sym.Kind == SymbolContract) {
			ty = sym.Type
		} else {
			var candidates []string
			for _, s := range a.ns.Structs {
				candidates = append(candidates, s.Name)
			}
			candidates = append(candidates, a.ns.contractNames()...)
			a.addError(errors.UndefinedName(name, &te.Name, candidates))
			return types.UnresolvedType()
		}
	}

	for _, dim := range te.Dims {
		if dim.Fixed && dim.Size == 0 {
			a.errorAt(errors.ErrorInvalidType, "zero size array not permitted", te)
		}
		ty = types.ArrayType(ty, dim.Fixed, dim.Size)
	}
	return ty
}

// resolveDeclarations resolves the variables, function prototypes and
// contract annotations of one contract
func (a *Analyzer) resolveDeclarations(contractNo int) {
	c := a.ns.Contracts[contractNo]
	log.Debugf("found %s '%s'", c.Kind, c.Name)

	a.contractAnnotations(c)

	for _, decl := range c.Decl.Variables {
		a.resolveVariable(c, decl)
	}

	var noBody []int
	for _, decl := range c.Decl.Functions {
		fn := a.resolvePrototype(c, decl)
		if fn != nil && !fn.HasBody {
			noBody = append(noBody, fn.No)
		}
	}

	if c.Kind == ast.KindContract && len(noBody) > 0 {
		builder := errors.At(errors.ErrorMissingImplementation,
			fmt.Sprintf("contract should be marked 'abstract contract' since it has %d functions with no body", len(noBody)),
			&c.Decl.Name)
		for _, no := range noBody {
			fn := a.ns.Functions[no]
			builder.WithNoteAt(fmt.Sprintf("location of function '%s' with no body", fn.Name), fn.Prototype())
		}
		a.addError(builder.Build())
	}
}

func (a *Analyzer) resolveVariable(c *Contract, decl *ast.Variable) {
	ty := a.resolveType(c.No, decl.Type)

	switch {
	case c.Kind == ast.KindInterface:
		a.errorAt(errors.ErrorInvalidDeclaration,
			fmt.Sprintf("%s '%s' is not allowed to have contract variable '%s'", c.Kind, c.Name, decl.Name.Value), decl)
		return
	case c.Kind == ast.KindLibrary && !decl.Constant:
		a.errorAt(errors.ErrorInvalidDeclaration, "library variables must be constant", decl)
		return
	}

	visibility := decl.Visibility
	switch visibility {
	case ast.VisDefault:
		visibility = ast.Internal
	case ast.External:
		a.errorAt(errors.ErrorInvalidDeclaration,
			fmt.Sprintf("variable '%s' cannot be declared external", decl.Name.Value), decl)
		visibility = ast.Internal
	}

	if decl.Constant {
		if decl.Init == nil {
			a.errorAt(errors.ErrorInvalidDeclaration, "missing initializer for constant", decl)
		}
		if ty.ContainsMapping() {
			a.errorAt(errors.ErrorInvalidType,
				fmt.Sprintf("constant '%s' cannot be of type '%s'", decl.Name.Value, ty), decl.Type)
		}
	}

	v := &Variable{
		Name:       decl.Name.Value,
		Type:       ty,
		Visibility: visibility,
		Constant:   decl.Constant,
		Immutable:  decl.Immutable,
		Decl:       decl,
		Contract:   c.No,
	}

	sym := a.declareSymbol(c.No, &decl.Name, SymbolVariable, decl)
	if sym == nil {
		return
	}
	sym.Variable = v
	sym.Type = ty
	c.Variables = append(c.Variables, v)
}

// resolvePrototype resolves a function or constructor header and checks the
// rules that depend only on the header and the contract kind
func (a *Analyzer) resolvePrototype(c *Contract, decl *ast.Function) *Function {
	fn := &Function{
		Contract:   c.No,
		Name:       decl.Name.Value,
		Kind:       decl.Kind,
		Decl:       decl,
		Visibility: decl.Visibility,
		Mutability: decl.Mutability,
		Virtual:    decl.Virtual,
		IsOverride: decl.Override != nil,
		HasBody:    decl.Body != nil,
		Accounts:   NewAccountSet(),
		Types:      make(map[ast.Expr]*types.Type),
	}
	if fn.IsConstructor() {
		fn.Name = "new"
	}
	proto := &ast.Ident{Pos: decl.ProtoPos, EndPos: decl.ProtoEnd, Value: fn.Name}

	ok := true
	if fn.Visibility == ast.VisDefault {
		if !fn.IsConstructor() {
			a.errorAt(errors.ErrorInvalidDeclaration, "no visibility specified", proto)
			ok = false
		}
		fn.Visibility = ast.Public
	}

	fn.Params = a.resolveParams(c.No, decl.Params)
	fn.Returns = a.resolveParams(c.No, decl.Returns)
	if fn.IsPublic() {
		for _, p := range append(append([]*Param{}, fn.Params...), fn.Returns...) {
			if p.Type.ContainsMapping() {
				a.errorAt(errors.ErrorInvalidType,
					fmt.Sprintf("parameter of type '%s' not allowed in public or external functions", p.Type), p.Decl)
				ok = false
			}
		}
	}

	if fn.IsConstructor() {
		ok = a.checkConstructor(c, fn, proto) && ok
	} else {
		ok = a.checkFunctionKind(c, fn, proto) && ok
	}
	if !ok && (c.Kind == ast.KindInterface || c.Kind == ast.KindLibrary) && fn.IsConstructor() {
		return nil
	}

	if decl.Override != nil {
		fn.Overrides = a.resolveOverrideList(c, decl.Override)
	}

	fn.Signature = signature(fn.Name, fn.ParamTypes())

	for _, no := range c.Functions {
		other := a.ns.Functions[no]
		if other.IsConstructor() == fn.IsConstructor() && other.Signature == fn.Signature {
			// reported as overriding within the same contract
			if fn.IsOverride && other.IsOverride {
				continue
			}
			message := fmt.Sprintf("overloaded %s with this signature already exist", fn.KindName())
			if fn.IsConstructor() {
				message = "constructor with this signature already exists"
			}
			a.addError(errors.At(errors.ErrorDuplicateSignature, message, proto).
				WithNoteAt("location of previous definition", other.Prototype()).
				Build())
			return nil
		}
	}

	fn.No = len(a.ns.Functions)
	a.ns.Functions = append(a.ns.Functions, fn)
	c.Functions = append(c.Functions, fn.No)

	if !fn.IsConstructor() {
		if sym := a.declareSymbol(c.No, &decl.Name, SymbolFunction, decl); sym != nil {
			sym.Functions = append(sym.Functions, fn.No)
		}
	}

	a.prototypeAnnotations(c, fn)
	return fn
}

func (a *Analyzer) resolveParams(contractNo int, params []*ast.Param) []*Param {
	out := make([]*Param, len(params))
	for i, p := range params {
		param := &Param{
			Type:       a.resolveType(contractNo, p.Type),
			Decl:       p,
			Annotation: p.Annotation,
		}
		if p.Name != nil {
			param.Name = p.Name.Value
		}
		out[i] = param
	}
	return out
}

func (a *Analyzer) checkConstructor(c *Contract, fn *Function, proto ast.Node) bool {
	switch c.Kind {
	case ast.KindInterface:
		a.errorAt(errors.ErrorInvalidConstructor, "constructor not allowed in an interface", proto)
		return false
	case ast.KindLibrary:
		a.errorAt(errors.ErrorInvalidConstructor, "constructor not allowed in a library", proto)
		return false
	}

	ok := true
	if fn.Virtual {
		a.errorAt(errors.ErrorInvalidConstructor, "constructors cannot be declared 'virtual'", proto)
		ok = false
	}
	if fn.IsOverride {
		a.errorAt(errors.ErrorInvalidConstructor, "constructors cannot be declared 'override'", fn.Decl.Override)
		ok = false
	}
	switch fn.Mutability {
	case ast.Pure, ast.View:
		a.errorAt(errors.ErrorInvalidConstructor,
			fmt.Sprintf("constructor cannot be declared %s", fn.Mutability), proto)
		ok = false
	}
	if len(fn.Returns) > 0 {
		a.errorAt(errors.ErrorInvalidConstructor, "constructor cannot have return values", fn.Returns[0].Decl)
		ok = false
	}

	for _, no := range a.ns.Constructors(c.No) {
		prev := a.ns.Functions[no]
		if a.ns.Config.Target == target.EVM {
			a.addError(errors.At(errors.ErrorInvalidConstructor, "constructor already defined", proto).
				WithNoteAt("location of previous definition", prev.Prototype()).
				Build())
			return false
		}
		if (prev.Mutability == ast.Payable) != (fn.Mutability == ast.Payable) {
			a.addError(errors.At(errors.ErrorInvalidConstructor,
				"all constructors should be defined 'payable' or not", proto).
				WithNoteAt("location of previous definition", prev.Prototype()).
				Build())
			ok = false
			break
		}
	}
	return ok
}

func (a *Analyzer) checkFunctionKind(c *Contract, fn *Function, proto ast.Node) bool {
	ok := true
	switch c.Kind {
	case ast.KindInterface:
		if fn.HasBody {
			a.errorAt(errors.ErrorInvalidDeclaration, "function in an interface cannot have a body", proto)
			ok = false
		}
		if fn.Visibility != ast.External {
			a.errorAt(errors.ErrorInvalidDeclaration, "functions must be declared 'external' in an interface", proto)
			ok = false
		}
		if fn.Virtual {
			a.addError(errors.WarnAt(errors.WarningMutability,
				"functions in an interface are implicitly virtual", proto).Build())
		}
		fn.Virtual = true
		return ok

	case ast.KindLibrary:
		if !fn.HasBody {
			a.errorAt(errors.ErrorInvalidDeclaration,
				fmt.Sprintf("%s in a library must have a body", fn.KindName()), proto)
			ok = false
		}
		if fn.IsOverride {
			a.errorAt(errors.ErrorInvalidDeclaration,
				fmt.Sprintf("%s in a library cannot override", fn.KindName()), fn.Decl.Override)
			ok = false
		}
		if fn.Mutability == ast.Payable {
			a.errorAt(errors.ErrorInvalidDeclaration,
				fmt.Sprintf("%s in a library cannot be payable", fn.KindName()), proto)
			ok = false
		}
		if fn.Virtual {
			a.errorAt(errors.ErrorInvalidDeclaration, "functions in a library cannot be virtual", proto)
			ok = false
		}
		return ok
	}

	if !fn.HasBody && !fn.Virtual {
		a.errorAt(errors.ErrorInvalidDeclaration,
			"function with no body missing 'virtual'. This was permitted in older versions of the Solidity language, please update.",
			proto)
		ok = false
	}
	if fn.Virtual && fn.Visibility == ast.Private {
		a.errorAt(errors.ErrorInvalidDeclaration, "function marked 'virtual' cannot also be 'private'", proto)
		ok = false
	}
	if fn.Mutability == ast.Payable && (fn.Visibility == ast.Internal || fn.Visibility == ast.Private) {
		a.errorAt(errors.ErrorInvalidDeclaration, "internal or private function cannot be payable", proto)
		ok = false
	}
	return ok
}

// resolveOverrideList resolves the contracts named in override(...)
func (a *Analyzer) resolveOverrideList(c *Contract, spec *ast.OverrideSpec) []int {
	var out []int
	for i := range spec.Bases {
		name := &spec.Bases[i]
		base, ok := a.ns.LookupContract(name.Value)
		if !ok {
			a.addError(errors.UndefinedName(name.Value, name, a.ns.contractNames()))
			continue
		}
		if base.No == c.No || !a.ns.IsBase(c.No, base.No) {
			a.errorAt(errors.ErrorInvalidOverride,
				fmt.Sprintf("override '%s' is not a base contract of '%s'", name.Value, c.Name), name)
			continue
		}
		dup := false
		for _, no := range out {
			if no == base.No {
				a.errorAt(errors.ErrorInvalidOverride, fmt.Sprintf("duplicate override '%s'", name.Value), name)
				dup = true
			}
		}
		if !dup {
			out = append(out, base.No)
		}
	}
	return out
}

// signature renders name(type,...) using external type names
func signature(name string, params []*types.Type) string {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = p.Signature()
	}
	return name + "(" + strings.Join(parts, ",") + ")"
}
