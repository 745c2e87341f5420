package abi

import (
	"github.com/tliron/commonlog"

	"contractc/internal/ast"
	"contractc/internal/errors"
	"contractc/internal/semantic"
	"contractc/internal/target"
)

var log = commonlog.GetLogger("contractc.abi")

// Method is one externally callable function or constructor of a contract
type Method struct {
	Function int
	// Name is the external name, mangled when the contract exposes
	// several functions of the same name
	Name        string
	Signature   string
	Constructor bool
	Mutability  ast.Mutability
	Selector    []byte
	Params      []Descriptor
	Returns     []Descriptor
	// Accounts is the ordered account list a call must carry, solana only
	Accounts []semantic.AccountRequirement
}

// Interface is the external interface of a contract under the active codec
type Interface struct {
	Contract int
	Name     string
	Codec    target.Codec
	Selector []byte
	Methods  []*Method
}

// Method returns the method with the given external name
func (i *Interface) Method(name string) (*Method, bool) {
	for _, m := range i.Methods {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

type encoder struct {
	ns *semantic.Namespace
	// selectors and mangled names per contract; a function can be exposed
	// under different names by different contracts
	selectors []map[int][]byte
	mangled   []map[int]bool
}

func (e *encoder) add(err errors.CompilerError) {
	e.ns.Diagnostics.Add(err)
}

// Encode assigns mangled names and selectors, verifies that the external
// interface of every contract is unambiguous, and on solana derives the
// accounts of every function. It returns the interface of each contract
// that resolved.
func Encode(ns *semantic.Namespace) []*Interface {
	e := &encoder{
		ns:        ns,
		selectors: make([]map[int][]byte, len(ns.Contracts)),
		mangled:   make([]map[int]bool, len(ns.Contracts)),
	}

	for _, f := range ns.Functions {
		f.MangledName = MangledName(f.Signature)
	}

	for _, c := range ns.Contracts {
		if c.Broken {
			continue
		}
		e.assignSelectors(c)
	}
	for _, c := range ns.Contracts {
		if c.Broken {
			continue
		}
		e.checkSelectors(c.No, e.selectors[c.No], ns.AllFunctions(c.No))
		e.checkPublicSurface(c)
		if !ns.Diagnostics.HasErrors() {
			e.checkUniqueNames(c.No)
		}
		e.checkMangledNames(c.No)
	}

	if ns.Config.IsSolana() && !ns.Diagnostics.HasErrors() {
		e.deriveAccounts()
	}

	var out []*Interface
	for _, c := range ns.Contracts {
		if c.Broken {
			continue
		}
		out = append(out, e.describe(c))
	}
	log.Debugf("encoded %d contract interfaces", len(out))
	return out
}

func (e *encoder) assignSelectors(c *semantic.Contract) {
	c.Selector = Keccak256([]byte(c.Name))[:4]

	mangled := e.mangle(c.No)
	selectors := make(map[int][]byte)
	for _, no := range e.ns.AllFunctions(c.No) {
		sel := e.selector(no, mangled[no])
		selectors[no] = sel

		// the declaring contract decides the selector recorded on the
		// function itself
		if f := e.ns.Functions[no]; f.Contract == c.No && f.SelectorDecl == nil {
			f.Selector = sel
		}
	}
	e.selectors[c.No] = selectors
	e.mangled[c.No] = mangled
}

func (e *encoder) describe(c *semantic.Contract) *Interface {
	codec := e.ns.Config.Target.Codec()
	iface := &Interface{
		Contract: c.No,
		Name:     c.Name,
		Codec:    codec,
		Selector: c.Selector,
	}
	for _, no := range callable(e.ns, c.No) {
		f := e.ns.Functions[no]
		name := f.Name
		if e.mangled[c.No][no] {
			name = f.MangledName
		}
		m := &Method{
			Function:    no,
			Name:        name,
			Signature:   f.Signature,
			Constructor: f.IsConstructor(),
			Mutability:  f.Mutability,
			Selector:    e.selectors[c.No][no],
			Params:      describeParams(f.Params, codec, e.ns.Config),
			Returns:     describeParams(f.Returns, codec, e.ns.Config),
		}
		if e.ns.Config.IsSolana() {
			m.Accounts = f.Accounts.List()
		}
		iface.Methods = append(iface.Methods, m)
	}
	return iface
}
