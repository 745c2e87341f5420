package semantic

import (
	"github.com/tliron/commonlog"

	"contractc/internal/ast"
	"contractc/internal/errors"
	"contractc/internal/target"
)

var log = commonlog.GetLogger("contractc.semantic")

// Analyzer resolves a parsed source unit into a Namespace. Phases run in a
// fixed order; each phase records diagnostics and leaves placeholders behind
// so that later phases can keep going.
type Analyzer struct {
	ns     *Namespace
	unit   *ast.SourceUnit
	global *SymbolTable
	// scopes holds the symbol table of each contract, indexed by contract number
	scopes []*SymbolTable
	// bodyErrors is set when any function body failed to resolve
	bodyErrors bool
}

func NewAnalyzer(cfg target.Config, sink *errors.Sink) *Analyzer {
	return &Analyzer{
		ns:     NewNamespace(cfg, sink),
		global: NewSymbolTable(nil),
	}
}

// Resolve runs every semantic phase over unit and returns the namespace.
// Diagnostics are recorded in sink; the namespace is always returned so that
// tooling can inspect partial results.
func Resolve(unit *ast.SourceUnit, cfg target.Config, sink *errors.Sink) *Namespace {
	a := NewAnalyzer(cfg, sink)
	return a.Analyze(unit)
}

func (a *Analyzer) Analyze(unit *ast.SourceUnit) *Namespace {
	a.unit = unit
	log.Debugf("resolving %d contracts for %s", len(unit.Contracts), a.ns.Config.Target)

	// Pass 1: contract names and the base graph, so that every later phase can
	// refer to any contract regardless of declaration order
	a.declareContracts()
	a.resolveBases()
	a.linearize()

	// Pass 2: declarations. Structs come first since variables and
	// prototypes refer to them
	a.resolveStructs()
	for no := range a.ns.Contracts {
		a.resolveDeclarations(no)
	}

	// Pass 3: inheritance, one topological level at a time
	a.checkInheritance()

	// Pass 4: initializers, base arguments and bodies
	a.resolveBodies()
	if !a.bodyErrors {
		for no := range a.ns.Contracts {
			a.checkBaseArgs(no)
		}
	}

	a.checkMutability()
	a.checkUnusedStorage()

	log.Debugf("resolution finished with %d diagnostics", a.ns.Diagnostics.Len())
	return a.ns
}

// Scope returns the symbol table of a contract
func (a *Analyzer) Scope(contractNo int) *SymbolTable {
	return a.scopes[contractNo]
}

func (a *Analyzer) addError(err errors.CompilerError) {
	a.ns.addError(err)
}

func (a *Analyzer) errorAt(code, message string, node ast.Node) {
	a.addError(errors.At(code, message, node).Build())
}
