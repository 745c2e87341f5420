package compiler

import (
	"github.com/tliron/commonlog"

	"contractc/internal/abi"
	"contractc/internal/ast"
	"contractc/internal/errors"
	"contractc/internal/layout"
	"contractc/internal/parser"
	"contractc/internal/semantic"
	"contractc/internal/target"
)

var log = commonlog.GetLogger("contractc.compiler")

// Result is the outcome of one compilation
type Result struct {
	Unit        *ast.SourceUnit
	Namespace   *semantic.Namespace
	Interfaces  []*abi.Interface
	Diagnostics []errors.CompilerError
	// Ok is false when any error was recorded; nothing may be handed to
	// code generation then
	Ok bool
}

// Compile resolves a parsed source unit for the configured target, lays out
// storage and assigns the external interface of every contract
func Compile(unit *ast.SourceUnit, cfg target.Config) *Result {
	return compile(unit, cfg, errors.NewSink())
}

// CompileSource parses and compiles one source file. Syntax errors are
// reported alongside semantic diagnostics of the declarations that parsed.
func CompileSource(filename, source string, cfg target.Config) *Result {
	sink := errors.NewSink()
	unit, parseErrs := parser.ParseSource(filename, source)
	for _, pe := range parseErrs {
		sink.Add(errors.SyntaxError(pe.Message, pe.Position))
	}
	return compile(unit, cfg, sink)
}

func compile(unit *ast.SourceUnit, cfg target.Config, sink *errors.Sink) *Result {
	log.Infof("compiling %s for %s", unit.Path, cfg.Target)

	ns := semantic.Resolve(unit, cfg, sink)
	layout.Plan(ns)
	interfaces := abi.Encode(ns)

	res := &Result{
		Unit:        unit,
		Namespace:   ns,
		Interfaces:  interfaces,
		Diagnostics: sink.Diagnostics(),
		Ok:          !sink.HasErrors(),
	}
	log.Infof("%s: %d errors, %d warnings", unit.Path, len(sink.Errors()), len(sink.Warnings()))
	return res
}

// Contracts returns the concrete contracts ready for code generation, or
// nil when the compilation failed
func (r *Result) Contracts() []*semantic.Contract {
	if !r.Ok {
		return nil
	}
	var out []*semantic.Contract
	for _, c := range r.Namespace.Contracts {
		if c.Kind == ast.KindContract {
			out = append(out, c)
		}
	}
	return out
}

// Interface returns the external interface of the named contract
func (r *Result) Interface(name string) (*abi.Interface, bool) {
	for _, i := range r.Interfaces {
		if i.Name == name {
			return i, true
		}
	}
	return nil, false
}

// Errors returns the error-severity diagnostics
func (r *Result) Errors() []errors.CompilerError {
	var out []errors.CompilerError
	for _, d := range r.Diagnostics {
		if d.IsError() {
			out = append(out, d)
		}
	}
	return out
}
