package semantic

import (
	"fmt"

	"contractc/internal/ast"
	"contractc/internal/errors"
)

// allowedAccess is the highest access a function of mutability m may make
func allowedAccess(m ast.Mutability) Access {
	switch m {
	case ast.Pure:
		return AccessNone
	case ast.View:
		return AccessRead
	case ast.Payable:
		return AccessValue
	default:
		return AccessWrite
	}
}

// checkMutability compares the state accesses of every body with the
// declared mutability. It only runs on an error free namespace, since
// accesses under unresolved expressions are incomplete.
func (a *Analyzer) checkMutability() {
	if a.ns.Diagnostics.HasErrors() {
		return
	}
	for _, fn := range a.ns.Functions {
		if fn.HasBody {
			a.checkFunctionMutability(fn)
		}
	}
}

func (a *Analyzer) checkFunctionMutability(fn *Function) {
	allowed := allowedAccess(fn.Mutability)
	highest := AccessNone
	violated := false

	for _, acc := range fn.Accesses {
		highest = max(highest, acc.Level)
		if acc.Level <= allowed {
			continue
		}
		violated = true
		switch acc.Level {
		case AccessRead:
			a.errorAt(errors.ErrorMutabilityViolation,
				fmt.Sprintf("function declared '%s' but this expression reads from state", fn.Mutability), acc.Node)
		case AccessWrite:
			a.errorAt(errors.ErrorMutabilityViolation,
				fmt.Sprintf("function declared '%s' but this expression writes to state", fn.Mutability), acc.Node)
		case AccessValue:
			a.errorAt(errors.ErrorMutabilityViolation,
				"accesses value sent, which is only allowed for payable functions", acc.Node)
		}
	}

	// an override may need to write even when this body does not
	if violated || fn.IsConstructor() || fn.Virtual || fn.IsOverride {
		return
	}

	var message string
	switch {
	case fn.Mutability == ast.Nonpayable && highest == AccessNone:
		message = "function can be declared 'pure'"
	case fn.Mutability == ast.Nonpayable && highest == AccessRead:
		message = "function can be declared 'view'"
	case fn.Mutability == ast.View && highest == AccessNone:
		message = "function declared 'view' can be declared 'pure'"
	default:
		return
	}
	a.addError(errors.WarnAt(errors.WarningMutability, message, fn.Prototype()).Build())
}

// checkUnusedStorage warns about state variables that are never read or
// written anywhere in the unit
func (a *Analyzer) checkUnusedStorage() {
	for _, c := range a.ns.Contracts {
		for _, v := range c.Variables {
			if v.Read || v.Visibility == ast.Public {
				continue
			}
			message := fmt.Sprintf("storage variable '%s' has never been used", v.Name)
			if v.Assigned {
				message = fmt.Sprintf("storage variable '%s' has been assigned, but never read", v.Name)
			}
			a.addError(errors.WarnAt(errors.WarningUnusedStorage, message, &v.Decl.Name).Build())
		}
	}
}
