package semantic

import "contractc/internal/ast"

// Built-in accounts the runtime or client tooling provides by name
const (
	ClockAccount           = "clock"
	SystemAccount          = "systemProgram"
	AssociatedTokenProgram = "associatedTokenProgram"
	RentAccount            = "rent"
	TokenProgramAccount    = "tokenProgram"
	DataAccount            = "dataAccount"
	InstructionAccount     = "SysvarInstruction"
)

var builtinAccounts = map[string]bool{
	ClockAccount:           true,
	SystemAccount:          true,
	AssociatedTokenProgram: true,
	RentAccount:            true,
	TokenProgramAccount:    true,
	DataAccount:            true,
	InstructionAccount:     true,
}

// IsBuiltinAccount reports whether name is reserved for a runtime account
func IsBuiltinAccount(name string) bool {
	return builtinAccounts[name]
}

// AccountSource records where an account requirement came from
type AccountSource int

const (
	// AccountDeclared comes from an annotation written by the author
	AccountDeclared AccountSource = iota
	// AccountInferred was collected from a callee or from the body
	AccountInferred
)

// AccountRequirement is an account a call to a function must carry
type AccountRequirement struct {
	Name     string
	Signer   bool
	Writable bool
	Source   AccountSource
	// Decl is the annotation or call that introduced the account; nil for
	// accounts the compiler adds on its own
	Decl ast.Node
}

// Generated reports whether the compiler added the account
func (a AccountRequirement) Generated() bool {
	return a.Source == AccountInferred
}

// AccountSet is an insertion ordered set of accounts keyed by name
type AccountSet struct {
	order []string
	byKey map[string]*AccountRequirement
}

func NewAccountSet() *AccountSet {
	return &AccountSet{byKey: make(map[string]*AccountRequirement)}
}

// Get returns the account with the given name
func (s *AccountSet) Get(name string) (*AccountRequirement, bool) {
	a, ok := s.byKey[name]
	return a, ok
}

// Insert adds an account, or merges the signer and writable flags into an
// existing one. It reports whether the account is new.
func (s *AccountSet) Insert(acc AccountRequirement) bool {
	if existing, ok := s.byKey[acc.Name]; ok {
		existing.Signer = existing.Signer || acc.Signer
		existing.Writable = existing.Writable || acc.Writable
		return false
	}
	a := acc
	s.byKey[acc.Name] = &a
	s.order = append(s.order, acc.Name)
	return true
}

// MoveToFront places the named account first
func (s *AccountSet) MoveToFront(name string) {
	for i, n := range s.order {
		if n != name {
			continue
		}
		copy(s.order[1:i+1], s.order[:i])
		s.order[0] = name
		return
	}
}

// Len returns the number of accounts
func (s *AccountSet) Len() int {
	return len(s.order)
}

// List returns the accounts in order
func (s *AccountSet) List() []AccountRequirement {
	out := make([]AccountRequirement, len(s.order))
	for i, n := range s.order {
		out[i] = *s.byKey[n]
	}
	return out
}

// Names returns the account names in order
func (s *AccountSet) Names() []string {
	return append([]string(nil), s.order...)
}

// Clone returns an independent copy
func (s *AccountSet) Clone() *AccountSet {
	c := NewAccountSet()
	for _, a := range s.List() {
		c.Insert(a)
	}
	return c
}
