package abi

import (
	"fmt"

	"github.com/btcsuite/btcutil/base58"

	"contractc/internal/ast"
	"contractc/internal/errors"
	"contractc/internal/semantic"
)

// wellKnownPrograms maps program ids that client tooling fills in by itself
// to the account name it expects
var wellKnownPrograms = map[string]string{
	string(make([]byte, 32)): semantic.SystemAccount,
	string(base58.Decode("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")): semantic.AssociatedTokenProgram,
	string(base58.Decode("SysvarRent111111111111111111111111111111111")):  semantic.RentAccount,
	string(base58.Decode("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")):  semantic.TokenProgramAccount,
	string(base58.Decode("SysvarC1ock11111111111111111111111111111111")):  semantic.ClockAccount,
}

// WellKnownAccount returns the account name of a well known program id
func WellKnownAccount(id []byte) (string, bool) {
	name, ok := wellKnownPrograms[string(id)]
	return name, ok
}

// deriver collects the accounts every function needs on solana. Accounts
// flow from callees to callers, so collection repeats over all functions
// until a pass adds nothing.
type deriver struct {
	e *encoder
	// reported suppresses the diagnostics of later passes over the same
	// call site
	reported map[reportKey]bool
}

type reportKey struct {
	node    ast.Node
	message string
}

func (e *encoder) deriveAccounts() {
	d := &deriver{e: e, reported: make(map[reportKey]bool)}
	ns := e.ns

	for _, f := range ns.Functions {
		d.seed(f)
	}

	passes := 0
	for {
		passes++
		changed := false
		for _, f := range ns.Functions {
			if d.collect(f) {
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	log.Debugf("account collection converged after %d passes", passes)

	for _, f := range ns.Functions {
		f.Accounts.MoveToFront(semantic.DataAccount)
	}
}

func generated(name string, signer, writable bool, decl ast.Node) semantic.AccountRequirement {
	return semantic.AccountRequirement{
		Name:     name,
		Signer:   signer,
		Writable: writable,
		Source:   semantic.AccountInferred,
		Decl:     decl,
	}
}

// merge inserts acc into set and reports whether the set changed
func merge(set *semantic.AccountSet, acc semantic.AccountRequirement) bool {
	prev, ok := set.Get(acc.Name)
	if !ok {
		set.Insert(acc)
		return true
	}
	changed := (acc.Signer && !prev.Signer) || (acc.Writable && !prev.Writable)
	set.Insert(acc)
	return changed
}

// seed adds the accounts a function needs by itself: its data account,
// the system program for a paying constructor, and the sysvars its body
// reads
func (d *deriver) seed(f *semantic.Function) {
	library := d.e.ns.Contracts[f.Contract].Kind == ast.KindLibrary
	if !library && (f.IsPublic() || f.DataAccount != semantic.DataAccountNone) {
		writable := f.IsConstructor() || f.DataAccount&semantic.DataAccountWrite != 0
		signer := f.IsConstructor() && !f.Constructor.HasSeed()
		merge(f.Accounts, generated(semantic.DataAccount, signer, writable, nil))
		f.Accounts.MoveToFront(semantic.DataAccount)
	}
	if f.IsConstructor() && f.Constructor.HasPayer() {
		merge(f.Accounts, generated(semantic.SystemAccount, false, false, nil))
	}
	if f.UsesClock {
		merge(f.Accounts, generated(semantic.ClockAccount, false, false, nil))
	}
	if f.UsesSystem {
		merge(f.Accounts, generated(semantic.SystemAccount, false, false, nil))
	}
}

// collect pulls the accounts of every callee of f into f
func (d *deriver) collect(f *semantic.Function) bool {
	ns := d.e.ns
	changed := false
	add := func(acc semantic.AccountRequirement) {
		if merge(f.Accounts, acc) {
			changed = true
		}
	}

	for _, site := range f.Calls {
		callee := ns.Contracts[site.Contract]

		switch site.Kind {
		case semantic.InternalCall, semantic.LibraryCall:
			if site.Function < 0 {
				continue
			}
			for _, acc := range ns.Functions[site.Function].Accounts.List() {
				if prev, ok := f.Accounts.Get(acc.Name); ok && prev.Source == semantic.AccountDeclared {
					continue
				}
				acc.Source = semantic.AccountInferred
				add(acc)
			}

		case semantic.ExternalCall:
			add(generated(semantic.SystemAccount, false, false, nil))
			if site.ImplicitProgramID {
				add(programAccount(callee))
			}
			if site.Inferred() && site.Function >= 0 {
				if d.transfer(f, site, ns.Functions[site.Function]) {
					changed = true
				}
			}

		case semantic.ConstructorCall:
			if site.ImplicitProgramID {
				add(programAccount(callee))
			}
			if site.Inferred() {
				if site.Function >= 0 {
					if d.transfer(f, site, ns.Functions[site.Function]) {
						changed = true
					}
				} else if d.calleeData(f, site, generated(semantic.DataAccount, false, true, nil)) {
					changed = true
				}
			}
			add(generated(semantic.SystemAccount, false, false, nil))
		}
	}
	return changed
}

// programAccount names the account carrying the program id of a callee
func programAccount(c *semantic.Contract) semantic.AccountRequirement {
	if name, ok := WellKnownAccount(c.ProgramID); ok {
		return generated(name, false, false, nil)
	}
	return generated(c.Name+"_programId", false, false, nil)
}

// transfer copies the accounts of an external callee into the caller. The
// callee's data account is renamed after the callee contract.
func (d *deriver) transfer(f *semantic.Function, site *semantic.CallSite, callee *semantic.Function) bool {
	changed := false
	for _, acc := range callee.Accounts.List() {
		if acc.Name == semantic.DataAccount {
			if d.calleeData(f, site, acc) {
				changed = true
			}
			continue
		}

		if prev, ok := f.Accounts.Get(acc.Name); ok && prev.Source == semantic.AccountDeclared {
			builder := errors.At(errors.ErrorAccountCollision,
				"account name collision encountered. Calling a function that requires an account whose name is also defined in the current function will create duplicate names in the IDL. Please, rename one of the accounts",
				prev.Decl)
			if acc.Decl != nil {
				builder.WithNoteAt("other declaration", acc.Decl)
			}
			d.report(prev.Decl, builder.Build())
		}
		acc.Source = semantic.AccountInferred
		if merge(f.Accounts, acc) {
			changed = true
		}
	}
	return changed
}

// calleeData adds the data account of the contract called at site. A second
// call site needing the same data account cannot be served by one inferred
// account list.
func (d *deriver) calleeData(f *semantic.Function, site *semantic.CallSite, acc semantic.AccountRequirement) bool {
	name := d.e.ns.Contracts[site.Contract].Name
	idl := name + "_dataAccount"

	if prev, ok := f.Accounts.Get(idl); ok {
		if prev.Decl != ast.Node(site.Node) {
			builder := errors.At(errors.ErrorAmbiguousAccounts,
				fmt.Sprintf("contract '%s' is called more than once in this function, so automatic account collection cannot happen. Please, provide the necessary accounts using the {accounts:..} call argument", name),
				site.Node)
			if prev.Decl != nil {
				builder.WithNoteAt("other call", prev.Decl)
			}
			d.report(site.Node, builder.Build())
		}
		return false
	}

	acc.Name = idl
	acc.Source = semantic.AccountInferred
	acc.Decl = site.Node
	return merge(f.Accounts, acc)
}

func (d *deriver) report(node ast.Node, err errors.CompilerError) {
	key := reportKey{node: node, message: err.Message}
	if d.reported[key] {
		return
	}
	d.reported[key] = true
	d.e.add(err)
}
