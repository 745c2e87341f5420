package abi

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/sha3"

	"contractc/internal/ast"
	"contractc/internal/errors"
	"contractc/internal/target"
)

// Discriminator is the anchor style instruction discriminator: the first
// bytes of sha256("<namespace>:<name>")
func Discriminator(namespace, name string, length int) []byte {
	sum := sha256.Sum256([]byte(namespace + ":" + name))
	return bytes.Clone(sum[:min(length, len(sum))])
}

// Keccak256 hashes data with the legacy keccak padding used by ethereum
func Keccak256(data []byte) []byte {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return h.Sum(nil)
}

// ContractSelector identifies a contract inside a solana program bundle:
// the first four bytes of keccak256 of its name, read little endian
func ContractSelector(name string) uint32 {
	return binary.LittleEndian.Uint32(Keccak256([]byte(name))[:4])
}

// selector computes the discriminator of function no as exposed by
// contractNo. mangled is set when the function carries its mangled name in
// that contract.
func (e *encoder) selector(no int, mangled bool) []byte {
	f := e.ns.Functions[no]
	if f.SelectorDecl != nil {
		return f.Selector
	}
	length := e.ns.Config.SelectorLength
	if e.ns.Config.Target == target.Solana {
		switch {
		case f.IsConstructor():
			return Discriminator("global", "new", length)
		case mangled:
			return Discriminator("global", f.MangledName, length)
		default:
			return Discriminator("global", f.Name, length)
		}
	}
	return Keccak256([]byte(f.Signature))[:min(length, 32)]
}

// checkSelectors verifies the length of every selector a contract exposes
// and that no two public functions share one
func (e *encoder) checkSelectors(contractNo int, selectors map[int][]byte, order []int) {
	c := e.ns.Contracts[contractNo]
	want := e.ns.Config.SelectorLength
	seen := make(map[string]int)

	for _, no := range order {
		f := e.ns.Functions[no]
		sel := selectors[no]

		if c.Kind == ast.KindContract && len(sel) != want {
			var node ast.Node = f.Prototype()
			if f.SelectorDecl != nil {
				node = f.SelectorDecl
			}
			e.add(errors.At(errors.ErrorSelectorLength,
				fmt.Sprintf("function '%s' selector must be %d bytes rather than %d bytes", f.Name, want, len(sel)),
				node).Build())
		}

		if !f.IsPublic() {
			continue
		}
		other, ok := seen[string(sel)]
		if !ok {
			seen[string(sel)] = no
			continue
		}
		o := e.ns.Functions[other]
		if o.Signature == f.Signature || f.IsConstructor() {
			continue
		}
		e.add(errors.At(errors.ErrorSelectorCollision,
			fmt.Sprintf("%s '%s' selector is the same as %s '%s'", f.KindName(), f.Name, o.KindName(), o.Name),
			f.Prototype()).
			WithNoteAt(fmt.Sprintf("definition of %s '%s'", o.KindName(), o.Name), o.Prototype()).
			Build())
	}
}
