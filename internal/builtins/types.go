package builtins

import (
	"strconv"
	"strings"
)

// ElementaryKind is the family of a built-in type keyword
type ElementaryKind int

const (
	Bool ElementaryKind = iota
	Uint
	Int
	Address
	FixedBytes
	Bytes
	String
)

// Elementary describes a built-in type keyword such as uint64 or bytes32
type Elementary struct {
	Kind ElementaryKind
	Bits int // integer width; byte count for FixedBytes
}

// LookupType resolves an elementary type keyword
func LookupType(name string) (Elementary, bool) {
	switch name {
	case "bool":
		return Elementary{Kind: Bool}, true
	case "address":
		return Elementary{Kind: Address}, true
	case "string":
		return Elementary{Kind: String}, true
	case "bytes":
		return Elementary{Kind: Bytes}, true
	case "byte":
		return Elementary{Kind: FixedBytes, Bits: 1}, true
	case "uint":
		return Elementary{Kind: Uint, Bits: 256}, true
	case "int":
		return Elementary{Kind: Int, Bits: 256}, true
	}

	if rest, ok := strings.CutPrefix(name, "uint"); ok {
		if bits, ok := intWidth(rest); ok {
			return Elementary{Kind: Uint, Bits: bits}, true
		}
		return Elementary{}, false
	}
	if rest, ok := strings.CutPrefix(name, "int"); ok {
		if bits, ok := intWidth(rest); ok {
			return Elementary{Kind: Int, Bits: bits}, true
		}
		return Elementary{}, false
	}
	if rest, ok := strings.CutPrefix(name, "bytes"); ok {
		n, err := strconv.Atoi(rest)
		if err == nil && n >= 1 && n <= 32 && rest[0] != '0' {
			return Elementary{Kind: FixedBytes, Bits: n}, true
		}
	}
	return Elementary{}, false
}

// IsElementaryType checks if a name is a built-in type keyword
func IsElementaryType(name string) bool {
	_, ok := LookupType(name)
	return ok
}

func intWidth(s string) (int, bool) {
	if s == "" || s[0] == '0' {
		return 0, false
	}
	bits, err := strconv.Atoi(s)
	if err != nil || bits < 8 || bits > 256 || bits%8 != 0 {
		return 0, false
	}
	return bits, true
}
