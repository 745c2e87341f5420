package types

import (
	"fmt"
	"math/big"
	"strings"

	"contractc/internal/builtins"
)

// Kind is the family of a resolved type
type Kind int

const (
	Unresolved Kind = iota
	Void
	Bool
	Uint
	Int
	Address
	FixedBytes
	DynamicBytes
	String
	Array
	Struct
	Contract
	Mapping
	Rational      // number literal, converts to any integer type it fits
	StringLiteral // string literal, converts to string, bytes or bytesN
)

// Type is a resolved type. Types are immutable once built and may be shared.
type Type struct {
	Kind     Kind
	Bits     int          // width of Uint/Int, byte length of FixedBytes
	Elem     *Type        // element of Array, value of Mapping
	Key      *Type        // key of Mapping
	Fixed    bool         // Array has a fixed length
	Len      uint64       // length of a fixed Array
	Struct   *StructDef   // definition of a Struct
	Contract *ContractRef // referenced contract
	Value    *big.Int     // value of a Rational
	Literal  string       // value of a StringLiteral
}

// StructDef is a resolved struct declaration
type StructDef struct {
	No     int
	Name   string
	Fields []Field
}

// Field is one member of a struct
type Field struct {
	Name string
	Type *Type
}

// ContractRef names a contract by its index in the contract table
type ContractRef struct {
	No   int
	Name string
}

var (
	unresolved = &Type{Kind: Unresolved}
	void       = &Type{Kind: Void}
	boolean    = &Type{Kind: Bool}
	address    = &Type{Kind: Address}
	bytesT     = &Type{Kind: DynamicBytes}
	stringT    = &Type{Kind: String}
)

func UnresolvedType() *Type   { return unresolved }
func VoidType() *Type         { return void }
func BoolType() *Type         { return boolean }
func AddressType() *Type      { return address }
func DynamicBytesType() *Type { return bytesT }
func StringType() *Type       { return stringT }

func UintType(bits int) *Type       { return &Type{Kind: Uint, Bits: bits} }
func IntType(bits int) *Type        { return &Type{Kind: Int, Bits: bits} }
func FixedBytesType(n int) *Type    { return &Type{Kind: FixedBytes, Bits: n} }
func RationalType(v *big.Int) *Type { return &Type{Kind: Rational, Value: v} }
func StringLiteralType(s string) *Type {
	return &Type{Kind: StringLiteral, Literal: s}
}

// ArrayType builds a fixed (fixed=true) or dynamic array of elem
func ArrayType(elem *Type, fixed bool, length uint64) *Type {
	return &Type{Kind: Array, Elem: elem, Fixed: fixed, Len: length}
}

// MappingType builds a mapping from key to value
func MappingType(key, value *Type) *Type {
	return &Type{Kind: Mapping, Key: key, Elem: value}
}

// StructType refers to a struct definition
func StructType(def *StructDef) *Type {
	return &Type{Kind: Struct, Struct: def}
}

// ContractType refers to a contract by index
func ContractType(no int, name string) *Type {
	return &Type{Kind: Contract, Contract: &ContractRef{No: no, Name: name}}
}

// FromElementary converts a built-in type keyword to a Type
func FromElementary(e builtins.Elementary) *Type {
	switch e.Kind {
	case builtins.Bool:
		return BoolType()
	case builtins.Uint:
		return UintType(e.Bits)
	case builtins.Int:
		return IntType(e.Bits)
	case builtins.Address:
		return AddressType()
	case builtins.FixedBytes:
		return FixedBytesType(e.Bits)
	case builtins.Bytes:
		return DynamicBytesType()
	default:
		return StringType()
	}
}

// Lookup resolves an elementary type name
func Lookup(name string) (*Type, bool) {
	e, ok := builtins.LookupType(name)
	if !ok {
		return nil, false
	}
	return FromElementary(e), true
}

func (t *Type) String() string {
	switch t.Kind {
	case Unresolved:
		return "unresolved"
	case Void:
		return "void"
	case Bool:
		return "bool"
	case Uint:
		return fmt.Sprintf("uint%d", t.Bits)
	case Int:
		return fmt.Sprintf("int%d", t.Bits)
	case Address:
		return "address"
	case FixedBytes:
		return fmt.Sprintf("bytes%d", t.Bits)
	case DynamicBytes:
		return "bytes"
	case String:
		return "string"
	case Array:
		if t.Fixed {
			return fmt.Sprintf("%s[%d]", t.Elem, t.Len)
		}
		return t.Elem.String() + "[]"
	case Mapping:
		return fmt.Sprintf("mapping(%s => %s)", t.Key, t.Elem)
	case Struct:
		return "struct " + t.Struct.Name
	case Contract:
		return "contract " + t.Contract.Name
	case Rational:
		return "rational constant " + t.Value.String()
	case StringLiteral:
		return fmt.Sprintf("literal string \"%s\"", t.Literal)
	default:
		return "unknown"
	}
}

// Signature renders the type as it appears in an external function signature
func (t *Type) Signature() string {
	switch t.Kind {
	case Contract:
		return "address"
	case Struct:
		var fields []string
		for _, f := range t.Struct.Fields {
			fields = append(fields, f.Type.Signature())
		}
		return "(" + strings.Join(fields, ",") + ")"
	case Array:
		if t.Fixed {
			return fmt.Sprintf("%s[%d]", t.Elem.Signature(), t.Len)
		}
		return t.Elem.Signature() + "[]"
	default:
		return t.String()
	}
}

// Equal reports structural identity
func (t *Type) Equal(o *Type) bool {
	if t == o {
		return true
	}
	if t == nil || o == nil || t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case Uint, Int, FixedBytes:
		return t.Bits == o.Bits
	case Array:
		return t.Fixed == o.Fixed && t.Len == o.Len && t.Elem.Equal(o.Elem)
	case Mapping:
		return t.Key.Equal(o.Key) && t.Elem.Equal(o.Elem)
	case Struct:
		return t.Struct.No == o.Struct.No
	case Contract:
		return t.Contract.No == o.Contract.No
	case Rational:
		return t.Value.Cmp(o.Value) == 0
	case StringLiteral:
		return t.Literal == o.Literal
	default:
		return true
	}
}

// EqualList compares two type lists element-wise
func EqualList(a, b []*Type) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

func (t *Type) IsInteger() bool { return t.Kind == Uint || t.Kind == Int }
func (t *Type) IsNumeric() bool { return t.IsInteger() || t.Kind == Rational }

// IsReference reports whether the type is an array, struct or mapping
func (t *Type) IsReference() bool {
	return t.Kind == Array || t.Kind == Struct || t.Kind == Mapping
}

// IsDynamic reports whether the encoded size depends on the value
func (t *Type) IsDynamic() bool {
	switch t.Kind {
	case String, DynamicBytes, Mapping:
		return true
	case Array:
		return !t.Fixed || t.Elem.IsDynamic()
	case Struct:
		for _, f := range t.Struct.Fields {
			if f.Type.IsDynamic() {
				return true
			}
		}
	}
	return false
}

// ContainsMapping reports whether a mapping is nested anywhere in the type
func (t *Type) ContainsMapping() bool {
	switch t.Kind {
	case Mapping:
		return true
	case Array:
		return t.Elem.ContainsMapping()
	case Struct:
		for _, f := range t.Struct.Fields {
			if f.Type.ContainsMapping() {
				return true
			}
		}
	}
	return false
}

// Fits reports whether an integer value is representable in an integer type
func Fits(v *big.Int, t *Type) bool {
	switch t.Kind {
	case Uint:
		return v.Sign() >= 0 && v.BitLen() <= t.Bits
	case Int:
		if v.Sign() >= 0 {
			return v.BitLen() < t.Bits
		}
		// -2^(bits-1) is the smallest value
		min := new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), uint(t.Bits-1)))
		return v.Cmp(min) >= 0
	}
	return false
}

// SmallestFitting returns the narrowest integer type holding v
func SmallestFitting(v *big.Int) *Type {
	for bits := 8; bits <= 256; bits += 8 {
		if v.Sign() >= 0 {
			if t := UintType(bits); Fits(v, t) {
				return t
			}
		} else if t := IntType(bits); Fits(v, t) {
			return t
		}
	}
	return UintType(256)
}
