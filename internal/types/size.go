package types

import (
	"math"
	"math/bits"

	"contractc/internal/target"
)

// SolanaBucketSize is the number of hash buckets of a mapping in account data
const SolanaBucketSize = 251

// pointerSize is the size of an offset into the account heap
const pointerSize = 4

// Unbounded is the saturated size of a value too large to address
const Unbounded uint64 = math.MaxUint64

// SatAdd adds two sizes, saturating at Unbounded
func SatAdd(a, b uint64) uint64 {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return Unbounded
	}
	return sum
}

// SatMul multiplies two sizes, saturating at Unbounded
func SatMul(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return Unbounded
	}
	return lo
}

// FlatSize returns the number of bytes a value occupies in a flat account
// buffer. Dynamic values store a 4 byte offset into the account heap.
func (t *Type) FlatSize(cfg target.Config) uint64 {
	switch t.Kind {
	case Bool:
		return 1
	case Address, Contract:
		return uint64(cfg.AddressLength)
	case FixedBytes:
		return uint64(t.Bits)
	case Uint, Int:
		return uint64(t.Bits / 8)
	case String, DynamicBytes:
		return pointerSize
	case Array:
		if !t.Fixed {
			return pointerSize
		}
		return SatMul(t.Elem.FlatSize(cfg), t.Len)
	case Struct:
		_, size := StructOffsets(t.Struct, cfg)
		return size
	case Mapping:
		return SolanaBucketSize * pointerSize
	default:
		return 1
	}
}

// Align returns the alignment of a value in a flat account buffer
func (t *Type) Align() uint64 {
	switch t.Kind {
	case Uint, Int:
		switch {
		case t.Bits == 8:
			return 1
		case t.Bits <= 16:
			return 2
		case t.Bits <= 32:
			return 4
		default:
			return 8
		}
	case Struct:
		var align uint64 = 1
		for _, f := range t.Struct.Fields {
			align = max(align, f.Type.Align())
		}
		return align
	case Array:
		if t.Fixed {
			return t.Elem.Align()
		}
		return 1
	default:
		return 1
	}
}

// StructOffsets lays out the fields of a struct in a flat buffer and returns
// each field's offset together with the total size.
func StructOffsets(def *StructDef, cfg target.Config) ([]uint64, uint64) {
	offsets := make([]uint64, len(def.Fields))
	var offset uint64
	for i, f := range def.Fields {
		offset = AlignUp(offset, f.Type.Align())
		offsets[i] = offset
		offset = SatAdd(offset, f.Type.FlatSize(cfg))
	}
	return offsets, offset
}

// AlignUp rounds offset up to a multiple of align
func AlignUp(offset, align uint64) uint64 {
	if align <= 1 {
		return offset
	}
	if rem := offset % align; rem != 0 {
		return SatAdd(offset, align-rem)
	}
	return offset
}

// StorageSlots returns the number of sequential slots a value occupies under
// the slot-addressed policy
func (t *Type) StorageSlots() uint64 {
	switch t.Kind {
	case Struct:
		var slots uint64
		for _, f := range t.Struct.Fields {
			slots = SatAdd(slots, f.Type.StorageSlots())
		}
		return max(slots, 1)
	case Array:
		if !t.Fixed {
			return 1
		}
		return SatMul(t.Elem.StorageSlots(), t.Len)
	default:
		return 1
	}
}
