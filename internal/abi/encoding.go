package abi

import (
	"contractc/internal/semantic"
	"contractc/internal/target"
	"contractc/internal/types"
)

// Descriptor describes how one parameter or return value is encoded
type Descriptor struct {
	Name string
	// Type is the canonical type string used in signatures
	Type string
	// Size is the encoded size in bytes, or the minimum size when Dynamic
	Size    uint64
	Dynamic bool
}

// abiWord is the slot width of the ethereum ABI
const abiWord = 32

// borshLengthPrefix is the u32 length in front of borsh sequences
const borshLengthPrefix = 4

// Describe returns the encoding descriptor of a value of type t under codec
func Describe(name string, t *types.Type, codec target.Codec, cfg target.Config) Descriptor {
	size, dynamic := encodedSize(t, codec, cfg)
	return Descriptor{Name: name, Type: t.Signature(), Size: size, Dynamic: dynamic}
}

func describeParams(params []*semantic.Param, codec target.Codec, cfg target.Config) []Descriptor {
	out := make([]Descriptor, len(params))
	for i, p := range params {
		out[i] = Describe(p.Name, p.Type, codec, cfg)
	}
	return out
}

// encodedSize returns the size of a value in the codec. For the ABI codec
// a dynamic value reports its head, the offset word; for SCALE and borsh it
// reports the encoding of an empty value.
func encodedSize(t *types.Type, codec target.Codec, cfg target.Config) (uint64, bool) {
	if codec == target.ABI {
		return abiSize(t)
	}

	switch t.Kind {
	case types.Bool:
		return 1, false
	case types.Uint, types.Int:
		return uint64(t.Bits / 8), false
	case types.Address, types.Contract:
		return uint64(cfg.AddressLength), false
	case types.FixedBytes:
		return uint64(t.Bits), false
	case types.String, types.DynamicBytes:
		return emptySequence(codec), true
	case types.Array:
		if !t.Fixed {
			return emptySequence(codec), true
		}
		elem, dynamic := encodedSize(t.Elem, codec, cfg)
		return elem * t.Len, dynamic
	case types.Struct:
		var size uint64
		dynamic := false
		for _, f := range t.Struct.Fields {
			s, d := encodedSize(f.Type, codec, cfg)
			size += s
			dynamic = dynamic || d
		}
		return size, dynamic
	default:
		return 0, false
	}
}

// emptySequence is the size of a zero length string, bytes or array
func emptySequence(codec target.Codec) uint64 {
	if codec == target.Borsh {
		return borshLengthPrefix
	}
	// compact encoded zero
	return 1
}

// abiSize follows the head/tail layout: static values are padded to whole
// words in the head, dynamic values take one offset word
func abiSize(t *types.Type) (uint64, bool) {
	switch t.Kind {
	case types.String, types.DynamicBytes:
		return abiWord, true
	case types.Array:
		if !t.Fixed {
			return abiWord, true
		}
		elem, dynamic := abiSize(t.Elem)
		if dynamic {
			return abiWord, true
		}
		return elem * t.Len, false
	case types.Struct:
		var size uint64
		for _, f := range t.Struct.Fields {
			s, dynamic := abiSize(f.Type)
			if dynamic {
				return abiWord, true
			}
			size += s
		}
		return size, false
	default:
		return abiWord, false
	}
}

// EncodedLength sums the sizes of a descriptor list
func EncodedLength(ds []Descriptor) uint64 {
	var n uint64
	for _, d := range ds {
		n += d.Size
	}
	return n
}
