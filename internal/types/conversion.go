package types

// BaseChecker reports whether contract base is derived by contract derived
type BaseChecker func(derived, base int) bool

// ImplicitCost returns the cost of converting from into to without a cast;
// 0 is an exact match. ok is false when no implicit conversion exists.
func ImplicitCost(from, to *Type, isBase BaseChecker) (cost int, ok bool) {
	if from.Kind == Unresolved || to.Kind == Unresolved {
		return 0, true
	}
	if from.Equal(to) {
		return 0, true
	}

	switch from.Kind {
	case Uint:
		switch to.Kind {
		case Uint:
			return 1, to.Bits >= from.Bits
		case Int:
			return 1, to.Bits > from.Bits
		}
	case Int:
		if to.Kind == Int {
			return 1, to.Bits >= from.Bits
		}
	case Rational:
		switch to.Kind {
		case Uint, Int:
			return 1, Fits(from.Value, to)
		case FixedBytes:
			return 1, from.Value.Sign() == 0
		}
	case StringLiteral:
		switch to.Kind {
		case String, DynamicBytes:
			return 1, true
		case FixedBytes:
			return 1, len(from.Literal) <= to.Bits
		}
	case FixedBytes:
		if to.Kind == FixedBytes {
			return 1, to.Bits >= from.Bits
		}
	case Contract:
		if to.Kind == Contract && isBase != nil {
			return 1, isBase(from.Contract.No, to.Contract.No)
		}
	case Array:
		if to.Kind == Array && from.Fixed == to.Fixed && from.Len == to.Len {
			c, ok := ImplicitCost(from.Elem, to.Elem, isBase)
			return c, ok
		}
	}
	return 0, false
}

// CanConvert reports whether an implicit conversion exists
func CanConvert(from, to *Type, isBase BaseChecker) bool {
	_, ok := ImplicitCost(from, to, isBase)
	return ok
}

// CanCast reports whether an explicit conversion 'to(expr)' is allowed
func CanCast(from, to *Type, addressLength int) bool {
	if CanConvert(from, to, nil) {
		return true
	}
	switch {
	case from.IsNumeric() && to.IsInteger():
		return true
	case from.Kind == Rational && to.Kind == Address:
		return true
	case from.IsInteger() && to.Kind == FixedBytes:
		return from.Bits == to.Bits*8
	case from.Kind == FixedBytes && to.IsInteger():
		return from.Bits*8 == to.Bits
	case from.Kind == FixedBytes && to.Kind == FixedBytes:
		return true
	case from.Kind == Contract && to.Kind == Address:
		return true
	case from.Kind == Address && to.Kind == Contract:
		return true
	case from.Kind == Address && to.Kind == FixedBytes:
		return to.Bits == addressLength
	case from.Kind == FixedBytes && to.Kind == Address:
		return from.Bits == addressLength
	case from.Kind == Uint && to.Kind == Address:
		return from.Bits == addressLength*8
	case from.Kind == Address && to.Kind == Uint:
		return to.Bits == addressLength*8
	case (from.Kind == String || from.Kind == StringLiteral) && to.Kind == DynamicBytes:
		return true
	case from.Kind == DynamicBytes && to.Kind == String:
		return true
	case from.Kind == DynamicBytes && to.Kind == FixedBytes:
		return true
	}
	return false
}

// Common returns the type two operands of an arithmetic or comparison
// operator are converted to, or nil when no common type exists.
func Common(a, b *Type) *Type {
	switch {
	case a.Kind == Unresolved:
		return b
	case b.Kind == Unresolved:
		return a
	case a.Kind == Rational && b.Kind == Rational:
		return SmallestFitting(a.Value)
	case a.Kind == Rational && b.IsInteger():
		if Fits(a.Value, b) {
			return b
		}
		return nil
	case b.Kind == Rational && a.IsInteger():
		if Fits(b.Value, a) {
			return a
		}
		return nil
	case a.IsInteger() && b.IsInteger():
		if a.Kind == b.Kind {
			if a.Bits >= b.Bits {
				return a
			}
			return b
		}
		if a.Kind == Int && a.Bits > b.Bits {
			return a
		}
		if b.Kind == Int && b.Bits > a.Bits {
			return b
		}
		return nil
	}
	if CanConvert(a, b, nil) {
		return b
	}
	if CanConvert(b, a, nil) {
		return a
	}
	return nil
}
