package types

import "fmt"

// Width returns type_width(t): the total scalar storage count, defined
// only for constrained types (spec §3.3). Calling Width on a Type whose
// width is indeterminate (UARRAY, UNRESOLVED) panics — the caller
// (internal/elaborate) must first constrain or reject such a type.
func Width(t Type) int64 {
	switch v := t.(type) {
	case *IntegerType:
		return v.Range.Width()
	case *PhysicalType:
		return v.Range.Width()
	case *EnumType:
		return 1
	case *CArrayType:
		w := Width(v.Elem)
		for _, r := range v.Ranges {
			w *= r.Width()
		}
		return w
	case *SubtypeType:
		if len(v.Constraint) == 0 {
			return Width(v.Base)
		}
		w := elemWidthOf(v.Base)
		for _, r := range v.Constraint {
			w *= r.Width()
		}
		return w
	case *UArrayType:
		panic("types: Width of unconstrained array is indeterminate")
	case *FuncType:
		panic("types: Width of a function type is undefined")
	case *UnresolvedType:
		panic("types: Width of an unresolved type is undefined (simplifier precondition violated)")
	default:
		panic(fmt.Sprintf("types: Width: unknown type %T", t))
	}
}

// elemWidthOf returns the per-element width of an array type, recursing
// through CARRAY/UARRAY element chains.
func elemWidthOf(t Type) int64 {
	switch v := t.(type) {
	case *CArrayType:
		return Width(v)
	case *UArrayType:
		return Width(v.Elem)
	default:
		return Width(t)
	}
}

// RangeBounds returns range_bounds(t): the constant-folded [low, high]
// bounds of a scalar or singly-constrained type. Defined only when t
// already carries a single concrete Range (spec §4.3).
func RangeBounds(t Type) (Range, bool) {
	switch v := t.(type) {
	case *IntegerType:
		return v.Range, true
	case *PhysicalType:
		return v.Range, true
	case *EnumType:
		return Range{Low: 0, High: int64(len(v.Literals)) - 1}, true
	case *CArrayType:
		if len(v.Ranges) != 1 {
			return Range{}, false
		}
		return v.Ranges[0], true
	case *SubtypeType:
		if len(v.Constraint) == 1 {
			return v.Constraint[0], true
		}
		return RangeBounds(v.Base)
	default:
		return Range{}, false
	}
}

// Equal reports structural equality for primitive kinds and pointer
// identity for declared named types (spec §4.3: "Equality is structural
// for primitive kinds and by pointer for declared named types after
// resolution").
func Equal(a, b Type) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case *IntegerType:
		bv := b.(*IntegerType)
		return av.Range == bv.Range
	case *PhysicalType:
		// declared named type: pointer identity only, already checked above
		return false
	case *EnumType:
		// declared named type: pointer identity only, already checked above
		return false
	case *CArrayType:
		bv := b.(*CArrayType)
		if len(av.Ranges) != len(bv.Ranges) || !Equal(av.Elem, bv.Elem) {
			return false
		}
		for i := range av.Ranges {
			if av.Ranges[i] != bv.Ranges[i] {
				return false
			}
		}
		return true
	case *UArrayType:
		bv := b.(*UArrayType)
		if len(av.IndexKinds) != len(bv.IndexKinds) {
			return false
		}
		for i := range av.IndexKinds {
			if av.IndexKinds[i] != bv.IndexKinds[i] {
				return false
			}
		}
		return Equal(av.Elem, bv.Elem)
	case *SubtypeType, *FuncType, *UnresolvedType:
		return false
	default:
		return false
	}
}

// IsUnconstrainedArray reports whether t is a UARRAY, the one kind whose
// Width is indeterminate until instantiation (spec §3.3, §4.5.5).
func IsUnconstrainedArray(t Type) bool {
	_, ok := t.(*UArrayType)
	return ok
}
