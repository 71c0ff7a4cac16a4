// Package types implements velab's type model (spec §3.3, §4.3): a small,
// closed set of reference-counted type descriptors shared across many tree
// nodes. Unlike the tree IR (internal/tree), which is one tagged struct
// because the node kinds are open-ended and machine-generic (visit/rewrite/
// copy/serialize all iterate them uniformly), the type kinds here are few,
// fixed, and each carries genuinely different data — so each kind gets its
// own Go type behind the Type interface, the way the teacher's AST package
// represents its node kinds.
package types

import "github.com/nvchdl/velab/internal/ident"

// Kind identifies which concrete Type a value holds.
type Kind int

const (
	Integer Kind = iota
	Physical
	Enum
	CArray
	UArray
	Subtype
	Func
	Unresolved
)

func (k Kind) String() string {
	switch k {
	case Integer:
		return "INTEGER"
	case Physical:
		return "PHYSICAL"
	case Enum:
		return "ENUM"
	case CArray:
		return "CARRAY"
	case UArray:
		return "UARRAY"
	case Subtype:
		return "SUBTYPE"
	case Func:
		return "FUNC"
	case Unresolved:
		return "UNRESOLVED"
	default:
		return "UNKNOWN_KIND"
	}
}

// Range is an inclusive integer bound pair, the result of constant-folding
// a range expression (spec §4.3: "failure to fold is a precondition
// violation").
type Range struct {
	Low, High int64
}

// Width reports the number of scalar values a range spans.
func (r Range) Width() int64 {
	if r.High < r.Low {
		return 0
	}
	return r.High - r.Low + 1
}

// Type is implemented by every concrete type descriptor. Types are
// reference-counted (spec §3.3: "reference-counted and may be shared
// across many tree nodes"); Retain/Release manage that count so a type
// can be freed when internal/tree's GC sweeps the last referencing node.
type Type interface {
	Kind() Kind
	Retain() Type
	Release()
	refs() *int
}

// retainCount and releaseCount are shared helpers invoked by each concrete
// type's Retain/Release so the bookkeeping lives in one place.
func retainCount(p *int) { *p++ }

func releaseCount(p *int) {
	if *p <= 0 {
		panic("types: Release on type with zero refcount")
	}
	*p--
}

// IntegerType is a scalar integer type with a constraining range.
type IntegerType struct {
	count int
	Name  ident.ID
	Range Range
}

func NewInteger(name ident.ID, r Range) *IntegerType { return &IntegerType{Name: name, Range: r} }
func (t *IntegerType) Kind() Kind                     { return Integer }
func (t *IntegerType) Retain() Type                   { retainCount(&t.count); return t }
func (t *IntegerType) Release()                       { releaseCount(&t.count) }
func (t *IntegerType) refs() *int                     { return &t.count }

// PhysicalUnit names a unit of a PhysicalType with its multiplier relative
// to the primary (base) unit.
type PhysicalUnit struct {
	Name       ident.ID
	Multiplier int64
}

// PhysicalType is an integer type with associated named units (e.g. VHDL's
// predefined TIME type: fs, ps, ns, us, ms, sec, min, hr).
type PhysicalType struct {
	count int
	Name  ident.ID
	Range Range
	Units []PhysicalUnit
}

func NewPhysical(name ident.ID, r Range, units []PhysicalUnit) *PhysicalType {
	return &PhysicalType{Name: name, Range: r, Units: units}
}
func (t *PhysicalType) Kind() Kind   { return Physical }
func (t *PhysicalType) Retain() Type { retainCount(&t.count); return t }
func (t *PhysicalType) Release()     { releaseCount(&t.count) }
func (t *PhysicalType) refs() *int   { return &t.count }

// EnumType is an ordered set of enumeration literals; position in
// Literals is the literal's ordinal (spec §3.2 "enum position").
type EnumType struct {
	count    int
	Name     ident.ID
	Literals []ident.ID
}

func NewEnum(name ident.ID, literals []ident.ID) *EnumType {
	return &EnumType{Name: name, Literals: literals}
}
func (t *EnumType) Kind() Kind   { return Enum }
func (t *EnumType) Retain() Type { retainCount(&t.count); return t }
func (t *EnumType) Release()     { releaseCount(&t.count) }
func (t *EnumType) refs() *int   { return &t.count }

// Position returns the ordinal of lit within the enumeration, or -1 if lit
// is not one of this type's literals.
func (t *EnumType) Position(lit ident.ID) int {
	for i, l := range t.Literals {
		if l == lit {
			return i
		}
	}
	return -1
}

// CArrayType is a constrained array: an element type plus one Range per
// dimension. Width is defined (spec §3.3).
type CArrayType struct {
	count   int
	Elem    Type
	Ranges  []Range // one per dimension, outermost first
}

func NewCArray(elem Type, ranges []Range) *CArrayType {
	return &CArrayType{Elem: elem.Retain(), Ranges: ranges}
}
func (t *CArrayType) Kind() Kind   { return CArray }
func (t *CArrayType) Retain() Type { retainCount(&t.count); return t }
func (t *CArrayType) Release() {
	releaseCount(&t.count)
	if t.count == 0 {
		t.Elem.Release()
	}
}
func (t *CArrayType) refs() *int { return &t.count }

// UArrayType is an unconstrained array: an element type plus the number of
// index dimensions it expects once constrained (the index *types*, not
// their bounds — those arrive only when the array is constrained, e.g. by
// a signal declaration or a port association). Width is indeterminate
// until instantiation (spec §3.3).
type UArrayType struct {
	count      int
	Elem       Type
	IndexKinds []Kind // the kind of each index's type, outermost first
}

func NewUArray(elem Type, indexKinds []Kind) *UArrayType {
	return &UArrayType{Elem: elem.Retain(), IndexKinds: indexKinds}
}
func (t *UArrayType) Kind() Kind   { return UArray }
func (t *UArrayType) Retain() Type { retainCount(&t.count); return t }
func (t *UArrayType) Release() {
	releaseCount(&t.count)
	if t.count == 0 {
		t.Elem.Release()
	}
}
func (t *UArrayType) refs() *int { return &t.count }

// SubtypeType is a named constraint over a base type (e.g. a subtype of
// bit_vector with an explicit range).
type SubtypeType struct {
	count      int
	Name       ident.ID
	Base       Type
	Constraint []Range
}

func NewSubtype(name ident.ID, base Type, constraint []Range) *SubtypeType {
	return &SubtypeType{Name: name, Base: base.Retain(), Constraint: constraint}
}
func (t *SubtypeType) Kind() Kind   { return Subtype }
func (t *SubtypeType) Retain() Type { retainCount(&t.count); return t }
func (t *SubtypeType) Release() {
	releaseCount(&t.count)
	if t.count == 0 {
		t.Base.Release()
	}
}
func (t *SubtypeType) refs() *int { return &t.count }

// FuncType is a function or procedure signature.
type FuncType struct {
	count  int
	Params []Type
	Result Type // nil for a procedure
}

func NewFunc(params []Type, result Type) *FuncType {
	f := &FuncType{Params: params, Result: result}
	for _, p := range params {
		p.Retain()
	}
	if result != nil {
		result.Retain()
	}
	return f
}
func (t *FuncType) Kind() Kind   { return Func }
func (t *FuncType) Retain() Type { retainCount(&t.count); return t }
func (t *FuncType) Release() {
	releaseCount(&t.count)
	if t.count == 0 {
		for _, p := range t.Params {
			p.Release()
		}
		if t.Result != nil {
			t.Result.Release()
		}
	}
}
func (t *FuncType) refs() *int { return &t.count }

// UnresolvedType is a placeholder for a type not yet resolved by semantic
// analysis; it must never reach the elaborator in well-formed input
// (spec §4.3 precondition), but is representable so partially-built trees
// in tests can construct nodes before assigning a real type.
type UnresolvedType struct {
	count int
}

func NewUnresolved() *UnresolvedType { return &UnresolvedType{} }
func (t *UnresolvedType) Kind() Kind   { return Unresolved }
func (t *UnresolvedType) Retain() Type { retainCount(&t.count); return t }
func (t *UnresolvedType) Release()     { releaseCount(&t.count) }
func (t *UnresolvedType) refs() *int   { return &t.count }
