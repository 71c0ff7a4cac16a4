package types

import (
	"testing"

	"github.com/nvchdl/velab/internal/ident"
)

func TestIntegerWidthAndBounds(t *testing.T) {
	it := NewInteger(ident.New("INTEGER"), Range{Low: 0, High: 31})
	if w := Width(it); w != 32 {
		t.Fatalf("Width = %d, want 32", w)
	}
	r, ok := RangeBounds(it)
	if !ok || r != (Range{0, 31}) {
		t.Fatalf("RangeBounds = %v,%v", r, ok)
	}
}

func TestCArrayWidth(t *testing.T) {
	bit := NewEnum(ident.New("BIT"), []ident.ID{ident.New("'0'"), ident.New("'1'")})
	bv := NewCArray(bit, []Range{{Low: 0, High: 3}})
	if w := Width(bv); w != 4 {
		t.Fatalf("Width(bit_vector(0 to 3)) = %d, want 4", w)
	}
}

func TestUArrayWidthPanics(t *testing.T) {
	bit := NewEnum(ident.New("BIT"), []ident.ID{ident.New("'0'"), ident.New("'1'")})
	ua := NewUArray(bit, []Kind{Integer})
	if !IsUnconstrainedArray(ua) {
		t.Fatalf("expected UARRAY")
	}
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic computing width of unconstrained array")
		}
	}()
	Width(ua)
}

func TestEqualStructuralVsPointer(t *testing.T) {
	a := NewInteger(ident.New("A"), Range{0, 7})
	b := NewInteger(ident.New("A"), Range{0, 7})
	if !Equal(a, b) {
		t.Fatalf("structurally equal integer ranges should compare equal")
	}
	e1 := NewEnum(ident.New("BIT"), []ident.ID{ident.New("'0'"), ident.New("'1'")})
	e2 := NewEnum(ident.New("BIT"), []ident.ID{ident.New("'0'"), ident.New("'1'")})
	if Equal(e1, e2) {
		t.Fatalf("distinct named enum types should not compare equal by value")
	}
	if !Equal(e1, e1) {
		t.Fatalf("identical pointer should compare equal")
	}
}

func TestRetainRelease(t *testing.T) {
	bit := NewEnum(ident.New("BIT"), []ident.ID{ident.New("'0'"), ident.New("'1'")})
	arr := NewCArray(bit, []Range{{0, 3}})
	arr.Retain()
	arr.Release() // last ref on arr: drops the NewCArray-held ref on bit
	if n := *bit.refs(); n != 0 {
		t.Fatalf("bit refcount after releasing arr = %d, want 0", n)
	}
}
