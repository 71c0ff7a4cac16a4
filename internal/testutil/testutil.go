// Package testutil centralizes fixture-building helpers and comparison
// assertions shared across this module's test suites, the way the
// teacher's own top-level testutil package centralizes golden-file
// comparison for its parser and evaluator tests. There is no VHDL parser
// in this module's scope, so fixtures here are built directly against
// internal/tree rather than by parsing source text.
package testutil

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/nvchdl/velab/internal/ident"
	"github.com/nvchdl/velab/internal/tree"
	"github.com/nvchdl/velab/internal/types"
	"github.com/stretchr/testify/require"
)

// NewEntity builds a bare ENTITY node with the given name and ports.
func NewEntity(s *tree.Store, name string, ports ...*tree.Node) *tree.Node {
	e := s.New(tree.ENTITY)
	e.SetIdent(ident.New(name))
	for _, p := range ports {
		e.AddPort(p)
	}
	return e
}

// NewArch builds a bare ARCH node named "<entity>-<variant>", the shape
// library.Manager.PickArch expects to find a unit's architectures under.
func NewArch(s *tree.Store, entity, variant string) *tree.Node {
	a := s.New(tree.ARCH)
	a.SetIdent(ident.New(entity + "-" + variant))
	return a
}

// NewPort builds a PORT_DECL.
func NewPort(s *tree.Store, name string, mode tree.PortMode, ty types.Type) *tree.Node {
	p := s.New(tree.PORT_DECL)
	p.SetIdent(ident.New(name))
	p.SetPortMode(mode)
	p.SetType(ty)
	return p
}

// NewSignal builds a SIGNAL_DECL.
func NewSignal(s *tree.Store, name string, ty types.Type) *tree.Node {
	sig := s.New(tree.SIGNAL_DECL)
	sig.SetIdent(ident.New(name))
	sig.SetType(ty)
	return sig
}

// NewRef builds a REF pointing at decl, carrying decl's own identifier.
func NewRef(s *tree.Store, decl *tree.Node) *tree.Node {
	r := s.New(tree.REF)
	r.SetIdent(decl.GetIdent())
	r.SetRef(decl)
	return r
}

// NewIntLiteral builds an integer LITERAL of the given type and value.
func NewIntLiteral(s *tree.Store, ty types.Type, v int64) *tree.Node {
	l := s.New(tree.LITERAL)
	l.SetType(ty)
	l.SetLiteral(tree.Literal{IsInt: true, Int: v})
	return l
}

// BitType returns a fresh two-valued enumeration type standing in for
// VHDL's predefined BIT. Each call constructs an independent instance;
// share one return value across a test's assertions when the nominal
// (pointer-identity) Equal rule for declared types matters.
func BitType() *types.EnumType {
	return types.NewEnum(ident.New("BIT"), []ident.ID{ident.New("'0'"), ident.New("'1'")})
}

// RequireRoundTrip serializes root, deserializes it back against a fresh
// store, and asserts the two trees render identically via tree.Dump —
// the practical proxy for structural equality, since Node carries
// unexported bookkeeping fields cmp cannot compare directly (spec.md
// §8.1's serialize/deserialize round-trip invariant).
func RequireRoundTrip(t *testing.T, root *tree.Node) {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, tree.Serialize(&buf, root))

	got, err := tree.Deserialize(&buf, tree.NewStore())
	require.NoError(t, err)

	var wantDump, gotDump bytes.Buffer
	tree.Dump(&wantDump, root)
	tree.Dump(&gotDump, got)

	if diff := cmp.Diff(wantDump.String(), gotDump.String()); diff != "" {
		t.Errorf("round-trip mismatch (-want +got):\n%s", diff)
	}
}
