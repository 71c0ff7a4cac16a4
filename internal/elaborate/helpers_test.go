package elaborate

import (
	"bytes"
	"testing"

	"github.com/nvchdl/velab/internal/diag"
	"github.com/nvchdl/velab/internal/ident"
	"github.com/nvchdl/velab/internal/library"
	"github.com/nvchdl/velab/internal/options"
	"github.com/nvchdl/velab/internal/tree"
	"github.com/nvchdl/velab/internal/types"
	"github.com/stretchr/testify/require"
)

// newTestLib opens a fresh on-disk library in a temp directory, the same
// way manager_test.go does for internal/library's own tests.
func newTestLib(t *testing.T) *library.Manager {
	t.Helper()
	m, err := library.Create("WORK", t.TempDir())
	require.NoError(t, err)
	return m
}

// newTestElaborator wires a fresh Elaborator against lib with a sink that
// discards output into buf (so a test can assert on buf.String() or just
// on sink.HasErrors()).
func newTestElaborator(t *testing.T, lib *library.Manager) (*Elaborator, *diag.Sink, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	sink := diag.NewSink(&buf)
	cfg := options.Defaults()
	return New(lib, sink, cfg, nil), sink, &buf
}

func bitType() *types.EnumType {
	return types.NewEnum(ident.New("BIT"), []ident.ID{ident.New("'0'"), ident.New("'1'")})
}

func bitVector(low, high int64) *types.CArrayType {
	return types.NewCArray(bitType(), []types.Range{{Low: low, High: high}})
}

func natural() *types.IntegerType {
	return types.NewInteger(ident.New("NATURAL"), types.Range{Low: 0, High: 1<<31 - 1})
}

func newPort(s *tree.Store, name string, mode tree.PortMode, ty types.Type) *tree.Node {
	p := s.New(tree.PORT_DECL)
	p.SetIdent(ident.New(name))
	p.SetPortMode(mode)
	p.SetType(ty)
	return p
}

func newSignal(s *tree.Store, name string, ty types.Type) *tree.Node {
	sig := s.New(tree.SIGNAL_DECL)
	sig.SetIdent(ident.New(name))
	sig.SetType(ty)
	return sig
}

func newRef(s *tree.Store, decl *tree.Node) *tree.Node {
	r := s.New(tree.REF)
	r.SetIdent(decl.GetIdent())
	r.SetRef(decl)
	return r
}

func newIntLit(s *tree.Store, ty types.Type, v int64) *tree.Node {
	l := s.New(tree.LITERAL)
	l.SetType(ty)
	l.SetLiteral(tree.Literal{IsInt: true, Int: v})
	return l
}

// newParam builds a PARAM associating formal (its Ref) with actual (its
// Value), the shape inst.Params0()/inst.Generics0() entries take.
func newParam(s *tree.Store, formal, actual *tree.Node) *tree.Node {
	p := s.New(tree.PARAM)
	p.SetIdent(formal.GetIdent())
	p.SetRef(formal)
	p.SetValue(actual)
	return p
}
