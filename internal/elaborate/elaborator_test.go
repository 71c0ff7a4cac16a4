package elaborate

import (
	"testing"

	"github.com/nvchdl/velab/internal/ident"
	"github.com/nvchdl/velab/internal/tree"
	"github.com/stretchr/testify/require"
)

func TestElaborateFlattensSignalAndAssignsNets(t *testing.T) {
	lib := newTestLib(t)
	s := lib.Store()

	entity := s.New(tree.ENTITY)
	entity.SetIdent(ident.New("top"))

	arch := s.New(tree.ARCH)
	arch.SetIdent(ident.New("top-rtl"))
	sig := newSignal(s, "count", bitVector(0, 3))
	arch.AddDecl(sig)
	assign := s.New(tree.SIGNAL_ASSIGN)
	assign.SetTarget(newRef(s, sig))
	assign.SetValue(newRef(s, sig))
	proc := s.New(tree.PROCESS)
	proc.SetIdent(ident.New("update"))
	proc.AddStmt(assign)
	arch.AddStmt(proc)

	lib.Put(ident.New("top-rtl"), tree.ARCH, arch)

	e, sink, _ := newTestElaborator(t, lib)
	root, err := e.Elaborate(entity)
	require.NoError(t, err)
	require.False(t, sink.HasErrors())
	require.NotNil(t, root)
	require.Equal(t, tree.ELAB, root.Kind)
	require.Equal(t, "top.elab", ident.Text(root.GetIdent()))

	require.Len(t, root.Decls0(), 1)
	installed := root.Decls0()[0]
	require.Equal(t, []uint32{0, 1, 2, 3}, installed.GetNets())

	pathName, ok := installed.AttrStr(pathNameAttr)
	require.True(t, ok)
	require.Equal(t, ":top:count", pathName)

	instName, ok := installed.AttrStr(instanceNameAttr)
	require.True(t, ok)
	require.Equal(t, ":top(rtl):count", instName)

	nnets, ok := root.AttrInt(nnetsAttr)
	require.True(t, ok)
	require.EqualValues(t, 4, nnets)

	require.True(t, lib.Has(ident.New("top.elab")))
}

func TestElaborateRejectsTopWithPorts(t *testing.T) {
	lib := newTestLib(t)
	s := lib.Store()
	entity := s.New(tree.ENTITY)
	entity.SetIdent(ident.New("top"))
	entity.AddPort(newPort(s, "clk", tree.ModeIn, bitType()))

	e, sink, _ := newTestElaborator(t, lib)
	root, err := e.Elaborate(entity)
	require.Error(t, err)
	require.Nil(t, root)
	require.True(t, sink.HasErrors())
}

func TestElaborateReturnsNilRootWhenDiagnosticsAccumulate(t *testing.T) {
	lib := newTestLib(t)
	s := lib.Store()

	entity := s.New(tree.ENTITY)
	entity.SetIdent(ident.New("top"))

	arch := s.New(tree.ARCH)
	arch.SetIdent(ident.New("top-rtl"))
	lib.Put(ident.New("top-rtl"), tree.ARCH, arch)

	gen := s.New(tree.IF_GENERATE)
	gen.SetIdent(ident.New("g"))
	gen.SetValue(newIntLit(s, natural(), 1))
	arch.AddStmt(gen)

	e, sink, _ := newTestElaborator(t, lib)
	root, err := e.Elaborate(entity)
	require.NoError(t, err)
	require.Nil(t, root, "a Fatal report mid-run must suppress the returned root")
	require.True(t, sink.HasErrors())
	require.False(t, lib.Has(ident.New("top.elab")), "the library must be left untouched when errors accumulated")
}
