package elaborate

import (
	"testing"

	"github.com/nvchdl/velab/internal/ident"
	"github.com/nvchdl/velab/internal/tree"
	"github.com/stretchr/testify/require"
)

func TestRewriteRefsRetargetsSignalByClonedPointer(t *testing.T) {
	s := tree.NewStore()
	formal := newSignal(s, "formal", bitType())
	actual := newSignal(s, "actual", bitType())

	ref := newRef(s, formal)
	proc := s.New(tree.PROCESS)
	proc.SetIdent(ident.New("p"))
	assign := s.New(tree.VAR_ASSIGN)
	assign.SetTarget(ref)
	assign.SetValue(ref)
	proc.AddStmt(assign)

	e := &Elaborator{store: s}
	out := e.rewriteRefs(proc, formal, actual)

	got := out.Stmts0()[0].GetTarget()
	require.Equal(t, tree.REF, got.Kind)
	require.Same(t, actual, got.GetRef())
	require.NotSame(t, ref, got, "retargeting must clone the REF, not mutate the shared original")
}

func TestRewriteRefsReplacesWholeNodeForLiteralActual(t *testing.T) {
	s := tree.NewStore()
	formal := newSignal(s, "formal", natural())
	lit := newIntLit(s, natural(), 7)

	ref := newRef(s, formal)
	assign := s.New(tree.VAR_ASSIGN)
	assign.SetTarget(newRef(s, newSignal(s, "x", natural())))
	assign.SetValue(ref)

	e := &Elaborator{store: s}
	out := e.rewriteRefs(assign, formal, lit)

	require.Same(t, lit, out.GetValue(), "a LITERAL actual must replace the REF outright")
}

func TestRewriteRefsDeletesUnconnectedFormal(t *testing.T) {
	s := tree.NewStore()
	formal := newSignal(s, "formal", bitType())
	ref := newRef(s, formal)
	agg := s.New(tree.AGGREGATE)
	agg.SetType(bitVector(0, 0))
	agg.AddAssoc(tree.Assoc{Kind: tree.AssocPositional, Value: ref})

	e := &Elaborator{store: s}
	out := e.rewriteRefs(agg, formal, nil)
	require.Nil(t, out.GetAssocs()[0].Value, "the REF's Delete must splice it out to nil")
}

func TestRewriteRefsLeavesFormalNamePositionsAlone(t *testing.T) {
	s := tree.NewStore()
	formal := newSignal(s, "formal", bitType())
	actual := newSignal(s, "actual", bitType())
	ref := newRef(s, formal)
	ref.AddAttrInt(formalAttr, 1)

	e := &Elaborator{store: s}
	out := e.rewriteRefs(ref, formal, actual)
	require.Same(t, ref, out)
	require.Same(t, formal, out.GetRef())
}

func TestBindPortsWholePortConnectsSignalActual(t *testing.T) {
	s := tree.NewStore()

	origFormal := newPort(s, "d", tree.ModeIn, bitType())
	copiedFormal := newSignal(s, "d", bitType()) // stand-in: a copied PORT_DECL shares Ident/Type shape
	copiedFormal.SetIdent(ident.New("d"))
	// bindOnePort only cares that copiedFormal is the REF target inside
	// archCopy, not that it is literally a PORT_DECL, so a SIGNAL_DECL of
	// the same shape exercises the substitution path identically while
	// keeping this test focused on bindPorts' bookkeeping.

	arch := s.New(tree.ARCH)
	arch.SetIdent(ident.New("rtl"))
	ref := newRef(s, copiedFormal)
	sigTarget := newSignal(s, "q", bitType())
	assign := s.New(tree.SIGNAL_ASSIGN)
	assign.SetTarget(newRef(s, sigTarget))
	assign.SetValue(ref)
	arch.AddStmt(assign)

	actualSig := newSignal(s, "w", bitType())
	actualRef := newRef(s, actualSig)

	inst := s.New(tree.INSTANCE)
	inst.SetIdent(ident.New("i1"))
	inst.SetIdent2(ident.New("counter"))
	inst.AddParam(newParam(s, origFormal, actualRef))

	e := &Elaborator{store: s}
	newArch, entries := e.bindPorts(inst, []*tree.Node{copiedFormal}, []*tree.Node{origFormal}, arch)

	require.Len(t, entries, 1)
	require.Same(t, actualRef, entries[0].actual)
	require.False(t, entries[0].hasSub)

	got := newArch.Stmts0()[0].GetValue()
	require.Equal(t, tree.REF, got.Kind)
	require.Same(t, entries[0].signal, got.GetRef())
}

func TestBindPortsAppliesDefaultWhenUnconnected(t *testing.T) {
	s := tree.NewStore()
	def := newIntLit(s, natural(), 42)
	origFormal := newPort(s, "g", tree.ModeIn, natural())
	origFormal.SetValue(def)
	copiedFormal := newSignal(s, "g", natural())

	arch := s.New(tree.ARCH)
	arch.SetIdent(ident.New("rtl"))
	assign := s.New(tree.VAR_ASSIGN)
	assign.SetTarget(newRef(s, newSignal(s, "x", natural())))
	assign.SetValue(newRef(s, copiedFormal))
	arch.AddStmt(assign)

	inst := s.New(tree.INSTANCE)
	inst.SetIdent(ident.New("i1"))
	inst.SetIdent2(ident.New("counter"))
	// no Params at all: g is left fully unconnected

	e := &Elaborator{store: s}
	newArch, entries := e.bindPorts(inst, []*tree.Node{copiedFormal}, []*tree.Node{origFormal}, arch)

	require.Empty(t, entries)
	require.Same(t, def, newArch.Stmts0()[0].GetValue())
}

func TestBindGenericsSubstitutesActualExpressionDirectly(t *testing.T) {
	s := tree.NewStore()
	origFormal := s.New(tree.PORT_DECL) // generics share the PORT_DECL-shaped formal slot in this harness
	origFormal.SetIdent(ident.New("width"))
	origFormal.SetPortMode(tree.ModeIn)
	origFormal.SetType(natural())
	copiedFormal := newSignal(s, "width", natural())

	arch := s.New(tree.ARCH)
	arch.SetIdent(ident.New("rtl"))
	td := s.New(tree.CONST_DECL)
	td.SetIdent(ident.New("w"))
	td.SetType(natural())
	td.SetValue(newRef(s, copiedFormal))
	arch.AddDecl(td)

	actual := newIntLit(s, natural(), 8)
	inst := s.New(tree.INSTANCE)
	inst.SetIdent(ident.New("i1"))
	inst.SetIdent2(ident.New("counter"))
	inst.AddGeneric(newParam(s, origFormal, actual))

	e := &Elaborator{store: s}
	newArch := e.bindGenerics(inst, []*tree.Node{copiedFormal}, []*tree.Node{origFormal}, arch)

	require.Same(t, actual, newArch.Decls0()[0].GetValue())
}
