package elaborate

import (
	"testing"

	"github.com/nvchdl/velab/internal/ident"
	"github.com/nvchdl/velab/internal/tree"
	"github.com/nvchdl/velab/internal/types"
	"github.com/stretchr/testify/require"
)

func TestFindGenvarLocatesTheSoleGenvarDecl(t *testing.T) {
	s := tree.NewStore()
	gen := s.New(tree.FOR_GENERATE)
	gen.SetIdent(ident.New("g"))

	sig := newSignal(s, "s", bitType())
	gv := s.New(tree.GENVAR)
	gv.SetIdent(ident.New("i"))
	gv.SetType(types.NewInteger(ident.New("natural"), types.Range{Low: 0, High: 3}))
	gen.AddDecl(sig)
	gen.AddDecl(gv)

	require.Same(t, gv, findGenvar(gen))
}

func TestElaborateForGenerateUnrollsEachIterationWithIndexedPath(t *testing.T) {
	s := tree.NewStore()
	e := &Elaborator{store: s, out: s.New(tree.ELAB)}
	e.out.SetIdent(ident.New("top.elab"))

	gv := s.New(tree.GENVAR)
	gv.SetIdent(ident.New("i"))
	gv.SetType(types.NewInteger(ident.New("natural"), types.Range{Low: 0, High: 2}))

	sig := newSignal(s, "cell", bitType())
	ref := newRef(s, gv) // stands in for an expression using the genvar (e.g. an index)
	assign := s.New(tree.VAR_ASSIGN)
	assign.SetTarget(newRef(s, sig))
	assign.SetValue(ref)
	proc := s.New(tree.PROCESS)
	proc.SetIdent(ident.New("p"))
	proc.AddStmt(assign)

	gen := s.New(tree.FOR_GENERATE)
	gen.SetIdent(ident.New("g"))
	gen.AddDecl(gv)
	gen.AddDecl(sig)
	gen.AddStmt(proc)

	sc := scope{path: ident.New(":top:g"), inst: ident.New(":top(rtl):g")}
	e.elaborateForGenerate(gen, sc)

	require.Len(t, e.out.Decls0(), 3, "one cell signal installed per iteration (0, 1, 2)")
	require.Len(t, e.out.Stmts0(), 3, "PROCESS is a leaf statement, appended once per unrolled iteration")

	for i, d := range e.out.Decls0() {
		path, ok := d.AttrStr(pathNameAttr)
		require.True(t, ok)
		require.Equal(t, ":top:g["+string(rune('0'+i))+"]:cell", path)
	}
}

func TestGenvarSubstitutionProducesDistinctLiteralPerIteration(t *testing.T) {
	s := tree.NewStore()
	e := &Elaborator{store: s, out: s.New(tree.ELAB)}
	e.out.SetIdent(ident.New("top.elab"))

	gv := s.New(tree.GENVAR)
	gv.SetIdent(ident.New("i"))
	gv.SetType(types.NewInteger(ident.New("natural"), types.Range{Low: 0, High: 1}))

	ref := newRef(s, gv)
	assign := s.New(tree.VAR_ASSIGN)
	assign.SetTarget(newRef(s, newSignal(s, "x", natural())))
	assign.SetValue(ref)
	gen := s.New(tree.FOR_GENERATE)
	gen.SetIdent(ident.New("g"))
	gen.AddDecl(gv)
	gen.AddStmt(assign)

	sc := scope{path: ident.New(":top:g"), inst: ident.New(":top(rtl):g")}
	e.elaborateForGenerate(gen, sc)

	require.Len(t, e.out.Stmts0(), 2)
	first := e.out.Stmts0()[0].GetValue()
	second := e.out.Stmts0()[1].GetValue()
	require.Equal(t, tree.LITERAL, first.Kind)
	require.Equal(t, tree.LITERAL, second.Kind)
	require.EqualValues(t, 0, first.GetLiteral().Int)
	require.EqualValues(t, 1, second.GetLiteral().Int)
}
