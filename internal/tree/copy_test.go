package tree

import (
	"testing"

	"github.com/nvchdl/velab/internal/ident"
	"github.com/nvchdl/velab/internal/types"
)

func isSignal(n *Node) bool { return n.Kind == SIGNAL_DECL }

func TestCopySharesUnclonedNodes(t *testing.T) {
	s := NewStore()
	intTy := types.NewInteger(ident.New("natural"), types.Range{Low: 0, High: 15})

	lit := s.New(LITERAL)
	lit.SetType(intTy)
	lit.SetLiteral(Literal{IsInt: true, Int: 3})

	sig := s.New(SIGNAL_DECL)
	sig.SetIdent(ident.New("count"))
	sig.SetType(intTy)
	sig.SetValue(lit)

	ref := s.New(REF)
	ref.SetIdent(ident.New("count"))
	ref.SetRef(sig)

	assign := s.New(SIGNAL_ASSIGN)
	assign.SetTarget(ref)
	assign.SetValue(lit)

	proc := s.New(PROCESS)
	proc.SetIdent(ident.New("p"))
	proc.AddDecl(sig)
	proc.AddStmt(assign)

	clone := CopyIn(s, proc, isSignal)

	if clone == proc {
		t.Fatal("expected PROCESS to get a new shell since its SIGNAL_DECL child was cloned")
	}
	if clone.Decls0()[0] == sig {
		t.Fatal("expected SIGNAL_DECL to be cloned (predicate true)")
	}
	if clone.Stmts0()[0] == assign {
		t.Fatal("expected SIGNAL_ASSIGN to get a new shell (its REF target now points at the cloned SIGNAL_DECL, so the REF was reshelled too)")
	}
	// LITERAL never matches the predicate and has no decl beneath it, so it
	// must be the exact same shared pointer in the clone.
	if clone.Decls0()[0].GetValue() != lit {
		t.Fatal("expected LITERAL to be shared by pointer, not cloned")
	}
}

func TestCopyNoOpWhenPredicateNeverMatches(t *testing.T) {
	s := NewStore()
	intTy := types.NewInteger(ident.New("natural"), types.Range{Low: 0, High: 7})
	lit := s.New(LITERAL)
	lit.SetType(intTy)
	lit.SetLiteral(Literal{IsInt: true, Int: 1})

	sig := s.New(SIGNAL_DECL)
	sig.SetIdent(ident.New("x"))
	sig.SetType(intTy)
	sig.SetValue(lit)

	never := func(*Node) bool { return false }
	clone := CopyIn(s, sig, never)
	if clone != sig {
		t.Fatal("expected Copy to return the exact same pointer when predicate never matches")
	}
}

func TestCopySharedSubtreeClonedOnce(t *testing.T) {
	s := NewStore()
	intTy := types.NewInteger(ident.New("natural"), types.Range{Low: 0, High: 1})
	sig := s.New(SIGNAL_DECL)
	sig.SetIdent(ident.New("shared"))
	sig.SetType(intTy)

	ref1 := s.New(REF)
	ref1.SetIdent(ident.New("shared"))
	ref1.SetRef(sig)
	ref2 := s.New(REF)
	ref2.SetIdent(ident.New("shared"))
	ref2.SetRef(sig)

	block := s.New(BLOCK)
	block.SetIdent(ident.New("b"))
	block.AddDecl(sig)
	va1 := s.New(VAR_ASSIGN)
	va1.SetTarget(ref1)
	va1.SetValue(ref1)
	va2 := s.New(VAR_ASSIGN)
	va2.SetTarget(ref2)
	va2.SetValue(ref2)
	block.AddStmt(va1)
	block.AddStmt(va2)

	clone := CopyIn(s, block, isSignal)
	clonedSig := clone.Decls0()[0]
	if clonedSig == sig {
		t.Fatal("expected SIGNAL_DECL to be cloned")
	}
	r1 := clone.Stmts0()[0].GetTarget()
	r2 := clone.Stmts0()[1].GetTarget()
	// Neither REF matches the predicate, but each refers to the cloned
	// SIGNAL_DECL, so Copy gives each a new shell whose Ref is that one
	// clone (the copy of X refers to the copy of Y when Y was cloned).
	if r1 == ref1 || r2 == ref2 || r1.GetRef() != clonedSig || r2.GetRef() != clonedSig {
		t.Fatal("expected both REFs to be reshelled onto the single SIGNAL_DECL clone")
	}
}
