package elaborate

import (
	"github.com/nvchdl/velab/internal/ident"
	"github.com/nvchdl/velab/internal/tree"
)

// elaborateStmts dispatches every statement of a scope. Assignments,
// assertions and waits carry no label in this IR and are appended to
// e.out as-is, without a rename. Every other statement is first given its
// own extended path/instance (by its own label), then handled by kind.
// INSTANCE, BLOCK and FOR_GENERATE recurse with the extended scope and
// contribute their own descendants directly into e.out; anything else is
// a leaf concurrent statement and is appended to e.out as-is. Each
// labelled statement's own identifier is renamed to its full hierarchical
// path afterward, whether or not it recursed; an unfolded IF_GENERATE is
// reported as fatal and skipped without being renamed.
func (e *Elaborator) elaborateStmts(stmts []*tree.Node, sc scope) {
	for _, s := range stmts {
		switch s.Kind {
		case tree.VAR_ASSIGN, tree.SIGNAL_ASSIGN, tree.ASSERT, tree.WAIT:
			e.out.AddStmt(s)
			continue
		}

		label := s.GetIdent()
		npath := hpathf(sc.path, ':', "%s", ident.Text(label))
		ninst := hpathf(sc.inst, ':', "%s", ident.Text(label))
		childSc := scope{path: npath, inst: ninst}

		switch s.Kind {
		case tree.INSTANCE:
			e.elaborateInstance(s, childSc)
		case tree.BLOCK:
			e.elaborateBlock(s, childSc)
		case tree.FOR_GENERATE:
			e.elaborateForGenerate(s, childSc)
		case tree.IF_GENERATE:
			e.fatal("if-generate statement %q was not constant-folded before elaboration", ident.Text(label))
			continue
		default:
			e.out.AddStmt(s)
		}

		s.SetIdent(npath)
	}
}

// elaborateBlock folds a block statement's declarations and statements
// directly — a block is not a separate instantiation site, so it needs no
// copy of its own beyond whatever the enclosing architecture's expansion
// already gave it.
func (e *Elaborator) elaborateBlock(block *tree.Node, sc scope) {
	e.installScopeAttr(block, sc)
	for _, d := range block.Decls0() {
		e.installDecl(d, sc)
	}
	e.elaborateStmts(block.Stmts0(), sc)
}
