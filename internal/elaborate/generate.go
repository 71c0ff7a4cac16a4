package elaborate

import (
	"github.com/nvchdl/velab/internal/tree"
	"github.com/nvchdl/velab/internal/types"
)

// findGenvar returns a for-generate statement's loop variable: its sole
// GENVAR declaration. This IR gives FOR_GENERATE no dedicated reference
// slot to its genvar (unlike a tree that stores one directly), so the
// genvar is instead found the same way any other declaration would be:
// as the first GENVAR among the generate statement's own Decls, which
// also hold the generate body's other declarations.
func findGenvar(gen *tree.Node) *tree.Node {
	for _, d := range gen.Decls0() {
		if d.Kind == tree.GENVAR {
			return d
		}
	}
	return nil
}

// elaborateForGenerate unrolls one for-generate statement: for each value
// in the genvar's range it clones the whole statement fresh, substitutes
// every reference to the genvar with that iteration's literal value, and
// folds the resulting copy's declarations and statements into the
// current scope under an index-suffixed path (no separator, so "top:g"
// becomes "top:g[3]" rather than "top:g:[3]").
func (e *Elaborator) elaborateForGenerate(gen *tree.Node, sc scope) {
	genvar := findGenvar(gen)
	if genvar == nil {
		e.fatal("for-generate statement has no loop variable")
		return
	}
	bounds, ok := types.RangeBounds(genvar.GetType())
	if !ok {
		e.fatal("for-generate range is not constant-folded")
		return
	}

	for i := bounds.Low; i <= bounds.High; i++ {
		copy := tree.CopyIn(e.store, gen, shouldCopyArch)
		copiedGenvar := findGenvar(copy)

		lit := e.store.New(tree.LITERAL)
		lit.SetType(copiedGenvar.GetType())
		lit.SetLiteral(tree.Literal{IsInt: true, Int: i})

		copy = e.rewriteRefs(copy, copiedGenvar, lit)

		childSc := scope{
			path: hpathf(sc.path, 0, "[%d]", i),
			inst: hpathf(sc.inst, 0, "[%d]", i),
		}
		e.installScopeAttr(copy, childSc)
		for _, d := range copy.Decls0() {
			if d.Kind == tree.GENVAR {
				continue
			}
			e.installDecl(d, childSc)
		}
		e.elaborateStmts(copy.Stmts0(), childSc)
	}
}
