// Package coverage installs coverage-tagging attributes on a flattened
// elaboration result. It stops at attribute installation: emitting an actual
// coverage database belongs to an external simulator, out of this module's
// scope.
package coverage

import (
	"github.com/nvchdl/velab/internal/ident"
	"github.com/nvchdl/velab/internal/tree"
)

var covpointAttr = ident.New("covpoint")

// taggable is the set of statement kinds that represent actual executable
// behavior worth a coverage point. Purely structural statements (BLOCK,
// INSTANCE, FOR_GENERATE, IF_GENERATE) are never tagged themselves; of
// these, Tag walks into BLOCK only.
func taggable(k tree.Kind) bool {
	switch k {
	case tree.PROCESS, tree.SIGNAL_ASSIGN, tree.VAR_ASSIGN, tree.ASSERT:
		return true
	default:
		return false
	}
}

// Tag walks elab's flattened statement tree and installs a monotonically
// increasing "covpoint" integer attribute on every taggable statement,
// recursing into BLOCK bodies (the only structural statement kind that
// survives into ELAB.Stmts, since INSTANCE/FOR_GENERATE/IF_GENERATE are all
// resolved away before elaboration finishes). It returns the number of
// statements tagged.
func Tag(elab *tree.Node) int {
	n := 0
	var walk func(stmts []*tree.Node)
	walk = func(stmts []*tree.Node) {
		for _, s := range stmts {
			if taggable(s.Kind) {
				s.AddAttrInt(covpointAttr, int64(n))
				n++
			}
			if s.Kind == tree.BLOCK {
				walk(s.Stmts0())
			}
		}
	}
	walk(elab.Stmts0())
	return n
}
