package elaborate

import (
	"github.com/nvchdl/velab/internal/tree"
)

// fixEntityRefs retargets any reference to entity left inside archCopy
// (for instance, an attribute expression naming the entity directly) onto
// archCopy itself: once bound, the architecture is the only surviving
// identity for this instantiation, and nothing should keep pointing at
// the library's pristine, unbound entity declaration.
func (e *Elaborator) fixEntityRefs(archCopy, entity *tree.Node) *tree.Node {
	return tree.RewriteIn(e.store, archCopy, func(n *tree.Node, _ any) (tree.Action, *tree.Node) {
		if n.Kind != tree.REF || n.GetRef() != entity {
			return tree.Keep, nil
		}
		repl := freshClone(e.store, n)
		repl.SetRef(archCopy)
		return tree.Replace, repl
	}, nil)
}
