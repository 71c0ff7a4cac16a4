package elaborate

import (
	"github.com/nvchdl/velab/internal/ident"
	"github.com/nvchdl/velab/internal/tree"
	"github.com/nvchdl/velab/internal/types"
)

// funcReplaceMax caps how many function bodies one rebinding pass
// collects before flushing a tree.Rewrite over the architecture: bounding
// the table keeps each rewrite pass working over a handful of candidates
// instead of rebuilding one enormous table for a design with hundreds of
// package functions.
const funcReplaceMax = 32

type funcCandidate struct {
	id   ident.ID
	typ  types.Type
	body *tree.Node
}

// rebindPackageFunctions retargets every call in arch to a FUNC_DECL
// (the unresolved declaration visible at analysis time) onto the matching
// FUNC_BODY found in one of contexts' package bodies, so elaborated code
// calls a concrete, inlinable implementation rather than a bodiless
// declaration. Candidates are collected by walking each context library's
// package body in turn and flushed in batches of funcReplaceMax.
func (e *Elaborator) rebindPackageFunctions(arch *tree.Node, contexts []ident.ID) *tree.Node {
	var table []funcCandidate

	flush := func() {
		if len(table) == 0 {
			return
		}
		arch = e.applyFuncRebind(arch, table)
		table = nil
	}

	for _, pkg := range contexts {
		bodyID := ident.Prefix(pkg, ident.New("body"), '-')
		if !e.lib.Has(bodyID) {
			continue
		}
		body, kind, err := e.lib.Get(bodyID)
		if err != nil || kind != tree.PACK_BODY {
			continue
		}
		for _, d := range body.Decls0() {
			if d.Kind != tree.FUNC_BODY {
				continue
			}
			table = append(table, funcCandidate{id: d.GetIdent(), typ: d.GetType(), body: d})
			if len(table) == funcReplaceMax {
				flush()
			}
		}
	}
	flush()
	return arch
}

func (e *Elaborator) applyFuncRebind(arch *tree.Node, table []funcCandidate) *tree.Node {
	return tree.RewriteIn(e.store, arch, func(n *tree.Node, _ any) (tree.Action, *tree.Node) {
		if n.Kind != tree.FCALL {
			return tree.Keep, nil
		}
		ref := n.GetRef()
		for _, c := range table {
			if c.id == ref.GetIdent() && types.Equal(c.typ, ref.GetType()) {
				repl := freshClone(e.store, n)
				repl.SetRef(c.body)
				return tree.Replace, repl
			}
		}
		return tree.Keep, nil
	}, nil)
}
