package elaborate

import (
	"github.com/nvchdl/velab/internal/ident"
	"github.com/nvchdl/velab/internal/tree"
)

// installDecl folds one declaration into its final position: for the
// kinds that survive into the flattened design (signals, variables,
// subprogram bodies, array-typed constants) it is renamed to its full
// hierarchical path, tagged with both PATH_NAME and INSTANCE_NAME
// attributes, and appended to the ELAB root's own declaration list.
// Subprogram declarations are renamed only (nothing calls a bodiless
// declaration once function rebinding has run); scalar constants and
// anything else are left where simplification already resolved them and
// are not carried forward at all.
func (e *Elaborator) installDecl(d *tree.Node, sc scope) {
	label := simpleName(d.GetIdent())
	npath := hpathf(sc.path, ':', "%s", ident.Text(label))
	ninst := hpathf(sc.inst, ':', "%s", ident.Text(label))

	switch d.Kind {
	case tree.SIGNAL_DECL:
		e.allocSignalNets(d)
		e.installAndTag(d, npath, ninst)
	case tree.VAR_DECL, tree.FUNC_BODY, tree.PROC_BODY:
		e.installAndTag(d, npath, ninst)
	case tree.FUNC_DECL, tree.PROC_DECL:
		d.SetIdent(npath)
	case tree.CONST_DECL:
		if isArrayType(d.GetType()) {
			e.installAndTag(d, npath, ninst)
		}
	default:
		// TYPE_DECL, GENVAR, PORT_DECL (already consumed by binding): not
		// carried into the flattened design.
	}
}

func (e *Elaborator) installAndTag(d *tree.Node, npath, ninst ident.ID) {
	d.SetIdent(npath)
	d.AddAttrStr(pathNameAttr, ident.Text(npath))
	d.AddAttrStr(instanceNameAttr, ident.Text(ninst))
	e.out.AddDecl(d)
}
