package elaborate

import (
	"github.com/nvchdl/velab/internal/diag"
	"github.com/nvchdl/velab/internal/ident"
	"github.com/nvchdl/velab/internal/tree"
)

// assocIndexAttr, when present as an int attribute on a PARAM, names the
// sub-element index of a partial array-port association (e.g. binding
// only element 3 of a vector port to a scalar signal). Its absence means
// the association covers the whole formal.
var assocIndexAttr = ident.New("assoc_index")

func (e *Elaborator) lookupEntity(id ident.ID) (*tree.Node, error) {
	n, kind, err := e.lib.Get(id)
	if err != nil {
		return nil, err
	}
	if kind != tree.ENTITY {
		return nil, e.fatal("unit %q is not an entity", ident.Text(id))
	}
	return n, nil
}

// indexOfFormal finds which formal a PARAM's resolved Ref names, by
// pointer identity against the entity's original (pre-copy) port or
// generic list — the list a PARAM.Ref was resolved against before
// elaboration ever touched this tree.
func indexOfFormal(origFormals []*tree.Node, ref *tree.Node) int {
	for i, f := range origFormals {
		if f == ref {
			return i
		}
	}
	return -1
}

// rewriteRefs substitutes every REF in root that resolves to formal: a
// REF marked as sitting in formal-name position (the "formal" attribute)
// is left untouched; an unconnected formal (actual == nil) deletes the
// REF outright; otherwise the substitution depends on the *actual's own*
// kind, not the association expression's kind — a signal or enumeration
// literal value just retargets the Ref pointer (a fresh clone of the REF,
// differing only in its Ref, takes the original's place), while a
// literal, aggregate, or reference replaces
// the whole REF node with the actual's own tree.
func (e *Elaborator) rewriteRefs(root, formal, actual *tree.Node) *tree.Node {
	return tree.RewriteIn(e.store, root, func(n *tree.Node, _ any) (tree.Action, *tree.Node) {
		if n.Kind != tree.REF || n.GetRef() != formal {
			return tree.Keep, nil
		}
		if v, ok := n.AttrInt(formalAttr); ok && v != 0 {
			return tree.Keep, nil
		}
		if actual == nil {
			return tree.Delete, nil
		}
		switch actual.Kind {
		case tree.SIGNAL_DECL, tree.ENUM_LIT:
			repl := freshClone(e.store, n)
			repl.SetRef(actual)
			return tree.Replace, repl
		case tree.LITERAL, tree.AGGREGATE, tree.REF:
			return tree.Replace, actual
		default:
			diag.Internalf("elaborate", "rewriteRefs: unsupported actual expression kind %s", actual.Kind)
			return tree.Keep, nil
		}
	}, nil)
}

// bindPorts applies inst's port map against copiedPorts (the expanded
// architecture's own copies of the entity's ports, positionally aligned
// with origPorts) and returns the rewritten architecture together with
// the net-wiring work the binding deferred.
func (e *Elaborator) bindPorts(inst *tree.Node, copiedPorts, origPorts []*tree.Node, archCopy *tree.Node) (*tree.Node, []mapEntry) {
	have := make([]bool, len(origPorts))
	var entries []mapEntry

	for _, p := range inst.Params0() {
		idx := indexOfFormal(origPorts, p.GetRef())
		if idx < 0 {
			e.fatal("instance %q: port association does not resolve to a formal port", ident.Text(inst.GetIdent()))
			continue
		}
		have[idx] = true
		formal := copiedPorts[idx]
		archCopy, entries = e.bindOnePort(archCopy, formal, p, entries)
	}

	for i, f := range origPorts {
		if have[i] || f.GetValue() == nil {
			continue
		}
		archCopy = e.rewriteRefs(archCopy, copiedPorts[i], f.GetValue())
	}

	return archCopy, entries
}

// bindOnePort resolves one PARAM's actual against one formal port, adding
// whatever net-wiring entries it produces, and applies the resulting
// substitution to archCopy.
func (e *Elaborator) bindOnePort(archCopy, formal, p *tree.Node, entries []mapEntry) (*tree.Node, []mapEntry) {
	actual := p.GetValue()
	if actual == nil || actual.Kind == tree.OPEN {
		return e.rewriteRefs(archCopy, formal, nil), entries
	}

	var subst *tree.Node
	switch actual.Kind {
	case tree.REF, tree.ARRAY_REF, tree.ARRAY_SLICE:
		ref := actual
		for ref.Kind != tree.REF {
			ref = ref.GetValue()
		}
		decl := ref.GetRef()
		if decl.Kind == tree.SIGNAL_DECL {
			sig := e.portToSignal(archCopy, formal, exprType(actual))
			idx, hasSub := p.AttrInt(assocIndexAttr)
			entries = append(entries, mapEntry{
				formalType: formal.GetType(),
				signal:     sig,
				actual:     actual,
				index:      idx,
				hasSub:     hasSub,
			})
			subst = sig
		} else {
			subst = actual
		}
	case tree.LITERAL:
		subst = actual
	default:
		diag.Internalf("elaborate", "bindOnePort: unsupported actual expression kind %s", actual.Kind)
		return archCopy, entries
	}

	return e.rewriteRefs(archCopy, formal, subst), entries
}

// bindGenerics applies inst's generic map. Generics have no net concept:
// the actual's own expression always stands in directly for the formal,
// whatever kind it is (a constant-folded literal, an enumeration literal,
// an aggregate, or a reference to an outer generic/constant).
func (e *Elaborator) bindGenerics(inst *tree.Node, copiedGenerics, origGenerics []*tree.Node, archCopy *tree.Node) *tree.Node {
	have := make([]bool, len(origGenerics))

	for _, p := range inst.Generics0() {
		idx := indexOfFormal(origGenerics, p.GetRef())
		if idx < 0 {
			e.fatal("instance %q: generic association does not resolve to a formal generic", ident.Text(inst.GetIdent()))
			continue
		}
		have[idx] = true
		archCopy = e.rewriteRefs(archCopy, copiedGenerics[idx], p.GetValue())
	}

	for i, f := range origGenerics {
		if have[i] || f.GetValue() == nil {
			continue
		}
		archCopy = e.rewriteRefs(archCopy, copiedGenerics[i], f.GetValue())
	}

	return archCopy
}

// elaborateInstance binds one instantiation's port and generic maps,
// rebinds package functions and simplifies the result, wires its net
// associations, and recurses into the bound architecture. sc.path/sc.inst
// are already extended by the instance's own statement label; this adds
// one further level to sc.inst only, annotating which entity/architecture
// pair was bound here (the path itself stays at the instance label, since
// internal signals and nested instances are named relative to that label,
// not to the entity/architecture annotation).
func (e *Elaborator) elaborateInstance(inst *tree.Node, sc scope) {
	entityID := inst.GetIdent2()
	entity, err := e.lookupEntity(entityID)
	if err != nil {
		e.fatal("instance %q: %s", ident.Text(inst.GetIdent()), err)
		return
	}
	arch, err := e.lib.PickArch(entityID)
	if err != nil {
		e.fatal("instance %q: %s", ident.Text(inst.GetIdent()), err)
		return
	}

	ports, generics, archCopy := e.expandArchitecture(entity, arch)

	archCopy, entries := e.bindPorts(inst, ports, entity.Ports0(), archCopy)
	archCopy = e.bindGenerics(inst, generics, entity.Generics0(), archCopy)

	for _, c := range entity.GetContext() {
		e.out.AddContext(c)
	}

	childInst := hpathf(sc.inst, '@', "%s(%s)",
		ident.Text(simpleName(entity.GetIdent())), ident.Text(simpleName(archCopy.GetIdent())))

	contexts := append(append([]ident.ID(nil), archCopy.GetContext()...), entity.GetContext()...)
	archCopy = e.rebindPackageFunctions(archCopy, contexts)
	e.simplifier.Simplify(archCopy)

	e.wireNets(entries)

	e.finishArchitecture(entity, archCopy, scope{path: sc.path, inst: childInst})
}
