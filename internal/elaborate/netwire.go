package elaborate

import (
	"github.com/nvchdl/velab/internal/diag"
	"github.com/nvchdl/velab/internal/tree"
	"github.com/nvchdl/velab/internal/types"
)

// mapEntry records one whole-port or sub-element port association still
// needing its nets wired, deferred until after function rebinding and
// simplification have run over the bound architecture (mirroring the
// original port-to-net pass, which must see the fully substituted tree
// before it can resolve net ids through it).
type mapEntry struct {
	formalType types.Type // the formal port's own declared type (bounds for sub-element offsets)
	signal     *tree.Node // the SIGNAL_DECL now standing in for the formal inside the expanded scope
	actual     *tree.Node
	index      int64 // sub-element index, meaningful only when hasSub
	hasSub     bool
}

// portToSignal returns the signal that will stand in for formal inside
// arch: an existing declaration of the same name if arch already has one
// (a second association against the same formal, e.g. two sub-element
// bindings of one array port), or a freshly allocated SIGNAL_DECL typed
// by actualType — the actual's type, not the formal's, so an unconstrained
// formal port takes on whatever width the actual connection supplies.
func (e *Elaborator) portToSignal(arch, formal *tree.Node, actualType types.Type) *tree.Node {
	for _, d := range arch.Decls0() {
		if d.Kind == tree.SIGNAL_DECL && d.GetIdent() == formal.GetIdent() {
			return d
		}
	}
	s := e.store.New(tree.SIGNAL_DECL)
	s.SetIdent(formal.GetIdent())
	s.SetType(actualType)
	arch.AddDecl(s)
	return s
}

// exprType returns the type of expr for width/bounds purposes: a REF's
// own Kind carries no Type slot (see kindFlags), so its type is the
// referenced declaration's; every other expression kind carries its own.
func exprType(n *tree.Node) types.Type {
	if n.Kind == tree.REF {
		return n.GetRef().GetType()
	}
	return n.GetType()
}

func elemTypeOf(t types.Type) types.Type {
	switch v := t.(type) {
	case *types.CArrayType:
		return v.Elem
	case *types.UArrayType:
		return v.Elem
	case *types.SubtypeType:
		return elemTypeOf(v.Base)
	default:
		diag.Internalf("elaborate", "elemTypeOf: %s is not an array type", t.Kind())
		return nil
	}
}

func assumeInt(n *tree.Node) int64 {
	if n.Kind != tree.LITERAL || !n.GetLiteral().IsInt {
		diag.Internalf("elaborate", "assumeInt: %s is not a constant-folded integer literal", n.Kind)
	}
	return n.GetLiteral().Int
}

// getNet resolves the n-th scalar net of expr, recursing through
// ARRAY_REF/ARRAY_SLICE index and slice arithmetic down to the bare
// REF whose declaration actually owns a Nets array.
func (e *Elaborator) getNet(expr *tree.Node, n int) uint32 {
	switch expr.Kind {
	case tree.REF:
		return expr.GetRef().GetNets()[n]
	case tree.ARRAY_REF:
		value := expr.GetValue()
		low, ok := types.RangeBounds(exprType(value))
		if !ok {
			diag.Internalf("elaborate", "getNet: array reference without constant bounds")
		}
		idx := assumeInt(expr.Params0()[0]) - low.Low
		return e.getNet(value, n+int(idx))
	case tree.ARRAY_SLICE:
		value := expr.GetValue()
		sliceLow, ok1 := types.RangeBounds(expr.GetType())
		typeLow, ok2 := types.RangeBounds(exprType(value))
		if !ok1 || !ok2 {
			diag.Internalf("elaborate", "getNet: array slice without constant bounds")
		}
		return e.getNet(value, n-int(typeLow.Low)+int(sliceLow.Low))
	default:
		diag.Internalf("elaborate", "getNet: unexpected expression kind %s", expr.Kind)
		return 0
	}
}

// wireNets applies every deferred port association's net wiring: whole-
// port associations append one net per scalar (checking width unless the
// formal is an unconstrained array, which simply inherits the actual's
// width); sub-element associations mutate an existing signal's nets at
// the computed element offset instead of appending.
func (e *Elaborator) wireNets(entries []mapEntry) {
	for _, m := range entries {
		actualWidth := int(types.Width(exprType(m.actual)))

		if !m.hasSub {
			ftype := m.formalType
			if !types.IsUnconstrainedArray(ftype) {
				fwidth := int(types.Width(ftype))
				if fwidth != actualWidth {
					if e.cfg != nil && e.cfg.RelaxedElab {
						e.diagnostic(m.actual.Loc, "actual width %d does not match formal width %d", actualWidth, fwidth)
						continue
					}
					e.fatal("actual width %d does not match formal width %d", actualWidth, fwidth)
					continue
				}
			}
			for i := 0; i < actualWidth; i++ {
				m.signal.AddNet(e.getNet(m.actual, i))
			}
			continue
		}

		elemType := elemTypeOf(m.formalType)
		width := int(types.Width(elemType))
		if width != actualWidth {
			e.diagnostic(m.actual.Loc, "actual width %d does not match formal element width %d", actualWidth, width)
			continue
		}
		low, ok := types.RangeBounds(m.formalType)
		if !ok {
			diag.Internalf("elaborate", "wireNets: sub-element formal without constant bounds")
		}
		offset := int(m.index-low.Low) * width
		nets := m.signal.GetNets()
		for i := 0; i < width; i++ {
			nets[offset+i] = e.getNet(m.actual, i)
		}
	}
}

// allocSignalNets assigns width(type) fresh net ids to a plain declared
// signal. Signals that already carry nets (because a port association
// already filled them in) are left alone.
func (e *Elaborator) allocSignalNets(d *tree.Node) {
	if len(d.GetNets()) != 0 {
		return
	}
	width := int(types.Width(d.GetType()))
	for i := 0; i < width; i++ {
		d.AddNet(e.nextNet)
		e.nextNet++
	}
}
