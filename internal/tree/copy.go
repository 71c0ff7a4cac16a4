package tree

import "github.com/nvchdl/velab/internal/ident"

// Copy performs the structure-sharing deep clone of spec §4.2.4: the
// predicate decides which nodes get a genuinely fresh identity (the
// elaborator's should-copy predicate flags SIGNAL_DECL/VAR_DECL/GENVAR/
// PORT_DECL/array-CONST_DECL, spec §4.5.3); every other node is reused by
// pointer as long as nothing beneath it changed. A node whose subtree
// contains a cloned descendant still needs a new shell to hold the
// updated child slot (it cannot point at both the original and the clone
// at once), so such containers are copy-on-write reconstructed even
// though the predicate itself says "share" for them — this is what keeps
// the back-reference invariant ("the copy of X refers to the copy of Y
// when Y was cloned, else to the original Y") true uniformly, not just
// for the predicate-true nodes themselves.
func Copy(root *Node, predicate func(*Node) bool) *Node {
	return CopyIn(defaultStore, root, predicate)
}

// CopyIn is Copy against an explicit store, so freshly minted clones are
// tracked by the same allocator a later GC will sweep.
func CopyIn(s *Store, root *Node, predicate func(*Node) bool) *Node {
	c := &copier{store: s, predicate: predicate, memo: make(map[*Node]*Node)}
	result, _ := c.apply(root)
	return result
}

type copier struct {
	store     *Store
	predicate func(*Node) bool
	memo      map[*Node]*Node
}

func (c *copier) apply(n *Node) (*Node, bool) {
	if n == nil {
		return nil, false
	}
	if cached, ok := c.memo[n]; ok {
		return cached, cached != n
	}

	newPorts, portsChanged := c.applyArray(n.Ports)
	newGenerics, genericsChanged := c.applyArray(n.Generics)
	newParams, paramsChanged := c.applyArray(n.Params)
	newDecls, declsChanged := c.applyArray(n.Decls)
	newStmts, stmtsChanged := c.applyArray(n.Stmts)
	newValue, valueChanged := c.apply(n.Value)
	newDelay, delayChanged := c.apply(n.Delay)
	newTarget, targetChanged := c.apply(n.Target)
	newRef, refChanged := c.apply(n.Ref)
	newSeverity, sevChanged := c.apply(n.Severity)
	newMessage, msgChanged := c.apply(n.Message)
	newAssocs, assocsChanged := c.applyAssocs(n.Assocs)

	descendantChanged := portsChanged || genericsChanged || paramsChanged || declsChanged ||
		stmtsChanged || valueChanged || delayChanged || targetChanged || refChanged ||
		sevChanged || msgChanged || assocsChanged

	if !c.predicate(n) && !descendantChanged {
		c.memo[n] = n
		return n, false
	}

	clone := newBareNode(n.Kind)
	clone.Loc = n.Loc
	clone.Ident, clone.Ident2 = n.Ident, n.Ident2
	if n.Type != nil {
		clone.Type = n.Type.Retain()
	}
	clone.Literal = n.Literal
	clone.PortMode = n.PortMode
	clone.EnumPos = n.EnumPos
	if n.Context != nil {
		clone.Context = append([]ident.ID(nil), n.Context...)
	}
	if n.Nets != nil {
		clone.Nets = append([]uint32(nil), n.Nets...)
	}
	if n.attrs != nil {
		clone.attrs = make(map[ident.ID]attrValue, len(n.attrs))
		for k, v := range n.attrs {
			clone.attrs[k] = v
		}
	}
	clone.Ports, clone.Generics, clone.Params = newPorts, newGenerics, newParams
	clone.Decls, clone.Stmts = newDecls, newStmts
	clone.Value, clone.Delay, clone.Target = newValue, newDelay, newTarget
	clone.Ref, clone.Severity, clone.Message = newRef, newSeverity, newMessage
	clone.Assocs = newAssocs

	c.memo[n] = clone
	c.store.register(clone)
	return clone, true
}

func (c *copier) applyArray(children []*Node) ([]*Node, bool) {
	if len(children) == 0 {
		return children, false
	}
	changed := false
	out := make([]*Node, len(children))
	for i, ch := range children {
		res, didChange := c.apply(ch)
		out[i] = res
		changed = changed || didChange
	}
	if !changed {
		return children, false
	}
	return out, true
}

func (c *copier) applyAssocs(assocs []Assoc) ([]Assoc, bool) {
	if len(assocs) == 0 {
		return assocs, false
	}
	changed := false
	out := make([]Assoc, len(assocs))
	for i, a := range assocs {
		name, nameChanged := c.apply(a.Name)
		value, valueChanged := c.apply(a.Value)
		out[i] = Assoc{Kind: a.Kind, Name: name, Value: value}
		changed = changed || nameChanged || valueChanged
	}
	if !changed {
		return assocs, false
	}
	return out, true
}
