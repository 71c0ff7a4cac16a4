package tree

// walkChildren invokes each on every immediate child slot of n, in the
// field order spec §4.2.2 specifies: ports, generics, params, decls,
// stmts, value, delay, target, ref, severity, message, then (for
// AGGREGATE) each assoc's name and value.
// Type descriptors are not tree nodes (they live in internal/types' own
// reference-counted graph) and so are not walked here.
func walkChildren(n *Node, each func(*Node)) {
	for _, c := range n.Ports {
		each(c)
	}
	for _, c := range n.Generics {
		each(c)
	}
	for _, c := range n.Params {
		each(c)
	}
	for _, c := range n.Decls {
		each(c)
	}
	for _, c := range n.Stmts {
		each(c)
	}
	if n.Value != nil {
		each(n.Value)
	}
	if n.Delay != nil {
		each(n.Delay)
	}
	if n.Target != nil {
		each(n.Target)
	}
	if n.Ref != nil {
		each(n.Ref)
	}
	if n.Severity != nil {
		each(n.Severity)
	}
	if n.Message != nil {
		each(n.Message)
	}
	for _, a := range n.Assocs {
		if a.Name != nil {
			each(a.Name)
		}
		if a.Value != nil {
			each(a.Value)
		}
	}
}

// VisitFunc is the callback invoked post-order by Visit.
type VisitFunc func(n *Node, ctx any)

// Visit performs the generation-guarded DFS of spec §4.2.2: it bumps a
// fresh generation, descends depth-first through every child slot, skips
// any node already tagged with the current generation (so shared subtrees
// cost O(nodes) total, not O(paths)), and invokes fn post-order. It
// returns the number of distinct nodes visited.
func Visit(root *Node, fn VisitFunc, ctx any) int {
	return VisitIn(defaultStore, root, fn, ctx)
}

// VisitIn is Visit against an explicit store, for tests that want
// isolation from the process-global default store.
func VisitIn(s *Store, root *Node, fn VisitFunc, ctx any) int {
	if root == nil {
		return 0
	}
	gen := s.nextGeneration()
	count := 0
	var walk func(n *Node)
	walk = func(n *Node) {
		if n == nil || n.gen == gen {
			return
		}
		n.gen = gen
		walkChildren(n, walk)
		fn(n, ctx)
		count++
	}
	walk(root)
	return count
}
