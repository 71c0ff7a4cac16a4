package tree

import "sync"

// Store is the process-global (or, in tests, per-case) tree allocator
// described in spec §3.4/§4.2.6: every node New'd through a Store is
// tracked so a later GC can sweep whatever is unreachable from the
// caller-supplied roots.
type Store struct {
	mu         sync.Mutex
	nodes      []*Node
	generation uint64
}

// NewStore returns a fresh, empty allocator. Most callers use the
// package-level default store (New, GC); tests that want isolation from
// other tests' allocations can construct their own.
func NewStore() *Store {
	return &Store{}
}

var defaultStore = NewStore()

// DefaultStore returns the process-global store used by New and GC.
func DefaultStore() *Store { return defaultStore }

// New allocates a zero-initialized node of kind k and registers it with s.
func (s *Store) New(k Kind) *Node {
	n := newBareNode(k)
	s.mu.Lock()
	s.nodes = append(s.nodes, n)
	s.mu.Unlock()
	return n
}

// register tracks an already-constructed node (used by Copy and Rewrite
// when they mint a fresh node outside of New) so a later GC still sees it.
func (s *Store) register(n *Node) {
	s.mu.Lock()
	s.nodes = append(s.nodes, n)
	s.mu.Unlock()
}

// Len reports how many live nodes the store currently tracks.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.nodes)
}

// nextGeneration bumps and returns the store's generation counter. Visit
// (visit.go) calls this once per top-level traversal; GC calls it once per
// sweep. Sharing the counter between the two means a GC mark-pass is just
// an ordinary Visit with a well-known post-order callback (§4.2.6: "A
// generation bump marks during a full visit").
func (s *Store) nextGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	return s.generation
}

// GC performs the mark-sweep described in spec §4.2.6: mark every node
// reachable from roots (which must be the currently-live top-level units:
// ENTITY/ARCH/PACKAGE/PACK_BODY/ELAB, per §3.4), then free and compact
// away everything else. Type references held by freed nodes are released.
func (s *Store) GC(roots ...*Node) (freed int) {
	gen := s.nextGeneration()
	for _, r := range roots {
		markReachable(r, gen)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.nodes[:0]
	for _, n := range s.nodes {
		if n.gen == gen {
			kept = append(kept, n)
			continue
		}
		freeNode(n)
		freed++
	}
	s.nodes = kept
	return freed
}

// markReachable tags every node reachable from root with gen, independent
// of Visit's own post-order callback dispatch, so GC's liveness marking is
// not coupled to whatever side effect a caller's Visit callback performs.
func markReachable(root *Node, gen uint64) {
	if root == nil || root.gen == gen {
		return
	}
	root.gen = gen
	walkChildren(root, func(c *Node) { markReachable(c, gen) })
}

func freeNode(n *Node) {
	if n.Type != nil {
		n.Type.Release()
		n.Type = nil
	}
	n.Ports, n.Generics, n.Params, n.Decls, n.Stmts = nil, nil, nil, nil, nil
	n.Value, n.Delay, n.Target, n.Ref, n.Severity, n.Message = nil, nil, nil, nil, nil, nil
	n.Assocs = nil
	n.Context = nil
	n.Nets = nil
	n.attrs = nil
}

// GC sweeps the default store, rooted at roots (spec §4.2.6).
func GC(roots ...*Node) int { return defaultStore.GC(roots...) }
