package elaborate

import (
	"github.com/nvchdl/velab/internal/tree"
	"github.com/nvchdl/velab/internal/types"
)

// shouldCopyArch is the predicate internal/tree.CopyIn uses when expanding
// an architecture for one elaboration site: every SIGNAL_DECL, VAR_DECL,
// GENVAR and PORT_DECL gets its own fresh identity (it is about to be
// renamed and net-assigned independently per instance), and so does any
// array-typed CONST_DECL (a constant whose elements might later be
// individually net-wired or indexed). Everything else — types, scalar
// constants, statements, subprogram bodies — is shared by pointer as long
// as nothing beneath it needed copying.
func shouldCopyArch(n *tree.Node) bool {
	switch n.Kind {
	case tree.SIGNAL_DECL, tree.VAR_DECL, tree.GENVAR, tree.PORT_DECL:
		return true
	case tree.CONST_DECL:
		return isArrayType(n.GetType())
	default:
		return false
	}
}

func isArrayType(t types.Type) bool {
	switch v := t.(type) {
	case *types.CArrayType, *types.UArrayType:
		return true
	case *types.SubtypeType:
		return isArrayType(v.Base)
	default:
		return false
	}
}

// expandArchitecture produces an independent copy of arch for one
// elaboration site, together with copies of entity's ports and generics
// that share the SAME copy-on-write identities as any reference to them
// reachable from arch's statements and declarations.
//
// This package's tree IR decouples an ARCH node from its ENTITY by name
// (ARCH.Ident2) rather than by a direct node pointer, so — unlike a tree
// where the architecture holds a literal pointer to its entity and a
// single predicate-driven copy of the architecture would naturally reach
// the entity's ports too — a plain CopyIn(store, arch, shouldCopyArch)
// would never see the entity's ports at all, and any REF inside arch
// pointing at one of them would be left referring to the pristine,
// library-owned original. To get the same single shared copy-on-write
// memo the original implementation gets for free from that direct
// pointer, entity's ports and generics are bundled into arch's own copy
// call: a scratch BLOCK node holds all three as its declarations, one
// CopyIn call processes the bundle, and the three pieces are pulled back
// out by position.
func (e *Elaborator) expandArchitecture(entity, arch *tree.Node) (ports, generics []*tree.Node, archCopy *tree.Node) {
	origPorts := entity.Ports0()
	origGenerics := entity.Generics0()

	bundle := e.store.New(tree.BLOCK)
	bundle.SetIdent(entity.GetIdent())
	for _, p := range origPorts {
		bundle.AddDecl(p)
	}
	for _, g := range origGenerics {
		bundle.AddDecl(g)
	}
	bundle.AddDecl(arch)

	copied := tree.CopyIn(e.store, bundle, shouldCopyArch)

	decls := copied.Decls0()
	ports = decls[:len(origPorts)]
	generics = decls[len(origPorts) : len(origPorts)+len(origGenerics)]
	archCopy = decls[len(origPorts)+len(origGenerics)]
	return ports, generics, archCopy
}

// freshClone returns a shallow, exclusively-owned clone of n: everything
// n points to is shared, but n itself is a brand new node nothing else
// holds a reference to yet, so its own slots can be mutated directly.
func freshClone(s *tree.Store, n *tree.Node) *tree.Node {
	return tree.CopyIn(s, n, func(x *tree.Node) bool { return x == n })
}
