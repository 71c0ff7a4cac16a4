package tree

import (
	"fmt"

	"github.com/nvchdl/velab/internal/ident"
	"github.com/nvchdl/velab/internal/types"
)

// Loc is a source location: a file plus a line/column range, carried by
// every node (spec §3.2) for diagnostics.
type Loc struct {
	File             string
	LineStart, LineEnd     int
	ColumnStart, ColumnEnd int
}

// PortMode is the direction of a PORT_DECL.
type PortMode uint8

const (
	ModeIn PortMode = iota
	ModeOut
	ModeInout
	ModeBuffer
	ModeLinkage
)

// AssocKind identifies the shape of one AGGREGATE association (spec §3.2).
type AssocKind uint8

const (
	AssocPositional AssocKind = iota
	AssocNamed
	AssocRange
	AssocOthers
)

// Assoc is one association of an AGGREGATE.
type Assoc struct {
	Kind  AssocKind
	Name  *Node // formal name or choice, nil for AssocPositional/AssocOthers
	Value *Node
}

// Literal is the kind-conditional scalar payload of a LITERAL node.
type Literal struct {
	IsInt bool
	Int   int64
	Str   string // string/bit-string literal text, or the textual form of a real
}

// attrValue is one entry of a node's key->value attribute bag (spec §3.2,
// §4.2.5). The original C implementation bounds this bag to 16 entries
// because it is a fixed-size array in a fixed-size struct; a Go map has no
// such constraint, so the cap is not reproduced here.
type attrValue struct {
	isInt bool
	str   string
	i     int64
}

// Node is every tree IR node: one tagged struct carrying the union of all
// slots any kind might need (spec §3.2). Which slots are legal for a given
// node is determined by its Kind (see kind.go); accessors panic on illegal
// access, because that is a programming error, not a runtime condition
// (spec §4.2.1, §7 "internal error").
type Node struct {
	Kind Kind
	Loc  Loc

	Ident  ident.ID
	Ident2 ident.ID

	Type types.Type

	Ports, Generics, Params, Decls, Stmts []*Node

	Value, Delay, Target, Ref, Severity, Message *Node

	Literal  Literal
	PortMode PortMode
	EnumPos  int

	Assocs []Assoc

	Context []ident.ID

	Nets []uint32

	attrs map[ident.ID]attrValue

	gen         uint64 // visitor generation guard (§4.2.2)
	serialIndex int    // -1 until assigned during serialization/copy (§4.2.5)
}

func illegal(k Kind, slot string) {
	panic(fmt.Sprintf("tree: illegal access to slot %q on kind %s", slot, k))
}

// New allocates a zero-initialized node of the given kind and registers it
// with the default store for later GC (spec §4.2.1). Use Store.New
// directly when working with a non-default store (e.g. in tests that want
// an isolated arena).
func New(k Kind) *Node {
	return defaultStore.New(k)
}

func newBareNode(k Kind) *Node {
	return &Node{Kind: k, serialIndex: -1}
}

// --- identifier slots ---

func (n *Node) GetIdent() ident.ID {
	if !n.Kind.has(hasIdent) {
		illegal(n.Kind, "ident")
	}
	return n.Ident
}

func (n *Node) SetIdent(id ident.ID) *Node {
	if !n.Kind.has(hasIdent) {
		illegal(n.Kind, "ident")
	}
	n.Ident = id
	return n
}

func (n *Node) GetIdent2() ident.ID {
	if !n.Kind.has(hasIdent2) {
		illegal(n.Kind, "ident2")
	}
	return n.Ident2
}

func (n *Node) SetIdent2(id ident.ID) *Node {
	if !n.Kind.has(hasIdent2) {
		illegal(n.Kind, "ident2")
	}
	n.Ident2 = id
	return n
}

// --- type slot ---

func (n *Node) GetType() types.Type {
	if !n.Kind.has(hasType) {
		illegal(n.Kind, "type")
	}
	return n.Type
}

func (n *Node) SetType(t types.Type) *Node {
	if !n.Kind.has(hasType) {
		illegal(n.Kind, "type")
	}
	if n.Type != nil {
		n.Type.Release()
	}
	n.Type = t.Retain()
	return n
}

// --- child array slots ---

func (n *Node) checkArray(f slotFlags, slot string) {
	if !n.Kind.has(f) {
		illegal(n.Kind, slot)
	}
}

func (n *Node) Ports0() []*Node    { n.checkArray(hasPorts, "ports"); return n.Ports }
func (n *Node) AddPort(p *Node)    { n.checkArray(hasPorts, "ports"); n.Ports = append(n.Ports, p) }
func (n *Node) Generics0() []*Node { n.checkArray(hasGenerics, "generics"); return n.Generics }
func (n *Node) AddGeneric(p *Node) {
	n.checkArray(hasGenerics, "generics")
	n.Generics = append(n.Generics, p)
}
func (n *Node) Params0() []*Node { n.checkArray(hasParams, "params"); return n.Params }
func (n *Node) AddParam(p *Node) { n.checkArray(hasParams, "params"); n.Params = append(n.Params, p) }
func (n *Node) Decls0() []*Node  { n.checkArray(hasDecls, "decls"); return n.Decls }
func (n *Node) AddDecl(d *Node)  { n.checkArray(hasDecls, "decls"); n.Decls = append(n.Decls, d) }
func (n *Node) Stmts0() []*Node  { n.checkArray(hasStmts, "stmts"); return n.Stmts }
func (n *Node) AddStmt(s *Node)  { n.checkArray(hasStmts, "stmts"); n.Stmts = append(n.Stmts, s) }

// --- single-child slots ---

func (n *Node) GetValue() *Node {
	if !n.Kind.has(hasValue) {
		illegal(n.Kind, "value")
	}
	return n.Value
}
func (n *Node) SetValue(v *Node) *Node {
	if !n.Kind.has(hasValue) {
		illegal(n.Kind, "value")
	}
	n.Value = v
	return n
}

func (n *Node) GetDelay() *Node {
	if !n.Kind.has(hasDelay) {
		illegal(n.Kind, "delay")
	}
	return n.Delay
}
func (n *Node) SetDelay(v *Node) *Node {
	if !n.Kind.has(hasDelay) {
		illegal(n.Kind, "delay")
	}
	n.Delay = v
	return n
}

func (n *Node) GetTarget() *Node {
	if !n.Kind.has(hasTarget) {
		illegal(n.Kind, "target")
	}
	return n.Target
}
func (n *Node) SetTarget(v *Node) *Node {
	if !n.Kind.has(hasTarget) {
		illegal(n.Kind, "target")
	}
	n.Target = v
	return n
}

func (n *Node) GetRef() *Node {
	if !n.Kind.has(hasRef) {
		illegal(n.Kind, "ref")
	}
	return n.Ref
}
func (n *Node) SetRef(v *Node) *Node {
	if !n.Kind.has(hasRef) {
		illegal(n.Kind, "ref")
	}
	n.Ref = v
	return n
}

func (n *Node) GetSeverity() *Node {
	if !n.Kind.has(hasSeverity) {
		illegal(n.Kind, "severity")
	}
	return n.Severity
}
func (n *Node) SetSeverity(v *Node) *Node {
	if !n.Kind.has(hasSeverity) {
		illegal(n.Kind, "severity")
	}
	n.Severity = v
	return n
}

func (n *Node) GetMessage() *Node {
	if !n.Kind.has(hasMessage) {
		illegal(n.Kind, "message")
	}
	return n.Message
}
func (n *Node) SetMessage(v *Node) *Node {
	if !n.Kind.has(hasMessage) {
		illegal(n.Kind, "message")
	}
	n.Message = v
	return n
}

// --- kind-specific scalars ---

func (n *Node) GetLiteral() Literal {
	if !n.Kind.has(hasLiteral) {
		illegal(n.Kind, "literal")
	}
	return n.Literal
}
func (n *Node) SetLiteral(l Literal) *Node {
	if !n.Kind.has(hasLiteral) {
		illegal(n.Kind, "literal")
	}
	n.Literal = l
	return n
}

func (n *Node) GetPortMode() PortMode {
	if !n.Kind.has(hasPortMode) {
		illegal(n.Kind, "port_mode")
	}
	return n.PortMode
}
func (n *Node) SetPortMode(m PortMode) *Node {
	if !n.Kind.has(hasPortMode) {
		illegal(n.Kind, "port_mode")
	}
	n.PortMode = m
	return n
}

func (n *Node) GetEnumPos() int {
	if !n.Kind.has(hasEnumPos) {
		illegal(n.Kind, "enum_pos")
	}
	return n.EnumPos
}
func (n *Node) SetEnumPos(p int) *Node {
	if !n.Kind.has(hasEnumPos) {
		illegal(n.Kind, "enum_pos")
	}
	n.EnumPos = p
	return n
}

func (n *Node) GetAssocs() []Assoc {
	if !n.Kind.has(hasAssocs) {
		illegal(n.Kind, "assocs")
	}
	return n.Assocs
}
func (n *Node) AddAssoc(a Assoc) {
	if !n.Kind.has(hasAssocs) {
		illegal(n.Kind, "assocs")
	}
	n.Assocs = append(n.Assocs, a)
}

func (n *Node) GetContext() []ident.ID {
	if !n.Kind.has(hasContext) {
		illegal(n.Kind, "context")
	}
	return n.Context
}
func (n *Node) AddContext(lib ident.ID) {
	if !n.Kind.has(hasContext) {
		illegal(n.Kind, "context")
	}
	n.Context = append(n.Context, lib)
}

func (n *Node) GetNets() []uint32 {
	if !n.Kind.has(hasNets) {
		illegal(n.Kind, "nets")
	}
	return n.Nets
}
func (n *Node) SetNets(nets []uint32) *Node {
	if !n.Kind.has(hasNets) {
		illegal(n.Kind, "nets")
	}
	n.Nets = nets
	return n
}
func (n *Node) AddNet(id uint32) {
	if !n.Kind.has(hasNets) {
		illegal(n.Kind, "nets")
	}
	n.Nets = append(n.Nets, id)
}

// --- attribute bag (spec §3.2, §4.2.5) ---

func (n *Node) AddAttrStr(key ident.ID, value string) {
	if n.attrs == nil {
		n.attrs = make(map[ident.ID]attrValue)
	}
	n.attrs[key] = attrValue{isInt: false, str: value}
}

func (n *Node) AddAttrInt(key ident.ID, value int64) {
	if n.attrs == nil {
		n.attrs = make(map[ident.ID]attrValue)
	}
	n.attrs[key] = attrValue{isInt: true, i: value}
}

func (n *Node) AttrStr(key ident.ID) (string, bool) {
	v, ok := n.attrs[key]
	if !ok || v.isInt {
		return "", false
	}
	return v.str, true
}

func (n *Node) AttrInt(key ident.ID) (int64, bool) {
	v, ok := n.attrs[key]
	if !ok || !v.isInt {
		return 0, false
	}
	return v.i, true
}

// attrKeys returns the bag's keys in a deterministic order, for
// serialization (spec §4.2.5 "attribute bag: count, then entries").
func (n *Node) attrKeys() []ident.ID {
	keys := make([]ident.ID, 0, len(n.attrs))
	for k := range n.attrs {
		keys = append(keys, k)
	}
	// Sort for determinism (spec §5 determinism requirement extends
	// naturally to any externally observable serialized order).
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j] < keys[j-1]; j-- {
			keys[j], keys[j-1] = keys[j-1], keys[j]
		}
	}
	return keys
}
