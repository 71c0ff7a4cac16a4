package tree

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/nvchdl/velab/internal/ident"
	"github.com/nvchdl/velab/internal/types"
)

// tagNull and tagBackref are the two reserved 16-bit markers spec §4.2.5
// prescribes ahead of every node/identifier/type slot in the stream: a
// real kind or a real back-reference index never collides with either,
// since the tagged union has far fewer than 0xFFFE variants.
const (
	tagNull    uint16 = 0xFFFF
	tagBackref uint16 = 0xFFFE
)

// Serialize writes root and everything reachable from it to w in the
// binary discipline of spec §4.2.5: null slots as tagNull, already-emitted
// nodes as tagBackref plus a back-reference index, fresh nodes as their
// kind followed by their legal slots in field order. Identifiers and types
// get their own back-reference tables within the same stream, so a type
// shared by a hundred SIGNAL_DECLs is only written out once.
func Serialize(w io.Writer, root *Node) error {
	e := &encoder{w: w,
		nodeIdx:  make(map[*Node]uint32),
		identIdx: make(map[ident.ID]uint32),
		typeIdx:  make(map[types.Type]uint32),
	}
	e.encodeNode(root)
	return e.err
}

// Deserialize reads a stream written by Serialize, allocating every node
// through s so the result is tracked for GC like any other tree. It
// pre-registers each node's back-reference slot before reading that
// node's children (spec §4.2.5), so a stream containing a reference to an
// ancestor still under construction resolves correctly.
func Deserialize(r io.Reader, s *Store) (*Node, error) {
	d := &decoder{r: r, store: s}
	n := d.decodeNode()
	if d.err != nil {
		return nil, d.err
	}
	return n, nil
}

// --- encoder ---

type encoder struct {
	w        io.Writer
	err      error
	nodeIdx  map[*Node]uint32
	identIdx map[ident.ID]uint32
	typeIdx  map[types.Type]uint32
}

func (e *encoder) write(b []byte) {
	if e.err != nil {
		return
	}
	_, e.err = e.w.Write(b)
}

func (e *encoder) u8(v uint8) { e.write([]byte{v}) }

func (e *encoder) bool(v bool) {
	if v {
		e.u8(1)
	} else {
		e.u8(0)
	}
}

func (e *encoder) u16(v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	e.write(b[:])
}

func (e *encoder) u32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	e.write(b[:])
}

func (e *encoder) i64(v int64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	e.write(b[:])
}

func (e *encoder) str(s string) {
	e.u32(uint32(len(s)))
	e.write([]byte(s))
}

// encodeIdent writes id against the stream's identifier back-reference
// table, sharing the tagNull/tagBackref machinery with nodes and types
// (spec §4.2.5: "Identifiers and types have their own sub-contexts
// sharing the same back-reference machinery").
func (e *encoder) encodeIdent(id ident.ID) {
	if e.err != nil {
		return
	}
	if id == ident.Nil {
		e.u16(tagNull)
		return
	}
	if idx, ok := e.identIdx[id]; ok {
		e.u16(tagBackref)
		e.u32(idx)
		return
	}
	idx := uint32(len(e.identIdx))
	e.identIdx[id] = idx
	e.u16(0)
	e.str(ident.Text(id))
}

func (e *encoder) encodeRange(r types.Range) {
	e.i64(r.Low)
	e.i64(r.High)
}

// encodeType writes t against the stream's type back-reference table.
// Type kinds carry no cycles (a VHDL type can never refer to itself), so
// unlike encodeNode this can write a type's nested types before
// registering it — there is no forward reference to resolve.
func (e *encoder) encodeType(t types.Type) {
	if e.err != nil {
		return
	}
	if t == nil {
		e.u16(tagNull)
		return
	}
	if idx, ok := e.typeIdx[t]; ok {
		e.u16(tagBackref)
		e.u32(idx)
		return
	}
	e.u16(uint16(t.Kind()))
	switch v := t.(type) {
	case *types.IntegerType:
		e.encodeIdent(v.Name)
		e.encodeRange(v.Range)
	case *types.PhysicalType:
		e.encodeIdent(v.Name)
		e.encodeRange(v.Range)
		e.u32(uint32(len(v.Units)))
		for _, u := range v.Units {
			e.encodeIdent(u.Name)
			e.i64(u.Multiplier)
		}
	case *types.EnumType:
		e.encodeIdent(v.Name)
		e.u32(uint32(len(v.Literals)))
		for _, l := range v.Literals {
			e.encodeIdent(l)
		}
	case *types.CArrayType:
		e.encodeType(v.Elem)
		e.u32(uint32(len(v.Ranges)))
		for _, r := range v.Ranges {
			e.encodeRange(r)
		}
	case *types.UArrayType:
		e.encodeType(v.Elem)
		e.u32(uint32(len(v.IndexKinds)))
		for _, k := range v.IndexKinds {
			e.u8(uint8(k))
		}
	case *types.SubtypeType:
		e.encodeIdent(v.Name)
		e.encodeType(v.Base)
		e.u32(uint32(len(v.Constraint)))
		for _, r := range v.Constraint {
			e.encodeRange(r)
		}
	case *types.FuncType:
		e.u32(uint32(len(v.Params)))
		for _, p := range v.Params {
			e.encodeType(p)
		}
		e.encodeType(v.Result)
	case *types.UnresolvedType:
		// no further payload
	default:
		e.err = fmt.Errorf("tree: serialize: unknown type %T", t)
		return
	}
	e.typeIdx[t] = uint32(len(e.typeIdx))
}

func (e *encoder) encodeNode(n *Node) {
	if e.err != nil {
		return
	}
	if n == nil {
		e.u16(tagNull)
		return
	}
	if idx, ok := e.nodeIdx[n]; ok {
		e.u16(tagBackref)
		e.u32(idx)
		return
	}
	e.nodeIdx[n] = uint32(len(e.nodeIdx))

	e.u16(uint16(n.Kind))
	e.str(n.Loc.File)
	e.i64(int64(n.Loc.LineStart))
	e.i64(int64(n.Loc.LineEnd))
	e.i64(int64(n.Loc.ColumnStart))
	e.i64(int64(n.Loc.ColumnEnd))

	k := n.Kind
	if k.has(hasIdent) {
		e.encodeIdent(n.Ident)
	}
	if k.has(hasIdent2) {
		e.encodeIdent(n.Ident2)
	}
	if k.has(hasType) {
		e.encodeType(n.Type)
	}
	if k.has(hasPorts) {
		e.encodeNodeArray(n.Ports)
	}
	if k.has(hasGenerics) {
		e.encodeNodeArray(n.Generics)
	}
	if k.has(hasParams) {
		e.encodeNodeArray(n.Params)
	}
	if k.has(hasDecls) {
		e.encodeNodeArray(n.Decls)
	}
	if k.has(hasStmts) {
		e.encodeNodeArray(n.Stmts)
	}
	if k.has(hasValue) {
		e.encodeNode(n.Value)
	}
	if k.has(hasDelay) {
		e.encodeNode(n.Delay)
	}
	if k.has(hasTarget) {
		e.encodeNode(n.Target)
	}
	if k.has(hasRef) {
		e.encodeNode(n.Ref)
	}
	if k.has(hasSeverity) {
		e.encodeNode(n.Severity)
	}
	if k.has(hasMessage) {
		e.encodeNode(n.Message)
	}
	if k.has(hasLiteral) {
		e.bool(n.Literal.IsInt)
		e.i64(n.Literal.Int)
		e.str(n.Literal.Str)
	}
	if k.has(hasPortMode) {
		e.u8(uint8(n.PortMode))
	}
	if k.has(hasEnumPos) {
		e.i64(int64(n.EnumPos))
	}
	if k.has(hasAssocs) {
		e.u32(uint32(len(n.Assocs)))
		for _, a := range n.Assocs {
			e.u8(uint8(a.Kind))
			e.encodeNode(a.Name)
			e.encodeNode(a.Value)
		}
	}
	if k.has(hasContext) {
		e.u32(uint32(len(n.Context)))
		for _, lib := range n.Context {
			e.encodeIdent(lib)
		}
	}
	if k.has(hasNets) {
		e.u32(uint32(len(n.Nets)))
		for _, net := range n.Nets {
			e.u32(net)
		}
	}

	keys := n.attrKeys()
	e.u32(uint32(len(keys)))
	for _, key := range keys {
		v := n.attrs[key]
		e.bool(v.isInt)
		e.encodeIdent(key)
		if v.isInt {
			e.i64(v.i)
		} else {
			e.str(v.str)
		}
	}
}

func (e *encoder) encodeNodeArray(children []*Node) {
	e.u32(uint32(len(children)))
	for _, c := range children {
		e.encodeNode(c)
	}
}

// --- decoder ---

type decoder struct {
	r        io.Reader
	err      error
	store    *Store
	nodes    []*Node
	idents   []ident.ID
	types    []types.Type
}

func (d *decoder) read(b []byte) {
	if d.err != nil {
		return
	}
	_, d.err = io.ReadFull(d.r, b)
}

func (d *decoder) u8() uint8 {
	var b [1]byte
	d.read(b[:])
	return b[0]
}

func (d *decoder) boolean() bool { return d.u8() != 0 }

func (d *decoder) u16() uint16 {
	var b [2]byte
	d.read(b[:])
	return binary.BigEndian.Uint16(b[:])
}

func (d *decoder) u32() uint32 {
	var b [4]byte
	d.read(b[:])
	return binary.BigEndian.Uint32(b[:])
}

func (d *decoder) i64() int64 {
	var b [8]byte
	d.read(b[:])
	return int64(binary.BigEndian.Uint64(b[:]))
}

func (d *decoder) str() string {
	n := d.u32()
	if d.err != nil {
		return ""
	}
	b := make([]byte, n)
	d.read(b)
	return string(b)
}

func (d *decoder) decodeIdent() ident.ID {
	tag := d.u16()
	if d.err != nil {
		return ident.Nil
	}
	switch tag {
	case tagNull:
		return ident.Nil
	case tagBackref:
		idx := d.u32()
		if int(idx) >= len(d.idents) {
			d.err = fmt.Errorf("tree: deserialize: identifier back-reference %d out of range", idx)
			return ident.Nil
		}
		return d.idents[idx]
	default:
		id := ident.New(d.str())
		d.idents = append(d.idents, id)
		return id
	}
}

func (d *decoder) decodeRange() types.Range {
	low := d.i64()
	high := d.i64()
	return types.Range{Low: low, High: high}
}

func (d *decoder) decodeType() types.Type {
	tag := d.u16()
	if d.err != nil {
		return nil
	}
	switch tag {
	case tagNull:
		return nil
	case tagBackref:
		idx := d.u32()
		if int(idx) >= len(d.types) {
			d.err = fmt.Errorf("tree: deserialize: type back-reference %d out of range", idx)
			return nil
		}
		return d.types[idx]
	}

	var t types.Type
	switch types.Kind(tag) {
	case types.Integer:
		name := d.decodeIdent()
		r := d.decodeRange()
		t = types.NewInteger(name, r)
	case types.Physical:
		name := d.decodeIdent()
		r := d.decodeRange()
		n := d.u32()
		units := make([]types.PhysicalUnit, n)
		for i := range units {
			units[i].Name = d.decodeIdent()
			units[i].Multiplier = d.i64()
		}
		t = types.NewPhysical(name, r, units)
	case types.Enum:
		name := d.decodeIdent()
		n := d.u32()
		lits := make([]ident.ID, n)
		for i := range lits {
			lits[i] = d.decodeIdent()
		}
		t = types.NewEnum(name, lits)
	case types.CArray:
		elem := d.decodeType()
		n := d.u32()
		ranges := make([]types.Range, n)
		for i := range ranges {
			ranges[i] = d.decodeRange()
		}
		if d.err == nil {
			t = types.NewCArray(elem, ranges)
		}
	case types.UArray:
		elem := d.decodeType()
		n := d.u32()
		kinds := make([]types.Kind, n)
		for i := range kinds {
			kinds[i] = types.Kind(d.u8())
		}
		if d.err == nil {
			t = types.NewUArray(elem, kinds)
		}
	case types.Subtype:
		name := d.decodeIdent()
		base := d.decodeType()
		n := d.u32()
		constraint := make([]types.Range, n)
		for i := range constraint {
			constraint[i] = d.decodeRange()
		}
		if d.err == nil {
			t = types.NewSubtype(name, base, constraint)
		}
	case types.Func:
		n := d.u32()
		params := make([]types.Type, n)
		for i := range params {
			params[i] = d.decodeType()
		}
		result := d.decodeType()
		if d.err == nil {
			t = types.NewFunc(params, result)
		}
	case types.Unresolved:
		t = types.NewUnresolved()
	default:
		d.err = fmt.Errorf("tree: deserialize: unknown type kind %d", tag)
		return nil
	}
	if t != nil {
		d.types = append(d.types, t)
	}
	return t
}

func (d *decoder) decodeNode() *Node {
	tag := d.u16()
	if d.err != nil {
		return nil
	}
	switch tag {
	case tagNull:
		return nil
	case tagBackref:
		idx := d.u32()
		if int(idx) >= len(d.nodes) {
			d.err = fmt.Errorf("tree: deserialize: node back-reference %d out of range", idx)
			return nil
		}
		return d.nodes[idx]
	}
	if tag >= uint16(numKinds) {
		d.err = fmt.Errorf("tree: deserialize: unknown node kind %d", tag)
		return nil
	}

	n := d.store.New(Kind(tag))
	// Register before reading children, so a back-reference further down
	// this same stream that targets n resolves to the node under
	// construction rather than recursing forever (spec §4.2.5).
	d.nodes = append(d.nodes, n)

	n.Loc.File = d.str()
	n.Loc.LineStart = int(d.i64())
	n.Loc.LineEnd = int(d.i64())
	n.Loc.ColumnStart = int(d.i64())
	n.Loc.ColumnEnd = int(d.i64())

	k := n.Kind
	if k.has(hasIdent) {
		n.Ident = d.decodeIdent()
	}
	if k.has(hasIdent2) {
		n.Ident2 = d.decodeIdent()
	}
	if k.has(hasType) {
		n.Type = d.decodeType()
	}
	if k.has(hasPorts) {
		n.Ports = d.decodeNodeArray()
	}
	if k.has(hasGenerics) {
		n.Generics = d.decodeNodeArray()
	}
	if k.has(hasParams) {
		n.Params = d.decodeNodeArray()
	}
	if k.has(hasDecls) {
		n.Decls = d.decodeNodeArray()
	}
	if k.has(hasStmts) {
		n.Stmts = d.decodeNodeArray()
	}
	if k.has(hasValue) {
		n.Value = d.decodeNode()
	}
	if k.has(hasDelay) {
		n.Delay = d.decodeNode()
	}
	if k.has(hasTarget) {
		n.Target = d.decodeNode()
	}
	if k.has(hasRef) {
		n.Ref = d.decodeNode()
	}
	if k.has(hasSeverity) {
		n.Severity = d.decodeNode()
	}
	if k.has(hasMessage) {
		n.Message = d.decodeNode()
	}
	if k.has(hasLiteral) {
		n.Literal.IsInt = d.boolean()
		n.Literal.Int = d.i64()
		n.Literal.Str = d.str()
	}
	if k.has(hasPortMode) {
		n.PortMode = PortMode(d.u8())
	}
	if k.has(hasEnumPos) {
		n.EnumPos = int(d.i64())
	}
	if k.has(hasAssocs) {
		count := d.u32()
		n.Assocs = make([]Assoc, count)
		for i := range n.Assocs {
			n.Assocs[i].Kind = AssocKind(d.u8())
			n.Assocs[i].Name = d.decodeNode()
			n.Assocs[i].Value = d.decodeNode()
		}
	}
	if k.has(hasContext) {
		count := d.u32()
		n.Context = make([]ident.ID, count)
		for i := range n.Context {
			n.Context[i] = d.decodeIdent()
		}
	}
	if k.has(hasNets) {
		count := d.u32()
		n.Nets = make([]uint32, count)
		for i := range n.Nets {
			n.Nets[i] = d.u32()
		}
	}

	attrCount := d.u32()
	for i := uint32(0); i < attrCount; i++ {
		isInt := d.boolean()
		key := d.decodeIdent()
		if isInt {
			n.AddAttrInt(key, d.i64())
		} else {
			n.AddAttrStr(key, d.str())
		}
	}

	if d.err != nil {
		return nil
	}
	return n
}

func (d *decoder) decodeNodeArray() []*Node {
	n := d.u32()
	if d.err != nil || n == 0 {
		return nil
	}
	out := make([]*Node, n)
	for i := range out {
		out[i] = d.decodeNode()
	}
	return out
}
