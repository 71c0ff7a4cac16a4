package tree

import (
	"fmt"
	"io"

	"github.com/nvchdl/velab/internal/ident"
)

// Dump writes a recursive, indented, human-readable listing of n to w: one
// line per node giving its kind, identifier (if any), source location, and
// a short summary of its kind-specific payload, then its children at one
// extra indent level. This is read-only rendering of data already in the
// Tree IR's scope, the Go equivalent of the original debugger's tree dump
// used by its own `--dump` driver path.
func Dump(w io.Writer, n *Node) {
	dumpNode(w, n, 0, make(map[*Node]bool))
}

func dumpIndent(w io.Writer, depth int) {
	for i := 0; i < depth; i++ {
		io.WriteString(w, "  ")
	}
}

func dumpNode(w io.Writer, n *Node, depth int, seen map[*Node]bool) {
	dumpIndent(w, depth)
	if n == nil {
		io.WriteString(w, "<nil>\n")
		return
	}
	if seen[n] {
		fmt.Fprintf(w, "%s (shared, see above)\n", n.Kind)
		return
	}
	seen[n] = true

	fmt.Fprintf(w, "%s", n.Kind)
	if n.Kind.has(hasIdent) && n.Ident != ident.Nil {
		fmt.Fprintf(w, " %s", ident.Text(n.Ident))
	}
	if n.Kind.has(hasIdent2) && n.Ident2 != ident.Nil {
		fmt.Fprintf(w, " : %s", ident.Text(n.Ident2))
	}
	if n.Kind.has(hasLiteral) {
		if n.Literal.IsInt {
			fmt.Fprintf(w, " = %d", n.Literal.Int)
		} else {
			fmt.Fprintf(w, " = %q", n.Literal.Str)
		}
	}
	if n.Kind.has(hasPortMode) {
		fmt.Fprintf(w, " mode=%s", portModeName(n.PortMode))
	}
	if n.Kind.has(hasEnumPos) {
		fmt.Fprintf(w, " pos=%d", n.EnumPos)
	}
	if n.Kind.has(hasNets) && len(n.Nets) > 0 {
		fmt.Fprintf(w, " nets=%v", n.Nets)
	}
	if n.Loc.File != "" {
		fmt.Fprintf(w, " (%s:%d:%d)", n.Loc.File, n.Loc.LineStart, n.Loc.ColumnStart)
	}
	io.WriteString(w, "\n")

	for _, c := range n.Ports {
		dumpNode(w, c, depth+1, seen)
	}
	for _, c := range n.Generics {
		dumpNode(w, c, depth+1, seen)
	}
	for _, c := range n.Params {
		dumpNode(w, c, depth+1, seen)
	}
	for _, c := range n.Decls {
		dumpNode(w, c, depth+1, seen)
	}
	for _, c := range n.Stmts {
		dumpNode(w, c, depth+1, seen)
	}
	if n.Value != nil {
		dumpNode(w, n.Value, depth+1, seen)
	}
	if n.Delay != nil {
		dumpNode(w, n.Delay, depth+1, seen)
	}
	if n.Target != nil {
		dumpNode(w, n.Target, depth+1, seen)
	}
	if n.Ref != nil {
		dumpIndent(w, depth+1)
		fmt.Fprintf(w, "-> %s", n.Ref.Kind)
		if n.Ref.Kind.has(hasIdent) {
			fmt.Fprintf(w, " %s", ident.Text(n.Ref.Ident))
		}
		io.WriteString(w, "\n")
	}
	if n.Severity != nil {
		dumpNode(w, n.Severity, depth+1, seen)
	}
	if n.Message != nil {
		dumpNode(w, n.Message, depth+1, seen)
	}
	for _, a := range n.Assocs {
		dumpIndent(w, depth+1)
		fmt.Fprintf(w, "assoc(%s):\n", assocKindName(a.Kind))
		if a.Name != nil {
			dumpNode(w, a.Name, depth+2, seen)
		}
		if a.Value != nil {
			dumpNode(w, a.Value, depth+2, seen)
		}
	}
}

func portModeName(m PortMode) string {
	switch m {
	case ModeIn:
		return "in"
	case ModeOut:
		return "out"
	case ModeInout:
		return "inout"
	case ModeBuffer:
		return "buffer"
	case ModeLinkage:
		return "linkage"
	default:
		return "?"
	}
}

func assocKindName(k AssocKind) string {
	switch k {
	case AssocPositional:
		return "positional"
	case AssocNamed:
		return "named"
	case AssocRange:
		return "range"
	case AssocOthers:
		return "others"
	default:
		return "?"
	}
}
