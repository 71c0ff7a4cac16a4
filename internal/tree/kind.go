package tree

// Kind tags every tree.Node with which of the tagged union's ~20+ variants
// it is (spec §3.2). The IR is deliberately one Go struct with a Kind
// field rather than one Go type per kind: the visitor, rewriter, copy, and
// serializer (§4.2.2-§4.2.6) all walk the same fixed set of slots across
// every kind, and a single struct lets that machinery be written once
// instead of once per kind via a dispatch interface. internal/types takes
// the opposite approach because its kinds are few and each carries
// genuinely distinct data with no shared generic machinery to amortize.
type Kind uint8

const (
	ENTITY Kind = iota
	ARCH
	PACKAGE
	PACK_BODY
	PORT_DECL
	SIGNAL_DECL
	VAR_DECL
	CONST_DECL
	TYPE_DECL
	FUNC_DECL
	FUNC_BODY
	PROC_DECL
	PROC_BODY
	ENUM_LIT
	GENVAR
	LITERAL
	REF
	FCALL
	AGGREGATE
	ARRAY_REF
	ARRAY_SLICE
	QUALIFIED
	PROCESS
	WAIT
	VAR_ASSIGN
	SIGNAL_ASSIGN
	ASSERT
	BLOCK
	INSTANCE
	FOR_GENERATE
	IF_GENERATE
	PARAM
	OPEN
	ELAB

	numKinds
)

var kindNames = [numKinds]string{
	ENTITY:        "ENTITY",
	ARCH:          "ARCH",
	PACKAGE:       "PACKAGE",
	PACK_BODY:     "PACK_BODY",
	PORT_DECL:     "PORT_DECL",
	SIGNAL_DECL:   "SIGNAL_DECL",
	VAR_DECL:      "VAR_DECL",
	CONST_DECL:    "CONST_DECL",
	TYPE_DECL:     "TYPE_DECL",
	FUNC_DECL:     "FUNC_DECL",
	FUNC_BODY:     "FUNC_BODY",
	PROC_DECL:     "PROC_DECL",
	PROC_BODY:     "PROC_BODY",
	ENUM_LIT:      "ENUM_LIT",
	GENVAR:        "GENVAR",
	LITERAL:       "LITERAL",
	REF:           "REF",
	FCALL:         "FCALL",
	AGGREGATE:     "AGGREGATE",
	ARRAY_REF:     "ARRAY_REF",
	ARRAY_SLICE:   "ARRAY_SLICE",
	QUALIFIED:     "QUALIFIED",
	PROCESS:       "PROCESS",
	WAIT:          "WAIT",
	VAR_ASSIGN:    "VAR_ASSIGN",
	SIGNAL_ASSIGN: "SIGNAL_ASSIGN",
	ASSERT:        "ASSERT",
	BLOCK:         "BLOCK",
	INSTANCE:      "INSTANCE",
	FOR_GENERATE:  "FOR_GENERATE",
	IF_GENERATE:   "IF_GENERATE",
	PARAM:         "PARAM",
	OPEN:          "OPEN",
	ELAB:          "ELAB",
}

func (k Kind) String() string {
	if k < numKinds {
		return kindNames[k]
	}
	return "UNKNOWN_KIND"
}

// slotFlags records which optional slots are legal for a given kind, the
// Go analog of tree.c's HAS_X() macros. Accessors consult this table and
// panic (an internal error, spec §7) on illegal access rather than
// silently returning a zero value, so a mistaken getter is a programming
// bug caught immediately rather than a wrong answer three passes later.
type slotFlags uint32

const (
	hasIdent slotFlags = 1 << iota
	hasIdent2
	hasPorts
	hasGenerics
	hasParams
	hasDecls
	hasStmts
	hasType
	hasValue
	hasDelay
	hasTarget
	hasRef
	hasSeverity
	hasMessage
	hasContext
	hasAssocs
	hasLiteral
	hasPortMode
	hasEnumPos
	hasNets
)

var kindFlags = [numKinds]slotFlags{
	ENTITY:        hasIdent | hasPorts | hasGenerics | hasDecls | hasContext,
	ARCH:          hasIdent | hasIdent2 | hasDecls | hasStmts | hasContext,
	PACKAGE:       hasIdent | hasDecls | hasContext,
	PACK_BODY:     hasIdent | hasDecls | hasContext,
	PORT_DECL:     hasIdent | hasType | hasPortMode | hasValue,
	SIGNAL_DECL:   hasIdent | hasType | hasValue | hasNets,
	VAR_DECL:      hasIdent | hasType | hasValue,
	CONST_DECL:    hasIdent | hasType | hasValue,
	TYPE_DECL:     hasIdent | hasType,
	FUNC_DECL:     hasIdent | hasType | hasParams,
	FUNC_BODY:     hasIdent | hasType | hasParams | hasDecls | hasStmts,
	PROC_DECL:     hasIdent | hasType | hasParams,
	PROC_BODY:     hasIdent | hasType | hasParams | hasDecls | hasStmts,
	ENUM_LIT:      hasIdent | hasType | hasEnumPos,
	GENVAR:        hasIdent | hasType,
	LITERAL:       hasType | hasLiteral,
	REF:           hasIdent | hasRef,
	FCALL:         hasIdent | hasType | hasParams | hasRef,
	AGGREGATE:     hasType | hasAssocs,
	ARRAY_REF:     hasType | hasValue | hasParams,
	ARRAY_SLICE:   hasType | hasValue | hasParams,
	QUALIFIED:     hasType | hasValue,
	PROCESS:       hasIdent | hasDecls | hasStmts,
	WAIT:          hasDelay | hasValue,
	VAR_ASSIGN:    hasTarget | hasValue,
	SIGNAL_ASSIGN: hasTarget | hasValue | hasDelay,
	ASSERT:        hasValue | hasSeverity | hasMessage,
	BLOCK:         hasIdent | hasDecls | hasStmts,
	INSTANCE:      hasIdent | hasIdent2 | hasRef | hasParams | hasGenerics,
	FOR_GENERATE:  hasIdent | hasDecls | hasStmts,
	IF_GENERATE:   hasIdent | hasDecls | hasStmts | hasValue,
	PARAM:         hasIdent | hasValue | hasRef,
	OPEN:          0,
	ELAB:          hasIdent | hasDecls | hasStmts | hasContext,
}

func (k Kind) has(f slotFlags) bool {
	return kindFlags[k]&f != 0
}

// IsTopLevel reports whether k is one of the kinds that root the tree
// allocator's garbage collection (spec §3.4, §4.2.6).
func (k Kind) IsTopLevel() bool {
	switch k {
	case ENTITY, ARCH, PACKAGE, PACK_BODY, ELAB:
		return true
	default:
		return false
	}
}

// IsDecl reports whether k is a declaration kind, eligible for ELAB.Decls
// installation (spec §4.5.8).
func (k Kind) IsDecl() bool {
	switch k {
	case PORT_DECL, SIGNAL_DECL, VAR_DECL, CONST_DECL, TYPE_DECL,
		FUNC_DECL, FUNC_BODY, PROC_DECL, PROC_BODY, GENVAR:
		return true
	default:
		return false
	}
}

// IsExpr reports whether k is an expression kind.
func (k Kind) IsExpr() bool {
	switch k {
	case LITERAL, REF, FCALL, AGGREGATE, ARRAY_REF, ARRAY_SLICE, QUALIFIED, OPEN:
		return true
	default:
		return false
	}
}

// IsStmt reports whether k is a concurrent or sequential statement kind.
func (k Kind) IsStmt() bool {
	switch k {
	case PROCESS, WAIT, VAR_ASSIGN, SIGNAL_ASSIGN, ASSERT, BLOCK,
		INSTANCE, FOR_GENERATE, IF_GENERATE:
		return true
	default:
		return false
	}
}
