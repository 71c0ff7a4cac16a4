// Package elaborate walks a selected architecture and expands it into one
// flat ELAB tree: instances are recursively substituted in place, signals
// get net ids, generate statements are unrolled, and every surviving
// declaration is renamed to its full hierarchical path. It is the single
// largest piece of this module and ties together internal/tree's
// copy/rewrite machinery, internal/library's unit storage, and
// internal/diag's error reporting.
package elaborate

import (
	"fmt"

	"github.com/nvchdl/velab/internal/coverage"
	"github.com/nvchdl/velab/internal/diag"
	"github.com/nvchdl/velab/internal/ident"
	"github.com/nvchdl/velab/internal/library"
	"github.com/nvchdl/velab/internal/options"
	"github.com/nvchdl/velab/internal/tree"
)

// Simplifier is the constant-folding/optimization collaborator this
// package consumes but does not implement: mutates a tree in place. A
// real simplifier lives outside this package (source-level optimization
// is not this package's concern); NoopSimplifier is the default.
type Simplifier interface {
	Simplify(root *tree.Node)
}

// NoopSimplifier satisfies Simplifier without changing anything, the
// default when no real optimizer is wired in.
type NoopSimplifier struct{}

func (NoopSimplifier) Simplify(*tree.Node) {}

// Elaborator holds the state threaded through one elaboration run: a
// single monotonic net-id counter and the in-progress ELAB root, plus the
// collaborators it consults (library storage, diagnostics, settings).
type Elaborator struct {
	lib        *library.Manager
	sink       *diag.Sink
	cfg        *options.Config
	store      *tree.Store
	simplifier Simplifier

	out     *tree.Node
	nextNet uint32
}

// New builds an Elaborator against lib's store. simplifier may be nil,
// in which case no simplification is applied beyond what already folded
// the input (direct entity/architecture binding and generate-range
// constants are assumed already constant-foldable, per the no-parser
// no-semantic-analysis boundary this package sits behind).
func New(lib *library.Manager, sink *diag.Sink, cfg *options.Config, simplifier Simplifier) *Elaborator {
	if simplifier == nil {
		simplifier = NoopSimplifier{}
	}
	return &Elaborator{lib: lib, sink: sink, cfg: cfg, store: lib.Store(), simplifier: simplifier}
}

// scope is the recursion-local elaboration context: the hierarchical
// PATH_NAME and INSTANCE_NAME built up so far. The out root and net
// counter live on the Elaborator itself since they are shared mutable
// state for the whole run, not per-scope.
type scope struct {
	path ident.ID
	inst ident.ID
}

// Elaborate is the entry point: top is a top-level entity with no ports
// and no generics. On success it returns a fresh ELAB node already saved
// to the library, with its statements coverage-tagged when cfg.Cover is
// set. A Fatal report raised before expansion starts (top is not an
// entity, has ports or generics, or has no architecture) is also returned
// as the error. If any Diagnostic or Fatal report was raised during the
// expansion itself it returns (nil, nil) — the problems are in the sink,
// the library is left untouched.
func (e *Elaborator) Elaborate(top *tree.Node) (*tree.Node, error) {
	if top.Kind != tree.ENTITY {
		return nil, e.fatal("top unit %q is not an entity", ident.Text(top.GetIdent()))
	}
	if len(top.Ports0()) != 0 || len(top.Generics0()) != 0 {
		return nil, e.fatal("top-level entity %q may not have ports or generics", ident.Text(top.GetIdent()))
	}

	arch, err := e.lib.PickArch(top.GetIdent())
	if err != nil {
		return nil, e.fatal("%s", err)
	}

	elabID := ident.Prefix(top.GetIdent(), ident.New("elab"), '.')
	root := e.store.New(tree.ELAB)
	root.SetIdent(elabID)
	e.out = root

	for _, c := range top.GetContext() {
		root.AddContext(c)
	}

	contexts := append(append([]ident.ID(nil), arch.GetContext()...), top.GetContext()...)
	arch = e.rebindPackageFunctions(arch, contexts)
	e.simplifier.Simplify(arch)

	name := simpleName(top.GetIdent())
	rootPath := hpathf(ident.Nil, ':', ":%s", ident.Text(name))
	rootInst := hpathf(ident.Nil, ':', ":%s(%s)", ident.Text(name), ident.Text(simpleName(arch.GetIdent())))

	e.elaborateArchitecture(top, arch, scope{path: rootPath, inst: rootInst})

	root.AddAttrInt(nnetsAttr, int64(e.nextNet))

	if e.sink.HasErrors() {
		return nil, nil
	}

	if e.cfg != nil && e.cfg.Cover {
		coverage.Tag(root)
	}

	e.lib.Put(elabID, tree.ELAB, root)
	if err := e.lib.Save(); err != nil {
		return nil, err
	}
	return root, nil
}

// elaborateArchitecture expands a (not yet substituted) architecture —
// the top-level case, where there is no port/generic map to apply — and
// folds it into e.out.
func (e *Elaborator) elaborateArchitecture(entity, arch *tree.Node, sc scope) {
	_, _, archCopy := e.expandArchitecture(entity, arch)
	e.finishArchitecture(entity, archCopy, sc)
}

// finishArchitecture performs the steps common to the top-level entry
// point and instance binding once a substituted, expanded architecture is
// in hand: entity-ref fixup, scope attribute install, decl/stmt
// installation, and the final hierarchical rename.
func (e *Elaborator) finishArchitecture(entity, archCopy *tree.Node, sc scope) {
	for _, c := range archCopy.GetContext() {
		e.out.AddContext(c)
	}
	archCopy = e.fixEntityRefs(archCopy, entity)
	e.installScopeAttr(archCopy, sc)
	for _, d := range archCopy.Decls0() {
		e.installDecl(d, sc)
	}
	e.elaborateStmts(archCopy.Stmts0(), sc)
	archCopy.SetIdent(identConcat(sc.path, ":"))
}

// installScopeAttr tags a scope-bearing node (an expanded architecture,
// a block, or one generate iteration) with its own INSTANCE_NAME, mirroring
// the per-decl attribute installDecl attaches to each of its declarations.
func (e *Elaborator) installScopeAttr(n *tree.Node, sc scope) {
	n.AddAttrStr(instanceNameAttr, ident.Text(identConcat(sc.inst, ":")))
}

var (
	pathNameAttr     = ident.New("PATH_NAME")
	instanceNameAttr = ident.New("INSTANCE_NAME")
	nnetsAttr        = ident.New("nnets")
	formalAttr       = ident.New("formal")
)

func (e *Elaborator) fatal(format string, args ...any) error {
	r := diag.New(diag.SeverityFatal, "elaborate", fmt.Sprintf(format, args...))
	e.sink.Report(r)
	return r.AsError()
}

func (e *Elaborator) diagnostic(loc tree.Loc, format string, args ...any) {
	r := diag.New(diag.SeverityDiagnostic, "elaborate", fmt.Sprintf(format, args...)).At(loc)
	e.sink.Report(r)
}
