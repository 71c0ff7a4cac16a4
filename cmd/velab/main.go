// Command velab is the CLI driver for the elaboration core: it owns
// settings, logging, and diagnostics, and wires the library manager to the
// elaborator for the one load-bearing command, -e.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nvchdl/velab/internal/diag"
	"github.com/nvchdl/velab/internal/elaborate"
	"github.com/nvchdl/velab/internal/ident"
	"github.com/nvchdl/velab/internal/library"
	"github.com/nvchdl/velab/internal/logging"
	"github.com/nvchdl/velab/internal/netgroup"
	"github.com/nvchdl/velab/internal/options"
	"github.com/nvchdl/velab/internal/tree"
)

var (
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed, color.Bold).SprintFunc()
	cyan  = color.New(color.FgCyan).SprintFunc()
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", red("velab:"), err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	defaults := options.Defaults()
	var (
		analyzeFiles []string
		elaborateTop string
		runTop       string
		dumpUnit     string
		depsUnit     string
	)

	cmd := &cobra.Command{
		Use:          "velab",
		Short:        "velab: a VHDL elaboration core",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Flags(), defaults, analyzeFiles, elaborateTop, runTop, dumpUnit, depsUnit)
		},
	}

	fs := cmd.Flags()
	options.RegisterFlags(fs, defaults)
	fs.StringSliceVarP(&analyzeFiles, "analyze", "a", nil, "analyze source files (not part of the elaboration core)")
	fs.StringVarP(&elaborateTop, "elab", "e", "", "elaborate the named top-level entity")
	fs.StringVarP(&runTop, "run", "r", "", "run the named elaborated design (not part of the elaboration core)")
	fs.StringVar(&dumpUnit, "dump", "", "dump the serialized tree of a stored unit")
	fs.StringVar(&depsUnit, "deps", "", "print a unit's use-clause dependency order")
	return cmd
}

func run(fs *pflag.FlagSet, defaults *options.Config, analyzeFiles []string, elaborateTop, runTop, dumpUnit, depsUnit string) error {
	cfg, err := options.Load(fs)
	if err != nil {
		return err
	}
	logging.Default.SetVerbose(cfg.Verbose)

	switch {
	case len(analyzeFiles) > 0:
		fmt.Fprintln(os.Stdout, cyan("velab -a: analysis is not part of the elaboration core; no-op."))
		return nil
	case elaborateTop != "":
		return doElaborate(cfg, elaborateTop)
	case runTop != "":
		fmt.Fprintln(os.Stdout, cyan("velab -r: simulation is not part of the elaboration core; no-op."))
		return nil
	case dumpUnit != "":
		return doDump(cfg, dumpUnit)
	case depsUnit != "":
		return doDeps(cfg, depsUnit)
	default:
		return fmt.Errorf("no command given: pass one of -a, -e, -r, --dump, or --deps")
	}
}

func doElaborate(cfg *options.Config, top string) error {
	lib, err := openWork(cfg)
	if err != nil {
		return err
	}

	entityID := ident.New(top)
	root, kind, err := lib.Get(entityID)
	if err != nil {
		return fmt.Errorf("velab -e: %w", err)
	}
	if kind != tree.ENTITY {
		return fmt.Errorf("velab -e: %q is not an entity", top)
	}

	sink := diag.NewSink(os.Stderr)
	elaborator := elaborate.New(lib, sink, cfg, nil)

	var elab *tree.Node
	func() {
		defer diag.RecoverInternal(os.Stderr)
		elab, err = elaborator.Elaborate(root)
	}()
	if err != nil {
		return err
	}
	if elab == nil {
		return fmt.Errorf("velab -e: elaboration of %q failed with %d error(s)", top, sink.ErrorCount())
	}

	groups := netgroup.Group(elab)
	nnets := netCountOf(elab)
	logging.Infof("velab -e: %q elaborated to %d net(s) across %d signal(s)", top, nnets, len(groups))
	fmt.Fprintf(os.Stdout, "%s %s: %d nets, %d signal groups\n", green("elaborated"), top, nnets, len(groups))
	return nil
}

func netCountOf(elab *tree.Node) int64 {
	n, _ := elab.AttrInt(ident.New("nnets"))
	return n
}

func doDump(cfg *options.Config, unit string) error {
	lib, err := openWork(cfg)
	if err != nil {
		return err
	}
	root, _, err := lib.Get(ident.New(unit))
	if err != nil {
		return fmt.Errorf("velab --dump: %w", err)
	}
	tree.Dump(os.Stdout, root)
	return nil
}

func doDeps(cfg *options.Config, unit string) error {
	lib, err := openWork(cfg)
	if err != nil {
		return err
	}
	order, err := lib.DependencyOrder(ident.New(unit))
	if err != nil {
		return fmt.Errorf("velab --deps: %w", err)
	}
	for _, id := range order {
		fmt.Fprintln(os.Stdout, ident.Text(id))
	}
	return nil
}

func openWork(cfg *options.Config) (*library.Manager, error) {
	if lib, err := library.Find(cfg.Work, cfg.Verbose, true); err == nil {
		return lib, nil
	}
	return library.Create(cfg.Work, cfg.Work)
}
