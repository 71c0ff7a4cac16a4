// Package netgroup clusters the flat net ids an elaboration run assigns
// back into the per-signal ranges a waveform viewer or dump command needs.
package netgroup

import (
	"sort"

	"github.com/nvchdl/velab/internal/diag"
	"github.com/nvchdl/velab/internal/ident"
	"github.com/nvchdl/velab/internal/tree"
)

// Group records the contiguous net range belonging to one signal.
type Group struct {
	Name     ident.ID
	PathName string
	FirstNet uint32
	Width    int
}

// Group walks elab's declarations and records a Group for every SIGNAL_DECL
// carrying nets, in net-id order. elab must be the root ELAB node returned by
// elaborate.Elaborate; a declaration with no nets (nothing wired it) is
// skipped rather than reported as a zero-width group.
func Group(elab *tree.Node) []Group {
	if elab.Kind != tree.ELAB {
		diag.Internalf("netgroup", "Group: expected ELAB root, got %s", elab.Kind)
	}

	var groups []Group
	for _, d := range elab.Decls0() {
		if d.Kind != tree.SIGNAL_DECL {
			continue
		}
		nets := d.GetNets()
		if len(nets) == 0 {
			continue
		}
		pathName, _ := d.AttrStr(pathNameAttr)
		groups = append(groups, Group{
			Name:     d.GetIdent(),
			PathName: pathName,
			FirstNet: nets[0],
			Width:    len(nets),
		})
	}

	sort.Slice(groups, func(i, j int) bool { return groups[i].FirstNet < groups[j].FirstNet })
	return groups
}

var pathNameAttr = ident.New("PATH_NAME")
