package library

import (
	"fmt"
	"os"

	"github.com/nvchdl/velab/internal/ident"
	"github.com/nvchdl/velab/internal/tree"
)

// PickArch implements spec §4.4.4: if a unit named exactly entityID
// exists and is an ARCH, return it; otherwise collect every ARCH whose
// identifier prefix (up to the first '-') equals entityID and return the
// most recently analyzed one, breaking ties on the architecture's first
// source line (higher wins, under the assumption both came from the same
// file). No candidate is fatal.
func (m *Manager) PickArch(entityID ident.ID) (*tree.Node, error) {
	m.mu.Lock()
	direct, ok := m.units[entityID]
	m.mu.Unlock()
	if ok && direct.kind == tree.ARCH {
		root, _, err := m.Get(entityID)
		return root, err
	}

	m.mu.Lock()
	var candidates []*unitRecord
	for id, u := range m.units {
		if u.kind == tree.ARCH && ident.Until(id, '-') == entityID {
			candidates = append(candidates, u)
		}
	}
	m.mu.Unlock()
	if len(candidates) == 0 {
		return nil, fmt.Errorf("library: fatal: no architecture found for entity %q", ident.Text(entityID))
	}

	best := candidates[0]
	bestRoot, _, err := m.Get(best.id)
	if err != nil {
		return nil, err
	}
	bestMtime := m.mtimeOf(best)
	for _, c := range candidates[1:] {
		root, _, err := m.Get(c.id)
		if err != nil {
			return nil, err
		}
		mt := m.mtimeOf(c)
		if mt > bestMtime || (mt == bestMtime && root.Loc.LineStart > bestRoot.Loc.LineStart) {
			best, bestRoot, bestMtime = c, root, mt
		}
	}
	return bestRoot, nil
}

// mtimeOf returns u's analysis timestamp in microseconds: the in-memory
// stamp recorded by Put if this session wrote it, else the on-disk unit
// file's modification time.
func (m *Manager) mtimeOf(u *unitRecord) int64 {
	if u.mtimeMicros != 0 {
		return u.mtimeMicros
	}
	info, err := os.Stat(m.unitPath(u.id))
	if err != nil {
		return 0
	}
	return info.ModTime().UnixMicro()
}
