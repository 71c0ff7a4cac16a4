package library

import (
	"fmt"

	"github.com/nvchdl/velab/internal/ident"
)

// DependencyOrder topologically sorts top's transitive use-clause
// dependencies (each top-level unit's Context list), dependencies before
// dependents, grounded on the dependency-ordered unit init/finalize
// pattern of a DWScript-style unit loader: VHDL libraries have no
// init/finalize sections, but the ordering concern is the same — a unit
// must be visited only after everything it `use`s. Returns an error
// naming the offending unit if the context graph has a cycle.
func (m *Manager) DependencyOrder(top ident.ID) ([]ident.ID, error) {
	const (
		white = iota
		gray
		black
	)
	state := make(map[ident.ID]int)
	var order []ident.ID

	var visit func(id ident.ID) error
	visit = func(id ident.ID) error {
		switch state[id] {
		case black:
			return nil
		case gray:
			return fmt.Errorf("library: circular dependency detected at %q", ident.Text(id))
		}
		state[id] = gray
		root, _, err := m.Get(id)
		if err != nil {
			return err
		}
		if root.Kind.IsTopLevel() {
			for _, dep := range root.GetContext() {
				if dep == id || !m.Has(dep) {
					continue
				}
				if err := visit(dep); err != nil {
					return err
				}
			}
		}
		state[id] = black
		order = append(order, id)
		return nil
	}

	if err := visit(top); err != nil {
		return nil, err
	}
	return order, nil
}
