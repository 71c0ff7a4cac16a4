package library

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nvchdl/velab/internal/ident"
	"github.com/nvchdl/velab/internal/tree"
)

func newEntity(s *tree.Store, name string) *tree.Node {
	e := s.New(tree.ENTITY)
	e.SetIdent(ident.New(name))
	return e
}

func TestCreatePutSaveGetRoundTrip(t *testing.T) {
	dir := t.TempDir()
	m, err := Create("WORK", dir)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	ent := newEntity(m.Store(), "COUNTER")
	m.Put(ident.New("COUNTER"), tree.ENTITY, ent)
	if err := m.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, MarkerFile)); err != nil {
		t.Fatalf("expected marker file: %v", err)
	}

	got, kind, err := m.Get(ident.New("COUNTER"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if kind != tree.ENTITY || ident.Text(got.GetIdent()) != "COUNTER" {
		t.Fatalf("round-tripped unit mismatch: kind=%v ident=%q", kind, ident.Text(got.GetIdent()))
	}
}

func TestFindOpensExistingLibraryDirectory(t *testing.T) {
	dir := t.TempDir()
	m1, err := Create("FINDME", dir)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	ent := newEntity(m1.Store(), "TOP")
	m1.Put(ident.New("TOP"), tree.ENTITY, ent)
	if err := m1.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Find should return the already-open manager without touching disk.
	m2, err := Find("FINDME", false, false)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if m2 != m1 {
		t.Fatal("expected Find to return the cached open Manager")
	}
}

func TestFindFailsWithoutMarker(t *testing.T) {
	dir := t.TempDir()
	if _, err := Find(dir+"/NOLIB", false, false); err == nil {
		t.Fatal("expected Find to fail when the directory has no _NVC_LIB marker")
	}
}

func TestPickArchPrefersHigherMtime(t *testing.T) {
	dir := t.TempDir()
	m, err := Create("ARCHLIB", dir)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	older := m.Store().New(tree.ARCH)
	older.SetIdent(ident.New("COUNTER-RTL"))
	older.SetIdent2(ident.New("COUNTER"))
	older.Loc.LineStart = 10

	newer := m.Store().New(tree.ARCH)
	newer.SetIdent(ident.New("COUNTER-BEHAV"))
	newer.SetIdent2(ident.New("COUNTER"))
	newer.Loc.LineStart = 5

	m.Put(ident.New("COUNTER-RTL"), tree.ARCH, older)
	m.units[ident.New("COUNTER-RTL")].mtimeMicros = 1000
	m.Put(ident.New("COUNTER-BEHAV"), tree.ARCH, newer)
	m.units[ident.New("COUNTER-BEHAV")].mtimeMicros = 2000

	picked, err := m.PickArch(ident.New("COUNTER"))
	if err != nil {
		t.Fatalf("PickArch: %v", err)
	}
	if ident.Text(picked.GetIdent()) != "COUNTER-BEHAV" {
		t.Fatalf("expected the higher-mtime architecture, got %q", ident.Text(picked.GetIdent()))
	}
}

func TestPickArchExactMatch(t *testing.T) {
	dir := t.TempDir()
	m, err := Create("ARCHLIB2", dir)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	arch := m.Store().New(tree.ARCH)
	arch.SetIdent(ident.New("COUNTER"))
	m.Put(ident.New("COUNTER"), tree.ARCH, arch)

	picked, err := m.PickArch(ident.New("COUNTER"))
	if err != nil {
		t.Fatalf("PickArch: %v", err)
	}
	if picked != arch {
		t.Fatal("expected exact-identifier match to be returned directly")
	}
}

func TestDependencyOrderDetectsCycle(t *testing.T) {
	dir := t.TempDir()
	m, err := Create("CYCLIB", dir)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	a := m.Store().New(tree.PACKAGE)
	a.SetIdent(ident.New("A"))
	a.AddContext(ident.New("B"))
	b := m.Store().New(tree.PACKAGE)
	b.SetIdent(ident.New("B"))
	b.AddContext(ident.New("A"))
	m.Put(ident.New("A"), tree.PACKAGE, a)
	m.Put(ident.New("B"), tree.PACKAGE, b)

	if _, err := m.DependencyOrder(ident.New("A")); err == nil {
		t.Fatal("expected DependencyOrder to report the A<->B cycle")
	}
}

func TestDependencyOrderTopologicalSort(t *testing.T) {
	dir := t.TempDir()
	m, err := Create("DEPLIB", dir)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	base := m.Store().New(tree.PACKAGE)
	base.SetIdent(ident.New("BASE"))
	mid := m.Store().New(tree.PACKAGE)
	mid.SetIdent(ident.New("MID"))
	mid.AddContext(ident.New("BASE"))
	top := m.Store().New(tree.PACKAGE)
	top.SetIdent(ident.New("TOP"))
	top.AddContext(ident.New("MID"))
	m.Put(ident.New("BASE"), tree.PACKAGE, base)
	m.Put(ident.New("MID"), tree.PACKAGE, mid)
	m.Put(ident.New("TOP"), tree.PACKAGE, top)

	order, err := m.DependencyOrder(ident.New("TOP"))
	if err != nil {
		t.Fatalf("DependencyOrder: %v", err)
	}
	if len(order) != 3 || ident.Text(order[0]) != "BASE" || ident.Text(order[2]) != "TOP" {
		t.Fatalf("unexpected order: %v", identTexts(order))
	}
}

func identTexts(ids []ident.ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = ident.Text(id)
	}
	return out
}
