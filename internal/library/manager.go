// Package library implements the directory-backed unit store of spec
// §4.4: an on-disk marker and index, mtime-ordered architecture selection,
// and an in-memory cache of already-opened libraries keyed by name.
package library

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nvchdl/velab/internal/ident"
	"github.com/nvchdl/velab/internal/logging"
	"github.com/nvchdl/velab/internal/tree"
)

// MarkerFile is the library directory marker (spec §6.3). LibPathEnv is
// the colon-separated search-path environment variable (spec §6.4). Both
// names are the on-disk/environment contract and are not renamed.
const (
	MarkerFile     = "_NVC_LIB"
	indexFileName  = "_index"
	LibPathEnv     = "NVC_LIBPATH"
	dataDirEnv     = "VELAB_DATADIR"
	markerVersion  = "velab library version 1"
)

// unitRecord is the in-memory bookkeeping for one stored unit (spec
// §4.4.3): the tree root (lazily loaded), a dirty flag, and an mtime in
// microseconds.
type unitRecord struct {
	id          ident.ID
	kind        tree.Kind
	root        *tree.Node
	path        string
	dirty       bool
	mtimeMicros int64
}

// Manager is one open library: a directory plus its in-memory unit index.
type Manager struct {
	mu    sync.Mutex
	dir   string
	name  ident.ID
	units map[ident.ID]*unitRecord
	store *tree.Store
}

var (
	openMu   sync.Mutex
	openLibs = map[string]*Manager{}
)

// Create initializes a fresh library directory: a marker file and an
// empty index. Used for the work library at the start of a run.
func Create(name, dir string) (*Manager, error) {
	normalized := ident.Upcase(name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("library: create %q: %w", dir, err)
	}
	marker := filepath.Join(dir, MarkerFile)
	if err := os.WriteFile(marker, []byte(markerVersion+"\n"), 0o644); err != nil {
		return nil, fmt.Errorf("library: write marker: %w", err)
	}
	m := &Manager{dir: dir, name: ident.New(normalized), units: map[ident.ID]*unitRecord{}, store: tree.NewStore()}
	if err := m.writeIndexLocked(); err != nil {
		return nil, err
	}
	registerOpen(normalized, m)
	logging.Debugf("library: created %q at %s", name, dir)
	return m, nil
}

// Find implements spec §4.4.2: normalize to uppercase, return an
// already-open library by name, else search candidate directories in
// order (embedded path, `.`, NVC_LIBPATH entries, the install data
// directory) accepting the first one that exists and carries MarkerFile.
func Find(name string, verbose, search bool) (*Manager, error) {
	normalized := ident.Upcase(name)

	openMu.Lock()
	if m, ok := openLibs[normalized]; ok {
		openMu.Unlock()
		return m, nil
	}
	openMu.Unlock()

	for _, dir := range candidateDirs(name, search) {
		if !isLibraryDir(dir) {
			continue
		}
		m, err := openDir(dir, normalized)
		if err != nil {
			return nil, err
		}
		if verbose {
			logging.Infof("library: found %q at %s", name, dir)
		}
		registerOpen(normalized, m)
		return m, nil
	}
	return nil, fmt.Errorf("library: cannot find library %q", name)
}

func registerOpen(normalized string, m *Manager) {
	openMu.Lock()
	openLibs[normalized] = m
	openMu.Unlock()
}

func candidateDirs(name string, search bool) []string {
	var dirs []string
	if idx := strings.LastIndexByte(name, '/'); idx >= 0 {
		dirs = append(dirs, name[:idx])
	} else {
		dirs = append(dirs, ".")
	}
	if search {
		if lp := os.Getenv(LibPathEnv); lp != "" {
			dirs = append(dirs, strings.Split(lp, ":")...)
		}
		if dd := os.Getenv(dataDirEnv); dd != "" {
			dirs = append(dirs, dd)
		}
	}
	return dirs
}

func isLibraryDir(dir string) bool {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return false
	}
	_, err = os.Stat(filepath.Join(dir, MarkerFile))
	return err == nil
}

func openDir(dir, normalized string) (*Manager, error) {
	f, err := os.Open(filepath.Join(dir, indexFileName))
	if err != nil {
		return nil, fmt.Errorf("library: read index: %w", err)
	}
	defer f.Close()
	entries, err := readIndex(f)
	if err != nil {
		return nil, fmt.Errorf("library: read index: %w", err)
	}

	m := &Manager{dir: dir, name: ident.New(normalized), units: map[ident.ID]*unitRecord{}, store: tree.NewStore()}
	for _, e := range entries {
		m.units[e.ID] = &unitRecord{id: e.ID, kind: e.Kind, path: m.unitPath(e.ID)}
	}
	return m, nil
}

func (m *Manager) unitPath(id ident.ID) string {
	return filepath.Join(m.dir, ident.Text(id))
}

// Name reports the library's normalized (uppercase) name.
func (m *Manager) Name() ident.ID { return m.name }

// Store returns the tree allocator backing every unit this Manager has
// deserialized, so a caller can run tree.GC against it once elaboration
// of a top-level unit completes.
func (m *Manager) Store() *tree.Store { return m.store }

// Put installs or replaces a unit in the in-memory index, marking it dirty
// so the next Save writes it to disk (spec §4.4.3).
func (m *Manager) Put(id ident.ID, kind tree.Kind, root *tree.Node) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.units[id] = &unitRecord{id: id, kind: kind, root: root, dirty: true, mtimeMicros: time.Now().UnixMicro()}
}

// Get returns a unit's tree root and kind, loading it from disk and
// caching the result if it was not already resident in memory. The file
// handle used for deserialization is scoped to this call and released
// once the tree has been fully read (spec §4.4.3, §5 resource discipline).
func (m *Manager) Get(id ident.ID) (*tree.Node, tree.Kind, error) {
	m.mu.Lock()
	u, ok := m.units[id]
	m.mu.Unlock()
	if !ok {
		return nil, 0, fmt.Errorf("library: unit %q not found", ident.Text(id))
	}
	if u.root != nil {
		return u.root, u.kind, nil
	}

	f, err := os.Open(u.path)
	if err != nil {
		return nil, 0, fmt.Errorf("library: open unit %q: %w", ident.Text(id), err)
	}
	defer f.Close()
	root, err := tree.Deserialize(f, m.store)
	if err != nil {
		return nil, 0, fmt.Errorf("library: deserialize unit %q: %w", ident.Text(id), err)
	}

	m.mu.Lock()
	u.root = root
	m.mu.Unlock()
	return root, u.kind, nil
}

// Has reports whether id names any unit in the library, without loading
// it from disk.
func (m *Manager) Has(id ident.ID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.units[id]
	return ok
}

// Save writes every dirty unit's tree to its own file, then rewrites
// `_index`. Per spec §5, this is only weakly atomic: a crash between a
// unit write and the index write leaves an inconsistent library, which is
// accepted (callers re-analyze).
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, u := range m.units {
		if !u.dirty {
			continue
		}
		if u.root == nil {
			return fmt.Errorf("library: cannot save unit %q: no in-memory tree", ident.Text(id))
		}
		if err := m.writeUnitFile(u); err != nil {
			return err
		}
		u.dirty = false
	}
	return m.writeIndexLocked()
}

func (m *Manager) writeUnitFile(u *unitRecord) error {
	path := m.unitPath(u.id)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("library: create unit file %q: %w", path, err)
	}
	err = tree.Serialize(f, u.root)
	cerr := f.Close()
	if err != nil {
		return fmt.Errorf("library: serialize unit %q: %w", ident.Text(u.id), err)
	}
	return cerr
}

// writeIndexLocked rewrites `_index` last, as spec §5 requires. Entries
// are sorted by identifier text so the on-disk byte stream is
// deterministic across runs with the same unit set (spec §5 determinism).
func (m *Manager) writeIndexLocked() error {
	entries := make([]indexEntry, 0, len(m.units))
	for id, u := range m.units {
		entries = append(entries, indexEntry{ID: id, Kind: u.kind})
	}
	sort.Slice(entries, func(i, j int) bool {
		return ident.Text(entries[i].ID) < ident.Text(entries[j].ID)
	})

	f, err := os.Create(filepath.Join(m.dir, indexFileName))
	if err != nil {
		return fmt.Errorf("library: write index: %w", err)
	}
	defer f.Close()
	return writeIndex(f, entries)
}
