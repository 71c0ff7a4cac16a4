package library

import (
	"encoding/binary"
	"io"

	"github.com/nvchdl/velab/internal/ident"
	"github.com/nvchdl/velab/internal/tree"
)

// indexEntry is one line of the on-disk `_index` file (spec §6.3): a unit's
// qualified identifier plus its top-level kind.
type indexEntry struct {
	ID   ident.ID
	Kind tree.Kind
}

// writeIndex writes the binary `_index` format: a u32 count followed by
// that many (identifier, u16 kind) pairs, identifiers length-prefixed.
func writeIndex(w io.Writer, entries []indexEntry) error {
	if err := writeU32(w, uint32(len(entries))); err != nil {
		return err
	}
	for _, e := range entries {
		name := ident.Text(e.ID)
		if err := writeU32(w, uint32(len(name))); err != nil {
			return err
		}
		if _, err := w.Write([]byte(name)); err != nil {
			return err
		}
		if err := writeU16(w, uint16(e.Kind)); err != nil {
			return err
		}
	}
	return nil
}

func readIndex(r io.Reader) ([]indexEntry, error) {
	count, err := readU32(r)
	if err != nil {
		return nil, err
	}
	entries := make([]indexEntry, count)
	for i := range entries {
		n, err := readU32(r)
		if err != nil {
			return nil, err
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		kind, err := readU16(r)
		if err != nil {
			return nil, err
		}
		entries[i] = indexEntry{ID: ident.New(string(buf)), Kind: tree.Kind(kind)}
	}
	return entries, nil
}

func writeU16(w io.Writer, v uint16) error {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func writeU32(w io.Writer, v uint32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	_, err := w.Write(b[:])
	return err
}

func readU16(r io.Reader) (uint16, error) {
	var b [2]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b[:]), nil
}

func readU32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}
