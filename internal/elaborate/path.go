package elaborate

import (
	"fmt"
	"strings"

	"github.com/nvchdl/velab/internal/ident"
)

// hpathf formats a hierarchical path/instance segment and joins it onto
// parent: the formatted text is lowercased first (VHDL identifiers are
// case-insensitive, so the canonical path uses one case throughout), then
// joined with sep. sep == 0 means "no separator, plain concatenation" —
// used for generate-statement index suffixes like "[3]". parent ==
// ident.Nil means this is the first segment, joined to nothing.
func hpathf(parent ident.ID, sep byte, format string, args ...interface{}) ident.ID {
	s := strings.ToLower(fmt.Sprintf(format, args...))
	if parent == ident.Nil {
		return ident.New(s)
	}
	if sep == 0 {
		return ident.New(ident.Text(parent) + s)
	}
	return ident.Prefix(parent, ident.New(s), sep)
}

// identConcat appends suffix to id's text verbatim, with no separator and
// no case change — used for the trailing ":" a scope's own identifier
// gets renamed to once it is fully elaborated.
func identConcat(id ident.ID, suffix string) ident.ID {
	return ident.New(ident.Text(id) + suffix)
}

// simpleName strips any library or entity-name prefix from id, keeping
// only the text after the last '.' or '-'. Declarations carry such
// prefixes (e.g. "work.counter" or "counter-rtl") before elaboration
// strips them down to the bare label used in hierarchical paths.
func simpleName(id ident.ID) ident.ID {
	s := ident.Text(id)
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '.' || s[i] == '-' {
			start = i + 1
		}
	}
	if start == 0 {
		return id
	}
	return ident.New(s[start:])
}
