package ident

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	upper = cases.Upper(language.Und)
	lower = cases.Lower(language.Und)
)

// Upcase returns s uppercased via golang.org/x/text/cases, matching the
// library manager's upcase_name normalization of on-disk unit names
// (spec §4.4.2 step 1). Using a dedicated Unicode-aware caser (rather than
// strings.ToUpper) keeps library-name normalization consistent with the
// same library used elsewhere in this module for identifier text.
func Upcase(s string) string {
	return upper.String(s)
}

// Downcase lowercases s. hpathf (spec §4.5.1) mandates lowercase path and
// instance names regardless of the source text's original case.
func Downcase(s string) string {
	return lower.String(s)
}

// HasUpper reports whether s contains any uppercase rune, a cheap
// short-circuit so hot paths can skip the caser when text is already
// normalized.
func HasUpper(s string) bool {
	return strings.ToLower(s) != s
}
