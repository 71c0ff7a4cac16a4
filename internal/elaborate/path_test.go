package elaborate

import (
	"testing"

	"github.com/nvchdl/velab/internal/ident"
	"github.com/stretchr/testify/require"
)

func TestHpathfFirstSegmentHasNoParent(t *testing.T) {
	id := hpathf(ident.Nil, ':', ":%s", "TOP")
	require.Equal(t, ":top", ident.Text(id))
}

func TestHpathfJoinsWithSeparator(t *testing.T) {
	top := hpathf(ident.Nil, ':', ":%s", "TOP")
	child := hpathf(top, ':', "%s", "COUNTER")
	require.Equal(t, ":top:counter", ident.Text(child))
}

func TestHpathfZeroSeparatorConcatenates(t *testing.T) {
	base := ident.New(":top:g")
	idx := hpathf(base, 0, "[%d]", 3)
	require.Equal(t, ":top:g[3]", ident.Text(idx))
}

func TestHpathfLowercasesFormattedText(t *testing.T) {
	base := ident.New(":top")
	id := hpathf(base, ':', "%s", "MyInst")
	require.Equal(t, ":top:myinst", ident.Text(id))
}

func TestIdentConcatAppendsVerbatim(t *testing.T) {
	id := identConcat(ident.New(":top:counter"), ":")
	require.Equal(t, ":top:counter:", ident.Text(id))
}

func TestSimpleNameStripsLastDotOrDash(t *testing.T) {
	require.Equal(t, "counter", ident.Text(simpleName(ident.New("work.counter"))))
	require.Equal(t, "rtl", ident.Text(simpleName(ident.New("counter-rtl"))))
	require.Equal(t, "rtl", ident.Text(simpleName(ident.New("work.counter-rtl"))))
}

func TestSimpleNameWithoutPrefixIsUnchanged(t *testing.T) {
	id := ident.New("plain")
	require.Equal(t, id, simpleName(id))
}
