package write

import (
	"bytes"
	"testing"

	"github.com/benedoc-inc/pdftree/diag"
	"github.com/benedoc-inc/pdftree/enumerate"
	"github.com/benedoc-inc/pdftree/object"
	"github.com/stretchr/testify/require"
)

func TestEmitChildRendersIndirectReferenceAsIDGenR(t *testing.T) {
	a := object.NewArena()
	target := a.NewDict(nil)
	ids := enumerate.Result{Index: map[object.Handle]int{target: 7}}
	w := newWriter(a, ids, diag.Discard{})

	var buf bytes.Buffer
	require.NoError(t, w.emitChild(&buf, target, 0, true))
	require.Equal(t, "7 0 R", buf.String())
}

func TestEmitChildUnresolvedRefEscapesToLiteral(t *testing.T) {
	a := object.NewArena()
	ref := a.NewRef(object.RefID{ID: 5, Gen: 2}) // never resolved
	w := newWriter(a, emptyResult(), diag.Discard{})

	var buf bytes.Buffer
	require.NoError(t, w.emitChild(&buf, ref, 0, true))
	require.Equal(t, "(5 2 R)", buf.String())
}

func TestEmitDictSortsKeysCaseFoldedThenRaw(t *testing.T) {
	a := object.NewArena()
	d := a.NewDict([]object.DictEntry{
		{Key: []byte("beta"), Value: a.NewInt(1, "")},
		{Key: []byte("Alpha"), Value: a.NewInt(2, "")},
		{Key: []byte("alpha"), Value: a.NewInt(3, "")},
	})
	w := newWriter(a, emptyResult(), diag.Discard{})

	var buf bytes.Buffer
	require.NoError(t, w.emitValue(&buf, d, 0, true))
	require.Equal(t, "<</Alpha 2/alpha 3/beta 1>>", buf.String())
}

func TestEmitArrayEmptyPrintsBracketSpaceBracket(t *testing.T) {
	a := object.NewArena()
	arr := a.NewArray(nil)
	w := newWriter(a, emptyResult(), diag.Discard{})

	var buf bytes.Buffer
	require.NoError(t, w.emitValue(&buf, arr, 0, true))
	require.Equal(t, "[ ]", buf.String())
}

func TestEmitDictSameHandleTwiceIsDoubleEmit(t *testing.T) {
	a := object.NewArena()
	d := a.NewDict(nil)
	w := newWriter(a, emptyResult(), diag.Discard{})

	var buf bytes.Buffer
	require.NoError(t, w.emitValue(&buf, d, 0, true))
	err := w.emitValue(&buf, d, 0, true)
	require.Error(t, err)
}

func TestEmitValueStreamDirectlyIsRejected(t *testing.T) {
	a := object.NewArena()
	s := a.NewStream(nil, []byte("x"), object.StreamFlags{})
	w := newWriter(a, emptyResult(), diag.Discard{})

	var buf bytes.Buffer
	err := w.emitValue(&buf, s, 0, true)
	require.Error(t, err)
}

func TestNameHexEscapeRoundTripsDelimiters(t *testing.T) {
	a := object.NewArena()
	n := a.NewName([]byte("A B/C"))
	w := newWriter(a, emptyResult(), diag.Discard{})

	var buf bytes.Buffer
	require.NoError(t, w.emitValue(&buf, n, 0, true))
	require.Equal(t, "/A#20B#2fC", buf.String())
}

func TestStringLiteralEscapesParensAndBackslash(t *testing.T) {
	a := object.NewArena()
	s := a.NewStringLiteral([]byte(`a(b)c\d`))
	w := newWriter(a, emptyResult(), diag.Discard{})

	var buf bytes.Buffer
	require.NoError(t, w.emitValue(&buf, s, 0, true))
	require.Equal(t, `(a\(b\)c\\d)`, buf.String())
}

func TestIntAndRealPreferLiteralWhenPresent(t *testing.T) {
	a := object.NewArena()
	r := a.NewReal(1.0, "1.0")
	w := newWriter(a, emptyResult(), diag.Discard{})

	var buf bytes.Buffer
	require.NoError(t, w.emitValue(&buf, r, 0, true))
	require.Equal(t, "1.0", buf.String())
}

func TestNonMinifiedDictWithCompositeIndents(t *testing.T) {
	a := object.NewArena()
	inner := a.NewArray([]object.Handle{a.NewInt(1, "")})
	d := a.NewDict([]object.DictEntry{{Key: []byte("Kids"), Value: inner}})
	w := newWriter(a, emptyResult(), diag.Discard{})

	var buf bytes.Buffer
	require.NoError(t, w.emitValue(&buf, d, 0, false))
	require.Contains(t, buf.String(), "\n")
	require.Contains(t, buf.String(), "  /Kids")
}
