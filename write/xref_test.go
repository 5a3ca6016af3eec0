package write

import (
	"bytes"
	"testing"

	"github.com/benedoc-inc/pdftree/diag"
	"github.com/benedoc-inc/pdftree/object"
	"github.com/stretchr/testify/require"
)

func buildSimpleDoc() (*object.Arena, object.Handle) {
	a := object.NewArena()
	leaf := a.NewDict([]object.DictEntry{
		{Key: []byte("Type"), Value: a.NewName([]byte("Page"))},
	})
	pages := a.NewDict([]object.DictEntry{
		{Key: []byte("Type"), Value: a.NewName([]byte("Pages"))},
		{Key: []byte("Kids"), Value: a.NewArray([]object.Handle{leaf})},
		{Key: []byte("Count"), Value: a.NewInt(1, "")},
	})
	root := a.NewDict([]object.DictEntry{
		{Key: []byte("Type"), Value: a.NewName([]byte("Catalog"))},
		{Key: []byte("Pages"), Value: pages},
	})
	trailer := a.NewDict([]object.DictEntry{{Key: []byte("Root"), Value: root}})
	return a, trailer
}

func TestSerializeClassicProducesXrefAndTrailer(t *testing.T) {
	a, trailer := buildSimpleDoc()
	out, err := Serialize(a, trailer, Policy{}, nil, diag.Discard{})
	require.NoError(t, err)

	s := string(out)
	require.Contains(t, s, "%PDF-1.4")
	require.Contains(t, s, "xref\n")
	require.Contains(t, s, "trailer\n")
	require.Contains(t, s, "startxref\n")
	require.True(t, bytes.HasSuffix(out, []byte("%%EOF\n")))
}

func TestSerializeXRefStreamUsesVersionAtLeast5(t *testing.T) {
	a, trailer := buildSimpleDoc()
	out, err := Serialize(a, trailer, Policy{UseObjectStreams: true, Version: 3}, nil, diag.Discard{})
	require.NoError(t, err)

	s := string(out)
	require.Contains(t, s, "%PDF-1.5")
	require.Contains(t, s, "/Type /XRef")
	require.NotContains(t, s, "\ntrailer\n")
}

func TestSerializeXRefStreamHonorsRequestedVersionAboveFloor(t *testing.T) {
	a, trailer := buildSimpleDoc()
	out, err := Serialize(a, trailer, Policy{UseObjectStreams: true, Version: 7}, nil, diag.Discard{})
	require.NoError(t, err)
	require.Contains(t, string(out), "%PDF-1.7")
}

func TestSerializeDefaultBinarySignatureUsedWhenNoneGiven(t *testing.T) {
	a, trailer := buildSimpleDoc()
	out, err := Serialize(a, trailer, Policy{}, nil, diag.Discard{})
	require.NoError(t, err)
	require.True(t, bytes.Contains(out, DefaultBinarySignature))
}

func TestSerializePreservesGivenBinarySignature(t *testing.T) {
	a, trailer := buildSimpleDoc()
	sig := []byte{0x01, 0x02, 0x03, 0x04}
	out, err := Serialize(a, trailer, Policy{}, sig, diag.Discard{})
	require.NoError(t, err)
	require.True(t, bytes.Contains(out, sig))
}
