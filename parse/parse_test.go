package parse

import (
	"strconv"
	"testing"

	"github.com/benedoc-inc/pdftree/filter"
	"github.com/benedoc-inc/pdftree/object"
	"github.com/stretchr/testify/require"
)

// minimalPDF builds the smallest legal single-page document: a
// Catalog, a Pages tree of one leaf, and a classic xref/trailer whose
// table offsets are deliberately wrong (the parser must never trust
// them).
func minimalPDF() []byte {
	return []byte("%PDF-1.4\n%\xE2\xE3\xCF\xD3\n" +
		"1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n" +
		"2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n" +
		"3 0 obj\n<< /Type /Page /Parent 2 0 R >>\nendobj\n" +
		"xref\n0 4\n" +
		"0000000000 65535 f \n" +
		"0000000009 00000 n \n" +
		"0000000009 00000 n \n" +
		"0000000009 00000 n \n" +
		"trailer\n<< /Size 4 /Root 1 0 R >>\n" +
		"startxref\n9999\n" +
		"%%EOF\n")
}

func TestParseMinimalDocument(t *testing.T) {
	doc, err := Parse(minimalPDF(), Options{})
	require.NoError(t, err)
	require.Equal(t, 4, doc.Version)
	require.Equal(t, []byte{0xE2, 0xE3, 0xCF, 0xD3}, doc.BinarySignature)

	trailerNode := doc.Arena.Get(doc.Trailer)
	rootHandle, ok := trailerNode.DictGet("Root")
	require.True(t, ok)

	root := doc.Arena.Get(rootHandle)
	require.Equal(t, object.KindRef, root.Kind)
	require.True(t, doc.Arena.Valid(root.Resolved), "Root ref must be resolved")

	catalog := doc.Arena.Get(root.Resolved)
	typeHandle, _ := catalog.DictGet("Type")
	require.Equal(t, "Catalog", string(doc.Arena.Get(typeHandle).Bytes))
}

func TestParseRejectsMissingHeader(t *testing.T) {
	_, err := Parse([]byte("not a pdf at all"), Options{})
	require.Error(t, err)
}

func TestParsePrevChainMergesWithEarlierWinning(t *testing.T) {
	buf := []byte("%PDF-1.5\n" +
		"1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n" +
		"2 0 obj\n<< /Type /Pages /Kids [] /Count 0 >>\nendobj\n" +
		"xref\n0 1\n0000000000 65535 f \n" +
		"trailer\n<< /Size 3 /Root 1 0 R /Info 9 0 R >>\n" +
		"startxref\n0\n%%EOF\n" +
		// incremental update block appended after the first %%EOF
		"xref\n0 1\n0000000000 65535 f \n" +
		"trailer\n<< /Size 3 /Root 1 0 R /Prev 110 >>\n" +
		"startxref\n500\n%%EOF\n")

	doc, err := Parse(buf, Options{})
	require.NoError(t, err)

	trailerNode := doc.Arena.Get(doc.Trailer)
	_, hasInfo := trailerNode.DictGet("Info")
	require.True(t, hasInfo, "Info from the earlier trailer must survive the /Prev merge")
}

func TestParseStreamFlateDecodeRoundTrip(t *testing.T) {
	encoded, err := filter.FlateEncode([]byte("BT /F1 12 Tf (Hi) Tj ET"))
	require.NoError(t, err)

	buf := []byte("%PDF-1.4\n" +
		"1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n" +
		"2 0 obj\n<< /Type /Pages /Kids [] /Count 0 >>\nendobj\n" +
		"3 0 obj\n<< /Length " + strconv.Itoa(len(encoded)) + " /Filter /FlateDecode >>\nstream\n")
	buf = append(buf, encoded...)
	buf = append(buf, []byte("\nendstream\nendobj\n"+
		"trailer\n<< /Size 4 /Root 1 0 R >>\n"+
		"startxref\n0\n%%EOF\n")...)

	doc, err := Parse(buf, Options{})
	require.NoError(t, err)

	// the decoded bytes must appear somewhere in the arena as a Stream
	// node's Data, regardless of which handle ended up hosting it.
	found := false
	for i := 1; i <= doc.Arena.Len(); i++ {
		n := doc.Arena.Get(object.Handle(i))
		if n.Kind == object.KindStream && string(n.Stream.Data) == "BT /F1 12 Tf (Hi) Tj ET" {
			found = true
			break
		}
	}
	require.True(t, found, "stream must be decoded to its original bytes")
}
