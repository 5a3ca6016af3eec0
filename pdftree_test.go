package pdftree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func minimalSinglePagePDF() []byte {
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

func TestParseThenSerializeRoundTrips(t *testing.T) {
	doc, err := Parse(minimalSinglePagePDF(), Flags{})
	require.NoError(t, err)
	require.Equal(t, 4, doc.Version)

	out, err := Serialize(doc, Flags{}, 0)
	require.NoError(t, err)

	reparsed, err := Parse(out, Flags{})
	require.NoError(t, err)
	require.Equal(t, doc.Version, reparsed.Version)
}

func TestParseRepairsWrongPageCount(t *testing.T) {
	buf := []byte("%PDF-1.4\n" +
		"1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n" +
		"2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 99 >>\nendobj\n" +
		"3 0 obj\n<< /Type /Page /Parent 2 0 R >>\nendobj\n" +
		"trailer\n<< /Size 4 /Root 1 0 R >>\n" +
		"startxref\n0\n%%EOF\n")

	doc, err := Parse(buf, Flags{})
	require.NoError(t, err)

	rootHandle, _ := doc.Arena.Get(doc.Trailer).DictGet("Root")
	root := doc.Arena.Get(resolveHandle(doc.Arena, rootHandle))
	pagesHandle, _ := root.DictGet("Pages")
	pages := doc.Arena.Get(resolveHandle(doc.Arena, pagesHandle))
	count, _ := dictInt(doc.Arena, pages, "Count")
	require.Equal(t, int64(1), count, "wrong /Count must be auto-repaired")
}

func TestParseValidateStrictFailsOnMissingRoot(t *testing.T) {
	buf := []byte("%PDF-1.4\n" +
		"1 0 obj\n<< /Foo /Bar >>\nendobj\n" +
		"trailer\n<< /Size 1 >>\n" +
		"startxref\n0\n%%EOF\n")

	_, err := Parse(buf, Flags{ValidateStrict: true})
	require.Error(t, err)
}

func TestParseNoValidateSkipsRepair(t *testing.T) {
	buf := []byte("%PDF-1.4\n" +
		"1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n" +
		"2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 99 >>\nendobj\n" +
		"3 0 obj\n<< /Type /Page /Parent 2 0 R >>\nendobj\n" +
		"trailer\n<< /Size 4 /Root 1 0 R >>\n" +
		"startxref\n0\n%%EOF\n")

	doc, err := Parse(buf, Flags{NoValidate: true})
	require.NoError(t, err)

	rootHandle, _ := doc.Arena.Get(doc.Trailer).DictGet("Root")
	root := doc.Arena.Get(resolveHandle(doc.Arena, rootHandle))
	pagesHandle, _ := root.DictGet("Pages")
	pages := doc.Arena.Get(resolveHandle(doc.Arena, pagesHandle))
	count, _ := dictInt(doc.Arena, pages, "Count")
	require.Equal(t, int64(99), count, "novalidate must leave the wrong /Count untouched")
}

func TestFlagsValidateRejectsObjectStreamsBelowVersion5(t *testing.T) {
	f := Flags{UseObjectStreams: true, Version: 3}
	require.Error(t, f.Validate())
}

func TestFlagsOptimizeExpandsToThreeConstituents(t *testing.T) {
	r := Flags{Optimize: true}.resolve()
	require.True(t, r.compress)
	require.True(t, r.minify)
	require.True(t, r.useObjectStreams)
}

func TestFlagsNoOptimizeWinsOverOptimize(t *testing.T) {
	r := Flags{Optimize: true, NoOptimize: true}.resolve()
	require.False(t, r.compress)
	require.False(t, r.minify)
	require.False(t, r.useObjectStreams)
}

func TestSerializeAppliesTimestamp(t *testing.T) {
	doc, err := Parse(minimalSinglePagePDF(), Flags{})
	require.NoError(t, err)

	out, err := Serialize(doc, Flags{}, 1700000000)
	require.NoError(t, err)
	require.Contains(t, string(out), "CreationDate")
	require.Contains(t, string(out), "ModDate")
}

func TestFormatTimestampZeroSuppressesUpdate(t *testing.T) {
	_, ok := FormatTimestamp(0)
	require.False(t, ok)
}
