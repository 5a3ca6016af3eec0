// Package write implements the direct-object writer, the xref/trailer
// writer, and the content-stream minifier (spec.md sections 4.G, 4.H,
// 4.I). Grounded on the teacher's core/write package (writer.go's
// object/body assembly, xref_stream.go's cross-reference-stream
// packing) — reworked from building *bytes.Buffer bodies ad hoc from
// map[string]interface{} dictionaries into walking object.Arena
// values through the enumerator's assigned IDs.
package write

import (
	"bytes"
	"sort"

	"github.com/benedoc-inc/pdftree/object"
)

// sortedKeys orders dict entries case-folded lexicographically on the
// raw key bytes, with raw-byte order as the tiebreak (spec.md section
// 4.F, "Tie-break for dict key iteration").
func sortedKeys(entries []object.DictEntry) []object.DictEntry {
	out := append([]object.DictEntry(nil), entries...)
	sort.Slice(out, func(i, j int) bool {
		fi, fj := bytes.ToLower(out[i].Key), bytes.ToLower(out[j].Key)
		if c := bytes.Compare(fi, fj); c != 0 {
			return c < 0
		}
		return bytes.Compare(out[i].Key, out[j].Key) < 0
	})
	return out
}

// nameNeedsHexEscape reports whether b contains a byte that must be
// %-style hex-escaped ("#HH") when writing a Name token: any
// delimiter, whitespace, or non-regular byte (spec.md section 4.G,
// "emitted verbatim" only when free of those).
func nameNeedsHexEscape(b []byte) bool {
	for _, c := range b {
		switch {
		case c == 0x00, c == 0x09, c == 0x0A, c == 0x0C, c == 0x0D, c == 0x20:
			return true
		case c == '(', c == ')', c == '<', c == '>', c == '[', c == ']',
			c == '{', c == '}', c == '/', c == '%', c == '#':
			return true
		case c < 0x21 || c > 0x7E:
			return true
		}
	}
	return false
}

const hexDigits = "0123456789abcdef"

func writeEscapedName(buf *bytes.Buffer, b []byte) {
	buf.WriteByte('/')
	if !nameNeedsHexEscape(b) {
		buf.Write(b)
		return
	}
	for _, c := range b {
		switch {
		case c == 0x00, c == 0x09, c == 0x0A, c == 0x0C, c == 0x0D, c == 0x20,
			c == '(', c == ')', c == '<', c == '>', c == '[', c == ']',
			c == '{', c == '}', c == '/', c == '%', c == '#',
			c < 0x21, c > 0x7E:
			buf.WriteByte('#')
			buf.WriteByte(hexDigits[c>>4])
			buf.WriteByte(hexDigits[c&0x0F])
		default:
			buf.WriteByte(c)
		}
	}
}

func writeHexString(buf *bytes.Buffer, b []byte) {
	buf.WriteByte('<')
	for _, c := range b {
		buf.WriteByte(hexDigits[c>>4])
		buf.WriteByte(hexDigits[c&0x0F])
	}
	buf.WriteByte('>')
}
