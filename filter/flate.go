// Package filter implements the FlateDecode codec (spec.md section
// 4.E) and recognizes, without decoding, every other filter name so
// the parser can pass those streams through opaquely. Grounded on the
// teacher's parser/filters.go, which implements the same decode
// switch but for a wider filter set; this module narrows to
// FlateDecode per spec.md's explicit non-goal ("filters other than
// FlateDecode ... are passed through opaquely").
package filter

import (
	"bytes"
	"compress/zlib"
	"io"
)

// FlateDecode decompresses zlib-wrapped deflate data (spec.md 4.E "On
// read: run zlib inflate over the stream bytes").
func FlateDecode(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// FlateEncode compresses data at the maximum zlib level with a final
// flush (spec.md 4.E "run zlib deflate at level 9 with Z_FINISH").
func FlateEncode(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// IsFlateDecode reports whether filterName (a single Name's decoded
// bytes, without the leading '/') names the FlateDecode filter.
func IsFlateDecode(filterName string) bool {
	return filterName == "FlateDecode"
}
