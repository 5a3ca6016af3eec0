// Package parse implements the object parser (spec.md section 4.C):
// it drives package lexer over a whole file buffer, assembles
// object.Arena values, discovers the trailer chain, expands object
// streams, and resolves indirect references. Grounded on the
// teacher's core/parse package (document.go's top-level Parse entry,
// get_object.go's per-object extraction, object_stream.go's /ObjStm
// walk) — reworked from its regex/string-search approach into a
// token-driven recursive descent built on package lexer, since the
// value model here is a typed arena rather than map[string]interface{}.
package parse

import (
	"github.com/benedoc-inc/pdftree/diag"
	"github.com/benedoc-inc/pdftree/lexer"
	"github.com/benedoc-inc/pdftree/object"
)

// Document is the parsed result: an arena of values plus the merged
// trailer dictionary (spec.md section 3 "Document").
type Document struct {
	Arena   *object.Arena
	Trailer object.Handle
	Version int // minor version N in "1.N"

	// BinarySignature holds the four bytes of the comment line
	// following the header, if present (spec.md section 6
	// "preserve_binary_signature").
	BinarySignature []byte
}

// Options configures Parse.
type Options struct {
	// Sink receives non-fatal diagnostics (LengthMismatch,
	// UnresolvedReference, etc. — spec.md section 7). Nil discards.
	Sink diag.Sink
}

// Parse reads buf as a complete PDF file (spec.md section 4.C/4.D).
func Parse(buf []byte, opts Options) (*Document, error) {
	sink := diag.NopIfNil(opts.Sink)

	version, sig, err := parseHeader(buf)
	if err != nil {
		return nil, err
	}

	p := &parser{
		buf:        buf,
		lex:        lexer.New(buf),
		arena:      object.NewArena(),
		objects:    make(map[object.RefID]object.Handle),
		seenObjStm: make(map[object.RefID]bool),
		sink:       sink,
		version:    version,
	}
	p.lex.HexEscapeNames = version >= 2 // PDF >= 1.2, spec.md 4.A

	if err := p.scanTopLevel(); err != nil {
		return nil, err
	}

	trailer, err := p.assembleTrailer()
	if err != nil {
		return nil, err
	}

	resolveReferences(p.arena, p.objects, sink)

	return &Document{
		Arena:           p.arena,
		Trailer:         trailer,
		Version:         version,
		BinarySignature: sig,
	}, nil
}
