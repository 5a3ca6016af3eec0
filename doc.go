// Package pdftree is a PDF object parser and serializer: a
// byte-accurate lexer, a recursive-descent value builder, xref/trailer
// discovery by forward scan (not by trusting table offsets),
// indirect-object resolution, stream/filter decoding, and the reverse
// direction — indirect-object enumeration, direct-object emission,
// content-stream minification, Flate compression, and xref
// table/stream emission.
//
// # Quick start
//
//	doc, err := pdftree.Parse(pdfBytes, pdftree.Flags{})
//	...
//	out, err := pdftree.Serialize(doc, pdftree.Flags{Compress: true}, 0)
//
// # Packages
//
//   - object: the arena-addressed tagged-variant value model
//   - lexer: the byte-accurate tokenizer
//   - parse: the object parser, xref/trailer discovery, reference resolution
//   - filter: the FlateDecode filter layer
//   - enumerate: the indirect-object enumerator
//   - write: the direct-object writer, xref/trailer writer, and content-stream minifier
//   - diag: the shared error/diagnostic taxonomy
package pdftree
