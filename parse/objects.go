package parse

import (
	"bytes"

	"github.com/benedoc-inc/pdftree/diag"
	"github.com/benedoc-inc/pdftree/lexer"
	"github.com/benedoc-inc/pdftree/object"
)

// parser holds the driver's mutable state across the single forward
// pass over buf (spec.md section 5: single-threaded, synchronous).
type parser struct {
	buf   []byte
	lex   *lexer.Lexer
	arena *object.Arena

	objects    map[object.RefID]object.Handle
	seenObjStm map[object.RefID]bool

	trailers       []trailerRecord
	startxrefHints []int

	passthroughWarned map[string]bool

	sink    diag.Sink
	version int
}

// trailerRecord is one structurally-discovered trailer source: either
// a classic "xref ... trailer <<...>>" block or a cross-reference
// stream object (spec.md section 4.C, "Cross-reference streams").
type trailerRecord struct {
	offset int
	dict   object.Handle
}

// scanTopLevel walks the whole buffer once, dispatching on whichever
// top-level construct starts at the current position: an indirect
// object header, a classic xref table, a trailer dictionary, or a
// startxref pointer. Anything else (stray whitespace already skipped
// by the lexer, unrecognized bytes) is discarded so the scan always
// makes forward progress.
func (p *parser) scanTopLevel() error {
	for {
		tok, err := peekToken(p.lex)
		if err != nil {
			return diag.Wrap(diag.KindParseError, int64(p.lex.Pos()), err, "lexer error")
		}
		switch {
		case tok.Kind == lexer.EOF:
			return nil

		case tok.Kind == lexer.Int:
			// A stray integer that does not start "N M obj" has already
			// been consumed by tryParseIndirectObject; scanning resumes
			// at the token right after it.
			if _, err := p.tryParseIndirectObject(); err != nil {
				return err
			}

		case isKeyword(tok, "xref"):
			p.lex.Next()
			if err := p.parseClassicXref(tok.Offset); err != nil {
				return err
			}

		case isKeyword(tok, "trailer"):
			p.lex.Next()
			if err := p.parseTrailerKeyword(tok.Offset); err != nil {
				return err
			}

		case isKeyword(tok, "startxref"):
			p.lex.Next()
			if err := p.parseStartXref(); err != nil {
				return err
			}

		default:
			p.lex.Next() // comment/garbage byte the lexer surfaced as a bare keyword
		}
	}
}

// tryParseIndirectObject attempts to read "N M obj <value> [stream
// ...] endobj" starting at the lexer's current position (already
// known to start with an Int token). Returns handled=false, having
// rewound past exactly the tokens that turned out not to form an
// object header, if the composite lexeme doesn't match.
func (p *parser) tryParseIndirectObject() (bool, error) {
	tok1, err := p.lex.Next()
	if err != nil {
		return false, diag.Wrap(diag.KindParseError, int64(p.lex.Pos()), err, "lexer error")
	}
	tok2, err := p.lex.Next()
	if err != nil {
		return false, diag.Wrap(diag.KindParseError, int64(p.lex.Pos()), err, "lexer error")
	}
	if tok2.Kind != lexer.Int {
		p.lex.SeekTo(tok2.Offset)
		return false, nil
	}
	tok3, err := p.lex.Next()
	if err != nil {
		return false, diag.Wrap(diag.KindParseError, int64(p.lex.Pos()), err, "lexer error")
	}
	if !isKeyword(tok3, "obj") {
		p.lex.SeekTo(tok2.Offset)
		return false, nil
	}

	id := object.RefID{ID: uint32(tok1.IntVal), Gen: uint16(tok2.IntVal)}
	bodyOffset := tok1.Offset

	value, err := p.parseValue()
	if err != nil {
		return false, err
	}

	isDict := p.arena.Get(value).Kind == object.KindDict
	if isDict {
		tok, err := peekToken(p.lex)
		if err != nil {
			return false, diag.Wrap(diag.KindParseError, int64(p.lex.Pos()), err, "lexer error")
		}
		if isKeyword(tok, "stream") {
			p.lex.Next()
			value, err = p.parseStreamBody(value)
			if err != nil {
				return false, err
			}
		}
	}

	end, err := p.lex.Next()
	if err != nil {
		return false, diag.Wrap(diag.KindParseError, int64(p.lex.Pos()), err, "lexer error")
	}
	if !isKeyword(end, "endobj") {
		p.lex.SeekTo(end.Offset)
		p.sink.Warn(diag.Diagnostic{Kind: diag.KindInvalidIndirect, Offset: int64(end.Offset),
			Message: "missing endobj after object body"})
	}

	p.objects[id] = value

	if err := p.handleSpecialObject(id, bodyOffset, value); err != nil {
		return false, err
	}

	return true, nil
}

// handleSpecialObject inspects a freshly-parsed indirect object for
// the two structural roles spec.md section 4.C calls out: object
// streams (/ObjStm, expanded immediately so their contents join the
// indirect-object table) and cross-reference streams (/XRef, folded
// into the trailer-chain candidate list).
func (p *parser) handleSpecialObject(id object.RefID, offset int, value object.Handle) error {
	node := p.arena.Get(value)
	if node.Kind != object.KindStream {
		return nil
	}
	streamDictHandle := node.Stream.Dict
	dictNode := p.arena.Get(streamDictHandle)
	typeName, ok := p.dictName(dictNode, "Type")
	if !ok {
		return nil
	}
	switch typeName {
	case "ObjStm":
		return p.expandObjectStream(id, value)
	case "XRef":
		p.trailers = append(p.trailers, trailerRecord{offset: offset, dict: streamDictHandle})
	}
	return nil
}

// dictName returns the decoded Name bytes stored under key in a Dict
// node, if present.
func (p *parser) dictName(n *object.Node, key string) (string, bool) {
	h, ok := n.DictGet(key)
	if !ok {
		return "", false
	}
	v := p.arena.Get(h)
	if v.Kind != object.KindName {
		return "", false
	}
	return string(v.Bytes), true
}

// parseStreamBody reads the raw byte payload following the "stream"
// keyword (spec.md section 4.C): exactly one CRLF or LF is consumed,
// then either the declared Length is honored (if it verifies against
// a following "endstream") or a shortest-prefix scan locates
// "endstream". The Filter layer runs inline if FlateDecode applies.
func (p *parser) parseStreamBody(dictHandle object.Handle) (object.Handle, error) {
	pos := p.lex.Pos()
	if pos < len(p.buf) && p.buf[pos] == '\r' {
		pos++
	}
	if pos < len(p.buf) && p.buf[pos] == '\n' {
		pos++
	}

	dictNode := p.arena.Get(dictHandle)
	data, newPos, err := p.extractStreamData(dictNode, pos)
	if err != nil {
		return object.Invalid, err
	}
	p.lex.SeekTo(newPos)

	data, flags, err := p.applyFilter(dictNode, data)
	if err != nil {
		return object.Invalid, err
	}

	entries := append([]object.DictEntry(nil), dictNode.Dict...)
	return p.arena.NewStream(entries, data, flags), nil
}

// extractStreamData implements the declared-Length-then-fallback
// logic. pos is the byte offset right after the stream keyword's
// line terminator.
func (p *parser) extractStreamData(dictNode *object.Node, pos int) ([]byte, int, error) {
	if lenHandle, ok := dictNode.DictGet("Length"); ok {
		lenNode := p.arena.Get(lenHandle)
		if lenNode.Kind == object.KindInt && lenNode.Int >= 0 {
			declared := int(lenNode.Int)
			end := pos + declared
			if end <= len(p.buf) {
				after := end
				for after < len(p.buf) && isStreamWS(p.buf[after]) {
					after++
				}
				if bytes.HasPrefix(p.buf[after:], []byte("endstream")) {
					return append([]byte(nil), p.buf[pos:end]...), after + len("endstream"), nil
				}
			}
		}
	}

	idx := bytes.Index(p.buf[pos:], []byte("endstream"))
	if idx < 0 {
		return nil, 0, diag.New(diag.KindStreamTruncated, int64(pos), "no endstream found")
	}
	dataEnd := pos + idx
	trimmed := dataEnd
	for trimmed > pos && isStreamWS(p.buf[trimmed-1]) {
		trimmed--
	}
	// Only trim a single trailing EOL, not arbitrary whitespace that
	// might be meaningful stream content.
	if trimmed < dataEnd {
		trimmed = dataEnd
		if trimmed > pos && p.buf[trimmed-1] == '\n' {
			trimmed--
		}
		if trimmed > pos && p.buf[trimmed-1] == '\r' {
			trimmed--
		}
	}
	declaredOK := false
	if lenHandle, ok := dictNode.DictGet("Length"); ok {
		if lenNode := p.arena.Get(lenHandle); lenNode.Kind == object.KindInt {
			declaredOK = int(lenNode.Int) == trimmed-pos
		}
	}
	if !declaredOK {
		p.sink.Warn(diag.Diagnostic{Kind: diag.KindLengthMismatch, Offset: int64(pos),
			Message: "declared /Length did not match actual stream bytes; using actual length"})
	}
	return append([]byte(nil), p.buf[pos:trimmed]...), pos + idx + len("endstream"), nil
}

func isStreamWS(b byte) bool {
	switch b {
	case 0x00, 0x09, 0x0A, 0x0C, 0x0D, 0x20:
		return true
	}
	return false
}

// parseClassicXref consumes a classic xref table in full (spec.md
// section 4.C): repeated "first count" subsection headers each
// followed by count 20-byte entries, ending wherever the next token
// is the "trailer" keyword instead of another subsection header. The
// decoded offsets are discarded per spec — the parser already knows
// every object's location from the forward scan.
func (p *parser) parseClassicXref(blockOffset int) error {
	for {
		tok, err := peekToken(p.lex)
		if err != nil {
			return diag.Wrap(diag.KindParseError, int64(p.lex.Pos()), err, "lexer error")
		}
		if tok.Kind != lexer.Int {
			break
		}
		firstTok, _ := p.lex.Next()
		countTok, err := p.lex.Next()
		if err != nil || countTok.Kind != lexer.Int {
			return diag.New(diag.KindParseError, int64(firstTok.Offset), "malformed xref subsection header")
		}
		count := int(countTok.IntVal)
		for i := 0; i < count; i++ {
			offTok, err1 := p.lex.Next()
			genTok, err2 := p.lex.Next()
			flagTok, err3 := p.lex.Next()
			if err1 != nil || err2 != nil || err3 != nil ||
				offTok.Kind != lexer.Int || genTok.Kind != lexer.Int || flagTok.Kind != lexer.Keyword {
				return diag.New(diag.KindParseError, int64(offTok.Offset), "malformed xref entry")
			}
		}
	}

	tok, err := peekToken(p.lex)
	if err != nil {
		return diag.Wrap(diag.KindParseError, int64(p.lex.Pos()), err, "lexer error")
	}
	if isKeyword(tok, "trailer") {
		p.lex.Next()
		return p.parseTrailerKeyword(blockOffset)
	}
	return nil
}

// parseTrailerKeyword parses the dictionary following a "trailer"
// keyword and records it against blockOffset, the structural start of
// the xref block it belongs to (used later to match against a
// startxref hint).
func (p *parser) parseTrailerKeyword(blockOffset int) error {
	open, err := p.lex.Next()
	if err != nil {
		return diag.Wrap(diag.KindParseError, int64(p.lex.Pos()), err, "lexer error")
	}
	if open.Kind != lexer.DictOpen {
		return diag.New(diag.KindParseError, int64(open.Offset), "trailer not followed by a dictionary")
	}
	dict, err := p.parseDict()
	if err != nil {
		return err
	}
	p.trailers = append(p.trailers, trailerRecord{offset: blockOffset, dict: dict})
	return nil
}

// parseStartXref records the offset following "startxref" as a hint
// used to pick which collected trailer is active (spec.md section
// 4.C). A garbled startxref (no integer follows) is fatal.
func (p *parser) parseStartXref() error {
	tok, err := p.lex.Next()
	if err != nil || tok.Kind != lexer.Int {
		return diag.New(diag.KindParseError, int64(p.lex.Pos()), "garbled startxref")
	}
	p.startxrefHints = append(p.startxrefHints, int(tok.IntVal))
	return nil
}
