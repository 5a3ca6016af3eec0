package write

import (
	"bytes"

	"github.com/benedoc-inc/pdftree/diag"
	"github.com/benedoc-inc/pdftree/lexer"
	"github.com/benedoc-inc/pdftree/object"
	"github.com/benedoc-inc/pdftree/parse"
)

// contentItem is one element of a tokenized content stream: an
// operand value, a bare operator keyword, or an opaque inline image
// (spec.md section 4.C: "stored as an opaque Image token, not further
// parsed").
type contentItem struct {
	operator  []byte // non-nil for an operator keyword
	inlineRaw []byte // non-nil for a "BI ... EI" block
	value     object.Handle
	isValue   bool
}

func isContentDelimiter(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%',
		0x00, 0x09, 0x0A, 0x0C, 0x0D, 0x20:
		return true
	}
	return false
}

// tokenizeContent reads a content stream as a flat sequence of
// operand values and operator keywords (spec.md section 4.I step 1:
// "Tokenize the stream as PDF objects ... content streams contain
// only direct values and operator tokens"), reusing the same
// recursive-descent value grammar the object parser uses (package
// parse's exported ParseValue) since operands are ordinary PDF
// values with no indirect-object headers.
func tokenizeContent(data []byte, arena *object.Arena) ([]contentItem, error) {
	lex := lexer.New(data)
	var items []contentItem
	for {
		tok, err := lex.Next()
		if err != nil {
			return nil, diag.Wrap(diag.KindParseError, int64(lex.Pos()), err, "lexer error")
		}
		if tok.Kind == lexer.EOF {
			break
		}
		switch tok.Kind {
		case lexer.Keyword:
			name := string(tok.Bytes)
			switch name {
			case "true", "false", "null":
				lex.SeekTo(tok.Offset)
				v, err := parse.ParseValue(lex, arena)
				if err != nil {
					return nil, err
				}
				items = append(items, contentItem{value: v, isValue: true})
			case "BI":
				raw, err := scanInlineImage(data, lex, tok.Offset)
				if err != nil {
					return nil, err
				}
				items = append(items, contentItem{inlineRaw: raw})
			default:
				items = append(items, contentItem{operator: append([]byte(nil), tok.Bytes...)})
			}
		case lexer.Int, lexer.Real, lexer.Name, lexer.StringLiteral, lexer.HexString,
			lexer.ArrayOpen, lexer.DictOpen:
			lex.SeekTo(tok.Offset)
			v, err := parse.ParseValue(lex, arena)
			if err != nil {
				return nil, err
			}
			items = append(items, contentItem{value: v, isValue: true})
		default:
			return nil, diag.New(diag.KindParseError, int64(tok.Offset), "unexpected token in content stream")
		}
	}
	return items, nil
}

// scanInlineImage captures the verbatim byte range of a "BI ... ID
// <ws><raw bytes>EI" block starting at biOffset, with lex positioned
// right after the "BI" keyword. The image's own dict (between BI and
// ID) is skipped token-by-token — it's ordinary PDF syntax — and the
// raw payload is matched by the shortest ID-to-EI window whose
// closing "EI" is preceded by whitespace (spec.md section 9 design
// note on inline images).
func scanInlineImage(data []byte, lex *lexer.Lexer, biOffset int) ([]byte, error) {
	for {
		tok, err := lex.Next()
		if err != nil {
			return nil, diag.Wrap(diag.KindParseError, int64(lex.Pos()), err, "lexer error")
		}
		if tok.Kind == lexer.EOF {
			return nil, diag.New(diag.KindParseError, int64(biOffset), "inline image missing ID")
		}
		if isKeywordBytes(tok, "ID") {
			break
		}
	}
	pos := lex.Pos()
	if pos < len(data) && isContentWS(data[pos]) {
		pos++
	}
	for i := pos; i+1 < len(data); i++ {
		if data[i] == 'E' && data[i+1] == 'I' && (i == pos || isContentWS(data[i-1])) {
			end := i + 2
			lex.SeekTo(end)
			return append([]byte(nil), data[biOffset:end]...), nil
		}
	}
	return nil, diag.New(diag.KindParseError, int64(biOffset), "inline image missing EI")
}

func isKeywordBytes(tok lexer.Token, word string) bool {
	return tok.Kind == lexer.Keyword && string(tok.Bytes) == word
}

func isContentWS(b byte) bool {
	switch b {
	case 0x00, 0x09, 0x0A, 0x0C, 0x0D, 0x20:
		return true
	}
	return false
}

// renderItems produces each item's canonical minified byte rendering,
// used both to assemble the minified output and, re-applied to the
// re-parsed result, as the "data string" comparison in the round-trip
// verify step (spec.md section 4.A: structural equality of lexer
// output, not byte position).
func renderItems(arena *object.Arena, items []contentItem) ([][]byte, error) {
	w := newWriter(arena, emptyResult(), diag.Discard{})
	out := make([][]byte, len(items))
	for i, it := range items {
		var b bytes.Buffer
		switch {
		case it.inlineRaw != nil:
			b.Write(it.inlineRaw)
		case it.operator != nil:
			b.Write(it.operator)
		default:
			if err := w.emitChild(&b, it.value, 0, true); err != nil {
				return nil, err
			}
		}
		out[i] = b.Bytes()
	}
	return out, nil
}

// assembleMinified joins rendered item strings with spec.md section
// 4.G's line-wrapping rule: wrap before 255 columns, and insert a
// single separating space only where dropping it would fuse two
// tokens (neither side already ends/starts with a delimiter byte).
func assembleMinified(rendered [][]byte) []byte {
	var out bytes.Buffer
	lineLen := 0
	var prevByte byte
	hasPrev := false
	for _, tok := range rendered {
		if len(tok) == 0 {
			continue
		}
		needSpace := hasPrev && !isContentDelimiter(prevByte) && !isContentDelimiter(tok[0])
		extra := 0
		if needSpace {
			extra = 1
		}
		if lineLen+extra+len(tok) >= 255 {
			out.WriteByte('\n')
			lineLen = 0
			needSpace = false
		}
		if needSpace {
			out.WriteByte(' ')
			lineLen++
		}
		out.Write(tok)
		lineLen += len(tok)
		prevByte = tok[len(tok)-1]
		hasPrev = true
	}
	return out.Bytes()
}

func sameRendering(a, b [][]byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !bytes.Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Minify re-serializes a content stream in minimal-whitespace form
// and verifies the round trip (spec.md section 4.I): tokenize,
// re-render each item minified, re-tokenize the result, and compare
// per-item renderings; any mismatch is a fatal RoundTripFailure.
func Minify(data []byte) ([]byte, error) {
	arena1 := object.NewArena()
	items1, err := tokenizeContent(data, arena1)
	if err != nil {
		return nil, err
	}
	rendered1, err := renderItems(arena1, items1)
	if err != nil {
		return nil, err
	}
	out := assembleMinified(rendered1)

	arena2 := object.NewArena()
	items2, err := tokenizeContent(out, arena2)
	if err != nil {
		return nil, diag.Wrap(diag.KindRoundTripFailure, -1, err, "minified content stream failed to re-parse")
	}
	rendered2, err := renderItems(arena2, items2)
	if err != nil {
		return nil, diag.Wrap(diag.KindRoundTripFailure, -1, err, "minified content stream failed to re-render")
	}
	if !sameRendering(rendered1, rendered2) {
		return nil, diag.New(diag.KindRoundTripFailure, -1, "minified content stream does not re-parse identically")
	}
	return out, nil
}
