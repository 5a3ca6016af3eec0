package parse

import (
	"github.com/benedoc-inc/pdftree/diag"
	"github.com/benedoc-inc/pdftree/lexer"
	"github.com/benedoc-inc/pdftree/object"
)

// peekToken reads the next token and rewinds the lexer to its start,
// so the caller can branch on its kind before deciding whether to
// consume it.
func peekToken(lex *lexer.Lexer) (lexer.Token, error) {
	tok, err := lex.Next()
	if err != nil {
		return tok, err
	}
	lex.SeekTo(tok.Offset)
	return tok, nil
}

func isKeyword(tok lexer.Token, word string) bool {
	return tok.Kind == lexer.Keyword && string(tok.Bytes) == word
}

// ParseValue parses exactly one value at lex's current position
// (spec.md section 4.C). It assembles the "N M R" composite lexeme by
// looking two tokens ahead of a leading integer (section 4.B); "N M
// obj" is recognized one layer up, by the top-level driver in
// objects.go, since indirect objects never nest inside a value.
//
// Exported as a free function (rather than a *parser method) so
// package write's content-stream minifier can reuse the identical
// recursive-descent logic — a content stream's operands are the same
// value grammar minus indirect-object headers, and minification must
// re-parse its own re-serialized output using exactly this parser to
// satisfy the round-trip check in spec.md section 4.I.
func ParseValue(lex *lexer.Lexer, arena *object.Arena) (object.Handle, error) {
	tok, err := lex.Next()
	if err != nil {
		return object.Invalid, diag.Wrap(diag.KindParseError, int64(lex.Pos()), err, "lexer error")
	}

	switch tok.Kind {
	case lexer.EOF:
		return object.Invalid, diag.New(diag.KindParseError, int64(tok.Offset), "unexpected end of input in value position")

	case lexer.Int:
		return parseIntOrRef(lex, arena, tok)

	case lexer.Real:
		return arena.NewReal(tok.RealVal, tok.Literal), nil

	case lexer.Name:
		return arena.NewName(tok.Bytes), nil

	case lexer.StringLiteral:
		return arena.NewStringLiteral(tok.Bytes), nil

	case lexer.HexString:
		return arena.NewHexString(tok.Bytes), nil

	case lexer.DictOpen:
		return ParseDict(lex, arena)

	case lexer.ArrayOpen:
		return ParseArray(lex, arena)

	case lexer.Keyword:
		switch string(tok.Bytes) {
		case "true":
			return arena.NewBool(true), nil
		case "false":
			return arena.NewBool(false), nil
		case "null":
			return arena.NewNull(), nil
		default:
			return object.Invalid, diag.New(diag.KindParseError, int64(tok.Offset), "unexpected keyword %q in value position", tok.Bytes)
		}

	default:
		return object.Invalid, diag.New(diag.KindParseError, int64(tok.Offset), "unexpected token in value position")
	}
}

// parseIntOrRef implements the "N M R" lookback (spec.md section
// 4.B): tok is an already-consumed leading integer; it peeks up to
// two more tokens to see whether they complete a reference,
// backtracking to whichever token was not actually part of the
// composite.
func parseIntOrRef(lex *lexer.Lexer, arena *object.Arena, tok lexer.Token) (object.Handle, error) {
	tok2, err := lex.Next()
	if err != nil {
		return object.Invalid, diag.Wrap(diag.KindParseError, int64(lex.Pos()), err, "lexer error")
	}
	if tok2.Kind != lexer.Int {
		lex.SeekTo(tok2.Offset)
		return arena.NewInt(tok.IntVal, tok.Literal), nil
	}

	tok3, err := lex.Next()
	if err != nil {
		return object.Invalid, diag.Wrap(diag.KindParseError, int64(lex.Pos()), err, "lexer error")
	}
	if isKeyword(tok3, "R") {
		if tok.IntVal < 0 || tok2.IntVal < 0 {
			return object.Invalid, diag.New(diag.KindInvalidIndirect, int64(tok.Offset), "negative id/gen in indirect reference")
		}
		return arena.NewRef(object.RefID{ID: uint32(tok.IntVal), Gen: uint16(tok2.IntVal)}), nil
	}

	lex.SeekTo(tok2.Offset)
	return arena.NewInt(tok.IntVal, tok.Literal), nil
}

// ParseDict parses a dictionary body after "<<" has been consumed.
func ParseDict(lex *lexer.Lexer, arena *object.Arena) (object.Handle, error) {
	var entries []object.DictEntry
	for {
		tok, err := lex.Next()
		if err != nil {
			return object.Invalid, diag.Wrap(diag.KindParseError, int64(lex.Pos()), err, "lexer error")
		}
		if tok.Kind == lexer.DictClose {
			break
		}
		if tok.Kind != lexer.Name {
			return object.Invalid, diag.New(diag.KindParseError, int64(tok.Offset), "dictionary key is not a name")
		}
		key := append([]byte(nil), tok.Bytes...)
		val, err := ParseValue(lex, arena)
		if err != nil {
			return object.Invalid, err
		}
		entries = append(entries, object.DictEntry{Key: key, Value: val})
	}
	return arena.NewDict(entries), nil
}

// ParseArray parses an array body after "[" has been consumed.
func ParseArray(lex *lexer.Lexer, arena *object.Arena) (object.Handle, error) {
	var items []object.Handle
	for {
		tok, err := peekToken(lex)
		if err != nil {
			return object.Invalid, diag.Wrap(diag.KindParseError, int64(lex.Pos()), err, "lexer error")
		}
		if tok.Kind == lexer.ArrayClose {
			lex.Next()
			break
		}
		if tok.Kind == lexer.EOF {
			return object.Invalid, diag.New(diag.KindParseError, int64(tok.Offset), "unterminated array")
		}
		v, err := ParseValue(lex, arena)
		if err != nil {
			return object.Invalid, err
		}
		items = append(items, v)
	}
	return arena.NewArray(items), nil
}

func (p *parser) parseValue() (object.Handle, error) { return ParseValue(p.lex, p.arena) }
func (p *parser) parseDict() (object.Handle, error)  { return ParseDict(p.lex, p.arena) }
func (p *parser) parseArray() (object.Handle, error) { return ParseArray(p.lex, p.arena) }
