package parse

import (
	"bytes"

	"github.com/benedoc-inc/pdftree/diag"
)

// parseHeader validates "%PDF-1.N" and a required "%%EOF" marker
// (spec.md section 7: MalformedHeader is fatal when either is
// missing), and returns N plus the four-byte binary-signature comment
// line, if one follows the header line.
func parseHeader(buf []byte) (version int, signature []byte, err error) {
	const marker = "%PDF-1."
	idx := bytes.Index(buf, []byte(marker))
	if idx < 0 || idx > 1024 {
		return 0, nil, diag.New(diag.KindMalformedHeader, 0, "missing %%PDF- header")
	}
	pos := idx + len(marker)
	if pos >= len(buf) || buf[pos] < '0' || buf[pos] > '9' {
		return 0, nil, diag.New(diag.KindMalformedHeader, int64(idx), "malformed PDF version in header")
	}
	version = int(buf[pos] - '0')
	pos++

	if !bytes.Contains(buf, []byte("%%EOF")) {
		return 0, nil, diag.New(diag.KindMalformedHeader, int64(len(buf)), "missing %%%%EOF marker")
	}

	// The binary-signature comment, if present, is the next line:
	// "%" followed by four high-bit bytes (spec.md section 6).
	lineEnd := pos
	for lineEnd < len(buf) && buf[lineEnd] != '\n' && buf[lineEnd] != '\r' {
		lineEnd++
	}
	sigStart := lineEnd
	for sigStart < len(buf) && (buf[sigStart] == '\n' || buf[sigStart] == '\r') {
		sigStart++
	}
	if sigStart < len(buf) && buf[sigStart] == '%' && sigStart+5 <= len(buf) {
		candidate := buf[sigStart+1 : sigStart+5]
		allHighBit := true
		for _, b := range candidate {
			if b < 0x80 {
				allHighBit = false
				break
			}
		}
		if allHighBit {
			signature = append([]byte(nil), candidate...)
		}
	}
	return version, signature, nil
}
