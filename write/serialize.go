package write

import (
	"fmt"

	"github.com/benedoc-inc/pdftree/diag"
	"github.com/benedoc-inc/pdftree/enumerate"
	"github.com/benedoc-inc/pdftree/object"
)

// DefaultBinarySignature is the four high-bit-set marker bytes used
// when a document has none of its own to preserve (spec.md section 6,
// "File format produced").
var DefaultBinarySignature = []byte{0xBF, 0xF7, 0xA2, 0xFE}

// Serialize runs the enumerator and the H1/H2 xref writer over arena,
// choosing PDF version per spec.md section 6 ("N is chosen as
// max(5, requested) when object streams are enabled, else 4").
// binarySignature is used verbatim if it is exactly 4 bytes;
// otherwise DefaultBinarySignature is substituted.
func Serialize(arena *object.Arena, trailer object.Handle, policy Policy, binarySignature []byte, sink diag.Sink) ([]byte, error) {
	ids := enumerate.Enumerate(arena, trailer)
	w := newWriter(arena, ids, diag.NopIfNil(sink))

	version := 4
	if policy.UseObjectStreams {
		version = policy.Version
		if version < 5 {
			version = 5
		}
	}

	sig := DefaultBinarySignature
	if len(binarySignature) == 4 {
		sig = binarySignature
	}

	header := []byte(fmt.Sprintf("%%PDF-1.%d\n%%", version))
	header = append(header, sig...)
	header = append(header, '\n', '\n')

	if policy.UseObjectStreams {
		return WriteXRefStream(w, header, policy, trailer)
	}
	return WriteClassic(w, header, policy, trailer)
}
