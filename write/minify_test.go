package write

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMinifyStripsRedundantWhitespace(t *testing.T) {
	out, err := Minify([]byte("  q\n1   0   0   1   10   20   cm\nBT /F1   12 Tf (Hello) Tj ET\nQ  "))
	require.NoError(t, err)
	require.Equal(t, "q 1 0 0 1 10 20 cm BT/F1 12 Tf(Hello)Tj ET Q", string(out))
}

func TestMinifyPreservesInlineImageVerbatim(t *testing.T) {
	input := []byte("q BI /W 1 /H 1 /BPC 8 /CS /G ID \x00 EI Q")
	out, err := Minify(input)
	require.NoError(t, err)
	require.Contains(t, string(out), "BI /W 1 /H 1 /BPC 8 /CS /G ID \x00 EI")
}

func TestMinifyWrapsBeforeColumn255(t *testing.T) {
	// 60 "cm" operators at 15 bytes each (14 plus a separator)
	// guarantee at least one wrap.
	var input []byte
	for i := 0; i < 60; i++ {
		input = append(input, []byte("1 0 0 1 0 0 cm\n")...)
	}
	out, err := Minify(input)
	require.NoError(t, err)
	require.Contains(t, string(out), "\n")
	for _, line := range splitLines(out) {
		require.Less(t, len(line), 255)
	}
}

func splitLines(b []byte) [][]byte {
	var lines [][]byte
	start := 0
	for i, c := range b {
		if c == '\n' {
			lines = append(lines, b[start:i])
			start = i + 1
		}
	}
	lines = append(lines, b[start:])
	return lines
}

func TestMinifyRejectsUnterminatedInlineImage(t *testing.T) {
	_, err := Minify([]byte("BI /W 1 ID \x00\x00\x00"))
	require.Error(t, err)
}
