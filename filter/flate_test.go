package filter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFlateRoundTrip(t *testing.T) {
	original := []byte("the quick brown fox jumps over the lazy dog, repeated: the quick brown fox jumps over the lazy dog")

	encoded, err := FlateEncode(original)
	require.NoError(t, err)
	require.NotEqual(t, original, encoded)

	decoded, err := FlateDecode(encoded)
	require.NoError(t, err)
	require.Equal(t, original, decoded)
}

func TestFlateDecodeRejectsGarbage(t *testing.T) {
	_, err := FlateDecode([]byte{0x00, 0x01, 0x02})
	require.Error(t, err)
}

func TestIsFlateDecodeName(t *testing.T) {
	require.True(t, IsFlateDecode("FlateDecode"))
	require.False(t, IsFlateDecode("DCTDecode"))
	require.False(t, IsFlateDecode(""))
}
