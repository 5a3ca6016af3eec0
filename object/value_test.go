package object

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArenaReservesSlotZero(t *testing.T) {
	a := NewArena()
	require.Equal(t, 0, a.Len())
	require.False(t, a.Valid(Invalid))
}

func TestDictGetSetDelete(t *testing.T) {
	a := NewArena()
	d := a.NewDict(nil)
	n := a.Get(d)

	_, ok := n.DictGet("Type")
	require.False(t, ok)

	n.DictSet("Type", a.NewName([]byte("Page")))
	v, ok := n.DictGet("Type")
	require.True(t, ok)
	require.Equal(t, "Page", string(a.Get(v).Bytes))

	n.DictSet("Type", a.NewName([]byte("Pages")))
	v, _ = n.DictGet("Type")
	require.Equal(t, "Pages", string(a.Get(v).Bytes))
	require.Len(t, n.Dict, 1)

	n.DictDelete("Type")
	_, ok = n.DictGet("Type")
	require.False(t, ok)
}

func TestIntRealPreserveLiteral(t *testing.T) {
	a := NewArena()
	h := a.NewReal(1.0, "1.0")
	n := a.Get(h)
	require.Equal(t, 1.0, n.Real)
	require.Equal(t, "1.0", n.Literal)
}

func TestStreamOwnsItsOwnDictNode(t *testing.T) {
	a := NewArena()
	dictEntries := []DictEntry{{Key: []byte("Length"), Value: a.NewInt(4, "")}}
	sh := a.NewStream(dictEntries, []byte("data"), StreamFlags{WasCompressed: true})
	n := a.Get(sh)
	require.Equal(t, KindStream, n.Kind)
	require.Equal(t, []byte("data"), n.Stream.Data)
	require.True(t, n.Stream.Flags.WasCompressed)

	dict := a.StreamDict(sh)
	require.Equal(t, KindDict, dict.Kind)
	lh, ok := dict.DictGet("Length")
	require.True(t, ok)
	require.Equal(t, int64(4), a.Get(lh).Int)
}

func TestSelfReferencingRefCycleIsRepresentable(t *testing.T) {
	a := NewArena()
	ref := a.NewRef(RefID{ID: 1, Gen: 0})
	dict := a.NewDict(nil)
	a.Get(dict).DictSet("Parent", ref)
	a.Get(ref).Resolved = dict
	require.Equal(t, dict, a.Get(ref).Resolved)
}
