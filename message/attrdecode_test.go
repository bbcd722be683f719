package message

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeAttrSetScalarAttributes(t *testing.T) {
	attrs := []pathAttribute{
		{attributeType: attributeType{flags: wellKnown, code: attrOrigin}, value: []byte{0}},
		{attributeType: attributeType{flags: wellKnown, code: attrASPath}, value: []byte{asSequence, 2, 0, 0, 0, 100, 0, 0, 0, 200}},
		{attributeType: attributeType{flags: wellKnown, code: attrNextHop}, value: []byte{192, 0, 2, 1}},
		{attributeType: attributeType{flags: optional, code: attrMultiExitDisc}, value: []byte{0, 0, 0, 42}},
		{attributeType: attributeType{flags: wellKnown, code: attrLocalPref}, value: []byte{0, 0, 0, 150}},
	}

	set := decodeAttrSet(attrs, true)

	require.Equal(t, uint8(0), set.Origin)
	require.Equal(t, "192.0.2.1", set.Nexthop)
	require.True(t, set.HasMED)
	require.Equal(t, uint32(42), set.MED)
	require.True(t, set.HasLocalPref)
	require.Equal(t, uint32(150), set.LocalPref)
	require.Len(t, set.ASPath, 1)
	require.False(t, set.ASPath[0].Set)
	require.Equal(t, []uint32{100, 200}, set.ASPath[0].ASNs)
	require.Equal(t, 2, aggregateASPathLength(set.ASPath))
}

func TestDecodeASPathTwoByteASNs(t *testing.T) {
	// AS_SEQUENCE of two 2-octet ASNs: 100, 200.
	v := []byte{asSequence, 2, 0, 100, 0, 200}
	segs := decodeASPath(v, false)
	require.Len(t, segs, 1)
	require.Equal(t, []uint32{100, 200}, segs[0].ASNs)
}

func TestAggregateASPathLengthCountsSetOnce(t *testing.T) {
	segs := decodeASPath([]byte{
		asSet, 3, 0, 0, 0, 1, 0, 0, 0, 2, 0, 0, 0, 3,
		asSequence, 2, 0, 0, 0, 4, 0, 0, 0, 5,
	}, true)
	require.Equal(t, 3, aggregateASPathLength(segs)) // 1 (the set) + 2 (the sequence)
}
