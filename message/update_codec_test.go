package message

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustIPNet(t *testing.T, s string) net.IPNet {
	t.Helper()
	_, n, err := net.ParseCIDR(s)
	require.NoError(t, err)
	return *n
}

func TestUpdateRoundTripWithdrawnAndNLRI(t *testing.T) {
	origin := attributeType{flags: wellKnown | transitive}
	origin.code = attrOrigin

	u := &updateMessage{
		withdrawnRoutes: []net.IPNet{mustIPNet(t, "10.0.0.0/24")},
		pathAttributes:  []pathAttribute{{attributeType: origin, value: []byte{0}}},
		nlri:            []net.IPNet{mustIPNet(t, "192.0.2.0/24"), mustIPNet(t, "192.0.3.0/25")},
	}

	got, err := readUpdate(u.bytes(false), false)
	require.NoError(t, err)
	require.Equal(t, u.withdrawnRoutes, got.withdrawnRoutes)
	require.Equal(t, u.nlri, got.nlri)
	require.Len(t, got.pathAttributes, 1)
	require.Equal(t, byte(attrOrigin), got.pathAttributes[0].attributeType.code)
}

func TestUpdateEndOfRIBMarker(t *testing.T) {
	u := &updateMessage{}
	got, err := readUpdate(u.bytes(false), false)
	require.NoError(t, err)
	require.True(t, got.isEndOfRIBMarker())
}

func TestUpdateAddPathRoundTrip(t *testing.T) {
	u := &updateMessage{
		nlri:        []net.IPNet{mustIPNet(t, "198.51.100.0/24")},
		nlriPathIDs: []uint32{7},
	}
	got, err := readUpdate(u.bytes(true), true)
	require.NoError(t, err)
	require.Equal(t, u.nlri, got.nlri)
	require.Equal(t, []uint32{7}, got.nlriPathIDs)
}

func TestPathAttributeExtendedLengthRoundTrip(t *testing.T) {
	at := attributeType{flags: optional | transitive, code: attrCommunity}
	big := make([]byte, 300)
	for i := range big {
		big[i] = byte(i)
	}
	p := pathAttribute{attributeType: at, value: big}

	attrs, err := readPathAttributes(p.bytes())
	require.NoError(t, err)
	require.Len(t, attrs, 1)
	require.True(t, attrs[0].attributeType.extendedLength())
	require.Equal(t, big, attrs[0].value)
}
