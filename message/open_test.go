package message

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOpenMessageRoundTrip(t *testing.T) {
	caps := []capability{
		{code: capMultiprotocol, value: mpCapability{afi: 1, safi: 1}.bytes()},
		{code: capAS4, value: as4Capability{asn: 4200000001}.bytes()},
	}
	o := newOpenMessage(23456, 180, 0xc0000201, caps)

	got, err := readOpen(o.bytes())
	require.NoError(t, err)
	require.Equal(t, o.version, got.version)
	require.Equal(t, o.myAS, got.myAS)
	require.Equal(t, o.holdTime, got.holdTime)
	require.Equal(t, o.bgpIdentifier, got.bgpIdentifier)
	require.Equal(t, uint32(4200000001), got.effectiveASN())
}

func TestOpenMessageRejectsShortBody(t *testing.T) {
	_, err := readOpen([]byte{version, 0, 1})
	require.Error(t, err)
}

func TestOpenMessageValidRejectsWrongVersion(t *testing.T) {
	o := newOpenMessage(65001, 180, 0, nil)
	o.version = 3
	n, ok := o.valid(65001, 180)
	require.False(t, ok)
	require.Equal(t, byte(unsupportedVersionNumber), n.subcode)
}

func TestOpenMessageValidRejectsBadPeerAS(t *testing.T) {
	o := newOpenMessage(65001, 180, 0, nil)
	n, ok := o.valid(65002, 180)
	require.False(t, ok)
	require.Equal(t, byte(badPeerAS), n.subcode)
}

func TestOpenMessageExtendedOptionalParameters(t *testing.T) {
	// Build enough capabilities that the standard 1-octet Optional
	// Parameters Length overflows, forcing the RFC 9072 extended form.
	var caps []capability
	for i := 0; i < 40; i++ {
		caps = append(caps, capability{code: capRouteRefresh, value: []byte{byte(i), byte(i), byte(i), byte(i), byte(i), byte(i)}})
	}
	o := newOpenMessage(65001, 180, 0, caps)
	wire := o.bytes()
	require.Greater(t, len(wire)-10, maxOptParametersLength)

	got, err := readOpen(wire)
	require.NoError(t, err)
	require.Len(t, got.capabilities, len(caps))
}
