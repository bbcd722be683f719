package message

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMPCapabilityRoundTrip(t *testing.T) {
	c := mpCapability{afi: 2, safi: 128}
	got, err := parseMPCapability(c.bytes())
	require.NoError(t, err)
	require.Equal(t, c, got)
}

func TestAS4CapabilityRoundTrip(t *testing.T) {
	c := as4Capability{asn: 4200000001}
	got, err := parseAS4Capability(c.bytes())
	require.NoError(t, err)
	require.Equal(t, c, got)
}

func TestAddPathCapabilityRoundTrip(t *testing.T) {
	c := addPathCapability{entries: []addPathEntry{
		{afi: 1, safi: 1, sendReceive: 3},
		{afi: 2, safi: 1, sendReceive: 1},
	}}
	got, err := parseAddPathCapability(c.bytes())
	require.NoError(t, err)
	require.Equal(t, c, got)
}

func TestGracefulRestartCapabilityRoundTrip(t *testing.T) {
	c := gracefulRestartCapability{
		restarting:  true,
		restartTime: 120,
		afs:         []gracefulRestartAF{{afi: 1, safi: 1, flags: 0x80}},
	}
	got, err := parseGracefulRestartCapability(c.bytes())
	require.NoError(t, err)
	require.Equal(t, c, got)
}

func TestEncodeParseCapabilitiesAcrossParameters(t *testing.T) {
	caps := []capability{
		{code: capMultiprotocol, value: mpCapability{afi: 1, safi: 1}.bytes()},
		{code: capAS4, value: as4Capability{asn: 65550}.bytes()},
	}
	params := encodeCapabilities(caps)
	require.Len(t, params, 1)

	got, err := parseCapabilities(params)
	require.NoError(t, err)
	require.Equal(t, caps, got)
}
