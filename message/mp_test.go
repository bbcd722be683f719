package message

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zebra-rs/zebra-go/bgp"
)

func TestMPReachUnreachRoundTrip(t *testing.T) {
	_, p, _ := net.ParseCIDR("2001:db8::/32")
	nlri := encodeIPv6Prefixes([]net.IPNet{*p}, nil, false)

	reach := mpReachNLRI{afi: uint16(bgp.AFIIPv6), safi: byte(bgp.SAFIUnicast), nextHop: net.ParseIP("2001:db8::1").To16(), nlri: nlri}
	got, err := decodeMPReach(reach.bytes())
	require.NoError(t, err)
	require.Equal(t, reach.afi, got.afi)
	require.Equal(t, reach.safi, got.safi)
	require.Equal(t, reach.nextHop, got.nextHop)

	prefixes, _, err := decodeIPv6Prefixes(got.nlri, false)
	require.NoError(t, err)
	require.Equal(t, []net.IPNet{*p}, prefixes)

	unreach := mpUnreachNLRI{afi: uint16(bgp.AFIIPv6), safi: byte(bgp.SAFIUnicast), nlri: nlri}
	gotU, err := decodeMPUnreach(unreach.bytes())
	require.NoError(t, err)
	require.Equal(t, unreach, *gotU)
}

func TestVPNv4PrefixRoundTrip(t *testing.T) {
	_, p, _ := net.ParseCIDR("10.1.1.0/24")
	var rd bgp.RouteDistinguisher
	rd[3] = 100 // type 0, AS in bytes 2-3
	rd[7] = 1
	vp := vpnPrefix{labels: []bgp.Label{100}, rd: rd, prefix: *p}

	got, err := decodeVPNv4Prefixes(encodeVPNv4Prefixes([]vpnPrefix{vp}))
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, vp.rd, got[0].rd)
	require.Equal(t, vp.prefix, got[0].prefix)
	require.Equal(t, vp.labels, got[0].labels)
}

func TestRTMembershipPrefixRoundTrip(t *testing.T) {
	prefixes := []rtMembershipPrefix{
		{originAS: 65001, routeTarget: [8]byte{0, 2, 0xfd, 0xe9, 0, 0, 0, 100}},
		{defaultRT: true},
	}
	got, err := decodeRTMembershipPrefixes(encodeRTMembershipPrefixes(prefixes))
	require.NoError(t, err)
	require.Equal(t, prefixes, got)
}
