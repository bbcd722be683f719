package message

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zebra-rs/zebra-go/bgp"
)

func TestEVPNMACIPAdvertisementRoundTrip(t *testing.T) {
	mac, _ := net.ParseMAC("00:11:22:33:44:55")
	a := evpnMACIPAdvertisement{
		ethTag:     10,
		mac:        mac,
		ip:         net.ParseIP("192.0.2.1").To4(),
		mplsLabel1: 100,
	}
	route := evpnRoute{routeType: evpnRouteTypeMACIPAdvertisement, macIP: &a}

	got, err := decodeEVPNRoutes(route.bytes())
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].macIP)
	require.Equal(t, a.mac, got[0].macIP.mac)
	require.Equal(t, a.ip, got[0].macIP.ip)
	require.Equal(t, a.ethTag, got[0].macIP.ethTag)
	require.Equal(t, a.mplsLabel1, got[0].macIP.mplsLabel1)
}

func TestEVPNInclusiveMulticastRoundTrip(t *testing.T) {
	var rd bgp.RouteDistinguisher
	rd[7] = 5
	m := evpnInclusiveMulticast{rd: rd, ethTag: 20, ip: net.ParseIP("198.51.100.1").To4()}
	route := evpnRoute{routeType: evpnRouteTypeInclusiveMulticast, imet: &m}

	got, err := decodeEVPNRoutes(route.bytes())
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.NotNil(t, got[0].imet)
	require.Equal(t, m.ethTag, got[0].imet.ethTag)
	require.Equal(t, m.ip, got[0].imet.ip)
}

func TestEVPNUnknownRouteTypePassesThrough(t *testing.T) {
	route := evpnRoute{routeType: evpnRouteTypeEthernetAutoDiscovery, raw: []byte{1, 2, 3, 4}}
	got, err := decodeEVPNRoutes(route.bytes())
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, route.raw, got[0].raw)
	require.Nil(t, got[0].macIP)
	require.Nil(t, got[0].imet)
}
