package fib

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vishvananda/netlink"

	"github.com/zebra-rs/zebra-go/nexthop"
)

func TestApplyNexthopUni(t *testing.T) {
	route := &netlink.Route{}
	nh := nexthop.Nexthop{
		Kind:   nexthop.KindUni,
		Addr:   net.ParseIP("192.0.2.1"),
		Labels: []uint32{100, 200},
	}
	applyNexthop(route, nh)

	require.True(t, route.Gw.Equal(nh.Addr))
	require.NotNil(t, route.Encap)
	mpls, ok := route.Encap.(*netlink.MPLSEncap)
	require.True(t, ok)
	require.Equal(t, []int{100, 200}, mpls.Labels)
}

func TestApplyNexthopMulti(t *testing.T) {
	route := &netlink.Route{}
	nh := nexthop.Nexthop{
		Kind: nexthop.KindMulti,
		Members: []nexthop.Member{
			{GID: 1, Weight: 1},
			{GID: 2, Weight: 3},
		},
	}
	applyNexthop(route, nh)

	require.Len(t, route.MultiPath, 2)
	require.Equal(t, 1, route.MultiPath[0].Hops)
	require.Equal(t, 3, route.MultiPath[1].Hops)
}

func TestAdapterGroupLifecycle(t *testing.T) {
	a := NewAdapter(nil)
	require.NoError(t, a.InstallGroup(&nexthop.Group{GID: 7}))
	require.True(t, a.resolved[7])
	require.NoError(t, a.RemoveGroup(7))
	require.False(t, a.resolved[7])
}
