package zebrad

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vishvananda/netlink"

	"github.com/zebra-rs/zebra-go/nexthop"
	"github.com/zebra-rs/zebra-go/rib"
)

func TestNexthopString(t *testing.T) {
	require.Equal(t, "192.0.2.1", nexthopString(nexthop.Nexthop{Addr: net.ParseIP("192.0.2.1")}))
	require.Equal(t, "ifindex 4", nexthopString(nexthop.Nexthop{Ifindex: 4}))
}

func TestApplyKernelRouteInstallsAndRemoves(t *testing.T) {
	d := NewDaemon()
	_, prefix, _ := net.ParseCIDR("203.0.113.0/24")

	d.applyKernelRoute(netlink.Route{Dst: prefix, Gw: net.ParseIP("203.0.113.1"), Priority: 5}, false)
	e, ok := d.v4.Selected(*prefix)
	require.True(t, ok)
	require.Equal(t, rib.SourceKernel, e.Source)

	d.applyKernelRoute(netlink.Route{Dst: prefix}, true)
	_, ok = d.v4.Selected(*prefix)
	require.False(t, ok)
}

func TestApplyKernelRouteSkipsNilDst(t *testing.T) {
	d := NewDaemon()
	// Must not panic on a link-local route with no destination prefix.
	d.applyKernelRoute(netlink.Route{}, false)
}

func TestIsisInterfaceHandlerLifecycle(t *testing.T) {
	d := NewDaemon()
	require.NoError(t, d.cfg.Load("routing isis net 49.0001.1921.6800.1001.00;"))
	require.NoError(t, d.cfg.CommitEnd())
	require.NoError(t, d.cfg.Load("routing isis interface lo level-1;"))
	require.NoError(t, d.cfg.CommitEnd())
	require.Contains(t, d.isLinks, "lo")
	require.Equal(t, 1, len(d.isisLSDBs))

	d.cfg.Delete("routing isis interface lo")
	require.NoError(t, d.cfg.CommitEnd())
	require.NotContains(t, d.isLinks, "lo")
	require.NotContains(t, d.isisSockets, "lo")
}

func TestIsisInterfaceRequiresNet(t *testing.T) {
	d := NewDaemon()
	require.NoError(t, d.cfg.Load("routing isis interface lo level-1;"))
	require.Error(t, d.cfg.CommitEnd())
}

func TestRenderRoutesEmptyTable(t *testing.T) {
	d := NewDaemon()
	require.Empty(t, d.renderRoutes(d.v4))
}
