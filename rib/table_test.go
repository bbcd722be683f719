package rib

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zebra-rs/zebra-go/nexthop"
)

func mustNet(t *testing.T, s string) net.IPNet {
	t.Helper()
	_, n, err := net.ParseCIDR(s)
	require.NoError(t, err)
	return *n
}

// fakeFib is a minimal FibInstaller recording install/remove calls, used
// by tests that need to assert the nexthop-group pipeline actually fires
// rather than just exercising the refcount bookkeeping with fib: nil.
type fakeFib struct {
	installedGroups []uint32
	removedGroups   []uint32
	installedRoutes []net.IPNet
	removedRoutes   []net.IPNet
}

func (f *fakeFib) InstallRoute(e *Entry) error {
	f.installedRoutes = append(f.installedRoutes, e.Prefix)
	return nil
}

func (f *fakeFib) RemoveRoute(e *Entry) error {
	f.removedRoutes = append(f.removedRoutes, e.Prefix)
	return nil
}

func (f *fakeFib) InstallGroup(g *nexthop.Group) error {
	f.installedGroups = append(f.installedGroups, g.GID)
	return nil
}

func (f *fakeFib) RemoveGroup(gid uint32) error {
	f.removedGroups = append(f.removedGroups, gid)
	return nil
}

// §8 scenario 3: a static route beats a learned BGP route for the same
// prefix when its (distance, metric) is better.
func TestBestPathStaticBeatsBGP(t *testing.T) {
	tbl := NewTable("ipv4", nil)
	prefix := mustNet(t, "10.0.0.0/24")

	require.NoError(t, tbl.Add(&Entry{
		Prefix:   mustNet(t, "192.0.2.0/24"),
		Source:   SourceConnected,
		Ifindex:  1,
		Distance: 0,
		Nexthop:  nexthop.Nexthop{Kind: nexthop.KindLink, Ifindex: 1},
	}))

	require.NoError(t, tbl.Add(&Entry{
		Prefix:   prefix,
		Source:   SourceStatic,
		Distance: 1,
		Nexthop:  nexthop.Nexthop{Kind: nexthop.KindUni, Addr: net.ParseIP("192.0.2.1")},
	}))

	require.NoError(t, tbl.Add(&Entry{
		Prefix:   prefix,
		Source:   SourceBGP,
		Distance: 200,
		Nexthop:  nexthop.Nexthop{Kind: nexthop.KindUni, Addr: net.ParseIP("192.0.2.2")},
	}))

	entries, ok := tbl.Lookup(prefix)
	require.True(t, ok)
	require.Len(t, entries, 2)

	selected, ok := tbl.Selected(prefix)
	require.True(t, ok)
	require.Equal(t, SourceStatic, selected.Source)
}

// §8 RIB invariants: at most one selected entry, and it has the minimum
// (distance, metric) among its bucket.
func TestOnlyOneSelectedAndItIsMinimal(t *testing.T) {
	tbl := NewTable("ipv4", nil)
	prefix := mustNet(t, "192.0.2.0/24")

	require.NoError(t, tbl.Add(&Entry{Prefix: prefix, Source: SourceStatic, Distance: 1, Metric: 5,
		Nexthop: nexthop.Nexthop{Kind: nexthop.KindUni, Addr: net.ParseIP("192.0.2.1")}}))
	require.NoError(t, tbl.Add(&Entry{Prefix: prefix, Source: SourceOSPF, Subtype: SubtypeOspfIntra, Distance: 110, Metric: 1,
		Nexthop: nexthop.Nexthop{Kind: nexthop.KindUni, Addr: net.ParseIP("192.0.2.2")}}))

	entries, _ := tbl.Lookup(prefix)
	selectedCount := 0
	for _, e := range entries {
		if e.Selected {
			selectedCount++
		}
	}
	require.Equal(t, 1, selectedCount)

	selected, _ := tbl.Selected(prefix)
	require.Equal(t, SourceStatic, selected.Source)
}

// §8 scenario 4, RIB half: two entries with an identical nexthop address
// intern to the same group and share its refcount.
func TestNexthopGroupDedupAcrossEntries(t *testing.T) {
	tbl := NewTable("ipv4", nil)
	connected := mustNet(t, "192.0.2.0/24")
	require.NoError(t, tbl.Add(&Entry{Prefix: connected, Source: SourceConnected, Ifindex: 7,
		Nexthop: nexthop.Nexthop{Kind: nexthop.KindLink, Ifindex: 7}}))

	p1 := mustNet(t, "10.0.0.0/24")
	p2 := mustNet(t, "10.0.1.0/24")

	require.NoError(t, tbl.Add(&Entry{Prefix: p1, Source: SourceStatic, Distance: 1,
		Nexthop: nexthop.Nexthop{Kind: nexthop.KindUni, Addr: net.ParseIP("192.0.2.1")}}))
	require.NoError(t, tbl.Add(&Entry{Prefix: p2, Source: SourceStatic, Distance: 1,
		Nexthop: nexthop.Nexthop{Kind: nexthop.KindUni, Addr: net.ParseIP("192.0.2.1")}}))

	e1, _ := tbl.Selected(p1)
	e2, _ := tbl.Selected(p2)
	require.Equal(t, e1.Nexthop.GID, e2.Nexthop.GID)

	g, ok := tbl.NexthopMap().Get(e1.Nexthop.GID)
	require.True(t, ok)
	require.Equal(t, 2, g.Refcnt())

	require.NoError(t, tbl.Remove(p1, SourceStatic, SubtypeNone))
	require.Equal(t, 1, g.Refcnt())

	require.NoError(t, tbl.Remove(p2, SourceStatic, SubtypeNone))
	// Only the connected route's own link group is left.
	require.Equal(t, 1, tbl.NexthopMap().Len())
}

// §8 scenario 4, FIB half: a new nexthop group is installed before any
// route referencing it, and removed once the last referencing route is
// retired and its refcount hits zero.
func TestNexthopGroupInstallPrecedesRouteAndUninstallsOnRelease(t *testing.T) {
	fib := &fakeFib{}
	tbl := NewTable("ipv4", fib)
	connected := mustNet(t, "192.0.2.0/24")
	require.NoError(t, tbl.Add(&Entry{Prefix: connected, Source: SourceConnected, Ifindex: 7,
		Nexthop: nexthop.Nexthop{Kind: nexthop.KindLink, Ifindex: 7}}))

	p1 := mustNet(t, "10.0.0.0/24")
	require.NoError(t, tbl.Add(&Entry{Prefix: p1, Source: SourceStatic, Distance: 1,
		Nexthop: nexthop.Nexthop{Kind: nexthop.KindUni, Addr: net.ParseIP("192.0.2.1")}}))

	e1, ok := tbl.Selected(p1)
	require.True(t, ok)
	gid := e1.Nexthop.GID

	require.Contains(t, fib.installedGroups, gid)
	require.Contains(t, fib.installedRoutes, p1)

	g, ok := tbl.NexthopMap().Get(gid)
	require.True(t, ok)
	require.True(t, g.Installed)

	p2 := mustNet(t, "10.0.1.0/24")
	require.NoError(t, tbl.Add(&Entry{Prefix: p2, Source: SourceStatic, Distance: 1,
		Nexthop: nexthop.Nexthop{Kind: nexthop.KindUni, Addr: net.ParseIP("192.0.2.1")}}))

	// A second route sharing the already-installed group must not
	// re-install it: gid appears in installedGroups exactly once even
	// though two routes now reference it.
	count := 0
	for _, g := range fib.installedGroups {
		if g == gid {
			count++
		}
	}
	require.Equal(t, 1, count)

	require.NoError(t, tbl.Remove(p1, SourceStatic, SubtypeNone))
	require.NotContains(t, fib.removedGroups, gid)

	require.NoError(t, tbl.Remove(p2, SourceStatic, SubtypeNone))
	require.Contains(t, fib.removedGroups, gid)
}

func TestRecursiveResolutionThroughConnected(t *testing.T) {
	tbl := NewTable("ipv4", nil)
	require.NoError(t, tbl.Add(&Entry{
		Prefix:  mustNet(t, "192.0.2.0/24"),
		Source:  SourceConnected,
		Ifindex: 3,
		Nexthop: nexthop.Nexthop{Kind: nexthop.KindLink, Ifindex: 3},
	}))

	resolved, err := tbl.Resolve(net.ParseIP("192.0.2.1"), false, 0)
	require.NoError(t, err)
	require.Equal(t, 3, resolved.Ifindex)
	require.False(t, resolved.Recursive)
}

func TestResolveRejectsDefaultUnlessAllowed(t *testing.T) {
	tbl := NewTable("ipv4", nil)
	require.NoError(t, tbl.Add(&Entry{
		Prefix:  mustNet(t, "0.0.0.0/0"),
		Source:  SourceStatic,
		Distance: 1,
		Nexthop: nexthop.Nexthop{Kind: nexthop.KindLink, Ifindex: 9},
	}))

	_, err := tbl.Resolve(net.ParseIP("198.51.100.1"), false, 0)
	require.ErrorIs(t, err, ErrUnresolved)

	resolved, err := tbl.Resolve(net.ParseIP("198.51.100.1"), true, 0)
	require.NoError(t, err)
	require.Equal(t, 9, resolved.Ifindex)
}
