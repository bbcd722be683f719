package nexthop

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInternDedupesIdenticalUni(t *testing.T) {
	m := NewMap()
	a := Nexthop{Kind: KindUni, Addr: net.ParseIP("192.0.2.1")}
	b := Nexthop{Kind: KindUni, Addr: net.ParseIP("192.0.2.1")}

	ga := m.Intern(a)
	gb := m.Intern(b)

	require.Equal(t, ga.GID, gb.GID)
	require.Equal(t, 2, ga.Refcnt())
}

func TestReleaseUninstallsAtZeroRefcnt(t *testing.T) {
	m := NewMap()
	var uninstalled *Group
	m.OnUninstall = func(g *Group) { uninstalled = g }

	nh := Nexthop{Kind: KindUni, Addr: net.ParseIP("192.0.2.1")}
	g1 := m.Intern(nh)
	g2 := m.Intern(nh)
	require.Equal(t, g1.GID, g2.GID)

	m.MarkInstalled(g1.GID, true)

	m.Release(g1.GID)
	require.Nil(t, uninstalled, "group still referenced once, should not uninstall")
	require.Equal(t, 1, g1.Refcnt())

	m.Release(g2.GID)
	require.NotNil(t, uninstalled)
	require.Equal(t, g1.GID, uninstalled.GID)
	require.Equal(t, 0, m.Len())
}

func TestDistinctAddrsGetDistinctGroups(t *testing.T) {
	m := NewMap()
	a := m.Intern(Nexthop{Kind: KindUni, Addr: net.ParseIP("192.0.2.1")})
	b := m.Intern(Nexthop{Kind: KindUni, Addr: net.ParseIP("192.0.2.2")})
	require.NotEqual(t, a.GID, b.GID)
}
