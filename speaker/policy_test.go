package speaker

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zebra-rs/zebra-go/attrstore"
)

func handle(t *testing.T, store *attrstore.Store, set *attrstore.Set) *attrstore.Handle {
	t.Helper()
	return store.Intern(set)
}

func TestCompareHighestLocalPrefWins(t *testing.T) {
	store := attrstore.New()
	low := NLRI{Attrs: handle(t, store, &attrstore.Set{HasLocalPref: true, LocalPref: 100})}
	high := NLRI{Attrs: handle(t, store, &attrstore.Set{HasLocalPref: true, LocalPref: 200})}

	got := DefaultBestPathSelection{}.Compare(low, high)
	require.Equal(t, uint32(200), got.Attrs.Attrs().LocalPref)
}

func TestCompareShortestASPathWins(t *testing.T) {
	store := attrstore.New()
	long := NLRI{Attrs: handle(t, store, &attrstore.Set{ASPath: []attrstore.ASSegment{{ASNs: []uint32{1, 2, 3}}}})}
	short := NLRI{Attrs: handle(t, store, &attrstore.Set{ASPath: []attrstore.ASSegment{{ASNs: []uint32{1}}}})}

	got := DefaultBestPathSelection{}.Compare(long, short)
	require.Len(t, got.Attrs.Attrs().ASPath[0].ASNs, 1)
}

func TestCompareEBGPOverIBGPWhenOtherwiseTied(t *testing.T) {
	store := attrstore.New()
	set := &attrstore.Set{}
	ibgp := NLRI{Attrs: handle(t, store, set), EBGP: false, PeerAddr: net.ParseIP("192.0.2.1")}
	ebgp := NLRI{Attrs: handle(t, store, set), EBGP: true, PeerAddr: net.ParseIP("192.0.2.2")}

	got := DefaultBestPathSelection{}.Compare(ibgp, ebgp)
	require.True(t, got.EBGP)
}

func TestCompareLowestRouterIDBreaksFinalTie(t *testing.T) {
	store := attrstore.New()
	set := &attrstore.Set{}
	a := NLRI{Attrs: handle(t, store, set), PeerID: 10, PeerAddr: net.ParseIP("192.0.2.1")}
	b := NLRI{Attrs: handle(t, store, set), PeerID: 5, PeerAddr: net.ParseIP("192.0.2.2")}

	got := DefaultBestPathSelection{}.Compare(a, b)
	require.Equal(t, uint32(5), got.PeerID)
}

func TestCompareSingleCandidateWins(t *testing.T) {
	store := attrstore.New()
	only := NLRI{Attrs: handle(t, store, &attrstore.Set{})}
	got := DefaultBestPathSelection{}.Compare(only)
	require.Equal(t, only.Attrs, got.Attrs)
}
