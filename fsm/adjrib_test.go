package fsm

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zebra-rs/zebra-go/attrstore"
	"github.com/zebra-rs/zebra-go/message"
)

func mustPrefix(t *testing.T, s string) net.IPNet {
	t.Helper()
	_, n, err := net.ParseCIDR(s)
	require.NoError(t, err)
	return *n
}

func buildUpdate(t *testing.T, withdrawn, nlri []net.IPNet) *message.UpdateMessage {
	t.Helper()
	body := []byte{}
	w := encodeIPv4PrefixesForTest(withdrawn)
	body = append(body, byte(len(w)>>8), byte(len(w)))
	body = append(body, w...)

	// A minimal mandatory attribute set so UpdateMessage.Valid() accepts it
	// when nlri is non-empty: ORIGIN, AS_PATH (empty), NEXT_HOP.
	var attrs []byte
	if len(nlri) > 0 {
		attrs = append(attrs, 0x40, 1, 1, 0)           // ORIGIN = IGP
		attrs = append(attrs, 0x40, 2, 0)              // AS_PATH, empty
		attrs = append(attrs, 0x40, 3, 4, 10, 0, 0, 1) // NEXT_HOP = 10.0.0.1
	}
	body = append(body, byte(len(attrs)>>8), byte(len(attrs)))
	body = append(body, attrs...)
	body = append(body, encodeIPv4PrefixesForTest(nlri)...)

	u, err := message.ReadUpdate(body, false)
	require.NoError(t, err)
	return u
}

func encodeIPv4PrefixesForTest(prefixes []net.IPNet) []byte {
	var b []byte
	for _, p := range prefixes {
		ones, _ := p.Mask.Size()
		b = append(b, byte(ones))
		n := (ones + 7) / 8
		b = append(b, p.IP.To4()[:n]...)
	}
	return b
}

func TestAdjRIBInApplyInternsAndEmitsEvents(t *testing.T) {
	store := attrstore.New()
	a := newAdjRIBIn(store)

	p1 := mustPrefix(t, "10.1.0.0/24")
	p2 := mustPrefix(t, "10.2.0.0/24")
	u := buildUpdate(t, nil, []net.IPNet{p1, p2})

	events := a.apply(u, true)
	require.Len(t, events, 2)
	for _, ev := range events {
		require.False(t, ev.Withdraw)
		require.NotNil(t, ev.Attrs)
		require.Equal(t, "10.0.0.1", ev.Attrs.Attrs().Nexthop)
	}
	// Both prefixes share one attribute set, so they intern to one handle.
	require.Equal(t, 1, store.Len())
	require.Same(t, events[0].Attrs, events[1].Attrs)

	withdraw := buildUpdate(t, []net.IPNet{p1}, nil)
	wevents := a.apply(withdraw, true)
	require.Len(t, wevents, 1)
	require.True(t, wevents[0].Withdraw)
}

func TestAdjRIBInClearWithdrawsEverything(t *testing.T) {
	store := attrstore.New()
	a := newAdjRIBIn(store)

	p1 := mustPrefix(t, "10.1.0.0/24")
	u := buildUpdate(t, nil, []net.IPNet{p1})
	a.apply(u, true)

	events := a.clear()
	require.Len(t, events, 1)
	require.True(t, events[0].Withdraw)
	require.Equal(t, 0, len(a.routes))
}
