package radix

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustNet(s string) net.IPNet {
	_, n, err := net.ParseCIDR(s)
	if err != nil {
		panic(err)
	}
	return *n
}

func TestNew(t *testing.T) {
	require.NotNil(t, New())
}

func TestInsertAndLookup(t *testing.T) {
	r := New()
	r.Insert(mustNet("10.1.1.0/24"), "A")
	r.Insert(mustNet("10.1.1.2/32"), "B")
	r.Insert(mustNet("10.1.1.1/32"), "C")
	r.Insert(mustNet("10.1.1.0/25"), "D")
	r.Insert(mustNet("10.1.2.2/24"), "E")
	r.Insert(mustNet("10.2.1.0/24"), "F")
	r.Insert(mustNet("10.2.0.0/16"), "G")
	// Replacing the value at an existing prefix must not create a duplicate.
	r.Insert(mustNet("10.2.0.0/16"), "G2")

	_, v, err := r.Lookup(mustNet("10.1.2.2/32"))
	require.NoError(t, err)
	require.Equal(t, "E", v)

	_, v, err = r.Lookup(mustNet("10.2.5.5/32"))
	require.NoError(t, err)
	require.Equal(t, "G2", v)

	_, _, err = r.Lookup(mustNet("192.2.2.2/32"))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	r := New()
	r.Insert(mustNet("192.168.0.0/16"), "outer")
	r.Insert(mustNet("192.168.1.0/24"), "inner")

	require.True(t, r.Delete(mustNet("192.168.1.0/24")))
	require.False(t, r.Delete(mustNet("203.0.113.0/24")))

	_, v, err := r.Lookup(mustNet("192.168.1.5/32"))
	require.NoError(t, err)
	require.Equal(t, "outer", v)
}

func TestLookupAddr(t *testing.T) {
	r := New()
	r.Insert(mustNet("203.0.113.0/24"), "peer")
	_, v, err := r.LookupAddr(net.ParseIP("203.0.113.1").To4())
	require.NoError(t, err)
	require.Equal(t, "peer", v)
}

func TestExactVsLongestMatch(t *testing.T) {
	r := New()
	r.Insert(mustNet("10.0.0.0/8"), "outer")

	_, ok := r.Exact(mustNet("10.0.0.0/24"))
	require.False(t, ok)

	v, ok := r.Exact(mustNet("10.0.0.0/8"))
	require.True(t, ok)
	require.Equal(t, "outer", v)
}

func TestWalk(t *testing.T) {
	r := New()
	r.Insert(mustNet("10.0.0.0/8"), 1)
	r.Insert(mustNet("10.1.0.0/16"), 2)
	count := 0
	r.Walk(func(net.IPNet, interface{}) { count++ })
	require.Equal(t, 2, count)
}
