package attrstore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInternSharesHandleForEqualSets(t *testing.T) {
	s := New()
	a := &Set{Origin: 0, Nexthop: "192.0.2.1", HasLocalPref: true, LocalPref: 100}
	b := &Set{Origin: 0, Nexthop: "192.0.2.1", HasLocalPref: true, LocalPref: 100}

	ha := s.Intern(a)
	hb := s.Intern(b)

	require.Same(t, ha, hb)
	require.Equal(t, 1, s.Len())
}

func TestDistinctSetsGetDistinctHandles(t *testing.T) {
	s := New()
	a := s.Intern(&Set{Origin: 0})
	b := s.Intern(&Set{Origin: 1})
	require.NotSame(t, a, b)
	require.Equal(t, 2, s.Len())
}

func TestGCRemovesZeroStrongHandles(t *testing.T) {
	s := New()
	h := s.Intern(&Set{Origin: 2})
	h.Release()
	require.Equal(t, 1, s.GC())
	require.Equal(t, 0, s.Len())
}

func TestGCKeepsRetainedHandles(t *testing.T) {
	s := New()
	h := s.Intern(&Set{Origin: 3})
	h.Retain()
	h.Release() // back to the implicit intern-time count of 1
	require.Equal(t, 0, s.GC())
	require.Equal(t, 1, s.Len())
}
