// Package nexthop implements §3's Nexthop sum type and the NexthopMap
// deduplicating registry that rib and fib share.
package nexthop

import (
	"fmt"
	"net"
)

// Kind distinguishes the four nexthop shapes of §3.
type Kind int

const (
	// KindLink is an interface-only nexthop with no gateway address.
	KindLink Kind = iota
	// KindUni is a single unicast gateway, optionally label-stacked.
	KindUni
	// KindMulti is an ECMP group of weighted members.
	KindMulti
	// KindList is an ordered protection list (primary/backup).
	KindList
)

// Member is one element of a Multi or List nexthop.
type Member struct {
	GID    uint32
	Weight uint8
}

// Nexthop is the tagged union described in §3 and §9 ("Tagged variants for
// nexthop and NLRI"). Only the fields relevant to Kind are meaningful.
type Nexthop struct {
	Kind Kind

	// KindLink, KindUni
	Ifindex int

	// KindUni
	Addr   net.IP
	Labels []uint32
	Weight uint8

	// KindMulti
	Metric uint32

	// KindMulti, KindList
	Members []Member

	// GID is the interned NexthopMap group this nexthop resolves to.
	// Zero means unresolved.
	GID uint32
}

// Resolved reports whether this nexthop has been interned into a group.
func (n Nexthop) Resolved() bool {
	return n.GID != 0
}

// key identifies a KindUni nexthop for interning: identical (addr,
// label-stack) tuples must dedup to the same group (§8 scenario 4).
type uniKey struct {
	addr   string
	labels string
}

func (n Nexthop) uniKey() uniKey {
	labels := ""
	for _, l := range n.Labels {
		labels += fmt.Sprintf("%d,", l)
	}
	return uniKey{addr: n.Addr.String(), labels: labels}
}

// multiKey identifies a KindMulti nexthop by its sorted (gid,weight)
// member set, so identical ECMP member sets intern to the same group.
type multiKey string

func (n Nexthop) multiKey() multiKey {
	// Members are expected to already be in a caller-normalised (e.g.
	// sorted by GID) order; the resolver is responsible for that before
	// calling Map.Intern so that member-set identity implies key identity.
	s := ""
	for _, m := range n.Members {
		s += fmt.Sprintf("%d/%d;", m.GID, m.Weight)
	}
	return multiKey(s)
}
