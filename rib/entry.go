// Package rib implements §3/§4.3: the prefix-indexed routing table, its
// best-path selection, and recursive nexthop resolution. One Table exists
// per address family (IPv4, IPv6) and is owned by the single RIB task of
// §5 — no locking is needed inside Table because nothing else ever
// touches it concurrently.
package rib

import (
	"net"

	"github.com/zebra-rs/zebra-go/nexthop"
)

// Source identifies where a route came from, §3's protocol source list.
type Source int

const (
	SourceKernel Source = iota
	SourceConnected
	SourceStatic
	SourceRIP
	SourceOSPF
	SourceISIS
	SourceBGP
)

func (s Source) String() string {
	switch s {
	case SourceKernel:
		return "kernel"
	case SourceConnected:
		return "connected"
	case SourceStatic:
		return "static"
	case SourceRIP:
		return "rip"
	case SourceOSPF:
		return "ospf"
	case SourceISIS:
		return "isis"
	case SourceBGP:
		return "bgp"
	default:
		return "unknown"
	}
}

// DefaultDistance returns the administrative distance §3 assigns by
// default to a given source; callers may override per-entry (e.g. a
// floating static route).
func DefaultDistance(s Source) uint8 {
	switch s {
	case SourceKernel, SourceConnected:
		return 0
	case SourceStatic:
		return 1
	case SourceOSPF:
		return 110
	case SourceISIS:
		return 115
	case SourceBGP:
		return 200
	case SourceRIP:
		return 120
	default:
		return 255
	}
}

// Subtype distinguishes protocol-internal route flavours (OSPF E1/E2,
// IS-IS L1/L2) that share a Source but compare differently when tied.
type Subtype int

const (
	SubtypeNone Subtype = iota
	SubtypeOspfIntra
	SubtypeOspfE1
	SubtypeOspfE2
	SubtypeIsisL1
	SubtypeIsisL2
)

// Entry is one learned or configured route for a prefix (§3 RibEntry).
type Entry struct {
	Prefix   net.IPNet
	Source   Source
	Subtype  Subtype
	Distance uint8
	Metric   uint32
	Tag      uint32

	// Ifindex is meaningful for SourceConnected entries: the invariant
	// of §3 requires it to reference an up link.
	Ifindex int

	// Nexthop is the entry's own nexthop before resolution; GID is filled
	// in by Table.Add once nexthop.Map has interned the resolved group.
	Nexthop nexthop.Nexthop

	Selected bool
	Fib      bool
}

// key identifies entries of the same (source, subtype) within a bucket:
// adding a second entry with the same key replaces the first (§4.3 step 2).
func (e *Entry) key() (Source, Subtype) {
	return e.Source, e.Subtype
}

// less implements the best-path ordering of §4.3: "(distance asc, metric
// asc, source-specific tiebreak)". Equal distance+metric breaks ties by
// Source so that selection is deterministic without requiring a protocol
// engine to additionally compare; true source-protocol tiebreaks (BGP's
// ladder, IS-IS level preference) happen upstream in the owning engine
// before the entry ever reaches the RIB, which only sees the final
// distance/metric it was handed.
func less(a, b *Entry) bool {
	if a.Distance != b.Distance {
		return a.Distance < b.Distance
	}
	if a.Metric != b.Metric {
		return a.Metric < b.Metric
	}
	return a.Source < b.Source
}
