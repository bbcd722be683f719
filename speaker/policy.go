package speaker

import (
	"net"

	"github.com/zebra-rs/zebra-go/attrstore"
	"github.com/zebra-rs/zebra-go/message"
)

// The Policer interface is implemented by clients to apply policy
// to an individual NLRI. Returning false indicates the NLRI must be
// denied from advertisement or injection into a RIB. Policies modify
// the NLRI in place.
type Policer interface {
	Apply(*NLRI) bool
}

// DefaultPolicy is a deny-all policy
type DefaultPolicy struct{}

func (d DefaultPolicy) Apply(n *NLRI) bool {
	return false
}

// PolicyInOption sets a custom inbound policy when creating a new peer
func PolicyInOption(policy Policer) PeerOption {
	return func(p *Peer) error {
		p.in = policy
		return nil
	}
}

// PolicyOutOption sets a custom outbound policy when creating a new peer
func PolicyOutOption(policy Policer) PeerOption {
	return func(p *Peer) error {
		p.out = policy
		return nil
	}
}

// The BestPathSelecter interface is implemented by clients to create a
// custom best path selection procedure.
type BestPathSelecter interface {
	Compare(nlris ...NLRI) NLRI
}

type DefaultBestPathSelection struct{}

const defaultLocalPref = 100

// Compare implements §4.5's BGP tie-break ladder (RFC 4271 9.1.2.2):
// highest LocalPref, shortest AS-Path, lowest Origin code, lowest MED
// among candidates sharing a neighboring AS, eBGP over iBGP, lowest
// router-id, lowest peer address. IGP-metric-to-nexthop is left out of
// the ladder: this repo's nexthop resolver (rib.Table.Resolve) never
// hands BGP a routing metric to compare, only a resolved ifindex/GID.
func (d DefaultBestPathSelection) Compare(nlris ...NLRI) NLRI {
	if len(nlris) == 0 {
		return NLRI{}
	}
	best := nlris[0]
	for _, cand := range nlris[1:] {
		if better(cand, best) {
			best = cand
		}
	}
	return best
}

// better reports whether a beats b under the ladder above.
func better(a, b NLRI) bool {
	as, bs := a.Attrs.Attrs(), b.Attrs.Attrs()

	if lp := localPref(as); lp != localPref(bs) {
		return lp > localPref(bs)
	}
	if al, bl := message.ASPathLength(as.ASPath), message.ASPathLength(bs.ASPath); al != bl {
		return al < bl
	}
	if as.Origin != bs.Origin {
		return as.Origin < bs.Origin
	}
	if aNeighbor, aok := as.NeighborAS(); aok {
		if bNeighbor, bok := bs.NeighborAS(); bok && aNeighbor == bNeighbor {
			if as.HasMED || bs.HasMED {
				if med(as) != med(bs) {
					return med(as) < med(bs)
				}
			}
		}
	}
	if a.EBGP != b.EBGP {
		return a.EBGP
	}
	if a.PeerID != b.PeerID {
		return a.PeerID < b.PeerID
	}
	return compareIP(normalizeIP(a.PeerAddr), normalizeIP(b.PeerAddr)) < 0
}

// normalizeIP collapses a 16-byte IPv4-in-IPv6 representation down to 4
// bytes so two differently-shaped net.IP values for the same address
// compare equal and in numeric order.
func normalizeIP(ip net.IP) []byte {
	if v4 := ip.To4(); v4 != nil {
		return v4
	}
	return ip
}

func localPref(s *attrstore.Set) uint32 {
	if s.HasLocalPref {
		return s.LocalPref
	}
	return defaultLocalPref
}

func med(s *attrstore.Set) uint32 {
	if s.HasMED {
		return s.MED
	}
	return 0
}

func compareIP(a, b []byte) int {
	la, lb := len(a), len(b)
	n := la
	if lb < n {
		n = lb
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return la - lb
}
