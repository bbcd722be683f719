package speaker

import (
	"fmt"
	"net"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/zebra-rs/zebra-go/attrstore"
	"github.com/zebra-rs/zebra-go/nexthop"
	"github.com/zebra-rs/zebra-go/rib"
)

const bgpPort = 179

// RIBv4 is the subset of rib.Table a Speaker needs to push its Loc-RIB
// winners into the RIB/FIB plane (§4.5 step 4, §2's BGP-engine-to-RIB
// data flow). Kept narrow so tests can fake it without a real Table.
type RIBv4 interface {
	Add(e *rib.Entry) error
	Remove(prefix net.IPNet, source rib.Source, subtype rib.Subtype) error
}

// Speaker is a router that speaks BGP
type Speaker struct {
	myAS  int16
	peers []*Peer

	// attrs is the process-wide attribute interning store (§3, §9),
	// shared by every peer this speaker owns.
	attrs *attrstore.Store
	rib   RIBv4

	mu     sync.Mutex
	locRIB map[string]*locEntry

	listener net.Listener
	log      *logrus.Entry
}

// locEntry is one prefix's Loc-RIB bookkeeping: every peer's current
// candidate route, and which peer (if any) is currently the installed
// winner.
type locEntry struct {
	candidates map[*Peer]NLRI
	installed  *Peer
}

// New creates a new router speaking BGP and opens its listening socket.
// RIB installation is disabled until SetRIB is called; this keeps New
// usable in unit tests that only exercise FSM/policy behaviour.
func New(myAS int16) *Speaker {
	s := &Speaker{
		myAS:   myAS,
		peers:  []*Peer{},
		attrs:  attrstore.New(),
		locRIB: make(map[string]*locEntry),
		log:    logrus.WithField("asn", myAS),
	}
	l, err := net.Listen("tcp", fmt.Sprintf("0.0.0.0:%d", bgpPort))
	if err != nil {
		panic(err)
	}
	s.listener = l
	return s
}

// SetRIB wires the speaker's Loc-RIB winners into an IPv4 rib.Table
// (§2's "Protocol engines → RIB" data flow).
func (s *Speaker) SetRIB(t RIBv4) {
	s.rib = t
}

// Peer configures and returns a new remote peer. The peer starts
// disabled; call Enable to start its FSM.
func (s *Speaker) Peer(asn int32, ip string, opts ...PeerOption) *Peer {
	p := newPeer(s, uint32(s.myAS), uint32(asn), ip, s.log.WithField("peer", ip), opts...)
	s.peers = append(s.peers, p)
	return p
}

// Remove disables and deletes a peer from this speaker, withdrawing
// every route it was the Loc-RIB winner for.
func (s *Speaker) Remove(asn int32, ip string) {
	remoteIP := net.ParseIP(ip)
	for i, p := range s.peers {
		if p.asn == uint32(asn) && p.ip.Equal(remoteIP) {
			p.Disable()
			s.peers = append(s.peers[:i], s.peers[i+1:]...)
			return
		}
	}
}

// Announce checks that prefix parses as a CIDR and returns the parse
// error, if any. It does not add the prefix to any peer's Adj-RIB-Out
// and sends no UPDATE.
func (s *Speaker) Announce(prefix string) error {
	_, _, err := net.ParseCIDR(prefix)
	return err
}

// Withdraw checks that prefix parses as a CIDR and returns the parse
// error, if any. It does not remove the prefix from any peer's
// Adj-RIB-Out and sends no UPDATE.
func (s *Speaker) Withdraw(prefix string) error {
	_, _, err := net.ParseCIDR(prefix)
	return err
}

// handleRoute folds one peer's RouteEvent into the speaker-wide Loc-RIB
// (§4.5 steps 4-5) and, if the prefix's winner changed, installs or
// withdraws it via rib.Table (§4.5 step 4's "RIB → best-path → FIB
// adapter").
func (s *Speaker) handleRoute(p *Peer, prefix net.IPNet, withdraw bool, n NLRI) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := prefix.String()
	le, ok := s.locRIB[key]
	if !ok {
		if withdraw {
			return
		}
		le = &locEntry{candidates: make(map[*Peer]NLRI)}
		s.locRIB[key] = le
	}

	if withdraw {
		delete(le.candidates, p)
	} else if p.in == nil || p.in.Apply(&n) {
		n.owner = p
		le.candidates[p] = n
	} else {
		delete(le.candidates, p)
	}

	var winner *Peer
	var winnerAttrs *attrstore.Handle
	var winnerNexthop string
	if len(le.candidates) > 0 {
		cands := make([]NLRI, 0, len(le.candidates))
		for _, cand := range le.candidates {
			cands = append(cands, cand)
		}
		best := s.bestPathSelector().Compare(cands...)
		winner = best.owner
		winnerAttrs = best.Attrs
		winnerNexthop = best.Attrs.Attrs().Nexthop
	}

	if winner == le.installed {
		if winner == nil {
			delete(s.locRIB, key)
		}
		return
	}

	if s.rib != nil {
		if le.installed != nil {
			if err := s.rib.Remove(prefix, rib.SourceBGP, rib.SubtypeNone); err != nil {
				s.log.WithError(err).WithField("prefix", key).Warn("bgp route removal failed")
			}
		}
		if winner != nil {
			e := &rib.Entry{
				Prefix:   prefix,
				Source:   rib.SourceBGP,
				Distance: rib.DefaultDistance(rib.SourceBGP),
				Metric:   med(winnerAttrs.Attrs()),
				Nexthop:  nexthop.Nexthop{Kind: nexthop.KindUni, Addr: net.ParseIP(winnerNexthop)},
			}
			if err := s.rib.Add(e); err != nil {
				s.log.WithError(err).WithField("prefix", key).Warn("bgp route install failed")
			}
		}
	}

	le.installed = winner
	if winner == nil {
		delete(s.locRIB, key)
	}
}

// bestPathSelector returns the first peer's custom selector, or the
// package default if none customised one. Every peer normally shares the
// same selector; §9's design notes don't call for per-peer ladders.
func (s *Speaker) bestPathSelector() BestPathSelecter {
	for _, p := range s.peers {
		if p.best != nil {
			return p.best
		}
	}
	return DefaultBestPathSelection{}
}
