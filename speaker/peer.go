package speaker

import (
	"net"

	"github.com/sirupsen/logrus"

	"github.com/zebra-rs/zebra-go/fsm"
)

// Peer is a configured remote BGP speaker
type Peer struct {
	asn uint32
	ip  net.IP

	enabled bool
	in      Policer
	out     Policer
	best    BestPathSelecter

	speaker *Speaker
	fsm     *fsm.FSM
}

// Enable brings the peer's FSM out of Idle (RFC 4271 8.1 Event 1,
// ManualStart) so it starts attempting a TCP connection.
func (p *Peer) Enable() {
	p.enabled = true
	p.fsm.Handle(fsm.EventManualStart)
}

// Disable drives the peer's FSM back to Idle (Event 2, ManualStop).
func (p *Peer) Disable() {
	p.enabled = false
	p.fsm.Handle(fsm.EventManualStop)
}

// State reports the peer's current RFC 4271 8.2.2 state name.
func (p *Peer) State() string {
	return fsm.StateName(p.fsm.State())
}

type PeerOption func(*Peer) error

func newPeer(s *Speaker, localAS uint32, asn uint32, ip string, log *logrus.Entry, opts ...PeerOption) *Peer {
	remoteIP := net.ParseIP(ip)
	p := &Peer{
		asn:     asn,
		ip:      remoteIP,
		speaker: s,
		fsm:     fsm.New(localAS, uint16(asn), remoteIP, log, s.attrs),
	}
	p.fsm.OnRoute(p.onRoute)
	for _, opt := range opts {
		opt(p)
	}
	if p.in == nil {
		p.in = DefaultPolicy{}
	}
	if p.out == nil {
		p.out = DefaultPolicy{}
	}
	if p.best == nil {
		p.best = DefaultBestPathSelection{}
	}
	return p
}

// onRoute folds every fsm.RouteEvent from this peer's Adj-RIB-In into the
// speaker-wide Loc-RIB (§4.5 step 4's "policy in filter" + step 5's
// best-path rerun).
func (p *Peer) onRoute(events []fsm.RouteEvent) {
	for _, ev := range events {
		n := NLRI{
			Prefix:   ev.Prefix,
			Attrs:    ev.Attrs,
			PeerID:   p.fsm.RemoteRouterID(),
			PeerAddr: p.fsm.RemoteAddr(),
			EBGP:     p.fsm.IsEBGP(),
		}
		p.speaker.handleRoute(p, ev.Prefix, ev.Withdraw, n)
	}
}
