package fsm

import "net"

// FSM is the exported name for the per-peer BGP state machine, so callers
// outside this package (speaker) can hold one without reaching past its
// exported surface.
type FSM = fsm

// RFC 4271 8.2.2 state numbers, exported for CLI/metrics consumers.
const (
	StateIdle        = idle
	StateConnect     = connect
	StateActive      = active
	StateOpenSent    = openSent
	StateOpenConfirm = openConfirm
	StateEstablished = established
)

// RFC 4271 8.1 event numbers a speaker drives the FSM with from outside
// this package (administrative start/stop; everything else originates
// inside the FSM itself from its own dial/reader/timer goroutines).
const (
	EventManualStart = manualStart
	EventManualStop  = manualStop
)

func StateName(state int) string {
	return stateName[state]
}

// OnRoute registers the callback invoked with every Adj-RIB-In change
// (an UPDATE's withdrawals/NLRI, or a full withdrawal on teardown) so a
// speaker.Peer can re-run Loc-RIB best-path (§4.5 step 5) without this
// package needing to know anything about rib.Table.
func (f *fsm) OnRoute(cb func([]RouteEvent)) {
	f.peer.onRoute = cb
}

// RemoteAS reports the peer's AS, for the eBGP/iBGP tie-break leg of
// RFC 4271 9.1.2.2: the AS its OPEN carried once one has been received,
// the configured remote AS before that.
func (f *fsm) RemoteAS() uint32 {
	if f.peer.remotePeerOpen != nil {
		return f.peer.remotePeerOpen.EffectiveASN()
	}
	return uint32(f.peer.remoteAS)
}

// LocalAS reports the locally configured AS.
func (f *fsm) LocalAS() uint32 { return f.peer.localAS }

// IsEBGP reports whether this session's remote and local AS differ.
func (f *fsm) IsEBGP() bool { return f.RemoteAS() != f.peer.localAS }

// RemoteRouterID reports the peer's advertised BGP Identifier, 0 before
// OPEN exchange completes — used by the router-ID leg of the tie-break
// ladder.
func (f *fsm) RemoteRouterID() uint32 {
	if f.peer.remotePeerOpen == nil {
		return 0
	}
	return f.peer.remotePeerOpen.BGPIdentifier()
}

// RemoteAddr reports the peer's configured address.
func (f *fsm) RemoteAddr() net.IP { return f.peer.remoteIP }
