package fsm

import (
	"net"
	"sync"

	"github.com/zebra-rs/zebra-go/attrstore"
	"github.com/zebra-rs/zebra-go/message"
)

// RouteEvent is what a peer's adjRIBIn reports to its owning speaker.Peer
// each time an UPDATE changes it: either a new/replaced path for prefix
// (Withdraw false, Attrs the interned handle) or a withdrawal (Withdraw
// true, Attrs nil). PathID is 0 when add-path is not in use.
type RouteEvent struct {
	Prefix   net.IPNet
	PathID   uint32
	Withdraw bool
	Attrs    *attrstore.Handle
}

// adjRIBIn holds every route this peer has advertised to us, pre-policy,
// keyed by (prefix, path-id) (§3's Adj-RIB-In). Attribute sets are
// interned through the process-wide attrstore.Store so that routes
// sharing attributes across peers and prefixes share one handle.
type adjRIBIn struct {
	mu     sync.Mutex
	store  *attrstore.Store
	routes map[ribKey]*attrstore.Handle
}

type ribKey struct {
	prefix string
	pathID uint32
}

func newAdjRIBIn(store *attrstore.Store) *adjRIBIn {
	return &adjRIBIn{store: store, routes: make(map[ribKey]*attrstore.Handle)}
}

// apply folds an UPDATE's withdrawals and NLRI into the table (§4.5
// ingress steps 1 and 3), returning one RouteEvent per prefix touched so
// the caller can feed them into Loc-RIB best-path selection.
func (a *adjRIBIn) apply(u *message.UpdateMessage, asn4 bool) []RouteEvent {
	a.mu.Lock()
	defer a.mu.Unlock()

	var events []RouteEvent

	withdrawn, wIDs := u.Withdrawn()
	for i, p := range withdrawn {
		pathID := pathIDAt(wIDs, i)
		key := ribKey{prefix: p.String(), pathID: pathID}
		if h, ok := a.routes[key]; ok {
			h.Release()
			delete(a.routes, key)
		}
		events = append(events, RouteEvent{Prefix: p, PathID: pathID, Withdraw: true})
	}

	nlri, nIDs := u.NLRI()
	if len(nlri) > 0 {
		set := u.AttributeSet(asn4)
		handle := a.store.Intern(set)
		for i, p := range nlri {
			pathID := pathIDAt(nIDs, i)
			key := ribKey{prefix: p.String(), pathID: pathID}
			if old, ok := a.routes[key]; ok {
				old.Release()
			}
			handle.Retain()
			a.routes[key] = handle
			events = append(events, RouteEvent{Prefix: p, PathID: pathID, Attrs: handle})
		}
		// The lookup above retained once per NLRI entry plus the store's
		// own initial reference; release the latter since every NLRI
		// entry now holds its own retained reference.
		handle.Release()
	}

	return events
}

// clear withdraws every route this peer ever advertised (peer-down,
// §4.5's "tear down adjacency") and returns the resulting events.
func (a *adjRIBIn) clear() []RouteEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	events := make([]RouteEvent, 0, len(a.routes))
	for key, h := range a.routes {
		h.Release()
		_, p, err := net.ParseCIDR(key.prefix)
		if err != nil || p == nil {
			continue
		}
		events = append(events, RouteEvent{Prefix: *p, PathID: key.pathID, Withdraw: true})
	}
	a.routes = make(map[ribKey]*attrstore.Handle)
	return events
}

func pathIDAt(ids []uint32, i int) uint32 {
	if i < len(ids) {
		return ids[i]
	}
	return 0
}

// adjRIBOut holds every route we have advertised to this peer,
// post-policy, so withdrawals on peer-down or policy change know what to
// retract without recomputing best-path from scratch.
type adjRIBOut struct {
	mu     sync.Mutex
	routes map[ribKey]*attrstore.Handle
}

func newAdjRIBOut() *adjRIBOut {
	return &adjRIBOut{routes: make(map[ribKey]*attrstore.Handle)}
}
