package isis

import (
	"net"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/zebra-rs/zebra-go/event"
	"github.com/zebra-rs/zebra-go/isispkt"
	"github.com/zebra-rs/zebra-go/timer"
)

// Neighbor is one adjacency's NFSM (ISO 10589 8.2.5.2): Down, then
// Initializing once we've heard any Hello from it, then Up once we've
// heard a Hello that also lists our own MAC address back (the
// three-way handshake — ISO 10589 8.2.5.2 compares SNPA/MAC addresses,
// not system IDs).
type Neighbor struct {
	link *Link

	systemID    isispkt.SystemID
	mac         net.HardwareAddr
	state       int
	priority    byte
	circuitType byte

	holdTimer *timer.Timer
	log       *logrus.Entry
}

func newNeighbor(link *Link, id isispkt.SystemID) *Neighbor {
	n := &Neighbor{
		link:  link,
		systemID: id,
		state: NFSMDown,
		log:   link.log.WithField("neighbor", id.String()),
	}
	return n
}

// event numbers an NFSM is driven with, mirroring the (state, event)
// dispatch style of fsm.FSM.
const (
	nfsmHelloReceived = iota
	nfsmHoldTimerExpired
	nfsmDown
)

// handle dispatches one event through the NFSM's transition table. Must
// be called with link.mu held (Link.dispatch is the only caller).
func (n *Neighbor) handle(event int, hello *isispkt.Hello) {
	switch n.state {
	case NFSMDown:
		if event == nfsmHelloReceived {
			n.transition(NFSMInitializing)
			n.armHoldTimer(hello.HoldingTime)
		}
	case NFSMInitializing:
		switch event {
		case nfsmHelloReceived:
			n.armHoldTimer(hello.HoldingTime)
			if n.seenSelf(hello) {
				n.transition(NFSMUp)
			}
		case nfsmHoldTimerExpired:
			n.transition(NFSMDown)
		}
	case NFSMUp:
		switch event {
		case nfsmHelloReceived:
			n.armHoldTimer(hello.HoldingTime)
			if !n.seenSelf(hello) {
				// Lost our own entry in the neighbor's Hello: the
				// adjacency has to re-converge through Initializing.
				n.transition(NFSMInitializing)
			}
		case nfsmHoldTimerExpired, nfsmDown:
			n.transition(NFSMDown)
		}
	}
}

// seenSelf reports whether hello's IS Neighbors TLV (type 6, whose
// entries are SNPA/MAC addresses on a LAN circuit, not system IDs)
// lists our own MAC address, completing the three-way handshake.
func (n *Neighbor) seenSelf(hello *isispkt.Hello) bool {
	if len(n.link.mac) != 6 {
		return false
	}
	for _, t := range isispkt.FindAll(hello.TLVs, isispkt.TLVIsNeighbors) {
		for i := 0; i+6 <= len(t.Value); i += 6 {
			if string(t.Value[i:i+6]) == string([]byte(n.link.mac)) {
				return true
			}
		}
	}
	return false
}

func (n *Neighbor) transition(next int) {
	n.log.WithFields(logrus.Fields{"from": nfsmStateName[n.state], "to": nfsmStateName[next]}).Info("isis nfsm state transition")
	n.state = next
}

func (n *Neighbor) armHoldTimer(holdingTime uint16) {
	d := time.Duration(holdingTime) * time.Second
	msg := neighborHoldExpired{systemID: n.systemID}
	if n.holdTimer == nil {
		n.holdTimer = timer.New(d, func() { n.link.inbox.Send(msg) })
		return
	}
	n.holdTimer.Reset(d)
}

// Message types posted onto a Link's Mailbox.
type helloReceived struct {
	hello  *isispkt.Hello
	source isispkt.SystemID
	mac    net.HardwareAddr
}

type neighborHoldExpired struct {
	systemID isispkt.SystemID
}

var _ event.Message = helloReceived{}
