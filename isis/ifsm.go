package isis

import (
	"context"
	"net"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/zebra-rs/zebra-go/event"
	"github.com/zebra-rs/zebra-go/isispkt"
)

// Link is one circuit's IFSM (ISO 10589 8.4.1) plus the neighbors heard
// on it. One Link exists per (interface, level) pair — a CircuitL1L2
// interface runs two independent Links, one per level, since Hellos,
// DIS election and the LSDB are all per-level.
type Link struct {
	mu sync.Mutex

	ifname      string
	level       int
	circuitType byte
	ownSystemID isispkt.SystemID
	mac         net.HardwareAddr
	priority    byte

	state     int
	neighbors map[isispkt.SystemID]*Neighbor

	// dis is the elected Designated IS for this LAN link, or the zero
	// value if none has been elected yet (e.g. a point-to-point link,
	// which has no DIS).
	dis isispkt.SystemID

	helloTimer *event.RepeatingTimer
	inbox      *event.Mailbox
	lsdb       *LSDB

	log *logrus.Entry
}

// NewLink creates a Link in the Down state. Up starts its Hello timer
// and begins processing received PDUs posted to its Mailbox. mac is the
// interface's own hardware address: ISO 10589's three-way handshake and
// DIS tiebreak both compare MAC/SNPA addresses, never system IDs, on a
// LAN circuit.
func NewLink(ifname string, level int, ownSystemID isispkt.SystemID, mac net.HardwareAddr, lsdb *LSDB, log *logrus.Entry) *Link {
	return &Link{
		ifname:      ifname,
		level:       level,
		circuitType: byte(level),
		ownSystemID: ownSystemID,
		mac:         mac,
		priority:    DefaultPriority,
		state:       IFSMDown,
		neighbors:   make(map[isispkt.SystemID]*Neighbor),
		inbox:       event.NewMailbox(),
		lsdb:        lsdb,
		log:         log.WithFields(logrus.Fields{"interface": ifname, "level": level}),
	}
}

// Name returns the interface name this link runs on.
func (l *Link) Name() string { return l.ifname }

// Level returns the IS-IS level (Level1 or Level2) this link runs.
func (l *Link) Level() int { return l.level }

// LSDB returns the link-state database this link floods into and draws
// CSNP/PSNP comparisons from.
func (l *Link) LSDB() *LSDB { return l.lsdb }

// Up transitions the link to Up, arms the Hello timer and starts the
// dispatch loop that drains its Mailbox until ctx is cancelled.
func (l *Link) Up(ctx context.Context, send func(pdu []byte)) {
	l.mu.Lock()
	l.state = IFSMUp
	l.mu.Unlock()
	l.log.Info("isis ifsm state transition to Up")

	l.helloTimer = event.NewRepeating(l.inbox, DefaultHelloInterval, sendHelloTick{})
	loop := event.NewLoop(l.inbox, func(msg event.Message) { l.dispatch(msg, send) })
	go loop.Run(ctx)
}

// Down stops the Hello timer and drops every neighbor (ISO 10589 8.4.1's
// "circuit down" action).
func (l *Link) Down() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state = IFSMDown
	if l.helloTimer != nil {
		l.helloTimer.Cancel()
	}
	for id, n := range l.neighbors {
		n.handle(nfsmDown, nil)
		delete(l.neighbors, id)
	}
}

type sendHelloTick struct{}

func (l *Link) dispatch(msg event.Message, send func(pdu []byte)) {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch m := msg.(type) {
	case sendHelloTick:
		send(l.buildHello().Encode())
		l.electDIS()
	case helloReceived:
		n, ok := l.neighbors[m.source]
		if !ok {
			n = newNeighbor(l, m.source)
			l.neighbors[m.source] = n
		}
		n.priority = m.hello.Priority
		n.circuitType = m.hello.CircuitType
		n.mac = m.mac
		n.handle(nfsmHelloReceived, m.hello)
		l.electDIS()
	case neighborHoldExpired:
		if n, ok := l.neighbors[m.systemID]; ok {
			n.handle(nfsmHoldTimerExpired, nil)
			delete(l.neighbors, m.systemID)
			l.electDIS()
		}
	}
}

// Receive feeds a decoded Hello and the MAC address it arrived from
// into the link's dispatch loop. The caller (the socket read loop) owns
// frame decoding; Link only owns state. The Hello PDU itself carries no
// MAC (ISO 10589 frames have no Ethernet header fields beyond the LLC
// envelope), so the transport layer must hand it over out of band.
func (l *Link) Receive(hello *isispkt.Hello, mac net.HardwareAddr) {
	l.inbox.Send(helloReceived{hello: hello, source: hello.SourceID, mac: mac})
}

func (l *Link) buildHello() *isispkt.Hello {
	h := &isispkt.Hello{
		CircuitType: l.circuitType,
		SourceID:    l.ownSystemID,
		HoldingTime: uint16(DefaultHelloInterval.Seconds()) * DefaultHoldMultiplier,
		Priority:    l.priority,
	}
	copy(h.LANID[:isispkt.SystemIDLength], l.dis[:])
	var neighborTLV []byte
	for _, n := range l.neighbors {
		if n.state != NFSMDown && len(n.mac) == 6 {
			neighborTLV = append(neighborTLV, n.mac...)
		}
	}
	if len(neighborTLV) > 0 {
		h.TLVs = append(h.TLVs, isispkt.TLV{Type: isispkt.TLVIsNeighbors, Value: neighborTLV})
	}
	return h
}

// electDIS picks the Designated IS for a LAN link: highest priority,
// MAC address as tiebreak (ISO 10589 8.4.5 — the tie is broken on the
// SNPA/MAC, never the system ID). Link has no point-to-point mode, so
// the election runs on every link, point-to-point circuits included.
func (l *Link) electDIS() {
	best := l.ownSystemID
	bestPriority := l.priority
	bestMAC := l.mac
	for id, n := range l.neighbors {
		if n.state != NFSMUp {
			continue
		}
		if n.priority > bestPriority || (n.priority == bestPriority && greaterMAC(n.mac, bestMAC)) {
			best, bestPriority, bestMAC = id, n.priority, n.mac
		}
	}
	if best != l.dis {
		l.log.WithField("dis", best.String()).Info("isis DIS election result")
		l.dis = best
	}
}

func greaterMAC(a, b net.HardwareAddr) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] > b[i]
		}
	}
	return len(a) > len(b)
}
