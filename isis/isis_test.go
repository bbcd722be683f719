package isis

import (
	"net"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/zebra-rs/zebra-go/isispkt"
)

func testLog() *logrus.Entry {
	return logrus.NewEntry(logrus.New())
}

func TestHostnameMap(t *testing.T) {
	h := NewHostnameMap()
	id := isispkt.SystemID{0, 0, 0, 0, 0, 1}
	require.Equal(t, id.String(), h.Lookup(id))

	h.Set(id, "router1")
	require.Equal(t, "router1", h.Lookup(id))

	h.Delete(id)
	require.Equal(t, id.String(), h.Lookup(id))
}

func TestNeighborThreeWayHandshake(t *testing.T) {
	own := isispkt.SystemID{0, 0, 0, 0, 0, 1}
	remote := isispkt.SystemID{0, 0, 0, 0, 0, 2}
	ownMAC := net.HardwareAddr{0xaa, 0xbb, 0xcc, 0x00, 0x00, 0x01}

	link := NewLink("eth0", Level2, own, ownMAC, nil, testLog())
	n := newNeighbor(link, remote)
	require.Equal(t, NFSMDown, n.state)

	helloWithoutSelf := &isispkt.Hello{HoldingTime: 30}
	n.handle(nfsmHelloReceived, helloWithoutSelf)
	require.Equal(t, NFSMInitializing, n.state)

	helloWithSelf := &isispkt.Hello{
		HoldingTime: 30,
		TLVs:        []isispkt.TLV{{Type: isispkt.TLVIsNeighbors, Value: ownMAC}},
	}
	n.handle(nfsmHelloReceived, helloWithSelf)
	require.Equal(t, NFSMUp, n.state)

	n.handle(nfsmHoldTimerExpired, nil)
	require.Equal(t, NFSMDown, n.state)
}

func TestDISElectionPrefersHighestPriority(t *testing.T) {
	own := isispkt.SystemID{0, 0, 0, 0, 0, 1}
	other := isispkt.SystemID{0, 0, 0, 0, 0, 2}
	ownMAC := net.HardwareAddr{0xaa, 0xbb, 0xcc, 0x00, 0x00, 0x01}
	otherMAC := net.HardwareAddr{0xaa, 0xbb, 0xcc, 0x00, 0x00, 0x02}

	link := NewLink("eth0", Level2, own, ownMAC, nil, testLog())
	link.priority = 10

	n := newNeighbor(link, other)
	n.state = NFSMUp
	n.priority = 20
	n.mac = otherMAC
	link.neighbors[other] = n

	link.electDIS()
	require.Equal(t, other, link.dis)
}

func TestDISElectionBreaksTieOnMAC(t *testing.T) {
	own := isispkt.SystemID{0, 0, 0, 0, 0, 1}
	other := isispkt.SystemID{0, 0, 0, 0, 0, 2}
	ownMAC := net.HardwareAddr{0xaa, 0xbb, 0xcc, 0x00, 0x00, 0x01}
	otherMAC := net.HardwareAddr{0xaa, 0xbb, 0xcc, 0x00, 0x00, 0x02}

	link := NewLink("eth0", Level2, own, ownMAC, nil, testLog())
	link.priority = 10

	n := newNeighbor(link, other)
	n.state = NFSMUp
	n.priority = 10
	n.mac = otherMAC
	link.neighbors[other] = n

	link.electDIS()
	require.Equal(t, other, link.dis, "higher MAC wins an equal-priority tie")
}

func TestLSDBOriginateAndPurge(t *testing.T) {
	self := isispkt.SystemID{0, 0, 0, 0, 0, 1}
	var flooded [][]byte
	hosts := NewHostnameMap()
	db := NewLSDB(Level2, self, hosts, func(pdu []byte) { flooded = append(flooded, pdu) }, testLog())

	db.Originate([]isispkt.TLV{{Type: isispkt.TLVDynamicHostname, Value: []byte("r1")}})
	require.Len(t, db.Entries(), 1)
	require.Equal(t, "r1", hosts.Lookup(self))
	require.NotEmpty(t, flooded)

	id := isispkt.LSPID{SystemID: self}
	db.purge(id)
	require.Equal(t, uint16(0), db.entries[id].lsp.RemainingLifetime)
	require.Equal(t, self.String(), hosts.Lookup(self))
}

func TestLSDBReceiveNewerWins(t *testing.T) {
	self := isispkt.SystemID{0, 0, 0, 0, 0, 1}
	other := isispkt.SystemID{0, 0, 0, 0, 0, 2}
	hosts := NewHostnameMap()
	db := NewLSDB(Level2, self, hosts, func([]byte) {}, testLog())

	id := isispkt.LSPID{SystemID: other}
	old := &isispkt.LSP{LSPID: id, SequenceNumber: 1, RemainingLifetime: 1200}
	db.Receive(old, nil)
	require.Equal(t, uint32(1), db.entries[id].lsp.SequenceNumber)

	stale := &isispkt.LSP{LSPID: id, SequenceNumber: 1, RemainingLifetime: 1200}
	db.Receive(stale, nil)
	require.Equal(t, uint32(1), db.entries[id].lsp.SequenceNumber)

	newer := &isispkt.LSP{LSPID: id, SequenceNumber: 2, RemainingLifetime: 1200}
	db.Receive(newer, nil)
	require.Equal(t, uint32(2), db.entries[id].lsp.SequenceNumber)
}
