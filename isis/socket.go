package isis

import (
	"encoding/binary"
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// IS-IS PDUs are carried directly in an 802.3 frame's LLC envelope
// (ISO 10589 Annex C) — DSAP=SSAP=0xFE, no Ethernet II ethertype, no
// SNAP header — rather than inside IP/UDP the way most routing
// protocols this repo otherwise handles are.
const (
	llcDSAP    = 0xfe
	llcSSAP    = 0xfe
	llcControl = 0x03
)

// All-L1-ISs and All-L2-ISs multicast MAC addresses (ISO 10589 8.4.8),
// the destination a Hello/LSP/SNP is sent to on a broadcast circuit.
var (
	allL1IS = net.HardwareAddr{0x01, 0x80, 0xc2, 0x00, 0x00, 0x14}
	allL2IS = net.HardwareAddr{0x01, 0x80, 0xc2, 0x00, 0x00, 0x15}
)

// Socket is a raw AF_PACKET socket bound to one interface, framing
// IS-IS PDUs in the 802.3+LLC envelope above. It is this engine's only
// transport: IS-IS has no IP header to route through the kernel stack,
// so Send/Recv talk straight to the link layer the way the teacher's
// netlink-based FIB adapter talks straight to the kernel's route tables.
type Socket struct {
	fd      int
	ifindex int
	mac     net.HardwareAddr
}

// NewSocket opens and binds a raw socket on ifname, receiving every
// frame on the wire (ETH_P_ALL) so Recv can pick IS-IS's LLC-framed
// PDUs out for itself. Requires CAP_NET_RAW.
func NewSocket(ifname string) (*Socket, error) {
	ifi, err := net.InterfaceByName(ifname)
	if err != nil {
		return nil, fmt.Errorf("isis: %s: %w", ifname, err)
	}
	fd, err := unix.Socket(unix.AF_PACKET, unix.SOCK_RAW, int(htons(unix.ETH_P_ALL)))
	if err != nil {
		return nil, fmt.Errorf("isis: raw socket: %w", err)
	}
	sa := &unix.SockaddrLinklayer{
		Protocol: htons(unix.ETH_P_ALL),
		Ifindex:  ifi.Index,
	}
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("isis: bind %s: %w", ifname, err)
	}
	return &Socket{fd: fd, ifindex: ifi.Index, mac: ifi.HardwareAddr}, nil
}

func htons(v int) uint16 {
	return binary.BigEndian.Uint16([]byte{byte(v >> 8), byte(v)})
}

// MAC returns the bound interface's own hardware address.
func (s *Socket) MAC() net.HardwareAddr { return s.mac }

// Close releases the underlying file descriptor. A blocked Recv
// returns an error once this runs, the same shutdown pattern
// fib.Adapter.Subscribe's done channel drives for netlink reads.
func (s *Socket) Close() error { return unix.Close(s.fd) }

// Send frames pdu in an 802.3+LLC envelope addressed to the given
// level's All-IS multicast address.
func (s *Socket) Send(level int, pdu []byte) error {
	dst := allL2IS
	if level == Level1 {
		dst = allL1IS
	}
	frame := make([]byte, 0, 3+len(pdu))
	frame = append(frame, llcDSAP, llcSSAP, llcControl)
	frame = append(frame, pdu...)

	var hw [8]byte
	copy(hw[:], dst)
	sa := &unix.SockaddrLinklayer{
		Protocol: htons(unix.ETH_P_ALL),
		Ifindex:  s.ifindex,
		Halen:    6,
		Addr:     hw,
	}
	return unix.Sendto(s.fd, frame, 0, sa)
}

// Recv blocks for the next IS-IS frame on this socket, returning the PDU
// payload (LLC header stripped) and the sender's MAC address. Frames
// that aren't IS-IS's LLC envelope (any other DSAP/SSAP) are skipped.
func (s *Socket) Recv(buf []byte) (pdu []byte, src net.HardwareAddr, err error) {
	for {
		n, from, err := unix.Recvfrom(s.fd, buf, 0)
		if err != nil {
			return nil, nil, err
		}
		if n < 3 || buf[0] != llcDSAP || buf[1] != llcSSAP {
			continue
		}
		sa, ok := from.(*unix.SockaddrLinklayer)
		if !ok {
			continue
		}
		mac := make(net.HardwareAddr, sa.Halen)
		copy(mac, sa.Addr[:sa.Halen])
		out := make([]byte, n-3)
		copy(out, buf[3:n])
		return out, mac, nil
	}
}
