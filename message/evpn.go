package message

import (
	"encoding/binary"
	"net"

	"github.com/pkg/errors"

	"github.com/zebra-rs/zebra-go/bgp"
)

// EVPN Route Types (RFC 7432 §7).
const (
	evpnRouteTypeEthernetAutoDiscovery = 1
	evpnRouteTypeMACIPAdvertisement    = 2
	evpnRouteTypeInclusiveMulticast    = 3
	evpnRouteTypeEthernetSegment       = 4
	evpnRouteTypeIPPrefix              = 5
)

// evpnRoute is one AFI 25 / SAFI 70 NLRI entry: a 1-octet Route Type, a
// 1-octet Length, and a type-specific payload. Only Route Types 2
// (MAC/IP Advertisement) and 3 (Inclusive Multicast Ethernet Tag) are
// decoded into typed fields below; every other route type is kept as
// opaque bytes in raw so it still round-trips through a speaker that
// doesn't originate it.
type evpnRoute struct {
	routeType byte
	raw       []byte

	macIP *evpnMACIPAdvertisement
	imet  *evpnInclusiveMulticast
}

// evpnMACIPAdvertisement is EVPN Route Type 2: reachability for one MAC,
// optionally paired with an IP, inside an Ethernet Segment/Tag.
type evpnMACIPAdvertisement struct {
	rd         bgp.RouteDistinguisher
	esi        [10]byte
	ethTag     uint32
	mac        net.HardwareAddr
	ip         net.IP
	mplsLabel1 bgp.Label
	mplsLabel2 bgp.Label
}

// evpnInclusiveMulticast is EVPN Route Type 3: a PE's membership in an
// Ethernet Tag's flood list, used to build ingress replication lists.
type evpnInclusiveMulticast struct {
	rd     bgp.RouteDistinguisher
	ethTag uint32
	ip     net.IP
}

func decodeEVPNRoutes(b []byte) ([]evpnRoute, error) {
	var out []evpnRoute
	for len(b) > 0 {
		if len(b) < 2 {
			return nil, errors.New("bgp: truncated EVPN route")
		}
		rt := b[0]
		length := int(b[1])
		b = b[2:]
		if len(b) < length {
			return nil, errors.New("bgp: truncated EVPN route payload")
		}
		payload := b[:length]
		b = b[length:]

		route := evpnRoute{routeType: rt, raw: payload}
		var err error
		switch rt {
		case evpnRouteTypeMACIPAdvertisement:
			route.macIP, err = decodeEVPNMACIP(payload)
		case evpnRouteTypeInclusiveMulticast:
			route.imet, err = decodeEVPNInclusiveMulticast(payload)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, route)
	}
	return out, nil
}

func decodeEVPNMACIP(b []byte) (*evpnMACIPAdvertisement, error) {
	// RD(8) ESI(10) ETag(4) MACLen(1) MAC(6) IPLen(1) IP(0/4/16) Label1(3) [Label2(3)]
	if len(b) < 8+10+4+1+6+1+3 {
		return nil, errors.New("bgp: truncated EVPN MAC/IP advertisement")
	}
	a := &evpnMACIPAdvertisement{}
	copy(a.rd[:], b[0:8])
	copy(a.esi[:], b[8:18])
	a.ethTag = binary.BigEndian.Uint32(b[18:22])
	macLen := b[22]
	if macLen != 48 {
		return nil, errors.Errorf("bgp: unsupported EVPN MAC address length %d bits", macLen)
	}
	a.mac = net.HardwareAddr(b[23:29])
	b = b[29:]

	ipLen := b[0]
	b = b[1:]
	switch ipLen {
	case 0:
	case 32:
		if len(b) < 4 {
			return nil, errors.New("bgp: truncated EVPN IPv4 address")
		}
		a.ip = net.IP(append([]byte{}, b[:4]...))
		b = b[4:]
	case 128:
		if len(b) < 16 {
			return nil, errors.New("bgp: truncated EVPN IPv6 address")
		}
		a.ip = net.IP(append([]byte{}, b[:16]...))
		b = b[16:]
	default:
		return nil, errors.Errorf("bgp: unsupported EVPN IP address length %d bits", ipLen)
	}

	if len(b) < 3 {
		return nil, errors.New("bgp: truncated EVPN MPLS label 1")
	}
	a.mplsLabel1 = bgp.DecodeLabel(b[0:3])
	b = b[3:]
	if len(b) >= 3 {
		a.mplsLabel2 = bgp.DecodeLabel(b[0:3])
	}
	return a, nil
}

func decodeEVPNInclusiveMulticast(b []byte) (*evpnInclusiveMulticast, error) {
	// RD(8) ETag(4) IPLen(1) IP(4/16)
	if len(b) < 8+4+1 {
		return nil, errors.New("bgp: truncated EVPN inclusive multicast route")
	}
	m := &evpnInclusiveMulticast{}
	copy(m.rd[:], b[0:8])
	m.ethTag = binary.BigEndian.Uint32(b[8:12])
	ipLen := b[12]
	b = b[13:]
	switch ipLen {
	case 32:
		if len(b) < 4 {
			return nil, errors.New("bgp: truncated EVPN IPv4 address")
		}
		m.ip = net.IP(append([]byte{}, b[:4]...))
	case 128:
		if len(b) < 16 {
			return nil, errors.New("bgp: truncated EVPN IPv6 address")
		}
		m.ip = net.IP(append([]byte{}, b[:16]...))
	default:
		return nil, errors.Errorf("bgp: unsupported EVPN IP address length %d bits", ipLen)
	}
	return m, nil
}

func (r evpnRoute) bytes() []byte {
	var payload []byte
	switch r.routeType {
	case evpnRouteTypeMACIPAdvertisement:
		if r.macIP != nil {
			payload = r.macIP.bytes()
		}
	case evpnRouteTypeInclusiveMulticast:
		if r.imet != nil {
			payload = r.imet.bytes()
		}
	}
	if payload == nil {
		payload = r.raw
	}
	b := []byte{r.routeType, byte(len(payload))}
	return append(b, payload...)
}

func (a evpnMACIPAdvertisement) bytes() []byte {
	ipLen := byte(0)
	var ip []byte
	if ip4 := a.ip.To4(); a.ip != nil && ip4 != nil {
		ipLen = 32
		ip = ip4
	} else if a.ip != nil {
		ipLen = 128
		ip = a.ip.To16()
	}

	b := make([]byte, 0, 8+10+4+1+6+1+len(ip)+3+3)
	b = append(b, a.rd[:]...)
	b = append(b, a.esi[:]...)
	tag := make([]byte, 4)
	binary.BigEndian.PutUint32(tag, a.ethTag)
	b = append(b, tag...)
	b = append(b, 48)
	b = append(b, a.mac...)
	b = append(b, ipLen)
	b = append(b, ip...)
	b = append(b, a.mplsLabel1.Encode(a.mplsLabel2 == 0)...)
	if a.mplsLabel2 != 0 {
		b = append(b, a.mplsLabel2.Encode(true)...)
	}
	return b
}

func (m evpnInclusiveMulticast) bytes() []byte {
	ipLen := byte(32)
	ip := m.ip.To4()
	if ip == nil {
		ipLen = 128
		ip = m.ip.To16()
	}
	b := make([]byte, 0, 8+4+1+len(ip))
	b = append(b, m.rd[:]...)
	tag := make([]byte, 4)
	binary.BigEndian.PutUint32(tag, m.ethTag)
	b = append(b, tag...)
	b = append(b, ipLen)
	b = append(b, ip...)
	return b
}
