package message

import (
	"encoding/binary"
	"net"

	"github.com/pkg/errors"

	"github.com/zebra-rs/zebra-go/bgp"
)

//    MP_REACH_NLRI (Type Code 14) and MP_UNREACH_NLRI (Type Code 15)
//    carry NLRI for any AFI/SAFI beyond plain IPv4 unicast (RFC 4760).
//    +---------------------------------------------------------+
//    | Address Family Identifier (2 octets)                    |
//    | Subsequent Address Family Identifier (1 octet)           |
//    | Length of Next Hop Network Address (1 octet)              |
//    | Network Address of Next Hop (variable)                     |
//    | Reserved (1 octet)                                        |
//    | Network Layer Reachability Information (variable)         |
//    +---------------------------------------------------------+
type mpReachNLRI struct {
	afi     uint16
	safi    byte
	nextHop []byte
	nlri    []byte // AFI/SAFI-specific, decoded separately
}

func decodeMPReach(v []byte) (*mpReachNLRI, error) {
	if len(v) < 4 {
		return nil, errors.New("bgp: truncated MP_REACH_NLRI")
	}
	afi := binary.BigEndian.Uint16(v[0:2])
	safi := v[2]
	nhLen := int(v[3])
	v = v[4:]
	if len(v) < nhLen+1 {
		return nil, errors.New("bgp: truncated MP_REACH_NLRI nexthop")
	}
	nh := v[:nhLen]
	v = v[nhLen:]
	v = v[1:] // Reserved / SNPA count, always sent as 0 and ignored on receipt
	return &mpReachNLRI{afi: afi, safi: safi, nextHop: nh, nlri: v}, nil
}

func (m mpReachNLRI) bytes() []byte {
	b := make([]byte, 4, 4+len(m.nextHop)+1+len(m.nlri))
	binary.BigEndian.PutUint16(b[0:2], m.afi)
	b[2] = m.safi
	b[3] = byte(len(m.nextHop))
	b = append(b, m.nextHop...)
	b = append(b, 0)
	b = append(b, m.nlri...)
	return b
}

type mpUnreachNLRI struct {
	afi  uint16
	safi byte
	nlri []byte
}

func decodeMPUnreach(v []byte) (*mpUnreachNLRI, error) {
	if len(v) < 3 {
		return nil, errors.New("bgp: truncated MP_UNREACH_NLRI")
	}
	return &mpUnreachNLRI{afi: binary.BigEndian.Uint16(v[0:2]), safi: v[2], nlri: v[3:]}, nil
}

func (m mpUnreachNLRI) bytes() []byte {
	b := make([]byte, 3, 3+len(m.nlri))
	binary.BigEndian.PutUint16(b[0:2], m.afi)
	b[2] = m.safi
	return append(b, m.nlri...)
}

// decodeIPv6Prefixes mirrors decodeIPv4Prefixes for the 16-octet IPv6
// address family, as carried inside MP_REACH/MP_UNREACH_NLRI.
func decodeIPv6Prefixes(b []byte, addPath bool) ([]net.IPNet, []uint32, error) {
	var prefixes []net.IPNet
	var pathIDs []uint32
	for len(b) > 0 {
		var pathID uint32
		if addPath {
			if len(b) < 4 {
				return nil, nil, errors.New("bgp: truncated add-path path identifier")
			}
			pathID = binary.BigEndian.Uint32(b[0:4])
			b = b[4:]
		}
		if len(b) < 1 {
			return nil, nil, errors.New("bgp: truncated prefix length")
		}
		bits := int(b[0])
		b = b[1:]
		if bits > 128 {
			return nil, nil, errors.Errorf("bgp: invalid IPv6 prefix length %d", bits)
		}
		nbytes := (bits + 7) / 8
		if len(b) < nbytes {
			return nil, nil, errors.New("bgp: truncated prefix")
		}
		addr := make([]byte, 16)
		copy(addr, b[:nbytes])
		b = b[nbytes:]

		prefixes = append(prefixes, net.IPNet{IP: net.IP(addr), Mask: net.CIDRMask(bits, 128)})
		if addPath {
			pathIDs = append(pathIDs, pathID)
		}
	}
	return prefixes, pathIDs, nil
}

func encodeIPv6Prefixes(prefixes []net.IPNet, pathIDs []uint32, addPath bool) []byte {
	var b []byte
	for i, p := range prefixes {
		if addPath {
			pid := make([]byte, 4)
			if i < len(pathIDs) {
				binary.BigEndian.PutUint32(pid, pathIDs[i])
			}
			b = append(b, pid...)
		}
		ones, _ := p.Mask.Size()
		nbytes := (ones + 7) / 8
		ip16 := p.IP.To16()
		b = append(b, byte(ones))
		b = append(b, ip16[:nbytes]...)
	}
	return b
}

// vpnPrefix is one SAFI 128 (MPLS-labeled VPN unicast) NLRI entry: a
// label stack, a route distinguisher, and the customer prefix (RFC 4364,
// RFC 3107).
type vpnPrefix struct {
	labels []bgp.Label
	rd     bgp.RouteDistinguisher
	prefix net.IPNet
}

// decodeVPNv4Prefixes parses SAFI 128 NLRI over IPv4: each entry is
// <length-in-bits><label stack><8-octet RD><prefix>, where length counts
// the label stack and RD bits too.
func decodeVPNv4Prefixes(b []byte) ([]vpnPrefix, error) {
	var out []vpnPrefix
	for len(b) > 0 {
		if len(b) < 1 {
			return nil, errors.New("bgp: truncated VPNv4 prefix length")
		}
		bits := int(b[0])
		b = b[1:]

		var labels []bgp.Label
		consumedLabelBits := 0
		for {
			if len(b) < 3 {
				return nil, errors.New("bgp: truncated VPNv4 label stack")
			}
			labels = append(labels, bgp.DecodeLabel(b[0:3]))
			bottom := bgp.Bottom(b[0:3])
			b = b[3:]
			consumedLabelBits += 24
			if bottom || labels[len(labels)-1] == bgp.WithdrawnLabel {
				break
			}
		}

		if len(b) < 8 {
			return nil, errors.New("bgp: truncated VPNv4 route distinguisher")
		}
		var rd bgp.RouteDistinguisher
		copy(rd[:], b[:8])
		b = b[8:]
		consumedLabelBits += 64

		prefixBits := bits - consumedLabelBits
		if prefixBits < 0 || prefixBits > 32 {
			return nil, errors.Errorf("bgp: invalid VPNv4 prefix bit length %d", prefixBits)
		}
		nbytes := (prefixBits + 7) / 8
		if len(b) < nbytes {
			return nil, errors.New("bgp: truncated VPNv4 prefix")
		}
		addr := make([]byte, 4)
		copy(addr, b[:nbytes])
		b = b[nbytes:]

		out = append(out, vpnPrefix{
			labels: labels,
			rd:     rd,
			prefix: net.IPNet{IP: net.IP(addr), Mask: net.CIDRMask(prefixBits, 32)},
		})
	}
	return out, nil
}

func encodeVPNv4Prefixes(prefixes []vpnPrefix) []byte {
	var b []byte
	for _, p := range prefixes {
		ones, _ := p.prefix.Mask.Size()
		bits := ones + len(p.labels)*24 + 64
		nbytes := (ones + 7) / 8
		ip4 := p.prefix.IP.To4()

		b = append(b, byte(bits))
		for i, l := range p.labels {
			b = append(b, l.Encode(i == len(p.labels)-1)...)
		}
		b = append(b, p.rd[:]...)
		b = append(b, ip4[:nbytes]...)
	}
	return b
}

// rtMembershipPrefix is one SAFI 132 Route Target Constraint NLRI entry
// (RFC 4684): the originating AS and an 8-octet route target, or a
// 0-length "default" wildcard entry.
type rtMembershipPrefix struct {
	originAS    uint32
	routeTarget [8]byte
	defaultRT   bool
}

func decodeRTMembershipPrefixes(b []byte) ([]rtMembershipPrefix, error) {
	var out []rtMembershipPrefix
	for len(b) > 0 {
		bits := int(b[0])
		b = b[1:]
		if bits == 0 {
			out = append(out, rtMembershipPrefix{defaultRT: true})
			continue
		}
		if bits != 96 {
			return nil, errors.Errorf("bgp: unsupported RTC prefix bit length %d", bits)
		}
		if len(b) < 12 {
			return nil, errors.New("bgp: truncated RTC NLRI")
		}
		p := rtMembershipPrefix{originAS: binary.BigEndian.Uint32(b[0:4])}
		copy(p.routeTarget[:], b[4:12])
		b = b[12:]
		out = append(out, p)
	}
	return out, nil
}

func encodeRTMembershipPrefixes(prefixes []rtMembershipPrefix) []byte {
	var b []byte
	for _, p := range prefixes {
		if p.defaultRT {
			b = append(b, 0)
			continue
		}
		b = append(b, 96)
		asb := make([]byte, 4)
		binary.BigEndian.PutUint32(asb, p.originAS)
		b = append(b, asb...)
		b = append(b, p.routeTarget[:]...)
	}
	return b
}
