package message

import (
	"encoding/binary"
	"net"

	"github.com/zebra-rs/zebra-go/attrstore"
)

// decodeAttrSet turns the wire-form path attributes of an UPDATE into the
// decoded, comparable form attrstore interns (§3 "BGP attribute set").
// asn4 selects whether AS_PATH segments carry 2-octet or 4-octet ASNs,
// mirroring whatever was negotiated for this peer in OPEN (RFC 6793).
func decodeAttrSet(attrs []pathAttribute, asn4 bool) *attrstore.Set {
	s := &attrstore.Set{}
	for _, a := range attrs {
		switch a.attributeType.code {
		case attrOrigin:
			if len(a.value) == 1 {
				s.Origin = a.value[0]
			}
		case attrASPath:
			s.ASPath = decodeASPath(a.value, asn4)
		case attrNextHop:
			if len(a.value) == 4 {
				s.Nexthop = net.IP(a.value).String()
			}
		case attrMultiExitDisc:
			if len(a.value) == 4 {
				s.MED = binary.BigEndian.Uint32(a.value)
				s.HasMED = true
			}
		case attrLocalPref:
			if len(a.value) == 4 {
				s.LocalPref = binary.BigEndian.Uint32(a.value)
				s.HasLocalPref = true
			}
		case attrAtomicAggregate:
			s.AtomicAggregate = true
		case attrAggregator:
			if asn4 && len(a.value) == 8 {
				s.AggregatorAS = binary.BigEndian.Uint32(a.value[0:4])
				s.AggregatorAddr = net.IP(a.value[4:8]).String()
				s.HasAggregator = true
			} else if !asn4 && len(a.value) == 6 {
				s.AggregatorAS = uint32(binary.BigEndian.Uint16(a.value[0:2]))
				s.AggregatorAddr = net.IP(a.value[2:6]).String()
				s.HasAggregator = true
			}
		case attrCommunity:
			s.Communities = decodeUint32s(a.value)
		case attrOriginatorID:
			if len(a.value) == 4 {
				s.OriginatorID = net.IP(a.value).String()
				s.HasOriginatorID = true
			}
		case attrClusterList:
			for i := 0; i+4 <= len(a.value); i += 4 {
				s.ClusterList = append(s.ClusterList, net.IP(a.value[i:i+4]).String())
			}
		case attrExtendedCommunities:
			for i := 0; i+8 <= len(a.value); i += 8 {
				s.ExtCommunities = append(s.ExtCommunities, binary.BigEndian.Uint64(a.value[i:i+8]))
			}
		case attrAIGP:
			// RFC 7311 §3: one TLV, type 1, 11-octet total (3-octet
			// header + 8-octet value); tolerate a bare 8-octet value too.
			if len(a.value) == 11 && a.value[0] == 1 {
				s.AIGP = binary.BigEndian.Uint64(a.value[3:11])
				s.HasAIGP = true
			} else if len(a.value) == 8 {
				s.AIGP = binary.BigEndian.Uint64(a.value)
				s.HasAIGP = true
			}
		case attrLargeCommunity:
			for i := 0; i+12 <= len(a.value); i += 12 {
				s.LargeCommunities = append(s.LargeCommunities, attrstore.LargeCommunity{
					Global: binary.BigEndian.Uint32(a.value[i : i+4]),
					Local1: binary.BigEndian.Uint32(a.value[i+4 : i+8]),
					Local2: binary.BigEndian.Uint32(a.value[i+8 : i+12]),
				})
			}
		}
	}
	return s
}

// decodeASPath parses the AS_PATH attribute's segments (RFC 4271 §4.3):
// a sequence of (segment type, segment length, AS numbers...).
func decodeASPath(b []byte, asn4 bool) []attrstore.ASSegment {
	asnSize := 2
	if asn4 {
		asnSize = 4
	}
	var segs []attrstore.ASSegment
	for len(b) >= 2 {
		segType := b[0]
		segLen := int(b[1])
		b = b[2:]
		need := segLen * asnSize
		if len(b) < need {
			break
		}
		seg := attrstore.ASSegment{Set: segType == asSet}
		for i := 0; i < segLen; i++ {
			off := i * asnSize
			if asn4 {
				seg.ASNs = append(seg.ASNs, binary.BigEndian.Uint32(b[off:off+4]))
			} else {
				seg.ASNs = append(seg.ASNs, uint32(binary.BigEndian.Uint16(b[off:off+2])))
			}
		}
		segs = append(segs, seg)
		b = b[need:]
	}
	return segs
}

func decodeUint32s(b []byte) []uint32 {
	var out []uint32
	for i := 0; i+4 <= len(b); i += 4 {
		out = append(out, binary.BigEndian.Uint32(b[i:i+4]))
	}
	return out
}

// aggregateASPathLength returns the AS_PATH length the RFC 4271 9.1.2.2
// tie-break counts: the number of ASNs in SEQUENCE segments (a SET
// contributes only once, regardless of its membership size).
func aggregateASPathLength(segs []attrstore.ASSegment) int {
	n := 0
	for _, seg := range segs {
		if seg.Set {
			n++
		} else {
			n += len(seg.ASNs)
		}
	}
	return n
}
