package message

import (
	"bytes"
	"encoding/binary"
	"net"

	"github.com/pkg/errors"

	"github.com/zebra-rs/zebra-go/stream"
)

//    The UPDATE message is used to transfer routing information between
//    BGP peers.
//       +-----------------------------------------------------+
//       |   Withdrawn Routes Length (2 octets)                 |
//       +-----------------------------------------------------+
//       |   Withdrawn Routes (variable)                        |
//       +-----------------------------------------------------+
//       |   Total Path Attribute Length (2 octets)              |
//       +-----------------------------------------------------+
//       |   Path Attributes (variable)                          |
//       +-----------------------------------------------------+
//       |   Network Layer Reachability Information (variable)  |
//       +-----------------------------------------------------+
type updateMessage struct {
	withdrawnRoutes []net.IPNet
	pathAttributes  []pathAttribute
	nlri            []net.IPNet

	// withdrawnPathIDs/nlriPathIDs hold the add-path path identifier for
	// the entry at the same index, when add-path has been negotiated for
	// IPv4 unicast. nil when add-path is not in use.
	withdrawnPathIDs []uint32
	nlriPathIDs      []uint32
}

func readUpdate(message []byte, addPath bool) (*updateMessage, error) {
	buf := bytes.NewBuffer(message)
	if buf.Len() < 2 {
		return nil, errors.New("bgp: truncated UPDATE, missing withdrawn routes length")
	}
	wLen := stream.ReadUint16(buf)
	if buf.Len() < int(wLen) {
		return nil, errors.New("bgp: truncated UPDATE withdrawn routes")
	}
	wBytes := stream.ReadBytes(int(wLen), buf)
	withdrawn, wIDs, err := decodeIPv4Prefixes(wBytes, addPath)
	if err != nil {
		return nil, errors.Wrap(err, "withdrawn routes")
	}

	if buf.Len() < 2 {
		return nil, errors.New("bgp: truncated UPDATE, missing attribute length")
	}
	aLen := stream.ReadUint16(buf)
	if buf.Len() < int(aLen) {
		return nil, errors.New("bgp: truncated UPDATE path attributes")
	}
	attrs, err := readPathAttributes(stream.ReadBytes(int(aLen), buf))
	if err != nil {
		return nil, errors.Wrap(err, "path attributes")
	}

	nlri, nIDs, err := decodeIPv4Prefixes(buf.Bytes(), addPath)
	if err != nil {
		return nil, errors.Wrap(err, "NLRI")
	}

	return &updateMessage{
		withdrawnRoutes:  withdrawn,
		pathAttributes:   attrs,
		nlri:             nlri,
		withdrawnPathIDs: wIDs,
		nlriPathIDs:      nIDs,
	}, nil
}

func (u *updateMessage) bytes(addPath bool) []byte {
	buf := new(bytes.Buffer)

	w := encodeIPv4Prefixes(u.withdrawnRoutes, u.withdrawnPathIDs, addPath)
	wLen := make([]byte, 2)
	binary.BigEndian.PutUint16(wLen, uint16(len(w)))
	buf.Write(wLen)
	buf.Write(w)

	var attrBytes []byte
	for _, a := range u.pathAttributes {
		attrBytes = append(attrBytes, a.bytes()...)
	}
	aLen := make([]byte, 2)
	binary.BigEndian.PutUint16(aLen, uint16(len(attrBytes)))
	buf.Write(aLen)
	buf.Write(attrBytes)

	buf.Write(encodeIPv4Prefixes(u.nlri, u.nlriPathIDs, addPath))
	return buf.Bytes()
}

// isEndOfRIBMarker reports the RFC 4724 §2 "End-of-RIB" marker: a
// completely empty UPDATE (no withdrawn routes, no attributes, no NLRI).
func (u *updateMessage) isEndOfRIBMarker() bool {
	return len(u.withdrawnRoutes) == 0 && len(u.pathAttributes) == 0 && len(u.nlri) == 0
}

// decodeIPv4Prefixes parses the RFC 4271 §4.3 variable-length prefix
// encoding for IPv4 (1-octet prefix length, then ceil(length/8) octets
// of address, zero-padded on the right). When addPath is true, each
// entry is preceded by a 4-octet path identifier (RFC 7911).
func decodeIPv4Prefixes(b []byte, addPath bool) ([]net.IPNet, []uint32, error) {
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
		if bits > 32 {
			return nil, nil, errors.Errorf("bgp: invalid IPv4 prefix length %d", bits)
		}
		nbytes := (bits + 7) / 8
		if len(b) < nbytes {
			return nil, nil, errors.New("bgp: truncated prefix")
		}
		addr := make([]byte, 4)
		copy(addr, b[:nbytes])
		b = b[nbytes:]

		prefixes = append(prefixes, net.IPNet{IP: net.IP(addr), Mask: net.CIDRMask(bits, 32)})
		if addPath {
			pathIDs = append(pathIDs, pathID)
		}
	}
	return prefixes, pathIDs, nil
}

func encodeIPv4Prefixes(prefixes []net.IPNet, pathIDs []uint32, addPath bool) []byte {
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
		ip4 := p.IP.To4()
		b = append(b, byte(ones))
		b = append(b, ip4[:nbytes]...)
	}
	return b
}
