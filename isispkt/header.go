// Package isispkt implements the ISO 10589 IS-IS PDU wire format: the
// common header, PDU type dispatch, TLV framing, the Fletcher-16
// checksum and the Hello padding rule. It has no notion of adjacency or
// LSDB state — that belongs to package isis; this package only turns
// bytes into structs and back.
package isispkt

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"
)

// IS-IS runs directly over the link layer (no IP/UDP header); every PDU
// starts with this discriminator.
const protocolDiscriminator = 0x83

// PDU type codes (ISO 10589 9.13/9.14, RFC 1195).
const (
	TypeL1Hello = 0x0f
	TypeL2Hello = 0x10
	TypeP2PHello = 0x11
	TypeL1LSP    = 0x12
	TypeL2LSP    = 0x14
	TypeL1CSNP   = 0x18
	TypeL2CSNP   = 0x19
	TypeL1PSNP   = 0x1a
	TypeL2PSNP   = 0x1b
)

var typeName = map[byte]string{
	TypeL1Hello:  "L1 LAN Hello",
	TypeL2Hello:  "L2 LAN Hello",
	TypeP2PHello: "P2P Hello",
	TypeL1LSP:    "L1 LSP",
	TypeL2LSP:    "L2 LSP",
	TypeL1CSNP:   "L1 CSNP",
	TypeL2CSNP:   "L2 CSNP",
	TypeL1PSNP:   "L1 PSNP",
	TypeL2PSNP:   "L2 PSNP",
}

// TypeName returns the PDU type's display name, "Unknown" if unrecognized.
func TypeName(t byte) string {
	if n, ok := typeName[t]; ok {
		return n
	}
	return "Unknown"
}

// IsLSP reports whether t is an L1 or L2 Link State PDU.
func IsLSP(t byte) bool {
	return t == TypeL1LSP || t == TypeL2LSP
}

// Header is the fixed 8-octet common header every IS-IS PDU carries
// (ISO 10589 9.4-9.6) ahead of its type-specific fixed fields and TLVs.
type Header struct {
	LengthIndicator  byte // length of the fixed header, in octets
	VersionProtoID   byte // always 1
	IDLength         byte // 0 means the default 6-octet system ID
	PDUType          byte
	Version          byte // always 1
	Reserved         byte
	MaxAreaAddresses byte
}

const headerLength = 8

// ParseHeader reads the common header from the front of buf and returns
// the header plus the remainder (the type-specific fixed fields + TLVs).
func ParseHeader(buf []byte) (Header, []byte, error) {
	if len(buf) < headerLength {
		return Header{}, nil, fmt.Errorf("isispkt: short packet, need %d bytes", headerLength)
	}
	if buf[0] != protocolDiscriminator {
		return Header{}, nil, fmt.Errorf("isispkt: bad discriminator 0x%02x", buf[0])
	}
	h := Header{
		LengthIndicator:  buf[1],
		VersionProtoID:   buf[2],
		IDLength:         buf[3],
		PDUType:          buf[4] & 0x1f, // low 5 bits; top 3 are reserved
		Version:          buf[5],
		Reserved:         buf[6],
		MaxAreaAddresses: buf[7],
	}
	return h, buf[headerLength:], nil
}

// EncodeHeader writes the common header. typ is written as given, without
// checking it against the Type* list above.
func EncodeHeader(typ byte, idLength, maxAreaAddresses byte) []byte {
	return []byte{
		protocolDiscriminator,
		headerLength,
		1, // VersionProtoID
		idLength,
		typ,
		1, // Version
		0, // Reserved
		maxAreaAddresses,
	}
}

// SystemIDLength is the length in octets of an IS-IS system ID once
// IDLength is 0 (the near-universal default, RFC 1195 4.2).
const SystemIDLength = 6

func putUint16(b []byte, v uint16) { binary.BigEndian.PutUint16(b, v) }
func getUint16(b []byte) uint16    { return binary.BigEndian.Uint16(b) }

// ParseNET parses a router's configured NET/NSAP address: either the
// full ISO 10589 Appendix C form (area-id + 6-octet system ID + 1-octet
// NSEL, dot-separated hex, e.g. "49.0001.1921.6800.1001.00") or a bare
// dotted system ID ("1921.6800.1001"). It returns the 6-octet system ID
// either way, since that's the only portion this router keeps around.
func ParseNET(s string) (SystemID, error) {
	hexDigits := strings.ReplaceAll(s, ".", "")
	if len(hexDigits)%2 != 0 {
		return SystemID{}, fmt.Errorf("isispkt: odd-length NET %q", s)
	}
	raw, err := hex.DecodeString(hexDigits)
	if err != nil {
		return SystemID{}, fmt.Errorf("isispkt: malformed NET %q: %w", s, err)
	}
	var id SystemID
	switch {
	case len(raw) == SystemIDLength:
		copy(id[:], raw)
	case len(raw) >= SystemIDLength+1:
		copy(id[:], raw[len(raw)-SystemIDLength-1:len(raw)-1])
	default:
		return SystemID{}, fmt.Errorf("isispkt: NET %q too short, want area+system-id+nsel or a bare system-id", s)
	}
	return id, nil
}
