package isispkt

import "fmt"

// SystemID is the 6-octet NET system identifier (RFC 1195 4.2's near-
// universal IDLength=0 case — variable-length system IDs are not
// supported).
type SystemID [SystemIDLength]byte

func (id SystemID) String() string {
	return fmt.Sprintf("%02x%02x.%02x%02x.%02x%02x", id[0], id[1], id[2], id[3], id[4], id[5])
}

// Hello is the fixed-field portion of an L1 or L2 LAN IIH (ISO 10589 9.6).
type Hello struct {
	CircuitType byte // bits 0-1: 1=L1, 2=L2, 3=L1L2
	SourceID    SystemID
	HoldingTime uint16
	Priority    byte // bits 0-6; bit 7 reserved
	LANID       [SystemIDLength + 1]byte // DIS system ID + pseudonode ID
	TLVs        []TLV
}

const helloFixedLength = 1 + SystemIDLength + 2 + 1 + (SystemIDLength + 1)

func DecodeHello(body []byte) (*Hello, error) {
	if len(body) < helloFixedLength {
		return nil, fmt.Errorf("isispkt: short Hello, need %d bytes", helloFixedLength)
	}
	h := &Hello{CircuitType: body[0] & 0x03}
	copy(h.SourceID[:], body[1:7])
	h.HoldingTime = getUint16(body[7:9])
	h.Priority = body[9] & 0x7f
	copy(h.LANID[:], body[10:17])
	tlvs, err := ParseTLVs(body[helloFixedLength:])
	if err != nil {
		return nil, err
	}
	h.TLVs = tlvs
	return h, nil
}

func (h *Hello) Encode() []byte {
	buf := make([]byte, helloFixedLength)
	buf[0] = h.CircuitType
	copy(buf[1:7], h.SourceID[:])
	putUint16(buf[7:9], h.HoldingTime)
	buf[9] = h.Priority
	copy(buf[10:17], h.LANID[:])
	for _, t := range h.TLVs {
		buf = append(buf, EncodeTLV(t.Type, t.Value)...)
	}
	return buf
}

// P2PHello is the fixed-field portion of a Point-to-Point IIH (RFC 5303).
type P2PHello struct {
	CircuitType     byte
	SourceID        SystemID
	HoldingTime     uint16
	LocalCircuitID  byte
	TLVs            []TLV
}

const p2pHelloFixedLength = 1 + SystemIDLength + 2 + 1

func DecodeP2PHello(body []byte) (*P2PHello, error) {
	if len(body) < p2pHelloFixedLength {
		return nil, fmt.Errorf("isispkt: short P2P Hello, need %d bytes", p2pHelloFixedLength)
	}
	h := &P2PHello{CircuitType: body[0] & 0x03}
	copy(h.SourceID[:], body[1:7])
	h.HoldingTime = getUint16(body[7:9])
	h.LocalCircuitID = body[9]
	tlvs, err := ParseTLVs(body[p2pHelloFixedLength:])
	if err != nil {
		return nil, err
	}
	h.TLVs = tlvs
	return h, nil
}

func (h *P2PHello) Encode() []byte {
	buf := make([]byte, p2pHelloFixedLength)
	buf[0] = h.CircuitType
	copy(buf[1:7], h.SourceID[:])
	putUint16(buf[7:9], h.HoldingTime)
	buf[9] = h.LocalCircuitID
	for _, t := range h.TLVs {
		buf = append(buf, EncodeTLV(t.Type, t.Value)...)
	}
	return buf
}

// LSPID identifies one Link State PDU: originating system ID, pseudonode
// ID (0 for a non-pseudonode LSP) and fragment number.
type LSPID struct {
	SystemID    SystemID
	PseudoNode  byte
	FragmentNum byte
}

func (id LSPID) String() string {
	return fmt.Sprintf("%s.%02x-%02x", id.SystemID, id.PseudoNode, id.FragmentNum)
}

// LSP flags (ISO 10589 9.9): P (partition repair), ATT (attached, 4
// bits per metric type), OL (overload), IS type (2 bits).
const (
	LSPFlagPartition    = 0x80
	LSPFlagAttDefault   = 0x08
	LSPFlagOverload     = 0x04
	LSPFlagISTypeL1     = 0x01
	LSPFlagISTypeL1L2   = 0x03
)

// LSP is a Link State PDU (ISO 10589 9.9).
type LSP struct {
	PDULength         uint16
	RemainingLifetime uint16
	LSPID             LSPID
	SequenceNumber    uint32
	Checksum          uint16
	Flags             byte
	TLVs              []TLV
}

// lspFixedLength is the LSP's own fixed fields (ISO 10589 9.9), not
// counting the 8-octet common header. PDULength precedes
// RemainingLifetime; the Fletcher-16 checksum region starts right after
// RemainingLifetime — 12 octets into the full PDU (8 header + 2 PDU
// length + 2 remaining lifetime).
const lspFixedLength = 2 + 2 + SystemIDLength + 2 + 4 + 2 + 1

func DecodeLSP(body []byte) (*LSP, error) {
	if len(body) < lspFixedLength {
		return nil, fmt.Errorf("isispkt: short LSP, need %d bytes", lspFixedLength)
	}
	l := &LSP{PDULength: getUint16(body[0:2]), RemainingLifetime: getUint16(body[2:4])}
	copy(l.LSPID.SystemID[:], body[4:10])
	l.LSPID.PseudoNode = body[10]
	l.LSPID.FragmentNum = body[11]
	l.SequenceNumber = uint32(body[12])<<24 | uint32(body[13])<<16 | uint32(body[14])<<8 | uint32(body[15])
	l.Checksum = getUint16(body[16:18])
	l.Flags = body[18]
	tlvs, err := ParseTLVs(body[lspFixedLength:])
	if err != nil {
		return nil, err
	}
	l.TLVs = tlvs
	return l, nil
}

func (l *LSP) Encode() []byte {
	buf := make([]byte, lspFixedLength)
	putUint16(buf[0:2], l.PDULength)
	putUint16(buf[2:4], l.RemainingLifetime)
	copy(buf[4:10], l.LSPID.SystemID[:])
	buf[10] = l.LSPID.PseudoNode
	buf[11] = l.LSPID.FragmentNum
	buf[12] = byte(l.SequenceNumber >> 24)
	buf[13] = byte(l.SequenceNumber >> 16)
	buf[14] = byte(l.SequenceNumber >> 8)
	buf[15] = byte(l.SequenceNumber)
	putUint16(buf[16:18], l.Checksum)
	buf[18] = l.Flags
	for _, t := range l.TLVs {
		buf = append(buf, EncodeTLV(t.Type, t.Value)...)
	}
	return buf
}

// Newer reports whether l supersedes other per ISO 10589 7.3.16.2: higher
// sequence number wins; on a tie, a copy with non-zero remaining
// lifetime supersedes one whose remaining lifetime is zero (a purge).
// Two live copies with the same sequence number are not newer than
// each other.
func (l *LSP) Newer(other *LSP) bool {
	if l.SequenceNumber != other.SequenceNumber {
		return l.SequenceNumber > other.SequenceNumber
	}
	return l.RemainingLifetime > 0 && other.RemainingLifetime == 0
}

// LSPEntry is one record inside a CSNP/PSNP's LSP Entries TLV (type 9),
// summarising one LSP without carrying its TLVs.
type LSPEntry struct {
	RemainingLifetime uint16
	LSPID             LSPID
	SequenceNumber    uint32
	Checksum          uint16
}

const lspEntryLength = 2 + SystemIDLength + 2 + 4 + 2

func DecodeLSPEntries(value []byte) ([]LSPEntry, error) {
	if len(value)%lspEntryLength != 0 {
		return nil, fmt.Errorf("isispkt: LSP Entries TLV length %d not a multiple of %d", len(value), lspEntryLength)
	}
	var entries []LSPEntry
	for len(value) > 0 {
		e := LSPEntry{RemainingLifetime: getUint16(value[0:2])}
		copy(e.LSPID.SystemID[:], value[2:8])
		e.LSPID.PseudoNode = value[8]
		e.LSPID.FragmentNum = value[9]
		e.SequenceNumber = uint32(value[10])<<24 | uint32(value[11])<<16 | uint32(value[12])<<8 | uint32(value[13])
		e.Checksum = getUint16(value[14:16])
		entries = append(entries, e)
		value = value[lspEntryLength:]
	}
	return entries, nil
}

func EncodeLSPEntry(e LSPEntry) []byte {
	buf := make([]byte, lspEntryLength)
	putUint16(buf[0:2], e.RemainingLifetime)
	copy(buf[2:8], e.LSPID.SystemID[:])
	buf[8] = e.LSPID.PseudoNode
	buf[9] = e.LSPID.FragmentNum
	buf[10] = byte(e.SequenceNumber >> 24)
	buf[11] = byte(e.SequenceNumber >> 16)
	buf[12] = byte(e.SequenceNumber >> 8)
	buf[13] = byte(e.SequenceNumber)
	putUint16(buf[14:16], e.Checksum)
	return buf
}

// SNP is the shared fixed-field shape of CSNP and PSNP (ISO 10589 9.10/9.11):
// a source ID, and for CSNP only, a start/end LSP ID range bounding what
// the LSP Entries TLVs below summarise.
type SNP struct {
	PDULength  uint16
	SourceID   SystemID
	CircuitID  byte // low octet of the 7-octet "source ID"; 0 for PSNP on p2p
	StartLSPID *LSPID // CSNP only
	EndLSPID   *LSPID // CSNP only
	TLVs       []TLV
}

func DecodeCSNP(body []byte) (*SNP, error) {
	const fixed = 2 + SystemIDLength + 1 + 8 + 8
	if len(body) < fixed {
		return nil, fmt.Errorf("isispkt: short CSNP, need %d bytes", fixed)
	}
	s := &SNP{PDULength: getUint16(body[0:2])}
	copy(s.SourceID[:], body[2:8])
	s.CircuitID = body[8]
	start := decodeLSPID(body[9:17])
	end := decodeLSPID(body[17:25])
	s.StartLSPID, s.EndLSPID = &start, &end
	tlvs, err := ParseTLVs(body[fixed:])
	if err != nil {
		return nil, err
	}
	s.TLVs = tlvs
	return s, nil
}

func (s *SNP) EncodeCSNP() []byte {
	const fixed = 2 + SystemIDLength + 1 + 8 + 8
	buf := make([]byte, fixed)
	putUint16(buf[0:2], s.PDULength)
	copy(buf[2:8], s.SourceID[:])
	buf[8] = s.CircuitID
	copy(buf[9:17], encodeLSPID(*s.StartLSPID))
	copy(buf[17:25], encodeLSPID(*s.EndLSPID))
	for _, t := range s.TLVs {
		buf = append(buf, EncodeTLV(t.Type, t.Value)...)
	}
	return buf
}

func DecodePSNP(body []byte) (*SNP, error) {
	const fixed = 2 + SystemIDLength + 1
	if len(body) < fixed {
		return nil, fmt.Errorf("isispkt: short PSNP, need %d bytes", fixed)
	}
	s := &SNP{PDULength: getUint16(body[0:2])}
	copy(s.SourceID[:], body[2:8])
	s.CircuitID = body[8]
	tlvs, err := ParseTLVs(body[fixed:])
	if err != nil {
		return nil, err
	}
	s.TLVs = tlvs
	return s, nil
}

func (s *SNP) EncodePSNP() []byte {
	const fixed = 2 + SystemIDLength + 1
	buf := make([]byte, fixed)
	putUint16(buf[0:2], s.PDULength)
	copy(buf[2:8], s.SourceID[:])
	buf[8] = s.CircuitID
	for _, t := range s.TLVs {
		buf = append(buf, EncodeTLV(t.Type, t.Value)...)
	}
	return buf
}

func decodeLSPID(b []byte) LSPID {
	var id LSPID
	copy(id.SystemID[:], b[0:6])
	id.PseudoNode = b[6]
	id.FragmentNum = b[7]
	return id
}

func encodeLSPID(id LSPID) []byte {
	b := make([]byte, 8)
	copy(b[0:6], id.SystemID[:])
	b[6] = id.PseudoNode
	b[7] = id.FragmentNum
	return b
}

// Decode parses a full IS-IS PDU (common header + type-specific body)
// and returns the header plus the decoded type-specific value, typed as
// one of *Hello, *P2PHello, *LSP or *SNP.
func Decode(buf []byte) (Header, interface{}, error) {
	h, body, err := ParseHeader(buf)
	if err != nil {
		return Header{}, nil, err
	}
	switch h.PDUType {
	case TypeL1Hello, TypeL2Hello:
		v, err := DecodeHello(body)
		return h, v, err
	case TypeP2PHello:
		v, err := DecodeP2PHello(body)
		return h, v, err
	case TypeL1LSP, TypeL2LSP:
		v, err := DecodeLSP(body)
		return h, v, err
	case TypeL1CSNP, TypeL2CSNP:
		v, err := DecodeCSNP(body)
		return h, v, err
	case TypeL1PSNP, TypeL2PSNP:
		v, err := DecodePSNP(body)
		return h, v, err
	default:
		return h, nil, fmt.Errorf("isispkt: unknown PDU type 0x%02x", h.PDUType)
	}
}
