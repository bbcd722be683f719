package isispkt

import "fmt"

// TLV type codes (ISO 10589 / RFC 1195 / RFC 5305 / RFC 5308 / RFC 7981 /
// RFC 8667 / RFC 9350).
const (
	TLVAreaAddresses  = 1
	TLVIsNeighbors    = 6
	TLVPadding        = 8
	TLVLspEntries     = 9
	TLVExtIsReach     = 22
	TLVSRv6           = 27
	TLVProtSupported  = 129
	TLVIPv4IfAddr     = 132
	TLVTeRouterID     = 134
	TLVExtIPReach     = 135
	TLVDynamicHostname = 137
	TLVIPv6TeRouterID = 140
	TLVIPv6IfAddr     = 232
	TLVIPv6GlobalAddr = 233
	TLVMtIPReach      = 235
	TLVIPv6Reach      = 236
	TLVMtIPv6Reach    = 237
	TLVP2P3Way        = 240
	TLVRouterCap      = 242
)

// SR-Capability/Algorithm/SRLB/SRv6 sub-TLV codes nested inside
// TLVRouterCap (RFC 8667 2.1/2.2/2.3).
const (
	SubTLVSRCapability = 2
	SubTLVSRAlgorithm  = 19
	SubTLVSRLB         = 22
)

// TLV is one decoded type|length|value record.
type TLV struct {
	Type  byte
	Value []byte
}

// ParseTLVs splits buf into a sequence of TLVs, stopping at the first
// truncated record (IS-IS Hello/LSP bodies are TLV sequences to the end
// of the PDU, so a short trailing TLV is a framing error, not EOF).
func ParseTLVs(buf []byte) ([]TLV, error) {
	var tlvs []TLV
	for len(buf) > 0 {
		if len(buf) < 2 {
			return nil, fmt.Errorf("isispkt: truncated TLV header")
		}
		typ, length := buf[0], int(buf[1])
		if len(buf) < 2+length {
			return nil, fmt.Errorf("isispkt: TLV type %d truncated, want %d have %d", typ, length, len(buf)-2)
		}
		tlvs = append(tlvs, TLV{Type: typ, Value: buf[2 : 2+length]})
		buf = buf[2+length:]
	}
	return tlvs, nil
}

// EncodeTLV frames value as a type|length|value record. value must be
// 255 bytes or shorter; longer payloads (e.g. many LSP entries) are the
// caller's responsibility to split across multiple TLVs of the same type.
func EncodeTLV(typ byte, value []byte) []byte {
	if len(value) > 255 {
		panic("isispkt: TLV value exceeds 255 bytes")
	}
	out := make([]byte, 2+len(value))
	out[0] = typ
	out[1] = byte(len(value))
	copy(out[2:], value)
	return out
}

// Find returns the first TLV of the given type, if any.
func Find(tlvs []TLV, typ byte) (TLV, bool) {
	for _, t := range tlvs {
		if t.Type == typ {
			return t, true
		}
	}
	return TLV{}, false
}

// FindAll returns every TLV of the given type, in order — LSP entries
// and reachability TLVs routinely repeat across several records.
func FindAll(tlvs []TLV, typ byte) []TLV {
	var out []TLV
	for _, t := range tlvs {
		if t.Type == typ {
			out = append(out, t)
		}
	}
	return out
}
