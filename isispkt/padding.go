package isispkt

// tlvOverhead is the 2-octet type|length prefix; tlvMax is the largest
// value a single TLV can carry (the 1-octet length field's ceiling).
const (
	tlvOverhead = 2
	tlvMax      = 255
)

// PadHello appends Padding TLVs (type 8) to tlvs so the encoded Hello
// fills the link MTU. IS-IS pads Hellos to MTU size so that an MTU
// mismatch between two routers on the same LAN shows up as a one-sided
// adjacency instead of silently black-holing larger PDUs later.
//
// headerOverhead (3) is the LLC framing that precedes the PDU on the
// wire. It is not part of encodedLen, so it is subtracted from mtu
// together with encodedLen.
func PadHello(tlvs []TLV, encodedLen, mtu int) []TLV {
	const headerOverhead = 3
	if encodedLen+headerOverhead > mtu {
		return tlvs // no room for any padding
	}
	available := mtu - headerOverhead - encodedLen
	if available < tlvOverhead {
		return tlvs // not even room for an empty padding TLV
	}

	fullCount := available / (tlvOverhead + tlvMax)
	remaining := available % (tlvOverhead + tlvMax)

	for i := 0; i < fullCount; i++ {
		tlvs = append(tlvs, TLV{Type: TLVPadding, Value: make([]byte, tlvMax)})
	}
	if remaining > tlvOverhead {
		tlvs = append(tlvs, TLV{Type: TLVPadding, Value: make([]byte, remaining-tlvOverhead)})
	}
	return tlvs
}
