package isispkt

// Checksum implements the ISO 10589 Annex C / RFC 905 Fletcher-16
// algorithm used to validate and (re)compute the LSP checksum field.
// It is computed over the PDU starting at octet 12 (the LSP ID/sequence
// fields and everything after), matching the position the source code
// this package is grounded on checksums from.

// Valid reports whether data (starting at byte 12 of the PDU) carries a
// checksum that reduces to zero under Fletcher-16, the way a receiver
// validates an incoming LSP.
func Valid(data []byte) bool {
	c0, c1 := fletcher16(data)
	return c0 == 0 && c1 == 0
}

// Compute returns the 2-octet checksum to embed in an LSP so that a
// later Valid() call on the same bytes (with the checksum field zeroed
// first) succeeds.
func Compute(data []byte) [2]byte {
	c0, c1 := fletcher16(data)

	// checksumPosition is the 1-indexed offset of the checksum field
	// within data (data starts at PDU byte 12; the checksum field sits
	// at PDU bytes 24-25, i.e. offset 13 within data).
	const checksumPosition = 13
	sop := int32(len(data)) - checksumPosition
	x := (sop*int32(c0) - int32(c1)) % 255
	if x <= 0 {
		x += 255
	}
	y := 510 - int32(c0) - x
	if y > 255 {
		y -= 255
	}
	return [2]byte{byte(x), byte(y)}
}

func fletcher16(data []byte) (byte, byte) {
	var c0, c1 int
	for _, b := range data {
		c0 = (c0 + int(b)) % 255
		c1 = (c1 + c0) % 255
	}
	return byte(c0), byte(c1)
}
