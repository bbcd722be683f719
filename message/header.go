package message

import (
	"encoding/binary"
	"fmt"
)

//    Each message has a fixed-size header, and may or may not be
//    followed by a data portion.
//       0                   1                   2                   3
//       0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5 6 7 8 9 0 1
//       +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//       |                                                               |
//       +                                                               +
//       |                           Marker                             |
//       +                                                               +
//       |                                                               |
//       +                                                               +
//       |                                                               |
//       +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//       |          Length               |      Type     |
//       +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
const (
	markerLength = 16
	headerLength = 19

	// Before RFC 8654, no BGP message (header included) may exceed this.
	defaultMaxMessageLength = 4096
	// RFC 8654 (BGP Extended Message) raises that ceiling once both peers
	// advertise the Extended Message capability.
	extendedMaxMessageLength = 65535
)

const (
	msgOpen         = 1
	msgUpdate       = 2
	msgNotification = 3
	msgKeepalive    = 4
	msgRouteRefresh = 5 // RFC 2918
)

var messageTypeName = map[byte]string{
	msgOpen:         "OPEN",
	msgUpdate:       "UPDATE",
	msgNotification: "NOTIFICATION",
	msgKeepalive:    "KEEPALIVE",
	msgRouteRefresh: "ROUTE-REFRESH",
}

// IncompleteData is returned by Extract and PeekLength when buf does not
// yet hold a full message. Callers read Needed more bytes from the
// stream and retry rather than treating this as a protocol error.
type IncompleteData struct {
	Needed int
}

func (e *IncompleteData) Error() string {
	return fmt.Sprintf("bgp: incomplete message, need %d more bytes", e.Needed)
}

// marker returns the fixed 16-octet all-ones marker. BGP never uses the
// marker for authentication, so every message carries this same pattern.
func marker() []byte {
	m := make([]byte, markerLength)
	for i := range m {
		m[i] = 0xff
	}
	return m
}

// PeekLength reports the total on-wire length (header included) of the
// next message at the front of buf, without consuming anything.
func PeekLength(buf []byte) (int, error) {
	if len(buf) < headerLength {
		return 0, &IncompleteData{Needed: headerLength - len(buf)}
	}
	return int(binary.BigEndian.Uint16(buf[16:18])), nil
}

// Extract splits the next complete message off the front of buf. body is
// the message payload with the 19-octet header stripped. consumed is how
// many bytes of buf made up the full message (header included), so the
// caller can advance its read buffer. maxLen bounds the accepted length
// (4096, or 65535 once Extended Message has been negotiated).
func Extract(buf []byte, maxLen int) (msgType byte, body []byte, consumed int, err error) {
	length, err := PeekLength(buf)
	if err != nil {
		return 0, nil, 0, err
	}
	if length < headerLength || length > maxLen {
		return 0, nil, 0, fmt.Errorf("bgp: invalid message length %d", length)
	}
	if len(buf) < length {
		return 0, nil, 0, &IncompleteData{Needed: length - len(buf)}
	}
	return buf[18], buf[headerLength:length], length, nil
}

// Encode wraps a type-specific body (header excluded) in the fixed
// 19-octet BGP header.
func Encode(msgType byte, body []byte) []byte {
	out := make([]byte, headerLength+len(body))
	copy(out, marker())
	binary.BigEndian.PutUint16(out[16:18], uint16(headerLength+len(body)))
	out[18] = msgType
	copy(out[headerLength:], body)
	return out
}
