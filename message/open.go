package message

import (
	"bytes"
	"encoding/binary"
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/zebra-rs/zebra-go/stream"
)

// After a TCP connection is established, the first message sent by each
// side is an OPEN message.  If the OPEN message is acceptable, a
// KEEPALIVE message confirming the OPEN is sent back.
type openMessage struct {
	// This 1-octet unsigned integer indicates the protocol version
	// number of the message.  The current BGP version number is 4.
	version byte
	// This 2-octet unsigned integer indicates the Autonomous System
	// number of the sender. When the AS4 capability negotiates a real
	// 4-octet ASN, this field carries the well-known AS_TRANS (23456).
	myAS uint16
	// This 2-octet unsigned integer indicates the number of seconds
	// the sender proposes for the value of the Hold Timer.
	holdTime uint16
	// This 4-octet unsigned integer indicates the BGP Identifier of
	// the sender.
	bgpIdentifier uint32
	// Every optional parameter TLV, capabilities included, in wire order.
	parameters []parameter
	// Every capability TLV carried across the parameters above, already
	// unpacked for convenience; derived from parameters, not independent
	// state.
	capabilities []capability
}

// This field contains a list of optional parameters, in which
// each parameter is encoded as a <Parameter Type, Parameter
// Length, Parameter Value> triplet.
type parameter struct {
	parmType   byte
	parmLength byte
	parmValue  []byte
}

//       Version:
//          This 1-octet unsigned integer indicates the protocol version
//          number of the message.  The current BGP version number is 4.
const version = 4

//       Hold Time:
//          The Hold Time MUST be either zero or at least three seconds.
var maxHoldTime = time.Duration(int(math.Pow(2, 16))) * time.Second

const largeHoldTimer = 4 * time.Minute // See 8.2.2

const minOptParametersLength = 0
const maxOptParametersLength = 255

//    The minimum length of the OPEN message is 29 octets (including the
//    message header).
const minOpenMessageLength = 29

const maxParameterLength = 255

func newOpenMessage(myAS uint16, holdTime uint16, id uint32, caps []capability) *openMessage {
	o := &openMessage{
		version:       version,
		myAS:          myAS,
		holdTime:      holdTime,
		bgpIdentifier: id,
		capabilities:  caps,
	}
	o.parameters = encodeCapabilities(caps)
	return o
}

func readOpen(message []byte) (*openMessage, error) {
	if len(message) < minOpenMessageLength-headerLength {
		return nil, errors.Errorf("bgp: OPEN body too short, got %d bytes", len(message))
	}
	buf := bytes.NewBuffer(message)
	o := &openMessage{
		version:       stream.ReadByte(buf),
		myAS:          stream.ReadUint16(buf),
		holdTime:      stream.ReadUint16(buf),
		bgpIdentifier: stream.ReadUint32(buf),
	}
	optParmLen := stream.ReadByte(buf)
	var params []parameter
	var err error
	if optParmLen == maxParameterLength {
		// RFC 9072: a length of 255 signals the Non-Ext OP sentinel;
		// the actual parameters run to the end of the message, sized
		// by the outer header's Length field rather than this octet.
		params, err = parseExtendedOptionalParameters(stream.ReadBytes(buf.Len(), buf))
	} else {
		params, err = parseOptionalParameters(stream.ReadBytes(int(optParmLen), buf))
	}
	if err != nil {
		return nil, err
	}
	o.parameters = params

	caps, err := parseCapabilities(params)
	if err != nil {
		return nil, err
	}
	o.capabilities = caps

	return o, nil
}

// capability looks up the first negotiated capability of the given code.
func (o *openMessage) capability(code byte) (capability, bool) {
	for _, c := range o.capabilities {
		if c.code == code {
			return c, true
		}
	}
	return capability{}, false
}

// effectiveASN returns the sender's true ASN: the 4-octet AS capability
// value when present (RFC 6793), otherwise the 2-octet myAS field.
func (o *openMessage) effectiveASN() uint32 {
	if c, ok := o.capability(capAS4); ok {
		if as4, err := parseAS4Capability(c.value); err == nil {
			return as4.asn
		}
	}
	return uint32(o.myAS)
}

func (o *openMessage) valid(remoteAS uint16, holdTime uint16) (*notificationMessage, bool) {
	if o.version != version {
		return newNotificationMessage(openMessageError, unsupportedVersionNumber, nil), false
	}
	if o.myAS != remoteAS && o.effectiveASN() != uint32(remoteAS) {
		return newNotificationMessage(openMessageError, badPeerAS, nil), false
	}
	if o.holdTime > 0 && o.holdTime < 3 {
		return newNotificationMessage(openMessageError, unacceptableHoldTime, nil), false
	}
	return nil, true
}

func (o *openMessage) bytes() []byte {
	buf := new(bytes.Buffer)

	buf.WriteByte(o.version)

	myAS := make([]byte, 2)
	binary.BigEndian.PutUint16(myAS, o.myAS)
	buf.Write(myAS)

	holdTime := make([]byte, 2)
	binary.BigEndian.PutUint16(holdTime, o.holdTime)
	buf.Write(holdTime)

	id := make([]byte, 4)
	binary.BigEndian.PutUint32(id, o.bgpIdentifier)
	buf.Write(id)

	std := encodeStandardOptionalParameters(o.parameters)
	if len(std) < maxOptParametersLength {
		buf.WriteByte(byte(len(std)))
		buf.Write(std)
	} else {
		buf.WriteByte(maxParameterLength)
		buf.Write(encodeExtendedOptionalParameters(o.parameters))
	}

	return buf.Bytes()
}

func isValidHoldTime(hold time.Duration) bool {
	if hold > maxHoldTime {
		return false
	}
	if hold > 0 && hold < 3*time.Second {
		return false
	}
	return true
}

func durationToUint16(t time.Duration) uint16 {
	return uint16(t.Seconds())
}

func newParameter(t byte, v []byte) (parameter, error) {
	if len(v) > maxParameterLength {
		return parameter{}, errors.Errorf("bgp: parameter exceeds maximum length of %d", maxParameterLength)
	}
	return parameter{parmType: t, parmLength: byte(len(v)), parmValue: v}, nil
}

// parseOptionalParameters parses the standard-form raw Optional
// Parameters field (1-octet TLV lengths) into individual parameter
// TLVs. readOpen calls parseExtendedOptionalParameters instead once it
// has seen the RFC 9072 Non-Ext OP sentinel (Opt Parm Len == 255).
func parseOptionalParameters(raw []byte) ([]parameter, error) {
	return parseStandardOptionalParameters(raw)
}

func parseStandardOptionalParameters(raw []byte) ([]parameter, error) {
	var params []parameter
	for len(raw) > 0 {
		if len(raw) < 2 {
			return nil, errors.New("bgp: truncated optional parameter")
		}
		t, l := raw[0], int(raw[1])
		if len(raw) < 2+l {
			return nil, errors.New("bgp: truncated optional parameter value")
		}
		params = append(params, parameter{parmType: t, parmLength: byte(l), parmValue: raw[2 : 2+l]})
		raw = raw[2+l:]
	}
	return params, nil
}

func parseExtendedOptionalParameters(raw []byte) ([]parameter, error) {
	var params []parameter
	for len(raw) > 0 {
		if len(raw) < 3 {
			return nil, errors.New("bgp: truncated extended optional parameter")
		}
		t := raw[0]
		l := int(binary.BigEndian.Uint16(raw[1:3]))
		if len(raw) < 3+l {
			return nil, errors.New("bgp: truncated extended optional parameter value")
		}
		params = append(params, parameter{parmType: t, parmValue: raw[3 : 3+l]})
		raw = raw[3+l:]
	}
	return params, nil
}

func encodeStandardOptionalParameters(params []parameter) []byte {
	buf := new(bytes.Buffer)
	for _, p := range params {
		buf.WriteByte(p.parmType)
		buf.WriteByte(byte(len(p.parmValue)))
		buf.Write(p.parmValue)
	}
	return buf.Bytes()
}

// encodeExtendedOptionalParameters renders params using RFC 9072's
// 2-octet TLV length. The caller is responsible for signaling this form
// by writing Opt Parm Len as 255 (paramExtendedOP's numeric value); the
// sentinel itself is not repeated here, matching parseExtendedOptionalParameters.
func encodeExtendedOptionalParameters(params []parameter) []byte {
	buf := new(bytes.Buffer)
	for _, p := range params {
		buf.WriteByte(p.parmType)
		lb := make([]byte, 2)
		binary.BigEndian.PutUint16(lb, uint16(len(p.parmValue)))
		buf.Write(lb)
		buf.Write(p.parmValue)
	}
	return buf.Bytes()
}

func (p parameter) valid() (*notificationMessage, bool) {
	return nil, true
}

func (p parameter) bytes() []byte {
	b := []byte{p.parmType, byte(len(p.parmValue))}
	return append(b, p.parmValue...)
}

// 6.2.  OPEN Message Error Handling

//    All errors detected while processing the OPEN message MUST be
//    indicated by sending the NOTIFICATION message with the Error Code
//    OPEN Message Error.  The Error Subcode elaborates on the specific
//    nature of the error.

//    If the version number in the Version field of the received OPEN
//    message is not supported, then the Error Subcode MUST be set to
//    Unsupported Version Number.

//    If the Autonomous System field of the OPEN message is unacceptable,
//    then the Error Subcode MUST be set to Bad Peer AS.

//    If the Hold Time field of the OPEN message is unacceptable, then the
//    Error Subcode MUST be set to Unacceptable Hold Time.

//    If the BGP Identifier field of the OPEN message is syntactically
//    incorrect, then the Error Subcode MUST be set to Bad BGP Identifier.

//    If one of the Optional Parameters in the OPEN message is not
//    recognized, then the Error Subcode MUST be set to Unsupported
//    Optional Parameters.
