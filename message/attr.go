package message

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

//          Attribute Type is a two-octet field that consists of the
//          Attribute Flags octet, followed by the Attribute Type Code
//          octet.
//                0                   1
//                0 1 2 3 4 5 6 7 8 9 0 1 2 3 4 5
//                +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
//                |  Attr. Flags  |Attr. Type Code|
//                +-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+-+
type attributeType struct {
	flags byte
	code  byte
}

const (
	optional          = 1 << 7
	wellKnown         = 0
	transitive        = 1 << 6
	nonTransitive     = 0
	partial           = 1 << 5
	complete          = 0
	extendedLength    = 1 << 4
	notExtendedLength = 0
)

func (a *attributeType) optional() bool  { return a.flags&optional == optional }
func (a *attributeType) setOptional()    { a.flags |= optional }
func (a *attributeType) wellKnown() bool { return a.flags&optional == wellKnown }
func (a *attributeType) setWellKnown()   { a.flags &^= optional }

func (a *attributeType) transitive() bool    { return a.flags&transitive == transitive }
func (a *attributeType) setTransitive()      { a.flags |= transitive }
func (a *attributeType) nonTransitive() bool { return a.flags&transitive == nonTransitive }
func (a *attributeType) setNonTransitive()   { a.flags &^= transitive }

func (a *attributeType) partial() bool  { return a.flags&partial == partial }
func (a *attributeType) setPartial()    { a.flags |= partial }
func (a *attributeType) complete() bool { return a.flags&partial == complete }
func (a *attributeType) setComplete()   { a.flags &^= partial }

func (a *attributeType) extendedLength() bool    { return a.flags&extendedLength == extendedLength }
func (a *attributeType) setExtendedLength()      { a.flags |= extendedLength }
func (a *attributeType) notExtendedLength() bool { return a.flags&extendedLength == notExtendedLength }
func (a *attributeType) setNotExtendedLength()   { a.flags &^= extendedLength }

// nonextendedLength is an alias of notExtendedLength kept for the
// existing test name; both report the same bit.
func (a *attributeType) nonextendedLength() bool { return a.notExtendedLength() }

// Attribute Type Codes (RFC 4271 §5, plus the extensions this codec
// understands).
const (
	attrOrigin              = 1
	attrASPath              = 2
	attrNextHop             = 3
	attrMultiExitDisc       = 4
	attrLocalPref           = 5
	attrAtomicAggregate     = 6
	attrAggregator          = 7
	attrCommunity           = 8  // RFC 1997
	attrOriginatorID        = 9  // RFC 4456
	attrClusterList         = 10 // RFC 4456
	attrMPReachNLRI         = 14 // RFC 4760
	attrMPUnreachNLRI       = 15 // RFC 4760
	attrExtendedCommunities = 16 // RFC 4360
	attrAS4Path             = 17 // RFC 6793
	attrAS4Aggregator       = 18 // RFC 6793
	attrPmsiTunnel          = 22 // RFC 6514
	attrAIGP                = 24 // RFC 7311
	attrLargeCommunity      = 32 // RFC 8092
)

// AS_PATH segment types (RFC 4271 §4.3).
const (
	asSet      = 1
	asSequence = 2
)

// pathAttribute is one <attribute type, attribute length, attribute
// value> triple from an UPDATE message, still in wire form.
type pathAttribute struct {
	attributeType attributeType
	value         []byte
}

// readPathAttributes parses the Path Attributes field (the concatenation
// of every path attribute triple) out of b.
func readPathAttributes(b []byte) ([]pathAttribute, error) {
	var attrs []pathAttribute
	for len(b) > 0 {
		if len(b) < 3 {
			return nil, errors.New("bgp: truncated path attribute")
		}
		at := attributeType{flags: b[0], code: b[1]}
		b = b[2:]

		var length int
		if at.extendedLength() {
			if len(b) < 2 {
				return nil, errors.New("bgp: truncated extended attribute length")
			}
			length = int(binary.BigEndian.Uint16(b[0:2]))
			b = b[2:]
		} else {
			if len(b) < 1 {
				return nil, errors.New("bgp: truncated attribute length")
			}
			length = int(b[0])
			b = b[1:]
		}
		if len(b) < length {
			return nil, errors.New("bgp: truncated attribute value")
		}
		attrs = append(attrs, pathAttribute{attributeType: at, value: b[:length]})
		b = b[length:]
	}
	return attrs, nil
}

// bytes encodes the attribute as its wire triple, setting the Extended
// Length bit itself when the value won't fit a single length octet.
func (p pathAttribute) bytes() []byte {
	at := p.attributeType
	if len(p.value) > 255 {
		at.setExtendedLength()
	} else {
		at.setNotExtendedLength()
	}

	b := []byte{at.flags, at.code}
	if at.extendedLength() {
		lb := make([]byte, 2)
		binary.BigEndian.PutUint16(lb, uint16(len(p.value)))
		b = append(b, lb...)
	} else {
		b = append(b, byte(len(p.value)))
	}
	return append(b, p.value...)
}

// find returns the first attribute with the given type code.
func findAttribute(attrs []pathAttribute, code byte) (pathAttribute, bool) {
	for _, a := range attrs {
		if a.attributeType.code == code {
			return a, true
		}
	}
	return pathAttribute{}, false
}
