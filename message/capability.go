package message

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// Optional Parameter Types (RFC 5492, RFC 9072).
const (
	paramAuthentication = 1 // deprecated
	paramCapabilities   = 2
	paramExtendedOP     = 255 // RFC 9072 Non-Ext OP marker
)

// Capability Codes (IANA "Capability Codes" registry).
const (
	capMultiprotocol        = 1  // RFC 4760
	capRouteRefresh         = 2
	capExtendedNextHop      = 5  // RFC 8950
	capExtendedMessage      = 6  // RFC 8654
	capGracefulRestart      = 64 // RFC 4724
	capAS4                  = 65 // RFC 6793
	capAddPath              = 69 // RFC 7911
	capEnhancedRouteRefresh = 70
)

// capability is one <Capability Code, Capability Length, Capability
// Value> TLV carried inside a Capabilities (type 2) optional parameter.
type capability struct {
	code  byte
	value []byte
}

func (c capability) bytes() []byte {
	b := make([]byte, 2, 2+len(c.value))
	b[0] = c.code
	b[1] = byte(len(c.value))
	return append(b, c.value...)
}

// mpCapability is the value of a Multiprotocol Extensions capability:
// the AFI/SAFI pair the speaker wishes to exchange NLRI for.
type mpCapability struct {
	afi  uint16
	safi byte
}

func (c mpCapability) bytes() []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint16(b[0:2], c.afi)
	b[3] = c.safi
	return b
}

func parseMPCapability(v []byte) (mpCapability, error) {
	if len(v) != 4 {
		return mpCapability{}, errors.Errorf("bgp: malformed multiprotocol capability, len %d", len(v))
	}
	return mpCapability{afi: binary.BigEndian.Uint16(v[0:2]), safi: v[3]}, nil
}

// as4Capability carries the sender's real 4-octet AS number (RFC 6793),
// negotiated so 2-octet-only peers can still be told the true ASN.
type as4Capability struct {
	asn uint32
}

func (c as4Capability) bytes() []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, c.asn)
	return b
}

func parseAS4Capability(v []byte) (as4Capability, error) {
	if len(v) != 4 {
		return as4Capability{}, errors.Errorf("bgp: malformed 4-octet AS capability, len %d", len(v))
	}
	return as4Capability{asn: binary.BigEndian.Uint32(v)}, nil
}

// addPathEntry negotiates add-path send/receive per AFI/SAFI (RFC 7911).
// sendReceive is 1 (receive), 2 (send) or 3 (both).
type addPathEntry struct {
	afi         uint16
	safi        byte
	sendReceive byte
}

type addPathCapability struct {
	entries []addPathEntry
}

func (c addPathCapability) bytes() []byte {
	b := make([]byte, 0, len(c.entries)*4)
	for _, e := range c.entries {
		eb := make([]byte, 4)
		binary.BigEndian.PutUint16(eb[0:2], e.afi)
		eb[2] = e.safi
		eb[3] = e.sendReceive
		b = append(b, eb...)
	}
	return b
}

func parseAddPathCapability(v []byte) (addPathCapability, error) {
	if len(v)%4 != 0 {
		return addPathCapability{}, errors.Errorf("bgp: malformed add-path capability, len %d", len(v))
	}
	var c addPathCapability
	for i := 0; i < len(v); i += 4 {
		c.entries = append(c.entries, addPathEntry{
			afi:         binary.BigEndian.Uint16(v[i : i+2]),
			safi:        v[i+2],
			sendReceive: v[i+3],
		})
	}
	return c, nil
}

// gracefulRestartAF is one AFI/SAFI's forwarding-state-preserved flag
// within a Graceful Restart capability.
type gracefulRestartAF struct {
	afi   uint16
	safi  byte
	flags byte
}

type gracefulRestartCapability struct {
	restarting  bool
	restartTime uint16
	afs         []gracefulRestartAF
}

func (c gracefulRestartCapability) bytes() []byte {
	b := make([]byte, 2, 2+len(c.afs)*4)
	flags := c.restartTime & 0x0fff
	if c.restarting {
		flags |= 1 << 15
	}
	binary.BigEndian.PutUint16(b, flags)
	for _, af := range c.afs {
		eb := make([]byte, 4)
		binary.BigEndian.PutUint16(eb[0:2], af.afi)
		eb[2] = af.safi
		eb[3] = af.flags
		b = append(b, eb...)
	}
	return b
}

func parseGracefulRestartCapability(v []byte) (gracefulRestartCapability, error) {
	if len(v) < 2 || (len(v)-2)%4 != 0 {
		return gracefulRestartCapability{}, errors.Errorf("bgp: malformed graceful restart capability, len %d", len(v))
	}
	flags := binary.BigEndian.Uint16(v[0:2])
	c := gracefulRestartCapability{
		restarting:  flags&(1<<15) != 0,
		restartTime: flags & 0x0fff,
	}
	for i := 2; i < len(v); i += 4 {
		c.afs = append(c.afs, gracefulRestartAF{
			afi:   binary.BigEndian.Uint16(v[i : i+2]),
			safi:  v[i+2],
			flags: v[i+3],
		})
	}
	return c, nil
}

// encodeCapabilities packs caps into one or more Capabilities (type 2)
// optional parameters, splitting across parameters if the combined TLVs
// would overflow a single 255-octet parameter value.
func encodeCapabilities(caps []capability) []parameter {
	var params []parameter
	var cur []byte
	for _, c := range caps {
		cb := c.bytes()
		if len(cur)+len(cb) > maxParameterLength {
			params = append(params, parameter{parmType: paramCapabilities, parmLength: byte(len(cur)), parmValue: cur})
			cur = nil
		}
		cur = append(cur, cb...)
	}
	if len(cur) > 0 {
		params = append(params, parameter{parmType: paramCapabilities, parmLength: byte(len(cur)), parmValue: cur})
	}
	return params
}

// parseCapabilities extracts every capability TLV out of every
// Capabilities (type 2) optional parameter in params. Non-capability
// parameter types are ignored here; whether an unrecognized optional
// parameter should fail the OPEN is the caller's negotiation concern.
func parseCapabilities(params []parameter) ([]capability, error) {
	var caps []capability
	for _, p := range params {
		if p.parmType != paramCapabilities {
			continue
		}
		v := p.parmValue
		for len(v) > 0 {
			if len(v) < 2 {
				return nil, errors.New("bgp: truncated capability TLV")
			}
			code := v[0]
			length := int(v[1])
			if len(v) < 2+length {
				return nil, errors.New("bgp: truncated capability value")
			}
			caps = append(caps, capability{code: code, value: v[2 : 2+length]})
			v = v[2+length:]
		}
	}
	return caps, nil
}
