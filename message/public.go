package message

import (
	"net"

	"github.com/zebra-rs/zebra-go/attrstore"
)

// This file is the package's public façade. Everything it exports is a
// thin wrapper around the unexported codec types above, so callers in
// other packages (fsm, speaker) drive the wire format without reaching
// into its internals.

// Message type discriminators, matching the byte Extract returns.
const (
	MsgOpen         = msgOpen
	MsgUpdate       = msgUpdate
	MsgNotification = msgNotification
	MsgKeepalive    = msgKeepalive
	MsgRouteRefresh = msgRouteRefresh
)

// BGP Notification error codes and subcodes (RFC 4271 6).
const (
	MessageHeaderError      = messageHeaderError
	OpenMessageError        = openMessageError
	UpdateMessageError      = updateMessageError
	HoldTimerExpired        = holdTimerExpired
	FiniteStateMachineError = finiteStateMachineError
	Cease                   = cease
	NoErrorSubcode          = noErrorSubcode
	BadMessageLength        = badMessageLength
	BadMessageType          = badMessageType
)

// CapAS4 is the RFC 6793 4-octet AS number capability code.
const CapAS4 = capAS4

// CapAddPath is the RFC 7911 Add-Path capability code.
const CapAddPath = capAddPath

// addPathReceive/addPathSend/addPathBoth are the sendReceive field values
// RFC 7911 3 defines: whether the advertiser wants to receive multiple
// paths, send multiple paths, or both.
const (
	addPathReceive = 1
	addPathSend    = 2
	addPathBoth    = 3
)

type (
	OpenMessage         = openMessage
	UpdateMessage       = updateMessage
	NotificationMessage = notificationMessage
	KeepaliveMessage    = keepaliveMessage
	Capability          = capability
)

func NewOpenMessage(myAS uint16, holdTime uint16, id uint32, caps []Capability) *OpenMessage {
	return newOpenMessage(myAS, holdTime, id, caps)
}

func ReadOpen(b []byte) (*OpenMessage, error) { return readOpen(b) }

func ReadUpdate(b []byte, addPath bool) (*UpdateMessage, error) { return readUpdate(b, addPath) }

func NewNotificationMessage(code, subcode int, data []byte) *NotificationMessage {
	return newNotificationMessage(code, subcode, data)
}

func ReadNotification(b []byte) (*NotificationMessage, error) { return readNotification(b) }

func NewKeepaliveMessage() KeepaliveMessage { return newKeepaliveMessage() }

func ReadKeepalive(b []byte) *KeepaliveMessage { return readKeepalive(b) }

// AS4Capability builds the RFC 6793 4-octet AS capability TLV.
func AS4Capability(asn uint32) Capability {
	return capability{code: capAS4, value: as4Capability{asn: asn}.bytes()}
}

// AddPathCapability builds an RFC 7911 Add-Path capability TLV advertising
// sendReceive support for one AFI/SAFI.
func AddPathCapability(afi uint16, safi byte, sendReceive byte) Capability {
	c := addPathCapability{entries: []addPathEntry{{afi: afi, safi: safi, sendReceive: sendReceive}}}
	return capability{code: capAddPath, value: c.bytes()}
}

// AddPathReceiveNegotiated reports whether open's Add-Path capability, if
// any, offers to send us multiple paths for the given AFI/SAFI — the
// direction that governs whether UPDATE NLRI on this session carries a
// path identifier (RFC 7911 §3).
func AddPathReceiveNegotiated(open *OpenMessage, afi uint16, safi byte) bool {
	c, ok := open.capability(capAddPath)
	if !ok {
		return false
	}
	parsed, err := parseAddPathCapability(c.value)
	if err != nil {
		return false
	}
	for _, e := range parsed.entries {
		if e.afi == afi && e.safi == safi && (e.sendReceive == addPathSend || e.sendReceive == addPathBoth) {
			return true
		}
	}
	return false
}

// MultiprotocolCapability builds the RFC 4760 AFI/SAFI capability TLV.
func MultiprotocolCapability(afi uint16, safi byte) Capability {
	return capability{code: capMultiprotocol, value: mpCapability{afi: afi, safi: safi}.bytes()}
}

// RouteRefreshCapability builds the empty-valued RFC 2918 capability TLV.
func RouteRefreshCapability() Capability {
	return capability{code: capRouteRefresh}
}

func (o *OpenMessage) Bytes() []byte { return o.bytes() }

func (o *OpenMessage) Valid(remoteAS, holdTime uint16) (*NotificationMessage, bool) {
	return o.valid(remoteAS, holdTime)
}

func (o *OpenMessage) HasCapability(code byte) (Capability, bool) { return o.capability(code) }

func (o *OpenMessage) EffectiveASN() uint32 { return o.effectiveASN() }

func (o *OpenMessage) HoldTime() uint16 { return o.holdTime }

func (o *OpenMessage) BGPIdentifier() uint32 { return o.bgpIdentifier }

func (u *UpdateMessage) Bytes(addPath bool) []byte { return u.bytes(addPath) }

func (u *UpdateMessage) IsEndOfRIBMarker() bool { return u.isEndOfRIBMarker() }

// Withdrawn returns the withdrawn IPv4 unicast prefixes and, when
// add-path is negotiated, their path identifiers (§3 Adj-RIB-In keying).
func (u *UpdateMessage) Withdrawn() ([]net.IPNet, []uint32) {
	return u.withdrawnRoutes, u.withdrawnPathIDs
}

// NLRI returns the reachable IPv4 unicast prefixes carried directly in
// the UPDATE body (i.e. not via MP_REACH_NLRI) and their path identifiers.
func (u *UpdateMessage) NLRI() ([]net.IPNet, []uint32) {
	return u.nlri, u.nlriPathIDs
}

// AttributeSet decodes the UPDATE's path attributes into the comparable,
// internable form attrstore.Store consumes (§3 "BGP attribute set").
// asn4 must reflect whatever was negotiated for this peer (RFC 6793).
func (u *UpdateMessage) AttributeSet(asn4 bool) *attrstore.Set {
	return decodeAttrSet(u.pathAttributes, asn4)
}

// ASPathLength reports the RFC 4271 9.1.2.2 tie-break length of an
// already-decoded AS_PATH.
func ASPathLength(segs []attrstore.ASSegment) int { return aggregateASPathLength(segs) }

// Valid performs the minimal UPDATE sanity check RFC 4271 9 and 6.3
// require before an UPDATE is accepted into Loc-RIB: a non-empty NLRI
// must carry a mandatory ORIGIN, AS_PATH and NEXT_HOP.
func (u *UpdateMessage) Valid() (*NotificationMessage, bool) {
	if len(u.nlri) == 0 {
		return nil, true
	}
	for _, code := range []byte{attrOrigin, attrASPath, attrNextHop} {
		if _, ok := findAttribute(u.pathAttributes, code); !ok {
			return newNotificationMessage(updateMessageError, missingWellKnownAttribute, []byte{code}), false
		}
	}
	return nil, true
}

func (n *NotificationMessage) Bytes() []byte { return n.bytes() }

func (n *NotificationMessage) ErrorDescription() string { return n.errorDescription() }

func (n *NotificationMessage) Code() byte { return n.code }

func (n *NotificationMessage) Subcode() byte { return n.subcode }

func (k KeepaliveMessage) Bytes() []byte { return k.bytes() }
