package speaker

import (
	"net"

	"github.com/zebra-rs/zebra-go/attrstore"
)

// NLRI is a single network layer reachability information entry: a
// prefix plus the interned path attributes it was advertised with, and
// the peer metadata RFC 4271 9.1.2's tie-break ladder needs beyond the
// attributes themselves (eBGP/iBGP, router ID, peer address).
type NLRI struct {
	Prefix   net.IPNet
	Attrs    *attrstore.Handle
	PeerID   uint32
	PeerAddr net.IP
	EBGP     bool

	// owner identifies which Peer contributed this candidate, so the
	// speaker can tell which peer's route won Loc-RIB selection without
	// relying on NLRI's value equality (net.IPNet/net.IP aren't
	// comparable with ==). Best-path implementations never need to read
	// this field themselves.
	owner *Peer
}

// String provides the common string format for prefixes
func (n NLRI) String() string {
	return n.Prefix.String()
}
