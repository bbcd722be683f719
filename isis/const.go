// Package isis implements the IS-IS control plane on top of the wire
// format in package isispkt: per-link interface state, per-neighbor
// adjacency state, the link-state database, and flooding. Structurally
// it mirrors fsm.FSM's table-driven (state, event) -> next-state shape,
// generalised from BGP's single peer-to-peer FSM to IS-IS's two FSM
// layers (one IFSM per link, one NFSM per neighbor on that link).
package isis

import "time"

// IFSM states (ISO 10589 8.4.1): a circuit is either administratively
// Down or actively sending/receiving Hellos.
const (
	IFSMDown = iota
	IFSMUp
)

// NFSM states (ISO 10589 8.2.5.2): the three-way handshake a LAN or P2P
// adjacency goes through before it's usable for flooding/SPF.
const (
	NFSMDown = iota
	NFSMInitializing
	NFSMUp
)

var ifsmStateName = map[int]string{IFSMDown: "Down", IFSMUp: "Up"}
var nfsmStateName = map[int]string{NFSMDown: "Down", NFSMInitializing: "Initializing", NFSMUp: "Up"}

// Default timers. Hello/hold-multiplier match the near-universal
// Cisco/Juniper/FRR defaults; refresh/hold for self-originated LSPs
// match the source this package is grounded on.
const (
	DefaultHelloInterval  = 10 * time.Second
	DefaultHoldMultiplier = 3
	DISHelloInterval      = DefaultHelloInterval / 3

	DefaultLSPRefreshInterval = 15 * time.Minute
	DefaultLSPHoldTime        = 1200 * time.Second

	DefaultPriority = 64

	DefaultCSNPInterval = 10 * time.Second
)

// Levels.
const (
	Level1 = 1
	Level2 = 2
)

// Circuit types (ISO 10589 9.6), matching isispkt.Hello.CircuitType.
const (
	CircuitL1   = 1
	CircuitL2   = 2
	CircuitL1L2 = 3
)
