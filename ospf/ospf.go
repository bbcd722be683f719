// Package ospf is an illustrative placeholder only: OSPFv2 is out of
// scope beyond documenting how its neighbor state machine would slot
// into the same (link, neighbor) shape package isis uses.
package ospf

// IfsmState mirrors RFC 2328 §9.1's interface states (Down through DR).
type IfsmState int

const (
	IfsmDown IfsmState = iota
	IfsmWaiting
	IfsmPointToPoint
	IfsmDROther
	IfsmBackup
	IfsmDR
)

// NfsmState is left unresolved between two conventions a real
// implementation would have to pick between (open question, not decided
// here since OSPF isn't built beyond this stub):
//
//  1. RFC 2328 §10.1's full eight-state machine (Down, Attempt, Init,
//     2-Way, ExStart, Exchange, Loading, Full) — exposes the DD exchange
//     and LSA-request/loading phases as distinct states, matching the
//     source this package is illustrative of (its `IfsmState`/Neighbor
//     shape, not its NFSM, which was never finished there either).
//  2. A collapsed three-state convention (Down, Init, Full) that folds
//     ExStart/Exchange/Loading into an opaque "synchronizing" substate —
//     closer to isis.NFSM's three-state Down/Initializing/Up shape,
//     cheaper to implement, but loses the ability to show DD-exchange
//     progress in `show ip ospf neighbor detail`.
type NfsmState int

const (
	NfsmDown NfsmState = iota
	NfsmInit
	NfsmFull
)
