package rib

import (
	"net"

	"github.com/pkg/errors"
)

// ErrUnresolved is returned when no covering route exists for a nexthop
// address, or recursion is exhausted/cyclic.
var ErrUnresolved = errors.New("rib: nexthop unresolved")

// ErrRecursionLimit is returned when §4.3.1's recursion depth cap (default
// 4) is exceeded, guarding against resolution cycles.
var ErrRecursionLimit = errors.New("rib: nexthop recursion limit exceeded")

// Resolved is the outcome of a nexthop resolution: the ifindex a packet
// would ultimately egress on, and whether any recursive hop was involved.
type Resolved struct {
	Ifindex   int
	Recursive bool
}

// Resolve implements §4.3.1: find the longest-matching prefix for addr,
// and classify it on-link (connected match), recursive (non-default,
// resolvable match), or unresolved. allowDefault controls whether a
// 0.0.0.0/0 (or ::/0) match may serve as a resolver, a per-call policy.
func (t *Table) Resolve(addr net.IP, allowDefault bool, depth int) (*Resolved, error) {
	if depth > t.maxRecursionDepth {
		return nil, ErrRecursionLimit
	}

	network, v, err := t.index.LookupAddr(addr)
	if err != nil {
		return nil, ErrUnresolved
	}
	b := v.(*bucket)
	selected := selectedOf(b)
	if selected == nil {
		return nil, ErrUnresolved
	}

	if isDefault(network) && !allowDefault {
		return nil, ErrUnresolved
	}

	if selected.Source == SourceConnected || selected.Source == SourceKernel {
		return &Resolved{Ifindex: selected.Ifindex}, nil
	}

	// Non-connected, non-kernel match: recurse through the selected
	// entry's own nexthop, inheriting the resolved ifindex chain.
	if selected.Nexthop.Ifindex != 0 {
		return &Resolved{Ifindex: selected.Nexthop.Ifindex, Recursive: true}, nil
	}
	if selected.Nexthop.Addr == nil {
		return nil, ErrUnresolved
	}

	next, err := t.Resolve(selected.Nexthop.Addr, allowDefault, depth+1)
	if err != nil {
		return nil, err
	}
	next.Recursive = true
	return next, nil
}

func isDefault(n net.IPNet) bool {
	ones, _ := n.Mask.Size()
	return ones == 0
}
