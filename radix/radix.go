// Package radix implements the longest-prefix-match index every RIB table
// needs (§3's "A longest-prefix-match index is required"). It started as
// an IPv4-only next-hop trie; it now carries an arbitrary value per prefix
// so rib.Table can use it to store *RibEntry buckets for both IPv4 and
// IPv6 tables.
package radix

import (
	"net"

	"github.com/pkg/errors"
)

// ErrNotFound is returned by Lookup when no matching prefix exists in the
// trie.
var ErrNotFound = errors.New("radix: prefix not found")

// Radix is a prefix trie keyed by net.IPNet. It is not safe for concurrent
// use without external locking, matching the single-threaded-owner model
// of §5: each rib.Table owns one Radix and is the only task that touches it.
type Radix struct {
	root *node
}

// New creates an empty radix trie.
func New() *Radix {
	return &Radix{root: new(node)}
}

type edge struct {
	target  *node
	network net.IPNet
	value   interface{}
	has     bool // distinguishes an intermediate node from a real entry
}

type node struct {
	edges []*edge
}

// Insert adds or replaces the value stored at network.
func (r *Radix) Insert(network net.IPNet, value interface{}) {
	best := r.bestContaining(r.root, network)
	var parent *node
	if best == nil {
		parent = r.root
	} else if sameNet(best.network, network) {
		best.value = value
		best.has = true
		return
	} else {
		parent = best.target
	}

	fresh := &edge{target: newNode(), network: network, value: value, has: true}
	parent.edges = append(parent.edges, fresh)

	// Re-parent any existing sibling edges that are more specific than the
	// freshly inserted network under the new edge.
	kept := parent.edges[:0]
	for _, e := range parent.edges {
		if e != fresh && contains(network, e.network) {
			fresh.target.edges = append(fresh.target.edges, e)
			continue
		}
		kept = append(kept, e)
	}
	parent.edges = kept
}

// Delete removes the exact-match entry for network. Returns true if an
// entry was removed.
func (r *Radix) Delete(network net.IPNet) bool {
	return deleteExact(r.root, network)
}

func deleteExact(n *node, network net.IPNet) bool {
	for i, e := range n.edges {
		if sameNet(e.network, network) && e.has {
			if len(e.target.edges) == 0 {
				n.edges = append(n.edges[:i], n.edges[i+1:]...)
			} else {
				e.has = false
				e.value = nil
			}
			return true
		}
		if e.network.Contains(network.IP) {
			return deleteExact(e.target, network)
		}
	}
	return false
}

// Lookup returns the longest matching prefix covering network's address;
// network's own mask length is not checked.
func (r *Radix) Lookup(network net.IPNet) (net.IPNet, interface{}, error) {
	e := r.bestContaining(r.root, network)
	if e == nil || !e.has {
		return net.IPNet{}, nil, ErrNotFound
	}
	return e.network, e.value, nil
}

// LookupAddr finds the longest prefix match for a bare address, the
// operation rib's nexthop resolver (§4.3.1) needs.
func (r *Radix) LookupAddr(addr net.IP) (net.IPNet, interface{}, error) {
	mask := net.CIDRMask(len(addr)*8, len(addr)*8)
	host := net.IPNet{IP: addr, Mask: mask}
	return r.Lookup(host)
}

// Exact returns the value stored exactly at network, without doing a
// longest-prefix-match fallback.
func (r *Radix) Exact(network net.IPNet) (interface{}, bool) {
	e := r.exact(r.root, network)
	if e == nil || !e.has {
		return nil, false
	}
	return e.value, true
}

func (r *Radix) exact(n *node, network net.IPNet) *edge {
	for _, e := range n.edges {
		if sameNet(e.network, network) {
			return e
		}
		if e.network.Contains(network.IP) {
			return r.exact(e.target, network)
		}
	}
	return nil
}

// Walk visits every real (has==true) entry in the trie.
func (r *Radix) Walk(fn func(net.IPNet, interface{})) {
	walk(r.root, fn)
}

func walk(n *node, fn func(net.IPNet, interface{})) {
	for _, e := range n.edges {
		if e.has {
			fn(e.network, e.value)
		}
		walk(e.target, fn)
	}
}

// bestContaining returns the most specific edge, at or below n, whose
// network contains (or equals) the lookup network.
func (r *Radix) bestContaining(n *node, network net.IPNet) *edge {
	var best *edge
	for _, e := range n.edges {
		if sameNet(e.network, network) || e.network.Contains(network.IP) {
			best = e
			if deeper := r.bestContaining(e.target, network); deeper != nil {
				best = deeper
			}
			break
		}
	}
	return best
}

func contains(a, b net.IPNet) bool {
	if sameNet(a, b) {
		return false
	}
	return a.Contains(b.IP)
}

func sameNet(a, b net.IPNet) bool {
	return a.String() == b.String()
}

func newNode() *node {
	return new(node)
}
