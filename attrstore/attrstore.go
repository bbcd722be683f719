// Package attrstore implements §3/§9's process-wide BGP attribute-set
// interning: "two routes with equal attributes share the same handle"
// and a periodic sweep garbage-collects zero-refcount entries. §9's open
// question on sharding the lock for a hypothetical multi-threaded future
// is deliberately left unaddressed here — one coarse mutex, matching the
// single-threaded-per-instance model of §5.
package attrstore

import "sync"

// Set is the immutable bag of path attributes described in §3. It is
// compared and hashed by value; callers must not mutate a Set obtained
// from Intern.
type Set struct {
	Origin          uint8
	ASPath          []ASSegment
	Nexthop         string
	MED             uint32
	HasMED          bool
	LocalPref       uint32
	HasLocalPref    bool
	AtomicAggregate bool
	AggregatorAS    uint32
	AggregatorAddr  string
	HasAggregator   bool
	Communities     []uint32
	OriginatorID    string
	HasOriginatorID bool
	ClusterList     []string
	ExtCommunities  []uint64
	PmsiTunnel      []byte
	AIGP            uint64
	HasAIGP         bool
	LargeCommunities []LargeCommunity
}

// ASSegment is one AS_PATH segment (AS_SET or AS_SEQUENCE).
type ASSegment struct {
	Set bool
	ASNs []uint32
}

// NeighborAS returns the first ASN of the first AS_PATH segment — the
// adjacent AS a route was learned from, used by RFC 4271 9.1.2.4's
// "same neighboring AS" MED comparison rule.
func (s *Set) NeighborAS() (uint32, bool) {
	if len(s.ASPath) == 0 || len(s.ASPath[0].ASNs) == 0 {
		return 0, false
	}
	return s.ASPath[0].ASNs[0], true
}

// LargeCommunity is RFC 8092's 3x uint32 community.
type LargeCommunity struct {
	Global, Local1, Local2 uint32
}

// Handle is a reference-counted pointer to an interned Set.
type Handle struct {
	Set *Set

	mu     sync.Mutex
	store  *Store
	key    string
	strong int
}

// Attrs returns the underlying immutable attribute set.
func (h *Handle) Attrs() *Set {
	return h.Set
}

// Retain increments the handle's strong reference count. Every consumer
// (an Adj-RIB-In/Out entry) that keeps a Handle must Retain it once and
// Release it exactly once when the route is retired.
func (h *Handle) Retain() {
	h.mu.Lock()
	h.strong++
	h.mu.Unlock()
}

// Release decrements the strong count. When it reaches zero the handle
// becomes eligible for the next GC sweep; it is not removed synchronously
// so that a rapid retain-after-release (common during best-path reruns)
// doesn't thrash the store.
func (h *Handle) Release() {
	h.mu.Lock()
	h.strong--
	h.mu.Unlock()
}

func (h *Handle) strongCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.strong
}

// Store is the process-wide interning map.
type Store struct {
	mu      sync.Mutex
	entries map[string]*Handle
}

// New creates an empty attribute store.
func New() *Store {
	return &Store{entries: make(map[string]*Handle)}
}

// Intern returns the shared Handle for set's value, creating it (with a
// strong count of 1) if this is the first request for this exact value.
// An existing handle's strong count is incremented.
func (s *Store) Intern(set *Set) *Handle {
	key := key(set)

	s.mu.Lock()
	defer s.mu.Unlock()

	if h, ok := s.entries[key]; ok {
		h.mu.Lock()
		h.strong++
		h.mu.Unlock()
		return h
	}
	h := &Handle{Set: set, store: s, key: key, strong: 1}
	s.entries[key] = h
	return h
}

// GC sweeps every handle whose strong count has reached zero. It is the
// "periodic compaction" §9 describes; callers run it on a timer, not on
// every Release, so that handles crossing zero transiently during a
// best-path rerun aren't needlessly evicted and re-interned.
func (s *Store) GC() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for k, h := range s.entries {
		if h.strongCount() <= 0 {
			delete(s.entries, k)
			removed++
		}
	}
	return removed
}

// Len reports the number of interned sets, for tests.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// key computes a stable string key for a Set's value so that two
// structurally-equal attribute sets always hash the same. The key is
// built by appending each field's bytes by hand (appendUint/boolByte),
// without fmt.
func key(s *Set) string {
	b := make([]byte, 0, 128)
	b = appendUint(b, uint64(s.Origin))
	for _, seg := range s.ASPath {
		b = append(b, boolByte(seg.Set))
		for _, asn := range seg.ASNs {
			b = appendUint(b, uint64(asn))
		}
		b = append(b, '|')
	}
	b = append(b, s.Nexthop...)
	b = append(b, '|')
	if s.HasMED {
		b = appendUint(b, uint64(s.MED))
	}
	b = append(b, '|')
	if s.HasLocalPref {
		b = appendUint(b, uint64(s.LocalPref))
	}
	b = append(b, '|', boolByte(s.AtomicAggregate), '|')
	if s.HasAggregator {
		b = appendUint(b, uint64(s.AggregatorAS))
		b = append(b, s.AggregatorAddr...)
	}
	b = append(b, '|')
	for _, c := range s.Communities {
		b = appendUint(b, uint64(c))
	}
	b = append(b, '|')
	if s.HasOriginatorID {
		b = append(b, s.OriginatorID...)
	}
	b = append(b, '|')
	for _, c := range s.ClusterList {
		b = append(b, c...)
		b = append(b, ',')
	}
	b = append(b, '|')
	for _, e := range s.ExtCommunities {
		b = appendUint(b, e)
	}
	b = append(b, '|')
	b = append(b, s.PmsiTunnel...)
	b = append(b, '|')
	if s.HasAIGP {
		b = appendUint(b, s.AIGP)
	}
	b = append(b, '|')
	for _, lc := range s.LargeCommunities {
		b = appendUint(b, uint64(lc.Global))
		b = appendUint(b, uint64(lc.Local1))
		b = appendUint(b, uint64(lc.Local2))
	}
	return string(b)
}

func appendUint(b []byte, v uint64) []byte {
	b = append(b, ':')
	for v > 0 {
		b = append(b, byte('0'+v%10))
		v /= 10
	}
	return append(b, ':')
}

func boolByte(b bool) byte {
	if b {
		return 'T'
	}
	return 'F'
}
