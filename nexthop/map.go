package nexthop

import "sync"

// Group is one interned nexthop group (§3's NexthopMap entry).
type Group struct {
	GID       uint32
	Nexthop   Nexthop
	Valid     bool
	Installed bool
	refcnt    int
}

// Refcnt returns the current reference count, exported read-only so RIB
// invariant tests can assert sum(references) == refcnt (§8).
func (g *Group) Refcnt() int {
	return g.refcnt
}

// Map is the process-wide (per address family) deduplicating nexthop
// group registry described in §3/§4.3.1. A single Map instance is owned
// by the RIB task; it is not safe for concurrent use without external
// locking beyond what Map itself provides, matching §5's "shared resources
// are owned by one task" model — the mutex here exists only because
// multiple RIB sub-components (resolver, fib sync) inside the same task
// may call it from nested contexts, not to support cross-task sharing.
type Map struct {
	mu      sync.Mutex
	byUni   map[uniKey]*Group
	byMulti map[multiKey]*Group
	groups  map[uint32]*Group
	nextGID uint32

	// OnUninstall is invoked synchronously when a group's refcnt drops to
	// zero and it was installed, so the FIB adapter can be told to remove
	// it from the kernel (§8 scenario 4).
	OnUninstall func(*Group)
}

// NewMap creates an empty nexthop map.
func NewMap() *Map {
	return &Map{
		byUni:   make(map[uniKey]*Group),
		byMulti: make(map[multiKey]*Group),
		groups:  make(map[uint32]*Group),
	}
}

// Intern returns the group for nh, creating one if this is the first
// request for this (addr,labels) or member-set tuple. The caller must
// call Release when the RIB entry that adopted this nexthop is retired.
func (m *Map) Intern(nh Nexthop) *Group {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch nh.Kind {
	case KindUni:
		key := nh.uniKey()
		if g, ok := m.byUni[key]; ok {
			g.refcnt++
			return g
		}
		g := m.newGroup(nh)
		m.byUni[key] = g
		return g
	case KindMulti:
		key := nh.multiKey()
		if g, ok := m.byMulti[key]; ok {
			g.refcnt++
			return g
		}
		g := m.newGroup(nh)
		m.byMulti[key] = g
		return g
	default:
		// Link and List nexthops are not deduplicated across RIB entries:
		// each carries its own ifindex/ordering and is its own group.
		g := m.newGroup(nh)
		return g
	}
}

func (m *Map) newGroup(nh Nexthop) *Group {
	m.nextGID++
	gid := m.nextGID
	nh.GID = gid
	g := &Group{GID: gid, Nexthop: nh, Valid: true, refcnt: 1}
	m.groups[gid] = g
	return g
}

// Release decrements refcnt for gid. When it reaches zero, the group is
// marked uninstallable and OnUninstall fires if the group was installed
// (§8 scenario 4: "Remove the other -> refcnt == 0, FIB adapter receives
// nexthop-remove for that gid").
func (m *Map) Release(gid uint32) {
	m.mu.Lock()
	g, ok := m.groups[gid]
	if !ok {
		m.mu.Unlock()
		return
	}
	g.refcnt--
	remove := g.refcnt <= 0
	m.mu.Unlock()

	if !remove {
		return
	}
	if g.Installed && m.OnUninstall != nil {
		m.OnUninstall(g)
	}
	m.mu.Lock()
	delete(m.groups, gid)
	switch g.Nexthop.Kind {
	case KindUni:
		delete(m.byUni, g.Nexthop.uniKey())
	case KindMulti:
		delete(m.byMulti, g.Nexthop.multiKey())
	}
	m.mu.Unlock()
}

// MarkInstalled records that the FIB adapter has successfully installed
// this group in the kernel.
func (m *Map) MarkInstalled(gid uint32, installed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if g, ok := m.groups[gid]; ok {
		g.Installed = installed
	}
}

// Get returns the group for gid, if any.
func (m *Map) Get(gid uint32) (*Group, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.groups[gid]
	return g, ok
}

// Len returns the number of live groups, used by tests asserting GC
// behaviour.
func (m *Map) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.groups)
}
