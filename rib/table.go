package rib

import (
	"net"
	"sort"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/zebra-rs/zebra-go/nexthop"
	"github.com/zebra-rs/zebra-go/radix"
)

// FibInstaller is the FIB adapter's contract as seen from the RIB (§4.2).
// rib never talks to the kernel directly; it only ever calls these methods.
type FibInstaller interface {
	InstallRoute(e *Entry) error
	RemoveRoute(e *Entry) error
	InstallGroup(g *nexthop.Group) error
	RemoveGroup(gid uint32) error
}

// bucket holds every candidate entry for one prefix.
type bucket struct {
	entries []*Entry
}

// Table is a per-AFI prefix table: one exists for IPv4, one for IPv6.
type Table struct {
	index  *radix.Radix
	nh     *nexthop.Map
	fib    FibInstaller
	log    *logrus.Entry
	maxRecursionDepth int
}

// NewTable creates an empty table backed by its own nexthop.Map. fib may
// be nil for tests that only exercise selection logic.
func NewTable(afi string, fib FibInstaller) *Table {
	nhMap := nexthop.NewMap()
	t := &Table{
		index:             radix.New(),
		nh:                nhMap,
		fib:               fib,
		log:               logrus.WithField("component", "rib").WithField("afi", afi),
		maxRecursionDepth: 4,
	}
	nhMap.OnUninstall = func(g *nexthop.Group) {
		if t.fib == nil {
			return
		}
		if err := t.fib.RemoveGroup(g.GID); err != nil {
			t.log.WithError(err).WithField("gid", g.GID).Warn("failed to remove nexthop group")
		}
	}
	return t
}

// NexthopMap exposes the table's interning registry, e.g. for §8 scenario
// 4's refcount assertions from outside the package.
func (t *Table) NexthopMap() *nexthop.Map {
	return t.nh
}

func (t *Table) bucketAt(prefix net.IPNet) *bucket {
	if v, ok := t.index.Exact(prefix); ok {
		return v.(*bucket)
	}
	b := &bucket{}
	t.index.Insert(prefix, b)
	return b
}

// Add installs or replaces an entry of the same (source,subtype) for its
// prefix (§4.3 steps 1-4), resolving its nexthop and re-running best-path.
func (t *Table) Add(e *Entry) error {
	if e.Distance == 0 && e.Source != SourceKernel && e.Source != SourceConnected {
		return errors.Errorf("distance 0 reserved for kernel/connected, got source %s", e.Source)
	}

	if e.Nexthop.Kind == nexthop.KindUni && !e.Nexthop.Resolved() {
		resolved, err := t.Resolve(e.Nexthop.Addr, true, 0)
		if err != nil {
			t.log.WithError(err).WithField("prefix", e.Prefix.String()).Warn("nexthop unresolved, entry kept out of FIB")
			e.Fib = false
		} else {
			e.Nexthop.Ifindex = resolved.Ifindex
		}
	}

	g := t.nh.Intern(e.Nexthop)
	e.Nexthop.GID = g.GID

	b := t.bucketAt(e.Prefix)
	prevSelected := selectedOf(b)

	replaced := false
	newSource, newSubtype := e.key()
	for i, existing := range b.entries {
		if source, subtype := existing.key(); source == newSource && subtype == newSubtype {
			if existing.Nexthop.GID != 0 {
				t.nh.Release(existing.Nexthop.GID)
			}
			b.entries[i] = e
			replaced = true
			break
		}
	}
	if !replaced {
		b.entries = append(b.entries, e)
	}

	bestPath(b)
	return t.syncFib(e.Prefix, prevSelected, selectedOf(b))
}

// Remove retires the (source,subtype) entry for prefix, re-runs best-path,
// and releases its nexthop group reference.
func (t *Table) Remove(prefix net.IPNet, source Source, subtype Subtype) error {
	v, ok := t.index.Exact(prefix)
	if !ok {
		return nil
	}
	b := v.(*bucket)
	prevSelected := selectedOf(b)

	for i, e := range b.entries {
		if e.Source == source && e.Subtype == subtype {
			b.entries = append(b.entries[:i], b.entries[i+1:]...)
			if e.Nexthop.GID != 0 {
				t.nh.Release(e.Nexthop.GID)
			}
			break
		}
	}

	if len(b.entries) == 0 {
		t.index.Delete(prefix)
		return t.syncFib(prefix, prevSelected, nil)
	}

	bestPath(b)
	return t.syncFib(prefix, prevSelected, selectedOf(b))
}

// Lookup returns the full candidate bucket for an exact prefix, used by
// show commands and tests.
func (t *Table) Lookup(prefix net.IPNet) ([]*Entry, bool) {
	v, ok := t.index.Exact(prefix)
	if !ok {
		return nil, false
	}
	return v.(*bucket).entries, true
}

// Walk calls fn with every prefix's selected entry, in the radix tree's
// traversal order; used by the CLI's `show ip route` rendering. Prefixes
// with no selected entry (every candidate unresolved) are skipped.
func (t *Table) Walk(fn func(net.IPNet, *Entry)) {
	t.index.Walk(func(prefix net.IPNet, v interface{}) {
		if e := selectedOf(v.(*bucket)); e != nil {
			fn(prefix, e)
		}
	})
}

// Selected returns the currently-selected entry for prefix, if any.
func (t *Table) Selected(prefix net.IPNet) (*Entry, bool) {
	v, ok := t.index.Exact(prefix)
	if !ok {
		return nil, false
	}
	e := selectedOf(v.(*bucket))
	return e, e != nil
}

func selectedOf(b *bucket) *Entry {
	for _, e := range b.entries {
		if e.Selected {
			return e
		}
	}
	return nil
}

// bestPath implements §4.3's "sort candidates by (distance asc, metric
// asc, source-specific tiebreak) and mark the first one selected".
func bestPath(b *bucket) {
	for _, e := range b.entries {
		e.Selected = false
	}
	if len(b.entries) == 0 {
		return
	}
	sort.SliceStable(b.entries, func(i, j int) bool {
		return less(b.entries[i], b.entries[j])
	})
	b.entries[0].Selected = true
}

// syncFib implements §4.3 step 4: "If the selected entry changed,
// instruct the FIB adapter to install the new and remove the old kernel
// route."
func (t *Table) syncFib(prefix net.IPNet, prev, next *Entry) error {
	if t.fib == nil {
		if next != nil {
			next.Fib = next.Selected
		}
		return nil
	}
	if prev == next {
		return nil
	}
	if prev != nil && prev.Fib {
		prev.Fib = false
		if err := t.fib.RemoveRoute(prev); err != nil {
			return errors.Wrapf(err, "remove route %s", prefix.String())
		}
	}
	if next != nil && next.Selected {
		if g, ok := t.nh.Get(next.Nexthop.GID); ok && g.Valid {
			if !g.Installed {
				if err := t.fib.InstallGroup(g); err != nil {
					return errors.Wrapf(err, "install nexthop group %d", g.GID)
				}
				t.nh.MarkInstalled(g.GID, true)
			}
			next.Fib = true
			if err := t.fib.InstallRoute(next); err != nil {
				next.Fib = false
				return errors.Wrapf(err, "install route %s", prefix.String())
			}
		}
	}
	return nil
}
