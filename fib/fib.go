// Package fib is the kernel dataplane adapter of §4.2: it wraps
// vishvananda/netlink for both the startup dump (LinkList/AddrList/
// RouteList) and the asynchronous event stream (LinkSubscribe/
// AddrSubscribe/RouteSubscribe), and implements rib.FibInstaller so the
// RIB task's selected-route changes reach the kernel.
package fib

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vishvananda/netlink"

	"github.com/zebra-rs/zebra-go/event"
	"github.com/zebra-rs/zebra-go/nexthop"
	"github.com/zebra-rs/zebra-go/rib"
)

// Message types posted into the owner's Mailbox as the kernel's link/
// address/route tables change underneath us.
type NewLink struct{ Link netlink.Link }
type DelLink struct{ Link netlink.Link }
type NewAddr struct {
	Ifindex int
	Addr    netlink.Addr
}
type DelAddr struct {
	Ifindex int
	Addr    netlink.Addr
}
type NewRoute struct{ Route netlink.Route }
type DelRoute struct{ Route netlink.Route }

var (
	_ event.Message = NewLink{}
	_ event.Message = DelLink{}
	_ event.Message = NewAddr{}
	_ event.Message = DelAddr{}
	_ event.Message = NewRoute{}
	_ event.Message = DelRoute{}
)

// Adapter is the kernel dataplane: netlink.RouteReplace/RouteDel for
// routes, a best-effort multipath/label encoding for groups (the kernel
// has no first-class "nexthop group" object pre-5.3 nexthop API, so
// groups are expanded inline onto the route the way the rest of the
// pre-nexthop-API Linux ecosystem does it).
type Adapter struct {
	inbox    *event.Mailbox
	resolved map[uint32]bool
	log      *logrus.Entry
}

// NewAdapter creates an Adapter posting dump/subscribe events to inbox.
func NewAdapter(inbox *event.Mailbox) *Adapter {
	return &Adapter{
		inbox:    inbox,
		resolved: make(map[uint32]bool),
		log:      logrus.WithField("component", "fib"),
	}
}

// Dump lists every link, address and route currently in the kernel and
// posts one message per object, establishing the adapter's initial view
// before Subscribe starts streaming deltas.
func (a *Adapter) Dump() error {
	links, err := netlink.LinkList()
	if err != nil {
		return errors.Wrap(err, "link list")
	}
	for _, l := range links {
		a.inbox.Send(NewLink{Link: l})
		addrs, err := netlink.AddrList(l, netlink.FAMILY_ALL)
		if err != nil {
			a.log.WithError(err).WithField("link", l.Attrs().Name).Warn("addr list failed")
			continue
		}
		for _, addr := range addrs {
			a.inbox.Send(NewAddr{Ifindex: l.Attrs().Index, Addr: addr})
		}
	}

	routes, err := netlink.RouteList(nil, netlink.FAMILY_ALL)
	if err != nil {
		return errors.Wrap(err, "route list")
	}
	for _, r := range routes {
		a.inbox.Send(NewRoute{Route: r})
	}
	return nil
}

// Subscribe starts the three netlink event streams, forwarding each
// update into inbox until done is closed. Matches the teacher's pattern
// of funnelling an external source's own channel into one owner's
// Mailbox rather than exposing three raw channels to every caller.
func (a *Adapter) Subscribe(done <-chan struct{}) error {
	linkCh := make(chan netlink.LinkUpdate)
	if err := netlink.LinkSubscribe(linkCh, done); err != nil {
		return errors.Wrap(err, "link subscribe")
	}
	addrCh := make(chan netlink.AddrUpdate)
	if err := netlink.AddrSubscribe(addrCh, done); err != nil {
		return errors.Wrap(err, "addr subscribe")
	}
	routeCh := make(chan netlink.RouteUpdate)
	if err := netlink.RouteSubscribe(routeCh, done); err != nil {
		return errors.Wrap(err, "route subscribe")
	}

	go func() {
		for {
			select {
			case <-done:
				return
			case u, ok := <-linkCh:
				if !ok {
					return
				}
				if u.Header.Type == unixRTMDelLink {
					a.inbox.Send(DelLink{Link: u.Link})
				} else {
					a.inbox.Send(NewLink{Link: u.Link})
				}
			case u, ok := <-addrCh:
				if !ok {
					return
				}
				addr := netlink.Addr{IPNet: &u.LinkAddress}
				if u.NewAddr {
					a.inbox.Send(NewAddr{Ifindex: u.LinkIndex, Addr: addr})
				} else {
					a.inbox.Send(DelAddr{Ifindex: u.LinkIndex, Addr: addr})
				}
			case u, ok := <-routeCh:
				if !ok {
					return
				}
				if u.Type == unixRTMDelRoute {
					a.inbox.Send(DelRoute{Route: u.Route})
				} else {
					a.inbox.Send(NewRoute{Route: u.Route})
				}
			}
		}
	}()
	return nil
}

// InstallRoute satisfies rib.FibInstaller: replace (or add) the kernel
// route for e's prefix via its selected nexthop group.
func (a *Adapter) InstallRoute(e *rib.Entry) error {
	prefix := e.Prefix
	route := &netlink.Route{
		Dst:       &prefix,
		LinkIndex: e.Nexthop.Ifindex,
		Priority:  int(e.Metric),
	}
	applyNexthop(route, e.Nexthop)
	return netlink.RouteReplace(route)
}

// RemoveRoute satisfies rib.FibInstaller.
func (a *Adapter) RemoveRoute(e *rib.Entry) error {
	prefix := e.Prefix
	route := &netlink.Route{Dst: &prefix}
	return netlink.RouteDel(route)
}

// InstallGroup satisfies rib.FibInstaller. The kernel has no standalone
// nexthop-group object for the routes this adapter manages, so a group
// install is a no-op marker: the group's member encoding is applied
// directly on InstallRoute via applyNexthop. The GID is recorded in
// resolved, but InstallRoute does not consult that set and buffers
// nothing: a route is sent to the kernel whether or not its group was
// installed first. rib.Table.syncFib installs the group before the route.
func (a *Adapter) InstallGroup(g *nexthop.Group) error {
	a.resolved[g.GID] = true
	return nil
}

// RemoveGroup satisfies rib.FibInstaller.
func (a *Adapter) RemoveGroup(gid uint32) error {
	delete(a.resolved, gid)
	return nil
}

func applyNexthop(route *netlink.Route, nh nexthop.Nexthop) {
	switch nh.Kind {
	case nexthop.KindUni:
		route.Gw = nh.Addr
		if len(nh.Labels) > 0 {
			labels := make([]int, len(nh.Labels))
			for i, l := range nh.Labels {
				labels[i] = int(l)
			}
			route.Encap = &netlink.MPLSEncap{Labels: labels}
		}
	case nexthop.KindMulti:
		mp := make([]*netlink.NexthopInfo, 0, len(nh.Members))
		for _, m := range nh.Members {
			// the kernel's multipath weight is hop count minus one;
			// Member.Weight already carries that convention.
			mp = append(mp, &netlink.NexthopInfo{Hops: int(m.Weight)})
		}
		route.MultiPath = mp
	}
}

// netlink's update structs carry RTM_* numbers from golang.org/x/sys/unix
// that vary by build tag; these two mirror the constants
// vishvananda/netlink itself re-exports for del-vs-new dispatch.
const (
	unixRTMDelLink  = 17 // RTM_DELLINK
	unixRTMDelRoute = 25 // RTM_DELROUTE
)
