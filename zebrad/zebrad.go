// Package zebrad is the top-level wiring of §2's data-flow table: it
// owns the process-wide rib.Table instances, the fib.Adapter, the
// config.Manager's handler table, and the cli.Server that answers the
// CLI surface. Run drives the FIB adapter's inbox with one event.Loop and
// each IS-IS link runs its own (isis.Link.Up); BGP peers are not driven
// through an event.Loop.
package zebrad

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vishvananda/netlink"

	"github.com/zebra-rs/zebra-go/cli"
	"github.com/zebra-rs/zebra-go/config"
	"github.com/zebra-rs/zebra-go/event"
	"github.com/zebra-rs/zebra-go/fib"
	"github.com/zebra-rs/zebra-go/isis"
	"github.com/zebra-rs/zebra-go/isispkt"
	"github.com/zebra-rs/zebra-go/nexthop"
	"github.com/zebra-rs/zebra-go/rib"
	"github.com/zebra-rs/zebra-go/speaker"
)

// Daemon ties every protocol instance to the shared RIB/FIB/CLI. It is
// the direct descendant of the teacher's cmd/main.go speaker-construction
// sequence, generalised to the full component set this spec describes.
type Daemon struct {
	v4 *rib.Table
	v6 *rib.Table

	fib      *fib.Adapter
	fibInbox *event.Mailbox

	bgp        *speaker.Speaker
	bgpPeerASN map[string]int32

	isisSystemID isispkt.SystemID
	isisLSDBs    map[int]*isis.LSDB
	isLinks      map[string]*isis.Link
	isisSockets  map[string]*isis.Socket
	// isisCtx is non-nil once Run has started: a link configured before
	// Run is recorded but only actually started (Link.Up + its socket
	// read loop) once this is set, either by Run draining isLinks at
	// startup or, for config applied afterwards, by the config handler
	// itself.
	isisCtx context.Context

	cfg *config.Manager
	log *logrus.Entry
}

// NewDaemon constructs every shared component and registers the config
// handler table, but does not yet start any background loop — call Run
// for that once the caller is ready to own a context.
func NewDaemon() *Daemon {
	d := &Daemon{
		bgpPeerASN:  make(map[string]int32),
		isisLSDBs:   make(map[int]*isis.LSDB),
		isLinks:     make(map[string]*isis.Link),
		isisSockets: make(map[string]*isis.Socket),
		cfg:         config.NewManager(),
		log:         logrus.WithField("component", "zebrad"),
	}

	d.fibInbox = event.NewMailbox()
	d.fib = fib.NewAdapter(d.fibInbox)
	d.v4 = rib.NewTable("ipv4", d.fib)
	d.v6 = rib.NewTable("ipv6", d.fib)

	d.registerHandlers()
	return d
}

func (d *Daemon) registerHandlers() {
	d.cfg.RegisterHandler("routing bgp global as", func(op config.Op, args []string) error {
		if op == config.OpDelete {
			d.bgp = nil
			return nil
		}
		asn, err := strconv.Atoi(args[0])
		if err != nil {
			return errors.Wrapf(err, "invalid AS %q", args[0])
		}
		d.bgp = speaker.New(int16(asn))
		d.bgp.SetRIB(d.v4)
		return nil
	})

	d.cfg.RegisterHandler("routing bgp neighbors neighbor", func(op config.Op, args []string) error {
		if d.bgp == nil {
			return errors.New("routing bgp global as must be set before neighbors")
		}
		if len(args) < 2 || args[1] != "peer-as" {
			return errors.Errorf("unsupported neighbor config %v", args)
		}
		ip := args[0]
		if op == config.OpDelete {
			if asn, ok := d.bgpPeerASN[ip]; ok {
				d.bgp.Remove(asn, ip)
				delete(d.bgpPeerASN, ip)
			}
			return nil
		}
		if len(args) < 3 {
			return errors.Errorf("unsupported neighbor config %v", args)
		}
		asn, err := strconv.Atoi(args[2])
		if err != nil {
			return errors.Wrapf(err, "invalid peer-as %q", args[2])
		}
		peer := d.bgp.Peer(int32(asn), ip)
		peer.Enable()
		d.bgpPeerASN[ip] = int32(asn)
		return nil
	})

	d.cfg.RegisterHandler("routing isis net", func(op config.Op, args []string) error {
		if op == config.OpDelete {
			d.isisSystemID = isispkt.SystemID{}
			return nil
		}
		if len(args) < 1 {
			return errors.Errorf("unsupported isis net config %v", args)
		}
		id, err := isispkt.ParseNET(args[0])
		if err != nil {
			return errors.Wrapf(err, "invalid NET %q", args[0])
		}
		d.isisSystemID = id
		return nil
	})

	d.cfg.RegisterHandler("routing isis interface", func(op config.Op, args []string) error {
		if len(args) < 1 {
			return errors.Errorf("unsupported isis interface config %v", args)
		}
		ifname := args[0]
		if op == config.OpDelete {
			if l, ok := d.isLinks[ifname]; ok {
				l.Down()
				delete(d.isLinks, ifname)
			}
			if s, ok := d.isisSockets[ifname]; ok {
				s.Close()
				delete(d.isisSockets, ifname)
			}
			return nil
		}
		if len(args) < 2 {
			return errors.Errorf("unsupported isis interface config %v", args)
		}
		if d.isisSystemID == (isispkt.SystemID{}) {
			return errors.New("routing isis net must be set before interface")
		}
		level := isis.Level2
		if args[1] == "level-1" {
			level = isis.Level1
		}

		sock, err := isis.NewSocket(ifname)
		if err != nil {
			return errors.Wrapf(err, "isis socket on %q", ifname)
		}

		lsdb := d.isisLSDBFor(level)
		link := isis.NewLink(ifname, level, d.isisSystemID, sock.MAC(), lsdb, d.log)
		d.isLinks[ifname] = link
		d.isisSockets[ifname] = sock

		if d.isisCtx != nil {
			d.startISISLink(link, sock)
		}
		return nil
	})
}

// isisLSDBFor returns the shared link-state database for level,
// creating it (with the daemon's configured system ID) the first time
// any interface is enabled at that level — every interface running the
// same level floods into the one database, per ISO 10589's "a level's
// LSDB is per area, not per circuit."
func (d *Daemon) isisLSDBFor(level int) *isis.LSDB {
	if db, ok := d.isisLSDBs[level]; ok {
		return db
	}
	hosts := isis.NewHostnameMap()
	db := isis.NewLSDB(level, d.isisSystemID, hosts, d.isisFlood(level), d.log)
	d.isisLSDBs[level] = db
	return db
}

// isisFlood builds the flood callback LSDB.Originate/Receive call to
// re-advertise an LSP: send it out every configured Link at level that
// has a socket, whether or not it has been started yet.
func (d *Daemon) isisFlood(level int) func(pdu []byte) {
	return func(pdu []byte) {
		for ifname, l := range d.isLinks {
			if l.Level() != level {
				continue
			}
			sock, ok := d.isisSockets[ifname]
			if !ok {
				continue
			}
			if err := sock.Send(level, pdu); err != nil {
				d.log.WithError(err).WithField("interface", ifname).Warn("isis flood failed")
			}
		}
	}
}

// startISISLink arms l's Hello timer/dispatch loop against sock and
// launches the frame read loop that feeds received Hellos and LSPs back
// into l and its LSDB. Closing isisCtx closes sock, which unblocks the
// read loop's blocking Recv the same way fib.Adapter.Subscribe's done
// channel unblocks its netlink read.
func (d *Daemon) startISISLink(l *isis.Link, sock *isis.Socket) {
	l.Up(d.isisCtx, func(pdu []byte) {
		if err := sock.Send(l.Level(), pdu); err != nil {
			d.log.WithError(err).WithField("interface", l.Name()).Warn("isis hello send failed")
		}
	})
	go func() {
		<-d.isisCtx.Done()
		sock.Close()
	}()
	go d.isisReadLoop(l, sock)
}

// isisReadLoop decodes frames off sock until it's closed, routing
// Hellos to l's NFSM/IFSM and LSPs into l's LSDB (§4.4/§4.5's ingress
// paths). CSNP/PSNP-driven resynchronisation is not wired here yet —
// only the periodic refresh flood LSDB.Originate already arms.
func (d *Daemon) isisReadLoop(l *isis.Link, sock *isis.Socket) {
	buf := make([]byte, 1500)
	for {
		pdu, srcMAC, err := sock.Recv(buf)
		if err != nil {
			return
		}
		_, decoded, err := isispkt.Decode(pdu)
		if err != nil {
			d.log.WithError(err).WithField("interface", l.Name()).Debug("isis decode failed")
			continue
		}
		switch v := decoded.(type) {
		case *isispkt.Hello:
			l.Receive(v, srcMAC)
		case *isispkt.LSP:
			l.LSDB().Receive(v, pdu)
		}
	}
}

// LoadConfig stages src into the config cache overlay and commits it,
// the same path the CLI's Apply RPC drives, for the startup config file
// zebra-god accepts via its -config flag.
func (d *Daemon) LoadConfig(src string) error {
	if err := d.cfg.Load(src); err != nil {
		return err
	}
	return d.cfg.CommitEnd()
}

// Run starts the FIB adapter's kernel dump/subscribe, drains its inbox
// into the RIB tables as kernel-sourced entries, and blocks until ctx is
// cancelled — the RIB task of §5, generalised to also own the kernel
// sync rather than just protocol-sourced entries.
func (d *Daemon) Run(ctx context.Context) error {
	loop := event.NewLoop(d.fibInbox, d.handleFibEvent)
	go loop.Run(ctx)

	d.isisCtx = ctx
	for ifname, l := range d.isLinks {
		if sock, ok := d.isisSockets[ifname]; ok {
			d.startISISLink(l, sock)
		}
	}

	if err := d.fib.Dump(); err != nil {
		return errors.Wrap(err, "fib dump")
	}
	done := make(chan struct{})
	go func() {
		<-ctx.Done()
		close(done)
	}()
	if err := d.fib.Subscribe(done); err != nil {
		return errors.Wrap(err, "fib subscribe")
	}
	<-ctx.Done()
	return nil
}

// handleFibEvent applies one netlink-sourced message to whichever
// address family table it belongs to, mirroring §4.3's kernel-route
// ingestion path (distance 0, SourceKernel).
func (d *Daemon) handleFibEvent(msg event.Message) {
	switch m := msg.(type) {
	case fib.NewRoute:
		d.applyKernelRoute(m.Route, false)
	case fib.DelRoute:
		d.applyKernelRoute(m.Route, true)
	case fib.NewLink, fib.DelLink, fib.NewAddr, fib.DelAddr:
		// Interface/address bookkeeping belongs to an interface table this
		// package doesn't model yet (no component reads it); the kernel
		// routes they imply still arrive as their own NewRoute/DelRoute.
	}
}

func (d *Daemon) applyKernelRoute(r netlink.Route, del bool) {
	if r.Dst == nil {
		return
	}
	t := d.v4
	if r.Dst.IP.To4() == nil {
		t = d.v6
	}
	if del {
		if err := t.Remove(*r.Dst, rib.SourceKernel, rib.SubtypeNone); err != nil {
			d.log.WithError(err).WithField("prefix", r.Dst.String()).Warn("kernel route removal failed")
		}
		return
	}
	e := &rib.Entry{
		Prefix:   *r.Dst,
		Source:   rib.SourceKernel,
		Distance: rib.DefaultDistance(rib.SourceKernel),
		Metric:   uint32(r.Priority),
		Ifindex:  r.LinkIndex,
		Nexthop:  nexthop.Nexthop{Kind: nexthop.KindUni, Ifindex: r.LinkIndex, Addr: r.Gw},
	}
	if err := t.Add(e); err != nil {
		d.log.WithError(err).WithField("prefix", r.Dst.String()).Warn("kernel route install failed")
	}
}

var _ cli.Server = (*Daemon)(nil)

// Exec implements cli.Server. Only a minimal command set is wired: real
// command dispatch belongs to the YANG/command-tree loader this repo
// treats as an external collaborator (spec.md §1).
func (d *Daemon) Exec(ctx context.Context, req *cli.ExecRequest) (*cli.ExecResponse, error) {
	switch req.Line {
	case "show ip route":
		return &cli.ExecResponse{Code: cli.ExitSuccess, Lines: d.renderRoutes(d.v4)}, nil
	case "show ipv6 route":
		return &cli.ExecResponse{Code: cli.ExitSuccess, Lines: d.renderRoutes(d.v6)}, nil
	default:
		return &cli.ExecResponse{Code: cli.ExitUsageError, Lines: []string{"% unknown command"}}, nil
	}
}

// Show implements cli.Server, streaming the same rendering Exec's
// "show ..." lines return, one chunk per line.
func (d *Daemon) Show(req *cli.ShowRequest, stream cli.ShowStream) error {
	var lines []string
	switch req.Line {
	case "show ip route":
		lines = d.renderRoutes(d.v4)
	case "show ipv6 route":
		lines = d.renderRoutes(d.v6)
	}
	for _, line := range lines {
		if err := stream.Send(&cli.ShowChunk{Data: line + "\n"}); err != nil {
			return err
		}
	}
	return nil
}

// Apply implements cli.Server: stage every streamed line into the config
// cache overlay, then CommitEnd once the client closes its send side.
func (d *Daemon) Apply(stream cli.ApplyStream) error {
	var src string
	for {
		line, err := stream.Recv()
		if err != nil {
			break
		}
		src += line.Line
	}
	if err := d.cfg.Load(src); err != nil {
		return stream.SendAndClose(&cli.ApplyResult{OK: false, Message: err.Error()})
	}
	if err := d.cfg.CommitEnd(); err != nil {
		return stream.SendAndClose(&cli.ApplyResult{OK: false, Message: err.Error()})
	}
	return stream.SendAndClose(&cli.ApplyResult{OK: true, Message: "commit complete"})
}

// Clear implements cli.Server. Counter/state clearing is left as a
// documented no-op: no component in this repo yet exposes per-path
// counters to reset.
func (d *Daemon) Clear(ctx context.Context, req *cli.ClearRequest) (*cli.ClearResult, error) {
	return &cli.ClearResult{Message: "nothing to clear"}, nil
}

func (d *Daemon) renderRoutes(t *rib.Table) []string {
	var out []string
	t.Walk(func(prefix net.IPNet, e *rib.Entry) {
		out = append(out, fmt.Sprintf("%-18s [%d/%d] via %s, %s",
			prefix.String(), e.Distance, e.Metric, nexthopString(e.Nexthop), e.Source))
	})
	return out
}

func nexthopString(nh nexthop.Nexthop) string {
	if nh.Addr != nil {
		return nh.Addr.String()
	}
	return fmt.Sprintf("ifindex %d", nh.Ifindex)
}
