package isis

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/zebra-rs/zebra-go/isispkt"
	"github.com/zebra-rs/zebra-go/timer"
)

// entry pairs a stored LSP with the housekeeping timer it needs: a
// refresh timer if it's self-originated (re-flood before it ages out of
// every other router's database), or a hold timer if it's someone
// else's (drop it once RemainingLifetime would reach zero).
type entry struct {
	lsp   *isispkt.LSP
	timer *timer.Timer
}

// LSDB is one level's link-state database for one area. IS-IS keeps a
// separate LSDB per level (L1 routers never see L2 LSPs and vice
// versa); a L1L2 router runs two independent LSDB instances.
type LSDB struct {
	mu      sync.Mutex
	level   int
	self    isispkt.SystemID
	entries map[isispkt.LSPID]*entry
	hosts   *HostnameMap
	flood   func(pdu []byte)
	log     *logrus.Entry
}

func NewLSDB(level int, self isispkt.SystemID, hosts *HostnameMap, flood func(pdu []byte), log *logrus.Entry) *LSDB {
	return &LSDB{
		level:   level,
		self:    self,
		entries: make(map[isispkt.LSPID]*entry),
		hosts:   hosts,
		flood:   flood,
		log:     log.WithField("level", level),
	}
}

// Originate builds and installs our own LSP fragment 0, arming a
// refresh timer so it's re-flooded before RemainingLifetime would
// expire it out of neighboring databases.
func (d *LSDB) Originate(tlvs []isispkt.TLV) {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := isispkt.LSPID{SystemID: d.self}
	seq := uint32(1)
	if existing, ok := d.entries[id]; ok {
		seq = existing.lsp.SequenceNumber + 1
		existing.timer.Stop()
	}
	lsp := &isispkt.LSP{
		RemainingLifetime: uint16(DefaultLSPHoldTime.Seconds()),
		LSPID:             id,
		SequenceNumber:    seq,
		Flags:             isisTypeFlag(d.level),
		TLVs:              tlvs,
	}
	d.checksumAndStore(lsp)
	d.armRefresh(id)
	d.flood(lsp.Encode())
}

func isisTypeFlag(level int) byte {
	if level == Level2 {
		return isispkt.LSPFlagISTypeL1L2
	}
	return isispkt.LSPFlagISTypeL1
}

func (d *LSDB) checksumAndStore(lsp *isispkt.LSP) {
	lsp.Checksum = 0
	raw := lsp.Encode()
	// Checksum region starts at byte 12 of the full PDU (8-byte common
	// header + 2-byte PDU length + 2-byte Remaining Lifetime); Encode's
	// output here is body-only, and the fixed fields before the
	// checksum occupy the first 4 bytes of that body.
	sum := isispkt.Compute(raw[4:])
	lsp.Checksum = uint16(sum[0])<<8 | uint16(sum[1])
	d.entries[lsp.LSPID] = &entry{lsp: lsp}
	if hostTLV, ok := isispkt.Find(lsp.TLVs, isispkt.TLVDynamicHostname); ok {
		d.hosts.Set(lsp.LSPID.SystemID, string(hostTLV.Value))
	}
}

func (d *LSDB) armRefresh(id isispkt.LSPID) {
	e := d.entries[id]
	e.timer = timer.New(DefaultLSPRefreshInterval, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		cur, ok := d.entries[id]
		if !ok {
			return
		}
		cur.lsp.SequenceNumber++
		d.checksumAndStore(cur.lsp)
		d.armRefresh(id)
		d.flood(cur.lsp.Encode())
	})
}

// Receive applies ISO 10589 7.3.16.2's LSP database update procedure: a
// checksum failure discards the LSP outright; otherwise a newer
// sequence number (or a tie broken by purge status, isispkt.LSP.Newer)
// replaces the stored copy and re-floods it through the flood callback,
// which is not told the link the LSP arrived on.
func (d *LSDB) Receive(lsp *isispkt.LSP, raw []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(raw) > 12 && !isispkt.Valid(raw[12:]) {
		d.log.WithField("lsp", lsp.LSPID.String()).Warn("isis LSP checksum failure, discarding")
		return
	}

	existing, ok := d.entries[lsp.LSPID]
	if ok && !lsp.Newer(existing.lsp) {
		return
	}
	if ok && existing.timer != nil {
		existing.timer.Stop()
	}

	e := &entry{lsp: lsp}
	if lsp.LSPID.SystemID == d.self {
		// Someone is circulating a copy of our own LSP with a higher
		// sequence number than we remember issuing (restart, split
		// brain); out-sequence it and re-originate.
		if ok {
			e.lsp = existing.lsp
		}
		e.lsp.SequenceNumber = lsp.SequenceNumber + 1
		d.checksumAndStore(e.lsp)
		d.armRefresh(lsp.LSPID)
	} else if lsp.RemainingLifetime > 0 {
		e.timer = timer.New(time.Duration(lsp.RemainingLifetime)*time.Second, func() { d.purge(lsp.LSPID) })
		d.entries[lsp.LSPID] = e
		if hostTLV, ok := isispkt.Find(lsp.TLVs, isispkt.TLVDynamicHostname); ok {
			d.hosts.Set(lsp.LSPID.SystemID, string(hostTLV.Value))
		}
	} else {
		d.entries[lsp.LSPID] = e
		d.hosts.Delete(lsp.LSPID.SystemID)
	}
	d.flood(e.lsp.Encode())
}

func (d *LSDB) purge(id isispkt.LSPID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := d.entries[id]
	if !ok {
		return
	}
	e.lsp.RemainingLifetime = 0
	e.lsp.TLVs = nil
	d.checksumAndStore(e.lsp)
	d.hosts.Delete(id.SystemID)
	d.flood(e.lsp.Encode())
}

// Entries returns every stored LSP, for CSNP/PSNP generation and CLI
// database dumps.
func (d *LSDB) Entries() []*isispkt.LSP {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*isispkt.LSP, 0, len(d.entries))
	for _, e := range d.entries {
		out = append(out, e.lsp)
	}
	return out
}

