package isis

import (
	"github.com/zebra-rs/zebra-go/isispkt"
)

// BuildCSNP summarises every LSP this LSDB holds into one or more CSNPs
// (ISO 10589 9.10), splitting the LSP Entries TLV across PDUs if the
// database is large enough that a single 255-byte TLV can't hold every
// entry. Kept to the level of detail §4.4 asks for: periodic generation
// and gap detection, not full windowed synchronisation.
func (d *LSDB) BuildCSNP(source isispkt.SystemID, circuitID byte) []*isispkt.SNP {
	entries := d.Entries()
	if len(entries) == 0 {
		return []*isispkt.SNP{{SourceID: source, CircuitID: circuitID}}
	}

	const perTLV = 255 / 16 // lspEntryLength is unexported; 16 is its value
	var snps []*isispkt.SNP
	for i := 0; i < len(entries); i += perTLV {
		end := i + perTLV
		if end > len(entries) {
			end = len(entries)
		}
		var value []byte
		for _, lsp := range entries[i:end] {
			value = append(value, isispkt.EncodeLSPEntry(isispkt.LSPEntry{
				RemainingLifetime: lsp.RemainingLifetime,
				LSPID:             lsp.LSPID,
				SequenceNumber:    lsp.SequenceNumber,
				Checksum:          lsp.Checksum,
			})...)
		}
		start, lastEnd := entries[i].LSPID, entries[end-1].LSPID
		snps = append(snps, &isispkt.SNP{
			SourceID:   source,
			CircuitID:  circuitID,
			StartLSPID: &start,
			EndLSPID:   &lastEnd,
			TLVs:       []isispkt.TLV{{Type: isispkt.TLVLspEntries, Value: value}},
		})
	}
	return snps
}

// ReceiveCSNP compares a received CSNP's LSP Entries against what's
// locally stored and returns the LSPIDs we should request via PSNP
// because we're missing them or hold an older sequence number.
func (d *LSDB) ReceiveCSNP(snp *isispkt.SNP) []isispkt.LSPID {
	d.mu.Lock()
	defer d.mu.Unlock()

	var gaps []isispkt.LSPID
	for _, t := range snp.TLVs {
		if t.Type != isispkt.TLVLspEntries {
			continue
		}
		remote, err := isispkt.DecodeLSPEntries(t.Value)
		if err != nil {
			continue
		}
		for _, re := range remote {
			local, ok := d.entries[re.LSPID]
			if !ok || re.SequenceNumber > local.lsp.SequenceNumber {
				gaps = append(gaps, re.LSPID)
			}
		}
	}
	return gaps
}

// BuildPSNP requests the given LSPIDs by their summary entries (ISO
// 10589 9.11) — sent after ReceiveCSNP finds gaps, or after an LSP
// arrives with a bad checksum and needs re-requesting.
func (d *LSDB) BuildPSNP(source isispkt.SystemID, circuitID byte, ids []isispkt.LSPID) *isispkt.SNP {
	d.mu.Lock()
	defer d.mu.Unlock()
	snp := &isispkt.SNP{SourceID: source, CircuitID: circuitID}
	for _, id := range ids {
		// An LSP we don't hold at all is requested with a zeroed summary.
		req := isispkt.LSPEntry{LSPID: id}
		if e, ok := d.entries[id]; ok {
			req = isispkt.LSPEntry{
				RemainingLifetime: e.lsp.RemainingLifetime,
				LSPID:             e.lsp.LSPID,
				SequenceNumber:    e.lsp.SequenceNumber,
				Checksum:          e.lsp.Checksum,
			}
		}
		value := isispkt.EncodeLSPEntry(req)
		snp.TLVs = append(snp.TLVs, isispkt.TLV{Type: isispkt.TLVLspEntries, Value: value})
	}
	return snp
}
