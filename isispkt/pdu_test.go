package isispkt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeaderRoundTrip(t *testing.T) {
	raw := EncodeHeader(TypeL1LSP, 0, 3)
	h, rest, err := ParseHeader(raw)
	require.NoError(t, err)
	require.Equal(t, byte(TypeL1LSP), h.PDUType)
	require.Equal(t, byte(3), h.MaxAreaAddresses)
	require.Empty(t, rest)
}

func TestParseHeaderBadDiscriminator(t *testing.T) {
	raw := EncodeHeader(TypeL1Hello, 0, 3)
	raw[0] = 0x00
	_, _, err := ParseHeader(raw)
	require.Error(t, err)
}

func TestTLVRoundTrip(t *testing.T) {
	raw := EncodeTLV(TLVDynamicHostname, []byte("router1"))
	tlvs, err := ParseTLVs(raw)
	require.NoError(t, err)
	require.Len(t, tlvs, 1)
	require.Equal(t, byte(TLVDynamicHostname), tlvs[0].Type)
	require.Equal(t, "router1", string(tlvs[0].Value))
}

func TestParseTLVsTruncated(t *testing.T) {
	_, err := ParseTLVs([]byte{TLVPadding, 5, 0, 0})
	require.Error(t, err)
}

func TestHelloRoundTrip(t *testing.T) {
	h := &Hello{
		CircuitType: 0x03,
		SourceID:    SystemID{0x00, 0x00, 0x00, 0x00, 0x00, 0x01},
		HoldingTime: 30,
		Priority:    64,
		TLVs: []TLV{
			{Type: TLVAreaAddresses, Value: []byte{0x49, 0x00, 0x01}},
		},
	}
	raw := h.Encode()
	got, err := DecodeHello(raw)
	require.NoError(t, err)
	require.Equal(t, h.CircuitType, got.CircuitType)
	require.Equal(t, h.SourceID, got.SourceID)
	require.Equal(t, h.HoldingTime, got.HoldingTime)
	require.Equal(t, h.Priority, got.Priority)
	require.Equal(t, h.TLVs, got.TLVs)
}

func TestLSPNewer(t *testing.T) {
	older := &LSP{SequenceNumber: 1, RemainingLifetime: 1200}
	newer := &LSP{SequenceNumber: 2, RemainingLifetime: 1200}
	require.True(t, newer.Newer(older))
	require.False(t, older.Newer(newer))

	purge := &LSP{SequenceNumber: 2, RemainingLifetime: 0}
	require.True(t, newer.Newer(purge))
	require.False(t, purge.Newer(newer))
}

func TestChecksumRoundTrip(t *testing.T) {
	lsp := &LSP{
		RemainingLifetime: 1200,
		LSPID:             LSPID{SystemID: SystemID{1, 2, 3, 4, 5, 6}},
		SequenceNumber:    1,
		Flags:             LSPFlagISTypeL1,
	}
	raw := lsp.Encode()
	// Encode is body-only: the checksum region starts at the LSP ID
	// (body offset 4) and the checksum sits at offsets 12-13 within it.
	region := raw[4:]
	sum := Compute(region)
	region[12] = sum[0]
	region[13] = sum[1]
	require.True(t, Valid(region))
}

func TestPadHello(t *testing.T) {
	tlvs := PadHello(nil, 20, 1497)
	require.NotEmpty(t, tlvs)
	for _, tlv := range tlvs {
		require.Equal(t, byte(TLVPadding), tlv.Type)
	}
}
