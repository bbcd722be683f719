package message

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeExtractRoundTrip(t *testing.T) {
	body := []byte{0x01, 0x02, 0x03}
	wire := Encode(msgKeepalive, body)
	require.Len(t, wire, headerLength+len(body))

	typ, got, consumed, err := Extract(wire, defaultMaxMessageLength)
	require.NoError(t, err)
	require.Equal(t, byte(msgKeepalive), typ)
	require.Equal(t, body, got)
	require.Equal(t, len(wire), consumed)
}

func TestExtractReportsIncompleteData(t *testing.T) {
	wire := Encode(msgKeepalive, nil)
	_, _, _, err := Extract(wire[:headerLength-1], defaultMaxMessageLength)
	var incomplete *IncompleteData
	require.ErrorAs(t, err, &incomplete)
	require.Equal(t, 1, incomplete.Needed)

	full := Encode(msgUpdate, []byte{0, 0, 0, 0, 1, 2})
	_, _, _, err = Extract(full[:len(full)-1], defaultMaxMessageLength)
	require.ErrorAs(t, err, &incomplete)
	require.Equal(t, 1, incomplete.Needed)
}

func TestExtractRejectsOversizedMessage(t *testing.T) {
	wire := Encode(msgUpdate, make([]byte, 100))
	_, _, _, err := Extract(wire, headerLength+10)
	require.Error(t, err)
}
