package isispkt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseNETFullForm(t *testing.T) {
	id, err := ParseNET("49.0001.1921.6800.1001.00")
	require.NoError(t, err)
	require.Equal(t, SystemID{0x19, 0x21, 0x68, 0x00, 0x10, 0x01}, id)
}

func TestParseNETBareSystemID(t *testing.T) {
	id, err := ParseNET("1921.6800.1001")
	require.NoError(t, err)
	require.Equal(t, SystemID{0x19, 0x21, 0x68, 0x00, 0x10, 0x01}, id)
}

func TestParseNETOddLength(t *testing.T) {
	_, err := ParseNET("49.0001.1921.6800.1001.0")
	require.Error(t, err)
}

func TestParseNETTooShort(t *testing.T) {
	_, err := ParseNET("1921.68")
	require.Error(t, err)
}

func TestParseNETMalformedHex(t *testing.T) {
	_, err := ParseNET("zz.0001.1921.6800.1001.00")
	require.Error(t, err)
}
