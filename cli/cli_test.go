package cli

import (
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
)

func TestGobCodecRoundTrip(t *testing.T) {
	var c gobCodec
	req := &ExecRequest{Type: ExecTypeExec, Privilege: 15, Line: "show ip route", Args: []string{"ip", "route"}}

	data, err := c.Marshal(req)
	require.NoError(t, err)

	out := new(ExecRequest)
	require.NoError(t, c.Unmarshal(data, out))
	require.Equal(t, req, out)
	require.Equal(t, "gob", c.Name())
}

func TestServiceDescShape(t *testing.T) {
	require.Equal(t, serviceName, ServiceDesc.ServiceName)

	methods := map[string]bool{}
	for _, m := range ServiceDesc.Methods {
		methods[m.MethodName] = true
	}
	require.True(t, methods["Exec"])
	require.True(t, methods["Clear"])

	streams := map[string]grpc.StreamDesc{}
	for _, s := range ServiceDesc.Streams {
		streams[s.StreamName] = s
	}
	require.True(t, streams["Show"].ServerStreams)
	require.True(t, streams["Apply"].ClientStreams)
}
