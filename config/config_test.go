package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseScenarioSix(t *testing.T) {
	src := `routing { bgp { global { as 100; } neighbors { neighbor 10.0.0.1 { peer-as 200; } } } }`
	cmds, err := Parse(src)
	require.NoError(t, err)
	require.Equal(t, []Command{
		{Path: "routing bgp global as", Value: "100"},
		{Path: "routing bgp neighbors neighbor 10.0.0.1 peer-as", Value: "200"},
	}, cmds)
}

func TestParseUnbalancedBraces(t *testing.T) {
	_, err := Parse(`routing { bgp { as 100; }`)
	require.Error(t, err)

	_, err = Parse(`routing } `)
	require.Error(t, err)
}

func TestManagerCommitAppliesHandlers(t *testing.T) {
	m := NewManager()
	var gotAS string
	m.RegisterHandler("routing bgp global as", func(op Op, args []string) error {
		require.Equal(t, OpSet, op)
		gotAS = args[0]
		return nil
	})

	require.NoError(t, m.Load(`routing { bgp { global { as 100; } } }`))
	require.NoError(t, m.CommitEnd())
	require.Equal(t, "100", gotAS)

	v, ok := m.Running("routing bgp global as")
	require.True(t, ok)
	require.Equal(t, "100", v)
}

func TestManagerCommitAbortsOnHandlerError(t *testing.T) {
	m := NewManager()
	m.RegisterHandler("routing bgp global as", func(op Op, args []string) error {
		return assertErr
	})

	m.Set("routing bgp global as", "100")
	err := m.CommitEnd()
	require.Error(t, err)

	_, ok := m.Running("routing bgp global as")
	require.False(t, ok)
}

func TestManagerNeighborHandlerCapturesArgs(t *testing.T) {
	m := NewManager()
	var gotArgs []string
	m.RegisterHandler("routing bgp neighbors neighbor", func(op Op, args []string) error {
		gotArgs = args
		return nil
	})

	require.NoError(t, m.Load(`routing { bgp { neighbors { neighbor 10.0.0.1 { peer-as 200; } } } }`))
	require.NoError(t, m.CommitEnd())
	require.Equal(t, []string{"10.0.0.1", "peer-as", "200"}, gotArgs)
}

var assertErr = simpleError("handler rejected value")

type simpleError string

func (e simpleError) Error() string { return string(e) }
