package config

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SeismicSystems/seismic-go/callformat"
	"github.com/SeismicSystems/seismic-go/client"
	"github.com/SeismicSystems/seismic-go/types"
)

func TestValidateNetwork(t *testing.T) {
	require := require.New(t)

	n := Network{
		Description:  "Test network.",
		ChainID:      5124,
		RPC:          "http://localhost:8545",
		Denomination: nativeDenomination,
	}
	require.NoError(n.Validate(), "Validate should succeed with valid configuration")
	require.False(n.IsLocalRPC())

	ipc := n
	ipc.RPC = "unix:/tmp/reth.ipc"
	require.NoError(ipc.Validate(), "Validate should accept IPC endpoints")
	require.True(ipc.IsLocalRPC())
	require.Equal("/tmp/reth.ipc", ipc.RPCEndpoint())

	invalid := n
	invalid.ChainID = 0
	require.Error(invalid.Validate(), "Validate should fail without chain id")

	invalid = n
	invalid.RPC = "grpc.example.com:443"
	require.Error(invalid.Validate(), "Validate should fail with unsupported scheme")

	invalid = n
	invalid.Shielding.MessageVersion = 1
	require.Error(invalid.Validate(), "Validate should fail with unsupported message version")

	invalid = n
	invalid.Denomination.Decimals = 100
	require.Error(invalid.Validate(), "Validate should fail with too many decimals")
}

func TestShielding(t *testing.T) {
	require := require.New(t)

	var s Shielding
	require.NoError(s.Validate())
	require.EqualValues(callformat.DefaultExpiresIn, s.GetExpiresIn())
	require.EqualValues(client.DefaultGasLimit, s.GetGasLimit())
	require.Equal(types.MessageVersionPlain, s.GetMessageVersion())

	s = Shielding{ExpiresIn: 5, GasLimit: 21_000, MessageVersion: 2}
	require.NoError(s.Validate())
	require.EqualValues(5, s.GetExpiresIn())
	require.EqualValues(21_000, s.GetGasLimit())
	require.Equal(types.MessageVersionTypedData, s.GetMessageVersion())
}

func TestNetworks(t *testing.T) {
	require := require.New(t)

	var nets Networks
	net := &Network{ChainID: 1, RPC: "http://localhost:8545"}
	require.NoError(nets.Add("foo", net))
	require.Equal("foo", nets.Default, "first network becomes the default")
	require.Error(nets.Add("foo", net), "duplicate network")
	require.Error(nets.Add("Foo", net), "malformed name")
	require.Error(nets.Add("bar", &Network{}), "invalid network")

	require.NoError(nets.Add("bar", net))
	require.NoError(nets.SetDefault("bar"))
	require.Equal("bar", nets.Default)
	require.Error(nets.SetDefault("baz"))

	require.NoError(nets.Remove("bar"))
	require.Empty(nets.Default)
	require.Error(nets.Remove("bar"))
	require.NoError(nets.Validate())

	nets.Default = "missing"
	require.Error(nets.Validate())
}

func TestDenomination(t *testing.T) {
	require := require.New(t)

	var di DenominationInfo
	require.NoError(di.Validate())
	require.Equal(NativeSymbol, di.GetSymbol())

	di = DenominationInfo{Symbol: "TEST", Decimals: maxDecimals}
	require.NoError(di.Validate())
	require.Equal("TEST", di.GetSymbol())

	di.Decimals = maxDecimals + 1
	require.Error(di.Validate())
}
