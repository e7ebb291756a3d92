package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	require := require.New(t)

	err := DefaultNetworks.Validate()
	require.NoError(err, "DefaultNetworks should be valid")
	require.Contains(DefaultNetworks.All, DefaultNetworks.Default)

	for name, net := range DefaultNetworks.All {
		require.Equal(NativeSymbol, net.Denomination.Symbol, name)
		require.EqualValues(18, net.Denomination.Decimals, name)
		require.NotZero(net.Shielding.GetExpiresIn(), name)
	}
	require.EqualValues(31337, DefaultNetworks.All["sanvil"].ChainID)
}
