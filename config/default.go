package config

// NativeSymbol is the symbol of the native token.
const NativeSymbol = "ETH"

var nativeDenomination = DenominationInfo{
	Symbol:   NativeSymbol,
	Decimals: 18,
}

// DefaultNetworks is the default config containing known networks.
var DefaultNetworks = Networks{
	Default: "testnet",
	All: map[string]*Network{
		// Seismic devnet/testnet.
		"testnet": {
			Description:  "Seismic testnet",
			ChainID:      5124,
			RPC:          "https://node-2.seismicdev.net/rpc",
			Denomination: nativeDenomination,
			Shielding: Shielding{
				ExpiresIn: 100,
			},
		},
		// Local seismic-reth node in dev mode.
		"local": {
			Description:  "Local seismic-reth node",
			ChainID:      5124,
			RPC:          "http://127.0.0.1:8545",
			Denomination: nativeDenomination,
			Shielding: Shielding{
				ExpiresIn: 100,
			},
		},
		// Local sanvil node.
		"sanvil": {
			Description:  "Local sanvil node",
			ChainID:      31337,
			RPC:          "http://127.0.0.1:8545",
			Denomination: nativeDenomination,
			Shielding: Shielding{
				ExpiresIn: 100,
			},
		},
	},
}
