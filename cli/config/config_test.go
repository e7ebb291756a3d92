package config

import (
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/SeismicSystems/seismic-go/config"
	"github.com/SeismicSystems/seismic-go/types"
	"github.com/SeismicSystems/seismic-go/wallet"
)

const anvilKey = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

func TestEncode(t *testing.T) {
	require := require.New(t)

	cfg := Default
	cfg.Accounts = Accounts{
		Default: "dev",
		All: map[string]*Account{
			"dev": {
				Address: "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266",
				Config: map[string]interface{}{
					"algorithm": wallet.AlgorithmSecp256k1Raw,
				},
			},
		},
	}
	require.NoError(cfg.Validate())

	raw, err := cfg.encode()
	require.NoError(err, "encode")

	networks := raw["networks"].(map[string]interface{})
	require.Equal("testnet", networks["default"])
	sanvil := networks["sanvil"].(map[string]interface{})
	require.EqualValues(31337, sanvil["chain_id"])
	require.Contains(sanvil, "shielding")

	accounts := raw["accounts"].(map[string]interface{})
	dev := accounts["dev"].(map[string]interface{})
	require.Equal(wallet.AlgorithmSecp256k1Raw, dev["algorithm"], "remain fields are merged")
	require.NotContains(dev, "Config")
}

func TestSaveLoad(t *testing.T) {
	require := require.New(t)

	local := &config.Network{
		Description: "Local node",
		ChainID:     5124,
		RPC:         "ws://127.0.0.1:8546",
		Denomination: config.DenominationInfo{
			Symbol:   "ETH",
			Decimals: 18,
		},
		Shielding: config.Shielding{
			ExpiresIn:      42,
			MessageVersion: uint8(types.MessageVersionTypedData),
			GasLimit:       3_000_000,
		},
	}
	cfg := Config{
		Networks: config.Networks{
			Default: "local",
			All:     map[string]*config.Network{"local": local},
		},
		Accounts: Accounts{
			Default: "dev",
			All: map[string]*Account{
				"dev": {
					Description: "Development key",
					Address:     "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266",
					Config: map[string]interface{}{
						"algorithm": wallet.AlgorithmSecp256k1Raw,
					},
				},
			},
		},
	}

	path := filepath.Join(t.TempDir(), "cli.toml")
	v := viper.New()
	v.SetConfigFile(path)
	cfg.viper = v
	require.NoError(cfg.Save(), "Save")

	loaded := viper.New()
	loaded.SetConfigFile(path)
	require.NoError(loaded.ReadInConfig())

	var dec Config
	require.NoError(dec.Load(loaded), "Load")
	require.Equal(cfg.Networks, dec.Networks)
	require.Equal(local.Shielding, dec.Networks.All["local"].Shielding)
	require.Equal("dev", dec.Accounts.Default)
	require.Equal(cfg.Accounts.All["dev"].Address, dec.Accounts.All["dev"].Address)
	require.Equal(cfg.Accounts.All["dev"].Description, dec.Accounts.All["dev"].Description)
	require.Equal(wallet.AlgorithmSecp256k1Raw, dec.Accounts.All["dev"].Config["algorithm"])

	// Saving again replaces removed entries.
	require.NoError(dec.Networks.Add("other", &config.Network{ChainID: 1, RPC: "https://rpc.example.com"}))
	require.NoError(dec.Networks.Remove("local"))
	require.NoError(dec.Networks.SetDefault("other"))
	require.NoError(dec.Save())

	again := viper.New()
	again.SetConfigFile(path)
	require.NoError(again.ReadInConfig())
	var final Config
	require.NoError(final.Load(again))
	require.NotContains(final.Networks.All, "local")
	require.EqualValues(1, final.Networks.All["other"].ChainID)

	// Entries may not shadow the section default.
	cfg.Networks.All["default"] = local
	_, err := cfg.encode()
	require.Error(err)
}

func TestAccounts(t *testing.T) {
	require := require.New(t)

	store, err := wallet.NewStore(t.TempDir())
	require.NoError(err)

	var accounts Accounts
	raw := &Account{Config: map[string]interface{}{"algorithm": wallet.AlgorithmSecp256k1Raw}}
	err = accounts.Import(store, "dev", "secret", raw, &wallet.ImportSource{Kind: wallet.ImportKindPrivateKey, Data: anvilKey})
	require.NoError(err, "Import")
	require.Equal("dev", accounts.Default)
	require.Equal("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", accounts.All["dev"].Address)
	require.NoError(accounts.Validate())

	mismatch := &Account{Config: map[string]interface{}{"algorithm": wallet.AlgorithmSecp256k1Bip44}}
	err = accounts.Import(store, "other", "secret", mismatch, &wallet.ImportSource{Kind: wallet.ImportKindPrivateKey, Data: anvilKey})
	require.Error(err, "algorithm must match import kind")
	require.Error(accounts.Import(store, "dev", "secret", raw, nil), "duplicate account")
	require.Error(accounts.Import(store, "Bad-Name", "secret", raw, nil), "malformed name")

	gen := &Account{Config: map[string]interface{}{"algorithm": wallet.AlgorithmSecp256k1Bip44, "number": 1}}
	require.NoError(accounts.Create(store, "gen", "pass", gen), "Create")
	require.NoError(accounts.SetDefault("gen"))
	require.Error(accounts.SetDefault("missing"))

	acc, err := accounts.Load(store, "dev", "secret")
	require.NoError(err, "Load")
	require.Equal(accounts.All["dev"].GetAddress(), acc.Address())
	_, err = accounts.Load(store, "dev", "wrong")
	require.Error(err)

	require.NoError(accounts.Rename(store, "dev", "renamed"))
	_, err = accounts.Load(store, "renamed", "secret")
	require.NoError(err)

	require.NoError(accounts.Remove(store, "gen"))
	require.Empty(accounts.Default)
	require.Error(accounts.Remove(store, "gen"))

	accounts.All["renamed"].Address = "0x1234"
	require.Error(accounts.Validate())
}
