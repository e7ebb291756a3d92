package wallet

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

const anvilKey = "0xac0974bec39a17e36ba4a6b4d238ff944bacb478cbed5efcae784d7bf4f2ff80"

var anvilAccounts = []common.Address{
	common.HexToAddress("0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"),
	common.HexToAddress("0x70997970C51812dc3A010C7d01b50e0d17dc79C8"),
	common.HexToAddress("0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"),
}

var privateKeys = []struct {
	key   string
	valid bool
}{
	{key: anvilKey, valid: true},
	{key: anvilKey[2:], valid: true},
	{key: " " + anvilKey + "\n", valid: true},
	{key: anvilKey[:len(anvilKey)-1], valid: false},
	{key: anvilKey[:len(anvilKey)-8], valid: false},
	{key: anvilKey + "11", valid: false},
	{key: "", valid: false},
}

var mnemonics = []struct {
	mnemonic string
	valid    bool
}{
	{mnemonic: DevMnemonic, valid: true},
	{mnemonic: "actor want explain gravity body drill bike update mask wool tell seven", valid: true},
	{mnemonic: "actorr want explain gravity body drill bike update mask wool tell seven", valid: false},
	{mnemonic: "actor want explain gravity body drill bike update mask wool tell", valid: false},
	{mnemonic: "", valid: false},
}

func TestSecp256k1FromMnemonic(t *testing.T) {
	require := require.New(t)

	for _, m := range mnemonics {
		_, err := Secp256k1FromMnemonic(m.mnemonic, 0)
		if m.valid {
			require.NoError(err, m.mnemonic)
		} else {
			require.Error(err, m.mnemonic)
		}
	}

	for i, expected := range anvilAccounts {
		signer, err := Secp256k1FromMnemonic(DevMnemonic, uint32(i))
		require.NoError(err)
		require.Equal(expected, signer.Public().Address(), "account %d", i)
	}
}

func TestSecp256k1FromHex(t *testing.T) {
	for _, pk := range privateKeys {
		signer, err := Secp256k1FromHex(pk.key)
		if pk.valid {
			require.NoError(t, err, pk.key)
			require.Equal(t, anvilAccounts[0], signer.Public().Address())
		} else {
			require.Error(t, err, pk.key)
		}
	}
}

func TestNewMnemonic(t *testing.T) {
	require := require.New(t)

	m1, err := NewMnemonic()
	require.NoError(err)
	require.NoError(ValidateMnemonic(m1))
	m2, err := NewMnemonic()
	require.NoError(err)
	require.NotEqual(m1, m2)
}

func TestImport(t *testing.T) {
	require := require.New(t)

	acc, err := Import(&ImportSource{Kind: ImportKindMnemonic, Data: DevMnemonic}, 1)
	require.NoError(err)
	require.Equal(anvilAccounts[1], acc.Address())
	require.Equal(DevMnemonic, acc.UnsafeExport())

	acc, err = Import(&ImportSource{Kind: ImportKindPrivateKey, Data: anvilKey}, 0)
	require.NoError(err)
	require.Equal(anvilAccounts[0], acc.Address())

	_, err = Import(&ImportSource{Kind: ImportKindPrivateKey, Data: anvilKey}, 1)
	require.Error(err, "raw keys have no key numbers")

	var kind ImportKind
	require.NoError(kind.UnmarshalText([]byte("private key")))
	require.Equal(ImportKindPrivateKey, kind)
	require.Error(kind.UnmarshalText([]byte("ledger")))
	require.Len(ImportKinds(), 2)
}

func TestDecodeConfig(t *testing.T) {
	require := require.New(t)

	cfg, err := DecodeConfig(map[string]interface{}{
		"algorithm": AlgorithmSecp256k1Bip44,
		"number":    uint32(3),
	})
	require.NoError(err)
	require.Equal(&AccountConfig{Algorithm: AlgorithmSecp256k1Bip44, Number: 3}, cfg)

	_, err = DecodeConfig(map[string]interface{}{"algorithm": "ed25519-adr8"})
	require.Error(err)

	flags := Flags()
	require.NoError(flags.Parse([]string{"--" + CfgNumber, "2"}))
	raw, err := ConfigFromFlags(flags)
	require.NoError(err)
	require.Equal(AlgorithmSecp256k1Bip44, raw["algorithm"])
	require.EqualValues(2, raw["number"])
}

func TestDataValidator(t *testing.T) {
	require := require.New(t)

	require.NoError(DataValidator(ImportKindMnemonic)(DevMnemonic))
	require.Error(DataValidator(ImportKindMnemonic)("not a mnemonic"))
	require.NoError(DataValidator(ImportKindPrivateKey)(anvilKey))
	require.Error(DataValidator(ImportKindPrivateKey)("0xzz"))
	require.Error(DataValidator(ImportKindPrivateKey)(42))
	require.NotNil(DataPrompt(ImportKindMnemonic))
	require.Nil(DataPrompt(ImportKind("ledger")))
}

func TestStore(t *testing.T) {
	require := require.New(t)

	store, err := NewStore(t.TempDir())
	require.NoError(err, "NewStore")

	bip44 := &AccountConfig{Algorithm: AlgorithmSecp256k1Bip44, Number: 2}
	acc, err := store.Import("dev", "secret", &ImportSource{Kind: ImportKindMnemonic, Data: DevMnemonic}, bip44.Number)
	require.NoError(err, "Import")
	require.Equal(anvilAccounts[2], acc.Address())

	_, err = store.Import("dev", "secret", &ImportSource{Kind: ImportKindPrivateKey, Data: anvilKey}, 0)
	require.Error(err, "duplicate account")

	_, err = store.Load("dev", "wrong", bip44)
	require.Error(err, "wrong passphrase")

	loaded, err := store.Load("dev", "secret", bip44)
	require.NoError(err, "Load")
	require.Equal(acc.Address(), loaded.Address())

	_, err = store.Load("dev", "secret", &AccountConfig{Algorithm: AlgorithmSecp256k1Raw})
	require.Error(err, "algorithm mismatch")

	created, err := store.Create("fresh", "pass", &AccountConfig{Algorithm: AlgorithmSecp256k1Bip44})
	require.NoError(err, "Create")
	require.NoError(ValidateMnemonic(created.UnsafeExport()))
	_, err = store.Create("raw", "pass", &AccountConfig{Algorithm: AlgorithmSecp256k1Raw})
	require.Error(err)

	names, err := store.List()
	require.NoError(err)
	require.Equal([]string{"dev", "fresh"}, names)

	require.Error(store.Rename("dev", "fresh"), "rename onto existing account")
	require.NoError(store.Rename("dev", "renamed"))
	require.NoError(store.Remove("fresh"))

	names, err = store.List()
	require.NoError(err)
	require.Equal([]string{"renamed"}, names)

	loaded, err = store.Load("renamed", "secret", bip44)
	require.NoError(err)
	require.Equal(anvilAccounts[2], loaded.Address())
}
