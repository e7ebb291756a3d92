package keyexchange

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/SeismicSystems/seismic-go/types"
)

func mustDecode(t *testing.T, s string) []byte {
	b, err := hex.DecodeString(s)
	require.NoError(t, err)
	return b
}

const (
	aliceSK    = "e068722dd8f3248e20175ea82bfd91bfda41b9086345675f89d997e16fef65ac"
	alicePK    = "02390a4e1e0823d83c2f8e8b80a784e2db2fb030699c01f2ec79dd5ed748601a3e"
	enclaveSK  = "fe1fabc5ef2a2b22367a687351e8d87b68430c139108088cbc70477c263607a8"
	enclavePK  = "0305bdfb92a181a1087695d0e1b5be37b5b0995daf6269252c872c2269b4e207fc"
	bobSK      = "e58980d0a34bfc92bfe3287af8a81782bc1e150486a292b925091273e8a49e6b"
	aliceToEnc = "8a79a3dd48dbd7926bdb4ce4125f61faeb323fe1325c7a732781fa35862988ad"
	aliceAES   = "ec57a0a70a7b86c6674ebdc59d2e7b9a66eb2ed256de66382be3ca32ccdb3ae6"
)

func TestNewKeyPair(t *testing.T) {
	require := require.New(t)

	kp, err := NewKeyPair(mustDecode(t, aliceSK))
	require.NoError(err, "NewKeyPair")
	require.Equal(alicePK, hex.EncodeToString(kp.PublicKey[:]))
	require.Equal("0x"+alicePK, kp.String())

	for _, tc := range []struct {
		name string
		sk   []byte
	}{
		{"Empty", nil},
		{"Short", make([]byte, 31)},
		{"Long", make([]byte, 33)},
		{"Zero", make([]byte, 32)},
		{"Order", mustDecode(t, "fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141")},
		{"AllOnes", bytes.Repeat([]byte{0xff}, 32)},
	} {
		_, err = NewKeyPair(tc.sk)
		require.ErrorIs(err, types.ErrInvalidPrivateKey, tc.name)
	}
}

func TestGenerateKeyPair(t *testing.T) {
	require := require.New(t)

	kp1, err := GenerateKeyPair(rand.Reader)
	require.NoError(err, "GenerateKeyPair")
	kp2, err := GenerateKeyPair(nil)
	require.NoError(err, "GenerateKeyPair")
	require.NotEqual(kp1.PrivateKey, kp2.PrivateKey)

	_, err = ParsePublicKey(kp1.PublicKey[:])
	require.NoError(err, "generated public key should parse")

	// An entropy source producing only invalid scalars must fail instead of looping forever.
	_, err = GenerateKeyPair(bytes.NewReader(make([]byte, 32*maxGenerateAttempts)))
	require.ErrorIs(err, types.ErrInvalidPrivateKey)

	_, err = GenerateKeyPair(bytes.NewReader(nil))
	require.Error(err, "exhausted entropy source")
}

func TestParsePublicKey(t *testing.T) {
	require := require.New(t)

	_, err := ParsePublicKey(mustDecode(t, enclavePK))
	require.NoError(err)

	uncompressed := append([]byte{0x04}, make([]byte, 64)...)
	overflow := append([]byte{0x02}, bytes.Repeat([]byte{0xff}, 32)...)
	badPrefix := mustDecode(t, enclavePK)
	badPrefix[0] = 0x05

	for _, tc := range []struct {
		name string
		pk   []byte
	}{
		{"Empty", nil},
		{"Uncompressed", uncompressed},
		{"Short", mustDecode(t, enclavePK)[:32]},
		{"BadPrefix", badPrefix},
		{"FieldOverflow", overflow},
		{"Zero", make([]byte, 33)},
	} {
		_, err = ParsePublicKey(tc.pk)
		require.ErrorIs(err, types.ErrInvalidPublicKey, tc.name)
	}
}

func TestSharedSecret(t *testing.T) {
	require := require.New(t)

	secret, err := SharedSecret(mustDecode(t, aliceSK), mustDecode(t, enclavePK))
	require.NoError(err, "SharedSecret")
	require.Equal(aliceToEnc, hex.EncodeToString(secret[:]))

	alice, err := NewKeyPair(mustDecode(t, aliceSK))
	require.NoError(err)
	reverse, err := SharedSecret(mustDecode(t, enclaveSK), alice.PublicKey[:])
	require.NoError(err, "SharedSecret")
	require.Equal(secret, reverse, "ECDH must be symmetric")

	key := DeriveAESKey(secret)
	require.Equal(aliceAES, hex.EncodeToString(key[:]))
	require.NotEqual(secret[:], key[:], "raw ECDH output must not be used as the key")

	_, err = SharedSecret(mustDecode(t, aliceSK), []byte{0x02})
	require.ErrorIs(err, types.ErrInvalidPublicKey)
	_, err = SharedSecret(make([]byte, 32), mustDecode(t, enclavePK))
	require.ErrorIs(err, types.ErrInvalidPrivateKey)
}

func TestDeriveEncryptionState(t *testing.T) {
	require := require.New(t)

	networkPK := mustDecode(t, enclavePK)
	es, err := DeriveEncryptionState(networkPK, mustDecode(t, aliceSK))
	require.NoError(err, "DeriveEncryptionState")
	require.Equal(aliceAES, hex.EncodeToString(es.AESKey[:]))
	require.Equal(alicePK, hex.EncodeToString(es.ClientPublicKey[:]))
	require.Equal(networkPK, es.NetworkPublicKey[:])

	again, err := DeriveEncryptionState(networkPK, mustDecode(t, aliceSK))
	require.NoError(err)
	require.Equal(es, again, "derivation must be deterministic")

	bob, err := DeriveEncryptionState(networkPK, mustDecode(t, bobSK))
	require.NoError(err)
	require.NotEqual(es.AESKey, bob.AESKey)

	fresh, err := DeriveEncryptionState(networkPK, nil)
	require.NoError(err)
	require.NotEqual(es.ClientPrivateKey, fresh.ClientPrivateKey)
	require.True(fresh.Matches(networkPK))

	require.True(es.Matches(networkPK))
	rotated, err := NewKeyPair(mustDecode(t, bobSK))
	require.NoError(err)
	require.False(es.Matches(rotated.PublicKey[:]), "rotated enclave key must not match")
	require.False(es.Matches([]byte{0x02}))

	require.NotContains(es.String(), aliceSK)
	require.NotContains(es.String(), aliceAES)

	_, err = DeriveEncryptionState([]byte("bad"), nil)
	require.ErrorIs(err, types.ErrInvalidPublicKey)
	_, err = DeriveEncryptionState(networkPK, []byte("bad"))
	require.ErrorIs(err, types.ErrInvalidPrivateKey)
}

func TestEncryptionStateConcurrentUse(t *testing.T) {
	require := require.New(t)

	networkPK := mustDecode(t, enclavePK)
	es, err := DeriveEncryptionState(networkPK, mustDecode(t, aliceSK))
	require.NoError(err)

	var wg sync.WaitGroup
	results := make([]bool, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = es.Matches(networkPK)
		}(i)
	}
	wg.Wait()
	for _, ok := range results {
		require.True(ok)
	}
}
