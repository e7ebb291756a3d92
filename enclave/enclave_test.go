package enclave

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/SeismicSystems/seismic-go/callformat"
	"github.com/SeismicSystems/seismic-go/crypto/keyexchange"
	sdkTesting "github.com/SeismicSystems/seismic-go/testing"
	"github.com/SeismicSystems/seismic-go/types"
)

const testChainID = 5124

var (
	recentHash = common.Hash{0xab}
	window     = []common.Hash{{0x01}, recentHash}
)

func newTestEnclave(t *testing.T) *Enclave {
	e, err := New(sdkTesting.EnclaveKey.SecretKey, testChainID)
	require.NoError(t, err)
	return e
}

func buildTx(t *testing.T, e *Enclave, key sdkTesting.TestKey, signedRead bool) (*types.SignedTxSeismic, interface{}) {
	require := require.New(t)

	pk := e.PublicKey()
	state, err := keyexchange.DeriveEncryptionState(pk[:], nil)
	require.NoError(err)

	to := sdkTesting.Charlie.Address
	tx := &types.TxSeismic{
		ChainID:  big.NewInt(testChainID),
		Nonce:    1,
		GasPrice: big.NewInt(1),
		Gas:      21_000,
		To:       &to,
		Value:    big.NewInt(0),
		Input:    []byte("secret"),
	}
	enc, meta, err := callformat.EncodeCall(tx, key.Address, types.CallFormatEncryptedAESGCM, &callformat.EncodeConfig{
		State:             state,
		RecentBlockHash:   recentHash,
		RecentBlockNumber: 100,
		ExpiresIn:         10,
		SignedRead:        signedRead,
	})
	require.NoError(err)

	stx, err := enc.Sign(key.Signer)
	require.NoError(err)
	return stx, meta
}

func TestOpenWrite(t *testing.T) {
	require := require.New(t)

	e := newTestEnclave(t)
	require.Equal(sdkTesting.EnclaveKey.KeyPair.PublicKey, e.PublicKey())
	require.EqualValues(testChainID, e.ChainID())

	stx, meta := buildTx(t, e, sdkTesting.Alice, false)
	opened, err := e.Open(stx, 105, window)
	require.NoError(err, "Open")
	require.Equal(sdkTesting.Alice.Address, opened.Sender)
	require.Equal([]byte("secret"), opened.Input)

	out, err := e.SealResponse(opened, []byte("result"))
	require.NoError(err)
	require.Equal([]byte("result"), out, "write outputs are not encrypted")
	dec, err := callformat.DecodeResult(out, meta)
	require.NoError(err)
	require.Equal([]byte("result"), dec)
}

func TestOpenSignedRead(t *testing.T) {
	require := require.New(t)

	e := newTestEnclave(t)
	stx, meta := buildTx(t, e, sdkTesting.Bob, true)
	opened, err := e.Open(stx, 100, window)
	require.NoError(err, "Open")

	output := common.LeftPadBytes([]byte{0x01}, 32)
	sealed, err := e.SealResponse(opened, output)
	require.NoError(err, "SealResponse")
	require.NotEqual(output, sealed)

	dec, err := callformat.DecodeResult(sealed, meta)
	require.NoError(err, "DecodeResult")
	require.Equal(output, dec)
}

func TestOpenRejections(t *testing.T) {
	require := require.New(t)

	e := newTestEnclave(t)

	// Expired.
	stx, _ := buildTx(t, e, sdkTesting.Alice, false)
	_, err := e.Open(stx, 111, window)
	require.ErrorIs(err, types.ErrExpiredTransaction)
	require.True(types.IsFreshnessError(err))

	// The expiry block itself is accepted.
	_, err = e.Open(stx, 110, window)
	require.NoError(err)

	// Stale recent block hash.
	_, err = e.Open(stx, 105, []common.Hash{{0x01}})
	require.ErrorIs(err, types.ErrStaleBlockHash)

	// Wrong chain.
	other, err := New(sdkTesting.EnclaveKey.SecretKey, 1)
	require.NoError(err)
	_, err = other.Open(stx, 105, window)
	require.ErrorIs(err, types.ErrMalformedTransaction)

	// Another account re-signing Alice's ciphertext cannot get it decrypted.
	stolen, err := stx.Tx.Sign(sdkTesting.Bob.Signer)
	require.NoError(err)
	_, err = e.Open(stolen, 105, window)
	require.ErrorIs(err, types.ErrAuthenticationFailure)

	// Modifying a signed field breaks either the signature or the encryption binding.
	tampered := &types.SignedTxSeismic{Tx: *stx.Tx.Copy(), V: stx.V, R: stx.R, S: stx.S}
	tampered.Tx.Value = big.NewInt(1_000_000)
	_, err = e.Open(tampered, 105, window)
	require.Error(err)

	// A different network key cannot open the transaction.
	rotated, err := Generate(testChainID)
	require.NoError(err)
	_, err = rotated.Open(stx, 105, window)
	require.ErrorIs(err, types.ErrAuthenticationFailure)

	// Garbage encryption public key.
	bad := stx.Tx.Copy()
	bad.EncryptionPubkey = [types.EncryptionPubkeySize]byte{0x05}
	badSigned, err := bad.Sign(sdkTesting.Alice.Signer)
	require.NoError(err)
	_, err = e.Open(badSigned, 105, window)
	require.ErrorIs(err, types.ErrInvalidPublicKey)
}

func TestNew(t *testing.T) {
	_, err := New(make([]byte, 32), testChainID)
	require.ErrorIs(t, err, types.ErrInvalidPrivateKey)
}
