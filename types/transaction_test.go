package types

import (
	"bytes"
	"context"
	"encoding/hex"
	"fmt"
	"math"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	gethMath "github.com/ethereum/go-ethereum/common/math"
	"github.com/stretchr/testify/require"

	"github.com/SeismicSystems/seismic-go/crypto/signature/secp256k1"
)

const (
	testAliceSK = "e068722dd8f3248e20175ea82bfd91bfda41b9086345675f89d997e16fef65ac"
	testAlicePK = "02390a4e1e0823d83c2f8e8b80a784e2db2fb030699c01f2ec79dd5ed748601a3e"
	testBobSK   = "e58980d0a34bfc92bfe3287af8a81782bc1e150486a292b925091273e8a49e6b"

	testAAD = "f88394aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa8214040794cccccccccccccccccccccccccccccccccccccccc80a1" +
		"02390a4e1e0823d83c2f8e8b80a784e2db2fb030699c01f2ec79dd5ed748601a3e8c00000000000000000000000080a0" +
		"111111111111111111111111111111111111111111111111111111111111111181c880"
)

func newTestSigner(t *testing.T, sk string) *secp256k1.Signer {
	raw, err := hex.DecodeString(sk)
	require.NoError(t, err)
	signer, err := secp256k1.NewSigner(raw)
	require.NoError(t, err)
	return signer
}

func newTestTx(t *testing.T) *TxSeismic {
	to := common.BytesToAddress(bytes.Repeat([]byte{0xcc}, 20))
	pk, err := hex.DecodeString(testAlicePK)
	require.NoError(t, err)

	tx := &TxSeismic{
		ChainID:  big.NewInt(5124),
		Nonce:    7,
		GasPrice: big.NewInt(1_000_000_000),
		Gas:      100_000,
		To:       &to,
		Value:    big.NewInt(0),
		Input:    []byte("transfer(address,uint256)"),
		SeismicElements: SeismicElements{
			MessageVersion:  MessageVersionPlain,
			RecentBlockHash: common.BytesToHash(bytes.Repeat([]byte{0x11}, 32)),
			ExpiresAtBlock:  200,
		},
	}
	copy(tx.EncryptionPubkey[:], pk)
	return tx
}

func TestEncodeAAD(t *testing.T) {
	require := require.New(t)

	tx := newTestTx(t)
	sender := common.BytesToAddress(bytes.Repeat([]byte{0xaa}, 20))
	md := NewTxSeismicMetadata(sender, tx)

	aad, err := md.EncodeAAD()
	require.NoError(err, "EncodeAAD")
	require.Equal(testAAD, hex.EncodeToString(aad))

	again, err := md.EncodeAAD()
	require.NoError(err)
	require.Equal(aad, again, "EncodeAAD must be deterministic")

	// Every bound field must change the encoding.
	for _, tc := range []struct {
		name   string
		mutate func(md *TxSeismicMetadata)
	}{
		{"Sender", func(md *TxSeismicMetadata) { md.Sender[0] ^= 1 }},
		{"ChainID", func(md *TxSeismicMetadata) { md.ChainID = big.NewInt(5125) }},
		{"Nonce", func(md *TxSeismicMetadata) { md.Nonce++ }},
		{"To", func(md *TxSeismicMetadata) { to := common.Address{0x01}; md.To = &to }},
		{"ContractCreation", func(md *TxSeismicMetadata) { md.To = nil }},
		{"Value", func(md *TxSeismicMetadata) { md.Value = big.NewInt(1) }},
		{"EncryptionPubkey", func(md *TxSeismicMetadata) { md.EncryptionPubkey[1] ^= 1 }},
		{"EncryptionNonce", func(md *TxSeismicMetadata) { md.EncryptionNonce[0] = 1 }},
		{"MessageVersion", func(md *TxSeismicMetadata) { md.MessageVersion = MessageVersionTypedData }},
		{"RecentBlockHash", func(md *TxSeismicMetadata) { md.RecentBlockHash[31] ^= 1 }},
		{"ExpiresAtBlock", func(md *TxSeismicMetadata) { md.ExpiresAtBlock++ }},
		{"SignedRead", func(md *TxSeismicMetadata) { md.SignedRead = true }},
	} {
		mutated := NewTxSeismicMetadata(sender, newTestTx(t))
		tc.mutate(mutated)
		other, err := mutated.EncodeAAD()
		require.NoError(err, tc.name)
		require.NotEqual(aad, other, tc.name)
	}

	// A nil recipient and the zero address must not collide.
	creation := NewTxSeismicMetadata(sender, newTestTx(t))
	creation.To = nil
	zero := NewTxSeismicMetadata(sender, newTestTx(t))
	zero.To = &common.Address{}
	a1, err := creation.EncodeAAD()
	require.NoError(err)
	a2, err := zero.EncodeAAD()
	require.NoError(err)
	require.NotEqual(a1, a2)
}

func TestSeismicElementsValidate(t *testing.T) {
	require := require.New(t)

	se := newTestTx(t).SeismicElements
	window := []common.Hash{{0x01}, se.RecentBlockHash, {0x02}}

	require.True(se.ValidateExpiration(199))
	require.True(se.ValidateExpiration(200), "expiry block itself is still valid")
	require.False(se.ValidateExpiration(201))

	require.True(se.ValidateRecentBlockHash(window))
	require.False(se.ValidateRecentBlockHash(window[:1]))
	require.False(se.ValidateRecentBlockHash(nil))

	require.NoError(se.Validate(150, window))
	require.ErrorIs(se.Validate(201, window), ErrExpiredTransaction)
	require.ErrorIs(se.Validate(150, window[:1]), ErrStaleBlockHash)
	// Expiration is reported first.
	require.ErrorIs(se.Validate(201, nil), ErrExpiredTransaction)

	require.NoError(se.ValidateBasic(100))
	require.ErrorIs(se.ValidateBasic(200), ErrMalformedTransaction)

	se.MessageVersion = 1
	require.ErrorIs(se.ValidateBasic(100), ErrUnsupportedMessageVersion)
}

func TestMessageVersion(t *testing.T) {
	require := require.New(t)

	require.NoError(MessageVersionPlain.ValidateBasic())
	require.NoError(MessageVersionTypedData.ValidateBasic())
	for _, mv := range []MessageVersion{1, 3, 255} {
		require.ErrorIs(mv.ValidateBasic(), ErrUnsupportedMessageVersion, "version %d", mv)
		require.Contains(mv.String(), "unknown")
	}
	require.Equal("eip712", MessageVersionTypedData.String())
}

func TestTransactionSignAndRecover(t *testing.T) {
	for _, mv := range []MessageVersion{MessageVersionPlain, MessageVersionTypedData} {
		t.Run(mv.String(), func(t *testing.T) {
			require := require.New(t)

			alice := newTestSigner(t, testAliceSK)
			tx := newTestTx(t)
			tx.MessageVersion = mv

			stx, err := tx.Sign(alice)
			require.NoError(err, "Sign")
			require.True(stx.V.Uint64() <= 1)

			sender, err := stx.Sender()
			require.NoError(err, "Sender")
			require.Equal(alice.Public().Address(), sender)

			digest, err := tx.SigningHash()
			require.NoError(err)
			sig, err := stx.Signature()
			require.NoError(err)
			require.True(alice.Public().Verify(digest[:], sig))

			// Tampering with any signed field changes the recovered sender.
			tampered := *stx.Tx.Copy()
			tampered.ExpiresAtBlock++
			other := &SignedTxSeismic{Tx: tampered, V: stx.V, R: stx.R, S: stx.S}
			otherSender, err := other.Sender()
			if err == nil {
				require.NotEqual(sender, otherSender)
			}

			// Mutating the source transaction after signing must not affect the signed copy.
			tx.Input[0] ^= 0xff
			require.Equal(byte('t'), stx.Tx.Input[0])
		})
	}
}

func TestSigningHashModes(t *testing.T) {
	require := require.New(t)

	tx := newTestTx(t)
	plain, err := tx.SigningHash()
	require.NoError(err)

	raw, err := tx.EncodeUnsigned()
	require.NoError(err)
	require.EqualValues(TxSeismicType, raw[0])

	tx.MessageVersion = MessageVersionTypedData
	typed, err := tx.SigningHash()
	require.NoError(err)
	require.NotEqual(plain, typed)

	// Contract creation is encoded as the zero address in typed data.
	tx.To = nil
	creation, err := tx.SigningHash()
	require.NoError(err)
	require.NotEqual(typed, creation)

	td := tx.TypedData()
	require.Equal(TypedDataDomainName, td.Domain.Name)
	require.Equal(TypedDataDomainVersion, td.Domain.Version)
	require.Equal(common.Address{}.Hex(), td.Message["to"])

	tx.MessageVersion = 1
	_, err = tx.SigningHash()
	require.ErrorIs(err, ErrUnsupportedMessageVersion)
	_, err = tx.Sign(newTestSigner(t, testAliceSK))
	require.ErrorIs(err, ErrUnsupportedMessageVersion)
}

func TestTransactionSerialization(t *testing.T) {
	require := require.New(t)

	tx := newTestTx(t)
	tx.SignedRead = true
	tx.EncryptionNonce = [EncryptionNonceSize]byte{1, 2, 3}
	stx, err := tx.Sign(newTestSigner(t, testBobSK))
	require.NoError(err)

	raw, err := stx.MarshalBinary()
	require.NoError(err, "MarshalBinary")
	require.EqualValues(TxSeismicType, raw[0])

	var dec SignedTxSeismic
	require.NoError(dec.UnmarshalBinary(raw), "UnmarshalBinary")
	require.Equal(stx.Hash(), dec.Hash())
	require.EqualValues(tx.Input, dec.Tx.Input)
	require.Equal(tx.SeismicElements, dec.Tx.SeismicElements)
	require.Equal(*tx.To, *dec.Tx.To)
	require.Zero(tx.ChainID.Cmp(dec.Tx.ChainID))

	s1, err := stx.Sender()
	require.NoError(err)
	s2, err := dec.Sender()
	require.NoError(err)
	require.Equal(s1, s2)

	// Contract creation round trips as a nil recipient.
	tx.To = nil
	stx, err = tx.Sign(newTestSigner(t, testBobSK))
	require.NoError(err)
	raw, err = stx.MarshalBinary()
	require.NoError(err)
	require.NoError(dec.UnmarshalBinary(raw))
	require.Nil(dec.Tx.To)

	require.ErrorIs(dec.UnmarshalBinary(nil), ErrMalformedTransaction)
	require.ErrorIs(dec.UnmarshalBinary([]byte{0x02, 0xc0}), ErrMalformedTransaction)
	require.ErrorIs(dec.UnmarshalBinary([]byte{TxSeismicType, 0xc0}), ErrMalformedTransaction)
	require.ErrorIs(dec.UnmarshalBinary(raw[:len(raw)-1]), ErrMalformedTransaction)
}

func TestSignatureValues(t *testing.T) {
	require := require.New(t)

	stx, err := newTestTx(t).Sign(newTestSigner(t, testAliceSK))
	require.NoError(err)

	highV := &SignedTxSeismic{Tx: stx.Tx, V: big.NewInt(27), R: stx.R, S: stx.S}
	_, err = highV.Sender()
	require.ErrorIs(err, ErrMalformedTransaction)

	missing := &SignedTxSeismic{Tx: stx.Tx}
	_, err = missing.Sender()
	require.ErrorIs(err, ErrMalformedTransaction)

	zeroR := &SignedTxSeismic{Tx: stx.Tx, V: stx.V, R: new(big.Int), S: stx.S}
	_, err = zeroR.Sender()
	require.ErrorIs(err, ErrMalformedTransaction)
}

func TestTransactionPrettyPrint(t *testing.T) {
	require := require.New(t)

	stx, err := newTestTx(t).Sign(newTestSigner(t, testAliceSK))
	require.NoError(err)

	var buf bytes.Buffer
	stx.PrettyPrint(context.Background(), "", &buf)
	out := buf.String()
	require.Contains(out, stx.Hash().Hex())
	require.Contains(out, newTestSigner(t, testAliceSK).Public().Address().Hex())
	require.Contains(out, "Expires at block:  200")
	require.Contains(out, "Message version:   plain")

	pt, err := stx.PrettyType()
	require.NoError(err)
	require.Equal(stx, pt)
}

func TestTxState(t *testing.T) {
	require := require.New(t)

	require.Equal("building", TxStateBuilding.String())
	require.Equal("expired", TxStateExpired.String())
	require.Equal("[unknown]", TxState(42).String())
	require.False(TxStateSubmitted.IsTerminal())
	require.True(TxStateAccepted.IsTerminal())
	require.True(TxStateRejected.IsTerminal())
	require.True(TxStateExpired.IsTerminal())
}

func TestErrorCodes(t *testing.T) {
	require := require.New(t)

	for _, err := range []error{ErrAuthenticationFailure, ErrExpiredTransaction, ErrStaleBlockHash} {
		wrapped := fmt.Errorf("enclave: %w", err)
		code := ErrorCode(wrapped)
		require.NotZero(code)
		require.Equal(err, ErrorFromCode(code))
	}
	require.Zero(ErrorCode(ErrNonceReuse))
	require.Nil(ErrorFromCode(-32000))

	require.True(IsFreshnessError(fmt.Errorf("x: %w", ErrExpiredTransaction)))
	require.True(IsFreshnessError(ErrStaleBlockHash))
	require.False(IsFreshnessError(ErrAuthenticationFailure))
}

func TestResultEnvelope(t *testing.T) {
	require := require.New(t)

	env := ResultEnvelopeAESGCM{Nonce: [EncryptionNonceSize]byte{9}, Data: []byte("ct")}
	raw, err := env.MarshalBinary()
	require.NoError(err)
	require.Len(raw, EncryptionNonceSize+2)

	var dec ResultEnvelopeAESGCM
	require.NoError(dec.UnmarshalBinary(raw))
	require.Equal(env, dec)
	require.ErrorIs(dec.UnmarshalBinary(raw[:5]), ErrMalformedTransaction)

	require.Equal("plain", CallFormatPlain.String())
	require.Equal("[unknown]", CallFormat(9).String())
}

func TestTransactionLargeIntegers(t *testing.T) {
	require := require.New(t)

	signer := newTestSigner(t, testAliceSK)
	for _, version := range []MessageVersion{MessageVersionPlain, MessageVersionTypedData} {
		tx := newTestTx(t)
		tx.MessageVersion = version
		tx.Nonce = math.MaxUint64
		tx.Gas = math.MaxUint64
		tx.ExpiresAtBlock = math.MaxUint64

		msg := tx.TypedData().Message
		for _, field := range []string{"nonce", "gasLimit", "expiresAtBlock"} {
			v, ok := msg[field].(*gethMath.HexOrDecimal256)
			require.True(ok, field)
			require.Equal(uint64(math.MaxUint64), (*big.Int)(v).Uint64(), field)
			require.Equal(1, (*big.Int)(v).Sign(), field)
		}

		stx, err := tx.Sign(signer)
		require.NoError(err, "Sign %s", version)
		sender, err := stx.Sender()
		require.NoError(err)
		require.Equal(signer.Public().Address(), sender)

		// Setting the top bit of a field must change the digest.
		other := tx.Copy()
		other.ExpiresAtBlock = math.MaxUint64 >> 1
		h1, err := tx.SigningHash()
		require.NoError(err)
		h2, err := other.SigningHash()
		require.NoError(err)
		require.NotEqual(h1, h2, version.String())
	}
}

func TestTransactionHashUnencodable(t *testing.T) {
	require := require.New(t)

	signer := newTestSigner(t, testAliceSK)
	tx := newTestTx(t)
	tx.Value = big.NewInt(-1)
	_, err := tx.Sign(signer)
	require.Error(err, "negative values cannot be encoded")

	stx, err := newTestTx(t).Sign(signer)
	require.NoError(err)
	require.NotEqual(common.Hash{}, stx.Hash())

	broken := &SignedTxSeismic{Tx: *newTestTx(t), V: big.NewInt(0), R: big.NewInt(-1), S: big.NewInt(1)}
	_, err = broken.MarshalBinary()
	require.Error(err)
	require.Equal(common.Hash{}, broken.Hash())
}
