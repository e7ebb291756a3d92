package main

import (
	"log"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/SeismicSystems/seismic-go/callformat"
	"github.com/SeismicSystems/seismic-go/crypto/keyexchange"
	"github.com/SeismicSystems/seismic-go/testing"
	"github.com/SeismicSystems/seismic-go/types"
)

const keySeedPrefix = "seismic-go shielded test vectors: "

// ShieldedTestVector is a shielded transaction test vector.
type ShieldedTestVector struct {
	Kind string `json:"kind"`
	// Tx is the unsigned transaction with encrypted input.
	Tx *types.TxSeismic `json:"tx"`
	// Metadata is the encryption context the input is bound to.
	Metadata *types.TxSeismicMetadata `json:"metadata"`

	Plaintext       hexutil.Bytes `json:"plaintext"`
	EncodedAAD      hexutil.Bytes `json:"encoded_aad"`
	SigningHash     common.Hash   `json:"signing_hash"`
	EncodedSignedTx hexutil.Bytes `json:"encoded_signed_tx"`
	TxHash          common.Hash   `json:"tx_hash"`
	// Valid indicates whether the network decrypts the transaction with the given enclave key.
	Valid bool `json:"valid"`

	SignerPrivateKey  hexutil.Bytes `json:"signer_private_key"`
	EnclavePublicKey  hexutil.Bytes `json:"enclave_public_key"`
	EnclavePrivateKey hexutil.Bytes `json:"enclave_private_key"`
	AESKey            hexutil.Bytes `json:"aes_key"`
}

// MakeShieldedTestVector encrypts and signs the transaction with the given signer against the test
// enclave key. The encryption sender is given separately so that mismatched metadata can be
// produced.
func MakeShieldedTestVector(kind string, tx *types.TxSeismic, plaintext []byte, w testing.TestKey, sender common.Address) ShieldedTestVector {
	enclave := testing.EnclaveKey.KeyPair
	tx.EncryptionPubkey = w.KeyPair.PublicKey

	key, err := keyexchange.DeriveSharedKey(w.SecretKey, enclave.PublicKey[:])
	if err != nil {
		log.Fatalf("failed to derive shared key: %v", err)
	}

	md := types.NewTxSeismicMetadata(sender, tx)
	aad, err := md.EncodeAAD()
	if err != nil {
		log.Fatalf("failed to encode aad: %v", err)
	}
	tx.Input, err = callformat.EncryptWithKey(key, plaintext, tx.EncryptionNonce, md)
	if err != nil {
		log.Fatalf("failed to encrypt input: %v", err)
	}

	sigHash, err := tx.SigningHash()
	if err != nil {
		log.Fatalf("failed to compute signing hash: %v", err)
	}
	stx, err := tx.Sign(w.Signer)
	if err != nil {
		log.Fatalf("failed to sign transaction: %v", err)
	}
	encoded, err := stx.MarshalBinary()
	if err != nil {
		log.Fatalf("failed to encode transaction: %v", err)
	}

	// The network binds decryption to the recovered sender.
	recovered, err := stx.Sender()
	if err != nil {
		log.Fatalf("failed to recover sender: %v", err)
	}
	serverKey, err := keyexchange.DeriveSharedKey(enclave.PrivateKey[:], tx.EncryptionPubkey[:])
	if err != nil {
		log.Fatalf("failed to derive shared key: %v", err)
	}
	_, _, decErr := callformat.DecodeCall(serverKey, recovered, &stx.Tx)

	return ShieldedTestVector{
		Kind:              keySeedPrefix + kind,
		Tx:                tx,
		Metadata:          md,
		Plaintext:         plaintext,
		EncodedAAD:        aad,
		SigningHash:       sigHash,
		EncodedSignedTx:   encoded,
		TxHash:            stx.Hash(),
		Valid:             decErr == nil,
		SignerPrivateKey:  w.SecretKey,
		EnclavePublicKey:  enclave.PublicKey[:],
		EnclavePrivateKey: enclave.PrivateKey[:],
		AESKey:            key[:],
	}
}

func newTx(chainID uint64, nonce uint64, to *common.Address, value int64) *types.TxSeismic {
	return &types.TxSeismic{
		ChainID:  new(big.Int).SetUint64(chainID),
		Nonce:    nonce,
		GasPrice: big.NewInt(1_000_000_000),
		Gas:      1_000_000,
		To:       to,
		Value:    big.NewInt(value),
	}
}
