// Package secp256k1 implements the secp256k1 signature scheme used by Ethereum accounts.
package secp256k1

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"

	sdkSignature "github.com/SeismicSystems/seismic-go/crypto/signature"
)

// PublicKey is a Secp256k1 public key.
type PublicKey btcec.PublicKey

// MarshalBinary encodes a public key into its compressed binary form.
func (pk PublicKey) MarshalBinary() ([]byte, error) {
	bpk := btcec.PublicKey(pk)
	return bpk.SerializeCompressed(), nil
}

// MarshalBinaryUncompressedUntagged encodes a public key into its uncompressed binary form
// without the leading 0x04 tag.
func (pk PublicKey) MarshalBinaryUncompressedUntagged() []byte {
	bpk := btcec.PublicKey(pk)
	return bpk.SerializeUncompressed()[1:]
}

// UnmarshalBinary decodes a binary marshaled public key.
func (pk *PublicKey) UnmarshalBinary(data []byte) error {
	parsedPK, err := btcec.ParsePubKey(data)
	if err != nil {
		return err
	}
	*pk = PublicKey(*parsedPK)
	return nil
}

// MarshalText encodes a public key into text form.
func (pk PublicKey) MarshalText() ([]byte, error) {
	serialized, _ := pk.MarshalBinary()
	return []byte(hexutil.Encode(serialized)), nil
}

// UnmarshalText decodes a text marshaled public key.
func (pk *PublicKey) UnmarshalText(text []byte) error {
	decodedPK, err := hexutil.Decode(string(text))
	if err != nil {
		return err
	}
	return pk.UnmarshalBinary(decodedPK)
}

// String returns a string representation of the public key.
func (pk PublicKey) String() string {
	str, _ := pk.MarshalText()
	return string(str)
}

// Equal compares vs another public key for equality.
func (pk PublicKey) Equal(other sdkSignature.PublicKey) bool {
	opk, ok := other.(PublicKey)
	if !ok {
		return false
	}
	obpk := btcec.PublicKey(opk)
	bpk := btcec.PublicKey(pk)
	return bpk.IsEqual(&obpk)
}

// Address returns the Ethereum address of the public key.
func (pk PublicKey) Address() common.Address {
	return common.BytesToAddress(crypto.Keccak256(pk.MarshalBinaryUncompressedUntagged())[12:])
}

// Verify returns true iff the R || S || V signature is valid for the public key over the digest.
func (pk PublicKey) Verify(digest, signature []byte) bool {
	if len(digest) != 32 || len(signature) != sdkSignature.SignatureSize {
		return false
	}
	if signature[64] > 1 {
		return false
	}
	bpk := btcec.PublicKey(pk)
	return crypto.VerifySignature(bpk.SerializeUncompressed(), digest, signature[:64])
}

// NewPublicKey creates a new public key from its compressed or uncompressed binary form.
func NewPublicKey(data []byte) (PublicKey, error) {
	var pk PublicKey
	if err := pk.UnmarshalBinary(data); err != nil {
		return PublicKey{}, fmt.Errorf("secp256k1: malformed public key: %w", err)
	}
	return pk, nil
}

// RecoverPublicKey recovers the public key that produced the R || S || V signature over the
// given digest.
func RecoverPublicKey(digest, signature []byte) (PublicKey, error) {
	if len(signature) != sdkSignature.SignatureSize {
		return PublicKey{}, fmt.Errorf("secp256k1: invalid signature length %d", len(signature))
	}
	raw, err := crypto.Ecrecover(digest, signature)
	if err != nil {
		return PublicKey{}, fmt.Errorf("secp256k1: failed to recover public key: %w", err)
	}
	return NewPublicKey(raw)
}
