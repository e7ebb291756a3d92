package types

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
)

// LegacyFields are the transaction fields shared with plain Ethereum transactions that are
// bound into the encryption context.
type LegacyFields struct {
	ChainID *big.Int        `json:"chain_id"`
	Nonce   uint64          `json:"nonce"`
	To      *common.Address `json:"to"`
	Value   *big.Int        `json:"value"`
}

// TxSeismicMetadata is the context a shielded transaction's calldata is encrypted under.
//
// Both the encrypting client and the decrypting node derive the same metadata from the
// transaction, so tampering with any bound field makes decryption fail.
type TxSeismicMetadata struct {
	Sender common.Address `json:"sender"`
	LegacyFields
	SeismicElements
}

// aadFields is the flattened RLP layout of the metadata.
type aadFields struct {
	Sender           common.Address
	ChainID          *big.Int
	Nonce            uint64
	To               *common.Address `rlp:"nil"`
	Value            *big.Int
	EncryptionPubkey [EncryptionPubkeySize]byte
	EncryptionNonce  [EncryptionNonceSize]byte
	MessageVersion   MessageVersion
	RecentBlockHash  common.Hash
	ExpiresAtBlock   uint64
	SignedRead       bool
}

// EncodeAAD returns the additional authenticated data for the metadata.
//
// The encoding is the RLP list of sender, chain_id, nonce, to, value, encryption_pubkey,
// encryption_nonce, message_version, recent_block_hash, expires_at_block and signed_read. A nil
// recipient (contract creation) is encoded as the empty string.
func (md *TxSeismicMetadata) EncodeAAD() ([]byte, error) {
	aad, err := rlp.EncodeToBytes(&aadFields{
		Sender:           md.Sender,
		ChainID:          bigOrZero(md.ChainID),
		Nonce:            md.Nonce,
		To:               md.To,
		Value:            bigOrZero(md.Value),
		EncryptionPubkey: md.EncryptionPubkey,
		EncryptionNonce:  md.EncryptionNonce,
		MessageVersion:   md.MessageVersion,
		RecentBlockHash:  md.RecentBlockHash,
		ExpiresAtBlock:   md.ExpiresAtBlock,
		SignedRead:       md.SignedRead,
	})
	if err != nil {
		return nil, fmt.Errorf("metadata: failed to encode aad: %w", err)
	}
	return aad, nil
}

// NewTxSeismicMetadata builds the encryption metadata for a transaction sent by sender.
func NewTxSeismicMetadata(sender common.Address, tx *TxSeismic) *TxSeismicMetadata {
	return &TxSeismicMetadata{
		Sender: sender,
		LegacyFields: LegacyFields{
			ChainID: tx.ChainID,
			Nonce:   tx.Nonce,
			To:      tx.To,
			Value:   tx.Value,
		},
		SeismicElements: tx.SeismicElements,
	}
}

func bigOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
