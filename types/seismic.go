package types

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

const (
	// TxSeismicType is the EIP-2718 type byte of shielded transactions.
	TxSeismicType = 0x4A

	// EncryptionPubkeySize is the size of a compressed secp256k1 public key.
	EncryptionPubkeySize = 33
	// EncryptionNonceSize is the size of the AES-GCM nonce.
	EncryptionNonceSize = 12
)

// MessageVersion selects what a shielded transaction signature is computed over.
type MessageVersion uint8

const (
	// MessageVersionPlain signs the keccak256 hash of the typed unsigned transaction encoding.
	MessageVersionPlain = MessageVersion(0)
	// MessageVersionTypedData signs an EIP-712 typed data hash of the transaction.
	MessageVersionTypedData = MessageVersion(2)
)

// String returns a string representation of the message version.
func (mv MessageVersion) String() string {
	switch mv {
	case MessageVersionPlain:
		return "plain"
	case MessageVersionTypedData:
		return "eip712"
	default:
		return fmt.Sprintf("[unknown: %d]", uint8(mv))
	}
}

// ValidateBasic checks that the message version is supported.
//
// Version 1 is reserved and rejected.
func (mv MessageVersion) ValidateBasic() error {
	switch mv {
	case MessageVersionPlain, MessageVersionTypedData:
		return nil
	default:
		return fmt.Errorf("%w: %d", ErrUnsupportedMessageVersion, uint8(mv))
	}
}

// SeismicElements are the shielding-specific fields of a transaction.
type SeismicElements struct {
	// EncryptionPubkey is the client's session public key (compressed).
	EncryptionPubkey [EncryptionPubkeySize]byte `json:"encryption_pubkey"`
	// EncryptionNonce is the AES-GCM nonce the input was sealed under.
	EncryptionNonce [EncryptionNonceSize]byte `json:"encryption_nonce"`
	// MessageVersion selects the signing mode.
	MessageVersion MessageVersion `json:"message_version"`
	// RecentBlockHash proves the transaction was built against a recent chain head.
	RecentBlockHash common.Hash `json:"recent_block_hash"`
	// ExpiresAtBlock is the last block height at which the transaction may be executed.
	ExpiresAtBlock uint64 `json:"expires_at_block"`
	// SignedRead is true for identity-proving read-only calls.
	SignedRead bool `json:"signed_read"`
}

// ValidateRecentBlockHash returns true iff RecentBlockHash is in the given recent block window.
func (se *SeismicElements) ValidateRecentBlockHash(recentBlocks []common.Hash) bool {
	for _, h := range recentBlocks {
		if h == se.RecentBlockHash {
			return true
		}
	}
	return false
}

// ValidateExpiration returns true iff the transaction has not expired at the given block.
func (se *SeismicElements) ValidateExpiration(currentBlock uint64) bool {
	return currentBlock <= se.ExpiresAtBlock
}

// Validate performs the combined freshness validation that must pass before execution.
func (se *SeismicElements) Validate(currentBlock uint64, recentBlocks []common.Hash) error {
	if !se.ValidateExpiration(currentBlock) {
		return fmt.Errorf("%w: current block %d, expires at %d", ErrExpiredTransaction, currentBlock, se.ExpiresAtBlock)
	}
	if !se.ValidateRecentBlockHash(recentBlocks) {
		return fmt.Errorf("%w: %s", ErrStaleBlockHash, se.RecentBlockHash)
	}
	return nil
}

// ValidateBasic performs stateless validation of the elements given the height at which the
// recent block hash was observed.
func (se *SeismicElements) ValidateBasic(recentBlockNumber uint64) error {
	if err := se.MessageVersion.ValidateBasic(); err != nil {
		return err
	}
	if se.ExpiresAtBlock <= recentBlockNumber {
		return fmt.Errorf("%w: expires at %d, not after recent block %d", ErrMalformedTransaction, se.ExpiresAtBlock, recentBlockNumber)
	}
	return nil
}
