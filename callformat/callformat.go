package callformat

import (
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"

	"github.com/SeismicSystems/seismic-go/crypto/keyexchange"
	"github.com/SeismicSystems/seismic-go/types"
)

// DefaultExpiresIn is the default number of blocks after the recent block at which a shielded
// transaction expires.
const DefaultExpiresIn = 100

// EncodeConfig is call encoding configuration.
type EncodeConfig struct {
	// State is the client's encryption session. It is required for encrypted call formats.
	State *keyexchange.EncryptionState

	// RecentBlockHash is the hash of a recent block the transaction is anchored to.
	RecentBlockHash common.Hash
	// RecentBlockNumber is the height of the block with RecentBlockHash.
	RecentBlockNumber uint64
	// ExpiresIn is the number of blocks after RecentBlockNumber at which the transaction expires.
	ExpiresIn uint64

	// MessageVersion selects the signing mode.
	MessageVersion types.MessageVersion
	// SignedRead marks the call as a signed read whose result is encrypted back to the caller.
	SignedRead bool

	// Nonce optionally overrides the encryption nonce. It should only be set in tests.
	Nonce *[types.EncryptionNonceSize]byte
	// Nonces optionally tracks used nonces and rejects reuse.
	Nonces *NonceTracker
	// Rand is the nonce entropy source. If nil, crypto/rand is used.
	Rand io.Reader
}

type metaEncryptedAESGCM struct {
	// key is the session AES key.
	key [keyexchange.AESKeySize]byte
	// md is the metadata the call was encrypted under.
	md *types.TxSeismicMetadata
}

// EncodeCall encodes a transaction based on its configured call format.
//
// The transaction's chain id, nonce, recipient and value are bound into the encryption and must
// not change afterwards. It returns the encoded transaction and any metadata needed to
// successfully decode the result.
func EncodeCall(
	tx *types.TxSeismic,
	sender common.Address,
	cf types.CallFormat,
	cfg *EncodeConfig,
) (*types.TxSeismic, interface{}, error) {
	switch cf {
	case types.CallFormatPlain:
		// In case of the plain-text data format, we simply pass on the call unchanged.
		return tx, nil, nil
	case types.CallFormatEncryptedAESGCM:
		// We require the encryption session to be configured.
		if cfg == nil || cfg.State == nil {
			return nil, nil, fmt.Errorf("callformat: encryption state not set")
		}

		var nonce [types.EncryptionNonceSize]byte
		switch cfg.Nonce {
		case nil:
			var err error
			if nonce, err = NewEncryptionNonce(cfg.Rand); err != nil {
				return nil, nil, err
			}
		default:
			nonce = *cfg.Nonce
		}
		if cfg.Nonces != nil {
			if err := cfg.Nonces.Use(cfg.State.AESKey, nonce); err != nil {
				return nil, nil, err
			}
		}

		expiresIn := cfg.ExpiresIn
		if expiresIn == 0 {
			expiresIn = DefaultExpiresIn
		}

		encoded := tx.Copy()
		encoded.SeismicElements = types.SeismicElements{
			EncryptionPubkey: cfg.State.ClientPublicKey,
			EncryptionNonce:  nonce,
			MessageVersion:   cfg.MessageVersion,
			RecentBlockHash:  cfg.RecentBlockHash,
			ExpiresAtBlock:   cfg.RecentBlockNumber + expiresIn,
			SignedRead:       cfg.SignedRead,
		}
		if err := encoded.ValidateBasic(cfg.RecentBlockNumber); err != nil {
			return nil, nil, fmt.Errorf("callformat: %w", err)
		}

		md := types.NewTxSeismicMetadata(sender, encoded)
		ciphertext, err := Encrypt(cfg.State, tx.Input, nonce, md)
		if err != nil {
			return nil, nil, err
		}
		encoded.Input = ciphertext

		meta := &metaEncryptedAESGCM{
			key: cfg.State.AESKey,
			md:  md,
		}
		return encoded, meta, nil
	default:
		return nil, nil, fmt.Errorf("callformat: unsupported call format: %s", cf)
	}
}

// DecodeResult performs result decoding based on the specified call format metadata.
//
// Results of encrypted signed reads are opened with the session key. Results of encrypted writes
// (transaction hashes) are public and returned unchanged.
func DecodeResult(output []byte, meta interface{}) ([]byte, error) {
	switch m := meta.(type) {
	case nil:
		// In case of plain-text data format, we simply pass on the result unchanged.
		return output, nil
	case *metaEncryptedAESGCM:
		if !m.md.SignedRead {
			return output, nil
		}

		var envelope types.ResultEnvelopeAESGCM
		if err := envelope.UnmarshalBinary(output); err != nil {
			return nil, fmt.Errorf("callformat: malformed result envelope: %w", err)
		}
		pt, err := DecryptWithKey(m.key, envelope.Data, envelope.Nonce, m.md)
		if err != nil {
			return nil, fmt.Errorf("callformat: failed to open result envelope: %w", err)
		}
		return pt, nil
	default:
		return nil, fmt.Errorf("callformat: unsupported call format: %T", m)
	}
}

// DecodeCall decrypts the input of a shielded transaction on the receiving side.
//
// The key is the AES key derived from the network private key and the transaction's
// encryption public key.
func DecodeCall(key [keyexchange.AESKeySize]byte, sender common.Address, tx *types.TxSeismic) ([]byte, *types.TxSeismicMetadata, error) {
	md := types.NewTxSeismicMetadata(sender, tx)
	pt, err := DecryptWithKey(key, tx.Input, tx.EncryptionNonce, md)
	if err != nil {
		return nil, nil, fmt.Errorf("callformat: failed to open call: %w", err)
	}
	return pt, md, nil
}

// EncodeResult seals a signed read result on the receiving side under a fresh nonce.
func EncodeResult(key [keyexchange.AESKeySize]byte, md *types.TxSeismicMetadata, output []byte, rng io.Reader) ([]byte, error) {
	nonce, err := NewEncryptionNonce(rng)
	if err != nil {
		return nil, err
	}
	ct, err := EncryptWithKey(key, output, nonce, md)
	if err != nil {
		return nil, err
	}
	envelope := types.ResultEnvelopeAESGCM{
		Nonce: nonce,
		Data:  ct,
	}
	return envelope.MarshalBinary()
}
