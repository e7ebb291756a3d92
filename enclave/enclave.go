// Package enclave implements the network side of the shielded transaction protocol.
//
// An Enclave holds the network encryption key. It authenticates incoming shielded transactions,
// enforces their freshness, decrypts their calldata and encrypts signed read results back to the
// caller.
package enclave

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/oasisprotocol/oasis-core/go/common/logging"

	"github.com/SeismicSystems/seismic-go/callformat"
	"github.com/SeismicSystems/seismic-go/crypto/keyexchange"
	"github.com/SeismicSystems/seismic-go/types"
)

// Enclave is the holder of the network encryption key.
type Enclave struct {
	kp      *keyexchange.KeyPair
	chainID uint64
	rng     io.Reader

	logger *logging.Logger
}

// Opened is an authenticated and decrypted shielded transaction.
type Opened struct {
	// Tx is the transaction as submitted.
	Tx *types.SignedTxSeismic
	// Sender is the recovered sender of the transaction.
	Sender common.Address
	// Input is the decrypted calldata.
	Input []byte
	// Metadata is the encryption metadata of the transaction.
	Metadata *types.TxSeismicMetadata

	key [keyexchange.AESKeySize]byte
}

// New creates an enclave for the given chain using the given network private key.
func New(sk []byte, chainID uint64) (*Enclave, error) {
	kp, err := keyexchange.NewKeyPair(sk)
	if err != nil {
		return nil, fmt.Errorf("enclave: %w", err)
	}
	return &Enclave{
		kp:      kp,
		chainID: chainID,
		rng:     rand.Reader,
		logger:  logging.GetLogger("enclave"),
	}, nil
}

// Generate creates an enclave for the given chain with a fresh random network key.
func Generate(chainID uint64) (*Enclave, error) {
	kp, err := keyexchange.GenerateKeyPair(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("enclave: %w", err)
	}
	return New(kp.PrivateKey[:], chainID)
}

// PublicKey returns the network encryption public key.
func (e *Enclave) PublicKey() [keyexchange.PublicKeySize]byte {
	return e.kp.PublicKey
}

// ChainID returns the chain the enclave accepts transactions for.
func (e *Enclave) ChainID() uint64 {
	return e.chainID
}

// Open authenticates, validates and decrypts a shielded transaction.
//
// The head is the current block height and recent the window of recent block hashes. Freshness
// failures are rejections with types.ErrExpiredTransaction or types.ErrStaleBlockHash.
func (e *Enclave) Open(stx *types.SignedTxSeismic, head uint64, recent []common.Hash) (*Opened, error) {
	opened, err := e.open(stx, head, recent)
	if err != nil {
		e.logger.Warn("rejecting shielded transaction",
			"hash", stx.Hash(),
			"err", err,
		)
		return nil, err
	}

	e.logger.Debug("opened shielded transaction",
		"hash", stx.Hash(),
		"sender", opened.Sender,
		"nonce", stx.Tx.Nonce,
		"signed_read", stx.Tx.SignedRead,
	)
	return opened, nil
}

func (e *Enclave) open(stx *types.SignedTxSeismic, head uint64, recent []common.Hash) (*Opened, error) {
	if stx.Tx.ChainID == nil || !stx.Tx.ChainID.IsUint64() || stx.Tx.ChainID.Uint64() != e.chainID {
		return nil, fmt.Errorf("enclave: %w: wrong chain id %v", types.ErrMalformedTransaction, stx.Tx.ChainID)
	}

	sender, err := stx.Sender()
	if err != nil {
		return nil, fmt.Errorf("enclave: invalid signature: %w", err)
	}

	if err = stx.Tx.Validate(head, recent); err != nil {
		return nil, fmt.Errorf("enclave: %w", err)
	}

	key, err := keyexchange.DeriveSharedKey(e.kp.PrivateKey[:], stx.Tx.EncryptionPubkey[:])
	if err != nil {
		return nil, fmt.Errorf("enclave: %w", err)
	}

	input, md, err := callformat.DecodeCall(key, sender, &stx.Tx)
	if err != nil {
		return nil, fmt.Errorf("enclave: %w", err)
	}

	return &Opened{
		Tx:       stx,
		Sender:   sender,
		Input:    input,
		Metadata: md,
		key:      key,
	}, nil
}

// SealResponse prepares the output of an opened transaction for returning to the caller.
//
// Signed read results are encrypted back to the caller, other outputs are returned unchanged.
func (e *Enclave) SealResponse(opened *Opened, output []byte) ([]byte, error) {
	if !opened.Metadata.SignedRead {
		return output, nil
	}
	sealed, err := callformat.EncodeResult(opened.key, opened.Metadata, output, e.rng)
	if err != nil {
		return nil, fmt.Errorf("enclave: failed to seal response: %w", err)
	}
	return sealed, nil
}
