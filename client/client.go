// Package client implements a JSON-RPC client for Seismic nodes and helpers for building and
// submitting shielded transactions.
package client

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/oasisprotocol/oasis-core/go/common/logging"

	"github.com/SeismicSystems/seismic-go/crypto/keyexchange"
	"github.com/SeismicSystems/seismic-go/types"
)

// BlockLatest is a special block number always referring to the latest block.
const BlockLatest = rpc.LatestBlockNumber

// Methods not covered by ethclient. Shielded transactions are not go-ethereum transactions and
// block hashes are taken as reported by the node.
const (
	methodGetBlockByNumber   = "eth_getBlockByNumber"
	methodSendRawTransaction = "eth_sendRawTransaction"
	methodCall               = "eth_call"
	methodEnclavePublicKey   = "seismic_getTeePublicKey"

	defaultReceiptPollInterval = time.Second
)

// Block is a block header as returned by the node.
type Block struct {
	Number     hexutil.Uint64 `json:"number"`
	Hash       common.Hash    `json:"hash"`
	ParentHash common.Hash    `json:"parentHash"`
	Timestamp  hexutil.Uint64 `json:"timestamp"`
}

// RuntimeClient is a client interface for Seismic nodes.
type RuntimeClient interface {
	// ChainID returns the chain id of the network.
	ChainID(ctx context.Context) (*big.Int, error)

	// BlockNumber returns the height of the latest block.
	BlockNumber(ctx context.Context) (uint64, error)

	// GetBlock fetches the given block.
	GetBlock(ctx context.Context, number rpc.BlockNumber) (*Block, error)

	// RecentBlockHashes returns the hashes of up to n most recent blocks, newest first.
	RecentBlockHashes(ctx context.Context, n uint64) ([]common.Hash, error)

	// NonceAt returns the next nonce of the account, including pending transactions.
	NonceAt(ctx context.Context, account common.Address) (uint64, error)

	// GasPrice returns the suggested gas price.
	GasPrice(ctx context.Context) (*big.Int, error)

	// EnclavePublicKey returns the network encryption public key.
	EnclavePublicKey(ctx context.Context) ([keyexchange.PublicKeySize]byte, error)

	// SendRawTransaction submits a signed transaction and returns its hash.
	SendRawTransaction(ctx context.Context, raw []byte) (common.Hash, error)

	// CallRaw executes a signed transaction as a read-only call.
	CallRaw(ctx context.Context, raw []byte) ([]byte, error)

	// Call executes a plain read-only call.
	Call(ctx context.Context, msg ethereum.CallMsg) ([]byte, error)

	// TransactionReceipt returns the receipt of the given transaction or ethereum.NotFound.
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*ethTypes.Receipt, error)

	// Close closes the underlying connection.
	Close()
}

type runtimeClient struct {
	rc *rpc.Client
	ec *ethclient.Client

	logger *logging.Logger
}

// decodeError maps node rejections onto the corresponding sentinel errors.
func decodeError(err error) error {
	if err == nil {
		return nil
	}
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		if sentinel := types.ErrorFromCode(rpcErr.ErrorCode()); sentinel != nil {
			return fmt.Errorf("%w: %s", sentinel, rpcErr.Error())
		}
	}
	return err
}

func (rc *runtimeClient) call(ctx context.Context, result interface{}, method string, args ...interface{}) error {
	return decodeError(rc.rc.CallContext(ctx, result, method, args...))
}

// Implements RuntimeClient.
func (rc *runtimeClient) ChainID(ctx context.Context) (*big.Int, error) {
	id, err := rc.ec.ChainID(ctx)
	return id, decodeError(err)
}

// Implements RuntimeClient.
func (rc *runtimeClient) BlockNumber(ctx context.Context) (uint64, error) {
	number, err := rc.ec.BlockNumber(ctx)
	return number, decodeError(err)
}

// Implements RuntimeClient.
func (rc *runtimeClient) GetBlock(ctx context.Context, number rpc.BlockNumber) (*Block, error) {
	var blk *Block
	if err := rc.call(ctx, &blk, methodGetBlockByNumber, number, false); err != nil {
		return nil, err
	}
	if blk == nil {
		return nil, ethereum.NotFound
	}
	return blk, nil
}

// Implements RuntimeClient.
func (rc *runtimeClient) RecentBlockHashes(ctx context.Context, n uint64) ([]common.Hash, error) {
	head, err := rc.GetBlock(ctx, BlockLatest)
	if err != nil {
		return nil, err
	}

	hashes := make([]common.Hash, 0, n)
	hashes = append(hashes, head.Hash)
	for number := uint64(head.Number); uint64(len(hashes)) < n && number > 0; {
		number--
		blk, err := rc.GetBlock(ctx, rpc.BlockNumber(number))
		if err != nil {
			return nil, err
		}
		hashes = append(hashes, blk.Hash)
	}
	return hashes, nil
}

// Implements RuntimeClient.
func (rc *runtimeClient) NonceAt(ctx context.Context, account common.Address) (uint64, error) {
	nonce, err := rc.ec.PendingNonceAt(ctx, account)
	return nonce, decodeError(err)
}

// Implements RuntimeClient.
func (rc *runtimeClient) GasPrice(ctx context.Context) (*big.Int, error) {
	price, err := rc.ec.SuggestGasPrice(ctx)
	return price, decodeError(err)
}

// Implements RuntimeClient.
func (rc *runtimeClient) EnclavePublicKey(ctx context.Context) ([keyexchange.PublicKeySize]byte, error) {
	var (
		raw hexutil.Bytes
		pk  [keyexchange.PublicKeySize]byte
	)
	if err := rc.call(ctx, &raw, methodEnclavePublicKey); err != nil {
		return pk, err
	}
	if _, err := keyexchange.ParsePublicKey(raw); err != nil {
		return pk, fmt.Errorf("client: node returned bad enclave public key: %w", err)
	}
	copy(pk[:], raw)
	return pk, nil
}

// Implements RuntimeClient.
func (rc *runtimeClient) SendRawTransaction(ctx context.Context, raw []byte) (common.Hash, error) {
	var hash common.Hash
	if err := rc.call(ctx, &hash, methodSendRawTransaction, hexutil.Bytes(raw)); err != nil {
		return common.Hash{}, err
	}
	rc.logger.Debug("submitted transaction", "hash", hash)
	return hash, nil
}

// Implements RuntimeClient.
func (rc *runtimeClient) CallRaw(ctx context.Context, raw []byte) ([]byte, error) {
	var out hexutil.Bytes
	if err := rc.call(ctx, &out, methodCall, hexutil.Bytes(raw), BlockLatest); err != nil {
		return nil, err
	}
	return out, nil
}

// Implements RuntimeClient.
func (rc *runtimeClient) Call(ctx context.Context, msg ethereum.CallMsg) ([]byte, error) {
	out, err := rc.ec.CallContract(ctx, msg, nil)
	return out, decodeError(err)
}

// Implements RuntimeClient.
func (rc *runtimeClient) TransactionReceipt(ctx context.Context, txHash common.Hash) (*ethTypes.Receipt, error) {
	receipt, err := rc.ec.TransactionReceipt(ctx, txHash)
	return receipt, decodeError(err)
}

// Implements RuntimeClient.
func (rc *runtimeClient) Close() {
	rc.ec.Close()
}

// WaitForReceipt polls the node until the receipt of the given transaction is available or the
// context is done.
func WaitForReceipt(ctx context.Context, rc RuntimeClient, txHash common.Hash) (*ethTypes.Receipt, error) {
	ticker := time.NewTicker(defaultReceiptPollInterval)
	defer ticker.Stop()

	for {
		receipt, err := rc.TransactionReceipt(ctx, txHash)
		switch {
		case err == nil:
			return receipt, nil
		case errors.Is(err, ethereum.NotFound):
		default:
			return nil, err
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// New creates a new runtime client over the given JSON-RPC connection.
func New(rc *rpc.Client) RuntimeClient {
	return &runtimeClient{
		rc:     rc,
		ec:     ethclient.NewClient(rc),
		logger: logging.GetLogger("client"),
	}
}

// Dial connects to the node at the given JSON-RPC endpoint.
func Dial(ctx context.Context, endpoint string) (RuntimeClient, error) {
	rc, err := rpc.DialContext(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("client: failed to dial %s: %w", endpoint, err)
	}
	return New(rc), nil
}
