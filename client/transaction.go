package client

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/oasisprotocol/oasis-core/go/common/logging"

	"github.com/SeismicSystems/seismic-go/callformat"
	"github.com/SeismicSystems/seismic-go/crypto/signature"
	"github.com/SeismicSystems/seismic-go/types"
)

// DefaultGasLimit is the gas limit used when none is configured.
const DefaultGasLimit = 1_000_000

// TransactionBuilder is a helper for building and submitting transactions.
//
// A builder moves through the states Building, Encrypted, Signed and Submitted and ends in one of
// Accepted, Rejected or Expired. Builders using the plain call format skip the Encrypted state and
// produce transparent legacy transactions.
type TransactionBuilder struct {
	rc    RuntimeClient
	tx    *types.TxSeismic
	state types.TxState

	from         *common.Address
	nonceSet     bool
	managedNonce bool
	nonces       *NonceManager
	expiresIn  uint64
	signedRead bool
	version    types.MessageVersion

	callFormat types.CallFormat
	callMeta   interface{}

	signed *types.SignedTxSeismic
	legacy *ethTypes.Transaction
	hash   common.Hash

	logger *logging.Logger
}

// NewTransactionBuilder creates a new transaction builder.
//
// A nil recipient creates a contract.
func NewTransactionBuilder(rc RuntimeClient, to *common.Address, value *big.Int, data []byte) *TransactionBuilder {
	if value == nil {
		value = new(big.Int)
	}
	return &TransactionBuilder{
		rc: rc,
		tx: &types.TxSeismic{
			To:    to,
			Value: value,
			Input: data,
		},
		state:  types.TxStateBuilding,
		logger: logging.GetLogger("client/transaction"),
	}
}

// SetFrom configures the sending account. It is required before the call format is set.
func (tb *TransactionBuilder) SetFrom(from common.Address) *TransactionBuilder {
	tb.from = &from
	return tb
}

// SetGas configures the maximum gas amount that can be used by the transaction.
func (tb *TransactionBuilder) SetGas(gas uint64) *TransactionBuilder {
	tb.tx.Gas = gas
	return tb
}

// SetGasPrice configures the gas price. If unset, the node's suggested price is used.
func (tb *TransactionBuilder) SetGasPrice(price *big.Int) *TransactionBuilder {
	tb.tx.GasPrice = price
	return tb
}

// SetNonce configures the account nonce. If unset, the nonce manager or the network is used.
func (tb *TransactionBuilder) SetNonce(nonce uint64) *TransactionBuilder {
	tb.tx.Nonce = nonce
	tb.nonceSet = true
	return tb
}

// SetNonceManager configures the nonce manager used to allocate nonces for writes.
func (tb *TransactionBuilder) SetNonceManager(nm *NonceManager) *TransactionBuilder {
	tb.nonces = nm
	return tb
}

// SetMessageVersion configures the signing mode of shielded transactions.
func (tb *TransactionBuilder) SetMessageVersion(version types.MessageVersion) *TransactionBuilder {
	tb.version = version
	return tb
}

// SetExpiresIn configures the number of blocks after the recent block at which the transaction
// expires.
func (tb *TransactionBuilder) SetExpiresIn(blocks uint64) *TransactionBuilder {
	tb.expiresIn = blocks
	return tb
}

// SetSignedRead marks the transaction as a signed read.
func (tb *TransactionBuilder) SetSignedRead(signedRead bool) *TransactionBuilder {
	tb.signedRead = signedRead
	return tb
}

// State returns the current state of the transaction.
func (tb *TransactionBuilder) State() types.TxState {
	return tb.state
}

// GetTransaction returns the underlying unsigned transaction.
func (tb *TransactionBuilder) GetTransaction() *types.TxSeismic {
	return tb.tx
}

// SignedTransaction returns the signed shielded transaction, if any.
func (tb *TransactionBuilder) SignedTransaction() *types.SignedTxSeismic {
	return tb.signed
}

// LegacyTransaction returns the signed transparent transaction, if any.
func (tb *TransactionBuilder) LegacyTransaction() *ethTypes.Transaction {
	return tb.legacy
}

// Hash returns the hash of the submitted transaction.
func (tb *TransactionBuilder) Hash() common.Hash {
	return tb.hash
}

func (tb *TransactionBuilder) transition(to types.TxState) {
	tb.logger.Debug("transaction state transition",
		"from", tb.state,
		"to", to,
		"format", tb.callFormat,
	)
	tb.state = to
}

// fail moves the builder into the terminal state matching a node rejection.
//
// A rejected transaction never consumed its nonce, so a managed nonce is given back and the
// account is re-synchronized with the network. Transport errors leave the state unchanged so that
// the operation can be retried.
func (tb *TransactionBuilder) fail(err error) error {
	var rpcErr rpc.Error
	switch {
	case types.IsFreshnessError(err):
		tb.transition(types.TxStateExpired)
	case errors.Is(err, types.ErrAuthenticationFailure), errors.As(err, &rpcErr):
		tb.transition(types.TxStateRejected)
	default:
		return err
	}
	if tb.managedNonce {
		tb.releaseNonce()
		tb.nonces.Reset(*tb.from)
	}
	return err
}

// allocateNonce assigns the account nonce unless one was set explicitly.
//
// Writes with a nonce manager draw from it. Reads and unmanaged writes use the network nonce.
func (tb *TransactionBuilder) allocateNonce(ctx context.Context) error {
	if tb.nonceSet {
		return nil
	}

	var (
		nonce uint64
		err   error
	)
	managed := tb.nonces != nil && !tb.signedRead
	if managed {
		nonce, err = tb.nonces.Next(ctx, *tb.from)
	} else {
		// Reads do not consume a nonce.
		nonce, err = tb.rc.NonceAt(ctx, *tb.from)
	}
	if err != nil {
		return fmt.Errorf("client: failed to determine nonce: %w", err)
	}
	tb.tx.Nonce = nonce
	tb.nonceSet = true
	tb.managedNonce = managed
	return nil
}

// releaseNonce gives a managed nonce back to the nonce manager.
func (tb *TransactionBuilder) releaseNonce() {
	if !tb.managedNonce {
		return
	}
	tb.nonces.Release(*tb.from, tb.tx.Nonce)
	tb.managedNonce = false
	tb.nonceSet = false
}

// Discard abandons a transaction that has not been submitted.
//
// A nonce drawn from the nonce manager is given back and the builder moves to Rejected.
func (tb *TransactionBuilder) Discard() {
	switch tb.state {
	case types.TxStateBuilding, types.TxStateEncrypted, types.TxStateSigned:
	default:
		return
	}
	tb.releaseNonce()
	tb.transition(types.TxStateRejected)
}

// prepare fills in the network-dependent fields of the transaction except for the nonce.
func (tb *TransactionBuilder) prepare(ctx context.Context) error {
	if tb.from == nil {
		return fmt.Errorf("client: sender not set")
	}

	chainID, err := tb.rc.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("client: failed to fetch chain id: %w", err)
	}
	tb.tx.ChainID = chainID

	if tb.tx.GasPrice == nil {
		price, err := tb.rc.GasPrice(ctx)
		if err != nil {
			return fmt.Errorf("client: failed to fetch gas price: %w", err)
		}
		tb.tx.GasPrice = price
	}
	if tb.tx.Gas == 0 {
		tb.tx.Gas = DefaultGasLimit
	}
	return nil
}

// SetCallFormat changes the transaction's call format.
//
// For encrypted call formats this fetches the chain id, nonce, gas price and a recent block from
// the network, derives the session key and encrypts the calldata.
//
// This method can only be called in the Building state.
func (tb *TransactionBuilder) SetCallFormat(ctx context.Context, format types.CallFormat, session *Session) error {
	if tb.state != types.TxStateBuilding || tb.callFormat != types.CallFormatPlain {
		return fmt.Errorf("client: can only change call format while building a plain transaction")
	}

	switch format {
	case types.CallFormatPlain:
		return nil
	case types.CallFormatEncryptedAESGCM:
		if session == nil {
			return fmt.Errorf("client: session required for call format %s", format)
		}
	default:
		return fmt.Errorf("client: unsupported call format: %s", format)
	}

	if err := tb.version.ValidateBasic(); err != nil {
		return err
	}
	if err := tb.prepare(ctx); err != nil {
		return err
	}
	state, err := session.State(ctx)
	if err != nil {
		return err
	}
	recent, err := tb.rc.GetBlock(ctx, BlockLatest)
	if err != nil {
		return fmt.Errorf("client: failed to fetch recent block: %w", err)
	}

	// The nonce is bound into the encryption metadata, so it is allocated last.
	if err = tb.allocateNonce(ctx); err != nil {
		return err
	}
	encoded, meta, err := callformat.EncodeCall(tb.tx, *tb.from, format, &callformat.EncodeConfig{
		State:             state,
		RecentBlockHash:   recent.Hash,
		RecentBlockNumber: uint64(recent.Number),
		ExpiresIn:         tb.expiresIn,
		MessageVersion:    tb.version,
		SignedRead:        tb.signedRead,
		Nonces:            session.Nonces(),
	})
	if err != nil {
		tb.releaseNonce()
		return err
	}

	tb.tx = encoded
	tb.callFormat = format
	tb.callMeta = meta
	tb.transition(types.TxStateEncrypted)
	return nil
}

// AppendSign signs the transaction.
//
// Shielded transactions must be signed by the sender they were encrypted for.
func (tb *TransactionBuilder) AppendSign(ctx context.Context, signer signature.Signer) error {
	switch tb.state {
	case types.TxStateEncrypted:
		if signer.Public().Address() != *tb.from {
			return fmt.Errorf("client: signer %s does not match sender %s", signer.Public().Address(), tb.from)
		}
		signed, err := tb.tx.Sign(signer)
		if err != nil {
			// The encrypted input is bound to the nonce, so the builder cannot be reused.
			tb.Discard()
			return fmt.Errorf("client: failed to sign transaction: %w", err)
		}
		tb.signed = signed
	case types.TxStateBuilding:
		if tb.from == nil {
			tb.SetFrom(signer.Public().Address())
		}
		if signer.Public().Address() != *tb.from {
			return fmt.Errorf("client: signer %s does not match sender %s", signer.Public().Address(), tb.from)
		}
		if err := tb.prepare(ctx); err != nil {
			return err
		}
		if err := tb.allocateNonce(ctx); err != nil {
			return err
		}
		legacy, err := tb.signLegacy(signer)
		if err != nil {
			tb.releaseNonce()
			return err
		}
		tb.legacy = legacy
	default:
		return fmt.Errorf("client: cannot sign transaction in state %s", tb.state)
	}

	tb.transition(types.TxStateSigned)
	return nil
}

func (tb *TransactionBuilder) signLegacy(signer signature.Signer) (*ethTypes.Transaction, error) {
	tx := ethTypes.NewTx(&ethTypes.LegacyTx{
		Nonce:    tb.tx.Nonce,
		GasPrice: tb.tx.GasPrice,
		Gas:      tb.tx.Gas,
		To:       tb.tx.To,
		Value:    tb.tx.Value,
		Data:     tb.tx.Input,
	})
	ethSigner := ethTypes.LatestSignerForChainID(tb.tx.ChainID)
	digest := ethSigner.Hash(tx)
	sig, err := signer.SignDigest(digest[:])
	if err != nil {
		return nil, fmt.Errorf("client: failed to sign transaction: %w", err)
	}
	signed, err := tx.WithSignature(ethSigner, sig)
	if err != nil {
		return nil, fmt.Errorf("client: failed to sign transaction: %w", err)
	}
	return signed, nil
}

func (tb *TransactionBuilder) rawTransaction() ([]byte, error) {
	switch {
	case tb.signed != nil:
		return tb.signed.MarshalBinary()
	case tb.legacy != nil:
		return tb.legacy.MarshalBinary()
	default:
		return nil, fmt.Errorf("client: unable to submit unsigned transaction")
	}
}

// SubmitTx submits the signed transaction to the network and returns its hash.
func (tb *TransactionBuilder) SubmitTx(ctx context.Context) (common.Hash, error) {
	if tb.state != types.TxStateSigned {
		return common.Hash{}, fmt.Errorf("client: cannot submit transaction in state %s", tb.state)
	}
	if tb.signedRead {
		return common.Hash{}, fmt.Errorf("client: signed reads cannot be submitted")
	}
	raw, err := tb.rawTransaction()
	if err != nil {
		return common.Hash{}, err
	}

	hash, err := tb.rc.SendRawTransaction(ctx, raw)
	if err != nil {
		return common.Hash{}, tb.fail(err)
	}
	out, err := callformat.DecodeResult(hash.Bytes(), tb.callMeta)
	if err != nil {
		return common.Hash{}, err
	}

	tb.hash = common.BytesToHash(out)
	tb.transition(types.TxStateSubmitted)
	return tb.hash, nil
}

// SubmitTxWait submits the signed transaction and waits for its receipt.
//
// A reverted transaction ends in the Rejected state and its receipt is returned alongside the
// error.
func (tb *TransactionBuilder) SubmitTxWait(ctx context.Context) (*ethTypes.Receipt, error) {
	hash, err := tb.SubmitTx(ctx)
	if err != nil {
		return nil, err
	}
	receipt, err := WaitForReceipt(ctx, tb.rc, hash)
	if err != nil {
		return nil, fmt.Errorf("client: failed to wait for receipt: %w", err)
	}
	if receipt.Status != ethTypes.ReceiptStatusSuccessful {
		tb.transition(types.TxStateRejected)
		return receipt, fmt.Errorf("client: transaction %s reverted", hash)
	}
	tb.transition(types.TxStateAccepted)
	return receipt, nil
}

// SimulateCall executes the transaction as a read-only call and returns its decoded output.
//
// Signed reads are executed as signed raw transactions and their encrypted result is decrypted.
// Plain transactions are executed as unsigned calls and need not be signed.
func (tb *TransactionBuilder) SimulateCall(ctx context.Context) ([]byte, error) {
	var (
		out []byte
		err error
	)
	prev := tb.state
	switch {
	case tb.state == types.TxStateSigned && tb.signed != nil:
		var raw []byte
		if raw, err = tb.signed.MarshalBinary(); err != nil {
			return nil, err
		}
		tb.transition(types.TxStateSubmitted)
		out, err = tb.rc.CallRaw(ctx, raw)
	case tb.callFormat == types.CallFormatPlain && (tb.state == types.TxStateBuilding || tb.state == types.TxStateSigned):
		msg := ethereum.CallMsg{
			To:    tb.tx.To,
			Gas:   tb.tx.Gas,
			Value: tb.tx.Value,
			Data:  tb.tx.Input,
		}
		if tb.from != nil {
			msg.From = *tb.from
		}
		tb.transition(types.TxStateSubmitted)
		out, err = tb.rc.Call(ctx, msg)
	default:
		return nil, fmt.Errorf("client: cannot simulate transaction in state %s", tb.state)
	}
	if err != nil {
		err = tb.fail(err)
		if tb.state == types.TxStateSubmitted {
			// Nothing was executed, so the call can be retried.
			tb.transition(prev)
		}
		return nil, err
	}

	if out, err = callformat.DecodeResult(out, tb.callMeta); err != nil {
		tb.transition(types.TxStateRejected)
		return nil, err
	}
	tb.transition(types.TxStateAccepted)
	return out, nil
}
