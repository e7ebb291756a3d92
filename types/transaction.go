package types

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/big"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"github.com/oasisprotocol/oasis-core/go/common/logging"
	"github.com/oasisprotocol/oasis-core/go/common/prettyprint"

	"github.com/SeismicSystems/seismic-go/crypto/signature"
	"github.com/SeismicSystems/seismic-go/crypto/signature/secp256k1"
)

const (
	// TypedDataDomainName is the EIP-712 domain name of shielded transactions.
	TypedDataDomainName = "Seismic Transaction"
	// TypedDataDomainVersion is the EIP-712 domain version of shielded transactions.
	TypedDataDomainVersion = "2"
	// TypedDataPrimaryType is the EIP-712 primary type of shielded transactions.
	TypedDataPrimaryType = "TxSeismic"
)

var (
	_ prettyprint.PrettyPrinter = (*TxSeismic)(nil)
	_ prettyprint.PrettyPrinter = (*SignedTxSeismic)(nil)

	logger = logging.GetLogger("types")
)

// TxSeismic is an unsigned shielded transaction.
type TxSeismic struct {
	ChainID  *big.Int        `json:"chain_id"`
	Nonce    uint64          `json:"nonce"`
	GasPrice *big.Int        `json:"gas_price"`
	Gas      uint64          `json:"gas_limit"`
	To       *common.Address `json:"to"`
	Value    *big.Int        `json:"value"`
	Input    []byte          `json:"input"`

	SeismicElements
}

// txSeismicRLP is the flattened RLP layout of an unsigned transaction.
type txSeismicRLP struct {
	ChainID          *big.Int
	Nonce            uint64
	GasPrice         *big.Int
	Gas              uint64
	To               *common.Address `rlp:"nil"`
	Value            *big.Int
	Input            []byte
	EncryptionPubkey [EncryptionPubkeySize]byte
	EncryptionNonce  [EncryptionNonceSize]byte
	MessageVersion   MessageVersion
	RecentBlockHash  common.Hash
	ExpiresAtBlock   uint64
	SignedRead       bool
}

// signedTxSeismicRLP is the flattened RLP layout of a signed transaction.
type signedTxSeismicRLP struct {
	ChainID          *big.Int
	Nonce            uint64
	GasPrice         *big.Int
	Gas              uint64
	To               *common.Address `rlp:"nil"`
	Value            *big.Int
	Input            []byte
	EncryptionPubkey [EncryptionPubkeySize]byte
	EncryptionNonce  [EncryptionNonceSize]byte
	MessageVersion   MessageVersion
	RecentBlockHash  common.Hash
	ExpiresAtBlock   uint64
	SignedRead       bool
	V                *big.Int
	R                *big.Int
	S                *big.Int
}

func (tx *TxSeismic) toRLP() *txSeismicRLP {
	return &txSeismicRLP{
		ChainID:          bigOrZero(tx.ChainID),
		Nonce:            tx.Nonce,
		GasPrice:         bigOrZero(tx.GasPrice),
		Gas:              tx.Gas,
		To:               tx.To,
		Value:            bigOrZero(tx.Value),
		Input:            tx.Input,
		EncryptionPubkey: tx.EncryptionPubkey,
		EncryptionNonce:  tx.EncryptionNonce,
		MessageVersion:   tx.MessageVersion,
		RecentBlockHash:  tx.RecentBlockHash,
		ExpiresAtBlock:   tx.ExpiresAtBlock,
		SignedRead:       tx.SignedRead,
	}
}

// Copy returns a deep copy of the transaction.
func (tx *TxSeismic) Copy() *TxSeismic {
	cpy := *tx
	if tx.ChainID != nil {
		cpy.ChainID = new(big.Int).Set(tx.ChainID)
	}
	if tx.GasPrice != nil {
		cpy.GasPrice = new(big.Int).Set(tx.GasPrice)
	}
	if tx.Value != nil {
		cpy.Value = new(big.Int).Set(tx.Value)
	}
	if tx.To != nil {
		to := *tx.To
		cpy.To = &to
	}
	cpy.Input = common.CopyBytes(tx.Input)
	return &cpy
}

// EncodeUnsigned returns the typed encoding of the unsigned transaction (0x4A || rlp(fields)).
func (tx *TxSeismic) EncodeUnsigned() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(TxSeismicType)
	if err := rlp.Encode(&buf, tx.toRLP()); err != nil {
		return nil, fmt.Errorf("transaction: failed to encode: %w", err)
	}
	return buf.Bytes(), nil
}

// SigningHash returns the digest that the sender signs, which depends on the message version.
func (tx *TxSeismic) SigningHash() (common.Hash, error) {
	if err := tx.MessageVersion.ValidateBasic(); err != nil {
		return common.Hash{}, err
	}

	switch tx.MessageVersion {
	case MessageVersionTypedData:
		return tx.typedDataHash()
	default:
		raw, err := tx.EncodeUnsigned()
		if err != nil {
			return common.Hash{}, err
		}
		return crypto.Keccak256Hash(raw), nil
	}
}

func hexOrDecimal(v uint64) *math.HexOrDecimal256 {
	return (*math.HexOrDecimal256)(new(big.Int).SetUint64(v))
}

// TypedData returns the EIP-712 representation of the transaction.
func (tx *TxSeismic) TypedData() apitypes.TypedData {
	chainID := math.HexOrDecimal256(*bigOrZero(tx.ChainID))
	gasPrice := math.HexOrDecimal256(*bigOrZero(tx.GasPrice))
	value := math.HexOrDecimal256(*bigOrZero(tx.Value))
	encryptionNonce := math.HexOrDecimal256(*new(big.Int).SetBytes(tx.EncryptionNonce[:]))

	var to common.Address
	if tx.To != nil {
		to = *tx.To
	}

	return apitypes.TypedData{
		Types: map[string][]apitypes.Type{
			"EIP712Domain": {
				{Name: "name", Type: "string"},
				{Name: "version", Type: "string"},
				{Name: "chainId", Type: "uint256"},
				{Name: "verifyingContract", Type: "address"},
			},
			TypedDataPrimaryType: {
				{Name: "chainId", Type: "uint64"},
				{Name: "nonce", Type: "uint64"},
				{Name: "gasPrice", Type: "uint128"},
				{Name: "gasLimit", Type: "uint64"},
				{Name: "to", Type: "address"},
				{Name: "value", Type: "uint256"},
				{Name: "input", Type: "bytes"},
				{Name: "encryptionPubkey", Type: "bytes"},
				{Name: "encryptionNonce", Type: "uint96"},
				{Name: "messageVersion", Type: "uint8"},
				{Name: "recentBlockHash", Type: "bytes32"},
				{Name: "expiresAtBlock", Type: "uint64"},
				{Name: "signedRead", Type: "bool"},
			},
		},
		PrimaryType: TypedDataPrimaryType,
		Domain: apitypes.TypedDataDomain{
			Name:              TypedDataDomainName,
			Version:           TypedDataDomainVersion,
			ChainId:           &chainID,
			VerifyingContract: common.Address{}.Hex(),
		},
		Message: map[string]interface{}{
			"chainId":          &chainID,
			"nonce":            hexOrDecimal(tx.Nonce),
			"gasPrice":         &gasPrice,
			"gasLimit":         hexOrDecimal(tx.Gas),
			"to":               to.Hex(),
			"value":            &value,
			"input":            common.CopyBytes(tx.Input),
			"encryptionPubkey": common.CopyBytes(tx.EncryptionPubkey[:]),
			"encryptionNonce":  &encryptionNonce,
			"messageVersion":   hexOrDecimal(uint64(tx.MessageVersion)),
			"recentBlockHash":  tx.RecentBlockHash.Bytes(),
			"expiresAtBlock":   hexOrDecimal(tx.ExpiresAtBlock),
			"signedRead":       tx.SignedRead,
		},
	}
}

func (tx *TxSeismic) typedDataHash() (common.Hash, error) {
	typedData := tx.TypedData()
	domainSeparator, err := typedData.HashStruct("EIP712Domain", typedData.Domain.Map())
	if err != nil {
		return common.Hash{}, fmt.Errorf("transaction: failed to hash EIP712Domain: %w", err)
	}
	typedDataHash, err := typedData.HashStruct(typedData.PrimaryType, typedData.Message)
	if err != nil {
		return common.Hash{}, fmt.Errorf("transaction: failed to hash typed data: %w", err)
	}
	rawData := []byte(fmt.Sprintf("\x19\x01%s%s", string(domainSeparator), string(typedDataHash)))
	return crypto.Keccak256Hash(rawData), nil
}

// Sign signs the transaction with the given signer.
//
// Transactions that cannot be encoded are refused, so the hash of a signed transaction is always
// defined.
func (tx *TxSeismic) Sign(signer signature.Signer) (*SignedTxSeismic, error) {
	if _, err := tx.EncodeUnsigned(); err != nil {
		return nil, err
	}
	digest, err := tx.SigningHash()
	if err != nil {
		return nil, err
	}
	sig, err := signer.SignDigest(digest[:])
	if err != nil {
		return nil, fmt.Errorf("transaction: failed to sign: %w", err)
	}
	if len(sig) != signature.SignatureSize {
		return nil, fmt.Errorf("transaction: signer returned %d byte signature", len(sig))
	}
	return &SignedTxSeismic{
		Tx: *tx.Copy(),
		V:  new(big.Int).SetUint64(uint64(sig[64])),
		R:  new(big.Int).SetBytes(sig[:32]),
		S:  new(big.Int).SetBytes(sig[32:64]),
	}, nil
}

// PrettyPrint writes a pretty-printed representation of the transaction to the given writer.
func (tx *TxSeismic) PrettyPrint(_ context.Context, prefix string, w io.Writer) {
	fmt.Fprintf(w, "%sChain ID:          %s\n", prefix, bigOrZero(tx.ChainID))
	fmt.Fprintf(w, "%sNonce:             %d\n", prefix, tx.Nonce)
	fmt.Fprintf(w, "%sGas price:         %s\n", prefix, bigOrZero(tx.GasPrice))
	fmt.Fprintf(w, "%sGas limit:         %d\n", prefix, tx.Gas)
	if tx.To != nil {
		fmt.Fprintf(w, "%sTo:                %s\n", prefix, tx.To.Hex())
	} else {
		fmt.Fprintf(w, "%sTo:                (contract creation)\n", prefix)
	}
	fmt.Fprintf(w, "%sValue:             %s\n", prefix, bigOrZero(tx.Value))
	fmt.Fprintf(w, "%sInput:             %s (%d bytes)\n", prefix, hexutil.Encode(tx.Input), len(tx.Input))
	fmt.Fprintf(w, "%sEncryption pubkey: %s\n", prefix, hexutil.Encode(tx.EncryptionPubkey[:]))
	fmt.Fprintf(w, "%sEncryption nonce:  %s\n", prefix, hexutil.Encode(tx.EncryptionNonce[:]))
	fmt.Fprintf(w, "%sMessage version:   %s\n", prefix, tx.MessageVersion)
	fmt.Fprintf(w, "%sRecent block hash: %s\n", prefix, tx.RecentBlockHash.Hex())
	fmt.Fprintf(w, "%sExpires at block:  %d\n", prefix, tx.ExpiresAtBlock)
	fmt.Fprintf(w, "%sSigned read:       %t\n", prefix, tx.SignedRead)
}

// PrettyType returns a representation of the type that can be used for pretty printing.
func (tx *TxSeismic) PrettyType() (interface{}, error) {
	return tx, nil
}

// SignedTxSeismic is a signed shielded transaction.
//
// The hash and sender are cached on first use, so the transaction must not be modified after
// either has been requested.
type SignedTxSeismic struct {
	Tx TxSeismic

	// V is the y-parity of the signature (0 or 1).
	V *big.Int
	R *big.Int
	S *big.Int

	hash   atomic.Pointer[common.Hash]
	sender atomic.Pointer[common.Address]
}

// Signature returns the signature in R || S || V form.
func (stx *SignedTxSeismic) Signature() ([]byte, error) {
	if stx.V == nil || stx.R == nil || stx.S == nil {
		return nil, fmt.Errorf("%w: missing signature", ErrMalformedTransaction)
	}
	if !stx.V.IsUint64() || stx.V.Uint64() > 1 {
		return nil, fmt.Errorf("%w: invalid signature y-parity %s", ErrMalformedTransaction, stx.V)
	}
	v := byte(stx.V.Uint64())
	if !crypto.ValidateSignatureValues(v, stx.R, stx.S, true) {
		return nil, fmt.Errorf("%w: invalid signature values", ErrMalformedTransaction)
	}
	sig := make([]byte, signature.SignatureSize)
	stx.R.FillBytes(sig[:32])
	stx.S.FillBytes(sig[32:64])
	sig[64] = v
	return sig, nil
}

// Sender recovers the address of the account that signed the transaction.
func (stx *SignedTxSeismic) Sender() (common.Address, error) {
	if sender := stx.sender.Load(); sender != nil {
		return *sender, nil
	}
	sig, err := stx.Signature()
	if err != nil {
		return common.Address{}, err
	}
	digest, err := stx.Tx.SigningHash()
	if err != nil {
		return common.Address{}, err
	}
	pk, err := secp256k1.RecoverPublicKey(digest[:], sig)
	if err != nil {
		return common.Address{}, fmt.Errorf("transaction: %w", err)
	}
	sender := pk.Address()
	stx.sender.Store(&sender)
	return sender, nil
}

// MarshalBinary returns the typed envelope encoding of the transaction (0x4A || rlp(fields)).
func (stx *SignedTxSeismic) MarshalBinary() ([]byte, error) {
	tx := stx.Tx.toRLP()
	var buf bytes.Buffer
	buf.WriteByte(TxSeismicType)
	err := rlp.Encode(&buf, &signedTxSeismicRLP{
		ChainID:          tx.ChainID,
		Nonce:            tx.Nonce,
		GasPrice:         tx.GasPrice,
		Gas:              tx.Gas,
		To:               tx.To,
		Value:            tx.Value,
		Input:            tx.Input,
		EncryptionPubkey: tx.EncryptionPubkey,
		EncryptionNonce:  tx.EncryptionNonce,
		MessageVersion:   tx.MessageVersion,
		RecentBlockHash:  tx.RecentBlockHash,
		ExpiresAtBlock:   tx.ExpiresAtBlock,
		SignedRead:       tx.SignedRead,
		V:                bigOrZero(stx.V),
		R:                bigOrZero(stx.R),
		S:                bigOrZero(stx.S),
	})
	if err != nil {
		return nil, fmt.Errorf("transaction: failed to encode: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes a typed envelope encoding of the transaction.
func (stx *SignedTxSeismic) UnmarshalBinary(data []byte) error {
	if len(data) == 0 || data[0] != TxSeismicType {
		return fmt.Errorf("%w: not a shielded transaction envelope", ErrMalformedTransaction)
	}
	var dec signedTxSeismicRLP
	if err := rlp.DecodeBytes(data[1:], &dec); err != nil {
		return fmt.Errorf("%w: %s", ErrMalformedTransaction, err)
	}
	stx.Tx = TxSeismic{
		ChainID:  dec.ChainID,
		Nonce:    dec.Nonce,
		GasPrice: dec.GasPrice,
		Gas:      dec.Gas,
		To:       dec.To,
		Value:    dec.Value,
		Input:    dec.Input,
		SeismicElements: SeismicElements{
			EncryptionPubkey: dec.EncryptionPubkey,
			EncryptionNonce:  dec.EncryptionNonce,
			MessageVersion:   dec.MessageVersion,
			RecentBlockHash:  dec.RecentBlockHash,
			ExpiresAtBlock:   dec.ExpiresAtBlock,
			SignedRead:       dec.SignedRead,
		},
	}
	stx.V, stx.R, stx.S = dec.V, dec.R, dec.S
	stx.hash.Store(nil)
	stx.sender.Store(nil)
	return nil
}

// Hash returns the hash of the encoded transaction envelope.
func (stx *SignedTxSeismic) Hash() common.Hash {
	if h := stx.hash.Load(); h != nil {
		return *h
	}
	raw, err := stx.MarshalBinary()
	if err != nil {
		// Only reachable for hand-built transactions with negative integer fields.
		logger.Error("failed to hash transaction", "err", err)
		return common.Hash{}
	}
	h := crypto.Keccak256Hash(raw)
	stx.hash.Store(&h)
	return h
}

// PrettyPrint writes a pretty-printed representation of the transaction to the given writer.
func (stx *SignedTxSeismic) PrettyPrint(ctx context.Context, prefix string, w io.Writer) {
	fmt.Fprintf(w, "%sHash:   %s\n", prefix, stx.Hash().Hex())
	if sender, err := stx.Sender(); err != nil {
		fmt.Fprintf(w, "%sSender: <error: %s>\n", prefix, err)
	} else {
		fmt.Fprintf(w, "%sSender: %s\n", prefix, sender.Hex())
	}
	fmt.Fprintf(w, "%sTransaction:\n", prefix)
	stx.Tx.PrettyPrint(ctx, prefix+"  ", w)
}

// PrettyType returns a representation of the type that can be used for pretty printing.
func (stx *SignedTxSeismic) PrettyType() (interface{}, error) {
	return stx, nil
}
