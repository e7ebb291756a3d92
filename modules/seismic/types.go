package seismic

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	ethTypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/SeismicSystems/seismic-go/types"
)

// CallMode selects how a call is encoded and executed.
type CallMode uint8

const (
	// ModeWrite is an encrypted state-changing transaction.
	ModeWrite = CallMode(0)
	// ModeRead is an encrypted signed read.
	ModeRead = CallMode(1)
	// ModeTransparentWrite is a plain state-changing transaction.
	ModeTransparentWrite = CallMode(2)
	// ModeTransparentRead is a plain unsigned read.
	ModeTransparentRead = CallMode(3)
)

var callModeNames = map[CallMode]string{
	ModeWrite:            "write",
	ModeRead:             "read",
	ModeTransparentWrite: "transparent-write",
	ModeTransparentRead:  "transparent-read",
}

// String returns a string representation of the call mode.
func (m CallMode) String() string {
	if name, ok := callModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("[unknown: %d]", uint8(m))
}

// MarshalText encodes the call mode into text form.
func (m CallMode) MarshalText() ([]byte, error) {
	if _, ok := callModeNames[m]; !ok {
		return nil, fmt.Errorf("seismic: unknown call mode: %d", uint8(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText decodes a text-serialized call mode.
func (m *CallMode) UnmarshalText(text []byte) error {
	for mode, name := range callModeNames {
		if strings.EqualFold(name, string(text)) {
			*m = mode
			return nil
		}
	}
	return fmt.Errorf("seismic: unknown call mode: %s", string(text))
}

// IsShielded returns true iff the mode encrypts calldata.
func (m CallMode) IsShielded() bool {
	return m == ModeWrite || m == ModeRead
}

// IsWrite returns true iff the mode submits a transaction.
func (m CallMode) IsWrite() bool {
	return m == ModeWrite || m == ModeTransparentWrite
}

// Request is a contract call.
type Request struct {
	// To is the callee. Nil creates a contract.
	To *common.Address
	// Value is the amount of native tokens transferred.
	Value *big.Int
	// Data is the plaintext calldata.
	Data []byte

	// Gas is the gas limit. Zero selects the default.
	Gas uint64
	// GasPrice is the gas price. Nil selects the node's suggestion.
	GasPrice *big.Int
	// ExpiresIn is the shielded transaction validity in blocks. Zero selects the default.
	ExpiresIn uint64
	// MessageVersion selects the signing mode of shielded transactions.
	MessageVersion types.MessageVersion

	// Debug makes shielded writes also return the plaintext and shielded transactions.
	Debug bool
}

// DebugWriteResult is the result of a debug write.
type DebugWriteResult struct {
	// PlaintextTx is the transaction with unencrypted calldata.
	PlaintextTx *types.TxSeismic
	// ShieldedTx is the signed shielded transaction.
	ShieldedTx *types.SignedTxSeismic
	// Receipt is the receipt of the transaction if it was broadcast.
	Receipt *ethTypes.Receipt
}

// Response is the result of a call.
type Response struct {
	// Mode is the mode the call was executed in.
	Mode CallMode
	// Output is the decrypted output of reads.
	Output []byte
	// Receipt is the receipt of writes.
	Receipt *ethTypes.Receipt
	// Debug is set for debug writes.
	Debug *DebugWriteResult
}
