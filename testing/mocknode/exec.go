package mocknode

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	ethTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/SeismicSystems/seismic-go/types"
)

const intrinsicGas = 21_000

var errNonceMismatch = errors.New("nonce mismatch")

func (n *Node) useNonceLocked(addr common.Address, nonce uint64) error {
	expected := n.nonces[addr]
	if nonce != expected {
		return fmt.Errorf("%w: account %s has nonce %d, transaction has %d", errNonceMismatch, addr.Hex(), expected, nonce)
	}
	n.nonces[addr] = expected + 1
	return nil
}

func (n *Node) executeLocked(call *Call) ([]byte, error) {
	n.calls = append(n.calls, call)
	return n.handler(call)
}

func (n *Node) includeLocked(hash common.Hash, txType uint8, call *Call, nonce, gas uint64, execErr error) {
	blk := n.mineLocked()

	status := ethTypes.ReceiptStatusSuccessful
	if execErr != nil {
		status = ethTypes.ReceiptStatusFailed
	}
	gasUsed := uint64(intrinsicGas)
	if gas < gasUsed {
		gasUsed = gas
	}

	r := &ethTypes.Receipt{
		Type:              txType,
		Status:            status,
		CumulativeGasUsed: gasUsed,
		Bloom:             ethTypes.Bloom{},
		Logs:              []*ethTypes.Log{},
		TxHash:            hash,
		GasUsed:           gasUsed,
		EffectiveGasPrice: new(big.Int).Set(n.gasPrice),
		BlockHash:         blk.hash,
		BlockNumber:       new(big.Int).SetUint64(blk.number),
	}
	if call.To == nil {
		r.ContractAddress = crypto.CreateAddress(call.From, nonce)
	}
	n.receipts[hash] = r

	n.logger.Debug("included transaction",
		"hash", hash,
		"block", blk.number,
		"status", status,
	)
}

func (n *Node) submitShielded(raw []byte) (common.Hash, error) {
	var stx types.SignedTxSeismic
	if err := stx.UnmarshalBinary(raw); err != nil {
		return common.Hash{}, err
	}
	if stx.Tx.SignedRead {
		return common.Hash{}, fmt.Errorf("%w: signed reads cannot be submitted", types.ErrMalformedTransaction)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	head := n.blocks[len(n.blocks)-1].number
	opened, err := n.enclave.Open(&stx, head, n.recentHashesLocked())
	if err != nil {
		return common.Hash{}, err
	}
	if err = n.useNonceLocked(opened.Sender, stx.Tx.Nonce); err != nil {
		return common.Hash{}, err
	}

	call := &Call{
		From:     opened.Sender,
		To:       stx.Tx.To,
		Value:    stx.Tx.Value,
		Input:    opened.Input,
		Shielded: true,
		Write:    true,
	}
	_, execErr := n.executeLocked(call)
	n.includeLocked(stx.Hash(), types.TxSeismicType, call, stx.Tx.Nonce, stx.Tx.Gas, execErr)
	return stx.Hash(), nil
}

func (n *Node) submitLegacy(raw []byte) (common.Hash, error) {
	var tx ethTypes.Transaction
	if err := tx.UnmarshalBinary(raw); err != nil {
		return common.Hash{}, fmt.Errorf("%w: %s", types.ErrMalformedTransaction, err)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	chainID := new(big.Int).SetUint64(n.chainID)
	if tx.Protected() && tx.ChainId().Cmp(chainID) != 0 {
		return common.Hash{}, fmt.Errorf("%w: wrong chain id %s", types.ErrMalformedTransaction, tx.ChainId())
	}
	from, err := ethTypes.Sender(ethTypes.LatestSignerForChainID(chainID), &tx)
	if err != nil {
		return common.Hash{}, fmt.Errorf("%w: %s", types.ErrMalformedTransaction, err)
	}
	if err = n.useNonceLocked(from, tx.Nonce()); err != nil {
		return common.Hash{}, err
	}

	call := &Call{
		From:  from,
		To:    tx.To(),
		Value: tx.Value(),
		Input: tx.Data(),
		Write: true,
	}
	_, execErr := n.executeLocked(call)
	n.includeLocked(tx.Hash(), tx.Type(), call, tx.Nonce(), tx.Gas(), execErr)
	return tx.Hash(), nil
}

func (n *Node) callShielded(raw []byte) ([]byte, error) {
	var stx types.SignedTxSeismic
	if err := stx.UnmarshalBinary(raw); err != nil {
		return nil, err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	head := n.blocks[len(n.blocks)-1].number
	opened, err := n.enclave.Open(&stx, head, n.recentHashesLocked())
	if err != nil {
		return nil, err
	}

	out, err := n.executeLocked(&Call{
		From:       opened.Sender,
		To:         stx.Tx.To,
		Value:      stx.Tx.Value,
		Input:      opened.Input,
		Shielded:   true,
		SignedRead: stx.Tx.SignedRead,
	})
	if err != nil {
		return nil, err
	}
	return n.enclave.SealResponse(opened, out)
}

func (n *Node) callPlain(args *callArgs) ([]byte, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	call := &Call{
		To:    args.To,
		Value: (*big.Int)(args.Value),
		Input: args.Data,
	}
	if args.From != nil {
		call.From = *args.From
	}
	return n.executeLocked(call)
}
