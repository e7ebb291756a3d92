package mocknode

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/SeismicSystems/seismic-go/types"
)

const (
	errCodeDefault       = -32000
	errCodeInvalidParams = -32602
	errCodeReverted      = 3
)

// rpcError is an error carrying a JSON-RPC error code.
type rpcError struct {
	code int
	msg  string
}

func (e *rpcError) Error() string {
	return e.msg
}

func (e *rpcError) ErrorCode() int {
	return e.code
}

func toRPCError(err error) error {
	if err == nil {
		return nil
	}
	code := types.ErrorCode(err)
	switch {
	case code != 0:
	case errors.Is(err, ErrReverted):
		code = errCodeReverted
	case errors.Is(err, types.ErrMalformedTransaction):
		code = errCodeInvalidParams
	default:
		code = errCodeDefault
	}
	return &rpcError{code: code, msg: err.Error()}
}

type rpcBlock struct {
	Number     hexutil.Uint64 `json:"number"`
	Hash       common.Hash    `json:"hash"`
	ParentHash common.Hash    `json:"parentHash"`
	Timestamp  hexutil.Uint64 `json:"timestamp"`
}

type callArgs struct {
	From  *common.Address `json:"from"`
	To    *common.Address `json:"to"`
	Gas   *hexutil.Uint64 `json:"gas"`
	Value *hexutil.Big    `json:"value"`
	Data  hexutil.Bytes   `json:"data"`
	Input hexutil.Bytes   `json:"input"`
}

type ethAPI struct {
	n *Node
}

func (api *ethAPI) ChainId() *hexutil.Big {
	return (*hexutil.Big)(new(big.Int).SetUint64(api.n.chainID))
}

func (api *ethAPI) BlockNumber() hexutil.Uint64 {
	return hexutil.Uint64(api.n.Head())
}

func (api *ethAPI) GetBlockByNumber(number rpc.BlockNumber, _ bool) (*rpcBlock, error) {
	api.n.mu.Lock()
	defer api.n.mu.Unlock()

	blk := api.n.blockLocked(number)
	if blk == nil {
		return nil, nil
	}
	return &rpcBlock{
		Number:     hexutil.Uint64(blk.number),
		Hash:       blk.hash,
		ParentHash: blk.parentHash,
		Timestamp:  hexutil.Uint64(blk.number * 2),
	}, nil
}

func (api *ethAPI) GetTransactionCount(addr common.Address, _ rpc.BlockNumber) hexutil.Uint64 {
	return hexutil.Uint64(api.n.Nonce(addr))
}

func (api *ethAPI) GasPrice() *hexutil.Big {
	return (*hexutil.Big)(new(big.Int).Set(api.n.gasPrice))
}

func (api *ethAPI) SendRawTransaction(raw hexutil.Bytes) (common.Hash, error) {
	if len(raw) == 0 {
		return common.Hash{}, toRPCError(fmt.Errorf("%w: empty transaction", types.ErrMalformedTransaction))
	}

	var (
		hash common.Hash
		err  error
	)
	switch raw[0] {
	case types.TxSeismicType:
		hash, err = api.n.submitShielded(raw)
	default:
		hash, err = api.n.submitLegacy(raw)
	}
	return hash, toRPCError(err)
}

func (api *ethAPI) Call(args json.RawMessage, _ *rpc.BlockNumber) (hexutil.Bytes, error) {
	var raw hexutil.Bytes
	if err := json.Unmarshal(args, &raw); err == nil {
		if len(raw) == 0 || raw[0] != types.TxSeismicType {
			return nil, toRPCError(fmt.Errorf("%w: only shielded raw calls are supported", types.ErrMalformedTransaction))
		}
		out, err := api.n.callShielded(raw)
		return out, toRPCError(err)
	}

	var call callArgs
	if err := json.Unmarshal(args, &call); err != nil {
		return nil, &rpcError{code: errCodeInvalidParams, msg: err.Error()}
	}
	if call.Data == nil {
		call.Data = call.Input
	}
	out, err := api.n.callPlain(&call)
	return out, toRPCError(err)
}

func (api *ethAPI) GetTransactionReceipt(hash common.Hash) (*ethTypes.Receipt, error) {
	api.n.mu.Lock()
	defer api.n.mu.Unlock()

	return api.n.receipts[hash], nil
}

type seismicAPI struct {
	n *Node
}

func (api *seismicAPI) GetTeePublicKey() hexutil.Bytes {
	pk := api.n.Enclave().PublicKey()
	return pk[:]
}
