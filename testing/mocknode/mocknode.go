// Package mocknode implements an in-process Seismic JSON-RPC node for tests.
//
// The node keeps a minimal chain of empty blocks, executes calls through a pluggable handler and
// uses an enclave to open shielded transactions exactly like a real node would.
package mocknode

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	ethTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/oasisprotocol/oasis-core/go/common/logging"

	"github.com/SeismicSystems/seismic-go/enclave"
	sdkTesting "github.com/SeismicSystems/seismic-go/testing"
)

const (
	// DefaultChainID is the chain id used when none is configured.
	DefaultChainID = 5124
	// DefaultWindow is the number of recent block hashes accepted when none is configured.
	DefaultWindow = 100
)

// ErrReverted is the error handlers return to revert a call.
var ErrReverted = errors.New("execution reverted")

// Call is a call executed by the node.
type Call struct {
	From  common.Address
	To    *common.Address
	Value *big.Int
	// Input is the plaintext calldata.
	Input []byte

	// Shielded is true for calls that arrived encrypted.
	Shielded bool
	// SignedRead is true for shielded read-only calls.
	SignedRead bool
	// Write is true for submitted transactions.
	Write bool
}

// Handler executes a call and returns its output.
type Handler func(call *Call) ([]byte, error)

// EchoHandler returns the calldata as output.
func EchoHandler(call *Call) ([]byte, error) {
	return call.Input, nil
}

// Config is the mock node configuration.
type Config struct {
	// ChainID is the chain id. Defaults to DefaultChainID.
	ChainID uint64
	// EnclaveKey is the network private key. Defaults to the test enclave key.
	EnclaveKey []byte
	// Window is the number of recent block hashes accepted. Defaults to DefaultWindow.
	Window int
	// GasPrice is the suggested gas price. Defaults to 1 gwei.
	GasPrice *big.Int
	// Handler executes calls. Defaults to EchoHandler.
	Handler Handler
}

type block struct {
	number     uint64
	hash       common.Hash
	parentHash common.Hash
}

// Node is an in-process mock node.
type Node struct {
	mu sync.Mutex

	enclave  *enclave.Enclave
	chainID  uint64
	window   int
	gasPrice *big.Int
	handler  Handler

	blocks   []block
	nonces   map[common.Address]uint64
	receipts map[common.Hash]*ethTypes.Receipt
	calls    []*Call

	server *rpc.Server
	logger *logging.Logger
}

// New creates and starts a new mock node.
func New(cfg Config) (*Node, error) {
	if cfg.ChainID == 0 {
		cfg.ChainID = DefaultChainID
	}
	if cfg.EnclaveKey == nil {
		cfg.EnclaveKey = sdkTesting.EnclaveKey.SecretKey
	}
	if cfg.Window == 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.GasPrice == nil {
		cfg.GasPrice = big.NewInt(1_000_000_000)
	}
	if cfg.Handler == nil {
		cfg.Handler = EchoHandler
	}

	e, err := enclave.New(cfg.EnclaveKey, cfg.ChainID)
	if err != nil {
		return nil, fmt.Errorf("mocknode: %w", err)
	}

	n := &Node{
		enclave:  e,
		chainID:  cfg.ChainID,
		window:   cfg.Window,
		gasPrice: cfg.GasPrice,
		handler:  cfg.Handler,
		nonces:   make(map[common.Address]uint64),
		receipts: make(map[common.Hash]*ethTypes.Receipt),
		server:   rpc.NewServer(),
		logger:   logging.GetLogger("mocknode"),
	}
	n.blocks = append(n.blocks, newBlock(0, common.Hash{}))

	if err = n.server.RegisterName("eth", &ethAPI{n: n}); err != nil {
		return nil, fmt.Errorf("mocknode: failed to register eth API: %w", err)
	}
	if err = n.server.RegisterName("seismic", &seismicAPI{n: n}); err != nil {
		return nil, fmt.Errorf("mocknode: failed to register seismic API: %w", err)
	}
	return n, nil
}

func newBlock(number uint64, parent common.Hash) block {
	var num [8]byte
	binary.BigEndian.PutUint64(num[:], number)
	return block{
		number:     number,
		hash:       crypto.Keccak256Hash(parent.Bytes(), num[:]),
		parentHash: parent,
	}
}

// Client returns a new in-process JSON-RPC client connected to the node.
func (n *Node) Client() *rpc.Client {
	return rpc.DialInProc(n.server)
}

// Close stops the node.
func (n *Node) Close() {
	n.server.Stop()
}

// Enclave returns the node's enclave.
func (n *Node) Enclave() *enclave.Enclave {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.enclave
}

// RotateEnclaveKey replaces the network key.
func (n *Node) RotateEnclaveKey(sk []byte) error {
	e, err := enclave.New(sk, n.chainID)
	if err != nil {
		return fmt.Errorf("mocknode: %w", err)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	n.enclave = e
	return nil
}

// SetHandler replaces the call handler.
func (n *Node) SetHandler(h Handler) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.handler = h
}

// MineBlocks appends count empty blocks.
func (n *Node) MineBlocks(count int) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for i := 0; i < count; i++ {
		n.mineLocked()
	}
}

func (n *Node) mineLocked() block {
	head := n.blocks[len(n.blocks)-1]
	blk := newBlock(head.number+1, head.hash)
	n.blocks = append(n.blocks, blk)
	return blk
}

// Head returns the current block height.
func (n *Node) Head() uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.blocks[len(n.blocks)-1].number
}

// Nonce returns the current nonce of the account.
func (n *Node) Nonce(addr common.Address) uint64 {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.nonces[addr]
}

// Calls returns all calls executed by the node so far.
func (n *Node) Calls() []*Call {
	n.mu.Lock()
	defer n.mu.Unlock()

	return append([]*Call{}, n.calls...)
}

// recentHashesLocked returns the hashes of the blocks in the freshness window.
func (n *Node) recentHashesLocked() []common.Hash {
	start := len(n.blocks) - n.window
	if start < 0 {
		start = 0
	}
	hashes := make([]common.Hash, 0, len(n.blocks)-start)
	for _, blk := range n.blocks[start:] {
		hashes = append(hashes, blk.hash)
	}
	return hashes
}

func (n *Node) blockLocked(number rpc.BlockNumber) *block {
	if number < 0 {
		return &n.blocks[len(n.blocks)-1]
	}
	if int(number) >= len(n.blocks) {
		return nil
	}
	return &n.blocks[number]
}
