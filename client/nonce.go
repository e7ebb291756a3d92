package client

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

type accountNonce struct {
	sync.Mutex

	next   uint64
	seeded bool

	// released holds nonces below next that were handed out and given back, in ascending order.
	released []uint64
}

// seed synchronizes the local counter with the network nonce.
//
// The counter never moves backwards, so nonces held by in-flight writers are not handed out again.
func (an *accountNonce) seed(network uint64) {
	if network > an.next {
		an.next = network
	}
	// Released nonces the network already consumed are gone.
	idx := sort.Search(len(an.released), func(i int) bool { return an.released[i] >= network })
	an.released = an.released[idx:]
	an.seeded = true
}

func (an *accountNonce) take() uint64 {
	if len(an.released) > 0 {
		nonce := an.released[0]
		an.released = an.released[1:]
		return nonce
	}
	nonce := an.next
	an.next++
	return nonce
}

func (an *accountNonce) give(nonce uint64) {
	if nonce >= an.next {
		return
	}
	idx := sort.Search(len(an.released), func(i int) bool { return an.released[i] >= nonce })
	if idx < len(an.released) && an.released[idx] == nonce {
		return
	}
	an.released = append(an.released, 0)
	copy(an.released[idx+1:], an.released[idx:])
	an.released[idx] = nonce

	// Shrink the counter over released nonces at its top.
	for n := len(an.released); n > 0 && an.released[n-1] == an.next-1; n-- {
		an.next--
		an.released = an.released[:n-1]
	}
}

// NonceManager hands out transaction nonces for accounts with concurrent writers.
//
// Nonces for each account are seeded from the network on first use. A nonce is never handed out
// twice unless it was given back with Release.
type NonceManager struct {
	rc RuntimeClient

	mu       sync.Mutex
	accounts map[common.Address]*accountNonce
}

// NewNonceManager creates a new nonce manager.
func NewNonceManager(rc RuntimeClient) *NonceManager {
	return &NonceManager{
		rc:       rc,
		accounts: make(map[common.Address]*accountNonce),
	}
}

func (nm *NonceManager) account(addr common.Address) *accountNonce {
	nm.mu.Lock()
	defer nm.mu.Unlock()

	an, ok := nm.accounts[addr]
	if !ok {
		an = &accountNonce{}
		nm.accounts[addr] = an
	}
	return an
}

// Next returns the lowest unused nonce for the account.
func (nm *NonceManager) Next(ctx context.Context, addr common.Address) (uint64, error) {
	an := nm.account(addr)
	an.Lock()
	defer an.Unlock()

	if !an.seeded {
		nonce, err := nm.rc.NonceAt(ctx, addr)
		if err != nil {
			return 0, fmt.Errorf("client: failed to fetch nonce: %w", err)
		}
		an.seed(nonce)
	}
	return an.take(), nil
}

// Release gives back a nonce handed out by Next whose transaction will never reach the network.
func (nm *NonceManager) Release(addr common.Address, nonce uint64) {
	an := nm.account(addr)
	an.Lock()
	defer an.Unlock()

	an.give(nonce)
}

// Reset makes the next call to Next re-read the network nonce.
//
// The local counter is only moved forward, never back below nonces that are still handed out.
func (nm *NonceManager) Reset(addr common.Address) {
	an := nm.account(addr)
	an.Lock()
	defer an.Unlock()

	an.seeded = false
}
