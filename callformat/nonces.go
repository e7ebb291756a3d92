package callformat

import (
	"fmt"
	"sync"

	"github.com/SeismicSystems/seismic-go/crypto/keyexchange"
	"github.com/SeismicSystems/seismic-go/types"
)

type nonceKey struct {
	key   [keyexchange.AESKeySize]byte
	nonce [types.EncryptionNonceSize]byte
}

// NonceTracker records the nonces used under each key and refuses to hand out a nonce twice.
type NonceTracker struct {
	mu   sync.Mutex
	seen map[nonceKey]struct{}
}

// NewNonceTracker creates a new empty nonce tracker.
func NewNonceTracker() *NonceTracker {
	return &NonceTracker{
		seen: make(map[nonceKey]struct{}),
	}
}

// Use marks the nonce as used under the key, failing with types.ErrNonceReuse if it already was.
func (nt *NonceTracker) Use(key [keyexchange.AESKeySize]byte, nonce [types.EncryptionNonceSize]byte) error {
	nt.mu.Lock()
	defer nt.mu.Unlock()

	k := nonceKey{key: key, nonce: nonce}
	if _, ok := nt.seen[k]; ok {
		return fmt.Errorf("callformat: %w", types.ErrNonceReuse)
	}
	nt.seen[k] = struct{}{}
	return nil
}

// Len returns the number of tracked nonces.
func (nt *NonceTracker) Len() int {
	nt.mu.Lock()
	defer nt.mu.Unlock()

	return len(nt.seen)
}
