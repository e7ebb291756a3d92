package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/oasisprotocol/oasis-core/go/common/logging"

	"github.com/SeismicSystems/seismic-go/callformat"
	"github.com/SeismicSystems/seismic-go/crypto/keyexchange"
)

// Session is a shielding session with a node.
//
// It caches the encryption state derived from the node's enclave key and re-derives it only when
// the enclave key changes. A session is safe for concurrent use.
type Session struct {
	rc       RuntimeClient
	clientSK []byte

	mu     sync.RWMutex
	state  *keyexchange.EncryptionState
	nonces *callformat.NonceTracker

	logger *logging.Logger
}

// NewSession creates a new shielding session.
//
// When clientSK is nil an ephemeral client key is generated on first use.
func NewSession(rc RuntimeClient, clientSK []byte) *Session {
	return &Session{
		rc:       rc,
		clientSK: clientSK,
		nonces:   callformat.NewNonceTracker(),
		logger:   logging.GetLogger("client/session"),
	}
}

// State returns the cached encryption state, deriving it if there is none.
func (s *Session) State(ctx context.Context) (*keyexchange.EncryptionState, error) {
	s.mu.RLock()
	state := s.state
	s.mu.RUnlock()
	if state != nil {
		return state, nil
	}
	return s.Refresh(ctx)
}

// Refresh fetches the current enclave key and re-derives the encryption state if it changed.
func (s *Session) Refresh(ctx context.Context) (*keyexchange.EncryptionState, error) {
	pk, err := s.rc.EnclavePublicKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("client: failed to fetch enclave public key: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != nil && s.state.Matches(pk[:]) {
		return s.state, nil
	}

	clientSK := s.clientSK
	if clientSK == nil && s.state != nil {
		// Keep the client key stable across enclave key rotations.
		clientSK = s.state.ClientPrivateKey[:]
	}
	state, err := keyexchange.DeriveEncryptionState(pk[:], clientSK)
	if err != nil {
		return nil, fmt.Errorf("client: failed to derive encryption state: %w", err)
	}

	if s.state != nil {
		s.logger.Info("enclave key changed, re-derived encryption state",
			"enclave_public_key", state.String(),
		)
	}
	s.state = state
	return state, nil
}

// Nonces returns the tracker of encryption nonces used in this session.
func (s *Session) Nonces() *callformat.NonceTracker {
	return s.nonces
}
