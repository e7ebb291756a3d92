// Package signature contains the cryptographic signature types.
package signature

import "github.com/ethereum/go-ethereum/common"

// SignatureSize is the size of a recoverable ECDSA signature in R || S || V form.
const SignatureSize = 65

// PublicKey is a public key.
type PublicKey interface {
	// String returns a string representation of the public key.
	String() string

	// Equal compares vs another public key for equality.
	Equal(other PublicKey) bool

	// Address returns the account address derived from the public key.
	Address() common.Address

	// Verify returns true iff the R || S || V signature is valid for the public key over the
	// given 32-byte digest.
	Verify(digest, signature []byte) bool
}
