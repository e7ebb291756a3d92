package types

import "errors"

var (
	// ErrInvalidPublicKey is the error returned when a public key is malformed or not on the curve.
	ErrInvalidPublicKey = errors.New("invalid public key")
	// ErrInvalidPrivateKey is the error returned when a private key is malformed or out of range.
	ErrInvalidPrivateKey = errors.New("invalid private key")
	// ErrAuthenticationFailure is the error returned when an AEAD tag does not verify.
	ErrAuthenticationFailure = errors.New("authentication failure")
	// ErrExpiredTransaction is the error returned when the current block is past expires_at_block.
	ErrExpiredTransaction = errors.New("transaction expired")
	// ErrStaleBlockHash is the error returned when recent_block_hash is outside of the lookback window.
	ErrStaleBlockHash = errors.New("stale recent block hash")
	// ErrNonceReuse is the error returned when an encryption nonce is used twice under one key.
	ErrNonceReuse = errors.New("encryption nonce reuse")
	// ErrUnsupportedMessageVersion is the error returned for unknown signing message versions.
	ErrUnsupportedMessageVersion = errors.New("unsupported message version")
	// ErrMalformedTransaction is the error returned when a transaction cannot be decoded.
	ErrMalformedTransaction = errors.New("malformed transaction")
)

// JSON-RPC error codes used by nodes to report shielded transaction rejections.
const (
	ErrCodeAuthenticationFailure = -32010
	ErrCodeExpiredTransaction    = -32011
	ErrCodeStaleBlockHash        = -32012
)

var errorCodes = map[int]error{
	ErrCodeAuthenticationFailure: ErrAuthenticationFailure,
	ErrCodeExpiredTransaction:    ErrExpiredTransaction,
	ErrCodeStaleBlockHash:        ErrStaleBlockHash,
}

// ErrorFromCode maps a JSON-RPC error code back to the corresponding sentinel error, if any.
func ErrorFromCode(code int) error {
	return errorCodes[code]
}

// ErrorCode returns the JSON-RPC error code for the given error, or zero when the error has none.
func ErrorCode(err error) int {
	for code, sentinel := range errorCodes {
		if errors.Is(err, sentinel) {
			return code
		}
	}
	return 0
}

// IsFreshnessError returns true iff the error is a freshness rejection.
//
// Such transactions should be rebuilt with current block data and resubmitted.
func IsFreshnessError(err error) bool {
	return errors.Is(err, ErrExpiredTransaction) || errors.Is(err, ErrStaleBlockHash)
}
