package types

// CallFormat is the format used for encoding the call (and output) information.
type CallFormat uint8

const (
	// CallFormatPlain is the plain text call format.
	CallFormatPlain = CallFormat(0)
	// CallFormatEncryptedAESGCM is the encrypted call format using secp256k1 ECDH for key
	// exchange and AES-256-GCM for symmetric encryption.
	CallFormatEncryptedAESGCM = CallFormat(1)
)

// String returns a string representation of the call format.
func (cf CallFormat) String() string {
	switch cf {
	case CallFormatPlain:
		return "plain"
	case CallFormatEncryptedAESGCM:
		return "encrypted/secp256k1-aes256gcm"
	default:
		return "[unknown]"
	}
}

// ResultEnvelopeAESGCM is the layout of an encrypted signed read result.
//
// The node seals every result under a fresh nonce so that no nonce is used twice under the
// session key. On the wire the envelope is Nonce || Data.
type ResultEnvelopeAESGCM struct {
	// Nonce is the nonce the result was sealed under.
	Nonce [EncryptionNonceSize]byte
	// Data is the encrypted result data including the authentication tag.
	Data []byte
}

// MarshalBinary encodes the envelope.
func (re *ResultEnvelopeAESGCM) MarshalBinary() ([]byte, error) {
	out := make([]byte, 0, len(re.Nonce)+len(re.Data))
	out = append(out, re.Nonce[:]...)
	return append(out, re.Data...), nil
}

// UnmarshalBinary decodes the envelope.
func (re *ResultEnvelopeAESGCM) UnmarshalBinary(data []byte) error {
	if len(data) < EncryptionNonceSize {
		return ErrMalformedTransaction
	}
	copy(re.Nonce[:], data[:EncryptionNonceSize])
	re.Data = append([]byte{}, data[EncryptionNonceSize:]...)
	return nil
}
