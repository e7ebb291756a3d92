package callformat

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"

	"github.com/SeismicSystems/seismic-go/crypto/keyexchange"
	"github.com/SeismicSystems/seismic-go/types"
)

// TagSize is the size of the AES-GCM authentication tag appended to every ciphertext.
const TagSize = 16

// NewEncryptionNonce generates a fresh random AES-GCM nonce.
func NewEncryptionNonce(rng io.Reader) ([types.EncryptionNonceSize]byte, error) {
	if rng == nil {
		rng = rand.Reader
	}
	var nonce [types.EncryptionNonceSize]byte
	if _, err := io.ReadFull(rng, nonce[:]); err != nil {
		return nonce, fmt.Errorf("callformat: failed to generate random nonce: %w", err)
	}
	return nonce, nil
}

func newAEAD(key [keyexchange.AESKeySize]byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("callformat: failed to create cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("callformat: failed to create AES-GCM: %w", err)
	}
	return aead, nil
}

func seal(key [keyexchange.AESKeySize]byte, nonce [types.EncryptionNonceSize]byte, plaintext, aad []byte) ([]byte, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}
	return aead.Seal(nil, nonce[:], plaintext, aad), nil
}

func open(key [keyexchange.AESKeySize]byte, nonce [types.EncryptionNonceSize]byte, ciphertext, aad []byte) ([]byte, error) {
	if len(ciphertext) < TagSize {
		return nil, types.ErrAuthenticationFailure
	}
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}
	plaintext, err := aead.Open(nil, nonce[:], ciphertext, aad)
	if err != nil {
		return nil, types.ErrAuthenticationFailure
	}
	return plaintext, nil
}

// EncryptWithKey encrypts plaintext under the given AES key, binding it to the metadata.
func EncryptWithKey(
	key [keyexchange.AESKeySize]byte,
	plaintext []byte,
	nonce [types.EncryptionNonceSize]byte,
	md *types.TxSeismicMetadata,
) ([]byte, error) {
	aad, err := md.EncodeAAD()
	if err != nil {
		return nil, err
	}
	return seal(key, nonce, plaintext, aad)
}

// DecryptWithKey decrypts ciphertext under the given AES key, verifying it against the metadata.
//
// Any mismatch between the metadata and the one used for encryption results in
// types.ErrAuthenticationFailure and no plaintext.
func DecryptWithKey(
	key [keyexchange.AESKeySize]byte,
	ciphertext []byte,
	nonce [types.EncryptionNonceSize]byte,
	md *types.TxSeismicMetadata,
) ([]byte, error) {
	aad, err := md.EncodeAAD()
	if err != nil {
		return nil, err
	}
	return open(key, nonce, ciphertext, aad)
}

// Encrypt encrypts plaintext under the session key.
func Encrypt(
	state *keyexchange.EncryptionState,
	plaintext []byte,
	nonce [types.EncryptionNonceSize]byte,
	md *types.TxSeismicMetadata,
) ([]byte, error) {
	return EncryptWithKey(state.AESKey, plaintext, nonce, md)
}

// Decrypt decrypts ciphertext under the session key.
func Decrypt(
	state *keyexchange.EncryptionState,
	ciphertext []byte,
	nonce [types.EncryptionNonceSize]byte,
	md *types.TxSeismicMetadata,
) ([]byte, error) {
	return DecryptWithKey(state.AESKey, ciphertext, nonce, md)
}
