// Package keyexchange implements the secp256k1 ECDH key agreement used to derive the symmetric
// key that shields transaction calldata.
package keyexchange

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"fmt"
	"io"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/crypto/hkdf"

	"github.com/SeismicSystems/seismic-go/types"
)

const (
	// PrivateKeySize is the size of a secp256k1 private key scalar.
	PrivateKeySize = 32
	// PublicKeySize is the size of a compressed secp256k1 public key.
	PublicKeySize = types.EncryptionPubkeySize
	// AESKeySize is the size of the derived AES-256 key.
	AESKeySize = 32

	maxGenerateAttempts = 16
)

// hkdfInfo is the HKDF info string binding derived keys to their use as AES-GCM keys.
var hkdfInfo = []byte("aes-gcm key")

// KeyPair is a secp256k1 key pair with a compressed public key.
type KeyPair struct {
	PrivateKey [PrivateKeySize]byte
	PublicKey  [PublicKeySize]byte
}

// String returns the public half of the key pair.
func (kp *KeyPair) String() string {
	return hexutil.Encode(kp.PublicKey[:])
}

// NewKeyPair creates a key pair from the given private key scalar.
func NewKeyPair(sk []byte) (*KeyPair, error) {
	if err := validatePrivateKey(sk); err != nil {
		return nil, err
	}
	_, pub := btcec.PrivKeyFromBytes(sk)

	var kp KeyPair
	copy(kp.PrivateKey[:], sk)
	copy(kp.PublicKey[:], pub.SerializeCompressed())
	return &kp, nil
}

// GenerateKeyPair generates a new random key pair using the given entropy source.
func GenerateKeyPair(rng io.Reader) (*KeyPair, error) {
	if rng == nil {
		rng = rand.Reader
	}
	var sk [PrivateKeySize]byte
	for i := 0; i < maxGenerateAttempts; i++ {
		if _, err := io.ReadFull(rng, sk[:]); err != nil {
			return nil, fmt.Errorf("keyexchange: failed to read entropy: %w", err)
		}
		kp, err := NewKeyPair(sk[:])
		if err == nil {
			return kp, nil
		}
	}
	return nil, fmt.Errorf("keyexchange: failed to generate key pair: %w", types.ErrInvalidPrivateKey)
}

// ParsePublicKey parses a 33-byte compressed secp256k1 public key.
func ParsePublicKey(pk []byte) (*btcec.PublicKey, error) {
	if len(pk) != PublicKeySize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", types.ErrInvalidPublicKey, PublicKeySize, len(pk))
	}
	if pk[0] != 0x02 && pk[0] != 0x03 {
		return nil, fmt.Errorf("%w: not a compressed point", types.ErrInvalidPublicKey)
	}
	pub, err := btcec.ParsePubKey(pk)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", types.ErrInvalidPublicKey, err)
	}
	return pub, nil
}

func validatePrivateKey(sk []byte) error {
	if len(sk) != PrivateKeySize {
		return fmt.Errorf("%w: expected %d bytes, got %d", types.ErrInvalidPrivateKey, PrivateKeySize, len(sk))
	}
	var s btcec.ModNScalar
	if overflow := s.SetByteSlice(sk); overflow || s.IsZero() {
		return fmt.Errorf("%w: scalar out of range", types.ErrInvalidPrivateKey)
	}
	return nil
}

// SharedSecret computes the ECDH shared secret between the private key sk and the public key pk.
//
// The secret is SHA-256 over the compressed shared point, matching libsecp256k1's default ECDH
// hash function.
func SharedSecret(sk, pk []byte) ([32]byte, error) {
	if err := validatePrivateKey(sk); err != nil {
		return [32]byte{}, err
	}
	pub, err := ParsePublicKey(pk)
	if err != nil {
		return [32]byte{}, err
	}

	var scalar btcec.ModNScalar
	scalar.SetByteSlice(sk)
	defer scalar.Zero()

	var point, result btcec.JacobianPoint
	pub.AsJacobian(&point)
	btcec.ScalarMultNonConst(&scalar, &point, &result)
	result.ToAffine()

	shared := btcec.NewPublicKey(&result.X, &result.Y)
	return sha256.Sum256(shared.SerializeCompressed()), nil
}

// DeriveAESKey derives the AES-256 key from an ECDH shared secret using HKDF-SHA256 with no salt.
func DeriveAESKey(secret [32]byte) [AESKeySize]byte {
	var key [AESKeySize]byte
	r := hkdf.New(sha256.New, secret[:], nil, hkdfInfo)
	if _, err := io.ReadFull(r, key[:]); err != nil {
		// HKDF-SHA256 can produce up to 8160 bytes.
		panic(err)
	}
	return key
}

// DeriveSharedKey derives the AES-256 key shared between the holder of sk and the holder of the
// private key for pk.
func DeriveSharedKey(sk, pk []byte) ([AESKeySize]byte, error) {
	secret, err := SharedSecret(sk, pk)
	if err != nil {
		return [AESKeySize]byte{}, err
	}
	return DeriveAESKey(secret), nil
}

// EncryptionState is the client side of a shielding session.
//
// It is immutable once derived and may be shared between goroutines.
type EncryptionState struct {
	AESKey           [AESKeySize]byte
	ClientPrivateKey [PrivateKeySize]byte
	ClientPublicKey  [PublicKeySize]byte
	NetworkPublicKey [PublicKeySize]byte
}

// DeriveEncryptionState derives the session state for the given network public key.
//
// When clientSK is nil a fresh client key is generated.
func DeriveEncryptionState(networkPK, clientSK []byte) (*EncryptionState, error) {
	var (
		kp  *KeyPair
		err error
	)
	if clientSK == nil {
		kp, err = GenerateKeyPair(rand.Reader)
	} else {
		kp, err = NewKeyPair(clientSK)
	}
	if err != nil {
		return nil, err
	}

	key, err := DeriveSharedKey(kp.PrivateKey[:], networkPK)
	if err != nil {
		return nil, err
	}

	es := &EncryptionState{
		AESKey:           key,
		ClientPrivateKey: kp.PrivateKey,
		ClientPublicKey:  kp.PublicKey,
	}
	copy(es.NetworkPublicKey[:], networkPK)
	return es, nil
}

// Matches returns true iff the state was derived for the given network public key.
func (es *EncryptionState) Matches(networkPK []byte) bool {
	key, err := DeriveSharedKey(es.ClientPrivateKey[:], networkPK)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(key[:], es.AESKey[:]) == 1
}

// String returns a representation of the state that does not include any key material.
func (es *EncryptionState) String() string {
	return fmt.Sprintf("EncryptionState{client: %s, network: %s}",
		hexutil.Encode(es.ClientPublicKey[:]),
		hexutil.Encode(es.NetworkPublicKey[:]),
	)
}
