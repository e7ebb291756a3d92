package secp256k1

import (
	"crypto/ecdsa"
	"fmt"
	"runtime"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/ethereum/go-ethereum/crypto"

	sdkSignature "github.com/SeismicSystems/seismic-go/crypto/signature"
)

// Signer is a secp256k1 signer producing Ethereum-style recoverable signatures.
type Signer struct {
	privateKey *ecdsa.PrivateKey
	public     PublicKey
}

// Public returns the PublicKey corresponding to the signer.
func (s *Signer) Public() sdkSignature.PublicKey {
	return s.public
}

// SignDigest generates a recoverable R || S || V signature over the 32-byte digest.
func (s *Signer) SignDigest(digest []byte) ([]byte, error) {
	if s.privateKey.D.Sign() == 0 {
		return nil, fmt.Errorf("secp256k1: signer has been reset")
	}
	return crypto.Sign(digest, s.privateKey)
}

// ECDSA returns the underlying private key.
func (s *Signer) ECDSA() *ecdsa.PrivateKey {
	return s.privateKey
}

func (s *Signer) String() string {
	return s.public.String()
}

func (s *Signer) Reset() {
	s.privateKey.D.SetInt64(0)
	runtime.GC()
}

// NewSigner creates a new Secp256k1 signer using the given 32-byte private key.
func NewSigner(sk []byte) (*Signer, error) {
	privKey, err := crypto.ToECDSA(sk)
	if err != nil {
		return nil, fmt.Errorf("secp256k1: invalid private key: %w", err)
	}
	_, bpk := btcec.PrivKeyFromBytes(sk)
	return &Signer{
		privateKey: privKey,
		public:     PublicKey(*bpk),
	}, nil
}
