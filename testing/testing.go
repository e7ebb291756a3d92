// Package testing provides deterministic keys for tests.
package testing

import (
	"crypto/sha512"

	"github.com/ethereum/go-ethereum/common"

	"github.com/SeismicSystems/seismic-go/crypto/keyexchange"
	"github.com/SeismicSystems/seismic-go/crypto/signature"
	"github.com/SeismicSystems/seismic-go/crypto/signature/secp256k1"
)

// TestKey is a key used for testing.
type TestKey struct {
	SecretKey []byte
	Signer    signature.Signer
	Address   common.Address

	// KeyPair is the same secret used as an encryption key pair.
	KeyPair *keyexchange.KeyPair
}

func newSecp256k1TestKey(seed string) TestKey {
	sk := sha512.Sum512_256([]byte(seed))
	signer, err := secp256k1.NewSigner(sk[:])
	if err != nil {
		panic(err)
	}
	kp, err := keyexchange.NewKeyPair(sk[:])
	if err != nil {
		panic(err)
	}
	return TestKey{
		SecretKey: sk[:],
		Signer:    signer,
		Address:   signer.Public().Address(),
		KeyPair:   kp,
	}
}

var (
	// Alice is the test key A.
	Alice = newSecp256k1TestKey("seismic-go/test-keys: alice")
	// Bob is the test key B.
	Bob = newSecp256k1TestKey("seismic-go/test-keys: bob")
	// Charlie is the test key C.
	Charlie = newSecp256k1TestKey("seismic-go/test-keys: charlie")

	// EnclaveKey is the network key used by test nodes.
	EnclaveKey = newSecp256k1TestKey("seismic-go/test-keys: enclave")

	// TestAccounts contains all test account keys.
	TestAccounts = map[string]TestKey{
		"alice":   Alice,
		"bob":     Bob,
		"charlie": Charlie,
	}
)
