// Package wallet implements file-backed accounts for signing Seismic transactions.
package wallet

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/SeismicSystems/seismic-go/crypto/signature"
)

const (
	// AlgorithmSecp256k1Bip44 is the Secp256k1 algorithm using BIP-44 derivation.
	AlgorithmSecp256k1Bip44 = "secp256k1-bip44"
	// AlgorithmSecp256k1Raw is the Secp256k1 algorithm using raw private keys.
	AlgorithmSecp256k1Raw = "secp256k1-raw"
)

// ImportKind is an account import kind.
type ImportKind string

// Supported import kinds.
const (
	ImportKindMnemonic   ImportKind = "mnemonic"
	ImportKindPrivateKey ImportKind = "private key"
)

// UnmarshalText decodes a text marshalled import kind.
func (k *ImportKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case string(ImportKindMnemonic):
		*k = ImportKindMnemonic
	case string(ImportKindPrivateKey):
		*k = ImportKindPrivateKey
	default:
		return fmt.Errorf("unknown import kind: %s", string(text))
	}
	return nil
}

// Algorithm returns the signing algorithm used for accounts of this import kind.
func (k ImportKind) Algorithm() string {
	switch k {
	case ImportKindMnemonic:
		return AlgorithmSecp256k1Bip44
	default:
		return AlgorithmSecp256k1Raw
	}
}

// ImportKinds returns all of the available account import kinds.
func ImportKinds() []string {
	return []string{
		string(ImportKindMnemonic),
		string(ImportKindPrivateKey),
	}
}

// ImportSource is a source of imported account key material.
type ImportSource struct {
	Kind ImportKind
	Data string
}

// Account is the account interface.
type Account interface {
	// Signer returns the signer associated with the account.
	Signer() signature.Signer

	// Address returns the address associated with the account.
	Address() common.Address

	// UnsafeExport exports the account's secret state.
	UnsafeExport() string
}

// AccountConfig is the account configuration stored alongside the sealed secret.
type AccountConfig struct {
	Algorithm string `mapstructure:"algorithm"`
	Number    uint32 `mapstructure:"number,omitempty"`
}

// Validate performs config validation.
func (cfg *AccountConfig) Validate() error {
	switch cfg.Algorithm {
	case AlgorithmSecp256k1Bip44:
	case AlgorithmSecp256k1Raw:
		if cfg.Number != 0 {
			return fmt.Errorf("algorithm '%s' does not support key numbers", cfg.Algorithm)
		}
	default:
		return fmt.Errorf("algorithm '%s' not supported", cfg.Algorithm)
	}
	return nil
}

type account struct {
	cfg    *AccountConfig
	data   string
	signer signature.Signer
}

func newAccount(data string, cfg *AccountConfig) (Account, error) {
	var (
		signer signature.Signer
		err    error
	)
	switch cfg.Algorithm {
	case AlgorithmSecp256k1Bip44:
		// For Secp256k1-BIP-44 use the BIP-44 derivation scheme.
		signer, err = Secp256k1FromMnemonic(data, cfg.Number)
	case AlgorithmSecp256k1Raw:
		// For Secp256k1-Raw use the raw private key.
		signer, err = Secp256k1FromHex(data)
	default:
		return nil, fmt.Errorf("algorithm '%s' not supported", cfg.Algorithm)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize signer: %w", err)
	}
	return &account{
		cfg:    cfg,
		data:   data,
		signer: signer,
	}, nil
}

// Import creates an in-memory account from the given key material without storing it.
func Import(src *ImportSource, number uint32) (Account, error) {
	cfg := &AccountConfig{
		Algorithm: src.Kind.Algorithm(),
		Number:    number,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newAccount(src.Data, cfg)
}

func (a *account) Signer() signature.Signer {
	return a.signer
}

func (a *account) Address() common.Address {
	return a.signer.Public().Address()
}

func (a *account) UnsafeExport() string {
	return a.data
}
