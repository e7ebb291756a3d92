package wallet

import (
	"encoding/hex"
	"fmt"
	"strings"

	hdwallet "github.com/miguelmota/go-ethereum-hdwallet"
	bip39 "github.com/tyler-smith/go-bip39"

	"github.com/SeismicSystems/seismic-go/crypto/signature"
	"github.com/SeismicSystems/seismic-go/crypto/signature/secp256k1"
	"github.com/SeismicSystems/seismic-go/types"
)

const (
	// privateKeySize is the length of Secp256k1 private key (32 bytes).
	privateKeySize = 32

	// Bip44DerivationPath is the derivation path defined by BIP-44.
	Bip44DerivationPath = "m/44'/60'/0'/0/%d"

	// DevMnemonic is the well-known mnemonic funding development accounts on local nodes.
	DevMnemonic = "test test test test test test test test test test test junk"
)

// NewMnemonic generates a new 24-word BIP-39 mnemonic.
func NewMnemonic() (string, error) {
	entropy, err := bip39.NewEntropy(256)
	if err != nil {
		return "", err
	}
	return bip39.NewMnemonic(entropy)
}

// ValidateMnemonic checks whether the mnemonic is a valid BIP-39 mnemonic.
func ValidateMnemonic(mnemonic string) error {
	if !bip39.IsMnemonicValid(mnemonic) {
		return fmt.Errorf("invalid mnemonic")
	}
	return nil
}

// Secp256k1FromMnemonic derives a signer using BIP-44 from given mnemonic.
func Secp256k1FromMnemonic(mnemonic string, number uint32) (signature.Signer, error) {
	if err := ValidateMnemonic(mnemonic); err != nil {
		return nil, err
	}
	wallet, err := hdwallet.NewFromMnemonic(mnemonic)
	if err != nil {
		return nil, fmt.Errorf("failed to parse mnemonic: %w", err)
	}
	path := hdwallet.MustParseDerivationPath(fmt.Sprintf(Bip44DerivationPath, number))
	account, err := wallet.Derive(path, false)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key from mnemonic: %w", err)
	}
	pk, err := wallet.PrivateKeyBytes(account)
	if err != nil {
		return nil, fmt.Errorf("failed to obtain generated private key: %w", err)
	}
	return secp256k1.NewSigner(pk)
}

// Secp256k1FromHex creates a signer from given hex-encoded private key.
func Secp256k1FromHex(text string) (signature.Signer, error) {
	text = strings.TrimPrefix(strings.TrimSpace(text), "0x")
	data, err := hex.DecodeString(text)
	if err != nil {
		return nil, err
	}

	if len(data) != privateKeySize {
		return nil, types.ErrInvalidPrivateKey
	}

	return secp256k1.NewSigner(data)
}
