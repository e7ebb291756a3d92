package helpers

import (
	"fmt"
	"strings"

	ethCommon "github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"

	"github.com/SeismicSystems/seismic-go/crypto/signature/secp256k1"
	"github.com/SeismicSystems/seismic-go/testing"
)

const (
	addressPrefixEth = "0x"

	addressExplicitSeparator = ":"
	addressExplicitTest      = "test"
)

// ResolveAddress resolves a string address into the corresponding account address.
//
// Supported formats are hex-encoded addresses and test account names of the form "test:alice".
func ResolveAddress(address string) (*ethCommon.Address, error) {
	switch {
	case strings.HasPrefix(address, addressPrefixEth):
		if !ethCommon.IsHexAddress(address) {
			return nil, fmt.Errorf("malformed address: %s", address)
		}
		addr := ethCommon.HexToAddress(address)
		return &addr, nil
	case strings.Contains(address, addressExplicitSeparator):
		subs := strings.SplitN(address, addressExplicitSeparator, 2)
		switch kind, data := subs[0], subs[1]; kind {
		case addressExplicitTest:
			// Test key.
			if testKey, ok := testing.TestAccounts[data]; ok {
				return &testKey.Address, nil
			}
			return nil, fmt.Errorf("unsupported test account: %s", data)
		default:
			// Unsupported kind.
			return nil, fmt.Errorf("unsupported explicit address kind: %s", kind)
		}
	default:
		return nil, fmt.Errorf("unsupported address format")
	}
}

// ParseTestAccountAddress extracts test account name from "test:some_test_account" format or
// returns an empty string, if the format doesn't match.
func ParseTestAccountAddress(name string) string {
	if strings.Contains(name, addressExplicitSeparator) {
		subs := strings.SplitN(name, addressExplicitSeparator, 2)
		if subs[0] == addressExplicitTest {
			return subs[1]
		}
	}

	return ""
}

// EthAddressFromPubKey takes public key, extracts the ethereum address and returns its checksummed
// case-sensitive variant.
func EthAddressFromPubKey(pk secp256k1.PublicKey) string {
	h := sha3.NewLegacyKeccak256()
	h.Write(pk.MarshalBinaryUncompressedUntagged())
	hash := h.Sum(nil)

	var ethAddress ethCommon.Address
	ethAddress.SetBytes(hash[32-20:])

	return ethAddress.Hex()
}
