package wallet

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	flag "github.com/spf13/pflag"
)

const (
	// CfgAlgorithm is the flag selecting the account algorithm.
	CfgAlgorithm = "file.algorithm"
	// CfgNumber is the flag selecting the key number in the derivation scheme.
	CfgNumber = "file.number"
)

// Flags returns the CLI flags that can be used for configuring accounts.
func Flags() *flag.FlagSet {
	flags := flag.NewFlagSet("", flag.ContinueOnError)
	flags.String(CfgAlgorithm, AlgorithmSecp256k1Bip44, fmt.Sprintf("Cryptographic algorithm to use for this account [%s, %s]", AlgorithmSecp256k1Bip44, AlgorithmSecp256k1Raw))
	flags.Uint32(CfgNumber, 0, "Key number to use in the key derivation scheme")
	return flags
}

// ConfigFromFlags generates account configuration from flags.
func ConfigFromFlags(flags *flag.FlagSet) (map[string]interface{}, error) {
	algorithm, err := flags.GetString(CfgAlgorithm)
	if err != nil {
		return nil, err
	}
	number, err := flags.GetUint32(CfgNumber)
	if err != nil {
		return nil, err
	}
	cfg := map[string]interface{}{
		"algorithm": algorithm,
		"number":    number,
	}
	if _, err = DecodeConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DataPrompt returns a survey prompt for entering data when importing an account.
func DataPrompt(kind ImportKind) survey.Prompt {
	switch kind {
	case ImportKindMnemonic:
		return &survey.Multiline{Message: "Mnemonic:"}
	case ImportKindPrivateKey:
		return &survey.Password{Message: "Private key (hex-encoded):"}
	default:
		return nil
	}
}

// DataValidator returns a survey data input validator used when importing an account.
func DataValidator(kind ImportKind) survey.Validator {
	return func(ans interface{}) error {
		data, ok := ans.(string)
		if !ok {
			return fmt.Errorf("unexpected answer type: %T", ans)
		}
		data = strings.TrimSpace(data)

		switch kind {
		case ImportKindMnemonic:
			return ValidateMnemonic(data)
		case ImportKindPrivateKey:
			// Ensure the private key is hex encoded.
			if _, err := hex.DecodeString(strings.TrimPrefix(data, "0x")); err != nil {
				return fmt.Errorf("private key must be hex-encoded: %w", err)
			}
			return nil
		default:
			return fmt.Errorf("unsupported import kind: %s", kind)
		}
	}
}
