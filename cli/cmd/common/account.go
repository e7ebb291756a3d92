package common

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"

	cliConfig "github.com/SeismicSystems/seismic-go/cli/config"
	"github.com/SeismicSystems/seismic-go/crypto/signature"
	"github.com/SeismicSystems/seismic-go/helpers"
	"github.com/SeismicSystems/seismic-go/testing"
	"github.com/SeismicSystems/seismic-go/wallet"
)

const devAccountPrefix = "dev:"

var privateKey string

// SignerFlags contains the flags for providing a signer without a stored account.
var SignerFlags *flag.FlagSet

func isEphemeralAccount(name string) bool {
	return helpers.ParseTestAccountAddress(name) != "" || strings.HasPrefix(name, devAccountPrefix)
}

// LoadAccount loads the given named account.
func LoadAccount(cfg *cliConfig.Config, name string) wallet.Account {
	// Early check for whether the account exists so that we don't ask for passphrase first.
	if _, exists := cfg.Accounts.All[name]; !exists {
		cobra.CheckErr(fmt.Errorf("account '%s' does not exist", name))
	}

	store, err := cliConfig.AccountStore()
	cobra.CheckErr(err)

	// Ask for passphrase to decrypt the account.
	fmt.Printf("Unlock your account.\n")

	var passphrase string
	err = survey.AskOne(PromptPassphrase, &passphrase)
	cobra.CheckErr(err)

	acc, err := cfg.Accounts.Load(store, name, passphrase)
	cobra.CheckErr(err)

	return acc
}

// LoadSigner returns the signer for the selected account.
//
// An explicit private key takes precedence over the selected account. Test accounts and
// development accounts derived from the well-known development mnemonic are supported for local
// networks.
func LoadSigner(cfg *cliConfig.Config, sel *NASelection) signature.Signer {
	if privateKey != "" {
		signer, err := wallet.Secp256k1FromHex(privateKey)
		cobra.CheckErr(err)
		return signer
	}

	switch name := sel.AccountName; {
	case name == "":
		cobra.CheckErr(fmt.Errorf("no accounts configured"))
	case helpers.ParseTestAccountAddress(name) != "":
		testKey, ok := testing.TestAccounts[helpers.ParseTestAccountAddress(name)]
		if !ok {
			cobra.CheckErr(fmt.Errorf("test account '%s' does not exist", name))
		}
		return testKey.Signer
	case strings.HasPrefix(name, devAccountPrefix):
		number, err := strconv.ParseUint(strings.TrimPrefix(name, devAccountPrefix), 10, 32)
		cobra.CheckErr(err)
		signer, err := wallet.Secp256k1FromMnemonic(wallet.DevMnemonic, uint32(number))
		cobra.CheckErr(err)
		return signer
	}
	return LoadAccount(cfg, sel.AccountName).Signer()
}

func init() {
	SignerFlags = flag.NewFlagSet("", flag.ContinueOnError)
	SignerFlags.StringVar(&privateKey, "private-key", "", "hex-encoded private key to sign with instead of a stored account")
}
