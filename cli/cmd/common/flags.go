package common

import (
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/SeismicSystems/seismic-go/helpers"
	"github.com/SeismicSystems/seismic-go/modules/seismic"
	"github.com/SeismicSystems/seismic-go/types"
)

var (
	txGasLimit       uint64
	txGasPrice       string
	txExpiresIn      uint64
	txMessageVersion uint8
	txTransparent    bool
	txDebug          bool
)

// TransactionFlags contains the common transaction flags.
var TransactionFlags *flag.FlagSet

// TransactionConfig contains the transaction-related configuration from flags.
type TransactionConfig struct {
	// Transparent is a flag indicating that calldata should not be encrypted.
	Transparent bool
	// Debug is a flag indicating that the plaintext transaction should be shown as well.
	Debug bool
}

// GetTransactionConfig returns the transaction-related configuration from flags.
func GetTransactionConfig() *TransactionConfig {
	return &TransactionConfig{
		Transparent: txTransparent,
		Debug:       txDebug,
	}
}

// ApplyTransactionFlags fills in the request parameters from flags, falling back to the network's
// shielding configuration.
func ApplyTransactionFlags(sel *NASelection, req *seismic.Request) error {
	shielding := &sel.Network.Shielding

	req.Gas = shielding.GetGasLimit()
	if txGasLimit != 0 {
		req.Gas = txGasLimit
	}
	req.ExpiresIn = shielding.GetExpiresIn()
	if txExpiresIn != 0 {
		req.ExpiresIn = txExpiresIn
	}
	req.MessageVersion = shielding.GetMessageVersion()
	if TransactionFlags.Changed("message-version") {
		req.MessageVersion = types.MessageVersion(txMessageVersion)
	}
	if err := req.MessageVersion.ValidateBasic(); err != nil {
		return err
	}

	if txGasPrice != "" {
		price, err := helpers.ParseDenomination(sel.Network, txGasPrice)
		if err != nil {
			return fmt.Errorf("bad gas price: %w", err)
		}
		req.GasPrice = price
	}
	req.Debug = txDebug
	return nil
}

func init() {
	TransactionFlags = flag.NewFlagSet("", flag.ContinueOnError)
	TransactionFlags.Uint64Var(&txGasLimit, "gas-limit", 0, "override gas limit to use")
	TransactionFlags.StringVar(&txGasPrice, "gas-price", "", "override gas price to use (in native denomination)")
	TransactionFlags.Uint64Var(&txExpiresIn, "expires-in", 0, "override number of blocks after which the transaction expires")
	TransactionFlags.Uint8Var(&txMessageVersion, "message-version", 0, "signing mode: 0 (plain) or 2 (EIP-712)")
	TransactionFlags.BoolVar(&txTransparent, "transparent", false, "do not encrypt calldata")
	TransactionFlags.BoolVar(&txDebug, "debug", false, "also show the plaintext transaction")
}
