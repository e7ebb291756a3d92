package helpers

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/SeismicSystems/seismic-go/config"
)

// ParseDenomination parses an amount in the network's native denomination into base units.
//
// Digits beyond the denomination's precision are truncated.
func ParseDenomination(net *config.Network, amount string) (*big.Int, error) {
	return parseDenomination(&net.Denomination, amount)
}

func parseDenomination(di *config.DenominationInfo, amount string) (*big.Int, error) {
	v, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, err
	}
	if v.IsNegative() {
		return nil, fmt.Errorf("amount must not be negative: %s", amount)
	}

	// Multiply to get the number of base units.
	baseUnits := v.Mul(decimal.New(1, int32(di.Decimals)))
	return baseUnits.BigInt(), nil
}

// FormatDenomination formats the given base unit amount in the network's native denomination.
func FormatDenomination(net *config.Network, amount *big.Int) string {
	return formatDenomination(&net.Denomination, amount)
}

func formatDenomination(di *config.DenominationInfo, amount *big.Int) string {
	if amount == nil {
		amount = new(big.Int)
	}
	s := decimal.NewFromBigInt(amount, -int32(di.Decimals)).String()
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return fmt.Sprintf("%s %s", s, di.GetSymbol())
}
