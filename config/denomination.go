package config

import "fmt"

// maxDecimals keeps amounts of one whole token within the uint256 range.
const maxDecimals = 77

// DenominationInfo is the denomination information for the given denomination.
type DenominationInfo struct {
	Symbol   string `mapstructure:"symbol"`
	Decimals uint8  `mapstructure:"decimals"`
}

// Validate performs config validation.
func (di *DenominationInfo) Validate() error {
	if di.Decimals > maxDecimals {
		return fmt.Errorf("denomination '%s' has too many decimals: %d", di.Symbol, di.Decimals)
	}
	return nil
}

// GetSymbol returns the configured symbol or the native one.
func (di *DenominationInfo) GetSymbol() string {
	if di.Symbol == "" {
		return NativeSymbol
	}
	return di.Symbol
}
