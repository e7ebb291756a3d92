package config

import (
	"fmt"

	"github.com/SeismicSystems/seismic-go/callformat"
	"github.com/SeismicSystems/seismic-go/client"
	"github.com/SeismicSystems/seismic-go/types"
)

// Shielding contains the parameters used when building shielded transactions.
type Shielding struct {
	// ExpiresIn is the number of blocks after the recent block at which transactions expire.
	ExpiresIn uint64 `mapstructure:"expires_in"`
	// MessageVersion is the signing mode of shielded transactions.
	MessageVersion uint8 `mapstructure:"message_version"`
	// GasLimit is the default gas limit.
	GasLimit uint64 `mapstructure:"gas_limit"`
}

// Validate performs config validation.
func (s *Shielding) Validate() error {
	if err := types.MessageVersion(s.MessageVersion).ValidateBasic(); err != nil {
		return fmt.Errorf("shielding: %w", err)
	}
	return nil
}

// GetExpiresIn returns the configured expiry or the default one.
func (s *Shielding) GetExpiresIn() uint64 {
	if s.ExpiresIn == 0 {
		return callformat.DefaultExpiresIn
	}
	return s.ExpiresIn
}

// GetGasLimit returns the configured gas limit or the default one.
func (s *Shielding) GetGasLimit() uint64 {
	if s.GasLimit == 0 {
		return client.DefaultGasLimit
	}
	return s.GasLimit
}

// GetMessageVersion returns the configured message version.
func (s *Shielding) GetMessageVersion() types.MessageVersion {
	return types.MessageVersion(s.MessageVersion)
}
