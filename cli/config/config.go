package config

import (
	"bytes"
	"fmt"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/SeismicSystems/seismic-go/config"
	"github.com/SeismicSystems/seismic-go/wallet"
)

var global Config

// Directory returns the path to the configuration directory.
func Directory() string {
	return filepath.Join(xdg.ConfigHome, "seismic")
}

// AccountStore opens the store holding the encrypted account files.
func AccountStore() (*wallet.Store, error) {
	return wallet.NewStore(filepath.Join(Directory(), "accounts"))
}

// Global returns the global configuration structure.
func Global() *Config {
	return &global
}

// Load loads the global configuration structure from viper.
func Load(v *viper.Viper) error {
	return global.Load(v)
}

// Save saves the global configuration structure to viper.
func Save(v *viper.Viper) error {
	global.viper = v
	return global.Save()
}

// ResetDefaults resets the global configuration to defaults.
func ResetDefaults() {
	global = Default
}

// Config contains the CLI configuration.
type Config struct {
	viper *viper.Viper

	Networks config.Networks `mapstructure:"networks"`
	Accounts Accounts        `mapstructure:"accounts"`
}

// Load loads the configuration structure from viper.
func (cfg *Config) Load(v *viper.Viper) error {
	cfg.viper = v
	return v.Unmarshal(cfg)
}

// encode converts the configuration into the nested map layout that Load decodes.
//
// Network and account entries live next to the "default" key of their section.
func (cfg *Config) encode() (map[string]interface{}, error) {
	networks := map[string]interface{}{"default": cfg.Networks.Default}
	for name, net := range cfg.Networks.All {
		if _, exists := networks[name]; exists {
			return nil, fmt.Errorf("network name '%s' is reserved", name)
		}
		enc, err := toMap(net)
		if err != nil {
			return nil, fmt.Errorf("failed to encode network '%s': %w", name, err)
		}
		networks[name] = enc
	}

	accounts := map[string]interface{}{"default": cfg.Accounts.Default}
	for name, acc := range cfg.Accounts.All {
		if _, exists := accounts[name]; exists {
			return nil, fmt.Errorf("account name '%s' is reserved", name)
		}
		enc := map[string]interface{}{
			"description": acc.Description,
			"address":     acc.Address,
		}
		// Algorithm-specific settings are stored inline.
		for k, v := range acc.Config {
			if _, exists := enc[k]; exists {
				return nil, fmt.Errorf("account '%s': duplicate key '%s'", name, k)
			}
			enc[k] = v
		}
		accounts[name] = enc
	}

	return map[string]interface{}{
		"networks": networks,
		"accounts": accounts,
	}, nil
}

// toMap encodes a struct into a map keyed by its mapstructure tags. Nested structs become nested
// maps.
func toMap(in interface{}) (map[string]interface{}, error) {
	out := make(map[string]interface{})
	if err := mapstructure.Decode(in, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Save saves the configuration structure to viper.
func (cfg *Config) Save() error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	rawCfg, err := cfg.encode()
	if err != nil {
		return err
	}

	// There is no other way to reset the config, so we use ReadConfig with an empty buffer.
	var buf bytes.Buffer
	_ = cfg.viper.ReadConfig(&buf)
	// Rewrite config to use the new map.
	if err = cfg.viper.MergeConfigMap(rawCfg); err != nil {
		return err
	}

	return cfg.viper.WriteConfig()
}

// Validate performs config validation.
func (cfg *Config) Validate() error {
	if err := cfg.Networks.Validate(); err != nil {
		return fmt.Errorf("failed to validate network configuration: %w", err)
	}
	if err := cfg.Accounts.Validate(); err != nil {
		return fmt.Errorf("failed to validate account configuration: %w", err)
	}
	return nil
}
