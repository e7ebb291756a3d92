package config

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/SeismicSystems/seismic-go/config"
	"github.com/SeismicSystems/seismic-go/wallet"
)

// Accounts contains the configuration of accounts.
type Accounts struct {
	// Default is the name of the default account.
	Default string `mapstructure:"default"`

	// All is a map of all configured accounts.
	All map[string]*Account `mapstructure:",remain"`
}

// Validate performs config validation.
func (a *Accounts) Validate() error {
	// Make sure the default account actually exists.
	if _, exists := a.All[a.Default]; a.Default != "" && !exists {
		return fmt.Errorf("default account '%s' does not exist", a.Default)
	}

	// Make sure all accounts are valid.
	for name, acc := range a.All {
		if err := config.ValidateIdentifier(name); err != nil {
			return fmt.Errorf("malformed account name '%s': %w", name, err)
		}

		if err := acc.Validate(); err != nil {
			return fmt.Errorf("account '%s': %w", name, err)
		}
	}

	return nil
}

func (a *Accounts) add(name string, na *Account, acc wallet.Account) {
	// Store address so we don't need to load the account to see the address.
	na.Address = acc.Address().Hex()

	if a.All == nil {
		a.All = make(map[string]*Account)
	}
	a.All[name] = na

	// Set default if not set.
	if a.Default == "" {
		a.Default = name
	}
}

func (a *Accounts) checkNew(name string) error {
	if _, exists := a.All[name]; exists {
		return fmt.Errorf("account '%s' already exists", name)
	}
	if err := config.ValidateIdentifier(name); err != nil {
		return fmt.Errorf("malformed account name '%s': %w", name, err)
	}
	return nil
}

// Create creates a new account.
func (a *Accounts) Create(store *wallet.Store, name string, passphrase string, na *Account) error {
	if err := a.checkNew(name); err != nil {
		return err
	}
	cfg, err := wallet.DecodeConfig(na.Config)
	if err != nil {
		return err
	}
	acc, err := store.Create(name, passphrase, cfg)
	if err != nil {
		return err
	}
	a.add(name, na, acc)
	return nil
}

// Import imports an existing account.
func (a *Accounts) Import(store *wallet.Store, name string, passphrase string, na *Account, src *wallet.ImportSource) error {
	if err := a.checkNew(name); err != nil {
		return err
	}
	cfg, err := wallet.DecodeConfig(na.Config)
	if err != nil {
		return err
	}
	if cfg.Algorithm != src.Kind.Algorithm() {
		return fmt.Errorf("algorithm '%s' does not support import from %s", cfg.Algorithm, src.Kind)
	}
	acc, err := store.Import(name, passphrase, src, cfg.Number)
	if err != nil {
		return err
	}
	a.add(name, na, acc)
	return nil
}

// Load loads the given account.
func (a *Accounts) Load(store *wallet.Store, name string, passphrase string) (wallet.Account, error) {
	na, exists := a.All[name]
	if !exists {
		return nil, fmt.Errorf("account '%s' does not exist", name)
	}
	cfg, err := wallet.DecodeConfig(na.Config)
	if err != nil {
		return nil, err
	}

	acc, err := store.Load(name, passphrase, cfg)
	if err != nil {
		return nil, err
	}

	// Make sure the address matches what we have in the config.
	if expected, actual := na.GetAddress(), acc.Address(); expected != actual {
		return nil, fmt.Errorf("address mismatch after loading account (expected: %s got: %s)",
			expected,
			actual,
		)
	}

	return acc, nil
}

// Remove removes the given account.
func (a *Accounts) Remove(store *wallet.Store, name string) error {
	if _, exists := a.All[name]; !exists {
		return fmt.Errorf("account '%s' does not exist", name)
	}

	if err := store.Remove(name); err != nil {
		return err
	}

	delete(a.All, name)

	// Clear default if set to this account.
	if a.Default == name {
		a.Default = ""
	}

	return nil
}

// Rename renames an existing account.
func (a *Accounts) Rename(store *wallet.Store, old, new string) error {
	na, exists := a.All[old]
	if !exists {
		return fmt.Errorf("account '%s' does not exist", old)
	}
	if err := a.checkNew(new); err != nil {
		return err
	}

	if err := store.Rename(old, new); err != nil {
		return err
	}

	delete(a.All, old)
	a.All[new] = na

	if a.Default == old {
		a.Default = new
	}

	return nil
}

// SetDefault sets the given account as the default account.
func (a *Accounts) SetDefault(name string) error {
	if _, exists := a.All[name]; !exists {
		return fmt.Errorf("account '%s' does not exist", name)
	}

	a.Default = name

	return nil
}

// Account is an account configuration object.
type Account struct {
	Description string `mapstructure:"description"`
	Address     string `mapstructure:"address"`

	// Config contains the algorithm-specific configuration for this account.
	Config map[string]interface{} `mapstructure:",remain"`
}

// Validate performs config validation.
func (a *Account) Validate() error {
	// Check that address is valid.
	if !common.IsHexAddress(a.Address) {
		return fmt.Errorf("malformed address '%s'", a.Address)
	}

	if _, err := wallet.DecodeConfig(a.Config); err != nil {
		return err
	}

	return nil
}

// GetAddress returns the parsed account address.
func (a *Account) GetAddress() common.Address {
	return common.HexToAddress(a.Address)
}
