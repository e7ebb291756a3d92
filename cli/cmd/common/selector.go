package common

import (
	"fmt"

	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"

	cliConfig "github.com/SeismicSystems/seismic-go/cli/config"
	"github.com/SeismicSystems/seismic-go/config"
)

var (
	selectedNetwork string
	selectedAccount string
)

// SelectorFlags contains the common selector flags for network/account.
var SelectorFlags *flag.FlagSet

// NASelection contains the network/account selection.
type NASelection struct {
	NetworkName string
	Network     *config.Network

	AccountName string
	Account     *cliConfig.Account
}

// GetNASelection returns the user-selected network/account combination.
func GetNASelection(cfg *cliConfig.Config) *NASelection {
	var s NASelection
	s.NetworkName = cfg.Networks.Default
	if selectedNetwork != "" {
		s.NetworkName = selectedNetwork
	}
	if s.NetworkName == "" {
		cobra.CheckErr(fmt.Errorf("no networks configured"))
	}
	s.Network = cfg.Networks.All[s.NetworkName]
	if s.Network == nil {
		cobra.CheckErr(fmt.Errorf("network '%s' does not exist", s.NetworkName))
	}

	s.AccountName = cfg.Accounts.Default
	if selectedAccount != "" {
		s.AccountName = selectedAccount
	}
	if s.AccountName != "" && !isEphemeralAccount(s.AccountName) {
		s.Account = cfg.Accounts.All[s.AccountName]
		if s.Account == nil {
			cobra.CheckErr(fmt.Errorf("account '%s' does not exist", s.AccountName))
		}
	}

	return &s
}

func init() {
	SelectorFlags = flag.NewFlagSet("", flag.ContinueOnError)
	SelectorFlags.StringVar(&selectedNetwork, "network", "", "explicitly set network to use")
	SelectorFlags.StringVar(&selectedAccount, "account", "", "explicitly set account to use (or test:<name>, dev:<number>)")
}
