package cmd

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/SeismicSystems/seismic-go/cli/cmd/common"
	cliConfig "github.com/SeismicSystems/seismic-go/cli/config"
	"github.com/SeismicSystems/seismic-go/cli/table"
	"github.com/SeismicSystems/seismic-go/config"
	"github.com/SeismicSystems/seismic-go/connection"
)

var (
	networkCmd = &cobra.Command{
		Use:   "network",
		Short: "Manage network endpoints",
	}

	networkListCmd = &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List configured networks",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cfg := cliConfig.Global()
			table := table.New()
			table.SetHeader([]string{"Name", "Chain ID", "RPC"})

			var output [][]string
			for name, net := range cfg.Networks.All {
				displayName := name
				if cfg.Networks.Default == name {
					displayName += defaultMarker
				}

				output = append(output, []string{
					displayName,
					strconv.FormatUint(net.ChainID, 10),
					net.RPC,
				})
			}

			// Sort output by name.
			sort.Slice(output, func(i, j int) bool {
				return output[i][0] < output[j][0]
			})

			table.AppendBulk(output)
			table.Render()
		},
	}

	networkAddCmd = &cobra.Command{
		Use:   "add <name> <chain-id> <rpc-endpoint>",
		Short: "Add a new network",
		Args:  cobra.ExactArgs(3),
		Run: func(cmd *cobra.Command, args []string) {
			cfg := cliConfig.Global()
			name, rawChainID, rpc := args[0], args[1], args[2]

			chainID, err := strconv.ParseUint(rawChainID, 10, 64)
			cobra.CheckErr(err)

			net := config.Network{
				ChainID: chainID,
				RPC:     rpc,
			}
			// Validate initial network configuration early.
			cobra.CheckErr(config.ValidateIdentifier(name))
			cobra.CheckErr(net.Validate())

			// Ask user for some additional parameters.
			networkDetailsFromSurvey(&net)

			err = cfg.Networks.Add(name, &net)
			cobra.CheckErr(err)

			err = cfg.Save()
			cobra.CheckErr(err)
		},
	}

	networkAddLocalCmd = &cobra.Command{
		Use:   "add-local <name> <rpc-endpoint>",
		Short: "Add a new network, querying the chain id from the node",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			cfg := cliConfig.Global()
			name, rpc := args[0], args[1]

			net := config.Network{
				RPC: rpc,
			}
			// Validate initial network configuration early.
			cobra.CheckErr(config.ValidateIdentifier(name))

			// Connect to the network and query the chain id.
			ctx := context.Background()
			conn, err := connection.ConnectNoVerify(ctx, &net)
			cobra.CheckErr(err)
			defer conn.Close()

			chainID, err := conn.Runtime().ChainID(ctx)
			cobra.CheckErr(err)
			if !chainID.IsUint64() {
				cobra.CheckErr(fmt.Errorf("chain id %s out of range", chainID))
			}
			net.ChainID = chainID.Uint64()

			// With a very high probability, the user is going to be
			// adding a local endpoint for an existing network, so try
			// to clone config details from any of the hardcoded
			// defaults.
			var clonedDefault bool
			for _, defaultNet := range config.DefaultNetworks.All {
				if defaultNet.ChainID != net.ChainID {
					continue
				}

				// Yep.
				net.Denomination = defaultNet.Denomination
				net.Shielding = defaultNet.Shielding
				clonedDefault = true
				break
			}

			// If we failed to crib details from a hardcoded config,
			// ask the user.
			if !clonedDefault {
				networkDetailsFromSurvey(&net)
			}
			cobra.CheckErr(net.Validate())

			err = cfg.Networks.Add(name, &net)
			cobra.CheckErr(err)

			err = cfg.Save()
			cobra.CheckErr(err)
		},
	}

	networkRmCmd = &cobra.Command{
		Use:     "rm <name>",
		Aliases: []string{"remove"},
		Short:   "Remove an existing network",
		Args:    cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			cfg := cliConfig.Global()
			name := args[0]

			if _, exists := cfg.Networks.All[name]; !exists {
				cobra.CheckErr(fmt.Errorf("network '%s' does not exist", name))
			}

			if cfg.Networks.Default == name {
				fmt.Printf("WARNING: Network '%s' is the default network.\n", name)
				common.Confirm("Are you sure you want to remove the network?", "not removing network")
			}

			err := cfg.Networks.Remove(name)
			cobra.CheckErr(err)

			err = cfg.Save()
			cobra.CheckErr(err)
		},
	}

	networkSetDefaultCmd = &cobra.Command{
		Use:   "set-default <name>",
		Short: "Sets the given network as the default network",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			cfg := cliConfig.Global()
			name := args[0]

			err := cfg.Networks.SetDefault(name)
			cobra.CheckErr(err)

			err = cfg.Save()
			cobra.CheckErr(err)
		},
	}

	networkSetRPCCmd = &cobra.Command{
		Use:   "set-rpc <name> <rpc-endpoint>",
		Short: "Sets the RPC endpoint of the given network",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			cfg := cliConfig.Global()
			name, rpc := args[0], args[1]

			net := cfg.Networks.All[name]
			if net == nil {
				cobra.CheckErr(fmt.Errorf("network '%s' does not exist", name))
				return // To make staticcheck happy as it doesn't know CheckErr exits.
			}

			net.RPC = rpc
			cobra.CheckErr(net.Validate())

			err := cfg.Save()
			cobra.CheckErr(err)
		},
	}
)

func networkDetailsFromSurvey(net *config.Network) {
	// Ask user for some additional parameters.
	questions := []*survey.Question{
		{
			Name:   "description",
			Prompt: &survey.Input{Message: "Description:"},
		},
		{
			Name: "symbol",
			Prompt: &survey.Input{
				Message: "Denomination symbol:",
				Default: config.NativeSymbol,
			},
		},
		{
			Name: "decimals",
			Prompt: &survey.Input{
				Message: "Denomination decimal places:",
				Default: "18",
			},
			Validate: survey.Required,
		},
		{
			Name: "expiresin",
			Prompt: &survey.Input{
				Message: "Blocks until shielded transactions expire:",
				Default: "100",
			},
			Validate: survey.Required,
		},
	}
	answers := struct {
		Description string
		Symbol      string
		Decimals    uint8
		ExpiresIn   uint64
	}{}
	err := survey.Ask(questions, &answers)
	cobra.CheckErr(err)

	net.Description = answers.Description
	net.Denomination.Symbol = answers.Symbol
	net.Denomination.Decimals = answers.Decimals
	net.Shielding.ExpiresIn = answers.ExpiresIn
}

func init() {
	networkCmd.AddCommand(networkListCmd)
	networkCmd.AddCommand(networkAddCmd)
	networkCmd.AddCommand(networkAddLocalCmd)
	networkRmCmd.Flags().AddFlagSet(common.ConfirmFlags)
	networkCmd.AddCommand(networkRmCmd)
	networkCmd.AddCommand(networkSetDefaultCmd)
	networkCmd.AddCommand(networkSetRPCCmd)
}
