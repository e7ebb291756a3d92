package cmd

import (
	"fmt"
	"sort"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
	flag "github.com/spf13/pflag"

	"github.com/SeismicSystems/seismic-go/cli/cmd/common"
	"github.com/SeismicSystems/seismic-go/cli/config"
	"github.com/SeismicSystems/seismic-go/cli/table"
	"github.com/SeismicSystems/seismic-go/wallet"
)

var (
	accountFlags *flag.FlagSet

	accountCmd = &cobra.Command{
		Use:     "account",
		Aliases: []string{"accounts", "wallet"},
		Short:   "Manage accounts",
	}

	accountListCmd = &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List configured accounts",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.Global()
			table := table.New()
			table.SetHeader([]string{"Name", "Algorithm", "Address"})

			var output [][]string
			for name, acc := range cfg.Accounts.All {
				displayName := name
				if cfg.Accounts.Default == name {
					displayName += defaultMarker
				}

				var algorithm string
				if accCfg, err := wallet.DecodeConfig(acc.Config); err == nil {
					algorithm = accCfg.Algorithm
					if algorithm == wallet.AlgorithmSecp256k1Bip44 {
						algorithm += fmt.Sprintf(":%d", accCfg.Number)
					}
				}

				output = append(output, []string{
					displayName,
					algorithm,
					acc.Address,
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

	accountCreateCmd = &cobra.Command{
		Use:   "create <name>",
		Short: "Create a new account from a freshly generated mnemonic",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.Global()
			name := args[0]

			accCfg, err := wallet.ConfigFromFlags(accountFlags)
			cobra.CheckErr(err)

			store, err := config.AccountStore()
			cobra.CheckErr(err)

			// Ask for passphrase to encrypt the account with.
			passphrase := common.AskNewPassphrase()

			err = cfg.Accounts.Create(store, name, passphrase, &config.Account{Config: accCfg})
			cobra.CheckErr(err)

			err = cfg.Save()
			cobra.CheckErr(err)

			fmt.Printf("Address: %s\n", cfg.Accounts.All[name].Address)
		},
	}

	accountImportCmd = &cobra.Command{
		Use:   "import <name>",
		Short: "Import an existing account",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.Global()
			name := args[0]

			if _, exists := cfg.Accounts.All[name]; exists {
				cobra.CheckErr(fmt.Errorf("account '%s' already exists", name))
			}

			// Ask for import kind.
			var kindRaw string
			err := survey.AskOne(&survey.Select{
				Message: "Import kind:",
				Options: wallet.ImportKinds(),
			}, &kindRaw)
			cobra.CheckErr(err)

			var kind wallet.ImportKind
			err = kind.UnmarshalText([]byte(kindRaw))
			cobra.CheckErr(err)

			accCfg := map[string]interface{}{
				"algorithm": kind.Algorithm(),
			}
			if kind == wallet.ImportKindMnemonic {
				var number uint32
				err = survey.AskOne(&survey.Input{
					Message: "Key number:",
					Default: "0",
				}, &number)
				cobra.CheckErr(err)
				accCfg["number"] = number
			}

			// Ask for import data.
			var answers struct {
				Data string
			}
			questions := []*survey.Question{
				{
					Name:     "data",
					Prompt:   wallet.DataPrompt(kind),
					Validate: wallet.DataValidator(kind),
				},
			}
			err = survey.Ask(questions, &answers)
			cobra.CheckErr(err)

			store, err := config.AccountStore()
			cobra.CheckErr(err)

			// Ask for passphrase.
			passphrase := common.AskNewPassphrase()

			src := &wallet.ImportSource{
				Kind: kind,
				Data: answers.Data,
			}
			err = cfg.Accounts.Import(store, name, passphrase, &config.Account{Config: accCfg}, src)
			cobra.CheckErr(err)

			err = cfg.Save()
			cobra.CheckErr(err)

			fmt.Printf("Address: %s\n", cfg.Accounts.All[name].Address)
		},
	}

	accountShowCmd = &cobra.Command{
		Use:   "show [name]",
		Short: "Show public account information",
		Args:  cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.Global()
			sel := common.GetNASelection(cfg)
			if len(args) > 0 {
				sel.AccountName = args[0]
			}

			signer := common.LoadSigner(cfg, sel)
			fmt.Printf("Name:       %s\n", sel.AccountName)
			fmt.Printf("Public Key: %s\n", signer.Public())
			fmt.Printf("Address:    %s\n", signer.Public().Address().Hex())
		},
	}

	accountRmCmd = &cobra.Command{
		Use:     "rm <name>",
		Aliases: []string{"remove"},
		Short:   "Remove an existing account",
		Args:    cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.Global()
			name := args[0]

			// Early check for whether the account exists so that we don't ask for confirmation first.
			if _, exists := cfg.Accounts.All[name]; !exists {
				cobra.CheckErr(fmt.Errorf("account '%s' does not exist", name))
			}

			fmt.Printf("WARNING: Removing the account will ERASE secret key material!\n")
			fmt.Printf("WARNING: THIS ACTION IS IRREVERSIBLE!\n")

			var result string
			confirmText := fmt.Sprintf("I really want to remove account %s", name)
			prompt := &survey.Input{
				Message: fmt.Sprintf("Enter '%s' (without quotes) to confirm removal:", confirmText),
			}
			err := survey.AskOne(prompt, &result)
			cobra.CheckErr(err)

			if result != confirmText {
				cobra.CheckErr("Aborted.")
			}

			store, err := config.AccountStore()
			cobra.CheckErr(err)

			err = cfg.Accounts.Remove(store, name)
			cobra.CheckErr(err)

			err = cfg.Save()
			cobra.CheckErr(err)
		},
	}

	accountRenameCmd = &cobra.Command{
		Use:   "rename <old> <new>",
		Short: "Rename an existing account",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.Global()
			oldName, newName := args[0], args[1]

			store, err := config.AccountStore()
			cobra.CheckErr(err)

			err = cfg.Accounts.Rename(store, oldName, newName)
			cobra.CheckErr(err)

			err = cfg.Save()
			cobra.CheckErr(err)
		},
	}

	accountSetDefaultCmd = &cobra.Command{
		Use:   "set-default <name>",
		Short: "Sets the given account as the default account",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			cfg := config.Global()
			name := args[0]

			err := cfg.Accounts.SetDefault(name)
			cobra.CheckErr(err)

			err = cfg.Save()
			cobra.CheckErr(err)
		},
	}

	accountExportCmd = &cobra.Command{
		Use:   "export <name>",
		Short: "Export secret account information",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			name := args[0]

			fmt.Printf("WARNING: Exporting the account will expose secret key material!\n")
			acc := common.LoadAccount(config.Global(), name)

			fmt.Printf("Public Key: %s\n", acc.Signer().Public())
			fmt.Printf("Address:    %s\n", acc.Address().Hex())
			fmt.Printf("Export:\n")
			fmt.Println(acc.UnsafeExport())
		},
	}
)

func init() {
	accountCmd.AddCommand(accountListCmd)

	accountFlags = wallet.Flags()
	accountCreateCmd.Flags().AddFlagSet(accountFlags)
	accountCmd.AddCommand(accountCreateCmd)

	accountCmd.AddCommand(accountImportCmd)

	accountShowCmd.Flags().AddFlagSet(common.SelectorFlags)
	accountShowCmd.Flags().AddFlagSet(common.SignerFlags)
	accountCmd.AddCommand(accountShowCmd)

	accountCmd.AddCommand(accountRmCmd)
	accountCmd.AddCommand(accountRenameCmd)
	accountCmd.AddCommand(accountSetDefaultCmd)
	accountCmd.AddCommand(accountExportCmd)
}
