package cmd

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"github.com/SeismicSystems/seismic-go/cli/cmd/common"
	cliConfig "github.com/SeismicSystems/seismic-go/cli/config"
)

var (
	enclaveCmd = &cobra.Command{
		Use:   "enclave",
		Short: "Query the network enclave",
	}

	enclavePubKeyCmd = &cobra.Command{
		Use:   "pubkey",
		Short: "Show the network encryption public key",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cfg := cliConfig.Global()
			sel := common.GetNASelection(cfg)

			ctx := context.Background()
			conn := common.Connect(ctx, sel)
			defer conn.Close()

			pk, err := conn.Runtime().Seismic.EnclavePublicKey(ctx)
			cobra.CheckErr(err)

			fmt.Println(hexutil.Encode(pk[:]))
		},
	}
)

func init() {
	enclavePubKeyCmd.Flags().AddFlagSet(common.SelectorFlags)
	enclaveCmd.AddCommand(enclavePubKeyCmd)
}
