package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"github.com/SeismicSystems/seismic-go/callformat"
	"github.com/SeismicSystems/seismic-go/cli/cmd/common"
	cliConfig "github.com/SeismicSystems/seismic-go/cli/config"
	"github.com/SeismicSystems/seismic-go/crypto/keyexchange"
	"github.com/SeismicSystems/seismic-go/helpers"
	"github.com/SeismicSystems/seismic-go/modules/seismic"
	"github.com/SeismicSystems/seismic-go/types"
)

var (
	txValue string
	txData  string

	txCmd = &cobra.Command{
		Use:   "tx",
		Short: "Send, call and inspect shielded transactions",
	}

	txSendCmd = &cobra.Command{
		Use:   "send <to|create>",
		Short: "Send a shielded transaction",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			cfg := cliConfig.Global()
			sel := common.GetNASelection(cfg)
			txCfg := common.GetTransactionConfig()

			req := requestFromArgs(sel, args[0])
			mode := seismic.ModeWrite
			if txCfg.Transparent {
				mode = seismic.ModeTransparentWrite
			}

			signer := common.LoadSigner(cfg, sel)
			common.PrintTransactionBeforeSending(sel, mode, signer.Public().Address().Hex(), req)

			ctx := context.Background()
			conn := common.Connect(ctx, sel)
			defer conn.Close()

			rsp, err := conn.Runtime().Seismic.Call(ctx, mode, signer, req)
			if err != nil {
				common.ExplainError(err)
			}
			cobra.CheckErr(err)

			if rsp.Debug != nil {
				common.PrintDebugWrite(sel, rsp.Debug)
			}
			common.PrintReceipt(rsp.Receipt)
		},
	}

	txCallCmd = &cobra.Command{
		Use:   "call <to>",
		Short: "Execute a signed read against a contract",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			cfg := cliConfig.Global()
			sel := common.GetNASelection(cfg)
			txCfg := common.GetTransactionConfig()

			req := requestFromArgs(sel, args[0])
			if req.To == nil {
				cobra.CheckErr(fmt.Errorf("reads require a callee"))
			}

			mode := seismic.ModeRead
			if txCfg.Transparent {
				mode = seismic.ModeTransparentRead
			}

			ctx := context.Background()
			conn := common.Connect(ctx, sel)
			defer conn.Close()

			var rsp *seismic.Response
			var err error
			switch {
			case mode == seismic.ModeTransparentRead && sel.AccountName == "":
				rsp, err = conn.Runtime().Seismic.TransparentRead(ctx, nil, req)
			default:
				signer := common.LoadSigner(cfg, sel)
				rsp, err = conn.Runtime().Seismic.Call(ctx, mode, signer, req)
			}
			if err != nil {
				common.ExplainError(err)
			}
			cobra.CheckErr(err)

			fmt.Println(hexutil.Encode(rsp.Output))
		},
	}

	txShowCmd = &cobra.Command{
		Use:   "show <raw-tx>",
		Short: "Decode and show a raw shielded transaction",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			cfg := cliConfig.Global()
			sel := common.GetNASelection(cfg)

			stx := parseRawTransaction(args[0])
			common.PrintTransaction(sel, stx)

			sender, err := stx.Sender()
			cobra.CheckErr(err)
			fmt.Printf("Hash:   %s\n", stx.Hash().Hex())
			fmt.Printf("Sender: %s\n", sender.Hex())
		},
	}

	txDecryptCmd = &cobra.Command{
		Use:   "decrypt <raw-tx> <network-secret-key>",
		Short: "Decrypt the calldata of a raw shielded transaction with the network secret key",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			stx := parseRawTransaction(args[0])

			sk, err := hexutil.Decode(ensureHexPrefix(args[1]))
			cobra.CheckErr(err)
			key, err := keyexchange.DeriveSharedKey(sk, stx.Tx.EncryptionPubkey[:])
			cobra.CheckErr(err)

			sender, err := stx.Sender()
			cobra.CheckErr(err)
			data, _, err := callformat.DecodeCall(key, sender, &stx.Tx)
			cobra.CheckErr(err)

			fmt.Println(hexutil.Encode(data))
		},
	}
)

func ensureHexPrefix(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") {
		return "0x" + s
	}
	return s
}

func parseRawTransaction(raw string) *types.SignedTxSeismic {
	data, err := hexutil.Decode(ensureHexPrefix(raw))
	cobra.CheckErr(err)

	var stx types.SignedTxSeismic
	err = stx.UnmarshalBinary(data)
	cobra.CheckErr(err)
	return &stx
}

func requestFromArgs(sel *common.NASelection, to string) *seismic.Request {
	var req seismic.Request
	if to != "create" {
		addr, err := helpers.ResolveAddress(to)
		cobra.CheckErr(err)
		req.To = addr
	}

	if txValue != "" {
		value, err := helpers.ParseDenomination(sel.Network, txValue)
		cobra.CheckErr(err)
		req.Value = value
	}

	if txData != "" {
		data, err := hexutil.Decode(ensureHexPrefix(txData))
		cobra.CheckErr(err)
		req.Data = data
	}
	if req.To == nil && len(req.Data) == 0 {
		cobra.CheckErr(fmt.Errorf("contract creation requires --data"))
	}

	err := common.ApplyTransactionFlags(sel, &req)
	cobra.CheckErr(err)
	return &req
}

func init() {
	txSendCmd.Flags().StringVar(&txValue, "value", "", "amount of native tokens to transfer")
	txSendCmd.Flags().StringVar(&txData, "data", "", "hex-encoded calldata")
	txSendCmd.Flags().AddFlagSet(common.SelectorFlags)
	txSendCmd.Flags().AddFlagSet(common.SignerFlags)
	txSendCmd.Flags().AddFlagSet(common.TransactionFlags)
	txSendCmd.Flags().AddFlagSet(common.ConfirmFlags)
	txCmd.AddCommand(txSendCmd)

	txCallCmd.Flags().StringVar(&txData, "data", "", "hex-encoded calldata")
	txCallCmd.Flags().AddFlagSet(common.SelectorFlags)
	txCallCmd.Flags().AddFlagSet(common.SignerFlags)
	txCallCmd.Flags().AddFlagSet(common.TransactionFlags)
	txCmd.AddCommand(txCallCmd)

	txShowCmd.Flags().AddFlagSet(common.SelectorFlags)
	txCmd.AddCommand(txShowCmd)

	txCmd.AddCommand(txDecryptCmd)
}
