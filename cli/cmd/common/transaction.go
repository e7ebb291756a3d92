package common

import (
	"context"
	"fmt"
	"os"

	ethCommon "github.com/ethereum/go-ethereum/common"
	ethTypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/oasisprotocol/oasis-core/go/common/prettyprint"
	"github.com/spf13/cobra"

	"github.com/SeismicSystems/seismic-go/connection"
	"github.com/SeismicSystems/seismic-go/helpers"
	"github.com/SeismicSystems/seismic-go/modules/seismic"
	"github.com/SeismicSystems/seismic-go/types"
)

// Connect establishes a verified connection with the selected network.
func Connect(ctx context.Context, sel *NASelection) connection.Connection {
	conn, err := connection.Connect(ctx, sel.Network)
	cobra.CheckErr(err)
	return conn
}

// PrintTransactionBeforeSending prints the call and asks the user for confirmation.
func PrintTransactionBeforeSending(sel *NASelection, mode seismic.CallMode, from string, req *seismic.Request) {
	fmt.Printf("You are about to send the following transaction:\n")
	fmt.Printf("Mode:     %s\n", mode)
	if req.To != nil {
		fmt.Printf("To:       %s\n", req.To.Hex())
	} else {
		fmt.Printf("To:       (contract creation)\n")
	}
	fmt.Printf("Value:    %s\n", helpers.FormatDenomination(sel.Network, req.Value))
	fmt.Printf("Data:     %d bytes\n", len(req.Data))
	fmt.Printf("Gas:      %d\n", req.Gas)
	if mode.IsShielded() {
		fmt.Printf("Signing:  %s\n", req.MessageVersion)
		fmt.Printf("Expires:  %d blocks\n", req.ExpiresIn)
	}
	fmt.Println()

	fmt.Printf("Account:  %s", sel.AccountName)
	if sel.Account != nil && len(sel.Account.Description) > 0 {
		fmt.Printf(" (%s)", sel.Account.Description)
	}
	fmt.Printf(" [%s]\n", from)
	fmt.Printf("Network:  %s", sel.NetworkName)
	if len(sel.Network.Description) > 0 {
		fmt.Printf(" (%s)", sel.Network.Description)
	}
	fmt.Println()

	Confirm("Send this transaction?", "transaction not sent")
}

// PrintTransaction pretty-prints a transaction in the network's denomination.
func PrintTransaction(sel *NASelection, tx prettyprint.PrettyPrinter) {
	ctx := context.Background()
	ctx = context.WithValue(ctx, prettyprint.ContextKeyTokenSymbol, sel.Network.Denomination.GetSymbol())
	ctx = context.WithValue(ctx, prettyprint.ContextKeyTokenValueExponent, sel.Network.Denomination.Decimals)
	tx.PrettyPrint(ctx, "", os.Stdout)
}

// PrintReceipt prints the outcome of an included transaction.
func PrintReceipt(receipt *ethTypes.Receipt) {
	switch receipt.Status {
	case ethTypes.ReceiptStatusSuccessful:
		fmt.Printf("Transaction executed successfully.\n")
	default:
		fmt.Printf("Transaction reverted.\n")
	}
	fmt.Printf("Transaction hash: %s\n", receipt.TxHash)
	fmt.Printf("Block:            %s\n", receipt.BlockNumber)
	fmt.Printf("Gas used:         %d\n", receipt.GasUsed)
	if receipt.ContractAddress != (ethCommon.Address{}) {
		fmt.Printf("Contract address: %s\n", receipt.ContractAddress.Hex())
	}
}

// PrintDebugWrite prints the plaintext and shielded transactions of a debug write.
func PrintDebugWrite(sel *NASelection, res *seismic.DebugWriteResult) {
	fmt.Printf("Plaintext transaction:\n")
	PrintTransaction(sel, res.PlaintextTx)
	fmt.Println()
	fmt.Printf("Shielded transaction:\n")
	PrintTransaction(sel, res.ShieldedTx)
	fmt.Println()
}

// ExplainError prints a hint for errors the user can act on.
func ExplainError(err error) {
	if types.IsFreshnessError(err) {
		fmt.Fprintf(os.Stderr, "The transaction is no longer fresh; retry to rebuild it against a recent block.\n")
	}
}
