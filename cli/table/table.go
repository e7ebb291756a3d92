// Package table implements helpers for rendering tabular CLI output.
package table

import (
	"os"

	"github.com/olekukonko/tablewriter"
)

// New creates a new table writer with the default CLI style.
func New() *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetBorders(tablewriter.Border{Left: true, Top: false, Right: true, Bottom: false})
	table.SetCenterSeparator("|")
	table.SetAutoWrapText(false)
	return table
}
