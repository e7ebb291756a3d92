// Package main implements the seismic command line interface.
package main

import (
	"os"

	"github.com/SeismicSystems/seismic-go/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
