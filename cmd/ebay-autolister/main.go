// Package main is the entry point for the ebay-autolister.
package main

import (
	"os"

	"github.com/donaldgifford/ebay-autolister/cmd/ebay-autolister/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
