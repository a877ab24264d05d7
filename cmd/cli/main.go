// Package main is the entry point for the omconv CLI.
package main

import (
	"os"

	"om-units/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
