// Package main is the entry point for the storectl CLI.
package main

import (
	"os"

	"store-register/cmd/storectl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
