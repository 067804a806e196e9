// Package main is the entry point for the webqa CLI.
package main

import (
	"os"

	cmd "github.com/rohmanhakim/webqa/internal/cli"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
