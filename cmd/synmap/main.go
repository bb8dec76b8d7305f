// Package main provides the entry point for the synmap CLI.
package main

import (
	"os"

	"github.com/Aman-CERP/synmap/cmd/synmap/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
