// Package main is the marketindex entry point.
package main

import (
	"os"

	"github.com/kailas-cloud/marketindex/cmd/marketindex/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
