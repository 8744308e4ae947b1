// Package main is the entry point for the consultcrew CLI.
package main

import (
	"os"

	"github.com/consultcrew/consultcrew/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
