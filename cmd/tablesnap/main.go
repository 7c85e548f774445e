// Package main provides the tablesnap CLI.
package main

import (
	"os"

	"github.com/leapstack-labs/tablesnap/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
