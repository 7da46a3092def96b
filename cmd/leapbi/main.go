// Package main provides the leapbi CLI and MCP server entrypoint.
package main

import (
	"os"

	"github.com/leapstack-labs/leapbi/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
