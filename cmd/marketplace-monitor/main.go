// Package main is the entry point for marketplace-monitor.
package main

import (
	"os"

	"github.com/donaldgifford/marketplace-monitor/cmd/marketplace-monitor/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
