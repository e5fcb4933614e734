// Package main is the entry point for the sduigate gateway.
//
// Usage:
//
//	sduigate [flags] <command>
//
// Commands:
//
//	run      - Run the gateway server
//	version  - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/haivivi/sduigate/cmd/sduigate/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
