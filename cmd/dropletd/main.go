// Package main is the entry point for the dropletd CLI.
//
// dropletd runs a chat bot that turns a streaming droplet on from a
// snapshot when asked, watches it for inactivity and turns it off again.
// The up, down and status commands drive the same provisioning core
// directly from a terminal.
//
// For detailed usage information, run:
//
//	dropletd --help
package main

import (
	"fmt"
	"os"

	"github.com/imamik/dropletd/cmd/dropletd/commands"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
