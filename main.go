// Package main is the entry point for the changelogger CLI.
package main

import (
	"fmt"
	"os"

	"github.com/substancelab/changelogger/cmd"
	"github.com/substancelab/changelogger/internal/logging"
)

// main executes the root command and exits non-zero on any error.
func main() {
	logging.Debug("starting changelogger", "version", cmd.Version)

	if err := cmd.Execute(); err != nil {
		logging.Debug("command execution failed", "error", err)
		fmt.Fprint(os.Stderr, cmd.FormatError(err))
		os.Exit(1)
	}
}
