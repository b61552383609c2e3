// Package main is the entry point for hlbench.
package main

import (
	"os"

	"github.com/dshills/hlsync/internal/cli"
	"github.com/dshills/hlsync/internal/logging"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	root := cli.NewRootCommand(cli.BuildInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	})

	if err := root.Execute(); err != nil {
		logging.Default().Error("hlbench failed", logging.FieldError, err)
		return 1
	}
	return 0
}
