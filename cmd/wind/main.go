package main

import (
	"fmt"
	"os"

	"github.com/mwantia/wind/cmd/wind/cli"
	"github.com/mwantia/wind/cmd/wind/cli/server"
)

// Overridden at build time through -ldflags "-X main.version=...".
var (
	version = "0.0.1-dev"
	commit  = "main"
)

func main() {
	root := cli.NewRootCommand(cli.VersionInfo{
		Version: version,
		Commit:  commit,
	})

	root.AddCommand(
		cli.NewVersionCommand(),
		server.NewAgentCommand(),
		server.NewConfigCommand(),
		server.NewMigrateCommand(),
		server.NewGalleryCommand(),
		server.NewAssetsCommand(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "wind:", err)
		os.Exit(1)
	}
}
