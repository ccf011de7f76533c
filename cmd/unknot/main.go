package main

import (
	"os"

	"github.com/unknot-dev/unknot/internal/cli/commands"
)

var (
	// Version information - will be set at build time
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
	goVersion = "unknown"
)

func main() {
	commands.Version = version
	commands.GitCommit = gitCommit
	commands.BuildDate = buildDate
	commands.GoVersion = goVersion

	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
