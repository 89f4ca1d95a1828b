package main

import (
	"os"

	"github.com/carbonfabric/cbam/internal/cli"
	"github.com/carbonfabric/cbam/pkg/version"
)

func main() {
	os.Exit(run())
}

// run executes the root command and maps the outcome to an exit code. It is
// separate from main so tests can exercise it.
func run() int {
	root := cli.NewRootCmd(version.GetVersion())
	if err := root.Execute(); err != nil {
		// Cobra already printed the error.
		return 1
	}
	return 0
}
