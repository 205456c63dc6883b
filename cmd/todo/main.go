package main

import (
	"os"

	"github.com/idilsaglam/todoboard/internal/cli"
)

func main() {
	// Root flags are parsed by the runner so every subcommand sees them.
	os.Exit(cli.Run(os.Args[1:], cli.Options{}))
}
