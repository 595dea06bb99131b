package main

import (
	"os"

	"github.com/clinsync-dev/clinsync/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
