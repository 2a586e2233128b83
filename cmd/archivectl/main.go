package main

import (
	"os"

	"github.com/andrewrbrady/motive-archive-manager-sub013/cmd/archivectl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
