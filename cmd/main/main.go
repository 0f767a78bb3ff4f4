package main

import (
	"os"

	"fx-dashboard/src/commands"
)

// -----------------------------------------------------------------------------

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
