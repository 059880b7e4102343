package main

import (
	"os"

	"TranchePlanner/cmd/planner/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
