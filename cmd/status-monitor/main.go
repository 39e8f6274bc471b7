package main

import (
	"os"

	"github.com/miradorstack/status-monitor/cmd/status-monitor/commands"
)

func main() {
	if err := commands.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
