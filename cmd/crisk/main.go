package main

import (
	"log/slog"
	"os"

	"crisk/cmd/crisk/commands"
)

func main() {
	if err := commands.GetRootCmd().Execute(); err != nil {
		slog.Error("error executing command", "err", err)
		os.Exit(1)
	}
}
