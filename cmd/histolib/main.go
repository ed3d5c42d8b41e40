package main

import (
	"os"

	"github.com/wonny/histolib/cmd/histolib/commands"
)

// main is the entry point for the HistoLib CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/histolib [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
