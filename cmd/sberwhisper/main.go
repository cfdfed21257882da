// Package main is the entry point for the sberwhisper CLI.
package main

import (
	"os"

	"github.com/sber-whisper/desktop/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
