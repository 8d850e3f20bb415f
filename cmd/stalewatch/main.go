package main

import (
	"os"

	"github.com/stalewatch/stalewatch/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
