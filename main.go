package main

import (
	"os"

	"github.com/mreynaud/schedcore/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
