package main

import (
	"os"

	"github.com/pugetops/ferrytrack/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
