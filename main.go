package main

import (
	"os"

	"github.com/qudurat/qudurat/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
