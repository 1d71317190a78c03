package main

import (
	"os"

	"github.com/vup-linux/vup-release/cmd/vup-release/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
