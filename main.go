package main

import (
	"os"

	"github.com/ownplanner/ownplanner/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
