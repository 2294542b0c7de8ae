package main

import (
	"os"

	"github.com/courtflow/courtsched/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
