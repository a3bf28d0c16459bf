package main

import (
	"os"

	"github.com/abhisek/logiprep/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
