package main

import (
	"os"

	"github.com/privata-io/privata/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
