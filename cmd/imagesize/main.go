package main

import (
	"os"

	"github.com/containerci/imagesize/cmd/imagesize/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
