package main

import (
	"os"

	"github.com/friendlyparakeet/parakeet-cli/cmd/parakeet"
)

var version = "dev"

func main() {
	if err := parakeet.Execute(version); err != nil {
		os.Exit(1)
	}
}
