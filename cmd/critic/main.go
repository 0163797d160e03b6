package main

import (
	"os"

	"github.com/mfields/critic/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
