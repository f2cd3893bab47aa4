package main

import (
	"os"

	"github.com/galligan/pickme/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
