package main

import (
	"os"

	"crystal/internal/cli"
)

func main() { os.Exit(cli.Main()) }
