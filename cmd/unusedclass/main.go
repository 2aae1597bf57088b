package main

import (
	"os"

	"unusedclass/internal/ui/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
