package main

import (
	"os"

	"github.com/sigil-lang/sigil/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
