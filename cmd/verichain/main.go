package main

import (
	"errors"
	"os"

	"github.com/pterm/pterm"
)

func main() {
	root := newRootCmd(os.Stdout)
	if err := root.Execute(); err != nil {
		if !errors.Is(err, errRejected) {
			pterm.Error.Println(err)
		}
		os.Exit(1)
	}
}
