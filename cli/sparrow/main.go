package main

import (
	"os"

	sparrowcmder "github.com/papercomputeco/sparrow/cmd/sparrow"
)

func main() {
	cmd := sparrowcmder.NewSparrowCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
