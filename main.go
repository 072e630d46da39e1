package main

import (
	"os"

	"github.com/ChiragAJain/shl-recommender/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
