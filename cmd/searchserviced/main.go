package main

import (
	"os"

	"github.com/relsearch/search-service/cmd/searchserviced/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
