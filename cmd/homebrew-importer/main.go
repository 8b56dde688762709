package main

import (
	"context"
	"flag"
	"os"

	importercmd "github.com/louisbranch/grimoire.space/internal/cmd/importer"
	"github.com/louisbranch/grimoire.space/internal/platform/config"
)

func main() {
	cfg, err := importercmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}

	if err := importercmd.Run(context.Background(), cfg, os.Stdout); err != nil {
		config.Exitf("Error: %v", err)
	}
}
