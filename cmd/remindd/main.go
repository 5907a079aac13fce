package main

import (
	"fmt"
	"os"

	"github.com/sandeepkv93/remindd/internal/cli"
	"github.com/sandeepkv93/remindd/internal/config"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "remindd: load .env: %v\n", err)
		os.Exit(1)
	}
	cfg := config.RuntimeConfigFromEnv(config.DefaultRuntimeConfig())
	if err := cli.NewRootCommand(cfg).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "remindd failed: %v\n", err)
		os.Exit(1)
	}
}
