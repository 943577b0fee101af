package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"dlassist/internal/config"
	"dlassist/internal/daemonrun"
)

func main() {
	opts, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg, _, _, err := config.Load(opts.ConfigPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	if err := daemonrun.Run(context.Background(), cfg, opts); err != nil {
		log.Fatalf("dlassistd: %v", err)
	}
}
