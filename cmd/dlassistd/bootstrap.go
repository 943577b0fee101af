package main

import (
	"flag"

	"dlassist/internal/daemonrun"
)

// parseArgs maps command-line flags onto daemon run options. dlassistd is a
// thin wrapper: everything else comes from the configuration file.
func parseArgs(args []string) (daemonrun.Options, error) {
	var opts daemonrun.Options
	fs := flag.NewFlagSet("dlassistd", flag.ContinueOnError)
	fs.StringVar(&opts.ConfigPath, "config", "", "configuration file path")
	fs.StringVar(&opts.LogLevel, "log-level", "", "override the configured log level")
	fs.BoolVar(&opts.Development, "dev", false, "enable development logging")
	if err := fs.Parse(args); err != nil {
		return daemonrun.Options{}, err
	}
	return opts, nil
}
