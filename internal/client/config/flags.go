package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/dmitrijs2005/citybreaks/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
//	-a string   base URL of the record store API
//	-g string   address of the gRPC health endpoint
//	-i int      online check interval in seconds
//	-d string   path of the cache database
//	-l string   log file
//	-v          mirror logs to stderr
//
// Only these flags are picked out of args; the rest belong to other loaders.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-g", "-i", "-d", "-l", "-v"})

	fs := flag.NewFlagSet("client", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "record store API base URL")
	fs.StringVar(&cfg.HealthAddr, "g", cfg.HealthAddr, "health endpoint address")
	interval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.CacheDSN, "d", cfg.CacheDSN, "cache database path")
	fs.StringVar(&cfg.LogFile, "l", cfg.LogFile, "log file")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "mirror logs to stderr")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	if *interval <= 0 {
		return fmt.Errorf("online check interval must be positive, got %d", *interval)
	}

	cfg.OnlineCheckInterval = time.Duration(*interval) * time.Second
	return nil
}
