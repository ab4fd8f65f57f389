package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the citybreaks client.
//
// Units: intervals and timeouts are time.Duration values.
type Config struct {
	APIBaseURL          string
	HealthAddr          string
	OnlineCheckInterval time.Duration
	RequestTimeout      time.Duration
	CacheDSN            string
	LogFile             string
	Verbose             bool
	ReplayAttempts      uint64
	ReplayBackoff       time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8080"
	c.HealthAddr = "127.0.0.1:50051"
	c.OnlineCheckInterval = 3 * time.Second
	c.RequestTimeout = 10 * time.Second
	c.CacheDSN = "citybreaks.db"
	c.LogFile = "citybreaks-client.log"
	c.ReplayAttempts = 3
	c.ReplayBackoff = 500 * time.Millisecond
}

// Load builds a Config from defaults, then the optional config file named by
// -c/-config, then command-line flags. Later sources take precedence.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseFile(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig is Load over os.Args.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}
