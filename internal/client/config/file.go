package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/citybreaks/internal/flagx"
	"github.com/dmitrijs2005/citybreaks/internal/timex"
	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk shape. Durations accept "3s" or nanoseconds.
// Absent fields keep their previous value.
type fileConfig struct {
	APIBaseURL          *string         `json:"api_base_url" yaml:"api_base_url"`
	HealthAddr          *string         `json:"health_addr" yaml:"health_addr"`
	OnlineCheckInterval *timex.Duration `json:"online_check_interval" yaml:"online_check_interval"`
	RequestTimeout      *timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	CacheDSN            *string         `json:"cache_dsn" yaml:"cache_dsn"`
	LogFile             *string         `json:"log_file" yaml:"log_file"`
	Verbose             *bool           `json:"verbose" yaml:"verbose"`
	ReplayAttempts      *uint64         `json:"replay_attempts" yaml:"replay_attempts"`
	ReplayBackoff       *timex.Duration `json:"replay_backoff" yaml:"replay_backoff"`
}

// parseFile overlays cfg with the file given by -c/-config, if any. Files
// ending in .yaml or .yml are read as YAML, anything else as JSON.
func parseFile(cfg *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}

	fc.apply(cfg)
	return nil
}

func (fc fileConfig) apply(cfg *Config) {
	if fc.APIBaseURL != nil {
		cfg.APIBaseURL = *fc.APIBaseURL
	}
	if fc.HealthAddr != nil {
		cfg.HealthAddr = *fc.HealthAddr
	}
	if fc.OnlineCheckInterval != nil {
		cfg.OnlineCheckInterval = fc.OnlineCheckInterval.Duration
	}
	if fc.RequestTimeout != nil {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.CacheDSN != nil {
		cfg.CacheDSN = *fc.CacheDSN
	}
	if fc.LogFile != nil {
		cfg.LogFile = *fc.LogFile
	}
	if fc.Verbose != nil {
		cfg.Verbose = *fc.Verbose
	}
	if fc.ReplayAttempts != nil {
		cfg.ReplayAttempts = *fc.ReplayAttempts
	}
	if fc.ReplayBackoff != nil {
		cfg.ReplayBackoff = fc.ReplayBackoff.Duration
	}
}
