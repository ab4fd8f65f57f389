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

// fileConfig is the on-disk DTO. Durations use timex.Duration, so "15m" and
// integer nanoseconds both work. Absent fields keep their previous value.
type fileConfig struct {
	HTTPAddr              *string         `json:"http_addr" yaml:"http_addr"`
	HealthAddr            *string         `json:"health_addr" yaml:"health_addr"`
	DatabaseDSN           *string         `json:"database_dsn" yaml:"database_dsn"`
	SecretKey             *string         `json:"secret_key" yaml:"secret_key"`
	TokenValidityDuration *timex.Duration `json:"token_validity_duration" yaml:"token_validity_duration"`
	S3AccessKey           *string         `json:"s3_access_key" yaml:"s3_access_key"`
	S3SecretKey           *string         `json:"s3_secret_key" yaml:"s3_secret_key"`
	S3Bucket              *string         `json:"s3_bucket" yaml:"s3_bucket"`
	S3Region              *string         `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint        *string         `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
	ExportLinkTTL         *timex.Duration `json:"export_link_ttl" yaml:"export_link_ttl"`
}

// parseFile overlays config with the file given by -c/-config. Names ending
// in .yaml or .yml are decoded as YAML, anything else as JSON.
func parseFile(config *Config, args []string) error {
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

	setString(&config.HTTPAddr, fc.HTTPAddr)
	setString(&config.HealthAddr, fc.HealthAddr)
	setString(&config.DatabaseDSN, fc.DatabaseDSN)
	setString(&config.SecretKey, fc.SecretKey)
	if fc.TokenValidityDuration != nil {
		config.TokenValidityDuration = fc.TokenValidityDuration.Duration
	}
	setString(&config.S3AccessKey, fc.S3AccessKey)
	setString(&config.S3SecretKey, fc.S3SecretKey)
	setString(&config.S3Bucket, fc.S3Bucket)
	setString(&config.S3Region, fc.S3Region)
	setString(&config.S3BaseEndpoint, fc.S3BaseEndpoint)
	if fc.ExportLinkTTL != nil {
		config.ExportLinkTTL = fc.ExportLinkTTL.Duration
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
