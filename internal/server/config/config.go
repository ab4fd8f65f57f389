// Package config handles configuration for the server component,
// including defaults, a JSON or YAML file overlay, and command-line flags.
package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the citybreaks server.
//
// Fields:
//   - HTTPAddr: bind address of the REST API and the push websocket.
//   - HealthAddr: bind address of the gRPC health endpoint.
//   - DatabaseDSN: PostgreSQL DSN (pgx). Empty selects in-memory storage.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use test defaults in prod.
//   - TokenValidityDuration: lifetime of issued tokens.
//   - S3AccessKey / S3SecretKey: credentials for the S3-compatible backend.
//   - S3Bucket / S3Region / S3BaseEndpoint: object storage settings for exports.
//     An empty S3Bucket disables export.
//   - ExportLinkTTL: lifetime of presigned export links.
type Config struct {
	HTTPAddr              string
	HealthAddr            string
	DatabaseDSN           string
	SecretKey             string
	TokenValidityDuration time.Duration
	S3AccessKey           string
	S3SecretKey           string
	S3Bucket              string
	S3Region              string
	S3BaseEndpoint        string
	ExportLinkTTL         time.Duration
}

// LoadDefaults populates Config with development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8080"
	c.HealthAddr = ":50051"
	c.DatabaseDSN = ""
	c.SecretKey = "secretKey"
	c.TokenValidityDuration = 24 * time.Hour
	c.S3AccessKey = "admin"
	c.S3SecretKey = "secretpassword"
	c.S3Bucket = ""
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.ExportLinkTTL = 15 * time.Minute
}

// Load builds a Config by applying defaults, then the optional file named by
// -c/-config, and finally command-line flags.
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
