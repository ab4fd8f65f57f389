// Package config loads runtime configuration for the citybreaks client.
//
// Sources and precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with -c or -config. JSON, or YAML when
//     the name ends in .yaml or .yml.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   base URL of the record store API
//	-g string   address of the gRPC health endpoint
//	-i int      online status check interval (seconds)
//	-d string   cache database path
//	-l string   log file
//	-v          mirror logs to stderr
//
// # File schema
//
//	{
//	  "api_base_url": "http://127.0.0.1:8080",
//	  "health_addr": "127.0.0.1:50051",
//	  "online_check_interval": "3s",
//	  "request_timeout": "10s",
//	  "cache_dsn": "citybreaks.db",
//	  "log_file": "citybreaks-client.log",
//	  "verbose": false,
//	  "replay_attempts": 3,
//	  "replay_backoff": "500ms"
//	}
//
// The package does not read environment variables.
package config
