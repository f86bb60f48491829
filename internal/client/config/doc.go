// Package config loads runtime configuration for the fieldsync CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   address:port of the server gRPC endpoint
//	-i int      online check interval (seconds)
//	-f string   path of the local SQLite database
//	-d string   directory for attachment snapshots
//	-t int      per-item sync timeout (seconds)
//	-s          sync automatically when the server becomes reachable
//	-l string   log level (debug, info, warn, error)
//
// # JSON schema
//
// Durations use timex.Duration, so "3s" and integer nanoseconds both work:
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "online_check_interval": "3s",
//	  "database_path": "fieldsync.db",
//	  "attachments_dir": "attachments",
//	  "item_timeout": "30s",
//	  "auto_sync": true,
//	  "log_level": "info"
//	}
package config
