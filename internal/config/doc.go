// Package config loads runtime configuration for the helpkeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-d string   database DSN ("sqlite:helpkeeper.db", "postgres://...")
//	-l string   log level (debug, info, warn, error)
//	-f string   log format (text, json, zap)
//	-b string   backup directory
//	-s string   session signing secret
//
// # JSON schema
//
// Durations use timex.Duration, so "8h" and integer nanoseconds both work.
// Only keys present in the file override defaults.
//
//	{
//	  "database_dsn": "sqlite:helpkeeper.db",
//	  "password_hashing": "argon2id",
//	  "body_transform": "aes-gcm",
//	  "body_key": "<64 hex chars>",
//	  "session_ttl": "8h",
//	  "reset_ttl": "24h",
//	  "s3_bucket": "helpkeeper-backups",
//	  "s3_region": "eu-central-1"
//	}
package config
