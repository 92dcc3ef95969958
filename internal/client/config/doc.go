// Package config loads runtime configuration for the hrmis client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment variables prefixed with HRMIS_ (HRMIS_DATABASE_DSN,
//     HRMIS_JWT_SECRET, ...), optionally seeded from a dotenv file given by
//     -E / -env, or ./.env when it exists.
//  3. Optional JSON file selected via -c or -config.
//  4. Command-line flags (see parseFlags), which override earlier values.
//
// # JSON schema
//
// Durations use timex.Duration, so they can be strings like "15m" or
// integer nanoseconds. Keys that are absent keep their earlier value:
//
//	{
//	  "database_dsn": "postgres://...",
//	  "access_token_ttl": "1h",
//	  "refresh_interval": "1m",
//	  "s3_bucket": "avatars",
//	  "avatar_max_side": 512,
//	  "log_format": "json"
//	}
package config
