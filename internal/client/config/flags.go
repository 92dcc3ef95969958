package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/hrmis/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   PostgreSQL DSN
//	-s string   session database path
//	-k string   JWT HMAC secret
//	-i int      token refresh check interval, seconds
//	-b string   S3 bucket name
//	-e string   S3 base endpoint
//	-p string   public base URL of the avatar bucket
//	-u string   site URL used in emailed links
//	-l string   log format: json, text or zap
//	-v          debug logging
//
// Flags owned by the other layers (-c, -E) are skipped.
func parseFlags(cfg *Config) {
	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "database DSN")
	fs.StringVar(&cfg.SessionDBPath, "s", cfg.SessionDBPath, "session database path")
	fs.StringVar(&cfg.JWTSecret, "k", cfg.JWTSecret, "JWT secret key")
	refreshInterval := fs.Int("i", int(cfg.RefreshInterval.Seconds()), "token refresh check interval (in seconds)")
	fs.StringVar(&cfg.S3Bucket, "b", cfg.S3Bucket, "S3 bucket")
	fs.StringVar(&cfg.S3BaseEndpoint, "e", cfg.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&cfg.PublicBaseURL, "p", cfg.PublicBaseURL, "public base URL of the avatar bucket")
	fs.StringVar(&cfg.SiteURL, "u", cfg.SiteURL, "site URL for emailed links")
	fs.StringVar(&cfg.LogFormat, "l", cfg.LogFormat, "log format (json, text, zap)")
	fs.BoolVar(&cfg.Debug, "v", cfg.Debug, "debug logging")

	if err := flagx.ParseKnown(fs); err != nil {
		panic(err)
	}

	cfg.RefreshInterval = time.Duration(*refreshInterval) * time.Second
}
