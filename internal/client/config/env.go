package config

import (
	"errors"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/dmitrijs2005/hrmis/internal/flagx"
	"github.com/joho/godotenv"
)

// EnvPrefix is prepended to every variable name in the Config env tags.
const EnvPrefix = "HRMIS_"

const defaultEnvFile = ".env"

// parseEnv overlays Config with HRMIS_* environment variables. Variables
// that are not set leave the current value untouched.
//
// A dotenv file is loaded first: the one named by -env / -E, or ./.env when
// present. Variables already in the environment are not overridden by it.
// Panics on an unreadable explicit file or a malformed value.
func parseEnv(cfg *Config) {
	if path := flagx.EnvFileFlags(); path != "" {
		if err := godotenv.Load(path); err != nil {
			panic(err)
		}
	} else if err := godotenv.Load(defaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		panic(err)
	}
}
