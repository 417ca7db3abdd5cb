package config

import (
	"os"

	"github.com/dmitrijs2005/rentable/internal/flagx"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every environment variable, e.g. RENTABLE_SERVER_ADDR.
const EnvPrefix = "RENTABLE"

// parseEnv loads the dotenv file named by -env, if any, and then overlays
// cfg with RENTABLE_* variables. Unset variables leave fields unchanged.
func parseEnv(cfg *Config) {
	if path := flagx.EnvFileFlag(os.Args[1:]); path != "" {
		if err := godotenv.Load(path); err != nil {
			panic(err)
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		panic(err)
	}
}
