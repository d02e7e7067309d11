package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Env variable names honored as defaults for CLI flags. A flag explicitly set
// on the command line always wins over the environment.
const (
	EnvRoster    = "PROJMEDIC_ROSTER"
	EnvOrg       = "PROJMEDIC_ORG"
	EnvTargetDir = "PROJMEDIC_TARGET_DIR"
)

// LoadEnvDefaults reads an optional .env file in the working directory and
// fills config fields that are still empty from the environment. A missing
// .env file is not an error; a present-but-unreadable one is.
func LoadEnvDefaults(c *Config) error {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	}

	if c.Targeting.Roster == "" {
		c.Targeting.Roster = os.Getenv(EnvRoster)
	}
	if c.Targeting.Org == "" {
		c.Targeting.Org = os.Getenv(EnvOrg)
	}
	if dir := os.Getenv(EnvTargetDir); dir != "" && (c.Targeting.TargetDir == "" || c.Targeting.TargetDir == ".") {
		c.Targeting.TargetDir = dir
	}
	return nil
}
