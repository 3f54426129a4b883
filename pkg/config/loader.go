package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Load parses environment variables into cfg based on `env` struct
// tags. A .env file in the working directory is loaded first when
// present; real environment variables always win over file values.
func Load(cfg any) error {
	if _, err := os.Stat(".env"); err == nil {
		// godotenv.Load never overrides variables already set in the
		// environment, which is the precedence we want.
		if err := godotenv.Load(); err != nil {
			return errors.Join(ErrLoadEnvFile, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("%w: %w", ErrParseConfig, err)
	}

	return nil
}

// LoadEnv loads one or more .env files before parsing. Later files
// take precedence over earlier ones; variables already set in the
// process environment take precedence over all files.
func LoadEnv(paths ...string) error {
	for i := len(paths) - 1; i >= 0; i-- {
		if err := godotenv.Load(paths[i]); err != nil {
			return errors.Join(ErrLoadEnvFile, err)
		}
	}
	return nil
}

// MustLoad is Load that panics on failure. Used at the composition
// root, where a missing required variable should prevent startup.
func MustLoad(cfg any) {
	if err := Load(cfg); err != nil {
		panic(err)
	}
}
