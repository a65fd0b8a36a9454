// Package config loads server settings from the environment and an optional
// .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables read by Load.
const (
	EnvHost           = "BB_HOST"
	EnvPort           = "BB_PORT"
	EnvMaxFastWorkers = "BB_MAX_FAST_WORKERS"
	EnvMaxSlowWorkers = "BB_MAX_SLOW_WORKERS"
	EnvStrict         = "BB_STRICT"
	EnvMaxRounds      = "BB_MAX_ROUNDS"
	EnvExternalPort   = "BB_EXTERNAL_PORT"
)

// Config holds the process level settings. Zero fields mean "not set" and
// leave the built-in defaults alone.
type Config struct {
	Host           string
	Port           int
	MaxFastWorkers int
	MaxSlowWorkers int
	Strict         bool
	MaxRounds      int
	ExternalPort   int // 0 = external player server off
}

// LoadEnvFile loads path into the process environment without overriding
// variables that are already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// Load reads the settings from the environment, after loading the optional
// env files.
func Load(envFiles ...string) (Config, error) {
	for _, f := range envFiles {
		if err := LoadEnvFile(f); err != nil {
			return Config{}, err
		}
	}

	var c Config
	var err error
	c.Host = os.Getenv(EnvHost)
	if c.Port, err = intVar(EnvPort); err != nil {
		return c, err
	}
	if c.MaxFastWorkers, err = intVar(EnvMaxFastWorkers); err != nil {
		return c, err
	}
	if c.MaxSlowWorkers, err = intVar(EnvMaxSlowWorkers); err != nil {
		return c, err
	}
	if c.MaxRounds, err = intVar(EnvMaxRounds); err != nil {
		return c, err
	}
	if c.ExternalPort, err = intVar(EnvExternalPort); err != nil {
		return c, err
	}
	if v := os.Getenv(EnvStrict); v != "" {
		if c.Strict, err = strconv.ParseBool(v); err != nil {
			return c, fmt.Errorf("%s: %w", EnvStrict, err)
		}
	}
	return c, nil
}

func intVar(name string) (int, error) {
	v := os.Getenv(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("%s: must not be negative, got %d", name, n)
	}
	return n, nil
}

// StringOr returns v, or def when v is empty.
func StringOr(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// IntOr returns v, or def when v is zero.
func IntOr(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
