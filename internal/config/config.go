// Package config loads bridgegen defaults from the environment and an
// optional .env file.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables read by Load.
const (
	EnvSourceRoot   = "BRIDGEGEN_SOURCE_ROOT"
	EnvSuffix       = "BRIDGEGEN_SUFFIX"
	EnvClassMarker  = "BRIDGEGEN_CLASS_MARKER"
	EnvMethodMarker = "BRIDGEGEN_METHOD_MARKER"
	EnvWorkers      = "BRIDGEGEN_WORKERS"
	EnvLogLevel     = "BRIDGEGEN_LOG_LEVEL"
	EnvLogFormat    = "BRIDGEGEN_LOG_FORMAT"
	EnvManifest     = "BRIDGEGEN_MANIFEST"
)

// Config holds the settings that may come from the environment. The CLI uses
// them as flag defaults.
type Config struct {
	SourceRoot   string
	Suffix       string
	ClassMarker  string
	MethodMarker string
	Workers      int // 0 means one worker per CPU
	LogLevel     string
	LogFormat    string
	Manifest     string // bbolt manifest path; empty disables it
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		SourceRoot:   "include/impact",
		Suffix:       "_bridge",
		ClassMarker:  "bridge_class",
		MethodMarker: "bridge_func",
		LogLevel:     "info",
		LogFormat:    "console",
	}
}

// Load reads envFiles (".env" when none are given) into the process
// environment without overriding variables that are already set, then
// applies BRIDGEGEN_* variables on top of Default. Missing env files are
// ignored.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}

	cfg := Default()
	setString(&cfg.SourceRoot, EnvSourceRoot)
	setString(&cfg.Suffix, EnvSuffix)
	setString(&cfg.ClassMarker, EnvClassMarker)
	setString(&cfg.MethodMarker, EnvMethodMarker)
	setString(&cfg.LogLevel, EnvLogLevel)
	setString(&cfg.LogFormat, EnvLogFormat)
	setString(&cfg.Manifest, EnvManifest)

	if s := os.Getenv(EnvWorkers); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 0 {
			cfg.Workers = n
		}
	}
	return cfg, nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
