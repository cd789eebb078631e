// Package config loads CLI settings from a TOML file, a .env file and
// POCKET_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/aretw0/pocket/internal/platform"
)

// Environment variables that override the config file.
const (
	EnvDir      = "POCKET_DIR"
	EnvBackend  = "POCKET_BACKEND"
	EnvFormat   = "POCKET_FORMAT"
	EnvLogLevel = "POCKET_LOG_LEVEL"
	EnvReadOnly = "POCKET_READ_ONLY"
)

// Config is the resolved CLI configuration.
type Config struct {
	Dir        string        `toml:"dir"`
	Backend    string        `toml:"backend"`
	Format     string        `toml:"format"`
	IDStrategy string        `toml:"id_strategy"`
	ReadOnly   bool          `toml:"read_only"`
	Versioned  bool          `toml:"versioned"`
	Logging    LoggingConfig `toml:"logging"`
}

type LoggingConfig struct {
	Level string `toml:"level"`
}

// Default returns the built-in settings. Dir stays empty until Resolve.
func Default() Config {
	return Config{
		Backend:    platform.BackendFS,
		Format:     "json",
		IDStrategy: "time",
		Logging:    LoggingConfig{Level: "info"},
	}
}

// LoadDotEnv loads variables from .env files without overriding the
// environment. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads the TOML file at path (DefaultPath when empty) over the
// defaults and applies environment overrides. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return Config{}, err
		}
		path = p
	}
	path, err := expandHome(path)
	if err != nil {
		return Config{}, err
	}
	if err := readTOML(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readTOML(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	return toml.Unmarshal(data, out)
}

func (c *Config) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv(EnvDir)); v != "" {
		c.Dir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvBackend)); v != "" {
		c.Backend = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvFormat)); v != "" {
		c.Format = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.Logging.Level = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvReadOnly)); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvReadOnly, err)
		}
		c.ReadOnly = b
	}
	return nil
}

// ResolveDir returns the notes directory: the configured one, else the
// .pocket directory of the nearest notebook root above wd, else DataDir.
func (c Config) ResolveDir(wd string) (string, error) {
	if c.Dir != "" {
		return expandHome(c.Dir)
	}
	if root, err := platform.FindRoot(wd); err == nil {
		return filepath.Join(root, platform.RootMarker), nil
	}
	return DataDir()
}

// Level parses Logging.Level. Unknown values fall back to info.
func (c Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.Logging.Level))); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Options converts the settings into platform options.
func (c Config) Options() []platform.Option {
	return []platform.Option{
		platform.WithBackend(c.Backend),
		platform.WithFormat(c.Format),
		platform.WithIDStrategy(c.IDStrategy),
		platform.WithReadOnly(c.ReadOnly),
		platform.WithVersioning(c.Versioned),
	}
}
