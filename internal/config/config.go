package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/Zuo-Peng/chatx/internal/parse"
)

type Config struct {
	Roots     []string `toml:"roots"`
	Include   []string `toml:"include"`
	DBPath    string   `toml:"db_path"`
	DateOrder string   `toml:"date_order"`
	Timezone  string   `toml:"timezone"`
	Listen    string   `toml:"listen"`
}

// Load reads ~/.config/chatx/config.toml when present, then applies
// CHATX_* environment overrides. A .env file in the working directory is
// loaded into the environment first.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return LoadFrom(filepath.Join(home, ".config", "chatx", "config.toml"), home)
}

// LoadFrom is Load with an explicit config path and home directory.
func LoadFrom(cfgPath, home string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Roots:     []string{filepath.Join(home, "Downloads")},
		Include:   []string{"**/*.txt"},
		DBPath:    filepath.Join(home, ".config", "chatx", "chatx.db"),
		DateOrder: "day-first",
		Timezone:  "UTC",
		Listen:    "127.0.0.1:8765",
	}

	if _, err := os.Stat(cfgPath); err == nil {
		if _, err := toml.DecodeFile(cfgPath, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", cfgPath, err)
		}
	}

	applyEnv(cfg)

	// expand ~ in paths
	for i, r := range cfg.Roots {
		cfg.Roots[i] = expandHome(r, home)
	}
	cfg.DBPath = expandHome(cfg.DBPath, home)

	if _, err := cfg.Parser(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("CHATX_ROOTS")); v != "" {
		cfg.Roots = filepath.SplitList(v)
	}
	if v := strings.TrimSpace(os.Getenv("CHATX_DB_PATH")); v != "" {
		cfg.DBPath = v
	}
	if v := strings.TrimSpace(os.Getenv("CHATX_DATE_ORDER")); v != "" {
		cfg.DateOrder = v
	}
	if v := strings.TrimSpace(os.Getenv("CHATX_TIMEZONE")); v != "" {
		cfg.Timezone = v
	}
	if v := strings.TrimSpace(os.Getenv("CHATX_LISTEN")); v != "" {
		cfg.Listen = v
	}
}

// Parser builds the export parser described by the date order and timezone
// settings.
func (c *Config) Parser() (parse.Parser, error) {
	order, err := parse.ParseDateOrder(c.DateOrder)
	if err != nil {
		return parse.Parser{}, fmt.Errorf("date_order: %w", err)
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return parse.Parser{}, fmt.Errorf("timezone: %w", err)
	}
	return parse.Parser{Order: order, Location: loc}, nil
}

func expandHome(path, home string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
