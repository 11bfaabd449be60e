// Package config loads provfig settings from the environment and optional
// .env files.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds settings shared by all subcommands. Flags override them.
type Config struct {
	Data      string  `env:"PROVFIG_DATA" envDefault:"Shapefile/Simplified provinces - 10 km.gpkg"`
	FigureDir string  `env:"PROVFIG_FIGURE_DIR" envDefault:"Figures"`
	DPI       float64 `env:"PROVFIG_DPI" envDefault:"300"`
	LogLevel  string  `env:"PROVFIG_LOG_LEVEL" envDefault:"info"`
	LogFormat string  `env:"PROVFIG_LOG_FORMAT" envDefault:"text"`

	// DPISet reports whether PROVFIG_DPI came from the environment or a
	// .env file rather than the default. Only then does it override the
	// resolution stored in a figure definition.
	DPISet bool
}

// Load reads .env files (missing files are ignored, existing environment
// variables win) and parses the PROVFIG_* variables. A .env file that
// exists but cannot be read or parsed is an error.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	opts := env.Options{
		OnSet: func(tag string, _ interface{}, isDefault bool) {
			if tag == "PROVFIG_DPI" && !isDefault {
				cfg.DPISet = true
			}
		},
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.DPI <= 0 {
		return Config{}, fmt.Errorf("PROVFIG_DPI must be positive, got %g", cfg.DPI)
	}
	return cfg, nil
}
