// Package config loads optional CLI defaults from a YAML file. Flags always
// override file values.
package config

import (
	"bytes"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/ljanicek/critpath/internal/constraint"
	"github.com/ljanicek/critpath/internal/cpm"
)

// Config mirrors critpath.yaml.
type Config struct {
	Delimiter string `yaml:"delimiter"`  // "comma" (default) or "semicolon"
	DateMode  string `yaml:"date_mode"`  // "computed" (default) or "supplied"
	HistoryDB string `yaml:"history_db"` // path to the run history database
	NoColor   bool   `yaml:"no_color"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{Delimiter: "comma", DateMode: "computed"}
}

// Load reads and strictly decodes path. Unknown keys are an error so that a
// typo in the file surfaces instead of being silently ignored.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// Options translates the file values into engine options.
func (c *Config) Options() (cpm.Options, error) {
	opts := cpm.DefaultOptions()
	switch c.Delimiter {
	case "", "comma":
		opts.Delimiter = constraint.Comma
	case "semicolon":
		opts.Delimiter = constraint.Semicolon
	default:
		return opts, fmt.Errorf("unknown delimiter %q (want comma or semicolon)", c.Delimiter)
	}
	switch c.DateMode {
	case "", "computed":
		opts.DateMode = cpm.DateComputed
	case "supplied":
		opts.DateMode = cpm.DateSupplied
	default:
		return opts, fmt.Errorf("unknown date_mode %q (want computed or supplied)", c.DateMode)
	}
	return opts, nil
}
