// Package config loads kdump's on-disk configuration: output defaults and
// concurrency, not broker connection settings (kdump never connects to a
// broker; it reads a file the broker's own dump tool already produced).
package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/twmb/kdump/kv"
)

// Cfg is kdump's effective configuration, loaded from a toml file and then
// overridden by repeatable -X flags.
type Cfg struct {
	DefaultFormat   string `toml:"default_format"`
	TimestampFormat string `toml:"timestamp_format"`
	Concurrency     int32  `toml:"concurrency"`
}

func defaults() Cfg {
	return Cfg{
		DefaultFormat:   "table",
		TimestampFormat: "%F %T",
		Concurrency:     4,
	}
}

// DefaultPath returns the default per-user config file path, or "" if the
// user's config directory cannot be determined.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "kdump", "config.toml")
}

// Load reads the toml file at path (skipped entirely if noFile is true or
// path is empty), then applies overrides (each a "key=value" string, highest
// precedence), returning the effective Cfg.
func Load(path string, noFile bool, overrides []string) (Cfg, error) {
	cfg := defaults()

	if !noFile && path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil && !os.IsNotExist(err) {
			return Cfg{}, fmt.Errorf("unable to decode config file %q: %v", path, err)
		}
		if err == nil && len(md.Undecoded()) > 0 {
			return Cfg{}, fmt.Errorf("unknown keys in config file %q: %v", path, md.Undecoded())
		}
	}

	kvs, err := kv.Parse(overrides)
	if err != nil {
		return Cfg{}, fmt.Errorf("unable to parse config overrides: %v", err)
	}
	for _, pair := range kvs {
		if err := apply(&cfg, pair.K, pair.V); err != nil {
			return Cfg{}, err
		}
	}

	if cfg.DefaultFormat != "table" && cfg.DefaultFormat != "json" {
		return Cfg{}, fmt.Errorf("default_format must be %q or %q, got %q", "table", "json", cfg.DefaultFormat)
	}
	if cfg.Concurrency < 1 {
		return Cfg{}, fmt.Errorf("concurrency must be >= 1, got %d", cfg.Concurrency)
	}

	return cfg, nil
}

func apply(cfg *Cfg, k, v string) error {
	switch k {
	case "default_format":
		cfg.DefaultFormat = v
	case "timestamp_format":
		cfg.TimestampFormat = v
	case "concurrency":
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("opt %q: %v", k, err)
		}
		if n < 1 || n > math.MaxInt32 {
			return fmt.Errorf("opt %q: invalid concurrency %d", k, n)
		}
		cfg.Concurrency = int32(n)
	default:
		return fmt.Errorf("unknown config opt key %q", strings.TrimSpace(k))
	}
	return nil
}

// Dump toml-encodes cfg to stdout.
func Dump(cfg Cfg) error {
	return toml.NewEncoder(os.Stdout).Encode(cfg)
}
