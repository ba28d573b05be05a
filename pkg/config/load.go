package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"gitlab.com/tinyland/lab/host-pulse/pkg/collectors/reachability"
)

// Format selects the decoder used for a config stream.
type Format int

const (
	FormatTOML Format = iota
	FormatYAML
)

// Load reads configuration from the standard config path.
// Search order:
//  1. $XDG_CONFIG_HOME/host-pulse/config.toml (then .yaml)
//  2. ~/.config/host-pulse/config.toml (then .yaml)
//
// A .env file in the working directory is loaded into the environment
// first; it is optional. If no config file exists, returns DefaultConfig()
// with environment overrides applied.
func Load() (*Config, error) {
	_ = godotenv.Load()

	for _, p := range configSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return LoadFromFile(p)
		}
	}
	cfg := DefaultConfig()
	applyEnvOverrides(cfg)
	return cfg, nil
}

// LoadFromFile reads configuration from a specific file path. The format is
// chosen by extension: .yaml and .yml are YAML, anything else is TOML.
// Like Load, it reads an optional .env file from the working directory
// before applying environment overrides.
func LoadFromFile(path string) (*Config, error) {
	_ = godotenv.Load()

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := DefaultConfig()
			applyEnvOverrides(cfg)
			return cfg, nil
		}
		return nil, err
	}
	defer f.Close()

	cfg, err := LoadFromReader(f, formatFor(path))
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader reads configuration from an io.Reader.
func LoadFromReader(r io.Reader, format Format) (*Config, error) {
	cfg := DefaultConfig()
	switch format {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(cfg); err != nil && err != io.EOF {
			return nil, err
		}
	default:
		if _, err := toml.NewDecoder(r).Decode(cfg); err != nil {
			return nil, err
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// DefaultConfig returns the default configuration with sensible defaults.
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()

	return &Config{
		General: GeneralConfig{
			LogLevel: "info",
			CacheDir: filepath.Join(xdgCacheHome(home), "host-pulse"),
		},
		Probe: ProbeConfig{
			URL:     reachability.DefaultURL,
			Method:  reachability.MethodHTTP,
			Timeout: Duration{reachability.DefaultTimeout},
		},
		Display: DisplayConfig{
			Theme:     "default",
			CPUSample: Duration{1 * time.Second},
		},
	}
}

// LogFile returns the path of the log file inside the cache directory.
func (c *Config) LogFile() string {
	return filepath.Join(c.General.CacheDir, "host-pulse.log")
}

// applyEnvOverrides checks environment variables and overrides config values.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HOSTPULSE_PROBE_URL"); v != "" {
		cfg.Probe.URL = v
	}
	if v := os.Getenv("HOSTPULSE_PROBE_METHOD"); v != "" {
		cfg.Probe.Method = strings.ToLower(v)
	}
	if v := os.Getenv("HOSTPULSE_THEME"); v != "" {
		cfg.Display.Theme = v
	}
	if v := os.Getenv("HOSTPULSE_LOG_LEVEL"); v != "" {
		cfg.General.LogLevel = v
	}
}

func formatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatTOML
}

// configSearchPaths returns the ordered list of config file paths to try.
func configSearchPaths() []string {
	home, _ := os.UserHomeDir()
	var dirs []string

	xdg := xdgConfigHome(home)
	dirs = append(dirs, filepath.Join(xdg, "host-pulse"))

	// If XDG_CONFIG_HOME was explicitly set, also try the fallback default.
	defaultXDG := filepath.Join(home, ".config")
	if xdg != defaultXDG {
		dirs = append(dirs, filepath.Join(defaultXDG, "host-pulse"))
	}

	var paths []string
	for _, d := range dirs {
		paths = append(paths,
			filepath.Join(d, "config.toml"),
			filepath.Join(d, "config.yaml"),
		)
	}
	return paths
}

// xdgConfigHome returns XDG_CONFIG_HOME or ~/.config as fallback.
func xdgConfigHome(home string) string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	return filepath.Join(home, ".config")
}

// xdgCacheHome returns XDG_CACHE_HOME or ~/.cache as fallback.
func xdgCacheHome(home string) string {
	if v := os.Getenv("XDG_CACHE_HOME"); v != "" {
		return v
	}
	return filepath.Join(home, ".cache")
}
