// Package config provides TOML and YAML configuration for host-pulse.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"gitlab.com/tinyland/lab/host-pulse/pkg/collectors/reachability"
)

// Config is the root configuration.
type Config struct {
	General GeneralConfig `toml:"general" yaml:"general"`
	Probe   ProbeConfig   `toml:"probe" yaml:"probe"`
	Display DisplayConfig `toml:"display" yaml:"display"`
}

// GeneralConfig holds logging and filesystem settings.
type GeneralConfig struct {
	LogLevel string `toml:"log_level" yaml:"log_level"`
	CacheDir string `toml:"cache_dir" yaml:"cache_dir"`
}

// ProbeConfig configures the reachability check. The tick period is fixed
// and deliberately absent here.
type ProbeConfig struct {
	URL     string   `toml:"url" yaml:"url"`
	Method  string   `toml:"method" yaml:"method"`
	Timeout Duration `toml:"timeout" yaml:"timeout"`
}

// DisplayConfig configures the metrics table and theme.
type DisplayConfig struct {
	Theme           string   `toml:"theme" yaml:"theme"`
	CPUSample       Duration `toml:"cpu_sample" yaml:"cpu_sample"`
	IncludePseudoFS bool     `toml:"include_pseudo_fs" yaml:"include_pseudo_fs"`
}

// Validate reports the first invalid setting, if any.
func (c *Config) Validate() error {
	switch c.Probe.Method {
	case reachability.MethodHTTP, reachability.MethodICMP:
	default:
		return fmt.Errorf("probe.method: unknown method %q (want http or icmp)", c.Probe.Method)
	}

	u, err := url.Parse(c.Probe.URL)
	if err != nil {
		return fmt.Errorf("probe.url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("probe.url: scheme %q not supported (want http or https)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("probe.url: missing host in %q", c.Probe.URL)
	}

	if c.Probe.Timeout.Duration <= 0 {
		return fmt.Errorf("probe.timeout: must be positive, got %s", c.Probe.Timeout)
	}
	if c.Display.CPUSample.Duration <= 0 {
		return fmt.Errorf("display.cpu_sample: must be positive, got %s", c.Display.CPUSample)
	}

	if _, err := ParseLogLevel(c.General.LogLevel); err != nil {
		return err
	}
	return nil
}

// ParseLogLevel maps a config log level onto a slog.Level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("general.log_level: unknown level %q", s)
}
