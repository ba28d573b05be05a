// host-pulse shows host metrics and network reachability in the terminal.
//
// At startup it collects system identity, CPU, memory and per-partition disk
// usage once into a table, then refreshes a status line with the clock, the
// host name and external reachability every second.
//
// Usage:
//
//	host-pulse [flags]
//	host-pulse snapshot [--format table|json|yaml]
//	host-pulse version
//
// Flags:
//
//	--config string  Path to configuration file (default: search XDG config dirs)
//	--verbose        Enable debug logging
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"gitlab.com/tinyland/lab/host-pulse/pkg/app"
	"gitlab.com/tinyland/lab/host-pulse/pkg/collectors"
	"gitlab.com/tinyland/lab/host-pulse/pkg/collectors/hostinfo"
	"gitlab.com/tinyland/lab/host-pulse/pkg/collectors/reachability"
	"gitlab.com/tinyland/lab/host-pulse/pkg/config"
	"gitlab.com/tinyland/lab/host-pulse/pkg/runinfo"
	"gitlab.com/tinyland/lab/host-pulse/pkg/theme"
)

var (
	version = "0.1.0"
	commit  = "dev"
	date    = "unknown"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:           "host-pulse",
	Short:         "Host metrics table with a live clock and reachability status",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "host-pulse: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// loadConfig reads and validates the configuration named by --config, or
// the first one found in the search path.
func loadConfig() (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.LoadFromFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newLogger opens the log file and returns a text logger writing to it.
// The TUI owns the terminal, so nothing is logged to stderr.
func newLogger(cfg *config.Config) (*slog.Logger, func() error, error) {
	level, err := config.ParseLogLevel(cfg.General.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	if verbose {
		level = slog.LevelDebug
	}

	path := cfg.LogFile()
	if err := ensureLogDir(path); err != nil {
		return nil, nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level}))
	return logger, f.Close, nil
}

func ensureLogDir(logFile string) error {
	return os.MkdirAll(filepath.Dir(logFile), 0o755)
}

// resolveTheme looks up the configured theme, falling back to the default
// with a warning.
func resolveTheme(name string, logger *slog.Logger) theme.Theme {
	th, err := theme.Resolve(name)
	if err != nil {
		logger.Warn("theme not found, using default", "theme", name, "error", err)
		return theme.Get("default")
	}
	return th
}

func newMetricsCollector(cfg *config.Config) *hostinfo.Collector {
	return hostinfo.New(hostinfo.Config{
		SampleInterval:  cfg.Display.CPUSample.Duration,
		IncludePseudoFS: cfg.Display.IncludePseudoFS,
	})
}

func runTUI(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	th := resolveTheme(cfg.Display.Theme, logger)

	prober := reachability.New(reachability.Config{
		URL:     cfg.Probe.URL,
		Timeout: cfg.Probe.Timeout.Duration,
		Method:  cfg.Probe.Method,
	}, nil)

	metrics := newMetricsCollector(cfg)
	registry := collectors.NewRegistry()
	for _, c := range []collectors.Collector{metrics, prober} {
		if err := registry.Register(c); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	run := runinfo.New()
	model := app.NewModel(ctx, app.Options{
		Metrics:      metrics,
		Prober:       prober,
		ProbeTimeout: prober.Timeout(),
		Hostname:     os.Hostname,
		Run:          run,
		Styles:       theme.NewStyles(th),
		Logger:       logger,
	})

	logger.Info("starting host-pulse",
		"version", version,
		"probe", prober.Target(),
		"method", cfg.Probe.Method,
		"theme", th.Name,
	)

	run.Start()
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err = p.Run()
	run.Finish()
	cancel()

	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("tui: %w", err)
	}
	for _, st := range registry.AllStatus() {
		logger.Info("collector status", "name", st.Name, "healthy", st.Healthy)
	}
	logger.Info("host-pulse exited")

	fmt.Print(run.Summary(runinfo.OSRelease()))
	return nil
}
