package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"gitlab.com/tinyland/lab/host-pulse/pkg/snapshot"
	"gitlab.com/tinyland/lab/host-pulse/pkg/terminal"
	"gitlab.com/tinyland/lab/host-pulse/pkg/theme"
)

var snapshotFormat string

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Collect host metrics once and print them",
	Long: `Runs the metrics collector once and writes the rows to stdout as an
aligned table, JSON or YAML. Colors are dropped when stdout is not a terminal.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := snapshot.ParseFormat(snapshotFormat)
		if err != nil {
			return err
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger, closeLog, err := newLogger(cfg)
		if err != nil {
			return err
		}
		defer closeLog()

		s, err := snapshot.Take(cmd.Context(), newMetricsCollector(cfg), os.Hostname, time.Now)
		if err != nil {
			return err
		}
		if s.Partial != "" {
			logger.Warn("snapshot incomplete", "reason", s.Partial)
		}

		lipgloss.SetColorProfile(terminal.ColorProfile(os.Stdout))
		th := resolveTheme(cfg.Display.Theme, logger)

		w := snapshot.Writer{
			Format: format,
			Width:  terminal.GetSize().Cols,
			Styles: theme.NewStyles(th),
		}
		if err := w.Write(cmd.OutOrStdout(), s); err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and exit",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "host-pulse %s (%s) built %s\n", version, commit, date)
	},
}

func init() {
	snapshotCmd.Flags().StringVarP(&snapshotFormat, "format", "f", "table", "Output format: table, json or yaml")
	rootCmd.AddCommand(snapshotCmd, versionCmd)
}
