// Package snapshot runs the metrics collector once and writes the rows to a
// plain writer, for use outside the TUI.
package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"gopkg.in/yaml.v3"

	"gitlab.com/tinyland/lab/host-pulse/pkg/collectors"
	"gitlab.com/tinyland/lab/host-pulse/pkg/layout"
	"gitlab.com/tinyland/lab/host-pulse/pkg/theme"
)

// Format selects the output encoding.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	case "":
		return FormatTable, nil
	}
	return "", fmt.Errorf("unknown format %q (want table, json or yaml)", s)
}

// Source produces the ordered metric rows.
type Source interface {
	Collect(ctx context.Context) ([]collectors.Row, error)
}

// Snapshot is one collection, ready to encode.
type Snapshot struct {
	Host        string           `json:"host" yaml:"host"`
	CollectedAt time.Time        `json:"collected_at" yaml:"collected_at"`
	Rows        []collectors.Row `json:"rows" yaml:"rows"`
	Partial     string           `json:"partial,omitempty" yaml:"partial,omitempty"`
}

// Take runs src once. A collection error that still produced rows is kept
// as Partial; an error with no rows is returned.
func Take(ctx context.Context, src Source, hostname func() (string, error), now func() time.Time) (Snapshot, error) {
	rows, err := src.Collect(ctx)
	if err != nil && len(rows) == 0 {
		return Snapshot{}, fmt.Errorf("snapshot: collect: %w", err)
	}

	s := Snapshot{Rows: rows, CollectedAt: now()}
	if err != nil {
		s.Partial = collectors.Classify(err).String()
	}
	if host, herr := hostname(); herr == nil {
		s.Host = host
	}
	return s, nil
}

// Writer encodes snapshots.
type Writer struct {
	Format Format
	Width  int // terminal width for FormatTable
	Styles theme.Styles
}

// Write encodes s to w.
func (wr Writer) Write(w io.Writer, s Snapshot) error {
	switch wr.Format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return err
		}
		return enc.Close()
	case FormatTable, "":
		_, err := io.WriteString(w, wr.renderTable(s))
		return err
	}
	return fmt.Errorf("snapshot: unknown format %q", wr.Format)
}

var headers = []string{"Description", "Value"}

// renderTable lays the rows out with the same column split the TUI uses.
func (wr Writer) renderTable(s Snapshot) string {
	width := wr.Width
	if width <= 0 {
		width = 80
	}
	widths := layout.Columns(width-len(headers)*layout.ColumnPadding, len(headers), layout.ColumnPadding)

	var b strings.Builder
	title := "host-pulse snapshot"
	if s.Host != "" {
		title += " of " + s.Host
	}
	title += " at " + s.CollectedAt.Format(time.DateTime)
	b.WriteString(wr.Styles.Title.Render(ansi.Truncate(title, width, "…")))
	b.WriteByte('\n')
	if s.Partial != "" {
		b.WriteString(wr.Styles.Note.Render("partial data: " + s.Partial))
		b.WriteByte('\n')
	}

	header := make([]string, len(headers))
	for i, h := range headers {
		header[i] = cell(h, widths[i], wr.Styles.Title)
	}
	b.WriteString(strings.Join(header, ""))
	b.WriteByte('\n')
	b.WriteString(wr.Styles.Hint.Render(strings.Repeat("─", sum(widths))))
	b.WriteByte('\n')

	for _, r := range s.Rows {
		b.WriteString(cell(r.Label, widths[0], wr.Styles.StatusBar))
		b.WriteString(cell(r.Value, widths[1], wr.Styles.StatusBar))
		b.WriteByte('\n')
	}
	return b.String()
}

// cell truncates text to leave the column padding free and pads it to w.
func cell(text string, w int, st lipgloss.Style) string {
	limit := w - layout.ColumnPadding
	if limit < 1 {
		limit = 1
	}
	text = ansi.Truncate(text, limit, "…")
	pad := w - ansi.StringWidth(text)
	if pad < 0 {
		pad = 0
	}
	return st.Render(text) + strings.Repeat(" ", pad)
}

func sum(ns []int) int {
	t := 0
	for _, n := range ns {
		t += n
	}
	return t
}
