package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
	"gopkg.in/yaml.v3"

	"gitlab.com/tinyland/lab/host-pulse/pkg/collectors"
	"gitlab.com/tinyland/lab/host-pulse/pkg/layout"
	"gitlab.com/tinyland/lab/host-pulse/pkg/theme"
)

type fakeSource struct {
	rows []collectors.Row
	err  error
}

func (f fakeSource) Collect(ctx context.Context) ([]collectors.Row, error) {
	return f.rows, f.err
}

var (
	fixedTime = time.Date(2026, 10, 17, 8, 0, 0, 0, time.UTC)
	rows      = []collectors.Row{
		{Label: "System", Value: "Linux"},
		{Label: "Total memory", Value: "15.50 GiB"},
	}
)

func fixedNow() time.Time { return fixedTime }

func hostBox() (string, error) { return "box", nil }

func TestParseFormat(t *testing.T) {
	tests := map[string]Format{
		"":      FormatTable,
		"table": FormatTable,
		"JSON":  FormatJSON,
		"yaml":  FormatYAML,
		"yml":   FormatYAML,
	}
	for in, want := range tests {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat(xml) should fail")
	}
}

func TestTake(t *testing.T) {
	s, err := Take(context.Background(), fakeSource{rows: rows}, hostBox, fixedNow)
	if err != nil {
		t.Fatalf("Take: %v", err)
	}
	if s.Host != "box" || !s.CollectedAt.Equal(fixedTime) || len(s.Rows) != 2 || s.Partial != "" {
		t.Errorf("Take = %+v", s)
	}
}

func TestTakePartial(t *testing.T) {
	src := fakeSource{rows: rows, err: fs.ErrPermission}
	s, err := Take(context.Background(), src, func() (string, error) { return "", errors.New("no") }, fixedNow)
	if err != nil {
		t.Fatalf("Take: %v", err)
	}
	if s.Partial != "permission denied" {
		t.Errorf("Partial = %q", s.Partial)
	}
	if s.Host != "" {
		t.Errorf("Host = %q, want empty on hostname error", s.Host)
	}
}

func TestTakeFailsWithoutRows(t *testing.T) {
	_, err := Take(context.Background(), fakeSource{err: context.Canceled}, hostBox, fixedNow)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want wrapped context.Canceled", err)
	}
}

func snap() Snapshot {
	return Snapshot{Host: "box", CollectedAt: fixedTime, Rows: rows}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := (Writer{Format: FormatJSON}).Write(&buf, snap()); err != nil {
		t.Fatal(err)
	}
	var got Snapshot
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, buf.String())
	}
	if got.Host != "box" || len(got.Rows) != 2 || got.Rows[1].Value != "15.50 GiB" {
		t.Errorf("decoded = %+v", got)
	}
	if strings.Contains(buf.String(), "partial") {
		t.Error("empty Partial should be omitted")
	}
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := (Writer{Format: FormatYAML}).Write(&buf, snap()); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "label: System") {
		t.Errorf("YAML missing row label:\n%s", buf.String())
	}
	var got Snapshot
	if err := yaml.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid YAML: %v", err)
	}
	if got.Rows[0].Value != "Linux" {
		t.Errorf("decoded = %+v", got)
	}
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	w := Writer{Format: FormatTable, Width: 60, Styles: theme.NewStyles(theme.Get("default"))}
	if err := w.Write(&buf, snap()); err != nil {
		t.Fatal(err)
	}
	out := ansi.Strip(buf.String())
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	// title, header, rule, two rows
	if len(lines) != 5 {
		t.Fatalf("got %d lines:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "box") || !strings.Contains(lines[0], "2026-10-17 08:00:00") {
		t.Errorf("title = %q", lines[0])
	}
	colW := (60-2*layout.ColumnPadding)/2 + layout.ColumnPadding
	if got := ansi.StringWidth(lines[1]); got != 2*colW {
		t.Errorf("header width = %d, want %d", got, 2*colW)
	}
	if !strings.HasPrefix(lines[3], "System") || !strings.Contains(lines[3], "Linux") {
		t.Errorf("row = %q", lines[3])
	}
	if idx := strings.Index(lines[3], "Linux"); idx != colW {
		t.Errorf("value column starts at %d, want %d", idx, colW)
	}
}

func TestWriteTableTruncates(t *testing.T) {
	long := Snapshot{CollectedAt: fixedTime, Rows: []collectors.Row{{Label: strings.Repeat("x", 100), Value: "v"}}}
	var buf bytes.Buffer
	if err := (Writer{Width: 40}).Write(&buf, long); err != nil {
		t.Fatal(err)
	}
	for _, line := range strings.Split(strings.TrimRight(ansi.Strip(buf.String()), "\n"), "\n") {
		if ansi.StringWidth(line) > 40 {
			t.Errorf("line wider than 40: %q", line)
		}
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	if err := (Writer{Format: "xml"}).Write(&bytes.Buffer{}, snap()); err == nil {
		t.Error("expected error for unknown format")
	}
}
