package app

import (
	"context"
	"errors"
	"io/fs"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"

	"gitlab.com/tinyland/lab/host-pulse/pkg/collectors"
	"gitlab.com/tinyland/lab/host-pulse/pkg/collectors/reachability"
	"gitlab.com/tinyland/lab/host-pulse/pkg/layout"
	"gitlab.com/tinyland/lab/host-pulse/pkg/theme"
)

// fakeMetrics returns a fixed row set.
type fakeMetrics struct {
	rows  []collectors.Row
	err   error
	calls atomic.Int32
}

func (f *fakeMetrics) Collect(ctx context.Context) ([]collectors.Row, error) {
	f.calls.Add(1)
	return f.rows, f.err
}

// fakeProber returns a fixed result, or blocks until released.
type fakeProber struct {
	res     reachability.Result
	release chan struct{}
	calls   atomic.Int32
}

func (f *fakeProber) Check(ctx context.Context) reachability.Result {
	f.calls.Add(1)
	if f.release != nil {
		<-f.release
	}
	return f.res
}

func sampleRows() []collectors.Row {
	return []collectors.Row{
		{Label: "System", Value: "Linux"},
		{Label: "Host Name", Value: "box"},
		{Label: "CPU Usage", Value: "12.5%"},
	}
}

func newTestModel(t *testing.T) (Model, *fakeMetrics, *fakeProber) {
	t.Helper()
	metrics := &fakeMetrics{rows: sampleRows()}
	prober := &fakeProber{res: reachability.Result{Status: reachability.Connected, Code: 200}}
	m := NewModel(context.Background(), Options{
		Metrics:      metrics,
		Prober:       prober,
		ProbeTimeout: time.Second,
		Hostname:     func() (string, error) { return "box", nil },
		Styles:       theme.NewStyles(theme.Get("default")),
	})
	return m, metrics, prober
}

// update sends msg through Update and returns the concrete model.
func update(m Model, msg tea.Msg) (Model, tea.Cmd) {
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func TestInitReturnsCmd(t *testing.T) {
	m, _, _ := newTestModel(t)
	if m.Init() == nil {
		t.Fatal("Init() returned nil")
	}
}

func TestMetricsEventPopulatesOnce(t *testing.T) {
	m, _, _ := newTestModel(t)
	m, _ = update(m, MetricsEvent{Rows: sampleRows()})

	if !m.Populated() {
		t.Fatal("table not populated")
	}
	rows := m.TableRows()
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[0][0] != "System" || rows[0][1] != "Linux" {
		t.Errorf("first row = %v", rows[0])
	}

	m, _ = update(m, MetricsEvent{Rows: []collectors.Row{{Label: "Other", Value: "x"}}})
	if got := m.TableRows(); len(got) != 3 || got[0][0] != "System" {
		t.Errorf("second MetricsEvent changed the table: %v", got)
	}
}

func TestMetricsEventErrorSetsNote(t *testing.T) {
	m, _, _ := newTestModel(t)
	err := errors.Join(errors.New("disk"), fs.ErrPermission)
	m, _ = update(m, MetricsEvent{Rows: sampleRows(), Err: err})

	if !strings.Contains(m.Note(), "permission denied") {
		t.Errorf("Note() = %q, want permission denied", m.Note())
	}
	if len(m.TableRows()) != 3 {
		t.Errorf("partial rows should still be shown")
	}
}

func TestTicksUpdateClockNotTable(t *testing.T) {
	m, _, _ := newTestModel(t)
	m, _ = update(m, MetricsEvent{Rows: sampleRows()})
	before := m.TableRows()

	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for i := 0; i < 5; i++ {
		var cmd tea.Cmd
		m, cmd = update(m, TickEvent{Time: start.Add(time.Duration(i) * time.Second)})
		if cmd == nil {
			t.Fatalf("tick %d did not schedule the next tick", i)
		}
	}

	if m.ClockUpdates() != 5 {
		t.Errorf("ClockUpdates() = %d, want 5", m.ClockUpdates())
	}
	if got := m.State().Now; !got.Equal(start.Add(4 * time.Second)) {
		t.Errorf("State().Now = %v", got)
	}
	after := m.TableRows()
	if len(after) != len(before) {
		t.Fatalf("ticks changed row count: %d -> %d", len(before), len(after))
	}
	for i := range before {
		if before[i][0] != after[i][0] || before[i][1] != after[i][1] {
			t.Errorf("row %d changed: %v -> %v", i, before[i], after[i])
		}
	}
}

func TestTickRereadsHostname(t *testing.T) {
	m, _, _ := newTestModel(t)
	names := []string{"alpha", "beta"}
	i := 0
	m.opts.Hostname = func() (string, error) {
		n := names[i]
		i++
		return n, nil
	}

	m, _ = update(m, TickEvent{Time: time.Now()})
	if m.State().Host != "alpha" {
		t.Errorf("Host = %q, want alpha", m.State().Host)
	}
	m, _ = update(m, TickEvent{Time: time.Now()})
	if m.State().Host != "beta" {
		t.Errorf("Host = %q, want beta", m.State().Host)
	}

	m.opts.Hostname = func() (string, error) { return "", errors.New("boom") }
	m, _ = update(m, TickEvent{Time: time.Now()})
	if got := RenderStatus(m.State()).Host; got != "Host: unknown" {
		t.Errorf("Host line = %q, want Host: unknown", got)
	}
}

func TestOneProbeInFlight(t *testing.T) {
	m, _, _ := newTestModel(t)

	for i := 0; i < 3; i++ {
		m, _ = update(m, TickEvent{Time: time.Now()})
	}
	if m.ProbesStarted() != 1 {
		t.Fatalf("ProbesStarted() = %d, want 1 while a probe is in flight", m.ProbesStarted())
	}
	if !m.State().Probing {
		t.Error("State().Probing should be true")
	}

	m, _ = update(m, ReachabilityEvent{Result: reachability.Result{Status: reachability.Connected}})
	m, _ = update(m, TickEvent{Time: time.Now()})
	if m.ProbesStarted() != 2 {
		t.Errorf("ProbesStarted() = %d, want 2 after result arrived", m.ProbesStarted())
	}
}

func TestReachabilityEventUpdatesStatus(t *testing.T) {
	m, _, _ := newTestModel(t)
	if got := RenderStatus(m.State()).Reachability; got != "Network: checking" {
		t.Errorf("initial = %q", got)
	}

	m, _ = update(m, ReachabilityEvent{Result: reachability.Result{Status: reachability.Connected, Code: 200}})
	if got := RenderStatus(m.State()).Reachability; got != "Network: Connected" {
		t.Errorf("after Connected = %q", got)
	}

	m, _ = update(m, ReachabilityEvent{Result: reachability.Result{
		Status: reachability.Disconnected,
		Err:    context.DeadlineExceeded,
	}})
	if got := RenderStatus(m.State()).Reachability; got != "Network: Disconnected" {
		t.Errorf("after Disconnected = %q", got)
	}
	if m.State().Probing {
		t.Error("Probing should be cleared by a result")
	}
}

func TestProbeCmdDelivers(t *testing.T) {
	p := &fakeProber{res: reachability.Result{Status: reachability.Connected, Code: 200}}
	msg := ProbeCmd(context.Background(), p, time.Second)()

	ev, ok := msg.(ReachabilityEvent)
	if !ok {
		t.Fatalf("msg = %T, want ReachabilityEvent", msg)
	}
	if ev.Result.Status != reachability.Connected {
		t.Errorf("Status = %v, want Connected", ev.Result.Status)
	}
}

func TestProbeCmdTimeoutIsDisconnected(t *testing.T) {
	p := &fakeProber{
		res:     reachability.Result{Status: reachability.Connected},
		release: make(chan struct{}),
	}
	t.Cleanup(func() { close(p.release) })

	start := time.Now()
	msg := ProbeCmd(context.Background(), p, 30*time.Millisecond)()
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("ProbeCmd took %v, timeout not applied", elapsed)
	}

	ev := msg.(ReachabilityEvent)
	if ev.Result.Status != reachability.Disconnected {
		t.Errorf("Status = %v, want Disconnected", ev.Result.Status)
	}
	if !errors.Is(ev.Result.Err, context.DeadlineExceeded) {
		t.Errorf("Err = %v, want deadline exceeded", ev.Result.Err)
	}
	if ev.Result.Failure != collectors.FailureTimeout {
		t.Errorf("Failure = %v, want timeout", ev.Result.Failure)
	}
}

func TestCollectCmd(t *testing.T) {
	src := &fakeMetrics{rows: sampleRows()}
	msg := CollectCmd(context.Background(), src)()

	ev, ok := msg.(MetricsEvent)
	if !ok {
		t.Fatalf("msg = %T, want MetricsEvent", msg)
	}
	if len(ev.Rows) != 3 || ev.Err != nil {
		t.Errorf("Rows = %d, Err = %v", len(ev.Rows), ev.Err)
	}
	if ev.Timestamp.IsZero() {
		t.Error("Timestamp not set")
	}
	if src.calls.Load() != 1 {
		t.Errorf("Collect called %d times", src.calls.Load())
	}
}

func TestWindowSizeDistributesColumns(t *testing.T) {
	m, _, _ := newTestModel(t)
	m, _ = update(m, MetricsEvent{Rows: sampleRows()})
	m, _ = update(m, tea.WindowSizeMsg{Width: 120, Height: 40})

	inner := 120 - len(tableHeaders)*(cellPadding+layout.ColumnPadding)
	want := inner/2 + layout.ColumnPadding
	for i, w := range m.ColumnWidths() {
		if w != want {
			t.Errorf("column %d width = %d, want %d", i, w, want)
		}
	}
}

func TestColumnsFitContentBeforeSize(t *testing.T) {
	m, _, _ := newTestModel(t)
	m, _ = update(m, MetricsEvent{Rows: sampleRows()})

	widths := m.ColumnWidths()
	// "Description" is the widest first-column cell, "Value" the widest second.
	if widths[0] != len("Description")+layout.ColumnPadding {
		t.Errorf("col 0 = %d", widths[0])
	}
	if widths[1] != len("Value")+layout.ColumnPadding {
		t.Errorf("col 1 = %d", widths[1])
	}
}

func TestViewStates(t *testing.T) {
	m, _, _ := newTestModel(t)
	if got := m.View(); got != "Initializing..." {
		t.Errorf("View() before size = %q", got)
	}

	m, _ = update(m, MetricsEvent{Rows: sampleRows()})
	m, _ = update(m, tea.WindowSizeMsg{Width: 100, Height: 20})
	m, _ = update(m, TickEvent{Time: time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)})

	v := m.View()
	for _, want := range []string{"host-pulse", "2026-03-04 05:06:07", "Host: box", "Network: checking", "Description", "Linux"} {
		if !strings.Contains(v, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}

func TestQuitKeys(t *testing.T) {
	for _, key := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune{'q'}},
		{Type: tea.KeyCtrlC},
	} {
		m, _, _ := newTestModel(t)
		m, cmd := update(m, key)
		if !m.Quitting() {
			t.Errorf("%s did not quit", key.String())
		}
		if cmd == nil {
			t.Errorf("%s returned no command", key.String())
		}
		if m.View() != "" {
			t.Errorf("View() after %s = %q, want empty", key.String(), m.View())
		}
	}
}

func TestRenderStatus(t *testing.T) {
	s := State{
		Now:     time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC),
		Host:    "box",
		Reach:   reachability.Connected,
		Checked: true,
		Running: 3*time.Hour + 2*time.Minute + 1*time.Second,
	}
	line := RenderStatus(s)
	if line.Clock != "2026-10-17 09:30:00" {
		t.Errorf("Clock = %q", line.Clock)
	}
	if line.Host != "Host: box" {
		t.Errorf("Host = %q", line.Host)
	}
	if line.Reachability != "Network: Connected" {
		t.Errorf("Reachability = %q", line.Reachability)
	}
	if line.Uptime != "Up 03:02:01" {
		t.Errorf("Uptime = %q", line.Uptime)
	}

	if got := RenderStatus(State{}).Clock; got != "--" {
		t.Errorf("zero clock = %q", got)
	}
}

func TestWindowSizeTableSpansWindow(t *testing.T) {
	for _, width := range []int{80, 120, 121} {
		m, _, _ := newTestModel(t)
		m, _ = update(m, MetricsEvent{Rows: sampleRows()})
		m, _ = update(m, tea.WindowSizeMsg{Width: width, Height: 30})

		inner := width - len(tableHeaders)*(cellPadding+layout.ColumnPadding)
		total := 0
		for _, w := range m.ColumnWidths() {
			total += w
		}
		if total < inner {
			t.Errorf("width %d: columns sum to %d, want >= %d", width, total, inner)
		}

		widest := 0
		for _, line := range strings.Split(m.table.View(), "\n") {
			widest = max(widest, ansi.StringWidth(line))
		}
		// Odd widths lose one cell to the floor division.
		if widest > width || widest < width-1 {
			t.Errorf("width %d: widest table line = %d", width, widest)
		}
	}
}
