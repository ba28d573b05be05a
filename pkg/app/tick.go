package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"gitlab.com/tinyland/lab/host-pulse/pkg/collectors"
	"gitlab.com/tinyland/lab/host-pulse/pkg/collectors/reachability"
)

// TickInterval is the fixed refresh period of the status line.
const TickInterval = time.Second

// MetricsSource produces the ordered metric rows.
type MetricsSource interface {
	Collect(ctx context.Context) ([]collectors.Row, error)
}

// Prober performs one reachability check.
type Prober interface {
	Check(ctx context.Context) reachability.Result
}

// TickCmd returns a bubbletea Cmd that sends a TickEvent after the given
// duration. This drives the periodic status refresh.
func TickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return TickEvent{Time: t}
	})
}

// CollectCmd returns a Cmd that runs one metrics collection off the update
// loop and delivers the rows as a MetricsEvent.
func CollectCmd(ctx context.Context, src MetricsSource) tea.Cmd {
	return func() tea.Msg {
		rows, err := src.Collect(ctx)
		return MetricsEvent{
			Rows:      rows,
			Err:       err,
			Timestamp: time.Now(),
		}
	}
}

// ProbeCmd returns a Cmd that runs one reachability check in the background
// and delivers a ReachabilityEvent. The check is bounded by timeout even if
// the prober ignores its context; a timed-out check is Disconnected.
func ProbeCmd(ctx context.Context, p Prober, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		done := make(chan reachability.Result, 1)
		start := time.Now()
		go func() {
			done <- p.Check(ctx)
		}()

		select {
		case res := <-done:
			return ReachabilityEvent{Result: res}
		case <-ctx.Done():
			return ReachabilityEvent{Result: reachability.Result{
				Status:    reachability.Disconnected,
				Err:       ctx.Err(),
				Failure:   collectors.Classify(ctx.Err()),
				Latency:   time.Since(start),
				CheckedAt: start,
			}}
		}
	}
}
