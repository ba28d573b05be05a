// Package app provides the Bubbletea application for host-pulse: the event
// types, the explicit state holder, the pure status renderer, and the root
// model that populates the metrics table once and refreshes the status line
// on every tick.
package app

import (
	"time"

	"gitlab.com/tinyland/lab/host-pulse/pkg/collectors"
	"gitlab.com/tinyland/lab/host-pulse/pkg/collectors/reachability"
)

// TickEvent is sent by the fixed-period refresh timer.
type TickEvent struct {
	Time time.Time
}

// MetricsEvent carries the one-time metrics collection result into the
// update loop. Rows may be non-empty even when Err is set.
type MetricsEvent struct {
	Rows      []collectors.Row
	Err       error
	Timestamp time.Time
}

// ReachabilityEvent carries a finished reachability probe back into the
// update loop.
type ReachabilityEvent struct {
	Result reachability.Result
}
