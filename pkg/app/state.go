package app

import (
	"fmt"
	"time"

	"gitlab.com/tinyland/lab/host-pulse/pkg/collectors/reachability"
)

// ClockFormat is the layout of the status bar timestamp.
const ClockFormat = time.DateTime

// State is everything the status line shows. The model owns one State and
// replaces its fields on each tick or probe result; RenderStatus turns it
// into display strings without side effects.
type State struct {
	Now      time.Time
	Host     string
	Reach    reachability.Status
	Checked  bool // at least one probe has finished
	Probing  bool
	Running  time.Duration
	LastCode int
}

// StatusLine holds the formatted status bar fields.
type StatusLine struct {
	Clock        string
	Host         string
	Reachability string
	Uptime       string
}

// RenderStatus formats s for display.
func RenderStatus(s State) StatusLine {
	line := StatusLine{
		Clock:        s.Now.Format(ClockFormat),
		Host:         "Host: " + s.Host,
		Reachability: "Network: " + s.Reach.String(),
		Uptime:       "Up " + formatRunning(s.Running),
	}
	if s.Now.IsZero() {
		line.Clock = "--"
	}
	if s.Host == "" {
		line.Host = "Host: unknown"
	}
	if !s.Checked {
		line.Reachability = "Network: checking"
	}
	return line
}

// formatRunning renders a duration as HH:MM:SS.
func formatRunning(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	secs := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, (secs/60)%60, secs%60)
}
