// Package runinfo records when a host-pulse run started and how long it
// lasted, and renders the summary printed on exit.
package runinfo

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/host"
)

const rule = "================================================================="

// Info tracks a single program run. The zero value is not usable; call New.
type Info struct {
	mu      sync.Mutex
	date    time.Time
	started time.Time
	ended   time.Time
	now     func() time.Time
}

// New returns an Info whose run date is the current time.
func New() *Info {
	return NewWithClock(time.Now)
}

// NewWithClock returns an Info that reads time from now.
func NewWithClock(now func() time.Time) *Info {
	return &Info{date: now(), now: now}
}

// Date returns the run date captured at construction.
func (i *Info) Date() time.Time {
	return i.date
}

// Start stamps the beginning of the run.
func (i *Info) Start() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.started = i.now()
	i.ended = time.Time{}
}

// Finish stamps the end of the run.
func (i *Info) Finish() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.ended = i.now()
}

// Elapsed returns the run duration and whether both stamps are set.
func (i *Info) Elapsed() (time.Duration, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.started.IsZero() || i.ended.IsZero() {
		return 0, false
	}
	return i.ended.Sub(i.started), true
}

// Running returns the time since Start, or zero before Start.
func (i *Info) Running() time.Duration {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.started.IsZero() {
		return 0
	}
	end := i.ended
	if end.IsZero() {
		end = i.now()
	}
	return end.Sub(i.started)
}

// OSRelease returns "<system>-<release>", e.g. "Linux-6.8.0-45-generic".
func OSRelease() string {
	system := runtime.GOOS
	release := ""
	if info, err := host.Info(); err == nil {
		release = info.KernelVersion
	}
	return FormatOSRelease(system, release)
}

// FormatOSRelease joins a GOOS value and kernel release.
func FormatOSRelease(goos, release string) string {
	system := goos
	if system != "" {
		system = strings.ToUpper(system[:1]) + system[1:]
	}
	if release == "" {
		return system
	}
	return system + "-" + release
}

// Summary renders the ruled run summary block.
func (i *Info) Summary(osRelease string) string {
	var b strings.Builder
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "OPERATING SYSTEM: %s\n", osRelease)
	fmt.Fprintf(&b, "RUN DATE: %s\n", i.date.Format(time.DateTime))
	if d, ok := i.Elapsed(); ok {
		fmt.Fprintf(&b, "RUN TIME: %.2f seconds\n", d.Seconds())
	} else {
		b.WriteString("RUN TIME\n")
	}
	b.WriteString(rule + "\n")
	return b.String()
}
