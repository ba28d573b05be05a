// Package hostinfo provides the host-pulse metrics collector. It uses
// gopsutil to gather system identity, CPU, memory and per-partition disk
// usage and flattens them into ordered label/value rows for the metrics
// table.
package hostinfo

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/disk"
	"golang.org/x/sync/errgroup"

	"gitlab.com/tinyland/lab/host-pulse/pkg/collectors"
)

// Row labels, in display order.
const (
	LabelSystem       = "System"
	LabelVersion      = "Version"
	LabelHostname     = "Host name"
	LabelArchitecture = "Architecture"
	LabelProcessor    = "Processor"

	LabelCPUUsage      = "CPU usage"
	LabelLogicalCores  = "Logical cores"
	LabelPhysicalCores = "Physical cores"

	LabelMemTotal     = "Total memory"
	LabelMemAvailable = "Available memory"
	LabelMemUsage     = "Memory usage"

	LabelDevice     = "Device"
	LabelMountPoint = "Mount point"
	LabelFSType     = "File system"
	LabelDiskTotal  = "Total size"
	LabelDiskUsed   = "Used"
	LabelDiskFree   = "Free"
	LabelDiskUsage  = "Usage"
)

var (
	identityLabels = []string{LabelSystem, LabelVersion, LabelHostname, LabelArchitecture, LabelProcessor}
	cpuLabels      = []string{LabelCPUUsage, LabelLogicalCores, LabelPhysicalCores}
	memoryLabels   = []string{LabelMemTotal, LabelMemAvailable, LabelMemUsage}
	usageLabels    = []string{LabelDiskTotal, LabelDiskUsed, LabelDiskFree, LabelDiskUsage}
)

// HeaderRows is the number of rows emitted before the partition sections.
var HeaderRows = len(identityLabels) + len(cpuLabels) + len(memoryLabels)

// RowsPerPartition is the number of rows emitted for each partition.
const RowsPerPartition = 7

// Config controls the hostinfo collector.
type Config struct {
	// SampleInterval is how long the CPU utilisation sample blocks
	// (default 1s).
	SampleInterval time.Duration

	// IncludePseudoFS keeps pseudo file systems (tmpfs, proc, ...) that
	// slip through physical partition enumeration.
	IncludePseudoFS bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{SampleInterval: time.Second}
}

// Collector gathers host metrics through a Source. It satisfies the
// collectors.Collector interface.
type Collector struct {
	cfg     Config
	src     Source
	mu      sync.Mutex
	healthy bool
}

// New creates a Collector backed by gopsutil. Zero-value fields in cfg are
// replaced with defaults.
func New(cfg Config) *Collector {
	return NewWithSource(cfg, GopsutilSource{})
}

// NewWithSource creates a Collector that reads from src.
func NewWithSource(cfg Config, src Source) *Collector {
	if cfg.SampleInterval <= 0 {
		cfg.SampleInterval = DefaultConfig().SampleInterval
	}
	return &Collector{
		cfg:     cfg,
		src:     src,
		healthy: true,
	}
}

// Name returns the collector's unique identifier.
func (c *Collector) Name() string {
	return "hostinfo"
}

// Healthy reports whether the last collection produced every section.
func (c *Collector) Healthy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.healthy
}

func (c *Collector) setHealthy(h bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.healthy = h
}

// section is the outcome of one group of OS queries.
type section struct {
	rows   []collectors.Row
	failed bool
}

// Collect queries the host and returns the ordered metric rows. A failed
// query is rendered as placeholder values under the usual labels, so the
// number of rows is always HeaderRows + RowsPerPartition*partitions. The
// only error besides context cancellation is a failure to enumerate
// partitions, in which case the header rows are still returned.
func (c *Collector) Collect(ctx context.Context) ([]collectors.Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var identity, cpuSec, memory, disks section
	var partErr error

	// Section failures become placeholders, not group errors. Only
	// cancellation is returned, so it stops the remaining sections.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		identity = c.collectIdentity(gctx)
		return ctx.Err()
	})
	g.Go(func() error {
		cpuSec = c.collectCPU(gctx)
		return ctx.Err()
	})
	g.Go(func() error {
		memory = c.collectMemory(gctx)
		return ctx.Err()
	})
	g.Go(func() error {
		disks, partErr = c.collectDisks(gctx)
		return ctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	rows := make([]collectors.Row, 0, HeaderRows+len(disks.rows))
	rows = append(rows, identity.rows...)
	rows = append(rows, cpuSec.rows...)
	rows = append(rows, memory.rows...)
	rows = append(rows, disks.rows...)

	c.setHealthy(!(identity.failed || cpuSec.failed || memory.failed || disks.failed || partErr != nil))

	if partErr != nil {
		return rows, fmt.Errorf("hostinfo: list partitions: %w", partErr)
	}
	return rows, nil
}

func (c *Collector) collectIdentity(ctx context.Context) section {
	var s section
	info, err := c.src.HostInfo(ctx)
	if err != nil {
		s.failed = true
		s.rows = placeholderRows(identityLabels[:4], err)
	} else {
		version := strings.TrimSpace(info.Platform + " " + info.PlatformVersion)
		if info.KernelVersion != "" {
			version = strings.TrimSpace(version + " (kernel " + info.KernelVersion + ")")
		}
		s.rows = []collectors.Row{
			{Label: LabelSystem, Value: systemName(info.OS)},
			{Label: LabelVersion, Value: version},
			{Label: LabelHostname, Value: info.Hostname},
			{Label: LabelArchitecture, Value: info.KernelArch},
		}
	}

	cpus, err := c.src.CPUInfo(ctx)
	switch {
	case err != nil:
		s.failed = true
		s.rows = append(s.rows, placeholderRows([]string{LabelProcessor}, err)...)
	case len(cpus) == 0 || cpus[0].ModelName == "":
		s.rows = append(s.rows, collectors.Row{Label: LabelProcessor, Value: "unknown"})
	default:
		s.rows = append(s.rows, collectors.Row{Label: LabelProcessor, Value: cpus[0].ModelName})
	}
	return s
}

func (c *Collector) collectCPU(ctx context.Context) section {
	var s section

	if pct, err := c.src.CPUPercent(ctx, c.cfg.SampleInterval); err != nil || len(pct) == 0 {
		s.failed = true
		s.rows = append(s.rows, placeholderRows([]string{LabelCPUUsage}, err)...)
	} else {
		s.rows = append(s.rows, collectors.Row{Label: LabelCPUUsage, Value: FormatPercent(pct[0])})
	}

	for _, q := range []struct {
		label   string
		logical bool
	}{
		{LabelLogicalCores, true},
		{LabelPhysicalCores, false},
	} {
		n, err := c.src.CPUCounts(ctx, q.logical)
		if err != nil {
			s.failed = true
			s.rows = append(s.rows, placeholderRows([]string{q.label}, err)...)
			continue
		}
		s.rows = append(s.rows, collectors.Row{Label: q.label, Value: strconv.Itoa(n)})
	}
	return s
}

func (c *Collector) collectMemory(ctx context.Context) section {
	vm, err := c.src.VirtualMemory(ctx)
	if err != nil {
		return section{rows: placeholderRows(memoryLabels, err), failed: true}
	}
	return section{rows: []collectors.Row{
		{Label: LabelMemTotal, Value: FormatGiB(vm.Total)},
		{Label: LabelMemAvailable, Value: FormatGiB(vm.Available)},
		{Label: LabelMemUsage, Value: FormatPercent(vm.UsedPercent)},
	}}
}

func (c *Collector) collectDisks(ctx context.Context) (section, error) {
	var s section

	parts, err := c.src.Partitions(ctx, false)
	if err != nil {
		s.failed = true
		return s, err
	}

	for _, p := range parts {
		if !c.cfg.IncludePseudoFS && isPseudoFS(p.Fstype) {
			continue
		}
		s.rows = append(s.rows,
			collectors.Row{Label: LabelDevice, Value: p.Device},
			collectors.Row{Label: LabelMountPoint, Value: p.Mountpoint},
			collectors.Row{Label: LabelFSType, Value: p.Fstype},
		)

		usage, err := c.src.Usage(ctx, p.Mountpoint)
		if err != nil {
			s.failed = true
			s.rows = append(s.rows, placeholderRows(usageLabels, err)...)
			continue
		}
		s.rows = append(s.rows, partitionUsageRows(usage)...)
	}
	return s, nil
}

func partitionUsageRows(u *disk.UsageStat) []collectors.Row {
	return []collectors.Row{
		{Label: LabelDiskTotal, Value: FormatGiB(u.Total)},
		{Label: LabelDiskUsed, Value: FormatGiB(u.Used)},
		{Label: LabelDiskFree, Value: FormatGiB(u.Free)},
		{Label: LabelDiskUsage, Value: FormatPercent(u.UsedPercent)},
	}
}

func placeholderRows(labels []string, err error) []collectors.Row {
	kind := collectors.Classify(err)
	if kind == collectors.FailureNone {
		// Query succeeded but returned nothing usable.
		kind = collectors.FailureUnavailable
	}
	rows := make([]collectors.Row, len(labels))
	for i, l := range labels {
		rows[i] = collectors.Row{Label: l, Value: collectors.Placeholder(kind)}
	}
	return rows
}

// systemName maps the gopsutil OS identifier onto the conventional kernel
// family name ("linux" -> "Linux").
func systemName(goos string) string {
	switch goos {
	case "linux":
		return "Linux"
	case "darwin":
		return "Darwin"
	case "windows":
		return "Windows"
	case "freebsd":
		return "FreeBSD"
	case "":
		return "unknown"
	}
	return goos
}

// isPseudoFS returns true for filesystem types that do not represent real
// storage.
func isPseudoFS(fstype string) bool {
	switch fstype {
	case "devfs", "devtmpfs", "tmpfs", "sysfs", "proc", "cgroup", "cgroup2",
		"autofs", "mqueue", "hugetlbfs", "debugfs", "tracefs", "securityfs",
		"pstore", "bpf", "fusectl", "configfs", "ramfs", "rpc_pipefs",
		"nfsd", "devpts", "squashfs":
		return true
	}
	return false
}
