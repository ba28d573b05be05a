// Package reachability provides a collector that judges external network
// access with a single bounded probe to a fixed host. The outcome is
// two-valued: Connected or Disconnected.
package reachability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"gitlab.com/tinyland/lab/host-pulse/pkg/collectors"
)

// Default configuration values.
const (
	DefaultURL     = "https://www.google.com"
	DefaultTimeout = 5 * time.Second
)

// Probe methods.
const (
	MethodHTTP = "http"
	MethodICMP = "icmp"
)

// Status is the binary reachability judgment.
type Status int

const (
	Disconnected Status = iota
	Connected
)

// String returns "Connected" or "Disconnected".
func (s Status) String() string {
	if s == Connected {
		return "Connected"
	}
	return "Disconnected"
}

// Result is the outcome of one Check.
type Result struct {
	Status    Status
	Code      int // HTTP status code, 0 when no response was received
	Latency   time.Duration
	Err       error
	Failure   collectors.FailureKind
	CheckedAt time.Time
}

// Config holds the configuration for the reachability collector.
type Config struct {
	// URL is the probe target. Zero uses DefaultURL.
	URL string

	// Timeout bounds the whole probe. Zero uses DefaultTimeout.
	Timeout time.Duration

	// Method selects the probe transport: "http" (default) or "icmp".
	Method string
}

// Pinger abstracts a single ICMP echo so the ICMP path can be tested
// without raw socket privileges.
type Pinger interface {
	Ping(ctx context.Context, host string, timeout time.Duration) error
}

// Collector performs reachability probes. It is safe for concurrent use.
type Collector struct {
	cfg    Config
	client *http.Client
	pinger Pinger

	mu      sync.Mutex
	healthy bool
}

// New creates a reachability collector. A nil client gets a fresh
// http.Client whose Timeout is cfg.Timeout.
func New(cfg Config, client *http.Client) *Collector {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Method == "" {
		cfg.Method = MethodHTTP
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Collector{
		cfg:     cfg,
		client:  client,
		pinger:  icmpPinger{},
		healthy: true,
	}
}

// WithPinger replaces the ICMP implementation.
func (c *Collector) WithPinger(p Pinger) *Collector {
	c.pinger = p
	return c
}

// Name returns the collector identifier.
func (c *Collector) Name() string {
	return "reachability"
}

// Healthy reports whether the last probe judged the host Connected.
func (c *Collector) Healthy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.healthy
}

func (c *Collector) setHealthy(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.healthy = v
}

// Timeout returns the configured probe timeout.
func (c *Collector) Timeout() time.Duration {
	return c.cfg.Timeout
}

// Target returns the configured probe URL.
func (c *Collector) Target() string {
	return c.cfg.URL
}

// Check runs one probe. It never returns an error: every failure is folded
// into a Disconnected result with Err set. Only an HTTP 200 counts as
// Connected; other status codes are Disconnected and keep their Code.
func (c *Collector) Check(ctx context.Context) Result {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	start := time.Now()
	var res Result
	if c.cfg.Method == MethodICMP {
		res = c.checkICMP(ctx)
	} else {
		res = c.checkHTTP(ctx)
	}
	res.Latency = time.Since(start)
	res.CheckedAt = start
	res.Failure = collectors.Classify(res.Err)

	c.setHealthy(res.Status == Connected)
	return res
}

func (c *Collector) checkHTTP(ctx context.Context) Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.URL, nil)
	if err != nil {
		return Result{Status: Disconnected, Err: fmt.Errorf("reachability: build request: %w", err)}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Result{Status: Disconnected, Err: fmt.Errorf("reachability: GET %s: %w", c.cfg.URL, err)}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode != http.StatusOK {
		return Result{
			Status: Disconnected,
			Code:   resp.StatusCode,
			Err:    fmt.Errorf("reachability: GET %s: %w", c.cfg.URL, &StatusError{Code: resp.StatusCode}),
		}
	}
	return Result{Status: Connected, Code: resp.StatusCode}
}

func (c *Collector) checkICMP(ctx context.Context) Result {
	u, err := url.Parse(c.cfg.URL)
	if err != nil || u.Hostname() == "" {
		return Result{Status: Disconnected, Err: fmt.Errorf("reachability: no host in %q", c.cfg.URL)}
	}
	if err := c.pinger.Ping(ctx, u.Hostname(), c.cfg.Timeout); err != nil {
		return Result{Status: Disconnected, Err: fmt.Errorf("reachability: ping %s: %w", u.Hostname(), err)}
	}
	return Result{Status: Connected}
}

// StatusError reports a non-200 HTTP response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s", e.Code, http.StatusText(e.Code))
}

// IsStatusError reports whether err carries a non-200 HTTP response.
func IsStatusError(err error) bool {
	var se *StatusError
	return errors.As(err, &se)
}
