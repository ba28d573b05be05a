package reachability

import (
	"context"
	"errors"
	"runtime"
	"time"

	probing "github.com/prometheus-community/pro-bing"
)

var errNoReply = errors.New("no echo reply")

// icmpPinger sends a single ICMP echo using pro-bing. On Linux it uses
// unprivileged UDP pings, which need net.ipv4.ping_group_range to include
// the caller's group.
type icmpPinger struct{}

func (icmpPinger) Ping(ctx context.Context, host string, timeout time.Duration) error {
	p, err := probing.NewPinger(host)
	if err != nil {
		return err
	}
	p.Count = 1
	p.Timeout = timeout
	if runtime.GOOS == "windows" {
		p.SetPrivileged(true)
	}

	if err := p.RunWithContext(ctx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.Statistics().PacketsRecv == 0 {
		return errNoReply
	}
	return nil
}
