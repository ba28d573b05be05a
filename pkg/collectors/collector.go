// Package collectors defines the shared row model and failure classification
// used by the host-pulse data collectors. The hostinfo collector produces
// ordered (label, value) rows; the reachability collector produces a
// two-valued status. Both report section failures through FailureKind so the
// UI can show a placeholder instead of crashing.
package collectors

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"strings"
)

// Row is a single (description, value) pair rendered as one table row.
// Rows carry no identity beyond their position in the slice.
type Row struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// FailureKind names why a collection query produced no data.
type FailureKind int

const (
	FailureNone FailureKind = iota
	FailurePermissionDenied
	FailureUnsupported
	FailureTimeout
	FailureUnavailable
)

// String returns the short, human readable name of the failure kind.
func (k FailureKind) String() string {
	switch k {
	case FailureNone:
		return "none"
	case FailurePermissionDenied:
		return "permission denied"
	case FailureUnsupported:
		return "unsupported"
	case FailureTimeout:
		return "timeout"
	default:
		return "unavailable"
	}
}

// Classify maps an error returned by an OS or network query onto a
// FailureKind. A nil error is FailureNone.
func Classify(err error) FailureKind {
	switch {
	case err == nil:
		return FailureNone
	case errors.Is(err, fs.ErrPermission), errors.Is(err, os.ErrPermission):
		return FailurePermissionDenied
	case errors.Is(err, errors.ErrUnsupported):
		return FailureUnsupported
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, os.ErrDeadlineExceeded):
		return FailureTimeout
	}
	// gopsutil reports missing platform support as a plain error string.
	if strings.Contains(strings.ToLower(err.Error()), "not implemented") {
		return FailureUnsupported
	}
	return FailureUnavailable
}

// Placeholder is the value shown in place of data for a failed query.
func Placeholder(kind FailureKind) string {
	return "unavailable (" + kind.String() + ")"
}

// Collector is the interface both host-pulse data sources satisfy so the
// command layer can log their health uniformly.
type Collector interface {
	// Name returns a unique identifier for this collector (e.g., "hostinfo").
	Name() string

	// Healthy returns whether the last collection succeeded. A collector
	// that has never run is considered healthy.
	Healthy() bool
}
