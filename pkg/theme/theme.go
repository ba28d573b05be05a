// Package theme defines the color palettes used by the host-pulse TUI and
// snapshot output.
package theme

import (
	"sort"
	"strings"
	"sync"
)

// Theme defines the complete color palette.
type Theme struct {
	Name string

	// Base colors
	Foreground string // hex color e.g. "#d4d4d4"
	Dim        string // dimmed text, status bar hints
	Accent     string // highlights, table header

	// Table colors
	Border   string
	Selected string // selected row background

	// Status colors
	StatusOK    string // green - connected
	StatusError string // red - disconnected, placeholders
}

var (
	mu       sync.RWMutex
	registry = map[string]Theme{}
)

func init() {
	thRegisterBuiltins()
}

// Get returns a named theme, falling back to Default if not found.
func Get(name string) Theme {
	mu.RLock()
	defer mu.RUnlock()
	if t, ok := registry[strings.ToLower(name)]; ok {
		return t
	}
	return registry["default"]
}

// Names returns all available theme names sorted alphabetically.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Register adds or replaces a theme under its lowercase name.
func Register(t Theme) {
	mu.Lock()
	defer mu.Unlock()
	registry[strings.ToLower(t.Name)] = t
}
