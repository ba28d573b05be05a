// Package terminal answers the few questions host-pulse asks about the
// output it writes to outside the TUI: how wide it is, whether it is a
// terminal at all, and which color profile to render with.
package terminal

import (
	"os"
	"strconv"

	"github.com/charmbracelet/x/term"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Size represents terminal dimensions in character cells.
type Size struct {
	Cols int
	Rows int
}

// Fallback dimensions when nothing else is known.
const (
	DefaultCols = 80
	DefaultRows = 24
)

// GetSize returns the current terminal dimensions. It tries, in order:
//  1. the window size of stdout
//  2. the window size of stderr (in case stdout is redirected)
//  3. COLUMNS/LINES environment variables
//  4. 80x24
func GetSize() Size {
	for _, f := range []*os.File{os.Stdout, os.Stderr} {
		if s := GetSizeFromFd(f.Fd()); s.Cols > 0 && s.Rows > 0 {
			return s
		}
	}
	return getSizeFromEnv()
}

// GetSizeFromFd queries the window size of fd. Returns a zero Size when fd
// is not a terminal.
func GetSizeFromFd(fd uintptr) Size {
	w, h, err := term.GetSize(fd)
	if err != nil {
		return Size{}
	}
	return Size{Cols: w, Rows: h}
}

// getSizeFromEnv reads terminal dimensions from COLUMNS/LINES environment
// variables, falling back to 80x24 defaults.
func getSizeFromEnv() Size {
	return Size{
		Cols: envInt("COLUMNS", DefaultCols),
		Rows: envInt("LINES", DefaultRows),
	}
}

// envInt reads a positive integer from the named environment variable.
func envInt(name string, fallback int) int {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// IsTerminal reports whether fd refers to a terminal, including Cygwin and
// MSYS pseudo terminals on Windows.
func IsTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// ColorProfile returns the profile to render output to f with. Anything
// that is not a terminal, or has NO_COLOR set, gets plain ASCII.
func ColorProfile(f *os.File) termenv.Profile {
	if !IsTerminal(f.Fd()) {
		return termenv.Ascii
	}
	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	return termenv.NewOutput(f).EnvColorProfile()
}
