// Package layout assembles the two statusline lines from computed fields,
// choosing one of three templates by terminal width.
package layout

import (
	"os"
	"strconv"
	"strings"

	"github.com/theirongolddev/burnline/internal/config"

	"github.com/charmbracelet/x/term"
)

// Mode is one of the three layout templates, widest first.
type Mode int

const (
	// Full shows every field with 10-cell bars and the sparkline.
	Full Mode = iota
	// Compact shortens bars and drops the burn rate, request cost and sparkline.
	Compact
	// Ultra keeps numeric fields only.
	Ultra
)

// Modes lists every layout mode.
var Modes = []Mode{Full, Compact, Ultra}

func (m Mode) String() string {
	switch m {
	case Full:
		return "full"
	case Compact:
		return "compact"
	case Ultra:
		return "ultra"
	default:
		return "unknown"
	}
}

// ModeNames returns the names of all modes, for metrics.
func ModeNames() []string {
	names := make([]string, len(Modes))
	for i, m := range Modes {
		names[i] = m.String()
	}
	return names
}

// SelectMode picks the widest template the width allows.
func SelectMode(width int, t config.ThresholdConfig) Mode {
	switch {
	case width >= t.CompactCols:
		return Full
	case width >= t.UltraCols:
		return Compact
	default:
		return Ultra
	}
}

// DefaultWidth is used when no width source is available.
const DefaultWidth = 80

// DetectWidth resolves the terminal width: an explicit flag value, then
// STATUSLINE_COLS, then COLUMNS, then the controlling terminal, then 80.
// tty may be nil.
func DetectWidth(flag int, getenv func(string) string, tty func() (int, error)) int {
	if flag > 0 {
		return flag
	}
	for _, key := range []string{config.EnvCols, config.EnvColumns} {
		if w, err := strconv.Atoi(strings.TrimSpace(getenv(key))); err == nil && w > 0 {
			return w
		}
	}
	if tty != nil {
		if w, err := tty(); err == nil && w > 0 {
			return w
		}
	}
	return DefaultWidth
}

// TTYWidth reads the width of the controlling terminal. Claude Code pipes
// stdin and stdout, so the terminal is opened directly.
func TTYWidth() (int, error) {
	f, err := os.Open("/dev/tty")
	if err != nil {
		return 0, err
	}
	defer func() { _ = f.Close() }()

	w, _, err := term.GetSize(f.Fd())
	return w, err
}
