package cli

import (
	"io"

	"github.com/theirongolddev/burnline/internal/config"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
)

// Severity colors use the basic ANSI palette so they follow the user's
// terminal theme.
var (
	ColorGreen  = lipgloss.Color("2")
	ColorYellow = lipgloss.Color("3")
	ColorRed    = lipgloss.Color("1")

	// Table chrome (Flexoki Dark)
	ColorAccent  = lipgloss.Color("#3AA99F")
	ColorTextDim = lipgloss.Color("#575653")
	ColorText    = lipgloss.Color("#FFFCF0")
)

// Palette styles statusline fragments. Claude Code captures stdout through a
// pipe, so color is decided by configuration rather than terminal detection.
type Palette struct {
	plain bool

	tiers  [4]lipgloss.Style
	dim    lipgloss.Style
	header lipgloss.Style
	value  lipgloss.Style
}

// NewPalette builds a palette for a color mode (config.ColorAlways or
// config.ColorNever).
func NewPalette(mode string) Palette {
	r := lipgloss.NewRenderer(io.Discard)
	p := Palette{plain: mode == config.ColorNever}
	if p.plain {
		r.SetColorProfile(termenv.Ascii)
	} else {
		r.SetColorProfile(termenv.ANSI256)
	}
	r.SetHasDarkBackground(true)

	p.tiers = [4]lipgloss.Style{
		Normal:   r.NewStyle().Foreground(ColorGreen),
		Warn:     r.NewStyle().Foreground(ColorYellow),
		Critical: r.NewStyle().Foreground(ColorRed),
		Blink:    r.NewStyle().Foreground(ColorRed).Blink(true),
	}
	p.dim = r.NewStyle().Faint(true)
	p.header = r.NewStyle().Bold(true).Foreground(ColorAccent)
	p.value = r.NewStyle().Foreground(ColorText)
	return p
}

// Plain reports whether the palette emits no escape sequences.
func (p Palette) Plain() bool { return p.plain }

// Tier colors s by severity.
func (p Palette) Tier(t Tier, s string) string {
	if p.plain || t < Normal || t > Blink {
		return s
	}
	return p.tiers[t].Render(s)
}

// Cost colors s by severity, leaving the normal tier uncolored.
func (p Palette) Cost(t Tier, s string) string {
	if t == Normal {
		return s
	}
	return p.Tier(t, s)
}

// Dim renders s faint.
func (p Palette) Dim(s string) string {
	if p.plain {
		return s
	}
	return p.dim.Render(s)
}

// Link wraps text in an OSC 8 hyperlink to url.
func (p Palette) Link(url, text string) string {
	if p.plain || url == "" {
		return text
	}
	return ansi.SetHyperlink(url) + text + ansi.ResetHyperlink()
}
