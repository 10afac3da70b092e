package cli

import (
	"math"
	"strings"
)

// Bar quantizes a 0-1 fraction into width cells of glyphs[0] (filled) and
// glyphs[1] (empty). The filled count is floored, any positive fraction fills
// at least one cell and only 1.0 fills the whole bar.
func Bar(fraction float64, width int, glyphs [2]string) string {
	if width <= 0 {
		return ""
	}
	if math.IsNaN(fraction) || fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}

	filled := int(math.Floor(fraction * float64(width)))
	if fraction > 0 && filled == 0 {
		filled = 1
	}
	if fraction < 1 && filled == width {
		filled = width - 1
	}
	return strings.Repeat(glyphs[0], filled) + strings.Repeat(glyphs[1], width-filled)
}

// Pie picks one of five glyphs for a 0-100 percentage in 20% steps.
func Pie(pct float64, glyphs [5]string) string {
	switch {
	case pct <= 20:
		return glyphs[0]
	case pct <= 40:
		return glyphs[1]
	case pct <= 60:
		return glyphs[2]
	case pct <= 80:
		return glyphs[3]
	}
	return glyphs[4]
}

// Sparkline renders values with min-max scaling onto the runes of blocks.
// A flat series renders as the lowest block.
func Sparkline(values []float64, blocks string) string {
	levels := []rune(blocks)
	if len(values) == 0 || len(levels) == 0 {
		return ""
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	span := hi - lo
	if span <= 0 {
		span = 1
	}

	top := len(levels) - 1
	var b strings.Builder
	for _, v := range values {
		idx := int((v - lo) * float64(top) / span)
		idx = max(0, min(top, idx))
		b.WriteRune(levels[idx])
	}
	return b.String()
}
